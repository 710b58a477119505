package model

import (
	"fmt"
	"strconv"
)

// Placeholders used in export rows.
const (
	NoneValue  = "None"
	NoComments = "No comments"
)

// Fixed export field names.
const (
	ColumnName        = "Name"
	ColumnArea        = "Area"
	ColumnTotalBlocks = "Total Blocks"
	ColumnComments    = "Comments"
)

// CompletedField returns the export field name for a column's completed count.
func CompletedField(c ReportColumn) string { return c.Key + " - Completed" }

// SkippedField returns the export field name for a column's skipped count.
func SkippedField(c ReportColumn) string { return c.Key + " - Skipped" }

// ExportColumns returns the export field order expected by the spreadsheet
// consumer.
func ExportColumns() []string {
	out := []string{ColumnName, ColumnArea}
	for _, col := range Columns() {
		out = append(out, CompletedField(col), SkippedField(col))
		if col.WorkedOn != "" {
			out = append(out, col.WorkedOn)
		}
	}
	return append(out, ColumnTotalBlocks, ColumnComments)
}

// ExportCell is one named value of an export row.
type ExportCell struct {
	Column string
	Value  any // int or string
}

// ExportRow is a flat, ordered export record.
type ExportRow []ExportCell

// Get returns the value of the named field.
func (r ExportRow) Get(column string) (any, bool) {
	for _, c := range r {
		if c.Column == column {
			return c.Value, true
		}
	}
	return nil, false
}

// Columns returns the field names in row order.
func (r ExportRow) Columns() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = c.Column
	}
	return out
}

// Strings renders every value as text, in row order.
func (r ExportRow) Strings() []string {
	out := make([]string, len(r))
	for i, c := range r {
		switch v := c.Value.(type) {
		case string:
			out[i] = v
		case int:
			out[i] = strconv.Itoa(v)
		default:
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}
