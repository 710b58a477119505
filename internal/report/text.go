// Package report renders report tables for the terminal and the clipboard.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/bryan-cox/metricsledger/internal/metrics"
	"github.com/bryan-cox/metricsledger/internal/model"
)

// TotalLabel names the footer row.
const TotalLabel = "TOTAL"

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
	footerStyle = numberStyle.Bold(true)
)

// Headers returns the display table header: Name, Area, one cell per column,
// Blocks and Comments.
func Headers() []string {
	out := []string{model.ColumnName, model.ColumnArea}
	for _, col := range model.Columns() {
		out = append(out, col.Key)
	}
	return append(out, "Blocks", model.ColumnComments)
}

// formatPair renders a pair as "completed / skipped".
func formatPair(p model.CountPair) string {
	return fmt.Sprintf("%d / %d", p.Completed, p.Skipped)
}

func optional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Rows returns the display cells of each row followed by the totals row.
func Rows(rep metrics.Report) [][]string {
	var out [][]string
	for _, row := range rep.Rows {
		cells := []string{row.Name, optional(row.AreaName)}
		for _, col := range model.Columns() {
			pair, _ := row.Pair(col.Key)
			cells = append(cells, formatPair(pair))
		}
		cells = append(cells, strconv.Itoa(row.TotalBlocks), optional(row.Comments))
		out = append(out, cells)
	}

	footer := []string{TotalLabel, ""}
	for _, col := range model.Columns() {
		footer = append(footer, formatPair(rep.Totals.Counts[col.Key]))
	}
	footer = append(footer, strconv.Itoa(rep.Totals.TotalBlocks), "")
	return append(out, footer)
}

// RenderTable prints the report as a bordered table to the writer.
func RenderTable(out io.Writer, rep metrics.Report, date string) {
	fmt.Fprintf(out, "Metrics Report (%s, %s)\n", rep.Period, date)
	fmt.Fprintln(out, "=======Autogenerated by MetricsLedger=======")

	if len(rep.Rows) == 0 {
		fmt.Fprintln(out, "No users in roster.")
		return
	}

	rows := Rows(rep)
	lastRow := len(rows) - 1
	numCols := len(Headers())
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(Headers()...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col < 2 || col == numCols-1:
				return cellStyle
			case row == lastRow:
				return footerStyle
			default:
				return numberStyle
			}
		})
	fmt.Fprintln(out, t.String())
}

// TSV renders the report as tab separated text for pasting into a
// spreadsheet. Completed and skipped get separate cells.
func TSV(rep metrics.Report) string {
	var b strings.Builder
	header := []string{model.ColumnName, model.ColumnArea}
	for _, col := range model.Columns() {
		header = append(header, model.CompletedField(col), model.SkippedField(col))
	}
	header = append(header, model.ColumnTotalBlocks, model.ColumnComments)
	writeTSVLine(&b, header)

	for _, row := range rep.Rows {
		cells := []string{row.Name, optional(row.AreaName)}
		for _, col := range model.Columns() {
			pair, _ := row.Pair(col.Key)
			cells = append(cells, strconv.Itoa(pair.Completed), strconv.Itoa(pair.Skipped))
		}
		cells = append(cells, strconv.Itoa(row.TotalBlocks), optional(row.Comments))
		writeTSVLine(&b, cells)
	}

	footer := []string{TotalLabel, ""}
	for _, col := range model.Columns() {
		pair := rep.Totals.Counts[col.Key]
		footer = append(footer, strconv.Itoa(pair.Completed), strconv.Itoa(pair.Skipped))
	}
	footer = append(footer, strconv.Itoa(rep.Totals.TotalBlocks), "")
	writeTSVLine(&b, footer)
	return b.String()
}

var tsvEscaper = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")

func writeTSVLine(b *strings.Builder, cells []string) {
	for i, c := range cells {
		if i > 0 {
			b.WriteByte('\t')
		}
		b.WriteString(tsvEscaper.Replace(c))
	}
	b.WriteByte('\n')
}
