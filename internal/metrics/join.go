package metrics

import "github.com/bryan-cox/metricsledger/internal/model"

// IdentifierSeparator joins the identifiers listed in a Worked On field.
const IdentifierSeparator = ", "

// indexDetails keys detail records by user. When a user appears more than
// once the first record wins.
func indexDetails(details []model.DetailRecord) map[model.UserID]model.DetailRecord {
	idx := make(map[model.UserID]model.DetailRecord, len(details))
	for _, d := range details {
		if _, seen := idx[d.UserID]; !seen {
			idx[d.UserID] = d
		}
	}
	return idx
}

// JoinDetails left-joins rows against the detail records on user identity and
// flattens each pair into an export row. Every row yields one export row.
func JoinDetails(rows []model.AggregatedRow, details []model.DetailRecord) []model.ExportRow {
	idx := indexDetails(details)
	out := make([]model.ExportRow, 0, len(rows))
	for _, row := range rows {
		var match *model.DetailRecord
		if d, ok := idx[row.UserID]; ok {
			match = &d
		}
		out = append(out, ExportRowFor(row, match))
	}
	return out
}

// ExportRowFor flattens one row and its optional detail record.
func ExportRowFor(row model.AggregatedRow, detail *model.DetailRecord) model.ExportRow {
	area := ""
	if row.AreaName != nil {
		area = *row.AreaName
	}
	out := model.ExportRow{
		{Column: model.ColumnName, Value: row.Name},
		{Column: model.ColumnArea, Value: area},
	}
	for _, col := range model.Columns() {
		pair, _ := row.Pair(col.Key)
		out = append(out,
			model.ExportCell{Column: model.CompletedField(col), Value: pair.Completed},
			model.ExportCell{Column: model.SkippedField(col), Value: pair.Skipped},
		)
		if col.WorkedOn != "" {
			out = append(out, model.ExportCell{Column: col.WorkedOn, Value: workedOn(detail, col.WorkedOn)})
		}
	}
	comments := model.NoComments
	if row.Comments != nil {
		comments = *row.Comments
	}
	return append(out,
		model.ExportCell{Column: model.ColumnTotalBlocks, Value: row.TotalBlocks},
		model.ExportCell{Column: model.ColumnComments, Value: comments},
	)
}

func workedOn(detail *model.DetailRecord, field string) string {
	if detail == nil {
		return model.NoneValue
	}
	var ids []model.Identifier
	switch field {
	case model.WorkedOnPIDs:
		ids = detail.PIDNumbers
	case model.WorkedOnEquipment:
		ids = detail.EquipmentNumbers
	case model.WorkedOnLines:
		ids = detail.LineNumbers
	}
	if len(ids) == 0 {
		return model.NoneValue
	}
	return model.JoinIdentifiers(ids, IdentifierSeparator)
}
