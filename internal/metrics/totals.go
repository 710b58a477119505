package metrics

import "github.com/bryan-cox/metricsledger/internal/model"

// ComputeTotals sums every column and the resolved block totals across rows.
// Rows that carry no pair for a column are skipped for that column only.
func ComputeTotals(rows []model.AggregatedRow) model.ColumnTotals {
	totals := model.ColumnTotals{Counts: make(map[string]model.CountPair, model.NumColumns)}
	for _, col := range model.Columns() {
		var sum model.CountPair
		for _, row := range rows {
			if pair, ok := row.Pair(col.Key); ok {
				sum = sum.Add(pair)
			}
		}
		totals.Counts[col.Key] = sum
	}
	for _, row := range rows {
		totals.TotalBlocks += row.TotalBlocks
	}
	return totals
}
