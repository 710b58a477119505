package metrics

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/bryan-cox/metricsledger/internal/model"
)

// CommentSeparator joins the comments of one user's records.
const CommentSeparator = " | "

// Issue describes a malformed part of a raw record. Issues never stop
// aggregation; the affected columns simply receive zero.
type Issue struct {
	UserID   model.UserID
	ItemType string
	TaskType string
	Reason   string
}

// accumulator is the fold state for one user.
type accumulator struct {
	counts   [model.NumColumns]model.CountPair
	blocks   int
	area     *string
	comments []string
	issues   []Issue
}

// foldRecord adds one record into the accumulator and returns the new state.
// It does not modify acc.
func foldRecord(acc accumulator, rec model.RawMetricRecord) accumulator {
	if acc.area == nil && rec.AreaName != "" {
		area := rec.AreaName
		acc.area = &area
	}
	if strings.TrimSpace(rec.Comments) != "" {
		acc.comments = append(slices.Clip(acc.comments), rec.Comments)
	}

	counts, countsOK := toStringMap(rec.Counts)
	if rec.Counts != nil && !countsOK {
		acc.issues = append(slices.Clip(acc.issues), Issue{UserID: rec.UserID, Reason: "counts is not a mapping"})
	}
	if countsOK {
		acc.counts, acc.issues = addCounts(acc.counts, acc.issues, rec.UserID, counts)
	}

	if rec.TotalBlocks != nil {
		blocks, ok := toInt(rec.TotalBlocks)
		if !ok {
			acc.issues = append(slices.Clip(acc.issues), Issue{UserID: rec.UserID, Reason: "totalBlocks is not a number"})
		}
		acc.blocks += nonNegative(blocks)
	}
	return acc
}

// addCounts adds a record's counts mapping into the column sums.
func addCounts(sums [model.NumColumns]model.CountPair, issues []Issue, user model.UserID, counts map[string]any) ([model.NumColumns]model.CountPair, []Issue) {
	badItems := map[string]bool{}
	for i, col := range model.Columns() {
		rawItem, ok := counts[col.ItemType]
		if !ok || rawItem == nil {
			continue
		}
		tasks, ok := toStringMap(rawItem)
		if !ok {
			if !badItems[col.ItemType] {
				badItems[col.ItemType] = true
				issues = append(slices.Clip(issues), Issue{UserID: user, ItemType: col.ItemType, Reason: "item counts are not a mapping"})
			}
			continue
		}
		rawCount, ok := tasks[col.TaskType]
		if !ok {
			continue
		}
		cv, ok := ParseCountValue(rawCount)
		if !ok {
			issues = append(slices.Clip(issues), Issue{UserID: user, ItemType: col.ItemType, TaskType: col.TaskType, Reason: "unknown count value shape"})
		}
		sums[i] = sums[i].Add(Normalize(cv))
	}
	return sums, issues
}

func fold[T, A any](items []T, init A, combine func(A, T) A) A {
	acc := init
	for _, item := range items {
		acc = combine(acc, item)
	}
	return acc
}

// AggregateUser builds the row for one roster user from that user's records.
// Records belonging to other users are ignored.
func AggregateUser(user model.UserRef, records []model.RawMetricRecord, totals model.BlockTotals, period model.Period) model.AggregatedRow {
	var own []model.RawMetricRecord
	for _, rec := range records {
		if rec.UserID == user.ID {
			own = append(own, rec)
		}
	}
	return buildRow(user, own, totals, period)
}

// Aggregate produces exactly one row per roster user, in roster order. Users
// without records get an all-zero row.
func Aggregate(users []model.UserRef, records []model.RawMetricRecord, totals model.BlockTotals, period model.Period) []model.AggregatedRow {
	byUser := make(map[model.UserID][]model.RawMetricRecord, len(users))
	for _, rec := range records {
		byUser[rec.UserID] = append(byUser[rec.UserID], rec)
	}

	rows := make([]model.AggregatedRow, 0, len(users))
	for _, user := range users {
		rows = append(rows, buildRow(user, byUser[user.ID], totals, period))
	}
	return rows
}

func buildRow(user model.UserRef, records []model.RawMetricRecord, totals model.BlockTotals, period model.Period) model.AggregatedRow {
	acc := fold(records, accumulator{}, foldRecord)
	for _, issue := range acc.issues {
		slog.Warn("malformed metric record, counting as zero",
			"user", issue.UserID, "item_type", issue.ItemType, "task_type", issue.TaskType, "reason", issue.Reason)
	}

	row := model.AggregatedRow{
		UserID:   user.ID,
		Name:     user.Name,
		AreaName: acc.area,
		Counts:   make(map[string]model.CountPair, model.NumColumns),
		Blocks:   acc.blocks,
	}
	for i, col := range model.Columns() {
		row.Counts[col.Key] = acc.counts[i]
	}
	if len(acc.comments) > 0 {
		joined := strings.Join(acc.comments, CommentSeparator)
		row.Comments = &joined
	}
	row.TotalBlocks = ResolveTotalBlocks(user.ID, acc.blocks, totals, period)
	return row
}

// ResolveTotalBlocks prefers the authoritative block total for the period and
// falls back to the summed record blocks when the source has none.
func ResolveTotalBlocks(user model.UserID, summed int, totals model.BlockTotals, period model.Period) int {
	if n, ok := totals.Lookup(user, period); ok {
		return n
	}
	return summed
}
