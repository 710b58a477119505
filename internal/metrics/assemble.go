package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/bryan-cox/metricsledger/internal/model"
)

// ErrExportInProgress is returned when an export is requested while another
// one is still running on the same assembler.
var ErrExportInProgress = errors.New("an export is already in progress")

// DetailSource fetches the detailed work items for a reporting period.
type DetailSource interface {
	FetchDetails(ctx context.Context, date time.Time, period model.Period) ([]model.DetailRecord, error)
}

// ExportWriter persists flat export rows under the given base name and
// returns where they were written.
type ExportWriter interface {
	WriteExport(name string, columns []string, rows []model.ExportRow) (string, error)
}

// Input is everything a report is computed from.
type Input struct {
	Users       []model.UserRef
	Metrics     []model.RawMetricRecord
	BlockTotals model.BlockTotals
	Period      model.Period
}

// Report is the display side of a report run.
type Report struct {
	Period model.Period
	Rows   []model.AggregatedRow
	Totals model.ColumnTotals
}

// ExportResult describes a finished export.
type ExportResult struct {
	RunID    string
	FileName string
	Path     string
	Rows     []model.ExportRow
}

// Assembler runs the display and export pipelines.
type Assembler struct {
	details DetailSource
	writer  ExportWriter
	now     func() time.Time

	exporting atomic.Bool
}

// NewAssembler returns an Assembler exporting through the given collaborators.
func NewAssembler(details DetailSource, writer ExportWriter) *Assembler {
	return &Assembler{details: details, writer: writer, now: time.Now}
}

// Display aggregates every roster user and computes the column totals.
func (a *Assembler) Display(in Input) Report {
	return BuildReport(in)
}

// BuildReport is the pure display pipeline.
func BuildReport(in Input) Report {
	rows := Aggregate(in.Users, in.Metrics, in.BlockTotals, in.Period)
	return Report{Period: in.Period, Rows: rows, Totals: ComputeTotals(rows)}
}

// Exporting reports whether an export is in flight.
func (a *Assembler) Exporting() bool {
	return a.exporting.Load()
}

// FileName returns the deterministic export file base name.
func FileName(period model.Period, date time.Time) string {
	return fmt.Sprintf("Metrics_%s_%s", period, model.FormatDate(date))
}

// Export aggregates the input, joins it with the detail dataset for
// (date, period) and hands the flat rows to the writer. A zero date means
// today. Nothing is written when fetching the details fails.
func (a *Assembler) Export(ctx context.Context, in Input, date time.Time) (ExportResult, error) {
	if !a.exporting.CompareAndSwap(false, true) {
		return ExportResult{}, ErrExportInProgress
	}
	defer a.exporting.Store(false)

	if date.IsZero() {
		date = a.now()
	}
	runID := uuid.NewString()
	log := slog.With("run_id", runID, "period", in.Period, "date", model.FormatDate(date))

	rows := Aggregate(in.Users, in.Metrics, in.BlockTotals, in.Period)

	details, err := a.details.FetchDetails(ctx, date, in.Period)
	if err != nil {
		log.Warn("export aborted", "error", err)
		return ExportResult{}, fmt.Errorf("failed to fetch detailed metrics: %w", err)
	}

	exportRows := JoinDetails(rows, details)
	name := FileName(in.Period, date)
	path, err := a.writer.WriteExport(name, model.ExportColumns(), exportRows)
	if err != nil {
		log.Warn("export aborted", "error", err)
		return ExportResult{}, fmt.Errorf("failed to write export %s: %w", name, err)
	}

	log.Info("export written", "path", path, "rows", len(exportRows), "details", len(details))
	return ExportResult{RunID: runID, FileName: name, Path: path, Rows: exportRows}, nil
}
