package metrics

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/bryan-cox/metricsledger/internal/model"
)

type fakeDetails struct {
	records []model.DetailRecord
	err     error
	calls   int
	gotDate time.Time
	gotPer  model.Period
	block   chan struct{}
}

func (f *fakeDetails) FetchDetails(ctx context.Context, date time.Time, period model.Period) ([]model.DetailRecord, error) {
	f.calls++
	f.gotDate, f.gotPer = date, period
	if f.block != nil {
		<-f.block
	}
	return f.records, f.err
}

type fakeWriter struct {
	mu      sync.Mutex
	names   []string
	columns []string
	rows    [][]model.ExportRow
	err     error
}

func (w *fakeWriter) WriteExport(name string, columns []string, rows []model.ExportRow) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return "", w.err
	}
	w.names = append(w.names, name)
	w.columns = columns
	w.rows = append(w.rows, rows)
	return "/tmp/" + name + ".csv", nil
}

func sampleInput() Input {
	return Input{
		Users: []model.UserRef{{ID: "1", Name: "A"}, {ID: "2", Name: "B"}},
		Metrics: []model.RawMetricRecord{
			{UserID: "1", Counts: map[string]any{"PID": map[string]any{"Redline": map[string]any{"completed": 3, "skipped": 1}}}, TotalBlocks: 5},
		},
		BlockTotals: model.BlockTotals{},
		Period:      model.Daily,
	}
}

func TestDisplay(t *testing.T) {
	a := NewAssembler(&fakeDetails{}, &fakeWriter{})
	rep := a.Display(sampleInput())
	if len(rep.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rep.Rows))
	}
	if rep.Totals.Counts["Redline PIDs"] != (model.CountPair{Completed: 3, Skipped: 1}) {
		t.Errorf("Redline PIDs total = %+v", rep.Totals.Counts["Redline PIDs"])
	}
	if rep.Totals.TotalBlocks != 5 {
		t.Errorf("total blocks = %d, want 5", rep.Totals.TotalBlocks)
	}
}

func TestExport(t *testing.T) {
	date := time.Date(2024, 5, 16, 0, 0, 0, 0, time.UTC)
	details := &fakeDetails{records: []model.DetailRecord{{UserID: "1", PIDNumbers: []model.Identifier{"P1"}}}}
	writer := &fakeWriter{}
	a := NewAssembler(details, writer)

	res, err := a.Export(context.Background(), sampleInput(), date)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if res.FileName != "Metrics_daily_2024-05-16" {
		t.Errorf("file name = %q", res.FileName)
	}
	if res.RunID == "" {
		t.Error("expected a run id")
	}
	if details.gotPer != model.Daily || !details.gotDate.Equal(date) {
		t.Errorf("details fetched for %s/%s", details.gotPer, details.gotDate)
	}
	if !reflect.DeepEqual(writer.columns, model.ExportColumns()) {
		t.Errorf("writer got columns %v", writer.columns)
	}
	if v, _ := res.Rows[0].Get(model.WorkedOnPIDs); v != "P1" {
		t.Errorf("PIDs Worked On = %v, want P1", v)
	}
	if a.Exporting() {
		t.Error("exporting flag should be cleared after export")
	}
}

func TestExportIdempotent(t *testing.T) {
	date := time.Date(2024, 5, 16, 0, 0, 0, 0, time.UTC)
	writer := &fakeWriter{}
	a := NewAssembler(&fakeDetails{}, writer)
	for i := 0; i < 2; i++ {
		if _, err := a.Export(context.Background(), sampleInput(), date); err != nil {
			t.Fatalf("export %d failed: %v", i, err)
		}
	}
	if writer.names[0] != writer.names[1] {
		t.Errorf("file names differ: %v", writer.names)
	}
	if !reflect.DeepEqual(writer.rows[0], writer.rows[1]) {
		t.Error("export rows differ between identical runs")
	}
}

func TestExportDefaultsDateToNow(t *testing.T) {
	writer := &fakeWriter{}
	a := NewAssembler(&fakeDetails{}, writer)
	a.now = func() time.Time { return time.Date(2023, 1, 2, 10, 0, 0, 0, time.UTC) }
	res, err := a.Export(context.Background(), sampleInput(), time.Time{})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if res.FileName != "Metrics_daily_2023-01-02" {
		t.Errorf("file name = %q", res.FileName)
	}
}

func TestExportFetchFailureWritesNothing(t *testing.T) {
	fetchErr := errors.New("boom")
	writer := &fakeWriter{}
	a := NewAssembler(&fakeDetails{err: fetchErr}, writer)

	_, err := a.Export(context.Background(), sampleInput(), time.Now())
	if !errors.Is(err, fetchErr) {
		t.Fatalf("expected wrapped fetch error, got %v", err)
	}
	if len(writer.names) != 0 {
		t.Errorf("expected no file written, got %v", writer.names)
	}
	if rep := a.Display(sampleInput()); len(rep.Rows) != 2 {
		t.Error("display should still work after a failed export")
	}
}

func TestExportWriteFailure(t *testing.T) {
	writeErr := errors.New("disk full")
	a := NewAssembler(&fakeDetails{}, &fakeWriter{err: writeErr})
	if _, err := a.Export(context.Background(), sampleInput(), time.Now()); !errors.Is(err, writeErr) {
		t.Fatalf("expected wrapped write error, got %v", err)
	}
}

func TestExportRejectsConcurrentExport(t *testing.T) {
	details := &fakeDetails{block: make(chan struct{})}
	a := NewAssembler(details, &fakeWriter{})

	done := make(chan error, 1)
	go func() {
		_, err := a.Export(context.Background(), sampleInput(), time.Now())
		done <- err
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !a.Exporting() {
		if time.Now().After(deadline) {
			t.Fatal("first export never started")
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := a.Export(context.Background(), sampleInput(), time.Now()); !errors.Is(err, ErrExportInProgress) {
		t.Errorf("expected ErrExportInProgress, got %v", err)
	}

	close(details.block)
	if err := <-done; err != nil {
		t.Fatalf("first export failed: %v", err)
	}
	if a.Exporting() {
		t.Error("exporting flag should be cleared")
	}
}

func TestFileName(t *testing.T) {
	got := FileName(model.Monthly, time.Date(2024, 12, 1, 23, 0, 0, 0, time.UTC))
	if got != "Metrics_monthly_2024-12-01" {
		t.Errorf("FileName = %q", got)
	}
}
