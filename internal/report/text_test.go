package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bryan-cox/metricsledger/internal/metrics"
	"github.com/bryan-cox/metricsledger/internal/model"
)

func sampleReport() metrics.Report {
	return metrics.BuildReport(metrics.Input{
		Users: []model.UserRef{{ID: "1", Name: "Ada"}, {ID: "2", Name: "Bob"}},
		Metrics: []model.RawMetricRecord{
			{UserID: "1", AreaName: "Unit 100", Comments: "line\twith tab",
				Counts: map[string]any{"PID": map[string]any{"Redline": map[string]any{"completed": 3, "skipped": 1}}}, TotalBlocks: 5},
			{UserID: "2", Counts: map[string]any{"PID": map[string]any{"Redline": 2}}, TotalBlocks: 1},
		},
		Period: model.Daily,
	})
}

func TestRows(t *testing.T) {
	rows := Rows(sampleReport())
	if len(rows) != 3 {
		t.Fatalf("expected 2 rows plus footer, got %d", len(rows))
	}
	if len(rows[0]) != len(Headers()) {
		t.Errorf("row has %d cells, header has %d", len(rows[0]), len(Headers()))
	}
	if rows[0][2] != "3 / 1" || rows[1][2] != "2 / 0" {
		t.Errorf("Redline PIDs cells = %q, %q", rows[0][2], rows[1][2])
	}
	footer := rows[2]
	if footer[0] != TotalLabel || footer[2] != "5 / 1" {
		t.Errorf("unexpected footer %v", footer)
	}
	if footer[len(footer)-2] != "6" {
		t.Errorf("footer blocks = %q, want 6", footer[len(footer)-2])
	}
}

func TestRenderTable(t *testing.T) {
	var b bytes.Buffer
	RenderTable(&b, sampleReport(), "2024-05-16")
	out := b.String()
	for _, want := range []string{"Metrics Report (daily, 2024-05-16)", "Redline PIDs", "Ada", "Unit 100", "3 / 1", TotalLabel} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestRenderTableEmptyRoster(t *testing.T) {
	var b bytes.Buffer
	RenderTable(&b, metrics.BuildReport(metrics.Input{Period: model.Weekly}), "2024-05-13")
	if !strings.Contains(b.String(), "No users in roster.") {
		t.Errorf("unexpected output %q", b.String())
	}
}

func TestTSV(t *testing.T) {
	lines := strings.Split(strings.TrimRight(TSV(sampleReport()), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, 2 rows and footer, got %d lines", len(lines))
	}
	header := strings.Split(lines[0], "\t")
	if header[2] != "Redline PIDs - Completed" || header[3] != "Redline PIDs - Skipped" {
		t.Errorf("unexpected header %v", header[:4])
	}
	first := strings.Split(lines[1], "\t")
	if len(first) != len(header) {
		t.Fatalf("row has %d cells, header has %d", len(first), len(header))
	}
	if first[len(first)-1] != "line with tab" {
		t.Errorf("tab in comment not escaped: %q", first[len(first)-1])
	}
	footer := strings.Split(lines[3], "\t")
	if footer[0] != TotalLabel || footer[2] != "5" || footer[3] != "1" {
		t.Errorf("unexpected footer %v", footer[:4])
	}
}
