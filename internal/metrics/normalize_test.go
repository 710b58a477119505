package metrics

import (
	"encoding/json"
	"testing"

	"github.com/bryan-cox/metricsledger/internal/model"
)

func TestParseCountValue(t *testing.T) {
	tests := []struct {
		name   string
		raw    any
		want   model.CountPair
		wantOK bool
	}{
		{name: "nil is absent", raw: nil, want: model.CountPair{}, wantOK: true},
		{name: "bare int", raw: 2, want: model.CountPair{Completed: 2}, wantOK: true},
		{name: "bare float from json", raw: float64(4), want: model.CountPair{Completed: 4}, wantOK: true},
		{name: "json number", raw: json.Number("7"), want: model.CountPair{Completed: 7}, wantOK: true},
		{name: "pair", raw: map[string]any{"completed": 3, "skipped": 1}, want: model.CountPair{Completed: 3, Skipped: 1}, wantOK: true},
		{name: "pair missing skipped", raw: map[string]any{"completed": 3}, want: model.CountPair{Completed: 3}, wantOK: true},
		{name: "empty pair", raw: map[string]any{}, want: model.CountPair{}, wantOK: true},
		{name: "yaml any-keyed map", raw: map[any]any{"completed": 1, "skipped": 2}, want: model.CountPair{Completed: 1, Skipped: 2}, wantOK: true},
		{name: "negative clamps to zero", raw: map[string]any{"completed": -3, "skipped": -1}, want: model.CountPair{}, wantOK: true},
		{name: "float beyond int range is unknown", raw: float64(1e20), want: model.CountPair{}, wantOK: false},
		{name: "negative float beyond int range is unknown", raw: float64(-1e20), want: model.CountPair{}, wantOK: false},
		{name: "json number beyond int range is unknown", raw: json.Number("1e20"), want: model.CountPair{}, wantOK: false},
		{name: "large float inside int range", raw: float64(1 << 40), want: model.CountPair{Completed: 1 << 40}, wantOK: true},
		{name: "string is unknown", raw: "3", want: model.CountPair{}, wantOK: false},
		{name: "list is unknown", raw: []any{1, 2}, want: model.CountPair{}, wantOK: false},
		{name: "bool is unknown", raw: true, want: model.CountPair{}, wantOK: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cv, ok := ParseCountValue(tc.raw)
			if ok != tc.wantOK {
				t.Errorf("ok = %v, want %v", ok, tc.wantOK)
			}
			if got := Normalize(cv); got != tc.want {
				t.Errorf("Normalize() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestNormalizeLegacyMatchesCurrent(t *testing.T) {
	for _, n := range []int{0, 1, 2, 17} {
		legacy := Normalize(model.LegacyCount(n))
		current := Normalize(model.CurrentCount(n, 0))
		if legacy != current {
			t.Errorf("legacy %d normalized to %+v, current to %+v", n, legacy, current)
		}
	}
}

func TestNormalizeAbsent(t *testing.T) {
	if got := Normalize(model.AbsentCount()); got != (model.CountPair{}) {
		t.Errorf("expected zero pair, got %+v", got)
	}
}
