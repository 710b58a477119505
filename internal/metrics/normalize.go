// Package metrics turns raw per-user work records into report rows, column
// totals and flat export records.
package metrics

import (
	"encoding/json"
	"math"

	"github.com/bryan-cox/metricsledger/internal/model"
)

// ParseCountValue classifies a loosely typed count as decoded from YAML or
// JSON. Anything that is neither a number nor a mapping is reported as
// absent with ok set to false, so callers can log it.
func ParseCountValue(raw any) (cv model.CountValue, ok bool) {
	if raw == nil {
		return model.AbsentCount(), true
	}
	if n, isNum := toInt(raw); isNum {
		return model.LegacyCount(n), true
	}
	fields, isMap := toStringMap(raw)
	if !isMap {
		return model.AbsentCount(), false
	}
	completed, _ := toInt(fields["completed"])
	skipped, _ := toInt(fields["skipped"])
	return model.CurrentCount(completed, skipped), true
}

// Normalize converts a count value into its canonical pair. Negative
// figures are clamped to zero.
func Normalize(cv model.CountValue) model.CountPair {
	switch cv.Kind {
	case model.CountLegacy:
		return model.CountPair{Completed: nonNegative(cv.N)}
	case model.CountCurrent:
		return model.CountPair{
			Completed: nonNegative(cv.Pair.Completed),
			Skipped:   nonNegative(cv.Pair.Skipped),
		}
	default:
		return model.CountPair{}
	}
}

// maxIntFloat is math.MaxInt+1, the smallest float too large for an int.
const maxIntFloat = float64(math.MaxInt/2+1) * 2

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// toInt reads a decoded number. Fractions are truncated toward zero; floats
// outside the int range are rejected.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		if n > math.MaxInt {
			return math.MaxInt, true
		}
		return int(n), true
	case float64:
		if math.IsNaN(n) || n >= maxIntFloat || n < -maxIntFloat {
			return 0, false
		}
		return int(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		if f, err := n.Float64(); err == nil {
			return toInt(f)
		}
		return 0, false
	default:
		return 0, false
	}
}

// toStringMap accepts the two map shapes yaml.v3 and encoding/json produce.
func toStringMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			s, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[s] = val
		}
		return out, true
	default:
		return nil, false
	}
}
