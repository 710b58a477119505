package model

// CountKind tags the shape a count value arrived in.
type CountKind int

const (
	// CountAbsent means no usable value: missing, null or an unknown shape.
	CountAbsent CountKind = iota
	// CountLegacy is a bare number, read as completed with nothing skipped.
	CountLegacy
	// CountCurrent is a {completed, skipped} pair.
	CountCurrent
)

func (k CountKind) String() string {
	switch k {
	case CountLegacy:
		return "legacy"
	case CountCurrent:
		return "current"
	default:
		return "absent"
	}
}

// CountValue is a per-category count in one of its accepted shapes.
type CountValue struct {
	Kind CountKind
	// N holds the bare number of a legacy value.
	N int
	// Pair holds a current-shape value.
	Pair CountPair
}

// AbsentCount returns the zero count value.
func AbsentCount() CountValue { return CountValue{} }

// LegacyCount wraps a bare number.
func LegacyCount(n int) CountValue { return CountValue{Kind: CountLegacy, N: n} }

// CurrentCount wraps a {completed, skipped} pair.
func CurrentCount(completed, skipped int) CountValue {
	return CountValue{Kind: CountCurrent, Pair: CountPair{Completed: completed, Skipped: skipped}}
}
