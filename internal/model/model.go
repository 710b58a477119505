// Package model defines the core data structures for MetricsLedger.
package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Period is the reporting granularity.
type Period string

// Reporting periods.
const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
)

// ParsePeriod validates a period name, case-insensitively.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case Daily, Weekly, Monthly:
		return p, nil
	default:
		return "", fmt.Errorf("invalid period %q, use daily, weekly or monthly", s)
	}
}

// UserID is a user identity. Identities are always compared as strings,
// but may arrive as bare numbers in roster files.
type UserID string

// UnmarshalYAML accepts both scalar strings and numbers.
func (u *UserID) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("user id must be a scalar, got %v at line %d", value.Tag, value.Line)
	}
	*u = UserID(strings.TrimSpace(value.Value))
	return nil
}

// UnmarshalJSON accepts both JSON strings and numbers.
func (u *UserID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*u = UserID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("user id must be a string or number: %w", err)
	}
	*u = UserID(n.String())
	return nil
}

// UserRef is a roster entry. The roster defines which rows exist in a report.
type UserRef struct {
	ID   UserID `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// RawMetricRecord is one user's contribution for a reporting period.
//
// Counts and TotalBlocks are left loosely typed on purpose: Counts normally
// decodes to map[string]any of itemType -> taskType -> count value and
// TotalBlocks to a number, but older records and broken producers can put
// anything there. A bad value only zeroes that record's contribution.
type RawMetricRecord struct {
	UserID      UserID `yaml:"userId" json:"userId"`
	Date        string `yaml:"date,omitempty" json:"date,omitempty"`
	WeekStart   string `yaml:"week_start,omitempty" json:"week_start,omitempty"`
	MonthStart  string `yaml:"month_start,omitempty" json:"month_start,omitempty"`
	Counts      any    `yaml:"counts" json:"counts"`
	TotalBlocks any    `yaml:"totalBlocks" json:"totalBlocks"`
	AreaNo      string `yaml:"areaNo,omitempty" json:"areaNo,omitempty"`
	AreaName    string `yaml:"areaName,omitempty" json:"areaName,omitempty"`
	Comments    string `yaml:"comments,omitempty" json:"comments,omitempty"`
}

// PeriodMarker returns the marker relevant for the given period.
func (r RawMetricRecord) PeriodMarker(p Period) string {
	switch p {
	case Weekly:
		return r.WeekStart
	case Monthly:
		return r.MonthStart
	default:
		return r.Date
	}
}

// BlockCounts is the authoritative block count for one user. A nil field
// means the source has no figure for that period yet.
type BlockCounts struct {
	Daily   *int `yaml:"daily,omitempty" json:"daily,omitempty"`
	Weekly  *int `yaml:"weekly,omitempty" json:"weekly,omitempty"`
	Monthly *int `yaml:"monthly,omitempty" json:"monthly,omitempty"`
}

// For returns the count for a period and whether it is known.
func (b BlockCounts) For(p Period) (int, bool) {
	var v *int
	switch p {
	case Daily:
		v = b.Daily
	case Weekly:
		v = b.Weekly
	case Monthly:
		v = b.Monthly
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

// BlockTotals maps users to their authoritative block counts.
type BlockTotals map[UserID]BlockCounts

// Lookup returns blockTotals[user][period] if present.
func (t BlockTotals) Lookup(user UserID, p Period) (int, bool) {
	counts, ok := t[user]
	if !ok {
		return 0, false
	}
	return counts.For(p)
}

// CountPair is the canonical per-column count.
type CountPair struct {
	Completed int `yaml:"completed" json:"completed"`
	Skipped   int `yaml:"skipped" json:"skipped"`
}

// Add returns the field-wise sum of two pairs.
func (c CountPair) Add(o CountPair) CountPair {
	return CountPair{Completed: c.Completed + o.Completed, Skipped: c.Skipped + o.Skipped}
}

// AggregatedRow is one roster user's aggregated figures for a period.
type AggregatedRow struct {
	UserID      UserID               `json:"userId"`
	Name        string               `json:"name"`
	AreaName    *string              `json:"areaName,omitempty"`
	Comments    *string              `json:"comments,omitempty"`
	Counts      map[string]CountPair `json:"counts"`
	Blocks      int                  `json:"blocks"`
	TotalBlocks int                  `json:"totalBlocks"`
}

// Pair returns the row's pair for a column key. ok is false when the row
// carries no pair for that key.
func (r AggregatedRow) Pair(key string) (CountPair, bool) {
	p, ok := r.Counts[key]
	return p, ok
}

// ColumnTotals is the footer of a display table.
type ColumnTotals struct {
	Counts      map[string]CountPair `json:"counts"`
	TotalBlocks int                  `json:"totalBlocks"`
}

// Identifier is a PID, equipment or line number. Producers send them as
// strings or bare numbers.
type Identifier string

// UnmarshalJSON accepts both JSON strings and numbers.
func (id *Identifier) UnmarshalJSON(data []byte) error {
	var u UserID
	if err := u.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("identifier must be a string or number: %w", err)
	}
	*id = Identifier(u)
	return nil
}

// JoinIdentifiers joins identifiers with sep.
func JoinIdentifiers(ids []Identifier, sep string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, sep)
}

// DetailRecord lists the identifiers a user actually worked on.
type DetailRecord struct {
	UserID           UserID       `json:"userId"`
	PIDNumbers       []Identifier `json:"pidNumbers"`
	EquipmentNumbers []Identifier `json:"equipmentNumbers"`
	LineNumbers      []Identifier `json:"lineNumbers"`
}

// Dataset bundles the inputs of one report run.
type Dataset struct {
	Period      Period            `yaml:"period" json:"period"`
	Date        string            `yaml:"date" json:"date"`
	Users       []UserRef         `yaml:"users" json:"users"`
	Metrics     []RawMetricRecord `yaml:"metrics" json:"metrics"`
	BlockTotals BlockTotals       `yaml:"blockTotals" json:"blockTotals"`
}

// DateLayout is the ISO date format used in file names and API parameters.
const DateLayout = "2006-01-02"

// FormatDate formats t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
