// Package store reads report inputs from Postgres.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/bryan-cox/metricsledger/internal/metrics"
	"github.com/bryan-cox/metricsledger/internal/model"
)

var schemaPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

func sanitizeSchema(value string) (string, error) {
	schema := strings.ToLower(strings.TrimSpace(value))
	if schema == "" {
		return "", errors.New("database schema is required")
	}
	if !schemaPattern.MatchString(schema) {
		return "", fmt.Errorf("invalid database schema %q", value)
	}
	return schema, nil
}

// markerColumn returns the metric_records column holding the period marker.
func markerColumn(period model.Period) string {
	switch period {
	case model.Weekly:
		return "week_start"
	case model.Monthly:
		return "month_start"
	default:
		return "date"
	}
}

// Store loads rosters, metric records and block totals from one schema.
type Store struct {
	db     *sql.DB
	schema string
}

// Open connects to url with the pgx driver and checks the connection.
func Open(ctx context.Context, url, schema string) (*Store, error) {
	if url == "" {
		return nil, errors.New("database URL missing; set METRICSLEDGER_DB_URL or DATABASE_URL")
	}
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, err
	}
	s, err := New(db, schema)
	if err != nil {
		db.Close()
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 12*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	return s, nil
}

// New wraps an open database handle.
func New(db *sql.DB, schema string) (*Store, error) {
	schema, err := sanitizeSchema(schema)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, schema: schema}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load reads the inputs for the period containing date.
func (s *Store) Load(ctx context.Context, period model.Period, date time.Time) (model.Dataset, error) {
	ds := model.Dataset{Period: period, Date: model.FormatDate(date)}

	users, err := s.loadUsers(ctx)
	if err != nil {
		return ds, err
	}
	ds.Users = users

	records, err := s.loadRecords(ctx, period, metrics.PeriodStart(period, date))
	if err != nil {
		return ds, err
	}
	ds.Metrics = records

	totals, err := s.loadBlockTotals(ctx)
	if err != nil {
		return ds, err
	}
	ds.BlockTotals = totals
	return ds, nil
}

func (s *Store) loadUsers(ctx context.Context) ([]model.UserRef, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT id::text, name FROM %s.users ORDER BY name, id`, s.schema))
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []model.UserRef
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, model.UserRef{ID: model.UserID(id), Name: name})
	}
	return users, rows.Err()
}

// recordsQuery selects the records of one period in insertion order, which
// decides the first area and the comment order of each user.
func recordsQuery(schema string, period model.Period) string {
	return fmt.Sprintf(`
		SELECT user_id::text, date, week_start, month_start, counts, total_blocks, area_no, area_name, comments
		FROM %s.metric_records
		WHERE %s = $1
		ORDER BY created_at, id`, schema, markerColumn(period))
}

func (s *Store) loadRecords(ctx context.Context, period model.Period, start time.Time) ([]model.RawMetricRecord, error) {
	query := recordsQuery(s.schema, period)
	rows, err := s.db.QueryContext(ctx, query, start)
	if err != nil {
		return nil, fmt.Errorf("failed to query metric records: %w", err)
	}
	defer rows.Close()

	var records []model.RawMetricRecord
	for rows.Next() {
		var (
			userID                      string
			date, weekStart, monthStart sql.NullTime
			counts                      []byte
			totalBlocks                 sql.NullInt64
			areaNo, areaName, comments  sql.NullString
		)
		if err := rows.Scan(&userID, &date, &weekStart, &monthStart, &counts, &totalBlocks, &areaNo, &areaName, &comments); err != nil {
			return nil, fmt.Errorf("failed to scan metric record: %w", err)
		}
		rec := model.RawMetricRecord{
			UserID:      model.UserID(userID),
			Date:        formatNullDate(date),
			WeekStart:   formatNullDate(weekStart),
			MonthStart:  formatNullDate(monthStart),
			TotalBlocks: nullBlocks(totalBlocks),
			AreaNo:      areaNo.String,
			AreaName:    areaName.String,
			Comments:    comments.String,
		}
		if len(counts) > 0 {
			if err := json.Unmarshal(counts, &rec.Counts); err != nil {
				// The record still counts toward blocks and comments.
				slog.Warn("could not decode metric counts, counting as zero", "user", userID, "error", err)
				rec.Counts = nil
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) loadBlockTotals(ctx context.Context) (model.BlockTotals, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT user_id::text, daily, weekly, monthly FROM %s.block_totals`, s.schema))
	if err != nil {
		return nil, fmt.Errorf("failed to query block totals: %w", err)
	}
	defer rows.Close()

	totals := model.BlockTotals{}
	for rows.Next() {
		var userID string
		var daily, weekly, monthly sql.NullInt64
		if err := rows.Scan(&userID, &daily, &weekly, &monthly); err != nil {
			return nil, fmt.Errorf("failed to scan block totals: %w", err)
		}
		totals[model.UserID(userID)] = model.BlockCounts{
			Daily:   nullInt(daily),
			Weekly:  nullInt(weekly),
			Monthly: nullInt(monthly),
		}
	}
	return totals, rows.Err()
}

// nullBlocks leaves a NULL total_blocks unset so it counts as zero.
func nullBlocks(v sql.NullInt64) any {
	if !v.Valid {
		return nil
	}
	return int(v.Int64)
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func formatNullDate(v sql.NullTime) string {
	if !v.Valid {
		return ""
	}
	return model.FormatDate(v.Time)
}
