package metrics

import (
	"time"

	"github.com/bryan-cox/metricsledger/internal/model"
)

// PeriodStart returns the first day of the period containing date. Weeks
// start on Monday.
func PeriodStart(period model.Period, date time.Time) time.Time {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	switch period {
	case model.Weekly:
		offset := (int(d.Weekday()) + 6) % 7
		return d.AddDate(0, 0, -offset)
	case model.Monthly:
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location())
	default:
		return d
	}
}

// FilterPeriod keeps the records whose period marker falls on the period
// containing date. Records without the relevant marker are kept as they are
// assumed to be pre-filtered by whoever produced them.
func FilterPeriod(records []model.RawMetricRecord, period model.Period, date time.Time) []model.RawMetricRecord {
	want := model.FormatDate(PeriodStart(period, date))
	var out []model.RawMetricRecord
	for _, rec := range records {
		marker := rec.PeriodMarker(period)
		if marker == "" || markerDate(marker) == want {
			out = append(out, rec)
		}
	}
	return out
}

// markerDate trims a timestamp marker down to its date part.
func markerDate(marker string) string {
	if len(marker) > len(model.DateLayout) {
		return marker[:len(model.DateLayout)]
	}
	return marker
}
