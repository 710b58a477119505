// Package dataset loads report inputs from YAML or JSON files.
package dataset

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bryan-cox/metricsledger/internal/model"
)

// Load reads a dataset file. JSON is accepted as well since it parses as YAML.
func Load(filePath string) (model.Dataset, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return model.Dataset{}, fmt.Errorf("could not read file '%s': %w", filePath, err)
	}
	return Parse(data, filePath)
}

// Parse decodes dataset content. name is only used in error messages.
func Parse(data []byte, name string) (model.Dataset, error) {
	var ds model.Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		safeData, _ := json.Marshal(truncate(string(data), 200))
		return model.Dataset{}, fmt.Errorf("could not parse YAML from '%s': %w. Content: %s", name, err, safeData)
	}
	if err := Validate(&ds); err != nil {
		return model.Dataset{}, fmt.Errorf("invalid dataset '%s': %w", name, err)
	}
	return ds, nil
}

// Validate checks the roster and drops metric records without a user id.
func Validate(ds *model.Dataset) error {
	seen := make(map[model.UserID]bool, len(ds.Users))
	for i, u := range ds.Users {
		if u.ID == "" {
			return fmt.Errorf("user %d has no id", i)
		}
		if seen[u.ID] {
			return fmt.Errorf("user id %q appears more than once in the roster", u.ID)
		}
		seen[u.ID] = true
	}

	kept := ds.Metrics[:0]
	for i, rec := range ds.Metrics {
		if rec.UserID == "" {
			slog.Warn("metric record has no userId, skipping", "index", i)
			continue
		}
		kept = append(kept, rec)
	}
	ds.Metrics = kept

	if ds.Period != "" {
		p, err := model.ParsePeriod(string(ds.Period))
		if err != nil {
			return err
		}
		ds.Period = p
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
