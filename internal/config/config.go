// Package config resolves MetricsLedger settings from a config file, the
// environment and defaults.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds the resolved settings.
type Config struct {
	APIBaseURL     string
	APIToken       string
	APITimeout     time.Duration
	ExportDir      string
	DatabaseURL    string
	DatabaseSchema string
}

// Setting keys.
const (
	KeyAPIBaseURL     = "api.base_url"
	KeyAPIToken       = "api.token"
	KeyAPITimeout     = "api.timeout"
	KeyExportDir      = "export.dir"
	KeyDatabaseURL    = "database.url"
	KeyDatabaseSchema = "database.schema"
)

// SetDefaults registers defaults and environment bindings on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyAPIBaseURL, "http://localhost:5000/api")
	v.SetDefault(KeyAPITimeout, "10s")
	v.SetDefault(KeyExportDir, ".")
	v.SetDefault(KeyDatabaseSchema, "metricsledger")

	_ = v.BindEnv(KeyAPIToken, "METRICS_API_TOKEN")
	_ = v.BindEnv(KeyAPIBaseURL, "METRICS_API_URL")
	_ = v.BindEnv(KeyDatabaseURL, "METRICSLEDGER_DB_URL", "DATABASE_URL")
}

// Init points v at cfgFile, or at $HOME/.metricsledger/config.yaml when
// cfgFile is empty, and reads it. A missing config file is not an error.
func Init(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		return v.ReadInConfig()
	}
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".metricsledger"))
	}
	v.SetConfigType("yaml")
	v.SetConfigName("config")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}
	return nil
}

// Load reads the resolved settings out of v.
func Load(v *viper.Viper) Config {
	return Config{
		APIBaseURL:     v.GetString(KeyAPIBaseURL),
		APIToken:       v.GetString(KeyAPIToken),
		APITimeout:     v.GetDuration(KeyAPITimeout),
		ExportDir:      v.GetString(KeyExportDir),
		DatabaseURL:    v.GetString(KeyDatabaseURL),
		DatabaseSchema: v.GetString(KeyDatabaseSchema),
	}
}
