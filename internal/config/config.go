// Package config defines the typed runtime configuration of the pipeline and
// binds it from viper, which layers command-line flags, TCG_* environment
// variables, and an optional YAML config file in that precedence order.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Defaults applied when neither flags, environment, nor config file set a value.
const (
	DefaultInputPath   = "data/pokemon_cards.csv"
	DefaultCleanedPath = "data/pokemon_cards_cleaned.csv"
	DefaultBackupDir   = "data/backups"
	DefaultDriver      = "sqlite"
	DefaultDSN         = "pokemon_cards.db"
	DefaultMetricsJob  = "tcg-etl"
)

// Config is the resolved runtime configuration.
type Config struct {
	// InputPath is the source CSV file.
	InputPath string

	// CleanedPath receives the cleaned-batch CSV audit copy. Empty disables it.
	CleanedPath string

	// BackupDir receives a timestamped copy of the raw input before each run.
	// Empty disables backups.
	BackupDir string

	Storage Storage
	Metrics Metrics
}

// Storage selects the database backend.
type Storage struct {
	// Driver is a registered storage driver name ("sqlite" or "postgres").
	Driver string

	// DSN is the database location: a file path for sqlite, a connection
	// string for postgres.
	DSN string
}

// Metrics configures the optional Pushgateway backend. An empty GatewayURL
// leaves metrics disabled.
type Metrics struct {
	GatewayURL string
	Job        string
}

// FromViper reads the resolved settings out of the global viper instance and
// applies defaults for anything unset. The cleaned and backup-dir paths are
// optional features: setting them explicitly to "" disables them, so their
// defaults apply only when the key was never set at all.
func FromViper(v *viper.Viper) Config {
	cfg := Config{
		InputPath:   stringOr(v, "input", DefaultInputPath),
		CleanedPath: optionalPath(v, "cleaned", DefaultCleanedPath),
		BackupDir:   optionalPath(v, "backup-dir", DefaultBackupDir),
		Storage: Storage{
			Driver: stringOr(v, "driver", DefaultDriver),
			DSN:    stringOr(v, "dsn", DefaultDSN),
		},
		Metrics: Metrics{
			GatewayURL: v.GetString("metrics-gateway"),
			Job:        stringOr(v, "metrics-job", DefaultMetricsJob),
		},
	}
	return cfg
}

// Validate reports the first configuration problem found.
func (c Config) Validate() error {
	if c.InputPath == "" {
		return fmt.Errorf("config: input path is required")
	}
	switch strings.ToLower(c.Storage.Driver) {
	case "sqlite", "postgres":
	case "":
		return fmt.Errorf("config: storage driver is required")
	default:
		return fmt.Errorf("config: unknown storage driver %q (want sqlite or postgres)", c.Storage.Driver)
	}
	if c.Storage.DSN == "" {
		return fmt.Errorf("config: storage dsn is required")
	}
	return nil
}

func stringOr(v *viper.Viper, key, def string) string {
	if s := v.GetString(key); s != "" {
		return s
	}
	return def
}

// optionalPath keeps an explicit empty value as "disabled". IsSet skips
// unchanged flag defaults, so only a changed flag, env var, or config-file
// entry counts as set.
func optionalPath(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}
