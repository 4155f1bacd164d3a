package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration at path, applies defaults and
// WARDEN_* environment overrides, then validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	return Parse(data)
}

// Parse is Load for configuration already in memory
func Parse(data []byte) (*Config, error) {
	var cfg Config

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	ApplyDefaults(&cfg)
	ApplyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyEnvOverrides applies environment variable overrides. Variables
// follow WARDEN_SECTION_FIELD. Values that do not parse are ignored.
func ApplyEnvOverrides(cfg *Config) {
	if val := os.Getenv("WARDEN_BACKEND"); val != "" {
		cfg.Backend = val
	}
	if val := os.Getenv("WARDEN_DATA_DIR"); val != "" {
		cfg.DataDir = val
	}
	if val := os.Getenv("WARDEN_WEB_APP_ID"); val != "" {
		cfg.WebAppID = val
	}
	if val := os.Getenv("WARDEN_MEMORY_CAPACITY_HINT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Memory.CapacityHint = i
		}
	}
	if val := os.Getenv("WARDEN_MEMORY_TX_CAPACITY_HINT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Memory.TXCapacityHint = i
		}
	}
	if val := os.Getenv("WARDEN_BBOLT_OPEN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.BBolt.OpenTimeout = d
		}
	}
	if val := os.Getenv("WARDEN_BBOLT_NO_SYNC"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.BBolt.NoSync = b
		}
	}
	if val := os.Getenv("WARDEN_SQLITE_BUSY_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.SQLite.BusyTimeout = d
		}
	}
	if val := os.Getenv("WARDEN_LOG_LEVEL"); val != "" {
		cfg.Log.Level = val
	}
	if val := os.Getenv("WARDEN_LOG_DEVELOPMENT"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Log.Development = b
		}
	}
	if val := os.Getenv("WARDEN_METRICS_NAMESPACE"); val != "" {
		cfg.Metrics.Namespace = val
	}
	if val := os.Getenv("WARDEN_METRICS_SUBSYSTEM"); val != "" {
		cfg.Metrics.Subsystem = val
	}
}
