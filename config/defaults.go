package config

import (
	"os"
	"time"

	"github.com/jrife/warden/collection/backend/memory"
	"github.com/jrife/warden/metrics"
)

// Default values for configuration fields
const (
	DefaultBackend           = "bbolt"
	DefaultCapacityHint      = memory.DefaultCapacityHint
	DefaultTXCapacityHint    = 32
	DefaultBBoltOpenTimeout  = time.Second
	DefaultSQLiteBusyTimeout = 5 * time.Second
	DefaultLogLevel          = "info"
	DefaultMetricsNamespace  = metrics.DefaultNamespace
	DefaultMetricsSubsystem  = metrics.DefaultSubsystem
)

// Default returns a configuration with every field at its default
func Default() *Config {
	var cfg Config

	ApplyDefaults(&cfg)

	return &cfg
}

// ApplyDefaults fills in every field left at its zero value
func ApplyDefaults(cfg *Config) {
	if cfg.Backend == "" {
		cfg.Backend = DefaultBackend
	}

	if cfg.DataDir == "" {
		cfg.DataDir = os.TempDir()
	}

	if cfg.Memory.CapacityHint == 0 {
		cfg.Memory.CapacityHint = DefaultCapacityHint
	}

	if cfg.Memory.TXCapacityHint == 0 {
		cfg.Memory.TXCapacityHint = DefaultTXCapacityHint
	}

	if cfg.BBolt.OpenTimeout == 0 {
		cfg.BBolt.OpenTimeout = DefaultBBoltOpenTimeout
	}

	if cfg.SQLite.BusyTimeout == 0 {
		cfg.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}

	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = DefaultMetricsSubsystem
	}
}
