// Package config loads the configuration of the collection layer from YAML
package config

import (
	"time"
)

// Config is the root configuration
type Config struct {
	// Backend names the collection plugin that stores the shared
	// collections: memory, bbolt or sqlite.
	Backend string `yaml:"backend"`

	// DataDir is where durable backends keep one file per collection.
	// Defaults to the system temporary directory.
	DataDir string `yaml:"data_dir"`

	// WebAppID compartments every shared collection per web application
	WebAppID string `yaml:"web_app_id"`

	Memory  MemoryConfig  `yaml:"memory"`
	BBolt   BBoltConfig   `yaml:"bbolt"`
	SQLite  SQLiteConfig  `yaml:"sqlite"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// MemoryConfig configures the in-memory backend
type MemoryConfig struct {
	// CapacityHint is the number of keys each collection is sized for
	CapacityHint int `yaml:"capacity_hint"`
	// TXCapacityHint sizes the per-transaction TX collection, which
	// rarely holds more than a handful of keys
	TXCapacityHint int `yaml:"tx_capacity_hint"`
}

// BBoltConfig configures the bbolt backend
type BBoltConfig struct {
	// OpenTimeout bounds the wait for the database file lock
	OpenTimeout time.Duration `yaml:"open_timeout"`

	// NoSync skips fsync after each commit
	NoSync bool `yaml:"no_sync"`
}

// SQLiteConfig configures the sqlite backend
type SQLiteConfig struct {
	// BusyTimeout bounds the wait on a locked database
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// LogConfig configures logging
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level"`

	// Development switches to the human-friendly console encoder
	Development bool `yaml:"development"`
}

// MetricsConfig configures the Prometheus collectors
type MetricsConfig struct {
	Namespace string `yaml:"namespace"`
	Subsystem string `yaml:"subsystem"`
}
