package main

import (
	"fmt"
	"os"

	"github.com/jrife/warden/collection"
	"github.com/jrife/warden/collection/backend/plugins"
	"github.com/jrife/warden/config"
	"github.com/jrife/warden/engine"
	"github.com/jrife/warden/utils/log"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	backend string
	dataDir string
	// compartments scope keys like a transaction does, e.g. client IP
	// and web application id
	compartments []string
)

var rootCmd = &cobra.Command{
	Use:   "wardenctl",
	Short: "Inspect and maintain persisted warden collections",
	Long: `wardenctl opens the collections a warden engine persists with the
bbolt or sqlite backend and reads or edits their keys directly.

Stop the engine first when using bbolt: a database file is locked by
the process that has it open.`,
	Version:       engine.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVarP(&backend, "backend", "b", "", "collection backend, overrides the config file")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "", "data directory, overrides the config file")
	rootCmd.PersistentFlags().StringSliceVarP(&compartments, "compartment", "C", nil, "address keys inside this compartment, at most twice")
}

// loadConfig builds the configuration from the config file, WARDEN_*
// environment variables and the global flags, in increasing precedence.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config

	if cfgFile != "" {
		loaded, err := config.Load(cfgFile)

		if err != nil {
			return nil, err
		}

		cfg = loaded
	} else {
		cfg = config.Default()
		config.ApplyEnvOverrides(cfg)
	}

	if backend != "" {
		cfg.Backend = backend
	}

	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// scope returns the view of c that keys are addressed through. Without
// compartments keys are escaped the same way, so they never collide with
// compartmented ones.
func scope(c collection.Collection) (collection.Collection, error) {
	switch len(compartments) {
	case 0:
		return collection.Bare(c), nil
	case 1:
		return collection.WithCompartment(c, compartments[0]), nil
	case 2:
		return collection.WithCompartments(c, compartments[0], compartments[1]), nil
	}

	return nil, fmt.Errorf("at most two compartments are supported, got %d", len(compartments))
}

// openCollection opens collection name with the configured backend.
// The caller closes it.
func openCollection(name string) (collection.Collection, error) {
	cfg, err := loadConfig()

	if err != nil {
		return nil, err
	}

	plugin := plugins.Plugin(cfg.Backend)

	if plugin == nil {
		return nil, fmt.Errorf("no collection backend named %q", cfg.Backend)
	}

	logger, err := log.New(cfg.Log.Level, cfg.Log.Development)

	if err != nil {
		return nil, err
	}

	c, err := plugin.Open(name, collection.Options{
		DataDir:      cfg.DataDir,
		CapacityHint: cfg.Memory.CapacityHint,
		OpenTimeout:  cfg.BBolt.OpenTimeout,
		NoSync:       cfg.BBolt.NoSync,
		BusyTimeout:  cfg.SQLite.BusyTimeout,
		Logger:       logger,
	})

	if err != nil {
		return nil, fmt.Errorf("could not open collection %s: %w", name, err)
	}

	return c, nil
}
