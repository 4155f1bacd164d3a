// Package engine owns the process-wide collections and starts
// transactions against them.
package engine

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/jrife/warden/collection"
	"github.com/jrife/warden/collection/backend/memory"
	"github.com/jrife/warden/collection/backend/plugins"
	"github.com/jrife/warden/config"
	"github.com/jrife/warden/metrics"
	"github.com/jrife/warden/transaction"
	"github.com/jrife/warden/utils/log"
	"github.com/jrife/warden/utils/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Version is the version reported by WhoAmI
const Version = "0.1.0"

// Option customizes an Engine
type Option func(e *Engine)

// WithLogger sets the logger. The default is built from the log
// section of the configuration.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithRegisterer registers the collection metrics with registerer. By
// default metrics are collected but not registered.
func WithRegisterer(registerer prometheus.Registerer) Option {
	return func(e *Engine) {
		e.registerer = registerer
	}
}

// WithGenerator sets the generator transaction identifiers are drawn
// from when the context of NewTransaction carries none.
func WithGenerator(generator uuid.Generator) Option {
	return func(e *Engine) {
		e.generator = generator
	}
}

// WithPlugin stores the shared collections with plugin instead of the
// configured backend.
func WithPlugin(plugin collection.Plugin) Option {
	return func(e *Engine) {
		e.plugin = plugin
	}
}

// Engine is the entry point of a connector
type Engine struct {
	cfg        *config.Config
	logger     *zap.Logger
	registerer prometheus.Registerer
	metrics    *metrics.Metrics
	generator  uuid.Generator
	plugin     collection.Plugin
	shared     collection.Set
	whoami     string

	mu        sync.RWMutex
	connector string
	closed    bool
}

// New opens the shared collections with the configured backend. It
// fails with collection.ErrStorageUnavailable if any of them cannot be
// opened, in which case those already opened are closed again.
func New(cfg *config.Config, options ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	e := &Engine{
		cfg:       cfg,
		generator: uuid.RandomGenerator{},
		whoami:    fmt.Sprintf("warden v%s (%s)", Version, runtime.GOOS),
	}

	for _, option := range options {
		option(e)
	}

	if e.logger == nil {
		logger, err := log.New(cfg.Log.Level, cfg.Log.Development)

		if err != nil {
			return nil, fmt.Errorf("could not create logger: %w", err)
		}

		e.logger = logger
	}

	if e.plugin == nil {
		e.plugin = plugins.Plugin(cfg.Backend)

		if e.plugin == nil {
			return nil, fmt.Errorf("no collection backend named %q", cfg.Backend)
		}
	}

	e.metrics = metrics.New(e.registerer, cfg.Metrics.Namespace, cfg.Metrics.Subsystem)

	for _, name := range collection.SharedNames {
		c, err := e.plugin.Open(name, e.collectionOptions())

		if err != nil {
			e.logger.Error("could not open collection", log.Collection(name), zap.String("backend", e.plugin.Name()), zap.Error(err))
			e.shared.Close()

			return nil, collection.Unavailable(fmt.Sprintf("could not open collection %s", name), err)
		}

		e.shared.Put(name, c)
	}

	e.logger.Info("engine started", zap.String("whoami", e.whoami), zap.String("backend", e.plugin.Name()), zap.String("data_dir", cfg.DataDir))

	return e, nil
}

func (e *Engine) collectionOptions() collection.Options {
	return collection.Options{
		DataDir:      e.cfg.DataDir,
		CapacityHint: e.cfg.Memory.CapacityHint,
		OpenTimeout:  e.cfg.BBolt.OpenTimeout,
		NoSync:       e.cfg.BBolt.NoSync,
		BusyTimeout:  e.cfg.SQLite.BusyTimeout,
		Logger:       e.logger,
		Metrics:      e.metrics,
	}
}

// WhoAmI describes this build and platform, e.g. "warden v0.1.0 (linux)".
// Log parsers depend on its format; only ever append to it.
func (e *Engine) WhoAmI() string {
	return e.whoami
}

// SetConnectorInformation records which connector uses the engine,
// preferably as "ConnectorName vX.Y.Z-tag (something else)".
func (e *Engine) SetConnectorInformation(connector string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.connector = connector
}

// ConnectorInformation returns what SetConnectorInformation recorded
func (e *Engine) ConnectorInformation() string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.connector
}

// Logger returns the engine logger
func (e *Engine) Logger() *zap.Logger {
	return e.logger
}

// Metrics returns the collection metrics
func (e *Engine) Metrics() *metrics.Metrics {
	return e.metrics
}

// Collections returns the shared collections
func (e *Engine) Collections() collection.Set {
	return e.shared
}

// NewTransaction starts a transaction. Its identifier comes from the
// generator attached to ctx with uuid.WithGenerator, or from the engine
// generator.
func (e *Engine) NewTransaction(ctx context.Context) (*transaction.Transaction, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return nil, collection.ErrClosed
	}

	id := uuid.GeneratorFromContext(ctx, e.generator).NewID()
	_, ctx = log.LoggerFromContext(ctx, e.logger)

	options := e.collectionOptions()
	options.Logger = e.logger.With(log.TransactionID(id))
	options.CapacityHint = e.cfg.Memory.TXCapacityHint

	tx := memory.New(collection.TX, options)
	collections := collection.NewCollections(e.shared, tx, e.cfg.WebAppID)

	return transaction.New(ctx, id, collections), nil
}

// Close closes the shared collections. Transactions still running
// resolve nothing from them afterwards.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}

	e.closed = true
	e.logger.Info("engine stopped")

	return e.shared.Close()
}
