// Package metrics exposes Prometheus counters for collection backends.
//
// Metrics:
//   - <namespace>_<subsystem>_contention_dropped_total: writes dropped by the
//     in-memory backend because another goroutine held the guard
//   - <namespace>_<subsystem>_storage_errors_total: backend errors swallowed
//     by the collection failure policy
//   - <namespace>_<subsystem>_operations_total: mutating operations attempted
//
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// DefaultNamespace is the metric namespace used when none is configured
	DefaultNamespace = "warden"
	// DefaultSubsystem is the metric subsystem used when none is configured
	DefaultSubsystem = "collections"
)

var labels = []string{"collection", "operation"}

// Metrics groups the collection counters
type Metrics struct {
	contentionDropped *prometheus.CounterVec
	storageErrors     *prometheus.CounterVec
	operations        *prometheus.CounterVec
}

// New creates the collection counters and registers them with
// registerer. Counters already registered under the same names are
// reused, so several engines may share one registry. A nil registerer
// leaves the counters unregistered.
func New(registerer prometheus.Registerer, namespace string, subsystem string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	if subsystem == "" {
		subsystem = DefaultSubsystem
	}

	m := &Metrics{
		contentionDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "contention_dropped_total",
				Help:      "Total number of collection writes dropped because of lock contention",
			},
			labels,
		),
		storageErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "storage_errors_total",
				Help:      "Total number of collection backend errors",
			},
			labels,
		),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "operations_total",
				Help:      "Total number of mutating collection operations",
			},
			labels,
		),
	}

	if registerer == nil {
		return m
	}

	m.contentionDropped = register(registerer, m.contentionDropped)
	m.storageErrors = register(registerer, m.storageErrors)
	m.operations = register(registerer, m.operations)

	return m
}

func register(registerer prometheus.Registerer, counter *prometheus.CounterVec) *prometheus.CounterVec {
	err := registerer.Register(counter)

	if err == nil {
		return counter
	}

	var alreadyRegistered prometheus.AlreadyRegisteredError

	if errors.As(err, &alreadyRegistered) {
		if existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec); ok {
			return existing
		}
	}

	// Conflicting descriptors. Keep counting, just not exported.
	return counter
}

// ContentionDropped records a write lost to contention
func (m *Metrics) ContentionDropped(collection string, operation string) {
	if m == nil {
		return
	}

	m.contentionDropped.WithLabelValues(collection, operation).Inc()
}

// StorageError records a swallowed backend error
func (m *Metrics) StorageError(collection string, operation string) {
	if m == nil {
		return
	}

	m.storageErrors.WithLabelValues(collection, operation).Inc()
}

// Operation records an attempted mutating operation
func (m *Metrics) Operation(collection string, operation string) {
	if m == nil {
		return
	}

	m.operations.WithLabelValues(collection, operation).Inc()
}
