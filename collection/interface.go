package collection

import (
	"errors"
	"time"

	"github.com/jrife/warden/metrics"
	"github.com/jrife/warden/variables"
	"go.uber.org/zap"
)

var (
	// ErrStorageUnavailable indicates that a backend could not open or
	// access its store. It is only ever returned while opening a collection.
	ErrStorageUnavailable = errors.New("collection storage is unavailable")
	// ErrMalformedKey indicates that a key could not be encoded for the
	// backend. Operations treat it like a missing key.
	ErrMalformedKey = errors.New("malformed collection key")
	// ErrClosed indicates that the collection was closed
	ErrClosed = errors.New("collection was closed")
)

// Collection is one named namespace of multi-valued keys. Every key maps
// to an ordered sequence of values. Operations never return backend
// errors: a failed write is dropped and a failed read resolves nothing.
//
// Resolutions that may return values for several keys prepend every match
// to out, so values from the last key scanned come first.
type Collection interface {
	// Name returns the collection name, e.g. "IP"
	Name() string
	// Store appends value to the values of key
	Store(key string, value string)
	// UpdateFirst replaces the earliest value of key. It returns false
	// and does nothing if key has no values.
	UpdateFirst(key string, value string) bool
	// StoreOrUpdateFirst replaces the earliest value of key or stores
	// value if there is none.
	StoreOrUpdateFirst(key string, value string) bool
	// Delete removes key and all its values
	Delete(key string)
	// ResolveFirst returns the earliest value of key
	ResolveFirst(key string) (string, bool)
	// ResolveSingleMatch appends every value of key to out in the order
	// they were stored.
	ResolveSingleMatch(key string, out []*variables.VariableValue) []*variables.VariableValue
	// ResolveMultiMatches prepends the values of key to out, or the values
	// of every key when key is empty. Excluded keys are skipped.
	ResolveMultiMatches(key string, out []*variables.VariableValue, ke variables.KeyExclusions) []*variables.VariableValue
	// ResolveRegularExpression prepends the values of every non-excluded
	// key that pattern matches. Matching is case-sensitive and an invalid
	// pattern matches nothing.
	ResolveRegularExpression(pattern string, out []*variables.VariableValue, ke variables.KeyExclusions) []*variables.VariableValue
	// ResolvePrefix prepends the values of every non-excluded key that
	// starts with prefix. An empty prefix matches every key.
	ResolvePrefix(prefix string, out []*variables.VariableValue, ke variables.KeyExclusions) []*variables.VariableValue
	// Close releases the collection. Operations after Close resolve
	// nothing and store nothing.
	Close() error
}

// Plugin is a collection backend
type Plugin interface {
	// Name returns the name of the backend
	Name() string
	// Open returns the collection with this name, creating its store
	// if needed. Errors wrap ErrStorageUnavailable.
	Open(name string, options Options) (Collection, error)
}

// Options configures an opened collection. Backends ignore the
// fields that do not apply to them.
type Options struct {
	// DataDir is where durable backends keep their files
	DataDir string
	// CapacityHint sizes in-memory maps up front
	CapacityHint int
	// OpenTimeout bounds how long a durable backend waits for its file lock
	OpenTimeout time.Duration
	// NoSync skips fsync on commit
	NoSync bool
	// BusyTimeout bounds how long a statement waits on a locked database
	BusyTimeout time.Duration
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
}

// Log returns the configured logger or the global one
func (options Options) Log() *zap.Logger {
	if options.Logger == nil {
		return zap.L()
	}

	return options.Logger
}
