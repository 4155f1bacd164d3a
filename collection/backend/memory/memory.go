// Package memory implements a process-wide collection kept in a map.
// Nothing survives the process.
//
// Readers never take the guard: they resolve against the snapshot that
// was current when they started. Writers never wait: a mutation that
// cannot take the guard right away, because another write is in
// progress, is dropped and counted as contention. A write publishes a
// new snapshot and never modifies a published one.
package memory

import (
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/jrife/warden/collection"
	"github.com/jrife/warden/metrics"
	"github.com/jrife/warden/utils/log"
	"github.com/jrife/warden/variables"
	"go.uber.org/zap"
)

const (
	// DriverName is the plugin name of this backend
	DriverName = "memory"
	// DefaultCapacityHint is the number of keys a collection is sized for
	DefaultCapacityHint = 1000
)

// Plugins returns the plugins this package provides
func Plugins() []collection.Plugin {
	return []collection.Plugin{
		&Plugin{},
	}
}

var _ collection.Plugin = (*Plugin)(nil)

// Plugin opens in-memory collections
type Plugin struct {
}

// Name implements collection.Plugin.Name
func (plugin *Plugin) Name() string {
	return DriverName
}

// Open implements collection.Plugin.Open. Every call returns a new,
// empty collection.
func (plugin *Plugin) Open(name string, options collection.Options) (collection.Collection, error) {
	return New(name, options), nil
}

// snapshot maps every key to its values. Published snapshots and their
// value slices are never modified.
type snapshot map[string][]string

var _ collection.Collection = (*Collection)(nil)

// Collection is an in-memory collection
type Collection struct {
	name         string
	capacityHint int
	lock         sync.Mutex
	values       atomic.Pointer[snapshot]
	closed       atomic.Bool
	dropped      atomic.Uint64
	logger       *zap.Logger
	metrics      *metrics.Metrics
}

// New creates an empty in-memory collection
func New(name string, options collection.Options) *Collection {
	capacityHint := options.CapacityHint

	if capacityHint <= 0 {
		capacityHint = DefaultCapacityHint
	}

	c := &Collection{
		name:         name,
		capacityHint: capacityHint,
		logger:       options.Log().With(log.Collection(name)),
		metrics:      options.Metrics,
	}

	empty := make(snapshot, capacityHint)
	c.values.Store(&empty)

	return c
}

// Name implements collection.Collection.Name
func (c *Collection) Name() string {
	return c.name
}

// Dropped returns how many writes were dropped because of contention
func (c *Collection) Dropped() uint64 {
	return c.dropped.Load()
}

// CapacityHint returns the number of keys the collection was sized for
func (c *Collection) CapacityHint() int {
	return c.capacityHint
}

// tryWrite runs fn on a copy of the current snapshot while holding the
// guard and publishes the copy if fn changed it. It returns false
// without running fn if the guard is taken or the collection is closed.
func (c *Collection) tryWrite(operation string, fn func(values snapshot) bool) bool {
	if c.closed.Load() {
		return false
	}

	c.metrics.Operation(c.name, operation)

	if !c.lock.TryLock() {
		c.dropped.Add(1)
		c.metrics.ContentionDropped(c.name, operation)
		c.logger.Debug("dropped write under contention", log.Operation(operation))

		return false
	}

	defer c.lock.Unlock()

	if c.closed.Load() {
		return false
	}

	current := *c.values.Load()
	next := make(snapshot, max(c.capacityHint, len(current)+1))
	maps.Copy(next, current)

	if fn(next) {
		c.values.Store(&next)
	}

	return true
}

// read returns the current snapshot, or nil once the collection is closed
func (c *Collection) read() snapshot {
	if c.closed.Load() {
		return nil
	}

	return *c.values.Load()
}

// with returns a new slice holding values followed by value
func with(values []string, value string) []string {
	return append(slices.Clip(values), value)
}

func updateFirst(values snapshot, key string, value string) bool {
	current := values[key]

	if len(current) == 0 {
		return false
	}

	updated := slices.Clone(current)
	updated[0] = value
	values[key] = updated

	return true
}

// Store implements collection.Collection.Store
func (c *Collection) Store(key string, value string) {
	if key == "" {
		return
	}

	c.tryWrite("store", func(values snapshot) bool {
		values[key] = with(values[key], value)

		return true
	})
}

// UpdateFirst implements collection.Collection.UpdateFirst
func (c *Collection) UpdateFirst(key string, value string) bool {
	var updated bool

	c.tryWrite("update_first", func(values snapshot) bool {
		updated = updateFirst(values, key, value)

		return updated
	})

	return updated
}

// StoreOrUpdateFirst implements collection.Collection.StoreOrUpdateFirst.
// It reports success even when the write was dropped.
func (c *Collection) StoreOrUpdateFirst(key string, value string) bool {
	if key == "" {
		return false
	}

	c.tryWrite("store_or_update_first", func(values snapshot) bool {
		if !updateFirst(values, key, value) {
			values[key] = with(values[key], value)
		}

		return true
	})

	return true
}

// Delete implements collection.Collection.Delete
func (c *Collection) Delete(key string) {
	c.tryWrite("delete", func(values snapshot) bool {
		if _, ok := values[key]; !ok {
			return false
		}

		delete(values, key)

		return true
	})
}

// ResolveFirst implements collection.Collection.ResolveFirst
func (c *Collection) ResolveFirst(key string) (string, bool) {
	if values := c.read()[key]; len(values) > 0 {
		return values[0], true
	}

	return "", false
}

// ResolveSingleMatch implements collection.Collection.ResolveSingleMatch
func (c *Collection) ResolveSingleMatch(key string, out []*variables.VariableValue) []*variables.VariableValue {
	for _, value := range c.read()[key] {
		out = append(out, variables.NewWithCollection(c.name, key, value))
	}

	return out
}

// scan collects the values of every key filter visits in ascending
// key order, the order the durable backends scan in.
func (c *Collection) scan(ke variables.KeyExclusions, filter collection.KeyFilter) []collection.Entry {
	values := c.read()
	keys := make([]string, 0, len(values))

	for key := range values {
		if filter.Visit(key, ke) {
			keys = append(keys, key)
		}
	}

	slices.Sort(keys)

	var entries []collection.Entry

	for _, key := range keys {
		for _, value := range values[key] {
			entries = append(entries, collection.Entry{Key: key, Value: value})
		}
	}

	return entries
}

// ResolveMultiMatches implements collection.Collection.ResolveMultiMatches
func (c *Collection) ResolveMultiMatches(key string, out []*variables.VariableValue, ke variables.KeyExclusions) []*variables.VariableValue {
	if key == "" {
		return collection.Prepend(c.name, out, c.scan(ke, nil))
	}

	if ke.ToOmit(key) {
		return out
	}

	return variables.Prepend(out, c.ResolveSingleMatch(key, nil))
}

// ResolveRegularExpression implements collection.Collection.ResolveRegularExpression
func (c *Collection) ResolveRegularExpression(pattern string, out []*variables.VariableValue, ke variables.KeyExclusions) []*variables.VariableValue {
	filter, ok := collection.PatternFilter(pattern)

	if !ok {
		return out
	}

	return collection.Prepend(c.name, out, c.scan(ke, filter))
}

// ResolvePrefix implements collection.Collection.ResolvePrefix
func (c *Collection) ResolvePrefix(prefix string, out []*variables.VariableValue, ke variables.KeyExclusions) []*variables.VariableValue {
	return collection.Prepend(c.name, out, c.scan(ke, collection.PrefixFilter(prefix)))
}

// Close implements collection.Collection.Close. It waits for an
// in-flight write and empties the collection.
func (c *Collection) Close() error {
	if c.closed.Swap(true) {
		return nil
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	empty := snapshot{}
	c.values.Store(&empty)

	return nil
}
