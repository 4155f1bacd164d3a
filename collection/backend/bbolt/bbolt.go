// Package bbolt implements a durable collection on top of bbolt.
//
// Every collection name gets its own database file under the data
// directory. Inside it, the collection bucket holds one nested bucket per
// key whose entries are the key's values indexed by an increasing
// sequence number, so values keep their insertion order and duplicates
// are allowed. Keys are scanned in byte order.
//
// Each operation runs in its own short transaction.
package bbolt

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/jrife/warden/collection"
	"github.com/jrife/warden/metrics"
	"github.com/jrife/warden/utils/log"
	"github.com/jrife/warden/utils/keys"
	"github.com/jrife/warden/variables"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

const (
	// DriverName is the plugin name of this backend
	DriverName = "bbolt"
	// FileExtension is appended to the collection name to form its file name
	FileExtension = ".bbolt"
	// DefaultOpenTimeout bounds the wait for the file lock when
	// Options.OpenTimeout is not set
	DefaultOpenTimeout = time.Second
)

// Plugins returns the plugins this package provides
func Plugins() []collection.Plugin {
	return []collection.Plugin{
		&Plugin{},
	}
}

var _ collection.Plugin = (*Plugin)(nil)

// Plugin opens bbolt-backed collections
type Plugin struct {
}

// Name implements collection.Plugin.Name
func (plugin *Plugin) Name() string {
	return DriverName
}

// Open implements collection.Plugin.Open
func (plugin *Plugin) Open(name string, options collection.Options) (collection.Collection, error) {
	return New(name, options)
}

// Path returns the database file of the collection name inside dataDir
func Path(dataDir string, name string) string {
	if dataDir == "" {
		dataDir = os.TempDir()
	}

	return filepath.Join(dataDir, url.PathEscape(name)+FileExtension)
}

var _ collection.Collection = (*Collection)(nil)

// Collection is a durable collection stored in a bbolt database
type Collection struct {
	name    string
	bucket  []byte
	path    string
	db      *bolt.DB
	closed  atomic.Bool
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// New opens the collection name, creating its database file if needed
func New(name string, options collection.Options) (*Collection, error) {
	if name == "" {
		return nil, collection.Unavailable("could not open collection", collection.ErrMalformedKey)
	}

	openTimeout := options.OpenTimeout

	if openTimeout <= 0 {
		openTimeout = DefaultOpenTimeout
	}

	path := Path(options.DataDir, name)
	logger := options.Log().With(log.Collection(name), zap.String("path", path))

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		logger.Error("could not create data directory", zap.Error(err))

		return nil, collection.Unavailable("could not create data directory", err)
	}

	db, err := databases.acquire(path, &bolt.Options{Timeout: openTimeout, NoSync: options.NoSync})

	if err != nil {
		logger.Error("could not open bbolt database", zap.Error(err))

		return nil, collection.Unavailable(fmt.Sprintf("could not open bbolt database at %s", path), err)
	}

	c := &Collection{
		name:    name,
		bucket:  []byte(name),
		path:    path,
		db:      db,
		logger:  logger,
		metrics: options.Metrics,
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(c.bucket)

		return err
	}); err != nil {
		databases.release(path)
		logger.Error("could not ensure collection bucket exists", zap.Error(err))

		return nil, collection.Unavailable("could not ensure collection bucket exists", err)
	}

	return c, nil
}

// Name implements collection.Collection.Name
func (c *Collection) Name() string {
	return c.name
}

// Path returns the database file backing the collection
func (c *Collection) Path() string {
	return c.path
}

func (c *Collection) fail(operation string, key string, err error) {
	c.metrics.StorageError(c.name, operation)
	c.logger.Debug("collection operation failed", log.Operation(operation), log.Key(key), zap.Error(err))
}

func (c *Collection) root(tx *bolt.Tx) (*bolt.Bucket, error) {
	root := tx.Bucket(c.bucket)

	if root == nil {
		return nil, fmt.Errorf("collection bucket %q is missing", c.name)
	}

	return root, nil
}

func (c *Collection) update(operation string, key string, fn func(root *bolt.Bucket) error) bool {
	if c.closed.Load() || key == "" {
		return false
	}

	c.metrics.Operation(c.name, operation)

	if err := c.db.Update(func(tx *bolt.Tx) error {
		root, err := c.root(tx)

		if err != nil {
			return err
		}

		return fn(root)
	}); err != nil {
		c.fail(operation, key, err)

		return false
	}

	return true
}

func (c *Collection) view(operation string, key string, fn func(root *bolt.Bucket) error) {
	if c.closed.Load() {
		return
	}

	if err := c.db.View(func(tx *bolt.Tx) error {
		root, err := c.root(tx)

		if err != nil {
			return err
		}

		return fn(root)
	}); err != nil {
		c.fail(operation, key, err)
	}
}

func store(root *bolt.Bucket, key string, value string) error {
	bucket, err := root.CreateBucketIfNotExists([]byte(key))

	if err != nil {
		return err
	}

	seq, err := bucket.NextSequence()

	if err != nil {
		return err
	}

	k := keys.Uint64ToKey(seq)

	return bucket.Put(k[:], []byte(value))
}

// updateFirst overwrites the entry with the lowest sequence number
func updateFirst(root *bolt.Bucket, key string, value string) (bool, error) {
	bucket := root.Bucket([]byte(key))

	if bucket == nil {
		return false, nil
	}

	k, _ := bucket.Cursor().First()

	if k == nil {
		return false, nil
	}

	return true, bucket.Put(append([]byte(nil), k...), []byte(value))
}

// Store implements collection.Collection.Store
func (c *Collection) Store(key string, value string) {
	c.update("store", key, func(root *bolt.Bucket) error {
		return store(root, key, value)
	})
}

// UpdateFirst implements collection.Collection.UpdateFirst
func (c *Collection) UpdateFirst(key string, value string) bool {
	var updated bool

	if !c.update("update_first", key, func(root *bolt.Bucket) error {
		var err error
		updated, err = updateFirst(root, key, value)

		return err
	}) {
		return false
	}

	return updated
}

// StoreOrUpdateFirst implements collection.Collection.StoreOrUpdateFirst
func (c *Collection) StoreOrUpdateFirst(key string, value string) bool {
	return c.update("store_or_update_first", key, func(root *bolt.Bucket) error {
		updated, err := updateFirst(root, key, value)

		if err != nil || updated {
			return err
		}

		return store(root, key, value)
	})
}

// Delete implements collection.Collection.Delete
func (c *Collection) Delete(key string) {
	c.update("delete", key, func(root *bolt.Bucket) error {
		if err := root.DeleteBucket([]byte(key)); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}

		return nil
	})
}

func appendEntries(entries []collection.Entry, bucket *bolt.Bucket, key string) []collection.Entry {
	cursor := bucket.Cursor()

	for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
		entries = append(entries, collection.Entry{Key: key, Value: string(v)})
	}

	return entries
}

// ResolveFirst implements collection.Collection.ResolveFirst
func (c *Collection) ResolveFirst(key string) (string, bool) {
	var first string
	var ok bool

	if key == "" {
		return "", false
	}

	c.view("resolve_first", key, func(root *bolt.Bucket) error {
		bucket := root.Bucket([]byte(key))

		if bucket == nil {
			return nil
		}

		if k, v := bucket.Cursor().First(); k != nil {
			first, ok = string(v), true
		}

		return nil
	})

	return first, ok
}

func (c *Collection) resolveKey(operation string, key string) []collection.Entry {
	var entries []collection.Entry

	if key == "" {
		return nil
	}

	c.view(operation, key, func(root *bolt.Bucket) error {
		if bucket := root.Bucket([]byte(key)); bucket != nil {
			entries = appendEntries(entries, bucket, key)
		}

		return nil
	})

	return entries
}

// ResolveSingleMatch implements collection.Collection.ResolveSingleMatch
func (c *Collection) ResolveSingleMatch(key string, out []*variables.VariableValue) []*variables.VariableValue {
	return append(out, collection.Values(c.name, c.resolveKey("resolve_single_match", key))...)
}

// scan collects the values of every key under prefix that filter
// visits. Nested buckets are the keys; plain entries in the collection
// bucket are ignored.
func (c *Collection) scan(operation string, prefix string, ke variables.KeyExclusions, filter collection.KeyFilter) []collection.Entry {
	var entries []collection.Entry

	c.view(operation, prefix, func(root *bolt.Bucket) error {
		cursor := root.Cursor()

		for k, v := cursor.Seek([]byte(prefix)); k != nil && bytes.HasPrefix(k, []byte(prefix)); k, v = cursor.Next() {
			if v != nil {
				continue
			}

			key := string(k)

			if !filter.Visit(key, ke) {
				continue
			}

			if bucket := root.Bucket(k); bucket != nil {
				entries = appendEntries(entries, bucket, key)
			}
		}

		return nil
	})

	return entries
}

// ResolveMultiMatches implements collection.Collection.ResolveMultiMatches
func (c *Collection) ResolveMultiMatches(key string, out []*variables.VariableValue, ke variables.KeyExclusions) []*variables.VariableValue {
	if key == "" {
		return collection.Prepend(c.name, out, c.scan("resolve_multi_matches", "", ke, nil))
	}

	if ke.ToOmit(key) {
		return out
	}

	return collection.Prepend(c.name, out, c.resolveKey("resolve_multi_matches", key))
}

// ResolveRegularExpression implements collection.Collection.ResolveRegularExpression
func (c *Collection) ResolveRegularExpression(pattern string, out []*variables.VariableValue, ke variables.KeyExclusions) []*variables.VariableValue {
	filter, ok := collection.PatternFilter(pattern)

	if !ok {
		return out
	}

	return collection.Prepend(c.name, out, c.scan("resolve_regular_expression", "", ke, filter))
}

// ResolvePrefix implements collection.Collection.ResolvePrefix. The
// cursor seeks to prefix and stops at the first key outside it.
func (c *Collection) ResolvePrefix(prefix string, out []*variables.VariableValue, ke variables.KeyExclusions) []*variables.VariableValue {
	return collection.Prepend(c.name, out, c.scan("resolve_prefix", prefix, ke, nil))
}

// Close implements collection.Collection.Close. The database file is
// closed once the last collection using it is closed.
func (c *Collection) Close() error {
	if c.closed.Swap(true) {
		return nil
	}

	if err := databases.release(c.path); err != nil {
		return collection.WrapError("could not close bbolt database", err)
	}

	return nil
}
