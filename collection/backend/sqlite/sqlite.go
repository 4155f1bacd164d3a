// Package sqlite implements a durable collection on top of SQLite.
//
// Every collection name gets its own database file under the data
// directory with a single table of (entry_key, seq, entry_value) rows. seq only ever
// grows, so ordering by it yields the values of a key in insertion order.
// Keys are scanned in byte order.
package sqlite

import (
	"database/sql"
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
	"github.com/jrife/warden/variables"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	// DriverName is the plugin name of this backend
	DriverName = "sqlite"
	// FileExtension is appended to the collection name to form its file name
	FileExtension = ".sqlite"
	// DefaultBusyTimeout bounds how long a statement waits for a lock
	DefaultBusyTimeout = 5 * time.Second
)

const schema = `
CREATE TABLE IF NOT EXISTS collection_values (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	entry_key TEXT NOT NULL,
	entry_value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_collection_values_key ON collection_values(entry_key, seq);
`

// Plugins returns the plugins this package provides
func Plugins() []collection.Plugin {
	return []collection.Plugin{
		&Plugin{},
	}
}

var _ collection.Plugin = (*Plugin)(nil)

// Plugin opens SQLite-backed collections
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

// Collection is a durable collection stored in a SQLite database
type Collection struct {
	name    string
	path    string
	db      *sql.DB
	closed  atomic.Bool
	logger  *zap.Logger
	metrics *metrics.Metrics

	storeStmt       *sql.Stmt
	updateFirstStmt *sql.Stmt
	deleteStmt      *sql.Stmt
	firstStmt       *sql.Stmt
	keyStmt         *sql.Stmt
	allStmt         *sql.Stmt
	fromStmt        *sql.Stmt
	rangeStmt       *sql.Stmt
}

// New opens the collection name, creating its database file if needed
func New(name string, options collection.Options) (*Collection, error) {
	if name == "" {
		return nil, collection.Unavailable("could not open collection", collection.ErrMalformedKey)
	}

	busyTimeout := options.BusyTimeout

	if busyTimeout <= 0 {
		busyTimeout = DefaultBusyTimeout
	}

	path := Path(options.DataDir, name)
	logger := options.Log().With(log.Collection(name), zap.String("path", path))

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		logger.Error("could not create data directory", zap.Error(err))

		return nil, collection.Unavailable("could not create data directory", err)
	}

	synchronous := "NORMAL"

	if options.NoSync {
		synchronous = "OFF"
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=synchronous(%s)",
		path, busyTimeout.Milliseconds(), synchronous)

	db, err := sql.Open("sqlite", dsn)

	if err != nil {
		logger.Error("could not open sqlite database", zap.Error(err))

		return nil, collection.Unavailable("could not open sqlite database", err)
	}

	// SQLite only supports a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	c := &Collection{
		name:    name,
		path:    path,
		db:      db,
		logger:  logger,
		metrics: options.Metrics,
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		logger.Error("could not initialize schema", zap.Error(err))

		return nil, collection.Unavailable("could not initialize schema", err)
	}

	if err := c.prepareStatements(); err != nil {
		db.Close()
		logger.Error("could not prepare statements", zap.Error(err))

		return nil, collection.Unavailable("could not prepare statements", err)
	}

	return c, nil
}

func (c *Collection) prepareStatements() error {
	var err error

	statements := []struct {
		stmt  **sql.Stmt
		query string
	}{
		{&c.storeStmt, `INSERT INTO collection_values (entry_key, entry_value) VALUES (?, ?)`},
		{&c.updateFirstStmt, `
			UPDATE collection_values SET entry_value = ?
			WHERE seq = (SELECT MIN(seq) FROM collection_values WHERE entry_key = ?)`},
		{&c.deleteStmt, `DELETE FROM collection_values WHERE entry_key = ?`},
		{&c.firstStmt, `SELECT entry_value FROM collection_values WHERE entry_key = ? ORDER BY seq LIMIT 1`},
		{&c.keyStmt, `SELECT entry_key, entry_value FROM collection_values WHERE entry_key = ? ORDER BY seq`},
		{&c.allStmt, `SELECT entry_key, entry_value FROM collection_values ORDER BY entry_key, seq`},
		{&c.fromStmt, `SELECT entry_key, entry_value FROM collection_values WHERE entry_key >= ? ORDER BY entry_key, seq`},
		{&c.rangeStmt, `SELECT entry_key, entry_value FROM collection_values WHERE entry_key >= ? AND entry_key < ? ORDER BY entry_key, seq`},
	}

	for _, statement := range statements {
		if *statement.stmt, err = c.db.Prepare(statement.query); err != nil {
			return fmt.Errorf("could not prepare %q: %w", statement.query, err)
		}
	}

	return nil
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

func (c *Collection) writable(operation string, key string) bool {
	if c.closed.Load() || key == "" {
		return false
	}

	c.metrics.Operation(c.name, operation)

	return true
}

// Store implements collection.Collection.Store
func (c *Collection) Store(key string, value string) {
	if !c.writable("store", key) {
		return
	}

	if _, err := c.storeStmt.Exec(key, value); err != nil {
		c.fail("store", key, err)
	}
}

func updateFirst(stmt *sql.Stmt, key string, value string) (bool, error) {
	result, err := stmt.Exec(value, key)

	if err != nil {
		return false, err
	}

	n, err := result.RowsAffected()

	if err != nil {
		return false, err
	}

	return n > 0, nil
}

// UpdateFirst implements collection.Collection.UpdateFirst
func (c *Collection) UpdateFirst(key string, value string) bool {
	if !c.writable("update_first", key) {
		return false
	}

	updated, err := updateFirst(c.updateFirstStmt, key, value)

	if err != nil {
		c.fail("update_first", key, err)

		return false
	}

	return updated
}

// StoreOrUpdateFirst implements collection.Collection.StoreOrUpdateFirst
func (c *Collection) StoreOrUpdateFirst(key string, value string) bool {
	if !c.writable("store_or_update_first", key) {
		return false
	}

	if err := c.storeOrUpdateFirst(key, value); err != nil {
		c.fail("store_or_update_first", key, err)

		return false
	}

	return true
}

func (c *Collection) storeOrUpdateFirst(key string, value string) error {
	tx, err := c.db.Begin()

	if err != nil {
		return err
	}

	defer tx.Rollback()

	updated, err := updateFirst(tx.Stmt(c.updateFirstStmt), key, value)

	if err != nil {
		return err
	}

	if !updated {
		if _, err := tx.Stmt(c.storeStmt).Exec(key, value); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Delete implements collection.Collection.Delete
func (c *Collection) Delete(key string) {
	if !c.writable("delete", key) {
		return
	}

	if _, err := c.deleteStmt.Exec(key); err != nil {
		c.fail("delete", key, err)
	}
}

// ResolveFirst implements collection.Collection.ResolveFirst
func (c *Collection) ResolveFirst(key string) (string, bool) {
	if c.closed.Load() || key == "" {
		return "", false
	}

	var value string

	if err := c.firstStmt.QueryRow(key).Scan(&value); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			c.fail("resolve_first", key, err)
		}

		return "", false
	}

	return value, true
}

// query collects the rows of stmt whose key filter visits
func (c *Collection) query(operation string, key string, ke variables.KeyExclusions, filter collection.KeyFilter, stmt *sql.Stmt, args ...any) []collection.Entry {
	if c.closed.Load() {
		return nil
	}

	rows, err := stmt.Query(args...)

	if err != nil {
		c.fail(operation, key, err)

		return nil
	}

	defer rows.Close()

	var entries []collection.Entry

	for rows.Next() {
		var entry collection.Entry

		if err := rows.Scan(&entry.Key, &entry.Value); err != nil {
			c.fail(operation, key, err)

			return nil
		}

		if filter.Visit(entry.Key, ke) {
			entries = append(entries, entry)
		}
	}

	if err := rows.Err(); err != nil {
		c.fail(operation, key, err)

		return nil
	}

	return entries
}

// ResolveSingleMatch implements collection.Collection.ResolveSingleMatch
func (c *Collection) ResolveSingleMatch(key string, out []*variables.VariableValue) []*variables.VariableValue {
	if key == "" {
		return out
	}

	return append(out, collection.Values(c.name, c.query("resolve_single_match", key, nil, nil, c.keyStmt, key))...)
}

// ResolveMultiMatches implements collection.Collection.ResolveMultiMatches
func (c *Collection) ResolveMultiMatches(key string, out []*variables.VariableValue, ke variables.KeyExclusions) []*variables.VariableValue {
	if key == "" {
		return collection.Prepend(c.name, out, c.query("resolve_multi_matches", key, ke, nil, c.allStmt))
	}

	if ke.ToOmit(key) {
		return out
	}

	return collection.Prepend(c.name, out, c.query("resolve_multi_matches", key, nil, nil, c.keyStmt, key))
}

// ResolveRegularExpression implements collection.Collection.ResolveRegularExpression
func (c *Collection) ResolveRegularExpression(pattern string, out []*variables.VariableValue, ke variables.KeyExclusions) []*variables.VariableValue {
	filter, ok := collection.PatternFilter(pattern)

	if !ok {
		return out
	}

	return collection.Prepend(c.name, out, c.query("resolve_regular_expression", "", ke, filter, c.allStmt))
}

// prefixEnd returns the smallest key greater than every key starting
// with prefix. It returns false if there is none.
func prefixEnd(prefix string) (string, bool) {
	end := []byte(prefix)

	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++

			return string(end[:i+1]), true
		}
	}

	return "", false
}

// ResolvePrefix implements collection.Collection.ResolvePrefix
func (c *Collection) ResolvePrefix(prefix string, out []*variables.VariableValue, ke variables.KeyExclusions) []*variables.VariableValue {
	filter := collection.PrefixFilter(prefix)

	if end, ok := prefixEnd(prefix); ok {
		return collection.Prepend(c.name, out, c.query("resolve_prefix", prefix, ke, filter, c.rangeStmt, prefix, end))
	}

	return collection.Prepend(c.name, out, c.query("resolve_prefix", prefix, ke, filter, c.fromStmt, prefix))
}

// Close implements collection.Collection.Close
func (c *Collection) Close() error {
	if c.closed.Swap(true) {
		return nil
	}

	for _, stmt := range []*sql.Stmt{c.storeStmt, c.updateFirstStmt, c.deleteStmt, c.firstStmt, c.keyStmt, c.allStmt, c.fromStmt, c.rangeStmt} {
		stmt.Close()
	}

	if err := c.db.Close(); err != nil {
		return collection.WrapError("could not close sqlite database", err)
	}

	return nil
}
