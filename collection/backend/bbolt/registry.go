package bbolt

import (
	"sync"

	bolt "go.etcd.io/bbolt"
)

// bbolt holds an exclusive file lock per open database, so every
// collection of the process that lives in the same file must share one
// *bolt.DB.
var databases = &registry{dbs: map[string]*sharedDB{}}

type sharedDB struct {
	db   *bolt.DB
	refs int
}

type registry struct {
	mu  sync.Mutex
	dbs map[string]*sharedDB
}

// acquire returns the database at path, opening it on first use
func (r *registry) acquire(path string, options *bolt.Options) (*bolt.DB, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if shared, ok := r.dbs[path]; ok {
		shared.refs++

		return shared.db, nil
	}

	db, err := bolt.Open(path, 0600, options)

	if err != nil {
		return nil, err
	}

	r.dbs[path] = &sharedDB{db: db, refs: 1}

	return db, nil
}

// release drops one reference to the database at path and closes it
// once nobody uses it.
func (r *registry) release(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	shared, ok := r.dbs[path]

	if !ok {
		return nil
	}

	shared.refs--

	if shared.refs > 0 {
		return nil
	}

	delete(r.dbs, path)

	return shared.db.Close()
}
