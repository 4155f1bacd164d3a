package collection

import (
	"strings"
)

// Names of the collections a transaction can address
const (
	Global   = "GLOBAL"
	IP       = "IP"
	Session  = "SESSION"
	User     = "USER"
	Resource = "RESOURCE"
	TX       = "TX"
)

// SharedNames lists the process-wide collections in the order the
// engine opens them.
var SharedNames = []string{Global, IP, Session, User, Resource}

// Set holds the process-wide collections shared by every transaction
type Set struct {
	Global   Collection
	IP       Collection
	Session  Collection
	User     Collection
	Resource Collection
}

// Get returns the shared collection with this name
func (set Set) Get(name string) Collection {
	switch strings.ToUpper(name) {
	case Global:
		return set.Global
	case IP:
		return set.IP
	case Session:
		return set.Session
	case User:
		return set.User
	case Resource:
		return set.Resource
	}

	return nil
}

// Put sets the shared collection with this name. It returns false if
// name is not a shared collection.
func (set *Set) Put(name string, c Collection) bool {
	switch strings.ToUpper(name) {
	case Global:
		set.Global = c
	case IP:
		set.IP = c
	case Session:
		set.Session = c
	case User:
		set.User = c
	case Resource:
		set.Resource = c
	default:
		return false
	}

	return true
}

// Close closes every shared collection and returns the first error
func (set Set) Close() error {
	var firstErr error

	for _, name := range SharedNames {
		c := set.Get(name)

		if c == nil {
			continue
		}

		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = WrapError("could not close "+name, err)
		}
	}

	return firstErr
}

// Collections is the view one transaction has of the collections. Shared
// collections are only addressable once bound to a key, e.g. the client
// IP for IP, and every access is confined to the compartment of that key
// and the web application.
type Collections struct {
	shared   Set
	tx       Collection
	webAppID string
	keys     map[string]string
}

// NewCollections creates the view of one transaction. tx is owned by the
// view and closed with it.
func NewCollections(shared Set, tx Collection, webAppID string) *Collections {
	return &Collections{
		shared:   shared,
		tx:       tx,
		webAppID: webAppID,
		keys:     map[string]string{},
	}
}

// Bind addresses the shared collection name with key. It returns false if
// name is not a shared collection or key is empty.
func (collections *Collections) Bind(name string, key string) bool {
	name = strings.ToUpper(name)

	if key == "" || collections.shared.Get(name) == nil {
		return false
	}

	collections.keys[name] = key

	return true
}

// Key returns the key name is bound to
func (collections *Collections) Key(name string) (string, bool) {
	key, ok := collections.keys[strings.ToUpper(name)]

	return key, ok
}

// WebAppID returns the web application compartment
func (collections *Collections) WebAppID() string {
	return collections.webAppID
}

// TX returns the transaction collection
func (collections *Collections) TX() Collection {
	return collections.tx
}

// Lookup returns the collection with this name. Shared collections are
// returned as a view confined to their bound key. It returns false for
// unknown or unbound names.
func (collections *Collections) Lookup(name string) (Collection, bool) {
	name = strings.ToUpper(name)

	if name == TX {
		return collections.tx, collections.tx != nil
	}

	key, ok := collections.keys[name]

	if !ok {
		return nil, false
	}

	base := collections.shared.Get(name)

	if collections.webAppID == "" {
		return WithCompartment(base, key), true
	}

	return WithCompartments(base, key, collections.webAppID), true
}

// Close discards the transaction collection. Shared collections are
// left open.
func (collections *Collections) Close() error {
	if collections.tx == nil {
		return nil
	}

	err := collections.tx.Close()
	collections.tx = nil
	collections.keys = map[string]string{}

	return err
}
