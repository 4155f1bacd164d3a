// Package transaction holds the state of one inspected request and
// response: its anchored variables and its view of the collections.
//
// A Transaction is owned by the goroutine processing it and is not safe
// for concurrent use.
package transaction

import (
	"context"
	"strings"

	"github.com/jrife/warden/collection"
	"github.com/jrife/warden/utils/log"
	"github.com/jrife/warden/variables"
	"github.com/jrife/warden/variables/anchored"
	"go.uber.org/zap"
)

// Transaction is one request/response exchange
type Transaction struct {
	id          string
	ctx         context.Context
	logger      *zap.Logger
	collections *collection.Collections
	variables   map[string]*anchored.Variable
	sets        *anchored.Registry
	proxies     map[string]*anchored.TranslationProxy
	// offset is where the next header starts in the raw request
	offset int
}

// New creates a transaction with every anchored variable empty except
// UNIQUE_ID. The transaction takes ownership of collections.
func New(ctx context.Context, id string, collections *collection.Collections) *Transaction {
	ctx = log.WithTransaction(ctx, id)
	logger, ctx := log.LoggerFromContext(ctx, zap.L())

	t := &Transaction{
		id:          id,
		ctx:         ctx,
		logger:      log.WithContext(ctx, logger),
		collections: collections,
		variables:   make(map[string]*anchored.Variable, len(VariableNames)),
		sets:        anchored.NewRegistry(),
		proxies:     make(map[string]*anchored.TranslationProxy, len(ProxyFounts)),
	}

	for _, name := range VariableNames {
		t.variables[name] = anchored.NewVariable(name)
	}

	for _, name := range SetVariableNames {
		t.sets.Add(name)
	}

	for name, fount := range ProxyFounts {
		t.proxies[name] = anchored.NewTranslationProxy(name, t.sets, t.sets.Add(fount))
	}

	t.variables[VariableUniqueID].Set(id, 0)
	t.logger.Debug("transaction started")

	return t
}

// ID returns the transaction identifier
func (t *Transaction) ID() string {
	return t.id
}

// Context returns the context of the transaction. It carries the
// transaction logger and its transaction_id field.
func (t *Transaction) Context() context.Context {
	return t.ctx
}

// Logger returns the transaction logger
func (t *Transaction) Logger() *zap.Logger {
	return t.logger
}

// Collections returns the view of the collections of this transaction
func (t *Transaction) Collections() *collection.Collections {
	return t.collections
}

// Collection returns the collection name as this transaction sees it
func (t *Transaction) Collection(name string) (collection.Collection, bool) {
	return t.collections.Lookup(name)
}

// Variable returns the single-valued anchored variable name or nil
func (t *Transaction) Variable(name string) *anchored.Variable {
	return t.variables[strings.ToUpper(name)]
}

// SetVariable returns the multi-valued anchored variable name or nil
func (t *Transaction) SetVariable(name string) *anchored.SetVariable {
	return t.sets.Lookup(strings.ToUpper(name))
}

// Proxy returns the key-name view name or nil
func (t *Transaction) Proxy(name string) *anchored.TranslationProxy {
	return t.proxies[strings.ToUpper(name)]
}

// selector is a parsed variable reference: NAME, NAME:key or
// NAME:/pattern/
type selector struct {
	name    string
	key     string
	pattern string
}

func parseSelector(reference string) selector {
	name, key, _ := strings.Cut(reference, ":")
	s := selector{name: strings.ToUpper(name)}

	if len(key) > 1 && strings.HasPrefix(key, "/") && strings.HasSuffix(key, "/") {
		s.pattern = key[1 : len(key)-1]
	} else {
		s.key = key
	}

	return s
}

// Resolve resolves reference against whichever variable or collection
// it names, so callers need not know where a variable lives. reference
// is NAME for every value, NAME:key for the values of one key or
// NAME:/pattern/ for the values of every key pattern matches. Excluded
// keys are skipped. Unknown names resolve nothing.
func (t *Transaction) Resolve(reference string, out []*variables.VariableValue, ke variables.KeyExclusions) []*variables.VariableValue {
	s := parseSelector(reference)

	if s.key != "" && ke.ToOmit(s.key) {
		return out
	}

	if v, ok := t.variables[s.name]; ok {
		return v.EvaluateVariableValues(out)
	}

	if set := t.sets.Lookup(s.name); set != nil {
		switch {
		case s.pattern != "":
			return set.ResolveRegularExpressionWithExclusions(s.pattern, out, ke)
		case s.key != "":
			return set.ResolveByKey(s.key, out)
		}

		return set.ResolveWithExclusions(out, ke)
	}

	if proxy, ok := t.proxies[s.name]; ok {
		switch {
		case s.pattern != "":
			return proxy.ResolveRegularExpressionWithExclusions(s.pattern, out, ke)
		case s.key != "":
			return proxy.ResolveByKey(s.key, out)
		}

		return proxy.ResolveWithExclusions(out, ke)
	}

	if c, ok := t.collections.Lookup(s.name); ok {
		if s.pattern != "" {
			return c.ResolveRegularExpression(s.pattern, out, ke)
		}

		return c.ResolveMultiMatches(s.key, out, ke)
	}

	t.logger.Debug("unknown variable", zap.String("variable", s.name))

	return out
}

// Close discards the anchored variables and the TX collection
func (t *Transaction) Close() error {
	for _, v := range t.variables {
		v.Unset()
	}

	t.sets.Unset()

	if err := t.collections.Close(); err != nil {
		t.logger.Debug("could not close transaction collections", zap.Error(err))

		return err
	}

	t.logger.Debug("transaction closed")

	return nil
}
