package collection

import (
	"strings"

	"github.com/jrife/warden/variables"
)

// Separator joins the components of a compartmented key
const Separator = "::"

var escaper = strings.NewReplacer(`\`, `\\`, `:`, `\:`)

// ComposeKey joins compartments and key into one physical key. Each
// component is escaped first so that distinct component tuples never
// compose to the same key.
func ComposeKey(key string, compartments ...string) string {
	var builder strings.Builder

	for _, compartment := range compartments {
		builder.WriteString(escaper.Replace(compartment))
		builder.WriteString(Separator)
	}

	builder.WriteString(escaper.Replace(key))

	return builder.String()
}

// unescape reverses the escaping of one component. It returns false if
// s holds more than one component.
func unescape(s string) (string, bool) {
	if !strings.ContainsAny(s, `\:`) {
		return s, true
	}

	var builder strings.Builder

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ':':
			return "", false
		case '\\':
			i++

			if i == len(s) {
				return "", false
			}
		}

		builder.WriteByte(s[i])
	}

	return builder.String(), true
}

// Bare returns a view of c that escapes keys like compartment
// components, so a bare key can never be read as a compartmented one.
// Compartmented keys are invisible through it.
func Bare(c Collection) Collection {
	return &compartmented{base: c}
}

// WithCompartment returns a view of c that confines every key to
// compartment.
func WithCompartment(c Collection, compartment string) Collection {
	return &compartmented{base: c, compartments: []string{compartment}}
}

// WithCompartments returns a view of c that confines every key to
// compartment2 inside compartment.
func WithCompartments(c Collection, compartment string, compartment2 string) Collection {
	return &compartmented{base: c, compartments: []string{compartment, compartment2}}
}

var _ Collection = (*compartmented)(nil)

type compartmented struct {
	base         Collection
	compartments []string
}

func (c *compartmented) key(key string) (string, bool) {
	if key == "" {
		return "", false
	}

	return ComposeKey(key, c.compartments...), true
}

func (c *compartmented) prefix() string {
	return ComposeKey("", c.compartments...)
}

// leaf strips the compartment prefix from a physical key
func (c *compartmented) leaf(key string) (string, bool) {
	prefix := c.prefix()

	if !strings.HasPrefix(key, prefix) {
		return "", false
	}

	return unescape(key[len(prefix):])
}

// rekey rewrites values resolved through the base collection so they
// carry leaf keys. Values whose key is not a leaf of this compartment
// or that filter rejects are dropped. Order is preserved.
func (c *compartmented) rekey(values []*variables.VariableValue, ke variables.KeyExclusions, filter KeyFilter) []*variables.VariableValue {
	result := values[:0]

	for _, v := range values {
		leaf, ok := c.leaf(v.Key())

		if !ok || !filter.Visit(leaf, ke) {
			continue
		}

		rekeyed := variables.NewWithCollection(v.Collection(), leaf, v.Value())

		for _, origin := range v.Origins() {
			rekeyed.AddOrigin(origin)
		}

		result = append(result, rekeyed)
	}

	return result
}

func (c *compartmented) Name() string {
	return c.base.Name()
}

func (c *compartmented) Store(key string, value string) {
	if key, ok := c.key(key); ok {
		c.base.Store(key, value)
	}
}

func (c *compartmented) UpdateFirst(key string, value string) bool {
	key, ok := c.key(key)

	if !ok {
		return false
	}

	return c.base.UpdateFirst(key, value)
}

func (c *compartmented) StoreOrUpdateFirst(key string, value string) bool {
	key, ok := c.key(key)

	if !ok {
		return false
	}

	return c.base.StoreOrUpdateFirst(key, value)
}

func (c *compartmented) Delete(key string) {
	if key, ok := c.key(key); ok {
		c.base.Delete(key)
	}
}

func (c *compartmented) ResolveFirst(key string) (string, bool) {
	key, ok := c.key(key)

	if !ok {
		return "", false
	}

	return c.base.ResolveFirst(key)
}

func (c *compartmented) ResolveSingleMatch(key string, out []*variables.VariableValue) []*variables.VariableValue {
	physical, ok := c.key(key)

	if !ok {
		return out
	}

	return append(out, c.rekey(c.base.ResolveSingleMatch(physical, nil), nil, nil)...)
}

// scan resolves every key under the compartment prefix followed by the
// escaped leaf prefix. The result is in prepend order already, so callers
// put it in front of out as is.
func (c *compartmented) scan(leafPrefix string, ke variables.KeyExclusions, filter KeyFilter) []*variables.VariableValue {
	values := c.base.ResolvePrefix(c.prefix()+escaper.Replace(leafPrefix), nil, nil)

	return c.rekey(values, ke, filter)
}

func (c *compartmented) ResolveMultiMatches(key string, out []*variables.VariableValue, ke variables.KeyExclusions) []*variables.VariableValue {
	if key == "" {
		return append(c.scan("", ke, nil), out...)
	}

	if ke.ToOmit(key) {
		return out
	}

	physical, _ := c.key(key)

	return append(c.rekey(c.base.ResolveMultiMatches(physical, nil, nil), nil, nil), out...)
}

func (c *compartmented) ResolveRegularExpression(pattern string, out []*variables.VariableValue, ke variables.KeyExclusions) []*variables.VariableValue {
	filter, ok := PatternFilter(pattern)

	if !ok {
		return out
	}

	return append(c.scan("", ke, filter), out...)
}

func (c *compartmented) ResolvePrefix(prefix string, out []*variables.VariableValue, ke variables.KeyExclusions) []*variables.VariableValue {
	return append(c.scan(prefix, ke, nil), out...)
}

// Close does nothing. The base collection outlives its views.
func (c *compartmented) Close() error {
	return nil
}
