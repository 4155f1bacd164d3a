package anchored

import (
	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/jrife/warden/variables"
)

// SetVariable is a multi-valued transaction fact such as ARGS or
// REQUEST_HEADERS. Repeated keys keep every value in arrival order.
// Keys iterate in the order they were first seen.
type SetVariable struct {
	name string
	set  *linkedhashmap.Map
}

// NewSetVariable creates an empty set variable
func NewSetVariable(name string) *SetVariable {
	return &SetVariable{name: name, set: linkedhashmap.New()}
}

// Name returns the variable name
func (s *SetVariable) Name() string {
	return s.name
}

// Unset drops every key
func (s *SetVariable) Unset() {
	s.set.Clear()
}

// Len returns the number of distinct keys
func (s *SetVariable) Len() int {
	return s.set.Size()
}

// Set appends value under key
func (s *SetVariable) Set(key string, value string, offset int) {
	s.SetWithLength(key, value, offset, len(value))
}

// SetWithLength appends value under key with an explicit raw length
func (s *SetVariable) SetWithLength(key string, value string, offset int, length int) {
	vv := variables.NewWithCollection(s.name, key, value)
	vv.AddOrigin(variables.VariableOrigin{Offset: offset, Length: length})

	s.set.Put(key, append(s.values(key), vv))
}

func (s *SetVariable) values(key string) []*variables.VariableValue {
	values, ok := s.set.Get(key)

	if !ok {
		return nil
	}

	return values.([]*variables.VariableValue)
}

// Keys returns the distinct keys in first-seen order
func (s *SetVariable) Keys() []string {
	keys := make([]string, 0, s.set.Size())

	for _, key := range s.set.Keys() {
		keys = append(keys, key.(string))
	}

	return keys
}

func (s *SetVariable) scan(ke variables.KeyExclusions, match func(key string) bool) []*variables.VariableValue {
	var matched []*variables.VariableValue

	it := s.set.Iterator()

	for it.Next() {
		key := it.Key().(string)

		if ke.ToOmit(key) || (match != nil && !match(key)) {
			continue
		}

		for _, vv := range it.Value().([]*variables.VariableValue) {
			matched = append(matched, vv.Clone())
		}
	}

	return matched
}

// Resolve prepends a copy of every value to out
func (s *SetVariable) Resolve(out []*variables.VariableValue) []*variables.VariableValue {
	return variables.Prepend(out, s.scan(nil, nil))
}

// ResolveWithExclusions is Resolve skipping excluded keys
func (s *SetVariable) ResolveWithExclusions(out []*variables.VariableValue, ke variables.KeyExclusions) []*variables.VariableValue {
	return variables.Prepend(out, s.scan(ke, nil))
}

// ResolveByKey appends copies of the values of key to out in the
// order they were set.
func (s *SetVariable) ResolveByKey(key string, out []*variables.VariableValue) []*variables.VariableValue {
	for _, vv := range s.values(key) {
		out = append(out, vv.Clone())
	}

	return out
}

// ResolveFirst returns the earliest value of key
func (s *SetVariable) ResolveFirst(key string) (string, bool) {
	values := s.values(key)

	if len(values) == 0 {
		return "", false
	}

	return values[0].Value(), true
}

// ResolveRegularExpression prepends the values of every key pattern
// matches. An invalid pattern matches nothing.
func (s *SetVariable) ResolveRegularExpression(pattern string, out []*variables.VariableValue) []*variables.VariableValue {
	return s.ResolveRegularExpressionWithExclusions(pattern, out, nil)
}

// ResolveRegularExpressionWithExclusions is ResolveRegularExpression
// skipping excluded keys.
func (s *SetVariable) ResolveRegularExpressionWithExclusions(pattern string, out []*variables.VariableValue, ke variables.KeyExclusions) []*variables.VariableValue {
	re, err := variables.CompilePattern(pattern)

	if err != nil {
		return out
	}

	return variables.Prepend(out, s.scan(ke, re.MatchString))
}
