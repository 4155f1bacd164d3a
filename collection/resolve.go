package collection

import (
	"strings"

	"github.com/jrife/warden/variables"
)

// Entry is one stored value as a backend scans it
type Entry struct {
	Key   string
	Value string
}

// Prepend turns entries, in scan order, into values of the collection
// name and places them at the head of out.
func Prepend(name string, out []*variables.VariableValue, entries []Entry) []*variables.VariableValue {
	return variables.Prepend(out, Values(name, entries))
}

// Values turns entries into values of the collection name
func Values(name string, entries []Entry) []*variables.VariableValue {
	if len(entries) == 0 {
		return nil
	}

	values := make([]*variables.VariableValue, len(entries))

	for i, entry := range entries {
		values[i] = variables.NewWithCollection(name, entry.Key, entry.Value)
	}

	return values
}

// KeyFilter decides which keys a multi-key resolution visits. A nil
// KeyFilter visits every key.
type KeyFilter func(key string) bool

// PatternFilter compiles pattern into a KeyFilter. It returns false if
// pattern is invalid.
func PatternFilter(pattern string) (KeyFilter, bool) {
	re, err := variables.CompilePattern(pattern)

	if err != nil {
		return nil, false
	}

	return re.MatchString, true
}

// PrefixFilter visits the keys that start with prefix
func PrefixFilter(prefix string) KeyFilter {
	if prefix == "" {
		return nil
	}

	return func(key string) bool {
		return strings.HasPrefix(key, prefix)
	}
}

// Visit reports whether a scan should collect the values of key
func (filter KeyFilter) Visit(key string, ke variables.KeyExclusions) bool {
	if ke.ToOmit(key) {
		return false
	}

	return filter == nil || filter(key)
}
