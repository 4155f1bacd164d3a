package collection_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jrife/warden/collection"
	"github.com/jrife/warden/collection/backend/memory"
	"github.com/jrife/warden/variables"
)

// prefixOnlyCollection serves scans through ResolvePrefix only. Any
// other resolution hits the nil embedded Collection and panics.
type prefixOnlyCollection struct {
	collection.Collection
	base     collection.Collection
	prefixes []string
}

func (c *prefixOnlyCollection) ResolvePrefix(prefix string, out []*variables.VariableValue, ke variables.KeyExclusions) []*variables.VariableValue {
	c.prefixes = append(c.prefixes, prefix)

	return c.base.ResolvePrefix(prefix, out, ke)
}

func TestCompartmentScansResolvePrefixes(t *testing.T) {
	base := memory.New("SESSION", collection.Options{})
	base.Store(collection.ComposeKey("count", "sess:1", "app"), "1")
	base.Store(collection.ComposeKey("counter", "sess:1", "app"), "2")
	base.Store(collection.ComposeKey("count", "sess:2", "app"), "3")

	scanned := &prefixOnlyCollection{base: base}
	view := collection.WithCompartments(scanned, "sess:1", "app")

	testCases := map[string]struct {
		resolve func() []*variables.VariableValue
		prefix  string
		result  []string
	}{
		"all": {
			resolve: func() []*variables.VariableValue { return view.ResolveMultiMatches("", nil, nil) },
			prefix:  `sess\:1::app::`,
			result:  []string{"2", "1"},
		},
		"regular-expression": {
			resolve: func() []*variables.VariableValue { return view.ResolveRegularExpression("er$", nil, nil) },
			prefix:  `sess\:1::app::`,
			result:  []string{"2"},
		},
		"leaf-prefix": {
			resolve: func() []*variables.VariableValue { return view.ResolvePrefix("counte", nil, nil) },
			prefix:  `sess\:1::app::counte`,
			result:  []string{"2"},
		},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			scanned.prefixes = nil

			if diff := cmp.Diff(testCase.result, variables.Values(testCase.resolve())); diff != "" {
				t.Fatal(diff)
			}

			if diff := cmp.Diff([]string{testCase.prefix}, scanned.prefixes); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestPrefixFilter(t *testing.T) {
	if collection.PrefixFilter("") != nil {
		t.Fatalf("expected the empty prefix to visit every key")
	}

	filter := collection.PrefixFilter("ab")

	if !filter.Visit("abc", nil) || filter.Visit("xab", nil) {
		t.Fatalf("expected only keys starting with ab to be visited")
	}
}

func TestBareKeysNeverReachCompartments(t *testing.T) {
	base := memory.New("IP", collection.Options{})
	bare := collection.Bare(base)
	view := collection.WithCompartment(base, "1.2.3.4")

	bare.Store("1.2.3.4::x", "bare")
	view.Store("y", "compartmented")

	if _, ok := view.ResolveFirst("x"); ok {
		t.Fatalf("expected a bare key never to resolve through a compartment")
	}

	if diff := cmp.Diff([]string{"compartmented"}, variables.Values(view.ResolveMultiMatches("", nil, nil))); diff != "" {
		t.Fatal(diff)
	}

	if value, _ := bare.ResolveFirst("1.2.3.4::x"); value != "bare" {
		t.Fatalf("expected bare, got %q", value)
	}

	if value, _ := base.ResolveFirst(`1.2.3.4\:\:x`); value != "bare" {
		t.Fatalf("expected the bare key to be stored escaped, got %q", value)
	}

	// compartmented keys are not bare keys
	if diff := cmp.Diff([]string{"1.2.3.4::x"}, keys(bare.ResolveMultiMatches("", nil, nil))); diff != "" {
		t.Fatal(diff)
	}
}

func keys(l []*variables.VariableValue) []string {
	result := make([]string, len(l))

	for i, v := range l {
		result[i] = v.Key()
	}

	return result
}
