package variables_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jrife/warden/variables"
)

func TestVariableOriginToText(t *testing.T) {
	testCases := map[string]struct {
		origin variables.VariableOrigin
		text   string
	}{
		"zero": {
			origin: variables.VariableOrigin{},
			text:   "v0,0",
		},
		"offset-and-length": {
			origin: variables.VariableOrigin{Offset: 17, Length: 4},
			text:   "v17,4",
		},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			if text := testCase.origin.ToText(); text != testCase.text {
				t.Fatalf("expected %q, got %q", testCase.text, text)
			}
		})
	}
}

func TestNewWithCollection(t *testing.T) {
	testCases := map[string]struct {
		collection        string
		key               string
		keyWithCollection string
	}{
		"with-collection": {
			collection:        "IP",
			key:               "1.2.3.4",
			keyWithCollection: "IP:1.2.3.4",
		},
		"without-collection": {
			collection:        "",
			key:               "foo",
			keyWithCollection: "foo",
		},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			v := variables.NewWithCollection(testCase.collection, testCase.key, "value")

			if v.KeyWithCollection() != testCase.keyWithCollection {
				t.Fatalf("expected %q, got %q", testCase.keyWithCollection, v.KeyWithCollection())
			}

			if v.Key() != testCase.key || v.Collection() != testCase.collection || v.Value() != "value" {
				t.Fatalf("unexpected fields: %q %q %q", v.Collection(), v.Key(), v.Value())
			}
		})
	}
}

func TestVariableValueCloneIsIndependent(t *testing.T) {
	original := variables.NewWithCollection("ARGS", "a", "1")
	original.AddOrigin(variables.VariableOrigin{Offset: 1, Length: 1})

	clone := original.Clone()
	clone.AddOrigin(variables.VariableOrigin{Offset: 5, Length: 2})
	clone.SetValue("changed")

	if diff := cmp.Diff([]variables.VariableOrigin{{Offset: 1, Length: 1}}, original.Origins()); diff != "" {
		t.Fatalf("source origins changed: %s", diff)
	}

	if diff := cmp.Diff([]variables.VariableOrigin{{Offset: 1, Length: 1}, {Offset: 5, Length: 2}}, clone.Origins()); diff != "" {
		t.Fatalf("unexpected clone origins: %s", diff)
	}

	if original.Value() != "1" {
		t.Fatalf("expected source value to stay 1, got %s", original.Value())
	}

	original.AddOrigin(variables.VariableOrigin{Offset: 9, Length: 9})

	if len(clone.Origins()) != 2 {
		t.Fatalf("mutating the source leaked into the clone")
	}
}

func TestOriginsReturnsCopy(t *testing.T) {
	v := variables.New("k", "v")
	v.AddOrigin(variables.VariableOrigin{Offset: 1, Length: 2})

	origins := v.Origins()
	origins[0].Offset = 100

	if v.Origins()[0].Offset != 1 {
		t.Fatalf("expected Origins() to return a copy")
	}
}

func TestKeyExclusionsToOmit(t *testing.T) {
	regex, err := variables.NewRegexKeyExclusion("^sess")

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	testCases := map[string]struct {
		exclusions variables.KeyExclusions
		key        string
		omit       bool
	}{
		"nil-set": {
			exclusions: nil,
			key:        "secret",
			omit:       false,
		},
		"empty-set": {
			exclusions: variables.KeyExclusions{},
			key:        "secret",
			omit:       false,
		},
		"exact-match": {
			exclusions: variables.KeyExclusions{variables.ExactKeyExclusion("secret")},
			key:        "secret",
			omit:       true,
		},
		"exact-is-case-sensitive": {
			exclusions: variables.KeyExclusions{variables.ExactKeyExclusion("secret")},
			key:        "Secret",
			omit:       false,
		},
		"exact-no-substring": {
			exclusions: variables.KeyExclusions{variables.ExactKeyExclusion("secret")},
			key:        "secrets",
			omit:       false,
		},
		"regex-match": {
			exclusions: variables.KeyExclusions{regex},
			key:        "session_id",
			omit:       true,
		},
		"regex-no-match": {
			exclusions: variables.KeyExclusions{regex},
			key:        "my_session",
			omit:       false,
		},
		"any-of-several": {
			exclusions: variables.KeyExclusions{variables.ExactKeyExclusion("a"), regex},
			key:        "sessid",
			omit:       true,
		},
		"none-of-several": {
			exclusions: variables.KeyExclusions{variables.ExactKeyExclusion("a"), regex},
			key:        "b",
			omit:       false,
		},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			if omit := testCase.exclusions.ToOmit(testCase.key); omit != testCase.omit {
				t.Fatalf("expected %v, got %v", testCase.omit, omit)
			}
		})
	}
}

func TestNewRegexKeyExclusionInvalid(t *testing.T) {
	if _, err := variables.NewRegexKeyExclusion("(unclosed"); err == nil {
		t.Fatalf("expected err to not be nil, got nil")
	}
}

func TestCompilePatternCaches(t *testing.T) {
	a, err := variables.CompilePattern("^x+$")

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	b, _ := variables.CompilePattern("^x+$")

	if a != b {
		t.Fatalf("expected the cached compilation to be reused")
	}

	if _, err := variables.CompilePattern("["); err == nil {
		t.Fatalf("expected err to not be nil, got nil")
	}
}

func TestValues(t *testing.T) {
	l := []*variables.VariableValue{variables.New("a", "1"), variables.New("b", "2")}

	if diff := cmp.Diff([]string{"1", "2"}, variables.Values(l)); diff != "" {
		t.Fatal(diff)
	}
}
