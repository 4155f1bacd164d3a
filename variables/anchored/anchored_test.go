package anchored_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jrife/warden/variables"
	"github.com/jrife/warden/variables/anchored"
)

func TestVariableAppend(t *testing.T) {
	testCases := map[string]struct {
		initial        string
		value          string
		spaceSeparator bool
		result         string
	}{
		"space-separated": {
			initial:        "foo",
			value:          "bar",
			spaceSeparator: true,
			result:         "foo bar",
		},
		"no-separator": {
			initial: "foo",
			value:   "bar",
			result:  "foobar",
		},
		"empty-existing-value": {
			initial:        "",
			value:          "bar",
			spaceSeparator: true,
			result:         "bar",
		},
		"empty-appended-value": {
			initial:        "foo",
			value:          "",
			spaceSeparator: true,
			result:         "foo",
		},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			v := anchored.NewVariable("REQUEST_LINE")

			if testCase.initial != "" {
				v.Set(testCase.initial, 0)
			}

			v.Append(testCase.value, 10, testCase.spaceSeparator)

			if v.Evaluate() != testCase.result {
				t.Fatalf("expected %q, got %q", testCase.result, v.Evaluate())
			}

			if v.Offset() != 10 {
				t.Fatalf("expected offset 10, got %d", v.Offset())
			}
		})
	}
}

func TestVariableOrigins(t *testing.T) {
	v := anchored.NewVariable("REQUEST_LINE")
	v.Set("GET", 0)
	v.Append("/index.html", 4, true)
	v.AppendWithLength("HTTP/1.1", 16, 9, true)

	l := v.EvaluateVariableValues(nil)

	if len(l) != 1 {
		t.Fatalf("expected 1 value, got %d", len(l))
	}

	if l[0].Value() != "GET /index.html HTTP/1.1" {
		t.Fatalf("unexpected value %q", l[0].Value())
	}

	if l[0].Key() != "REQUEST_LINE" || l[0].KeyWithCollection() != "REQUEST_LINE" {
		t.Fatalf("unexpected key %q / %q", l[0].Key(), l[0].KeyWithCollection())
	}

	expected := []variables.VariableOrigin{{Offset: 0, Length: 3}, {Offset: 4, Length: 11}, {Offset: 16, Length: 9}}

	if diff := cmp.Diff(expected, l[0].Origins()); diff != "" {
		t.Fatal(diff)
	}

	// set starts a fresh provenance history
	v.SetWithLength("POST", 30, 6)

	l = v.EvaluateVariableValues(nil)

	if diff := cmp.Diff([]variables.VariableOrigin{{Offset: 30, Length: 6}}, l[0].Origins()); diff != "" {
		t.Fatal(diff)
	}
}

func TestVariableEvaluateVariableValuesIsSnapshot(t *testing.T) {
	v := anchored.NewVariable("QUERY_STRING")
	v.Set("a=1", 5)

	l := v.EvaluateVariableValues(nil)
	v.Append("b=2", 9, false)

	if l[0].Value() != "a=1" || len(l[0].Origins()) != 1 {
		t.Fatalf("later appends leaked into an earlier snapshot")
	}
}

func TestVariableUnnamed(t *testing.T) {
	v := anchored.NewVariable("")
	v.Set("x", 0)

	if l := v.EvaluateVariableValues(nil); len(l) != 0 {
		t.Fatalf("expected unnamed variable to produce nothing, got %d", len(l))
	}
}

func TestVariableUnset(t *testing.T) {
	v := anchored.NewVariable("REMOTE_ADDR")

	if value, ok := v.ResolveFirst(); ok || value != "" {
		t.Fatalf("expected never-set variable to be empty")
	}

	v.Set("10.0.0.1", 0)

	if value, ok := v.ResolveFirst(); !ok || value != "10.0.0.1" {
		t.Fatalf("expected 10.0.0.1, got %q", value)
	}

	v.Unset()

	if v.Evaluate() != "" {
		t.Fatalf("expected empty value after unset, got %q", v.Evaluate())
	}

	if _, ok := v.ResolveFirst(); ok {
		t.Fatalf("expected no first value after unset")
	}
}
