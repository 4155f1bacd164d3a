package anchored

import (
	"github.com/jrife/warden/variables"
)

// Variable is a single-valued transaction fact captured straight from
// request or response data. It keeps every range of the raw data its
// value was assembled from.
type Variable struct {
	name    string
	value   string
	offset  int
	origins []variables.VariableOrigin
}

// NewVariable creates an empty anchored variable
func NewVariable(name string) *Variable {
	return &Variable{name: name}
}

// Name returns the variable name
func (v *Variable) Name() string {
	return v.name
}

// Set replaces the value. The variable now has exactly one origin.
func (v *Variable) Set(value string, offset int) {
	v.SetWithLength(value, offset, len(value))
}

// SetWithLength is Set for values whose raw length differs from the
// decoded value, e.g. percent-decoded input.
func (v *Variable) SetWithLength(value string, offset int, length int) {
	v.value = value
	v.offset = offset
	v.origins = []variables.VariableOrigin{{Offset: offset, Length: length}}
}

// Append concatenates value to the current one and records one more
// origin. A single space goes between the two only when spaceSeparator
// is set and neither side is empty.
func (v *Variable) Append(value string, offset int, spaceSeparator bool) {
	v.AppendWithLength(value, offset, len(value), spaceSeparator)
}

// AppendWithLength is Append with an explicit raw length
func (v *Variable) AppendWithLength(value string, offset int, length int, spaceSeparator bool) {
	if spaceSeparator && v.value != "" && value != "" {
		v.value += " "
	}

	v.value += value
	v.offset = offset
	v.origins = append(v.origins, variables.VariableOrigin{Offset: offset, Length: length})
}

// Unset clears the value. Recorded origins are kept.
func (v *Variable) Unset() {
	v.value = ""
}

// Evaluate returns the current value, "" if it was never set
func (v *Variable) Evaluate() string {
	return v.value
}

// Offset returns the offset of the latest set or append
func (v *Variable) Offset() int {
	return v.offset
}

// ResolveFirst returns the value if there is one
func (v *Variable) ResolveFirst() (string, bool) {
	return v.value, v.value != ""
}

// EvaluateVariableValues appends a snapshot of the variable to out.
// Unnamed variables produce nothing.
func (v *Variable) EvaluateVariableValues(out []*variables.VariableValue) []*variables.VariableValue {
	if v.name == "" {
		return out
	}

	vv := variables.New(v.name, v.value)

	for _, origin := range v.origins {
		vv.AddOrigin(origin)
	}

	return append(out, vv)
}
