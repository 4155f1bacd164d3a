package variables

import "fmt"

// VariableOrigin locates a captured value inside the raw transaction
// data it was extracted from.
type VariableOrigin struct {
	Offset int
	Length int
}

// ToText renders the origin as "v<offset>,<length>". Audit logs parse
// this form so it must not change.
func (origin VariableOrigin) ToText() string {
	return fmt.Sprintf("v%d,%d", origin.Offset, origin.Length)
}
