package variables

// VariableValue is a resolved variable: where it came from
// (collection and key), what it currently holds and which ranges of
// the raw request or response it was captured from.
type VariableValue struct {
	collection        string
	key               string
	keyWithCollection string
	value             string
	origins           []VariableOrigin
}

// New creates a VariableValue that belongs to no collection
func New(key string, value string) *VariableValue {
	return &VariableValue{
		key:               key,
		keyWithCollection: key,
		value:             value,
	}
}

// NewWithCollection creates a VariableValue whose composed identifier
// is "collection:key". An empty collection name leaves the identifier
// as the bare key.
func NewWithCollection(collection string, key string, value string) *VariableValue {
	keyWithCollection := key

	if collection != "" {
		keyWithCollection = collection + ":" + key
	}

	return &VariableValue{
		collection:        collection,
		key:               key,
		keyWithCollection: keyWithCollection,
		value:             value,
	}
}

// Clone returns a copy of v that shares no state with it
func (v *VariableValue) Clone() *VariableValue {
	clone := *v
	clone.origins = v.Origins()

	return &clone
}

// Collection returns the collection name, if any
func (v *VariableValue) Collection() string {
	return v.collection
}

// Key returns the bare key
func (v *VariableValue) Key() string {
	return v.key
}

// KeyWithCollection returns the "collection:key" identifier
func (v *VariableValue) KeyWithCollection() string {
	return v.keyWithCollection
}

// Value returns the current value
func (v *VariableValue) Value() string {
	return v.value
}

// SetValue replaces the current value
func (v *VariableValue) SetValue(value string) {
	v.value = value
}

// AddOrigin records one more provenance range
func (v *VariableValue) AddOrigin(origin VariableOrigin) {
	v.origins = append(v.origins, origin)
}

// Origins returns a copy of the recorded provenance ranges in the
// order they were added.
func (v *VariableValue) Origins() []VariableOrigin {
	if len(v.origins) == 0 {
		return nil
	}

	return append([]VariableOrigin(nil), v.origins...)
}

// Values extracts the plain values of l in order
func Values(l []*VariableValue) []string {
	values := make([]string, len(l))

	for i, v := range l {
		values[i] = v.Value()
	}

	return values
}

// Prepend places matched at the head of out in reverse order. The result
// is what a caller observes when every match, taken in scan order, is
// inserted at the front of out one at a time.
func Prepend(out []*VariableValue, matched []*VariableValue) []*VariableValue {
	if len(matched) == 0 {
		return out
	}

	result := make([]*VariableValue, 0, len(matched)+len(out))

	for i := len(matched) - 1; i >= 0; i-- {
		result = append(result, matched[i])
	}

	return append(result, out...)
}
