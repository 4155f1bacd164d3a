package anchored

// SetID identifies a set variable inside a Registry
type SetID int

// Registry owns the set variables of one transaction. Views derived
// from a set, like TranslationProxy, hold its SetID and look it up
// here on every use.
type Registry struct {
	sets   []*SetVariable
	byName map[string]SetID
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{byName: map[string]SetID{}}
}

// Add creates a set variable and returns its id. Adding a name twice
// returns the existing id.
func (registry *Registry) Add(name string) SetID {
	if id, ok := registry.byName[name]; ok {
		return id
	}

	id := SetID(len(registry.sets))
	registry.sets = append(registry.sets, NewSetVariable(name))
	registry.byName[name] = id

	return id
}

// Get returns the set with this id or nil
func (registry *Registry) Get(id SetID) *SetVariable {
	if id < 0 || int(id) >= len(registry.sets) {
		return nil
	}

	return registry.sets[id]
}

// Lookup returns the set with this name or nil
func (registry *Registry) Lookup(name string) *SetVariable {
	id, ok := registry.byName[name]

	if !ok {
		return nil
	}

	return registry.sets[id]
}

// Names returns the set names in the order they were added
func (registry *Registry) Names() []string {
	names := make([]string, len(registry.sets))

	for i, set := range registry.sets {
		names[i] = set.Name()
	}

	return names
}

// Unset empties every set
func (registry *Registry) Unset() {
	for _, set := range registry.sets {
		set.Unset()
	}
}
