package layout

import (
	"fmt"
	"sort"
)

// Library is an ID-keyed set of bases, fixed at construction.
// It is never mutated after NewLibrary returns and is safe for
// concurrent use.
type Library struct {
	bases map[string]Base
	ids   []string
}

// NewLibrary builds a library from the given bases.
// Returns an error if two bases share an ID.
func NewLibrary(bases []Base) (*Library, error) {
	lib := &Library{
		bases: make(map[string]Base, len(bases)),
		ids:   make([]string, 0, len(bases)),
	}
	for _, b := range bases {
		if _, exists := lib.bases[b.ID]; exists {
			return nil, fmt.Errorf("layout: base %q already registered", b.ID)
		}
		lib.bases[b.ID] = b
		lib.ids = append(lib.ids, b.ID)
	}
	sort.Strings(lib.ids)
	return lib, nil
}

// Layout returns the base with the given ID.
func (l *Library) Layout(id string) (Base, error) {
	b, ok := l.bases[id]
	if !ok {
		return Base{}, fmt.Errorf("layout: unknown base %q", id)
	}
	return b, nil
}

// All returns every base, sorted by ID.
func (l *Library) All() []Base {
	result := make([]Base, 0, len(l.ids))
	for _, id := range l.ids {
		result = append(result, l.bases[id])
	}
	return result
}

// IDs returns all base IDs in sorted order.
func (l *Library) IDs() []string {
	ids := make([]string, len(l.ids))
	copy(ids, l.ids)
	return ids
}
