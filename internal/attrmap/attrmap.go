// Package attrmap maps geometry attribute values to small positive indices.
//
// Every reserved attribute (capsGroup, capsLoad, capsConstraint, ...) gets its
// own index space. Indices are assigned in first-seen order during a scan of
// the bodies and are never reused or invented: a lookup of an unknown name
// fails with ErrNotFound.
package attrmap

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a name or index is absent from a map
var ErrNotFound = errors.New("not found")

// Map is an ordered, bidirectional name <-> index map
type Map struct {
	Category string
	names    []string
	index    map[string]int
}

// New creates an empty map for the given category
func New(category string) *Map {
	return &Map{Category: category, index: make(map[string]int)}
}

// Add returns the index of name, assigning the next unused index if the name is new
func (m *Map) Add(name string) int {
	if i, ok := m.index[name]; ok {
		return i
	}
	m.names = append(m.names, name)
	m.index[name] = len(m.names)
	return len(m.names)
}

// Index looks up the index of a name
func (m *Map) Index(name string) (int, error) {
	if m != nil {
		if i, ok := m.index[name]; ok {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%s %q: %w", m.category(), name, ErrNotFound)
}

// Name looks up the name of an index
func (m *Map) Name(index int) (string, error) {
	if m == nil || index < 1 || index > len(m.names) {
		return "", fmt.Errorf("%s index %d: %w", m.category(), index, ErrNotFound)
	}
	return m.names[index-1], nil
}

// Has reports whether the name is present
func (m *Map) Has(name string) bool {
	_, err := m.Index(name)
	return err == nil
}

// Len returns the number of entries
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.names)
}

// Names returns the names in index order
func (m *Map) Names() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.names...)
}

func (m *Map) category() string {
	if m == nil || m.Category == "" {
		return "attribute"
	}
	return m.Category
}
