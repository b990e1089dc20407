package graph

import (
	"maps"
	"slices"
	"sort"
)

// ClassSet represents a deduplicated set of binary class names (e.g. com.x.Outer$Inner)
type ClassSet map[string]struct{}

// NewClassSet creates a class set with supplied names
func NewClassSet(names ...string) ClassSet {
	ret := make(ClassSet, len(names))
	for _, name := range names {
		ret[name] = struct{}{}
	}
	return ret
}

// Add adds class name
func (s ClassSet) Add(name string) {
	s[name] = struct{}{}
}

// Contains returns true if name is in the set
func (s ClassSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// AddAll merges other set into this set
func (s ClassSet) AddAll(other ClassSet) {
	for name := range other {
		s[name] = struct{}{}
	}
}

// Remove removes every name of other from this set
func (s ClassSet) Remove(other ClassSet) {
	for name := range other {
		delete(s, name)
	}
}

// Sorted returns names in lexical order
func (s ClassSet) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}

// ComponentSet represents a set of component identifiers
type ComponentSet map[ComponentIdentifier]struct{}

// NewComponentSet creates a component set with supplied identifiers
func NewComponentSet(ids ...ComponentIdentifier) ComponentSet {
	ret := make(ComponentSet, len(ids))
	for _, id := range ids {
		ret[id] = struct{}{}
	}
	return ret
}

// Add adds identifier
func (s ComponentSet) Add(id ComponentIdentifier) {
	s[id] = struct{}{}
}

// Contains returns true if id is in the set
func (s ComponentSet) Contains(id ComponentIdentifier) bool {
	_, ok := s[id]
	return ok
}

// Union returns a new set with members of both sets
func (s ComponentSet) Union(other ComponentSet) ComponentSet {
	ret := make(ComponentSet, len(s)+len(other))
	for id := range s {
		ret[id] = struct{}{}
	}
	for id := range other {
		ret[id] = struct{}{}
	}
	return ret
}

// Difference returns a new set with members of s absent from other
func (s ComponentSet) Difference(other ComponentSet) ComponentSet {
	ret := make(ComponentSet)
	for id := range s {
		if !other.Contains(id) {
			ret[id] = struct{}{}
		}
	}
	return ret
}

// Sorted returns identifiers ordered by their natural string form
func (s ComponentSet) Sorted() []ComponentIdentifier {
	ret := slices.Collect(maps.Keys(s))
	sort.Slice(ret, func(i, j int) bool {
		return ret[i].String() < ret[j].String()
	})
	return ret
}

// Strings returns sorted natural string forms
func (s ComponentSet) Strings() []string {
	ids := s.Sorted()
	ret := make([]string, 0, len(ids))
	for _, id := range ids {
		ret = append(ret, id.String())
	}
	return ret
}
