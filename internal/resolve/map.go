// internal/resolve/map.go
package resolve

import "cagecleaner/internal/hits"

// Map is the scaffold → assembly mapping built by ResolveAll. Add enforces
// first-seen-wins on the assembly side, which makes the realized map
// injective in both directions: the Nth retained scaffold owns the Nth
// distinct assembly, and Inverse is total over the value set.
type Map struct {
	forward map[hits.ScaffoldID]AssemblyID
	seen    map[AssemblyID]struct{}
	order   []hits.ScaffoldID // insertion order of retained scaffolds
}

func NewMap() *Map {
	return &Map{
		forward: make(map[hits.ScaffoldID]AssemblyID),
		seen:    make(map[AssemblyID]struct{}),
	}
}

// Add records scaffold → assembly. It returns false, without modifying the
// map, when the assembly is already mapped from an earlier scaffold.
func (m *Map) Add(s hits.ScaffoldID, a AssemblyID) bool {
	if _, dup := m.seen[a]; dup {
		return false
	}
	if _, dup := m.forward[s]; dup {
		return false
	}
	m.forward[s] = a
	m.seen[a] = struct{}{}
	m.order = append(m.order, s)
	return true
}

// Len returns the number of retained scaffold → assembly pairs.
func (m *Map) Len() int { return len(m.order) }

// Lookup returns the assembly mapped from a scaffold.
func (m *Map) Lookup(s hits.ScaffoldID) (AssemblyID, bool) {
	a, ok := m.forward[s]
	return a, ok
}

// Assemblies returns the distinct assembly accessions in first-seen order.
func (m *Map) Assemblies() []AssemblyID {
	out := make([]AssemblyID, 0, len(m.order))
	for _, s := range m.order {
		out = append(out, m.forward[s])
	}
	return out
}

// Inverse returns an assembly → scaffold map covering every value in m.
func (m *Map) Inverse() map[AssemblyID]hits.ScaffoldID {
	inv := make(map[AssemblyID]hits.ScaffoldID, len(m.order))
	for _, s := range m.order {
		inv[m.forward[s]] = s
	}
	return inv
}
