package mono

import (
	"maps"
	"slices"
	"sync"

	"swell/internal/source"
	"swell/internal/symbols"
	"swell/internal/types"
)

// UseSite records a location where an instantiation occurs.
type UseSite struct {
	Span   source.Span
	Caller symbols.DeclID
}

// Entry captures one instantiation and where it is requested.
type Entry struct {
	Key      Key
	TypeArgs []types.TypeID
	UseSites []UseSite
}

// Instances tracks generic instantiations discovered by the type engine.
// Record is safe for concurrent use.
type Instances struct {
	mu      sync.Mutex
	entries map[Key]*Entry
}

// NewInstances creates an empty table.
func NewInstances() *Instances {
	return &Instances{entries: make(map[Key]*Entry)}
}

// Record registers an instantiation at a specific site. Non-generic
// references are ignored.
func (m *Instances) Record(decl symbols.DeclID, args []types.TypeID, site source.Span, caller symbols.DeclID) {
	if m == nil || !decl.IsValid() || len(args) == 0 {
		return
	}
	key := NewKey(decl, args)
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := m.entries[key]
	if entry == nil {
		entry = &Entry{Key: key, TypeArgs: cloneArgs(args)}
		m.entries[key] = entry
	}
	if site == (source.Span{}) {
		return
	}
	us := UseSite{Span: site, Caller: caller}
	if !slices.Contains(entry.UseSites, us) {
		entry.UseSites = append(entry.UseSites, us)
	}
}

// Len returns the number of distinct instantiations.
func (m *Instances) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Lookup returns the entry of key.
func (m *Instances) Lookup(key Key) (*Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	return e, ok
}

// Entries returns all instantiations ordered by key.
func (m *Instances) Entries() []*Entry {
	m.mu.Lock()
	keys := slices.SortedFunc(maps.Keys(m.entries), CompareKeys)
	out := make([]*Entry, len(keys))
	for i, k := range keys {
		out[i] = m.entries[k]
	}
	m.mu.Unlock()
	return out
}
