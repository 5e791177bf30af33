package mono

import "sync"

// State is the lowering state of one instance.
type State uint8

const (
	Unvisited State = iota
	InProgress
	Lowered
)

func (s State) String() string {
	switch s {
	case InProgress:
		return "in-progress"
	case Lowered:
		return "lowered"
	}
	return "unvisited"
}

// Memo guarantees at-most-one production of a value per key under
// concurrent scheduling. Claim moves a key from Unvisited to InProgress;
// a key re-entered while InProgress is reported as such so the caller only
// emits a reference to it.
type Memo[V any] struct {
	mu     sync.Mutex
	states map[Key]State
	values map[Key]V
}

// NewMemo creates an empty memo table.
func NewMemo[V any]() *Memo[V] {
	return &Memo[V]{states: make(map[Key]State), values: make(map[Key]V)}
}

// Claim returns true if the caller won the right to produce key. Otherwise
// it returns the current state (InProgress or Lowered).
func (m *Memo[V]) Claim(key Key) (bool, State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.states[key]
	if st != Unvisited {
		return false, st
	}
	m.states[key] = InProgress
	return true, InProgress
}

// Finish stores the produced value and marks key Lowered.
func (m *Memo[V]) Finish(key Key, v V) {
	m.mu.Lock()
	m.states[key] = Lowered
	m.values[key] = v
	m.mu.Unlock()
}

// State returns the state of key.
func (m *Memo[V]) State(key Key) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[key]
}

// Value returns the value of a Lowered key.
func (m *Memo[V]) Value(key Key) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

// Values returns every produced value in no particular order.
func (m *Memo[V]) Values() []V {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]V, 0, len(m.values))
	for _, v := range m.values {
		out = append(out, v)
	}
	return out
}
