package layout

import (
	"swell/internal/types"
)

// Layout is the in-memory shape of a value for a Target.
type Layout struct {
	Size  int
	Align int
	// HasRefs is set when the value holds a reference anywhere inside.
	HasRefs bool
	// Memcopy marks values passed in a register: at most one word and free
	// of references. Larger values are passed by pointer and copied.
	Memcopy bool

	// Struct and tuple only.
	FieldOffsets []int

	// Enum only.
	TagSize       int
	PayloadOffset int
}

// Engine computes memory layout for types. It is safe for concurrent use.
type Engine struct {
	Target Target
	Types  *types.Interner

	cache *cache
}

// New creates a new Engine for the specified target.
func New(target Target, typesIn *types.Interner) *Engine {
	return &Engine{
		Target: target,
		Types:  typesIn,
		cache:  newCache(),
	}
}

type layoutState struct {
	stack []types.TypeID
	index map[types.TypeID]int
}

func newLayoutState() *layoutState {
	return &layoutState{index: make(map[types.TypeID]int, 16)}
}

// Of computes and caches the layout of a type. The error is a *LayoutError.
func (e *Engine) Of(t types.TypeID) (Layout, error) {
	l, err := e.layoutOf(t, newLayoutState())
	if err != nil {
		return l, err
	}
	return l, nil
}

func (e *Engine) layoutOf(t types.TypeID, state *layoutState) (Layout, *LayoutError) {
	if cached, ok := e.cache.get(t); ok {
		return cached.Layout, cached.Err
	}

	if idx, ok := state.index[t]; ok {
		cycle := make([]string, 0, len(state.stack)-idx+1)
		for _, id := range state.stack[idx:] {
			cycle = append(cycle, e.Types.Label(id))
		}
		cycle = append(cycle, e.Types.Label(t))
		err := &LayoutError{Kind: LayoutErrRecursive, Type: t, Label: e.Types.Label(t), Cycle: cycle}
		return zeroLayout(), err
	}

	state.index[t] = len(state.stack)
	state.stack = append(state.stack, t)
	l, err := e.computeLayout(t, state)
	state.stack = state.stack[:len(state.stack)-1]
	delete(state.index, t)

	l.Memcopy = err == nil && l.Size <= e.Target.word() && !l.HasRefs
	e.cache.put(t, &cacheEntry{Layout: l, Err: err})
	return l, err
}

// SizeOf returns the size of a type in bytes.
func (e *Engine) SizeOf(t types.TypeID) (int, error) {
	l, err := e.Of(t)
	return l.Size, err
}

// AlignOf returns the alignment requirement of a type in bytes.
func (e *Engine) AlignOf(t types.TypeID) (int, error) {
	l, err := e.Of(t)
	return l.Align, err
}

// FieldOffset returns the byte offset of a struct field or tuple element.
func (e *Engine) FieldOffset(t types.TypeID, fieldIdx int) (int, error) {
	l, err := e.Of(t)
	if err != nil {
		return 0, err
	}
	if fieldIdx < 0 || fieldIdx >= len(l.FieldOffsets) {
		return 0, nil
	}
	return l.FieldOffsets[fieldIdx], nil
}
