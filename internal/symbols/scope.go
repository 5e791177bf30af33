package symbols

import (
	"sync/atomic"

	"swell/internal/project"
	"swell/internal/source"
)

// Import is a name bound by an item `use`.
type Import struct {
	Decl   DeclID
	Public bool
	Span   source.Span
	used   atomic.Bool
}

// Glob is a `use path::*` source: a module or an enum.
type Glob struct {
	Module project.ModuleID
	Enum   DeclID
	Public bool
	Span   source.Span
}

// ModuleScope holds the names visible at the top level of one module.
// Locals are filled by declaration collection and never change afterwards;
// Imports and Globs are written only by the owning module's import pass.
type ModuleScope struct {
	Module  project.ModuleID
	Decl    DeclID
	Locals  map[string]DeclID
	Imports map[string]*Import
	Globs   []Glob
	// order keeps import names in declaration order for deterministic output.
	order []string
}

func newModuleScope(m project.ModuleID) *ModuleScope {
	return &ModuleScope{
		Module:  m,
		Locals:  make(map[string]DeclID),
		Imports: make(map[string]*Import),
	}
}

// frameKind отличает лексические уровни внутри тела.
type frameKind uint8

const (
	frameGenerics frameKind = iota
	frameFn
	frameBlock
)

type frameEntry struct {
	binding Binding
	isConst bool
}

// frame is one lexical scope of the body walker.
type frame struct {
	kind  frameKind
	names map[string]frameEntry
}

func newFrame(kind frameKind) *frame {
	return &frame{kind: kind, names: make(map[string]frameEntry)}
}
