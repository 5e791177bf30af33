package hir

import (
	"swell/internal/ast"
	"swell/internal/project"
	"swell/internal/source"
	"swell/internal/symbols"
	"swell/internal/types"
)

// Effects is a set of storage capabilities.
type Effects uint8

const (
	EffectRead Effects = 1 << iota
	EffectWrite
)

// Has reports whether every capability of other is in e.
func (e Effects) Has(other Effects) bool { return e&other == other }

// String renders the set as in `#[storage(read, write)]`.
func (e Effects) String() string {
	switch e {
	case 0:
		return "none"
	case EffectRead:
		return "read"
	case EffectWrite:
		return "write"
	}
	return "read, write"
}

// InlineHint mirrors `#[inline(...)]`.
type InlineHint uint8

const (
	InlineDefault InlineHint = iota
	InlineNever
	InlineAlways
)

func (h InlineHint) String() string {
	switch h {
	case InlineNever:
		return "never"
	case InlineAlways:
		return "always"
	}
	return "default"
}

// EntryKind classifies externally reachable functions.
type EntryKind uint8

const (
	EntryNone EntryKind = iota
	// EntryAbi is a contract method implementing an ABI.
	EntryAbi
	// EntryMain is `main` of a script or predicate.
	EntryMain
	// EntryTest is a `#[test]` function.
	EntryTest
)

func (k EntryKind) String() string {
	switch k {
	case EntryAbi:
		return "abi"
	case EntryMain:
		return "main"
	case EntryTest:
		return "test"
	}
	return "none"
}

// FuncFlags represents function modifiers as a bitmask.
type FuncFlags uint16

const (
	FuncPublic FuncFlags = 1 << iota
	// FuncMethod marks functions with a `self` receiver.
	FuncMethod
	// FuncRefSelf marks `ref mut self` receivers passed by reference.
	FuncRefSelf
	FuncPayable
	FuncTest
	FuncShouldRevert
	FuncDeprecated
)

// HasFlag returns true if the given flag is set.
func (f FuncFlags) HasFlag(flag FuncFlags) bool {
	return f&flag != 0
}

// Param is a function parameter bound to a resolver local.
type Param struct {
	Name  string
	Local symbols.LocalID
	Type  types.TypeID
	Mut   bool
	Span  source.Span
}

// Bound is a trait constraint `Param: Trait<Args>`.
type Bound struct {
	Param types.TypeID
	Trait symbols.DeclID
	Args  []types.TypeID
	Span  source.Span
}

// Func is a typed function, method or trait/abi method declaration.
//
// Generics lists every substitutable type parameter in order: for impl
// members the impl parameters come first, trait members start with the
// trait's Self followed by the trait parameters. Calls supply TypeArgs in the
// same order.
type Func struct {
	Decl     symbols.DeclID
	Name     string
	Symbol   string
	Module   project.ModuleID
	Span     source.Span
	Generics []types.TypeID
	Bounds   []Bound
	Params   []Param
	Ret      types.TypeID
	Body     *Expr // nil для сигнатур без тела
	Owner    symbols.DeclID
	Flags    FuncFlags
	Declared Effects
	Inline   InlineHint
	Entry    EntryKind
	Attrs    []ast.Attr
	// Revert is the expected code of `#[test(should_revert = "..")]`.
	Revert string
}

// IsGeneric reports whether the function needs instantiation.
func (f *Func) IsGeneric() bool { return len(f.Generics) > 0 }
