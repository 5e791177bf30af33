package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"swell/internal/project"
	"swell/internal/source"
)

type BindingKind uint8

const (
	BindNone BindingKind = iota
	BindLocal
	BindDecl
	BindGeneric
	BindBuiltin
	BindSelfType
)

func (k BindingKind) String() string {
	switch k {
	case BindLocal:
		return "local"
	case BindDecl:
		return "decl"
	case BindGeneric:
		return "generic"
	case BindBuiltin:
		return "builtin"
	case BindSelfType:
		return "Self"
	default:
		return "none"
	}
}

// Builtin names a language-provided type or intrinsic.
type Builtin uint8

const (
	BuiltinNone Builtin = iota
	BuiltinU8
	BuiltinU16
	BuiltinU32
	BuiltinU64
	BuiltinU256
	BuiltinBool
	BuiltinB256
	BuiltinStr
	BuiltinStorageMap
	BuiltinStorageVec
	BuiltinContract
	BuiltinRevert // __revert(code)
)

var builtinNames = map[string]Builtin{
	"u8":         BuiltinU8,
	"u16":        BuiltinU16,
	"u32":        BuiltinU32,
	"u64":        BuiltinU64,
	"u256":       BuiltinU256,
	"bool":       BuiltinBool,
	"b256":       BuiltinB256,
	"str":        BuiltinStr,
	"StorageMap": BuiltinStorageMap,
	"StorageVec": BuiltinStorageVec,
	"Contract":   BuiltinContract,
	"__revert":   BuiltinRevert,
}

// LookupBuiltin finds a builtin by its spelling.
func LookupBuiltin(name string) (Builtin, bool) {
	b, ok := builtinNames[name]
	return b, ok
}

// IsValue reports builtins usable in value position.
func (b Builtin) IsValue() bool { return b == BuiltinRevert }

func (b Builtin) String() string {
	for name, v := range builtinNames {
		if v == b {
			return name
		}
	}
	return "builtin"
}

// Binding is what a path or identifier resolved to.
type Binding struct {
	Kind BindingKind
	// Decl is the target for BindDecl, the owner of a generic parameter for
	// BindGeneric and the enclosing trait/impl/abi for BindSelfType.
	Decl    DeclID
	Local   LocalID
	Index   int
	Builtin Builtin
	// Rest is the number of trailing path segments left unresolved: associated
	// items and methods the type engine looks up (`S::new`, `T::Item`).
	Rest int
}

// Local is a let, parameter or pattern binding.
type Local struct {
	Name string
	Span source.Span
	Mut  bool
	Fn   DeclID
}

// Resolution is the per-module output of body resolution. Paths are keyed by
// the span of the path node: expression, type and pattern paths, struct
// literal heads, bounds, supertraits and shorthand struct fields.
type Resolution struct {
	Module  project.ModuleID
	Paths   map[source.Span]Binding
	Binders map[source.Span]LocalID
	Locals  []Local
}

func newResolution(m project.ModuleID) *Resolution {
	return &Resolution{
		Module:  m,
		Paths:   make(map[source.Span]Binding),
		Binders: make(map[source.Span]LocalID),
		Locals:  make([]Local, 1, 16),
	}
}

// Path returns the binding recorded for a path span.
func (r *Resolution) Path(sp source.Span) (Binding, bool) {
	b, ok := r.Paths[sp]
	return b, ok
}

// Binder returns the local introduced at a binding site.
func (r *Resolution) Binder(sp source.Span) (LocalID, bool) {
	id, ok := r.Binders[sp]
	return id, ok
}

// Local returns a local by id or nil.
func (r *Resolution) Local(id LocalID) *Local {
	if !id.IsValid() || int(id) >= len(r.Locals) {
		return nil
	}
	return &r.Locals[id]
}

func (r *Resolution) newLocal(l Local) LocalID {
	n, err := safecast.Conv[LocalID](len(r.Locals))
	if err != nil {
		panic(fmt.Errorf("local id overflow: %w", err))
	}
	r.Locals = append(r.Locals, l)
	r.Binders[l.Span] = n
	return n
}

func declID(n int) DeclID {
	id, err := safecast.Conv[DeclID](n)
	if err != nil {
		panic(fmt.Errorf("decl id overflow: %w", err))
	}
	return id
}
