package types

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"fortio.org/safecast"

	"swell/internal/symbols"
)

// Builtins stores TypeIDs for common primitive types.
type Builtins struct {
	Error    TypeID
	Unit     TypeID
	Never    TypeID
	Bool     TypeID
	U8       TypeID
	U16      TypeID
	U32      TypeID
	U64      TypeID
	U256     TypeID
	B256     TypeID
	Str      TypeID
	Contract TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
// It is safe for concurrent use: lowering interns substituted types from
// several goroutines.
type Interner struct {
	mu       sync.RWMutex
	types    []Type
	index    map[string]TypeID
	builtins Builtins
	vars     uint32

	nominals
	namer func(symbols.DeclID) string
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		types: make([]Type, 1, 128), // 0 зарезервирован
		index: make(map[string]TypeID, 128),
	}
	in.nominals.init()
	in.builtins = Builtins{
		Error:    in.Intern(Type{Kind: KindError}),
		Unit:     in.Intern(Type{Kind: KindUnit}),
		Never:    in.Intern(Type{Kind: KindNever}),
		Bool:     in.Intern(Type{Kind: KindBool}),
		U8:       in.Intern(Type{Kind: KindUint, Width: Width8}),
		U16:      in.Intern(Type{Kind: KindUint, Width: Width16}),
		U32:      in.Intern(Type{Kind: KindUint, Width: Width32}),
		U64:      in.Intern(Type{Kind: KindUint, Width: Width64}),
		U256:     in.Intern(Type{Kind: KindUint, Width: Width256}),
		B256:     in.Intern(Type{Kind: KindB256}),
		Str:      in.Intern(Type{Kind: KindStr}),
		Contract: in.Intern(Type{Kind: KindContract}),
	}
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// SetNamer installs the function Label uses to print nominal types.
func (in *Interner) SetNamer(fn func(symbols.DeclID) string) {
	in.mu.Lock()
	in.namer = fn
	in.mu.Unlock()
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := typeKey(&t)
	in.mu.RLock()
	id, ok := in.index[key]
	in.mu.RUnlock()
	if ok {
		return id
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internLocked(t, key)
}

func (in *Interner) internLocked(t Type, key string) TypeID {
	n, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(n)
	if len(t.Args) > 0 {
		t.Args = append([]TypeID(nil), t.Args...)
	}
	in.types = append(in.types, t)
	in.index[key] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Kind is a shortcut for MustLookup(id).Kind; invalid ids report KindInvalid.
func (in *Interner) Kind(id TypeID) Kind {
	tt, _ := in.Lookup(id)
	return tt.Kind
}

// Len returns the number of interned types.
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.types) - 1
}

func typeKey(t *Type) string {
	var sb strings.Builder
	sb.Grow(16 + 4*len(t.Args))
	sb.WriteByte(byte(t.Kind))
	sb.WriteString(strconv.FormatUint(uint64(t.Width), 36))
	sb.WriteByte('.')
	sb.WriteString(strconv.FormatUint(uint64(t.Count), 36))
	sb.WriteByte('.')
	if t.Mutable {
		sb.WriteByte('m')
	}
	sb.WriteString(strconv.FormatUint(uint64(t.Decl), 36))
	sb.WriteByte('.')
	sb.WriteString(strconv.FormatUint(uint64(t.Elem), 36))
	for _, a := range t.Args {
		sb.WriteByte(',')
		sb.WriteString(strconv.FormatUint(uint64(a), 36))
	}
	if t.Name != "" {
		sb.WriteByte('#')
		sb.WriteString(t.Name)
	}
	return sb.String()
}

// Constructors ---------------------------------------------------------------

// Uint returns the unsigned integer type of width w.
func (in *Interner) Uint(w Width) TypeID {
	return in.Intern(Type{Kind: KindUint, Width: w})
}

// Tuple returns `(elems...)`; an empty tuple is unit.
func (in *Interner) Tuple(elems ...TypeID) TypeID {
	if len(elems) == 0 {
		return in.builtins.Unit
	}
	return in.Intern(Type{Kind: KindTuple, Args: elems})
}

// Array returns `[elem; n]`.
func (in *Interner) Array(elem TypeID, n uint32) TypeID {
	return in.Intern(Type{Kind: KindArray, Elem: elem, Count: n})
}

// StrArray returns `str[n]`.
func (in *Interner) StrArray(n uint32) TypeID {
	return in.Intern(Type{Kind: KindStrArray, Count: n})
}

// Ref returns `&elem` or `&mut elem`.
func (in *Interner) Ref(elem TypeID, mut bool) TypeID {
	return in.Intern(Type{Kind: KindRef, Elem: elem, Mutable: mut})
}

// Struct returns the instantiation of a struct declaration.
func (in *Interner) Struct(decl symbols.DeclID, args ...TypeID) TypeID {
	return in.Intern(Type{Kind: KindStruct, Decl: decl, Args: args})
}

// Enum returns the instantiation of an enum declaration.
func (in *Interner) Enum(decl symbols.DeclID, args ...TypeID) TypeID {
	return in.Intern(Type{Kind: KindEnum, Decl: decl, Args: args})
}

// Generic returns the type parameter index of owner.
func (in *Interner) Generic(owner symbols.DeclID, index uint32, name string) TypeID {
	return in.Intern(Type{Kind: KindGeneric, Decl: owner, Count: index, Name: name})
}

// SelfType returns `Self` inside a trait or abi.
func (in *Interner) SelfType(owner symbols.DeclID) TypeID {
	return in.Intern(Type{Kind: KindSelf, Decl: owner})
}

// StorageMap returns `StorageMap<k, v>`.
func (in *Interner) StorageMap(k, v TypeID) TypeID {
	return in.Intern(Type{Kind: KindStorageMap, Args: []TypeID{k, v}})
}

// StorageVec returns `StorageVec<elem>`.
func (in *Interner) StorageVec(elem TypeID) TypeID {
	return in.Intern(Type{Kind: KindStorageVec, Elem: elem})
}

// Assoc returns the projection `<base as trait>::name`.
func (in *Interner) Assoc(base TypeID, trait symbols.DeclID, name string) TypeID {
	return in.Intern(Type{Kind: KindAssoc, Elem: base, Decl: trait, Name: name})
}

// FreshVar allocates a new inference placeholder.
func (in *Interner) FreshVar() TypeID {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.vars++
	t := Type{Kind: KindVar, Count: in.vars}
	return in.internLocked(t, typeKey(&t))
}

// Predicates -----------------------------------------------------------------

// IsUint reports whether id is an unsigned integer type.
func (in *Interner) IsUint(id TypeID) bool { return in.Kind(id) == KindUint }

// IsError reports whether id is the recovery type.
func (in *Interner) IsError(id TypeID) bool { return in.Kind(id) == KindError }

// Contains reports whether pred holds for id or any type nested in it.
func (in *Interner) Contains(id TypeID, pred func(TypeID, *Type) bool) bool {
	tt, ok := in.Lookup(id)
	if !ok {
		return false
	}
	if pred(id, &tt) {
		return true
	}
	if tt.Elem != NoTypeID && in.Contains(tt.Elem, pred) {
		return true
	}
	for _, a := range tt.Args {
		if in.Contains(a, pred) {
			return true
		}
	}
	return false
}

// IsConcrete reports whether id contains no placeholders, type parameters,
// `Self` or unnormalized projections.
func (in *Interner) IsConcrete(id TypeID) bool {
	return !in.Contains(id, func(_ TypeID, t *Type) bool {
		switch t.Kind {
		case KindVar, KindGeneric, KindSelf, KindAssoc:
			return true
		}
		return false
	})
}

// HasErrors reports whether the recovery type occurs in id.
func (in *Interner) HasErrors(id TypeID) bool {
	return in.Contains(id, func(_ TypeID, t *Type) bool { return t.Kind == KindError })
}
