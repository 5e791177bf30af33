package ast

import "swell/internal/source"

type TypeKind uint8

const (
	TypeError    TypeKind = iota
	TypePath              // u64, S<T>, Self, T::Item
	TypeTuple             // (), (A, B)
	TypeArray             // [T; N]
	TypeStrArray          // str[N]
	TypeRef               // &T, &mut T
	TypeNever             // !
	TypeInfer             // _
)

// TypeExpr is a syntactic type annotation.
type TypeExpr struct {
	Kind    TypeKind
	Span    source.Span
	Payload PayloadID
}

type TypePathData struct {
	Path Path
}

type TypeTupleData struct {
	Elems []TypeID
}

type TypeArrayData struct {
	Elem TypeID // NoTypeID для str[N]
	Len  ExprID
}

type TypeRefData struct {
	Mut   bool
	Inner TypeID
}

// Types manages allocation of type expressions.
type Types struct {
	Arena  *Arena[TypeExpr]
	Paths  *Arena[TypePathData]
	Tuples *Arena[TypeTupleData]
	Arrays *Arena[TypeArrayData]
	Refs   *Arena[TypeRefData]
}

func NewTypes(capHint uint) *Types {
	if capHint == 0 {
		capHint = 1 << 7
	}
	return &Types{
		Arena:  NewArena[TypeExpr](capHint),
		Paths:  NewArena[TypePathData](capHint),
		Tuples: NewArena[TypeTupleData](capHint / 8),
		Arrays: NewArena[TypeArrayData](capHint / 8),
		Refs:   NewArena[TypeRefData](capHint / 8),
	}
}

func (t *Types) new(kind TypeKind, span source.Span, payload PayloadID) TypeID {
	return TypeID(t.Arena.Allocate(TypeExpr{Kind: kind, Span: span, Payload: payload}))
}

func (t *Types) Get(id TypeID) *TypeExpr {
	return t.Arena.Get(uint32(id))
}

// NewSimple allocates payload-free kinds: error, never, infer.
func (t *Types) NewSimple(kind TypeKind, span source.Span) TypeID {
	return t.new(kind, span, NoPayloadID)
}

func (t *Types) NewPath(span source.Span, path Path) TypeID {
	return t.new(TypePath, span, PayloadID(t.Paths.Allocate(TypePathData{Path: path})))
}

func (t *Types) Path(id TypeID) (*TypePathData, bool) {
	te := t.Get(id)
	if te == nil || te.Kind != TypePath {
		return nil, false
	}
	return t.Paths.Get(uint32(te.Payload)), true
}

func (t *Types) NewTuple(span source.Span, elems []TypeID) TypeID {
	return t.new(TypeTuple, span, PayloadID(t.Tuples.Allocate(TypeTupleData{Elems: elems})))
}

func (t *Types) Tuple(id TypeID) (*TypeTupleData, bool) {
	te := t.Get(id)
	if te == nil || te.Kind != TypeTuple {
		return nil, false
	}
	return t.Tuples.Get(uint32(te.Payload)), true
}

// NewArray allocates `[elem; len]` or, with elem == NoTypeID and kind
// TypeStrArray, `str[len]`.
func (t *Types) NewArray(kind TypeKind, span source.Span, elem TypeID, length ExprID) TypeID {
	return t.new(kind, span, PayloadID(t.Arrays.Allocate(TypeArrayData{Elem: elem, Len: length})))
}

func (t *Types) Array(id TypeID) (*TypeArrayData, bool) {
	te := t.Get(id)
	if te == nil || (te.Kind != TypeArray && te.Kind != TypeStrArray) {
		return nil, false
	}
	return t.Arrays.Get(uint32(te.Payload)), true
}

func (t *Types) NewRef(span source.Span, mut bool, inner TypeID) TypeID {
	return t.new(TypeRef, span, PayloadID(t.Refs.Allocate(TypeRefData{Mut: mut, Inner: inner})))
}

func (t *Types) Ref(id TypeID) (*TypeRefData, bool) {
	te := t.Get(id)
	if te == nil || te.Kind != TypeRef {
		return nil, false
	}
	return t.Refs.Get(uint32(te.Payload)), true
}
