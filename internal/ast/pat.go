package ast

import "swell/internal/source"

type PatKind uint8

const (
	PatError PatKind = iota
	PatWild
	PatBind
	PatLit
	PatTuple
	PatPath    // Color::Red, CONST
	PatVariant // Option::Some(x)
	PatStruct  // S { a, b: p, .. }
	PatOr
)

type Pat struct {
	Kind    PatKind
	Span    source.Span
	Payload PayloadID
}

type PatBindData struct {
	Name source.StringID
	Mut  bool
}

type PatLitData struct {
	Lit ExprID
	Neg bool
}

type PatListData struct {
	Elems []PatID
}

type PatPathData struct {
	Path Path
	// Args is set for PatVariant.
	Args []PatID
}

type FieldPat struct {
	Name source.StringID
	Span source.Span
	// Pat is NoPatID for shorthand `S { a }` which binds `a`.
	Pat PatID
}

type PatStructData struct {
	Path   Path
	Fields []FieldPat
	Rest   bool
}

// Pats manages allocation of patterns.
type Pats struct {
	Arena   *Arena[Pat]
	Binds   *Arena[PatBindData]
	Lits    *Arena[PatLitData]
	Lists   *Arena[PatListData]
	Paths   *Arena[PatPathData]
	Structs *Arena[PatStructData]
}

func NewPats(capHint uint) *Pats {
	if capHint == 0 {
		capHint = 1 << 6
	}
	return &Pats{
		Arena:   NewArena[Pat](capHint),
		Binds:   NewArena[PatBindData](capHint),
		Lits:    NewArena[PatLitData](capHint / 4),
		Lists:   NewArena[PatListData](capHint / 4),
		Paths:   NewArena[PatPathData](capHint / 4),
		Structs: NewArena[PatStructData](capHint / 8),
	}
}

func (p *Pats) new(kind PatKind, span source.Span, payload PayloadID) PatID {
	return PatID(p.Arena.Allocate(Pat{Kind: kind, Span: span, Payload: payload}))
}

func (p *Pats) Get(id PatID) *Pat {
	return p.Arena.Get(uint32(id))
}

// NewSimple allocates PatError or PatWild.
func (p *Pats) NewSimple(kind PatKind, span source.Span) PatID {
	return p.new(kind, span, NoPayloadID)
}

func (p *Pats) NewBind(span source.Span, name source.StringID, mut bool) PatID {
	return p.new(PatBind, span, PayloadID(p.Binds.Allocate(PatBindData{Name: name, Mut: mut})))
}

func (p *Pats) Bind(id PatID) (*PatBindData, bool) {
	pt := p.Get(id)
	if pt == nil || pt.Kind != PatBind {
		return nil, false
	}
	return p.Binds.Get(uint32(pt.Payload)), true
}

func (p *Pats) NewLit(span source.Span, lit ExprID, neg bool) PatID {
	return p.new(PatLit, span, PayloadID(p.Lits.Allocate(PatLitData{Lit: lit, Neg: neg})))
}

func (p *Pats) Lit(id PatID) (*PatLitData, bool) {
	pt := p.Get(id)
	if pt == nil || pt.Kind != PatLit {
		return nil, false
	}
	return p.Lits.Get(uint32(pt.Payload)), true
}

// NewList allocates PatTuple or PatOr.
func (p *Pats) NewList(kind PatKind, span source.Span, elems []PatID) PatID {
	return p.new(kind, span, PayloadID(p.Lists.Allocate(PatListData{Elems: elems})))
}

func (p *Pats) List(id PatID) (*PatListData, bool) {
	pt := p.Get(id)
	if pt == nil || (pt.Kind != PatTuple && pt.Kind != PatOr) {
		return nil, false
	}
	return p.Lists.Get(uint32(pt.Payload)), true
}

// NewPath allocates PatPath (args == nil) or PatVariant.
func (p *Pats) NewPath(kind PatKind, span source.Span, path Path, args []PatID) PatID {
	return p.new(kind, span, PayloadID(p.Paths.Allocate(PatPathData{Path: path, Args: args})))
}

func (p *Pats) Path(id PatID) (*PatPathData, bool) {
	pt := p.Get(id)
	if pt == nil || (pt.Kind != PatPath && pt.Kind != PatVariant) {
		return nil, false
	}
	return p.Paths.Get(uint32(pt.Payload)), true
}

func (p *Pats) NewStruct(span source.Span, data PatStructData) PatID {
	return p.new(PatStruct, span, PayloadID(p.Structs.Allocate(data)))
}

func (p *Pats) Struct(id PatID) (*PatStructData, bool) {
	pt := p.Get(id)
	if pt == nil || pt.Kind != PatStruct {
		return nil, false
	}
	return p.Structs.Get(uint32(pt.Payload)), true
}
