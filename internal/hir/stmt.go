package hir

import (
	"swell/internal/source"
	"swell/internal/symbols"
	"swell/internal/types"
)

// Block is a sequence of statements with an optional value.
type Block struct {
	Stmts []Stmt
	Tail  *Expr
	Span  source.Span
}

// StmtKind enumerates statement kinds. Local constants are folded by the
// type engine and never appear as statements.
type StmtKind uint8

const (
	StmtLet StmtKind = iota
	StmtExpr
)

// Stmt is either `let pat = value;` or an expression statement.
type Stmt struct {
	Kind  StmtKind
	Pat   *Pattern
	Value *Expr
	Span  source.Span
}

// PatKind enumerates pattern kinds.
type PatKind uint8

const (
	PatError PatKind = iota
	PatWild
	PatBind
	PatLiteral
	PatTuple
	PatVariant
	PatStruct
	PatOr
	PatConst
)

// Pattern is a typed pattern.
//
//	PatBind     Local, Name, Mut
//	PatLiteral  Lit
//	PatTuple    Elems
//	PatVariant  Decl (enum), Index, Elems (payload, at most one)
//	PatStruct   Decl, Fields
//	PatOr       Elems
//	PatConst    Decl, Value
type Pattern struct {
	Kind   PatKind
	Type   types.TypeID
	Span   source.Span
	Local  symbols.LocalID
	Name   string
	Mut    bool
	Lit    *LiteralData
	Decl   symbols.DeclID
	Index  int
	Elems  []*Pattern
	Fields []FieldPat
	Value  *Value
}

// FieldPat binds a struct field by declaration index.
type FieldPat struct {
	Index int
	Pat   *Pattern
}

// Binds reports whether the pattern introduces any local.
func (p *Pattern) Binds() bool {
	if p == nil {
		return false
	}
	if p.Kind == PatBind {
		return true
	}
	for _, e := range p.Elems {
		if e.Binds() {
			return true
		}
	}
	for _, f := range p.Fields {
		if f.Pat.Binds() {
			return true
		}
	}
	return false
}
