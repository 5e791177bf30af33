package ast

import "swell/internal/source"

type StmtKind uint8

const (
	StmtError StmtKind = iota
	StmtLet
	StmtExpr
	StmtItem // локальный const
)

type Stmt struct {
	Kind    StmtKind
	Span    source.Span
	Payload PayloadID
}

type StmtLetData struct {
	Pat   PatID
	Type  TypeID
	Value ExprID
}

type StmtExprData struct {
	Expr ExprID
	Semi bool
}

type StmtItemData struct {
	Item ItemID
}

// Stmts manages allocation of statements.
type Stmts struct {
	Arena *Arena[Stmt]
	Lets  *Arena[StmtLetData]
	Exprs *Arena[StmtExprData]
	Items *Arena[StmtItemData]
}

func NewStmts(capHint uint) *Stmts {
	if capHint == 0 {
		capHint = 1 << 7
	}
	return &Stmts{
		Arena: NewArena[Stmt](capHint),
		Lets:  NewArena[StmtLetData](capHint / 2),
		Exprs: NewArena[StmtExprData](capHint / 2),
		Items: NewArena[StmtItemData](4),
	}
}

func (s *Stmts) new(kind StmtKind, span source.Span, payload PayloadID) StmtID {
	return StmtID(s.Arena.Allocate(Stmt{Kind: kind, Span: span, Payload: payload}))
}

func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}

func (s *Stmts) NewError(span source.Span) StmtID {
	return s.new(StmtError, span, NoPayloadID)
}

func (s *Stmts) NewLet(span source.Span, data StmtLetData) StmtID {
	return s.new(StmtLet, span, PayloadID(s.Lets.Allocate(data)))
}

func (s *Stmts) Let(id StmtID) (*StmtLetData, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtLet {
		return nil, false
	}
	return s.Lets.Get(uint32(st.Payload)), true
}

func (s *Stmts) NewExpr(span source.Span, expr ExprID, semi bool) StmtID {
	return s.new(StmtExpr, span, PayloadID(s.Exprs.Allocate(StmtExprData{Expr: expr, Semi: semi})))
}

func (s *Stmts) Expr(id StmtID) (*StmtExprData, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtExpr {
		return nil, false
	}
	return s.Exprs.Get(uint32(st.Payload)), true
}

func (s *Stmts) NewItem(span source.Span, item ItemID) StmtID {
	return s.new(StmtItem, span, PayloadID(s.Items.Allocate(StmtItemData{Item: item})))
}

func (s *Stmts) Item(id StmtID) (*StmtItemData, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtItem {
		return nil, false
	}
	return s.Items.Get(uint32(st.Payload)), true
}
