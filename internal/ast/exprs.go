package ast

import (
	"swell/internal/source"
	"swell/internal/token"
)

// Exprs manages allocation of expressions.
type Exprs struct {
	Arena        *Arena[Expr]
	Lits         *Arena[ExprLitData]
	Paths        *Arena[ExprPathData]
	Calls        *Arena[ExprCallData]
	MethodCalls  *Arena[ExprMethodCallData]
	Fields       *Arena[ExprFieldData]
	TupleIndices *Arena[ExprTupleIndexData]
	Indices      *Arena[ExprIndexData]
	Unaries      *Arena[ExprUnaryData]
	Binaries     *Arena[ExprBinaryData]
	Assigns      *Arena[ExprAssignData]
	Structs      *Arena[ExprStructData]
	Lists        *Arena[ExprListData]
	Parens       *Arena[ExprParenData]
	Repeats      *Arena[ExprArrayRepeatData]
	Blocks       *Arena[ExprBlockData]
	Ifs          *Arena[ExprIfData]
	Matches      *Arena[ExprMatchData]
	Whiles       *Arena[ExprWhileData]
	Returns      *Arena[ExprReturnData]
}

// NewExprs creates expression arenas; capHint 0 means 1<<8.
func NewExprs(capHint uint) *Exprs {
	if capHint == 0 {
		capHint = 1 << 8
	}
	small := capHint / 8
	return &Exprs{
		Arena:        NewArena[Expr](capHint),
		Lits:         NewArena[ExprLitData](capHint / 2),
		Paths:        NewArena[ExprPathData](capHint / 2),
		Calls:        NewArena[ExprCallData](small),
		MethodCalls:  NewArena[ExprMethodCallData](small),
		Fields:       NewArena[ExprFieldData](small),
		TupleIndices: NewArena[ExprTupleIndexData](small),
		Indices:      NewArena[ExprIndexData](small),
		Unaries:      NewArena[ExprUnaryData](small),
		Binaries:     NewArena[ExprBinaryData](small),
		Assigns:      NewArena[ExprAssignData](small),
		Structs:      NewArena[ExprStructData](small),
		Lists:        NewArena[ExprListData](small),
		Parens:       NewArena[ExprParenData](small),
		Repeats:      NewArena[ExprArrayRepeatData](small),
		Blocks:       NewArena[ExprBlockData](small),
		Ifs:          NewArena[ExprIfData](small),
		Matches:      NewArena[ExprMatchData](small),
		Whiles:       NewArena[ExprWhileData](small),
		Returns:      NewArena[ExprReturnData](small),
	}
}

func (e *Exprs) new(kind ExprKind, span source.Span, payload PayloadID) ExprID {
	return ExprID(e.Arena.Allocate(Expr{Kind: kind, Span: span, Payload: payload}))
}

// Get returns the expression header or nil.
func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

func (e *Exprs) payload(id ExprID, kind ExprKind) (uint32, bool) {
	ex := e.Get(id)
	if ex == nil || ex.Kind != kind {
		return 0, false
	}
	return uint32(ex.Payload), true
}

func (e *Exprs) NewError(span source.Span) ExprID {
	return e.new(ExprError, span, NoPayloadID)
}

func (e *Exprs) NewLit(span source.Span, data ExprLitData) ExprID {
	return e.new(ExprLit, span, PayloadID(e.Lits.Allocate(data)))
}

func (e *Exprs) Lit(id ExprID) (*ExprLitData, bool) {
	p, ok := e.payload(id, ExprLit)
	if !ok {
		return nil, false
	}
	return e.Lits.Get(p), true
}

func (e *Exprs) NewPath(span source.Span, path Path) ExprID {
	return e.new(ExprPath, span, PayloadID(e.Paths.Allocate(ExprPathData{Path: path})))
}

func (e *Exprs) Path(id ExprID) (*ExprPathData, bool) {
	p, ok := e.payload(id, ExprPath)
	if !ok {
		return nil, false
	}
	return e.Paths.Get(p), true
}

func (e *Exprs) NewCall(span source.Span, callee ExprID, args []ExprID) ExprID {
	return e.new(ExprCall, span, PayloadID(e.Calls.Allocate(ExprCallData{Callee: callee, Args: args})))
}

func (e *Exprs) Call(id ExprID) (*ExprCallData, bool) {
	p, ok := e.payload(id, ExprCall)
	if !ok {
		return nil, false
	}
	return e.Calls.Get(p), true
}

func (e *Exprs) NewMethodCall(span source.Span, data ExprMethodCallData) ExprID {
	return e.new(ExprMethodCall, span, PayloadID(e.MethodCalls.Allocate(data)))
}

func (e *Exprs) MethodCall(id ExprID) (*ExprMethodCallData, bool) {
	p, ok := e.payload(id, ExprMethodCall)
	if !ok {
		return nil, false
	}
	return e.MethodCalls.Get(p), true
}

func (e *Exprs) NewField(span source.Span, base ExprID, name source.StringID, nameSpan source.Span) ExprID {
	return e.new(ExprField, span, PayloadID(e.Fields.Allocate(ExprFieldData{Base: base, Name: name, NameSpan: nameSpan})))
}

func (e *Exprs) Field(id ExprID) (*ExprFieldData, bool) {
	p, ok := e.payload(id, ExprField)
	if !ok {
		return nil, false
	}
	return e.Fields.Get(p), true
}

func (e *Exprs) NewTupleIndex(span source.Span, base ExprID, index uint32) ExprID {
	return e.new(ExprTupleIndex, span, PayloadID(e.TupleIndices.Allocate(ExprTupleIndexData{Base: base, Index: index})))
}

func (e *Exprs) TupleIndex(id ExprID) (*ExprTupleIndexData, bool) {
	p, ok := e.payload(id, ExprTupleIndex)
	if !ok {
		return nil, false
	}
	return e.TupleIndices.Get(p), true
}

func (e *Exprs) NewIndex(span source.Span, base, index ExprID) ExprID {
	return e.new(ExprIndex, span, PayloadID(e.Indices.Allocate(ExprIndexData{Base: base, Index: index})))
}

func (e *Exprs) Index(id ExprID) (*ExprIndexData, bool) {
	p, ok := e.payload(id, ExprIndex)
	if !ok {
		return nil, false
	}
	return e.Indices.Get(p), true
}

func (e *Exprs) NewUnary(span source.Span, op UnaryOp, operand ExprID) ExprID {
	return e.new(ExprUnary, span, PayloadID(e.Unaries.Allocate(ExprUnaryData{Op: op, Operand: operand})))
}

func (e *Exprs) Unary(id ExprID) (*ExprUnaryData, bool) {
	p, ok := e.payload(id, ExprUnary)
	if !ok {
		return nil, false
	}
	return e.Unaries.Get(p), true
}

func (e *Exprs) NewBinary(span source.Span, op token.Kind, left, right ExprID) ExprID {
	return e.new(ExprBinary, span, PayloadID(e.Binaries.Allocate(ExprBinaryData{Op: op, Left: left, Right: right})))
}

func (e *Exprs) Binary(id ExprID) (*ExprBinaryData, bool) {
	p, ok := e.payload(id, ExprBinary)
	if !ok {
		return nil, false
	}
	return e.Binaries.Get(p), true
}

func (e *Exprs) NewAssign(span source.Span, op token.Kind, place, value ExprID) ExprID {
	return e.new(ExprAssign, span, PayloadID(e.Assigns.Allocate(ExprAssignData{Op: op, Place: place, Value: value})))
}

func (e *Exprs) Assign(id ExprID) (*ExprAssignData, bool) {
	p, ok := e.payload(id, ExprAssign)
	if !ok {
		return nil, false
	}
	return e.Assigns.Get(p), true
}

func (e *Exprs) NewStruct(span source.Span, data ExprStructData) ExprID {
	return e.new(ExprStruct, span, PayloadID(e.Structs.Allocate(data)))
}

func (e *Exprs) Struct(id ExprID) (*ExprStructData, bool) {
	p, ok := e.payload(id, ExprStruct)
	if !ok {
		return nil, false
	}
	return e.Structs.Get(p), true
}

// NewList allocates a tuple or array literal.
func (e *Exprs) NewList(kind ExprKind, span source.Span, elems []ExprID) ExprID {
	return e.new(kind, span, PayloadID(e.Lists.Allocate(ExprListData{Elems: elems})))
}

// List returns elements of a tuple or array literal.
func (e *Exprs) List(id ExprID) (*ExprListData, bool) {
	ex := e.Get(id)
	if ex == nil || (ex.Kind != ExprTuple && ex.Kind != ExprArray) {
		return nil, false
	}
	return e.Lists.Get(uint32(ex.Payload)), true
}

func (e *Exprs) NewParen(span source.Span, inner ExprID) ExprID {
	return e.new(ExprParen, span, PayloadID(e.Parens.Allocate(ExprParenData{Inner: inner})))
}

func (e *Exprs) Paren(id ExprID) (*ExprParenData, bool) {
	p, ok := e.payload(id, ExprParen)
	if !ok {
		return nil, false
	}
	return e.Parens.Get(p), true
}

func (e *Exprs) NewArrayRepeat(span source.Span, value, count ExprID) ExprID {
	return e.new(ExprArrayRepeat, span, PayloadID(e.Repeats.Allocate(ExprArrayRepeatData{Value: value, Count: count})))
}

func (e *Exprs) ArrayRepeat(id ExprID) (*ExprArrayRepeatData, bool) {
	p, ok := e.payload(id, ExprArrayRepeat)
	if !ok {
		return nil, false
	}
	return e.Repeats.Get(p), true
}

func (e *Exprs) NewBlock(span source.Span, stmts []StmtID, tail ExprID) ExprID {
	return e.new(ExprBlock, span, PayloadID(e.Blocks.Allocate(ExprBlockData{Stmts: stmts, Tail: tail})))
}

func (e *Exprs) Block(id ExprID) (*ExprBlockData, bool) {
	p, ok := e.payload(id, ExprBlock)
	if !ok {
		return nil, false
	}
	return e.Blocks.Get(p), true
}

func (e *Exprs) NewIf(span source.Span, cond, then, els ExprID) ExprID {
	return e.new(ExprIf, span, PayloadID(e.Ifs.Allocate(ExprIfData{Cond: cond, Then: then, Else: els})))
}

func (e *Exprs) If(id ExprID) (*ExprIfData, bool) {
	p, ok := e.payload(id, ExprIf)
	if !ok {
		return nil, false
	}
	return e.Ifs.Get(p), true
}

func (e *Exprs) NewMatch(span source.Span, scrutinee ExprID, arms []MatchArm) ExprID {
	return e.new(ExprMatch, span, PayloadID(e.Matches.Allocate(ExprMatchData{Scrutinee: scrutinee, Arms: arms})))
}

func (e *Exprs) Match(id ExprID) (*ExprMatchData, bool) {
	p, ok := e.payload(id, ExprMatch)
	if !ok {
		return nil, false
	}
	return e.Matches.Get(p), true
}

func (e *Exprs) NewWhile(span source.Span, cond, body ExprID) ExprID {
	return e.new(ExprWhile, span, PayloadID(e.Whiles.Allocate(ExprWhileData{Cond: cond, Body: body})))
}

func (e *Exprs) While(id ExprID) (*ExprWhileData, bool) {
	p, ok := e.payload(id, ExprWhile)
	if !ok {
		return nil, false
	}
	return e.Whiles.Get(p), true
}

// NewJump allocates break or continue.
func (e *Exprs) NewJump(kind ExprKind, span source.Span) ExprID {
	return e.new(kind, span, NoPayloadID)
}

func (e *Exprs) NewReturn(span source.Span, value ExprID) ExprID {
	return e.new(ExprReturn, span, PayloadID(e.Returns.Allocate(ExprReturnData{Value: value})))
}

func (e *Exprs) Return(id ExprID) (*ExprReturnData, bool) {
	p, ok := e.payload(id, ExprReturn)
	if !ok {
		return nil, false
	}
	return e.Returns.Get(p), true
}

func (e *Exprs) NewStorage(span source.Span) ExprID {
	return e.new(ExprStorage, span, NoPayloadID)
}

// IsBlockLike reports whether the expression ends with a block and may sit in
// statement position without a trailing ';'.
func (e *Exprs) IsBlockLike(id ExprID) bool {
	ex := e.Get(id)
	if ex == nil {
		return false
	}
	switch ex.Kind {
	case ExprBlock, ExprIf, ExprMatch, ExprWhile:
		return true
	}
	return false
}
