package ast

import (
	"swell/internal/source"
	"swell/internal/token"
)

type ExprKind uint8

const (
	ExprError ExprKind = iota
	ExprLit
	ExprPath
	ExprCall
	ExprMethodCall
	ExprField
	ExprTupleIndex
	ExprIndex
	ExprUnary
	ExprBinary
	ExprAssign
	ExprStruct
	ExprTuple
	ExprParen
	ExprArray
	ExprArrayRepeat
	ExprBlock
	ExprIf
	ExprMatch
	ExprWhile
	ExprBreak
	ExprContinue
	ExprReturn
	ExprStorage // ключевое слово `storage` как корень доступа к слотам
)

type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Payload PayloadID
}

type LitKind uint8

const (
	LitInt LitKind = iota
	LitBool
	LitString
)

type ExprLitData struct {
	Kind LitKind
	// Raw is the source spelling; Value is the processed content (digits
	// without separators, unescaped string, "true"/"false").
	Raw    string
	Value  string
	Suffix string
}

type ExprPathData struct {
	Path Path
}

type ExprCallData struct {
	Callee ExprID
	Args   []ExprID
}

type ExprMethodCallData struct {
	Recv     ExprID
	Name     source.StringID
	NameSpan source.Span
	Generics []TypeID
	Args     []ExprID
}

type ExprFieldData struct {
	Base     ExprID
	Name     source.StringID
	NameSpan source.Span
}

type ExprTupleIndexData struct {
	Base  ExprID
	Index uint32
}

type ExprIndexData struct {
	Base  ExprID
	Index ExprID
}

type UnaryOp uint8

const (
	UnaryNeg UnaryOp = iota
	UnaryNot
	UnaryRef
	UnaryRefMut
	UnaryDeref
)

type ExprUnaryData struct {
	Op      UnaryOp
	Operand ExprID
}

type ExprBinaryData struct {
	Op    token.Kind // Plus, EqEq, AndAnd, ...
	Left  ExprID
	Right ExprID
}

type ExprAssignData struct {
	Op    token.Kind // Assign или составной (+= ...)
	Place ExprID
	Value ExprID
}

type FieldInit struct {
	Name source.StringID
	Span source.Span
	// Value is NoExprID for shorthand `S { x }`.
	Value ExprID
}

type ExprStructData struct {
	Path   Path
	Fields []FieldInit
}

type ExprListData struct {
	Elems []ExprID
}

type ExprParenData struct {
	Inner ExprID
}

type ExprArrayRepeatData struct {
	Value ExprID
	Count ExprID
}

type ExprBlockData struct {
	Stmts []StmtID
	// Tail is the trailing expression without ';' (block value).
	Tail ExprID
}

type ExprIfData struct {
	Cond ExprID
	Then ExprID // ExprBlock
	Else ExprID // ExprBlock, ExprIf или NoExprID
}

type MatchArm struct {
	Pat  PatID
	Body ExprID
	Span source.Span
}

type ExprMatchData struct {
	Scrutinee ExprID
	Arms      []MatchArm
}

type ExprWhileData struct {
	Cond ExprID
	Body ExprID
}

type ExprReturnData struct {
	Value ExprID
}
