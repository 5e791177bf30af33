package hir

import (
	"math/big"

	"swell/internal/source"
	"swell/internal/symbols"
	"swell/internal/token"
	"swell/internal/types"
)

// ExprKind enumerates HIR expression kinds.
// These map closely to CST expression kinds; method calls, paths and
// storage accesses are resolved to their targets.
type ExprKind uint8

const (
	// ExprError stands for an expression that failed to type check.
	ExprError ExprKind = iota
	// ExprLiteral represents integer, bool, string and b256 literals.
	ExprLiteral
	// ExprLocal reads a local binding or parameter.
	ExprLocal
	// ExprConst reads a constant (module, local or associated).
	ExprConst
	// ExprConfigurable reads a configurable value.
	ExprConfigurable
	// ExprCall calls a function; method calls pass the receiver first.
	ExprCall
	// ExprField projects a struct field or a tuple element.
	ExprField
	// ExprIndex indexes an array.
	ExprIndex
	ExprUnary
	ExprBinary
	// ExprAssign covers `=` and compound assignment.
	ExprAssign
	ExprStructLit
	ExprVariant
	ExprTuple
	ExprArray
	ExprRepeat
	ExprBlock
	ExprIf
	ExprMatch
	ExprWhile
	ExprBreak
	ExprContinue
	ExprReturn
	// ExprStorage is a storage place `storage.a.b`.
	ExprStorage
	// ExprStorageOp is a storage primitive such as `.read()` or `insert`.
	ExprStorageOp
	// ExprRevert is `__revert(code)`.
	ExprRevert
)

var exprKindNames = [...]string{
	ExprError:        "Error",
	ExprLiteral:      "Literal",
	ExprLocal:        "Local",
	ExprConst:        "Const",
	ExprConfigurable: "Configurable",
	ExprCall:         "Call",
	ExprField:        "Field",
	ExprIndex:        "Index",
	ExprUnary:        "Unary",
	ExprBinary:       "Binary",
	ExprAssign:       "Assign",
	ExprStructLit:    "StructLit",
	ExprVariant:      "Variant",
	ExprTuple:        "Tuple",
	ExprArray:        "Array",
	ExprRepeat:       "Repeat",
	ExprBlock:        "Block",
	ExprIf:           "If",
	ExprMatch:        "Match",
	ExprWhile:        "While",
	ExprBreak:        "Break",
	ExprContinue:     "Continue",
	ExprReturn:       "Return",
	ExprStorage:      "Storage",
	ExprStorageOp:    "StorageOp",
	ExprRevert:       "Revert",
}

// String returns a human-readable name for the expression kind.
func (k ExprKind) String() string {
	if int(k) < len(exprKindNames) {
		return exprKindNames[k]
	}
	return "Unknown"
}

// Expr represents an HIR expression with type information.
type Expr struct {
	Kind ExprKind
	Type types.TypeID // всегда без плейсхолдеров после Check
	Span source.Span
	Data ExprData
}

// ExprData is the interface for expression-specific data.
type ExprData interface {
	exprData()
}

// LiteralKind enumerates literal value kinds.
type LiteralKind uint8

const (
	LiteralInt LiteralKind = iota
	LiteralBool
	LiteralString
	LiteralB256
)

// LiteralData holds data for ExprLiteral.
type LiteralData struct {
	Kind   LiteralKind
	Int    *big.Int
	Bool   bool
	String string
	B256   [32]byte
}

func (LiteralData) exprData() {}

// LocalData holds data for ExprLocal.
type LocalData struct {
	Local symbols.LocalID
	Name  string
}

func (LocalData) exprData() {}

// ConstData holds data for ExprConst and ExprConfigurable. Associated
// constants carry the impl that provides the value, or the trait together
// with Self for generic code.
type ConstData struct {
	Decl symbols.DeclID
	Name string
	Self types.TypeID
}

func (ConstData) exprData() {}

// CallData holds data for ExprCall. TypeArgs match the callee's Generics.
// A callee that is a trait method is resolved to an impl during lowering,
// once TypeArgs are concrete.
type CallData struct {
	Fn       symbols.DeclID
	TypeArgs []types.TypeID
	Args     []*Expr
	Method   bool
}

func (CallData) exprData() {}

// FieldData holds data for ExprField: a struct field or tuple element.
type FieldData struct {
	Base  *Expr
	Index int
	Name  string
}

func (FieldData) exprData() {}

// IndexData holds data for ExprIndex.
type IndexData struct {
	Base  *Expr
	Index *Expr
}

func (IndexData) exprData() {}

// UnaryOp enumerates unary operators.
type UnaryOp uint8

const (
	UnaryNeg UnaryOp = iota
	UnaryNot
	UnaryRef
	UnaryRefMut
	UnaryDeref
)

var unaryNames = [...]string{UnaryNeg: "-", UnaryNot: "!", UnaryRef: "&", UnaryRefMut: "&mut ", UnaryDeref: "*"}

func (op UnaryOp) String() string { return unaryNames[op] }

// UnaryData holds data for ExprUnary.
type UnaryData struct {
	Op      UnaryOp
	Operand *Expr
}

func (UnaryData) exprData() {}

// BinaryData holds data for ExprBinary. Op is the operator token kind.
type BinaryData struct {
	Op    token.Kind
	Left  *Expr
	Right *Expr
}

func (BinaryData) exprData() {}

// AssignData holds data for ExprAssign. Op is token.Assign or the binary
// operator of a compound assignment (token.Plus for `+=`).
type AssignData struct {
	Op    token.Kind
	Place *Expr
	Value *Expr
}

func (AssignData) exprData() {}

// StructLitData holds data for ExprStructLit; Fields are in declaration
// order.
type StructLitData struct {
	Decl   symbols.DeclID
	Fields []*Expr
}

func (StructLitData) exprData() {}

// VariantData constructs an enum value; Payload is nil for unit variants.
type VariantData struct {
	Enum    symbols.DeclID
	Index   int
	Name    string
	Payload *Expr
}

func (VariantData) exprData() {}

// ListData holds elements of ExprTuple and ExprArray.
type ListData struct {
	Elems []*Expr
}

func (ListData) exprData() {}

// RepeatData holds data for ExprRepeat `[v; n]`.
type RepeatData struct {
	Value *Expr
	Count uint32
}

func (RepeatData) exprData() {}

// BlockData holds data for ExprBlock.
type BlockData struct {
	Block *Block
}

func (BlockData) exprData() {}

// IfData holds data for ExprIf; Else may be nil.
type IfData struct {
	Cond *Expr
	Then *Expr
	Else *Expr
}

func (IfData) exprData() {}

// Arm is one match arm.
type Arm struct {
	Pat  *Pattern
	Body *Expr
	Span source.Span
}

// MatchData holds data for ExprMatch.
type MatchData struct {
	Scrutinee *Expr
	Arms      []Arm
}

func (MatchData) exprData() {}

// WhileData holds data for ExprWhile.
type WhileData struct {
	Cond *Expr
	Body *Expr
}

func (WhileData) exprData() {}

// ReturnData holds data for ExprReturn; Value may be nil.
type ReturnData struct {
	Value *Expr
}

func (ReturnData) exprData() {}

// StorageData is a storage place: a slot and a chain of struct field
// projections inside it.
type StorageData struct {
	Field symbols.DeclID
	Name  string
	Path  []int
	Names []string
}

func (StorageData) exprData() {}

// StorageOp enumerates storage primitives.
type StorageOp uint8

const (
	StorageRead StorageOp = iota
	StorageWrite
	StorageMapGet
	StorageMapInsert
	StorageMapRemove
	StorageVecPush
	StorageVecPop
	StorageVecGet
	StorageVecLen
)

var storageOpNames = [...]string{
	StorageRead:      "read",
	StorageWrite:     "write",
	StorageMapGet:    "get",
	StorageMapInsert: "insert",
	StorageMapRemove: "remove",
	StorageVecPush:   "push",
	StorageVecPop:    "pop",
	StorageVecGet:    "get",
	StorageVecLen:    "len",
}

func (op StorageOp) String() string { return storageOpNames[op] }

// Writes reports whether the primitive mutates storage.
func (op StorageOp) Writes() bool {
	switch op {
	case StorageWrite, StorageMapInsert, StorageMapRemove, StorageVecPush, StorageVecPop:
		return true
	}
	return false
}

// StorageOpData holds data for ExprStorageOp. Place is an ExprStorage.
type StorageOpData struct {
	Op    StorageOp
	Place *Expr
	Args  []*Expr
}

func (StorageOpData) exprData() {}

// RevertData holds data for ExprRevert.
type RevertData struct {
	Code *Expr
}

func (RevertData) exprData() {}
