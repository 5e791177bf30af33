package types

import (
	"fmt"

	"swell/internal/symbols"
)

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	// KindError is the recovery type: it unifies with everything.
	KindError
	KindUnit
	KindNever
	KindBool
	KindUint
	KindB256
	KindStr
	KindStrArray
	KindTuple
	KindArray
	KindRef
	KindStruct
	KindEnum
	KindGeneric
	KindSelf
	KindVar
	KindStorageMap
	KindStorageVec
	KindAssoc
	KindContract
)

var kindNames = [...]string{
	KindInvalid:    "invalid",
	KindError:      "error",
	KindUnit:       "unit",
	KindNever:      "never",
	KindBool:       "bool",
	KindUint:       "uint",
	KindB256:       "b256",
	KindStr:        "str",
	KindStrArray:   "str array",
	KindTuple:      "tuple",
	KindArray:      "array",
	KindRef:        "reference",
	KindStruct:     "struct",
	KindEnum:       "enum",
	KindGeneric:    "generic",
	KindSelf:       "Self",
	KindVar:        "placeholder",
	KindStorageMap: "StorageMap",
	KindStorageVec: "StorageVec",
	KindAssoc:      "associated type",
	KindContract:   "Contract",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Width captures the precision of unsigned integers.
type Width uint16

const (
	Width8   Width = 8
	Width16  Width = 16
	Width32  Width = 32
	Width64  Width = 64
	Width256 Width = 256
)

// Bytes returns the byte size of the width.
func (w Width) Bytes() uint32 { return uint32(w) / 8 }

// Widths lists the integer widths from narrowest to widest.
var Widths = []Width{Width8, Width16, Width32, Width64, Width256}

// Type is a structural descriptor. Only the fields relevant to Kind are set:
//
//	Uint        Width
//	StrArray    Count (length)
//	Array       Elem, Count
//	Ref         Elem, Mutable
//	Tuple       Args (elements)
//	Struct/Enum Decl, Args
//	Generic     Decl (owner), Count (index), Name
//	Self        Decl (trait, impl or abi)
//	Var         Count (placeholder number)
//	StorageMap  Args (key, value)
//	StorageVec  Elem
//	Assoc       Elem (base), Decl (trait), Name
type Type struct {
	Kind    Kind
	Width   Width
	Count   uint32
	Mutable bool
	Decl    symbols.DeclID
	Name    string
	Elem    TypeID
	Args    []TypeID
}
