package hir

import (
	"math/big"
	"strconv"
	"strings"

	"swell/internal/types"
)

// ValueKind enumerates compile-time constant value kinds.
type ValueKind uint8

const (
	ValueUnit ValueKind = iota
	ValueInt
	ValueBool
	ValueString
	ValueB256
	// ValueAggregate covers tuples, arrays and structs (fields in order).
	ValueAggregate
	ValueVariant
)

// Value is the result of constant evaluation.
type Value struct {
	Kind  ValueKind
	Type  types.TypeID
	Int   *big.Int
	Bool  bool
	Str   string
	B256  [32]byte
	Elems []*Value
	// Index is the variant index; Elems[0] holds its payload.
	Index int
}

// String renders the value for IR dumps and tests.
func (v *Value) String() string {
	if v == nil {
		return "<none>"
	}
	var sb strings.Builder
	v.write(&sb)
	return sb.String()
}

func (v *Value) write(sb *strings.Builder) {
	switch v.Kind {
	case ValueUnit:
		sb.WriteString("()")
	case ValueInt:
		sb.WriteString(v.Int.String())
	case ValueBool:
		if v.Bool {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case ValueString:
		sb.WriteString(`"` + v.Str + `"`)
	case ValueB256:
		sb.WriteString("0x")
		const hex = "0123456789abcdef"
		for _, b := range v.B256 {
			sb.WriteByte(hex[b>>4])
			sb.WriteByte(hex[b&0xf])
		}
	case ValueAggregate:
		sb.WriteString("{")
		for i, e := range v.Elems {
			if i > 0 {
				sb.WriteString(", ")
			}
			e.write(sb)
		}
		sb.WriteString("}")
	case ValueVariant:
		sb.WriteString("#")
		sb.WriteString(strconv.Itoa(v.Index))
		if len(v.Elems) > 0 {
			sb.WriteString("(")
			v.Elems[0].write(sb)
			sb.WriteString(")")
		}
	}
}
