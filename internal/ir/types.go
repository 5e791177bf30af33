package ir

// TypeKind enumerates type descriptor kinds.
type TypeKind uint8

const (
	TypeUnit TypeKind = iota
	TypeNever
	TypeBool
	TypeUint
	TypeB256
	TypeStr
	TypeStrArray
	TypeTuple
	TypeArray
	TypePtr
	TypeStruct
	TypeEnum
	// TypeStorage marks storage collections, which have no memory value.
	TypeStorage
)

var typeKindNames = [...]string{
	TypeUnit:     "unit",
	TypeNever:    "never",
	TypeBool:     "bool",
	TypeUint:     "uint",
	TypeB256:     "b256",
	TypeStr:      "str",
	TypeStrArray: "str_array",
	TypeTuple:    "tuple",
	TypeArray:    "array",
	TypePtr:      "ptr",
	TypeStruct:   "struct",
	TypeEnum:     "enum",
	TypeStorage:  "storage",
}

func (k TypeKind) String() string {
	if int(k) < len(typeKindNames) {
		return typeKindNames[k]
	}
	return "unknown"
}

// Type is a self-contained type descriptor.
//
//	Uint          Width
//	StrArray      Len
//	Array         Elems[0], Len
//	Ptr           Elems[0]
//	Tuple/Struct  Elems (fields), Names for structs
//	Enum          Elems (payloads), Names (variants)
type Type struct {
	Kind    TypeKind  `msgpack:"kind"`
	Label   string    `msgpack:"label"`
	Width   uint16    `msgpack:"width,omitempty"`
	Len     uint32    `msgpack:"len,omitempty"`
	Size    uint32    `msgpack:"size"`
	Align   uint32    `msgpack:"align"`
	Memcopy bool      `msgpack:"memcopy,omitempty"`
	Elems   []TypeRef `msgpack:"elems,omitempty"`
	Names   []string  `msgpack:"names,omitempty"`
}

// TypeLabel returns the label of ref or a placeholder for bad refs.
func (m *Module) TypeLabel(ref TypeRef) string {
	if int(ref) < len(m.Types) {
		return m.Types[ref].Label
	}
	return "?"
}
