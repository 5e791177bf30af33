package types

import (
	"swell/internal/source"
	"swell/internal/symbols"
)

// StructField describes a declared field; Type may mention Params.
type StructField struct {
	Name   string
	Type   TypeID
	Public bool
	Span   source.Span
}

// StructInfo is the declared shape of a struct.
type StructInfo struct {
	Decl   symbols.DeclID
	Name   string
	Params []TypeID
	Fields []StructField
}

// Variant describes an enum variant; unit variants carry the unit type.
type Variant struct {
	Name string
	Type TypeID
	Span source.Span
}

// EnumInfo is the declared shape of an enum.
type EnumInfo struct {
	Decl     symbols.DeclID
	Name     string
	Params   []TypeID
	Variants []Variant
}

// FieldIndex returns the position of a named field or -1.
func (s *StructInfo) FieldIndex(name string) int {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return i
		}
	}
	return -1
}

// VariantIndex returns the position of a named variant or -1.
func (e *EnumInfo) VariantIndex(name string) int {
	for i := range e.Variants {
		if e.Variants[i].Name == name {
			return i
		}
	}
	return -1
}

type nominals struct {
	structs map[symbols.DeclID]*StructInfo
	enums   map[symbols.DeclID]*EnumInfo
}

func (n *nominals) init() {
	n.structs = make(map[symbols.DeclID]*StructInfo)
	n.enums = make(map[symbols.DeclID]*EnumInfo)
}

// RegisterStruct records the declared shape of a struct. Registration happens
// during type checking, before concurrent readers start.
func (in *Interner) RegisterStruct(info *StructInfo) {
	in.mu.Lock()
	in.structs[info.Decl] = info
	in.mu.Unlock()
}

// RegisterEnum records the declared shape of an enum.
func (in *Interner) RegisterEnum(info *EnumInfo) {
	in.mu.Lock()
	in.enums[info.Decl] = info
	in.mu.Unlock()
}

// StructInfo returns the declared shape of decl.
func (in *Interner) StructInfo(decl symbols.DeclID) (*StructInfo, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	info, ok := in.structs[decl]
	return info, ok
}

// EnumInfo returns the declared shape of decl.
func (in *Interner) EnumInfo(decl symbols.DeclID) (*EnumInfo, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	info, ok := in.enums[decl]
	return info, ok
}

// StructFields returns the field types of a struct instantiation.
func (in *Interner) StructFields(id TypeID) []TypeID {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindStruct {
		return nil
	}
	info, ok := in.StructInfo(tt.Decl)
	if !ok {
		return nil
	}
	out := make([]TypeID, len(info.Fields))
	for i, f := range info.Fields {
		out[i] = in.Instantiate(f.Type, info.Params, tt.Args)
	}
	return out
}

// VariantTypes returns the payload types of an enum instantiation.
func (in *Interner) VariantTypes(id TypeID) []TypeID {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindEnum {
		return nil
	}
	info, ok := in.EnumInfo(tt.Decl)
	if !ok {
		return nil
	}
	out := make([]TypeID, len(info.Variants))
	for i, v := range info.Variants {
		out[i] = in.Instantiate(v.Type, info.Params, tt.Args)
	}
	return out
}
