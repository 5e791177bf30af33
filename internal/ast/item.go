package ast

import "swell/internal/source"

type ItemKind uint8

const (
	ItemError ItemKind = iota
	ItemFn
	ItemStruct
	ItemEnum
	ItemTrait
	ItemImplTrait
	ItemImplSelf
	ItemAbi
	ItemStorage
	ItemConfigurable
	ItemConst
	ItemAssocType
	ItemUse
	ItemMod
)

var itemKindNames = [...]string{
	ItemError:        "error",
	ItemFn:           "fn",
	ItemStruct:       "struct",
	ItemEnum:         "enum",
	ItemTrait:        "trait",
	ItemImplTrait:    "impl trait",
	ItemImplSelf:     "impl",
	ItemAbi:          "abi",
	ItemStorage:      "storage",
	ItemConfigurable: "configurable",
	ItemConst:        "const",
	ItemAssocType:    "type",
	ItemUse:          "use",
	ItemMod:          "mod",
}

func (k ItemKind) String() string {
	if int(k) < len(itemKindNames) {
		return itemKindNames[k]
	}
	return "item"
}

// Item is the common header of every top-level or member declaration.
type Item struct {
	Kind    ItemKind
	Span    source.Span
	Public  bool
	Attrs   []Attr
	Payload PayloadID
}

// GenericParam is `T: A + B` in a generic parameter list.
type GenericParam struct {
	Name   source.StringID
	Span   source.Span
	Bounds []Path
}

// WherePred is one `Type: A + B` entry of a where clause.
type WherePred struct {
	Type   TypeID
	Bounds []Path
	Span   source.Span
}

type ParamKind uint8

const (
	ParamNamed ParamKind = iota
	ParamSelf
)

// Param is a function parameter; self receivers have no Type.
type Param struct {
	Kind ParamKind
	Name source.StringID
	Span source.Span
	Mut  bool
	Ref  bool // ref mut self
	Type TypeID
}

type FnItem struct {
	Name     source.StringID
	NameSpan source.Span
	Generics []GenericParam
	Params   []Param
	Ret      TypeID // NoTypeID → ()
	Where    []WherePred
	Body     ExprID // NoExprID для сигнатур в trait/abi
}

type Field struct {
	Name   source.StringID
	Span   source.Span
	Type   TypeID
	Public bool
}

type StructItem struct {
	Name     source.StringID
	NameSpan source.Span
	Generics []GenericParam
	Fields   []Field
}

type Variant struct {
	Name source.StringID
	Span source.Span
	Type TypeID // NoTypeID → unit variant
}

type EnumItem struct {
	Name     source.StringID
	NameSpan source.Span
	Generics []GenericParam
	Variants []Variant
}

type TraitItem struct {
	Name     source.StringID
	NameSpan source.Span
	Generics []GenericParam
	Supers   []Path
	Members  []ItemID
}

// ImplItem covers both `impl Trait for T` and inherent `impl T`.
type ImplItem struct {
	Generics []GenericParam
	Trait    *Path // nil для inherent impl
	Self     TypeID
	Where    []WherePred
	Members  []ItemID
}

type AbiItem struct {
	Name     source.StringID
	NameSpan source.Span
	Supers   []Path
	Members  []ItemID
}

// SlotField is a `name: Type = init` entry of storage and configurable blocks.
type SlotField struct {
	Name source.StringID
	Span source.Span
	Type TypeID
	Init ExprID
}

type BlockItem struct {
	Fields []SlotField
}

type ConstItem struct {
	Name     source.StringID
	NameSpan source.Span
	Type     TypeID // может отсутствовать
	Value    ExprID // отсутствует у объявлений в trait
}

type AssocTypeItem struct {
	Name     source.StringID
	NameSpan source.Span
	Value    TypeID // отсутствует у объявлений в trait
}

type UseKind uint8

const (
	UseSimple UseKind = iota // a::b [as c]
	UseGlob                  // a::*
	UseGroup                 // a::{...}
)

// UseTree is a node of a `use` declaration. Prefix holds the segments up to
// this node; Group children extend it.
type UseTree struct {
	Kind      UseKind
	Prefix    []PathSegment
	Alias     source.StringID
	AliasSpan source.Span
	Children  []UseTree
	Span      source.Span
}

type UseItem struct {
	Absolute bool
	Tree     UseTree
}

type ModItem struct {
	Name     source.StringID
	NameSpan source.Span
}
