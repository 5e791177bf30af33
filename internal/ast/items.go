package ast

import "swell/internal/source"

// Items manages allocation of item headers and per-kind payloads.
type Items struct {
	Arena      *Arena[Item]
	Fns        *Arena[FnItem]
	Structs    *Arena[StructItem]
	Enums      *Arena[EnumItem]
	Traits     *Arena[TraitItem]
	Impls      *Arena[ImplItem]
	Abis       *Arena[AbiItem]
	Blocks     *Arena[BlockItem]
	Consts     *Arena[ConstItem]
	AssocTypes *Arena[AssocTypeItem]
	Uses       *Arena[UseItem]
	Mods       *Arena[ModItem]
}

func NewItems(capHint uint) *Items {
	if capHint == 0 {
		capHint = 1 << 6
	}
	return &Items{
		Arena:      NewArena[Item](capHint),
		Fns:        NewArena[FnItem](capHint),
		Structs:    NewArena[StructItem](capHint / 4),
		Enums:      NewArena[EnumItem](capHint / 4),
		Traits:     NewArena[TraitItem](capHint / 8),
		Impls:      NewArena[ImplItem](capHint / 4),
		Abis:       NewArena[AbiItem](1),
		Blocks:     NewArena[BlockItem](2),
		Consts:     NewArena[ConstItem](capHint / 4),
		AssocTypes: NewArena[AssocTypeItem](1),
		Uses:       NewArena[UseItem](capHint / 4),
		Mods:       NewArena[ModItem](capHint / 8),
	}
}

func (i *Items) new(kind ItemKind, span source.Span, public bool, attrs []Attr, payload PayloadID) ItemID {
	return ItemID(i.Arena.Allocate(Item{Kind: kind, Span: span, Public: public, Attrs: attrs, Payload: payload}))
}

// Get returns the item header or nil.
func (i *Items) Get(id ItemID) *Item {
	return i.Arena.Get(uint32(id))
}

func (i *Items) payload(id ItemID, kinds ...ItemKind) (uint32, bool) {
	it := i.Get(id)
	if it == nil {
		return 0, false
	}
	for _, k := range kinds {
		if it.Kind == k {
			return uint32(it.Payload), true
		}
	}
	return 0, false
}

func (i *Items) NewError(span source.Span) ItemID {
	return i.new(ItemError, span, false, nil, NoPayloadID)
}

func (i *Items) NewFn(span source.Span, public bool, attrs []Attr, data FnItem) ItemID {
	return i.new(ItemFn, span, public, attrs, PayloadID(i.Fns.Allocate(data)))
}

func (i *Items) Fn(id ItemID) (*FnItem, bool) {
	p, ok := i.payload(id, ItemFn)
	if !ok {
		return nil, false
	}
	return i.Fns.Get(p), true
}

func (i *Items) NewStruct(span source.Span, public bool, attrs []Attr, data StructItem) ItemID {
	return i.new(ItemStruct, span, public, attrs, PayloadID(i.Structs.Allocate(data)))
}

func (i *Items) Struct(id ItemID) (*StructItem, bool) {
	p, ok := i.payload(id, ItemStruct)
	if !ok {
		return nil, false
	}
	return i.Structs.Get(p), true
}

func (i *Items) NewEnum(span source.Span, public bool, attrs []Attr, data EnumItem) ItemID {
	return i.new(ItemEnum, span, public, attrs, PayloadID(i.Enums.Allocate(data)))
}

func (i *Items) Enum(id ItemID) (*EnumItem, bool) {
	p, ok := i.payload(id, ItemEnum)
	if !ok {
		return nil, false
	}
	return i.Enums.Get(p), true
}

func (i *Items) NewTrait(span source.Span, public bool, attrs []Attr, data TraitItem) ItemID {
	return i.new(ItemTrait, span, public, attrs, PayloadID(i.Traits.Allocate(data)))
}

func (i *Items) Trait(id ItemID) (*TraitItem, bool) {
	p, ok := i.payload(id, ItemTrait)
	if !ok {
		return nil, false
	}
	return i.Traits.Get(p), true
}

// NewImpl picks ItemImplTrait or ItemImplSelf depending on data.Trait.
func (i *Items) NewImpl(span source.Span, attrs []Attr, data ImplItem) ItemID {
	kind := ItemImplSelf
	if data.Trait != nil {
		kind = ItemImplTrait
	}
	return i.new(kind, span, false, attrs, PayloadID(i.Impls.Allocate(data)))
}

func (i *Items) Impl(id ItemID) (*ImplItem, bool) {
	p, ok := i.payload(id, ItemImplTrait, ItemImplSelf)
	if !ok {
		return nil, false
	}
	return i.Impls.Get(p), true
}

func (i *Items) NewAbi(span source.Span, public bool, attrs []Attr, data AbiItem) ItemID {
	return i.new(ItemAbi, span, public, attrs, PayloadID(i.Abis.Allocate(data)))
}

func (i *Items) Abi(id ItemID) (*AbiItem, bool) {
	p, ok := i.payload(id, ItemAbi)
	if !ok {
		return nil, false
	}
	return i.Abis.Get(p), true
}

// NewSlotBlock allocates a storage or configurable block.
func (i *Items) NewSlotBlock(kind ItemKind, span source.Span, attrs []Attr, data BlockItem) ItemID {
	return i.new(kind, span, false, attrs, PayloadID(i.Blocks.Allocate(data)))
}

func (i *Items) SlotBlock(id ItemID) (*BlockItem, bool) {
	p, ok := i.payload(id, ItemStorage, ItemConfigurable)
	if !ok {
		return nil, false
	}
	return i.Blocks.Get(p), true
}

func (i *Items) NewConst(span source.Span, public bool, attrs []Attr, data ConstItem) ItemID {
	return i.new(ItemConst, span, public, attrs, PayloadID(i.Consts.Allocate(data)))
}

func (i *Items) Const(id ItemID) (*ConstItem, bool) {
	p, ok := i.payload(id, ItemConst)
	if !ok {
		return nil, false
	}
	return i.Consts.Get(p), true
}

func (i *Items) NewAssocType(span source.Span, attrs []Attr, data AssocTypeItem) ItemID {
	return i.new(ItemAssocType, span, false, attrs, PayloadID(i.AssocTypes.Allocate(data)))
}

func (i *Items) AssocType(id ItemID) (*AssocTypeItem, bool) {
	p, ok := i.payload(id, ItemAssocType)
	if !ok {
		return nil, false
	}
	return i.AssocTypes.Get(p), true
}

func (i *Items) NewUse(span source.Span, public bool, attrs []Attr, data UseItem) ItemID {
	return i.new(ItemUse, span, public, attrs, PayloadID(i.Uses.Allocate(data)))
}

func (i *Items) Use(id ItemID) (*UseItem, bool) {
	p, ok := i.payload(id, ItemUse)
	if !ok {
		return nil, false
	}
	return i.Uses.Get(p), true
}

func (i *Items) NewMod(span source.Span, public bool, attrs []Attr, data ModItem) ItemID {
	return i.new(ItemMod, span, public, attrs, PayloadID(i.Mods.Allocate(data)))
}

func (i *Items) Mod(id ItemID) (*ModItem, bool) {
	p, ok := i.payload(id, ItemMod)
	if !ok {
		return nil, false
	}
	return i.Mods.Get(p), true
}
