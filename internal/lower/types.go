package lower

import (
	"swell/internal/ir"
	"swell/internal/types"
)

// typeTable numbers front-end types in order of first appearance. The
// walk order is fixed (functions by symbol, then storage, then
// configurables), so equal programs get equal tables.
type typeTable struct {
	l     *lowerer
	index map[types.TypeID]ir.TypeRef
	out   []ir.Type
}

func (l *lowerer) finishTypes(m *ir.Module) {
	tt := &typeTable{l: l, index: make(map[types.TypeID]ir.TypeRef)}
	for _, f := range m.Funcs {
		for i := range f.Params {
			f.Params[i].Type = tt.ref(f.Params[i].Type)
		}
		f.Ret = tt.ref(f.Ret)
		for _, blk := range f.Blocks {
			for i := range blk.Instrs {
				blk.Instrs[i].Type = tt.ref(blk.Instrs[i].Type)
			}
		}
	}
	for i := range m.Storage {
		m.Storage[i].Type = tt.ref(m.Storage[i].Type)
	}
	for i := range m.Configurables {
		m.Configurables[i].Type = tt.ref(m.Configurables[i].Type)
	}
	m.Types = tt.out
}

func (tt *typeTable) ref(r ir.TypeRef) ir.TypeRef {
	return tt.intern(types.TypeID(r))
}

func (tt *typeTable) intern(id types.TypeID) ir.TypeRef {
	if ref, ok := tt.index[id]; ok {
		return ref
	}
	ref := ir.TypeRef(len(tt.out))
	tt.index[id] = ref
	// место резервируется до обхода элементов: рекурсия через ссылки
	tt.out = append(tt.out, ir.Type{})
	d := tt.describe(id)
	tt.out[ref] = d
	return ref
}

func (tt *typeTable) describe(id types.TypeID) ir.Type {
	in := tt.l.in
	t, _ := in.Lookup(id)
	d := ir.Type{Label: in.Label(id)}
	if lay, err := tt.l.layout.Of(id); err == nil {
		d.Size, _ = toU32(lay.Size)
		d.Align, _ = toU32(lay.Align)
		d.Memcopy = lay.Memcopy
	}
	elems := func(ids []types.TypeID) []ir.TypeRef {
		out := make([]ir.TypeRef, len(ids))
		for i, e := range ids {
			out[i] = tt.intern(e)
		}
		return out
	}
	switch t.Kind {
	case types.KindUnit:
		d.Kind = ir.TypeUnit
	case types.KindNever:
		d.Kind = ir.TypeNever
	case types.KindBool:
		d.Kind = ir.TypeBool
	case types.KindUint:
		d.Kind = ir.TypeUint
		d.Width = uint16(t.Width)
	case types.KindB256:
		d.Kind = ir.TypeB256
	case types.KindStr:
		d.Kind = ir.TypeStr
	case types.KindStrArray:
		d.Kind = ir.TypeStrArray
		d.Len = t.Count
	case types.KindTuple:
		d.Kind = ir.TypeTuple
		d.Elems = elems(t.Args)
	case types.KindArray:
		d.Kind = ir.TypeArray
		d.Len = t.Count
		d.Elems = elems([]types.TypeID{t.Elem})
	case types.KindRef:
		d.Kind = ir.TypePtr
		d.Elems = elems([]types.TypeID{t.Elem})
	case types.KindStruct:
		d.Kind = ir.TypeStruct
		d.Elems = elems(in.StructFields(id))
		if info, ok := in.StructInfo(t.Decl); ok {
			for _, f := range info.Fields {
				d.Names = append(d.Names, f.Name)
			}
		}
	case types.KindEnum:
		d.Kind = ir.TypeEnum
		d.Elems = elems(in.VariantTypes(id))
		if info, ok := in.EnumInfo(t.Decl); ok {
			for _, v := range info.Variants {
				d.Names = append(d.Names, v.Name)
			}
		}
	case types.KindStorageMap:
		d.Kind = ir.TypeStorage
		d.Elems = elems(t.Args)
	case types.KindStorageVec:
		d.Kind = ir.TypeStorage
		d.Elems = elems([]types.TypeID{t.Elem})
	default:
		// контракты и прочие типы без значения в памяти
		d.Kind = ir.TypeUnit
	}
	return d
}
