package layout_test

import (
	"errors"
	"slices"
	"testing"

	"swell/internal/layout"
	"swell/internal/symbols"
	"swell/internal/types"
)

func TestScalarAndAggregateLayouts(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	in.RegisterStruct(&types.StructInfo{Decl: 1, Name: "Pair", Fields: []types.StructField{
		{Name: "a", Type: b.U8},
		{Name: "b", Type: b.U64},
		{Name: "c", Type: b.Bool},
	}})
	in.RegisterEnum(&types.EnumInfo{Decl: 2, Name: "E", Variants: []types.Variant{
		{Name: "A", Type: b.Unit},
		{Name: "B", Type: in.Tuple(b.U8, b.U8)},
		{Name: "C", Type: b.B256},
	}})
	le := layout.New(layout.Default(), in)

	tests := []struct {
		name    string
		ty      types.TypeID
		size    int
		align   int
		memcopy bool
		refs    bool
	}{
		{"unit", b.Unit, 0, 1, true, false},
		{"bool", b.Bool, 1, 1, true, false},
		{"u16", b.U16, 2, 2, true, false},
		{"u64", b.U64, 8, 8, true, false},
		{"u256", b.U256, 32, 8, false, false},
		{"b256", b.B256, 32, 8, false, false},
		{"str", b.Str, 16, 8, false, true},
		{"str[5]", in.StrArray(5), 5, 1, true, false},
		{"ref", in.Ref(b.U64, false), 8, 8, false, true},
		{"array", in.Array(b.U16, 3), 6, 2, true, false},
		{"tuple", in.Tuple(b.U8, b.U32), 8, 4, true, false},
		{"struct", in.Struct(1), 24, 8, false, false},
		{"enum", in.Enum(2), 40, 8, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := le.Of(tt.ty)
			if err != nil {
				t.Fatalf("Of: %v", err)
			}
			if l.Size != tt.size || l.Align != tt.align || l.Memcopy != tt.memcopy || l.HasRefs != tt.refs {
				t.Fatalf("layout = %+v, want size %d align %d memcopy %v refs %v", l, tt.size, tt.align, tt.memcopy, tt.refs)
			}
		})
	}

	l, _ := le.Of(in.Struct(1))
	if !slices.Equal(l.FieldOffsets, []int{0, 8, 16}) {
		t.Fatalf("field offsets = %v", l.FieldOffsets)
	}
	if off, _ := le.FieldOffset(in.Struct(1), 2); off != 16 {
		t.Fatalf("FieldOffset(c) = %d", off)
	}
}

func TestRecursiveTypeReportsError(t *testing.T) {
	in := types.NewInterner()
	in.SetNamer(func(id symbols.DeclID) string { return "Node" })
	node := in.Struct(1)
	in.RegisterStruct(&types.StructInfo{Decl: 1, Name: "Node", Fields: []types.StructField{
		{Name: "next", Type: in.Tuple(in.Builtins().U64, node)},
	}})
	le := layout.New(layout.Default(), in)
	_, err := le.Of(node)
	var lerr *layout.LayoutError
	if !errors.As(err, &lerr) {
		t.Fatalf("expected *layout.LayoutError, got %T (%v)", err, err)
	}
	if lerr.Kind != layout.LayoutErrRecursive || len(lerr.Cycle) < 2 {
		t.Fatalf("error = %+v", lerr)
	}
	// cached result must be the same error
	if _, again := le.Of(node); again == nil {
		t.Fatal("second query lost the error")
	}

	// references break the cycle
	in.RegisterStruct(&types.StructInfo{Decl: 2, Name: "Link", Fields: []types.StructField{
		{Name: "next", Type: in.Ref(in.Struct(2), false)},
	}})
	if _, err := le.Of(in.Struct(2)); err != nil {
		t.Fatalf("Link: %v", err)
	}
}

func TestGenericHasNoLayout(t *testing.T) {
	in := types.NewInterner()
	le := layout.New(layout.Default(), in)
	_, err := le.Of(in.Generic(1, 0, "T"))
	var lerr *layout.LayoutError
	if !errors.As(err, &lerr) || lerr.Kind != layout.LayoutErrUnsized {
		t.Fatalf("err = %v", err)
	}
}
