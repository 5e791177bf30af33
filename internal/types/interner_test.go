package types

import (
	"testing"

	"swell/internal/symbols"
)

func TestInternerBuiltins(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	if b.Unit == NoTypeID || b.Bool == NoTypeID || b.U64 == NoTypeID {
		t.Fatalf("builtins not initialized")
	}
	if in.Kind(b.U256) != KindUint || in.MustLookup(b.U256).Width != Width256 {
		t.Fatalf("u256 descriptor = %+v", in.MustLookup(b.U256))
	}
	if in.Tuple() != b.Unit {
		t.Fatalf("empty tuple must be unit")
	}
}

func TestInternerDeduplicatesDescriptors(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	a1 := in.Array(in.Tuple(b.U8, b.Bool), 4)
	a2 := in.Array(in.Tuple(b.U8, b.Bool), 4)
	if a1 != a2 {
		t.Fatalf("array types should be deduplicated")
	}
	if in.Ref(b.U8, true) == in.Ref(b.U8, false) {
		t.Fatalf("mutable and immutable references must differ")
	}
	if in.FreshVar() == in.FreshVar() {
		t.Fatalf("placeholders must be distinct")
	}
}

func TestInstantiateAndMatch(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	const point symbols.DeclID = 7
	tp := in.Generic(point, 0, "T")
	in.RegisterStruct(&StructInfo{Decl: point, Name: "Point", Params: []TypeID{tp}, Fields: []StructField{
		{Name: "x", Type: tp}, {Name: "y", Type: in.Array(tp, 2)},
	}})
	in.SetNamer(func(symbols.DeclID) string { return "Point" })

	concrete := in.Struct(point, b.U8)
	fields := in.StructFields(concrete)
	if len(fields) != 2 || fields[0] != b.U8 || fields[1] != in.Array(b.U8, 2) {
		t.Fatalf("fields = %v", fields)
	}
	if got := Label(in, concrete); got != "Point<u8>" {
		t.Fatalf("Label = %q", got)
	}

	const impl symbols.DeclID = 9
	ip := in.Generic(impl, 0, "U")
	out := make([]TypeID, 1)
	if !in.Match(in.Struct(point, ip), concrete, []TypeID{ip}, out) || out[0] != b.U8 {
		t.Fatalf("Match bound %v", out)
	}
	if in.Match(in.Struct(point, b.U64), concrete, nil, nil) {
		t.Fatalf("Point<u64> must not match Point<u8>")
	}
	blanket := in.Generic(impl, 1, "V")
	if !in.MoreSpecific(in.Struct(point, ip), []TypeID{ip}, blanket, []TypeID{blanket}) {
		t.Fatalf("Point<U> is more specific than a blanket V")
	}
	if in.MoreSpecific(blanket, []TypeID{blanket}, in.Struct(point, ip), []TypeID{ip}) {
		t.Fatalf("blanket V is not more specific")
	}
}

func TestLabels(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	tests := []struct {
		id   TypeID
		want string
	}{
		{b.Unit, "()"},
		{in.Tuple(b.U8), "(u8,)"},
		{in.Tuple(b.U8, b.Bool), "(u8, bool)"},
		{in.Ref(b.B256, true), "&mut b256"},
		{in.StrArray(5), "str[5]"},
		{in.StorageMap(b.B256, b.U64), "StorageMap<b256, u64>"},
		{in.StorageVec(b.U32), "StorageVec<u32>"},
		{in.Array(b.U16, 3), "[u16; 3]"},
	}
	for _, tt := range tests {
		if got := Label(in, tt.id); got != tt.want {
			t.Errorf("Label = %q, want %q", got, tt.want)
		}
	}
}

func TestConcurrentIntern(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	done := make(chan TypeID, 8)
	for range 8 {
		go func() { done <- in.Array(in.Tuple(b.U8, b.U64), 16) }()
	}
	first := <-done
	for range 7 {
		if got := <-done; got != first {
			t.Fatalf("concurrent intern produced %d and %d", first, got)
		}
	}
}
