package ir

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"swell/internal/source"
)

const (
	tUnit TypeRef = iota
	tBool
	tU64
)

func testTypes() []Type {
	return []Type{
		{Kind: TypeUnit, Label: "()", Align: 1, Memcopy: true},
		{Kind: TypeBool, Label: "bool", Size: 1, Align: 1, Memcopy: true},
		{Kind: TypeUint, Label: "u64", Width: 64, Size: 8, Align: 8, Memcopy: true},
	}
}

// buildMax lowers `fn max(a: u64, b: u64) -> u64 { if a > b { a } else { b } }`.
func buildMax() *Func {
	var sp source.Span
	b := NewBuilder("max", tU64, sp)
	a := b.Param("a", tU64)
	c := b.Param("b", tU64)
	slot := b.Local(tU64, "result", sp)
	cond := b.Binary(BinGt, tBool, a, c, sp)
	then, els, join := b.NewBlock(), b.NewBlock(), b.NewBlock()
	b.CondBr(cond, then, els, sp)
	b.SetBlock(then)
	b.Store(tU64, slot, a, sp)
	b.Br(join, sp)
	b.SetBlock(els)
	b.Store(tU64, slot, c, sp)
	b.Br(join, sp)
	b.SetBlock(join)
	r := b.Load(tU64, slot, sp)
	b.Ret(r, sp)
	return b.Finish()
}

func testModule(funcs ...*Func) *Module {
	return &Module{Program: "library", Types: testTypes(), Funcs: funcs}
}

func TestValidateAcceptsWellFormedFunction(t *testing.T) {
	m := testModule(buildMax())
	if err := Validate(m); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *Func)
		want   string
	}{
		{
			name:   "missing terminator",
			mutate: func(f *Func) { f.Blocks[3].Term = Term{} },
			want:   "bb3: missing terminator",
		},
		{
			name:   "branch out of range",
			mutate: func(f *Func) { f.Blocks[1].Term.Targets[0] = 9 },
			want:   "branch to missing bb9",
		},
		{
			name: "defined twice",
			mutate: func(f *Func) {
				f.Blocks[3].Instrs[0].Dst = f.Params[0].Value
			},
			want: "defined more than once",
		},
		{
			name: "not dominated",
			mutate: func(f *Func) {
				// значение из then используется в else
				v := Value(f.NumValues + 1)
				f.NumValues++
				f.Blocks[1].Instrs = append(f.Blocks[1].Instrs, Instr{Op: OpConst, Dst: v, Type: tU64, Imm: []byte{1}})
				f.Blocks[2].Instrs[0].Args[1] = v
			},
			want: "does not dominate",
		},
		{
			name: "use before definition",
			mutate: func(f *Func) {
				blk := f.Blocks[3]
				blk.Term.Value = Value(f.NumValues + 1)
			},
			want: "undefined value",
		},
		{
			name:   "return without value",
			mutate: func(f *Func) { f.Blocks[3].Term.Value = NoValue },
			want:   "ret without value",
		},
		{
			name:   "unknown callee",
			mutate: func(f *Func) { f.Blocks[1].Instrs = append(f.Blocks[1].Instrs, Instr{Op: OpCall, Type: tUnit, Sym: "nope"}) },
			want:   "unknown function nope",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := buildMax()
			tt.mutate(f)
			err := Validate(testModule(f))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestPrintIsStable(t *testing.T) {
	m := testModule(buildMax())
	want := `program library

type t0 = unit () size=0 align=1 memcopy
type t1 = bool bool size=1 align=1 memcopy
type t2 = uint u64 size=8 align=8 memcopy

fn max(%1 a: u64, %2 b: u64) -> u64 {
bb0:
  %3 = local u64 "result"
  %4 = gt bool %1, %2
  cond_br %4, bb1, bb2
bb1:
  store u64 %3, %1
  br bb3
bb2:
  store u64 %3, %2
  br bb3
bb3:
  %5 = load u64 %3
  ret %5
}
`
	if got := m.String(); got != want {
		t.Fatalf("Print mismatch:\n%s\nwant:\n%s", got, want)
	}
}

func TestCodecRoundTrip(t *testing.T) {
	m := testModule(buildMax())
	m.Program = "contract"
	m.Storage = []StorageSlot{{Path: "counter", Type: tU64, Key: [32]byte{1, 2, 3}, Init: make([]byte, 8)}}
	m.Abi = []AbiMethod{{Name: "max", Signature: "max(u64,u64)", Selector: [4]byte{0xde, 0xad, 0xbe, 0xef}, Symbol: "max", Reads: true}}
	m.Entries = []string{"max"}

	data, err := Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.String() != m.String() {
		t.Fatalf("round trip changed module:\n%s\nwant:\n%s", got, m)
	}
	again, err := Marshal(got)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Fatal("encoding is not deterministic")
	}
}

func TestDecodeRejectsOtherSchema(t *testing.T) {
	data, err := msgpack.Marshal(envelope{Schema: SchemaVersion + 1, Module: testModule()})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Unmarshal(data); err == nil || !strings.Contains(err.Error(), "schema") {
		t.Fatalf("Unmarshal error = %v, want schema mismatch", err)
	}
}

func TestSimplifyRemovesForwardersAndDeadBlocks(t *testing.T) {
	var sp source.Span
	b := NewBuilder("f", tUnit, sp)
	mid, end, dead := b.NewBlock(), b.NewBlock(), b.NewBlock()
	b.Br(mid, sp)
	b.SetBlock(mid)
	b.Br(end, sp)
	b.SetBlock(end)
	b.Ret(NoValue, sp)
	b.SetBlock(dead)
	b.Ret(NoValue, sp)
	f := b.Finish()

	Simplify(f)
	if len(f.Blocks) != 2 {
		t.Fatalf("blocks = %d, want 2\n%s", len(f.Blocks), testModule(f))
	}
	if f.Blocks[0].Term.Targets[0] != 1 || f.Blocks[1].Term.Kind != TermRet {
		t.Fatalf("unexpected CFG:\n%s", testModule(f))
	}
	if err := Validate(testModule(f)); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestBuilderOpensDeadBlockAfterTerminator(t *testing.T) {
	var sp source.Span
	b := NewBuilder("g", tU64, sp)
	one := b.Const(tU64, []byte{1}, sp)
	b.Ret(one, sp)
	two := b.Const(tU64, []byte{2}, sp)
	b.Ret(two, sp)
	f := b.Finish()
	if len(f.Blocks) != 2 {
		t.Fatalf("blocks = %d, want 2", len(f.Blocks))
	}
	if err := Validate(testModule(f)); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
