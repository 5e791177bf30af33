package lower

import (
	"bytes"
	"context"
	"encoding/hex"
	"strings"
	"testing"

	"swell/internal/diag"
	"swell/internal/hir"
	"swell/internal/ir"
	"swell/internal/project"
	"swell/internal/sema"
	"swell/internal/symbols"
)

func typedProgram(t *testing.T, src string) *hir.Program {
	t.Helper()
	p := project.MapProvider{Files: map[string][]byte{"src/main.sw": []byte(src)}}
	bag := diag.NewBag(100)
	r := diag.BagReporter{Bag: bag}
	ctx := context.Background()
	g, err := project.BuildGraph(ctx, "src/main.sw", p, project.Options{Jobs: 1, Reporter: r})
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	tbl, err := symbols.Resolve(ctx, g, symbols.Options{Jobs: 1, Reporter: r})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	res := sema.Check(ctx, g, tbl, sema.Options{Reporter: r})
	if bag.HasErrors() {
		t.Fatalf("front-end errors: %v", bag.Items())
	}
	return res.Program
}

func lowerSource(t *testing.T, src string, jobs int) *ir.Module {
	t.Helper()
	m, err := Module(context.Background(), typedProgram(t, src), Options{Jobs: jobs})
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	return m
}

func dump(t *testing.T, m *ir.Module) (string, []byte) {
	t.Helper()
	var sb strings.Builder
	if err := ir.Print(&sb, m); err != nil {
		t.Fatalf("print: %v", err)
	}
	data, err := ir.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return sb.String(), data
}

const genericSrc = `library;
fn identity<T>(x: T) -> T { x }
fn a() -> u8 { identity(1u8) }
fn b() -> u8 { identity(2u8) }
fn c() -> u64 { identity(3) }
`

func TestGenericInstantiatedOncePerArgs(t *testing.T) {
	m := lowerSource(t, genericSrc, 4)
	count := map[string]int{}
	for _, f := range m.Funcs {
		count[f.Symbol]++
	}
	for _, sym := range []string{"identity<u8>", "identity<u64>", "a", "b", "c"} {
		if count[sym] != 1 {
			t.Errorf("%s lowered %d times, want 1", sym, count[sym])
		}
	}
	if len(m.Funcs) != 5 {
		t.Errorf("funcs = %d, want 5", len(m.Funcs))
	}
	if m.Func("identity<u8>") == nil {
		t.Fatal("Func lookup failed")
	}
}

func TestLoweringIsDeterministic(t *testing.T) {
	text1, data1 := dump(t, lowerSource(t, genericSrc, 1))
	text2, data2 := dump(t, lowerSource(t, genericSrc, 8))
	if text1 != text2 {
		t.Fatalf("printed IR differs:\n%s\n---\n%s", text1, text2)
	}
	if !bytes.Equal(data1, data2) {
		t.Fatal("encoded IR differs between runs")
	}
	back, err := ir.Unmarshal(data1)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	text3, _ := dump(t, back)
	if text3 != text1 {
		t.Fatalf("decoded IR prints differently:\n%s", text3)
	}
}

func TestControlFlowLowersToValidSSA(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "if else",
			src: `library;
fn max(a: u64, b: u64) -> u64 {
    if a > b { a } else { b }
}
`,
			want: []string{"gt bool", "cond_br"},
		},
		{
			name: "while with break",
			src: `library;
fn sum(n: u64) -> u64 {
    let mut i = 0;
    let mut acc = 0;
    while true {
        if i == n { break; }
        acc += i;
        i += 1;
    }
    acc
}
`,
			want: []string{"add u64", "eq bool"},
		},
		{
			name: "logical operators",
			src: `library;
fn both(a: bool, b: bool) -> bool { a && !b || b }
`,
			want: []string{"not bool", "cond_br"},
		},
		{
			name: "enum match",
			src: `library;
enum Shape { Dot: (), Square: u64 }
fn area(s: Shape) -> u64 {
    match s {
        Shape::Dot => 0,
        Shape::Square(side) => side * side,
    }
}
`,
			want: []string{"enum_tag u64", "switch", "enum_payload u64", "mul u64"},
		},
		{
			name: "literal match",
			src: `library;
fn name(x: u64) -> u64 {
    match x {
        0 => 10,
        1 | 2 => 20,
        _ => 30,
    }
}
`,
			want: []string{"eq bool", "cond_br"},
		},
		{
			name: "tuple destructuring",
			src: `library;
fn swap(p: (u64, bool)) -> (bool, u64) {
    let (a, b) = p;
    (b, a)
}
`,
			want: []string{"field_addr u64", "aggregate"},
		},
		{
			name: "struct fields",
			src: `library;
struct P { x: u64, y: u64 }
fn norm(p: P) -> u64 { p.x * p.x + p.y * p.y }
`,
			want: []string{"field_addr u64", "add u64"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := lowerSource(t, tt.src, 1)
			if err := ir.Validate(m); err != nil {
				t.Fatalf("validate: %v", err)
			}
			text, _ := dump(t, m)
			for _, w := range tt.want {
				if !strings.Contains(text, w) {
					t.Errorf("IR lacks %q:\n%s", w, text)
				}
			}
		})
	}
}

const counterSrc = `contract;
abi Counter {
    #[storage(read)]
    fn get() -> u64;
    #[storage(read, write)]
    fn add(n: u64);
}
storage {
    count: u64 = 5,
    owner: b256 = 0x0000000000000000000000000000000000000000000000000000000000000001,
}
impl Counter for Contract {
    #[storage(read)]
    fn get() -> u64 { storage.count.read() }
    #[storage(read, write)]
    fn add(n: u64) { storage.count.write(storage.count.read() + n); }
}
`

func TestContractStorageAndAbi(t *testing.T) {
	m := lowerSource(t, counterSrc, 2)
	if m.Program != "contract" {
		t.Fatalf("program = %q", m.Program)
	}
	if len(m.Storage) != 2 {
		t.Fatalf("storage slots = %d, want 2", len(m.Storage))
	}
	count, owner := m.Storage[0], m.Storage[1]
	if count.Key != SlotKey("count") || owner.Key != SlotKey("owner") {
		t.Fatal("slot keys are not derived from field names")
	}
	if count.Key == owner.Key {
		t.Fatal("distinct fields share a key")
	}
	if want := []byte{0, 0, 0, 0, 0, 0, 0, 5}; !bytes.Equal(count.Init, want) {
		t.Fatalf("count init = %x, want %x", count.Init, want)
	}
	if count.Offset != 0 || owner.Offset != 8 {
		t.Fatalf("offsets = %d, %d; want 0, 8", count.Offset, owner.Offset)
	}
	if len(owner.Init) != 32 || owner.Init[31] != 1 {
		t.Fatalf("owner init = %x", owner.Init)
	}

	if len(m.Abi) != 2 {
		t.Fatalf("abi methods = %d, want 2", len(m.Abi))
	}
	get, add := m.Abi[0], m.Abi[1]
	if get.Signature != "get()" || add.Signature != "add(u64)" {
		t.Fatalf("signatures = %q, %q", get.Signature, add.Signature)
	}
	if get.Selector != Selector("get()") {
		t.Fatal("selector mismatch")
	}
	if !get.Reads || get.Writes || !add.Reads || !add.Writes {
		t.Fatalf("effects: get %v/%v, add %v/%v", get.Reads, get.Writes, add.Reads, add.Writes)
	}
	if len(m.Entries) != 2 {
		t.Fatalf("entries = %v", m.Entries)
	}

	text, _ := dump(t, m)
	for _, w := range []string{"storage_read u64 s0", "storage_write u64 s0", "entry=abi"} {
		if !strings.Contains(text, w) {
			t.Errorf("IR lacks %q:\n%s", w, text)
		}
	}
}

func TestSelectorIsLegacyKeccak(t *testing.T) {
	sel := Selector("transfer(address,uint256)")
	if got := hex.EncodeToString(sel[:]); got != "a9059cbb" {
		t.Fatalf("selector = %s, want a9059cbb", got)
	}
}

func TestTypeTableIsDense(t *testing.T) {
	m := lowerSource(t, counterSrc, 1)
	seen := map[string]bool{}
	for _, ty := range m.Types {
		if seen[ty.Label] {
			t.Errorf("type %s listed twice", ty.Label)
		}
		seen[ty.Label] = true
	}
	if !seen["u64"] || !seen["b256"] {
		t.Fatalf("type table lacks u64 or b256: %v", seen)
	}
}
