package sema

import (
	"context"
	"slices"
	"strings"
	"testing"

	"swell/internal/diag"
	"swell/internal/hir"
	"swell/internal/project"
	"swell/internal/symbols"
)

func checkSource(t *testing.T, src string) (*Result, *diag.Bag) {
	t.Helper()
	p := project.MapProvider{Files: map[string][]byte{"src/main.sw": []byte(src)}}
	bag := diag.NewBag(100)
	r := diag.BagReporter{Bag: bag}
	g, err := project.BuildGraph(context.Background(), "src/main.sw", p, project.Options{Jobs: 1, Reporter: r})
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	tbl, err := symbols.Resolve(context.Background(), g, symbols.Options{Jobs: 1, Reporter: r})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if bag.HasErrors() {
		t.Fatalf("resolve errors: %v", bag.Items())
	}
	return Check(context.Background(), g, tbl, Options{Reporter: r}), bag
}

func wantCodes(t *testing.T, bag *diag.Bag, want ...diag.Code) {
	t.Helper()
	var got []diag.Code
	for _, d := range bag.Items() {
		got = append(got, d.Code)
	}
	slices.Sort(got)
	slices.Sort(want)
	if !slices.Equal(got, want) {
		t.Fatalf("codes = %v, want %v\n%v", got, want, bag.Items())
	}
}

// funcNamed returns the function with a body named name; abi and trait
// declarations without a body are skipped.
func funcNamed(t *testing.T, prog *hir.Program, name string) *hir.Func {
	t.Helper()
	for _, f := range prog.Funcs {
		if f.Name == name && f.Body != nil {
			return f
		}
	}
	t.Fatalf("no function %q", name)
	return nil
}

func TestCheckSimpleFunction(t *testing.T) {
	res, bag := checkSource(t, `library;
fn add(a: u64, b: u64) -> u64 {
    a + b
}
`)
	wantCodes(t, bag)
	f := funcNamed(t, res.Program, "add")
	if got := res.Program.Types.Label(f.Ret); got != "u64" {
		t.Fatalf("ret = %s, want u64", got)
	}
	if f.Body == nil || res.Program.Types.Label(f.Body.Type) != "u64" {
		t.Fatalf("body is not typed as u64")
	}
}

func TestCheckDiagnostics(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []diag.Code
		msg  string
	}{
		{
			name: "mismatch",
			src: `library;
fn f() -> bool { 1 }
`,
			want: []diag.Code{diag.TypMismatch},
		},
		{
			name: "unexpected field",
			src: `library;
struct P { x: u64 }
fn f() -> P { P { x: 1, y: 2 } }
`,
			want: []diag.Code{diag.TypUnexpectedField},
			msg:  "`y`",
		},
		{
			name: "missing field",
			src: `library;
struct P { x: u64, y: u64 }
fn f() -> P { P { x: 1 } }
`,
			want: []diag.Code{diag.TypMissingField},
			msg:  "`y`",
		},
		{
			name: "non exhaustive",
			src: `library;
enum Color { Red: (), Green: (), Blue: () }
fn f(c: Color) -> u64 {
    match c {
        Color::Red => 1,
        Color::Green => 2,
    }
}
`,
			want: []diag.Code{diag.TypNonExhaustive},
			msg:  "Color::Blue",
		},
		{
			name: "literal overflow",
			src: `library;
fn f() -> u8 { 256 }
`,
			want: []diag.Code{diag.TypLiteralOverflow},
		},
		{
			name: "immutable assign",
			src: `library;
fn f() -> u64 {
    let x = 1;
    x = 2;
    x
}
`,
			want: []diag.Code{diag.TypImmutableAssign},
		},
		{
			name: "recursive type",
			src: `library;
struct List { next: List }
`,
			want: []diag.Code{diag.TypRecursiveType},
		},
		{
			name: "missing main",
			src: `script;
fn helper() {}
`,
			want: []diag.Code{diag.TypMissingMain},
		},
		{
			name: "const cycle",
			src: `library;
const A: u64 = B;
const B: u64 = A;
`,
			want: []diag.Code{diag.TypConstEval},
			msg:  "cycle",
		},
		{
			name: "const cycle of three",
			src: `library;
const A: u64 = B + 1;
const B: u64 = C * 2;
const C: u64 = A;
`,
			want: []diag.Code{diag.TypConstEval},
			msg:  "constant `A`",
		},
		{
			name: "missing trait item",
			src: `library;
trait Shape { fn area(self) -> u64; }
struct Sq { side: u64 }
impl Shape for Sq {}
`,
			want: []diag.Code{diag.TypMissingImplItem},
			msg:  "`area`",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, bag := checkSource(t, tt.src)
			wantCodes(t, bag, tt.want...)
			if tt.msg != "" && !strings.Contains(bag.Items()[0].Message, tt.msg) {
				t.Fatalf("message %q does not mention %q", bag.Items()[0].Message, tt.msg)
			}
		})
	}
}

func TestCheckGenericsRecordInstances(t *testing.T) {
	res, bag := checkSource(t, `library;
fn identity<T>(x: T) -> T { x }
fn use_it() -> u8 {
    identity(7u8)
}
`)
	wantCodes(t, bag)
	if res.Program.Instances.Len() != 1 {
		t.Fatalf("instances = %d, want 1", res.Program.Instances.Len())
	}
	e := res.Program.Instances.Entries()[0]
	if got := res.Program.Types.Label(e.TypeArgs[0]); got != "u8" {
		t.Fatalf("instance arg = %s, want u8", got)
	}
}

func TestCheckTraitMethodAndDefault(t *testing.T) {
	_, bag := checkSource(t, `library;
trait Shape {
    fn area(self) -> u64;
    fn twice(self) -> u64 { self.area() * 2 }
}
struct Sq { side: u64 }
impl Shape for Sq {
    fn area(self) -> u64 { self.side * self.side }
}
fn f(s: Sq) -> u64 { s.twice() + s.area() }
`)
	wantCodes(t, bag)
}

func TestCheckContractEntries(t *testing.T) {
	res, bag := checkSource(t, `contract;
abi Counter {
    #[storage(read)]
    fn get() -> u64;
    #[storage(read, write)]
    fn bump();
}
storage {
    count: u64 = 0,
}
impl Counter for Contract {
    #[storage(read)]
    fn get() -> u64 { storage.count.read() }
    #[storage(read, write)]
    fn bump() { storage.count.write(storage.count.read() + 1); }
}
`)
	wantCodes(t, bag)
	if len(res.Program.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(res.Program.Entries))
	}
	bump := funcNamed(t, res.Program, "bump")
	if bump.Entry != hir.EntryAbi || bump.Declared != hir.EffectRead|hir.EffectWrite {
		t.Fatalf("bump: entry %v, declared %v", bump.Entry, bump.Declared)
	}
	if len(res.Program.Storage) != 1 || res.Program.Storage[0].Value == nil {
		t.Fatalf("storage initializer was not evaluated")
	}
}

func TestCheckAbiMissingMethod(t *testing.T) {
	_, bag := checkSource(t, `contract;
abi A {
    fn one() -> u64;
    fn two() -> u64;
}
impl A for Contract {
    fn one() -> u64 { 1 }
}
`)
	wantCodes(t, bag, diag.TypAbiMissingMethod)
	if !strings.Contains(bag.Items()[0].Message, "`two`") {
		t.Fatalf("message = %q", bag.Items()[0].Message)
	}
}

func TestCheckConstValues(t *testing.T) {
	res, bag := checkSource(t, `library;
const A: u64 = 2;
const B: u64 = A * 3 + 1;
`)
	wantCodes(t, bag)
	for _, c := range res.Program.Consts {
		if c.Name == "B" {
			if c.Value == nil || c.Value.String() != "7" {
				t.Fatalf("B = %v, want 7", c.Value)
			}
			return
		}
	}
	t.Fatal("no constant B")
}

// calledSymbols returns the symbols of every function called in fn.
func calledSymbols(prog *hir.Program, fn *hir.Func) []string {
	var out []string
	hir.Walk(fn.Body, func(e *hir.Expr) bool {
		if d, ok := e.Data.(hir.CallData); ok {
			if f := prog.Func(d.Fn); f != nil {
				out = append(out, f.Symbol)
			}
		}
		return true
	})
	return out
}

func TestCheckImplChosenByTraitArgs(t *testing.T) {
	const decls = `library;
struct S { x: u64 }
trait From<T> { fn from(v: T) -> Self; }
impl From<u8> for S { fn from(v: u8) -> S { S { x: 1 } } }
impl From<bool> for S { fn from(v: bool) -> S { S { x: 2 } } }
trait Add<T> { fn add2(self, v: T) -> u64; }
impl Add<u8> for S { fn add2(self, v: u8) -> u64 { 1 } }
impl Add<bool> for S { fn add2(self, v: bool) -> u64 { 2 } }
trait Into<T> { fn into(self) -> T; }
impl Into<u8> for S { fn into(self) -> u8 { 1 } }
impl Into<bool> for S { fn into(self) -> bool { true } }
`
	tests := []struct {
		name string
		body string
		want string
	}{
		{"assoc by argument", "fn f() -> S { S::from(true) }", "From<bool>>::from"},
		{"assoc by literal", "fn f() -> S { S::from(7) }", "From<u8>>::from"},
		{"method by argument", "fn f(s: S) -> u64 { s.add2(true) }", "Add<bool>>::add2"},
		{"method by expected type", "fn f(s: S) -> bool { let b: bool = s.into(); b }", "Into<bool>>::into"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, bag := checkSource(t, decls+tt.body+"\n")
			wantCodes(t, bag)
			got := calledSymbols(res.Program, funcNamed(t, res.Program, "f"))
			if !slices.ContainsFunc(got, func(s string) bool { return strings.HasSuffix(s, tt.want) }) {
				t.Fatalf("calls = %v, want %s", got, tt.want)
			}
		})
	}
}

func TestCheckNoImplFitsIsAmbiguous(t *testing.T) {
	_, bag := checkSource(t, `library;
struct S { x: u64 }
trait From<V> { fn from(v: V) -> Self; }
impl From<u8> for S { fn from(v: u8) -> S { S { x: 1 } } }
impl From<bool> for S { fn from(v: bool) -> S { S { x: 2 } } }
fn f() -> S { S::from(S { x: 3 }) }
`)
	if bag.Count(diag.TypAmbiguousMethod) != 1 {
		t.Fatalf("want the ambiguity reported once, got %v", bag.Items())
	}
}
