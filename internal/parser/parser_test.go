package parser

import (
	"testing"

	"swell/internal/ast"
	"swell/internal/diag"
	"swell/internal/token"
)

func TestHeader(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind ast.ProgramKind
		code diag.Code
	}{
		{"contract", "contract;\n", ast.ProgramContract, 0},
		{"library", "library;\nfn a() {}", ast.ProgramLibrary, 0},
		{"missing", "fn a() {}", ast.ProgramUnknown, diag.SynMissingHeader},
		{"duplicate", "script;\nscript;\nfn main() {}", ast.ProgramScript, diag.SynDuplicateHeader},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, f, bag := parseSrc(t, tt.src, nil)
			if f.Program != tt.kind {
				t.Errorf("program = %s, want %s", f.Program, tt.kind)
			}
			if tt.code == 0 {
				wantClean(t, bag)
				return
			}
			if bag.Count(tt.code) != 1 {
				t.Errorf("want one %s, got %v", tt.code.ID(), bag.Items())
			}
		})
	}
}

func TestItemKinds(t *testing.T) {
	src := `contract;

mod utils;
use std::hash::*;
const MAX: u64 = 10;

abi Counter {
    #[storage(read, write)]
    fn bump() -> u64;
}

storage {
    count: u64 = 0,
    balances: StorageMap<b256, u64> = StorageMap {},
}

configurable {
    OWNER: b256 = 0x0000000000000000000000000000000000000000000000000000000000000000,
}

pub struct Point<T> { pub x: T, y: T }

enum Color { Red, Green, Blue: (), }

trait Shape: Eq + Hash {
    const SIDES: u64;
    type Unit;
    fn area(self) -> u64;
    fn double(self) -> u64 { self.area() * 2 }
}

impl<T> Point<T> where T: Eq {
    fn new(x: T, y: T) -> Self { Self { x, y } }
}

impl Shape for Point<u64> {
    const SIDES: u64 = 0;
    type Unit = u64;
    fn area(self) -> u64 { self.x * self.y }
}

impl Counter for Contract {
    #[storage(read, write)]
    fn bump() -> u64 {
        let v = storage.count.read() + 1;
        storage.count.write(v);
        v
    }
}
`
	b, f, bag := parseSrc(t, src, nil)
	wantClean(t, bag)
	want := []ast.ItemKind{
		ast.ItemMod, ast.ItemUse, ast.ItemConst, ast.ItemAbi, ast.ItemStorage,
		ast.ItemConfigurable, ast.ItemStruct, ast.ItemEnum, ast.ItemTrait,
		ast.ItemImplSelf, ast.ItemImplTrait, ast.ItemImplTrait,
	}
	if len(f.Items) != len(want) {
		t.Fatalf("got %d items, want %d", len(f.Items), len(want))
	}
	for i, id := range f.Items {
		if got := b.Items.Get(id).Kind; got != want[i] {
			t.Errorf("item %d: kind %s, want %s", i, got, want[i])
		}
	}

	trait, _ := b.Items.Trait(f.Items[8])
	if len(trait.Supers) != 2 || len(trait.Members) != 4 {
		t.Errorf("trait: %d supers, %d members", len(trait.Supers), len(trait.Members))
	}
	double, ok := b.Items.Fn(trait.Members[3])
	if !ok || !double.Body.IsValid() {
		t.Errorf("default method must have a body")
	}

	st, _ := b.Items.Struct(f.Items[6])
	if !st.Fields[0].Public || st.Fields[1].Public || len(st.Generics) != 1 {
		t.Errorf("struct fields parsed wrong: %+v", st)
	}
	en, _ := b.Items.Enum(f.Items[7])
	if len(en.Variants) != 3 || en.Variants[0].Type.IsValid() || !en.Variants[2].Type.IsValid() {
		t.Errorf("enum variants parsed wrong: %+v", en.Variants)
	}

	impl, _ := b.Items.Impl(f.Items[11])
	if impl.Trait == nil || b.PathString(impl.Trait) != "Counter" {
		t.Fatalf("impl trait path wrong")
	}
	bump, _ := b.Items.Fn(impl.Members[0])
	if attrs := b.Items.Get(impl.Members[0]).Attrs; len(attrs) != 1 || len(attrs[0].Args) != 2 {
		t.Errorf("storage attribute args: %+v", attrs)
	}
	body, _ := b.Exprs.Block(bump.Body)
	if len(body.Stmts) != 2 || !body.Tail.IsValid() {
		t.Errorf("bump body: %d stmts, tail %v", len(body.Stmts), body.Tail)
	}
}

func TestGenericCallDisambiguation(t *testing.T) {
	src := "script;\nfn main() { let a = g<u8>(x); let b = a < c; let d = h::<u64>(a); let e = a < b && c > (d); }"
	b, f, bag := parseSrc(t, src, nil)
	wantClean(t, bag)
	body := fnBody(t, b, f, 0)

	call, ok := b.Exprs.Call(letValue(t, b, body.Stmts[0]))
	if !ok {
		t.Fatalf("g<u8>(x) must be a call")
	}
	callee, _ := b.Exprs.Path(call.Callee)
	if seg := callee.Path.Last(); len(seg.Args) != 1 || seg.Turbofish {
		t.Errorf("generic args on callee: %+v", seg)
	}

	cmp, ok := b.Exprs.Binary(letValue(t, b, body.Stmts[1]))
	if !ok || cmp.Op != token.Lt {
		t.Errorf("a < c must be a comparison")
	}

	tf, ok := b.Exprs.Call(letValue(t, b, body.Stmts[2]))
	if !ok {
		t.Fatalf("turbofish call expected")
	}
	tp, _ := b.Exprs.Path(tf.Callee)
	if !tp.Path.Last().Turbofish {
		t.Errorf("turbofish flag lost")
	}

	and, ok := b.Exprs.Binary(letValue(t, b, body.Stmts[3]))
	if !ok || and.Op != token.AndAnd {
		t.Errorf("a < b && c > (d) must stay a boolean expression")
	}
}

func TestNestedGenericClose(t *testing.T) {
	src := "library;\nfn f(m: StorageMap<u64, StorageVec<u8>>) -> A<B<C<u8>>> { m }"
	b, f, bag := parseSrc(t, src, nil)
	wantClean(t, bag)
	fn, _ := b.Items.Fn(f.Items[0])
	tp, ok := b.Types.Path(fn.Params[0].Type)
	if !ok {
		t.Fatalf("param type must be a path")
	}
	args := tp.Path.Last().Args
	if len(args) != 2 {
		t.Fatalf("StorageMap args = %d", len(args))
	}
	inner, _ := b.Types.Path(args[1])
	if len(inner.Path.Last().Args) != 1 {
		t.Errorf("StorageVec args = %d", len(inner.Path.Last().Args))
	}
	if _, ok := b.Types.Path(fn.Ret); !ok {
		t.Errorf("return type lost")
	}
}

func TestStructLiteralRestriction(t *testing.T) {
	src := "script;\nfn main() { let s = S { x: 1, y }; if a { b } else { c } }"
	b, f, bag := parseSrc(t, src, nil)
	wantClean(t, bag)
	body := fnBody(t, b, f, 0)

	lit, ok := b.Exprs.Struct(letValue(t, b, body.Stmts[0]))
	if !ok || len(lit.Fields) != 2 {
		t.Fatalf("struct literal expected")
	}
	if lit.Fields[1].Value.IsValid() {
		t.Errorf("shorthand field must have no value")
	}

	ifx, ok := b.Exprs.If(body.Tail)
	if !ok {
		t.Fatalf("block tail must be the if expression")
	}
	if b.Exprs.Get(ifx.Cond).Kind != ast.ExprPath {
		t.Errorf("if head parsed as %v, want a path", b.Exprs.Get(ifx.Cond).Kind)
	}
}

func TestMissingSemicolonRecovery(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		stmts int
	}{
		{"let", "script;\nfn main() { let x = 1\n let y = 2; }", 2},
		{"expr", "script;\nfn main() { f() g(); }", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, f, bag := parseSrc(t, tt.src, nil)
			if bag.Len() != 1 || bag.Count(diag.SynExpectSemicolon) != 1 {
				t.Fatalf("want exactly one missing ';' diagnostic, got %v", bag.Items())
			}
			if got := len(fnBody(t, b, f, 0).Stmts); got != tt.stmts {
				t.Errorf("stmts = %d, want %d", got, tt.stmts)
			}
		})
	}
}

func TestErrorRecovery(t *testing.T) {
	src := "script;\nfn main() { let x = ; return 1; }\n) fn other() {}"
	b, f, bag := parseSrc(t, src, nil)
	if bag.Count(diag.SynExpectExpression) != 1 || bag.Count(diag.SynExpectItem) != 1 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	var fns []string
	for _, id := range f.Items {
		if fn, ok := b.Items.Fn(id); ok {
			fns = append(fns, b.Name(fn.Name))
		}
	}
	if len(fns) != 2 || fns[0] != "main" || fns[1] != "other" {
		t.Errorf("functions after recovery: %v", fns)
	}
	body := fnBody(t, b, f, 0)
	if v := letValue(t, b, body.Stmts[0]); b.Exprs.Get(v).Kind != ast.ExprError {
		t.Errorf("missing initializer must become an error node")
	}
	if len(body.Stmts) != 2 {
		t.Errorf("return statement lost after recovery")
	}
}

func TestCfgGating(t *testing.T) {
	src := `library;
#[cfg(target = "evm")]
fn a() {}
#[cfg(not(target = "evm"))]
fn b() {}
#[cfg(any(feature = x, all()))]
fn c() {}
`
	b, f, bag := parseSrc(t, src, map[string]string{"target": "evm"})
	wantClean(t, bag)
	names := func(ids []ast.ItemID) []string {
		var out []string
		for _, id := range ids {
			fn, _ := b.Items.Fn(id)
			out = append(out, b.Name(fn.Name))
		}
		return out
	}
	if got := names(f.Items); len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Errorf("kept items = %v", got)
	}
	if got := names(f.Gated); len(got) != 1 || got[0] != "b" {
		t.Errorf("gated items = %v", got)
	}
}

func TestCfgMalformed(t *testing.T) {
	_, f, bag := parseSrc(t, "library;\n#[cfg(feature(x))]\nfn d() {}", nil)
	if bag.Count(diag.AtrCfgMalformed) != 1 {
		t.Fatalf("want AtrCfgMalformed, got %v", bag.Items())
	}
	if len(f.Items) != 1 {
		t.Errorf("item with a malformed gate must be kept")
	}
}

func TestUseTrees(t *testing.T) {
	src := "library;\nuse std::hash::*;\nuse ::a::{b, c::d as e, self};\nuse crate::x as y;"
	b, f, bag := parseSrc(t, src, nil)
	wantClean(t, bag)

	glob, _ := b.Items.Use(f.Items[0])
	if glob.Tree.Kind != ast.UseGlob || len(glob.Tree.Prefix) != 2 {
		t.Errorf("glob use: %+v", glob.Tree)
	}
	group, _ := b.Items.Use(f.Items[1])
	if !group.Absolute || group.Tree.Kind != ast.UseGroup || len(group.Tree.Children) != 3 {
		t.Fatalf("group use: %+v", group.Tree)
	}
	if alias := group.Tree.Children[1].Alias; b.Name(alias) != "e" {
		t.Errorf("alias = %q", b.Name(alias))
	}
	if seg := group.Tree.Children[2].Prefix[0]; seg.Kind != ast.SegSelfValue {
		t.Errorf("self in group: %+v", seg)
	}
	simple, _ := b.Items.Use(f.Items[2])
	if simple.Tree.Prefix[0].Kind != ast.SegCrate || b.Name(simple.Tree.Alias) != "y" {
		t.Errorf("crate use: %+v", simple.Tree)
	}
}

func TestMatchAndPatterns(t *testing.T) {
	src := `script;
fn main() {
    let r = match c {
        Color::Red => 1,
        Color::Green | Color::Blue => { 2 }
        Pair(a, _) => a,
        S { x, y: 0, .. } => x,
        (mut p, q) => p,
        _ => 3,
    };
}`
	b, f, bag := parseSrc(t, src, nil)
	wantClean(t, bag)
	body := fnBody(t, b, f, 0)
	m, ok := b.Exprs.Match(letValue(t, b, body.Stmts[0]))
	if !ok {
		t.Fatalf("match expected")
	}
	want := []ast.PatKind{ast.PatPath, ast.PatOr, ast.PatVariant, ast.PatStruct, ast.PatTuple, ast.PatWild}
	if len(m.Arms) != len(want) {
		t.Fatalf("arms = %d, want %d", len(m.Arms), len(want))
	}
	for i, arm := range m.Arms {
		if got := b.Pats.Get(arm.Pat).Kind; got != want[i] {
			t.Errorf("arm %d: pattern %v, want %v", i, got, want[i])
		}
	}
	sp, _ := b.Pats.Struct(m.Arms[3].Pat)
	if !sp.Rest || len(sp.Fields) != 2 || sp.Fields[0].Pat.IsValid() {
		t.Errorf("struct pattern: %+v", sp)
	}
	tp, _ := b.Pats.List(m.Arms[4].Pat)
	if bind, _ := b.Pats.Bind(tp.Elems[0]); !bind.Mut {
		t.Errorf("mut binding lost")
	}
}

func TestAssignments(t *testing.T) {
	src := "script;\nfn main() { x = 1; s.a += 2; t.0 <<= 1; a[i] = 3; f() = 4; }"
	b, f, bag := parseSrc(t, src, nil)
	if bag.Len() != 1 || bag.Count(diag.SynAssignNotPlace) != 1 {
		t.Fatalf("want only one not-a-place error, got %v", bag.Items())
	}
	body := fnBody(t, b, f, 0)
	ops := []token.Kind{token.Assign, token.PlusAssign, token.ShlAssign, token.Assign, token.Assign}
	for i, id := range body.Stmts {
		es, _ := b.Stmts.Expr(id)
		as, ok := b.Exprs.Assign(es.Expr)
		if !ok || as.Op != ops[i] {
			t.Errorf("stmt %d: want %s assignment", i, ops[i])
		}
	}
}

func TestStorageAccessStatements(t *testing.T) {
	src := "contract;\nfn bump() { storage.x += 1; storage.count.read(); let v = storage.count.read(); }"
	b, f, bag := parseSrc(t, src, nil)
	wantClean(t, bag)
	body := fnBody(t, b, f, 0)
	if len(body.Stmts) != 3 {
		t.Fatalf("want 3 statements, got %d", len(body.Stmts))
	}

	es, _ := b.Stmts.Expr(body.Stmts[0])
	as, ok := b.Exprs.Assign(es.Expr)
	if !ok || as.Op != token.PlusAssign {
		t.Fatalf("first statement must be a += assignment")
	}
	field, ok := b.Exprs.Field(as.Place)
	if !ok || b.Exprs.Get(field.Base).Kind != ast.ExprStorage {
		t.Fatalf("place must be a field of storage")
	}

	es, _ = b.Stmts.Expr(body.Stmts[1])
	call, ok := b.Exprs.MethodCall(es.Expr)
	if !ok {
		t.Fatalf("second statement must be a method call")
	}
	if _, ok := b.Exprs.Field(call.Recv); !ok {
		t.Errorf("receiver must be storage.count")
	}
	if _, ok := b.Exprs.MethodCall(letValue(t, b, body.Stmts[2])); !ok {
		t.Errorf("let value must be a method call")
	}
}

func TestStorageBlockInBodyRejected(t *testing.T) {
	_, _, bag := parseSrc(t, "contract;\nfn f() { storage { x: u64 = 0, } }", nil)
	if bag.Count(diag.SynExpectItem) != 1 {
		t.Fatalf("want one SynExpectItem, got %v", bag.Items())
	}
}

func TestPrecedence(t *testing.T) {
	b, f, bag := parseSrc(t, "script;\nfn main() { let v = 1 + 2 * 3 == 7 || !x; }", nil)
	wantClean(t, bag)
	body := fnBody(t, b, f, 0)
	or, ok := b.Exprs.Binary(letValue(t, b, body.Stmts[0]))
	if !ok || or.Op != token.OrOr {
		t.Fatalf("top operator must be ||")
	}
	eq, _ := b.Exprs.Binary(or.Left)
	if eq.Op != token.EqEq {
		t.Fatalf("left of || must be ==")
	}
	add, _ := b.Exprs.Binary(eq.Left)
	if add.Op != token.Plus {
		t.Fatalf("left of == must be +")
	}
	if mul, _ := b.Exprs.Binary(add.Right); mul == nil || mul.Op != token.Star {
		t.Errorf("* must bind tighter than +")
	}
	if u, ok := b.Exprs.Unary(or.Right); !ok || u.Op != ast.UnaryNot {
		t.Errorf("right of || must be !x")
	}
}

func TestSpansCoverChildren(t *testing.T) {
	b, f, _ := parseSrc(t, "script;\nfn main() { let v = foo(1, 2).bar; }", nil)
	for i := uint32(1); i <= b.Exprs.Arena.Len(); i++ {
		ex := b.Exprs.Get(ast.ExprID(i))
		if ex.Span.Empty() {
			t.Errorf("expr %d (%v) has empty span", i, ex.Kind)
		}
		if !f.Span.Contains(ex.Span) {
			t.Errorf("expr %d span %s outside file span %s", i, ex.Span, f.Span)
		}
	}
}
