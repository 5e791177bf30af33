package symbols

import (
	"context"
	"slices"
	"testing"

	"swell/internal/diag"
	"swell/internal/project"
)

func resolveMap(t *testing.T, files map[string]string) (*Table, *diag.Bag) {
	t.Helper()
	p := project.MapProvider{Files: map[string][]byte{}}
	for name, src := range files {
		p.Files[name] = []byte(src)
	}
	bag := diag.NewBag(100)
	r := diag.BagReporter{Bag: bag}
	g, err := project.BuildGraph(context.Background(), "src/main.sw", p, project.Options{Jobs: 2, Reporter: r})
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	tbl, err := Resolve(context.Background(), g, Options{Jobs: 2, Reporter: r})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return tbl, bag
}

func codes(bag *diag.Bag) []diag.Code {
	var out []diag.Code
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func wantCodes(t *testing.T, bag *diag.Bag, want ...diag.Code) {
	t.Helper()
	got := codes(bag)
	slices.Sort(got)
	slices.Sort(want)
	if !slices.Equal(got, want) {
		t.Fatalf("codes = %v, want %v\n%v", got, want, bag.Items())
	}
}

func TestResolveDuplicates(t *testing.T) {
	_, bag := resolveMap(t, map[string]string{
		"src/main.sw": `library;
fn f() {}
fn f() {}
const C: u64 = 1;
const C: u64 = 2;
struct S { a: u64, a: u64 }
`,
	})
	wantCodes(t, bag, diag.ResDuplicateDecl, diag.ResDuplicateDecl, diag.ResConstRedeclared)
	for _, d := range bag.Items() {
		if len(d.Notes) != 1 {
			t.Errorf("%v: want a note on the previous definition", d.Code)
		}
	}
}

func TestResolveLocalConstRedeclared(t *testing.T) {
	_, bag := resolveMap(t, map[string]string{
		"src/main.sw": `library;
fn f() -> u64 {
    const K: u64 = 1;
    const K: u64 = 2;
    {
        const K: u64 = 3;
        K
    }
}
`,
	})
	wantCodes(t, bag, diag.ResConstRedeclared)
}

func TestResolveImports(t *testing.T) {
	tbl, bag := resolveMap(t, map[string]string{
		"src/main.sw": `library;
mod a;
mod b;
use a::Point;
use b::helper as h;
pub fn run() -> Point { h(); Point { x: 1 } }
`,
		"src/a.sw": "library;\npub struct Point { pub x: u64 }\n",
		"src/b.sw": "library;\npub fn helper() {}\n",
	})
	wantCodes(t, bag)
	sc := tbl.Scope(tbl.Graph.Root)
	imp, ok := sc.Imports["h"]
	if !ok {
		t.Fatalf("alias h is not imported")
	}
	if got := tbl.QualifiedName(imp.Decl); got != "b::helper" {
		t.Fatalf("h -> %s", got)
	}
	id, ok := tbl.Lookup("Point")
	if !ok || tbl.Decl(id).Kind != DeclStruct {
		t.Fatalf("Lookup(Point) = %v, %v", id, ok)
	}
	if _, ok := tbl.Lookup("a::Point::x"); !ok {
		t.Fatalf("field lookup failed")
	}
}

func TestResolveImportErrors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  []diag.Code
	}{
		{
			name: "clash",
			files: map[string]string{
				"src/main.sw": "library;\nmod a;\nmod b;\nuse a::X;\nuse b::X;\npub fn f(x: X) {}\n",
				"src/a.sw":    "library;\npub struct X {}\n",
				"src/b.sw":    "library;\npub struct X {}\n",
			},
			want: []diag.Code{diag.ResImportClash},
		},
		{
			name: "private",
			files: map[string]string{
				"src/main.sw": "library;\nmod a;\nuse a::hidden;\n",
				"src/a.sw":    "library;\nfn hidden() {}\n",
			},
			want: []diag.Code{diag.ResPrivateItem},
		},
		{
			name: "unknown",
			files: map[string]string{
				"src/main.sw": "library;\nmod a;\nuse a::missing;\n",
				"src/a.sw":    "library;\n",
			},
			want: []diag.Code{diag.ResUnknownPath},
		},
		{
			name: "through a function",
			files: map[string]string{
				"src/main.sw": "library;\nmod a;\nuse a::f::g;\n",
				"src/a.sw":    "library;\npub fn f() {}\n",
			},
			want: []diag.Code{diag.ResNotAModule},
		},
		{
			name: "unused",
			files: map[string]string{
				"src/main.sw": "library;\nmod a;\nuse a::f;\npub use a::g;\n",
				"src/a.sw":    "library;\npub fn f() {}\npub fn g() {}\n",
			},
			want: []diag.Code{diag.ResUnusedImport},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, bag := resolveMap(t, tt.files)
			wantCodes(t, bag, tt.want...)
		})
	}
}

func TestResolveGlobAmbiguityIsLazy(t *testing.T) {
	files := map[string]string{
		"src/a.sw": "library;\npub fn dup() {}\npub fn only_a() {}\n",
		"src/b.sw": "library;\npub fn dup() {}\n",
	}
	files["src/main.sw"] = "library;\nmod a;\nmod b;\nuse a::*;\nuse b::*;\npub fn f() { only_a(); }\n"
	_, bag := resolveMap(t, files)
	wantCodes(t, bag)

	files["src/main.sw"] = "library;\nmod a;\nmod b;\nuse a::*;\nuse b::*;\npub fn f() { dup(); }\n"
	_, bag = resolveMap(t, files)
	wantCodes(t, bag, diag.ResAmbiguousGlob)
	if notes := bag.Items()[0].Notes; len(notes) != 2 {
		t.Fatalf("want a note per candidate, got %v", notes)
	}
}

func TestResolveItemImportBeatsGlob(t *testing.T) {
	tbl, bag := resolveMap(t, map[string]string{
		"src/main.sw": "library;\nmod a;\nmod b;\nuse a::*;\nuse b::dup;\npub fn f() { dup(); }\n",
		"src/a.sw":    "library;\npub fn dup() {}\n",
		"src/b.sw":    "library;\npub fn dup() {}\n",
	})
	wantCodes(t, bag)
	res := tbl.Resolution(tbl.Graph.Root)
	var got []string
	for _, bind := range res.Paths {
		if bind.Kind == BindDecl {
			got = append(got, tbl.QualifiedName(bind.Decl))
		}
	}
	if !slices.Equal(got, []string{"b::dup"}) {
		t.Fatalf("bindings = %v", got)
	}
}

func TestResolveLocalsAndShadowing(t *testing.T) {
	tbl, bag := resolveMap(t, map[string]string{
		"src/main.sw": `library;
pub fn f(x: u64) -> u64 {
    let x = x + 1;
    let y = match x {
        0 => 1,
        n => n,
    };
    y
}
`,
	})
	wantCodes(t, bag)
	res := tbl.Resolution(tbl.Graph.Root)
	names := make(map[string]int)
	for _, l := range res.Locals[1:] {
		names[l.Name]++
	}
	if names["x"] != 2 || names["y"] != 1 || names["n"] != 1 {
		t.Fatalf("locals = %v", names)
	}
	var locals int
	for _, bind := range res.Paths {
		if bind.Kind == BindLocal {
			locals++
		}
	}
	// x+1, match x, n, y
	if locals != 4 {
		t.Fatalf("local uses = %d, want 4", locals)
	}
}

func TestResolveNameErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []diag.Code
	}{
		{"unknown value", "library;\nfn f() { g(); }\n", []diag.Code{diag.ResUnknownName}},
		{"unknown type", "library;\nfn f(x: Missing) {}\n", []diag.Code{diag.ResUnknownName}},
		{"type as value", "library;\nstruct S {}\nfn f() { let a = S; }\n", []diag.Code{diag.ResNotAValue}},
		{"value as type", "library;\nfn g() {}\nfn f(x: g) {}\n", []diag.Code{diag.ResNotAType}},
		{"self outside impl", "library;\nfn f() -> Self {}\n", []diag.Code{diag.ResSelfOutsideImpl}},
		{"not a trait", "library;\nstruct S {}\ntrait T: S {}\n", []diag.Code{diag.ResNotATrait}},
		{"storage in library", "library;\nstorage { x: u64 = 0 }\n", []diag.Code{diag.ResStorageNotAllowed}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, bag := resolveMap(t, map[string]string{"src/main.sw": tt.src})
			wantCodes(t, bag, tt.want...)
		})
	}
}

func TestResolveStorageInContract(t *testing.T) {
	tbl, bag := resolveMap(t, map[string]string{
		"src/main.sw": `contract;
abi Counter {
    #[storage(read, write)]
    fn bump() -> u64;
}
storage {
    count: u64 = 0,
}
impl Counter for Contract {
    #[storage(read, write)]
    fn bump() -> u64 {
        let v = storage.count.read() + 1;
        storage.count.write(v);
        v
    }
}
`,
	})
	wantCodes(t, bag)
	if len(tbl.Storage) != 1 || tbl.Decl(tbl.Storage[0]).Name != "count" {
		t.Fatalf("storage = %v", tbl.Storage)
	}
	if len(tbl.Impls) != 1 {
		t.Fatalf("impls = %v", tbl.Impls)
	}
	bump, ok := tbl.Decls.Member(tbl.Impls[0], "bump")
	if !ok {
		t.Fatalf("impl member bump is missing")
	}
	if got := tbl.QualifiedName(bump); got != "Contract::bump" {
		t.Fatalf("QualifiedName = %q", got)
	}
}

func TestResolveCapabilities(t *testing.T) {
	tbl, bag := resolveMap(t, map[string]string{
		"src/main.sw": `library;
pub trait A {}
pub trait B: A {}
pub trait C: B + A {}
`,
	})
	wantCodes(t, bag)
	c, _ := tbl.Lookup("C")
	var got []string
	for _, id := range tbl.Capabilities(c) {
		got = append(got, tbl.Decl(id).Name)
	}
	if !slices.Equal(got, []string{"C", "B", "A"}) {
		t.Fatalf("capabilities = %v", got)
	}
}

func TestResolveSupertraitCycle(t *testing.T) {
	_, bag := resolveMap(t, map[string]string{
		"src/main.sw": "library;\ntrait A: B {}\ntrait B: A {}\n",
	})
	wantCodes(t, bag, diag.ResSupertraitCycle)
}

func TestResolveUseCycle(t *testing.T) {
	p := project.MapProvider{Files: map[string][]byte{
		"src/main.sw": []byte("library;\nmod a;\nmod b;\n"),
		"src/a.sw":    []byte("library;\nuse crate::b::y;\npub fn x() {}\n"),
		"src/b.sw":    []byte("library;\nuse crate::a::x;\npub fn y() {}\n"),
	}}
	bag := diag.NewBag(10)
	r := diag.BagReporter{Bag: bag}
	g, err := project.BuildGraph(context.Background(), "src/main.sw", p, project.Options{Reporter: r})
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	if _, err := Resolve(context.Background(), g, Options{Reporter: r}); err != ErrUseCycle {
		t.Fatalf("err = %v, want ErrUseCycle", err)
	}
	if bag.Count(diag.ProjUseCycle) == 0 {
		t.Fatalf("use cycle is not reported: %v", bag.Items())
	}
}

func TestResolveDigestIsDeterministic(t *testing.T) {
	files := map[string]string{
		"src/main.sw": "library;\nmod a;\nmod b;\nuse a::*;\npub fn f() -> u64 { g() + b::h() }\n",
		"src/a.sw":    "library;\npub fn g() -> u64 { 1 }\n",
		"src/b.sw":    "library;\npub fn h() -> u64 { 2 }\n",
	}
	first, _ := resolveMap(t, files)
	want := first.Digest()
	for range 5 {
		again, _ := resolveMap(t, files)
		if again.Digest() != want {
			t.Fatalf("digest differs between runs")
		}
	}
	files["src/b.sw"] = "library;\npub fn h() -> u64 { 3 }\npub fn extra() {}\n"
	changed, _ := resolveMap(t, files)
	if changed.Digest() == want {
		t.Fatalf("digest ignores a new declaration")
	}
}

func TestResolveBinders(t *testing.T) {
	tbl, _ := resolveMap(t, map[string]string{
		"src/main.sw": "library;\npub fn f() { let mut z = 1; z = 2; }\n",
	})
	res := tbl.Resolution(tbl.Graph.Root)
	var found bool
	for sp, id := range res.Binders {
		l := res.Local(id)
		if l.Name != "z" {
			continue
		}
		found = true
		if !l.Mut || l.Span != sp {
			t.Fatalf("local = %+v at %v", l, sp)
		}
	}
	if !found {
		t.Fatalf("binder for z is missing")
	}
}
