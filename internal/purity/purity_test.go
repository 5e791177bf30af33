package purity

import (
	"context"
	"slices"
	"strings"
	"testing"

	"swell/internal/diag"
	"swell/internal/hir"
	"swell/internal/project"
	"swell/internal/sema"
	"swell/internal/symbols"
)

func checkSource(t *testing.T, src string) (Result, *hir.Program, *diag.Bag) {
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
	return Check(ctx, res.Program, Options{Reporter: r}), res.Program, bag
}

func codes(bag *diag.Bag) []diag.Code {
	var out []diag.Code
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	slices.Sort(out)
	return out
}

func wantCodes(t *testing.T, bag *diag.Bag, want ...diag.Code) {
	t.Helper()
	slices.Sort(want)
	if got := codes(bag); !slices.Equal(got, want) {
		t.Fatalf("codes = %v, want %v\n%v", got, want, bag.Items())
	}
}

func TestBumpWithoutAnnotation(t *testing.T) {
	_, _, bag := checkSource(t, `contract;
storage {
    x: u64 = 0,
}
fn bump() {
    storage.x += 1;
}
`)
	wantCodes(t, bag, diag.PurMissingStorage)
	d := bag.Items()[0]
	if !strings.Contains(d.Message, "`bump`") {
		t.Fatalf("message %q does not name bump", d.Message)
	}
	if len(d.Notes) != 2 {
		t.Fatalf("notes = %v, want one per missing capability", d.Notes)
	}
}

func TestWriteAnnotationRequired(t *testing.T) {
	tests := []struct {
		name string
		attr string
		body string
		want []diag.Code
	}{
		{"none needed", "", "1", nil},
		{"read declared, write used", "#[storage(read)]", "storage.x.write(1); 1", []diag.Code{diag.PurMissingStorage}},
		{"write declared, write used", "#[storage(write)]", "storage.x.write(1); 1", nil},
		{"both declared", "#[storage(read, write)]", "storage.x.write(storage.x.read()); 1", nil},
		{"stricter than needed", "#[storage(read, write)]", "storage.x.read()", nil},
		{"read missing", "#[storage(write)]", "storage.x.read()", []diag.Code{diag.PurMissingStorage}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, bag := checkSource(t, `contract;
storage {
    x: u64 = 0,
}
`+tt.attr+`
fn f() -> u64 {
    `+tt.body+`
}
`)
			wantCodes(t, bag, tt.want...)
		})
	}
}

func TestEffectsPropagateThroughCalls(t *testing.T) {
	res, prog, bag := checkSource(t, `contract;
storage {
    x: u64 = 0,
}
#[storage(read)]
fn get() -> u64 { storage.x.read() }
fn a() -> u64 { b() }
fn b() -> u64 { if get() > 0 { a() } else { 0 } }
`)
	// a and b form a cycle; both need read
	wantCodes(t, bag, diag.PurMissingStorage, diag.PurMissingStorage)
	for _, f := range prog.Funcs {
		if res.Effects[f.Decl] != hir.EffectRead {
			t.Errorf("%s: effects = %v, want read", f.Name, res.Effects[f.Decl])
		}
	}
	for _, d := range bag.Items() {
		if len(d.Notes) != 1 || !strings.Contains(d.Notes[0].Msg, "call to") {
			t.Errorf("%s: notes = %v", d.Message, d.Notes)
		}
	}
}

func TestAbiDeclarationBoundsImpl(t *testing.T) {
	_, _, bag := checkSource(t, `contract;
abi Counter {
    #[storage(read)]
    fn bump();
}
storage {
    x: u64 = 0,
}
impl Counter for Contract {
    #[storage(read, write)]
    fn bump() { storage.x.write(1); }
}
`)
	wantCodes(t, bag, diag.PurAbiStricter)
}

func TestAttributeValidation(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []diag.Code
	}{
		{
			name: "payable outside abi",
			src: `library;
#[payable]
fn f() {}
`,
			want: []diag.Code{diag.AtrPayableNotAbi},
		},
		{
			name: "test with params",
			src: `library;
#[test]
fn t(x: u64) {}
`,
			want: []diag.Code{diag.AtrTestSignature},
		},
		{
			name: "should_revert code",
			src: `library;
#[test(should_revert = "oops")]
fn t() {}
`,
			want: []diag.Code{diag.AtrMalformed},
		},
		{
			name: "inline arg",
			src: `library;
#[inline(sometimes)]
fn f() {}
`,
			want: []diag.Code{diag.AtrMalformed},
		},
		{
			name: "unknown attribute",
			src: `library;
#[frobnicate]
fn f() {}
`,
			want: []diag.Code{diag.AtrUnknown},
		},
		{
			name: "storage on struct",
			src: `library;
#[storage(read)]
struct S { a: u64 }
`,
			want: []diag.Code{diag.AtrMisplaced},
		},
		{
			name: "duplicate",
			src: `library;
#[inline(never)]
#[inline(always)]
fn f() {}
`,
			want: []diag.Code{diag.AtrDuplicate},
		},
		{
			name: "valid",
			src: `library;
#[test(should_revert = "18")]
fn t() { __revert(18) }
#[inline(never)]
#[allow(dead_code)]
fn f() {}
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, bag := checkSource(t, tt.src)
			wantCodes(t, bag, tt.want...)
		})
	}
}

func TestDeprecatedUsage(t *testing.T) {
	_, _, bag := checkSource(t, `library;
#[deprecated(note = "use new_f")]
fn old_f() {}
fn user() { old_f(); }
#[allow(deprecated)]
fn quiet() { old_f(); }
`)
	wantCodes(t, bag, diag.AtrDeprecatedUsage)
	d := bag.Items()[0]
	if d.Severity != diag.SevWarning || !strings.Contains(d.Message, "use new_f") {
		t.Fatalf("diagnostic = %+v", d)
	}
}

func TestStorageTypeValidation(t *testing.T) {
	tests := []struct {
		name string
		decl string
		want diag.Code
	}{
		{"nested collection", "m: StorageMap<u64, StorageVec<u64>> = StorageMap {},", diag.PurNestedCollection},
		{"too large", "big: [u64; 1000] = [0; 1000],", diag.PurStorageLayout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, bag := checkSource(t, "contract;\nstorage {\n    "+tt.decl+"\n}\n")
			wantCodes(t, bag, tt.want)
		})
	}
}
