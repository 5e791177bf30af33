package format

import (
	"strings"
	"testing"

	"swell/internal/ast"
	"swell/internal/diag"
	"swell/internal/parser"
	"swell/internal/source"
)

const sample = `contract;

mod utils;
use std::hash::{sha256, Hash as H};
use ::core::ops::*;

const LIMIT: u64 = 1_000;

abi Counter {
    #[storage(read, write)]
    fn bump(by: u64) -> u64;
    #[storage(read)]
    fn get() -> u64;
}

storage {
    count: u64 = 0,
    owners: StorageMap<b256, StorageVec<u8>> = StorageMap {},
}

configurable { FEE: u64 = 0x10, }

pub struct Pair<A, B> { pub a: A, b: B }

enum Shape { Dot, Circle: u64, Rect: (u64, u64), }

trait Area: Eq {
    const SIDES: u64;
    type Unit;
    fn area(self) -> u64;
    fn twice(self) -> u64 { self.area() * 2 }
}

impl<T> Pair<T, T> where T: Eq + Hash {
    fn swap(self) -> Self { Self { a: self.b, b: self.a } }
}

impl Area for Shape {
    const SIDES: u64 = 0;
    type Unit = u64;
    fn area(self) -> u64 {
        match self {
            Shape::Dot => 0,
            Shape::Circle(r) => 3 * r * r,
            Shape::Rect((w, h)) | Shape::Rect((h, w)) => { w * h }
        }
    }
}

impl Counter for Contract {
    #[storage(read, write)]
    fn bump(by: u64) -> u64 {
        let mut v: u64 = storage.count.read();
        v += by;
        if v > LIMIT { __revert(42); } else if v == 0 { return 0; }
        storage.count.write(v);
        let t = (v, [1u8; 4], [true, false], "a\n\"b\"");
        let x = identity::<u64>(t.0) + generic<u8>(t.1[0]);
        while x < 10 && !false { x = x + 1; break; }
        const LOCAL: u64 = 2;
        -(x & 0xff) << 2 | LOCAL
    }
    #[storage(read)]
    fn get() -> u64 { storage.count.read() }
}

#[cfg(target = "test")]
fn only_in_tests(r: &mut [u8; 32], s: str[4]) -> ! { let _ = r; __revert(0) }
`

func TestRoundTrip(t *testing.T) {
	for _, cfg := range []map[string]string{nil, {"target": "test"}} {
		ok, msg := CheckRoundTrip("sample.sw", []byte(sample), cfg)
		if !ok {
			t.Fatalf("cfg %v: %s", cfg, msg)
		}
	}
}

func TestPrintIsStable(t *testing.T) {
	first := printSrc(t, sample)
	second := printSrc(t, string(first))
	if string(first) != string(second) {
		t.Errorf("printing is not idempotent:\n--- first\n%s\n--- second\n%s", first, second)
	}
}

func TestCanonicalOutput(t *testing.T) {
	src := "script;\nuse a::b;\nuse a::c;\nfn  main( x :u64 )->u64{let y=x+1;y}"
	want := `script;

use a::b;
use a::c;

fn main(x: u64) -> u64 {
    let y = x + 1;
    y
}
`
	if got := string(printSrc(t, src)); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestQuote(t *testing.T) {
	tests := []struct{ in, want string }{
		{"plain", `"plain"`},
		{"a\"b", `"a\"b"`},
		{"tab\there", `"tab\there"`},
		{"\x01", `"\x01"`},
		{"café", `"café"`},
	}
	for _, tt := range tests {
		if got := quote(tt.in); got != tt.want {
			t.Errorf("quote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestDumpIgnoresLayout(t *testing.T) {
	a := dumpSrc(t, "library;\nfn f() -> u64 { 1 + 2 }")
	b := dumpSrc(t, "library;\n\n// comment\nfn f()\n    -> u64\n{\n  1+2\n}\n")
	if a != b {
		t.Errorf("dumps differ:\n%s\n%s", a, b)
	}
	if c := dumpSrc(t, "library;\nfn f() -> u64 { (1 + 2) }"); c == a {
		t.Errorf("parenthesized expression must dump differently")
	}
	if !strings.Contains(a, "(fn f") {
		t.Errorf("dump lacks fn item: %s", a)
	}
}

func parseSample(t *testing.T, src string) (*parserResult, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("t.sw", []byte(src))
	bag := diag.NewBag(32)
	b, res := parser.ParseSource(fs, id, source.NewInterner(), parser.Options{Reporter: diag.BagReporter{Bag: bag}})
	if bag.HasErrors() {
		t.Fatalf("parse errors: %v", bag.Items())
	}
	return &parserResult{b: b, file: res.File}, bag
}

func printSrc(t *testing.T, src string) []byte {
	t.Helper()
	r, _ := parseSample(t, src)
	return File(r.b, r.file)
}

func dumpSrc(t *testing.T, src string) string {
	t.Helper()
	r, _ := parseSample(t, src)
	return Dump(r.b, r.file)
}

type parserResult struct {
	b    *ast.Builder
	file ast.FileID
}
