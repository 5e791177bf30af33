package testkit

import (
	"testing"

	"swell/internal/diag"
	"swell/internal/lexer"
	"swell/internal/parser"
	"swell/internal/source"
)

func TestInvariantsHoldForParsedFiles(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty", ""},
		{"library", "library;\n/// doc\npub fn f(x: u64) -> u64 { x + 1 }\n"},
		{"gated", "library;\n#[cfg(target = \"evm\")]\nfn g() {}\nfn h() {}\n"},
		{"broken", "contract;\nfn f( { let = ; }\nstruct S { a: }\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := source.NewFileSet()
			id := fs.AddVirtual("t.sw", []byte(tt.src))
			sf := fs.Get(id)
			bag := diag.NewBag(64)
			r := diag.BagReporter{Bag: bag}

			if err := CheckTokenInvariants(lexer.Tokenize(sf, lexer.Options{Reporter: r}), sf); err != nil {
				t.Fatal(err)
			}
			b, res := parser.ParseSource(fs, id, source.NewInterner(), parser.Options{Reporter: r})
			if bag.HasErrors() {
				// восстановление после ошибок строит неполные узлы
				return
			}
			if err := CheckSpanInvariants(b, res.File, sf); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestCheckSpanInvariantsRejectsNil(t *testing.T) {
	if err := CheckSpanInvariants(nil, 0, nil); err == nil {
		t.Fatal("nil inputs accepted")
	}
}
