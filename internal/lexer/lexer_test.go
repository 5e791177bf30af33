package lexer

import (
	"testing"

	"swell/internal/diag"
	"swell/internal/source"
	"swell/internal/token"
)

func lexAll(t *testing.T, src string) ([]token.Token, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.sw", []byte(src))
	bag := diag.NewBag(32)
	toks := Tokenize(fs.Get(id), Options{Reporter: diag.BagReporter{Bag: bag}})
	return toks, bag
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, 0, len(toks))
	for _, t := range toks {
		out = append(out, t.Kind)
	}
	return out
}

func TestLexerBasicItems(t *testing.T) {
	toks, bag := lexAll(t, "contract;\n#[storage(read)]\nfn get() -> u64 { storage.x.read() }")
	want := []token.Kind{
		token.KwContract, token.Semicolon,
		token.Hash, token.LBracket, token.KwStorage, token.LParen, token.Ident, token.RParen, token.RBracket,
		token.KwFn, token.Ident, token.LParen, token.RParen, token.Arrow, token.Ident,
		token.LBrace, token.KwStorage, token.Dot, token.Ident, token.Dot, token.Ident, token.LParen, token.RParen, token.RBrace,
		token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %s want %s", i, got[i], want[i])
		}
	}
	if bag.Len() != 0 {
		t.Errorf("unexpected diagnostics: %+v", bag.Items())
	}
}

func TestLexerOperatorsGreedy(t *testing.T) {
	toks, _ := lexAll(t, "a <<= b >>= c :: d => e != f && g || h += i")
	want := []token.Kind{
		token.Ident, token.ShlAssign, token.Ident, token.ShrAssign, token.Ident, token.ColonColon,
		token.Ident, token.FatArrow, token.Ident, token.BangEq, token.Ident, token.AndAnd, token.Ident,
		token.OrOr, token.Ident, token.PlusAssign, token.Ident, token.EOF,
	}
	got := kinds(toks)
	for i := range want {
		if i >= len(got) || got[i] != want[i] {
			t.Fatalf("token %d: got %v want %v", i, got, want)
		}
	}
}

func TestLexerIntegers(t *testing.T) {
	tests := []struct {
		src, value, suffix string
	}{
		{"42", "42", ""},
		{"1_000u64", "1000", "u64"},
		{"0xffu8", "0xff", "u8"},
		{"0b1010", "0b1010", ""},
		{"0o17u16", "0o17", "u16"},
		{"7u256", "7", "u256"},
	}
	for _, tt := range tests {
		toks, bag := lexAll(t, tt.src)
		if toks[0].Kind != token.IntLit || toks[0].Value != tt.value || toks[0].Suffix != tt.suffix {
			t.Errorf("%q: got %+v", tt.src, toks[0])
		}
		if bag.Len() != 0 {
			t.Errorf("%q: unexpected diagnostics", tt.src)
		}
	}
}

func TestLexerMalformedLiteralsProduceInvalid(t *testing.T) {
	tests := []struct {
		src  string
		code diag.Code
	}{
		{"0x", diag.LexBadNumber},
		{"0b102", diag.LexBadNumber},
		{"12i32", diag.LexBadSuffix},
		{`"abc`, diag.LexUnterminatedString},
		{`"a\q"`, diag.LexBadEscape},
		{"$", diag.LexUnknownChar},
		{"\xff", diag.LexInvalidUTF8},
		{"/* open", diag.LexUnterminatedBlockComment},
	}
	for _, tt := range tests {
		toks, bag := lexAll(t, tt.src+" x")
		if bag.Count(tt.code) != 1 {
			t.Errorf("%q: expected one %s, got %+v", tt.src, tt.code.ID(), bag.Items())
		}
		// лексер не останавливается: последний значимый токен, EOF
		if toks[len(toks)-1].Kind != token.EOF {
			t.Errorf("%q: stream must end with EOF", tt.src)
		}
		if tt.code != diag.LexUnterminatedBlockComment && tt.code != diag.LexUnterminatedString && toks[0].Kind != token.Invalid {
			t.Errorf("%q: expected Invalid token, got %s", tt.src, toks[0].Kind)
		}
	}
}

func TestLexerStringValue(t *testing.T) {
	toks, bag := lexAll(t, `"a\n\"b\x41\u{1F600}"`)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics %+v", bag.Items())
	}
	tok := toks[0]
	if tok.Kind != token.StringLit {
		t.Fatalf("kind = %s", tok.Kind)
	}
	if tok.Value != "a\n\"bA\U0001F600" {
		t.Errorf("value = %q", tok.Value)
	}
	if tok.Text != `"a\n\"b\x41\u{1F600}"` {
		t.Errorf("raw text = %q", tok.Text)
	}
}

func TestLexerTrivia(t *testing.T) {
	toks, _ := lexAll(t, "/// doc\n// plain\n/* a /* nested */ b */ fn")
	fn := toks[0]
	if fn.Kind != token.KwFn {
		t.Fatalf("kind = %s", fn.Kind)
	}
	var got []token.TriviaKind
	for _, tr := range fn.Leading {
		got = append(got, tr.Kind)
	}
	want := []token.TriviaKind{token.TriviaDocLine, token.TriviaNewline, token.TriviaLineComment,
		token.TriviaNewline, token.TriviaBlockComment, token.TriviaSpace}
	if len(got) != len(want) {
		t.Fatalf("trivia = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("trivia %d: got %d want %d", i, got[i], want[i])
		}
	}
	if !fn.HasDoc() {
		t.Errorf("expected doc comment")
	}
}

func TestLexerNormalizesIdentifiers(t *testing.T) {
	// "é" как одна руна и как e + combining acute
	toks, _ := lexAll(t, "caf\u00e9 cafe\u0301")
	if toks[0].Value != toks[1].Value {
		t.Errorf("NFC forms differ: %q vs %q", toks[0].Value, toks[1].Value)
	}
	if toks[0].Text == toks[1].Text {
		t.Errorf("raw text must be preserved")
	}
}

func TestLexerRestartable(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("r.sw", []byte("let x = 1;"))
	lx := New(fs.Get(id), Options{})
	first := lx.Next()
	if p := lx.Peek(); p.Kind != token.Ident {
		t.Fatalf("peek = %s", p.Kind)
	}
	off := lx.Offset()
	rest := []token.Kind{}
	for tok := range lx.All() {
		rest = append(rest, tok.Kind)
	}
	lx.Seek(off)
	var again []token.Kind
	for tok := range lx.All() {
		again = append(again, tok.Kind)
	}
	if len(rest) != len(again) {
		t.Fatalf("seek replay differs: %v vs %v", rest, again)
	}
	lx.Reset()
	if tok := lx.Next(); tok.Kind != first.Kind || tok.Span != first.Span {
		t.Errorf("reset must replay from the start")
	}
}
