package token

import "testing"

func TestKeywordsRoundTrip(t *testing.T) {
	for text, kind := range keywords {
		if !kind.IsKeyword() {
			t.Errorf("%q: kind %d is not classified as keyword", text, kind)
		}
		if kind.String() != text {
			t.Errorf("%q: String() = %q", text, kind.String())
		}
	}
	if _, ok := LookupKeyword("Storage"); ok {
		t.Errorf("keywords are case sensitive")
	}
	if k, _ := LookupKeyword("Self"); k != KwSelfType {
		t.Errorf("Self must map to KwSelfType")
	}
}

func TestCompoundBase(t *testing.T) {
	tests := []struct {
		in, want Kind
	}{
		{PlusAssign, Plus},
		{ShrAssign, Shr},
		{CaretAssign, Caret},
		{Assign, Invalid},
	}
	for _, tt := range tests {
		if got := tt.in.CompoundBase(); got != tt.want {
			t.Errorf("%s: got %s want %s", tt.in, got, tt.want)
		}
		if tt.in.IsCompoundAssign() != (tt.want != Invalid) {
			t.Errorf("%s: IsCompoundAssign mismatch", tt.in)
		}
	}
}

func TestPunctRange(t *testing.T) {
	for _, k := range []Kind{Plus, Hash, Underscore, FatArrow, ColonColon} {
		if !k.IsPunctOrOp() || k.IsKeyword() {
			t.Errorf("%s misclassified", k)
		}
	}
	if IntLit.IsPunctOrOp() || Ident.IsKeyword() {
		t.Errorf("literal or ident misclassified")
	}
}
