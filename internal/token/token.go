package token

import (
	"swell/internal/source"
)

// Token represents a single source token with its location and trivia.
// Tokens are values and are never mutated after the lexer produced them.
type Token struct {
	Kind Kind
	Span source.Span
	// Text is the raw source slice, quotes and suffix included.
	Text string
	// Value holds escape-processed content for string literals and the digits
	// (without separators and suffix) for integer literals.
	Value string
	// Suffix is the width suffix of an integer literal ("u8", "u256", ...).
	Suffix  string
	Leading []Trivia
}

// IsLiteral reports whether the token is a numeric, boolean, or string literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case IntLit, StringLit, KwTrue, KwFalse:
		return true
	default:
		return false
	}
}

// IsPunctOrOp reports whether the token is a punctuation or operator.
func (t Token) IsPunctOrOp() bool { return t.Kind.IsPunctOrOp() }

// IsKeyword reports whether the token is a language keyword.
func (t Token) IsKeyword() bool { return t.Kind.IsKeyword() }

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }

// HasDoc reports whether a doc comment precedes the token.
func (t Token) HasDoc() bool {
	for _, tr := range t.Leading {
		if tr.Kind == TriviaDocLine {
			return true
		}
	}
	return false
}
