package lexer

import (
	"iter"

	"swell/internal/source"
	"swell/internal/token"
)

// Lexer produces tokens lazily, one per Next call. It can be restarted at
// any byte offset with Seek, so a consumer may re-scan a region without
// re-lexing the whole file.
type Lexer struct {
	file   *source.File
	cursor Cursor
	opts   Options
	look   *token.Token   // 1 элементный буфер для токена
	hold   []token.Trivia // накопленные leading trivia
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
	}
}

// File returns the file being lexed.
func (lx *Lexer) File() *source.File { return lx.file }

// Next возвращает следующий **значимый** токен с уже собранным Leading.
// После EOF всегда возвращает EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}

	lx.collectLeadingTrivia()

	if lx.cursor.EOF() {
		tok := token.Token{Kind: token.EOF, Span: lx.emptySpan()}
		tok.Leading = lx.takeHold()
		return tok
	}

	ch := lx.cursor.Peek()
	var tok token.Token
	switch {
	case ch == '_':
		// одиночный "_" → Underscore, "_foo" / "__x" → идентификатор
		b0, b1, ok := lx.cursor.Peek2()
		if ok && b0 == '_' && (isIdentContinueByte(b1) || b1 >= utf8RuneSelf) {
			tok = lx.scanIdentOrKeyword()
		} else {
			tok = lx.scanOperatorOrPunct()
		}
	case isIdentStartByte(ch), ch >= utf8RuneSelf:
		tok = lx.scanIdentOrKeyword()
	case isDec(ch):
		tok = lx.scanNumber()
	case ch == '"':
		tok = lx.scanString()
	default:
		tok = lx.scanOperatorOrPunct()
	}

	tok.Leading = lx.takeHold()
	return tok
}

// Peek возвращает следующий токен, не потребляя его.
func (lx *Lexer) Peek() token.Token {
	if lx.look != nil {
		return *lx.look
	}
	t := lx.Next()
	lx.look = &t
	return t
}

// Reset restarts lexing from the beginning of the file.
func (lx *Lexer) Reset() {
	lx.Seek(0)
}

// Seek restarts lexing at byte offset off. off must be a token boundary.
func (lx *Lexer) Seek(off uint32) {
	lx.look = nil
	lx.hold = nil
	lx.cursor.Reset(Mark(off))
}

// Offset returns the position of the next unread byte (lookahead included).
func (lx *Lexer) Offset() uint32 {
	if lx.look != nil {
		if len(lx.look.Leading) > 0 {
			return lx.look.Leading[0].Span.Start
		}
		return lx.look.Span.Start
	}
	return lx.cursor.Off
}

// All returns a lazy sequence of the remaining tokens; EOF is yielded once
// and ends the sequence.
func (lx *Lexer) All() iter.Seq[token.Token] {
	return func(yield func(token.Token) bool) {
		for {
			tok := lx.Next()
			if !yield(tok) || tok.Kind == token.EOF {
				return
			}
		}
	}
}

// Tokenize lexes the whole file eagerly. The result always ends with EOF.
func Tokenize(file *source.File, opts Options) []token.Token {
	lx := New(file, opts)
	out := make([]token.Token, 0, len(file.Content)/4+1)
	for tok := range lx.All() {
		out = append(out, tok)
	}
	return out
}

func (lx *Lexer) takeHold() []token.Trivia {
	if len(lx.hold) == 0 {
		return nil
	}
	h := lx.hold
	lx.hold = nil
	return h
}

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}

func (lx *Lexer) text(sp source.Span) string {
	return string(lx.file.Content[sp.Start:sp.End])
}

func (lx *Lexer) invalid(sp source.Span) token.Token {
	return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
}
