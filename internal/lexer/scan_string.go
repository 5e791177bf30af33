package lexer

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"swell/internal/diag"
	"swell/internal/token"
)

// scanString: "..." с escape \" \\ \n \t \r \0 \xNN \u{...}. Text, сырой срез
// с кавычками, Value, обработанное содержимое. Ошибочный escape репортится,
// но строка дочитывается до конца, чтобы не сбить остальной поток.
func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening '"'
	var val strings.Builder
	bad := false
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch b {
		case '"':
			lx.cursor.Bump()
			sp := lx.cursor.SpanFrom(start)
			if bad {
				return lx.invalid(sp)
			}
			return token.Token{Kind: token.StringLit, Span: sp, Text: lx.text(sp), Value: val.String()}
		case '\\':
			if !lx.scanEscape(&val) {
				bad = true
			}
			continue
		}
		if b >= utf8.RuneSelf {
			r, sz := lx.peekRune()
			if r == utf8.RuneError && sz <= 1 {
				escStart := lx.cursor.Mark()
				lx.cursor.Bump()
				lx.errLex(diag.LexInvalidUTF8, lx.cursor.SpanFrom(escStart), "invalid UTF-8 in string literal")
				bad = true
				continue
			}
			val.WriteRune(r)
			lx.bumpRune()
			continue
		}
		val.WriteByte(b)
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.LexUnterminatedString, sp, "unterminated string literal")
	return lx.invalid(sp)
}

func (lx *Lexer) scanEscape(val *strings.Builder) bool {
	escStart := lx.cursor.Mark()
	lx.cursor.Bump() // '\'
	c := lx.cursor.Bump()
	switch c {
	case 'n':
		val.WriteByte('\n')
	case 't':
		val.WriteByte('\t')
	case 'r':
		val.WriteByte('\r')
	case '0':
		val.WriteByte(0)
	case '\\', '"', '\'':
		val.WriteByte(c)
	case 'x':
		h0, h1, ok := lx.cursor.Peek2()
		if ok && isHex(h0) && isHex(h1) {
			lx.cursor.Bump()
			lx.cursor.Bump()
			n, _ := strconv.ParseUint(string([]byte{h0, h1}), 16, 8)
			val.WriteByte(byte(n))
			return true
		}
		lx.errLex(diag.LexBadEscape, lx.cursor.SpanFrom(escStart), "\\x escape needs two hex digits")
		return false
	case 'u':
		if !lx.cursor.Eat('{') {
			lx.errLex(diag.LexBadEscape, lx.cursor.SpanFrom(escStart), "\\u escape needs braces: \\u{...}")
			return false
		}
		hexStart := lx.cursor.Off
		for isHex(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
		hex := string(lx.file.Content[hexStart:lx.cursor.Off])
		if !lx.cursor.Eat('}') || hex == "" || len(hex) > 6 {
			lx.errLex(diag.LexBadEscape, lx.cursor.SpanFrom(escStart), "malformed unicode escape")
			return false
		}
		n, err := strconv.ParseUint(hex, 16, 32)
		if err != nil || !utf8.ValidRune(rune(n)) {
			lx.errLex(diag.LexBadEscape, lx.cursor.SpanFrom(escStart), "invalid unicode code point")
			return false
		}
		val.WriteRune(rune(n))
	default:
		lx.errLex(diag.LexBadEscape, lx.cursor.SpanFrom(escStart), "unknown escape sequence")
		return false
	}
	return true
}
