package lexer

import (
	"strings"

	"swell/internal/diag"
	"swell/internal/token"
)

var intSuffixes = map[string]bool{"u8": true, "u16": true, "u32": true, "u64": true, "u256": true}

// Поддержка: 123, 1_000, 0b1010, 0o17, 0xff, 0x<64 hex> (b256), суффиксы u8..u256.
// Дробных литералов в языке нет: '.' всегда завершает число, так что `t.0.1`
// лексится как поле кортежа.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	digit := isDec
	prefix := ""
	if lx.cursor.Peek() == '0' {
		if _, b1, ok := lx.cursor.Peek2(); ok {
			switch b1 {
			case 'b', 'B':
				digit, prefix = func(b byte) bool { return b == '0' || b == '1' }, "0b"
			case 'o', 'O':
				digit, prefix = func(b byte) bool { return b >= '0' && b <= '7' }, "0o"
			case 'x', 'X':
				digit, prefix = isHex, "0x"
			}
		}
	}
	if prefix != "" {
		lx.cursor.Bump()
		lx.cursor.Bump()
	}

	var digits strings.Builder
	digits.WriteString(prefix)
	count := 0
	for {
		b := lx.cursor.Peek()
		if b == '_' {
			lx.cursor.Bump()
			continue
		}
		if !digit(b) {
			break
		}
		digits.WriteByte(b)
		count++
		lx.cursor.Bump()
	}
	// цифры не той системы счисления внутри литерала: 0b102, 0o9
	malformed := false
	for isDec(lx.cursor.Peek()) || (prefix != "0x" && isHex(lx.cursor.Peek()) && prefix != "") {
		malformed = true
		lx.cursor.Bump()
	}
	if count == 0 || malformed {
		lx.eatIdentTail()
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(diag.LexBadNumber, sp, "malformed integer literal")
		return lx.invalid(sp)
	}

	suffixStart := lx.cursor.Mark()
	suffix := ""
	if isIdentStartByte(lx.cursor.Peek()) {
		lx.eatIdentTail()
		suffix = lx.text(lx.cursor.SpanFrom(suffixStart))
		if !intSuffixes[suffix] {
			sp := lx.cursor.SpanFrom(start)
			lx.errLex(diag.LexBadSuffix, lx.cursor.SpanFrom(suffixStart), "unknown integer suffix `"+suffix+"`")
			return lx.invalid(sp)
		}
	}

	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.IntLit, Span: sp, Text: lx.text(sp), Value: digits.String(), Suffix: suffix}
}

func (lx *Lexer) eatIdentTail() {
	for isIdentContinueByte(lx.cursor.Peek()) && !lx.cursor.EOF() {
		lx.cursor.Bump()
	}
}
