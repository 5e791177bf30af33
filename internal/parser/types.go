package parser

import (
	"swell/internal/ast"
	"swell/internal/diag"
	"swell/internal/token"
)

// parseType разбирает синтаксический тип. Никогда не возвращает NoTypeID:
// при ошибке аллоцируется TypeError.
func (p *Parser) parseType() ast.TypeID {
	tok := p.peek()
	start := tok.Span
	switch tok.Kind {
	case token.LParen:
		p.advance()
		var elems []ast.TypeID
		trailing := false
		for !p.atOr(token.RParen, token.EOF) {
			elems = append(elems, p.parseType())
			trailing = false
			if !p.eat(token.Comma) {
				break
			}
			trailing = true
		}
		p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' to close tuple type")
		if len(elems) == 1 && !trailing {
			return elems[0] // (T): просто группировка
		}
		return p.arenas.Types.NewTuple(p.spanFrom(start), elems)
	case token.LBracket:
		p.advance()
		elem := p.parseType()
		length := p.arrayLen()
		p.expect(token.RBracket, diag.SynUnclosedDelimiter, "expected ']' to close array type")
		return p.arenas.Types.NewArray(ast.TypeArray, p.spanFrom(start), elem, length)
	case token.Amp, token.AndAnd:
		p.advance()
		mut := p.eat(token.KwMut)
		inner := p.parseType()
		if tok.Kind == token.AndAnd {
			inner = p.arenas.Types.NewRef(p.spanFrom(start), mut, inner)
			return p.arenas.Types.NewRef(p.spanFrom(start), false, inner)
		}
		return p.arenas.Types.NewRef(p.spanFrom(start), mut, inner)
	case token.Bang:
		p.advance()
		return p.arenas.Types.NewSimple(ast.TypeNever, tok.Span)
	case token.Underscore:
		p.advance()
		return p.arenas.Types.NewSimple(ast.TypeInfer, tok.Span)
	case token.Ident:
		if tok.Text == "str" && p.peekN(1).Kind == token.LBracket {
			p.advance()
			p.advance()
			length := p.parseExpr()
			p.expect(token.RBracket, diag.SynUnclosedDelimiter, "expected ']' to close str length")
			return p.arenas.Types.NewArray(ast.TypeStrArray, p.spanFrom(start), ast.NoTypeID, length)
		}
		fallthrough
	case token.KwSelfType, token.KwSelf, token.KwSuper, token.KwCrate, token.ColonColon:
		path, ok := p.parseTypePath()
		if !ok {
			return p.arenas.Types.NewSimple(ast.TypeError, p.spanFrom(start))
		}
		return p.arenas.Types.NewPath(path.Span, path)
	}
	p.err(diag.SynExpectType, "expected type, got "+describe(tok))
	return p.arenas.Types.NewSimple(ast.TypeError, p.diagSpan())
}

func (p *Parser) arrayLen() ast.ExprID {
	if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' and length in array type"); !ok {
		return p.arenas.Exprs.NewError(p.diagSpan())
	}
	return p.parseExpr()
}

// parseTypePath: путь в позиции типа: `<` здесь всегда открывает аргументы.
func (p *Parser) parseTypePath() (ast.Path, bool) {
	start := p.peek().Span
	path := ast.Path{}
	if p.eat(token.ColonColon) {
		path.Absolute = true
	}
	for {
		seg, ok := p.parseSegmentName()
		if !ok {
			return path, false
		}
		if p.at(token.Lt) {
			seg.Args = p.parseGenericArgs()
		} else if p.at(token.ColonColon) && p.peekN(1).Kind == token.Lt {
			p.advance()
			seg.Args = p.parseGenericArgs()
			seg.Turbofish = true
		}
		path.Segments = append(path.Segments, seg)
		if !p.at(token.ColonColon) || !isSegmentStart(p.peekN(1).Kind) {
			break
		}
		p.advance()
	}
	path.Span = p.spanFrom(start)
	return path, true
}

func isSegmentStart(k token.Kind) bool {
	switch k {
	case token.Ident, token.KwSelf, token.KwSelfType, token.KwSuper, token.KwCrate:
		return true
	}
	return false
}

func (p *Parser) parseSegmentName() (ast.PathSegment, bool) {
	tok := p.peek()
	seg := ast.PathSegment{Span: tok.Span}
	switch tok.Kind {
	case token.Ident:
		seg.Kind = ast.SegIdent
	case token.KwSelf:
		seg.Kind = ast.SegSelfValue
	case token.KwSelfType:
		seg.Kind = ast.SegSelfType
	case token.KwSuper:
		seg.Kind = ast.SegSuper
	case token.KwCrate:
		seg.Kind = ast.SegCrate
	default:
		p.err(diag.SynExpectIdentifier, "expected path segment, got "+describe(tok))
		return seg, false
	}
	p.advance()
	seg.Name = p.intern(tok)
	return seg, true
}

// parseGenericArgs: <A, B<C>>, поддерживает закрытие через `>>`.
func (p *Parser) parseGenericArgs() []ast.TypeID {
	p.advance() // '<'
	var args []ast.TypeID
	for !p.splitGt() && !p.at(token.EOF) {
		args = append(args, p.parseType())
		if !p.eat(token.Comma) {
			break
		}
	}
	p.expectGt()
	return args
}

// looksLikeGenericArgs проверяет, что начиная с текущего `<` идёт
// сбалансированный список из «типовых» токенов, за которым следует `(` или
// `::` (или `{`, если литералы структур разрешены).
func (p *Parser) looksLikeGenericArgs() bool {
	const maxScan = 128
	depth, brackets := 0, 0
	for i := 0; i < maxScan; i++ {
		tok := p.peekN(i)
		switch tok.Kind {
		case token.Lt:
			depth++
		case token.Gt:
			depth--
		case token.Shr:
			depth -= 2
		case token.LParen, token.LBracket:
			brackets++
		case token.RParen, token.RBracket:
			brackets--
		case token.Semicolon, token.IntLit:
			// только внутри [T; N]
			if brackets == 0 {
				return false
			}
		case token.Ident, token.ColonColon, token.Comma, token.Amp, token.KwMut,
			token.KwSelfType, token.KwSelf, token.KwSuper, token.KwCrate, token.Bang,
			token.Underscore:
		default:
			return false
		}
		if depth < 0 || brackets < 0 {
			return false
		}
		if depth == 0 {
			next := p.peekN(i + 1).Kind
			return next == token.LParen || next == token.ColonColon || (next == token.LBrace && !p.noStructLit)
		}
	}
	return false
}
