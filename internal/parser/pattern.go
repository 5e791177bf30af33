package parser

import (
	"swell/internal/ast"
	"swell/internal/diag"
	"swell/internal/token"
)

// parsePattern: p1 | p2 | ...
func (p *Parser) parsePattern() ast.PatID {
	start := p.peek().Span
	first := p.parsePatSingle()
	if !p.at(token.Pipe) {
		return first
	}
	alts := []ast.PatID{first}
	for p.eat(token.Pipe) {
		alts = append(alts, p.parsePatSingle())
	}
	return p.arenas.Pats.NewList(ast.PatOr, p.spanFrom(start), alts)
}

// parsePatSingle. Одиночный идентификатор всегда биндинг; варианты и
// константы пишутся через путь (`Color::Red`).
func (p *Parser) parsePatSingle() ast.PatID {
	tok := p.peek()
	start := tok.Span
	switch tok.Kind {
	case token.Underscore:
		p.advance()
		return p.arenas.Pats.NewSimple(ast.PatWild, tok.Span)
	case token.IntLit, token.StringLit, token.KwTrue, token.KwFalse:
		lit := p.parsePrimary()
		return p.arenas.Pats.NewLit(tok.Span, lit, false)
	case token.Minus:
		p.advance()
		if !p.at(token.IntLit) {
			p.err(diag.SynExpectPattern, "expected integer literal after '-' in pattern")
			return p.arenas.Pats.NewSimple(ast.PatError, p.spanFrom(start))
		}
		lit := p.parsePrimary()
		return p.arenas.Pats.NewLit(p.spanFrom(start), lit, true)
	case token.KwMut:
		p.advance()
		name, _, ok := p.parseIdent()
		if !ok {
			return p.arenas.Pats.NewSimple(ast.PatError, p.spanFrom(start))
		}
		return p.arenas.Pats.NewBind(p.spanFrom(start), name, true)
	case token.LParen:
		p.advance()
		var elems []ast.PatID
		trailing := false
		for !p.atOr(token.RParen, token.EOF) {
			elems = append(elems, p.parsePattern())
			trailing = false
			if !p.eat(token.Comma) {
				break
			}
			trailing = true
		}
		p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' to close tuple pattern")
		if len(elems) == 1 && !trailing {
			return elems[0]
		}
		return p.arenas.Pats.NewList(ast.PatTuple, p.spanFrom(start), elems)
	case token.Ident, token.KwSelfType, token.KwSelf, token.KwCrate, token.KwSuper, token.ColonColon:
		return p.parsePathPattern()
	}
	p.err(diag.SynExpectPattern, "expected pattern, got "+describe(tok))
	if !isCloser(tok.Kind) && tok.Kind != token.Pipe {
		p.advance()
	}
	return p.arenas.Pats.NewSimple(ast.PatError, start)
}

func (p *Parser) parsePathPattern() ast.PatID {
	start := p.peek().Span
	path, ok := p.parseTypePath()
	if !ok {
		return p.arenas.Pats.NewSimple(ast.PatError, p.spanFrom(start))
	}
	switch {
	case p.at(token.LParen):
		p.advance()
		var args []ast.PatID
		for !p.atOr(token.RParen, token.EOF) {
			args = append(args, p.parsePattern())
			if !p.eat(token.Comma) {
				break
			}
		}
		p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' to close variant pattern")
		return p.arenas.Pats.NewPath(ast.PatVariant, p.spanFrom(start), path, args)
	case p.at(token.LBrace):
		return p.parseStructPattern(path)
	}
	if path.IsSingle() {
		return p.arenas.Pats.NewBind(path.Span, path.Segments[0].Name, false)
	}
	return p.arenas.Pats.NewPath(ast.PatPath, path.Span, path, nil)
}

func (p *Parser) parseStructPattern(path ast.Path) ast.PatID {
	p.advance() // '{'
	data := ast.PatStructData{Path: path}
	for !p.atOr(token.RBrace, token.EOF) {
		if p.eat(token.DotDot) {
			data.Rest = true
			break
		}
		name, sp, ok := p.parseIdent()
		if !ok {
			p.resyncUntil(token.Comma, token.RBrace)
			if !p.eat(token.Comma) {
				break
			}
			continue
		}
		fp := ast.FieldPat{Name: name, Span: sp}
		if p.eat(token.Colon) {
			fp.Pat = p.parsePattern()
			fp.Span = p.spanFrom(sp)
		}
		data.Fields = append(data.Fields, fp)
		if !p.eat(token.Comma) {
			break
		}
	}
	p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' to close struct pattern")
	return p.arenas.Pats.NewStruct(p.spanFrom(path.Span), data)
}
