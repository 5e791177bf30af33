package parser

import (
	"swell/internal/ast"
	"swell/internal/diag"
	"swell/internal/source"
	"swell/internal/token"
)

// parseFn: fn name<T: A>(params) -> Ret where ... { body } | ;
func (p *Parser) parseFn(start source.Span, pub bool, attrs []ast.Attr, ctx itemCtx) ast.ItemID {
	p.advance() // fn
	data := ast.FnItem{}
	var ok bool
	data.Name, data.NameSpan, ok = p.parseIdent()
	if !ok {
		p.resyncFnTail()
		return p.arenas.Items.NewError(p.spanFrom(start))
	}
	data.Generics = p.parseGenericParams()
	params, ok := p.parseParams()
	if !ok {
		p.resyncFnTail()
		return p.arenas.Items.NewError(p.spanFrom(start))
	}
	data.Params = params
	if p.eat(token.Arrow) {
		data.Ret = p.parseType()
	}
	data.Where = p.parseWhere()

	switch {
	case p.at(token.LBrace):
		data.Body = p.parseBlock()
	case p.eat(token.Semicolon):
		if ctx != ctxTrait && ctx != ctxAbi {
			p.errAt(diag.SynExpectBlock, p.lastSpan, "function '"+p.arenas.Name(data.Name)+"' needs a body")
		}
	default:
		p.err(diag.SynExpectBlock, "expected '{' or ';' after function signature, got "+describe(p.peek()))
		p.resyncFnTail()
	}
	return p.arenas.Items.NewFn(p.spanFrom(start), pub, attrs, data)
}

// resyncFnTail пропускает остаток сломанной сигнатуры вместе с телом.
func (p *Parser) resyncFnTail() {
	p.resyncUntil(token.LBrace, token.Semicolon, token.KwFn, token.KwConst, token.KwType, token.Hash)
	if p.at(token.LBrace) {
		p.resyncBalancedBlock()
	}
	p.eat(token.Semicolon)
}

// resyncBalancedBlock съедает `{ ... }` целиком.
func (p *Parser) resyncBalancedBlock() {
	p.advance()
	p.resyncUntil()
	p.eat(token.RBrace)
}

// parseGenericParams: <T: A + B, U> или ничего.
func (p *Parser) parseGenericParams() []ast.GenericParam {
	if !p.at(token.Lt) {
		return nil
	}
	p.advance()
	var params []ast.GenericParam
	for !p.splitGt() && !p.at(token.EOF) {
		start := p.peek().Span
		name, _, ok := p.parseIdent()
		if !ok {
			p.resyncUntil(token.Comma, token.Gt, token.LParen, token.LBrace)
			if !p.eat(token.Comma) {
				break
			}
			continue
		}
		gp := ast.GenericParam{Name: name}
		if p.eat(token.Colon) {
			gp.Bounds = p.parseBounds()
		}
		gp.Span = p.spanFrom(start)
		params = append(params, gp)
		if !p.eat(token.Comma) {
			break
		}
	}
	p.expectGt()
	return params
}

// parseBounds: A + B<C> + D
func (p *Parser) parseBounds() []ast.Path {
	var bounds []ast.Path
	for {
		path, ok := p.parseTypePath()
		if !ok {
			return bounds
		}
		bounds = append(bounds, path)
		if !p.eat(token.Plus) {
			return bounds
		}
	}
}

func (p *Parser) parseWhere() []ast.WherePred {
	if !p.eat(token.KwWhere) {
		return nil
	}
	var preds []ast.WherePred
	for !p.atOr(token.LBrace, token.Semicolon, token.EOF) {
		start := p.peek().Span
		ty := p.parseType()
		pred := ast.WherePred{Type: ty}
		if _, ok := p.expect(token.Colon, diag.SynExpectType, "expected ':' in where clause"); ok {
			pred.Bounds = p.parseBounds()
		}
		pred.Span = p.spanFrom(start)
		preds = append(preds, pred)
		if !p.eat(token.Comma) {
			break
		}
	}
	return preds
}

func (p *Parser) parseParams() ([]ast.Param, bool) {
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' to start parameter list"); !ok {
		return nil, false
	}
	var params []ast.Param
	for !p.atOr(token.RParen, token.EOF) {
		start := p.peek().Span
		param := ast.Param{}
		if p.at(token.KwRef) && p.peekN(1).Kind == token.KwMut && p.peekN(2).Kind == token.KwSelf {
			p.advance()
			p.advance()
			param.Ref, param.Mut = true, true
		} else if p.at(token.KwMut) {
			p.advance()
			param.Mut = true
		}
		switch {
		case p.at(token.KwSelf):
			p.advance()
			param.Kind = ast.ParamSelf
			param.Name = p.arenas.Strings.Intern("self")
		case p.at(token.Ident):
			tok := p.advance()
			param.Name = p.intern(tok)
			if _, ok := p.expect(token.Colon, diag.SynExpectType, "expected ':' and parameter type"); ok {
				param.Type = p.parseType()
			}
		default:
			p.err(diag.SynExpectIdentifier, "expected parameter name, got "+describe(p.peek()))
			p.resyncUntil(token.Comma, token.RParen)
		}
		param.Span = p.spanFrom(start)
		if param.Name != source.NoStringID {
			params = append(params, param)
		}
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' to close parameter list"); !ok {
		return params, false
	}
	return params, true
}
