package parser

import (
	"swell/internal/ast"
	"swell/internal/diag"
	"swell/internal/token"
)

// parseAttrs собирает все `#[...]` перед item. Содержимое не интерпретируется.
func (p *Parser) parseAttrs() []ast.Attr {
	var attrs []ast.Attr
	for p.at(token.Hash) {
		if attr, ok := p.parseAttr(); ok {
			attrs = append(attrs, attr)
		}
	}
	return attrs
}

func (p *Parser) parseAttr() (ast.Attr, bool) {
	hash := p.advance()
	if _, ok := p.expect(token.LBracket, diag.SynBadAttribute, "expected '[' after '#'"); !ok {
		p.resyncUntil(append([]token.Kind{token.RBracket}, itemStarters...)...)
		p.eat(token.RBracket)
		return ast.Attr{}, false
	}
	// `storage`: ключевое слово, но допустимое имя атрибута
	nameTok := p.peek()
	if nameTok.Kind != token.Ident && !nameTok.IsKeyword() {
		p.err(diag.SynBadAttribute, "expected attribute name, got "+describe(nameTok))
		p.resyncUntil(token.RBracket)
		p.eat(token.RBracket)
		return ast.Attr{}, false
	}
	p.advance()
	attr := ast.Attr{Name: p.intern(nameTok)}
	switch {
	case p.at(token.LParen):
		attr.HasArgs = true
		attr.Args = p.parseAttrArgs()
	case p.eat(token.Assign):
		attr.ValueKind, attr.Value = p.parseAttrValue()
	}
	if _, ok := p.expect(token.RBracket, diag.SynBadAttribute, "expected ']' to close attribute"); !ok {
		p.resyncUntil(token.RBracket)
		p.eat(token.RBracket)
	}
	attr.Span = p.spanFrom(hash.Span)
	return attr, true
}

// parseAttrArgs разбирает `(a, k = v, nested(...))`.
func (p *Parser) parseAttrArgs() []ast.AttrArg {
	p.advance() // '('
	var args []ast.AttrArg
	for !p.atOr(token.RParen, token.RBracket, token.EOF) {
		start := p.peek().Span
		var arg ast.AttrArg
		// ключами атрибутов бывают и ключевые слова: storage(read, write)
		if tok := p.peek(); tok.Kind == token.Ident || tok.IsKeyword() {
			p.advance()
			arg.Key = p.intern(tok)
		} else {
			p.err(diag.SynBadAttribute, "expected attribute argument, got "+describe(tok))
			p.resyncUntil(token.RParen, token.RBracket)
			break
		}
		switch {
		case p.at(token.LParen):
			arg.ValueKind = ast.AttrValueList
			arg.Nested = p.parseAttrArgs()
		case p.eat(token.Assign):
			arg.ValueKind, arg.Value = p.parseAttrValue()
		}
		arg.Span = p.spanFrom(start)
		args = append(args, arg)
		if !p.eat(token.Comma) {
			break
		}
	}
	p.expect(token.RParen, diag.SynBadAttribute, "expected ')' in attribute arguments")
	return args
}

func (p *Parser) parseAttrValue() (ast.AttrValueKind, string) {
	tok := p.peek()
	switch tok.Kind {
	case token.StringLit:
		p.advance()
		return ast.AttrValueString, tok.Value
	case token.IntLit:
		p.advance()
		return ast.AttrValueInt, tok.Value
	case token.Ident, token.KwTrue, token.KwFalse:
		p.advance()
		return ast.AttrValueIdent, tok.Text
	}
	p.err(diag.SynBadAttribute, "expected attribute value, got "+describe(tok))
	return ast.AttrValueNone, ""
}

// cfgEnabled вычисляет все #[cfg] гейты item. Битый гейт репортится и
// считается включённым, чтобы item не пропал молча.
func (p *Parser) cfgEnabled(attrs []ast.Attr) bool {
	enabled := true
	for i := range attrs {
		a := &attrs[i]
		if p.arenas.Name(a.Name) != "cfg" {
			continue
		}
		if !a.HasArgs || len(a.Args) != 1 {
			p.errAt(diag.AtrCfgMalformed, a.Span, "cfg expects exactly one predicate")
			continue
		}
		v, ok := p.evalCfg(&a.Args[0])
		if !ok {
			p.errAt(diag.AtrCfgMalformed, a.Span, "malformed cfg predicate")
			continue
		}
		enabled = enabled && v
	}
	return enabled
}

func (p *Parser) evalCfg(arg *ast.AttrArg) (bool, bool) {
	key := p.arenas.Name(arg.Key)
	switch arg.ValueKind {
	case ast.AttrValueList:
		switch key {
		case "not":
			if len(arg.Nested) != 1 {
				return false, false
			}
			v, ok := p.evalCfg(&arg.Nested[0])
			return !v, ok
		case "all", "any":
			all := key == "all"
			res := all
			for i := range arg.Nested {
				v, ok := p.evalCfg(&arg.Nested[i])
				if !ok {
					return false, false
				}
				if all {
					res = res && v
				} else {
					res = res || v
				}
			}
			return res, true
		}
		return false, false
	case ast.AttrValueNone:
		_, set := p.opts.Cfg[key]
		return set, true
	default:
		val, set := p.opts.Cfg[key]
		return set && val == arg.Value, true
	}
}
