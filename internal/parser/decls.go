package parser

import (
	"swell/internal/ast"
	"swell/internal/diag"
	"swell/internal/source"
	"swell/internal/token"
)

func (p *Parser) parseStruct(start source.Span, pub bool, attrs []ast.Attr) ast.ItemID {
	p.advance() // struct
	data := ast.StructItem{}
	var ok bool
	if data.Name, data.NameSpan, ok = p.parseIdent(); !ok {
		p.resyncTop()
		return p.arenas.Items.NewError(p.spanFrom(start))
	}
	data.Generics = p.parseGenericParams()
	if _, ok := p.expect(token.LBrace, diag.SynExpectBlock, "expected '{' to start struct fields"); !ok {
		p.resyncTop()
		return p.arenas.Items.NewError(p.spanFrom(start))
	}
	for !p.atOr(token.RBrace, token.EOF) {
		fstart := p.peek().Span
		field := ast.Field{Public: p.eat(token.KwPub)}
		name, _, ok := p.parseIdent()
		if !ok {
			p.resyncUntil(token.Comma, token.RBrace)
			if !p.eat(token.Comma) {
				break
			}
			continue
		}
		field.Name = name
		if _, ok := p.expect(token.Colon, diag.SynExpectType, "expected ':' and field type"); ok {
			field.Type = p.parseType()
		}
		field.Span = p.spanFrom(fstart)
		data.Fields = append(data.Fields, field)
		if !p.eat(token.Comma) {
			break
		}
	}
	p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' to close struct")
	return p.arenas.Items.NewStruct(p.spanFrom(start), pub, attrs, data)
}

func (p *Parser) parseEnum(start source.Span, pub bool, attrs []ast.Attr) ast.ItemID {
	p.advance() // enum
	data := ast.EnumItem{}
	var ok bool
	if data.Name, data.NameSpan, ok = p.parseIdent(); !ok {
		p.resyncTop()
		return p.arenas.Items.NewError(p.spanFrom(start))
	}
	data.Generics = p.parseGenericParams()
	if _, ok := p.expect(token.LBrace, diag.SynExpectBlock, "expected '{' to start enum variants"); !ok {
		p.resyncTop()
		return p.arenas.Items.NewError(p.spanFrom(start))
	}
	for !p.atOr(token.RBrace, token.EOF) {
		vstart := p.peek().Span
		name, _, ok := p.parseIdent()
		if !ok {
			p.resyncUntil(token.Comma, token.RBrace)
			if !p.eat(token.Comma) {
				break
			}
			continue
		}
		v := ast.Variant{Name: name}
		if p.eat(token.Colon) {
			v.Type = p.parseType()
		}
		v.Span = p.spanFrom(vstart)
		data.Variants = append(data.Variants, v)
		if !p.eat(token.Comma) {
			break
		}
	}
	p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' to close enum")
	return p.arenas.Items.NewEnum(p.spanFrom(start), pub, attrs, data)
}

func (p *Parser) parseTrait(start source.Span, pub bool, attrs []ast.Attr) ast.ItemID {
	p.advance() // trait
	data := ast.TraitItem{}
	var ok bool
	if data.Name, data.NameSpan, ok = p.parseIdent(); !ok {
		p.resyncTop()
		return p.arenas.Items.NewError(p.spanFrom(start))
	}
	data.Generics = p.parseGenericParams()
	if p.eat(token.Colon) {
		data.Supers = p.parseBounds()
	}
	data.Members = p.parseMembers(ctxTrait)
	return p.arenas.Items.NewTrait(p.spanFrom(start), pub, attrs, data)
}

func (p *Parser) parseAbi(start source.Span, pub bool, attrs []ast.Attr) ast.ItemID {
	p.advance() // abi
	data := ast.AbiItem{}
	var ok bool
	if data.Name, data.NameSpan, ok = p.parseIdent(); !ok {
		p.resyncTop()
		return p.arenas.Items.NewError(p.spanFrom(start))
	}
	if p.eat(token.Colon) {
		data.Supers = p.parseBounds()
	}
	data.Members = p.parseMembers(ctxAbi)
	return p.arenas.Items.NewAbi(p.spanFrom(start), pub, attrs, data)
}

// parseImpl: impl<T> Trait<A> for Type where ... { } | impl<T> Type { }
func (p *Parser) parseImpl(start source.Span, attrs []ast.Attr) ast.ItemID {
	p.advance() // impl
	data := ast.ImplItem{}
	data.Generics = p.parseGenericParams()
	first := p.parseType()
	if p.eat(token.KwFor) {
		tp, ok := p.arenas.Types.Path(first)
		if !ok {
			p.errAt(diag.SynUnexpectedToken, p.arenas.Types.Get(first).Span, "expected trait path before 'for'")
		} else {
			trait := tp.Path
			data.Trait = &trait
		}
		data.Self = p.parseType()
	} else {
		data.Self = first
	}
	data.Where = p.parseWhere()
	data.Members = p.parseMembers(ctxImpl)
	return p.arenas.Items.NewImpl(p.spanFrom(start), attrs, data)
}
