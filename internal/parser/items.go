package parser

import (
	"swell/internal/ast"
	"swell/internal/diag"
	"swell/internal/source"
	"swell/internal/token"
)

// itemCtx: где разбирается item: определяет допустимые виды.
type itemCtx uint8

const (
	ctxTop itemCtx = iota
	ctxTrait
	ctxImpl
	ctxAbi
	ctxBody
)

func (c itemCtx) String() string {
	switch c {
	case ctxTrait:
		return "trait"
	case ctxImpl:
		return "impl"
	case ctxAbi:
		return "abi"
	case ctxBody:
		return "function body"
	}
	return "module"
}

func (p *Parser) parseFile() {
	file := p.arenas.Files.Get(p.file)
	startSpan := p.peek().Span
	p.parseHeader(file)

	for !p.at(token.EOF) {
		if p.atOr(token.KwContract, token.KwScript, token.KwPredicate, token.KwLibrary) && p.peekN(1).Kind == token.Semicolon {
			tok := p.advance()
			p.advance()
			p.errAt(diag.SynDuplicateHeader, tok.Span, "program kind is already declared as '"+file.Program.String()+"'")
			continue
		}
		before := p.peek().Span
		id, keep := p.parseItem(ctxTop)
		if id.IsValid() {
			if keep {
				file.Items = append(file.Items, id)
			} else {
				file.Gated = append(file.Gated, id)
			}
		}
		// гарантия прогресса
		if !p.at(token.EOF) && p.peek().Span == before {
			p.advance()
		}
	}
	file.Span = startSpan.Cover(p.lastSpan)
}

// parseHeader: первый item каждого файла: `contract;` и т.п.
func (p *Parser) parseHeader(file *ast.File) {
	tok := p.peek()
	kind := ast.ProgramUnknown
	switch tok.Kind {
	case token.KwContract:
		kind = ast.ProgramContract
	case token.KwScript:
		kind = ast.ProgramScript
	case token.KwPredicate:
		kind = ast.ProgramPredicate
	case token.KwLibrary:
		kind = ast.ProgramLibrary
	}
	if kind == ast.ProgramUnknown {
		p.errAt(diag.SynMissingHeader, p.diagSpan().StartPoint(), "expected program kind ('contract;', 'script;', 'predicate;' or 'library;') at start of file")
		return
	}
	p.advance()
	file.Program = kind
	file.KindSpan = tok.Span
	p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after program kind")
}

// parseItem разбирает один item с атрибутами. keep=false, если item выключен #[cfg].
func (p *Parser) parseItem(ctx itemCtx) (id ast.ItemID, keep bool) {
	start := p.peek().Span
	attrs := p.parseAttrs()
	pub := p.eat(token.KwPub)
	keep = p.cfgEnabled(attrs)

	tok := p.peek()
	if !memberAllowed(ctx, tok.Kind) {
		p.err(diag.SynExpectItem, "expected item in "+ctx.String()+", got "+describe(tok))
		p.resyncMember()
		return p.arenas.Items.NewError(p.spanFrom(start)), keep
	}
	switch tok.Kind {
	case token.KwFn:
		id = p.parseFn(start, pub, attrs, ctx)
	case token.KwConst:
		id = p.parseConst(start, pub, attrs, ctx)
	case token.KwType:
		id = p.parseAssocType(start, attrs, ctx)
	case token.KwStruct:
		id = p.parseStruct(start, pub, attrs)
	case token.KwEnum:
		id = p.parseEnum(start, pub, attrs)
	case token.KwTrait:
		id = p.parseTrait(start, pub, attrs)
	case token.KwImpl:
		id = p.parseImpl(start, attrs)
	case token.KwAbi:
		id = p.parseAbi(start, pub, attrs)
	case token.KwStorage:
		id = p.parseSlotBlock(ast.ItemStorage, start, attrs)
	case token.KwConfigurable:
		id = p.parseSlotBlock(ast.ItemConfigurable, start, attrs)
	case token.KwUse:
		id = p.parseUse(start, pub, attrs)
	case token.KwMod:
		id = p.parseMod(start, pub, attrs)
	default:
		p.err(diag.SynExpectItem, "expected item, got "+describe(tok))
		p.advance()
		p.resyncTop()
		return p.arenas.Items.NewError(p.spanFrom(start)), keep
	}
	return id, keep
}

func memberAllowed(ctx itemCtx, k token.Kind) bool {
	switch ctx {
	case ctxTrait, ctxImpl:
		return k == token.KwFn || k == token.KwConst || k == token.KwType
	case ctxAbi:
		return k == token.KwFn || k == token.KwConst
	case ctxBody:
		return k == token.KwConst
	}
	return k != token.KwType
}

// resyncMember: до следующего члена или закрывающей '}'.
func (p *Parser) resyncMember() {
	p.resyncUntil(token.KwFn, token.KwConst, token.KwType, token.Hash, token.KwPub, token.RBrace)
}

// parseMembers разбирает `{ item* }` в теле trait/impl/abi.
func (p *Parser) parseMembers(ctx itemCtx) []ast.ItemID {
	if _, ok := p.expect(token.LBrace, diag.SynExpectBlock, "expected '{'"); !ok {
		return nil
	}
	var members []ast.ItemID
	for !p.atOr(token.RBrace, token.EOF) {
		before := p.peek().Span
		id, keep := p.parseItem(ctx)
		if id.IsValid() && keep {
			members = append(members, id)
		}
		if p.peek().Span == before && !p.at(token.RBrace) {
			p.advance()
		}
	}
	p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' to close "+ctx.String()+" body")
	return members
}

func (p *Parser) parseConst(start source.Span, pub bool, attrs []ast.Attr, ctx itemCtx) ast.ItemID {
	p.advance() // const
	data := ast.ConstItem{}
	var ok bool
	data.Name, data.NameSpan, ok = p.parseIdent()
	if !ok {
		p.resyncUntil(token.Semicolon, token.RBrace)
		p.eat(token.Semicolon)
		return p.arenas.Items.NewError(p.spanFrom(start))
	}
	if p.eat(token.Colon) {
		data.Type = p.parseType()
	}
	if p.eat(token.Assign) {
		data.Value = p.parseExpr()
	} else if ctx != ctxTrait && ctx != ctxAbi {
		p.err(diag.SynExpectExpression, "expected '=' and a value for const")
	}
	p.expectSemi("const declaration")
	return p.arenas.Items.NewConst(p.spanFrom(start), pub, attrs, data)
}

func (p *Parser) parseAssocType(start source.Span, attrs []ast.Attr, ctx itemCtx) ast.ItemID {
	p.advance() // type
	data := ast.AssocTypeItem{}
	var ok bool
	data.Name, data.NameSpan, ok = p.parseIdent()
	if !ok {
		p.resyncUntil(token.Semicolon, token.RBrace)
		p.eat(token.Semicolon)
		return p.arenas.Items.NewError(p.spanFrom(start))
	}
	if p.eat(token.Assign) {
		data.Value = p.parseType()
	} else if ctx == ctxImpl {
		p.err(diag.SynExpectType, "expected '=' and a type for associated type")
	}
	p.expectSemi("associated type")
	return p.arenas.Items.NewAssocType(p.spanFrom(start), attrs, data)
}

// parseSlotBlock: `storage { name: Type = init, ... }` и `configurable { ... }`.
func (p *Parser) parseSlotBlock(kind ast.ItemKind, start source.Span, attrs []ast.Attr) ast.ItemID {
	p.advance()
	data := ast.BlockItem{}
	if _, ok := p.expect(token.LBrace, diag.SynExpectBlock, "expected '{' after '"+kind.String()+"'"); !ok {
		p.resyncTop()
		return p.arenas.Items.NewError(p.spanFrom(start))
	}
	for !p.atOr(token.RBrace, token.EOF) {
		fstart := p.peek().Span
		name, _, ok := p.parseIdent()
		if !ok {
			p.resyncUntil(token.Comma, token.RBrace)
			p.eat(token.Comma)
			continue
		}
		field := ast.SlotField{Name: name}
		if _, ok := p.expect(token.Colon, diag.SynExpectType, "expected ':' and a type"); ok {
			field.Type = p.parseType()
		}
		if _, ok := p.expect(token.Assign, diag.SynExpectExpression, "expected '=' and an initializer"); ok {
			field.Init = p.parseExpr()
		}
		field.Span = p.spanFrom(fstart)
		data.Fields = append(data.Fields, field)
		if !p.eat(token.Comma) {
			break
		}
	}
	p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' to close "+kind.String()+" block")
	return p.arenas.Items.NewSlotBlock(kind, p.spanFrom(start), attrs, data)
}

func (p *Parser) parseMod(start source.Span, pub bool, attrs []ast.Attr) ast.ItemID {
	p.advance() // mod
	name, nameSpan, ok := p.parseIdent()
	if !ok {
		p.resyncTop()
		return p.arenas.Items.NewError(p.spanFrom(start))
	}
	p.expectSemi("module declaration")
	return p.arenas.Items.NewMod(p.spanFrom(start), pub, attrs, ast.ModItem{Name: name, NameSpan: nameSpan})
}

func (p *Parser) parseUse(start source.Span, pub bool, attrs []ast.Attr) ast.ItemID {
	p.advance() // use
	data := ast.UseItem{}
	if p.eat(token.ColonColon) {
		data.Absolute = true
	}
	tree, ok := p.parseUseTree()
	if !ok {
		p.resyncUntil(token.Semicolon, token.RBrace)
		p.eat(token.Semicolon)
		return p.arenas.Items.NewError(p.spanFrom(start))
	}
	data.Tree = tree
	p.expectSemi("use declaration")
	return p.arenas.Items.NewUse(p.spanFrom(start), pub, attrs, data)
}

func (p *Parser) parseUseTree() (ast.UseTree, bool) {
	start := p.peek().Span
	tree := ast.UseTree{Kind: ast.UseSimple}
	for {
		switch {
		case p.eat(token.Star):
			tree.Kind = ast.UseGlob
			tree.Span = p.spanFrom(start)
			return tree, true
		case p.at(token.LBrace):
			p.advance()
			tree.Kind = ast.UseGroup
			for !p.atOr(token.RBrace, token.EOF) {
				child, ok := p.parseUseTree()
				if !ok {
					p.resyncUntil(token.Comma, token.RBrace, token.Semicolon)
				} else {
					tree.Children = append(tree.Children, child)
				}
				if !p.eat(token.Comma) {
					break
				}
			}
			if _, ok := p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' to close use group"); !ok {
				return tree, false
			}
			tree.Span = p.spanFrom(start)
			return tree, true
		}
		seg, ok := p.parseSegmentName()
		if !ok {
			return tree, false
		}
		tree.Prefix = append(tree.Prefix, seg)
		if !p.eat(token.ColonColon) {
			break
		}
	}
	if p.eat(token.KwAs) {
		name, sp, ok := p.parseIdent()
		if !ok {
			return tree, false
		}
		tree.Alias, tree.AliasSpan = name, sp
	}
	tree.Span = p.spanFrom(start)
	return tree, true
}

// expectSemi репортит пропущенную ';' и продолжает разбор, как если бы она была.
func (p *Parser) expectSemi(what string) {
	if p.eat(token.Semicolon) {
		return
	}
	p.errAt(diag.SynExpectSemicolon, p.lastSpan.EndPoint(), "expected ';' after "+what)
}
