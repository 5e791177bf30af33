package parser

import (
	"strconv"

	"swell/internal/ast"
	"swell/internal/diag"
	"swell/internal/source"
	"swell/internal/token"
)

// parseExpr: выражение без присваивания.
func (p *Parser) parseExpr() ast.ExprID {
	return p.parseBinary(precLowest + 1)
}

// parseAssignable разбирает выражение и, если за ним идёт `=` или `op=`,
// присваивание.
func (p *Parser) parseAssignable() ast.ExprID {
	return p.parseAssignRest(p.parseExpr())
}

func (p *Parser) parseAssignRest(place ast.ExprID) ast.ExprID {
	if !isAssignOp(p.peek().Kind) {
		return place
	}
	op := p.advance()
	if !p.isPlace(place) {
		p.errAt(diag.SynAssignNotPlace, p.exprSpan(place), "left-hand side of '"+op.Kind.String()+"' is not assignable")
	}
	value := p.parseExpr()
	return p.arenas.Exprs.NewAssign(p.exprSpan(place).Cover(p.lastSpan), op.Kind, place, value)
}

func (p *Parser) isPlace(id ast.ExprID) bool {
	ex := p.arenas.Exprs.Get(id)
	if ex == nil {
		return false
	}
	switch ex.Kind {
	case ast.ExprPath, ast.ExprField, ast.ExprTupleIndex, ast.ExprIndex, ast.ExprError:
		return true
	case ast.ExprUnary:
		u, _ := p.arenas.Exprs.Unary(id)
		return u.Op == ast.UnaryDeref
	case ast.ExprParen:
		par, _ := p.arenas.Exprs.Paren(id)
		return p.isPlace(par.Inner)
	}
	return false
}

func (p *Parser) exprSpan(id ast.ExprID) source.Span {
	if ex := p.arenas.Exprs.Get(id); ex != nil {
		return ex.Span
	}
	return p.lastSpan
}

// parseBinary: Pratt-цикл по приоритетам из op_table.go.
func (p *Parser) parseBinary(minPrec int) ast.ExprID {
	return p.parseBinaryRest(p.parseUnary(), minPrec)
}

func (p *Parser) parseBinaryRest(left ast.ExprID, minPrec int) ast.ExprID {
	for {
		op := p.peek()
		prec := binaryPrec(op.Kind)
		if prec == precLowest || prec < minPrec {
			return left
		}
		p.advance()
		right := p.parseBinary(prec + 1)
		if prec == precComparison {
			if b, ok := p.arenas.Exprs.Binary(left); ok && binaryPrec(b.Op) == precComparison {
				p.errAt(diag.SynUnexpectedToken, op.Span, "comparison operators cannot be chained, use parentheses")
			}
		}
		left = p.arenas.Exprs.NewBinary(p.exprSpan(left).Cover(p.lastSpan), op.Kind, left, right)
	}
}

func (p *Parser) parseUnary() ast.ExprID {
	tok := p.peek()
	var op ast.UnaryOp
	switch tok.Kind {
	case token.Minus:
		op = ast.UnaryNeg
	case token.Bang:
		op = ast.UnaryNot
	case token.Star:
		op = ast.UnaryDeref
	case token.Amp:
		p.advance()
		op = ast.UnaryRef
		if p.eat(token.KwMut) {
			op = ast.UnaryRefMut
		}
		operand := p.parseUnary()
		return p.arenas.Exprs.NewUnary(p.spanFrom(tok.Span), op, operand)
	case token.AndAnd:
		// `&&x`: две ссылки подряд
		p.advance()
		op = ast.UnaryRef
		if p.eat(token.KwMut) {
			op = ast.UnaryRefMut
		}
		inner := p.arenas.Exprs.NewUnary(p.spanFrom(tok.Span), op, p.parseUnary())
		return p.arenas.Exprs.NewUnary(p.spanFrom(tok.Span), ast.UnaryRef, inner)
	default:
		return p.parsePostfix(p.parsePrimary())
	}
	p.advance()
	operand := p.parseUnary()
	return p.arenas.Exprs.NewUnary(p.spanFrom(tok.Span), op, operand)
}

func (p *Parser) parsePostfix(base ast.ExprID) ast.ExprID {
	for {
		start := p.exprSpan(base)
		switch p.peek().Kind {
		case token.Dot:
			p.advance()
			base = p.parseDotSuffix(base, start)
		case token.LParen:
			args := p.parseCallArgs()
			base = p.arenas.Exprs.NewCall(p.spanFrom(start), base, args)
		case token.LBracket:
			p.advance()
			saved := p.noStructLit
			p.noStructLit = false
			index := p.parseExpr()
			p.noStructLit = saved
			p.expect(token.RBracket, diag.SynUnclosedDelimiter, "expected ']' to close index")
			base = p.arenas.Exprs.NewIndex(p.spanFrom(start), base, index)
		default:
			return base
		}
	}
}

func (p *Parser) parseDotSuffix(base ast.ExprID, start source.Span) ast.ExprID {
	tok := p.peek()
	switch tok.Kind {
	case token.IntLit:
		p.advance()
		idx, err := strconv.ParseUint(tok.Text, 10, 32)
		if err != nil || tok.Suffix != "" {
			p.errAt(diag.SynInvalidTupleIndex, tok.Span, "invalid tuple index '"+tok.Text+"'")
		}
		return p.arenas.Exprs.NewTupleIndex(p.spanFrom(start), base, uint32(idx))
	case token.Ident:
		p.advance()
		name := p.intern(tok)
		var generics []ast.TypeID
		if p.at(token.ColonColon) && p.peekN(1).Kind == token.Lt {
			p.advance()
			generics = p.parseGenericArgs()
		}
		if p.at(token.LParen) {
			args := p.parseCallArgs()
			return p.arenas.Exprs.NewMethodCall(p.spanFrom(start), ast.ExprMethodCallData{
				Recv:     base,
				Name:     name,
				NameSpan: tok.Span,
				Generics: generics,
				Args:     args,
			})
		}
		if generics != nil {
			p.err(diag.SynUnexpectedToken, "expected '(' after method generic arguments")
		}
		return p.arenas.Exprs.NewField(p.spanFrom(start), base, name, tok.Span)
	}
	p.err(diag.SynExpectIdentifier, "expected field name or tuple index after '.', got "+describe(tok))
	return p.arenas.Exprs.NewError(p.spanFrom(start))
}

func (p *Parser) parseCallArgs() []ast.ExprID {
	p.advance() // '('
	saved := p.noStructLit
	p.noStructLit = false
	defer func() { p.noStructLit = saved }()
	var args []ast.ExprID
	for !p.atOr(token.RParen, token.EOF) {
		args = append(args, p.parseExpr())
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' to close argument list"); !ok {
		p.resyncUntil(token.RParen, token.Semicolon, token.RBrace)
		p.eat(token.RParen)
	}
	return args
}

func (p *Parser) parsePrimary() ast.ExprID {
	tok := p.peek()
	switch tok.Kind {
	case token.IntLit:
		p.advance()
		return p.arenas.Exprs.NewLit(tok.Span, ast.ExprLitData{Kind: ast.LitInt, Raw: tok.Text, Value: tok.Value, Suffix: tok.Suffix})
	case token.StringLit:
		p.advance()
		return p.arenas.Exprs.NewLit(tok.Span, ast.ExprLitData{Kind: ast.LitString, Raw: tok.Text, Value: tok.Value})
	case token.KwTrue, token.KwFalse:
		p.advance()
		return p.arenas.Exprs.NewLit(tok.Span, ast.ExprLitData{Kind: ast.LitBool, Raw: tok.Text, Value: tok.Text})
	case token.KwStorage:
		p.advance()
		return p.arenas.Exprs.NewStorage(tok.Span)
	case token.Ident, token.KwSelf, token.KwSelfType, token.KwSuper, token.KwCrate, token.ColonColon:
		return p.parsePathExpr()
	case token.LParen:
		return p.parseParenOrTuple()
	case token.LBracket:
		return p.parseArrayExpr()
	case token.LBrace:
		return p.parseBlock()
	case token.KwIf:
		return p.parseIf()
	case token.KwMatch:
		return p.parseMatch()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwBreak:
		p.advance()
		return p.arenas.Exprs.NewJump(ast.ExprBreak, tok.Span)
	case token.KwContinue:
		p.advance()
		return p.arenas.Exprs.NewJump(ast.ExprContinue, tok.Span)
	case token.KwReturn:
		p.advance()
		value := ast.NoExprID
		if canStartExpr(p.peek().Kind) {
			value = p.parseExpr()
		}
		return p.arenas.Exprs.NewReturn(p.spanFrom(tok.Span), value)
	}
	p.err(diag.SynExpectExpression, "expected expression, got "+describe(tok))
	if !isCloser(tok.Kind) && !isItemStarter(tok.Kind) && tok.Kind != token.KwLet {
		p.advance()
	}
	return p.arenas.Exprs.NewError(tok.Span)
}

func isCloser(k token.Kind) bool {
	switch k {
	case token.RParen, token.RBracket, token.RBrace, token.Semicolon, token.Comma, token.EOF, token.FatArrow:
		return true
	}
	return false
}

func canStartExpr(k token.Kind) bool {
	switch k {
	case token.IntLit, token.StringLit, token.KwTrue, token.KwFalse, token.KwStorage,
		token.Ident, token.KwSelf, token.KwSelfType, token.KwSuper, token.KwCrate, token.ColonColon,
		token.LParen, token.LBracket, token.LBrace, token.KwIf, token.KwMatch, token.KwWhile,
		token.KwBreak, token.KwContinue, token.KwReturn,
		token.Minus, token.Bang, token.Star, token.Amp, token.AndAnd:
		return true
	}
	return false
}

// parsePathExpr: путь в позиции выражения, затем, возможно, литерал структуры.
// `a<b>(c)` считается вызовом с generic-аргументами, если looksLikeGenericArgs.
func (p *Parser) parsePathExpr() ast.ExprID {
	start := p.peek().Span
	path := ast.Path{}
	if p.eat(token.ColonColon) {
		path.Absolute = true
	}
	for {
		seg, ok := p.parseSegmentName()
		if !ok {
			return p.arenas.Exprs.NewError(p.spanFrom(start))
		}
		switch {
		case p.at(token.ColonColon) && p.peekN(1).Kind == token.Lt:
			p.advance()
			seg.Args = p.parseGenericArgs()
			seg.Turbofish = true
		case p.at(token.Lt) && p.looksLikeGenericArgs():
			seg.Args = p.parseGenericArgs()
		}
		path.Segments = append(path.Segments, seg)
		if !p.at(token.ColonColon) || !isSegmentStart(p.peekN(1).Kind) {
			break
		}
		p.advance()
	}
	path.Span = p.spanFrom(start)
	if p.at(token.LBrace) && !p.noStructLit && p.looksLikeStructLit() {
		return p.parseStructLit(path)
	}
	return p.arenas.Exprs.NewPath(path.Span, path)
}

// looksLikeStructLit: `{ }`, `{ ident: `, `{ ident, ` или `{ ident }`.
func (p *Parser) looksLikeStructLit() bool {
	first := p.peekN(1)
	if first.Kind == token.RBrace {
		return true
	}
	if first.Kind != token.Ident {
		return false
	}
	switch p.peekN(2).Kind {
	case token.Colon, token.Comma, token.RBrace:
		return true
	}
	return false
}

func (p *Parser) parseStructLit(path ast.Path) ast.ExprID {
	p.advance() // '{'
	saved := p.noStructLit
	p.noStructLit = false
	data := ast.ExprStructData{Path: path}
	for !p.atOr(token.RBrace, token.EOF) {
		name, sp, ok := p.parseIdent()
		if !ok {
			p.resyncUntil(token.Comma, token.RBrace)
			if !p.eat(token.Comma) {
				break
			}
			continue
		}
		init := ast.FieldInit{Name: name, Span: sp}
		if p.eat(token.Colon) {
			init.Value = p.parseExpr()
			init.Span = p.spanFrom(sp)
		}
		data.Fields = append(data.Fields, init)
		if !p.eat(token.Comma) {
			break
		}
	}
	p.noStructLit = saved
	p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' to close struct literal")
	return p.arenas.Exprs.NewStruct(p.spanFrom(path.Span), data)
}

func (p *Parser) parseParenOrTuple() ast.ExprID {
	start := p.advance().Span
	saved := p.noStructLit
	p.noStructLit = false
	defer func() { p.noStructLit = saved }()
	if p.eat(token.RParen) {
		return p.arenas.Exprs.NewList(ast.ExprTuple, p.spanFrom(start), nil)
	}
	first := p.parseAssignable()
	if p.eat(token.RParen) {
		return p.arenas.Exprs.NewParen(p.spanFrom(start), first)
	}
	elems := []ast.ExprID{first}
	for p.eat(token.Comma) {
		if p.at(token.RParen) {
			break
		}
		elems = append(elems, p.parseExpr())
	}
	p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' to close tuple")
	return p.arenas.Exprs.NewList(ast.ExprTuple, p.spanFrom(start), elems)
}

func (p *Parser) parseArrayExpr() ast.ExprID {
	start := p.advance().Span
	saved := p.noStructLit
	p.noStructLit = false
	defer func() { p.noStructLit = saved }()
	if p.eat(token.RBracket) {
		return p.arenas.Exprs.NewList(ast.ExprArray, p.spanFrom(start), nil)
	}
	first := p.parseExpr()
	if p.eat(token.Semicolon) {
		count := p.parseExpr()
		p.expect(token.RBracket, diag.SynUnclosedDelimiter, "expected ']' to close array")
		return p.arenas.Exprs.NewArrayRepeat(p.spanFrom(start), first, count)
	}
	elems := []ast.ExprID{first}
	for p.eat(token.Comma) {
		if p.at(token.RBracket) {
			break
		}
		elems = append(elems, p.parseExpr())
	}
	p.expect(token.RBracket, diag.SynUnclosedDelimiter, "expected ']' to close array")
	return p.arenas.Exprs.NewList(ast.ExprArray, p.spanFrom(start), elems)
}

// parseCond: голова if/while/match: без литералов структур.
func (p *Parser) parseCond() ast.ExprID {
	saved := p.noStructLit
	p.noStructLit = true
	cond := p.parseExpr()
	p.noStructLit = saved
	return cond
}

func (p *Parser) parseIf() ast.ExprID {
	start := p.advance().Span // if
	cond := p.parseCond()
	then := p.parseBlock()
	els := ast.NoExprID
	if p.eat(token.KwElse) {
		if p.at(token.KwIf) {
			els = p.parseIf()
		} else {
			els = p.parseBlock()
		}
	}
	return p.arenas.Exprs.NewIf(p.spanFrom(start), cond, then, els)
}

func (p *Parser) parseWhile() ast.ExprID {
	start := p.advance().Span // while
	cond := p.parseCond()
	body := p.parseBlock()
	return p.arenas.Exprs.NewWhile(p.spanFrom(start), cond, body)
}

func (p *Parser) parseMatch() ast.ExprID {
	start := p.advance().Span // match
	scrutinee := p.parseCond()
	if _, ok := p.expect(token.LBrace, diag.SynExpectBlock, "expected '{' to start match arms"); !ok {
		return p.arenas.Exprs.NewMatch(p.spanFrom(start), scrutinee, nil)
	}
	saved := p.noStructLit
	p.noStructLit = false
	var arms []ast.MatchArm
	for !p.atOr(token.RBrace, token.EOF) {
		astart := p.peek().Span
		pat := p.parsePattern()
		if _, ok := p.expect(token.FatArrow, diag.SynUnexpectedToken, "expected '=>' after match pattern"); !ok {
			p.resyncUntil(token.Comma, token.RBrace)
			p.eat(token.Comma)
			continue
		}
		body := p.parseAssignable()
		arms = append(arms, ast.MatchArm{Pat: pat, Body: body, Span: p.spanFrom(astart)})
		if p.eat(token.Comma) {
			continue
		}
		if !p.arenas.Exprs.IsBlockLike(body) && !p.at(token.RBrace) {
			p.errAt(diag.SynUnexpectedToken, p.lastSpan.EndPoint(), "expected ',' after match arm")
			if p.peek().Span == astart {
				p.advance()
			}
		}
	}
	p.noStructLit = saved
	p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' to close match")
	return p.arenas.Exprs.NewMatch(p.spanFrom(start), scrutinee, arms)
}
