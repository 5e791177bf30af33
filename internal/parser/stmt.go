package parser

import (
	"swell/internal/ast"
	"swell/internal/diag"
	"swell/internal/token"
)

// parseBlock: `{ stmt* [tail] }`.
func (p *Parser) parseBlock() ast.ExprID {
	start := p.peek().Span
	if _, ok := p.expect(token.LBrace, diag.SynExpectBlock, "expected '{'"); !ok {
		return p.arenas.Exprs.NewError(start)
	}
	saved := p.noStructLit
	p.noStructLit = false
	defer func() { p.noStructLit = saved }()

	var stmts []ast.StmtID
	tail := ast.NoExprID
	for !p.atOr(token.RBrace, token.EOF) {
		if p.eat(token.Semicolon) {
			continue
		}
		before := p.peek().Span
		stmt, expr, isTail := p.parseStmt()
		if isTail {
			tail = expr
			break
		}
		if stmt.IsValid() {
			stmts = append(stmts, stmt)
		}
		if p.peek().Span == before && !p.at(token.RBrace) {
			p.advance()
		}
	}
	if _, ok := p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' to close block"); !ok {
		p.resyncUntil(token.RBrace)
		p.eat(token.RBrace)
	}
	return p.arenas.Exprs.NewBlock(p.spanFrom(start), stmts, tail)
}

// parseStmt возвращает либо оператор, либо хвостовое выражение блока.
func (p *Parser) parseStmt() (stmt ast.StmtID, tail ast.ExprID, isTail bool) {
	tok := p.peek()
	start := tok.Span
	switch {
	case tok.Kind == token.KwLet:
		return p.parseLet(), ast.NoExprID, false
	case tok.Kind == token.KwConst || tok.Kind == token.Hash:
		id, keep := p.parseItem(ctxBody)
		if !keep || !id.IsValid() {
			return ast.NoStmtID, ast.NoExprID, false
		}
		return p.arenas.Stmts.NewItem(p.spanFrom(start), id), ast.NoExprID, false
	case tok.Kind == token.KwStorage && p.peekN(1).Kind != token.LBrace:
		// `storage.x` в теле функции: это выражение, а не блок storage
	case isItemStarter(tok.Kind) && tok.Kind != token.KwConst:
		p.err(diag.SynExpectItem, "only 'const' items are allowed inside function bodies")
		p.parseItem(ctxTop)
		return p.arenas.Stmts.NewError(p.spanFrom(start)), ast.NoExprID, false
	}

	var expr ast.ExprID
	if tok.Kind == token.LBrace || tok.Kind == token.KwIf || tok.Kind == token.KwMatch || tok.Kind == token.KwWhile {
		// блочное выражение в позиции оператора не продолжается бинарными операторами,
		// кроме цепочки методов `.`.
		expr = p.parsePrimary()
		if p.at(token.Dot) {
			expr = p.parseBinaryRest(p.parsePostfix(expr), precLowest+1)
		}
	} else {
		expr = p.parseExpr()
	}
	expr = p.parseAssignRest(expr)

	if ex := p.arenas.Exprs.Get(expr); ex != nil && ex.Kind == ast.ExprError {
		p.resyncStmt()
		p.eat(token.Semicolon)
		return p.arenas.Stmts.NewError(p.spanFrom(start)), ast.NoExprID, false
	}
	switch {
	case p.eat(token.Semicolon):
		return p.arenas.Stmts.NewExpr(p.spanFrom(start), expr, true), ast.NoExprID, false
	case p.at(token.RBrace):
		return ast.NoStmtID, expr, true
	case p.arenas.Exprs.IsBlockLike(expr):
		return p.arenas.Stmts.NewExpr(p.spanFrom(start), expr, false), ast.NoExprID, false
	}
	// пропущенная ';', репортим и продолжаем, как будто она была
	p.errAt(diag.SynExpectSemicolon, p.lastSpan.EndPoint(), "expected ';' after expression")
	if next := p.peek().Kind; !canStartExpr(next) && next != token.KwLet && !isItemStarter(next) {
		p.resyncStmt()
		p.eat(token.Semicolon)
	}
	return p.arenas.Stmts.NewExpr(p.spanFrom(start), expr, true), ast.NoExprID, false
}

// resyncStmt: до `;`, `}` или начала следующего оператора.
func (p *Parser) resyncStmt() {
	p.resyncUntil(token.Semicolon, token.RBrace, token.KwLet, token.KwIf, token.KwWhile,
		token.KwMatch, token.KwReturn, token.KwFn, token.KwConst, token.KwStruct, token.KwImpl)
}

func (p *Parser) parseLet() ast.StmtID {
	start := p.advance().Span // let
	data := ast.StmtLetData{}
	data.Pat = p.parsePattern()
	if p.eat(token.Colon) {
		data.Type = p.parseType()
	}
	if p.eat(token.Assign) {
		data.Value = p.parseExpr()
	}
	if !p.eat(token.Semicolon) {
		p.errAt(diag.SynExpectSemicolon, p.lastSpan.EndPoint(), "expected ';' after let statement")
		if !p.atOr(token.RBrace, token.KwLet) && !canStartExpr(p.peek().Kind) {
			p.resyncStmt()
			p.eat(token.Semicolon)
		}
	}
	return p.arenas.Stmts.NewLet(p.spanFrom(start), data)
}
