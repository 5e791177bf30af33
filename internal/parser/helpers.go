package parser

import (
	"swell/internal/diag"
	"swell/internal/source"
	"swell/internal/token"
)

// diagSpan: лучший span для диагностики: на EOF указываем сразу за
// последним съеденным токеном.
func (p *Parser) diagSpan() source.Span {
	peek := p.peek()
	if peek.Kind == token.EOF {
		return p.lastSpan.EndPoint()
	}
	return peek.Span
}

// expect: ожидаем конкретный токен. Если нет, репортим и возвращаем (invalid,false).
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	sp := p.diagSpan()
	p.report(code, diag.SevError, sp, msg+", got "+describe(p.peek()))
	return token.Token{Kind: token.Invalid, Span: sp}, false
}

// expectGt accepts `>` and splits `>>`-like tokens.
func (p *Parser) expectGt() bool {
	if p.splitGt() {
		p.advance()
		return true
	}
	p.err(diag.SynUnclosedDelimiter, "expected '>' to close generic arguments, got "+describe(p.peek()))
	return false
}

// репортует ошибку на текущем токене
func (p *Parser) err(code diag.Code, msg string) bool {
	return p.report(code, diag.SevError, p.diagSpan(), msg)
}

func (p *Parser) errAt(code diag.Code, sp source.Span, msg string) bool {
	return p.report(code, diag.SevError, sp, msg)
}

func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) bool {
	if sev == diag.SevError {
		p.opts.CurrentErrors++
		if p.opts.MaxErrors > 0 && p.opts.CurrentErrors > p.opts.MaxErrors {
			return false // достигли максимального количества ошибок
		}
	}
	if p.opts.Reporter == nil {
		return false
	}
	diag.NewReportBuilder(p.opts.Reporter, sev, code, sp, msg).Emit()
	return true
}

func describe(tok token.Token) string {
	switch tok.Kind {
	case token.EOF:
		return "end of file"
	case token.Ident, token.IntLit, token.StringLit, token.Invalid:
		return "'" + tok.Text + "'"
	}
	return "'" + tok.Kind.String() + "'"
}

// parseIdent: ожидает Ident и интернирует его.
func (p *Parser) parseIdent() (source.StringID, source.Span, bool) {
	if p.at(token.Ident) {
		tok := p.advance()
		return p.intern(tok), tok.Span, true
	}
	p.err(diag.SynExpectIdentifier, "expected identifier, got "+describe(p.peek()))
	return source.NoStringID, p.diagSpan(), false
}

func (p *Parser) intern(tok token.Token) source.StringID {
	if tok.Value != "" {
		return p.arenas.Strings.Intern(tok.Value)
	}
	return p.arenas.Strings.Intern(tok.Text)
}

// resyncUntil прокручивает токены до одного из stop (не съедая его) или EOF.
// Сбалансированные скобки пропускаются целиком.
func (p *Parser) resyncUntil(stop ...token.Kind) {
	depth := 0
	for !p.at(token.EOF) {
		k := p.peek().Kind
		if depth == 0 {
			for _, s := range stop {
				if k == s {
					return
				}
			}
		}
		switch k {
		case token.LParen, token.LBracket, token.LBrace:
			depth++
		case token.RParen, token.RBracket, token.RBrace:
			if depth == 0 {
				return
			}
			depth--
		}
		p.advance()
	}
}

var itemStarters = []token.Kind{
	token.KwFn, token.KwStruct, token.KwEnum, token.KwTrait, token.KwImpl, token.KwAbi,
	token.KwStorage, token.KwConfigurable, token.KwConst, token.KwUse, token.KwMod,
	token.KwPub, token.Hash,
}

func isItemStarter(k token.Kind) bool {
	for _, s := range itemStarters {
		if k == s {
			return true
		}
	}
	return false
}

// resyncTop: восстановление после ошибки на верхнем уровне: до стартового
// токена следующего item, лишние '}' и ';' съедаем.
func (p *Parser) resyncTop() {
	for !p.at(token.EOF) {
		p.resyncUntil(itemStarters...)
		if p.atOr(token.RBrace, token.RParen, token.RBracket, token.Semicolon) {
			p.advance()
			continue
		}
		return
	}
}

// spanFrom covers start through the last consumed token.
func (p *Parser) spanFrom(start source.Span) source.Span {
	if p.lastSpan.End < start.Start {
		return start
	}
	return start.Cover(p.lastSpan)
}
