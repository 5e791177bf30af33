package parser

import (
	"slices"

	"swell/internal/ast"
	"swell/internal/diag"
	"swell/internal/lexer"
	"swell/internal/source"
	"swell/internal/token"
)

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
	// Cfg holds externally supplied key/value pairs for #[cfg(...)] gates.
	Cfg map[string]string
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

type Result struct {
	File   ast.FileID
	Errors uint
}

// Parser: состояние парсера на один файл
type Parser struct {
	lx       *lexer.Lexer  // ленивый поток токенов
	buf      []token.Token // окно lookahead; buf[0] это текущий токен
	arenas   *ast.Builder
	file     ast.FileID
	fs       *source.FileSet
	opts     Options
	lastSpan source.Span // span последнего съеденного токена для лучшей диагностики
	// noStructLit запрещает `Name { ... }` в голове if/while/match
	noStructLit bool
}

// ParseFile: входная точка для разбора одного файла.
func ParseFile(fs *source.FileSet, lx *lexer.Lexer, arenas *ast.Builder, opts Options) Result {
	p := Parser{
		lx:     lx,
		arenas: arenas,
		fs:     fs,
		opts:   opts,
	}
	src := lx.File()
	p.lastSpan = source.Span{File: src.ID}
	p.file = arenas.Files.New(ast.File{Source: src.ID})
	p.parseFile()
	return Result{File: p.file, Errors: p.opts.CurrentErrors}
}

// ParseSource is a convenience wrapper that lexes and parses one file with a
// fresh builder.
func ParseSource(fs *source.FileSet, fileID source.FileID, strings *source.Interner, opts Options) (*ast.Builder, Result) {
	b := ast.NewBuilder(ast.Hints{}, strings)
	lx := lexer.New(fs.Get(fileID), lexer.Options{Reporter: opts.Reporter})
	return b, ParseFile(fs, lx, b, opts)
}

func (p *Parser) fill(n int) {
	for len(p.buf) <= n {
		if l := len(p.buf); l > 0 && p.buf[l-1].Kind == token.EOF {
			p.buf = append(p.buf, p.buf[l-1])
			continue
		}
		p.buf = append(p.buf, p.lx.Next())
	}
}

// peek возвращает текущий токен, не потребляя его.
func (p *Parser) peek() token.Token {
	p.fill(0)
	return p.buf[0]
}

// peekN смотрит на n токенов вперёд (0, текущий).
func (p *Parser) peekN(n int) token.Token {
	p.fill(n)
	return p.buf[n]
}

func (p *Parser) at(k token.Kind) bool {
	return p.peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.peek().Kind)
}

// advance: съедает текущий токен и обновляет lastSpan
func (p *Parser) advance() token.Token {
	tok := p.peek()
	if tok.Kind != token.EOF {
		p.buf = p.buf[1:]
		p.lastSpan = tok.Span
	}
	return tok
}

func (p *Parser) eat(k token.Kind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

// splitGt разрезает `>>`, `>=`, `>>=` так, чтобы текущим стал `>`.
// Нужно для закрытия вложенных списков generic-аргументов.
func (p *Parser) splitGt() bool {
	tok := p.peek()
	var rest token.Kind
	switch tok.Kind {
	case token.Gt:
		return true
	case token.Shr:
		rest = token.Gt
	case token.GtEq:
		rest = token.Assign
	case token.ShrAssign:
		rest = token.GtEq
	default:
		return false
	}
	first := tok
	first.Kind = token.Gt
	first.Span.End = first.Span.Start + 1
	first.Text = ">"
	second := token.Token{Kind: rest, Span: tok.Span, Text: tok.Text[1:]}
	second.Span.Start++
	p.buf[0] = second
	p.buf = slices.Insert(p.buf, 0, first)
	return true
}

func (p *Parser) IsError() bool {
	return p.opts.CurrentErrors != 0
}
