package driver

import (
	"context"
	"strconv"

	"swell/internal/ast"
	"swell/internal/diag"
	"swell/internal/lexer"
	"swell/internal/parser"
	"swell/internal/source"
	"swell/internal/token"
	"swell/internal/trace"
)

// TokenizeResult is the token stream of one file.
type TokenizeResult struct {
	FileSet *source.FileSet
	File    source.FileID
	Tokens  []token.Token
	Bag     *diag.Bag
}

// Tokenize lexes one file without following modules.
func Tokenize(ctx context.Context, fs *source.FileSet, file source.FileID, maxDiagnostics int) *TokenizeResult {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "tokenize", trace.CurrentSpan(ctx).SpanID)
	defer span.End("")

	bag := diag.NewBag(maxDiagnostics)
	toks := lexer.Tokenize(fs.Get(file), lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
	bag.Sort()
	span.WithExtra("tokens", strconv.Itoa(len(toks)))
	return &TokenizeResult{FileSet: fs, File: file, Tokens: toks, Bag: bag}
}

// ParseResult is the CST of one file.
type ParseResult struct {
	FileSet *source.FileSet
	File    source.FileID
	Builder *ast.Builder
	AST     ast.FileID
	Bag     *diag.Bag
}

// Parse lexes and parses one file without following modules.
func Parse(ctx context.Context, fs *source.FileSet, file source.FileID, opts Options) *ParseResult {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "parse", trace.CurrentSpan(ctx).SpanID)
	defer span.End("")

	bag := diag.NewBag(opts.maxDiagnostics())
	b, res := parser.ParseSource(fs, file, source.NewInterner(), parser.Options{
		Reporter: diag.BagReporter{Bag: bag},
		Cfg:      opts.Cfg,
	})
	bag.Sort()
	bag.Dedup()
	return &ParseResult{FileSet: fs, File: file, Builder: b, AST: res.File, Bag: bag}
}
