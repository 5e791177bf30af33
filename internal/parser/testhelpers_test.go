package parser

import (
	"testing"

	"swell/internal/ast"
	"swell/internal/diag"
	"swell/internal/source"
)

func parseSrc(t *testing.T, src string, cfg map[string]string) (*ast.Builder, *ast.File, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.sw", []byte(src))
	bag := diag.NewBag(100)
	b, res := ParseSource(fs, id, source.NewInterner(), Options{
		Reporter: diag.BagReporter{Bag: bag},
		Cfg:      cfg,
	})
	return b, b.Files.Get(res.File), bag
}

func wantClean(t *testing.T, bag *diag.Bag) {
	t.Helper()
	for _, d := range bag.Items() {
		t.Errorf("unexpected diagnostic %s: %s", d.Code.ID(), d.Message)
	}
}

// fnBody returns the body block of the n-th top-level item, which must be a fn.
func fnBody(t *testing.T, b *ast.Builder, f *ast.File, n int) *ast.ExprBlockData {
	t.Helper()
	if n >= len(f.Items) {
		t.Fatalf("file has %d items, want index %d", len(f.Items), n)
	}
	fn, ok := b.Items.Fn(f.Items[n])
	if !ok {
		t.Fatalf("item %d is %s, want fn", n, b.Items.Get(f.Items[n]).Kind)
	}
	block, ok := b.Exprs.Block(fn.Body)
	if !ok {
		t.Fatalf("fn body is not a block")
	}
	return block
}

func letValue(t *testing.T, b *ast.Builder, stmt ast.StmtID) ast.ExprID {
	t.Helper()
	let, ok := b.Stmts.Let(stmt)
	if !ok {
		t.Fatalf("statement is %v, want let", b.Stmts.Get(stmt).Kind)
	}
	return let.Value
}
