package project

import (
	"swell/internal/ast"
	"swell/internal/source"
)

// UseImport is one leaf of a `use` tree with the group prefixes applied.
type UseImport struct {
	// Segs are spelled as written, `crate`/`self`/`super` included.
	Segs []string
	Glob bool
	// Name is the bound name: the alias or the last segment. Empty for globs.
	Name     string
	NameSpan source.Span
	Span     source.Span
}

// FlattenUse expands `use a::{b, c::*, self as d}` into leaves.
func FlattenUse(b *ast.Builder, use *ast.UseItem) []UseImport {
	var out []UseImport
	flattenUse(b, &use.Tree, nil, &out)
	return out
}

func flattenUse(b *ast.Builder, tree *ast.UseTree, prefix []string, out *[]UseImport) {
	segs := append([]string(nil), prefix...)
	var last source.Span
	for _, seg := range tree.Prefix {
		segs = append(segs, b.SegmentName(seg))
		last = seg.Span
	}
	switch tree.Kind {
	case ast.UseGlob:
		*out = append(*out, UseImport{Segs: segs, Glob: true, Span: tree.Span})
	case ast.UseGroup:
		for i := range tree.Children {
			flattenUse(b, &tree.Children[i], segs, out)
		}
	default:
		// `a::{self}` импортирует сам `a`
		if n := len(segs); n > 1 && segs[n-1] == "self" && len(tree.Prefix) == 1 {
			segs = segs[:n-1]
		}
		if len(segs) == 0 {
			return
		}
		imp := UseImport{Segs: segs, Name: segs[len(segs)-1], NameSpan: last, Span: tree.Span}
		if tree.Alias != source.NoStringID {
			imp.Name = b.Name(tree.Alias)
			imp.NameSpan = tree.AliasSpan
		}
		*out = append(*out, imp)
	}
}
