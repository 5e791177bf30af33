package ast

import "swell/internal/source"

// Hints pre-sizes arenas; zero values pick defaults.
type Hints struct {
	Files, Items, Stmts, Exprs, Types, Pats uint
}

// Builder owns every CST arena of one module. Builders are independent so
// sibling modules can be parsed concurrently; only the string interner is
// shared.
type Builder struct {
	Files   *Files
	Items   *Items
	Stmts   *Stmts
	Exprs   *Exprs
	Types   *Types
	Pats    *Pats
	Strings *source.Interner
}

func NewBuilder(hints Hints, interner *source.Interner) *Builder {
	if interner == nil {
		interner = source.NewInterner()
	}
	if hints.Files == 0 {
		hints.Files = 1
	}
	return &Builder{
		Files:   NewFiles(hints.Files),
		Items:   NewItems(hints.Items),
		Stmts:   NewStmts(hints.Stmts),
		Exprs:   NewExprs(hints.Exprs),
		Types:   NewTypes(hints.Types),
		Pats:    NewPats(hints.Pats),
		Strings: interner,
	}
}

// Name returns the interned string or "" for NoStringID.
func (b *Builder) Name(id source.StringID) string {
	s, _ := b.Strings.Lookup(id)
	return s
}

// PathString renders a path as written, without generic arguments.
func (b *Builder) PathString(p *Path) string {
	if p == nil {
		return ""
	}
	out := ""
	if p.Absolute {
		out = "::"
	}
	for i, seg := range p.Segments {
		if i > 0 {
			out += "::"
		}
		out += b.SegmentName(seg)
	}
	return out
}

// SegmentName returns the spelling of a segment, keywords included.
func (b *Builder) SegmentName(seg PathSegment) string {
	switch seg.Kind {
	case SegSelfValue:
		return "self"
	case SegSelfType:
		return "Self"
	case SegSuper:
		return "super"
	case SegCrate:
		return "crate"
	}
	return b.Name(seg.Name)
}
