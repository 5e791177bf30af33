package ast

import "swell/internal/source"

// SegKind distinguishes keyword segments from plain identifiers.
type SegKind uint8

const (
	SegIdent     SegKind = iota
	SegSelfValue         // self
	SegSelfType          // Self
	SegSuper             // super
	SegCrate             // crate
)

// PathSegment is one `::`-separated component, optionally with generic
// arguments (`Vec<u8>` or turbofish `f::<u8>`).
type PathSegment struct {
	Kind SegKind
	Name source.StringID
	Span source.Span
	Args []TypeID
	// Turbofish records `::<...>` spelling so the printer can reproduce it.
	Turbofish bool
}

// Path is a possibly qualified name. Absolute paths start with `::`.
type Path struct {
	Segments []PathSegment
	Span     source.Span
	Absolute bool
}

// Last returns the final segment or nil for an empty path.
func (p *Path) Last() *PathSegment {
	if p == nil || len(p.Segments) == 0 {
		return nil
	}
	return &p.Segments[len(p.Segments)-1]
}

// IsSingle reports whether the path is a plain identifier without args.
func (p *Path) IsSingle() bool {
	return p != nil && !p.Absolute && len(p.Segments) == 1 && p.Segments[0].Kind == SegIdent && len(p.Segments[0].Args) == 0
}
