package ast

import "swell/internal/source"

// AttrValueKind is the spelling of an attribute argument value.
type AttrValueKind uint8

const (
	AttrValueNone AttrValueKind = iota
	AttrValueIdent
	AttrValueString
	AttrValueInt
	AttrValueList // вложенный список: cfg(not(...))
)

// AttrArg is a generic `key`, `key = value` or `key(...)` entry.
type AttrArg struct {
	Key       source.StringID
	Span      source.Span
	ValueKind AttrValueKind
	Value     string
	Nested    []AttrArg
}

// Attr is one `#[name(args)]` or `#[name = value]`. The parser does not
// interpret attribute contents.
type Attr struct {
	Name    source.StringID
	Span    source.Span
	HasArgs bool
	Args    []AttrArg
	// Value is set for the `#[name = "value"]` form.
	Value     string
	ValueKind AttrValueKind
}
