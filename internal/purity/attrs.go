package purity

import (
	"fmt"
	"math/big"
	"strings"

	"swell/internal/ast"
	"swell/internal/diag"
	"swell/internal/hir"
	"swell/internal/symbols"
)

// target is what an attribute list is attached to.
type target uint8

const (
	targetFn target = iota
	targetType
	targetOther
)

var knownLints = map[string]bool{
	"deprecated": true,
	"dead_code":  true,
}

// repeatable attributes may appear more than once on one item.
var repeatable = map[string]bool{"allow": true, "cfg": true, "doc": true}

func (c *checker) checkAttrs() {
	for _, f := range c.prog.Funcs {
		b := c.table.Builder(f.Decl)
		c.checkList(b, f.Attrs, targetFn, f, f.Decl)
	}
	seen := make(map[[2]uint32]bool)
	for _, d := range c.table.Decls.All() {
		var tgt target
		switch d.Kind {
		case symbols.DeclStruct, symbols.DeclEnum:
			tgt = targetType
		case symbols.DeclTrait, symbols.DeclImpl, symbols.DeclAbi, symbols.DeclConst,
			symbols.DeclStorageField, symbols.DeclConfigurable, symbols.DeclAssocType:
			tgt = targetOther
		default:
			continue
		}
		if !d.Item.IsValid() {
			continue
		}
		key := [2]uint32{uint32(d.Module), uint32(d.Item)}
		if seen[key] {
			continue
		}
		seen[key] = true
		b := c.table.Builder(d.ID)
		item := b.Items.Get(d.Item)
		if item == nil {
			continue
		}
		c.checkList(b, item.Attrs, tgt, nil, d.ID)
	}
}

func (c *checker) checkList(b *ast.Builder, attrs []ast.Attr, tgt target, f *hir.Func, owner symbols.DeclID) {
	count := make(map[string]int, len(attrs))
	for _, a := range attrs {
		name := b.Name(a.Name)
		count[name]++
		if count[name] == 2 && !repeatable[name] {
			diag.ReportError(c.reporter, diag.AtrDuplicate, a.Span, fmt.Sprintf("attribute `%s` is given more than once", name)).Emit()
		}
		switch name {
		case "storage", "payable", "test", "inline":
			if tgt != targetFn {
				diag.ReportError(c.reporter, diag.AtrMisplaced, a.Span, fmt.Sprintf("attribute `%s` is only allowed on functions", name)).Emit()
				continue
			}
			c.checkFnAttr(b, a, name, f)
		case "deprecated":
			if tgt == targetOther && c.table.Decl(owner).Kind == symbols.DeclImpl {
				diag.ReportError(c.reporter, diag.AtrMisplaced, a.Span, "attribute `deprecated` is not allowed on impl blocks").Emit()
				continue
			}
			note, ok := c.deprecatedNote(b, a)
			if ok {
				c.deprecated[owner] = note
			}
		case "allow":
			c.checkAllow(b, a)
		case "cfg", "doc":
			// cfg is evaluated by the parser, doc is free text
		default:
			diag.ReportWarning(c.reporter, diag.AtrUnknown, a.Span, fmt.Sprintf("unknown attribute `%s`", name)).Emit()
		}
	}
}

func (c *checker) malformed(a ast.Attr, format string, args ...any) {
	diag.ReportError(c.reporter, diag.AtrMalformed, a.Span, fmt.Sprintf(format, args...)).Emit()
}

func (c *checker) checkFnAttr(b *ast.Builder, a ast.Attr, name string, f *hir.Func) {
	switch name {
	case "storage":
		if !a.HasArgs || len(a.Args) == 0 {
			c.malformed(a, "`storage` expects `read`, `write` or both")
			return
		}
		for _, arg := range a.Args {
			key := b.Name(arg.Key)
			if (key != "read" && key != "write") || arg.ValueKind != ast.AttrValueNone {
				c.malformed(a, "unexpected `%s` in `storage`: expected `read` or `write`", key)
			}
		}
	case "payable":
		if a.HasArgs || a.ValueKind != ast.AttrValueNone {
			c.malformed(a, "`payable` takes no arguments")
		}
		if !c.abiExposed(f) {
			diag.ReportError(c.reporter, diag.AtrPayableNotAbi, a.Span,
				fmt.Sprintf("`#[payable]` is only allowed on abi methods, `%s` is not one", f.Name)).Emit()
		}
	case "test":
		if len(f.Params) > 0 || len(f.Generics) > 0 || f.Owner.IsValid() {
			diag.ReportError(c.reporter, diag.AtrTestSignature, f.Span,
				fmt.Sprintf("test function `%s` must be a free function without parameters or type parameters", f.Name)).Emit()
		}
		for _, arg := range a.Args {
			if b.Name(arg.Key) != "should_revert" {
				c.malformed(a, "unexpected `%s` in `test`: expected `should_revert`", b.Name(arg.Key))
				continue
			}
			if arg.ValueKind != ast.AttrValueNone && !isIntCode(arg.Value) {
				c.malformed(a, "`should_revert` expects an integer revert code, found %q", arg.Value)
			}
		}
	case "inline":
		if len(a.Args) != 1 || a.Args[0].ValueKind != ast.AttrValueNone {
			c.malformed(a, "`inline` expects exactly one of `never` or `always`")
			return
		}
		if key := b.Name(a.Args[0].Key); key != "never" && key != "always" {
			c.malformed(a, "unexpected `%s` in `inline`: expected `never` or `always`", key)
		}
	}
}

func isIntCode(s string) bool {
	s = strings.ReplaceAll(s, "_", "")
	if s == "" {
		return false
	}
	_, ok := new(big.Int).SetString(s, 0)
	return ok
}

func (c *checker) abiExposed(f *hir.Func) bool {
	if !f.Owner.IsValid() {
		return false
	}
	if c.prog.Abi(f.Owner) != nil {
		return true
	}
	im := c.prog.Impl(f.Owner)
	return im != nil && c.prog.Abi(im.Trait) != nil
}

func (c *checker) deprecatedNote(b *ast.Builder, a ast.Attr) (string, bool) {
	if !a.HasArgs {
		if a.ValueKind == ast.AttrValueString {
			return a.Value, true
		}
		return "", true
	}
	note := ""
	for _, arg := range a.Args {
		if b.Name(arg.Key) != "note" || arg.ValueKind != ast.AttrValueString {
			c.malformed(a, "`deprecated` accepts only `note = \"...\"`")
			return "", false
		}
		note = arg.Value
	}
	return note, true
}

func (c *checker) checkAllow(b *ast.Builder, a ast.Attr) {
	if len(a.Args) == 0 {
		c.malformed(a, "`allow` expects a list of lint names")
		return
	}
	for _, arg := range a.Args {
		if name := b.Name(arg.Key); !knownLints[name] {
			diag.ReportWarning(c.reporter, diag.AtrUnknown, arg.Span, fmt.Sprintf("unknown lint `%s`", name)).Emit()
		}
	}
}

func allows(b *ast.Builder, attrs []ast.Attr, lint string) bool {
	for _, a := range attrs {
		if b.Name(a.Name) != "allow" {
			continue
		}
		for _, arg := range a.Args {
			if b.Name(arg.Key) == lint {
				return true
			}
		}
	}
	return false
}

// checkDeprecatedUses warns at calls to deprecated functions and uses of
// deprecated types and constants. Deprecated callers and
// `#[allow(deprecated)]` silence the warning.
func (c *checker) checkDeprecatedUses() {
	if len(c.deprecated) == 0 {
		return
	}
	for _, f := range c.prog.Funcs {
		if f.Body == nil {
			continue
		}
		if _, self := c.deprecated[f.Decl]; self || allows(c.table.Builder(f.Decl), f.Attrs, "deprecated") {
			continue
		}
		hir.Walk(f.Body, func(e *hir.Expr) bool {
			var used symbols.DeclID
			switch d := e.Data.(type) {
			case hir.CallData:
				used = d.Fn
			case hir.StructLitData:
				used = d.Decl
			case hir.ConstData:
				used = d.Decl
			case hir.VariantData:
				used = d.Enum
			default:
				return true
			}
			if note, ok := c.deprecated[used]; ok {
				d := c.table.Decl(used)
				msg := fmt.Sprintf("use of deprecated %s `%s`", d.Kind, d.Name)
				if note != "" {
					msg += ": " + note
				}
				diag.ReportWarning(c.reporter, diag.AtrDeprecatedUsage, e.Span, msg).
					WithNote(d.Span, "deprecated here").
					Emit()
			}
			return true
		})
	}
}
