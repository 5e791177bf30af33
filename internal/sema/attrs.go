package sema

import (
	"swell/internal/ast"
	"swell/internal/hir"
)

// applyAttrs records the function attributes the later passes rely on.
// Reading is lenient: malformed or misplaced attributes are reported by the
// attribute checker, here they are skipped.
func (tc *typeChecker) applyAttrs(f *hir.Func, b *ast.Builder) {
	for _, a := range f.Attrs {
		switch b.Name(a.Name) {
		case "storage":
			for _, arg := range a.Args {
				switch b.Name(arg.Key) {
				case "read":
					f.Declared |= hir.EffectRead
				case "write":
					f.Declared |= hir.EffectWrite
				}
			}
		case "payable":
			f.Flags |= hir.FuncPayable
		case "test":
			f.Flags |= hir.FuncTest
			for _, arg := range a.Args {
				if b.Name(arg.Key) == "should_revert" {
					f.Flags |= hir.FuncShouldRevert
					f.Revert = arg.Value
				}
			}
		case "inline":
			for _, arg := range a.Args {
				switch b.Name(arg.Key) {
				case "never":
					f.Inline = hir.InlineNever
				case "always":
					f.Inline = hir.InlineAlways
				}
			}
		case "deprecated":
			f.Flags |= hir.FuncDeprecated
		}
	}
}
