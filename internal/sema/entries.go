package sema

import (
	"swell/internal/ast"
	"swell/internal/diag"
	"swell/internal/hir"
)

// collectEntries marks externally reachable functions: ABI methods of a
// contract, `main` of scripts and predicates and `#[test]` functions.
func (tc *typeChecker) collectEntries() {
	prog := tc.prog
	root := tc.table.ModuleDecl(tc.g.Root)
	var main *hir.Func
	for _, f := range prog.Funcs {
		d := tc.decl(f.Decl)
		switch {
		case f.Flags.HasFlag(hir.FuncTest):
			f.Entry = hir.EntryTest
		case prog.Kind == ast.ProgramContract && d.Parent.IsValid():
			if im := prog.Impl(d.Parent); im != nil && prog.Abi(im.Trait) != nil {
				f.Entry = hir.EntryAbi
			}
		case f.Name == "main" && d.Parent == root:
			main = f
		}
		if f.Entry != hir.EntryNone {
			prog.Entries = append(prog.Entries, f.Decl)
		}
	}

	switch prog.Kind {
	case ast.ProgramScript, ast.ProgramPredicate:
		if main == nil {
			tc.report(diag.TypMissingMain, tc.g.Module(tc.g.Root).FileNode().KindSpan,
				"`main` function not found in %s", prog.Kind)
			break
		}
		if main.IsGeneric() {
			tc.report(diag.TypMismatch, main.Span, "`main` cannot have type parameters")
		}
		if prog.Kind == ast.ProgramPredicate && main.Ret != tc.builtins.Bool && !tc.types.HasErrors(main.Ret) {
			tc.report(diag.TypMismatch, main.Span, "predicate `main` must return `bool`, found `%s`", tc.typeLabel(main.Ret))
		}
		main.Entry = hir.EntryMain
		prog.Entries = append(prog.Entries, main.Decl)
	}
	prog.SortEntries()
}
