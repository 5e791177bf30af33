package symbols

import (
	"fmt"
	"strings"

	"swell/internal/diag"
	"swell/internal/project"
	"swell/internal/source"
)

// resolveImports binds every `use` of module m. Providers of m were handled
// in earlier batches, so their scopes are complete.
func (t *Table) resolveImports(r diag.Reporter, m *project.Module) {
	sc := t.Scope(m.ID)
	b := m.Builder
	for _, id := range m.FileNode().Items {
		use, ok := b.Items.Use(id)
		if !ok {
			continue
		}
		public := b.Items.Get(id).Public
		for _, leaf := range project.FlattenUse(b, use) {
			t.bindUse(r, sc, m, leaf, public)
		}
	}
}

func (t *Table) bindUse(r diag.Reporter, sc *ModuleScope, m *project.Module, leaf project.UseImport, public bool) {
	abs, err := project.AbsolutePath(m.Path, leaf.Segs)
	if err != nil {
		diag.ReportError(r, diag.ResUnknownPath, leaf.Span, fmt.Sprintf("invalid use path: %v", err)).Emit()
		return
	}
	if leaf.Glob {
		mod, enum, ok := t.useContainer(r, m.ID, abs, leaf)
		if !ok {
			return
		}
		sc.Globs = append(sc.Globs, Glob{Module: mod, Enum: enum, Public: public, Span: leaf.Span})
		return
	}
	if len(abs) == 0 {
		diag.ReportError(r, diag.ResUnknownPath, leaf.Span, "cannot import the package root").Emit()
		return
	}
	mod, enum, ok := t.useContainer(r, m.ID, abs[:len(abs)-1], leaf)
	if !ok {
		return
	}
	last := abs[len(abs)-1]
	var res memberResult
	if enum.IsValid() {
		res = t.lookupEnumMember(enum, last)
	} else {
		res = t.lookupMember(mod, last, m.ID)
	}
	if !t.checkFound(r, res, last, strings.Join(abs, "::"), leaf) {
		return
	}
	if res.imp != nil {
		res.imp.used.Store(true)
	}
	if _, local := sc.Locals[leaf.Name]; local {
		// локальное объявление сильнее импорта
		return
	}
	if prev, ok := sc.Imports[leaf.Name]; ok {
		if prev.Decl != res.decl {
			diag.ReportError(r, diag.ResImportClash, leaf.NameSpan, fmt.Sprintf("name clash on use: %q is already imported", leaf.Name)).
				WithNote(prev.Span, "previous import here").
				Emit()
		}
		return
	}
	sc.Imports[leaf.Name] = &Import{Decl: res.decl, Public: public, Span: leaf.Span}
	sc.order = append(sc.order, leaf.Name)
}

// useContainer walks an absolute prefix down to a module or an enum.
func (t *Table) useContainer(r diag.Reporter, from project.ModuleID, abs []string, leaf project.UseImport) (project.ModuleID, DeclID, bool) {
	mod := t.Graph.Root
	for i, seg := range abs {
		res := t.lookupMember(mod, seg, from)
		if !t.checkFound(r, res, seg, strings.Join(abs[:i+1], "::"), leaf) {
			return project.NoModuleID, NoDeclID, false
		}
		d := t.Decl(res.decl)
		switch {
		case d.Kind == DeclModule:
			mod = d.Target
		case d.Kind == DeclEnum && i == len(abs)-1:
			return mod, d.ID, true
		default:
			diag.ReportError(r, diag.ResNotAModule, leaf.Span, fmt.Sprintf("%q is a %s, not a module", strings.Join(abs[:i+1], "::"), d.Kind)).Emit()
			return project.NoModuleID, NoDeclID, false
		}
	}
	return mod, NoDeclID, true
}

func (t *Table) checkFound(r diag.Reporter, res memberResult, name, full string, leaf project.UseImport) bool {
	switch {
	case res.private.IsValid():
		d := t.Decl(res.private)
		diag.ReportError(r, diag.ResPrivateItem, leaf.Span, fmt.Sprintf("%s %q is private", d.Kind, name)).
			WithNote(d.Span, "declared here").
			Emit()
		return false
	case !res.found():
		diag.ReportError(r, diag.ResUnknownPath, leaf.Span, fmt.Sprintf("unresolved import %q", full)).Emit()
		return false
	case len(res.candidates) > 1:
		t.reportAmbiguous(r, leaf.Span, name, res.candidates)
		return false
	}
	return true
}

func (t *Table) reportAmbiguous(r diag.Reporter, span source.Span, name string, cands []DeclID) {
	b := diag.ReportError(r, diag.ResAmbiguousGlob, span, fmt.Sprintf("%q is ambiguous: it is imported by more than one glob", name))
	for _, c := range cands {
		b = b.WithNote(t.Decl(c).Span, fmt.Sprintf("candidate %s", t.QualifiedName(c)))
	}
	b.Emit()
}

// reportUnusedImports warns about private item imports nothing referred to.
func (t *Table) reportUnusedImports(r diag.Reporter) {
	for _, sc := range t.scopes {
		for _, name := range sc.order {
			imp := sc.Imports[name]
			if imp.Public || imp.used.Load() {
				continue
			}
			diag.ReportWarning(r, diag.ResUnusedImport, imp.Span, fmt.Sprintf("unused import %q", name)).Emit()
		}
	}
}
