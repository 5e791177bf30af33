package symbols

import (
	"slices"

	"swell/internal/project"
)

// within reports whether module from is owner or one of its descendants.
func (t *Table) within(from, owner project.ModuleID) bool {
	for cur := from; cur.IsValid(); {
		if cur == owner {
			return true
		}
		cur = t.Graph.Module(cur).Parent
	}
	return false
}

// Accessible reports whether decl can be named from module from.
// Private items are visible in their module and its submodules.
func (t *Table) Accessible(id DeclID, from project.ModuleID) bool {
	d := t.Decl(id)
	if d == nil {
		return false
	}
	return d.Public || t.within(from, d.Module)
}

// memberResult describes a name lookup inside a module or enum.
type memberResult struct {
	decl       DeclID
	candidates []DeclID // >1 means an ambiguous glob
	imp        *Import
	private    DeclID // found but not accessible
}

func (res memberResult) found() bool { return res.decl.IsValid() }

// lookupMember searches mod for name as seen from module from: local
// declarations, then item imports, then globs.
func (t *Table) lookupMember(mod project.ModuleID, name string, from project.ModuleID) memberResult {
	sc := t.Scope(mod)
	inside := t.within(from, mod)
	if id, ok := sc.Locals[name]; ok {
		if t.Accessible(id, from) {
			return memberResult{decl: id}
		}
		return memberResult{private: id}
	}
	if imp, ok := sc.Imports[name]; ok {
		if imp.Public || inside {
			return memberResult{decl: imp.Decl, imp: imp}
		}
		return memberResult{private: imp.Decl}
	}
	cands := t.globCandidates(sc, name, from, inside, map[project.ModuleID]bool{mod: true})
	switch len(cands) {
	case 0:
		return memberResult{}
	case 1:
		return memberResult{decl: cands[0]}
	}
	return memberResult{decl: cands[0], candidates: cands}
}

func (t *Table) globCandidates(sc *ModuleScope, name string, from project.ModuleID, inside bool, visited map[project.ModuleID]bool) []DeclID {
	var out []DeclID
	for _, g := range sc.Globs {
		if !g.Public && !inside {
			continue
		}
		if g.Enum.IsValid() {
			if v, ok := t.Decls.Member(g.Enum, name); ok && !slices.Contains(out, v) {
				out = append(out, v)
			}
			continue
		}
		if visited[g.Module] {
			continue
		}
		visited[g.Module] = true
		target := t.Scope(g.Module)
		if id, ok := target.Locals[name]; ok {
			if t.Accessible(id, from) && !slices.Contains(out, id) {
				out = append(out, id)
			}
			continue
		}
		if imp, ok := target.Imports[name]; ok {
			if (imp.Public || t.within(from, g.Module)) && !slices.Contains(out, imp.Decl) {
				imp.used.Store(true)
				out = append(out, imp.Decl)
			}
			continue
		}
		for _, id := range t.globCandidates(target, name, from, t.within(from, g.Module), visited) {
			if !slices.Contains(out, id) {
				out = append(out, id)
			}
		}
	}
	slices.Sort(out)
	return out
}

// lookupEnumMember finds a variant of an enum.
func (t *Table) lookupEnumMember(enum DeclID, name string) memberResult {
	if id, ok := t.Decls.Member(enum, name); ok && t.Decl(id).Kind == DeclVariant {
		return memberResult{decl: id}
	}
	return memberResult{}
}
