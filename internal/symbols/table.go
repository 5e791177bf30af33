package symbols

import (
	"strings"

	"swell/internal/ast"
	"swell/internal/project"
)

// Table is the resolved symbol view of a whole module graph.
type Table struct {
	Graph *project.Graph
	Decls *Decls
	// Storage and Configurables list slot decls in declaration order.
	Storage       []DeclID
	Configurables []DeclID
	// Impls lists every impl block in module order.
	Impls []DeclID

	scopes     []*ModuleScope
	res        []*Resolution
	itemDecls  []map[ast.ItemID]DeclID
	moduleDecl []DeclID
	caps       map[DeclID][]DeclID
	pendingDup [][2]DeclID
}

func newTable(g *project.Graph) *Table {
	n := g.Len()
	t := &Table{
		Graph:      g,
		Decls:      newDecls(),
		scopes:     make([]*ModuleScope, n),
		res:        make([]*Resolution, n),
		itemDecls:  make([]map[ast.ItemID]DeclID, n),
		moduleDecl: make([]DeclID, n),
		caps:       make(map[DeclID][]DeclID),
	}
	for _, m := range g.Modules() {
		i := int(m.ID) - 1
		t.scopes[i] = newModuleScope(m.ID)
		t.res[i] = newResolution(m.ID)
		t.itemDecls[i] = make(map[ast.ItemID]DeclID)
	}
	return t
}

// Decl returns a declaration by id or nil.
func (t *Table) Decl(id DeclID) *Decl { return t.Decls.Get(id) }

// Scope returns the top-level scope of a module.
func (t *Table) Scope(m project.ModuleID) *ModuleScope {
	if !m.IsValid() || int(m) > len(t.scopes) {
		return nil
	}
	return t.scopes[m-1]
}

// Resolution returns body bindings of a module.
func (t *Table) Resolution(m project.ModuleID) *Resolution {
	if !m.IsValid() || int(m) > len(t.res) {
		return nil
	}
	return t.res[m-1]
}

// ItemDecl maps a CST item of module m to its declaration.
func (t *Table) ItemDecl(m project.ModuleID, item ast.ItemID) (DeclID, bool) {
	if !m.IsValid() || int(m) > len(t.itemDecls) {
		return NoDeclID, false
	}
	id, ok := t.itemDecls[m-1][item]
	return id, ok
}

// ModuleDecl returns the DeclModule standing for m.
func (t *Table) ModuleDecl(m project.ModuleID) DeclID {
	if !m.IsValid() || int(m) > len(t.moduleDecl) {
		return NoDeclID
	}
	return t.moduleDecl[m-1]
}

// Builder returns the CST of the module that owns a declaration.
func (t *Table) Builder(id DeclID) *ast.Builder {
	d := t.Decl(id)
	if d == nil {
		return nil
	}
	return t.Graph.Module(d.Module).Builder
}

// QualifiedName renders `a::b::Name` for messages and symbol names. Members
// are qualified by their parent (`S::new`, `Color::Red`).
func (t *Table) QualifiedName(id DeclID) string {
	d := t.Decl(id)
	if d == nil {
		return "?"
	}
	if d.Kind == DeclModule {
		return t.Graph.Module(d.Target).Display()
	}
	var parts []string
	for cur := d; cur != nil; cur = t.Decl(cur.Parent) {
		if cur.Kind == DeclImpl || cur.Kind == DeclModule {
			break
		}
		parts = append(parts, cur.Name)
	}
	if d.Parent.IsValid() && t.Decl(d.Parent).Kind == DeclImpl {
		parts = append(parts, t.Decl(d.Parent).Name)
	}
	if m := t.Graph.Module(d.Module); m != nil {
		for i := len(m.Path) - 1; i >= 0; i-- {
			parts = append(parts, m.Path[i])
		}
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "::")
}

// Capabilities returns the flattened supertrait (or super-ABI) closure of a
// trait or ABI, the decl itself first. The set is computed once during Resolve.
func (t *Table) Capabilities(id DeclID) []DeclID {
	return t.caps[id]
}

// Lookup finds a top-level declaration by `a::b::Name` path from the root,
// following imports. Used by tools and tests.
func (t *Table) Lookup(path string) (DeclID, bool) {
	segs := strings.Split(path, "::")
	cur := t.Graph.Root
	for i, seg := range segs {
		sc := t.Scope(cur)
		id, ok := sc.Locals[seg]
		if !ok {
			if imp, found := sc.Imports[seg]; found {
				id, ok = imp.Decl, true
			}
		}
		if !ok {
			return NoDeclID, false
		}
		d := t.Decl(id)
		if i == len(segs)-1 {
			return id, true
		}
		switch d.Kind {
		case DeclModule:
			cur = d.Target
		case DeclEnum, DeclStruct, DeclTrait, DeclAbi:
			if i != len(segs)-2 {
				return NoDeclID, false
			}
			return t.Decls.Member(id, segs[i+1])
		default:
			return NoDeclID, false
		}
	}
	return NoDeclID, false
}
