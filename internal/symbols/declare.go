package symbols

import (
	"fmt"

	"swell/internal/ast"
	"swell/internal/diag"
	"swell/internal/project"
	"swell/internal/source"
)

// draft is a declaration collected before ids are assigned.
type draft struct {
	decl     Decl
	item     ast.ItemID // NoItemID для полей и вариантов
	children []draft
	storage  bool
}

// collectDecls drafts every declaration of one module. It only reads the CST
// and runs in parallel across modules.
func collectDecls(g *project.Graph, m *project.Module) []draft {
	b := m.Builder
	var out []draft
	for _, id := range m.FileNode().Items {
		item := b.Items.Get(id)
		switch item.Kind {
		case ast.ItemMod:
			mod, _ := b.Items.Mod(id)
			name := b.Name(mod.Name)
			child, ok := g.LookupSegments(append(append([]string(nil), m.Path...), name))
			if !ok {
				continue // об отсутствующем файле уже сообщил BuildGraph
			}
			out = append(out, draft{item: id, decl: Decl{
				Kind: DeclModule, Name: name, Module: m.ID, Item: id,
				Span: mod.NameSpan, Public: item.Public, Target: child.ID,
			}})
		case ast.ItemStorage, ast.ItemConfigurable:
			blk, _ := b.Items.SlotBlock(id)
			kind := DeclConfigurable
			if item.Kind == ast.ItemStorage {
				kind = DeclStorageField
			}
			for i, f := range blk.Fields {
				out = append(out, draft{storage: kind == DeclStorageField, decl: Decl{
					Kind: kind, Name: b.Name(f.Name), Module: m.ID, Item: id,
					Index: i, Span: f.Span, Public: kind == DeclConfigurable,
				}})
			}
		default:
			if d, ok := draftItem(b, m.ID, id); ok {
				out = append(out, d)
			}
		}
	}
	return out
}

func draftItem(b *ast.Builder, mod project.ModuleID, id ast.ItemID) (draft, bool) {
	item := b.Items.Get(id)
	d := draft{item: id, decl: Decl{Module: mod, Item: id, Public: item.Public, Index: -1}}
	switch item.Kind {
	case ast.ItemFn:
		fn, _ := b.Items.Fn(id)
		d.decl.Kind, d.decl.Name, d.decl.Span = DeclFn, b.Name(fn.Name), fn.NameSpan
		bodyItems(b, fn.Body, func(inner ast.ItemID) {
			if local, ok := draftItem(b, mod, inner); ok && local.decl.Kind == DeclConst {
				local.decl.Local = true
				d.children = append(d.children, local)
			}
		})
	case ast.ItemStruct:
		st, _ := b.Items.Struct(id)
		d.decl.Kind, d.decl.Name, d.decl.Span = DeclStruct, b.Name(st.Name), st.NameSpan
		for i, f := range st.Fields {
			d.children = append(d.children, draft{decl: Decl{
				Kind: DeclField, Name: b.Name(f.Name), Module: mod, Item: id,
				Index: i, Span: f.Span, Public: f.Public,
			}})
		}
	case ast.ItemEnum:
		en, _ := b.Items.Enum(id)
		d.decl.Kind, d.decl.Name, d.decl.Span = DeclEnum, b.Name(en.Name), en.NameSpan
		for i, v := range en.Variants {
			d.children = append(d.children, draft{decl: Decl{
				Kind: DeclVariant, Name: b.Name(v.Name), Module: mod, Item: id,
				Index: i, Span: v.Span, Public: item.Public,
			}})
		}
	case ast.ItemTrait:
		tr, _ := b.Items.Trait(id)
		d.decl.Kind, d.decl.Name, d.decl.Span = DeclTrait, b.Name(tr.Name), tr.NameSpan
		d.children = draftMembers(b, mod, tr.Members, item.Public)
	case ast.ItemAbi:
		abi, _ := b.Items.Abi(id)
		d.decl.Kind, d.decl.Name, d.decl.Span = DeclAbi, b.Name(abi.Name), abi.NameSpan
		d.children = draftMembers(b, mod, abi.Members, item.Public)
	case ast.ItemImplTrait, ast.ItemImplSelf:
		impl, _ := b.Items.Impl(id)
		d.decl.Kind, d.decl.Name, d.decl.Span = DeclImpl, implSelfName(b, impl), item.Span
		d.children = draftMembers(b, mod, impl.Members, true)
	case ast.ItemConst:
		c, _ := b.Items.Const(id)
		d.decl.Kind, d.decl.Name, d.decl.Span = DeclConst, b.Name(c.Name), c.NameSpan
	case ast.ItemAssocType:
		at, _ := b.Items.AssocType(id)
		d.decl.Kind, d.decl.Name, d.decl.Span = DeclAssocType, b.Name(at.Name), at.NameSpan
	default:
		return draft{}, false
	}
	return d, true
}

func draftMembers(b *ast.Builder, mod project.ModuleID, members []ast.ItemID, public bool) []draft {
	out := make([]draft, 0, len(members))
	for _, id := range members {
		if d, ok := draftItem(b, mod, id); ok {
			// видимость членов наследуется от контейнера; pub внутри impl не меняет её
			d.decl.Public = d.decl.Public || public
			out = append(out, d)
		}
	}
	return out
}

func implSelfName(b *ast.Builder, impl *ast.ImplItem) string {
	if tp, ok := b.Types.Path(impl.Self); ok {
		return b.PathString(&tp.Path)
	}
	if b.Types.Get(impl.Self).Kind == ast.TypeTuple {
		return "()"
	}
	return "impl"
}

// registerDecls assigns ids in module order and fills module scopes.
func (t *Table) registerDecls(r diag.Reporter, m *project.Module, drafts []draft) {
	sc := t.Scope(m.ID)
	sc.Decl = t.ModuleDecl(m.ID)
	rootContract := t.Graph.Module(t.Graph.Root).Program == ast.ProgramContract
	for i := range drafts {
		d := &drafts[i]
		if d.storage && (m.ID != t.Graph.Root || !rootContract) {
			diag.ReportError(r, diag.ResStorageNotAllowed, d.decl.Span, "storage can only be declared in the root module of a contract").Emit()
			continue
		}
		id := t.addDraft(d, sc.Decl)
		decl := t.Decl(id)
		switch decl.Kind {
		case DeclStorageField:
			t.Storage = append(t.Storage, id)
			continue
		case DeclConfigurable:
			t.Configurables = append(t.Configurables, id)
		case DeclImpl:
			t.Impls = append(t.Impls, id)
			continue
		case DeclModule:
			t.moduleDecl[decl.Target-1] = id
		}
		if prev, dup := sc.Locals[decl.Name]; dup {
			reportDuplicate(r, t.Decl(prev), decl)
			continue
		}
		sc.Locals[decl.Name] = id
	}
}

func (t *Table) addDraft(d *draft, parent DeclID) DeclID {
	d.decl.Parent = parent
	id := t.Decls.add(d.decl)
	if d.item.IsValid() {
		t.itemDecls[d.decl.Module-1][d.item] = id
	}
	seen := make(map[string]DeclID, len(d.children))
	members := make([]DeclID, 0, len(d.children))
	for i := range d.children {
		child := &d.children[i]
		cid := t.addDraft(child, id)
		if child.decl.Local {
			// локальные константы проверяются лексически
			continue
		}
		if prev, dup := seen[child.decl.Name]; dup {
			t.pendingDup = append(t.pendingDup, [2]DeclID{prev, cid})
			continue
		}
		seen[child.decl.Name] = cid
		members = append(members, cid)
	}
	t.Decls.Get(id).Members = members
	return id
}

func reportDuplicate(r diag.Reporter, prev, decl *Decl) {
	code := diag.ResDuplicateDecl
	msg := fmt.Sprintf("%s %q is defined multiple times", decl.Kind, decl.Name)
	if prev.Kind == DeclConst && decl.Kind == DeclConst {
		code = diag.ResConstRedeclared
		msg = fmt.Sprintf("constant %q is redeclared in the same scope", decl.Name)
	}
	diag.ReportError(r, code, decl.Span, msg).
		WithNote(prev.Span, "previous definition here").
		Emit()
}

// reportMemberDuplicates flushes duplicates found among nested decls.
func (t *Table) reportMemberDuplicates(r diag.Reporter) {
	for _, pair := range t.pendingDup {
		reportDuplicate(r, t.Decl(pair[0]), t.Decl(pair[1]))
	}
	t.pendingDup = nil
}

func (t *Table) addModuleDecl(m *project.Module) {
	if m.Parent.IsValid() {
		return
	}
	id := t.Decls.add(Decl{Kind: DeclModule, Name: "crate", Module: m.ID, Span: source.Span{File: m.File}, Public: true, Target: m.ID, Index: -1})
	t.moduleDecl[m.ID-1] = id
}
