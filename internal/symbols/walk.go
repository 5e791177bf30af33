package symbols

import (
	"fmt"

	"swell/internal/ast"
	"swell/internal/diag"
	"swell/internal/project"
	"swell/internal/source"
)

// bodyWalker resolves every name occurrence of one module.
type bodyWalker struct {
	t      *Table
	r      diag.Reporter
	m      *project.Module
	b      *ast.Builder
	res    *Resolution
	frames []*frame
	self   DeclID // trait, impl или abi для `Self`
	fn     DeclID
	// contract is true when the package root is a contract.
	contract bool
}

func (w *bodyWalker) push(kind frameKind) *frame {
	f := newFrame(kind)
	w.frames = append(w.frames, f)
	return f
}

func (w *bodyWalker) pop() { w.frames = w.frames[:len(w.frames)-1] }

func (w *bodyWalker) top() *frame { return w.frames[len(w.frames)-1] }

func (w *bodyWalker) module() {
	for _, id := range w.m.FileNode().Items {
		w.item(id)
	}
}

func (w *bodyWalker) decl(item ast.ItemID) DeclID {
	id, _ := w.t.ItemDecl(w.m.ID, item)
	return id
}

func (w *bodyWalker) item(id ast.ItemID) {
	b := w.b
	switch b.Items.Get(id).Kind {
	case ast.ItemFn:
		fn, _ := b.Items.Fn(id)
		w.fnItem(w.decl(id), fn)
	case ast.ItemStruct:
		st, _ := b.Items.Struct(id)
		w.generics(w.decl(id), st.Generics)
		for _, f := range st.Fields {
			w.typ(f.Type)
		}
		w.pop()
	case ast.ItemEnum:
		en, _ := b.Items.Enum(id)
		w.generics(w.decl(id), en.Generics)
		for _, v := range en.Variants {
			w.typ(v.Type)
		}
		w.pop()
	case ast.ItemTrait:
		tr, _ := b.Items.Trait(id)
		d := w.decl(id)
		saved := w.self
		w.self = d
		w.generics(d, tr.Generics)
		w.supers(d, tr.Supers)
		for _, m := range tr.Members {
			w.item(m)
		}
		w.pop()
		w.self = saved
	case ast.ItemAbi:
		abi, _ := b.Items.Abi(id)
		d := w.decl(id)
		saved := w.self
		w.self = d
		w.supers(d, abi.Supers)
		for _, m := range abi.Members {
			w.item(m)
		}
		w.self = saved
	case ast.ItemImplTrait, ast.ItemImplSelf:
		impl, _ := b.Items.Impl(id)
		d := w.decl(id)
		w.generics(d, impl.Generics)
		w.typ(impl.Self)
		if impl.Trait != nil {
			w.resolvePath(impl.Trait, nsTrait)
		}
		w.where(impl.Where)
		saved := w.self
		w.self = d
		for _, m := range impl.Members {
			w.item(m)
		}
		w.self = saved
		w.pop()
	case ast.ItemStorage, ast.ItemConfigurable:
		blk, _ := b.Items.SlotBlock(id)
		for _, f := range blk.Fields {
			w.typ(f.Type)
			w.expr(f.Init)
		}
	case ast.ItemConst:
		c, _ := b.Items.Const(id)
		w.typ(c.Type)
		w.expr(c.Value)
	case ast.ItemAssocType:
		at, _ := b.Items.AssocType(id)
		w.typ(at.Value)
	}
}

// generics pushes a frame with the generic parameters of owner and resolves
// their bounds. The caller pops it.
func (w *bodyWalker) generics(owner DeclID, params []ast.GenericParam) {
	f := w.push(frameGenerics)
	for i, gp := range params {
		f.names[w.b.Name(gp.Name)] = frameEntry{binding: Binding{Kind: BindGeneric, Decl: owner, Index: i}}
	}
	for _, gp := range params {
		for i := range gp.Bounds {
			w.resolvePath(&gp.Bounds[i], nsTrait)
		}
	}
}

func (w *bodyWalker) where(preds []ast.WherePred) {
	for _, pred := range preds {
		w.typ(pred.Type)
		for i := range pred.Bounds {
			w.resolvePath(&pred.Bounds[i], nsTrait)
		}
	}
}

func (w *bodyWalker) supers(owner DeclID, supers []ast.Path) {
	d := w.t.Decl(owner)
	for i := range supers {
		bind, ok := w.resolvePath(&supers[i], nsTrait)
		if !ok {
			continue
		}
		target := w.t.Decl(bind.Decl)
		if target.Kind != d.Kind {
			diag.ReportError(w.r, diag.ResNotATrait, supers[i].Span, fmt.Sprintf("%s %q cannot extend %s %q", d.Kind, d.Name, target.Kind, target.Name)).Emit()
			continue
		}
		d.Supers = append(d.Supers, bind.Decl)
	}
}

func (w *bodyWalker) fnItem(d DeclID, fn *ast.FnItem) {
	savedFn := w.fn
	w.fn = d
	w.generics(d, fn.Generics)
	for _, p := range fn.Params {
		if p.Kind == ast.ParamSelf {
			if !w.self.IsValid() {
				diag.ReportError(w.r, diag.ResSelfOutsideImpl, p.Span, "`self` parameter is only allowed in impl, trait and abi methods").Emit()
			}
			continue
		}
		w.typ(p.Type)
	}
	w.typ(fn.Ret)
	w.where(fn.Where)
	params := w.push(frameFn)
	for _, p := range fn.Params {
		name := w.b.Name(p.Name)
		if p.Kind == ast.ParamSelf {
			name = "self"
		}
		id := w.res.newLocal(Local{Name: name, Span: p.Span, Mut: p.Mut || p.Ref, Fn: d})
		params.names[name] = frameEntry{binding: Binding{Kind: BindLocal, Local: id}}
	}
	w.expr(fn.Body)
	w.pop()
	w.pop()
	w.fn = savedFn
}

func (w *bodyWalker) typ(id ast.TypeID) {
	if !id.IsValid() {
		return
	}
	b := w.b
	switch b.Types.Get(id).Kind {
	case ast.TypePath:
		tp, _ := b.Types.Path(id)
		w.resolvePath(&tp.Path, nsType)
	case ast.TypeTuple:
		tt, _ := b.Types.Tuple(id)
		for _, e := range tt.Elems {
			w.typ(e)
		}
	case ast.TypeArray, ast.TypeStrArray:
		arr, _ := b.Types.Array(id)
		w.typ(arr.Elem)
		w.expr(arr.Len)
	case ast.TypeRef:
		ref, _ := b.Types.Ref(id)
		w.typ(ref.Inner)
	}
}

func (w *bodyWalker) expr(id ast.ExprID) {
	if !id.IsValid() {
		return
	}
	b := w.b
	e := b.Exprs.Get(id)
	switch e.Kind {
	case ast.ExprPath:
		p, _ := b.Exprs.Path(id)
		w.resolvePath(&p.Path, nsValue)
	case ast.ExprStruct:
		st, _ := b.Exprs.Struct(id)
		w.resolvePath(&st.Path, nsType)
		for _, f := range st.Fields {
			if f.Value.IsValid() {
				w.expr(f.Value)
				continue
			}
			name := b.Name(f.Name)
			seg := ast.PathSegment{Name: f.Name, Span: f.Span}
			if bind, ok := w.lookupName(name, seg, nsValue); ok {
				w.res.Paths[f.Span] = bind
			}
		}
	case ast.ExprMethodCall:
		mc, _ := b.Exprs.MethodCall(id)
		w.expr(mc.Recv)
		for _, g := range mc.Generics {
			w.typ(g)
		}
		for _, a := range mc.Args {
			w.expr(a)
		}
	case ast.ExprBlock:
		w.block(id)
	case ast.ExprIf:
		d, _ := b.Exprs.If(id)
		w.expr(d.Cond)
		w.expr(d.Then)
		w.expr(d.Else)
	case ast.ExprWhile:
		d, _ := b.Exprs.While(id)
		w.expr(d.Cond)
		w.expr(d.Body)
	case ast.ExprMatch:
		d, _ := b.Exprs.Match(id)
		w.expr(d.Scrutinee)
		for _, arm := range d.Arms {
			f := w.push(frameBlock)
			w.pat(arm.Pat, f, nil)
			w.expr(arm.Body)
			w.pop()
		}
	case ast.ExprStorage:
		if !w.contract {
			diag.ReportError(w.r, diag.ResStorageNotAllowed, e.Span, "storage is only available in contracts").Emit()
		}
	default:
		for _, child := range childExprs(b, id) {
			w.expr(child)
		}
	}
}

func (w *bodyWalker) block(id ast.ExprID) {
	b := w.b
	blk, _ := b.Exprs.Block(id)
	f := w.push(frameBlock)
	for _, st := range blk.Stmts {
		switch b.Stmts.Get(st).Kind {
		case ast.StmtLet:
			let, _ := b.Stmts.Let(st)
			w.expr(let.Value)
			w.typ(let.Type)
			w.pat(let.Pat, f, nil)
		case ast.StmtExpr:
			es, _ := b.Stmts.Expr(st)
			w.expr(es.Expr)
		case ast.StmtItem:
			it, _ := b.Stmts.Item(st)
			w.localConst(f, it.Item)
		}
	}
	w.expr(blk.Tail)
	w.pop()
}

func (w *bodyWalker) localConst(f *frame, item ast.ItemID) {
	c, ok := w.b.Items.Const(item)
	if !ok {
		return
	}
	w.typ(c.Type)
	w.expr(c.Value)
	d := w.decl(item)
	name := w.b.Name(c.Name)
	if prev, dup := f.names[name]; dup && prev.isConst {
		diag.ReportError(w.r, diag.ResConstRedeclared, c.NameSpan, fmt.Sprintf("constant %q is redeclared in the same scope", name)).
			WithNote(w.t.Decl(prev.binding.Decl).Span, "previous definition here").
			Emit()
		return
	}
	f.names[name] = frameEntry{binding: Binding{Kind: BindDecl, Decl: d}, isConst: true}
}

// pat resolves pattern paths and introduces bindings into f. alts carries the
// names bound by the first alternative of an or-pattern.
func (w *bodyWalker) pat(id ast.PatID, f *frame, alts map[string]LocalID) {
	if !id.IsValid() {
		return
	}
	b := w.b
	p := b.Pats.Get(id)
	switch p.Kind {
	case ast.PatBind:
		bind, _ := b.Pats.Bind(id)
		w.bind(f, alts, b.Name(bind.Name), p.Span, bind.Mut)
	case ast.PatTuple:
		list, _ := b.Pats.List(id)
		for _, e := range list.Elems {
			w.pat(e, f, alts)
		}
	case ast.PatOr:
		list, _ := b.Pats.List(id)
		first := alts
		if first == nil {
			first = make(map[string]LocalID)
		}
		for _, e := range list.Elems {
			w.pat(e, f, first)
		}
	case ast.PatPath, ast.PatVariant:
		pp, _ := b.Pats.Path(id)
		w.resolvePath(&pp.Path, nsPattern)
		for _, a := range pp.Args {
			w.pat(a, f, alts)
		}
	case ast.PatStruct:
		ps, _ := b.Pats.Struct(id)
		w.resolvePath(&ps.Path, nsType)
		for _, fp := range ps.Fields {
			if fp.Pat.IsValid() {
				w.pat(fp.Pat, f, alts)
				continue
			}
			w.bind(f, alts, b.Name(fp.Name), fp.Span, false)
		}
	case ast.PatLit:
		lit, _ := b.Pats.Lit(id)
		w.expr(lit.Lit)
	}
}

func (w *bodyWalker) bind(f *frame, alts map[string]LocalID, name string, span source.Span, mut bool) {
	if alts != nil {
		if id, ok := alts[name]; ok {
			w.res.Binders[span] = id
			return
		}
	}
	id := w.res.newLocal(Local{Name: name, Span: span, Mut: mut, Fn: w.fn})
	f.names[name] = frameEntry{binding: Binding{Kind: BindLocal, Local: id}}
	if alts != nil {
		alts[name] = id
	}
}
