package format

import (
	"fmt"
	"strings"

	"swell/internal/ast"
)

// Dump renders the file as span-free s-expressions, one top-level item per
// line. Two parses are structurally identical iff their dumps are equal.
func Dump(b *ast.Builder, fid ast.FileID) string {
	file := b.Files.Get(fid)
	if file == nil {
		return ""
	}
	d := dumper{b: b}
	d.printf("(file %s", file.Program)
	d.items(" ", file.Items)
	d.printf(")\n")
	if len(file.Gated) > 0 {
		d.printf("(gated")
		d.items(" ", file.Gated)
		d.printf(")\n")
	}
	return d.sb.String()
}

type dumper struct {
	b  *ast.Builder
	sb strings.Builder
}

func (d *dumper) printf(format string, args ...any) {
	fmt.Fprintf(&d.sb, format, args...)
}

func (d *dumper) items(sep string, ids []ast.ItemID) {
	for _, id := range ids {
		d.sb.WriteString("\n" + sep)
		d.item(id)
	}
}

func (d *dumper) item(id ast.ItemID) {
	b := d.b
	it := b.Items.Get(id)
	d.printf("(%s", it.Kind)
	if it.Public {
		d.printf(" pub")
	}
	for _, a := range it.Attrs {
		d.printf(" #%s", b.Name(a.Name))
		if a.HasArgs {
			d.attrArgs(a.Args)
		}
		if a.ValueKind != ast.AttrValueNone {
			d.printf("=%q", a.Value)
		}
	}
	switch it.Kind {
	case ast.ItemFn:
		fn, _ := b.Items.Fn(id)
		d.printf(" %s", b.Name(fn.Name))
		d.generics(fn.Generics)
		d.printf(" (params")
		for _, prm := range fn.Params {
			d.printf(" (%s ref=%t mut=%t ", b.Name(prm.Name), prm.Ref, prm.Mut)
			d.typ(prm.Type)
			d.printf(")")
		}
		d.printf(") ")
		d.typ(fn.Ret)
		d.where(fn.Where)
		d.printf(" ")
		d.expr(fn.Body)
	case ast.ItemStruct:
		st, _ := b.Items.Struct(id)
		d.printf(" %s", b.Name(st.Name))
		d.generics(st.Generics)
		for _, f := range st.Fields {
			d.printf(" (%s pub=%t ", b.Name(f.Name), f.Public)
			d.typ(f.Type)
			d.printf(")")
		}
	case ast.ItemEnum:
		en, _ := b.Items.Enum(id)
		d.printf(" %s", b.Name(en.Name))
		d.generics(en.Generics)
		for _, v := range en.Variants {
			d.printf(" (%s ", b.Name(v.Name))
			d.typ(v.Type)
			d.printf(")")
		}
	case ast.ItemTrait:
		tr, _ := b.Items.Trait(id)
		d.printf(" %s", b.Name(tr.Name))
		d.generics(tr.Generics)
		d.paths(" supers", tr.Supers)
		d.items("   ", tr.Members)
	case ast.ItemImplTrait, ast.ItemImplSelf:
		impl, _ := b.Items.Impl(id)
		d.generics(impl.Generics)
		if impl.Trait != nil {
			d.printf(" ")
			d.path(*impl.Trait)
		}
		d.printf(" ")
		d.typ(impl.Self)
		d.where(impl.Where)
		d.items("   ", impl.Members)
	case ast.ItemAbi:
		abi, _ := b.Items.Abi(id)
		d.printf(" %s", b.Name(abi.Name))
		d.paths(" supers", abi.Supers)
		d.items("   ", abi.Members)
	case ast.ItemStorage, ast.ItemConfigurable:
		blk, _ := b.Items.SlotBlock(id)
		for _, f := range blk.Fields {
			d.printf(" (%s ", b.Name(f.Name))
			d.typ(f.Type)
			d.printf(" ")
			d.expr(f.Init)
			d.printf(")")
		}
	case ast.ItemConst:
		c, _ := b.Items.Const(id)
		d.printf(" %s ", b.Name(c.Name))
		d.typ(c.Type)
		d.printf(" ")
		d.expr(c.Value)
	case ast.ItemAssocType:
		at, _ := b.Items.AssocType(id)
		d.printf(" %s ", b.Name(at.Name))
		d.typ(at.Value)
	case ast.ItemUse:
		use, _ := b.Items.Use(id)
		d.printf(" abs=%t ", use.Absolute)
		d.useTree(use.Tree)
	case ast.ItemMod:
		mod, _ := b.Items.Mod(id)
		d.printf(" %s", b.Name(mod.Name))
	}
	d.printf(")")
}

func (d *dumper) attrArgs(args []ast.AttrArg) {
	d.printf("(")
	for i, a := range args {
		if i > 0 {
			d.printf(" ")
		}
		d.printf("%s", d.b.Name(a.Key))
		switch a.ValueKind {
		case ast.AttrValueList:
			d.attrArgs(a.Nested)
		case ast.AttrValueNone:
		default:
			d.printf("=%q", a.Value)
		}
	}
	d.printf(")")
}

func (d *dumper) generics(params []ast.GenericParam) {
	if len(params) == 0 {
		return
	}
	d.printf(" (generics")
	for _, gp := range params {
		d.printf(" %s", d.b.Name(gp.Name))
		d.paths(":", gp.Bounds)
	}
	d.printf(")")
}

func (d *dumper) where(preds []ast.WherePred) {
	if len(preds) == 0 {
		return
	}
	d.printf(" (where")
	for _, pr := range preds {
		d.printf(" ")
		d.typ(pr.Type)
		d.paths(":", pr.Bounds)
	}
	d.printf(")")
}

func (d *dumper) paths(label string, paths []ast.Path) {
	if len(paths) == 0 {
		return
	}
	d.printf("%s[", label)
	for i, p := range paths {
		if i > 0 {
			d.printf(" ")
		}
		d.path(p)
	}
	d.printf("]")
}

func (d *dumper) path(p ast.Path) {
	if p.Absolute {
		d.printf("::")
	}
	for i, seg := range p.Segments {
		if i > 0 {
			d.printf("::")
		}
		d.printf("%s", d.b.SegmentName(seg))
		if len(seg.Args) > 0 {
			d.printf("<")
			for j, a := range seg.Args {
				if j > 0 {
					d.printf(",")
				}
				d.typ(a)
			}
			d.printf(">")
		}
	}
}

func (d *dumper) useTree(t ast.UseTree) {
	d.printf("(")
	for i, seg := range t.Prefix {
		if i > 0 {
			d.printf("::")
		}
		d.printf("%s", d.b.SegmentName(seg))
	}
	switch t.Kind {
	case ast.UseGlob:
		d.printf(" *")
	case ast.UseGroup:
		for _, c := range t.Children {
			d.printf(" ")
			d.useTree(c)
		}
	}
	if name := d.b.Name(t.Alias); name != "" {
		d.printf(" as %s", name)
	}
	d.printf(")")
}

func (d *dumper) typ(id ast.TypeID) {
	b := d.b
	ty := b.Types.Get(id)
	if ty == nil {
		d.printf("-")
		return
	}
	switch ty.Kind {
	case ast.TypePath:
		tp, _ := b.Types.Path(id)
		d.path(tp.Path)
	case ast.TypeTuple:
		tt, _ := b.Types.Tuple(id)
		d.printf("(tuple")
		for _, e := range tt.Elems {
			d.printf(" ")
			d.typ(e)
		}
		d.printf(")")
	case ast.TypeArray, ast.TypeStrArray:
		arr, _ := b.Types.Array(id)
		d.printf("(array ")
		d.typ(arr.Elem)
		d.printf(" ")
		d.expr(arr.Len)
		d.printf(")")
	case ast.TypeRef:
		ref, _ := b.Types.Ref(id)
		d.printf("(ref mut=%t ", ref.Mut)
		d.typ(ref.Inner)
		d.printf(")")
	case ast.TypeNever:
		d.printf("!")
	case ast.TypeInfer:
		d.printf("_")
	default:
		d.printf("(type-error)")
	}
}

func (d *dumper) exprs(ids []ast.ExprID) {
	for _, id := range ids {
		d.printf(" ")
		d.expr(id)
	}
}

func (d *dumper) expr(id ast.ExprID) {
	b := d.b
	ex := b.Exprs.Get(id)
	if ex == nil {
		d.printf("-")
		return
	}
	switch ex.Kind {
	case ast.ExprLit:
		lit, _ := b.Exprs.Lit(id)
		d.printf("(lit %q %s)", lit.Value, lit.Suffix)
	case ast.ExprPath:
		p, _ := b.Exprs.Path(id)
		d.path(p.Path)
	case ast.ExprStorage:
		d.printf("storage")
	case ast.ExprCall:
		c, _ := b.Exprs.Call(id)
		d.printf("(call ")
		d.expr(c.Callee)
		d.exprs(c.Args)
		d.printf(")")
	case ast.ExprMethodCall:
		m, _ := b.Exprs.MethodCall(id)
		d.printf("(method %s ", b.Name(m.Name))
		d.expr(m.Recv)
		for _, g := range m.Generics {
			d.printf(" <")
			d.typ(g)
			d.printf(">")
		}
		d.exprs(m.Args)
		d.printf(")")
	case ast.ExprField:
		f, _ := b.Exprs.Field(id)
		d.printf("(field %s ", b.Name(f.Name))
		d.expr(f.Base)
		d.printf(")")
	case ast.ExprTupleIndex:
		t, _ := b.Exprs.TupleIndex(id)
		d.printf("(tindex %d ", t.Index)
		d.expr(t.Base)
		d.printf(")")
	case ast.ExprIndex:
		ix, _ := b.Exprs.Index(id)
		d.printf("(index ")
		d.expr(ix.Base)
		d.printf(" ")
		d.expr(ix.Index)
		d.printf(")")
	case ast.ExprUnary:
		u, _ := b.Exprs.Unary(id)
		d.printf("(unary %d ", u.Op)
		d.expr(u.Operand)
		d.printf(")")
	case ast.ExprBinary:
		bin, _ := b.Exprs.Binary(id)
		d.printf("(%s ", bin.Op)
		d.expr(bin.Left)
		d.printf(" ")
		d.expr(bin.Right)
		d.printf(")")
	case ast.ExprAssign:
		as, _ := b.Exprs.Assign(id)
		d.printf("(assign%s ", as.Op)
		d.expr(as.Place)
		d.printf(" ")
		d.expr(as.Value)
		d.printf(")")
	case ast.ExprStruct:
		st, _ := b.Exprs.Struct(id)
		d.printf("(struct ")
		d.path(st.Path)
		for _, f := range st.Fields {
			d.printf(" (%s ", b.Name(f.Name))
			d.expr(f.Value)
			d.printf(")")
		}
		d.printf(")")
	case ast.ExprTuple, ast.ExprArray:
		list, _ := b.Exprs.List(id)
		if ex.Kind == ast.ExprTuple {
			d.printf("(tuple")
		} else {
			d.printf("(array")
		}
		d.exprs(list.Elems)
		d.printf(")")
	case ast.ExprParen:
		par, _ := b.Exprs.Paren(id)
		d.printf("(paren ")
		d.expr(par.Inner)
		d.printf(")")
	case ast.ExprArrayRepeat:
		rep, _ := b.Exprs.ArrayRepeat(id)
		d.printf("(repeat ")
		d.expr(rep.Value)
		d.printf(" ")
		d.expr(rep.Count)
		d.printf(")")
	case ast.ExprBlock:
		blk, _ := b.Exprs.Block(id)
		d.printf("(block")
		for _, s := range blk.Stmts {
			d.printf(" ")
			d.stmt(s)
		}
		if blk.Tail.IsValid() {
			d.printf(" (tail ")
			d.expr(blk.Tail)
			d.printf(")")
		}
		d.printf(")")
	case ast.ExprIf:
		ifx, _ := b.Exprs.If(id)
		d.printf("(if ")
		d.expr(ifx.Cond)
		d.printf(" ")
		d.expr(ifx.Then)
		d.printf(" ")
		d.expr(ifx.Else)
		d.printf(")")
	case ast.ExprMatch:
		m, _ := b.Exprs.Match(id)
		d.printf("(match ")
		d.expr(m.Scrutinee)
		for _, arm := range m.Arms {
			d.printf(" (arm ")
			d.pat(arm.Pat)
			d.printf(" ")
			d.expr(arm.Body)
			d.printf(")")
		}
		d.printf(")")
	case ast.ExprWhile:
		wh, _ := b.Exprs.While(id)
		d.printf("(while ")
		d.expr(wh.Cond)
		d.printf(" ")
		d.expr(wh.Body)
		d.printf(")")
	case ast.ExprBreak:
		d.printf("break")
	case ast.ExprContinue:
		d.printf("continue")
	case ast.ExprReturn:
		r, _ := b.Exprs.Return(id)
		d.printf("(return ")
		d.expr(r.Value)
		d.printf(")")
	default:
		d.printf("(expr-error)")
	}
}

func (d *dumper) stmt(id ast.StmtID) {
	b := d.b
	st := b.Stmts.Get(id)
	switch st.Kind {
	case ast.StmtLet:
		let, _ := b.Stmts.Let(id)
		d.printf("(let ")
		d.pat(let.Pat)
		d.printf(" ")
		d.typ(let.Type)
		d.printf(" ")
		d.expr(let.Value)
		d.printf(")")
	case ast.StmtExpr:
		es, _ := b.Stmts.Expr(id)
		d.printf("(stmt semi=%t ", es.Semi)
		d.expr(es.Expr)
		d.printf(")")
	case ast.StmtItem:
		is, _ := b.Stmts.Item(id)
		d.item(is.Item)
	default:
		d.printf("(stmt-error)")
	}
}

func (d *dumper) pats(ids []ast.PatID) {
	for _, id := range ids {
		d.printf(" ")
		d.pat(id)
	}
}

func (d *dumper) pat(id ast.PatID) {
	b := d.b
	pt := b.Pats.Get(id)
	if pt == nil {
		d.printf("-")
		return
	}
	switch pt.Kind {
	case ast.PatWild:
		d.printf("_")
	case ast.PatBind:
		bind, _ := b.Pats.Bind(id)
		d.printf("(bind %s mut=%t)", b.Name(bind.Name), bind.Mut)
	case ast.PatLit:
		lit, _ := b.Pats.Lit(id)
		d.printf("(plit neg=%t ", lit.Neg)
		d.expr(lit.Lit)
		d.printf(")")
	case ast.PatTuple, ast.PatOr:
		list, _ := b.Pats.List(id)
		if pt.Kind == ast.PatTuple {
			d.printf("(ptuple")
		} else {
			d.printf("(or")
		}
		d.pats(list.Elems)
		d.printf(")")
	case ast.PatPath, ast.PatVariant:
		pp, _ := b.Pats.Path(id)
		d.printf("(ppath ")
		d.path(pp.Path)
		if pt.Kind == ast.PatVariant {
			d.printf(" args")
			d.pats(pp.Args)
		}
		d.printf(")")
	case ast.PatStruct:
		sp, _ := b.Pats.Struct(id)
		d.printf("(pstruct ")
		d.path(sp.Path)
		for _, f := range sp.Fields {
			d.printf(" (%s ", b.Name(f.Name))
			d.pat(f.Pat)
			d.printf(")")
		}
		d.printf(" rest=%t)", sp.Rest)
	default:
		d.printf("(pat-error)")
	}
}
