package format

import "swell/internal/ast"

func (p *printer) printBlock(id ast.ExprID) {
	b := p.builder
	w := p.writer
	blk, ok := b.Exprs.Block(id)
	if !ok {
		p.printExpr(id)
		return
	}
	if len(blk.Stmts) == 0 && !blk.Tail.IsValid() {
		w.WriteString("{}")
		return
	}
	w.WriteString("{")
	w.Newline()
	w.IndentPush()
	for _, sid := range blk.Stmts {
		p.printStmt(sid)
		w.Newline()
	}
	if blk.Tail.IsValid() {
		p.printExpr(blk.Tail)
		w.Newline()
	}
	w.IndentPop()
	w.WriteString("}")
}

func (p *printer) printStmt(id ast.StmtID) {
	b := p.builder
	w := p.writer
	st := b.Stmts.Get(id)
	switch st.Kind {
	case ast.StmtLet:
		let, _ := b.Stmts.Let(id)
		w.WriteString("let ")
		p.printPat(let.Pat)
		if let.Type.IsValid() {
			w.WriteString(": " + p.typeString(let.Type))
		}
		if let.Value.IsValid() {
			w.WriteString(" = ")
			p.printExpr(let.Value)
		}
		w.WriteString(";")
	case ast.StmtExpr:
		es, _ := b.Stmts.Expr(id)
		p.printExpr(es.Expr)
		if es.Semi {
			w.WriteString(";")
		}
	case ast.StmtItem:
		is, _ := b.Stmts.Item(id)
		p.printItem(is.Item)
	}
}

func (p *printer) printPats(ids []ast.PatID, sep string) {
	for i, id := range ids {
		if i > 0 {
			p.writer.WriteString(sep)
		}
		p.printPat(id)
	}
}

func (p *printer) printPat(id ast.PatID) {
	b := p.builder
	w := p.writer
	pat := b.Pats.Get(id)
	if pat == nil {
		return
	}
	switch pat.Kind {
	case ast.PatWild:
		w.WriteString("_")
	case ast.PatBind:
		bind, _ := b.Pats.Bind(id)
		if bind.Mut {
			w.WriteString("mut ")
		}
		w.WriteString(b.Name(bind.Name))
	case ast.PatLit:
		lit, _ := b.Pats.Lit(id)
		if lit.Neg {
			w.WriteString("-")
		}
		p.printExpr(lit.Lit)
	case ast.PatTuple:
		list, _ := b.Pats.List(id)
		w.WriteString("(")
		p.printPats(list.Elems, ", ")
		if len(list.Elems) == 1 {
			w.WriteString(",")
		}
		w.WriteString(")")
	case ast.PatOr:
		list, _ := b.Pats.List(id)
		p.printPats(list.Elems, " | ")
	case ast.PatPath:
		pp, _ := b.Pats.Path(id)
		w.WriteString(p.pathString(pp.Path))
	case ast.PatVariant:
		pp, _ := b.Pats.Path(id)
		w.WriteString(p.pathString(pp.Path) + "(")
		p.printPats(pp.Args, ", ")
		w.WriteString(")")
	case ast.PatStruct:
		sp, _ := b.Pats.Struct(id)
		w.WriteString(p.pathString(sp.Path) + " {")
		for i, f := range sp.Fields {
			if i > 0 {
				w.WriteString(",")
			}
			w.WriteString(" " + b.Name(f.Name))
			if f.Pat.IsValid() {
				w.WriteString(": ")
				p.printPat(f.Pat)
			}
		}
		if sp.Rest {
			if len(sp.Fields) > 0 {
				w.WriteString(",")
			}
			w.WriteString(" ..")
		}
		w.WriteString(" }")
	default:
		w.WriteString("_")
	}
}
