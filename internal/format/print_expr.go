package format

import (
	"strconv"

	"swell/internal/ast"
)

var unaryText = [...]string{
	ast.UnaryNeg:    "-",
	ast.UnaryNot:    "!",
	ast.UnaryRef:    "&",
	ast.UnaryRefMut: "&mut ",
	ast.UnaryDeref:  "*",
}

// exprString печатает выражение в отдельный буфер (для длин массивов в типах).
func (p *printer) exprString(id ast.ExprID) string {
	sub := printer{builder: p.builder, writer: NewWriter(p.writer.opt)}
	sub.writer.indentLevel = p.writer.indentLevel
	sub.writer.atLineStart = false
	sub.printExpr(id)
	return string(sub.writer.Bytes())
}

func (p *printer) printExprs(ids []ast.ExprID) {
	for i, id := range ids {
		if i > 0 {
			p.writer.WriteString(", ")
		}
		p.printExpr(id)
	}
}

func (p *printer) printExpr(id ast.ExprID) {
	b := p.builder
	w := p.writer
	ex := b.Exprs.Get(id)
	if ex == nil {
		return
	}
	switch ex.Kind {
	case ast.ExprLit:
		lit, _ := b.Exprs.Lit(id)
		w.WriteString(lit.Raw)
	case ast.ExprPath:
		path, _ := b.Exprs.Path(id)
		w.WriteString(p.pathString(path.Path))
	case ast.ExprStorage:
		w.WriteString("storage")
	case ast.ExprCall:
		call, _ := b.Exprs.Call(id)
		p.printExpr(call.Callee)
		w.WriteString("(")
		p.printExprs(call.Args)
		w.WriteString(")")
	case ast.ExprMethodCall:
		mc, _ := b.Exprs.MethodCall(id)
		p.printExpr(mc.Recv)
		w.WriteString("." + b.Name(mc.Name))
		if len(mc.Generics) > 0 {
			w.WriteString("::<")
			for i, g := range mc.Generics {
				if i > 0 {
					w.WriteString(", ")
				}
				w.WriteString(p.typeString(g))
			}
			w.WriteString(">")
		}
		w.WriteString("(")
		p.printExprs(mc.Args)
		w.WriteString(")")
	case ast.ExprField:
		f, _ := b.Exprs.Field(id)
		p.printExpr(f.Base)
		w.WriteString("." + b.Name(f.Name))
	case ast.ExprTupleIndex:
		ti, _ := b.Exprs.TupleIndex(id)
		p.printExpr(ti.Base)
		w.WriteString("." + strconv.FormatUint(uint64(ti.Index), 10))
	case ast.ExprIndex:
		ix, _ := b.Exprs.Index(id)
		p.printExpr(ix.Base)
		w.WriteString("[")
		p.printExpr(ix.Index)
		w.WriteString("]")
	case ast.ExprUnary:
		u, _ := b.Exprs.Unary(id)
		w.WriteString(unaryText[u.Op])
		p.printExpr(u.Operand)
	case ast.ExprBinary:
		bin, _ := b.Exprs.Binary(id)
		p.printExpr(bin.Left)
		w.WriteString(" " + bin.Op.String() + " ")
		p.printExpr(bin.Right)
	case ast.ExprAssign:
		as, _ := b.Exprs.Assign(id)
		p.printExpr(as.Place)
		w.WriteString(" " + as.Op.String() + " ")
		p.printExpr(as.Value)
	case ast.ExprStruct:
		st, _ := b.Exprs.Struct(id)
		w.WriteString(p.pathString(st.Path) + " {")
		for i, f := range st.Fields {
			if i > 0 {
				w.WriteString(",")
			}
			w.WriteString(" " + b.Name(f.Name))
			if f.Value.IsValid() {
				w.WriteString(": ")
				p.printExpr(f.Value)
			}
		}
		if len(st.Fields) > 0 {
			w.WriteString(" ")
		}
		w.WriteString("}")
	case ast.ExprTuple:
		list, _ := b.Exprs.List(id)
		w.WriteString("(")
		p.printExprs(list.Elems)
		if len(list.Elems) == 1 {
			w.WriteString(",")
		}
		w.WriteString(")")
	case ast.ExprParen:
		par, _ := b.Exprs.Paren(id)
		w.WriteString("(")
		p.printExpr(par.Inner)
		w.WriteString(")")
	case ast.ExprArray:
		list, _ := b.Exprs.List(id)
		w.WriteString("[")
		p.printExprs(list.Elems)
		w.WriteString("]")
	case ast.ExprArrayRepeat:
		rep, _ := b.Exprs.ArrayRepeat(id)
		w.WriteString("[")
		p.printExpr(rep.Value)
		w.WriteString("; ")
		p.printExpr(rep.Count)
		w.WriteString("]")
	case ast.ExprBlock:
		p.printBlock(id)
	case ast.ExprIf:
		ifx, _ := b.Exprs.If(id)
		w.WriteString("if ")
		p.printExpr(ifx.Cond)
		w.Space()
		p.printBlock(ifx.Then)
		if ifx.Else.IsValid() {
			w.WriteString(" else ")
			p.printExpr(ifx.Else)
		}
	case ast.ExprMatch:
		m, _ := b.Exprs.Match(id)
		w.WriteString("match ")
		p.printExpr(m.Scrutinee)
		w.WriteString(" {")
		if len(m.Arms) == 0 {
			w.WriteString("}")
			return
		}
		w.Newline()
		w.IndentPush()
		for _, arm := range m.Arms {
			p.printPat(arm.Pat)
			w.WriteString(" => ")
			p.printExpr(arm.Body)
			w.WriteString(",")
			w.Newline()
		}
		w.IndentPop()
		w.WriteString("}")
	case ast.ExprWhile:
		wh, _ := b.Exprs.While(id)
		w.WriteString("while ")
		p.printExpr(wh.Cond)
		w.Space()
		p.printBlock(wh.Body)
	case ast.ExprBreak:
		w.WriteString("break")
	case ast.ExprContinue:
		w.WriteString("continue")
	case ast.ExprReturn:
		ret, _ := b.Exprs.Return(id)
		w.WriteString("return")
		if ret.Value.IsValid() {
			w.WriteString(" ")
			p.printExpr(ret.Value)
		}
	default:
		w.WriteString("{error}")
	}
}
