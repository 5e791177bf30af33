package symbols

import "swell/internal/ast"

// bodyItems calls fn for every item statement nested anywhere in expr.
func bodyItems(b *ast.Builder, id ast.ExprID, fn func(ast.ItemID)) {
	if !id.IsValid() {
		return
	}
	e := b.Exprs.Get(id)
	switch e.Kind {
	case ast.ExprBlock:
		blk, _ := b.Exprs.Block(id)
		for _, st := range blk.Stmts {
			switch b.Stmts.Get(st).Kind {
			case ast.StmtLet:
				let, _ := b.Stmts.Let(st)
				bodyItems(b, let.Value, fn)
			case ast.StmtExpr:
				es, _ := b.Stmts.Expr(st)
				bodyItems(b, es.Expr, fn)
			case ast.StmtItem:
				it, _ := b.Stmts.Item(st)
				fn(it.Item)
				if c, ok := b.Items.Const(it.Item); ok {
					bodyItems(b, c.Value, fn)
				}
			}
		}
		bodyItems(b, blk.Tail, fn)
	case ast.ExprIf:
		d, _ := b.Exprs.If(id)
		bodyItems(b, d.Cond, fn)
		bodyItems(b, d.Then, fn)
		bodyItems(b, d.Else, fn)
	case ast.ExprWhile:
		d, _ := b.Exprs.While(id)
		bodyItems(b, d.Cond, fn)
		bodyItems(b, d.Body, fn)
	case ast.ExprMatch:
		d, _ := b.Exprs.Match(id)
		bodyItems(b, d.Scrutinee, fn)
		for _, arm := range d.Arms {
			bodyItems(b, arm.Body, fn)
		}
	default:
		for _, child := range childExprs(b, id) {
			bodyItems(b, child, fn)
		}
	}
}

// childExprs lists direct sub-expressions of non-block expressions.
func childExprs(b *ast.Builder, id ast.ExprID) []ast.ExprID {
	e := b.Exprs.Get(id)
	switch e.Kind {
	case ast.ExprCall:
		d, _ := b.Exprs.Call(id)
		return append([]ast.ExprID{d.Callee}, d.Args...)
	case ast.ExprMethodCall:
		d, _ := b.Exprs.MethodCall(id)
		return append([]ast.ExprID{d.Recv}, d.Args...)
	case ast.ExprField:
		d, _ := b.Exprs.Field(id)
		return []ast.ExprID{d.Base}
	case ast.ExprTupleIndex:
		d, _ := b.Exprs.TupleIndex(id)
		return []ast.ExprID{d.Base}
	case ast.ExprIndex:
		d, _ := b.Exprs.Index(id)
		return []ast.ExprID{d.Base, d.Index}
	case ast.ExprUnary:
		d, _ := b.Exprs.Unary(id)
		return []ast.ExprID{d.Operand}
	case ast.ExprBinary:
		d, _ := b.Exprs.Binary(id)
		return []ast.ExprID{d.Left, d.Right}
	case ast.ExprAssign:
		d, _ := b.Exprs.Assign(id)
		return []ast.ExprID{d.Place, d.Value}
	case ast.ExprStruct:
		d, _ := b.Exprs.Struct(id)
		out := make([]ast.ExprID, 0, len(d.Fields))
		for _, f := range d.Fields {
			out = append(out, f.Value)
		}
		return out
	case ast.ExprTuple, ast.ExprArray:
		d, _ := b.Exprs.List(id)
		return d.Elems
	case ast.ExprParen:
		d, _ := b.Exprs.Paren(id)
		return []ast.ExprID{d.Inner}
	case ast.ExprArrayRepeat:
		d, _ := b.Exprs.ArrayRepeat(id)
		return []ast.ExprID{d.Value, d.Count}
	case ast.ExprReturn:
		d, _ := b.Exprs.Return(id)
		return []ast.ExprID{d.Value}
	}
	return nil
}
