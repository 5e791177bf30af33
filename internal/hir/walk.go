package hir

// Children returns the direct sub-expressions of e in evaluation order.
func Children(e *Expr) []*Expr {
	if e == nil {
		return nil
	}
	switch d := e.Data.(type) {
	case CallData:
		return d.Args
	case FieldData:
		return []*Expr{d.Base}
	case IndexData:
		return []*Expr{d.Base, d.Index}
	case UnaryData:
		return []*Expr{d.Operand}
	case BinaryData:
		return []*Expr{d.Left, d.Right}
	case AssignData:
		return []*Expr{d.Place, d.Value}
	case StructLitData:
		return d.Fields
	case VariantData:
		if d.Payload != nil {
			return []*Expr{d.Payload}
		}
	case ListData:
		return d.Elems
	case RepeatData:
		return []*Expr{d.Value}
	case BlockData:
		return blockExprs(d.Block)
	case IfData:
		out := []*Expr{d.Cond, d.Then}
		if d.Else != nil {
			out = append(out, d.Else)
		}
		return out
	case MatchData:
		out := []*Expr{d.Scrutinee}
		for _, arm := range d.Arms {
			out = append(out, arm.Body)
		}
		return out
	case WhileData:
		return []*Expr{d.Cond, d.Body}
	case ReturnData:
		if d.Value != nil {
			return []*Expr{d.Value}
		}
	case StorageOpData:
		return append([]*Expr{d.Place}, d.Args...)
	case RevertData:
		return []*Expr{d.Code}
	}
	return nil
}

func blockExprs(b *Block) []*Expr {
	if b == nil {
		return nil
	}
	out := make([]*Expr, 0, len(b.Stmts)+1)
	for _, st := range b.Stmts {
		if st.Value != nil {
			out = append(out, st.Value)
		}
	}
	if b.Tail != nil {
		out = append(out, b.Tail)
	}
	return out
}

// Walk visits e and its sub-expressions depth-first in evaluation order.
// Children are skipped when fn returns false.
func Walk(e *Expr, fn func(*Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, c := range Children(e) {
		Walk(c, fn)
	}
}
