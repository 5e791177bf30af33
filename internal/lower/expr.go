package lower

import (
	"math/big"

	"swell/internal/hir"
	"swell/internal/ir"
	"swell/internal/source"
	"swell/internal/token"
	"swell/internal/types"
)

var binOps = map[token.Kind]ir.BinOp{
	token.Plus:    ir.BinAdd,
	token.Minus:   ir.BinSub,
	token.Star:    ir.BinMul,
	token.Slash:   ir.BinDiv,
	token.Percent: ir.BinRem,
	token.Amp:     ir.BinAnd,
	token.Pipe:    ir.BinOr,
	token.Caret:   ir.BinXor,
	token.Shl:     ir.BinShl,
	token.Shr:     ir.BinShr,
	token.EqEq:    ir.BinEq,
	token.BangEq:  ir.BinNe,
	token.Lt:      ir.BinLt,
	token.LtEq:    ir.BinLe,
	token.Gt:      ir.BinGt,
	token.GtEq:    ir.BinGe,
}

// expr lowers e into the current block. Unit and never typed expressions
// yield ir.NoValue.
func (lc *loweringContext) expr(e *hir.Expr) ir.Value {
	if e == nil || lc.err != nil {
		return ir.NoValue
	}
	ty := lc.subst(e.Type)
	b := lc.b
	switch d := e.Data.(type) {
	case hir.LiteralData:
		return lc.literal(&d, ty, e.Span)
	case hir.LocalData:
		slot, ok := lc.place(e)
		if !ok || lc.isUnit(ty) {
			return ir.NoValue
		}
		return b.Load(tref(ty), slot, e.Span)
	case hir.ConstData:
		if e.Kind == hir.ExprConfigurable {
			idx, ok := lc.l.configs[d.Decl]
			if !ok {
				lc.fail(e.Span, "unknown configurable `%s`", d.Name)
				return ir.NoValue
			}
			return b.Config(tref(ty), idx, e.Span)
		}
		return lc.constant(d, ty, e.Span)
	case hir.CallData:
		return lc.call(d, ty, e.Span)
	case hir.FieldData:
		if lc.isUnit(ty) {
			lc.expr(d.Base)
			return ir.NoValue
		}
		if addr, ok := lc.place(e); ok {
			return b.Load(tref(ty), addr, e.Span)
		}
		base := lc.operand(d.Base)
		return b.Extract(tref(ty), base, lc.index(d.Index, e.Span), e.Span)
	case hir.IndexData:
		addr, _ := lc.place(e)
		if lc.isUnit(ty) {
			return ir.NoValue
		}
		return b.Load(tref(ty), addr, e.Span)
	case hir.UnaryData:
		return lc.unary(d, ty, e.Span)
	case hir.BinaryData:
		if d.Op == token.AndAnd || d.Op == token.OrOr {
			return lc.logical(d, e.Span)
		}
		op, ok := binOps[d.Op]
		if !ok {
			lc.fail(e.Span, "unsupported operator %s", d.Op)
			return ir.NoValue
		}
		x := lc.operand(d.Left)
		y := lc.operand(d.Right)
		return b.Binary(op, tref(ty), x, y, e.Span)
	case hir.AssignData:
		lc.assign(d, e.Span)
		return ir.NoValue
	case hir.StructLitData:
		return b.Aggregate(tref(ty), lc.operands(d.Fields), e.Span)
	case hir.VariantData:
		payload := ir.NoValue
		if d.Payload != nil {
			payload = lc.operand(d.Payload)
		}
		return b.EnumNew(tref(ty), lc.index(d.Index, e.Span), payload, e.Span)
	case hir.ListData:
		elems := lc.operands(d.Elems)
		if lc.isUnit(ty) {
			return ir.NoValue
		}
		return b.Aggregate(tref(ty), elems, e.Span)
	case hir.RepeatData:
		v := lc.operand(d.Value)
		elems := make([]ir.Value, d.Count)
		for i := range elems {
			elems[i] = v
		}
		return b.Aggregate(tref(ty), elems, e.Span)
	case hir.BlockData:
		return lc.block(d.Block)
	case hir.IfData:
		return lc.ifExpr(d, ty, e.Span)
	case hir.MatchData:
		return lc.match(d, ty, e.Span)
	case hir.WhileData:
		lc.while(d, e.Span)
		return ir.NoValue
	case hir.ReturnData:
		v := ir.NoValue
		if d.Value != nil {
			v = lc.expr(d.Value)
		}
		b.Ret(v, e.Span)
		return ir.NoValue
	case hir.StorageData:
		slot, path := lc.storagePlace(d, e.Span)
		return b.Storage(ir.OpStorageRead, tref(ty), slot, path, nil, e.Span)
	case hir.StorageOpData:
		return lc.storageOp(d, ty, e.Span)
	case hir.RevertData:
		code := lc.operand(d.Code)
		b.Revert(code, e.Span)
		return ir.NoValue
	}
	switch e.Kind {
	case hir.ExprBreak:
		if n := len(lc.loops); n > 0 {
			b.Br(lc.loops[n-1].exit, e.Span)
		}
		return ir.NoValue
	case hir.ExprContinue:
		if n := len(lc.loops); n > 0 {
			b.Br(lc.loops[n-1].header, e.Span)
		}
		return ir.NoValue
	}
	lc.fail(e.Span, "cannot lower %s expression", e.Kind)
	return ir.NoValue
}

func (lc *loweringContext) literal(d *hir.LiteralData, ty types.TypeID, sp source.Span) ir.Value {
	b := lc.b
	switch d.Kind {
	case hir.LiteralInt:
		return b.Const(tref(ty), lc.intBytes(d.Int, ty, sp), sp)
	case hir.LiteralBool:
		return b.Const(tref(ty), boolBytes(d.Bool), sp)
	case hir.LiteralString:
		return b.Const(tref(ty), []byte(d.String), sp)
	case hir.LiteralB256:
		return b.Const(tref(ty), append([]byte(nil), d.B256[:]...), sp)
	}
	lc.fail(sp, "unknown literal kind %d", d.Kind)
	return ir.NoValue
}

func boolBytes(v bool) []byte {
	if v {
		return []byte{1}
	}
	return []byte{0}
}

// intBytes encodes x big-endian in the width of ty.
func (lc *loweringContext) intBytes(x *big.Int, ty types.TypeID, sp source.Span) []byte {
	t, _ := lc.l.in.Lookup(ty)
	n := int(t.Width.Bytes())
	if t.Kind != types.KindUint || x.Sign() < 0 || x.BitLen() > n*8 {
		lc.fail(sp, "integer %s does not fit `%s`", x, lc.l.in.Label(ty))
		return nil
	}
	return x.FillBytes(make([]byte, n))
}

func (lc *loweringContext) unary(d hir.UnaryData, ty types.TypeID, sp source.Span) ir.Value {
	b := lc.b
	switch d.Op {
	case hir.UnaryNeg:
		x := lc.operand(d.Operand)
		zero := b.Const(tref(ty), lc.intBytes(new(big.Int), ty, sp), sp)
		return b.Binary(ir.BinSub, tref(ty), zero, x, sp)
	case hir.UnaryNot:
		return b.Not(tref(ty), lc.operand(d.Operand), sp)
	case hir.UnaryRef, hir.UnaryRefMut:
		return lc.placeOrSpill(d.Operand)
	case hir.UnaryDeref:
		p := lc.operand(d.Operand)
		if lc.isUnit(ty) {
			return ir.NoValue
		}
		return b.Load(tref(ty), p, sp)
	}
	lc.fail(sp, "unknown unary operator %d", d.Op)
	return ir.NoValue
}

func (lc *loweringContext) assign(d hir.AssignData, sp source.Span) {
	b := lc.b
	ty := lc.subst(d.Place.Type)
	if sd, ok := d.Place.Data.(hir.StorageData); ok {
		slot, path := lc.storagePlace(sd, d.Place.Span)
		v := lc.operand(d.Value)
		if d.Op != token.Assign {
			cur := b.Storage(ir.OpStorageRead, tref(ty), slot, path, nil, d.Place.Span)
			v = b.Binary(binOps[d.Op], tref(ty), cur, v, sp)
		}
		b.Storage(ir.OpStorageWrite, tref(ty), slot, path, []ir.Value{v}, sp)
		return
	}
	addr, ok := lc.place(d.Place)
	if !ok {
		lc.fail(sp, "assignment to a value that is not a place")
		return
	}
	v := lc.operand(d.Value)
	if d.Op != token.Assign {
		op, known := binOps[d.Op]
		if !known {
			lc.fail(sp, "unsupported compound assignment %s", d.Op)
			return
		}
		cur := b.Load(tref(ty), addr, sp)
		v = b.Binary(op, tref(ty), cur, v, sp)
	}
	b.Store(tref(ty), addr, v, sp)
}

func (lc *loweringContext) call(d hir.CallData, ty types.TypeID, sp source.Span) ir.Value {
	l := lc.l
	targs := make([]types.TypeID, len(d.TypeArgs))
	for i, t := range d.TypeArgs {
		targs[i] = lc.subst(t)
	}
	target, targs, ok := l.prog.ResolveCall(d.Fn, targs)
	callee := l.prog.Func(target)
	if !ok || callee == nil {
		lc.fail(sp, "no implementation for call of `%s`", l.prog.Symbols.QualifiedName(d.Fn))
		return ir.NoValue
	}
	if callee.Body == nil {
		lc.fail(sp, "call of `%s` which has no body", callee.Symbol)
		return ir.NoValue
	}
	args := make([]ir.Value, len(d.Args))
	for i, a := range d.Args {
		if i == 0 && callee.Flags.HasFlag(hir.FuncRefSelf) {
			args[i] = lc.placeOrSpill(a)
			continue
		}
		args[i] = lc.operand(a)
	}
	sym, err := l.ensure(lc.ctx, callee, targs)
	if err != nil {
		if lc.err == nil {
			lc.err = err
		}
		return ir.NoValue
	}
	v := lc.b.Call(sym, tref(ty), !lc.isUnit(ty), args, sp)
	if l.in.Kind(ty) == types.KindNever {
		lc.b.Unreachable(sp)
	}
	return v
}

// constant lowers a constant reference; associated constants are resolved
// for the concrete Self of this instance.
func (lc *loweringContext) constant(d hir.ConstData, ty types.TypeID, sp source.Span) ir.Value {
	prog := lc.l.prog
	var c *hir.Const
	if d.Self != types.NoTypeID {
		c = prog.ResolveConst(d.Decl, lc.subst(d.Self))
	} else {
		c = prog.Const(d.Decl)
	}
	if c == nil {
		lc.fail(sp, "unknown constant `%s`", d.Name)
		return ir.NoValue
	}
	if c.Value == nil {
		if c.Init == nil {
			lc.fail(sp, "constant `%s` has no value", d.Name)
			return ir.NoValue
		}
		return lc.expr(c.Init)
	}
	return lc.value(c.Value, ty, sp)
}

// value materializes a compile-time value of type ty.
func (lc *loweringContext) value(v *hir.Value, ty types.TypeID, sp source.Span) ir.Value {
	in := lc.l.in
	b := lc.b
	switch v.Kind {
	case hir.ValueUnit:
		return ir.NoValue
	case hir.ValueInt:
		return b.Const(tref(ty), lc.intBytes(v.Int, ty, sp), sp)
	case hir.ValueBool:
		return b.Const(tref(ty), boolBytes(v.Bool), sp)
	case hir.ValueString:
		return b.Const(tref(ty), []byte(v.Str), sp)
	case hir.ValueB256:
		return b.Const(tref(ty), append([]byte(nil), v.B256[:]...), sp)
	case hir.ValueAggregate:
		elemTypes := lc.elemTypes(ty, len(v.Elems))
		elems := make([]ir.Value, len(v.Elems))
		for i, e := range v.Elems {
			elems[i] = lc.valueOperand(e, elemTypes[i], sp)
		}
		return b.Aggregate(tref(ty), elems, sp)
	case hir.ValueVariant:
		payload := ir.NoValue
		if len(v.Elems) > 0 {
			vts := in.VariantTypes(ty)
			if v.Index < len(vts) {
				payload = lc.valueOperand(v.Elems[0], vts[v.Index], sp)
			}
		}
		return b.EnumNew(tref(ty), lc.index(v.Index, sp), payload, sp)
	}
	lc.fail(sp, "unknown constant value kind %d", v.Kind)
	return ir.NoValue
}

func (lc *loweringContext) valueOperand(v *hir.Value, ty types.TypeID, sp source.Span) ir.Value {
	if out := lc.value(v, ty, sp); out != ir.NoValue {
		return out
	}
	return lc.b.Const(tref(ty), nil, sp)
}

// elemTypes returns the element types of a tuple, struct or array value.
func (lc *loweringContext) elemTypes(ty types.TypeID, n int) []types.TypeID {
	in := lc.l.in
	t, _ := in.Lookup(ty)
	switch t.Kind {
	case types.KindTuple:
		return t.Args
	case types.KindStruct:
		return in.StructFields(ty)
	}
	out := make([]types.TypeID, n)
	for i := range out {
		out[i] = t.Elem
	}
	return out
}
