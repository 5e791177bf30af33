package lower

import (
	"swell/internal/hir"
	"swell/internal/ir"
	"swell/internal/source"
	"swell/internal/token"
	"swell/internal/types"
)

func (lc *loweringContext) block(blk *hir.Block) ir.Value {
	for i := range blk.Stmts {
		st := &blk.Stmts[i]
		switch st.Kind {
		case hir.StmtLet:
			lc.let(st.Pat, st.Value, st.Span)
		case hir.StmtExpr:
			lc.expr(st.Value)
		}
	}
	if blk.Tail == nil {
		return ir.NoValue
	}
	return lc.expr(blk.Tail)
}

func (lc *loweringContext) let(p *hir.Pattern, value *hir.Expr, sp source.Span) {
	b := lc.b
	switch p.Kind {
	case hir.PatWild:
		lc.expr(value)
		return
	case hir.PatBind:
		ty := lc.subst(p.Type)
		v := lc.operand(value)
		slot := b.Local(tref(ty), p.Name, p.Span)
		b.Store(tref(ty), slot, v, sp)
		lc.locals[p.Local] = slot
		return
	}
	ty := lc.subst(value.Type)
	addr := lc.spill(ty, lc.operand(value), sp)
	lc.allocBindings(p)
	fail := b.NewBlock()
	lc.test(p, addr, ty, fail)
	cont := b.Current()
	b.SetBlock(fail)
	b.Unreachable(sp)
	b.SetBlock(cont)
}

func (lc *loweringContext) ifExpr(d hir.IfData, ty types.TypeID, sp source.Span) ir.Value {
	b := lc.b
	var slot ir.Value
	if !lc.isUnit(ty) {
		slot = b.Local(tref(ty), "", sp)
	}
	cond := lc.operand(d.Cond)
	then, join := b.NewBlock(), b.NewBlock()
	els := join
	if d.Else != nil {
		els = b.NewBlock()
	}
	b.CondBr(cond, then, els, sp)

	arm := func(e *hir.Expr) {
		v := lc.expr(e)
		if slot != ir.NoValue && !b.Terminated() && v != ir.NoValue {
			b.Store(tref(ty), slot, v, e.Span)
		}
		b.Br(join, e.Span)
	}
	b.SetBlock(then)
	arm(d.Then)
	if d.Else != nil {
		b.SetBlock(els)
		arm(d.Else)
	}
	b.SetBlock(join)
	if slot == ir.NoValue {
		return ir.NoValue
	}
	return b.Load(tref(ty), slot, sp)
}

func (lc *loweringContext) while(d hir.WhileData, sp source.Span) {
	b := lc.b
	header := b.NewBlock()
	b.Br(header, sp)
	b.SetBlock(header)
	cond := lc.operand(d.Cond)
	body, exit := b.NewBlock(), b.NewBlock()
	b.CondBr(cond, body, exit, sp)

	lc.loops = append(lc.loops, loop{header: header, exit: exit})
	b.SetBlock(body)
	lc.expr(d.Body)
	b.Br(header, sp)
	lc.loops = lc.loops[:len(lc.loops)-1]

	b.SetBlock(exit)
}

// logical lowers `&&` and `||` with short-circuit evaluation.
func (lc *loweringContext) logical(d hir.BinaryData, sp source.Span) ir.Value {
	b := lc.b
	boolTy := lc.boolean()
	slot := b.Local(boolTy, "", sp)
	x := lc.operand(d.Left)
	b.Store(boolTy, slot, x, sp)
	rhs, join := b.NewBlock(), b.NewBlock()
	if d.Op == token.AndAnd {
		b.CondBr(x, rhs, join, sp)
	} else {
		b.CondBr(x, join, rhs, sp)
	}
	b.SetBlock(rhs)
	y := lc.operand(d.Right)
	b.Store(boolTy, slot, y, sp)
	b.Br(join, sp)
	b.SetBlock(join)
	return b.Load(boolTy, slot, sp)
}

func (lc *loweringContext) match(d hir.MatchData, ty types.TypeID, sp source.Span) ir.Value {
	b := lc.b
	var slot ir.Value
	if !lc.isUnit(ty) {
		slot = b.Local(tref(ty), "", sp)
	}
	scrTy := lc.subst(d.Scrutinee.Type)
	addr := lc.placeOrSpill(d.Scrutinee)
	join := b.NewBlock()

	body := func(arm *hir.Arm) {
		v := lc.expr(arm.Body)
		if slot != ir.NoValue && !b.Terminated() && v != ir.NoValue {
			b.Store(tref(ty), slot, v, arm.Body.Span)
		}
		b.Br(join, arm.Span)
	}

	if lc.l.in.Kind(scrTy) == types.KindEnum && switchable(d.Arms) {
		lc.enumSwitch(d.Arms, addr, scrTy, sp, body)
	} else {
		for i := range d.Arms {
			arm := &d.Arms[i]
			lc.allocBindings(arm.Pat)
			next := b.NewBlock()
			lc.test(arm.Pat, addr, scrTy, next)
			body(arm)
			b.SetBlock(next)
		}
		// sema проверил полноту: сюда управление не доходит
		b.Unreachable(sp)
	}

	b.SetBlock(join)
	if slot == ir.NoValue {
		return ir.NoValue
	}
	return b.Load(tref(ty), slot, sp)
}

// switchable reports whether every arm is decided by the variant tag
// alone: a variant with an irrefutable payload pattern or a catch-all.
func switchable(arms []hir.Arm) bool {
	for i := range arms {
		p := arms[i].Pat
		switch {
		case p.Kind == hir.PatVariant:
			if len(p.Elems) > 0 && !irrefutable(p.Elems[0]) {
				return false
			}
		case irrefutable(p):
		default:
			return false
		}
	}
	return true
}

func irrefutable(p *hir.Pattern) bool {
	switch p.Kind {
	case hir.PatWild, hir.PatBind, hir.PatError:
		return true
	case hir.PatTuple:
		for _, e := range p.Elems {
			if !irrefutable(e) {
				return false
			}
		}
		return true
	case hir.PatStruct:
		for _, f := range p.Fields {
			if !irrefutable(f.Pat) {
				return false
			}
		}
		return true
	}
	return false
}

// enumSwitch lowers a tag-decided match into one enum_tag and a switch.
// The first arm naming a variant wins; arms after a catch-all are dead.
func (lc *loweringContext) enumSwitch(arms []hir.Arm, addr ir.Value, scrTy types.TypeID, sp source.Span, body func(*hir.Arm)) {
	b := lc.b
	in := lc.l.in
	v := b.Load(tref(scrTy), addr, sp)
	tag := b.EnumTag(lc.u64(), v, sp)

	var (
		cases   []uint64
		targets []ir.BlockID
		armOf   []int
		seen    = map[int]bool{}
		dflt    = -1
	)
	for i := range arms {
		p := arms[i].Pat
		if p.Kind != hir.PatVariant {
			dflt = i
			break
		}
		if seen[p.Index] {
			continue
		}
		seen[p.Index] = true
		cases = append(cases, uint64(lc.index(p.Index, p.Span)))
		targets = append(targets, b.NewBlock())
		armOf = append(armOf, i)
	}
	dfltBlock := b.NewBlock()
	b.Switch(tag, cases, append(targets, dfltBlock), sp)

	payloads := in.VariantTypes(scrTy)
	for k, blk := range targets {
		arm := &arms[armOf[k]]
		p := arm.Pat
		b.SetBlock(blk)
		lc.allocBindings(p)
		if len(p.Elems) > 0 && p.Index < len(payloads) {
			pt := payloads[p.Index]
			pv := b.EnumPayload(tref(pt), v, lc.index(p.Index, p.Span), p.Span)
			paddr := lc.spill(pt, pv, p.Span)
			lc.test(p.Elems[0], paddr, pt, dfltBlock)
		}
		body(arm)
	}
	b.SetBlock(dfltBlock)
	if dflt < 0 {
		b.Unreachable(sp)
		return
	}
	arm := &arms[dflt]
	lc.allocBindings(arm.Pat)
	lc.test(arm.Pat, addr, scrTy, dfltBlock)
	body(arm)
}
