package lower

import (
	"swell/internal/hir"
	"swell/internal/ir"
	"swell/internal/types"
)

// allocBindings creates the slots of every binding in p up front, so that
// each alternative of an or-pattern stores into a slot dominating the arm.
func (lc *loweringContext) allocBindings(p *hir.Pattern) {
	if p == nil {
		return
	}
	switch p.Kind {
	case hir.PatBind:
		if _, ok := lc.locals[p.Local]; ok {
			return
		}
		ty := lc.subst(p.Type)
		lc.locals[p.Local] = lc.b.Local(tref(ty), p.Name, p.Span)
	case hir.PatStruct:
		for _, f := range p.Fields {
			lc.allocBindings(f.Pat)
		}
	default:
		for _, e := range p.Elems {
			lc.allocBindings(e)
		}
	}
}

// test matches the value stored at addr against p. On failure control
// goes to fail; on success lowering continues in the current block with
// the bindings of p stored.
func (lc *loweringContext) test(p *hir.Pattern, addr ir.Value, ty types.TypeID, fail ir.BlockID) {
	b := lc.b
	in := lc.l.in
	switch p.Kind {
	case hir.PatWild, hir.PatError:
	case hir.PatBind:
		if lc.isUnit(ty) {
			return
		}
		v := b.Load(tref(ty), addr, p.Span)
		b.Store(tref(ty), lc.locals[p.Local], v, p.Span)
	case hir.PatLiteral:
		v := b.Load(tref(ty), addr, p.Span)
		c := lc.literal(p.Lit, ty, p.Span)
		lc.branchEq(v, c, fail, p)
	case hir.PatConst:
		if p.Value == nil {
			lc.fail(p.Span, "constant pattern `%s` has no value", p.Name)
			return
		}
		v := b.Load(tref(ty), addr, p.Span)
		c := lc.valueOperand(p.Value, ty, p.Span)
		lc.branchEq(v, c, fail, p)
	case hir.PatTuple:
		t, _ := in.Lookup(ty)
		for i, e := range p.Elems {
			if i >= len(t.Args) {
				break
			}
			field := b.FieldAddr(tref(t.Args[i]), addr, lc.index(i, e.Span), e.Span)
			lc.test(e, field, t.Args[i], fail)
		}
	case hir.PatStruct:
		fields := in.StructFields(ty)
		for _, f := range p.Fields {
			if f.Index >= len(fields) {
				continue
			}
			ft := fields[f.Index]
			field := b.FieldAddr(tref(ft), addr, lc.index(f.Index, f.Pat.Span), f.Pat.Span)
			lc.test(f.Pat, field, ft, fail)
		}
	case hir.PatVariant:
		v := b.Load(tref(ty), addr, p.Span)
		tag := b.EnumTag(lc.u64(), v, p.Span)
		idx := lc.index(p.Index, p.Span)
		ok := b.NewBlock()
		b.Switch(tag, []uint64{uint64(idx)}, []ir.BlockID{ok, fail}, p.Span)
		b.SetBlock(ok)
		if len(p.Elems) == 0 {
			return
		}
		payloads := in.VariantTypes(ty)
		if p.Index >= len(payloads) {
			lc.fail(p.Span, "variant %d out of range", p.Index)
			return
		}
		pt := payloads[p.Index]
		pv := b.EnumPayload(tref(pt), v, idx, p.Span)
		lc.test(p.Elems[0], lc.spill(pt, pv, p.Span), pt, fail)
	case hir.PatOr:
		done := b.NewBlock()
		for i, alt := range p.Elems {
			next := fail
			if i < len(p.Elems)-1 {
				next = b.NewBlock()
			}
			lc.test(alt, addr, ty, next)
			b.Br(done, alt.Span)
			if next != fail {
				b.SetBlock(next)
			}
		}
		b.SetBlock(done)
	default:
		lc.fail(p.Span, "cannot lower pattern kind %d", p.Kind)
	}
}

func (lc *loweringContext) branchEq(v, c ir.Value, fail ir.BlockID, p *hir.Pattern) {
	b := lc.b
	eq := b.Binary(ir.BinEq, lc.boolean(), v, c, p.Span)
	ok := b.NewBlock()
	b.CondBr(eq, ok, fail, p.Span)
	b.SetBlock(ok)
}
