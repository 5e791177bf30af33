package lower

import (
	"context"
	"fmt"

	"swell/internal/hir"
	"swell/internal/ir"
	"swell/internal/source"
	"swell/internal/symbols"
	"swell/internal/types"
)

type loop struct {
	header ir.BlockID
	exit   ir.BlockID
}

// loweringContext is the state of one function lowering: the builder, the
// slots of locals, the enclosing loops and the type substitution of the
// instance being produced.
type loweringContext struct {
	ctx    context.Context
	l      *lowerer
	fn     *hir.Func
	args   []types.TypeID
	b      *ir.Builder
	locals map[symbols.LocalID]ir.Value
	loops  []loop
	err    error
}

func newContext(ctx context.Context, l *lowerer, f *hir.Func, args []types.TypeID) *loweringContext {
	return &loweringContext{
		ctx:    ctx,
		l:      l,
		fn:     f,
		args:   args,
		locals: make(map[symbols.LocalID]ir.Value, len(f.Params)),
	}
}

func (lc *loweringContext) fail(sp source.Span, format string, args ...any) {
	if lc.err == nil {
		lc.err = fmt.Errorf("at %d..%d: %s", sp.Start, sp.End, fmt.Sprintf(format, args...))
	}
}

// subst maps a type of the generic body to the concrete type of this
// instance.
func (lc *loweringContext) subst(t types.TypeID) types.TypeID {
	if len(lc.args) > 0 {
		t = lc.l.in.Instantiate(t, lc.fn.Generics, lc.args)
	}
	return lc.l.prog.Normalize(t)
}

// isUnit reports whether values of t carry no data.
func (lc *loweringContext) isUnit(t types.TypeID) bool {
	k := lc.l.in.Kind(t)
	return k == types.KindUnit || k == types.KindNever
}

func (lc *loweringContext) u64() ir.TypeRef { return tref(lc.l.in.Builtins().U64) }

func (lc *loweringContext) boolean() ir.TypeRef { return tref(lc.l.in.Builtins().Bool) }

// operand lowers e and materializes unit values, for places that need an
// actual operand (aggregate elements, call arguments).
func (lc *loweringContext) operand(e *hir.Expr) ir.Value {
	v := lc.expr(e)
	if v == ir.NoValue && !lc.b.Terminated() {
		return lc.b.Const(tref(lc.l.in.Builtins().Unit), nil, e.Span)
	}
	return v
}

func (lc *loweringContext) operands(es []*hir.Expr) []ir.Value {
	out := make([]ir.Value, len(es))
	for i, e := range es {
		out[i] = lc.operand(e)
	}
	return out
}

// spill stores v in a fresh slot and returns its address.
func (lc *loweringContext) spill(ty types.TypeID, v ir.Value, sp source.Span) ir.Value {
	slot := lc.b.Local(tref(ty), "", sp)
	if v != ir.NoValue {
		lc.b.Store(tref(ty), slot, v, sp)
	}
	return slot
}

// place returns the address of e when e denotes memory.
func (lc *loweringContext) place(e *hir.Expr) (ir.Value, bool) {
	switch d := e.Data.(type) {
	case hir.LocalData:
		slot, ok := lc.locals[d.Local]
		if !ok {
			lc.fail(e.Span, "unknown local `%s`", d.Name)
		}
		return slot, ok
	case hir.FieldData:
		base, ok := lc.place(d.Base)
		if !ok {
			return ir.NoValue, false
		}
		return lc.b.FieldAddr(tref(lc.subst(e.Type)), base, lc.index(d.Index, e.Span), e.Span), true
	case hir.IndexData:
		base := lc.placeOrSpill(d.Base)
		i := lc.operand(d.Index)
		return lc.b.IndexAddr(tref(lc.subst(e.Type)), base, i, e.Span), true
	case hir.UnaryData:
		if d.Op == hir.UnaryDeref {
			return lc.operand(d.Operand), true
		}
	}
	return ir.NoValue, false
}

func (lc *loweringContext) placeOrSpill(e *hir.Expr) ir.Value {
	if addr, ok := lc.place(e); ok {
		return addr
	}
	return lc.spill(lc.subst(e.Type), lc.operand(e), e.Span)
}

// index converts a field, variant or path index.
func (lc *loweringContext) index(i int, sp source.Span) uint32 {
	n, err := toU32(i)
	if err != nil {
		lc.fail(sp, "index %d: %v", i, err)
	}
	return n
}
