package sema

import (
	"math/big"

	"swell/internal/ast"
	"swell/internal/diag"
	"swell/internal/hir"
	"swell/internal/symbols"
	"swell/internal/token"
	"swell/internal/types"
)

type constState uint8

const (
	constPending constState = iota
	constActive
	constDone
)

type constSlot struct {
	c     *hir.Const
	env   *itemEnv
	state constState
	// cyclic latches the cycle report so it is emitted once.
	cyclic bool
}

// constHeader registers a constant with its declared type; the initializer
// is checked on first use.
func (tc *typeChecker) constHeader(id symbols.DeclID, env *itemEnv) *hir.Const {
	if slot, ok := tc.consts[id]; ok {
		return slot.c
	}
	d := tc.decl(id)
	item, _ := env.b.Items.Const(d.Item)
	c := &hir.Const{Decl: id, Name: d.Name, Span: d.Span}
	if item != nil && item.Type.IsValid() {
		c.Type = tc.prog.Normalize(tc.resolveType(env, item.Type, nil))
	}
	tc.consts[id] = &constSlot{c: c, env: env}
	tc.prog.AddConst(c)
	return c
}

func (tc *typeChecker) constEnv(d *symbols.Decl) *itemEnv {
	if d.Parent.IsValid() {
		if env, ok := tc.envs[d.Parent]; ok {
			return env
		}
	}
	return tc.module(d.Module)
}

// ensureConst checks and evaluates a constant once. Cycles are reported at
// the constant that closes them.
func (tc *typeChecker) ensureConst(id symbols.DeclID) *hir.Const {
	d := tc.decl(id)
	if d == nil || d.Kind != symbols.DeclConst {
		return nil
	}
	slot, ok := tc.consts[id]
	if !ok {
		tc.constHeader(id, tc.constEnv(d))
		slot = tc.consts[id]
	}
	c := slot.c
	switch slot.state {
	case constDone:
		return c
	case constActive:
		if !slot.cyclic {
			slot.cyclic = true
			tc.report(diag.TypConstEval, d.Span, "cycle detected when evaluating constant `%s`", d.Name)
		}
		if c.Type == types.NoTypeID {
			c.Type = tc.builtins.Error
		}
		return c
	}
	slot.state = constActive
	defer func() { slot.state = constDone }()

	item, _ := slot.env.b.Items.Const(d.Item)
	if item == nil || !item.Value.IsValid() {
		if c.Type == types.NoTypeID {
			tc.report(diag.TypUnresolvedGeneric, d.Span, "missing type for constant `%s`", d.Name)
			c.Type = tc.builtins.Error
		}
		return c
	}
	bc := tc.newBody(slot.env, nil)
	expect := c.Type
	if expect == types.NoTypeID {
		expect = bc.sub.fresh(d.Span)
	}
	init := bc.check(item.Value, expect)
	bc.finish()
	c.Type = bc.sub.finish(expect)
	c.Init = init
	// значения по умолчанию в trait могут зависеть от Self
	quiet := tc.decl(d.Parent) != nil && tc.decl(d.Parent).Kind == symbols.DeclTrait
	if v, ok := tc.evaluate(init, quiet); ok {
		c.Value = v
	}
	return c
}

func (tc *typeChecker) checkConsts() {
	for _, id := range tc.declsOf(symbols.DeclConst) {
		tc.ensureConst(id)
	}
}

func (tc *typeChecker) checkSlots() {
	for _, id := range tc.table.Storage {
		d := tc.decl(id)
		env := tc.module(d.Module)
		block, _ := env.b.Items.SlotBlock(d.Item)
		if block == nil || d.Index >= len(block.Fields) {
			continue
		}
		f := block.Fields[d.Index]
		slot := &hir.StorageField{Decl: id, Name: d.Name, Span: d.Span}
		slot.Type = tc.resolveType(env, f.Type, nil)
		slot.Init, slot.Value = tc.slotInit(env, f.Init, slot.Type, d, "storage field")
		tc.prog.AddStorage(slot)
	}
	for _, id := range tc.table.Configurables {
		tc.configurable(id)
	}
}

// configurable checks a configurable lazily: constants may mention it in
// their types before checkSlots runs.
func (tc *typeChecker) configurable(id symbols.DeclID) *hir.Configurable {
	if c, ok := tc.configs[id]; ok {
		return c
	}
	d := tc.decl(id)
	env := tc.module(d.Module)
	block, _ := env.b.Items.SlotBlock(d.Item)
	if block == nil || d.Index >= len(block.Fields) {
		return nil
	}
	f := block.Fields[d.Index]
	c := &hir.Configurable{Decl: id, Name: d.Name, Span: d.Span}
	tc.configs[id] = c
	c.Type = tc.resolveType(env, f.Type, nil)
	c.Init, c.Value = tc.slotInit(env, f.Init, c.Type, d, "configurable")
	tc.prog.Configurables = append(tc.prog.Configurables, c)
	return c
}

func (tc *typeChecker) slotInit(env *itemEnv, init ast.ExprID, ty types.TypeID, d *symbols.Decl, what string) (*hir.Expr, *hir.Value) {
	if !init.IsValid() {
		tc.report(diag.TypConstEval, d.Span, "%s `%s` needs an initializer", what, d.Name)
		return nil, nil
	}
	bc := tc.newBody(env, nil)
	e := bc.check(init, ty)
	bc.finish()
	v, ok := tc.evaluate(e, false)
	if !ok {
		return e, nil
	}
	if _, t := bc.resolved(ty); t.Kind == types.KindStorageMap || t.Kind == types.KindStorageVec {
		return e, nil
	}
	return e, v
}

// eval evaluates a checked constant expression and reports why it is not
// constant.
func (tc *typeChecker) eval(e *hir.Expr) (*hir.Value, bool) {
	return tc.evaluate(e, false)
}

func (tc *typeChecker) evaluate(e *hir.Expr, quiet bool) (*hir.Value, bool) {
	ev := &evaluator{tc: tc, quiet: quiet}
	return ev.expr(e)
}

type evaluator struct {
	tc    *typeChecker
	quiet bool
}

func (ev *evaluator) fail(e *hir.Expr, format string, args ...any) (*hir.Value, bool) {
	if !ev.quiet && !ev.tc.types.HasErrors(e.Type) {
		ev.tc.report(diag.TypConstEval, e.Span, format, args...)
	}
	return nil, false
}

func (ev *evaluator) width(ty types.TypeID) types.Width {
	t, ok := ev.tc.types.Lookup(ty)
	if !ok || t.Kind != types.KindUint {
		return types.Width256
	}
	return t.Width
}

func (ev *evaluator) intValue(e *hir.Expr, v *big.Int) (*hir.Value, bool) {
	if v.Sign() < 0 {
		return ev.fail(e, "attempt to subtract with overflow in constant expression")
	}
	if v.BitLen() > int(ev.width(e.Type)) {
		return ev.fail(e, "constant value %s overflows `%s`", v, ev.tc.typeLabel(e.Type))
	}
	return &hir.Value{Kind: hir.ValueInt, Type: e.Type, Int: v}, true
}

func (ev *evaluator) expr(e *hir.Expr) (*hir.Value, bool) {
	if e == nil {
		return nil, false
	}
	tc := ev.tc
	switch d := e.Data.(type) {
	case hir.LiteralData:
		switch d.Kind {
		case hir.LiteralInt:
			return ev.intValue(e, new(big.Int).Set(d.Int))
		case hir.LiteralBool:
			return &hir.Value{Kind: hir.ValueBool, Type: e.Type, Bool: d.Bool}, true
		case hir.LiteralString:
			return &hir.Value{Kind: hir.ValueString, Type: e.Type, Str: d.String}, true
		case hir.LiteralB256:
			return &hir.Value{Kind: hir.ValueB256, Type: e.Type, B256: d.B256}, true
		}
	case hir.ConstData:
		if e.Kind == hir.ExprConfigurable {
			return ev.fail(e, "configurable `%s` is not a compile-time constant", d.Name)
		}
		var c *hir.Const
		if d.Self != types.NoTypeID && tc.types.IsConcrete(d.Self) {
			c = tc.prog.ResolveConst(d.Decl, d.Self)
			if c != nil {
				c = tc.ensureConst(c.Decl)
			}
		} else if d.Self == types.NoTypeID {
			c = tc.ensureConst(d.Decl)
		}
		if c == nil || c.Value == nil {
			if c == nil {
				return ev.fail(e, "constant `%s` cannot be evaluated here", d.Name)
			}
			return nil, false
		}
		return c.Value, true
	case hir.UnaryData:
		if d.Op != hir.UnaryNot {
			break
		}
		v, ok := ev.expr(d.Operand)
		if !ok {
			return nil, false
		}
		if v.Kind == hir.ValueBool {
			return &hir.Value{Kind: hir.ValueBool, Type: e.Type, Bool: !v.Bool}, true
		}
		mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(ev.width(e.Type))), big.NewInt(1))
		return ev.intValue(e, new(big.Int).Xor(v.Int, mask))
	case hir.BinaryData:
		return ev.binary(e, d)
	case hir.ListData:
		return ev.aggregate(e, d.Elems)
	case hir.StructLitData:
		if d.Decl == symbols.NoDeclID {
			// StorageMap {} и StorageVec {} не имеют значения
			return &hir.Value{Kind: hir.ValueAggregate, Type: e.Type}, true
		}
		return ev.aggregate(e, d.Fields)
	case hir.RepeatData:
		v, ok := ev.expr(d.Value)
		if !ok {
			return nil, false
		}
		out := &hir.Value{Kind: hir.ValueAggregate, Type: e.Type, Elems: make([]*hir.Value, d.Count)}
		for i := range out.Elems {
			out.Elems[i] = v
		}
		return out, true
	case hir.VariantData:
		out := &hir.Value{Kind: hir.ValueVariant, Type: e.Type, Index: d.Index}
		if d.Payload != nil {
			v, ok := ev.expr(d.Payload)
			if !ok {
				return nil, false
			}
			out.Elems = []*hir.Value{v}
		}
		return out, true
	case hir.BlockData:
		if len(d.Block.Stmts) == 0 {
			if d.Block.Tail == nil {
				return &hir.Value{Kind: hir.ValueUnit, Type: e.Type}, true
			}
			return ev.expr(d.Block.Tail)
		}
	case hir.FieldData:
		v, ok := ev.expr(d.Base)
		if !ok {
			return nil, false
		}
		if v.Kind == hir.ValueAggregate && d.Index < len(v.Elems) {
			return v.Elems[d.Index], true
		}
	case hir.IndexData:
		base, ok := ev.expr(d.Base)
		if !ok {
			return nil, false
		}
		idx, ok := ev.expr(d.Index)
		if !ok {
			return nil, false
		}
		if !idx.Int.IsInt64() || idx.Int.Int64() >= int64(len(base.Elems)) {
			return ev.fail(e, "index %s is out of bounds for an array of length %d", idx.Int, len(base.Elems))
		}
		return base.Elems[idx.Int.Int64()], true
	case hir.IfData:
		cond, ok := ev.expr(d.Cond)
		if !ok {
			return nil, false
		}
		if cond.Bool {
			return ev.expr(d.Then)
		}
		if d.Else == nil {
			return &hir.Value{Kind: hir.ValueUnit, Type: e.Type}, true
		}
		return ev.expr(d.Else)
	}
	if e.Kind == hir.ExprError {
		return nil, false
	}
	if e.Kind == hir.ExprTuple && tc.types.Kind(e.Type) == types.KindUnit {
		return &hir.Value{Kind: hir.ValueUnit, Type: e.Type}, true
	}
	return ev.fail(e, "expression is not a compile-time constant")
}

func (ev *evaluator) aggregate(e *hir.Expr, elems []*hir.Expr) (*hir.Value, bool) {
	if len(elems) == 0 && ev.tc.types.Kind(e.Type) == types.KindUnit {
		return &hir.Value{Kind: hir.ValueUnit, Type: e.Type}, true
	}
	out := &hir.Value{Kind: hir.ValueAggregate, Type: e.Type, Elems: make([]*hir.Value, len(elems))}
	for i, el := range elems {
		v, ok := ev.expr(el)
		if !ok {
			return nil, false
		}
		out.Elems[i] = v
	}
	return out, true
}

func (ev *evaluator) binary(e *hir.Expr, d hir.BinaryData) (*hir.Value, bool) {
	l, ok := ev.expr(d.Left)
	if !ok {
		return nil, false
	}
	// && и || вычисляются лениво
	if d.Op == token.AndAnd && !l.Bool {
		return &hir.Value{Kind: hir.ValueBool, Type: e.Type}, true
	}
	if d.Op == token.OrOr && l.Bool {
		return &hir.Value{Kind: hir.ValueBool, Type: e.Type, Bool: true}, true
	}
	r, ok := ev.expr(d.Right)
	if !ok {
		return nil, false
	}
	boolean := func(b bool) (*hir.Value, bool) {
		return &hir.Value{Kind: hir.ValueBool, Type: e.Type, Bool: b}, true
	}
	switch d.Op {
	case token.AndAnd, token.OrOr:
		return boolean(r.Bool)
	case token.EqEq:
		return boolean(l.String() == r.String())
	case token.BangEq:
		return boolean(l.String() != r.String())
	}
	if l.Kind == hir.ValueBool {
		switch d.Op {
		case token.Amp:
			return boolean(l.Bool && r.Bool)
		case token.Pipe:
			return boolean(l.Bool || r.Bool)
		case token.Caret:
			return boolean(l.Bool != r.Bool)
		}
		return ev.fail(e, "expression is not a compile-time constant")
	}
	if l.Kind != hir.ValueInt || r.Kind != hir.ValueInt {
		return ev.fail(e, "expression is not a compile-time constant")
	}
	a, b := l.Int, r.Int
	switch d.Op {
	case token.Lt:
		return boolean(a.Cmp(b) < 0)
	case token.LtEq:
		return boolean(a.Cmp(b) <= 0)
	case token.Gt:
		return boolean(a.Cmp(b) > 0)
	case token.GtEq:
		return boolean(a.Cmp(b) >= 0)
	}
	out := new(big.Int)
	switch d.Op {
	case token.Plus:
		out.Add(a, b)
	case token.Minus:
		out.Sub(a, b)
	case token.Star:
		out.Mul(a, b)
	case token.Slash, token.Percent:
		if b.Sign() == 0 {
			return ev.fail(e, "division by zero in constant expression")
		}
		if d.Op == token.Slash {
			out.Quo(a, b)
		} else {
			out.Rem(a, b)
		}
	case token.Amp:
		out.And(a, b)
	case token.Pipe:
		out.Or(a, b)
	case token.Caret:
		out.Xor(a, b)
	case token.Shl, token.Shr:
		if !b.IsUint64() || b.Uint64() >= uint64(ev.width(e.Type)) {
			return ev.fail(e, "shift by %s overflows `%s`", b, ev.tc.typeLabel(e.Type))
		}
		if d.Op == token.Shl {
			w := uint(ev.width(e.Type))
			out.Lsh(a, uint(b.Uint64()))
			out.And(out, new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), w), big.NewInt(1)))
		} else {
			out.Rsh(a, uint(b.Uint64()))
		}
	default:
		return ev.fail(e, "expression is not a compile-time constant")
	}
	return ev.intValue(e, out)
}
