package sema

import (
	"math/big"

	"swell/internal/ast"
	"swell/internal/diag"
	"swell/internal/hir"
	"swell/internal/source"
	"swell/internal/symbols"
	"swell/internal/types"
)

type localInfo struct {
	ty   types.TypeID
	mut  bool
	name string
}

// pendingCall is a generic instantiation whose bounds and instance record
// wait for the body to be solved.
type pendingCall struct {
	fn     symbols.DeclID
	args   []types.TypeID
	bounds []hir.Bound
	span   source.Span
}

type pendingMatch struct {
	span  source.Span
	ty    types.TypeID
	arms  []*hir.Pattern
	spans []source.Span
	// let is set for `let` patterns, which must be irrefutable.
	let bool
}

type pendingLit struct {
	e     *hir.Expr
	value *big.Int
	raw   string
}

// bodyChecker infers one function body, constant initializer or array
// length with its own substitution.
type bodyChecker struct {
	tc  *typeChecker
	env *itemEnv
	b   *ast.Builder
	in  *types.Interner
	fn  *hir.Func
	sub *subst

	locals  map[symbols.LocalID]localInfo
	ret     types.TypeID
	loops   int
	exprs   []*hir.Expr
	pats    []*hir.Pattern
	lits    []pendingLit
	calls   []pendingCall
	matches []pendingMatch
	// early holds call arguments inferred while narrowing candidates.
	early map[ast.ExprID]*hir.Expr

	startErrors int
}

func (tc *typeChecker) newBody(env *itemEnv, fn *hir.Func) *bodyChecker {
	bc := &bodyChecker{
		tc:          tc,
		env:         env,
		b:           env.b,
		in:          tc.types,
		fn:          fn,
		sub:         newSubst(tc.types, tc.prog),
		locals:      make(map[symbols.LocalID]localInfo),
		early:       make(map[ast.ExprID]*hir.Expr),
		ret:         types.NoTypeID,
		startErrors: tc.errorCount(),
	}
	if fn != nil {
		bc.ret = fn.Ret
		for _, p := range fn.Params {
			bc.locals[p.Local] = localInfo{ty: p.Type, mut: p.Mut, name: p.Name}
		}
	}
	return bc
}

func (bc *bodyChecker) newExpr(kind hir.ExprKind, ty types.TypeID, sp source.Span, data hir.ExprData) *hir.Expr {
	e := &hir.Expr{Kind: kind, Type: ty, Span: sp, Data: data}
	bc.exprs = append(bc.exprs, e)
	return e
}

func (bc *bodyChecker) errExpr(sp source.Span) *hir.Expr {
	return bc.newExpr(hir.ExprError, bc.tc.builtins.Error, sp, nil)
}

func (bc *bodyChecker) span(id ast.ExprID) source.Span {
	if e := bc.b.Exprs.Get(id); e != nil {
		return e.Span
	}
	return source.Span{}
}

func (bc *bodyChecker) label(id types.TypeID) string {
	return bc.tc.typeLabel(bc.sub.resolve(id))
}

// resolved returns the outermost known shape of id.
func (bc *bodyChecker) resolved(id types.TypeID) (types.TypeID, types.Type) {
	id = bc.sub.normalize(bc.sub.shallow(id))
	t, _ := bc.in.Lookup(id)
	return id, t
}

func (bc *bodyChecker) isNever(id types.TypeID) bool {
	r, _ := bc.resolved(id)
	return bc.in.Kind(r) == types.KindNever
}

// check infers id and requires the result to fit expect.
func (bc *bodyChecker) check(id ast.ExprID, expect types.TypeID) *hir.Expr {
	e := bc.infer(id, expect)
	bc.coerce(e, expect)
	return e
}

// coerce unifies the type of e with expect and reports a mismatch.
func (bc *bodyChecker) coerce(e *hir.Expr, expect types.TypeID) bool {
	if expect == types.NoTypeID || e == nil {
		return true
	}
	if bc.sub.unify(e.Type, expect) {
		return true
	}
	if bc.sub.infinite {
		bc.tc.report(diag.TypInfiniteType, e.Span, "cannot construct the infinite type `%s` = `%s`", bc.label(expect), bc.label(e.Type))
		return false
	}
	bc.mismatch(e.Span, expect, e.Type)
	return false
}

func (bc *bodyChecker) mismatch(sp source.Span, expect, found types.TypeID) {
	if bc.in.HasErrors(bc.sub.resolve(expect)) || bc.in.HasErrors(bc.sub.resolve(found)) {
		return
	}
	bc.tc.report(diag.TypMismatch, sp, "mismatched types: expected `%s`, found `%s`", bc.label(expect), bc.label(found))
}

func (bc *bodyChecker) block(id ast.ExprID, expect types.TypeID) *hir.Expr {
	b := bc.b
	blk, _ := b.Exprs.Block(id)
	sp := bc.span(id)
	out := &hir.Block{Span: sp}
	diverges := false
	for _, st := range blk.Stmts {
		stmt := b.Stmts.Get(st)
		switch stmt.Kind {
		case ast.StmtLet:
			let, _ := b.Stmts.Let(st)
			declared := types.NoTypeID
			if let.Type.IsValid() {
				declared = bc.tc.resolveType(bc.env, let.Type, bc.sub)
			} else {
				declared = bc.sub.fresh(stmt.Span)
			}
			var value *hir.Expr
			if let.Value.IsValid() {
				value = bc.check(let.Value, declared)
				diverges = diverges || bc.isNever(value.Type)
			}
			pat := bc.pattern(let.Pat, declared)
			bc.matches = append(bc.matches, pendingMatch{span: stmt.Span, ty: declared, arms: []*hir.Pattern{pat}, let: true})
			out.Stmts = append(out.Stmts, hir.Stmt{Kind: hir.StmtLet, Pat: pat, Value: value, Span: stmt.Span})
		case ast.StmtExpr:
			es, _ := b.Stmts.Expr(st)
			var e *hir.Expr
			if es.Semi {
				e = bc.infer(es.Expr, types.NoTypeID)
			} else {
				e = bc.check(es.Expr, bc.tc.builtins.Unit)
			}
			diverges = diverges || bc.isNever(e.Type)
			out.Stmts = append(out.Stmts, hir.Stmt{Kind: hir.StmtExpr, Value: e, Span: stmt.Span})
		case ast.StmtItem:
			it, _ := b.Stmts.Item(st)
			if decl, ok := bc.tc.table.ItemDecl(bc.env.mod.ID, it.Item); ok {
				bc.tc.ensureConst(decl)
			}
		}
	}
	ty := bc.tc.builtins.Unit
	switch {
	case blk.Tail.IsValid():
		out.Tail = bc.infer(blk.Tail, expect)
		ty = out.Tail.Type
	case diverges:
		ty = bc.tc.builtins.Never
	}
	return bc.newExpr(hir.ExprBlock, ty, sp, hir.BlockData{Block: out})
}

func (tc *typeChecker) checkBodies() {
	for _, f := range tc.prog.Funcs {
		b := tc.builder(f.Decl)
		fn, _ := b.Items.Fn(tc.decl(f.Decl).Item)
		if !fn.Body.IsValid() {
			continue
		}
		bc := tc.newBody(tc.envs[f.Decl], f)
		body := bc.infer(fn.Body, f.Ret)
		if blk, ok := body.Data.(hir.BlockData); ok && blk.Block.Tail == nil && !bc.isNever(body.Type) &&
			!bc.sub.unify(f.Ret, tc.builtins.Unit) {
			tc.errorf(diag.TypMissingReturn, f.Span, "function `%s` must return `%s` but its body ends without a value", f.Name, tc.typeLabel(f.Ret)).
				WithNote(body.Span, "body is here").
				Emit()
		} else {
			bc.coerce(body, f.Ret)
		}
		bc.finish()
		f.Body = body
	}
}

// finish defaults numeric placeholders, writes final types into the tree and
// runs the checks that need solved types.
func (bc *bodyChecker) finish() {
	tc := bc.tc
	bc.sub.defaultInts()
	quiet := tc.errorCount() > bc.startErrors
	for _, e := range bc.exprs {
		if v, open := bc.sub.unresolved(e.Type); open && !quiet {
			sp := bc.sub.origins[v]
			if sp == (source.Span{}) {
				sp = e.Span
			}
			tc.report(diag.TypUnresolvedGeneric, sp, "type annotations needed: cannot infer the type of this expression")
			quiet = true
		}
	}
	for _, e := range bc.exprs {
		e.Type = bc.sub.finish(e.Type)
		if d, ok := e.Data.(hir.ConstData); ok && d.Self != types.NoTypeID {
			d.Self = bc.sub.finish(d.Self)
			e.Data = d
		}
	}
	for _, p := range bc.pats {
		p.Type = bc.sub.finish(p.Type)
	}
	for _, c := range bc.calls {
		for i := range c.args {
			c.args[i] = bc.sub.finish(c.args[i])
		}
	}
	for _, lit := range bc.lits {
		bc.checkOverflow(lit)
	}
	for _, c := range bc.calls {
		bc.finishCall(c)
	}
	for _, m := range bc.matches {
		bc.checkPatterns(m)
	}
}

func (bc *bodyChecker) checkOverflow(lit pendingLit) {
	t, ok := bc.in.Lookup(lit.e.Type)
	if !ok || t.Kind != types.KindUint {
		return
	}
	if lit.value.BitLen() > int(t.Width) {
		bc.tc.report(diag.TypLiteralOverflow, lit.e.Span, "literal `%s` does not fit in `%s`", lit.raw, bc.tc.typeLabel(lit.e.Type))
	}
}

func (bc *bodyChecker) finishCall(c pendingCall) {
	tc := bc.tc
	for _, bd := range c.bounds {
		self := bc.sub.finish(bd.Param)
		args := make([]types.TypeID, len(bd.Args))
		for i, a := range bd.Args {
			args[i] = bc.sub.finish(a)
		}
		if !bc.satisfies(self, bd.Trait, args) {
			tc.report(diag.TypMissingTraitImpl, c.span, "the trait bound `%s: %s` is not satisfied", tc.typeLabel(self), tc.traitLabel(bd.Trait, args))
		}
	}
	concrete := true
	for _, a := range c.args {
		if !bc.in.IsConcrete(a) || bc.in.HasErrors(a) {
			concrete = false
			break
		}
	}
	if concrete {
		caller := symbols.NoDeclID
		if bc.fn != nil {
			caller = bc.fn.Decl
		}
		tc.prog.Instances.Record(c.fn, c.args, c.span, caller)
	}
}

// satisfies reports whether self implements trait: through an impl for
// concrete types, through the bounds in scope for parameters.
func (bc *bodyChecker) satisfies(self types.TypeID, trait symbols.DeclID, args []types.TypeID) bool {
	in := bc.in
	if in.HasErrors(self) {
		return true
	}
	for _, a := range args {
		if in.HasErrors(a) {
			return true
		}
	}
	for _, bd := range bc.env.bounds {
		if bd.Param != self {
			continue
		}
		for _, cap := range bc.tc.table.Capabilities(bd.Trait) {
			if cap == trait {
				return true
			}
		}
	}
	query := make([]types.TypeID, len(args))
	for i, a := range args {
		if in.IsConcrete(a) {
			query[i] = a
		}
	}
	return len(bc.tc.prog.MatchImpls(trait, query, self)) > 0
}

func (tc *typeChecker) traitLabel(trait symbols.DeclID, args []types.TypeID) string {
	name := tc.decl(trait).Name
	if len(args) == 0 {
		return name
	}
	name += "<"
	for i, a := range args {
		if i > 0 {
			name += ", "
		}
		name += tc.typeLabel(a)
	}
	return name + ">"
}
