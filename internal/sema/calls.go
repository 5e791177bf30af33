package sema

import (
	"swell/internal/ast"
	"swell/internal/diag"
	"swell/internal/hir"
	"swell/internal/source"
	"swell/internal/symbols"
	"swell/internal/types"
)

func (bc *bodyChecker) call(id ast.ExprID, expect types.TypeID) *hir.Expr {
	tc := bc.tc
	b := bc.b
	c, _ := b.Exprs.Call(id)
	sp := bc.span(id)
	if b.Exprs.Get(c.Callee).Kind != ast.ExprPath {
		callee := bc.infer(c.Callee, types.NoTypeID)
		bc.inferArgs(c.Args)
		if callee.Kind != hir.ExprError {
			tc.report(diag.TypNotCallable, callee.Span, "expected function, found `%s`", bc.label(callee.Type))
		}
		return bc.errExpr(sp)
	}
	pe, _ := b.Exprs.Path(c.Callee)
	p := &pe.Path
	bind, ok := bc.env.binding(p.Span)
	if !ok {
		bc.inferArgs(c.Args)
		return bc.errExpr(sp)
	}
	if bind.Rest > 0 {
		return bc.assocCall(p, bind, c.Args, sp, expect)
	}
	switch bind.Kind {
	case symbols.BindBuiltin:
		if bind.Builtin == symbols.BuiltinRevert {
			return bc.revert(c.Args, sp)
		}
	case symbols.BindDecl:
		d := tc.decl(bind.Decl)
		switch d.Kind {
		case symbols.DeclFn:
			return bc.callFn(d.ID, nil, p.Last().Args, nil, c.Args, sp, expect)
		case symbols.DeclVariant:
			return bc.construct(p, d, c.Args, sp, expect)
		}
	}
	bc.inferArgs(c.Args)
	tc.report(diag.TypNotCallable, p.Span, "`%s` is not a function", b.PathString(p))
	return bc.errExpr(sp)
}

func (bc *bodyChecker) inferArgs(args []ast.ExprID) []*hir.Expr {
	out := make([]*hir.Expr, len(args))
	for i, a := range args {
		out[i] = bc.inferArg(a)
	}
	return out
}

// inferArg returns the argument already inferred by narrow, if any, so an
// argument is never checked twice.
func (bc *bodyChecker) inferArg(a ast.ExprID) *hir.Expr {
	if e, ok := bc.early[a]; ok {
		delete(bc.early, a)
		return e
	}
	return bc.infer(a, types.NoTypeID)
}

func (bc *bodyChecker) checkArg(a ast.ExprID, expect types.TypeID) *hir.Expr {
	if e, ok := bc.early[a]; ok {
		delete(bc.early, a)
		bc.coerce(e, expect)
		return e
	}
	return bc.check(a, expect)
}

func (bc *bodyChecker) revert(args []ast.ExprID, sp source.Span) *hir.Expr {
	tc := bc.tc
	if len(args) != 1 {
		bc.inferArgs(args)
		tc.report(diag.TypArgCount, sp, "`__revert` takes 1 argument but %d were supplied", len(args))
		return bc.newExpr(hir.ExprRevert, tc.builtins.Never, sp, hir.RevertData{})
	}
	code := bc.check(args[0], tc.builtins.U64)
	return bc.newExpr(hir.ExprRevert, tc.builtins.Never, sp, hir.RevertData{Code: code})
}

// construct builds a variant with a payload; several arguments form a tuple.
func (bc *bodyChecker) construct(p *ast.Path, d *symbols.Decl, args []ast.ExprID, sp source.Span, expect types.TypeID) *hir.Expr {
	tc := bc.tc
	enum := bc.enumType(p, d, sp, expect)
	payloads := bc.in.VariantTypes(enum)
	if d.Index >= len(payloads) {
		bc.inferArgs(args)
		return bc.errExpr(sp)
	}
	want := payloads[d.Index]
	var payload *hir.Expr
	switch {
	case want == tc.builtins.Unit:
		bc.inferArgs(args)
		tc.errorf(diag.TypArgCount, sp, "variant `%s` has no payload", bc.b.PathString(p)).
			WithHelp("remove the parentheses: `" + bc.b.PathString(p) + "`").
			Emit()
		return bc.errExpr(sp)
	case len(args) == 0:
		tc.report(diag.TypArgCount, sp, "variant `%s` expects a value of type `%s`", bc.b.PathString(p), bc.label(want))
		return bc.errExpr(sp)
	case len(args) == 1:
		payload = bc.check(args[0], want)
	default:
		_, wt := bc.resolved(want)
		elems := make([]*hir.Expr, len(args))
		tys := make([]types.TypeID, len(args))
		for i, a := range args {
			hint := types.NoTypeID
			if wt.Kind == types.KindTuple && len(wt.Args) == len(args) {
				hint = wt.Args[i]
			}
			elems[i] = bc.check(a, hint)
			tys[i] = elems[i].Type
		}
		payload = bc.newExpr(hir.ExprTuple, bc.in.Tuple(tys...), sp, hir.ListData{Elems: elems})
		bc.coerce(payload, want)
	}
	return bc.newExpr(hir.ExprVariant, enum, sp, hir.VariantData{Enum: d.Parent, Index: d.Index, Name: d.Name, Payload: payload})
}

// assocCall handles `S::new(..)`, `T::f(..)`, `Self::m(..)` and `Tr::m(..)`.
func (bc *bodyChecker) assocCall(p *ast.Path, bind symbols.Binding, args []ast.ExprID, sp source.Span, expect types.TypeID) *hir.Expr {
	tc := bc.tc
	last := p.Last()
	name := bc.b.SegmentName(*last)
	if bind.Kind == symbols.BindDecl && bind.Rest == 1 {
		if d := tc.decl(bind.Decl); d.Kind == symbols.DeclTrait {
			tr := tc.prog.Trait(d.ID)
			fid, ok := tr.Methods[name]
			if !ok {
				bc.inferArgs(args)
				tc.report(diag.TypNoMethod, last.Span, "trait `%s` has no method named `%s`", d.Name, name)
				return bc.errExpr(sp)
			}
			prefix := bc.sub.freshN(1+len(tr.Generics), sp)
			if head := p.Segments[len(p.Segments)-2]; len(head.Args) > 0 {
				given := tc.segmentArgs(bc.env, &head, bc.sub)
				if len(given) == len(tr.Generics) {
					copy(prefix[1:], given)
				} else {
					tc.report(diag.TypGenericArgCount, head.Span, "trait `%s` takes %d generic arguments but %d were supplied", d.Name, len(tr.Generics), len(given))
				}
			}
			return bc.callFn(fid, prefix, last.Args, nil, args, sp, expect)
		}
	}
	base, ok := bc.assocBase(p, bind, sp)
	if !ok || bc.in.IsError(base) {
		bc.inferArgs(args)
		return bc.errExpr(sp)
	}
	fid, prefix, found := bc.lookupAssocFn(base, name, sp, args, expect)
	if !found {
		bc.inferArgs(args)
		if _, _, isConst := bc.lookupAssocConst(base, name); isConst {
			tc.report(diag.TypNotCallable, last.Span, "associated constant `%s` is not a function", name)
		} else {
			tc.report(diag.TypNoMethod, last.Span, "no function or associated item named `%s` found for `%s`", name, bc.label(base))
		}
		return bc.errExpr(sp)
	}
	return bc.callFn(fid, prefix, last.Args, nil, args, sp, expect)
}

// candidate is one function a method or associated call on a type may
// refer to.
type candidate struct {
	fn    symbols.DeclID
	impl  *hir.Impl
	bound *hir.Bound
	trait symbols.DeclID
}

func (c candidate) span(tc *typeChecker) source.Span {
	if f := tc.prog.Func(c.fn); f != nil {
		return f.Span
	}
	return source.Span{}
}

// candidates lists functions named name callable on base: bounds in scope
// first, then inherent impls, then trait impls and trait defaults.
func (bc *bodyChecker) candidates(base types.TypeID, name string) []candidate {
	tc := bc.tc
	var out []candidate
	self := bc.sub.shallow(base)
	for i := range bc.env.bounds {
		bd := &bc.env.bounds[i]
		if bd.Param != self {
			continue
		}
		for _, cap := range tc.table.Capabilities(bd.Trait) {
			tr := tc.prog.Trait(cap)
			if tr == nil {
				continue
			}
			if fid, ok := tr.Methods[name]; ok && !containsFn(out, fid) {
				out = append(out, candidate{fn: fid, bound: bd, trait: cap})
			}
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, im := range tc.prog.Impls {
		if im.Trait.IsValid() {
			continue
		}
		if fid, ok := im.Methods[name]; ok && bc.implCovers(im, base) {
			out = append(out, candidate{fn: fid, impl: im})
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, im := range tc.prog.Impls {
		tr := tc.prog.Trait(im.Trait)
		if tr == nil || !bc.implCovers(im, base) {
			continue
		}
		if fid, ok := im.Methods[name]; ok {
			out = append(out, candidate{fn: fid, impl: im, trait: tr.Decl})
		} else if fid, ok := tr.Methods[name]; ok {
			out = append(out, candidate{fn: fid, impl: im, trait: tr.Decl})
		}
	}
	return out
}

func containsFn(cands []candidate, fn symbols.DeclID) bool {
	for _, c := range cands {
		if c.fn == fn {
			return true
		}
	}
	return false
}

// implCovers reports whether the self type of im unifies with ty without
// keeping any binding.
func (bc *bodyChecker) implCovers(im *hir.Impl, ty types.TypeID) bool {
	sn := bc.sub.snapshot()
	_, ok := bc.matchImplSelf(im, ty)
	bc.sub.rollback(sn)
	return ok
}

// narrow drops the impl candidates whose signature rejects the call: the
// argument types and the expected result are unified on trial and rolled
// back. Arguments inferred here are reused by callFn. When nothing fits the
// list is returned unchanged so the mismatch is reported against it.
func (bc *bodyChecker) narrow(cands []candidate, base types.TypeID, method bool, argIDs []ast.ExprID, expect types.TypeID) []candidate {
	if len(cands) < 2 {
		return cands
	}
	for _, c := range cands {
		if c.impl == nil {
			return cands
		}
	}
	args := make([]*hir.Expr, len(argIDs))
	for i, a := range argIDs {
		args[i] = bc.inferArg(a)
		bc.early[a] = args[i]
	}
	var keep []candidate
	for _, c := range cands {
		sn := bc.sub.snapshot()
		if bc.accepts(c, base, method, args, expect) {
			keep = append(keep, c)
		}
		bc.sub.rollback(sn)
	}
	if len(keep) == 0 {
		return cands
	}
	return keep
}

// accepts unifies the instantiated signature of c with the call. Bindings
// are left on the substitution; the caller rolls them back.
func (bc *bodyChecker) accepts(c candidate, base types.TypeID, method bool, args []*hir.Expr, expect types.TypeID) bool {
	f := bc.tc.prog.Func(c.fn)
	if f == nil {
		return false
	}
	targs := bc.instantiate(c, base)
	if len(targs) > len(f.Generics) {
		targs = targs[:len(f.Generics)]
	}
	targs = append(targs, bc.sub.freshN(len(f.Generics)-len(targs), f.Span)...)
	inst := func(id types.TypeID) types.TypeID {
		if len(f.Generics) == 0 {
			return id
		}
		return bc.in.Instantiate(id, f.Generics, targs)
	}
	params := f.Params
	if method {
		if len(params) == 0 {
			return false
		}
		params = params[1:]
	}
	if len(params) != len(args) {
		return false
	}
	for i, a := range args {
		if !bc.sub.unify(a.Type, inst(params[i].Type)) {
			return false
		}
	}
	return expect == types.NoTypeID || bc.sub.unify(inst(f.Ret), expect)
}

// choose picks the most specific candidate or reports the ambiguity.
func (bc *bodyChecker) choose(cands []candidate, base types.TypeID, name string, sp source.Span) candidate {
	if len(cands) == 1 {
		return cands[0]
	}
	matches := make([]hir.ImplMatch, 0, len(cands))
	for _, c := range cands {
		if c.impl == nil {
			return cands[0]
		}
		matches = append(matches, hir.ImplMatch{Impl: c.impl})
	}
	if best, ok := bc.tc.prog.MostSpecific(matches); ok {
		for _, c := range cands {
			if c.impl == best.Impl {
				return c
			}
		}
	}
	rb := bc.tc.errorf(diag.TypAmbiguousMethod, sp, "multiple applicable items named `%s` for `%s`", name, bc.label(base))
	for _, c := range cands {
		rb = rb.WithNote(c.span(bc.tc), "candidate `"+bc.tc.prog.Func(c.fn).Symbol+"`")
	}
	rb.Emit()
	return cands[0]
}

// instantiate binds the generic prefix of the chosen candidate: impl
// parameters for impl members, `Self` and trait arguments for trait methods.
func (bc *bodyChecker) instantiate(c candidate, base types.TypeID) []types.TypeID {
	tc := bc.tc
	f := tc.prog.Func(c.fn)
	switch {
	case c.bound != nil:
		tr := tc.prog.Trait(c.trait)
		prefix := []types.TypeID{base}
		if c.trait == c.bound.Trait {
			return append(prefix, c.bound.Args...)
		}
		return append(prefix, bc.sub.freshN(len(tr.Generics), f.Span)...)
	case c.impl != nil:
		args, ok := bc.matchImplSelf(c.impl, base)
		if !ok {
			args = bc.sub.freshN(len(c.impl.Generics), f.Span)
		}
		if f.Owner == c.impl.Decl {
			return args
		}
		prefix := []types.TypeID{base}
		for _, a := range c.impl.TraitArgs {
			prefix = append(prefix, bc.in.Instantiate(a, c.impl.Generics, args))
		}
		return prefix
	}
	return nil
}

// lookupAssocFn resolves `Base::name` to a function and its generic prefix.
func (bc *bodyChecker) lookupAssocFn(base types.TypeID, name string, sp source.Span, args []ast.ExprID, expect types.TypeID) (symbols.DeclID, []types.TypeID, bool) {
	cands := bc.candidates(base, name)
	if len(cands) == 0 {
		return symbols.NoDeclID, nil, false
	}
	cands = bc.narrow(cands, base, false, args, expect)
	c := bc.choose(cands, base, name, sp)
	return c.fn, bc.instantiate(c, base), true
}

func (bc *bodyChecker) methodCall(id ast.ExprID, expect types.TypeID) *hir.Expr {
	tc := bc.tc
	b := bc.b
	mc, _ := b.Exprs.MethodCall(id)
	sp := bc.span(id)
	name := b.Name(mc.Name)
	if b.Exprs.Get(mc.Recv).Kind == ast.ExprStorage {
		bc.inferArgs(mc.Args)
		tc.report(diag.TypNoMethod, mc.NameSpan, "`storage` has no method `%s`; access a field first", name)
		return bc.errExpr(sp)
	}
	recv := bc.infer(mc.Recv, types.NoTypeID)
	if recv.Kind == hir.ExprStorage {
		return bc.storageOp(recv, name, mc, sp)
	}
	recv, t := bc.autoDeref(recv)
	switch t.Kind {
	case types.KindError:
		bc.inferArgs(mc.Args)
		return bc.errExpr(sp)
	case types.KindVar:
		bc.inferArgs(mc.Args)
		tc.report(diag.TypUnresolvedGeneric, recv.Span, "type annotations needed: the receiver type must be known to call `%s`", name)
		return bc.errExpr(sp)
	}
	cands := bc.candidates(recv.Type, name)
	if len(cands) == 0 {
		bc.inferArgs(mc.Args)
		tc.report(diag.TypNoMethod, mc.NameSpan, "no method named `%s` found for `%s`", name, bc.label(recv.Type))
		return bc.errExpr(sp)
	}
	cands = bc.narrow(cands, recv.Type, true, mc.Args, expect)
	c := bc.choose(cands, recv.Type, name, mc.NameSpan)
	f := tc.prog.Func(c.fn)
	if f == nil {
		bc.inferArgs(mc.Args)
		return bc.errExpr(sp)
	}
	if !f.Flags.HasFlag(hir.FuncMethod) {
		bc.inferArgs(mc.Args)
		tc.errorf(diag.TypNoMethod, mc.NameSpan, "`%s` is an associated function, not a method", name).
			WithHelp("call it as `" + bc.label(recv.Type) + "::" + name + "(..)`").
			Emit()
		return bc.errExpr(sp)
	}
	if f.Flags.HasFlag(hir.FuncRefSelf) {
		bc.checkPlace(recv, "borrow as mutable")
	}
	return bc.callFn(c.fn, bc.instantiate(c, recv.Type), mc.Generics, recv, mc.Args, sp, expect)
}

// callFn checks a call of fn. prefix binds the leading generics (impl or
// trait parameters); explicit are turbofish arguments for the function's own
// parameters. A receiver, when set, is the first argument.
func (bc *bodyChecker) callFn(fn symbols.DeclID, prefix []types.TypeID, explicit []ast.TypeID, recv *hir.Expr, argIDs []ast.ExprID, sp source.Span, expect types.TypeID) *hir.Expr {
	tc := bc.tc
	f := tc.prog.Func(fn)
	if f == nil {
		bc.inferArgs(argIDs)
		return bc.errExpr(sp)
	}
	own := len(f.Generics) - len(prefix)
	if own < 0 {
		own = 0
		prefix = prefix[:len(f.Generics)]
	}
	targs := append([]types.TypeID(nil), prefix...)
	switch {
	case len(explicit) == 0:
		targs = append(targs, bc.sub.freshN(own, sp)...)
	case len(explicit) != own:
		tc.report(diag.TypGenericArgCount, sp, "function `%s` takes %d generic arguments but %d were supplied", f.Name, own, len(explicit))
		targs = append(targs, bc.sub.freshN(own, sp)...)
	default:
		for _, a := range explicit {
			targs = append(targs, tc.resolveType(bc.env, a, bc.sub))
		}
	}
	inst := func(id types.TypeID) types.TypeID {
		if len(f.Generics) == 0 {
			return id
		}
		return bc.in.Instantiate(id, f.Generics, targs)
	}
	ret := inst(f.Ret)
	if expect != types.NoTypeID && !bc.in.IsConcrete(bc.sub.resolve(ret)) {
		bc.sub.try(ret, expect)
	}

	params := f.Params
	args := make([]*hir.Expr, 0, len(params))
	if recv != nil {
		if len(params) > 0 {
			bc.coerce(recv, inst(params[0].Type))
			params = params[1:]
		}
		args = append(args, recv)
	}
	if len(argIDs) != len(params) {
		tc.errorf(diag.TypArgCount, sp, "function `%s` takes %d %s but %d %s supplied",
			f.Name, len(params), plural(len(params), "argument", "arguments"), len(argIDs), plural(len(argIDs), "was", "were")).
			WithNote(f.Span, "function declared here").
			Emit()
	}
	for i, a := range argIDs {
		if i < len(params) {
			args = append(args, bc.checkArg(a, inst(params[i].Type)))
		} else {
			args = append(args, bc.inferArg(a))
		}
	}
	if len(f.Generics) > 0 {
		bounds := make([]hir.Bound, len(f.Bounds))
		for i, bd := range f.Bounds {
			bounds[i] = hir.Bound{Param: inst(bd.Param), Trait: bd.Trait, Span: bd.Span}
			for _, a := range bd.Args {
				bounds[i].Args = append(bounds[i].Args, inst(a))
			}
		}
		bc.calls = append(bc.calls, pendingCall{fn: fn, args: targs, bounds: bounds, span: sp})
	}
	return bc.newExpr(hir.ExprCall, ret, sp, hir.CallData{Fn: fn, TypeArgs: targs, Args: args, Method: recv != nil})
}
