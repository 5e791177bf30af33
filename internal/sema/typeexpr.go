package sema

import (
	"fortio.org/safecast"

	"swell/internal/ast"
	"swell/internal/diag"
	"swell/internal/hir"
	"swell/internal/source"
	"swell/internal/symbols"
	"swell/internal/types"
)

// resolveType turns a syntactic type into an interned one. Inside bodies sub
// is set and `_` or omitted generic arguments become placeholders.
func (tc *typeChecker) resolveType(env *itemEnv, id ast.TypeID, sub *subst) types.TypeID {
	if !id.IsValid() {
		return tc.builtins.Unit
	}
	b := env.b
	te := b.Types.Get(id)
	switch te.Kind {
	case ast.TypePath:
		tp, _ := b.Types.Path(id)
		bind, ok := env.binding(tp.Path.Span)
		if !ok {
			return tc.builtins.Error
		}
		return tc.pathType(env, &tp.Path, bind, sub)
	case ast.TypeTuple:
		tt, _ := b.Types.Tuple(id)
		elems := make([]types.TypeID, len(tt.Elems))
		for i, e := range tt.Elems {
			elems[i] = tc.resolveType(env, e, sub)
		}
		return tc.types.Tuple(elems...)
	case ast.TypeArray, ast.TypeStrArray:
		arr, _ := b.Types.Array(id)
		n := tc.arrayLen(env, arr.Len)
		if te.Kind == ast.TypeStrArray {
			return tc.types.StrArray(n)
		}
		return tc.types.Array(tc.resolveType(env, arr.Elem, sub), n)
	case ast.TypeRef:
		ref, _ := b.Types.Ref(id)
		return tc.types.Ref(tc.resolveType(env, ref.Inner, sub), ref.Mut)
	case ast.TypeNever:
		return tc.builtins.Never
	case ast.TypeInfer:
		if sub != nil {
			return sub.fresh(te.Span)
		}
		tc.report(diag.TypUnresolvedGeneric, te.Span, "the placeholder `_` is not allowed in item signatures")
		return tc.builtins.Error
	}
	return tc.builtins.Error
}

func (tc *typeChecker) segmentArgs(env *itemEnv, seg *ast.PathSegment, sub *subst) []types.TypeID {
	if seg == nil || len(seg.Args) == 0 {
		return nil
	}
	out := make([]types.TypeID, len(seg.Args))
	for i, a := range seg.Args {
		out[i] = tc.resolveType(env, a, sub)
	}
	return out
}

func (tc *typeChecker) pathType(env *itemEnv, p *ast.Path, bind symbols.Binding, sub *subst) types.TypeID {
	head := &p.Segments[len(p.Segments)-1-bind.Rest]
	args := tc.segmentArgs(env, head, sub)
	var base types.TypeID
	switch bind.Kind {
	case symbols.BindBuiltin:
		return tc.builtinType(p, bind.Builtin, args, sub)
	case symbols.BindGeneric:
		gens := tc.generics[bind.Decl]
		if bind.Index >= len(gens) {
			return tc.builtins.Error
		}
		base = gens[bind.Index]
	case symbols.BindSelfType:
		base = env.self
		if base == types.NoTypeID {
			return tc.builtins.Error
		}
	case symbols.BindDecl:
		d := tc.decl(bind.Decl)
		switch d.Kind {
		case symbols.DeclStruct, symbols.DeclEnum:
			base = tc.nominal(d, args, p.Span, sub)
		case symbols.DeclAssocType:
			base = tc.assocDecl(env, d)
		default:
			return tc.builtins.Error
		}
	default:
		return tc.builtins.Error
	}
	if bind.Rest == 0 {
		return base
	}
	if bind.Rest > 1 {
		tc.report(diag.TypNoField, p.Span, "`%s` has no nested associated items", tc.typeLabel(base))
		return tc.builtins.Error
	}
	last := p.Segments[len(p.Segments)-1]
	return tc.projection(env, base, env.b.SegmentName(last), last.Span)
}

func (tc *typeChecker) builtinType(p *ast.Path, b symbols.Builtin, args []types.TypeID, sub *subst) types.TypeID {
	want := 0
	switch b {
	case symbols.BuiltinStorageMap:
		want = 2
	case symbols.BuiltinStorageVec:
		want = 1
	}
	if len(args) != want {
		if len(args) == 0 && sub != nil {
			args = sub.freshN(want, p.Span)
		} else {
			tc.report(diag.TypGenericArgCount, p.Span, "`%s` takes %d generic arguments but %d were supplied", b, want, len(args))
			return tc.builtins.Error
		}
	}
	switch b {
	case symbols.BuiltinU8:
		return tc.builtins.U8
	case symbols.BuiltinU16:
		return tc.builtins.U16
	case symbols.BuiltinU32:
		return tc.builtins.U32
	case symbols.BuiltinU64:
		return tc.builtins.U64
	case symbols.BuiltinU256:
		return tc.builtins.U256
	case symbols.BuiltinBool:
		return tc.builtins.Bool
	case symbols.BuiltinB256:
		return tc.builtins.B256
	case symbols.BuiltinStr:
		return tc.builtins.Str
	case symbols.BuiltinContract:
		return tc.builtins.Contract
	case symbols.BuiltinStorageMap:
		return tc.types.StorageMap(args[0], args[1])
	case symbols.BuiltinStorageVec:
		return tc.types.StorageVec(args[0])
	}
	return tc.builtins.Error
}

// nominal instantiates a struct or enum with explicit args; without args
// generic nominals get placeholders inside bodies.
func (tc *typeChecker) nominal(d *symbols.Decl, args []types.TypeID, sp source.Span, sub *subst) types.TypeID {
	want := len(tc.generics[d.ID])
	if len(args) != want {
		switch {
		case len(args) == 0 && sub != nil:
			args = sub.freshN(want, sp)
		case len(args) == 0:
			tc.report(diag.TypGenericArgCount, sp, "missing generic arguments for %s `%s`: expected %d", d.Kind, d.Name, want)
			return tc.builtins.Error
		default:
			tc.report(diag.TypGenericArgCount, sp, "%s `%s` takes %d generic arguments but %d were supplied", d.Kind, d.Name, want, len(args))
			return tc.builtins.Error
		}
	}
	if d.Kind == symbols.DeclEnum {
		return tc.types.Enum(d.ID, args...)
	}
	return tc.types.Struct(d.ID, args...)
}

// assocDecl is a bare associated type name used inside its trait or impl.
func (tc *typeChecker) assocDecl(env *itemEnv, d *symbols.Decl) types.TypeID {
	parent := tc.decl(d.Parent)
	switch parent.Kind {
	case symbols.DeclTrait:
		self := env.self
		if env.owner != parent.ID {
			self = tc.types.SelfType(parent.ID)
		}
		return tc.types.Assoc(self, parent.ID, d.Name)
	case symbols.DeclImpl:
		if im := tc.prog.Impl(parent.ID); im != nil {
			if ty, ok := im.Types[d.Name]; ok {
				return ty
			}
			if im.Trait.IsValid() {
				return tc.types.Assoc(im.Self, im.Trait, d.Name)
			}
		}
	}
	return tc.builtins.Error
}

// projection resolves `Base::Name` for an associated type, through the
// bounds in scope for generic bases or through the impl for `Self`.
func (tc *typeChecker) projection(env *itemEnv, base types.TypeID, name string, sp source.Span) types.TypeID {
	if tc.types.IsError(base) {
		return base
	}
	if trait, ok := tc.assocTrait(env, base, name); ok {
		return tc.types.Assoc(base, trait, name)
	}
	if im := tc.prog.Impl(env.owner); im != nil && base == im.Self && im.Trait.IsValid() {
		if ty, ok := im.Types[name]; ok {
			return ty
		}
		if tr := tc.prog.Trait(im.Trait); tr != nil {
			if _, ok := tr.Types[name]; ok {
				return tc.types.Assoc(base, im.Trait, name)
			}
		}
	}
	tc.report(diag.TypNoField, sp, "associated type `%s` not found for `%s`", name, tc.typeLabel(base))
	return tc.builtins.Error
}

// assocTrait finds the trait providing associated type name for base among
// the bounds of env, supertraits included.
func (tc *typeChecker) assocTrait(env *itemEnv, base types.TypeID, name string) (symbols.DeclID, bool) {
	for _, bd := range env.bounds {
		if bd.Param != base {
			continue
		}
		for _, cap := range tc.table.Capabilities(bd.Trait) {
			if tr := tc.prog.Trait(cap); tr != nil {
				if _, ok := tr.Types[name]; ok {
					return cap, true
				}
			}
		}
	}
	return symbols.NoDeclID, false
}

// arrayLen evaluates the length expression of an array type.
func (tc *typeChecker) arrayLen(env *itemEnv, id ast.ExprID) uint32 {
	if !id.IsValid() {
		return 0
	}
	bc := tc.newBody(env, nil)
	e := bc.check(id, bc.sub.freshInt(env.b.Exprs.Get(id).Span))
	bc.finish()
	v, ok := tc.eval(e)
	if !ok || v.Kind != hir.ValueInt {
		return 0
	}
	n, err := safecast.Conv[uint32](v.Int.Uint64())
	if err != nil || !v.Int.IsUint64() {
		tc.report(diag.TypConstEval, e.Span, "array length %s does not fit in u32", v.Int)
		return 0
	}
	return n
}
