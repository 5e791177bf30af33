package sema

import (
	"swell/internal/ast"
	"swell/internal/diag"
	"swell/internal/hir"
	"swell/internal/source"
	"swell/internal/symbols"
	"swell/internal/types"
)

func (bc *bodyChecker) pathExpr(p *ast.Path, sp source.Span, expect types.TypeID) *hir.Expr {
	bind, ok := bc.env.binding(p.Span)
	if !ok {
		return bc.errExpr(sp)
	}
	return bc.valueFromBinding(p, bind, sp, expect)
}

func (bc *bodyChecker) valueFromBinding(p *ast.Path, bind symbols.Binding, sp source.Span, expect types.TypeID) *hir.Expr {
	tc := bc.tc
	if bind.Rest > 0 {
		return bc.assocValue(p, bind, sp, expect)
	}
	switch bind.Kind {
	case symbols.BindLocal:
		info, ok := bc.locals[bind.Local]
		if !ok {
			return bc.errExpr(sp)
		}
		return bc.newExpr(hir.ExprLocal, info.ty, sp, hir.LocalData{Local: bind.Local, Name: info.name})
	case symbols.BindBuiltin:
		tc.report(diag.TypNotCallable, sp, "`%s` must be called", bind.Builtin)
		return bc.errExpr(sp)
	case symbols.BindDecl:
	default:
		return bc.errExpr(sp)
	}
	d := tc.decl(bind.Decl)
	switch d.Kind {
	case symbols.DeclConst:
		c := tc.ensureConst(d.ID)
		if c == nil {
			return bc.errExpr(sp)
		}
		return bc.newExpr(hir.ExprConst, c.Type, sp, hir.ConstData{Decl: d.ID, Name: d.Name})
	case symbols.DeclConfigurable:
		c := tc.configurable(d.ID)
		if c == nil {
			return bc.errExpr(sp)
		}
		return bc.newExpr(hir.ExprConfigurable, c.Type, sp, hir.ConstData{Decl: d.ID, Name: d.Name})
	case symbols.DeclVariant:
		enum := bc.enumType(p, d, sp, expect)
		payload := bc.in.VariantTypes(enum)
		if d.Index < len(payload) && payload[d.Index] != tc.builtins.Unit && !bc.in.HasErrors(payload[d.Index]) {
			tc.errorf(diag.TypArgCount, sp, "variant `%s` carries a value of type `%s`", bc.b.PathString(p), bc.label(payload[d.Index])).
				WithHelp("construct it with `" + bc.b.PathString(p) + "(..)`").
				Emit()
		}
		return bc.newExpr(hir.ExprVariant, enum, sp, hir.VariantData{Enum: d.Parent, Index: d.Index, Name: d.Name})
	case symbols.DeclFn:
		tc.errorf(diag.TypNotCallable, sp, "function `%s` must be called", d.Name).
			WithHelp("functions are not values; add `()` to call it").
			Emit()
		return bc.errExpr(sp)
	}
	return bc.errExpr(sp)
}

// enumType instantiates the enum owning variant d: explicit arguments on the
// enum segment, otherwise placeholders guided by expect.
func (bc *bodyChecker) enumType(p *ast.Path, d *symbols.Decl, sp source.Span, expect types.TypeID) types.TypeID {
	tc := bc.tc
	enum := tc.decl(d.Parent)
	var args []types.TypeID
	if n := len(p.Segments); n >= 2 {
		args = tc.segmentArgs(bc.env, &p.Segments[n-2], bc.sub)
	}
	ty := tc.nominal(enum, args, sp, bc.sub)
	if _, et := bc.resolved(expect); et.Kind == types.KindEnum && et.Decl == enum.ID {
		bc.sub.try(ty, expect)
	}
	return ty
}

// assocBase computes the type named by the resolved head of an associated
// path such as `S::new`, `T::X` or `Self::m`.
func (bc *bodyChecker) assocBase(p *ast.Path, bind symbols.Binding, sp source.Span) (types.TypeID, bool) {
	tc := bc.tc
	if bind.Rest > 1 {
		tc.report(diag.TypNoField, sp, "`%s` has no nested associated items", bc.b.PathString(p))
		return tc.builtins.Error, false
	}
	head := &p.Segments[len(p.Segments)-1-bind.Rest]
	switch bind.Kind {
	case symbols.BindGeneric:
		gens := tc.generics[bind.Decl]
		if bind.Index < len(gens) {
			return gens[bind.Index], true
		}
	case symbols.BindSelfType:
		if bc.env.self != types.NoTypeID {
			return bc.env.self, true
		}
	case symbols.BindBuiltin:
		return tc.builtinType(p, bind.Builtin, tc.segmentArgs(bc.env, head, bc.sub), bc.sub), true
	case symbols.BindDecl:
		d := tc.decl(bind.Decl)
		switch d.Kind {
		case symbols.DeclStruct, symbols.DeclEnum:
			return tc.nominal(d, tc.segmentArgs(bc.env, head, bc.sub), sp, bc.sub), true
		case symbols.DeclAssocType:
			return tc.assocDecl(bc.env, d), true
		}
	}
	return tc.builtins.Error, false
}

// assocValue resolves `Base::NAME` to an associated constant.
func (bc *bodyChecker) assocValue(p *ast.Path, bind symbols.Binding, sp source.Span, expect types.TypeID) *hir.Expr {
	tc := bc.tc
	name := bc.b.SegmentName(p.Segments[len(p.Segments)-1])
	if bind.Kind == symbols.BindDecl {
		switch d := tc.decl(bind.Decl); d.Kind {
		case symbols.DeclTrait, symbols.DeclAbi:
			tc.report(diag.TypUnresolvedGeneric, sp, "cannot refer to `%s` of %s `%s` without a self type", name, d.Kind, d.Name)
			return bc.errExpr(sp)
		}
	}
	base, ok := bc.assocBase(p, bind, sp)
	if !ok || bc.in.IsError(base) {
		return bc.errExpr(sp)
	}
	if ty, decl, found := bc.lookupAssocConst(base, name); found {
		return bc.newExpr(hir.ExprConst, ty, sp, hir.ConstData{Decl: decl, Name: name, Self: base})
	}
	if len(bc.candidates(base, name)) > 0 {
		tc.report(diag.TypNotCallable, sp, "associated function `%s` must be called", name)
		return bc.errExpr(sp)
	}
	if !bc.in.HasErrors(bc.sub.resolve(base)) {
		tc.report(diag.TypNoField, sp, "no associated item named `%s` found for `%s`", name, bc.label(base))
	}
	return bc.errExpr(sp)
}

// lookupAssocConst finds an associated constant of base: trait bounds for
// parameters, then inherent impls, then trait impls with their defaults.
func (bc *bodyChecker) lookupAssocConst(base types.TypeID, name string) (types.TypeID, symbols.DeclID, bool) {
	tc := bc.tc
	for _, bd := range bc.env.bounds {
		if bd.Param != bc.sub.shallow(base) {
			continue
		}
		for _, cap := range tc.table.Capabilities(bd.Trait) {
			tr := tc.prog.Trait(cap)
			if tr == nil {
				continue
			}
			if c, ok := tr.Consts[name]; ok {
				return bc.in.ReplaceSelf(c.Type, tr.Self, base), c.Decl, true
			}
		}
	}
	for _, inherent := range []bool{true, false} {
		for _, im := range tc.prog.Impls {
			if im.Trait.IsValid() == inherent {
				continue
			}
			if _, ok := bc.matchImplSelf(im, base); !ok {
				continue
			}
			if header, ok := im.Consts[name]; ok {
				c := tc.ensureConst(header.Decl)
				if c == nil {
					return tc.builtins.Error, header.Decl, true
				}
				return c.Type, c.Decl, true
			}
			if tr := tc.prog.Trait(im.Trait); tr != nil {
				if c, ok := tr.Consts[name]; ok {
					return bc.in.ReplaceSelf(c.Type, tr.Self, base), c.Decl, true
				}
			}
		}
	}
	return types.NoTypeID, symbols.NoDeclID, false
}

// matchImplSelf unifies the self type of im, instantiated with fresh
// placeholders, with ty. The impl arguments are returned on success.
func (bc *bodyChecker) matchImplSelf(im *hir.Impl, ty types.TypeID) ([]types.TypeID, bool) {
	if r, t := bc.resolved(ty); bc.sub.isVar(r) || t.Kind == types.KindError {
		// открытый тип не выбирает impl
		return nil, false
	}
	args := bc.sub.freshN(len(im.Generics), im.Span)
	self := bc.in.Instantiate(im.Self, im.Generics, args)
	if !bc.sub.try(self, ty) {
		return nil, false
	}
	return args, true
}

func (bc *bodyChecker) structLit(st *ast.ExprStructData, sp source.Span, expect types.TypeID) *hir.Expr {
	tc := bc.tc
	bind, ok := bc.env.binding(st.Path.Span)
	if !ok {
		bc.inferFieldsOnly(st)
		return bc.errExpr(sp)
	}
	var ty types.TypeID
	switch bind.Kind {
	case symbols.BindDecl:
		d := tc.decl(bind.Decl)
		if d.Kind != symbols.DeclStruct || bind.Rest > 0 {
			tc.report(diag.TypMismatch, st.Path.Span, "expected a struct, found %s `%s`", d.Kind, d.Name)
			bc.inferFieldsOnly(st)
			return bc.errExpr(sp)
		}
		ty = tc.nominal(d, tc.segmentArgs(bc.env, st.Path.Last(), bc.sub), sp, bc.sub)
	case symbols.BindSelfType:
		ty = bc.env.self
	case symbols.BindBuiltin:
		if bind.Builtin == symbols.BuiltinStorageMap || bind.Builtin == symbols.BuiltinStorageVec {
			ty = tc.builtinType(&st.Path, bind.Builtin, tc.segmentArgs(bc.env, st.Path.Last(), bc.sub), bc.sub)
			if len(st.Fields) > 0 {
				tc.report(diag.TypUnexpectedField, st.Fields[0].Span, "`%s` has no fields", bind.Builtin)
			}
			if _, et := bc.resolved(expect); et.Kind == bc.in.Kind(ty) {
				bc.sub.try(ty, expect)
			}
			return bc.newExpr(hir.ExprStructLit, ty, sp, hir.StructLitData{})
		}
	}
	_, t := bc.resolved(ty)
	if t.Kind != types.KindStruct {
		if t.Kind != types.KindError {
			tc.report(diag.TypMismatch, st.Path.Span, "`%s` is not a struct", bc.label(ty))
		}
		bc.inferFieldsOnly(st)
		return bc.errExpr(sp)
	}
	if _, et := bc.resolved(expect); et.Kind == types.KindStruct && et.Decl == t.Decl {
		bc.sub.try(ty, expect)
	}
	info, _ := tc.types.StructInfo(t.Decl)
	fieldTys := tc.types.StructFields(bc.sub.shallow(ty))
	values := make([]*hir.Expr, len(info.Fields))
	seen := make([]source.Span, len(info.Fields))
	failed := false
	for _, f := range st.Fields {
		name := bc.b.Name(f.Name)
		idx := info.FieldIndex(name)
		if idx < 0 {
			tc.report(diag.TypUnexpectedField, f.Span, "struct `%s` has no field named `%s`", info.Name, name)
			bc.fieldValue(f, types.NoTypeID)
			failed = true
			continue
		}
		if values[idx] != nil {
			tc.errorf(diag.TypDuplicateField, f.Span, "field `%s` specified more than once", name).
				WithNote(seen[idx], "first use of `"+name+"`").
				Emit()
			bc.fieldValue(f, fieldTys[idx])
			failed = true
			continue
		}
		values[idx] = bc.fieldValue(f, fieldTys[idx])
		seen[idx] = f.Span
	}
	var missing []string
	for i, v := range values {
		if v == nil {
			missing = append(missing, "`"+info.Fields[i].Name+"`")
		}
	}
	if len(missing) > 0 {
		tc.report(diag.TypMissingField, sp, "missing %s %s in initializer of `%s`", plural(len(missing), "field", "fields"), joinList(missing), bc.label(ty))
		failed = true
	}
	if failed {
		return bc.errExpr(sp)
	}
	return bc.newExpr(hir.ExprStructLit, ty, sp, hir.StructLitData{Decl: t.Decl, Fields: values})
}

// fieldValue checks one field initializer; shorthand fields read the
// binding recorded at the field span.
func (bc *bodyChecker) fieldValue(f ast.FieldInit, ty types.TypeID) *hir.Expr {
	if f.Value.IsValid() {
		return bc.check(f.Value, ty)
	}
	bind, ok := bc.env.binding(f.Span)
	if !ok {
		return bc.errExpr(f.Span)
	}
	name := bc.b.Name(f.Name)
	p := &ast.Path{Segments: []ast.PathSegment{{Kind: ast.SegIdent, Name: f.Name, Span: f.Span}}, Span: f.Span}
	e := bc.valueFromBinding(p, bind, f.Span, ty)
	if e.Kind == hir.ExprError && bind.Kind != symbols.BindLocal {
		bc.tc.report(diag.TypMismatch, f.Span, "shorthand field `%s` does not name a value", name)
	}
	bc.coerce(e, ty)
	return e
}

func (bc *bodyChecker) inferFieldsOnly(st *ast.ExprStructData) {
	for _, f := range st.Fields {
		if f.Value.IsValid() {
			bc.infer(f.Value, types.NoTypeID)
		}
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func joinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	out := ""
	for i, it := range items[:len(items)-1] {
		if i > 0 {
			out += ", "
		}
		out += it
	}
	return out + " and " + items[len(items)-1]
}
