package sema

import (
	"swell/internal/ast"
	"swell/internal/diag"
	"swell/internal/hir"
	"swell/internal/source"
	"swell/internal/symbols"
	"swell/internal/types"
)

func (bc *bodyChecker) newPat(kind hir.PatKind, ty types.TypeID, sp source.Span) *hir.Pattern {
	p := &hir.Pattern{Kind: kind, Type: ty, Span: sp}
	bc.pats = append(bc.pats, p)
	return p
}

func (bc *bodyChecker) errPat(sp source.Span) *hir.Pattern {
	return bc.newPat(hir.PatError, bc.tc.builtins.Error, sp)
}

// pattern checks a pattern against the scrutinee type expect and types the
// locals it binds.
func (bc *bodyChecker) pattern(id ast.PatID, expect types.TypeID) *hir.Pattern {
	b := bc.b
	node := b.Pats.Get(id)
	if node == nil {
		return bc.errPat(source.Span{})
	}
	sp := node.Span
	switch node.Kind {
	case ast.PatWild:
		return bc.newPat(hir.PatWild, expect, sp)
	case ast.PatBind:
		data, _ := b.Pats.Bind(id)
		return bc.bindPat(sp, b.Name(data.Name), data.Mut, expect)
	case ast.PatLit:
		data, _ := b.Pats.Lit(id)
		return bc.litPat(data, sp, expect)
	case ast.PatTuple:
		data, _ := b.Pats.List(id)
		return bc.tuplePat(data.Elems, sp, expect)
	case ast.PatPath, ast.PatVariant:
		data, _ := b.Pats.Path(id)
		return bc.pathPat(data, node.Kind == ast.PatVariant, sp, expect)
	case ast.PatStruct:
		data, _ := b.Pats.Struct(id)
		return bc.structPat(data, sp, expect)
	case ast.PatOr:
		data, _ := b.Pats.List(id)
		p := bc.newPat(hir.PatOr, expect, sp)
		for _, el := range data.Elems {
			p.Elems = append(p.Elems, bc.pattern(el, expect))
		}
		return p
	}
	return bc.errPat(sp)
}

// bindPat introduces the local recorded at sp. Alternatives of an or-pattern
// share the local and must agree on its type.
func (bc *bodyChecker) bindPat(sp source.Span, name string, mut bool, expect types.TypeID) *hir.Pattern {
	local, ok := bc.env.res.Binder(sp)
	if !ok {
		return bc.errPat(sp)
	}
	if info, seen := bc.locals[local]; seen {
		if !bc.sub.unify(info.ty, expect) {
			bc.tc.report(diag.TypMismatch, sp, "variable `%s` is bound with type `%s` in one alternative and `%s` in another", name, bc.label(info.ty), bc.label(expect))
		}
	} else {
		bc.locals[local] = localInfo{ty: expect, mut: mut, name: name}
	}
	p := bc.newPat(hir.PatBind, expect, sp)
	p.Local, p.Name, p.Mut = local, name, mut
	return p
}

func (bc *bodyChecker) litPat(data *ast.PatLitData, sp source.Span, expect types.TypeID) *hir.Pattern {
	if data.Neg {
		bc.tc.report(diag.TypBadPattern, sp, "negative literal patterns are not allowed: integers are unsigned")
		return bc.errPat(sp)
	}
	e := bc.check(data.Lit, expect)
	lit, ok := e.Data.(hir.LiteralData)
	if !ok {
		return bc.errPat(sp)
	}
	p := bc.newPat(hir.PatLiteral, expect, sp)
	p.Lit = &lit
	p.Type = e.Type
	return p
}

func (bc *bodyChecker) tuplePat(elems []ast.PatID, sp source.Span, expect types.TypeID) *hir.Pattern {
	_, t := bc.resolved(expect)
	var tys []types.TypeID
	switch {
	case t.Kind == types.KindTuple && len(t.Args) == len(elems):
		tys = t.Args
	case t.Kind == types.KindUnit && len(elems) == 0:
	case t.Kind == types.KindVar || t.Kind == types.KindError:
		tys = bc.sub.freshN(len(elems), sp)
		bc.sub.unify(bc.in.Tuple(tys...), expect)
	default:
		bc.tc.report(diag.TypMismatch, sp, "mismatched types: expected `%s`, found a tuple pattern with %d %s", bc.label(expect), len(elems), plural(len(elems), "element", "elements"))
		for _, el := range elems {
			bc.pattern(el, bc.tc.builtins.Error)
		}
		return bc.errPat(sp)
	}
	p := bc.newPat(hir.PatTuple, expect, sp)
	for i, el := range elems {
		p.Elems = append(p.Elems, bc.pattern(el, tys[i]))
	}
	return p
}

func (bc *bodyChecker) pathPat(data *ast.PatPathData, withArgs bool, sp source.Span, expect types.TypeID) *hir.Pattern {
	tc := bc.tc
	bind, ok := bc.env.binding(data.Path.Span)
	if !ok {
		bc.skipPats(data.Args)
		return bc.errPat(sp)
	}
	if bind.Kind != symbols.BindDecl || bind.Rest > 0 {
		bc.skipPats(data.Args)
		tc.report(diag.TypBadPattern, sp, "expected a variant or constant, found `%s`", bc.b.PathString(&data.Path))
		return bc.errPat(sp)
	}
	d := tc.decl(bind.Decl)
	switch d.Kind {
	case symbols.DeclVariant:
		enum := bc.enumType(&data.Path, d, sp, expect)
		if !bc.sub.unify(enum, expect) {
			bc.mismatch(sp, expect, enum)
			bc.skipPats(data.Args)
			return bc.errPat(sp)
		}
		payloads := bc.in.VariantTypes(bc.sub.resolve(enum))
		if d.Index >= len(payloads) {
			return bc.errPat(sp)
		}
		payload := payloads[d.Index]
		p := bc.newPat(hir.PatVariant, expect, sp)
		p.Decl, p.Index, p.Name = d.Parent, d.Index, d.Name
		switch {
		case payload == tc.builtins.Unit && len(data.Args) > 0:
			bc.skipPats(data.Args)
			tc.report(diag.TypBadPattern, sp, "variant `%s` has no payload", bc.b.PathString(&data.Path))
			return bc.errPat(sp)
		case payload == tc.builtins.Unit:
		case !withArgs || len(data.Args) == 0:
			tc.errorf(diag.TypBadPattern, sp, "variant `%s` carries a value of type `%s`", bc.b.PathString(&data.Path), bc.label(payload)).
				WithHelp("use `" + bc.b.PathString(&data.Path) + "(_)` to ignore it").
				Emit()
			return bc.errPat(sp)
		case len(data.Args) == 1:
			p.Elems = []*hir.Pattern{bc.pattern(data.Args[0], payload)}
		default:
			p.Elems = []*hir.Pattern{bc.tuplePat(data.Args, sp, payload)}
		}
		return p
	case symbols.DeclConst:
		bc.skipPats(data.Args)
		c := tc.ensureConst(d.ID)
		if c == nil {
			return bc.errPat(sp)
		}
		if !bc.sub.unify(c.Type, expect) {
			bc.mismatch(sp, expect, c.Type)
		}
		p := bc.newPat(hir.PatConst, expect, sp)
		p.Decl, p.Name, p.Value = d.ID, d.Name, c.Value
		if withArgs {
			tc.report(diag.TypBadPattern, sp, "constant `%s` cannot take arguments", d.Name)
		}
		return p
	}
	bc.skipPats(data.Args)
	tc.report(diag.TypBadPattern, sp, "expected a variant or constant, found %s `%s`", d.Kind, d.Name)
	return bc.errPat(sp)
}

func (bc *bodyChecker) skipPats(ids []ast.PatID) {
	for _, id := range ids {
		bc.pattern(id, bc.tc.builtins.Error)
	}
}

func (bc *bodyChecker) structPat(data *ast.PatStructData, sp source.Span, expect types.TypeID) *hir.Pattern {
	tc := bc.tc
	bind, ok := bc.env.binding(data.Path.Span)
	skip := func() *hir.Pattern {
		for _, f := range data.Fields {
			if f.Pat.IsValid() {
				bc.pattern(f.Pat, tc.builtins.Error)
			} else {
				bc.bindPat(f.Span, bc.b.Name(f.Name), false, tc.builtins.Error)
			}
		}
		return bc.errPat(sp)
	}
	if !ok || bind.Rest > 0 {
		return skip()
	}
	var ty types.TypeID
	switch bind.Kind {
	case symbols.BindDecl:
		d := tc.decl(bind.Decl)
		if d.Kind != symbols.DeclStruct {
			tc.report(diag.TypBadPattern, data.Path.Span, "expected a struct, found %s `%s`", d.Kind, d.Name)
			return skip()
		}
		ty = tc.nominal(d, tc.segmentArgs(bc.env, data.Path.Last(), bc.sub), sp, bc.sub)
	case symbols.BindSelfType:
		ty = bc.env.self
	default:
		return skip()
	}
	if !bc.sub.unify(ty, expect) {
		bc.mismatch(sp, expect, ty)
		return skip()
	}
	_, t := bc.resolved(ty)
	info, ok := tc.types.StructInfo(t.Decl)
	if t.Kind != types.KindStruct || !ok {
		return skip()
	}
	fieldTys := tc.types.StructFields(bc.sub.resolve(ty))
	p := bc.newPat(hir.PatStruct, expect, sp)
	p.Decl = t.Decl
	seen := make(map[int]bool, len(data.Fields))
	for _, f := range data.Fields {
		name := bc.b.Name(f.Name)
		idx := info.FieldIndex(name)
		if idx < 0 {
			tc.report(diag.TypNoField, f.Span, "struct `%s` has no field named `%s`", info.Name, name)
			continue
		}
		if seen[idx] {
			tc.report(diag.TypDuplicateField, f.Span, "field `%s` bound more than once", name)
			continue
		}
		seen[idx] = true
		var sub *hir.Pattern
		if f.Pat.IsValid() {
			sub = bc.pattern(f.Pat, fieldTys[idx])
		} else {
			sub = bc.bindPat(f.Span, name, false, fieldTys[idx])
		}
		p.Fields = append(p.Fields, hir.FieldPat{Index: idx, Pat: sub})
	}
	if !data.Rest {
		var missing []string
		for i, f := range info.Fields {
			if !seen[i] {
				missing = append(missing, "`"+f.Name+"`")
			}
		}
		if len(missing) > 0 {
			tc.errorf(diag.TypMissingField, sp, "pattern does not mention %s %s", plural(len(missing), "field", "fields"), joinList(missing)).
				WithHelp("add `..` to ignore the remaining fields").
				Emit()
		}
	}
	return p
}
