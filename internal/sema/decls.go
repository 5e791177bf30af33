package sema

import (
	"strings"

	"fortio.org/safecast"

	"swell/internal/ast"
	"swell/internal/diag"
	"swell/internal/hir"
	"swell/internal/symbols"
	"swell/internal/types"
)

func genericParamsOf(b *ast.Builder, d *symbols.Decl) []ast.GenericParam {
	switch d.Kind {
	case symbols.DeclFn:
		if fn, ok := b.Items.Fn(d.Item); ok {
			return fn.Generics
		}
	case symbols.DeclStruct:
		if st, ok := b.Items.Struct(d.Item); ok {
			return st.Generics
		}
	case symbols.DeclEnum:
		if en, ok := b.Items.Enum(d.Item); ok {
			return en.Generics
		}
	case symbols.DeclTrait:
		if tr, ok := b.Items.Trait(d.Item); ok {
			return tr.Generics
		}
	case symbols.DeclImpl:
		if im, ok := b.Items.Impl(d.Item); ok {
			return im.Generics
		}
	}
	return nil
}

// collectGenerics allocates a parameter type for every generic parameter
// list in the package.
func (tc *typeChecker) collectGenerics() {
	for i := range tc.table.Decls.All() {
		d := &tc.table.Decls.All()[i]
		params := genericParamsOf(tc.builder(d.ID), d)
		if len(params) == 0 {
			continue
		}
		b := tc.builder(d.ID)
		out := make([]types.TypeID, len(params))
		for j, gp := range params {
			idx, err := safecast.Conv[uint32](j)
			if err != nil {
				panic(err)
			}
			out[j] = tc.types.Generic(d.ID, idx, b.Name(gp.Name))
		}
		tc.generics[d.ID] = out
	}
}

func (tc *typeChecker) declsOf(kind symbols.DeclKind) []symbols.DeclID {
	var out []symbols.DeclID
	for _, d := range tc.table.Decls.All() {
		if d.Kind == kind {
			out = append(out, d.ID)
		}
	}
	return out
}

func (tc *typeChecker) registerNominals() {
	for _, id := range tc.declsOf(symbols.DeclStruct) {
		d := tc.decl(id)
		env := tc.module(d.Module)
		st, _ := env.b.Items.Struct(d.Item)
		info := &types.StructInfo{Decl: id, Name: d.Name, Params: tc.generics[id]}
		tc.types.RegisterStruct(info)
		for _, f := range st.Fields {
			info.Fields = append(info.Fields, types.StructField{
				Name: env.b.Name(f.Name), Type: tc.resolveType(env, f.Type, nil), Public: f.Public, Span: f.Span,
			})
		}
	}
	for _, id := range tc.declsOf(symbols.DeclEnum) {
		d := tc.decl(id)
		env := tc.module(d.Module)
		en, _ := env.b.Items.Enum(d.Item)
		info := &types.EnumInfo{Decl: id, Name: d.Name, Params: tc.generics[id]}
		tc.types.RegisterEnum(info)
		for _, v := range en.Variants {
			ty := tc.builtins.Unit
			if v.Type.IsValid() {
				ty = tc.resolveType(env, v.Type, nil)
			}
			info.Variants = append(info.Variants, types.Variant{Name: env.b.Name(v.Name), Type: ty, Span: v.Span})
		}
	}
}

// bound resolves one `Trait<Args>` bound on param.
func (tc *typeChecker) bound(env *itemEnv, param types.TypeID, p *ast.Path) (hir.Bound, bool) {
	bind, ok := env.binding(p.Span)
	if !ok || bind.Kind != symbols.BindDecl || bind.Rest > 0 {
		return hir.Bound{}, false
	}
	tr := tc.decl(bind.Decl)
	if tr.Kind != symbols.DeclTrait {
		tc.report(diag.ResNotATrait, p.Span, "`%s` is an %s and cannot be used as a bound", tr.Name, tr.Kind)
		return hir.Bound{}, false
	}
	var args []types.TypeID
	if last := p.Last(); last != nil {
		for _, a := range last.Args {
			args = append(args, tc.resolveType(env, a, nil))
		}
	}
	if want := len(tc.generics[tr.ID]); len(args) != 0 && len(args) != want {
		tc.report(diag.TypGenericArgCount, p.Span, "trait `%s` takes %d generic arguments but %d were supplied", tr.Name, want, len(args))
		args = nil
	}
	return hir.Bound{Param: param, Trait: tr.ID, Args: args, Span: p.Span}, true
}

func (tc *typeChecker) paramBounds(env *itemEnv, owner symbols.DeclID, params []ast.GenericParam, where []ast.WherePred) []hir.Bound {
	var out []hir.Bound
	gens := tc.generics[owner]
	for i, gp := range params {
		for j := range gp.Bounds {
			if bd, ok := tc.bound(env, gens[i], &gp.Bounds[j]); ok {
				out = append(out, bd)
			}
		}
	}
	for _, pred := range where {
		ty := tc.resolveType(env, pred.Type, nil)
		for j := range pred.Bounds {
			if bd, ok := tc.bound(env, ty, &pred.Bounds[j]); ok {
				out = append(out, bd)
			}
		}
	}
	return out
}

func (tc *typeChecker) registerTraits() {
	ids := tc.declsOf(symbols.DeclTrait)
	for _, id := range ids {
		d := tc.decl(id)
		env := tc.module(d.Module)
		item, _ := env.b.Items.Trait(d.Item)
		self := tc.types.SelfType(id)
		env.owner, env.self = id, self
		env.bounds = append(env.bounds, hir.Bound{Param: self, Trait: id, Args: tc.generics[id], Span: d.Span})
		env.bounds = append(env.bounds, tc.paramBounds(env, id, item.Generics, nil)...)
		tc.envs[id] = env

		tr := &hir.Trait{
			Decl: id, Name: d.Name, Self: self, Generics: tc.generics[id], Supers: d.Supers,
			Methods: make(map[string]symbols.DeclID),
			Consts:  make(map[string]*hir.Const),
			Types:   make(map[string]*hir.AssocType),
		}
		for _, mid := range d.Members {
			md := tc.decl(mid)
			switch md.Kind {
			case symbols.DeclFn:
				tr.Methods[md.Name] = mid
			case symbols.DeclConst:
				tr.Consts[md.Name] = tc.constHeader(mid, env)
			case symbols.DeclAssocType:
				tr.Types[md.Name] = &hir.AssocType{Decl: mid, Name: md.Name, Span: md.Span}
			default:
				continue
			}
			tr.Order = append(tr.Order, md.Name)
		}
		tc.prog.AddTrait(tr)
	}
	// defaults may project through other associated types
	for _, id := range ids {
		tr := tc.prog.Trait(id)
		env := tc.envs[id]
		for _, at := range tr.Types {
			item, _ := env.b.Items.AssocType(tc.decl(at.Decl).Item)
			if item.Value.IsValid() {
				at.Default = tc.resolveType(env, item.Value, nil)
			}
		}
	}
}

func (tc *typeChecker) registerAbis() {
	for _, id := range tc.declsOf(symbols.DeclAbi) {
		d := tc.decl(id)
		env := tc.module(d.Module)
		env.owner, env.self = id, tc.builtins.Contract
		tc.envs[id] = env
		tc.prog.AddAbi(&hir.Abi{Decl: id, Name: d.Name, Supers: d.Supers})
	}
}

func (tc *typeChecker) registerImpls() {
	for _, id := range tc.table.Impls {
		d := tc.decl(id)
		env := tc.module(d.Module)
		item, _ := env.b.Items.Impl(d.Item)
		env.owner = id
		self := tc.resolveType(env, item.Self, nil)
		env.self = self
		im := &hir.Impl{
			Decl: id, Self: self, Generics: tc.generics[id], Span: d.Span,
			Methods: make(map[string]symbols.DeclID),
			Consts:  make(map[string]*hir.Const),
			Types:   make(map[string]types.TypeID),
		}
		if item.Trait != nil {
			tc.implTrait(env, im, item.Trait)
		}
		im.Bounds = tc.paramBounds(env, id, item.Generics, item.Where)
		env.bounds = append(env.bounds, im.Bounds...)
		tc.envs[id] = env
		tc.prog.AddImpl(im)
	}
	// members after every header so associated types can name other impls
	for _, id := range tc.table.Impls {
		d := tc.decl(id)
		env := tc.envs[id]
		im := tc.prog.Impl(id)
		for _, mid := range d.Members {
			md := tc.decl(mid)
			switch md.Kind {
			case symbols.DeclFn:
				im.Methods[md.Name] = mid
			case symbols.DeclConst:
				im.Consts[md.Name] = tc.constHeader(mid, env)
			case symbols.DeclAssocType:
				item, _ := env.b.Items.AssocType(md.Item)
				if item.Value.IsValid() {
					im.Types[md.Name] = tc.resolveType(env, item.Value, nil)
				} else {
					tc.report(diag.TypMissingImplItem, md.Span, "associated type `%s` needs a definition in an impl", md.Name)
				}
			}
		}
	}
}

func (tc *typeChecker) implTrait(env *itemEnv, im *hir.Impl, p *ast.Path) {
	bind, ok := env.binding(p.Span)
	if !ok || bind.Kind != symbols.BindDecl {
		return
	}
	tr := tc.decl(bind.Decl)
	im.Trait = tr.ID
	if tr.Kind == symbols.DeclAbi {
		if tc.types.Kind(im.Self) != types.KindContract && !tc.types.IsError(im.Self) {
			tc.report(diag.TypMismatch, p.Span, "abi `%s` can only be implemented for `Contract`, not `%s`", tr.Name, tc.typeLabel(im.Self))
		}
		return
	}
	var args []types.TypeID
	if last := p.Last(); last != nil {
		for _, a := range last.Args {
			args = append(args, tc.resolveType(env, a, nil))
		}
	}
	want := len(tc.generics[tr.ID])
	if len(args) != want {
		tc.report(diag.TypGenericArgCount, p.Span, "trait `%s` takes %d generic arguments but %d were supplied", tr.Name, want, len(args))
		args = make([]types.TypeID, want)
		for i := range args {
			args[i] = tc.builtins.Error
		}
	}
	im.TraitArgs = args
}

func (tc *typeChecker) registerSignatures() {
	for _, id := range tc.declsOf(symbols.DeclFn) {
		tc.signature(id)
	}
}

func (tc *typeChecker) signature(id symbols.DeclID) {
	d := tc.decl(id)
	parent := tc.decl(d.Parent)
	b := tc.builder(id)
	item := b.Items.Get(d.Item)
	fn, _ := b.Items.Fn(d.Item)

	var env *itemEnv
	f := &hir.Func{Decl: id, Name: d.Name, Module: d.Module, Span: d.Span, Attrs: item.Attrs}
	switch parent.Kind {
	case symbols.DeclTrait, symbols.DeclImpl, symbols.DeclAbi:
		env = tc.envs[parent.ID].derive()
		f.Owner = parent.ID
	default:
		env = tc.module(d.Module)
	}
	env.fn = id
	env.bounds = append(env.bounds, tc.paramBounds(env, id, fn.Generics, fn.Where)...)
	tc.envs[id] = env

	switch parent.Kind {
	case symbols.DeclTrait:
		tr := tc.prog.Trait(parent.ID)
		f.Generics = append(append([]types.TypeID{tr.Self}, tr.Generics...), tc.generics[id]...)
	case symbols.DeclImpl:
		f.Generics = append(append([]types.TypeID(nil), tc.generics[parent.ID]...), tc.generics[id]...)
	default:
		f.Generics = tc.generics[id]
	}
	f.Bounds = env.bounds
	if d.Public {
		f.Flags |= hir.FuncPublic
	}
	for _, p := range fn.Params {
		local, _ := env.res.Binder(p.Span)
		if p.Kind == ast.ParamSelf {
			f.Flags |= hir.FuncMethod
			if p.Ref {
				f.Flags |= hir.FuncRefSelf
			}
			self := env.self
			if self == types.NoTypeID {
				self = tc.builtins.Error
			}
			f.Params = append(f.Params, hir.Param{Name: "self", Local: local, Type: self, Mut: p.Mut || p.Ref, Span: p.Span})
			continue
		}
		ty := tc.prog.Normalize(tc.resolveType(env, p.Type, nil))
		f.Params = append(f.Params, hir.Param{Name: b.Name(p.Name), Local: local, Type: ty, Mut: p.Mut, Span: p.Span})
	}
	f.Ret = tc.builtins.Unit
	if fn.Ret.IsValid() {
		f.Ret = tc.prog.Normalize(tc.resolveType(env, fn.Ret, nil))
	}
	f.Symbol = tc.symbolOf(d, parent)
	tc.applyAttrs(f, b)
	tc.prog.AddFunc(f)
}

// symbolOf names a function for the IR. Trait impl members are qualified by
// the implemented trait so impls for the same type do not collide.
func (tc *typeChecker) symbolOf(d, parent *symbols.Decl) string {
	if parent.Kind == symbols.DeclImpl {
		if im := tc.prog.Impl(parent.ID); im != nil && im.Trait.IsValid() {
			var sb strings.Builder
			sb.WriteString("<")
			sb.WriteString(tc.typeLabel(im.Self))
			sb.WriteString(" as ")
			sb.WriteString(tc.table.QualifiedName(im.Trait))
			if len(im.TraitArgs) > 0 {
				sb.WriteString("<")
				for i, a := range im.TraitArgs {
					if i > 0 {
						sb.WriteString(", ")
					}
					sb.WriteString(tc.typeLabel(a))
				}
				sb.WriteString(">")
			}
			sb.WriteString(">::")
			sb.WriteString(d.Name)
			return sb.String()
		}
	}
	return tc.table.QualifiedName(d.ID)
}

func (tc *typeChecker) finishAbis() {
	for _, abi := range tc.prog.Abis {
		for _, mid := range tc.decl(abi.Decl).Members {
			f := tc.prog.Func(mid)
			if f == nil {
				continue
			}
			params := make([]types.TypeID, 0, len(f.Params))
			for _, p := range f.Params {
				params = append(params, p.Type)
			}
			abi.Methods = append(abi.Methods, hir.AbiMethod{
				Decl: mid, Name: f.Name, Params: params, Ret: f.Ret,
				Declared: f.Declared, Payable: f.Flags.HasFlag(hir.FuncPayable), Span: f.Span,
			})
		}
	}
}
