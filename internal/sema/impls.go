package sema

import (
	"sort"

	"swell/internal/diag"
	"swell/internal/hir"
	"swell/internal/symbols"
	"swell/internal/types"
)

func (tc *typeChecker) checkImpls() {
	inherent := make(map[string]symbols.DeclID)
	byTrait := make(map[symbols.DeclID][]*hir.Impl)
	for _, im := range tc.prog.Impls {
		switch {
		case !im.Trait.IsValid():
			tc.checkInherent(im, inherent)
		case tc.prog.Abi(im.Trait) != nil:
			tc.checkAbiImpl(im)
			byTrait[im.Trait] = append(byTrait[im.Trait], im)
		case tc.prog.Trait(im.Trait) != nil:
			tc.checkTraitImpl(im)
			byTrait[im.Trait] = append(byTrait[im.Trait], im)
		}
	}
	traits := make([]symbols.DeclID, 0, len(byTrait))
	for id := range byTrait {
		traits = append(traits, id)
	}
	sort.Slice(traits, func(i, j int) bool { return traits[i] < traits[j] })
	for _, id := range traits {
		tc.checkOverlap(id, byTrait[id])
	}
}

func sortedNames[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (tc *typeChecker) checkInherent(im *hir.Impl, seen map[string]symbols.DeclID) {
	self := tc.typeLabel(im.Self)
	for _, name := range sortedNames(im.Methods) {
		fid := im.Methods[name]
		key := self + "::" + name
		if prev, dup := seen[key]; dup {
			tc.errorf(diag.TypConflictingImpl, tc.decl(fid).Span, "duplicate definitions with name `%s` for `%s`", name, self).
				WithNote(tc.decl(prev).Span, "other definition of `"+name+"`").
				Emit()
			continue
		}
		seen[key] = fid
	}
	for _, name := range sortedNames(im.Consts) {
		key := self + "::" + name
		if prev, dup := seen[key]; dup {
			tc.errorf(diag.TypConflictingImpl, im.Consts[name].Span, "duplicate definitions with name `%s` for `%s`", name, self).
				WithNote(tc.decl(prev).Span, "other definition of `"+name+"`").
				Emit()
			continue
		}
		seen[key] = im.Consts[name].Decl
	}
}

func (tc *typeChecker) checkTraitImpl(im *hir.Impl) {
	tr := tc.prog.Trait(im.Trait)
	var missing []string
	for _, name := range tr.Order {
		if fid, ok := tr.Methods[name]; ok {
			if _, done := im.Methods[name]; !done {
				if f := tc.prog.Func(fid); f != nil && !tc.hasBody(f) {
					missing = append(missing, "`"+name+"`")
				}
			}
			continue
		}
		if c, ok := tr.Consts[name]; ok {
			if _, done := im.Consts[name]; !done && c.Init == nil {
				missing = append(missing, "`"+name+"`")
			}
			continue
		}
		if at, ok := tr.Types[name]; ok {
			if _, done := im.Types[name]; !done && at.Default == types.NoTypeID {
				missing = append(missing, "`"+name+"`")
			}
		}
	}
	if len(missing) > 0 {
		tc.errorf(diag.TypMissingImplItem, im.Span, "not all trait items implemented, missing: %s", joinList(missing)).
			WithNote(tc.decl(tr.Decl).Span, "trait `"+tr.Name+"` declared here").
			Emit()
	}
	for _, name := range sortedNames(im.Methods) {
		fid := im.Methods[name]
		tfid, ok := tr.Methods[name]
		if !ok {
			tc.report(diag.TypExtraImplItem, tc.decl(fid).Span, "method `%s` is not a member of trait `%s`", name, tr.Name)
			continue
		}
		tc.compareSignature(im, tr, tc.prog.Func(tfid), tc.prog.Func(fid))
	}
	for _, name := range sortedNames(im.Consts) {
		c := im.Consts[name]
		want, ok := tr.Consts[name]
		if !ok {
			tc.report(diag.TypExtraImplItem, c.Span, "constant `%s` is not a member of trait `%s`", name, tr.Name)
			continue
		}
		expect := tc.traitSide(im, tr, nil, nil, want.Type)
		if got := tc.prog.Normalize(c.Type); !tc.types.HasErrors(got) && !tc.types.HasErrors(expect) && got != expect {
			tc.report(diag.TypMismatch, c.Span, "constant `%s` has type `%s` but trait `%s` declares `%s`", name, tc.typeLabel(got), tr.Name, tc.typeLabel(expect))
		}
	}
	for _, name := range sortedNames(im.Types) {
		if _, ok := tr.Types[name]; !ok {
			tc.report(diag.TypExtraImplItem, im.Span, "associated type `%s` is not a member of trait `%s`", name, tr.Name)
		}
	}
	for _, sup := range tr.Supers {
		if !tc.implemented(im.Self, sup, im.Bounds) {
			tc.errorf(diag.TypMissingTraitImpl, im.Span, "the trait bound `%s: %s` is not satisfied", tc.typeLabel(im.Self), tc.decl(sup).Name).
				WithNote(tc.decl(tr.Decl).Span, "required by a supertrait of `"+tr.Name+"`").
				Emit()
		}
	}
}

func (tc *typeChecker) hasBody(f *hir.Func) bool {
	fn, ok := tc.builder(f.Decl).Items.Fn(tc.decl(f.Decl).Item)
	return ok && fn.Body.IsValid()
}

// traitSide rewrites a type of the trait declaration into the terms of im:
// Self and trait parameters become the impl's types, associated types of Self
// the impl's definitions.
func (tc *typeChecker) traitSide(im *hir.Impl, tr *hir.Trait, params, args []types.TypeID, id types.TypeID) types.TypeID {
	in := tc.types
	ps := append([]types.TypeID{tr.Self}, tr.Generics...)
	as := append([]types.TypeID{im.Self}, im.TraitArgs...)
	ps = append(ps, params...)
	as = append(as, args...)
	id = in.Instantiate(id, ps, as)
	id = in.Map(id, func(_ types.TypeID, t *types.Type) (types.TypeID, bool) {
		if t.Kind == types.KindAssoc && t.Elem == im.Self && t.Decl == im.Trait {
			if ty, ok := im.Types[t.Name]; ok {
				return ty, true
			}
		}
		return types.NoTypeID, false
	})
	return tc.prog.Normalize(id)
}

func (tc *typeChecker) compareSignature(im *hir.Impl, tr *hir.Trait, want, got *hir.Func) {
	if want == nil || got == nil {
		return
	}
	prefix := 1 + len(tr.Generics)
	wantOwn := want.Generics[min(prefix, len(want.Generics)):]
	gotOwn := got.Generics[min(len(im.Generics), len(got.Generics)):]
	if len(wantOwn) != len(gotOwn) {
		tc.errorf(diag.TypGenericArgCount, got.Span, "method `%s` has %d type %s but its trait declaration has %d",
			got.Name, len(gotOwn), plural(len(gotOwn), "parameter", "parameters"), len(wantOwn)).
			WithNote(want.Span, "declared here").
			Emit()
		return
	}
	if want.Flags.HasFlag(hir.FuncMethod) != got.Flags.HasFlag(hir.FuncMethod) ||
		want.Flags.HasFlag(hir.FuncRefSelf) != got.Flags.HasFlag(hir.FuncRefSelf) {
		tc.errorf(diag.TypMismatch, got.Span, "method `%s` has a different receiver than in trait `%s`", got.Name, tr.Name).
			WithNote(want.Span, "declared here").
			Emit()
		return
	}
	wantSig := make([]types.TypeID, 0, len(want.Params)+1)
	for _, p := range want.Params {
		wantSig = append(wantSig, tc.traitSide(im, tr, wantOwn, gotOwn, p.Type))
	}
	wantSig = append(wantSig, tc.traitSide(im, tr, wantOwn, gotOwn, want.Ret))
	gotSig := make([]types.TypeID, 0, len(got.Params)+1)
	for _, p := range got.Params {
		gotSig = append(gotSig, tc.prog.Normalize(p.Type))
	}
	gotSig = append(gotSig, tc.prog.Normalize(got.Ret))
	if sameSig(tc.types, wantSig, gotSig) {
		return
	}
	tc.errorf(diag.TypMismatch, got.Span, "method `%s` has an incompatible signature for trait `%s`: expected `%s`, found `%s`",
		got.Name, tr.Name, tc.sigLabel(wantSig), tc.sigLabel(gotSig)).
		WithNote(want.Span, "declared here").
		Emit()
}

func sameSig(in *types.Interner, a, b []types.TypeID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] && !in.HasErrors(a[i]) && !in.HasErrors(b[i]) {
			return false
		}
	}
	return true
}

func (tc *typeChecker) sigLabel(sig []types.TypeID) string {
	if len(sig) == 0 {
		return "fn()"
	}
	s := "fn("
	for i, p := range sig[:len(sig)-1] {
		if i > 0 {
			s += ", "
		}
		s += tc.typeLabel(p)
	}
	s += ")"
	if ret := sig[len(sig)-1]; ret != tc.builtins.Unit {
		s += " -> " + tc.typeLabel(ret)
	}
	return s
}

// implemented reports whether self implements trait, through impls or the
// bounds of a generic impl.
func (tc *typeChecker) implemented(self types.TypeID, trait symbols.DeclID, bounds []hir.Bound) bool {
	if tc.types.HasErrors(self) {
		return true
	}
	for _, bd := range bounds {
		if bd.Param != self {
			continue
		}
		for _, cap := range tc.table.Capabilities(bd.Trait) {
			if cap == trait {
				return true
			}
		}
	}
	for _, im := range tc.prog.ImplsOf(trait) {
		bind := make([]types.TypeID, len(im.Generics))
		if tc.types.Match(im.Self, self, im.Generics, bind) {
			return true
		}
	}
	return false
}

func (tc *typeChecker) checkAbiImpl(im *hir.Impl) {
	abi := tc.prog.Abi(im.Trait)
	declared := make(map[string]hir.AbiMethod)
	var order []string
	for _, cap := range tc.table.Capabilities(abi.Decl) {
		a := tc.prog.Abi(cap)
		if a == nil {
			continue
		}
		for _, m := range a.Methods {
			if _, dup := declared[m.Name]; !dup {
				declared[m.Name] = m
				order = append(order, m.Name)
			}
		}
	}
	var missing []string
	for _, name := range order {
		m := declared[name]
		fid, ok := im.Methods[name]
		if !ok {
			missing = append(missing, "`"+name+"`")
			continue
		}
		f := tc.prog.Func(fid)
		if f == nil {
			continue
		}
		got := make([]types.TypeID, 0, len(f.Params)+1)
		for _, p := range f.Params {
			got = append(got, p.Type)
		}
		got = append(got, f.Ret)
		want := append(append([]types.TypeID(nil), m.Params...), m.Ret)
		if !sameSig(tc.types, want, got) {
			tc.errorf(diag.TypAbiSignature, f.Span, "method `%s` does not match its declaration in abi `%s`: expected `%s`, found `%s`",
				name, abi.Name, tc.sigLabel(want), tc.sigLabel(got)).
				WithNote(m.Span, "declared here").
				Emit()
		}
	}
	if len(missing) > 0 {
		tc.errorf(diag.TypAbiMissingMethod, im.Span, "missing %s %s in implementation of abi `%s`", plural(len(missing), "method", "methods"), joinList(missing), abi.Name).
			WithNote(tc.decl(abi.Decl).Span, "abi `"+abi.Name+"` declared here").
			Emit()
	}
	for _, name := range sortedNames(im.Methods) {
		if _, ok := declared[name]; !ok {
			tc.errorf(diag.TypExtraImplItem, tc.decl(im.Methods[name]).Span, "method `%s` is not a member of abi `%s`", name, abi.Name).
				WithHelp("move helper functions to an inherent impl or a free function").
				Emit()
		}
	}
	for _, name := range sortedNames(im.Consts) {
		tc.report(diag.TypExtraImplItem, im.Consts[name].Span, "constant `%s` is not a member of abi `%s`", name, abi.Name)
	}
}

// checkOverlap reports impls of one trait whose headers are equivalent.
func (tc *typeChecker) checkOverlap(trait symbols.DeclID, impls []*hir.Impl) {
	in := tc.types
	same := func(a, b *hir.Impl) bool {
		if !in.Match(a.Self, b.Self, a.Generics, make([]types.TypeID, len(a.Generics))) ||
			!in.Match(b.Self, a.Self, b.Generics, make([]types.TypeID, len(b.Generics))) {
			return false
		}
		if len(a.TraitArgs) != len(b.TraitArgs) {
			return false
		}
		for i := range a.TraitArgs {
			if !in.Match(a.TraitArgs[i], b.TraitArgs[i], a.Generics, make([]types.TypeID, len(a.Generics))) {
				return false
			}
		}
		return true
	}
	for i, b := range impls {
		for _, a := range impls[:i] {
			if in.HasErrors(a.Self) || in.HasErrors(b.Self) || !same(a, b) {
				continue
			}
			tc.errorf(diag.TypConflictingImpl, b.Span, "conflicting implementations of `%s` for type `%s`", tc.decl(trait).Name, tc.typeLabel(b.Self)).
				WithNote(a.Span, "first implementation here").
				Emit()
			break
		}
	}
}

// checkRecursiveTypes reports structs and enums that contain themselves by
// value. References and storage collections break the cycle.
func (tc *typeChecker) checkRecursiveTypes() {
	for _, kind := range []symbols.DeclKind{symbols.DeclStruct, symbols.DeclEnum} {
		for _, id := range tc.declsOf(kind) {
			if tc.embedded[id] {
				continue
			}
			tc.embedded[id] = true
			if tc.reaches(id, tc.declType(id), make(map[types.TypeID]bool)) {
				d := tc.decl(id)
				tc.errorf(diag.TypRecursiveType, d.Span, "recursive type `%s` has infinite size", d.Name).
					WithHelp("break the cycle with a reference or a storage collection").
					Emit()
			}
		}
	}
}

func (tc *typeChecker) declType(id symbols.DeclID) types.TypeID {
	d := tc.decl(id)
	gens := tc.generics[id]
	if d.Kind == symbols.DeclEnum {
		return tc.types.Enum(id, gens...)
	}
	return tc.types.Struct(id, gens...)
}

// reaches walks the by-value contents of ty looking for target.
func (tc *typeChecker) reaches(target symbols.DeclID, ty types.TypeID, seen map[types.TypeID]bool) bool {
	in := tc.types
	var parts []types.TypeID
	t, ok := in.Lookup(ty)
	if !ok {
		return false
	}
	switch t.Kind {
	case types.KindStruct:
		parts = in.StructFields(ty)
	case types.KindEnum:
		parts = in.VariantTypes(ty)
	case types.KindTuple:
		parts = t.Args
	case types.KindArray:
		parts = []types.TypeID{t.Elem}
	default:
		return false
	}
	for _, p := range parts {
		pt, _ := in.Lookup(p)
		if (pt.Kind == types.KindStruct || pt.Kind == types.KindEnum) && pt.Decl == target {
			return true
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		if tc.reaches(target, p, seen) {
			return true
		}
	}
	return false
}
