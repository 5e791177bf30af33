package hir

import (
	"swell/internal/symbols"
	"swell/internal/types"
)

// ImplMatch is an impl selected for a concrete type together with the
// bindings of its generic parameters.
type ImplMatch struct {
	Impl *Impl
	Args []types.TypeID
}

// MatchImpls lists the impls of trait whose self type (and trait arguments,
// where known) cover self. traitArgs entries may be NoTypeID for "any".
func (p *Program) MatchImpls(trait symbols.DeclID, traitArgs []types.TypeID, self types.TypeID) []ImplMatch {
	in := p.Types
	var out []ImplMatch
	for _, im := range p.ImplsOf(trait) {
		bind := make([]types.TypeID, len(im.Generics))
		if !in.Match(im.Self, self, im.Generics, bind) {
			continue
		}
		ok := true
		for i, a := range traitArgs {
			if a == types.NoTypeID || i >= len(im.TraitArgs) {
				continue
			}
			if !in.Match(im.TraitArgs[i], a, im.Generics, bind) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		for i := range bind {
			if bind[i] == types.NoTypeID {
				bind[i] = in.Builtins().Error
			}
		}
		out = append(out, ImplMatch{Impl: im, Args: bind})
	}
	return out
}

// MostSpecific picks the unique candidate more specific than every other
// one: a concrete impl beats a blanket impl.
func (p *Program) MostSpecific(cands []ImplMatch) (ImplMatch, bool) {
	switch len(cands) {
	case 0:
		return ImplMatch{}, false
	case 1:
		return cands[0], true
	}
	in := p.Types
	for i, c := range cands {
		best := true
		for j, o := range cands {
			if i == j {
				continue
			}
			if !in.MoreSpecific(c.Impl.Self, c.Impl.Generics, o.Impl.Self, o.Impl.Generics) {
				best = false
				break
			}
		}
		if best {
			return c, true
		}
	}
	return ImplMatch{}, false
}

// FindImpl returns the impl of trait for a concrete self type.
func (p *Program) FindImpl(trait symbols.DeclID, traitArgs []types.TypeID, self types.TypeID) (ImplMatch, bool) {
	return p.MostSpecific(p.MatchImpls(trait, traitArgs, self))
}

// ResolveCall maps a call of a trait method with concrete type arguments to
// the impl method providing it. Calls of other functions, of trait methods
// without an overriding impl member (default bodies) and unresolvable calls
// are returned unchanged; ok is false only when no impl exists.
func (p *Program) ResolveCall(fn symbols.DeclID, args []types.TypeID) (symbols.DeclID, []types.TypeID, bool) {
	f := p.Func(fn)
	if f == nil {
		return fn, args, false
	}
	tr := p.Trait(f.Owner)
	if tr == nil || len(args) == 0 {
		return fn, args, true
	}
	nTrait := 1 + len(tr.Generics)
	if len(args) < nTrait {
		return fn, args, false
	}
	m, ok := p.FindImpl(tr.Decl, args[1:nTrait], args[0])
	if !ok {
		return fn, args, false
	}
	target, ok := m.Impl.Methods[f.Name]
	if !ok {
		return fn, args, true
	}
	out := append(append([]types.TypeID(nil), m.Args...), args[nTrait:]...)
	return target, out, true
}

// ResolveConst returns the constant providing an associated constant for a
// concrete self type: the impl's own definition or the trait default.
func (p *Program) ResolveConst(decl symbols.DeclID, self types.TypeID) *Const {
	sym := p.Symbols.Decl(decl)
	if sym == nil {
		return nil
	}
	tr := p.Trait(sym.Parent)
	if tr == nil {
		return p.Const(decl)
	}
	if m, ok := p.FindImpl(tr.Decl, nil, self); ok {
		if c, found := m.Impl.Consts[sym.Name]; found {
			return c
		}
	}
	return tr.Consts[sym.Name]
}

// Normalize replaces associated type projections whose base is concrete
// with the type chosen by the matching impl (or the trait default).
func (p *Program) Normalize(id types.TypeID) types.TypeID {
	in := p.Types
	return in.Map(id, func(_ types.TypeID, t *types.Type) (types.TypeID, bool) {
		if t.Kind != types.KindAssoc {
			return types.NoTypeID, false
		}
		base := p.Normalize(t.Elem)
		if !in.IsConcrete(base) {
			return in.Assoc(base, t.Decl, t.Name), true
		}
		tr := p.Trait(t.Decl)
		if m, ok := p.FindImpl(t.Decl, nil, base); ok {
			if ty, found := m.Impl.Types[t.Name]; found {
				return p.Normalize(in.Instantiate(ty, m.Impl.Generics, m.Args)), true
			}
		}
		if tr != nil {
			if at, ok := tr.Types[t.Name]; ok && at.Default != types.NoTypeID {
				return p.Normalize(in.ReplaceSelf(at.Default, tr.Self, base)), true
			}
		}
		return in.Builtins().Error, true
	})
}
