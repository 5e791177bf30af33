package types

import "slices"

// Match reports whether concrete is an instance of pattern, where the types
// listed in params act as pattern variables. On success out[i] holds the
// binding of params[i]; unbound parameters stay NoTypeID. The error type
// matches anything.
func (in *Interner) Match(pattern, concrete TypeID, params []TypeID, out []TypeID) bool {
	if i := slices.Index(params, pattern); i >= 0 {
		if out[i] == NoTypeID {
			out[i] = concrete
			return true
		}
		return out[i] == concrete || in.IsError(out[i]) || in.IsError(concrete)
	}
	if pattern == concrete {
		return true
	}
	p, ok1 := in.Lookup(pattern)
	c, ok2 := in.Lookup(concrete)
	if !ok1 || !ok2 {
		return false
	}
	if p.Kind == KindError || c.Kind == KindError {
		return true
	}
	if p.Kind != c.Kind || p.Width != c.Width || p.Count != c.Count || p.Mutable != c.Mutable ||
		p.Decl != c.Decl || p.Name != c.Name || len(p.Args) != len(c.Args) {
		return false
	}
	if p.Elem != NoTypeID && !in.Match(p.Elem, c.Elem, params, out) {
		return false
	}
	for i := range p.Args {
		if !in.Match(p.Args[i], c.Args[i], params, out) {
			return false
		}
	}
	return true
}

// MoreSpecific reports whether pattern a (with params pa) is strictly more
// specific than pattern b (with params pb): every instance of a is an
// instance of b but not vice versa.
func (in *Interner) MoreSpecific(a TypeID, pa []TypeID, b TypeID, pb []TypeID) bool {
	return in.Match(b, a, pb, make([]TypeID, len(pb))) && !in.Match(a, b, pa, make([]TypeID, len(pa)))
}
