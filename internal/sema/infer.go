package sema

import (
	"swell/internal/hir"
	"swell/internal/source"
	"swell/internal/types"
)

// subst is the inference substitution of one body: placeholder bindings with
// an undo trail so trial unification can be rolled back.
type subst struct {
	in   *types.Interner
	prog *hir.Program
	bind map[types.TypeID]types.TypeID
	// ints marks numeric placeholders created for unsuffixed literals.
	ints    map[types.TypeID]bool
	origins map[types.TypeID]source.Span
	trail   []types.TypeID
	order   []types.TypeID
	// infinite is set when the last failed unification hit the occurs check.
	infinite bool
}

func newSubst(in *types.Interner, prog *hir.Program) *subst {
	return &subst{
		in:      in,
		prog:    prog,
		bind:    make(map[types.TypeID]types.TypeID),
		ints:    make(map[types.TypeID]bool),
		origins: make(map[types.TypeID]source.Span),
	}
}

func (s *subst) fresh(sp source.Span) types.TypeID {
	v := s.in.FreshVar()
	s.origins[v] = sp
	s.order = append(s.order, v)
	return v
}

func (s *subst) freshInt(sp source.Span) types.TypeID {
	v := s.fresh(sp)
	s.ints[v] = true
	return v
}

func (s *subst) freshN(n int, sp source.Span) []types.TypeID {
	if n == 0 {
		return nil
	}
	out := make([]types.TypeID, n)
	for i := range out {
		out[i] = s.fresh(sp)
	}
	return out
}

type snapshot int

func (s *subst) snapshot() snapshot { return snapshot(len(s.trail)) }

func (s *subst) rollback(sn snapshot) {
	for len(s.trail) > int(sn) {
		v := s.trail[len(s.trail)-1]
		s.trail = s.trail[:len(s.trail)-1]
		delete(s.bind, v)
	}
}

func (s *subst) set(v, t types.TypeID) {
	s.bind[v] = t
	s.trail = append(s.trail, v)
}

// shallow follows placeholder bindings of the outermost node.
func (s *subst) shallow(id types.TypeID) types.TypeID {
	for {
		next, ok := s.bind[id]
		if !ok {
			return id
		}
		id = next
	}
}

func (s *subst) isVar(id types.TypeID) bool { return s.in.Kind(id) == types.KindVar }

func (s *subst) isIntVar(id types.TypeID) bool {
	id = s.shallow(id)
	return s.isVar(id) && s.ints[id]
}

// resolve replaces every bound placeholder of id.
func (s *subst) resolve(id types.TypeID) types.TypeID {
	if len(s.bind) == 0 {
		return id
	}
	return s.in.Map(id, func(cur types.TypeID, t *types.Type) (types.TypeID, bool) {
		if t.Kind != types.KindVar {
			return types.NoTypeID, false
		}
		next := s.shallow(cur)
		if next == cur {
			return cur, true
		}
		return s.resolve(next), true
	})
}

func (s *subst) occurs(v, id types.TypeID) bool {
	return s.in.Contains(s.resolve(id), func(cur types.TypeID, _ *types.Type) bool { return cur == v })
}

func (s *subst) normalize(id types.TypeID) types.TypeID {
	if s.in.Kind(id) != types.KindAssoc {
		return id
	}
	return s.prog.Normalize(s.resolve(id))
}

// unify makes a and b equal. The error type unifies with everything; never
// is accepted wherever a value is expected.
func (s *subst) unify(a, b types.TypeID) bool {
	s.infinite = false
	return s.unifyRec(a, b)
}

func (s *subst) unifyRec(a, b types.TypeID) bool {
	a, b = s.normalize(s.shallow(a)), s.normalize(s.shallow(b))
	if a == b {
		return true
	}
	in := s.in
	ka, kb := in.Kind(a), in.Kind(b)
	switch {
	case ka == types.KindError || kb == types.KindError:
		return true
	case ka == types.KindNever || kb == types.KindNever:
		return true
	case ka == types.KindVar:
		return s.bindVar(a, b)
	case kb == types.KindVar:
		return s.bindVar(b, a)
	}
	ta, tb := in.MustLookup(a), in.MustLookup(b)
	if ta.Kind != tb.Kind || ta.Width != tb.Width || ta.Count != tb.Count || ta.Mutable != tb.Mutable ||
		ta.Decl != tb.Decl || ta.Name != tb.Name || len(ta.Args) != len(tb.Args) {
		return false
	}
	if ta.Kind == types.KindGeneric || ta.Kind == types.KindSelf {
		return false
	}
	if ta.Elem != types.NoTypeID && !s.unifyRec(ta.Elem, tb.Elem) {
		return false
	}
	for i := range ta.Args {
		if !s.unifyRec(ta.Args[i], tb.Args[i]) {
			return false
		}
	}
	return true
}

func (s *subst) bindVar(v, t types.TypeID) bool {
	if s.ints[v] {
		switch {
		case s.isVar(t):
			if !s.ints[t] {
				s.set(t, v)
				return true
			}
		case s.in.IsUint(t):
		default:
			return false
		}
	}
	if s.occurs(v, t) {
		s.infinite = true
		return false
	}
	s.set(v, t)
	return true
}

// try unifies a and b and keeps the bindings only on success.
func (s *subst) try(a, b types.TypeID) bool {
	sn := s.snapshot()
	if s.unify(a, b) {
		return true
	}
	s.rollback(sn)
	return false
}

// defaultInts binds every open numeric placeholder to u64.
func (s *subst) defaultInts() {
	u64 := s.in.Builtins().U64
	for _, v := range s.order {
		if !s.ints[v] {
			continue
		}
		if r := s.shallow(v); s.isVar(r) {
			s.set(r, u64)
		}
	}
}

// unresolved returns the first placeholder still open after defaulting.
func (s *subst) unresolved(id types.TypeID) (types.TypeID, bool) {
	var found types.TypeID
	s.in.Contains(s.resolve(id), func(cur types.TypeID, t *types.Type) bool {
		if t.Kind == types.KindVar {
			found = cur
			return true
		}
		return false
	})
	return found, found != types.NoTypeID
}

// finish resolves id for the final tree; open placeholders become the
// error type.
func (s *subst) finish(id types.TypeID) types.TypeID {
	id = s.resolve(id)
	errT := s.in.Builtins().Error
	id = s.in.Map(id, func(_ types.TypeID, t *types.Type) (types.TypeID, bool) {
		if t.Kind == types.KindVar {
			return errT, true
		}
		return types.NoTypeID, false
	})
	if s.in.Contains(id, func(_ types.TypeID, t *types.Type) bool { return t.Kind == types.KindAssoc }) {
		id = s.prog.Normalize(id)
	}
	return id
}
