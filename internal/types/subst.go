package types

// Map rebuilds id bottom-up after asking fn for a replacement of every node,
// outermost first. fn returning false descends into the node.
func (in *Interner) Map(id TypeID, fn func(TypeID, *Type) (TypeID, bool)) TypeID {
	tt, ok := in.Lookup(id)
	if !ok {
		return id
	}
	if repl, ok := fn(id, &tt); ok {
		return repl
	}
	changed := false
	if tt.Elem != NoTypeID {
		if e := in.Map(tt.Elem, fn); e != tt.Elem {
			tt.Elem, changed = e, true
		}
	}
	if len(tt.Args) > 0 {
		var args []TypeID
		for i, a := range tt.Args {
			na := in.Map(a, fn)
			if na != a && args == nil {
				args = append([]TypeID(nil), tt.Args...)
			}
			if args != nil {
				args[i] = na
			}
		}
		if args != nil {
			tt.Args, changed = args, true
		}
	}
	if !changed {
		return id
	}
	return in.Intern(tt)
}

// Instantiate replaces params[i] with args[i] everywhere in id. Missing
// arguments become the error type.
func (in *Interner) Instantiate(id TypeID, params, args []TypeID) TypeID {
	if len(params) == 0 {
		return id
	}
	return in.Map(id, func(cur TypeID, _ *Type) (TypeID, bool) {
		for i, p := range params {
			if p != cur {
				continue
			}
			if i < len(args) {
				return args[i], true
			}
			return in.builtins.Error, true
		}
		return NoTypeID, false
	})
}

// ReplaceSelf substitutes `Self` of owner with self.
func (in *Interner) ReplaceSelf(id TypeID, owner TypeID, self TypeID) TypeID {
	if owner == NoTypeID {
		return id
	}
	return in.Map(id, func(cur TypeID, _ *Type) (TypeID, bool) {
		if cur == owner {
			return self, true
		}
		return NoTypeID, false
	})
}
