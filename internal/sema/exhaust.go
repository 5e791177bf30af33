package sema

import (
	"encoding/hex"
	"strings"

	"swell/internal/diag"
	"swell/internal/hir"
	"swell/internal/types"
)

// Exhaustiveness follows the usefulness algorithm of Maranget ("Warnings for
// pattern matching", 2007): a pattern vector is useful against a matrix when
// some value matches it and no row above it. A wildcard useful after every
// arm witnesses a missing case.

type ctorKind uint8

const (
	ctorBool ctorKind = iota
	ctorVariant
	// ctorSingle is the only constructor of tuples, structs and unit.
	ctorSingle
	// ctorLit is one value of an unbounded domain: integers, strings, b256.
	ctorLit
)

type ctor struct {
	kind  ctorKind
	index int
	lit   string
}

type matcher struct {
	tc   *typeChecker
	in   *types.Interner
	wild *hir.Pattern
}

func (bc *bodyChecker) checkPatterns(m pendingMatch) {
	tc := bc.tc
	ty := bc.sub.finish(m.ty)
	if bc.in.HasErrors(ty) {
		return
	}
	mt := &matcher{tc: tc, in: bc.in, wild: &hir.Pattern{Kind: hir.PatWild, Type: ty}}
	var rows [][]*hir.Pattern
	for i, arm := range m.arms {
		p := mt.lower(arm)
		if hasErrorPat(p) {
			// ошибка уже сообщена; строка считается покрывающей всё
			rows = append(rows, []*hir.Pattern{mt.wild})
			continue
		}
		row := []*hir.Pattern{p}
		if !m.let {
			if _, useful := mt.useful(rows, row, []types.TypeID{ty}); !useful {
				tc.warn(diag.TypUnreachableArm, m.spans[i], "unreachable pattern")
			}
		}
		rows = append(rows, row)
	}
	w, useful := mt.useful(rows, []*hir.Pattern{mt.wild}, []types.TypeID{ty})
	if !useful {
		return
	}
	if m.let {
		tc.errorf(diag.TypBadPattern, m.span, "refutable pattern in `let`: `%s` not covered", w[0]).
			WithHelp("use `match` to handle every case").
			Emit()
		return
	}
	tc.errorf(diag.TypNonExhaustive, m.span, "non-exhaustive patterns: `%s` not covered", w[0]).
		WithHelp("add a match arm for it or a wildcard `_` arm").
		Emit()
}

func hasErrorPat(p *hir.Pattern) bool {
	if p == nil {
		return false
	}
	if p.Kind == hir.PatError {
		return true
	}
	for _, e := range p.Elems {
		if hasErrorPat(e) {
			return true
		}
	}
	for _, f := range p.Fields {
		if hasErrorPat(f.Pat) {
			return true
		}
	}
	return false
}

// lower replaces named constants by the patterns of their values.
func (mt *matcher) lower(p *hir.Pattern) *hir.Pattern {
	switch p.Kind {
	case hir.PatConst:
		if p.Value == nil {
			return &hir.Pattern{Kind: hir.PatLiteral, Type: p.Type, Span: p.Span, Lit: &hir.LiteralData{Kind: hir.LiteralString, String: "\x00const:" + p.Name}}
		}
		return mt.valuePattern(p.Value, p.Type)
	case hir.PatOr, hir.PatTuple, hir.PatVariant:
		cp := *p
		cp.Elems = make([]*hir.Pattern, len(p.Elems))
		for i, e := range p.Elems {
			cp.Elems[i] = mt.lower(e)
		}
		return &cp
	case hir.PatStruct:
		cp := *p
		cp.Fields = make([]hir.FieldPat, len(p.Fields))
		for i, f := range p.Fields {
			cp.Fields[i] = hir.FieldPat{Index: f.Index, Pat: mt.lower(f.Pat)}
		}
		return &cp
	}
	return p
}

func (mt *matcher) valuePattern(v *hir.Value, ty types.TypeID) *hir.Pattern {
	switch v.Kind {
	case hir.ValueInt:
		return &hir.Pattern{Kind: hir.PatLiteral, Type: ty, Lit: &hir.LiteralData{Kind: hir.LiteralInt, Int: v.Int}}
	case hir.ValueBool:
		return &hir.Pattern{Kind: hir.PatLiteral, Type: ty, Lit: &hir.LiteralData{Kind: hir.LiteralBool, Bool: v.Bool}}
	case hir.ValueString:
		return &hir.Pattern{Kind: hir.PatLiteral, Type: ty, Lit: &hir.LiteralData{Kind: hir.LiteralString, String: v.Str}}
	case hir.ValueB256:
		return &hir.Pattern{Kind: hir.PatLiteral, Type: ty, Lit: &hir.LiteralData{Kind: hir.LiteralB256, B256: v.B256}}
	case hir.ValueVariant:
		p := &hir.Pattern{Kind: hir.PatVariant, Type: ty, Index: v.Index}
		if t, ok := mt.in.Lookup(ty); ok {
			p.Decl = t.Decl
		}
		if len(v.Elems) > 0 {
			pays := mt.in.VariantTypes(ty)
			pt := types.NoTypeID
			if v.Index < len(pays) {
				pt = pays[v.Index]
			}
			p.Elems = []*hir.Pattern{mt.valuePattern(v.Elems[0], pt)}
		}
		return p
	case hir.ValueAggregate:
		subs := mt.subtypes(ctor{kind: ctorSingle}, ty)
		t, _ := mt.in.Lookup(ty)
		if t.Kind == types.KindStruct {
			p := &hir.Pattern{Kind: hir.PatStruct, Type: ty, Decl: t.Decl}
			for i, e := range v.Elems {
				p.Fields = append(p.Fields, hir.FieldPat{Index: i, Pat: mt.valuePattern(e, subs[i])})
			}
			return p
		}
		if t.Kind == types.KindTuple {
			p := &hir.Pattern{Kind: hir.PatTuple, Type: ty}
			for i, e := range v.Elems {
				p.Elems = append(p.Elems, mt.valuePattern(e, subs[i]))
			}
			return p
		}
		// массивы сравниваются только целиком
		return &hir.Pattern{Kind: hir.PatLiteral, Type: ty, Lit: &hir.LiteralData{Kind: hir.LiteralString, String: "\x00value:" + v.String()}}
	}
	return mt.wild
}

func isWildPat(p *hir.Pattern) bool {
	switch p.Kind {
	case hir.PatWild, hir.PatBind, hir.PatError:
		return true
	}
	return false
}

func (mt *matcher) ctorOf(p *hir.Pattern) ctor {
	switch p.Kind {
	case hir.PatVariant:
		return ctor{kind: ctorVariant, index: p.Index}
	case hir.PatTuple, hir.PatStruct:
		return ctor{kind: ctorSingle}
	case hir.PatLiteral:
		switch p.Lit.Kind {
		case hir.LiteralBool:
			if p.Lit.Bool {
				return ctor{kind: ctorBool, index: 1}
			}
			return ctor{kind: ctorBool}
		case hir.LiteralInt:
			return ctor{kind: ctorLit, lit: "i:" + p.Lit.Int.String()}
		case hir.LiteralB256:
			return ctor{kind: ctorLit, lit: "b:" + hex.EncodeToString(p.Lit.B256[:])}
		}
		return ctor{kind: ctorLit, lit: "s:" + p.Lit.String}
	}
	return ctor{kind: ctorLit}
}

// allCtors lists the constructors of ty, or nil for unbounded domains.
func (mt *matcher) allCtors(ty types.TypeID) []ctor {
	t, ok := mt.in.Lookup(ty)
	if !ok {
		return nil
	}
	switch t.Kind {
	case types.KindBool:
		return []ctor{{kind: ctorBool}, {kind: ctorBool, index: 1}}
	case types.KindEnum:
		info, ok := mt.in.EnumInfo(t.Decl)
		if !ok {
			return nil
		}
		out := make([]ctor, len(info.Variants))
		for i := range out {
			out[i] = ctor{kind: ctorVariant, index: i}
		}
		return out
	case types.KindTuple, types.KindStruct, types.KindUnit:
		return []ctor{{kind: ctorSingle}}
	}
	return nil
}

func (mt *matcher) subtypes(c ctor, ty types.TypeID) []types.TypeID {
	t, ok := mt.in.Lookup(ty)
	if !ok {
		return nil
	}
	switch c.kind {
	case ctorVariant:
		pays := mt.in.VariantTypes(ty)
		if c.index < len(pays) && pays[c.index] != mt.in.Builtins().Unit {
			return []types.TypeID{pays[c.index]}
		}
	case ctorSingle:
		switch t.Kind {
		case types.KindTuple:
			return t.Args
		case types.KindStruct:
			return mt.in.StructFields(ty)
		}
	}
	return nil
}

// args returns the sub-patterns of p under constructor c with n fields.
func (mt *matcher) args(p *hir.Pattern, n int) []*hir.Pattern {
	out := make([]*hir.Pattern, n)
	for i := range out {
		out[i] = mt.wild
	}
	if isWildPat(p) {
		return out
	}
	switch p.Kind {
	case hir.PatStruct:
		for _, f := range p.Fields {
			if f.Index < n {
				out[f.Index] = f.Pat
			}
		}
	default:
		for i, e := range p.Elems {
			if i < n {
				out[i] = e
			}
		}
	}
	return out
}

// expand splits rows whose first column is an or-pattern.
func expand(rows [][]*hir.Pattern) [][]*hir.Pattern {
	var out [][]*hir.Pattern
	for _, r := range rows {
		if len(r) > 0 && r[0].Kind == hir.PatOr {
			var alts [][]*hir.Pattern
			for _, alt := range r[0].Elems {
				alts = append(alts, append([]*hir.Pattern{alt}, r[1:]...))
			}
			out = append(out, expand(alts)...)
			continue
		}
		out = append(out, r)
	}
	return out
}

func (mt *matcher) specialize(rows [][]*hir.Pattern, c ctor, n int) [][]*hir.Pattern {
	var out [][]*hir.Pattern
	for _, r := range rows {
		h := r[0]
		if !isWildPat(h) && mt.ctorOf(h) != c {
			continue
		}
		out = append(out, append(mt.args(h, n), r[1:]...))
	}
	return out
}

// useful reports whether q matches a value no row matches; the witness holds
// one rendered value per column.
func (mt *matcher) useful(rows [][]*hir.Pattern, q []*hir.Pattern, tys []types.TypeID) ([]string, bool) {
	if len(q) == 0 {
		return nil, len(rows) == 0
	}
	if q[0].Kind == hir.PatOr {
		for _, alt := range q[0].Elems {
			if w, ok := mt.useful(rows, append([]*hir.Pattern{alt}, q[1:]...), tys); ok {
				return w, true
			}
		}
		return nil, false
	}
	rows = expand(rows)
	ty := tys[0]
	if !isWildPat(q[0]) {
		c := mt.ctorOf(q[0])
		subs := mt.subtypes(c, ty)
		w, ok := mt.useful(mt.specialize(rows, c, len(subs)), append(mt.args(q[0], len(subs)), q[1:]...), append(append([]types.TypeID(nil), subs...), tys[1:]...))
		if !ok {
			return nil, false
		}
		return append([]string{mt.render(c, ty, w[:len(subs)])}, w[len(subs):]...), true
	}

	present := make(map[ctor]bool)
	for _, r := range rows {
		if !isWildPat(r[0]) {
			present[mt.ctorOf(r[0])] = true
		}
	}
	all := mt.allCtors(ty)
	complete := all != nil
	for _, c := range all {
		if !present[c] {
			complete = false
			break
		}
	}
	if complete {
		for _, c := range all {
			subs := mt.subtypes(c, ty)
			w, ok := mt.useful(mt.specialize(rows, c, len(subs)), append(mt.args(mt.wild, len(subs)), q[1:]...), append(append([]types.TypeID(nil), subs...), tys[1:]...))
			if ok {
				return append([]string{mt.render(c, ty, w[:len(subs)])}, w[len(subs):]...), true
			}
		}
		return nil, false
	}

	var def [][]*hir.Pattern
	for _, r := range rows {
		if isWildPat(r[0]) {
			def = append(def, r[1:])
		}
	}
	w, ok := mt.useful(def, q[1:], tys[1:])
	if !ok {
		return nil, false
	}
	head := "_"
	if all != nil && len(present) > 0 {
		for _, c := range all {
			if present[c] {
				continue
			}
			subs := mt.subtypes(c, ty)
			blanks := make([]string, len(subs))
			for i := range blanks {
				blanks[i] = "_"
			}
			head = mt.render(c, ty, blanks)
			break
		}
	}
	return append([]string{head}, w...), true
}

func (mt *matcher) render(c ctor, ty types.TypeID, args []string) string {
	t, _ := mt.in.Lookup(ty)
	switch c.kind {
	case ctorBool:
		if c.index == 1 {
			return "true"
		}
		return "false"
	case ctorVariant:
		info, ok := mt.in.EnumInfo(t.Decl)
		if !ok || c.index >= len(info.Variants) {
			return "_"
		}
		s := info.Name + "::" + info.Variants[c.index].Name
		if len(args) > 0 {
			s += "(" + strings.Join(args, ", ") + ")"
		}
		return s
	case ctorSingle:
		switch t.Kind {
		case types.KindStruct:
			info, ok := mt.in.StructInfo(t.Decl)
			if !ok {
				return "_"
			}
			parts := make([]string, 0, len(args))
			for i, a := range args {
				if a == "_" {
					continue
				}
				parts = append(parts, info.Fields[i].Name+": "+a)
			}
			if len(parts) < len(args) {
				parts = append(parts, "..")
			}
			return info.Name + " { " + strings.Join(parts, ", ") + " }"
		case types.KindTuple:
			return "(" + strings.Join(args, ", ") + ")"
		}
		return "()"
	}
	return "_"
}
