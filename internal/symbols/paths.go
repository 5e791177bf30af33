package symbols

import (
	"fmt"
	"strings"

	"swell/internal/ast"
	"swell/internal/diag"
)

// namespace is the syntactic position a path appears in.
type namespace uint8

const (
	nsValue namespace = iota
	nsType
	nsPattern
	nsTrait
)

// resolvePath resolves p, records the binding under p.Span and reports
// failures. Generic arguments of every segment are resolved as types.
func (w *bodyWalker) resolvePath(p *ast.Path, ns namespace) (Binding, bool) {
	for i := range p.Segments {
		for _, arg := range p.Segments[i].Args {
			w.typ(arg)
		}
	}
	bind, ok := w.lookupPath(p, ns)
	if !ok {
		return Binding{}, false
	}
	if !w.checkNamespace(p, bind, ns) {
		return Binding{}, false
	}
	w.res.Paths[p.Span] = bind
	return bind, true
}

func (w *bodyWalker) lookupPath(p *ast.Path, ns namespace) (Binding, bool) {
	segs := p.Segments
	if len(segs) == 0 {
		return Binding{}, false
	}
	var cur DeclID
	i := 0
	switch {
	case p.Absolute:
		cur = w.t.ModuleDecl(w.t.Graph.Root)
	case segs[0].Kind == ast.SegCrate:
		cur, i = w.t.ModuleDecl(w.t.Graph.Root), 1
	case segs[0].Kind == ast.SegSuper:
		mod := w.m
		for i < len(segs) && segs[i].Kind == ast.SegSuper {
			if !mod.Parent.IsValid() {
				diag.ReportError(w.r, diag.ResUnknownPath, segs[i].Span, "'super' escapes the package root").Emit()
				return Binding{}, false
			}
			mod = w.t.Graph.Module(mod.Parent)
			i++
		}
		cur = w.t.ModuleDecl(mod.ID)
	case segs[0].Kind == ast.SegSelfValue && len(segs) > 1:
		cur, i = w.t.ModuleDecl(w.m.ID), 1
	case segs[0].Kind == ast.SegSelfType:
		if !w.self.IsValid() {
			diag.ReportError(w.r, diag.ResSelfOutsideImpl, segs[0].Span, "`Self` is only available inside impl, trait and abi blocks").Emit()
			return Binding{}, false
		}
		return Binding{Kind: BindSelfType, Decl: w.self, Rest: len(segs) - 1}, true
	default:
		name := w.b.SegmentName(segs[0])
		bind, ok := w.lookupName(name, segs[0], ns)
		if !ok {
			return Binding{}, false
		}
		if bind.Kind == BindLocal && len(segs) > 1 {
			diag.ReportError(w.r, diag.ResNotAModule, segs[0].Span, fmt.Sprintf("local %q has no members", name)).Emit()
			return Binding{}, false
		}
		if bind.Kind != BindDecl {
			bind.Rest = len(segs) - 1
			return bind, true
		}
		cur, i = bind.Decl, 1
	}
	return w.walkMembers(p, cur, i)
}

// walkMembers follows segs[i:] from decl cur: modules and enum variants are
// entered, anything else leaves the tail for the type engine.
func (w *bodyWalker) walkMembers(p *ast.Path, cur DeclID, i int) (Binding, bool) {
	segs := p.Segments
	for ; i < len(segs); i++ {
		d := w.t.Decl(cur)
		name := w.b.SegmentName(segs[i])
		var res memberResult
		switch d.Kind {
		case DeclModule:
			res = w.t.lookupMember(d.Target, name, w.m.ID)
		case DeclEnum:
			res = w.t.lookupEnumMember(cur, name)
			if !res.found() {
				return Binding{Kind: BindDecl, Decl: cur, Rest: len(segs) - i}, true
			}
		case DeclStruct, DeclTrait, DeclAbi, DeclAssocType:
			return Binding{Kind: BindDecl, Decl: cur, Rest: len(segs) - i}, true
		default:
			diag.ReportError(w.r, diag.ResNotAModule, segs[i-1].Span, fmt.Sprintf("%s %q has no members", d.Kind, d.Name)).Emit()
			return Binding{}, false
		}
		if !w.memberFound(res, name, segs[i], p) {
			return Binding{}, false
		}
		cur = res.decl
	}
	return Binding{Kind: BindDecl, Decl: cur}, true
}

func (w *bodyWalker) memberFound(res memberResult, name string, seg ast.PathSegment, p *ast.Path) bool {
	switch {
	case res.private.IsValid():
		d := w.t.Decl(res.private)
		diag.ReportError(w.r, diag.ResPrivateItem, seg.Span, fmt.Sprintf("%s %q is private", d.Kind, name)).
			WithNote(d.Span, "declared here").
			Emit()
		return false
	case !res.found():
		diag.ReportError(w.r, diag.ResUnknownPath, p.Span, fmt.Sprintf("cannot find %q in %q", name, w.b.PathString(p))).Emit()
		return false
	case len(res.candidates) > 1:
		w.t.reportAmbiguous(w.r, seg.Span, name, res.candidates)
		return false
	}
	if res.imp != nil {
		res.imp.used.Store(true)
	}
	return true
}

// lookupName resolves the first segment of a relative path: lexical frames,
// then the module scope, then builtins, then submodules of the root.
func (w *bodyWalker) lookupName(name string, seg ast.PathSegment, ns namespace) (Binding, bool) {
	for i := len(w.frames) - 1; i >= 0; i-- {
		if e, ok := w.frames[i].names[name]; ok {
			return e.binding, true
		}
	}
	res := w.t.lookupMember(w.m.ID, name, w.m.ID)
	if len(res.candidates) > 1 {
		w.t.reportAmbiguous(w.r, seg.Span, name, res.candidates)
		return Binding{}, false
	}
	if res.found() {
		if res.imp != nil {
			res.imp.used.Store(true)
		}
		return Binding{Kind: BindDecl, Decl: res.decl}, true
	}
	if b, ok := LookupBuiltin(name); ok {
		return Binding{Kind: BindBuiltin, Builtin: b}, true
	}
	if w.m.ID != w.t.Graph.Root {
		if id, ok := w.t.Scope(w.t.Graph.Root).Locals[name]; ok && w.t.Decl(id).Kind == DeclModule {
			return Binding{Kind: BindDecl, Decl: id}, true
		}
	}
	what := "name"
	switch ns {
	case nsType, nsTrait:
		what = "type"
	case nsPattern:
		what = "pattern"
	}
	diag.ReportError(w.r, diag.ResUnknownName, seg.Span, fmt.Sprintf("cannot find %s %q in this scope", what, name)).Emit()
	return Binding{}, false
}

func (w *bodyWalker) checkNamespace(p *ast.Path, bind Binding, ns namespace) bool {
	if bind.Rest > 0 {
		return true
	}
	ok := true
	var code diag.Code
	switch ns {
	case nsValue:
		code = diag.ResNotAValue
		switch bind.Kind {
		case BindDecl:
			ok = w.t.Decl(bind.Decl).Kind.IsValue()
		case BindBuiltin:
			ok = bind.Builtin.IsValue()
		case BindGeneric, BindSelfType:
			ok = false
		}
	case nsType:
		code = diag.ResNotAType
		switch bind.Kind {
		case BindDecl:
			ok = w.t.Decl(bind.Decl).Kind.IsType()
		case BindBuiltin:
			ok = !bind.Builtin.IsValue()
		case BindLocal:
			ok = false
		}
	case nsPattern:
		code = diag.ResNotAValue
		if bind.Kind != BindDecl {
			ok = bind.Kind == BindSelfType
		} else {
			k := w.t.Decl(bind.Decl).Kind
			ok = k == DeclVariant || k == DeclConst || k == DeclStruct
		}
	case nsTrait:
		code = diag.ResNotATrait
		ok = bind.Kind == BindDecl && (w.t.Decl(bind.Decl).Kind == DeclTrait || w.t.Decl(bind.Decl).Kind == DeclAbi)
	}
	if ok {
		return true
	}
	text := w.b.PathString(p)
	what := bind.Kind.String()
	if bind.Kind == BindDecl {
		what = w.t.Decl(bind.Decl).Kind.String()
	}
	want := map[diag.Code]string{diag.ResNotAValue: "value", diag.ResNotAType: "type", diag.ResNotATrait: "trait"}[code]
	diag.ReportError(w.r, code, p.Span, fmt.Sprintf("expected %s, found %s %q", want, what, strings.TrimSpace(text))).Emit()
	return false
}
