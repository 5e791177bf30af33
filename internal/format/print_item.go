package format

import (
	"strings"

	"swell/internal/ast"
	"swell/internal/source"
)

func (p *printer) printItem(id ast.ItemID) {
	b := p.builder
	w := p.writer
	item := b.Items.Get(id)
	for _, attr := range item.Attrs {
		w.WriteString(p.attrString(attr))
		w.Newline()
	}
	if item.Public {
		w.WriteString("pub ")
	}
	switch item.Kind {
	case ast.ItemFn:
		fn, _ := b.Items.Fn(id)
		p.printFn(fn)
	case ast.ItemStruct:
		st, _ := b.Items.Struct(id)
		w.WriteString("struct " + b.Name(st.Name) + p.genericParams(st.Generics) + " {")
		p.list(len(st.Fields), func(i int) {
			f := st.Fields[i]
			if f.Public {
				w.WriteString("pub ")
			}
			w.WriteString(b.Name(f.Name) + ": " + p.typeString(f.Type) + ",")
		})
		w.WriteString("}")
	case ast.ItemEnum:
		en, _ := b.Items.Enum(id)
		w.WriteString("enum " + b.Name(en.Name) + p.genericParams(en.Generics) + " {")
		p.list(len(en.Variants), func(i int) {
			v := en.Variants[i]
			w.WriteString(b.Name(v.Name))
			if v.Type.IsValid() {
				w.WriteString(": " + p.typeString(v.Type))
			}
			w.WriteString(",")
		})
		w.WriteString("}")
	case ast.ItemTrait:
		tr, _ := b.Items.Trait(id)
		w.WriteString("trait " + b.Name(tr.Name) + p.genericParams(tr.Generics))
		if len(tr.Supers) > 0 {
			w.WriteString(": " + p.boundsString(tr.Supers))
		}
		p.printMembers(tr.Members)
	case ast.ItemImplTrait, ast.ItemImplSelf:
		impl, _ := b.Items.Impl(id)
		w.WriteString("impl" + p.genericParams(impl.Generics) + " ")
		if impl.Trait != nil {
			w.WriteString(p.pathString(*impl.Trait) + " for ")
		}
		w.WriteString(p.typeString(impl.Self))
		p.printWhere(impl.Where)
		p.printMembers(impl.Members)
	case ast.ItemAbi:
		abi, _ := b.Items.Abi(id)
		w.WriteString("abi " + b.Name(abi.Name))
		if len(abi.Supers) > 0 {
			w.WriteString(": " + p.boundsString(abi.Supers))
		}
		p.printMembers(abi.Members)
	case ast.ItemStorage, ast.ItemConfigurable:
		blk, _ := b.Items.SlotBlock(id)
		w.WriteString(item.Kind.String() + " {")
		p.list(len(blk.Fields), func(i int) {
			f := blk.Fields[i]
			w.WriteString(b.Name(f.Name) + ": " + p.typeString(f.Type) + " = ")
			p.printExpr(f.Init)
			w.WriteString(",")
		})
		w.WriteString("}")
	case ast.ItemConst:
		c, _ := b.Items.Const(id)
		w.WriteString("const " + b.Name(c.Name))
		if c.Type.IsValid() {
			w.WriteString(": " + p.typeString(c.Type))
		}
		if c.Value.IsValid() {
			w.WriteString(" = ")
			p.printExpr(c.Value)
		}
		w.WriteString(";")
	case ast.ItemAssocType:
		at, _ := b.Items.AssocType(id)
		w.WriteString("type " + b.Name(at.Name))
		if at.Value.IsValid() {
			w.WriteString(" = " + p.typeString(at.Value))
		}
		w.WriteString(";")
	case ast.ItemUse:
		use, _ := b.Items.Use(id)
		prefix := "use "
		if use.Absolute {
			prefix += "::"
		}
		w.WriteString(prefix + p.useTreeString(use.Tree) + ";")
	case ast.ItemMod:
		mod, _ := b.Items.Mod(id)
		w.WriteString("mod " + b.Name(mod.Name) + ";")
	}
}

// list печатает n строк внутри уже открытой `{`; пустой список остаётся `{}`.
func (p *printer) list(n int, line func(i int)) {
	w := p.writer
	if n == 0 {
		return
	}
	w.Newline()
	w.IndentPush()
	for i := range n {
		line(i)
		w.Newline()
	}
	w.IndentPop()
}

func (p *printer) printMembers(members []ast.ItemID) {
	w := p.writer
	w.WriteString(" {")
	if len(members) == 0 {
		w.WriteString("}")
		return
	}
	w.Newline()
	w.IndentPush()
	for i, m := range members {
		if i > 0 {
			w.BlankLine()
		}
		p.printItem(m)
		w.Newline()
	}
	w.IndentPop()
	w.WriteString("}")
}

func (p *printer) printFn(fn *ast.FnItem) {
	b := p.builder
	w := p.writer
	params := make([]string, 0, len(fn.Params))
	for _, prm := range fn.Params {
		var sb strings.Builder
		if prm.Ref {
			sb.WriteString("ref ")
		}
		if prm.Mut {
			sb.WriteString("mut ")
		}
		sb.WriteString(b.Name(prm.Name))
		if prm.Kind == ast.ParamNamed {
			sb.WriteString(": " + p.typeString(prm.Type))
		}
		params = append(params, sb.String())
	}
	w.WriteString("fn " + b.Name(fn.Name) + p.genericParams(fn.Generics) + "(" + strings.Join(params, ", ") + ")")
	if fn.Ret.IsValid() {
		w.WriteString(" -> " + p.typeString(fn.Ret))
	}
	p.printWhere(fn.Where)
	if !fn.Body.IsValid() {
		w.WriteString(";")
		return
	}
	w.Space()
	p.printExpr(fn.Body)
}

func (p *printer) printWhere(preds []ast.WherePred) {
	if len(preds) == 0 {
		return
	}
	parts := make([]string, 0, len(preds))
	for _, pr := range preds {
		parts = append(parts, p.typeString(pr.Type)+": "+p.boundsString(pr.Bounds))
	}
	p.writer.WriteString(" where " + strings.Join(parts, ", "))
}

func (p *printer) genericParams(params []ast.GenericParam) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, 0, len(params))
	for _, gp := range params {
		s := p.builder.Name(gp.Name)
		if len(gp.Bounds) > 0 {
			s += ": " + p.boundsString(gp.Bounds)
		}
		parts = append(parts, s)
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

func (p *printer) boundsString(bounds []ast.Path) string {
	parts := make([]string, 0, len(bounds))
	for _, bd := range bounds {
		parts = append(parts, p.pathString(bd))
	}
	return strings.Join(parts, " + ")
}

func (p *printer) useTreeString(t ast.UseTree) string {
	segs := make([]string, 0, len(t.Prefix)+1)
	for _, seg := range t.Prefix {
		segs = append(segs, p.builder.SegmentName(seg))
	}
	switch t.Kind {
	case ast.UseGlob:
		segs = append(segs, "*")
	case ast.UseGroup:
		children := make([]string, 0, len(t.Children))
		for _, c := range t.Children {
			children = append(children, p.useTreeString(c))
		}
		segs = append(segs, "{"+strings.Join(children, ", ")+"}")
	}
	s := strings.Join(segs, "::")
	if t.Alias != source.NoStringID {
		s += " as " + p.builder.Name(t.Alias)
	}
	return s
}

func (p *printer) attrString(a ast.Attr) string {
	s := "#[" + p.builder.Name(a.Name)
	switch {
	case a.HasArgs:
		s += "(" + p.attrArgs(a.Args) + ")"
	case a.ValueKind != ast.AttrValueNone:
		s += " = " + attrValue(a.ValueKind, a.Value)
	}
	return s + "]"
}

func (p *printer) attrArgs(args []ast.AttrArg) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		s := p.builder.Name(arg.Key)
		switch arg.ValueKind {
		case ast.AttrValueList:
			s += "(" + p.attrArgs(arg.Nested) + ")"
		case ast.AttrValueNone:
		default:
			s += " = " + attrValue(arg.ValueKind, arg.Value)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}

func attrValue(kind ast.AttrValueKind, v string) string {
	if kind == ast.AttrValueString {
		return quote(v)
	}
	return v
}
