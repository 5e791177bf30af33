package hir

import (
	"fmt"
	"io"
	"strings"

	"swell/internal/types"
)

// Dump writes a readable tree of every function with a body. The output is
// deterministic and used by `swell check --dump-hir` and tests.
func Dump(w io.Writer, p *Program) error {
	pr := &printer{w: w, in: p.Types}
	for _, f := range p.Funcs {
		if f.Body == nil {
			continue
		}
		sig := make([]string, len(f.Params))
		for i, par := range f.Params {
			sig[i] = par.Name + ": " + types.Label(p.Types, par.Type)
		}
		pr.line(0, "fn %s(%s) -> %s", f.Symbol, strings.Join(sig, ", "), types.Label(p.Types, f.Ret))
		pr.expr(1, f.Body)
	}
	return pr.err
}

type printer struct {
	w   io.Writer
	in  *types.Interner
	err error
}

func (p *printer) line(depth int, format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, "%s%s\n", strings.Repeat("  ", depth), fmt.Sprintf(format, args...))
}

func (p *printer) expr(depth int, e *Expr) {
	if e == nil {
		return
	}
	head := e.Kind.String()
	switch d := e.Data.(type) {
	case LiteralData:
		switch d.Kind {
		case LiteralInt:
			head += " " + d.Int.String()
		case LiteralBool:
			head += fmt.Sprintf(" %t", d.Bool)
		case LiteralString:
			head += fmt.Sprintf(" %q", d.String)
		case LiteralB256:
			head += fmt.Sprintf(" 0x%x", d.B256)
		}
	case LocalData:
		head += " " + d.Name
	case ConstData:
		head += " " + d.Name
	case CallData:
		head += fmt.Sprintf(" decl#%d", d.Fn)
		if len(d.TypeArgs) > 0 {
			args := make([]string, len(d.TypeArgs))
			for i, a := range d.TypeArgs {
				args[i] = types.Label(p.in, a)
			}
			head += "<" + strings.Join(args, ", ") + ">"
		}
	case FieldData:
		head += fmt.Sprintf(" .%d", d.Index)
	case UnaryData:
		head += " " + d.Op.String()
	case BinaryData:
		head += " " + d.Op.String()
	case AssignData:
		head += " " + d.Op.String()
	case VariantData:
		head += " " + d.Name
	case StorageData:
		head += " " + strings.Join(append([]string{d.Name}, d.Names...), ".")
	case StorageOpData:
		head += " " + d.Op.String()
	}
	p.line(depth, "%s: %s", head, types.Label(p.in, e.Type))
	if blk, ok := e.Data.(BlockData); ok {
		for _, st := range blk.Block.Stmts {
			if st.Kind == StmtLet {
				p.line(depth+1, "let %s", p.pat(st.Pat))
			}
			p.expr(depth+2, st.Value)
		}
		if blk.Block.Tail != nil {
			p.line(depth+1, "tail")
			p.expr(depth+2, blk.Block.Tail)
		}
		return
	}
	if m, ok := e.Data.(MatchData); ok {
		p.expr(depth+1, m.Scrutinee)
		for _, arm := range m.Arms {
			p.line(depth+1, "arm %s", p.pat(arm.Pat))
			p.expr(depth+2, arm.Body)
		}
		return
	}
	for _, c := range Children(e) {
		p.expr(depth+1, c)
	}
}

func (p *printer) pat(pt *Pattern) string {
	if pt == nil {
		return "_"
	}
	switch pt.Kind {
	case PatWild:
		return "_"
	case PatBind:
		if pt.Mut {
			return "mut " + pt.Name
		}
		return pt.Name
	case PatLiteral:
		switch pt.Lit.Kind {
		case LiteralInt:
			return pt.Lit.Int.String()
		case LiteralBool:
			return fmt.Sprint(pt.Lit.Bool)
		}
		return "lit"
	case PatConst:
		return pt.Name
	case PatTuple, PatOr:
		parts := make([]string, len(pt.Elems))
		for i, e := range pt.Elems {
			parts[i] = p.pat(e)
		}
		if pt.Kind == PatOr {
			return strings.Join(parts, " | ")
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case PatVariant:
		if len(pt.Elems) == 1 {
			return fmt.Sprintf("%s(%s)", pt.Name, p.pat(pt.Elems[0]))
		}
		return pt.Name
	case PatStruct:
		parts := make([]string, len(pt.Fields))
		for i, f := range pt.Fields {
			parts[i] = fmt.Sprintf("%d: %s", f.Index, p.pat(f.Pat))
		}
		return fmt.Sprintf("%s { %s }", types.Label(p.in, pt.Type), strings.Join(parts, ", "))
	}
	return "<error>"
}
