package format

import (
	"strings"

	"swell/internal/ast"
)

func (p *printer) typeString(id ast.TypeID) string {
	b := p.builder
	ty := b.Types.Get(id)
	if ty == nil {
		return "_"
	}
	switch ty.Kind {
	case ast.TypePath:
		tp, _ := b.Types.Path(id)
		return p.pathString(tp.Path)
	case ast.TypeTuple:
		tt, _ := b.Types.Tuple(id)
		parts := make([]string, 0, len(tt.Elems))
		for _, e := range tt.Elems {
			parts = append(parts, p.typeString(e))
		}
		if len(parts) == 1 {
			return "(" + parts[0] + ",)"
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case ast.TypeArray:
		arr, _ := b.Types.Array(id)
		return "[" + p.typeString(arr.Elem) + "; " + p.exprString(arr.Len) + "]"
	case ast.TypeStrArray:
		arr, _ := b.Types.Array(id)
		return "str[" + p.exprString(arr.Len) + "]"
	case ast.TypeRef:
		ref, _ := b.Types.Ref(id)
		if ref.Mut {
			return "&mut " + p.typeString(ref.Inner)
		}
		return "&" + p.typeString(ref.Inner)
	case ast.TypeNever:
		return "!"
	case ast.TypeInfer:
		return "_"
	}
	return "{error}"
}

// pathString печатает путь вместе с generic-аргументами.
func (p *printer) pathString(path ast.Path) string {
	var sb strings.Builder
	if path.Absolute {
		sb.WriteString("::")
	}
	for i, seg := range path.Segments {
		if i > 0 {
			sb.WriteString("::")
		}
		sb.WriteString(p.builder.SegmentName(seg))
		if len(seg.Args) > 0 {
			if seg.Turbofish {
				sb.WriteString("::")
			}
			args := make([]string, 0, len(seg.Args))
			for _, a := range seg.Args {
				args = append(args, p.typeString(a))
			}
			sb.WriteString("<" + strings.Join(args, ", ") + ">")
		}
	}
	return sb.String()
}
