package types

import (
	"strconv"
	"strings"

	"swell/internal/symbols"
)

// Label returns a user-friendly label for a TypeID.
func Label(in *Interner, id TypeID) string {
	var sb strings.Builder
	in.label(&sb, id, 0)
	return sb.String()
}

// Label is the method form of the package-level Label.
func (in *Interner) Label(id TypeID) string { return Label(in, id) }

func (in *Interner) declName(decl symbols.DeclID) string {
	in.mu.RLock()
	namer := in.namer
	in.mu.RUnlock()
	if namer == nil {
		return "decl#" + strconv.FormatUint(uint64(decl), 10)
	}
	return namer(decl)
}

func (in *Interner) label(sb *strings.Builder, id TypeID, depth int) {
	if depth > 8 {
		sb.WriteString("...")
		return
	}
	tt, ok := in.Lookup(id)
	if !ok {
		sb.WriteString("?")
		return
	}
	switch tt.Kind {
	case KindError:
		sb.WriteString("{error}")
	case KindUnit:
		sb.WriteString("()")
	case KindNever:
		sb.WriteString("!")
	case KindBool:
		sb.WriteString("bool")
	case KindUint:
		sb.WriteString("u")
		sb.WriteString(strconv.Itoa(int(tt.Width)))
	case KindB256:
		sb.WriteString("b256")
	case KindStr:
		sb.WriteString("str")
	case KindStrArray:
		sb.WriteString("str[")
		sb.WriteString(strconv.FormatUint(uint64(tt.Count), 10))
		sb.WriteString("]")
	case KindContract:
		sb.WriteString("Contract")
	case KindTuple:
		sb.WriteString("(")
		in.labelList(sb, tt.Args, depth)
		if len(tt.Args) == 1 {
			sb.WriteString(",")
		}
		sb.WriteString(")")
	case KindArray:
		sb.WriteString("[")
		in.label(sb, tt.Elem, depth+1)
		sb.WriteString("; ")
		sb.WriteString(strconv.FormatUint(uint64(tt.Count), 10))
		sb.WriteString("]")
	case KindRef:
		sb.WriteString("&")
		if tt.Mutable {
			sb.WriteString("mut ")
		}
		in.label(sb, tt.Elem, depth+1)
	case KindStruct, KindEnum:
		sb.WriteString(in.declName(tt.Decl))
		if len(tt.Args) > 0 {
			sb.WriteString("<")
			in.labelList(sb, tt.Args, depth)
			sb.WriteString(">")
		}
	case KindGeneric:
		sb.WriteString(tt.Name)
	case KindSelf:
		sb.WriteString("Self")
	case KindVar:
		sb.WriteString("_")
	case KindStorageMap:
		sb.WriteString("StorageMap<")
		in.labelList(sb, tt.Args, depth)
		sb.WriteString(">")
	case KindStorageVec:
		sb.WriteString("StorageVec<")
		in.label(sb, tt.Elem, depth+1)
		sb.WriteString(">")
	case KindAssoc:
		sb.WriteString("<")
		in.label(sb, tt.Elem, depth+1)
		sb.WriteString(" as ")
		sb.WriteString(in.declName(tt.Decl))
		sb.WriteString(">::")
		sb.WriteString(tt.Name)
	default:
		sb.WriteString(tt.Kind.String())
	}
}

func (in *Interner) labelList(sb *strings.Builder, ids []TypeID, depth int) {
	for i, a := range ids {
		if i > 0 {
			sb.WriteString(", ")
		}
		in.label(sb, a, depth+1)
	}
}
