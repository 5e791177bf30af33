package lower

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"

	"swell/internal/hir"
	"swell/internal/ir"
	"swell/internal/types"
)

// Selector returns the first four bytes of keccak256(signature).
func Selector(signature string) [4]byte {
	var sum [32]byte
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write([]byte(signature))
	h.Sum(sum[:0])
	var sel [4]byte
	copy(sel[:], sum[:4])
	return sel
}

// abiMethods describes ABI entry points in declaration order. Two methods
// with the same selector are rejected.
func (l *lowerer) abiMethods() ([]ir.AbiMethod, error) {
	var out []ir.AbiMethod
	seen := make(map[[4]byte]string)
	for _, id := range l.prog.Entries {
		f := l.prog.Func(id)
		if f == nil || f.Entry != hir.EntryAbi || f.Body == nil {
			continue
		}
		sig := l.signature(f)
		sel := Selector(sig)
		if prev, ok := seen[sel]; ok {
			return nil, fmt.Errorf("abi methods %s and %s share selector %x", prev, sig, sel)
		}
		seen[sel] = sig
		out = append(out, ir.AbiMethod{
			Name:      f.Name,
			Signature: sig,
			Selector:  sel,
			Symbol:    f.Symbol,
			Payable:   f.Flags.HasFlag(hir.FuncPayable),
			Reads:     f.Declared.Has(hir.EffectRead),
			Writes:    f.Declared.Has(hir.EffectWrite),
		})
	}
	return out, nil
}

// signature renders `name(t1,t2)` with canonical parameter types.
func (l *lowerer) signature(f *hir.Func) string {
	var sb strings.Builder
	sb.WriteString(f.Name)
	sb.WriteByte('(')
	for i, p := range f.Params {
		if i > 0 {
			sb.WriteByte(',')
		}
		l.canonical(&sb, l.prog.Normalize(p.Type))
	}
	sb.WriteByte(')')
	return sb.String()
}

func (l *lowerer) canonical(sb *strings.Builder, id types.TypeID) {
	t, ok := l.in.Lookup(id)
	if !ok {
		sb.WriteString("?")
		return
	}
	list := func(ids []types.TypeID) {
		for i, e := range ids {
			if i > 0 {
				sb.WriteByte(',')
			}
			l.canonical(sb, e)
		}
	}
	switch t.Kind {
	case types.KindUnit:
		sb.WriteString("()")
	case types.KindBool:
		sb.WriteString("bool")
	case types.KindUint:
		fmt.Fprintf(sb, "u%d", t.Width)
	case types.KindB256:
		sb.WriteString("b256")
	case types.KindStr:
		sb.WriteString("str")
	case types.KindStrArray:
		fmt.Fprintf(sb, "str[%d]", t.Count)
	case types.KindTuple:
		sb.WriteByte('(')
		list(t.Args)
		sb.WriteByte(')')
	case types.KindArray:
		sb.WriteByte('[')
		l.canonical(sb, t.Elem)
		fmt.Fprintf(sb, ";%d]", t.Count)
	case types.KindRef:
		l.canonical(sb, t.Elem)
	case types.KindStruct:
		sb.WriteString("s(")
		list(l.in.StructFields(id))
		sb.WriteByte(')')
	case types.KindEnum:
		sb.WriteString("e(")
		list(l.in.VariantTypes(id))
		sb.WriteByte(')')
	default:
		sb.WriteString(l.in.Label(id))
	}
}
