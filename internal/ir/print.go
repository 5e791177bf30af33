package ir

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"strings"
)

// Print writes a deterministic text form of m. Functions appear in Funcs
// order, which lowering keeps sorted by symbol.
func Print(w io.Writer, m *Module) error {
	if w == nil || m == nil {
		return nil
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "program %s\n", m.Program)

	if len(m.Types) > 0 {
		buf.WriteByte('\n')
		for i, t := range m.Types {
			fmt.Fprintf(&buf, "type t%d = %s %s size=%d align=%d", i, t.Kind, t.Label, t.Size, t.Align)
			if t.Memcopy {
				buf.WriteString(" memcopy")
			}
			buf.WriteByte('\n')
		}
	}

	if len(m.Storage) > 0 {
		buf.WriteByte('\n')
		for i, s := range m.Storage {
			fmt.Fprintf(&buf, "storage s%d %s: %s key=0x%s offset=%d", i, s.Path, m.TypeLabel(s.Type), hex.EncodeToString(s.Key[:]), s.Offset)
			if len(s.Init) > 0 {
				fmt.Fprintf(&buf, " init=0x%s", hex.EncodeToString(s.Init))
			}
			buf.WriteByte('\n')
		}
	}

	if len(m.Configurables) > 0 {
		buf.WriteByte('\n')
		for i, c := range m.Configurables {
			fmt.Fprintf(&buf, "config c%d %s: %s offset=%d", i, c.Name, m.TypeLabel(c.Type), c.Offset)
			if len(c.Init) > 0 {
				fmt.Fprintf(&buf, " init=0x%s", hex.EncodeToString(c.Init))
			}
			buf.WriteByte('\n')
		}
	}

	if len(m.Abi) > 0 {
		buf.WriteByte('\n')
		for _, a := range m.Abi {
			fmt.Fprintf(&buf, "abi %s selector=0x%s -> %s", a.Signature, hex.EncodeToString(a.Selector[:]), a.Symbol)
			if a.Payable {
				buf.WriteString(" payable")
			}
			if eff := effectLabel(a.Reads, a.Writes); eff != "" {
				fmt.Fprintf(&buf, " storage(%s)", eff)
			}
			buf.WriteByte('\n')
		}
	}

	if len(m.Entries) > 0 {
		fmt.Fprintf(&buf, "\nentries %s\n", strings.Join(m.Entries, ", "))
	}

	for _, f := range m.Funcs {
		buf.WriteByte('\n')
		printFunc(&buf, m, f)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// String returns the printed module.
func (m *Module) String() string {
	var sb strings.Builder
	_ = Print(&sb, m)
	return sb.String()
}

func effectLabel(r, w bool) string {
	switch {
	case r && w:
		return "read, write"
	case r:
		return "read"
	case w:
		return "write"
	}
	return ""
}

func printFunc(buf *bytes.Buffer, m *Module, f *Func) {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = fmt.Sprintf("%%%d %s: %s", p.Value, p.Name, m.TypeLabel(p.Type))
	}
	fmt.Fprintf(buf, "fn %s(%s) -> %s", f.Symbol, strings.Join(params, ", "), m.TypeLabel(f.Ret))
	if f.Entry != EntryNone {
		fmt.Fprintf(buf, " entry=%s", f.Entry)
	}
	if f.Inline != InlineDefault {
		fmt.Fprintf(buf, " inline=%s", f.Inline)
	}
	buf.WriteString(" {\n")
	for _, b := range f.Blocks {
		fmt.Fprintf(buf, "bb%d:\n", b.ID)
		for i := range b.Instrs {
			buf.WriteString("  ")
			printInstr(buf, m, &b.Instrs[i])
			buf.WriteByte('\n')
		}
		buf.WriteString("  ")
		printTerm(buf, &b.Term)
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
}

func values(vs []Value) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprintf("%%%d", v)
	}
	return strings.Join(parts, ", ")
}

func printInstr(buf *bytes.Buffer, m *Module, in *Instr) {
	if in.Dst != NoValue {
		fmt.Fprintf(buf, "%%%d = ", in.Dst)
	}
	ty := m.TypeLabel(in.Type)
	switch in.Op {
	case OpConst:
		fmt.Fprintf(buf, "const %s %s", ty, constText(m, in))
	case OpLocal:
		fmt.Fprintf(buf, "local %s %q", ty, in.Sym)
	case OpBinary:
		fmt.Fprintf(buf, "%s %s %s", BinOp(in.Index), ty, values(in.Args))
	case OpCall:
		fmt.Fprintf(buf, "call %s %s(%s)", ty, in.Sym, values(in.Args))
	case OpFieldAddr, OpExtract, OpEnumNew, OpEnumPayload:
		fmt.Fprintf(buf, "%s %s #%d", in.Op, ty, in.Index)
		if len(in.Args) > 0 {
			fmt.Fprintf(buf, ", %s", values(in.Args))
		}
	case OpConfig:
		fmt.Fprintf(buf, "config %s c%d", ty, in.Index)
	default:
		if in.Op.storageOp() {
			fmt.Fprintf(buf, "%s %s s%d", in.Op, ty, in.Index)
			for _, p := range in.Path {
				fmt.Fprintf(buf, ".%d", p)
			}
			if len(in.Args) > 0 {
				fmt.Fprintf(buf, ", %s", values(in.Args))
			}
			return
		}
		fmt.Fprintf(buf, "%s %s %s", in.Op, ty, values(in.Args))
	}
}

func constText(m *Module, in *Instr) string {
	if int(in.Type) < len(m.Types) {
		switch m.Types[in.Type].Kind {
		case TypeUnit:
			return "()"
		case TypeBool:
			if len(in.Imm) > 0 && in.Imm[len(in.Imm)-1] != 0 {
				return "true"
			}
			return "false"
		case TypeUint:
			return new(big.Int).SetBytes(in.Imm).String()
		case TypeStr, TypeStrArray:
			return fmt.Sprintf("%q", in.Imm)
		}
	}
	return "0x" + hex.EncodeToString(in.Imm)
}

func printTerm(buf *bytes.Buffer, t *Term) {
	switch t.Kind {
	case TermBr:
		fmt.Fprintf(buf, "br bb%d", t.Targets[0])
	case TermCondBr:
		fmt.Fprintf(buf, "cond_br %%%d, bb%d, bb%d", t.Value, t.Targets[0], t.Targets[1])
	case TermSwitch:
		fmt.Fprintf(buf, "switch %%%d [", t.Value)
		for i, c := range t.Cases {
			if i > 0 {
				buf.WriteString(", ")
			}
			fmt.Fprintf(buf, "%d: bb%d", c, t.Targets[i])
		}
		if len(t.Targets) > len(t.Cases) {
			fmt.Fprintf(buf, "] default bb%d", t.Targets[len(t.Cases)])
		} else {
			buf.WriteString("]")
		}
	case TermRet:
		if t.Value == NoValue {
			buf.WriteString("ret")
		} else {
			fmt.Fprintf(buf, "ret %%%d", t.Value)
		}
	case TermRevert:
		fmt.Fprintf(buf, "revert %%%d", t.Value)
	default:
		buf.WriteString(t.Kind.String())
	}
}
