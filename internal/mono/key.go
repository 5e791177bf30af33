package mono

import (
	"slices"
	"strconv"
	"strings"

	"swell/internal/symbols"
	"swell/internal/types"
)

// Key identifies one instantiation of a generic declaration.
//
// Note: Go maps cannot use slices as keys, so we store a stable ArgsKey string.
// The type arguments themselves travel next to the key.
type Key struct {
	Decl    symbols.DeclID
	ArgsKey string
}

// NewKey builds the key of (decl, args). Interned TypeIDs are stable, so
// equal argument lists produce equal keys.
func NewKey(decl symbols.DeclID, args []types.TypeID) Key {
	return Key{Decl: decl, ArgsKey: argsKey(args)}
}

func argsKey(args []types.TypeID) string {
	if len(args) == 0 {
		return ""
	}
	var b strings.Builder
	for i, arg := range args {
		if i > 0 {
			b.WriteByte('#')
		}
		b.WriteString(strconv.FormatUint(uint64(arg), 10))
	}
	return b.String()
}

// Symbol renders the stable symbol name `base<arg, ...>` of an instance.
func Symbol(in *types.Interner, base string, args []types.TypeID) string {
	if len(args) == 0 {
		return base
	}
	labels := make([]string, len(args))
	for i, a := range args {
		labels[i] = types.Label(in, a)
	}
	return base + "<" + strings.Join(labels, ", ") + ">"
}

// CompareKeys orders keys by declaration, then by arguments.
func CompareKeys(a, b Key) int {
	if a.Decl != b.Decl {
		if a.Decl < b.Decl {
			return -1
		}
		return 1
	}
	return strings.Compare(a.ArgsKey, b.ArgsKey)
}

func cloneArgs(args []types.TypeID) []types.TypeID {
	if len(args) == 0 {
		return nil
	}
	return slices.Clone(args)
}
