// Package ir is the SSA intermediate representation handed to the backend.
//
// Values are numbered per function starting at 1; locals live in slots
// produced by `local` and are accessed with `load` and `store`. Every block
// ends with exactly one terminator. Types are descriptors in a module-wide
// table so the backend does not need the front-end interner.
package ir

import "swell/internal/source"

// Value names an SSA value inside a function. NoValue is the absent value.
type Value uint32

const NoValue Value = 0

// BlockID indexes Func.Blocks.
type BlockID uint32

// TypeRef indexes Module.Types.
type TypeRef uint32

// EntryKind classifies externally reachable functions.
type EntryKind uint8

const (
	EntryNone EntryKind = iota
	EntryAbi
	EntryMain
	EntryTest
)

func (k EntryKind) String() string {
	switch k {
	case EntryAbi:
		return "abi"
	case EntryMain:
		return "main"
	case EntryTest:
		return "test"
	}
	return "none"
}

// Inline mirrors `#[inline(...)]`.
type Inline uint8

const (
	InlineDefault Inline = iota
	InlineNever
	InlineAlways
)

func (h Inline) String() string {
	switch h {
	case InlineNever:
		return "never"
	case InlineAlways:
		return "always"
	}
	return "default"
}

// Module is a lowered program.
type Module struct {
	Program       string         `msgpack:"program"`
	Types         []Type         `msgpack:"types"`
	Funcs         []*Func        `msgpack:"funcs"` // sorted by Symbol
	Storage       []StorageSlot  `msgpack:"storage,omitempty"`
	Configurables []Configurable `msgpack:"configurables,omitempty"`
	Abi           []AbiMethod    `msgpack:"abi,omitempty"`
	// Entries lists entry point symbols in declaration order.
	Entries []string `msgpack:"entries,omitempty"`
}

// Func is one lowered function or generic instance.
type Func struct {
	Symbol    string      `msgpack:"symbol"`
	Params    []Param     `msgpack:"params,omitempty"`
	Ret       TypeRef     `msgpack:"ret"`
	Blocks    []*Block    `msgpack:"blocks"`
	NumValues uint32      `msgpack:"num_values"`
	Inline    Inline      `msgpack:"inline,omitempty"`
	Entry     EntryKind   `msgpack:"entry,omitempty"`
	Span      source.Span `msgpack:"span"`
}

// Param is a function parameter; its Value is defined on entry.
type Param struct {
	Name  string  `msgpack:"name"`
	Value Value   `msgpack:"value"`
	Type  TypeRef `msgpack:"type"`
}

// Block is a basic block.
type Block struct {
	ID     BlockID `msgpack:"id"`
	Instrs []Instr `msgpack:"instrs,omitempty"`
	Term   Term    `msgpack:"term"`
}

// Terminated reports whether the block already ends with a terminator.
func (b *Block) Terminated() bool {
	return b != nil && b.Term.Kind != TermNone
}

// Func returns the function with the given symbol.
func (m *Module) Func(symbol string) *Func {
	for _, f := range m.Funcs {
		if f.Symbol == symbol {
			return f
		}
	}
	return nil
}

// StorageSlot is one top-level storage field. Struct field projections
// are addressed by an instruction path relative to the slot.
type StorageSlot struct {
	Path string  `msgpack:"path"`
	Type TypeRef `msgpack:"type"`
	// Key is keccak256 of the slot path; collections derive element keys
	// from it.
	Key [32]byte `msgpack:"key"`
	// Offset is the position of the value in the packed storage image;
	// collections take no room there.
	Offset uint32 `msgpack:"offset"`
	// Init is the encoded initial value; empty for collections.
	Init []byte `msgpack:"init,omitempty"`
}

// Configurable is a value patched into the binary at deployment.
type Configurable struct {
	Name   string  `msgpack:"name"`
	Type   TypeRef `msgpack:"type"`
	Offset uint32  `msgpack:"offset"`
	Init   []byte  `msgpack:"init,omitempty"`
}

// AbiMethod describes one externally callable contract method.
type AbiMethod struct {
	Name string `msgpack:"name"`
	// Signature is `name(t1,t2)` over canonical type names.
	Signature string  `msgpack:"signature"`
	Selector  [4]byte `msgpack:"selector"`
	Symbol    string  `msgpack:"symbol"`
	Payable   bool    `msgpack:"payable,omitempty"`
	Reads     bool    `msgpack:"reads,omitempty"`
	Writes    bool    `msgpack:"writes,omitempty"`
}
