package ir

import "swell/internal/source"

// Op is an instruction opcode.
type Op uint8

const (
	OpInvalid Op = iota
	// OpConst materializes Imm (big-endian) as a value of Type.
	OpConst
	// OpLocal allocates a slot of Type and yields its address.
	OpLocal
	OpLoad  // Args[0] address
	OpStore // Args[0] address, Args[1] value
	// OpFieldAddr projects Args[0] to field Index.
	OpFieldAddr
	// OpIndexAddr projects Args[0] to element Args[1].
	OpIndexAddr
	OpExtract   // field Index of aggregate Args[0]
	OpAggregate // tuple, struct or array from Args
	OpEnumNew   // variant Index with optional payload Args[0]
	OpEnumTag   // u64 tag of Args[0]
	OpEnumPayload
	OpBinary // BinOp(Index) of Args[0], Args[1]
	OpNot
	OpCall // Sym with Args
	OpStorageRead
	OpStorageWrite
	OpMapGet
	OpMapInsert
	OpMapRemove
	OpVecPush
	OpVecPop
	OpVecGet
	OpVecLen
	// OpConfig loads configurable Index.
	OpConfig
)

var opNames = [...]string{
	OpInvalid:      "invalid",
	OpConst:        "const",
	OpLocal:        "local",
	OpLoad:         "load",
	OpStore:        "store",
	OpFieldAddr:    "field_addr",
	OpIndexAddr:    "index_addr",
	OpExtract:      "extract",
	OpAggregate:    "aggregate",
	OpEnumNew:      "enum_new",
	OpEnumTag:      "enum_tag",
	OpEnumPayload:  "enum_payload",
	OpBinary:       "binary",
	OpNot:          "not",
	OpCall:         "call",
	OpStorageRead:  "storage_read",
	OpStorageWrite: "storage_write",
	OpMapGet:       "map_get",
	OpMapInsert:    "map_insert",
	OpMapRemove:    "map_remove",
	OpVecPush:      "vec_push",
	OpVecPop:       "vec_pop",
	OpVecGet:       "vec_get",
	OpVecLen:       "vec_len",
	OpConfig:       "config",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "unknown"
}

// HasResult reports whether op always defines Dst. Calls define one only
// when the callee returns a value.
func (op Op) HasResult() bool {
	switch op {
	case OpStore, OpStorageWrite, OpMapInsert, OpVecPush, OpInvalid:
		return false
	}
	return true
}

// storageOp reports whether op touches contract storage.
func (op Op) storageOp() bool {
	return op >= OpStorageRead && op <= OpVecLen
}

// BinOp is the operator of an OpBinary instruction.
type BinOp uint8

const (
	BinAdd BinOp = iota
	BinSub
	BinMul
	BinDiv
	BinRem
	BinAnd
	BinOr
	BinXor
	BinShl
	BinShr
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
)

var binNames = [...]string{
	BinAdd: "add", BinSub: "sub", BinMul: "mul", BinDiv: "div", BinRem: "rem",
	BinAnd: "and", BinOr: "or", BinXor: "xor", BinShl: "shl", BinShr: "shr",
	BinEq: "eq", BinNe: "ne", BinLt: "lt", BinLe: "le", BinGt: "gt", BinGe: "ge",
}

func (b BinOp) String() string {
	if int(b) < len(binNames) {
		return binNames[b]
	}
	return "unknown"
}

// Instr is a single instruction.
type Instr struct {
	Op   Op      `msgpack:"op"`
	Dst  Value   `msgpack:"dst,omitempty"`
	Type TypeRef `msgpack:"type"`
	Args []Value `msgpack:"args,omitempty"`
	// Imm holds constant bytes for OpConst.
	Imm []byte `msgpack:"imm,omitempty"`
	// Index is a field, variant, binary operator, storage slot or
	// configurable, depending on Op.
	Index uint32 `msgpack:"index,omitempty"`
	// Sym is the callee of OpCall or the source name of OpLocal.
	Sym string `msgpack:"sym,omitempty"`
	// Path projects into struct-typed storage for OpStorageRead/Write.
	Path []uint32    `msgpack:"path,omitempty"`
	Span source.Span `msgpack:"span"`
}

// TermKind enumerates block terminators.
type TermKind uint8

const (
	TermNone TermKind = iota
	TermBr
	TermCondBr
	TermSwitch
	TermRet
	TermRevert
	TermUnreachable
)

var termNames = [...]string{
	TermNone:        "<none>",
	TermBr:          "br",
	TermCondBr:      "cond_br",
	TermSwitch:      "switch",
	TermRet:         "ret",
	TermRevert:      "revert",
	TermUnreachable: "unreachable",
}

func (k TermKind) String() string {
	if int(k) < len(termNames) {
		return termNames[k]
	}
	return "unknown"
}

// Term ends a block.
//
//	br        Targets[0]
//	cond_br   Value ? Targets[0] : Targets[1]
//	switch    Cases[i] -> Targets[i], default Targets[len(Cases)]
//	ret       Value (NoValue for unit)
//	revert    Value is the u64 code
type Term struct {
	Kind    TermKind    `msgpack:"kind"`
	Value   Value       `msgpack:"value,omitempty"`
	Targets []BlockID   `msgpack:"targets,omitempty"`
	Cases   []uint64    `msgpack:"cases,omitempty"`
	Span    source.Span `msgpack:"span"`
}

// Uses returns the values read by the terminator.
func (t *Term) Uses() []Value {
	if t.Value == NoValue {
		return nil
	}
	return []Value{t.Value}
}
