package ir

import "swell/internal/source"

// Builder appends instructions to a function under construction.
type Builder struct {
	f   *Func
	cur BlockID
}

// NewBuilder starts a function with an empty entry block.
func NewBuilder(symbol string, ret TypeRef, span source.Span) *Builder {
	b := &Builder{f: &Func{Symbol: symbol, Ret: ret, Span: span}}
	b.cur = b.NewBlock()
	return b
}

// Func returns the function being built.
func (b *Builder) Func() *Func { return b.f }

func (b *Builder) fresh() Value {
	b.f.NumValues++
	return Value(b.f.NumValues)
}

// Param declares the next parameter. Params must be declared before any
// instruction is emitted.
func (b *Builder) Param(name string, ty TypeRef) Value {
	v := b.fresh()
	b.f.Params = append(b.f.Params, Param{Name: name, Value: v, Type: ty})
	return v
}

// NewBlock appends an empty block without switching to it.
func (b *Builder) NewBlock() BlockID {
	id := BlockID(len(b.f.Blocks))
	b.f.Blocks = append(b.f.Blocks, &Block{ID: id})
	return id
}

// SetBlock makes id the insertion point.
func (b *Builder) SetBlock(id BlockID) { b.cur = id }

// Current returns the insertion block.
func (b *Builder) Current() BlockID { return b.cur }

// Terminated reports whether the insertion block is closed.
func (b *Builder) Terminated() bool { return b.f.Blocks[b.cur].Terminated() }

func (b *Builder) block() *Block {
	blk := b.f.Blocks[b.cur]
	if blk.Terminated() {
		// код после return/revert: складываем в мёртвый блок
		b.cur = b.NewBlock()
		blk = b.f.Blocks[b.cur]
	}
	return blk
}

// Emit appends in, assigning Dst when the op produces a value.
func (b *Builder) Emit(in Instr) Value {
	blk := b.block()
	if in.Op.HasResult() && in.Dst == NoValue {
		in.Dst = b.fresh()
	}
	blk.Instrs = append(blk.Instrs, in)
	return in.Dst
}

func (b *Builder) Const(ty TypeRef, imm []byte, sp source.Span) Value {
	return b.Emit(Instr{Op: OpConst, Type: ty, Imm: imm, Span: sp})
}

func (b *Builder) Local(ty TypeRef, name string, sp source.Span) Value {
	return b.Emit(Instr{Op: OpLocal, Type: ty, Sym: name, Span: sp})
}

func (b *Builder) Load(ty TypeRef, addr Value, sp source.Span) Value {
	return b.Emit(Instr{Op: OpLoad, Type: ty, Args: []Value{addr}, Span: sp})
}

func (b *Builder) Store(ty TypeRef, addr, v Value, sp source.Span) {
	b.Emit(Instr{Op: OpStore, Type: ty, Args: []Value{addr, v}, Span: sp})
}

func (b *Builder) FieldAddr(ty TypeRef, addr Value, field uint32, sp source.Span) Value {
	return b.Emit(Instr{Op: OpFieldAddr, Type: ty, Args: []Value{addr}, Index: field, Span: sp})
}

func (b *Builder) IndexAddr(ty TypeRef, addr, index Value, sp source.Span) Value {
	return b.Emit(Instr{Op: OpIndexAddr, Type: ty, Args: []Value{addr, index}, Span: sp})
}

func (b *Builder) Extract(ty TypeRef, agg Value, field uint32, sp source.Span) Value {
	return b.Emit(Instr{Op: OpExtract, Type: ty, Args: []Value{agg}, Index: field, Span: sp})
}

func (b *Builder) Aggregate(ty TypeRef, elems []Value, sp source.Span) Value {
	return b.Emit(Instr{Op: OpAggregate, Type: ty, Args: elems, Span: sp})
}

// EnumNew builds variant tag; payload may be NoValue for unit variants.
func (b *Builder) EnumNew(ty TypeRef, tag uint32, payload Value, sp source.Span) Value {
	in := Instr{Op: OpEnumNew, Type: ty, Index: tag, Span: sp}
	if payload != NoValue {
		in.Args = []Value{payload}
	}
	return b.Emit(in)
}

func (b *Builder) EnumTag(u64 TypeRef, v Value, sp source.Span) Value {
	return b.Emit(Instr{Op: OpEnumTag, Type: u64, Args: []Value{v}, Span: sp})
}

func (b *Builder) EnumPayload(ty TypeRef, v Value, tag uint32, sp source.Span) Value {
	return b.Emit(Instr{Op: OpEnumPayload, Type: ty, Args: []Value{v}, Index: tag, Span: sp})
}

func (b *Builder) Binary(op BinOp, ty TypeRef, x, y Value, sp source.Span) Value {
	return b.Emit(Instr{Op: OpBinary, Type: ty, Args: []Value{x, y}, Index: uint32(op), Span: sp})
}

func (b *Builder) Not(ty TypeRef, x Value, sp source.Span) Value {
	return b.Emit(Instr{Op: OpNot, Type: ty, Args: []Value{x}, Span: sp})
}

// Call emits a call to sym. With result false the call defines no value.
func (b *Builder) Call(sym string, ty TypeRef, result bool, args []Value, sp source.Span) Value {
	in := Instr{Op: OpCall, Type: ty, Sym: sym, Args: args, Span: sp}
	if !result {
		blk := b.block()
		blk.Instrs = append(blk.Instrs, in)
		return NoValue
	}
	return b.Emit(in)
}

// Storage emits a storage instruction on slot.
func (b *Builder) Storage(op Op, ty TypeRef, slot uint32, path []uint32, args []Value, sp source.Span) Value {
	return b.Emit(Instr{Op: op, Type: ty, Index: slot, Path: path, Args: args, Span: sp})
}

func (b *Builder) Config(ty TypeRef, index uint32, sp source.Span) Value {
	return b.Emit(Instr{Op: OpConfig, Type: ty, Index: index, Span: sp})
}

func (b *Builder) terminate(t Term) {
	blk := b.f.Blocks[b.cur]
	if blk.Terminated() {
		return
	}
	blk.Term = t
}

func (b *Builder) Br(target BlockID, sp source.Span) {
	b.terminate(Term{Kind: TermBr, Targets: []BlockID{target}, Span: sp})
}

func (b *Builder) CondBr(cond Value, then, els BlockID, sp source.Span) {
	b.terminate(Term{Kind: TermCondBr, Value: cond, Targets: []BlockID{then, els}, Span: sp})
}

// Switch branches on v; targets has one entry per case plus the default.
func (b *Builder) Switch(v Value, cases []uint64, targets []BlockID, sp source.Span) {
	b.terminate(Term{Kind: TermSwitch, Value: v, Cases: cases, Targets: targets, Span: sp})
}

func (b *Builder) Ret(v Value, sp source.Span) {
	b.terminate(Term{Kind: TermRet, Value: v, Span: sp})
}

func (b *Builder) Revert(code Value, sp source.Span) {
	b.terminate(Term{Kind: TermRevert, Value: code, Span: sp})
}

func (b *Builder) Unreachable(sp source.Span) {
	b.terminate(Term{Kind: TermUnreachable, Span: sp})
}

// Finish closes dangling blocks with unreachable and returns the function.
func (b *Builder) Finish() *Func {
	for _, blk := range b.f.Blocks {
		if !blk.Terminated() {
			blk.Term = Term{Kind: TermUnreachable}
		}
	}
	return b.f
}
