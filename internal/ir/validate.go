package ir

import (
	"errors"
	"fmt"
)

// Validate checks module invariants: every block has one terminator with
// valid targets, every value is defined exactly once and every use is
// dominated by its definition.
func Validate(m *Module) error {
	if m == nil {
		return nil
	}
	var errs []error
	syms := make(map[string]bool, len(m.Funcs))
	for i, f := range m.Funcs {
		if syms[f.Symbol] {
			errs = append(errs, fmt.Errorf("function %s: defined twice", f.Symbol))
		}
		syms[f.Symbol] = true
		if i > 0 && m.Funcs[i-1].Symbol > f.Symbol {
			errs = append(errs, fmt.Errorf("function %s: functions are not sorted by symbol", f.Symbol))
		}
	}
	for _, f := range m.Funcs {
		if err := validateFunc(m, f, syms); err != nil {
			errs = append(errs, fmt.Errorf("function %s: %w", f.Symbol, err))
		}
	}
	for _, e := range m.Entries {
		if !syms[e] {
			errs = append(errs, fmt.Errorf("entry %s: no such function", e))
		}
	}
	for _, a := range m.Abi {
		if !syms[a.Symbol] {
			errs = append(errs, fmt.Errorf("abi %s: no such function %s", a.Signature, a.Symbol))
		}
	}
	return errors.Join(errs...)
}

type funcCheck struct {
	m    *Module
	f    *Func
	syms map[string]bool
	errs []error
	// defBlock[v] is the block defining v, -1 for params
	defBlock []int
	defPos   []int
	idom     []int
}

func (c *funcCheck) errorf(format string, args ...any) {
	c.errs = append(c.errs, fmt.Errorf(format, args...))
}

func validateFunc(m *Module, f *Func, syms map[string]bool) error {
	c := &funcCheck{m: m, f: f, syms: syms}
	if len(f.Blocks) == 0 {
		return errors.New("no blocks")
	}
	c.checkType(f.Ret, "return type")
	c.checkBlocks()
	if len(c.errs) > 0 {
		// без корректного CFG доминаторы не посчитать
		return errors.Join(c.errs...)
	}
	c.collectDefs()
	c.computeDominators()
	c.checkUses()
	return errors.Join(c.errs...)
}

func (c *funcCheck) checkType(ref TypeRef, what string) {
	if int(ref) >= len(c.m.Types) {
		c.errorf("%s: type t%d out of range", what, ref)
	}
}

func (c *funcCheck) checkBlocks() {
	n := len(c.f.Blocks)
	for i, b := range c.f.Blocks {
		if int(b.ID) != i {
			c.errorf("bb%d: stored at index %d", b.ID, i)
		}
		t := &b.Term
		want := -1
		switch t.Kind {
		case TermNone:
			c.errorf("bb%d: missing terminator", i)
		case TermBr:
			want = 1
		case TermCondBr:
			want = 2
		case TermSwitch:
			want = len(t.Cases) + 1
			seen := make(map[uint64]bool, len(t.Cases))
			for _, v := range t.Cases {
				if seen[v] {
					c.errorf("bb%d: duplicate switch case %d", i, v)
				}
				seen[v] = true
			}
		default:
			want = 0
		}
		if want >= 0 && len(t.Targets) != want {
			c.errorf("bb%d: %s has %d targets, want %d", i, t.Kind, len(t.Targets), want)
		}
		for _, tg := range t.Targets {
			if int(tg) >= n {
				c.errorf("bb%d: branch to missing bb%d", i, tg)
			}
		}
		if (t.Kind == TermCondBr || t.Kind == TermSwitch || t.Kind == TermRevert) && t.Value == NoValue {
			c.errorf("bb%d: %s without operand", i, t.Kind)
		}
		if t.Kind == TermRet && t.Value == NoValue && int(c.f.Ret) < len(c.m.Types) {
			if k := c.m.Types[c.f.Ret].Kind; k != TypeUnit && k != TypeNever {
				c.errorf("bb%d: ret without value in function returning %s", i, c.m.Types[c.f.Ret].Label)
			}
		}
	}
}

func (c *funcCheck) collectDefs() {
	nv := int(c.f.NumValues) + 1
	c.defBlock = make([]int, nv)
	c.defPos = make([]int, nv)
	for i := range c.defBlock {
		c.defBlock[i] = -2
	}
	define := func(v Value, blk, pos int, where string) {
		if v == NoValue || int(v) >= nv {
			c.errorf("%s: value %%%d out of range", where, v)
			return
		}
		if c.defBlock[v] != -2 {
			c.errorf("%s: value %%%d defined more than once", where, v)
			return
		}
		c.defBlock[v] = blk
		c.defPos[v] = pos
	}
	for _, p := range c.f.Params {
		c.checkType(p.Type, "param "+p.Name)
		define(p.Value, -1, 0, "param "+p.Name)
	}
	for bi, b := range c.f.Blocks {
		for ii := range b.Instrs {
			in := &b.Instrs[ii]
			where := fmt.Sprintf("bb%d: %s", bi, in.Op)
			c.checkType(in.Type, where)
			c.checkInstr(in, where)
			switch {
			case in.Op.HasResult() && in.Op != OpCall && in.Dst == NoValue:
				c.errorf("%s: missing result", where)
			case !in.Op.HasResult() && in.Dst != NoValue:
				c.errorf("%s: defines %%%d but produces no value", where, in.Dst)
			case in.Dst != NoValue:
				define(in.Dst, bi, ii, where)
			}
		}
	}
}

func (c *funcCheck) checkInstr(in *Instr, where string) {
	arity := map[Op]int{
		OpLoad: 1, OpStore: 2, OpFieldAddr: 1, OpIndexAddr: 2, OpExtract: 1,
		OpEnumTag: 1, OpEnumPayload: 1, OpBinary: 2, OpNot: 1,
		OpStorageRead: 0, OpStorageWrite: 1, OpMapGet: 1, OpMapInsert: 2,
		OpMapRemove: 1, OpVecPush: 1, OpVecPop: 0, OpVecGet: 1, OpVecLen: 0,
		OpConst: 0, OpLocal: 0, OpConfig: 0,
	}
	if want, ok := arity[in.Op]; ok && len(in.Args) != want {
		c.errorf("%s: %d operands, want %d", where, len(in.Args), want)
	}
	switch {
	case in.Op == OpInvalid:
		c.errorf("%s: invalid opcode", where)
	case in.Op == OpBinary && in.Index > uint32(BinGe):
		c.errorf("%s: unknown operator %d", where, in.Index)
	case in.Op == OpCall && !c.syms[in.Sym]:
		c.errorf("%s: call to unknown function %s", where, in.Sym)
	case in.Op.storageOp() && int(in.Index) >= len(c.m.Storage):
		c.errorf("%s: storage slot s%d out of range", where, in.Index)
	case in.Op == OpConfig && int(in.Index) >= len(c.m.Configurables):
		c.errorf("%s: configurable c%d out of range", where, in.Index)
	case in.Op == OpEnumNew && len(in.Args) > 1:
		c.errorf("%s: more than one payload", where)
	}
}

// computeDominators uses the iterative algorithm of Cooper, Harvey and
// Kennedy over reverse postorder. Unreachable blocks keep idom -1.
func (c *funcCheck) computeDominators() {
	n := len(c.f.Blocks)
	order := make([]int, 0, n)
	seen := make([]bool, n)
	var dfs func(int)
	dfs = func(b int) {
		seen[b] = true
		for _, t := range c.f.Blocks[b].Term.Targets {
			if !seen[t] {
				dfs(int(t))
			}
		}
		order = append(order, b)
	}
	dfs(0)
	rpo := make([]int, n)
	for i := range rpo {
		rpo[i] = -1
	}
	for i, b := range order {
		rpo[b] = len(order) - 1 - i
	}
	preds := make([][]int, n)
	for b, blk := range c.f.Blocks {
		if !seen[b] {
			continue
		}
		for _, t := range blk.Term.Targets {
			preds[t] = append(preds[t], b)
		}
	}
	idom := make([]int, n)
	for i := range idom {
		idom[i] = -1
	}
	idom[0] = 0
	intersect := func(a, b int) int {
		for a != b {
			for rpo[a] > rpo[b] {
				a = idom[a]
			}
			for rpo[b] > rpo[a] {
				b = idom[b]
			}
		}
		return a
	}
	for changed := true; changed; {
		changed = false
		for i := len(order) - 1; i >= 0; i-- {
			b := order[i]
			if b == 0 {
				continue
			}
			nd := -1
			for _, p := range preds[b] {
				if idom[p] == -1 {
					continue
				}
				if nd == -1 {
					nd = p
				} else {
					nd = intersect(p, nd)
				}
			}
			if nd != -1 && idom[b] != nd {
				idom[b] = nd
				changed = true
			}
		}
	}
	c.idom = idom
}

// dominates reports whether block a dominates block b.
func (c *funcCheck) dominates(a, b int) bool {
	for {
		if a == b {
			return true
		}
		if b == 0 || c.idom[b] == -1 {
			return false
		}
		b = c.idom[b]
	}
}

func (c *funcCheck) checkUses() {
	use := func(v Value, blk, pos int, where string) {
		if v == NoValue || int(v) >= len(c.defBlock) || c.defBlock[v] == -2 {
			c.errorf("%s: use of undefined value %%%d", where, v)
			return
		}
		if c.idom[blk] == -1 {
			return
		}
		db := c.defBlock[v]
		switch {
		case db == -1:
		case db == blk:
			if c.defPos[v] >= pos {
				c.errorf("%s: %%%d used before its definition", where, v)
			}
		case !c.dominates(db, blk):
			c.errorf("%s: definition of %%%d in bb%d does not dominate use", where, v, db)
		}
	}
	for bi, b := range c.f.Blocks {
		for ii := range b.Instrs {
			in := &b.Instrs[ii]
			for _, a := range in.Args {
				use(a, bi, ii, fmt.Sprintf("bb%d: %s", bi, in.Op))
			}
		}
		for _, v := range b.Term.Uses() {
			use(v, bi, len(b.Instrs), fmt.Sprintf("bb%d: %s", bi, b.Term.Kind))
		}
	}
}
