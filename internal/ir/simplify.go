package ir

// Simplify cleans up the control flow graph of f:
//  1. branches to empty `br` blocks jump straight to the final target
//  2. blocks unreachable from the entry are removed
//  3. the remaining blocks are renumbered in their original order
//
// The entry block always stays bb0.
func Simplify(f *Func) {
	if f == nil || len(f.Blocks) == 0 {
		return
	}
	redirect := forwarding(f)
	for _, b := range f.Blocks {
		for i, t := range b.Term.Targets {
			b.Term.Targets[i] = redirect(t)
		}
	}
	compact(f, reachable(f))
}

func isForwarder(f *Func, id BlockID) bool {
	if id == 0 || int(id) >= len(f.Blocks) {
		return false
	}
	b := f.Blocks[id]
	return len(b.Instrs) == 0 && b.Term.Kind == TermBr
}

// forwarding follows chains of empty br blocks; cycles stop at the first
// repeated block.
func forwarding(f *Func) func(BlockID) BlockID {
	final := make(map[BlockID]BlockID)
	return func(id BlockID) BlockID {
		if t, ok := final[id]; ok {
			return t
		}
		start := id
		visited := map[BlockID]bool{}
		for isForwarder(f, id) && !visited[id] {
			visited[id] = true
			id = f.Blocks[id].Term.Targets[0]
		}
		final[start] = id
		return id
	}
}

func reachable(f *Func) []bool {
	seen := make([]bool, len(f.Blocks))
	stack := []BlockID{0}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if int(id) >= len(seen) || seen[id] {
			continue
		}
		seen[id] = true
		stack = append(stack, f.Blocks[id].Term.Targets...)
	}
	return seen
}

func compact(f *Func, keep []bool) {
	remap := make([]BlockID, len(f.Blocks))
	out := f.Blocks[:0]
	for i, b := range f.Blocks {
		if !keep[i] {
			continue
		}
		remap[i] = BlockID(len(out))
		out = append(out, b)
	}
	for i, b := range out {
		b.ID = BlockID(i)
		for j, t := range b.Term.Targets {
			b.Term.Targets[j] = remap[t]
		}
	}
	clear(f.Blocks[len(out):])
	f.Blocks = out
}
