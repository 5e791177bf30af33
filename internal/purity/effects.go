package purity

import (
	"swell/internal/hir"
	"swell/internal/source"
	"swell/internal/symbols"
	"swell/internal/token"
)

// access is one storage-relevant event of a body: a direct storage
// primitive (Callee unset) or a call.
type access struct {
	Effects hir.Effects
	Callee  symbols.DeclID
	Span    source.Span
}

type fnInfo struct {
	fn       *hir.Func
	direct   hir.Effects
	accesses []access
	inferred hir.Effects
}

// collectAccesses lists the storage primitives and calls of a body in
// evaluation order.
func collectAccesses(body *hir.Expr) []access {
	var out []access
	var visit func(e *hir.Expr) bool
	visit = func(e *hir.Expr) bool {
		switch d := e.Data.(type) {
		case hir.StorageData:
			out = append(out, access{Effects: hir.EffectRead, Span: e.Span})
		case hir.StorageOpData:
			eff := hir.EffectRead
			if d.Op.Writes() {
				eff = hir.EffectWrite
			}
			out = append(out, access{Effects: eff, Span: e.Span})
			for _, a := range d.Args {
				hir.Walk(a, visit)
			}
			return false
		case hir.AssignData:
			if d.Place != nil && d.Place.Kind == hir.ExprStorage {
				eff := hir.EffectWrite
				if d.Op != token.Assign {
					eff |= hir.EffectRead
				}
				out = append(out, access{Effects: eff, Span: e.Span})
				hir.Walk(d.Value, visit)
				return false
			}
		case hir.CallData:
			out = append(out, access{Callee: d.Fn, Span: e.Span})
		}
		return true
	}
	hir.Walk(body, visit)
	return out
}

// solve computes inferred effects: direct effects joined with the effects of
// every callee. Callees contribute their declared and inferred effects.
// Strongly connected components are solved callee-first until stable.
func solve(infos map[symbols.DeclID]*fnInfo, order []symbols.DeclID) {
	effective := func(id symbols.DeclID) hir.Effects {
		fi, ok := infos[id]
		if !ok {
			return 0
		}
		return fi.fn.Declared | fi.inferred
	}
	for _, scc := range components(infos, order) {
		for changed := true; changed; {
			changed = false
			for _, id := range scc {
				fi := infos[id]
				eff := fi.direct
				for _, a := range fi.accesses {
					if a.Callee.IsValid() {
						eff |= effective(a.Callee)
					}
				}
				if eff != fi.inferred {
					fi.inferred = eff
					changed = true
				}
			}
		}
	}
}

// components returns the call graph SCCs in reverse topological order
// (callees before callers), using Tarjan's algorithm.
func components(infos map[symbols.DeclID]*fnInfo, order []symbols.DeclID) [][]symbols.DeclID {
	var (
		index   = make(map[symbols.DeclID]int, len(order))
		low     = make(map[symbols.DeclID]int, len(order))
		onStack = make(map[symbols.DeclID]bool, len(order))
		stack   []symbols.DeclID
		out     [][]symbols.DeclID
		next    int
	)
	var strong func(v symbols.DeclID)
	strong = func(v symbols.DeclID) {
		index[v], low[v] = next, next
		next++
		stack = append(stack, v)
		onStack[v] = true
		for _, a := range infos[v].accesses {
			w := a.Callee
			if _, ok := infos[w]; !w.IsValid() || !ok {
				continue
			}
			if _, seen := index[w]; !seen {
				strong(w)
				low[v] = min(low[v], low[w])
			} else if onStack[w] {
				low[v] = min(low[v], index[w])
			}
		}
		if low[v] != index[v] {
			return
		}
		var scc []symbols.DeclID
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false
			scc = append(scc, w)
			if w == v {
				break
			}
		}
		out = append(out, scc)
	}
	for _, id := range order {
		if _, seen := index[id]; !seen {
			strong(id)
		}
	}
	return out
}
