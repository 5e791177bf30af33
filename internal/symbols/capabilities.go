package symbols

import (
	"fmt"
	"strings"

	"swell/internal/diag"
)

// computeCapabilities flattens supertrait and super-ABI chains once.
// A cycle is reported at the decl that closes it; members of the cycle get
// only their own decl as capability set.
func (t *Table) computeCapabilities(r diag.Reporter) {
	const (
		unvisited = iota
		active
		done
	)
	state := make(map[DeclID]int)
	var stack []DeclID

	var visit func(id DeclID) []DeclID
	visit = func(id DeclID) []DeclID {
		switch state[id] {
		case done:
			return t.caps[id]
		case active:
			return nil
		}
		state[id] = active
		stack = append(stack, id)
		set := []DeclID{id}
		seen := map[DeclID]bool{id: true}
		d := t.Decl(id)
		for _, sup := range d.Supers {
			if state[sup] == active {
				t.reportSuperCycle(r, sup, stack)
				continue
			}
			for _, c := range visit(sup) {
				if !seen[c] {
					seen[c] = true
					set = append(set, c)
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[id] = done
		t.caps[id] = set
		return set
	}

	for _, d := range t.Decls.All() {
		if d.Kind == DeclTrait || d.Kind == DeclAbi {
			visit(d.ID)
		}
	}
}

func (t *Table) reportSuperCycle(r diag.Reporter, start DeclID, stack []DeclID) {
	i := len(stack) - 1
	for i > 0 && stack[i] != start {
		i--
	}
	names := make([]string, 0, len(stack)-i+1)
	for _, id := range stack[i:] {
		names = append(names, t.QualifiedName(id))
	}
	names = append(names, t.QualifiedName(start))
	last := t.Decl(stack[len(stack)-1])
	diag.ReportError(r, diag.ResSupertraitCycle, last.Span, fmt.Sprintf("cyclic supertrait chain: %s", strings.Join(names, " -> "))).Emit()
}
