package dag

import (
	"fmt"
	"slices"
	"strings"

	"swell/internal/diag"
	"swell/internal/project"
	"swell/internal/source"
)

// Graph holds use-dependencies between modules. Edges run from the module
// that provides names to the modules that import them, so Kahn batches list
// providers first.
type Graph struct {
	Edges [][]NodeID // Edges[dep] = []dependent
	Indeg []int      // число модулей, из которых импортирует узел
}

// UseRef is a use leaf that made one module depend on another.
type UseRef struct {
	Target NodeID
	Span   source.Span
}

type ModuleSlot struct {
	Module *project.Module
	Uses   []UseRef
}

// BuildGraph expands every `use` of every module into edges. A leaf depends on
// the longest module prefix of its absolute path; importing a module itself or
// a name of the importing module adds no edge. Malformed paths are skipped and
// left to the resolver.
func BuildGraph(idx ModuleIndex, pg *project.Graph) (Graph, []ModuleSlot) {
	n := len(idx.IDToName)
	g := Graph{
		Edges: make([][]NodeID, n),
		Indeg: make([]int, n),
	}
	slots := make([]ModuleSlot, n)
	for i, mid := range idx.Modules {
		slots[i].Module = pg.Module(mid)
	}

	for from := range slots {
		m := slots[from].Module
		seen := make(map[NodeID]struct{})
		for _, item := range m.FileNode().Items {
			use, ok := m.Builder.Items.Use(item)
			if !ok {
				continue
			}
			for _, imp := range project.FlattenUse(m.Builder, use) {
				abs, err := project.AbsolutePath(m.Path, imp.Segs)
				if err != nil {
					continue
				}
				to, ok := providerOf(idx, abs, imp.Glob)
				if !ok || int(to) == from {
					continue
				}
				slots[from].Uses = append(slots[from].Uses, UseRef{Target: to, Span: imp.Span})
				if _, dup := seen[to]; dup {
					continue
				}
				seen[to] = struct{}{}
				g.Edges[int(to)] = append(g.Edges[int(to)], nodeID(from))
				g.Indeg[from]++
			}
		}
	}
	for i := range g.Edges {
		slices.Sort(g.Edges[i])
	}
	return g, slots
}

func providerOf(idx ModuleIndex, abs []string, glob bool) (NodeID, bool) {
	end := len(abs)
	if !glob {
		// `use a::b` где b, модуль: зависимость не нужна
		if _, isModule := idx.NameToID[strings.Join(abs, "::")]; isModule {
			return 0, false
		}
		end--
	}
	for k := end; k >= 0; k-- {
		if id, ok := idx.NameToID[strings.Join(abs[:k], "::")]; ok {
			return id, true
		}
	}
	return 0, false
}

// ReportCycles emits ProjUseCycle for each module left in a cycle, pointing at
// its first `use` into another cyclic module. It reports whether any were found.
func ReportCycles(r diag.Reporter, idx ModuleIndex, slots []ModuleSlot, topo *Topo) bool {
	if !topo.Cyclic || len(topo.Cycles) == 0 {
		return false
	}
	names := make([]string, 0, len(topo.Cycles))
	inCycle := make(map[NodeID]bool, len(topo.Cycles))
	for _, id := range topo.Cycles {
		names = append(names, idx.Display(id))
		inCycle[id] = true
	}
	summary := strings.Join(names, ", ")
	if r == nil {
		return true
	}

	for _, id := range topo.Cycles {
		slot := slots[int(id)]
		span := slot.Module.DeclSpan
		for _, use := range slot.Uses {
			if inCycle[use.Target] {
				span = use.Span
				break
			}
		}
		msg := fmt.Sprintf("module %s participates in a use cycle: %s", idx.Display(id), summary)
		diag.ReportError(r, diag.ProjUseCycle, span, msg).
			WithHelp("move the shared items into a module both can import").
			Emit()
	}
	return true
}

// Plan builds the use graph of pg and returns module batches in dependency
// order. On a cycle the diagnostics are reported and ok is false.
func Plan(pg *project.Graph, r diag.Reporter) (batches [][]project.ModuleID, ok bool) {
	idx := BuildIndex(pg)
	g, slots := BuildGraph(idx, pg)
	topo := ToposortKahn(g)
	if ReportCycles(r, idx, slots, topo) {
		return nil, false
	}
	batches = make([][]project.ModuleID, 0, len(topo.Batches))
	for _, batch := range topo.Batches {
		ids := make([]project.ModuleID, len(batch))
		for i, id := range batch {
			ids[i] = idx.Modules[int(id)]
		}
		slices.Sort(ids)
		batches = append(batches, ids)
	}
	return batches, true
}
