package dag

import (
	"context"
	"slices"
	"testing"

	"swell/internal/diag"
	"swell/internal/project"
)

func loadGraph(t *testing.T, files map[string]string) *project.Graph {
	t.Helper()
	p := project.MapProvider{Files: map[string][]byte{}}
	for name, src := range files {
		p.Files[name] = []byte(src)
	}
	g, err := project.BuildGraph(context.Background(), "src/main.sw", p, project.Options{})
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	return g
}

func batchNames(g *project.Graph, batches [][]project.ModuleID) [][]string {
	out := make([][]string, len(batches))
	for i, batch := range batches {
		for _, id := range batch {
			out[i] = append(out[i], g.Module(id).Display())
		}
	}
	return out
}

func TestBuildIndexSorted(t *testing.T) {
	g := loadGraph(t, map[string]string{
		"src/main.sw":  "contract;\nmod zeta;\nmod alpha;\n",
		"src/zeta.sw":  "library;\n",
		"src/alpha.sw": "library;\n",
	})
	idx := BuildIndex(g)
	want := []string{"", "alpha", "zeta"}
	if !slices.Equal(idx.IDToName, want) {
		t.Fatalf("IDToName = %v, want %v", idx.IDToName, want)
	}
	for i, name := range want {
		if idx.NameToID[name] != NodeID(i) {
			t.Fatalf("NameToID[%q] = %d", name, idx.NameToID[name])
		}
		if g.Module(idx.Modules[i]).Name() != name {
			t.Fatalf("Modules[%d] points at %q", i, g.Module(idx.Modules[i]).Name())
		}
	}
	if idx.Display(0) != "crate" || idx.Display(2) != "crate::zeta" {
		t.Fatalf("Display = %q, %q", idx.Display(0), idx.Display(2))
	}
}

func TestBuildGraphUseEdges(t *testing.T) {
	g := loadGraph(t, map[string]string{
		"src/main.sw": "contract;\nmod a;\nmod b;\nmod c;\nuse c::*;\n",
		"src/a.sw":    "library;\nuse crate::b::Thing;\nuse super::b;\nuse self::Local;\n",
		"src/b.sw":    "library;\npub struct Thing {}\n",
		"src/c.sw":    "library;\nuse ::b::{Thing, Other};\n",
	})
	idx := BuildIndex(g)
	graph, slots := BuildGraph(idx, g)

	root, a, b, c := idx.NameToID[""], idx.NameToID["a"], idx.NameToID["b"], idx.NameToID["c"]
	if !slices.Equal(graph.Edges[int(b)], []NodeID{a, c}) {
		t.Fatalf("dependents of b = %v, want [%d %d]", graph.Edges[int(b)], a, c)
	}
	if !slices.Equal(graph.Edges[int(c)], []NodeID{root}) {
		t.Fatalf("dependents of c = %v", graph.Edges[int(c)])
	}
	if graph.Indeg[int(a)] != 1 || graph.Indeg[int(c)] != 1 || graph.Indeg[int(b)] != 0 {
		t.Fatalf("indeg = %v", graph.Indeg)
	}
	// две ссылки из c на b, но ребро одно
	if len(slots[int(c)].Uses) != 2 {
		t.Fatalf("c uses = %v", slots[int(c)].Uses)
	}
}

func TestToposortKahnBatches(t *testing.T) {
	g := Graph{
		Edges: [][]NodeID{{1, 2}, {3}, {3}, nil},
		Indeg: []int{0, 1, 1, 2},
	}
	topo := ToposortKahn(g)
	if topo.Cyclic {
		t.Fatalf("expected acyclic graph")
	}
	want := [][]NodeID{{0}, {1, 2}, {3}}
	if len(topo.Batches) != len(want) {
		t.Fatalf("batches = %v, want %v", topo.Batches, want)
	}
	for i := range want {
		if !slices.Equal(topo.Batches[i], want[i]) {
			t.Fatalf("batch[%d] = %v, want %v", i, topo.Batches[i], want[i])
		}
	}
	if !slices.Equal(topo.Order, []NodeID{0, 1, 2, 3}) {
		t.Fatalf("order = %v", topo.Order)
	}
}

func TestPlanOrdersProvidersFirst(t *testing.T) {
	g := loadGraph(t, map[string]string{
		"src/main.sw":   "contract;\nmod tokens;\nmod vault;\nuse vault::Vault;\n",
		"src/tokens.sw": "library;\npub struct Token {}\n",
		"src/vault.sw":  "library;\nuse crate::tokens::Token;\npub struct Vault {}\n",
	})
	bag := diag.NewBag(10)
	batches, ok := Plan(g, diag.BagReporter{Bag: bag})
	if !ok || bag.Len() != 0 {
		t.Fatalf("Plan failed: %v", bag.Items())
	}
	want := [][]string{{"crate::tokens"}, {"crate::vault"}, {"crate"}}
	got := batchNames(g, batches)
	if len(got) != len(want) {
		t.Fatalf("batches = %v, want %v", got, want)
	}
	for i := range want {
		if !slices.Equal(got[i], want[i]) {
			t.Fatalf("batch[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestReportCycles(t *testing.T) {
	g := loadGraph(t, map[string]string{
		"src/main.sw": "contract;\nmod a;\nmod b;\n",
		"src/a.sw":    "library;\nuse crate::b::B;\npub struct A {}\n",
		"src/b.sw":    "library;\nuse crate::a::A;\npub struct B {}\n",
	})
	bag := diag.NewBag(10)
	if _, ok := Plan(g, diag.BagReporter{Bag: bag}); ok {
		t.Fatalf("expected a use cycle")
	}
	if bag.Count(diag.ProjUseCycle) != 2 {
		t.Fatalf("diagnostics = %v", bag.Items())
	}
	for _, d := range bag.Items() {
		if d.Primary.Empty() {
			t.Fatalf("cycle diagnostic must point at a use: %+v", d)
		}
	}
}
