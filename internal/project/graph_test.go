package project

import (
	"context"
	"errors"
	"slices"
	"testing"

	"swell/internal/diag"
)

func buildMap(t *testing.T, files map[string]string, aliases map[string]string) (*Graph, *diag.Bag, error) {
	t.Helper()
	p := MapProvider{Files: map[string][]byte{}, Aliases: aliases}
	for name, src := range files {
		p.Files[name] = []byte(src)
	}
	bag := diag.NewBag(100)
	g, err := BuildGraph(context.Background(), "src/main.sw", p, Options{Jobs: 2, Reporter: diag.BagReporter{Bag: bag}})
	return g, bag, err
}

func moduleNames(g *Graph) []string {
	out := make([]string, 0, g.Len())
	for _, m := range g.Modules() {
		out = append(out, m.Display())
	}
	return out
}

func TestBuildGraphLayout(t *testing.T) {
	g, bag, err := buildMap(t, map[string]string{
		"src/main.sw":      "contract;\nmod a;\npub mod c;\n",
		"src/a.sw":         "library;\nmod b;\nmod d;\n",
		"src/a/b.sw":       "library;\npub fn f() {}\n",
		"src/a/d/mod.sw":   "library;\nmod e;\n",
		"src/a/d/e.sw":     "library;\n",
		"src/c/mod.sw":     "library;\n",
		"src/unrelated.sw": "library;\n",
	}, nil)
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	want := []string{"crate", "crate::a", "crate::c", "crate::a::b", "crate::a::d", "crate::a::d::e"}
	if got := moduleNames(g); !slices.Equal(got, want) {
		t.Fatalf("modules = %v, want %v", got, want)
	}
	e, ok := g.Lookup("a::d::e")
	if !ok || e.FilePath != "src/a/d/e.sw" {
		t.Fatalf("a::d::e = %+v, %v", e, ok)
	}
	// файлы регистрируются в порядке объявления
	for i, m := range g.Modules() {
		if int(m.File) != i {
			t.Fatalf("module %s has file id %d, want %d", m.Display(), m.File, i)
		}
	}
	root, _ := g.Lookup("crate")
	if root.ID != g.Root || len(root.Children) != 2 {
		t.Fatalf("root = %+v", root)
	}
}

func TestBuildGraphVisibility(t *testing.T) {
	g, _, err := buildMap(t, map[string]string{
		"src/main.sw":   "contract;\nmod hidden;\npub mod open;\n",
		"src/hidden.sw": "library;\n",
		"src/open.sw":   "library;\n",
	}, nil)
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	cases := map[string]Visibility{"": Public, "hidden": Private, "open": Public}
	for name, want := range cases {
		got, ok := g.Visibility(name)
		if !ok || got != want {
			t.Fatalf("Visibility(%q) = %v, %v; want %v", name, got, ok, want)
		}
	}
	if _, ok := g.Visibility("nope"); ok {
		t.Fatalf("unknown module must not be found")
	}
}

func TestBuildGraphMissingSubmodule(t *testing.T) {
	g, bag, err := buildMap(t, map[string]string{
		"src/main.sw": "contract;\nmod gone;\nmod here;\n",
		"src/here.sw": "library;\n",
	}, nil)
	if err != nil {
		t.Fatalf("missing submodule must not be fatal: %v", err)
	}
	if bag.Count(diag.ResMissingSubmodule) != 1 {
		t.Fatalf("diagnostics = %v", bag.Items())
	}
	if _, ok := g.Lookup("here"); !ok {
		t.Fatalf("sibling of a missing module must still load")
	}
	if _, ok := g.Lookup("gone"); ok {
		t.Fatalf("missing module must not be registered")
	}
}

func TestBuildGraphDuplicateMod(t *testing.T) {
	g, bag, err := buildMap(t, map[string]string{
		"src/main.sw": "contract;\nmod a;\nmod a;\n",
		"src/a.sw":    "library;\n",
	}, nil)
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	if bag.Count(diag.ProjDuplicateMod) != 1 || g.Len() != 2 {
		t.Fatalf("modules = %v, diagnostics = %v", moduleNames(g), bag.Items())
	}
}

func TestBuildGraphSelfDeclaringCycle(t *testing.T) {
	_, bag, err := buildMap(t, map[string]string{
		"src/main.sw": "contract;\nmod a;\n",
		"src/a.sw":    "library;\nmod b;\n",
	}, map[string]string{"src/a/b.sw": "src/a.sw"})
	var cycle *ErrCycle
	if !errors.As(err, &cycle) {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
	if len(cycle.Chain) != 2 || cycle.Chain[0] != "src/a.sw" {
		t.Fatalf("chain = %v", cycle.Chain)
	}
	if bag.Count(diag.ProjModuleCycle) != 1 {
		t.Fatalf("diagnostics = %v", bag.Items())
	}
}

type brokenProvider struct{ MapProvider }

func (b brokenProvider) Read(file string) ([]byte, error) {
	if file == "src/bad.sw" {
		return nil, errors.New("permission denied")
	}
	return b.MapProvider.Read(file)
}

func TestBuildGraphUnreadable(t *testing.T) {
	p := brokenProvider{MapProvider{Files: map[string][]byte{
		"src/main.sw": []byte("contract;\nmod bad;\n"),
	}}}
	bag := diag.NewBag(10)
	_, err := BuildGraph(context.Background(), "src/main.sw", p, Options{Reporter: diag.BagReporter{Bag: bag}})
	var unreadable *ErrUnreadable
	if !errors.As(err, &unreadable) || unreadable.Path != "src/bad.sw" {
		t.Fatalf("expected ErrUnreadable, got %v", err)
	}
	if bag.Count(diag.IOLoadFileError) != 1 {
		t.Fatalf("diagnostics = %v", bag.Items())
	}
}

func TestBuildGraphMissingRoot(t *testing.T) {
	_, _, err := buildMap(t, map[string]string{}, nil)
	var unreadable *ErrUnreadable
	if !errors.As(err, &unreadable) {
		t.Fatalf("expected ErrUnreadable for a missing root, got %v", err)
	}
}

func TestBuildGraphHashIsStable(t *testing.T) {
	files := map[string]string{
		"src/main.sw": "contract;\nmod a;\n",
		"src/a.sw":    "library;\npub const X: u64 = 1;\n",
	}
	g1, _, err := buildMap(t, files, nil)
	if err != nil {
		t.Fatal(err)
	}
	g2, _, err := buildMap(t, files, nil)
	if err != nil {
		t.Fatal(err)
	}
	if g1.Module(g1.Root).Hash != g2.Module(g2.Root).Hash {
		t.Fatalf("root hash differs between identical builds")
	}
	files["src/a.sw"] = "library;\npub const X: u64 = 2;\n"
	g3, _, err := buildMap(t, files, nil)
	if err != nil {
		t.Fatal(err)
	}
	if g1.Module(g1.Root).Hash == g3.Module(g3.Root).Hash {
		t.Fatalf("child change must change the root hash")
	}
}

func TestBuildGraphCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := MapProvider{Files: map[string][]byte{"src/main.sw": []byte("contract;\n")}}
	if _, err := BuildGraph(ctx, "src/main.sw", p, Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestFlattenUse(t *testing.T) {
	g, _, err := buildMap(t, map[string]string{
		"src/main.sw": "contract;\nuse a::{b, c::*, d as e, self};\nuse ::x::y;\n",
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	root := g.Module(g.Root)
	var got []string
	for _, item := range root.FileNode().Items {
		use, ok := root.Builder.Items.Use(item)
		if !ok {
			continue
		}
		for _, imp := range FlattenUse(root.Builder, use) {
			s := ""
			for i, seg := range imp.Segs {
				if i > 0 {
					s += "::"
				}
				s += seg
			}
			if imp.Glob {
				s += "::*"
			} else {
				s += " as " + imp.Name
			}
			got = append(got, s)
		}
	}
	want := []string{"a::b as b", "a::c::*", "a::d as e", "a as a", "x::y as y"}
	if !slices.Equal(got, want) {
		t.Fatalf("leaves = %v, want %v", got, want)
	}
}
