package project

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"runtime"
	"slices"
	"strings"

	"fortio.org/safecast"
	"golang.org/x/sync/errgroup"

	"swell/internal/ast"
	"swell/internal/diag"
	"swell/internal/lexer"
	"swell/internal/parser"
	"swell/internal/source"
)

// Options configure BuildGraph.
type Options struct {
	// Jobs bounds parallel parsing; 0 means GOMAXPROCS.
	Jobs      int
	Reporter  diag.Reporter
	Cfg       map[string]string
	MaxErrors uint
	// FileSet and Strings are created when nil.
	FileSet *source.FileSet
	Strings *source.Interner
}

// ErrCycle is returned when a module transitively declares itself.
type ErrCycle struct {
	Chain []string
}

func (e *ErrCycle) Error() string {
	return "module declaration cycle: " + strings.Join(e.Chain, " -> ")
}

// ErrUnreadable is returned when a module file exists but cannot be read.
type ErrUnreadable struct {
	Path string
	Err  error
}

func (e *ErrUnreadable) Error() string {
	return fmt.Sprintf("cannot read module file %q: %v", e.Path, e.Err)
}

func (e *ErrUnreadable) Unwrap() error { return e.Err }

// Graph is the package module tree rooted at the root file.
type Graph struct {
	FileSet *source.FileSet
	Strings *source.Interner
	Root    ModuleID
	modules []*Module
	byName  map[string]ModuleID
}

// pending: модуль, ожидающий чтения на текущем уровне обхода.
type pending struct {
	path     []string
	file     string
	fallback string
	parent   ModuleID
	public   bool
	declSpan source.Span
	chain    []string // канонические пути файлов предков
}

// BuildGraph reads the root file, follows `mod` declarations level by level
// and parses every file. Files are registered in declaration order; each level
// is parsed in parallel.
func BuildGraph(ctx context.Context, root string, provider FileProvider, opts Options) (*Graph, error) {
	if opts.FileSet == nil {
		opts.FileSet = source.NewFileSet()
	}
	if opts.Strings == nil {
		opts.Strings = source.NewInterner()
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	g := &Graph{
		FileSet: opts.FileSet,
		Strings: opts.Strings,
		byName:  make(map[string]ModuleID),
	}

	level := []pending{{file: path.Clean(root)}}
	for len(level) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// чтение последовательно: FileID раздаются в порядке объявления
		var mods []*Module
		var chains [][]string
		for _, p := range level {
			canon := canonical(provider, p.file)
			for i, anc := range p.chain {
				if anc == canon {
					chain := append(slices.Clone(p.chain[i:]), canon)
					err := &ErrCycle{Chain: chain}
					diag.ReportError(reporter, diag.ProjModuleCycle, p.declSpan, err.Error()).Emit()
					return nil, err
				}
			}
			file, data, err := readModule(provider, p)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) && p.parent.IsValid() {
					msg := fmt.Sprintf("file not found for module %q", strings.Join(p.path, "::"))
					diag.ReportError(reporter, diag.ResMissingSubmodule, p.declSpan, msg).
						WithHelp(fmt.Sprintf("create %s or %s", p.file, p.fallback)).
						Emit()
					continue
				}
				unreadable := &ErrUnreadable{Path: p.file, Err: err}
				diag.ReportError(reporter, diag.IOLoadFileError, p.declSpan, unreadable.Error()).Emit()
				return nil, unreadable
			}
			m := &Module{
				Path:     p.path,
				FilePath: file,
				File:     g.FileSet.Add(file, data, 0),
				Parent:   p.parent,
				Public:   p.public,
				DeclSpan: p.declSpan,
			}
			g.add(m)
			mods = append(mods, m)
			chains = append(chains, append(slices.Clone(p.chain), canon))
		}
		if err := g.parseLevel(ctx, mods, reporter, opts); err != nil {
			return nil, err
		}
		level = g.nextLevel(mods, chains, reporter)
	}
	if !g.Root.IsValid() {
		return nil, errors.New("root module was not loaded")
	}
	g.hash(g.Root)
	return g, nil
}

func readModule(provider FileProvider, p pending) (string, []byte, error) {
	data, err := provider.Read(p.file)
	if err == nil {
		return p.file, data, nil
	}
	if p.fallback != "" && errors.Is(err, fs.ErrNotExist) {
		data, ferr := provider.Read(p.fallback)
		if ferr == nil {
			return p.fallback, data, nil
		}
		if !errors.Is(ferr, fs.ErrNotExist) {
			return p.fallback, nil, ferr
		}
	}
	return p.file, nil, err
}

func (g *Graph) add(m *Module) {
	g.modules = append(g.modules, m)
	id, err := safecast.Conv[ModuleID](len(g.modules))
	if err != nil {
		panic(fmt.Errorf("module id overflow: %w", err))
	}
	m.ID = id
	if !m.Parent.IsValid() {
		g.Root = m.ID
	} else {
		parent := g.Module(m.Parent)
		parent.Children = append(parent.Children, m.ID)
	}
	g.byName[m.Name()] = m.ID
}

func (g *Graph) parseLevel(ctx context.Context, mods []*Module, reporter diag.Reporter, opts Options) error {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(jobs)
	for _, m := range mods {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f := g.FileSet.Get(m.File)
			b := ast.NewBuilder(ast.Hints{}, g.Strings)
			lx := lexer.New(f, lexer.Options{Reporter: reporter})
			res := parser.ParseFile(g.FileSet, lx, b, parser.Options{
				Reporter:  reporter,
				Cfg:       opts.Cfg,
				MaxErrors: opts.MaxErrors,
			})
			m.Builder = b
			m.AST = res.File
			m.Program = b.Files.Get(res.File).Program
			return nil
		})
	}
	return eg.Wait()
}

// nextLevel собирает `mod x;` объявления текущего уровня в порядке появления.
func (g *Graph) nextLevel(mods []*Module, chains [][]string, reporter diag.Reporter) []pending {
	var next []pending
	for i, m := range mods {
		seen := make(map[string]source.Span)
		file := m.FileNode()
		for _, id := range file.Items {
			mod, ok := m.Builder.Items.Mod(id)
			if !ok {
				continue
			}
			item := m.Builder.Items.Get(id)
			name := m.Builder.Name(mod.Name)
			if prev, dup := seen[name]; dup {
				diag.ReportError(reporter, diag.ProjDuplicateMod, mod.NameSpan, fmt.Sprintf("module %q is declared twice", name)).
					WithNote(prev, "previous declaration here").
					Emit()
				continue
			}
			seen[name] = mod.NameSpan
			primary, fallback := childFiles(m.FilePath, len(m.Path) == 0, name)
			next = append(next, pending{
				path:     append(slices.Clone(m.Path), name),
				file:     primary,
				fallback: fallback,
				parent:   m.ID,
				public:   item.Public,
				declSpan: item.Span,
				chain:    chains[i],
			})
		}
	}
	return next
}

// childFiles: `mod x;` в src/a.sw → src/a/x.sw, затем src/a/x/mod.sw.
// Корень и mod.sw держат детей в своём каталоге.
func childFiles(parentFile string, isRoot bool, name string) (primary, fallback string) {
	dir := path.Dir(parentFile)
	base := path.Base(parentFile)
	if !isRoot && base != "mod.sw" {
		dir = path.Join(dir, strings.TrimSuffix(base, ".sw"))
	}
	return path.Join(dir, name+".sw"), path.Join(dir, name, "mod.sw")
}

func (g *Graph) hash(id ModuleID) Digest {
	m := g.Module(id)
	children := make([]Digest, 0, len(m.Children))
	for _, c := range m.Children {
		children = append(children, g.hash(c))
	}
	m.Hash = Combine(g.FileSet.Get(m.File).Hash, children...)
	return m.Hash
}

// Module returns the module by id or nil.
func (g *Graph) Module(id ModuleID) *Module {
	if !id.IsValid() || int(id) > len(g.modules) {
		return nil
	}
	return g.modules[id-1]
}

// Modules returns all modules in breadth-first declaration order.
func (g *Graph) Modules() []*Module {
	return g.modules
}

// Len returns the number of loaded modules.
func (g *Graph) Len() int { return len(g.modules) }

// Lookup finds a module by `a::b` path; "" and "crate" name the root.
func (g *Graph) Lookup(p string) (*Module, bool) {
	if p == "crate" {
		p = ""
	}
	p = strings.TrimPrefix(p, "crate::")
	id, ok := g.byName[p]
	if !ok {
		return nil, false
	}
	return g.Module(id), true
}

// LookupSegments finds a module by absolute segments.
func (g *Graph) LookupSegments(segs []string) (*Module, bool) {
	id, ok := g.byName[strings.Join(segs, "::")]
	if !ok {
		return nil, false
	}
	return g.Module(id), true
}

// Visibility reports how a module was declared; the root is public.
func (g *Graph) Visibility(p string) (Visibility, bool) {
	m, ok := g.Lookup(p)
	if !ok {
		return Private, false
	}
	if !m.Parent.IsValid() || m.Public {
		return Public, true
	}
	return Private, true
}
