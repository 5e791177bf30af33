package sema

import (
	"context"
	"fmt"
	"strconv"

	"swell/internal/ast"
	"swell/internal/diag"
	"swell/internal/hir"
	"swell/internal/project"
	"swell/internal/source"
	"swell/internal/symbols"
	"swell/internal/trace"
	"swell/internal/types"
)

// Options configure a semantic pass over a resolved module graph.
type Options struct {
	Reporter diag.Reporter
	// Types is reused when set so callers can share labels across stages.
	Types *types.Interner
}

// Result stores semantic artefacts produced by the checker.
type Result struct {
	Program *hir.Program
	// Errors is the number of error diagnostics reported by the checker.
	Errors int
}

// Check type-checks every declaration of the graph and builds the typed
// program. Checking is sequential; the output does not depend on the number
// of jobs earlier stages ran with.
func Check(ctx context.Context, g *project.Graph, table *symbols.Table, opts Options) *Result {
	r := opts.Reporter
	if r == nil {
		r = diag.NopReporter{}
	}
	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "typecheck", trace.CurrentSpan(ctx).SpanID)
	defer span.End("")

	in := opts.Types
	if in == nil {
		in = types.NewInterner()
	}
	in.SetNamer(func(id symbols.DeclID) string {
		if d := table.Decl(id); d != nil {
			return d.Name
		}
		return ""
	})
	counter := &diag.CountingReporter{Next: r}
	tc := &typeChecker{
		g:        g,
		table:    table,
		reporter: counter,
		counter:  counter,
		types:    in,
		builtins: in.Builtins(),
		prog:     hir.NewProgram(g.Module(g.Root).Program, in, table),
		generics: make(map[symbols.DeclID][]types.TypeID),
		envs:     make(map[symbols.DeclID]*itemEnv),
		consts:   make(map[symbols.DeclID]*constSlot),
		configs:  make(map[symbols.DeclID]*hir.Configurable),
		embedded: make(map[symbols.DeclID]bool),
	}
	tc.run()
	span.WithExtra("funcs", strconv.Itoa(len(tc.prog.Funcs)))
	span.WithExtra("instances", strconv.Itoa(tc.prog.Instances.Len()))
	return &Result{Program: tc.prog, Errors: counter.Errors()}
}

type typeChecker struct {
	g        *project.Graph
	table    *symbols.Table
	reporter diag.Reporter
	counter  *diag.CountingReporter
	types    *types.Interner
	builtins types.Builtins
	prog     *hir.Program

	// generics holds the parameters declared by fns, structs, enums, traits
	// and impls, keyed by the declaring decl.
	generics map[symbols.DeclID][]types.TypeID
	envs     map[symbols.DeclID]*itemEnv
	consts   map[symbols.DeclID]*constSlot
	configs  map[symbols.DeclID]*hir.Configurable
	// embedded marks nominals reached while checking for recursive types.
	embedded map[symbols.DeclID]bool
}

func (tc *typeChecker) run() {
	tc.collectGenerics()
	tc.registerNominals()
	tc.registerTraits()
	tc.registerAbis()
	tc.registerImpls()
	tc.registerSignatures()
	tc.finishAbis()
	tc.checkConsts()
	tc.checkSlots()
	tc.checkImpls()
	tc.checkRecursiveTypes()
	tc.checkBodies()
	tc.collectEntries()
}

func (tc *typeChecker) report(code diag.Code, sp source.Span, format string, args ...any) {
	diag.ReportError(tc.reporter, code, sp, fmt.Sprintf(format, args...)).Emit()
}

func (tc *typeChecker) errorf(code diag.Code, sp source.Span, format string, args ...any) *diag.ReportBuilder {
	return diag.ReportError(tc.reporter, code, sp, fmt.Sprintf(format, args...))
}

func (tc *typeChecker) warn(code diag.Code, sp source.Span, format string, args ...any) {
	diag.ReportWarning(tc.reporter, code, sp, fmt.Sprintf(format, args...)).Emit()
}

func (tc *typeChecker) errorCount() int { return tc.counter.Errors() }

func (tc *typeChecker) typeLabel(id types.TypeID) string {
	return tc.types.Label(id)
}

func (tc *typeChecker) decl(id symbols.DeclID) *symbols.Decl { return tc.table.Decl(id) }

func (tc *typeChecker) builder(id symbols.DeclID) *ast.Builder { return tc.table.Builder(id) }

// module returns the env shared by every top-level item of module m.
func (tc *typeChecker) module(m project.ModuleID) *itemEnv {
	mod := tc.g.Module(m)
	return &itemEnv{mod: mod, b: mod.Builder, res: tc.table.Resolution(m)}
}

// itemEnv is the naming context types and bodies are resolved in.
type itemEnv struct {
	mod *project.Module
	b   *ast.Builder
	res *symbols.Resolution
	// owner is the trait, impl or abi `Self` refers to.
	owner  symbols.DeclID
	self   types.TypeID
	bounds []hir.Bound
	fn     symbols.DeclID
}

func (env *itemEnv) derive() *itemEnv {
	cp := *env
	cp.bounds = append([]hir.Bound(nil), env.bounds...)
	return &cp
}

func (env *itemEnv) binding(sp source.Span) (symbols.Binding, bool) {
	return env.res.Path(sp)
}
