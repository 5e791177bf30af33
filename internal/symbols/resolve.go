package symbols

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"swell/internal/ast"
	"swell/internal/diag"
	"swell/internal/project"
	"swell/internal/project/dag"
	"swell/internal/trace"
)

// ErrUseCycle is returned when `use` declarations form a cycle between
// modules; resolution stops before bodies are walked.
var ErrUseCycle = errors.New("cyclic use between modules")

// Options configures Resolve.
type Options struct {
	// Jobs bounds per-module parallelism; 0 means GOMAXPROCS.
	Jobs     int
	Reporter diag.Reporter
}

// Resolve builds the symbol table of a module graph.
//
// Declarations are collected per module in parallel and numbered in module
// order, so ids do not depend on scheduling. Imports are then bound batch by
// batch in provider-first order, and finally every body is walked.
func Resolve(ctx context.Context, g *project.Graph, opts Options) (*Table, error) {
	r := opts.Reporter
	if r == nil {
		r = diag.NopReporter{}
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePass, "resolve", trace.CurrentSpan(ctx).SpanID)
	defer span.End("")

	mods := g.Modules()
	t := newTable(g)

	drafts := make([][]draft, len(mods))
	if err := forEach(ctx, jobs, mods, func(i int, m *project.Module) {
		drafts[i] = collectDecls(g, m)
	}); err != nil {
		return nil, err
	}
	t.addModuleDecl(g.Module(g.Root))
	for i, m := range mods {
		t.registerDecls(r, m, drafts[i])
	}
	t.reportMemberDuplicates(r)

	batches, ok := dag.Plan(g, r)
	if !ok {
		return t, ErrUseCycle
	}
	for _, batch := range batches {
		batchMods := make([]*project.Module, len(batch))
		for i, id := range batch {
			batchMods[i] = g.Module(id)
		}
		if err := forEach(ctx, jobs, batchMods, func(_ int, m *project.Module) {
			t.resolveImports(r, m)
		}); err != nil {
			return nil, err
		}
	}

	contract := g.Module(g.Root).Program == ast.ProgramContract
	if err := forEach(ctx, jobs, mods, func(_ int, m *project.Module) {
		w := &bodyWalker{t: t, r: r, m: m, b: m.Builder, res: t.Resolution(m.ID), contract: contract}
		w.module()
	}); err != nil {
		return nil, err
	}

	t.computeCapabilities(r)
	t.reportUnusedImports(r)
	span.WithExtra("decls", fmt.Sprint(t.Decls.Len()))
	return t, nil
}

func forEach(ctx context.Context, jobs int, mods []*project.Module, fn func(int, *project.Module)) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(jobs)
	for i, m := range mods {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn(i, m)
			return nil
		})
	}
	return eg.Wait()
}
