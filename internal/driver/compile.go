package driver

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"swell/internal/diag"
	"swell/internal/hir"
	"swell/internal/ir"
	"swell/internal/layout"
	"swell/internal/lower"
	"swell/internal/project"
	"swell/internal/purity"
	"swell/internal/sema"
	"swell/internal/source"
	"swell/internal/symbols"
	"swell/internal/trace"
	"swell/internal/types"
)

// Result holds every artefact Compile produced. Fields of stages that did
// not run stay nil.
type Result struct {
	// FileSet holds every loaded file, also when the graph failed.
	FileSet *source.FileSet
	Graph   *project.Graph
	Table   *symbols.Table
	Program *hir.Program
	Purity  *purity.Result
	Module  *ir.Module
	// Bag is sorted in source order and deduplicated.
	Bag *diag.Bag
	// Stage is the last stage that ran.
	Stage    Stage
	CacheHit bool
}

// Failed reports whether any error diagnostic was recorded.
func (r *Result) Failed() bool {
	return r.Bag.HasErrors()
}

// Compile runs the pipeline on the package whose root module file is root.
//
// Diagnostics of every stage go to one bag. Parse, resolve and type errors
// do not stop the pipeline before Options.Stage, except that lowering only
// runs on an error-free program. Module cycles and unreadable files abort
// with an error; the returned Result still carries the diagnostics.
func Compile(ctx context.Context, root string, provider project.FileProvider, opts Options) (*Result, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "compile", trace.CurrentSpan(ctx).SpanID)
	defer span.End("")
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})

	// Параллельные стадии пишут в неограниченный мешок; лимит применяется
	// после сортировки, чтобы набор не зависел от планировщика.
	sink := diag.NewBag(0)
	reporter := diag.BagReporter{Bag: sink}
	res := &Result{FileSet: source.NewFileSet()}
	defer func() { res.Bag = finishBag(sink, opts.maxDiagnostics()) }()

	stop := opts.Timer.Phase("parse")
	g, err := project.BuildGraph(ctx, root, provider, project.Options{
		Jobs:     opts.Jobs,
		Reporter: reporter,
		Cfg:      opts.Cfg,
		FileSet:  res.FileSet,
	})
	if err != nil {
		stop("failed")
		trace.Point(tracer, trace.ScopeDriver, "abort", err.Error(), span.ID())
		return res, fatal(err)
	}
	stop(strconv.Itoa(g.Len()) + " modules")
	res.Graph, res.Stage = g, StageParse
	if opts.stage() == StageParse {
		return res, nil
	}

	var key project.Digest
	if opts.Cache != nil && opts.stage() == StageLower {
		key = cacheKey(g, opts)
		if hit, ok := loadCached(opts.Cache, key, sink); ok {
			res.Module, res.Stage, res.CacheHit = hit, StageLower, true
			span.WithExtra("cache", "hit")
			return res, nil
		}
	}

	stop = opts.Timer.Phase("resolve")
	tbl, err := symbols.Resolve(ctx, g, symbols.Options{Jobs: opts.Jobs, Reporter: reporter})
	stop("")
	if err != nil {
		return res, fmt.Errorf("resolve: %w", err)
	}
	res.Table, res.Stage = tbl, StageResolve
	if opts.stage() == StageResolve {
		return res, nil
	}

	stop = opts.Timer.Phase("check")
	in := types.NewInterner()
	checked := sema.Check(ctx, g, tbl, sema.Options{Reporter: reporter, Types: in})
	stop(strconv.Itoa(checked.Errors) + " errors")
	res.Program, res.Stage = checked.Program, StageCheck

	eng := layout.New(layout.Default(), in)
	limit := opts.StorageValueBytes
	if limit <= 0 {
		limit = project.DefaultStorageValueBytes
	}
	stop = opts.Timer.Phase("purity")
	pur := purity.Check(ctx, checked.Program, purity.Options{
		Reporter:          reporter,
		StorageValueBytes: limit,
		Layout:            eng,
	})
	stop("")
	res.Purity = &pur
	if opts.stage() == StageCheck || sink.HasErrors() {
		return res, nil
	}

	stop = opts.Timer.Phase("lower")
	mod, err := lower.Module(ctx, checked.Program, lower.Options{Jobs: opts.Jobs, Layout: eng})
	if err != nil {
		stop("failed")
		return res, fmt.Errorf("lower: %w", err)
	}
	stop(strconv.Itoa(len(mod.Funcs)) + " funcs")
	res.Module, res.Stage = mod, StageLower

	if opts.Cache != nil {
		if err := storeCached(opts.Cache, key, mod, sink); err != nil {
			trace.Point(tracer, trace.ScopeDriver, "cache", err.Error(), span.ID())
		}
	}
	return res, nil
}

// fatal wraps the two errors that stop the pipeline; anything else from the
// graph builder is an internal failure.
func fatal(err error) error {
	var cycle *project.ErrCycle
	var unreadable *project.ErrUnreadable
	if errors.As(err, &cycle) || errors.As(err, &unreadable) {
		return err
	}
	return fmt.Errorf("module graph: %w", err)
}

func finishBag(sink *diag.Bag, limit int) *diag.Bag {
	sink.Sort()
	sink.Dedup()
	out := diag.NewBag(limit)
	for _, d := range sink.Items() {
		out.Add(d)
	}
	return out
}
