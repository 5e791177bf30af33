// Package lower turns a typed program into SSA IR.
//
// Non-generic functions and entry points are roots; they are lowered in
// parallel. Generic functions are lowered on demand, once per distinct set
// of concrete type arguments, guarded by a mono.Memo table.
package lower

import (
	"cmp"
	"context"
	"fmt"
	"runtime"
	"slices"
	"strconv"

	"golang.org/x/sync/errgroup"

	"swell/internal/hir"
	"swell/internal/ir"
	"swell/internal/layout"
	"swell/internal/mono"
	"swell/internal/symbols"
	"swell/internal/trace"
	"swell/internal/types"
)

// Options configure Module.
type Options struct {
	// Jobs bounds parallel root lowering; 0 means GOMAXPROCS.
	Jobs int
	// Layout is reused when set.
	Layout *layout.Engine
	// SkipValidate disables the final ir.Validate run.
	SkipValidate bool
}

// lowerer is shared by every function lowering of one Module call. Its
// tables are filled before roots start and only read afterwards; memo is
// the single mutable piece.
type lowerer struct {
	prog   *hir.Program
	in     *types.Interner
	layout *layout.Engine
	memo   *mono.Memo[*ir.Func]

	slots   map[symbols.DeclID]uint32
	storage []ir.StorageSlot
	configs map[symbols.DeclID]uint32
	config  []ir.Configurable
}

// Module lowers prog. The program must be free of error diagnostics.
func Module(ctx context.Context, prog *hir.Program, opts Options) (*ir.Module, error) {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "lower", trace.CurrentSpan(ctx).SpanID)
	defer span.End("")
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})

	l := &lowerer{
		prog:    prog,
		in:      prog.Types,
		layout:  opts.Layout,
		memo:    mono.NewMemo[*ir.Func](),
		slots:   make(map[symbols.DeclID]uint32, len(prog.Storage)),
		configs: make(map[symbols.DeclID]uint32, len(prog.Configurables)),
	}
	if l.layout == nil {
		l.layout = layout.New(layout.Default(), prog.Types)
	}
	if err := l.buildStorage(); err != nil {
		return nil, err
	}
	if err := l.buildConfigurables(); err != nil {
		return nil, err
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for _, f := range l.roots() {
		g.Go(func() error {
			_, err := l.ensure(gctx, f, nil)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	funcs := l.memo.Values()
	slices.SortFunc(funcs, func(a, b *ir.Func) int { return cmp.Compare(a.Symbol, b.Symbol) })
	m := &ir.Module{
		Program:       prog.Kind.String(),
		Funcs:         funcs,
		Storage:       l.storage,
		Configurables: l.config,
	}
	for _, id := range prog.Entries {
		if f := prog.Func(id); f != nil && f.Body != nil {
			m.Entries = append(m.Entries, f.Symbol)
		}
	}
	abi, err := l.abiMethods()
	if err != nil {
		return nil, err
	}
	m.Abi = abi
	for _, f := range m.Funcs {
		ir.Simplify(f)
	}
	l.finishTypes(m)

	span.WithExtra("funcs", strconv.Itoa(len(m.Funcs)))
	if !opts.SkipValidate {
		if err := ir.Validate(m); err != nil {
			return nil, fmt.Errorf("lower: invalid IR: %w", err)
		}
	}
	return m, nil
}

// roots lists entry points and every non-generic function with a body.
func (l *lowerer) roots() []*hir.Func {
	var out []*hir.Func
	for _, f := range l.prog.Funcs {
		if f.Body == nil || f.IsGeneric() {
			continue
		}
		out = append(out, f)
	}
	return out
}

// ensure lowers the instance (f, args) unless another lowering already
// claimed it, and returns its symbol. A re-entered instance only yields the
// symbol so the caller can emit a call reference.
func (l *lowerer) ensure(ctx context.Context, f *hir.Func, args []types.TypeID) (string, error) {
	key := mono.NewKey(f.Decl, args)
	sym := mono.Symbol(l.in, f.Symbol, args)
	if won, _ := l.memo.Claim(key); !won {
		return sym, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeNode, sym, trace.CurrentSpan(ctx).SpanID)
	fn, err := l.lowerFunc(ctx, f, args, sym)
	span.End("")
	if err != nil {
		return "", fmt.Errorf("lower %s: %w", sym, err)
	}
	l.memo.Finish(key, fn)
	return sym, nil
}

func (l *lowerer) lowerFunc(ctx context.Context, f *hir.Func, args []types.TypeID, sym string) (*ir.Func, error) {
	lc := newContext(ctx, l, f, args)
	ret := lc.subst(f.Ret)
	b := ir.NewBuilder(sym, tref(ret), f.Span)
	lc.b = b
	for i, p := range f.Params {
		ty := lc.subst(p.Type)
		if i == 0 && f.Flags.HasFlag(hir.FuncRefSelf) {
			// ref mut self: параметр сам является адресом
			lc.locals[p.Local] = b.Param(p.Name, tref(l.in.Ref(ty, true)))
			continue
		}
		v := b.Param(p.Name, tref(ty))
		slot := b.Local(tref(ty), p.Name, p.Span)
		b.Store(tref(ty), slot, v, p.Span)
		lc.locals[p.Local] = slot
	}
	v := lc.expr(f.Body)
	if !b.Terminated() {
		if lc.isUnit(ret) {
			b.Ret(ir.NoValue, f.Body.Span)
		} else {
			b.Ret(v, f.Body.Span)
		}
	}
	fn := b.Finish()
	fn.Inline = ir.Inline(f.Inline)
	if len(args) == 0 {
		fn.Entry = ir.EntryKind(f.Entry)
	}
	return fn, lc.err
}

// tref carries a front-end type through lowering; finishTypes replaces it
// with an index into the module type table.
func tref(t types.TypeID) ir.TypeRef { return ir.TypeRef(t) }
