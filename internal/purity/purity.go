// Package purity checks storage annotations and function attributes of a
// typed program.
package purity

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"swell/internal/ast"
	"swell/internal/diag"
	"swell/internal/hir"
	"swell/internal/layout"
	"swell/internal/source"
	"swell/internal/symbols"
	"swell/internal/trace"
)

// DefaultStorageValueBytes bounds the encoded size of one storage element.
const DefaultStorageValueBytes = 4096

// Options configure Check.
type Options struct {
	Reporter diag.Reporter
	// StorageValueBytes bounds storage element types; 0 means
	// DefaultStorageValueBytes.
	StorageValueBytes int
	// Layout is reused when set.
	Layout *layout.Engine
}

// Result holds the solved effects of every function.
type Result struct {
	// Effects maps functions to the storage access their bodies need,
	// transitively through calls.
	Effects map[symbols.DeclID]hir.Effects
	Errors  int
}

type checker struct {
	prog     *hir.Program
	table    *symbols.Table
	reporter diag.Reporter
	layout   *layout.Engine
	limit    int
	infos    map[symbols.DeclID]*fnInfo
	// deprecated maps deprecated decls to their note.
	deprecated map[symbols.DeclID]string
}

// Check verifies storage annotations transitively through the call graph,
// validates attributes and storage types.
func Check(ctx context.Context, prog *hir.Program, opts Options) Result {
	r := opts.Reporter
	if r == nil {
		r = diag.NopReporter{}
	}
	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "purity", trace.CurrentSpan(ctx).SpanID)
	defer span.End("")

	counter := &diag.CountingReporter{Next: r}
	c := &checker{
		prog:       prog,
		table:      prog.Symbols,
		reporter:   counter,
		layout:     opts.Layout,
		limit:      opts.StorageValueBytes,
		infos:      make(map[symbols.DeclID]*fnInfo, len(prog.Funcs)),
		deprecated: make(map[symbols.DeclID]string),
	}
	if c.layout == nil {
		c.layout = layout.New(layout.Default(), prog.Types)
	}
	if c.limit <= 0 {
		c.limit = DefaultStorageValueBytes
	}

	c.checkAttrs()
	c.checkStorageTypes()

	order := make([]symbols.DeclID, 0, len(prog.Funcs))
	for _, f := range prog.Funcs {
		fi := &fnInfo{fn: f}
		if f.Body != nil {
			fi.accesses = collectAccesses(f.Body)
			for _, a := range fi.accesses {
				fi.direct |= a.Effects
			}
		}
		c.infos[f.Decl] = fi
		order = append(order, f.Decl)
	}
	solve(c.infos, order)
	for _, id := range order {
		c.checkFunc(c.infos[id])
	}
	c.checkDeprecatedUses()

	res := Result{Effects: make(map[symbols.DeclID]hir.Effects, len(c.infos)), Errors: counter.Errors()}
	for id, fi := range c.infos {
		res.Effects[id] = fi.inferred
	}
	span.WithExtra("errors", strconv.Itoa(res.Errors))
	return res
}

func (c *checker) errorf(code diag.Code, fi *fnInfo, format string, args ...any) *diag.ReportBuilder {
	return diag.ReportError(c.reporter, code, fi.fn.Span, fmt.Sprintf(format, args...))
}

func annotation(e hir.Effects) string {
	return "#[storage(" + e.String() + ")]"
}

func (c *checker) checkFunc(fi *fnInfo) {
	f := fi.fn
	if f.Body == nil {
		return
	}
	if c.prog.Kind == ast.ProgramScript || c.prog.Kind == ast.ProgramPredicate {
		if f.Declared != 0 {
			diag.ReportError(c.reporter, diag.PurStorageOutside, f.Span,
				fmt.Sprintf("function `%s` is annotated with `%s` but a %s has no storage", f.Name, annotation(f.Declared), c.prog.Kind)).Emit()
		}
		return
	}
	missing := fi.inferred &^ f.Declared
	if missing != 0 {
		b := c.errorf(diag.PurMissingStorage, fi, "function `%s` accesses storage without `%s`: missing %s",
			f.Name, annotation(fi.inferred|f.Declared), capabilities(missing))
		for _, eff := range []hir.Effects{hir.EffectRead, hir.EffectWrite} {
			if missing&eff == 0 {
				continue
			}
			if sp, msg, ok := c.firstAccess(fi, eff); ok {
				b = b.WithNote(sp, msg)
			}
		}
		b.WithHelp("add `" + annotation(fi.inferred|f.Declared) + "` to `" + f.Name + "`").Emit()
	}
	if f.Entry == hir.EntryAbi {
		c.checkAbiMethod(fi)
	}
}

func capabilities(e hir.Effects) string {
	var parts []string
	if e.Has(hir.EffectRead) {
		parts = append(parts, "`read`")
	}
	if e.Has(hir.EffectWrite) {
		parts = append(parts, "`write`")
	}
	return strings.Join(parts, " and ")
}

// firstAccess locates the first event of a body that needs eff.
func (c *checker) firstAccess(fi *fnInfo, eff hir.Effects) (sp source.Span, msg string, ok bool) {
	verb := "read"
	if eff == hir.EffectWrite {
		verb = "written"
	}
	for _, a := range fi.accesses {
		if !a.Callee.IsValid() {
			if a.Effects&eff != 0 {
				return a.Span, "storage is " + verb + " here", true
			}
			continue
		}
		callee, known := c.infos[a.Callee]
		if known && (callee.fn.Declared|callee.inferred)&eff != 0 {
			return a.Span, fmt.Sprintf("call to `%s` needs `%s`", callee.fn.Name, annotation(callee.fn.Declared|callee.inferred)), true
		}
	}
	return sp, "", false
}

// checkAbiMethod compares an ABI implementation with its declaration: the
// implementation may not need more than the ABI grants.
func (c *checker) checkAbiMethod(fi *fnInfo) {
	f := fi.fn
	im := c.prog.Impl(f.Owner)
	if im == nil {
		return
	}
	m, ok := c.abiMethod(im.Trait, f.Name)
	if !ok {
		return
	}
	need := fi.inferred | f.Declared
	if extra := need &^ m.Declared; extra != 0 {
		diag.ReportError(c.reporter, diag.PurAbiStricter, f.Span,
			fmt.Sprintf("method `%s` needs `%s` but abi `%s` declares `%s`", f.Name, annotation(need), c.table.Decl(im.Trait).Name, annotation(m.Declared))).
			WithNote(m.Span, "declared here").
			WithHelp("add " + capabilities(extra) + " to the abi declaration").
			Emit()
	}
}

func (c *checker) abiMethod(abi symbols.DeclID, name string) (hir.AbiMethod, bool) {
	for _, cap := range c.table.Capabilities(abi) {
		a := c.prog.Abi(cap)
		if a == nil {
			continue
		}
		for _, m := range a.Methods {
			if m.Name == name {
				return m, true
			}
		}
	}
	return hir.AbiMethod{}, false
}
