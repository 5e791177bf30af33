// Package trace is the structured logging layer of the swell pipeline.
//
// Stages open spans on the tracer carried by the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "resolve", trace.CurrentSpan(ctx).SpanID)
//	defer span.End("")
//
// Scopes order events from coarse to fine: the driver run, a pass (parse,
// resolve, check, purity, lower), one module, one node (a lowered function
// instance). The level decides which scopes are emitted:
//
//	off     nothing
//	error   nothing but explicit error points
//	phase   driver and pass spans
//	detail  plus module spans
//	debug   everything
//
// A Stream tracer writes text or NDJSON as events happen, a Ring tracer
// keeps the last events in memory for a dump after a failure, and Multi fans
// out to several tracers.
package trace
