package trace

import "context"

type ctxKey uint8

const (
	tracerKey ctxKey = iota
	spanKey
)

// SpanContext identifies the enclosing span of a context.
type SpanContext struct {
	SpanID uint64
}

// WithTracer returns ctx carrying t.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	return context.WithValue(ctx, tracerKey, t)
}

// FromContext returns the tracer of ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if t, ok := ctx.Value(tracerKey).(Tracer); ok && t != nil {
		return t
	}
	return Nop
}

// WithSpanContext makes sc the parent of spans begun from the returned
// context.
func WithSpanContext(ctx context.Context, sc SpanContext) context.Context {
	return context.WithValue(ctx, spanKey, sc)
}

// CurrentSpan returns the span set by WithSpanContext; zero when none.
func CurrentSpan(ctx context.Context) SpanContext {
	sc, _ := ctx.Value(spanKey).(SpanContext)
	return sc
}
