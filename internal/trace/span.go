package trace

import (
	"sync"
	"sync/atomic"
	"time"
)

var spanIDs atomic.Uint64

// Span is an open interval on a tracer. A nil *Span is valid and does
// nothing, so callers never check whether tracing is on.
type Span struct {
	tracer Tracer
	scope  Scope
	name   string
	id     uint64
	parent uint64
	start  time.Time

	mu    sync.Mutex
	extra map[string]string
	ended bool
}

// Begin opens a span and emits its begin event. It returns nil when the
// tracer drops the scope.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if t == nil || !t.Level().ShouldEmit(scope) {
		return nil
	}
	s := &Span{
		tracer: t,
		scope:  scope,
		name:   name,
		id:     spanIDs.Add(1),
		parent: parent,
		start:  time.Now(),
	}
	t.Emit(&Event{
		Time:     s.start,
		Kind:     KindSpanBegin,
		Scope:    scope,
		SpanID:   s.id,
		ParentID: parent,
		Name:     name,
	})
	return s
}

// ID returns the span identifier, 0 for a nil span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// WithExtra attaches a key/value to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	if s.extra == nil {
		s.extra = make(map[string]string, 2)
	}
	s.extra[key] = value
	s.mu.Unlock()
	return s
}

// End closes the span once; later calls return 0.
func (s *Span) End(detail string) time.Duration {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return 0
	}
	s.ended = true
	extra := s.extra
	s.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(s.start)
	s.tracer.Emit(&Event{
		Time:     now,
		Kind:     KindSpanEnd,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Name:     s.name,
		Detail:   detail,
		Elapsed:  elapsed,
		Extra:    extra,
	})
	return elapsed
}

// Point emits an instant event. Points of any scope pass at LevelError and
// above.
func Point(t Tracer, scope Scope, name, detail string, parent uint64) {
	if t == nil || t.Level() == LevelOff {
		return
	}
	if t.Level() > LevelError && !t.Level().ShouldEmit(scope) {
		return
	}
	t.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: parent,
		Name:     name,
		Detail:   detail,
	})
}
