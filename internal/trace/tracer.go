package trace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Tracer receives trace events. Implementations are safe for concurrent
// use; Emit must not retain ev after returning.
type Tracer interface {
	Emit(ev *Event)
	Level() Level
	Flush() error
	Close() error
}

// Format of stream output.
type Format uint8

const (
	FormatText Format = iota
	FormatNDJSON
)

// ParseFormat accepts "text" and "ndjson" (or "json").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	}
	return FormatText, fmt.Errorf("invalid trace format %q (expected text|ndjson)", s)
}

// Config selects a tracer for New.
type Config struct {
	Level  Level
	Format Format
	// Output is "-" or "stderr" for standard error, "stdout", a file path,
	// or empty for no stream.
	Output string
	// RingSize > 0 additionally keeps the last events in memory.
	RingSize int
}

// New builds the tracer described by cfg. With LevelOff, or neither an
// output nor a ring, it returns Nop.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff || (cfg.Output == "" && cfg.RingSize <= 0) {
		return Nop, nil
	}
	var tracers []Tracer
	if cfg.Output != "" {
		w, owned, err := openOutput(cfg.Output)
		if err != nil {
			return nil, err
		}
		tracers = append(tracers, NewStream(w, owned, cfg.Level, cfg.Format))
	}
	if cfg.RingSize > 0 {
		tracers = append(tracers, NewRing(cfg.RingSize, cfg.Level))
	}
	if len(tracers) == 1 {
		return tracers[0], nil
	}
	return Multi(tracers...), nil
}

func openOutput(path string) (io.Writer, io.Closer, error) {
	switch path {
	case "-", "stderr":
		return os.Stderr, nil, nil
	case "stdout":
		return os.Stdout, nil, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("trace output: %w", err)
	}
	return f, f, nil
}

type nopTracer struct{}

func (nopTracer) Emit(*Event)  {}
func (nopTracer) Level() Level { return LevelOff }
func (nopTracer) Flush() error { return nil }
func (nopTracer) Close() error { return nil }

// Nop drops everything.
var Nop Tracer = nopTracer{}

type multiTracer struct {
	tracers []Tracer
	level   Level
}

// Multi fans events out to every tracer. Its level is the most verbose
// one; each child still filters by its own level.
func Multi(tracers ...Tracer) Tracer {
	m := &multiTracer{tracers: tracers}
	for _, t := range tracers {
		m.level = max(m.level, t.Level())
	}
	return m
}

func (m *multiTracer) Emit(ev *Event) {
	for _, t := range m.tracers {
		if ev.Kind == KindPoint || t.Level().ShouldEmit(ev.Scope) {
			t.Emit(ev)
		}
	}
}

func (m *multiTracer) Level() Level { return m.level }

func (m *multiTracer) Flush() error {
	var errs []error
	for _, t := range m.tracers {
		errs = append(errs, t.Flush())
	}
	return errors.Join(errs...)
}

func (m *multiTracer) Close() error {
	var errs []error
	for _, t := range m.tracers {
		errs = append(errs, t.Close())
	}
	return errors.Join(errs...)
}

// Rings returns the ring tracers inside t, looking through Multi.
func Rings(t Tracer) []*Ring {
	switch v := t.(type) {
	case *Ring:
		return []*Ring{v}
	case *multiTracer:
		var out []*Ring
		for _, c := range v.tracers {
			out = append(out, Rings(c)...)
		}
		return out
	}
	return nil
}
