package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestShouldEmit(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelError, ScopePass, false},
		{LevelPhase, ScopeDriver, true},
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeModule, false},
		{LevelDetail, ScopeModule, true},
		{LevelDetail, ScopeNode, false},
		{LevelDebug, ScopeNode, true},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"off", "ERROR", "Phase", "detail", "debug"} {
		l, err := ParseLevel(name)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", name, err)
		}
		if l.String() != strings.ToLower(name) {
			t.Errorf("round trip %q -> %s", name, l)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("verbose accepted")
	}
}

func TestStreamTextNesting(t *testing.T) {
	var buf bytes.Buffer
	s := NewStream(&buf, nil, LevelDebug, FormatText)
	ctx := WithTracer(context.Background(), s)

	root := Begin(FromContext(ctx), ScopePass, "lower", CurrentSpan(ctx).SpanID)
	ctx = WithSpanContext(ctx, SpanContext{SpanID: root.ID()})
	child := Begin(FromContext(ctx), ScopeNode, "identity<u8>", CurrentSpan(ctx).SpanID)
	child.WithExtra("insts", "12").End("")
	root.End("done")
	if root.End("again") != 0 {
		t.Error("second End emitted")
	}
	if err := s.Flush(); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[1], "  begin node identity<u8>") {
		t.Errorf("child not indented: %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], "insts=12") {
		t.Errorf("extra missing: %q", lines[2])
	}
	if !strings.Contains(lines[3], "end   pass lower") || !strings.HasSuffix(lines[3], ": done") {
		t.Errorf("root end = %q", lines[3])
	}
}

func TestStreamNDJSON(t *testing.T) {
	var buf bytes.Buffer
	s := NewStream(&buf, nil, LevelPhase, FormatNDJSON)
	sp := Begin(s, ScopePass, "resolve", 0)
	Begin(s, ScopeModule, "main", sp.ID()).End("")
	sp.WithExtra("decls", "3").End("")
	_ = s.Flush()

	var events []eventJSON
	for line := range strings.SplitSeq(strings.TrimSpace(buf.String()), "\n") {
		var ev eventJSON
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("bad line %q: %v", line, err)
		}
		events = append(events, ev)
	}
	if len(events) != 2 {
		t.Fatalf("module span leaked at phase level: %+v", events)
	}
	if events[0].Kind != "begin" || events[1].Kind != "end" || events[1].Extra["decls"] != "3" {
		t.Errorf("events = %+v", events)
	}
	if events[0].Seq != 1 || events[1].Seq != 2 {
		t.Errorf("seq = %d, %d", events[0].Seq, events[1].Seq)
	}
}

func TestRingKeepsLatest(t *testing.T) {
	r := NewRing(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(r, ScopeNode, name, "", 0)
	}
	snap := r.Snapshot()
	var names []string
	for _, ev := range snap {
		names = append(names, ev.Name)
	}
	if strings.Join(names, ",") != "c,d,e" {
		t.Fatalf("snapshot = %v", names)
	}
	var buf bytes.Buffer
	if err := r.Dump(&buf, FormatText); err != nil {
		t.Fatal(err)
	}
	if strings.Count(buf.String(), "point node") != 3 {
		t.Fatalf("dump:\n%s", buf.String())
	}
}

func TestMultiFiltersPerChild(t *testing.T) {
	var buf bytes.Buffer
	stream := NewStream(&buf, nil, LevelPhase, FormatText)
	ring := NewRing(8, LevelDebug)
	m := Multi(stream, ring)
	if m.Level() != LevelDebug {
		t.Fatalf("level = %s", m.Level())
	}
	Begin(m, ScopeNode, "f", 0).End("")
	Begin(m, ScopePass, "parse", 0).End("")
	_ = m.Flush()

	if strings.Contains(buf.String(), "node f") {
		t.Errorf("stream got node events:\n%s", buf.String())
	}
	if n := len(ring.Snapshot()); n != 4 {
		t.Errorf("ring kept %d events, want 4", n)
	}
	if len(Rings(m)) != 1 {
		t.Error("Rings did not find the ring")
	}
}

func TestNilSpanAndNop(t *testing.T) {
	sp := Begin(Nop, ScopeDriver, "check", 0)
	if sp != nil {
		t.Fatal("Nop opened a span")
	}
	sp.WithExtra("k", "v")
	if sp.End("") != 0 || sp.ID() != 0 {
		t.Error("nil span is not inert")
	}
	if FromContext(context.Background()) != Nop {
		t.Error("empty context has a tracer")
	}
	tr, err := New(Config{Level: LevelPhase})
	if err != nil || tr != Nop {
		t.Errorf("New without outputs = %v, %v", tr, err)
	}
}
