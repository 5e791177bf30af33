package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"
)

// Stream writes events as they arrive.
type Stream struct {
	mu     sync.Mutex
	w      *bufio.Writer
	closer io.Closer
	level  Level
	format Format
	start  time.Time
	seq    uint64
	depth  map[uint64]int
	err    error
}

// NewStream writes to w; closer, when non-nil, is closed by Close.
func NewStream(w io.Writer, closer io.Closer, level Level, format Format) *Stream {
	return &Stream{
		w:      bufio.NewWriter(w),
		closer: closer,
		level:  level,
		format: format,
		start:  time.Now(),
		depth:  make(map[uint64]int),
	}
}

func (s *Stream) Level() Level { return s.level }

func (s *Stream) Emit(ev *Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return
	}
	s.seq++
	ev.Seq = s.seq

	// глубина нужна только для текстового отступа
	depth := 0
	if d, ok := s.depth[ev.ParentID]; ok {
		depth = d + 1
	}
	switch ev.Kind {
	case KindSpanBegin:
		s.depth[ev.SpanID] = depth
	case KindSpanEnd:
		depth = s.depth[ev.SpanID]
		delete(s.depth, ev.SpanID)
	}

	if s.format == FormatNDJSON {
		s.err = writeNDJSON(s.w, ev)
	} else {
		s.err = writeText(s.w, ev, ev.Time.Sub(s.start), depth)
	}
	// фазы видны сразу, а не по Close
	if s.err == nil && ev.Scope <= ScopePass {
		s.err = s.w.Flush()
	}
}

func (s *Stream) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	return s.w.Flush()
}

func (s *Stream) Close() error {
	err := s.Flush()
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// writeText renders one line:
//
//	+1.204ms   begin pass lower #7
//	+3.981ms     end node identity<u8> #9 (0.412ms) insts=12
func writeText(w io.Writer, ev *Event, rel time.Duration, depth int) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "+%.3fms %s%-5s %s %s #%d",
		float64(rel.Microseconds())/1000,
		strings.Repeat("  ", depth),
		ev.Kind, ev.Scope, ev.Name, ev.SpanID)
	if ev.Kind == KindSpanEnd {
		fmt.Fprintf(&sb, " (%.3fms)", float64(ev.Elapsed.Microseconds())/1000)
	}
	if ev.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(ev.Detail)
	}
	for _, k := range slices.Sorted(maps.Keys(ev.Extra)) {
		fmt.Fprintf(&sb, " %s=%s", k, ev.Extra[k])
	}
	sb.WriteByte('\n')
	_, err := io.WriteString(w, sb.String())
	return err
}

type eventJSON struct {
	Seq       uint64            `json:"seq"`
	Time      string            `json:"time"`
	Kind      string            `json:"kind"`
	Scope     string            `json:"scope"`
	Span      uint64            `json:"span,omitempty"`
	Parent    uint64            `json:"parent,omitempty"`
	Name      string            `json:"name"`
	Detail    string            `json:"detail,omitempty"`
	ElapsedNS int64             `json:"elapsed_ns,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

func writeNDJSON(w io.Writer, ev *Event) error {
	b, err := json.Marshal(eventJSON{
		Seq:       ev.Seq,
		Time:      ev.Time.UTC().Format(time.RFC3339Nano),
		Kind:      ev.Kind.String(),
		Scope:     ev.Scope.String(),
		Span:      ev.SpanID,
		Parent:    ev.ParentID,
		Name:      ev.Name,
		Detail:    ev.Detail,
		ElapsedNS: ev.Elapsed.Nanoseconds(),
		Extra:     ev.Extra,
	})
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}
