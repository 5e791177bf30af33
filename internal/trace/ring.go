package trace

import (
	"io"
	"sync"
	"time"
)

// Ring keeps the most recent events in memory.
type Ring struct {
	mu    sync.Mutex
	buf   []Event
	next  int
	full  bool
	seq   uint64
	level Level
	start time.Time
}

// NewRing keeps up to size events (at least one).
func NewRing(size int, level Level) *Ring {
	return &Ring{buf: make([]Event, max(size, 1)), level: level, start: time.Now()}
}

func (r *Ring) Level() Level { return r.level }
func (r *Ring) Flush() error { return nil }
func (r *Ring) Close() error { return nil }

func (r *Ring) Emit(ev *Event) {
	r.mu.Lock()
	r.seq++
	cp := *ev
	cp.Seq = r.seq
	r.buf[r.next] = cp
	r.next++
	if r.next == len(r.buf) {
		r.next = 0
		r.full = true
	}
	r.mu.Unlock()
}

// Snapshot returns the kept events oldest first.
func (r *Ring) Snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.full {
		return append([]Event(nil), r.buf[:r.next]...)
	}
	out := make([]Event, 0, len(r.buf))
	out = append(out, r.buf[r.next:]...)
	return append(out, r.buf[:r.next]...)
}

// Dump writes the snapshot in format.
func (r *Ring) Dump(w io.Writer, format Format) error {
	for _, ev := range r.Snapshot() {
		var err error
		if format == FormatNDJSON {
			err = writeNDJSON(w, &ev)
		} else {
			err = writeText(w, &ev, ev.Time.Sub(r.start), 0)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
