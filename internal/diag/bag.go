package diag

import (
	"fmt"
	"slices"
	"sync"
)

// Bag collects diagnostics up to a limit. It is safe for concurrent use:
// parallel stages share one bag and Sort restores source order afterwards.
type Bag struct {
	mu    sync.Mutex
	items []Diagnostic
	max   int
	// dropped считает диагностики, не попавшие в лимит
	dropped int
}

func NewBag(maxItems int) *Bag {
	if maxItems <= 0 {
		maxItems = 1 << 16
	}
	return &Bag{
		items: make([]Diagnostic, 0, min(maxItems, 64)),
		max:   maxItems,
	}
}

// Add добавляет диагностику, учитывая лимит.
// Возвращает false, если диагностика не добавлена (достигнут лимит).
// Errors are never dropped in favour of warnings: once the limit is hit a
// new error replaces the most recent warning, if any.
func (b *Bag) Add(d Diagnostic) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.items) >= b.max {
		if d.Severity >= SevError {
			for i := len(b.items) - 1; i >= 0; i-- {
				if b.items[i].Severity < SevError {
					b.items[i] = d
					b.dropped++
					return true
				}
			}
		}
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() int {
	return b.max
}

// Dropped returns how many diagnostics were discarded by the limit.
func (b *Bag) Dropped() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// HasErrors возвращает true, если есть хотя бы одна диагностика с Severity >= Error
func (b *Bag) HasErrors() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// HasWarnings возвращает true, если есть хотя бы одна диагностика с Severity >= Warning
func (b *Bag) HasWarnings() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.items {
		if b.items[i].Severity >= SevWarning {
			return true
		}
	}
	return false
}

// Count returns the number of diagnostics with the given code.
func (b *Bag) Count(code Code) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for i := range b.items {
		if b.items[i].Code == code {
			n++
		}
	}
	return n
}

// длина
func (b *Bag) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Items возвращает копию диагностик.
func (b *Bag) Items() []Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.items)
}

// Merge объединяет диагностики из другого Bag.
// Увеличивает max, если нужно вместить все элементы.
func (b *Bag) Merge(other *Bag) {
	if other == nil || other == b {
		return
	}
	items := other.Items()
	b.mu.Lock()
	defer b.mu.Unlock()
	if total := len(b.items) + len(items); total > b.max {
		b.max = total
	}
	b.items = append(b.items, items...)
}

// Sort сортирует диагностики по: file, start, end, severity (desc), code (asc)
// для стабильного и детерминированного порядка вывода.
func (b *Bag) Sort() {
	b.mu.Lock()
	defer b.mu.Unlock()
	slices.SortStableFunc(b.items, compareDiagnostics)
}

func compareDiagnostics(di, dj Diagnostic) int {
	switch {
	case di.Primary.File != dj.Primary.File:
		return cmpUint(uint32(di.Primary.File), uint32(dj.Primary.File))
	case di.Primary.Start != dj.Primary.Start:
		return cmpUint(di.Primary.Start, dj.Primary.Start)
	case di.Primary.End != dj.Primary.End:
		return cmpUint(di.Primary.End, dj.Primary.End)
	case di.Severity != dj.Severity:
		// Error > Warning > Info
		return cmpUint(uint32(dj.Severity), uint32(di.Severity))
	case di.Code != dj.Code:
		return cmpUint(uint32(di.Code), uint32(dj.Code))
	}
	if di.Message < dj.Message {
		return -1
	}
	if di.Message > dj.Message {
		return 1
	}
	return 0
}

func cmpUint(a, b uint32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// простая дедупликация (по Code+Primary+Message)
func (b *Bag) Dedup() {
	b.mu.Lock()
	defer b.mu.Unlock()
	seen := make(map[string]bool, len(b.items))
	newitems := make([]Diagnostic, 0, len(b.items))
	for _, d := range b.items {
		key := fmt.Sprintf("%d:%s:%s", d.Code, d.Primary.String(), d.Message)
		if seen[key] {
			continue
		}
		seen[key] = true
		newitems = append(newitems, d)
	}
	b.items = newitems
}
