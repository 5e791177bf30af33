package source

import (
	"sync"
	"testing"
)

func TestInternerBasics(t *testing.T) {
	in := NewInterner()
	if s, ok := in.Lookup(NoStringID); !ok || s != "" {
		t.Fatalf("NoStringID must map to empty string")
	}
	a := in.Intern("balance")
	b := in.Intern("balance")
	if a != b || a == NoStringID {
		t.Fatalf("intern not stable: %d %d", a, b)
	}
	if in.MustLookup(a) != "balance" {
		t.Errorf("lookup mismatch")
	}
	if _, ok := in.Lookup(99); ok {
		t.Errorf("expected miss")
	}
}

func TestInternerConcurrent(t *testing.T) {
	in := NewInterner()
	names := []string{"a", "b", "c", "d", "e"}
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, n := range names {
				in.Intern(n)
			}
		}()
	}
	wg.Wait()
	if in.Len() != len(names)+1 {
		t.Errorf("Len = %d want %d", in.Len(), len(names)+1)
	}
}
