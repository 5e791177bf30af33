package mono

import (
	"sync"
	"testing"

	"swell/internal/source"
	"swell/internal/types"
)

func TestKeysAreStable(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	k1 := NewKey(3, []types.TypeID{b.U8, in.Tuple(b.U8, b.Bool)})
	k2 := NewKey(3, []types.TypeID{b.U8, in.Tuple(b.U8, b.Bool)})
	if k1 != k2 {
		t.Fatalf("keys differ: %v %v", k1, k2)
	}
	if NewKey(3, []types.TypeID{b.U16}) == NewKey(3, []types.TypeID{b.U8}) {
		t.Fatalf("different arguments share a key")
	}
	if got := Symbol(in, "crate::identity", []types.TypeID{b.U8}); got != "crate::identity<u8>" {
		t.Fatalf("Symbol = %q", got)
	}
}

func TestInstancesDedupSites(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	m := NewInstances()
	site := source.Span{File: 1, Start: 4, End: 9}
	m.Record(5, []types.TypeID{b.U8}, site, 2)
	m.Record(5, []types.TypeID{b.U8}, site, 2)
	m.Record(5, []types.TypeID{b.U64}, site, 2)
	m.Record(5, nil, site, 2)
	if m.Len() != 2 {
		t.Fatalf("Len = %d, want 2", m.Len())
	}
	for _, e := range m.Entries() {
		if len(e.UseSites) != 1 {
			t.Fatalf("entry %v has %d sites", e.Key, len(e.UseSites))
		}
	}
}

func TestMemoClaimsOnce(t *testing.T) {
	m := NewMemo[int]()
	key := NewKey(1, nil)
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := m.Claim(key); ok {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if winners != 1 {
		t.Fatalf("winners = %d", winners)
	}
	if ok, st := m.Claim(key); ok || st != InProgress {
		t.Fatalf("re-entry = %v %v", ok, st)
	}
	m.Finish(key, 42)
	if v, ok := m.Value(key); !ok || v != 42 || m.State(key) != Lowered {
		t.Fatalf("value = %v %v", v, ok)
	}
}
