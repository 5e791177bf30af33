package diag

import (
	"sync"
	"testing"

	"swell/internal/source"
)

func sp(file source.FileID, start, end uint32) source.Span {
	return source.Span{File: file, Start: start, End: end}
}

func TestBagSortSourceOrder(t *testing.T) {
	b := NewBag(10)
	b.Add(NewError(TypMismatch, sp(1, 5, 6), "b"))
	b.Add(New(SevWarning, AtrDeprecatedUsage, sp(0, 10, 12), "c"))
	b.Add(NewError(ResUnknownName, sp(0, 10, 12), "a"))
	b.Add(NewError(LexBadNumber, sp(0, 1, 2), "d"))
	b.Sort()
	got := b.Items()
	want := []Code{LexBadNumber, ResUnknownName, AtrDeprecatedUsage, TypMismatch}
	for i, c := range want {
		if got[i].Code != c {
			t.Fatalf("item %d: got %s want %s", i, got[i].Code.ID(), c.ID())
		}
	}
}

func TestBagLimitPrefersErrors(t *testing.T) {
	b := NewBag(2)
	b.Add(New(SevWarning, AtrUnknown, sp(0, 0, 1), "w1"))
	b.Add(New(SevWarning, AtrUnknown, sp(0, 1, 2), "w2"))
	if !b.Add(NewError(TypMismatch, sp(0, 2, 3), "e")) {
		t.Fatalf("error must replace a warning")
	}
	if !b.HasErrors() || b.Len() != 2 || b.Dropped() != 1 {
		t.Errorf("unexpected bag state: len=%d dropped=%d", b.Len(), b.Dropped())
	}
	if b.Add(New(SevWarning, AtrUnknown, sp(0, 3, 4), "w3")) {
		t.Errorf("warning must be dropped when full")
	}
}

func TestDedupReporter(t *testing.T) {
	b := NewBag(10)
	r := NewDedupReporter(BagReporter{Bag: b})
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ReportError(r, ResUnknownName, sp(0, 1, 4), "unknown name `foo`").Emit()
		}()
	}
	wg.Wait()
	if b.Len() != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", b.Len())
	}
}

func TestReportBuilder(t *testing.T) {
	b := NewBag(4)
	rb := ReportError(BagReporter{Bag: b}, PurMissingStorage, sp(0, 0, 3), "missing").
		WithNote(sp(0, 5, 9), "write here").
		WithHelp("add #[storage(write)]")
	rb.Emit()
	rb.Emit()
	items := b.Items()
	if len(items) != 1 {
		t.Fatalf("Emit must be idempotent, got %d", len(items))
	}
	d := items[0]
	if len(d.Notes) != 1 || d.Help == "" || d.Code.Category() != "PurityError" {
		t.Errorf("unexpected diagnostic %+v", d)
	}
}

func TestCodeIDs(t *testing.T) {
	tests := map[Code]string{
		LexBadNumber:       "LEX1004",
		SynExpectSemicolon: "SYN2003",
		ResAmbiguousGlob:   "RES3006",
		TypNonExhaustive:   "TYP4004",
		PurMissingStorage:  "PUR5001",
		AtrMalformed:       "ATR6002",
		ProjModuleCycle:    "PRJ7001",
		IOLoadFileError:    "IO8001",
	}
	for code, want := range tests {
		if got := code.ID(); got != want {
			t.Errorf("%d: got %s want %s", code, got, want)
		}
		if code.Title() == codeDescription[UnknownCode] {
			t.Errorf("%s has no description", want)
		}
	}
}
