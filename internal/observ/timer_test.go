package observ

import (
	"sync"
	"testing"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	stop := tm.Phase("parse")
	stop("3 files")
	stop("again")
	open := tm.Begin("resolve")
	tm.End(tm.Begin("check"), "")

	r := tm.Report()
	if len(r.Phases) != 2 {
		t.Fatalf("phases = %+v", r.Phases)
	}
	if r.Phases[0].Name != "parse" || r.Phases[0].Note != "3 files" {
		t.Errorf("first = %+v", r.Phases[0])
	}
	if r.Phases[1].Name != "check" {
		t.Errorf("second = %+v", r.Phases[1])
	}
	tm.End(open, "")
	if got := len(tm.Report().Phases); got != 3 {
		t.Errorf("after End: %d phases", got)
	}
	sum := 0.0
	for _, p := range tm.Report().Phases {
		sum += p.DurationMS
	}
	if tm.Report().TotalMS != sum {
		t.Errorf("total %v != sum %v", tm.Report().TotalMS, sum)
	}
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	tm.Phase("x")("")
	tm.End(tm.Begin("y"), "")
	if len(tm.Report().Phases) != 0 {
		t.Fatal("nil timer recorded phases")
	}
}

func TestTimerConcurrent(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for range 16 {
		wg.Go(func() { tm.Phase("module")("") })
	}
	wg.Wait()
	if got := len(tm.Report().Phases); got != 16 {
		t.Fatalf("phases = %d", got)
	}
}
