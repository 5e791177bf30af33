package fuzztests

import (
	"testing"
	"time"

	"swell/internal/diag"
	"swell/internal/format"
	"swell/internal/parser"
	"swell/internal/source"
	"swell/internal/testkit"
)

// parseTimeout bounds one input; longer means the recovery loop stalled.
const parseTimeout = 5 * time.Second

func parse(input []byte) (*source.File, *diag.Bag, error) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("fuzz.sw", input)
	bag := diag.NewBag(128)
	b, res := parser.ParseSource(fs, id, source.NewInterner(), parser.Options{
		Reporter:  diag.BagReporter{Bag: bag},
		MaxErrors: 128,
	})
	if bag.HasErrors() {
		return fs.Get(id), bag, nil
	}
	return fs.Get(id), bag, testkit.CheckSpanInvariants(b, res.File, fs.Get(id))
}

func FuzzParserSpans(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampSeed(input[:min(len(input), maxFuzzInput)])
		if _, _, err := parse(input); err != nil {
			t.Fatalf("%v\ninput: %q", err, truncateForLog(input, 200))
		}
	})
}

// FuzzRoundTrip checks that printing an error-free parse gives a file that
// parses to the same tree.
func FuzzRoundTrip(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampSeed(input[:min(len(input), maxFuzzInput)])
		if _, bag, _ := parse(input); bag.Len() > 0 {
			return
		}
		if ok, msg := format.CheckRoundTrip("fuzz.sw", input, nil); !ok {
			t.Fatalf("round trip: %s\ninput: %q", msg, truncateForLog(input, 200))
		}
	})
}

func FuzzParserNoHang(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampSeed(input[:min(len(input), maxFuzzInput)])

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _, _ = parse(input)
		}()
		select {
		case <-done:
		case <-time.After(parseTimeout):
			t.Fatalf("parser hang: more than %v on %d bytes: %q",
				parseTimeout, len(input), truncateForLog(input, 200))
		}
	})
}

func truncateForLog(input []byte, maxLen int) []byte {
	if len(input) <= maxLen {
		return input
	}
	return append(input[:maxLen:maxLen], "..."...)
}
