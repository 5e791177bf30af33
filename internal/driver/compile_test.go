package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"swell/internal/diag"
	"swell/internal/ir"
	"swell/internal/observ"
	"swell/internal/project"
)

const counterSrc = `contract;
abi Counter {
    #[storage(read)]
    fn get() -> u64;
    #[storage(read, write)]
    fn add(n: u64);
}
storage {
    count: u64 = 5,
}
impl Counter for Contract {
    #[storage(read)]
    fn get() -> u64 { storage.count.read() }
    #[storage(read, write)]
    fn add(n: u64) { storage.count.write(storage.count.read() + n); }
}
`

func provider(files map[string]string) project.MapProvider {
	p := project.MapProvider{Files: make(map[string][]byte, len(files))}
	for name, src := range files {
		p.Files[name] = []byte(src)
	}
	return p
}

func compile(t *testing.T, files map[string]string, opts Options) *Result {
	t.Helper()
	res, err := Compile(context.Background(), "src/main.sw", provider(files), opts)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return res
}

func codes(bag *diag.Bag) []string {
	var out []string
	for _, d := range bag.Items() {
		out = append(out, fmt.Sprintf("%s@%d:%d", d.Code.ID(), d.Primary.File, d.Primary.Start))
	}
	return out
}

func TestCompileContract(t *testing.T) {
	timer := observ.NewTimer()
	res := compile(t, map[string]string{"src/main.sw": counterSrc}, Options{Jobs: 2, Timer: timer})
	if res.Failed() {
		t.Fatalf("diagnostics: %v", res.Bag.Items())
	}
	if res.Stage != StageLower || res.Module == nil {
		t.Fatalf("stage = %s, module = %v", res.Stage, res.Module)
	}
	if len(res.Module.Abi) != 2 {
		t.Errorf("abi methods = %d", len(res.Module.Abi))
	}
	var phases []string
	for _, p := range timer.Report().Phases {
		phases = append(phases, p.Name)
	}
	if want := []string{"parse", "resolve", "check", "purity", "lower"}; !slices.Equal(phases, want) {
		t.Errorf("phases = %v, want %v", phases, want)
	}
}

func TestDiagnosticsIndependentOfJobs(t *testing.T) {
	files := map[string]string{
		"src/main.sw": "library;\nmod a;\nmod b;\nmod c;\nfn top() { missing(); }\n",
		"src/a.sw":    "library;\nfn f(x: Nope) {}\nfn g() { h(); }\n",
		"src/b.sw":    "library;\nfn f() -> u8 { true }\n",
		"src/c.sw":    "library;\nuse crate::a::zzz;\nfn k() { let y: Other = 1; }\n",
	}
	base := codes(compile(t, files, Options{Jobs: 1}).Bag)
	if len(base) < 4 {
		t.Fatalf("expected several diagnostics, got %v", base)
	}
	for _, jobs := range []int{2, 8} {
		if got := codes(compile(t, files, Options{Jobs: jobs}).Bag); !slices.Equal(got, base) {
			t.Fatalf("jobs=%d: %v\njobs=1: %v", jobs, got, base)
		}
	}
}

func TestLimitKeepsSourceOrder(t *testing.T) {
	files := map[string]string{
		"src/main.sw": "library;\nfn a() { x1(); }\nfn b() { x2(); }\nfn c() { x3(); }\n",
	}
	all := compile(t, files, Options{Jobs: 4}).Bag
	capped := compile(t, files, Options{Jobs: 4, MaxDiagnostics: 2}).Bag
	if capped.Len() != 2 || capped.Dropped() != all.Len()-2 {
		t.Fatalf("capped len=%d dropped=%d, full len=%d", capped.Len(), capped.Dropped(), all.Len())
	}
	if !slices.Equal(codes(capped), codes(all)[:2]) {
		t.Fatalf("capped %v is not a prefix of %v", codes(capped), codes(all))
	}
}

func TestStagesStopEarly(t *testing.T) {
	files := map[string]string{"src/main.sw": counterSrc}
	tests := []struct {
		stage Stage
		check func(*Result) bool
	}{
		{StageParse, func(r *Result) bool { return r.Graph != nil && r.Table == nil }},
		{StageResolve, func(r *Result) bool { return r.Table != nil && r.Program == nil }},
		{StageCheck, func(r *Result) bool { return r.Purity != nil && r.Module == nil }},
	}
	for _, tt := range tests {
		t.Run(tt.stage.String(), func(t *testing.T) {
			res := compile(t, files, Options{Stage: tt.stage})
			if res.Stage != tt.stage || !tt.check(res) {
				t.Fatalf("stage %s: got %+v", tt.stage, res)
			}
		})
	}
}

func TestErrorsSkipLowering(t *testing.T) {
	res := compile(t, map[string]string{
		"src/main.sw": "contract;\nstorage {\n    x: u64 = 0,\n}\nfn bump() {\n    storage.x += 1;\n}\n",
	}, Options{})
	if !res.Failed() || res.Module != nil {
		t.Fatalf("failed=%v module=%v", res.Failed(), res.Module)
	}
	if res.Bag.Len() != 1 || res.Bag.Count(diag.PurMissingStorage) != 1 {
		t.Fatalf("diagnostics: %v", codes(res.Bag))
	}
	if !strings.Contains(res.Bag.Items()[0].Message, "bump") {
		t.Fatalf("message = %q", res.Bag.Items()[0].Message)
	}
	if res.Stage != StageCheck {
		t.Fatalf("stage = %s", res.Stage)
	}
}

func TestModuleCycleIsFatal(t *testing.T) {
	p := provider(map[string]string{
		"src/main.sw": "contract;\nmod a;\n",
		"src/a.sw":    "library;\nmod b;\n",
	})
	p.Aliases = map[string]string{"src/a/b.sw": "src/a.sw"}
	res, err := Compile(context.Background(), "src/main.sw", p, Options{})
	var cycle *project.ErrCycle
	if !errors.As(err, &cycle) {
		t.Fatalf("err = %v, want ErrCycle", err)
	}
	if res == nil || res.Bag.Count(diag.ProjModuleCycle) != 1 {
		t.Fatalf("cycle diagnostic missing: %+v", res)
	}
}

func TestCacheRoundTrip(t *testing.T) {
	cache, err := NewDiskCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	files := map[string]string{"src/main.sw": counterSrc}
	first := compile(t, files, Options{Cache: cache})
	if first.CacheHit {
		t.Fatal("cold cache hit")
	}
	second := compile(t, files, Options{Cache: cache})
	if !second.CacheHit {
		t.Fatal("warm cache missed")
	}
	var a, b strings.Builder
	if err := ir.Print(&a, first.Module); err != nil {
		t.Fatal(err)
	}
	if err := ir.Print(&b, second.Module); err != nil {
		t.Fatal(err)
	}
	if a.String() != b.String() {
		t.Fatalf("cached IR differs:\n%s\n---\n%s", a.String(), b.String())
	}

	changed := compile(t, files, Options{Cache: cache, Cfg: map[string]string{"target": "test"}})
	if changed.CacheHit {
		t.Fatal("cfg change reused cache entry")
	}
	if err := cache.DropAll(); err != nil {
		t.Fatal(err)
	}
	if compile(t, files, Options{Cache: cache}).CacheHit {
		t.Fatal("hit after DropAll")
	}
}

func TestCorruptCacheEntryIsMiss(t *testing.T) {
	cache, err := NewDiskCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	files := map[string]string{"src/main.sw": counterSrc}
	compile(t, files, Options{Cache: cache})
	entries, err := filepath.Glob(filepath.Join(cache.Dir(), "ir", "*.mp"))
	if err != nil || len(entries) != 1 {
		t.Fatalf("entries = %v, %v", entries, err)
	}
	if err := os.WriteFile(entries[0], []byte("garbage"), 0o600); err != nil {
		t.Fatal(err)
	}
	res := compile(t, files, Options{Cache: cache})
	if res.CacheHit || res.Module == nil {
		t.Fatalf("hit=%v module=%v", res.CacheHit, res.Module)
	}
}

func TestParseStage(t *testing.T) {
	for _, s := range []Stage{StageParse, StageResolve, StageCheck, StageLower} {
		got, err := ParseStage(strings.ToUpper(s.String()))
		if err != nil || got != s {
			t.Errorf("ParseStage(%s) = %v, %v", s, got, err)
		}
	}
	if _, err := ParseStage("link"); err == nil {
		t.Error("link accepted")
	}
}
