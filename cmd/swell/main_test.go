package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"swell/internal/observ"
)

// execute runs the CLI with captured output. Flags keep their values
// between Execute calls, so every test resets them first.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	reset := func(fs *pflag.FlagSet) {
		fs.VisitAll(func(f *pflag.Flag) {
			if sv, ok := f.Value.(pflag.SliceValue); ok {
				_ = sv.Replace(nil)
			} else {
				_ = f.Value.Set(f.DefValue)
			}
			f.Changed = false
		})
	}
	reset(rootCmd.PersistentFlags())
	for _, c := range rootCmd.Commands() {
		reset(c.Flags())
	}
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	err = run(append([]string{"--color=off"}, args...))
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name, src string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestCheckCleanContract(t *testing.T) {
	_, stderr, err := execute(t, "check", filepath.Join("..", "..", "testdata", "counter.sw"))
	if err != nil {
		t.Fatalf("check: %v\n%s", err, stderr)
	}
	if stderr != "" {
		t.Fatalf("unexpected diagnostics:\n%s", stderr)
	}
}

func TestCheckReportsErrors(t *testing.T) {
	p := writeFile(t, "bad.sw", "library;\nfn f() { missing(); }\n")
	_, stderr, err := execute(t, "check", "--format=short", p)
	if !errors.Is(err, errFailed) {
		t.Fatalf("err = %v, want errFailed", err)
	}
	if !strings.Contains(stderr, "bad.sw:2:10: error RES3001") {
		t.Fatalf("stderr:\n%s", stderr)
	}
}

func TestIRText(t *testing.T) {
	stdout, stderr, err := execute(t, "ir", "--timings", filepath.Join("..", "..", "testdata", "counter.sw"))
	if err != nil {
		t.Fatalf("ir: %v\n%s", err, stderr)
	}
	if !strings.Contains(stdout, "storage_write") {
		t.Fatalf("IR listing lacks storage_write:\n%s", stdout)
	}
	if !strings.Contains(stderr, "timings") || !strings.Contains(stderr, "lower") {
		t.Fatalf("timings missing:\n%s", stderr)
	}
}

func TestParseEmitsTree(t *testing.T) {
	p := writeFile(t, "p.sw", "library;\nfn f() {}\n")
	stdout, _, err := execute(t, "parse", "--check", p)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "(params") {
		t.Fatalf("tree:\n%s", stdout)
	}
}

func TestTokenizeJSON(t *testing.T) {
	p := writeFile(t, "t.sw", "library;\n")
	stdout, _, err := execute(t, "tokenize", "--format=json", p)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(strings.TrimSpace(stdout), "[") {
		t.Fatalf("not JSON:\n%s", stdout)
	}
}

func TestParseCfg(t *testing.T) {
	cfg, err := parseCfg([]string{"target=test", ` mode = "fast" `})
	if err != nil {
		t.Fatal(err)
	}
	if cfg["target"] != "test" || cfg["mode"] != "fast" {
		t.Fatalf("cfg = %v", cfg)
	}
	if _, err := parseCfg([]string{"novalue"}); err == nil {
		t.Fatal("pair without = accepted")
	}
}

func TestPrintTimings(t *testing.T) {
	var buf bytes.Buffer
	printTimings(&buf, observ.Report{
		TotalMS: 3,
		Phases: []observ.PhaseReport{
			{Name: "parse", DurationMS: 1, Note: "2 modules"},
			{Name: "resolve", DurationMS: 2},
		},
	}, false)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 || lines[0] != "timings" {
		t.Fatalf("table:\n%s", buf.String())
	}
	if !strings.Contains(lines[1], "1.00 ms") || !strings.HasSuffix(lines[1], "2 modules") {
		t.Fatalf("parse row = %q", lines[1])
	}
	if !strings.HasPrefix(lines[3], "  total") {
		t.Fatalf("total row = %q", lines[3])
	}
}
