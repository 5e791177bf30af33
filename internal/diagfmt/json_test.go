package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"swell/internal/diag"
	"swell/internal/source"
)

func TestJSONBasic(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("fn main() {\n\tlet x = \"unterminated\n}")
	fileID := fs.AddVirtual("dir/test.sw", content)

	bag := diag.NewBag(10)
	d := diag.New(diag.SevError, diag.LexUnterminatedString, source.Span{File: fileID, Start: 21, End: 33}, "Unterminated string literal")
	d = d.WithNote(source.Span{File: fileID, Start: 0, End: 2}, "inside this function").WithHelp("close the string")
	bag.Add(d)

	var buf bytes.Buffer
	opts := JSONOpts{IncludePositions: true, PathMode: PathModeBasename, IncludeNotes: true}
	if err := JSON(&buf, bag, fs, opts); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, buf.String())
	}
	if out.Count != 1 || len(out.Diagnostics) != 1 {
		t.Fatalf("count = %d, diagnostics = %d", out.Count, len(out.Diagnostics))
	}
	got := out.Diagnostics[0]
	if got.Severity != "ERROR" || got.Code != "LEX1002" || got.Category != "LexError" {
		t.Errorf("severity/code/category = %s/%s/%s", got.Severity, got.Code, got.Category)
	}
	if got.Location.File != "test.sw" {
		t.Errorf("file = %q, want basename", got.Location.File)
	}
	if got.Location.StartLine != 2 || got.Location.StartCol != 10 {
		t.Errorf("position = %d:%d, want 2:10", got.Location.StartLine, got.Location.StartCol)
	}
	if len(got.Notes) != 1 || got.Notes[0].Message != "inside this function" {
		t.Errorf("notes = %+v", got.Notes)
	}
	if got.Help != "close the string" {
		t.Errorf("help = %q", got.Help)
	}
}

func TestJSONMaxAndPositions(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("a.sw", []byte("abc\n"))
	bag := diag.NewBag(10)
	for i := range uint32(3) {
		bag.Add(diag.NewError(diag.ResUnknownName, source.Span{File: fileID, Start: i, End: i + 1}, "unknown"))
	}
	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 2})
	if out.Count != 2 {
		t.Fatalf("count = %d, want 2", out.Count)
	}
	if out.Diagnostics[0].Location.StartLine != 0 {
		t.Error("positions present without IncludePositions")
	}
	if out.Diagnostics[0].Notes != nil {
		t.Error("notes present without IncludeNotes")
	}
}
