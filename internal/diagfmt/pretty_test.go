package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"swell/internal/diag"
	"swell/internal/source"
)

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("let x = \"unterminated string\n")
	fileID := fs.AddVirtual("/home/user/project/src/test.sw", content)

	bag := diag.NewBag(10)
	bag.Add(diag.New(
		diag.SevError,
		diag.LexUnterminatedString,
		source.Span{File: fileID, Start: 8, End: 28},
		"Unterminated string literal",
	))

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"absolute", PathModeAbsolute, "/home/user/project/src/test.sw:1:9"},
		{"relative", PathModeRelative, "src/test.sw:1:9"},
		{"basename", PathModeBasename, "test.sw:1:9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			opts := PrettyOpts{Context: 1, PathMode: tt.mode, BaseDir: "/home/user/project"}
			if err := Pretty(&buf, bag, fs, opts); err != nil {
				t.Fatal(err)
			}
			out := buf.String()
			for _, want := range []string{tt.contains, "ERROR", "LEX1002", "Unterminated string"} {
				if !strings.Contains(out, want) {
					t.Errorf("output lacks %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestPathModeAuto(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"test.sw", "test.sw"},
		{"/very/long/absolute/path/to/some/nested/directory/file.sw", "file.sw"},
	}
	for _, tt := range tests {
		if got := displayPath(tt.path, PathModeAuto, ""); got != tt.want {
			t.Errorf("displayPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestPrettyCaretUnderSpan(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("fn f() -> u8 {\n\tlet x: u8 = true;\n}\n")
	fileID := fs.AddVirtual("main.sw", content)
	start := uint32(strings.Index(string(content), "true"))

	bag := diag.NewBag(4)
	d := diag.New(diag.SevError, diag.TypMismatch, source.Span{File: fileID, Start: start, End: start + 4}, "mismatched types")
	d = d.WithHelp("use a u8 literal")
	bag.Add(d)

	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(buf.String(), "\n")
	if !strings.HasPrefix(lines[0], "main.sw:2:14: ERROR TYP") {
		t.Fatalf("header = %q", lines[0])
	}
	// строка исходника с раскрытым табом и каретка под `true`
	var src, marks string
	for i, l := range lines {
		if strings.Contains(l, "let x") {
			src, marks = l, lines[i+1]
			break
		}
	}
	if src == "" {
		t.Fatalf("no source line:\n%s", buf.String())
	}
	col := strings.Index(src, "true")
	if got := strings.Index(marks, "^~~~"); got != col {
		t.Fatalf("caret at %d, want %d:\n%s\n%s", got, col, src, marks)
	}
	if !strings.Contains(buf.String(), "help: use a u8 literal") {
		t.Fatalf("help missing:\n%s", buf.String())
	}
}

func TestPrettyWideRunes(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("// 世界 x\n")
	fileID := fs.AddVirtual("w.sw", content)
	start := uint32(strings.Index(string(content), "x"))
	bag := diag.NewBag(1)
	bag.Add(diag.New(diag.SevWarning, diag.LexUnknownChar, source.Span{File: fileID, Start: start, End: start + 1}, "odd"))

	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(buf.String(), "\n")
	// "1 | " + "// " + два символа по две ячейки + пробел
	want := len("1 | ") + 3 + 4 + 1
	got := strings.Index(lines[3], "^")
	if got != want {
		t.Fatalf("caret at %d, want %d:\n%s", got, want, buf.String())
	}
}

func TestPrettyNotes(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("use core::util\n")
	fileID := fs.AddVirtual("test.sw", content)

	bag := diag.NewBag(4)
	d := diag.New(diag.SevWarning, diag.SynUnexpectedToken, source.Span{File: fileID, Start: 4, End: 8}, "unexpected token")
	d = d.WithNote(source.Span{File: fileID, Start: 10, End: 14}, "remove trailing identifier")
	bag.Add(d)

	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, ShowNotes: true}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "note: test.sw:1:11: remove trailing identifier") {
		t.Fatalf("expected note with location, got:\n%s", out)
	}
	if strings.Count(out, "use core::util") != 2 {
		t.Fatalf("expected an excerpt for the note too:\n%s", out)
	}
}

func TestPrettyColorCodes(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("c.sw", []byte("x\n"))
	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.ResUnknownName, source.Span{File: fileID, Start: 0, End: 1}, "unknown name `x`"))

	var plain, colored bytes.Buffer
	_ = Pretty(&plain, bag, fs, PrettyOpts{})
	_ = Pretty(&colored, bag, fs, PrettyOpts{Color: true})
	if strings.Contains(plain.String(), "\x1b[") {
		t.Fatal("plain output has escape codes")
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Fatal("colored output has no escape codes")
	}
}

func TestShort(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("s.sw", []byte("a\nbb\n"))
	bag := diag.NewBag(4)
	bag.Add(diag.NewError(diag.ResUnknownName, source.Span{File: fileID, Start: 2, End: 4}, "unknown name `bb`"))
	bag.Add(diag.New(diag.SevWarning, diag.ResUnusedImport, source.Span{File: fileID, Start: 0, End: 1}, "unused"))

	var buf bytes.Buffer
	if err := Short(&buf, bag, fs, PrettyOpts{Max: 1}); err != nil {
		t.Fatal(err)
	}
	want := "s.sw:2:1: error RES3001: unknown name `bb`\n"
	if buf.String() != want {
		t.Fatalf("short = %q, want %q", buf.String(), want)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatPretty, "short": FormatShort, "JSON": FormatJSON} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("sarif"); err == nil {
		t.Error("sarif accepted")
	}
}
