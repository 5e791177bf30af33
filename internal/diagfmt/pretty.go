package diagfmt

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"swell/internal/diag"
	"swell/internal/source"
)

const tabWidth = 4

type palette struct {
	err, warn, info *color.Color
	code, gutter    *color.Color
	note, help      *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		code:   color.New(color.Bold),
		gutter: color.New(color.FgBlue, color.Bold),
		note:   color.New(color.FgCyan),
		help:   color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.gutter, p.note, p.help} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes и Help.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	items := bag.Items()
	if opts.Max > 0 && opts.Max < len(items) {
		items = items[:opts.Max]
	}
	r := renderer{fs: fs, opts: opts, pal: newPalette(opts.Color)}
	for i := range items {
		if i > 0 {
			r.buf.WriteByte('\n')
		}
		r.diagnostic(&items[i])
	}
	if dropped := bag.Dropped(); dropped > 0 {
		fmt.Fprintf(&r.buf, "\n... %d more diagnostics were dropped\n", dropped)
	}
	_, err := w.Write(r.buf.Bytes())
	return err
}

type renderer struct {
	fs   *source.FileSet
	opts PrettyOpts
	pal  palette
	buf  bytes.Buffer
}

func (r *renderer) location(sp source.Span) string {
	f := r.fs.Get(sp.File)
	if f == nil {
		return "<unknown>"
	}
	start, _ := r.fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", displayPath(f.Path, r.opts.PathMode, r.opts.BaseDir), start.Line, start.Col)
}

func (r *renderer) diagnostic(d *diag.Diagnostic) {
	sev := r.pal.severity(d.Severity)
	fmt.Fprintf(&r.buf, "%s: %s %s: %s\n",
		r.location(d.Primary),
		sev.Sprint(d.Severity.String()),
		r.pal.code.Sprint(d.Code.ID()),
		d.Message)
	r.excerpt(d.Primary, sev, int(r.opts.Context))
	for _, n := range d.Notes {
		fmt.Fprintf(&r.buf, "  %s %s: %s\n", r.pal.note.Sprint("note:"), r.location(n.Span), n.Msg)
		if r.opts.ShowNotes {
			r.excerpt(n.Span, r.pal.note, 0)
		}
	}
	if d.Help != "" {
		fmt.Fprintf(&r.buf, "  %s %s\n", r.pal.help.Sprint("help:"), d.Help)
	}
}

// excerpt prints the first line of sp with ctx lines around it and a caret
// line under the span. Columns are display columns: tabs expand and wide
// runes take two cells.
func (r *renderer) excerpt(sp source.Span, caret *color.Color, ctx int) {
	f := r.fs.Get(sp.File)
	if f == nil || len(f.Content) == 0 {
		return
	}
	start, end := r.fs.Resolve(sp)
	line := int(start.Line)
	first := max(1, line-ctx)
	last := line + ctx
	if total := len(f.LineIdx) + 1; last > total {
		last = total
	}
	width := len(strconv.Itoa(last))
	pad := strings.Repeat(" ", width)
	bar := r.pal.gutter.Sprint("|")

	fmt.Fprintf(&r.buf, "%s %s\n", pad, bar)
	for n := first; n <= last; n++ {
		lineNo, err := safecast.Conv[uint32](n)
		if err != nil {
			return
		}
		text := f.GetLine(lineNo)
		fmt.Fprintf(&r.buf, "%s %s %s\n", r.pal.gutter.Sprintf("%*d", width, n), bar, expandTabs(text))
		if n != line {
			continue
		}
		col := int(start.Col) - 1
		col = min(max(col, 0), len(text))
		stop := len(text)
		if end.Line == start.Line {
			stop = min(max(int(end.Col)-1, col), len(text))
		}
		lead := runewidth.StringWidth(expandTabs(text[:col]))
		cells := max(runewidth.StringWidth(expandTabs(text[col:stop])), 1)
		marks := "^" + strings.Repeat("~", cells-1)
		fmt.Fprintf(&r.buf, "%s %s %s%s\n", pad, bar, strings.Repeat(" ", lead), caret.Sprint(marks))
	}
}

func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var sb strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			n := tabWidth - col%tabWidth
			sb.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		sb.WriteRune(r)
		col += runewidth.RuneWidth(r)
	}
	return sb.String()
}

// Short prints one line per diagnostic: `path:line:col: error CODE: msg`.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	r := renderer{fs: fs, opts: opts, pal: newPalette(opts.Color)}
	items := bag.Items()
	if opts.Max > 0 && opts.Max < len(items) {
		items = items[:opts.Max]
	}
	for _, d := range items {
		fmt.Fprintf(&r.buf, "%s: %s %s: %s\n",
			r.location(d.Primary),
			r.pal.severity(d.Severity).Sprint(d.Severity.Label()),
			d.Code.ID(),
			d.Message)
	}
	_, err := w.Write(r.buf.Bytes())
	return err
}
