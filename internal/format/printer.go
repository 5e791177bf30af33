package format

import (
	"errors"
	"slices"

	"swell/internal/ast"
	"swell/internal/diag"
	"swell/internal/parser"
	"swell/internal/source"
)

type Options struct {
	IndentWidth int
	UseTabs     bool
}

func (o Options) withDefaults() Options {
	if o.IndentWidth == 0 {
		o.IndentWidth = 4
	}
	return o
}

type printer struct {
	builder *ast.Builder
	writer  *Writer
}

// File prints the file canonically with default options.
func File(b *ast.Builder, fid ast.FileID) []byte {
	out, err := FormatFile(b, fid, Options{})
	if err != nil {
		return nil
	}
	return out
}

func FormatFile(b *ast.Builder, fid ast.FileID, opt Options) ([]byte, error) {
	if b == nil {
		return nil, errors.New("format: nil builder")
	}
	if !fid.IsValid() {
		return nil, errors.New("format: invalid file id")
	}
	file := b.Files.Get(fid)
	if file == nil {
		return nil, errors.New("format: missing ast file")
	}
	pr := printer{builder: b, writer: NewWriter(opt)}
	pr.printFile(file)
	return pr.writer.Bytes(), nil
}

// allItems возвращает kept и gated item'ы в исходном порядке.
func allItems(b *ast.Builder, file *ast.File) []ast.ItemID {
	items := append(slices.Clone(file.Items), file.Gated...)
	slices.SortStableFunc(items, func(x, y ast.ItemID) int {
		return int(b.Items.Get(x).Span.Start) - int(b.Items.Get(y).Span.Start)
	})
	return items
}

func (p *printer) printFile(file *ast.File) {
	w := p.writer
	if file.Program != ast.ProgramUnknown {
		w.WriteString(file.Program.String() + ";")
		w.Newline()
	}
	prevKind := ast.ItemError
	for i, id := range allItems(p.builder, file) {
		item := p.builder.Items.Get(id)
		if item.Kind == ast.ItemError {
			continue
		}
		// подряд идущие use/mod/const не разделяем пустой строкой
		if i == 0 || item.Kind != prevKind || !isCompact(item.Kind) {
			w.BlankLine()
		}
		p.printItem(id)
		w.Newline()
		prevKind = item.Kind
	}
}

func isCompact(k ast.ItemKind) bool {
	return k == ast.ItemUse || k == ast.ItemMod || k == ast.ItemConst
}

// CheckRoundTrip parses src, prints it, re-parses the output and compares the
// structural dumps of both parses.
func CheckRoundTrip(path string, src []byte, cfg map[string]string) (ok bool, msg string) {
	origDump, origOut, err := parseAndPrint(path, src, cfg)
	if err != nil {
		return false, "fmt-check: initial parse: " + err.Error()
	}
	newDump, _, err := parseAndPrint(path, origOut, cfg)
	if err != nil {
		return false, "fmt-check: reparse: " + err.Error()
	}
	if origDump != newDump {
		return false, "fmt-check: structure differs after round-trip"
	}
	return true, "fmt-check: OK"
}

func parseAndPrint(path string, src []byte, cfg map[string]string) (dump string, out []byte, err error) {
	fs := source.NewFileSet()
	id := fs.AddVirtual(path, src)
	bag := diag.NewBag(64)
	b, res := parser.ParseSource(fs, id, source.NewInterner(), parser.Options{
		Reporter: diag.BagReporter{Bag: bag},
		Cfg:      cfg,
	})
	for _, d := range bag.Items() {
		if d.IsError() {
			return "", nil, errors.New(d.Code.ID() + ": " + d.Message)
		}
	}
	out, err = FormatFile(b, res.File, Options{})
	if err != nil {
		return "", nil, err
	}
	return Dump(b, res.File), out, nil
}
