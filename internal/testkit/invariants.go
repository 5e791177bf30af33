// Package testkit holds invariant checks shared by parser, format and fuzz
// tests.
package testkit

import (
	"errors"
	"fmt"

	"fortio.org/safecast"

	"swell/internal/ast"
	"swell/internal/source"
	"swell/internal/token"
)

// CheckSpanInvariants verifies the spans of a parsed file:
//   - the file span is non-empty and inside the content
//   - the program header span lies inside the file span
//   - every kept and gated item has a non-empty span inside the file span
//   - items do not overlap and appear in source order
func CheckSpanInvariants(b *ast.Builder, fileID ast.FileID, sf *source.File) error {
	if b == nil || sf == nil {
		return errors.New("nil builder or file")
	}
	f := b.Files.Get(fileID)
	if f == nil {
		return errors.New("file node not found")
	}
	size, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("content length: %w", err)
	}
	if f.Span.File != sf.ID {
		return fmt.Errorf("file span points to file %d, want %d", f.Span.File, sf.ID)
	}
	if f.Span.End > size || f.Span.Start > f.Span.End {
		return fmt.Errorf("file span %v outside content of %d bytes", f.Span, size)
	}
	if size > 0 && f.Span.Empty() {
		return fmt.Errorf("file span is empty: %v", f.Span)
	}
	if !f.KindSpan.Empty() && !f.Span.Contains(f.KindSpan) {
		return fmt.Errorf("header span %v outside file span %v", f.KindSpan, f.Span)
	}

	var errs []error
	check := func(label string, ids []ast.ItemID) {
		var prev source.Span
		for i, id := range ids {
			item := b.Items.Get(id)
			if item == nil {
				errs = append(errs, fmt.Errorf("%s[%d]: nil item %d", label, i, id))
				continue
			}
			sp := item.Span
			switch {
			case sp.Empty():
				errs = append(errs, fmt.Errorf("%s[%d]: empty span %v", label, i, sp))
			case sp.File != sf.ID:
				errs = append(errs, fmt.Errorf("%s[%d]: span in file %d", label, i, sp.File))
			case !f.Span.Contains(sp):
				errs = append(errs, fmt.Errorf("%s[%d]: span %v outside file span %v", label, i, sp, f.Span))
			case i > 0 && sp.Start < prev.End:
				errs = append(errs, fmt.Errorf("%s[%d]: span %v overlaps %v", label, i, sp, prev))
			}
			prev = sp
		}
	}
	check("items", f.Items)
	check("gated", f.Gated)
	return errors.Join(errs...)
}

// CheckTokenInvariants verifies that trivia and token spans are ordered
// inside the content and that the stream ends with a single EOF.
func CheckTokenInvariants(toks []token.Token, sf *source.File) error {
	if len(toks) == 0 {
		return errors.New("empty token stream")
	}
	size, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("content length: %w", err)
	}
	var pos uint32
	at := func(i int, what string, sp source.Span) error {
		if sp.Start < pos || sp.End < sp.Start || sp.End > size {
			return fmt.Errorf("token %d: %s span %v out of order (pos %d, size %d)", i, what, sp, pos, size)
		}
		pos = sp.End
		return nil
	}
	for i, tok := range toks {
		for _, tr := range tok.Leading {
			if err := at(i, tr.Kind.String(), tr.Span); err != nil {
				return err
			}
		}
		if err := at(i, "token", tok.Span); err != nil {
			return err
		}
		if tok.Kind.IsEOF() != (i == len(toks)-1) {
			return fmt.Errorf("token %d: EOF at wrong position", i)
		}
	}
	return nil
}
