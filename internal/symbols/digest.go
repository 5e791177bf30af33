package symbols

import (
	"cmp"
	"crypto/sha256"
	"encoding/binary"
	"hash"
	"slices"

	"swell/internal/project"
	"swell/internal/source"
)

// Digest hashes the complete symbol content: declarations, module scopes
// and every recorded binding. Equal graphs yield equal digests.
func (t *Table) Digest() project.Digest {
	h := sha256.New()
	for _, d := range t.Decls.All() {
		writeU32(h, uint32(d.ID), uint32(d.Kind), uint32(d.Module), uint32(d.Item), uint32(int32(d.Index)), uint32(d.Parent), uint32(d.Target))
		writeSpan(h, d.Span)
		writeStr(h, d.Name)
		writeBool(h, d.Public, d.Local)
		writeU32(h, uint32(len(d.Members)))
		for _, m := range d.Members {
			writeU32(h, uint32(m))
		}
		writeU32(h, uint32(len(d.Supers)))
		for _, s := range d.Supers {
			writeU32(h, uint32(s))
		}
	}
	for _, sc := range t.scopes {
		writeU32(h, uint32(sc.Module), uint32(len(sc.Locals)), uint32(len(sc.order)), uint32(len(sc.Globs)))
		for _, name := range sc.order {
			imp := sc.Imports[name]
			writeStr(h, name)
			writeU32(h, uint32(imp.Decl))
			writeBool(h, imp.Public)
		}
		for _, g := range sc.Globs {
			writeU32(h, uint32(g.Module), uint32(g.Enum))
			writeBool(h, g.Public)
		}
	}
	for _, res := range t.res {
		spans := make([]source.Span, 0, len(res.Paths))
		for sp := range res.Paths {
			spans = append(spans, sp)
		}
		slices.SortFunc(spans, compareSpans)
		for _, sp := range spans {
			b := res.Paths[sp]
			writeSpan(h, sp)
			writeU32(h, uint32(b.Kind), uint32(b.Decl), uint32(b.Local), uint32(int32(b.Index)), uint32(b.Builtin), uint32(int32(b.Rest)))
		}
		binders := make([]source.Span, 0, len(res.Binders))
		for sp := range res.Binders {
			binders = append(binders, sp)
		}
		slices.SortFunc(binders, compareSpans)
		for _, sp := range binders {
			writeSpan(h, sp)
			writeU32(h, uint32(res.Binders[sp]))
		}
		for _, l := range res.Locals[1:] {
			writeStr(h, l.Name)
			writeSpan(h, l.Span)
			writeBool(h, l.Mut)
		}
	}
	var out project.Digest
	copy(out[:], h.Sum(nil))
	return out
}

func compareSpans(a, b source.Span) int {
	return cmp.Or(cmp.Compare(a.File, b.File), cmp.Compare(a.Start, b.Start), cmp.Compare(a.End, b.End))
}

func writeU32(h hash.Hash, vs ...uint32) {
	var buf [4]byte
	for _, v := range vs {
		binary.LittleEndian.PutUint32(buf[:], v)
		h.Write(buf[:])
	}
}

func writeStr(h hash.Hash, s string) {
	writeU32(h, uint32(len(s)))
	h.Write([]byte(s))
}

func writeBool(h hash.Hash, vs ...bool) {
	for _, v := range vs {
		if v {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	}
}

func writeSpan(h hash.Hash, sp source.Span) {
	writeU32(h, uint32(sp.File), sp.Start, sp.End)
}
