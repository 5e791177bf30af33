package purity

import (
	"errors"
	"fmt"

	"swell/internal/diag"
	"swell/internal/hir"
	"swell/internal/layout"
	"swell/internal/types"
)

// checkStorageTypes validates the type of every storage slot: collections
// only at the top of a slot, every stored value with a fixed, reference-free
// layout that fits one storage element.
func (c *checker) checkStorageTypes() {
	in := c.prog.Types
	for _, slot := range c.prog.Storage {
		if in.HasErrors(slot.Type) {
			continue
		}
		t, _ := in.Lookup(slot.Type)
		switch t.Kind {
		case types.KindStorageMap:
			c.checkElem(slot, t.Args[0], "key")
			c.checkElem(slot, t.Args[1], "value")
		case types.KindStorageVec:
			c.checkElem(slot, t.Elem, "element")
		default:
			c.checkElem(slot, slot.Type, "value")
		}
	}
}

func isCollection(in *types.Interner, id types.TypeID) bool {
	k := in.Kind(id)
	return k == types.KindStorageMap || k == types.KindStorageVec
}

func (c *checker) checkElem(slot *hir.StorageField, elem types.TypeID, role string) {
	in := c.prog.Types
	if in.Contains(elem, func(id types.TypeID, _ *types.Type) bool { return isCollection(in, id) }) {
		diag.ReportError(c.reporter, diag.PurNestedCollection, slot.Span,
			fmt.Sprintf("storage field `%s` nests a storage collection: `%s`", slot.Name, in.Label(slot.Type))).
			WithHelp("storage collections are only allowed directly as the type of a storage field").
			Emit()
		return
	}
	l, err := c.layout.Of(elem)
	if err != nil {
		var lerr *layout.LayoutError
		msg := err.Error()
		if errors.As(err, &lerr) && lerr.Kind == layout.LayoutErrUnsized {
			msg = fmt.Sprintf("%s type `%s` of storage field `%s` has no fixed layout", role, in.Label(elem), slot.Name)
		}
		diag.ReportError(c.reporter, diag.PurStorageLayout, slot.Span, msg).Emit()
		return
	}
	if l.HasRefs {
		diag.ReportError(c.reporter, diag.PurStorageLayout, slot.Span,
			fmt.Sprintf("%s type `%s` of storage field `%s` contains references and cannot be stored", role, in.Label(elem), slot.Name)).
			WithHelp("use `str[N]` instead of `str`").
			Emit()
		return
	}
	if l.Size > c.limit {
		diag.ReportError(c.reporter, diag.PurStorageLayout, slot.Span,
			fmt.Sprintf("%s type `%s` of storage field `%s` takes %d bytes, more than the %d allowed per storage element",
				role, in.Label(elem), slot.Name, l.Size, c.limit)).Emit()
	}
}
