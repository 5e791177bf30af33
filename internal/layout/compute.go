package layout

import (
	"fortio.org/safecast"

	"swell/internal/types"
)

func zeroLayout() Layout { return Layout{Size: 0, Align: 1} }

func (e *Engine) computeLayout(id types.TypeID, state *layoutState) (Layout, *LayoutError) {
	tt, ok := e.Types.Lookup(id)
	if !ok {
		return zeroLayout(), &LayoutError{Kind: LayoutErrUnsized, Type: id, Label: "<unknown>"}
	}

	switch tt.Kind {
	case types.KindUnit, types.KindNever, types.KindContract:
		return zeroLayout(), nil

	// Storage collections live in storage only; in memory they are a marker.
	case types.KindStorageMap, types.KindStorageVec:
		return zeroLayout(), nil

	case types.KindBool:
		return scalarLayout(1), nil

	case types.KindUint:
		n := int(tt.Width.Bytes())
		if n > e.Target.word() {
			// u256 is four words aligned to one
			return Layout{Size: n, Align: e.Target.word()}, nil
		}
		return scalarLayout(n), nil

	case types.KindB256:
		return Layout{Size: 32, Align: e.Target.word()}, nil

	case types.KindStr:
		// указатель + длина
		w := e.Target.word()
		return Layout{Size: 2 * w, Align: w, HasRefs: true}, nil

	case types.KindStrArray:
		n, err := safecast.Conv[int](tt.Count)
		if err != nil {
			return zeroLayout(), &LayoutError{Kind: LayoutErrLengthConversion, Type: id, Label: e.Types.Label(id), Err: err}
		}
		return Layout{Size: n, Align: 1}, nil

	case types.KindRef:
		w := e.Target.word()
		return Layout{Size: w, Align: w, HasRefs: true}, nil

	case types.KindArray:
		return e.arrayLayout(id, tt.Elem, tt.Count, state)

	case types.KindTuple:
		return e.sequential(tt.Args, state)

	case types.KindStruct:
		return e.sequential(e.Types.StructFields(id), state)

	case types.KindEnum:
		return e.enumLayout(e.Types.VariantTypes(id), state)
	}
	return zeroLayout(), &LayoutError{Kind: LayoutErrUnsized, Type: id, Label: e.Types.Label(id)}
}

func scalarLayout(size int) Layout {
	if size <= 0 {
		return zeroLayout()
	}
	return Layout{Size: size, Align: size}
}

func roundUp(n, align int) int {
	if align <= 1 {
		return n
	}
	r := n % align
	if r == 0 {
		return n
	}
	return n + (align - r)
}

func (e *Engine) arrayLayout(id, elem types.TypeID, length uint32, state *layoutState) (Layout, *LayoutError) {
	el, err := e.layoutOf(elem, state)
	if err != nil {
		return zeroLayout(), err
	}
	n, cerr := safecast.Conv[int](length)
	if cerr != nil {
		return zeroLayout(), &LayoutError{Kind: LayoutErrLengthConversion, Type: id, Label: e.Types.Label(id), Err: cerr}
	}
	stride := roundUp(el.Size, max(el.Align, 1))
	return Layout{
		Size:    stride * n,
		Align:   max(el.Align, 1),
		HasRefs: el.HasRefs && n > 0,
	}, nil
}

// sequential lays out fields in declaration order with natural padding.
func (e *Engine) sequential(fields []types.TypeID, state *layoutState) (Layout, *LayoutError) {
	if len(fields) == 0 {
		return zeroLayout(), nil
	}
	offsets := make([]int, len(fields))
	size, align := 0, 1
	refs := false
	for i, f := range fields {
		fl, err := e.layoutOf(f, state)
		if err != nil {
			return zeroLayout(), err
		}
		a := max(fl.Align, 1)
		size = roundUp(size, a)
		offsets[i] = size
		size += fl.Size
		align = max(align, a)
		refs = refs || fl.HasRefs
	}
	return Layout{
		Size:         roundUp(size, align),
		Align:        align,
		HasRefs:      refs,
		FieldOffsets: offsets,
	}, nil
}

// enumLayout is a one-word tag followed by the largest payload.
func (e *Engine) enumLayout(payloads []types.TypeID, state *layoutState) (Layout, *LayoutError) {
	w := e.Target.word()
	maxPayload, payloadAlign := 0, 1
	refs := false
	for _, p := range payloads {
		pl, err := e.layoutOf(p, state)
		if err != nil {
			return zeroLayout(), err
		}
		maxPayload = max(maxPayload, pl.Size)
		payloadAlign = max(payloadAlign, pl.Align)
		refs = refs || pl.HasRefs
	}
	payloadOffset := roundUp(w, payloadAlign)
	align := max(w, payloadAlign)
	return Layout{
		Size:          roundUp(payloadOffset+maxPayload, align),
		Align:         align,
		HasRefs:       refs,
		TagSize:       w,
		PayloadOffset: payloadOffset,
	}, nil
}
