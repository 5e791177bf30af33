package lower

import (
	"fmt"

	"fortio.org/safecast"
	"golang.org/x/crypto/sha3"

	"swell/internal/hir"
	"swell/internal/ir"
	"swell/internal/source"
	"swell/internal/types"
)

// SlotKeyPrefix is hashed together with the slot path to derive storage
// keys.
const SlotKeyPrefix = "swell.storage."

// SlotKey returns keccak256(SlotKeyPrefix + path).
func SlotKey(path string) [32]byte {
	var key [32]byte
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write([]byte(SlotKeyPrefix + path))
	h.Sum(key[:0])
	return key
}

func toU32(n int) (uint32, error) { return safecast.Conv[uint32](n) }

func roundUp(n, align int) int {
	if align <= 1 {
		return n
	}
	return (n + align - 1) / align * align
}

func isCollection(in *types.Interner, t types.TypeID) bool {
	k := in.Kind(t)
	return k == types.KindStorageMap || k == types.KindStorageVec
}

// buildStorage lays out storage fields. Plain values are packed in
// declaration order into the contract storage image; collections live
// under their own key and take no room in the image.
func (l *lowerer) buildStorage() error {
	offset := 0
	for i, s := range l.prog.Storage {
		idx, err := toU32(i)
		if err != nil {
			return err
		}
		l.slots[s.Decl] = idx
		slot := ir.StorageSlot{Path: s.Name, Type: tref(s.Type), Key: SlotKey(s.Name)}
		if !isCollection(l.in, s.Type) {
			lay, err := l.layout.Of(s.Type)
			if err != nil {
				return fmt.Errorf("storage field %s: %w", s.Name, err)
			}
			offset = roundUp(offset, lay.Align)
			if slot.Offset, err = toU32(offset); err != nil {
				return err
			}
			offset += lay.Size
			if s.Value != nil {
				if slot.Init, err = l.encode(s.Value, s.Type); err != nil {
					return fmt.Errorf("storage field %s: %w", s.Name, err)
				}
			}
		}
		l.storage = append(l.storage, slot)
	}
	return nil
}

// buildConfigurables lays out the configurable data section.
func (l *lowerer) buildConfigurables() error {
	offset := 0
	for i, c := range l.prog.Configurables {
		idx, err := toU32(i)
		if err != nil {
			return err
		}
		l.configs[c.Decl] = idx
		lay, err := l.layout.Of(c.Type)
		if err != nil {
			return fmt.Errorf("configurable %s: %w", c.Name, err)
		}
		offset = roundUp(offset, lay.Align)
		out := ir.Configurable{Name: c.Name, Type: tref(c.Type)}
		if out.Offset, err = toU32(offset); err != nil {
			return err
		}
		offset += lay.Size
		if c.Value != nil {
			if out.Init, err = l.encode(c.Value, c.Type); err != nil {
				return fmt.Errorf("configurable %s: %w", c.Name, err)
			}
		}
		l.config = append(l.config, out)
	}
	return nil
}

func (lc *loweringContext) storagePlace(d hir.StorageData, sp source.Span) (uint32, []uint32) {
	idx, ok := lc.l.slots[d.Field]
	if !ok {
		lc.fail(sp, "unknown storage field `%s`", d.Name)
	}
	var path []uint32
	for _, p := range d.Path {
		path = append(path, lc.index(p, sp))
	}
	return idx, path
}

var storageOps = [...]ir.Op{
	hir.StorageRead:      ir.OpStorageRead,
	hir.StorageWrite:     ir.OpStorageWrite,
	hir.StorageMapGet:    ir.OpMapGet,
	hir.StorageMapInsert: ir.OpMapInsert,
	hir.StorageMapRemove: ir.OpMapRemove,
	hir.StorageVecPush:   ir.OpVecPush,
	hir.StorageVecPop:    ir.OpVecPop,
	hir.StorageVecGet:    ir.OpVecGet,
	hir.StorageVecLen:    ir.OpVecLen,
}

func (lc *loweringContext) storageOp(d hir.StorageOpData, ty types.TypeID, sp source.Span) ir.Value {
	place, ok := d.Place.Data.(hir.StorageData)
	if !ok || int(d.Op) >= len(storageOps) {
		lc.fail(sp, "malformed storage operation")
		return ir.NoValue
	}
	slot, path := lc.storagePlace(place, d.Place.Span)
	args := lc.operands(d.Args)
	op := storageOps[d.Op]
	if !op.HasResult() && len(d.Args) > 0 {
		// write, insert, push: тип операции = тип последнего аргумента
		ty = lc.subst(d.Args[len(d.Args)-1].Type)
	}
	return lc.b.Storage(op, tref(ty), slot, path, args, sp)
}

// encode serializes a constant value with the in-memory layout of t.
func (l *lowerer) encode(v *hir.Value, t types.TypeID) ([]byte, error) {
	lay, err := l.layout.Of(t)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, lay.Size)
	if err := l.write(buf, v, t); err != nil {
		return nil, err
	}
	return buf, nil
}

func (l *lowerer) write(buf []byte, v *hir.Value, ty types.TypeID) error {
	in := l.in
	t, _ := in.Lookup(ty)
	switch v.Kind {
	case hir.ValueUnit:
		return nil
	case hir.ValueInt:
		n := int(t.Width.Bytes())
		if t.Kind != types.KindUint || v.Int.Sign() < 0 || v.Int.BitLen() > n*8 || len(buf) < n {
			return fmt.Errorf("integer %s does not fit `%s`", v.Int, in.Label(ty))
		}
		v.Int.FillBytes(buf[:n])
		return nil
	case hir.ValueBool:
		if v.Bool {
			buf[0] = 1
		}
		return nil
	case hir.ValueB256:
		copy(buf, v.B256[:])
		return nil
	case hir.ValueString:
		if t.Kind != types.KindStrArray {
			return fmt.Errorf("string value of type `%s` has no fixed encoding", in.Label(ty))
		}
		copy(buf, v.Str)
		return nil
	case hir.ValueAggregate:
		return l.writeAggregate(buf, v, ty, &t)
	case hir.ValueVariant:
		lay, err := l.layout.Of(ty)
		if err != nil {
			return err
		}
		tag, err := safecast.Conv[uint64](v.Index)
		if err != nil {
			return err
		}
		for i := lay.TagSize - 1; i >= 0; i-- {
			buf[i] = byte(tag)
			tag >>= 8
		}
		if len(v.Elems) == 0 {
			return nil
		}
		payloads := in.VariantTypes(ty)
		if v.Index >= len(payloads) {
			return fmt.Errorf("variant %d out of range for `%s`", v.Index, in.Label(ty))
		}
		return l.write(buf[lay.PayloadOffset:], v.Elems[0], payloads[v.Index])
	}
	return fmt.Errorf("cannot encode value kind %d", v.Kind)
}

func (l *lowerer) writeAggregate(buf []byte, v *hir.Value, ty types.TypeID, t *types.Type) error {
	in := l.in
	switch t.Kind {
	case types.KindArray:
		elem, err := l.layout.Of(t.Elem)
		if err != nil {
			return err
		}
		stride := roundUp(elem.Size, elem.Align)
		for i, e := range v.Elems {
			if err := l.write(buf[i*stride:], e, t.Elem); err != nil {
				return err
			}
		}
		return nil
	case types.KindTuple, types.KindStruct:
		lay, err := l.layout.Of(ty)
		if err != nil {
			return err
		}
		fields := t.Args
		if t.Kind == types.KindStruct {
			fields = in.StructFields(ty)
		}
		for i, e := range v.Elems {
			if i >= len(fields) || i >= len(lay.FieldOffsets) {
				break
			}
			if err := l.write(buf[lay.FieldOffsets[i]:], e, fields[i]); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("aggregate value of type `%s`", in.Label(ty))
}
