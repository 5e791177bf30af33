package sema

import (
	"strconv"

	"swell/internal/ast"
	"swell/internal/diag"
	"swell/internal/hir"
	"swell/internal/source"
	"swell/internal/types"
)

// storageField resolves `storage.name`.
func (bc *bodyChecker) storageField(name string, sp source.Span) *hir.Expr {
	tc := bc.tc
	for _, id := range tc.table.Storage {
		if tc.decl(id).Name != name {
			continue
		}
		slot := tc.prog.StorageField(id)
		if slot == nil {
			return bc.errExpr(sp)
		}
		return bc.newExpr(hir.ExprStorage, slot.Type, sp, hir.StorageData{Field: id, Name: name})
	}
	if len(tc.table.Storage) == 0 {
		tc.report(diag.TypNoField, sp, "no storage is declared in this package")
	} else {
		tc.report(diag.TypNoField, sp, "no storage field named `%s`", name)
	}
	return bc.errExpr(sp)
}

// storagePath extends a storage place by a struct field (idx < 0) or a tuple
// element.
func (bc *bodyChecker) storagePath(base *hir.Expr, name string, idx int, sp source.Span) *hir.Expr {
	tc := bc.tc
	d := base.Data.(hir.StorageData)
	_, t := bc.resolved(base.Type)
	var ty types.TypeID
	switch t.Kind {
	case types.KindStruct:
		info, _ := tc.types.StructInfo(t.Decl)
		if info != nil && idx < 0 {
			idx = info.FieldIndex(name)
		} else {
			idx = -1
		}
		if idx < 0 {
			tc.report(diag.TypNoField, sp, "no field `%s` on type `%s`", name, bc.label(base.Type))
			return bc.errExpr(sp)
		}
		ty = tc.types.StructFields(base.Type)[idx]
	case types.KindTuple:
		if idx < 0 || idx >= len(t.Args) {
			tc.report(diag.TypNoField, sp, "no field `%s` on type `%s`", name, bc.label(base.Type))
			return bc.errExpr(sp)
		}
		ty = t.Args[idx]
		name = strconv.Itoa(idx)
	case types.KindError:
		return bc.errExpr(sp)
	default:
		if idx >= 0 {
			name = strconv.Itoa(idx)
		}
		tc.report(diag.TypNoField, sp, "no field `%s` on storage type `%s`", name, bc.label(base.Type))
		return bc.errExpr(sp)
	}
	out := hir.StorageData{
		Field: d.Field,
		Name:  d.Name,
		Path:  append(append([]int(nil), d.Path...), idx),
		Names: append(append([]string(nil), d.Names...), name),
	}
	return bc.newExpr(hir.ExprStorage, ty, sp, out)
}

// storageOp checks a primitive on a storage place: read and write on plain
// slots, get, insert and remove on maps, push, pop, get and len on vectors.
func (bc *bodyChecker) storageOp(place *hir.Expr, name string, mc *ast.ExprMethodCallData, sp source.Span) *hir.Expr {
	tc := bc.tc
	_, t := bc.resolved(place.Type)
	unit, u64 := tc.builtins.Unit, tc.builtins.U64
	var (
		op     hir.StorageOp
		params []types.TypeID
		ret    types.TypeID
		ok     = true
	)
	switch t.Kind {
	case types.KindStorageMap:
		k, v := t.Args[0], t.Args[1]
		switch name {
		case "get":
			op, params, ret = hir.StorageMapGet, []types.TypeID{k}, v
		case "insert":
			op, params, ret = hir.StorageMapInsert, []types.TypeID{k, v}, unit
		case "remove":
			op, params, ret = hir.StorageMapRemove, []types.TypeID{k}, tc.builtins.Bool
		default:
			ok = false
		}
	case types.KindStorageVec:
		elem := t.Elem
		switch name {
		case "push":
			op, params, ret = hir.StorageVecPush, []types.TypeID{elem}, unit
		case "pop":
			op, ret = hir.StorageVecPop, elem
		case "get":
			op, params, ret = hir.StorageVecGet, []types.TypeID{u64}, elem
		case "len":
			op, ret = hir.StorageVecLen, u64
		default:
			ok = false
		}
	case types.KindError:
		bc.inferArgs(mc.Args)
		return bc.errExpr(sp)
	default:
		switch name {
		case "read":
			op, ret = hir.StorageRead, place.Type
		case "write":
			op, params, ret = hir.StorageWrite, []types.TypeID{place.Type}, unit
		default:
			ok = false
		}
	}
	if !ok {
		bc.inferArgs(mc.Args)
		tc.report(diag.TypNoMethod, mc.NameSpan, "no storage method named `%s` for `%s`", name, bc.label(place.Type))
		return bc.errExpr(sp)
	}
	if len(mc.Generics) > 0 {
		tc.report(diag.TypGenericArgCount, mc.NameSpan, "storage method `%s` takes no generic arguments", name)
	}
	if len(mc.Args) != len(params) {
		tc.report(diag.TypArgCount, sp, "storage method `%s` takes %d %s but %d %s supplied",
			name, len(params), plural(len(params), "argument", "arguments"), len(mc.Args), plural(len(mc.Args), "was", "were"))
	}
	args := make([]*hir.Expr, len(mc.Args))
	for i, a := range mc.Args {
		if i < len(params) {
			args[i] = bc.check(a, params[i])
		} else {
			args[i] = bc.infer(a, types.NoTypeID)
		}
	}
	return bc.newExpr(hir.ExprStorageOp, ret, sp, hir.StorageOpData{Op: op, Place: place, Args: args})
}
