package sema

import (
	"encoding/hex"
	"math/big"
	"strings"

	"fortio.org/safecast"

	"swell/internal/ast"
	"swell/internal/diag"
	"swell/internal/hir"
	"swell/internal/source"
	"swell/internal/token"
	"swell/internal/types"
)

// infer computes the type of an expression. expect only guides literals,
// placeholders and empty collections; callers coerce.
func (bc *bodyChecker) infer(id ast.ExprID, expect types.TypeID) *hir.Expr {
	if !id.IsValid() {
		return bc.newExpr(hir.ExprTuple, bc.tc.builtins.Unit, source.Span{}, hir.ListData{})
	}
	b := bc.b
	node := b.Exprs.Get(id)
	sp := node.Span
	switch node.Kind {
	case ast.ExprLit:
		lit, _ := b.Exprs.Lit(id)
		return bc.literal(sp, lit, expect)
	case ast.ExprPath:
		p, _ := b.Exprs.Path(id)
		return bc.pathExpr(&p.Path, sp, expect)
	case ast.ExprCall:
		return bc.call(id, expect)
	case ast.ExprMethodCall:
		return bc.methodCall(id, expect)
	case ast.ExprField:
		f, _ := b.Exprs.Field(id)
		return bc.field(f, sp)
	case ast.ExprTupleIndex:
		ti, _ := b.Exprs.TupleIndex(id)
		return bc.tupleIndex(ti, sp)
	case ast.ExprIndex:
		ix, _ := b.Exprs.Index(id)
		return bc.index(ix, sp)
	case ast.ExprUnary:
		u, _ := b.Exprs.Unary(id)
		return bc.unary(u, sp, expect)
	case ast.ExprBinary:
		bin, _ := b.Exprs.Binary(id)
		return bc.binary(bin, sp, expect)
	case ast.ExprAssign:
		as, _ := b.Exprs.Assign(id)
		return bc.assign(as, sp)
	case ast.ExprStruct:
		st, _ := b.Exprs.Struct(id)
		return bc.structLit(st, sp, expect)
	case ast.ExprTuple:
		list, _ := b.Exprs.List(id)
		return bc.tuple(list.Elems, sp, expect)
	case ast.ExprArray:
		list, _ := b.Exprs.List(id)
		return bc.array(list.Elems, sp, expect)
	case ast.ExprArrayRepeat:
		rep, _ := b.Exprs.ArrayRepeat(id)
		return bc.repeat(rep, sp, expect)
	case ast.ExprParen:
		p, _ := b.Exprs.Paren(id)
		return bc.infer(p.Inner, expect)
	case ast.ExprBlock:
		return bc.block(id, expect)
	case ast.ExprIf:
		d, _ := b.Exprs.If(id)
		return bc.ifExpr(d, sp, expect)
	case ast.ExprMatch:
		d, _ := b.Exprs.Match(id)
		return bc.match(d, sp, expect)
	case ast.ExprWhile:
		d, _ := b.Exprs.While(id)
		cond := bc.check(d.Cond, bc.tc.builtins.Bool)
		bc.loops++
		body := bc.check(d.Body, bc.tc.builtins.Unit)
		bc.loops--
		return bc.newExpr(hir.ExprWhile, bc.tc.builtins.Unit, sp, hir.WhileData{Cond: cond, Body: body})
	case ast.ExprBreak, ast.ExprContinue:
		if bc.loops == 0 {
			what := "break"
			if node.Kind == ast.ExprContinue {
				what = "continue"
			}
			bc.tc.report(diag.TypBreakOutsideLoop, sp, "`%s` outside of a loop", what)
		}
		kind := hir.ExprBreak
		if node.Kind == ast.ExprContinue {
			kind = hir.ExprContinue
		}
		return bc.newExpr(kind, bc.tc.builtins.Never, sp, nil)
	case ast.ExprReturn:
		r, _ := b.Exprs.Return(id)
		return bc.returnExpr(r, sp)
	case ast.ExprStorage:
		bc.tc.report(diag.TypNoField, sp, "`storage` must be followed by a field access")
		return bc.errExpr(sp)
	}
	return bc.errExpr(sp)
}

var suffixWidths = map[string]types.Width{
	"u8": types.Width8, "u16": types.Width16, "u32": types.Width32, "u64": types.Width64, "u256": types.Width256,
}

func (bc *bodyChecker) literal(sp source.Span, lit *ast.ExprLitData, expect types.TypeID) *hir.Expr {
	tc := bc.tc
	switch lit.Kind {
	case ast.LitBool:
		return bc.newExpr(hir.ExprLiteral, tc.builtins.Bool, sp, hir.LiteralData{Kind: hir.LiteralBool, Bool: lit.Value == "true"})
	case ast.LitString:
		ty := tc.builtins.Str
		if _, t := bc.resolved(expect); t.Kind == types.KindStrArray && int(t.Count) == len(lit.Value) {
			ty = bc.sub.shallow(expect)
		}
		return bc.newExpr(hir.ExprLiteral, ty, sp, hir.LiteralData{Kind: hir.LiteralString, String: lit.Value})
	}
	if lit.Suffix == "" && len(lit.Value) == 66 && strings.HasPrefix(lit.Value, "0x") {
		var word [32]byte
		if _, err := hex.Decode(word[:], []byte(lit.Value[2:])); err != nil {
			tc.report(diag.TypLiteralOverflow, sp, "invalid b256 literal `%s`", lit.Raw)
			return bc.errExpr(sp)
		}
		return bc.newExpr(hir.ExprLiteral, tc.builtins.B256, sp, hir.LiteralData{Kind: hir.LiteralB256, B256: word})
	}
	v, ok := parseIntLit(lit.Value)
	if !ok {
		tc.report(diag.TypLiteralOverflow, sp, "invalid integer literal `%s`", lit.Raw)
		return bc.errExpr(sp)
	}
	var ty types.TypeID
	if w, ok := suffixWidths[lit.Suffix]; ok {
		ty = tc.types.Uint(w)
	} else {
		ty = bc.sub.freshInt(sp)
	}
	e := bc.newExpr(hir.ExprLiteral, ty, sp, hir.LiteralData{Kind: hir.LiteralInt, Int: v})
	bc.lits = append(bc.lits, pendingLit{e: e, value: v, raw: lit.Raw})
	return e
}

// parseIntLit reads a literal spelled with an optional 0x, 0o or 0b prefix.
// Leading zeros of decimal literals are not an octal marker.
func parseIntLit(v string) (*big.Int, bool) {
	base := 10
	if len(v) > 2 && v[0] == '0' {
		switch v[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 10 {
			v = v[2:]
		}
	}
	return new(big.Int).SetString(v, base)
}

func (bc *bodyChecker) isNumeric(id types.TypeID) bool {
	r, t := bc.resolved(id)
	return t.Kind == types.KindUint || bc.sub.isIntVar(r) || t.Kind == types.KindError
}

func (bc *bodyChecker) isBool(id types.TypeID) bool {
	_, t := bc.resolved(id)
	return t.Kind == types.KindBool || t.Kind == types.KindError
}

func (bc *bodyChecker) unary(u *ast.ExprUnaryData, sp source.Span, expect types.TypeID) *hir.Expr {
	tc := bc.tc
	switch u.Op {
	case ast.UnaryNeg:
		operand := bc.infer(u.Operand, expect)
		tc.errorf(diag.TypBadOperand, sp, "cannot apply unary operator `-` to type `%s`", bc.label(operand.Type)).
			WithHelp("unsigned values cannot be negated").
			Emit()
		return bc.newExpr(hir.ExprUnary, tc.builtins.Error, sp, hir.UnaryData{Op: hir.UnaryNeg, Operand: operand})
	case ast.UnaryNot:
		operand := bc.infer(u.Operand, expect)
		if !bc.isBool(operand.Type) && !bc.isNumeric(operand.Type) {
			tc.report(diag.TypBadOperand, sp, "cannot apply unary operator `!` to type `%s`", bc.label(operand.Type))
			return bc.newExpr(hir.ExprUnary, tc.builtins.Error, sp, hir.UnaryData{Op: hir.UnaryNot, Operand: operand})
		}
		return bc.newExpr(hir.ExprUnary, operand.Type, sp, hir.UnaryData{Op: hir.UnaryNot, Operand: operand})
	case ast.UnaryRef, ast.UnaryRefMut:
		inner := types.NoTypeID
		if _, t := bc.resolved(expect); t.Kind == types.KindRef {
			inner = t.Elem
		}
		operand := bc.infer(u.Operand, inner)
		mut := u.Op == ast.UnaryRefMut
		op := hir.UnaryRef
		if mut {
			op = hir.UnaryRefMut
			bc.checkPlace(operand, "borrow as mutable")
		}
		return bc.newExpr(hir.ExprUnary, tc.types.Ref(operand.Type, mut), sp, hir.UnaryData{Op: op, Operand: operand})
	case ast.UnaryDeref:
		operand := bc.infer(u.Operand, types.NoTypeID)
		_, t := bc.resolved(operand.Type)
		switch t.Kind {
		case types.KindRef:
			return bc.newExpr(hir.ExprUnary, t.Elem, sp, hir.UnaryData{Op: hir.UnaryDeref, Operand: operand})
		case types.KindError:
		case types.KindVar:
			tc.report(diag.TypUnresolvedGeneric, sp, "type annotations needed: the type of the dereferenced value must be known")
		default:
			tc.report(diag.TypBadOperand, sp, "type `%s` cannot be dereferenced", bc.label(operand.Type))
		}
		return bc.newExpr(hir.ExprUnary, tc.builtins.Error, sp, hir.UnaryData{Op: hir.UnaryDeref, Operand: operand})
	}
	return bc.errExpr(sp)
}

type opClass uint8

const (
	opArith opClass = iota
	opBits
	opShift
	opEq
	opOrd
	opLogic
)

func classify(op token.Kind) opClass {
	switch op {
	case token.Amp, token.Pipe, token.Caret:
		return opBits
	case token.Shl, token.Shr:
		return opShift
	case token.EqEq, token.BangEq:
		return opEq
	case token.Lt, token.LtEq, token.Gt, token.GtEq:
		return opOrd
	case token.AndAnd, token.OrOr:
		return opLogic
	}
	return opArith
}

func (bc *bodyChecker) binary(bin *ast.ExprBinaryData, sp source.Span, expect types.TypeID) *hir.Expr {
	tc := bc.tc
	class := classify(bin.Op)
	var left, right *hir.Expr
	ty := tc.builtins.Bool
	switch class {
	case opLogic:
		left = bc.check(bin.Left, tc.builtins.Bool)
		right = bc.check(bin.Right, tc.builtins.Bool)
	case opEq, opOrd:
		left = bc.infer(bin.Left, types.NoTypeID)
		right = bc.check(bin.Right, left.Type)
		if class == opOrd && !bc.isNumeric(left.Type) {
			bc.badOperands(bin.Op, sp, left.Type)
		}
		if class == opEq {
			if _, t := bc.resolved(left.Type); t.Kind == types.KindStorageMap || t.Kind == types.KindStorageVec {
				bc.badOperands(bin.Op, sp, left.Type)
			}
		}
	case opShift:
		left = bc.infer(bin.Left, expect)
		right = bc.infer(bin.Right, types.NoTypeID)
		if !bc.isNumeric(left.Type) {
			bc.badOperands(bin.Op, sp, left.Type)
		} else if !bc.isNumeric(right.Type) {
			bc.badOperands(bin.Op, sp, right.Type)
		}
		ty = left.Type
	default:
		hint := types.NoTypeID
		if bc.isNumeric(expect) || (class == opBits && bc.isBool(expect)) {
			hint = expect
		}
		left = bc.infer(bin.Left, hint)
		right = bc.check(bin.Right, left.Type)
		ok := bc.isNumeric(left.Type) || (class == opBits && bc.isBool(left.Type))
		if !ok {
			bc.badOperands(bin.Op, sp, left.Type)
		}
		ty = left.Type
	}
	return bc.newExpr(hir.ExprBinary, ty, sp, hir.BinaryData{Op: bin.Op, Left: left, Right: right})
}

func (bc *bodyChecker) badOperands(op token.Kind, sp source.Span, ty types.TypeID) {
	if bc.in.HasErrors(bc.sub.resolve(ty)) {
		return
	}
	bc.tc.report(diag.TypBadOperand, sp, "binary operator `%s` cannot be applied to type `%s`", op, bc.label(ty))
}

func (bc *bodyChecker) assign(as *ast.ExprAssignData, sp source.Span) *hir.Expr {
	tc := bc.tc
	place := bc.infer(as.Place, types.NoTypeID)
	op := token.Assign
	if as.Op.IsCompoundAssign() {
		op = as.Op.CompoundBase()
		var value *hir.Expr
		switch classify(op) {
		case opShift:
			value = bc.infer(as.Value, types.NoTypeID)
			if !bc.isNumeric(place.Type) {
				bc.badOperands(as.Op, sp, place.Type)
			} else if !bc.isNumeric(value.Type) {
				bc.badOperands(as.Op, sp, value.Type)
			}
		default:
			value = bc.check(as.Value, place.Type)
			if !bc.isNumeric(place.Type) && !(classify(op) == opBits && bc.isBool(place.Type)) {
				bc.badOperands(as.Op, sp, place.Type)
			}
		}
		bc.checkPlace(place, "assign")
		return bc.newExpr(hir.ExprAssign, tc.builtins.Unit, sp, hir.AssignData{Op: op, Place: place, Value: value})
	}
	value := bc.check(as.Value, place.Type)
	bc.checkPlace(place, "assign")
	if place.Kind == hir.ExprStorage {
		if _, t := bc.resolved(place.Type); t.Kind == types.KindStorageMap || t.Kind == types.KindStorageVec {
			tc.report(diag.TypImmutableAssign, sp, "storage collection `%s` cannot be reassigned", place.Data.(hir.StorageData).Name)
		}
	}
	return bc.newExpr(hir.ExprAssign, tc.builtins.Unit, sp, hir.AssignData{Op: op, Place: place, Value: value})
}

// checkPlace requires e to be a mutable place.
func (bc *bodyChecker) checkPlace(e *hir.Expr, what string) bool {
	tc := bc.tc
	switch d := e.Data.(type) {
	case hir.LocalData:
		info, ok := bc.locals[d.Local]
		if !ok || info.mut {
			return true
		}
		if l := bc.env.res.Local(d.Local); l != nil && l.Mut {
			return true
		}
		tc.errorf(diag.TypImmutableAssign, e.Span, "cannot %s immutable variable `%s`", what, d.Name).
			WithHelp("consider making it mutable: `mut " + d.Name + "`").
			Emit()
		return false
	case hir.FieldData:
		return bc.checkPlace(d.Base, what)
	case hir.IndexData:
		return bc.checkPlace(d.Base, what)
	case hir.UnaryData:
		if d.Op == hir.UnaryDeref {
			if _, t := bc.resolved(d.Operand.Type); t.Kind == types.KindRef && !t.Mutable {
				tc.report(diag.TypImmutableAssign, e.Span, "cannot %s through a `&` reference", what)
				return false
			}
			return true
		}
	case hir.StorageData:
		return true
	}
	if e.Kind == hir.ExprError {
		return true
	}
	tc.report(diag.TypImmutableAssign, e.Span, "cannot %s this expression: it is not a place", what)
	return false
}

// autoDeref strips references from a field or index base.
func (bc *bodyChecker) autoDeref(e *hir.Expr) (*hir.Expr, types.Type) {
	for {
		_, t := bc.resolved(e.Type)
		if t.Kind != types.KindRef {
			return e, t
		}
		e = bc.newExpr(hir.ExprUnary, t.Elem, e.Span, hir.UnaryData{Op: hir.UnaryDeref, Operand: e})
	}
}

func (bc *bodyChecker) field(f *ast.ExprFieldData, sp source.Span) *hir.Expr {
	tc := bc.tc
	name := bc.b.Name(f.Name)
	if bc.b.Exprs.Get(f.Base).Kind == ast.ExprStorage {
		return bc.storageField(name, sp)
	}
	base := bc.infer(f.Base, types.NoTypeID)
	if base.Kind == hir.ExprStorage {
		return bc.storagePath(base, name, -1, sp)
	}
	base, t := bc.autoDeref(base)
	switch t.Kind {
	case types.KindStruct:
		info, _ := tc.types.StructInfo(t.Decl)
		idx := -1
		if info != nil {
			idx = info.FieldIndex(name)
		}
		if idx < 0 {
			tc.report(diag.TypNoField, f.NameSpan, "no field `%s` on type `%s`", name, bc.label(base.Type))
			return bc.errExpr(sp)
		}
		fields := tc.types.StructFields(bc.sub.shallow(base.Type))
		return bc.newExpr(hir.ExprField, fields[idx], sp, hir.FieldData{Base: base, Index: idx, Name: name})
	case types.KindError:
		return bc.errExpr(sp)
	case types.KindVar:
		tc.report(diag.TypUnresolvedGeneric, sp, "type annotations needed: the type of this value must be known to access field `%s`", name)
		return bc.errExpr(sp)
	}
	tc.report(diag.TypNoField, f.NameSpan, "type `%s` has no field `%s`", bc.label(base.Type), name)
	return bc.errExpr(sp)
}

func (bc *bodyChecker) tupleIndex(ti *ast.ExprTupleIndexData, sp source.Span) *hir.Expr {
	tc := bc.tc
	base := bc.infer(ti.Base, types.NoTypeID)
	idx := int(ti.Index)
	if base.Kind == hir.ExprStorage {
		return bc.storagePath(base, "", idx, sp)
	}
	base, t := bc.autoDeref(base)
	switch t.Kind {
	case types.KindTuple:
		if idx < len(t.Args) {
			return bc.newExpr(hir.ExprField, t.Args[idx], sp, hir.FieldData{Base: base, Index: idx})
		}
	case types.KindError:
		return bc.errExpr(sp)
	case types.KindVar:
		tc.report(diag.TypUnresolvedGeneric, sp, "type annotations needed: the tuple type must be known here")
		return bc.errExpr(sp)
	}
	tc.report(diag.TypNoField, sp, "no field `%d` on type `%s`", idx, bc.label(base.Type))
	return bc.errExpr(sp)
}

func (bc *bodyChecker) index(ix *ast.ExprIndexData, sp source.Span) *hir.Expr {
	tc := bc.tc
	base := bc.infer(ix.Base, types.NoTypeID)
	idx := bc.check(ix.Index, tc.builtins.U64)
	base, t := bc.autoDeref(base)
	switch t.Kind {
	case types.KindArray:
		return bc.newExpr(hir.ExprIndex, t.Elem, sp, hir.IndexData{Base: base, Index: idx})
	case types.KindError:
		return bc.errExpr(sp)
	}
	tc.report(diag.TypNotIndexable, sp, "cannot index into a value of type `%s`", bc.label(base.Type))
	return bc.errExpr(sp)
}

func (bc *bodyChecker) tuple(elems []ast.ExprID, sp source.Span, expect types.TypeID) *hir.Expr {
	_, et := bc.resolved(expect)
	out := make([]*hir.Expr, len(elems))
	tys := make([]types.TypeID, len(elems))
	for i, el := range elems {
		hint := types.NoTypeID
		if et.Kind == types.KindTuple && len(et.Args) == len(elems) {
			hint = et.Args[i]
		}
		out[i] = bc.infer(el, hint)
		tys[i] = out[i].Type
	}
	return bc.newExpr(hir.ExprTuple, bc.in.Tuple(tys...), sp, hir.ListData{Elems: out})
}

func (bc *bodyChecker) arrayHint(expect types.TypeID) types.TypeID {
	if _, t := bc.resolved(expect); t.Kind == types.KindArray {
		return t.Elem
	}
	return types.NoTypeID
}

func (bc *bodyChecker) array(elems []ast.ExprID, sp source.Span, expect types.TypeID) *hir.Expr {
	elem := bc.arrayHint(expect)
	out := make([]*hir.Expr, len(elems))
	for i, el := range elems {
		if i == 0 {
			out[i] = bc.infer(el, elem)
			if elem == types.NoTypeID {
				elem = out[i].Type
			} else {
				bc.coerce(out[i], elem)
			}
			continue
		}
		out[i] = bc.check(el, elem)
	}
	if elem == types.NoTypeID {
		elem = bc.sub.fresh(sp)
	}
	n, err := safecast.Conv[uint32](len(out))
	if err != nil {
		bc.tc.report(diag.TypConstEval, sp, "array literal is too long")
		return bc.errExpr(sp)
	}
	return bc.newExpr(hir.ExprArray, bc.in.Array(elem, n), sp, hir.ListData{Elems: out})
}

func (bc *bodyChecker) repeat(rep *ast.ExprArrayRepeatData, sp source.Span, expect types.TypeID) *hir.Expr {
	hint := bc.arrayHint(expect)
	value := bc.infer(rep.Value, hint)
	if hint != types.NoTypeID {
		bc.coerce(value, hint)
	}
	n := bc.tc.arrayLen(bc.env, rep.Count)
	return bc.newExpr(hir.ExprRepeat, bc.in.Array(value.Type, n), sp, hir.RepeatData{Value: value, Count: n})
}

func (bc *bodyChecker) ifExpr(d *ast.ExprIfData, sp source.Span, expect types.TypeID) *hir.Expr {
	tc := bc.tc
	cond := bc.check(d.Cond, tc.builtins.Bool)
	if !d.Else.IsValid() {
		then := bc.check(d.Then, tc.builtins.Unit)
		return bc.newExpr(hir.ExprIf, tc.builtins.Unit, sp, hir.IfData{Cond: cond, Then: then})
	}
	then := bc.infer(d.Then, expect)
	els := bc.infer(d.Else, expect)
	ty := bc.join(sp, expect, then, els)
	return bc.newExpr(hir.ExprIf, ty, sp, hir.IfData{Cond: cond, Then: then, Else: els})
}

// join computes the type of branching expressions: diverging branches are
// skipped, the rest must agree.
func (bc *bodyChecker) join(sp source.Span, expect types.TypeID, branches ...*hir.Expr) types.TypeID {
	ty := expect
	for _, br := range branches {
		if bc.isNever(br.Type) {
			continue
		}
		if ty == types.NoTypeID {
			ty = br.Type
			continue
		}
		bc.coerce(br, ty)
	}
	if ty == types.NoTypeID {
		if len(branches) == 0 {
			return bc.tc.builtins.Never
		}
		allNever := true
		for _, br := range branches {
			allNever = allNever && bc.isNever(br.Type)
		}
		if allNever {
			return bc.tc.builtins.Never
		}
		return bc.sub.fresh(sp)
	}
	return ty
}

func (bc *bodyChecker) match(d *ast.ExprMatchData, sp source.Span, expect types.TypeID) *hir.Expr {
	scrut := bc.infer(d.Scrutinee, types.NoTypeID)
	pm := pendingMatch{span: sp, ty: scrut.Type}
	arms := make([]hir.Arm, 0, len(d.Arms))
	bodies := make([]*hir.Expr, 0, len(d.Arms))
	for _, arm := range d.Arms {
		pat := bc.pattern(arm.Pat, scrut.Type)
		body := bc.infer(arm.Body, expect)
		arms = append(arms, hir.Arm{Pat: pat, Body: body, Span: arm.Span})
		bodies = append(bodies, body)
		pm.arms = append(pm.arms, pat)
		pm.spans = append(pm.spans, arm.Span)
	}
	bc.matches = append(bc.matches, pm)
	ty := bc.join(sp, expect, bodies...)
	return bc.newExpr(hir.ExprMatch, ty, sp, hir.MatchData{Scrutinee: scrut, Arms: arms})
}

func (bc *bodyChecker) returnExpr(r *ast.ExprReturnData, sp source.Span) *hir.Expr {
	tc := bc.tc
	if bc.fn == nil {
		tc.report(diag.TypMismatch, sp, "`return` is only allowed inside function bodies")
		return bc.newExpr(hir.ExprReturn, tc.builtins.Never, sp, hir.ReturnData{})
	}
	var value *hir.Expr
	if r.Value.IsValid() {
		value = bc.check(r.Value, bc.ret)
	} else if !bc.sub.unify(tc.builtins.Unit, bc.ret) {
		bc.mismatch(sp, bc.ret, tc.builtins.Unit)
	}
	return bc.newExpr(hir.ExprReturn, tc.builtins.Never, sp, hir.ReturnData{Value: value})
}
