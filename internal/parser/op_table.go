package parser

import "swell/internal/token"

// Приоритеты бинарных операторов (чем больше, тем сильнее связывает).
const (
	precLowest         = iota
	precLogicalOr      // ||
	precLogicalAnd     // &&
	precComparison     // == != < <= > >=
	precBitOr          // |
	precBitXor         // ^
	precBitAnd         // &
	precShift          // << >>
	precAdditive       // + -
	precMultiplicative // * / %
)

func binaryPrec(k token.Kind) int {
	switch k {
	case token.OrOr:
		return precLogicalOr
	case token.AndAnd:
		return precLogicalAnd
	case token.EqEq, token.BangEq, token.Lt, token.LtEq, token.Gt, token.GtEq:
		return precComparison
	case token.Pipe:
		return precBitOr
	case token.Caret:
		return precBitXor
	case token.Amp:
		return precBitAnd
	case token.Shl, token.Shr:
		return precShift
	case token.Plus, token.Minus:
		return precAdditive
	case token.Star, token.Slash, token.Percent:
		return precMultiplicative
	}
	return precLowest
}

// isAssignOp: `=` и все составные присваивания.
func isAssignOp(k token.Kind) bool {
	return k == token.Assign || k.IsCompoundAssign()
}
