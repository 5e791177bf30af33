package token

var keywords = map[string]Kind{
	"contract":     KwContract,
	"script":       KwScript,
	"predicate":    KwPredicate,
	"library":      KwLibrary,
	"mod":          KwMod,
	"use":          KwUse,
	"pub":          KwPub,
	"fn":           KwFn,
	"struct":       KwStruct,
	"enum":         KwEnum,
	"trait":        KwTrait,
	"impl":         KwImpl,
	"for":          KwFor,
	"abi":          KwAbi,
	"storage":      KwStorage,
	"configurable": KwConfigurable,
	"const":        KwConst,
	"type":         KwType,
	"let":          KwLet,
	"mut":          KwMut,
	"ref":          KwRef,
	"if":           KwIf,
	"else":         KwElse,
	"while":        KwWhile,
	"match":        KwMatch,
	"return":       KwReturn,
	"break":        KwBreak,
	"continue":     KwContinue,
	"true":         KwTrue,
	"false":        KwFalse,
	"self":         KwSelf,
	"Self":         KwSelfType,
	"where":        KwWhere,
	"as":           KwAs,
	"crate":        KwCrate,
	"super":        KwSuper,
}

// LookupKeyword возвращает тип и bool если это ключевое слово.
// Ключевые слова регистрозависимые: `self` и `Self` различаются.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
