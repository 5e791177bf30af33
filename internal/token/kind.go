package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid marks malformed input; the lexer reports it and moves on.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Ident represents an identifier token.
	Ident
	KwContract     // contract
	KwScript       // script
	KwPredicate    // predicate
	KwLibrary      // library
	KwMod          // mod
	KwUse          // use
	KwPub          // pub
	KwFn           // fn
	KwStruct       // struct
	KwEnum         // enum
	KwTrait        // trait
	KwImpl         // impl
	KwFor          // for
	KwAbi          // abi
	KwStorage      // storage
	KwConfigurable // configurable
	KwConst        // const
	KwType         // type
	KwLet          // let
	KwMut          // mut
	KwRef          // ref
	KwIf           // if
	KwElse         // else
	KwWhile        // while
	KwMatch        // match
	KwReturn       // return
	KwBreak        // break
	KwContinue     // continue
	KwTrue         // true
	KwFalse        // false
	KwSelf         // self
	KwSelfType     // Self
	KwWhere        // where
	KwAs           // as
	KwCrate        // crate
	KwSuper        // super

	// IntLit is an integer literal, optionally with a width suffix.
	IntLit
	// StringLit is a double-quoted string literal.
	StringLit

	Plus          // +
	Minus         // -
	Star          // *
	Slash         // /
	Percent       // %
	Assign        // =
	PlusAssign    // +=
	MinusAssign   // -=
	StarAssign    // *=
	SlashAssign   // /=
	PercentAssign // %=
	AmpAssign     // &=
	PipeAssign    // |=
	CaretAssign   // ^=
	ShlAssign     // <<=
	ShrAssign     // >>=
	EqEq          // ==
	Bang          // !
	BangEq        // !=
	Lt            // <
	LtEq          // <=
	Gt            // >
	GtEq          // >=
	Shl           // <<
	Shr           // >>
	Amp           // &
	Pipe          // |
	Caret         // ^
	AndAnd        // &&
	OrOr          // ||
	Question      // ?
	Colon         // :
	ColonColon    // ::
	Semicolon     // ;
	Comma         // ,
	Dot           // .
	DotDot        // ..
	Arrow         // ->
	FatArrow      // =>
	LParen        // (
	RParen        // )
	LBrace        // {
	RBrace        // }
	LBracket      // [
	RBracket      // ]
	Hash          // #
	Underscore    // _
)

var kindText = [...]string{
	Invalid:        "invalid",
	EOF:            "end of file",
	Ident:          "identifier",
	IntLit:         "integer literal",
	StringLit:      "string literal",
	KwContract:     "contract",
	KwScript:       "script",
	KwPredicate:    "predicate",
	KwLibrary:      "library",
	KwMod:          "mod",
	KwUse:          "use",
	KwPub:          "pub",
	KwFn:           "fn",
	KwStruct:       "struct",
	KwEnum:         "enum",
	KwTrait:        "trait",
	KwImpl:         "impl",
	KwFor:          "for",
	KwAbi:          "abi",
	KwStorage:      "storage",
	KwConfigurable: "configurable",
	KwConst:        "const",
	KwType:         "type",
	KwLet:          "let",
	KwMut:          "mut",
	KwRef:          "ref",
	KwIf:           "if",
	KwElse:         "else",
	KwWhile:        "while",
	KwMatch:        "match",
	KwReturn:       "return",
	KwBreak:        "break",
	KwContinue:     "continue",
	KwTrue:         "true",
	KwFalse:        "false",
	KwSelf:         "self",
	KwSelfType:     "Self",
	KwWhere:        "where",
	KwAs:           "as",
	KwCrate:        "crate",
	KwSuper:        "super",
	Plus:           "+",
	Minus:          "-",
	Star:           "*",
	Slash:          "/",
	Percent:        "%",
	Assign:         "=",
	PlusAssign:     "+=",
	MinusAssign:    "-=",
	StarAssign:     "*=",
	SlashAssign:    "/=",
	PercentAssign:  "%=",
	AmpAssign:      "&=",
	PipeAssign:     "|=",
	CaretAssign:    "^=",
	ShlAssign:      "<<=",
	ShrAssign:      ">>=",
	EqEq:           "==",
	Bang:           "!",
	BangEq:         "!=",
	Lt:             "<",
	LtEq:           "<=",
	Gt:             ">",
	GtEq:           ">=",
	Shl:            "<<",
	Shr:            ">>",
	Amp:            "&",
	Pipe:           "|",
	Caret:          "^",
	AndAnd:         "&&",
	OrOr:           "||",
	Question:       "?",
	Colon:          ":",
	ColonColon:     "::",
	Semicolon:      ";",
	Comma:          ",",
	Dot:            ".",
	DotDot:         "..",
	Arrow:          "->",
	FatArrow:       "=>",
	LParen:         "(",
	RParen:         ")",
	LBrace:         "{",
	RBrace:         "}",
	LBracket:       "[",
	RBracket:       "]",
	Hash:           "#",
	Underscore:     "_",
}

// String returns the source spelling for fixed tokens and a description otherwise.
func (k Kind) String() string {
	if int(k) < len(kindText) && kindText[k] != "" {
		return kindText[k]
	}
	return "unknown"
}

// IsEOF reports whether the token kind is EOF.
func (k Kind) IsEOF() bool { return k == EOF }

// IsKeyword reports whether the kind is a reserved word.
func (k Kind) IsKeyword() bool { return k >= KwContract && k <= KwSuper }

// IsPunctOrOp reports whether the kind is punctuation or an operator.
func (k Kind) IsPunctOrOp() bool { return k >= Plus && k <= Underscore }

// IsCompoundAssign reports whether the kind is one of +=, -=, ... , >>=.
func (k Kind) IsCompoundAssign() bool { return k >= PlusAssign && k <= ShrAssign }

// CompoundBase returns the binary operator of a compound assignment.
func (k Kind) CompoundBase() Kind {
	switch k {
	case PlusAssign:
		return Plus
	case MinusAssign:
		return Minus
	case StarAssign:
		return Star
	case SlashAssign:
		return Slash
	case PercentAssign:
		return Percent
	case AmpAssign:
		return Amp
	case PipeAssign:
		return Pipe
	case CaretAssign:
		return Caret
	case ShlAssign:
		return Shl
	case ShrAssign:
		return Shr
	}
	return Invalid
}
