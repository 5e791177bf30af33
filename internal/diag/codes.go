package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Лексические
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber                Code = 1004
	LexBadEscape                Code = 1005
	LexInvalidUTF8              Code = 1006
	LexBadSuffix                Code = 1007

	// Парсерные
	SynInfo              Code = 2000
	SynUnexpectedToken   Code = 2001
	SynUnclosedDelimiter Code = 2002
	SynExpectSemicolon   Code = 2003
	SynExpectIdentifier  Code = 2004
	SynExpectType        Code = 2005
	SynExpectExpression  Code = 2006
	SynExpectPattern     Code = 2007
	SynExpectItem        Code = 2008
	SynMissingHeader     Code = 2009
	SynDuplicateHeader   Code = 2010
	SynBadAttribute      Code = 2011
	SynInvalidTupleIndex Code = 2012
	SynExpectBlock       Code = 2013
	SynAssignNotPlace    Code = 2014

	// Разрешение имён
	ResInfo              Code = 3000
	ResUnknownName       Code = 3001
	ResUnknownPath       Code = 3002
	ResDuplicateDecl     Code = 3003
	ResConstRedeclared   Code = 3004
	ResImportClash       Code = 3005
	ResAmbiguousGlob     Code = 3006
	ResPrivateItem       Code = 3007
	ResNotAModule        Code = 3008
	ResNotATrait         Code = 3009
	ResNotAType          Code = 3010
	ResNotAValue         Code = 3011
	ResMissingSubmodule  Code = 3012
	ResSupertraitCycle   Code = 3013
	ResSelfOutsideImpl   Code = 3014
	ResStorageNotAllowed Code = 3015
	ResUnusedImport      Code = 3016

	// Типы
	TypInfo              Code = 4000
	TypMismatch          Code = 4001
	TypUnresolvedGeneric Code = 4002
	TypMissingTraitImpl  Code = 4003
	TypNonExhaustive     Code = 4004
	TypUnreachableArm    Code = 4005
	TypMissingField      Code = 4006
	TypUnexpectedField   Code = 4007
	TypDuplicateField    Code = 4008
	TypAmbiguousMethod   Code = 4009
	TypNoMethod          Code = 4010
	TypArgCount          Code = 4011
	TypInfiniteType      Code = 4012
	TypNotCallable       Code = 4013
	TypNoField           Code = 4014
	TypMissingImplItem   Code = 4015
	TypExtraImplItem     Code = 4016
	TypGenericArgCount   Code = 4017
	TypLiteralOverflow   Code = 4018
	TypConstEval         Code = 4019
	TypImmutableAssign   Code = 4020
	TypNotIndexable      Code = 4021
	TypBreakOutsideLoop  Code = 4022
	TypMissingReturn     Code = 4023
	TypRecursiveType     Code = 4024
	TypBadOperand        Code = 4025
	TypConflictingImpl   Code = 4026
	TypBadPattern        Code = 4027
	TypAbiMissingMethod  Code = 4028
	TypAbiSignature      Code = 4029
	TypMissingMain       Code = 4030

	// Чистота (storage)
	PurInfo             Code = 5000
	PurMissingStorage   Code = 5001
	PurAbiStricter      Code = 5002
	PurStorageOutside   Code = 5003
	PurNestedCollection Code = 5004
	PurStorageLayout    Code = 5005
	PurUnusedAnnotation Code = 5006

	// Атрибуты
	AtrInfo            Code = 6000
	AtrUnknown         Code = 6001
	AtrMalformed       Code = 6002
	AtrMisplaced       Code = 6003
	AtrPayableNotAbi   Code = 6004
	AtrTestSignature   Code = 6005
	AtrDeprecatedUsage Code = 6006
	AtrDuplicate       Code = 6007
	AtrCfgMalformed    Code = 6008

	// Проект / граф модулей
	ProjInfo          Code = 7000
	ProjModuleCycle   Code = 7001
	ProjUseCycle      Code = 7002
	ProjMissingModule Code = 7003
	ProjDuplicateMod  Code = 7004
	ProjBadManifest   Code = 7005

	IOInfo          Code = 8000
	IOLoadFileError Code = 8001

	ObsInfo    Code = 9000
	ObsTimings Code = 9001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                 "Unknown error",
		LexInfo:                     "Lexical information",
		LexUnknownChar:              "Unknown character",
		LexUnterminatedString:       "Unterminated string literal",
		LexUnterminatedBlockComment: "Unterminated block comment",
		LexBadNumber:                "Malformed numeric literal",
		LexBadEscape:                "Invalid escape sequence",
		LexInvalidUTF8:              "Invalid UTF-8 sequence",
		LexBadSuffix:                "Unknown numeric literal suffix",
		SynInfo:                     "Syntax information",
		SynUnexpectedToken:          "Unexpected token",
		SynUnclosedDelimiter:        "Unclosed delimiter",
		SynExpectSemicolon:          "Expected ';'",
		SynExpectIdentifier:         "Expected identifier",
		SynExpectType:               "Expected type",
		SynExpectExpression:         "Expected expression",
		SynExpectPattern:            "Expected pattern",
		SynExpectItem:               "Expected item",
		SynMissingHeader:            "Missing program kind header",
		SynDuplicateHeader:          "Duplicate program kind header",
		SynBadAttribute:             "Malformed attribute syntax",
		SynInvalidTupleIndex:        "Invalid tuple index",
		SynExpectBlock:              "Expected block",
		SynAssignNotPlace:           "Invalid assignment target",
		ResInfo:                     "Resolution information",
		ResUnknownName:              "Unknown identifier",
		ResUnknownPath:              "Unresolved path",
		ResDuplicateDecl:            "Duplicate declaration",
		ResConstRedeclared:          "Constant redeclared in the same scope",
		ResImportClash:              "Name clash on use",
		ResAmbiguousGlob:            "Ambiguous glob import",
		ResPrivateItem:              "Item is private",
		ResNotAModule:               "Not a module",
		ResNotATrait:                "Not a trait",
		ResNotAType:                 "Not a type",
		ResNotAValue:                "Not a value",
		ResMissingSubmodule:         "Submodule file not found",
		ResSupertraitCycle:          "Cyclic supertrait chain",
		ResSelfOutsideImpl:          "Self used outside of impl or trait",
		ResStorageNotAllowed:        "Storage is only available in contracts",
		ResUnusedImport:             "Unused import",
		TypInfo:                     "Type information",
		TypMismatch:                 "Type mismatch",
		TypUnresolvedGeneric:        "Cannot infer type",
		TypMissingTraitImpl:         "Missing trait implementation",
		TypNonExhaustive:            "Non-exhaustive match",
		TypUnreachableArm:           "Unreachable match arm",
		TypMissingField:             "Missing field in literal",
		TypUnexpectedField:          "Unexpected field in literal",
		TypDuplicateField:           "Duplicate field in literal",
		TypAmbiguousMethod:          "Ambiguous method call",
		TypNoMethod:                 "No such method",
		TypArgCount:                 "Wrong number of arguments",
		TypInfiniteType:             "Infinite type",
		TypNotCallable:              "Expression is not callable",
		TypNoField:                  "No such field",
		TypMissingImplItem:          "Missing item in impl",
		TypExtraImplItem:            "Item is not a member of the trait",
		TypGenericArgCount:          "Wrong number of generic arguments",
		TypLiteralOverflow:          "Literal out of range",
		TypConstEval:                "Constant evaluation failed",
		TypImmutableAssign:          "Assignment to immutable place",
		TypNotIndexable:             "Type is not indexable",
		TypBreakOutsideLoop:         "break or continue outside of a loop",
		TypMissingReturn:            "Missing return value",
		TypRecursiveType:            "Recursive type has infinite size",
		TypBadOperand:               "Invalid operand types",
		TypConflictingImpl:          "Conflicting implementations",
		TypBadPattern:               "Pattern does not fit the scrutinee type",
		TypAbiMissingMethod:         "ABI method not implemented",
		TypAbiSignature:             "ABI method signature mismatch",
		TypMissingMain:              "Missing entry point",
		PurInfo:                     "Purity information",
		PurMissingStorage:           "Missing storage annotation",
		PurAbiStricter:              "Implementation needs more storage access than the ABI declares",
		PurStorageOutside:           "Storage access outside a contract",
		PurNestedCollection:         "Nested storage collection",
		PurStorageLayout:            "Storage element does not fit a fixed layout",
		PurUnusedAnnotation:         "Storage annotation is not needed",
		AtrInfo:                     "Attribute information",
		AtrUnknown:                  "Unknown attribute",
		AtrMalformed:                "Malformed attribute",
		AtrMisplaced:                "Attribute is not allowed here",
		AtrPayableNotAbi:            "#[payable] on a non-ABI function",
		AtrTestSignature:            "Invalid test function signature",
		AtrDeprecatedUsage:          "Usage of deprecated item",
		AtrDuplicate:                "Duplicate attribute",
		AtrCfgMalformed:             "Malformed cfg predicate",
		ProjInfo:                    "Project information",
		ProjModuleCycle:             "Module declares itself",
		ProjUseCycle:                "Cyclic use between modules",
		ProjMissingModule:           "Missing module",
		ProjDuplicateMod:            "Duplicate module declaration",
		ProjBadManifest:             "Invalid project manifest",
		IOInfo:                      "I/O information",
		IOLoadFileError:             "I/O load file error",
		ObsInfo:                     "Observability information",
		ObsTimings:                  "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("RES%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("TYP%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PUR%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("ATR%04d", ic)
	case ic >= 7000 && ic < 8000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 8000 && ic < 9000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 9000 && ic < 10000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

// Category names the error taxonomy bucket of the code.
func (c Code) Category() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return "LexError"
	case ic >= 2000 && ic < 3000:
		return "ParseError"
	case ic >= 3000 && ic < 4000:
		return "ResolutionError"
	case ic >= 4000 && ic < 5000:
		return "TypeError"
	case ic >= 5000 && ic < 6000:
		return "PurityError"
	case ic >= 6000 && ic < 7000:
		return "AttributeError"
	case ic >= 7000 && ic < 9000:
		return "ProjectError"
	}
	return "Info"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
