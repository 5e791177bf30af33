package ast

import "swell/internal/source"

// ProgramKind is the header every source file starts with.
type ProgramKind uint8

const (
	ProgramUnknown ProgramKind = iota
	ProgramContract
	ProgramScript
	ProgramPredicate
	ProgramLibrary
)

func (k ProgramKind) String() string {
	switch k {
	case ProgramContract:
		return "contract"
	case ProgramScript:
		return "script"
	case ProgramPredicate:
		return "predicate"
	case ProgramLibrary:
		return "library"
	}
	return "unknown"
}

type File struct {
	Span     source.Span
	Source   source.FileID
	Program  ProgramKind
	KindSpan source.Span
	Items    []ItemID
	// Gated lists items removed by #[cfg]; they stay allocated so tools can
	// still show them.
	Gated []ItemID
}

type Files struct {
	Arena *Arena[File]
}

func NewFiles(capHint uint) *Files {
	return &Files{Arena: NewArena[File](capHint)}
}

func (f *Files) New(file File) FileID {
	return FileID(f.Arena.Allocate(file))
}

func (f *Files) Get(id FileID) *File {
	return f.Arena.Get(uint32(id))
}
