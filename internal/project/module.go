package project

import (
	"errors"
	"strings"
	"unicode"

	"swell/internal/ast"
	"swell/internal/source"
)

// ModuleID indexes Graph modules; 1-based, NoModuleID means none.
type ModuleID uint32

const NoModuleID ModuleID = 0

func (id ModuleID) IsValid() bool { return id != NoModuleID }

type Visibility uint8

const (
	Private Visibility = iota
	Public
)

func (v Visibility) String() string {
	if v == Public {
		return "pub"
	}
	return "private"
}

// Module is one parsed source file of the package.
type Module struct {
	ID ModuleID
	// Path holds the module segments; empty for the package root.
	Path     []string
	FilePath string
	File     source.FileID
	// Builder owns the CST of this module only; Strings is shared across the graph.
	Builder  *ast.Builder
	AST      ast.FileID
	Program  ast.ProgramKind
	Parent   ModuleID
	Children []ModuleID
	Public   bool
	// DeclSpan points at `mod name;` in the parent; zero for the root.
	DeclSpan source.Span
	Hash     Digest
}

// Name returns the `::`-joined module path ("" for the root).
func (m *Module) Name() string {
	return strings.Join(m.Path, "::")
}

// Display returns a human readable module name.
func (m *Module) Display() string {
	if len(m.Path) == 0 {
		return "crate"
	}
	return "crate::" + m.Name()
}

// FileNode returns the parsed CST file.
func (m *Module) FileNode() *ast.File {
	return m.Builder.Files.Get(m.AST)
}

func IsValidModuleIdent(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r > unicode.MaxASCII {
			return false
		}
		if i == 0 && r != '_' && !unicode.IsLetter(r) {
			return false
		}
		if i > 0 && r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

var (
	errEmptyPath    = errors.New("empty use path")
	errEscapesRoot  = errors.New("'super' escapes the package root")
	errMisplacedKwd = errors.New("'crate', 'self' and 'super' may only start a path")
)

// AbsolutePath переводит сегменты `use` в путь от корня пакета.
// `crate::` и голый первый сегмент, от корня, `self::`, от текущего
// модуля, каждый ведущий `super::` поднимается на уровень.
func AbsolutePath(module []string, segs []string) ([]string, error) {
	if len(segs) == 0 {
		return nil, errEmptyPath
	}
	var out []string
	i := 0
	switch segs[0] {
	case "crate":
		i = 1
	case "self":
		out = append(out, module...)
		i = 1
	case "super":
		out = append(out, module...)
		for i < len(segs) && segs[i] == "super" {
			if len(out) == 0 {
				return nil, errEscapesRoot
			}
			out = out[:len(out)-1]
			i++
		}
	}
	for _, seg := range segs[i:] {
		switch seg {
		case "crate", "super":
			return nil, errMisplacedKwd
		case "":
			return nil, errEmptyPath
		}
		out = append(out, seg)
	}
	return out, nil
}
