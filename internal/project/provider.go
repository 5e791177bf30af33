package project

import (
	"io/fs"
	"maps"
	"os"
	"path"
	"path/filepath"
	"slices"
)

// FileProvider supplies module source code by slash-separated relative path.
// A missing file must be reported with an error matching fs.ErrNotExist.
type FileProvider interface {
	Read(path string) ([]byte, error)
}

// Canonicalizer is an optional FileProvider extension used to detect a module
// that reaches its own file through an alias.
type Canonicalizer interface {
	Canonical(path string) string
}

func canonical(p FileProvider, file string) string {
	if c, ok := p.(Canonicalizer); ok {
		return c.Canonical(file)
	}
	return path.Clean(file)
}

// DirProvider reads files below Root on the local filesystem.
type DirProvider struct {
	Root string
}

func (d DirProvider) Read(file string) ([]byte, error) {
	return os.ReadFile(filepath.Join(d.Root, filepath.FromSlash(file)))
}

// Canonical resolves symlinks so aliased module files compare equal.
func (d DirProvider) Canonical(file string) string {
	full := filepath.Join(d.Root, filepath.FromSlash(file))
	if real, err := filepath.EvalSymlinks(full); err == nil {
		return real
	}
	return filepath.Clean(full)
}

// MapProvider serves files from memory; Aliases maps a path to the path it
// should be considered identical to.
type MapProvider struct {
	Files   map[string][]byte
	Aliases map[string]string
}

func (m MapProvider) Read(file string) ([]byte, error) {
	file = path.Clean(file)
	if target, ok := m.Aliases[file]; ok {
		file = target
	}
	data, ok := m.Files[file]
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: file, Err: fs.ErrNotExist}
	}
	return data, nil
}

func (m MapProvider) Canonical(file string) string {
	file = path.Clean(file)
	if target, ok := m.Aliases[file]; ok {
		return target
	}
	return file
}

// Paths lists the served files in sorted order.
func (m MapProvider) Paths() []string {
	return slices.Sorted(maps.Keys(m.Files))
}
