package project

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultStorageValueBytes is the per-slot byte limit used when the manifest
// does not set [build].storage_value_bytes.
const DefaultStorageValueBytes = 4096

// Manifest is the decoded swell.toml.
type Manifest struct {
	Project ProjectSection    `toml:"project"`
	Cfg     map[string]string `toml:"cfg"`
	Build   BuildSection      `toml:"build"`
}

type ProjectSection struct {
	Name string `toml:"name"`
	Kind string `toml:"kind"`
	// Root is the root module file relative to the manifest directory.
	Root string `toml:"root"`
}

type BuildSection struct {
	Jobs              int `toml:"jobs"`
	MaxDiagnostics    int `toml:"max_diagnostics"`
	StorageValueBytes int `toml:"storage_value_bytes"`
}

var (
	// ErrProjectSectionMissing indicates that [project] is missing in the manifest.
	ErrProjectSectionMissing = errors.New("missing [project]")
	// ErrProjectNameMissing indicates that [project].name is missing.
	ErrProjectNameMissing = errors.New("missing [project].name")
)

var validKinds = map[string]bool{"contract": true, "script": true, "predicate": true, "library": true}

// LoadManifest parses swell.toml from disk.
func LoadManifest(file string) (Manifest, error) {
	var m Manifest
	meta, err := toml.DecodeFile(file, &m)
	if err != nil {
		return Manifest{}, fmt.Errorf("%s: failed to parse TOML: %w", file, err)
	}
	if err := m.finish(meta); err != nil {
		return Manifest{}, fmt.Errorf("%s: %w", file, err)
	}
	return m, nil
}

// DecodeManifest parses manifest text.
func DecodeManifest(data string) (Manifest, error) {
	var m Manifest
	meta, err := toml.Decode(data, &m)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if err := m.finish(meta); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

func (m *Manifest) finish(meta toml.MetaData) error {
	if !meta.IsDefined("project") {
		return ErrProjectSectionMissing
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown manifest key %q", undecoded[0].String())
	}
	m.Project.Name = strings.TrimSpace(m.Project.Name)
	if m.Project.Name == "" {
		return ErrProjectNameMissing
	}
	if !IsValidModuleIdent(m.Project.Name) {
		return fmt.Errorf("invalid project name %q", m.Project.Name)
	}
	if m.Project.Kind == "" {
		m.Project.Kind = "contract"
	}
	if !validKinds[m.Project.Kind] {
		return fmt.Errorf("invalid [project].kind %q", m.Project.Kind)
	}
	if m.Project.Root == "" {
		m.Project.Root = "src/main.sw"
	}
	root := path.Clean(strings.ReplaceAll(m.Project.Root, "\\", "/"))
	if path.IsAbs(root) || strings.HasPrefix(root, "..") {
		return fmt.Errorf("invalid [project].root %q: must stay inside the project", m.Project.Root)
	}
	m.Project.Root = root
	if m.Cfg == nil {
		m.Cfg = map[string]string{}
	}
	if m.Build.Jobs < 0 || m.Build.MaxDiagnostics < 0 || m.Build.StorageValueBytes < 0 {
		return errors.New("[build] values must not be negative")
	}
	if m.Build.StorageValueBytes == 0 {
		m.Build.StorageValueBytes = DefaultStorageValueBytes
	}
	return nil
}
