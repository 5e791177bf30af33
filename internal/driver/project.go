package driver

import (
	"fmt"
	"os"
	"path/filepath"

	"swell/internal/project"
)

// Project is a loaded compilation target: either a manifest package or a
// single source file.
type Project struct {
	// Dir is the directory the provider reads from.
	Dir      string
	Root     string
	Provider project.FileProvider
	// Manifest is nil for a single file.
	Manifest *project.Manifest
}

// OpenProject resolves target, which may be empty (the current directory),
// a directory containing swell.toml somewhere above it, or a .sw file.
func OpenProject(target string) (*Project, error) {
	if target == "" {
		target = "."
	}
	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", target, err)
	}
	if !info.IsDir() {
		dir := filepath.Dir(target)
		return &Project{
			Dir:      dir,
			Root:     filepath.Base(target),
			Provider: project.DirProvider{Root: dir},
		}, nil
	}
	manifestPath, ok, err := project.FindManifest(target)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s: no %s found in this or any parent directory", target, project.ManifestName)
	}
	m, err := project.LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(manifestPath)
	return &Project{
		Dir:      dir,
		Root:     m.Project.Root,
		Provider: project.DirProvider{Root: dir},
		Manifest: &m,
	}, nil
}

// Apply fills options the caller left zero from the manifest [build] and
// [cfg] tables. Flags always win over the manifest.
func (p *Project) Apply(opts Options) Options {
	if p.Manifest == nil {
		return opts
	}
	b := p.Manifest.Build
	if opts.Jobs == 0 {
		opts.Jobs = b.Jobs
	}
	if opts.MaxDiagnostics == 0 {
		opts.MaxDiagnostics = b.MaxDiagnostics
	}
	if opts.StorageValueBytes == 0 {
		opts.StorageValueBytes = b.StorageValueBytes
	}
	if len(p.Manifest.Cfg) > 0 {
		cfg := make(map[string]string, len(p.Manifest.Cfg)+len(opts.Cfg))
		for k, v := range p.Manifest.Cfg {
			cfg[k] = v
		}
		for k, v := range opts.Cfg {
			cfg[k] = v
		}
		opts.Cfg = cfg
	}
	return opts
}
