package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDecodeManifestDefaults(t *testing.T) {
	m, err := DecodeManifest("[project]\nname = \"counter\"\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Project.Kind != "contract" || m.Project.Root != "src/main.sw" {
		t.Fatalf("defaults not applied: %+v", m.Project)
	}
	if m.Cfg == nil || len(m.Cfg) != 0 {
		t.Fatalf("cfg should be empty, got %v", m.Cfg)
	}
	if m.Build.StorageValueBytes != DefaultStorageValueBytes {
		t.Fatalf("storage_value_bytes = %d", m.Build.StorageValueBytes)
	}
}

func TestDecodeManifestFull(t *testing.T) {
	src := `
[project]
name = "token"
kind = "library"
root = "lib/lib.sw"

[cfg]
target = "test"

[build]
jobs = 3
max_diagnostics = 50
storage_value_bytes = 128
`
	m, err := DecodeManifest(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Project.Name != "token" || m.Project.Kind != "library" || m.Project.Root != "lib/lib.sw" {
		t.Fatalf("project = %+v", m.Project)
	}
	if m.Cfg["target"] != "test" {
		t.Fatalf("cfg = %v", m.Cfg)
	}
	if m.Build.Jobs != 3 || m.Build.MaxDiagnostics != 50 || m.Build.StorageValueBytes != 128 {
		t.Fatalf("build = %+v", m.Build)
	}
}

func TestDecodeManifestErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want error
	}{
		{name: "no project", src: "[build]\njobs = 1\n", want: ErrProjectSectionMissing},
		{name: "no name", src: "[project]\nkind = \"script\"\n", want: ErrProjectNameMissing},
		{name: "bad kind", src: "[project]\nname = \"x\"\nkind = \"daemon\"\n"},
		{name: "bad name", src: "[project]\nname = \"9lives\"\n"},
		{name: "escaping root", src: "[project]\nname = \"x\"\nroot = \"../main.sw\"\n"},
		{name: "unknown key", src: "[project]\nname = \"x\"\nauthor = \"me\"\n"},
		{name: "negative jobs", src: "[project]\nname = \"x\"\n[build]\njobs = -1\n"},
		{name: "broken toml", src: "[project\nname = \"x\"\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeManifest(tc.src)
			if err == nil {
				t.Fatalf("expected error")
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestLoadManifestAndFindRoot(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ManifestName), []byte("[project]\nname = \"demo\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(dir, "src", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	root, ok, err := FindProjectRoot(nested)
	if err != nil || !ok {
		t.Fatalf("FindProjectRoot = %q, %v, %v", root, ok, err)
	}
	if want, _ := filepath.EvalSymlinks(dir); root != dir && root != want {
		t.Fatalf("root = %q, want %q", root, dir)
	}
	m, err := LoadManifest(filepath.Join(root, ManifestName))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Project.Name != "demo" {
		t.Fatalf("name = %q", m.Project.Name)
	}
}
