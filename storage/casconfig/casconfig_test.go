package casconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/composable-auto-assessment/generator/fingerprint"
	"github.com/composable-auto-assessment/generator/storage"
	"github.com/composable-auto-assessment/generator/storage/casregistry"

	_ "github.com/composable-auto-assessment/generator/storage/localfs"
)

func TestLoadFile_TOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "archive.toml")
	body := `write_policy = "all"

[[backends]]
name = "localfs"
id = "primary"
config = { localfs-dir = "` + filepath.ToSlash(filepath.Join(dir, "a")) + `" }

[[backends]]
name = "localfs"
id = "mirror"
config = { localfs-dir = "` + filepath.ToSlash(filepath.Join(dir, "b")) + `" }
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.WritePolicy != "all" || len(cfg.Backends) != 2 || cfg.Backends[1].ID != "mirror" {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	cas, closeFn, err := cfg.Open(casregistry.UsageCLI, "", casregistry.Options{Algorithm: fingerprint.SHAKE128})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer closeFn()
	rep, ok := cas.(storage.ReplicatingCAS)
	if !ok {
		t.Fatalf("expected ReplicatingCAS, got %T", cas)
	}
	if rep.Backends[0].Name != "primary" {
		t.Fatalf("unexpected backend order: %v", rep.Backends)
	}
	if _, err := cas.Put([]byte("hello")); err != nil {
		t.Fatalf("Put: %v", err)
	}
}

func TestOpen_PreferredBackendFirst(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{Backends: []BackendConfig{
		{Name: "localfs", ID: "a", Config: map[string]string{"localfs-dir": filepath.Join(dir, "a")}},
		{Name: "localfs", ID: "b", Config: map[string]string{"localfs-dir": filepath.Join(dir, "b")}},
	}}
	cas, closeFn, err := cfg.Open(casregistry.UsageCLI, "b", casregistry.Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer closeFn()
	if _, ok := cas.(storage.MultiCAS); !ok {
		t.Fatalf("expected MultiCAS, got %T", cas)
	}
	if _, err := cas.Put([]byte("x")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	entries, _ := os.ReadDir(filepath.Join(dir, "b"))
	if len(entries) == 0 {
		t.Fatalf("expected write to land in preferred backend")
	}

	if _, _, err := cfg.Open(casregistry.UsageCLI, "zzz", casregistry.Options{}); err == nil {
		t.Fatalf("expected error for unknown preferred backend")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"empty", Config{}},
		{"no name", Config{Backends: []BackendConfig{{}}}},
		{"duplicate", Config{Backends: []BackendConfig{{Name: "localfs"}, {Name: "localfs"}}}},
		{"policy", Config{WritePolicy: "some", Backends: []BackendConfig{{Name: "localfs"}}}},
	}
	for _, tc := range cases {
		if err := tc.cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	cfg := Config{Backends: []BackendConfig{{Name: "tape"}}}
	if _, _, err := cfg.Open(casregistry.UsageCLI, "", casregistry.Options{}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
