package config

import (
	"os"
	"path/filepath"
	"testing"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/composable-auto-assessment/generator/errs"
	"github.com/composable-auto-assessment/generator/fingerprint"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "qrgen.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config invalid: %v", err)
	}
	if cfg.Algorithm() != fingerprint.SHAKE128 || cfg.Output.Prefix != "qrcode" || cfg.Set.Pages != 1 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	enc, err := cfg.Encoder()
	if err != nil {
		t.Fatalf("Encoder: %v", err)
	}
	if enc.Version != 2 || enc.Level != qrcode.High {
		t.Fatalf("unexpected encoder %+v", enc)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[fingerprint]
algorithm = "BLAKE3"

[output]
dir = "out"
prefix = "exam"

[set]
id = 4
pages = 3

[archive]
write_policy = "first"

[[archive.backends]]
name = "localfs"
config = { localfs-dir = "archive" }
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Algorithm() != fingerprint.BLAKE3 {
		t.Fatalf("expected blake3, got %q", cfg.Fingerprint.Algorithm)
	}
	if cfg.Output.Prefix != "exam" || cfg.Output.Dir != "out" {
		t.Fatalf("unexpected output %+v", cfg.Output)
	}
	if cfg.Set.ID != 4 || cfg.Set.Pages != 3 {
		t.Fatalf("unexpected set %+v", cfg.Set)
	}
	if cfg.Symbol.Version != 2 || cfg.Symbol.ImageSize != 256 {
		t.Fatalf("symbol defaults lost: %+v", cfg.Symbol)
	}
	if !cfg.Archive.Enabled() || cfg.Archive.Backends[0].Config["localfs-dir"] != "archive" {
		t.Fatalf("unexpected archive %+v", cfg.Archive)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if !errs.IsKind(err, errs.KindConfig) {
		t.Fatalf("expected Config error, got %v", err)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"syntax":     "[output\n",
		"algorithm":  "[fingerprint]\nalgorithm = \"md5\"\n",
		"level":      "[symbol]\nlevel = \"ultra\"\n",
		"version":    "[symbol]\nversion = 41\n",
		"too small":  "[symbol]\nversion = 1\n",
		"too strong": "[symbol]\nversion = 2\nlevel = \"highest\"\n",
		"prefix":     "[output]\nprefix = \"a/b\"\n",
		"pages":      "[set]\npages = 0\n",
		"set id":     "[set]\nid = 300\n",
		"archive":    "[archive]\nwrite_policy = \"all\"\n[[archive.backends]]\nname = \"\"\n",
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); !errs.IsKind(err, errs.KindConfig) {
			t.Fatalf("%s: expected Config error, got %v", name, err)
		}
	}
}

func TestValidate_SymbolMustHoldPayload(t *testing.T) {
	cfg := Default()
	cfg.Symbol.Version = 1
	if err := cfg.Validate(); !errs.IsKind(err, errs.KindConfig) {
		t.Fatalf("expected Config error for version 1, got %v", err)
	}
	cfg = Default()
	cfg.Symbol.Level = "highest"
	if err := cfg.Validate(); !errs.IsKind(err, errs.KindConfig) {
		t.Fatalf("expected Config error for version 2 at highest, got %v", err)
	}
	cfg = Default()
	cfg.Symbol.Version = 3
	cfg.Symbol.Level = "highest"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("version 3 at highest holds a payload: %v", err)
	}
}
