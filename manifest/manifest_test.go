package manifest

import (
	"bytes"
	"testing"

	"github.com/composable-auto-assessment/generator/fingerprint"
	"github.com/composable-auto-assessment/generator/metadata"
)

func sample() Manifest {
	return Manifest{
		Version:     Version,
		Algorithm:   fingerprint.SHAKE128,
		Fingerprint: fingerprint.Sum([]byte("hello")),
		SetID:       3,
		Pages:       2,
		Prefix:      "qrcode",
		Names:       []string{"qrcode-3-1", "qrcode-3-2"},
	}
}

func TestMarshal_Deterministic(t *testing.T) {
	a, err := Marshal(sample())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	b, err := Marshal(sample())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("expected identical encodings")
	}

	got, err := Unmarshal(a)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := sample()
	if got.Fingerprint != want.Fingerprint || got.Prefix != want.Prefix || len(got.Names) != 2 || got.Names[1] != "qrcode-3-2" {
		t.Fatalf("decoded manifest differs: %+v", got)
	}
	if got.Terminal() != (metadata.Metadata{SetID: 3, Page: 2}) {
		t.Fatalf("unexpected terminal %v", got.Terminal())
	}
}

func TestValidate_Rejects(t *testing.T) {
	cases := map[string]func(*Manifest){
		"version":   func(m *Manifest) { m.Version = 99 },
		"algorithm": func(m *Manifest) { m.Algorithm = "md5" },
		"pages":     func(m *Manifest) { m.Pages = 0; m.Names = nil },
		"names":     func(m *Manifest) { m.Names = m.Names[:1] },
	}
	for name, mutate := range cases {
		m := sample()
		mutate(&m)
		if _, err := Marshal(m); err == nil {
			t.Fatalf("%s: expected Marshal to reject", name)
		}
	}
	if _, err := Unmarshal([]byte{0xff}); err == nil {
		t.Fatalf("expected error for garbage input")
	}
}
