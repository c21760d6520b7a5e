package payload

import (
	"bytes"
	"testing"

	"github.com/composable-auto-assessment/generator/errs"
	"github.com/composable-auto-assessment/generator/fingerprint"
	"github.com/composable-auto-assessment/generator/metadata"
)

func TestBuild_Layout(t *testing.T) {
	fp := fingerprint.Sum([]byte("hello"))
	p, err := Build(fp, metadata.Metadata{SetID: 7, Page: 3})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(p) != Size || Size != 18 {
		t.Fatalf("expected 18 bytes, got %d", len(p))
	}
	if len(p) > MaxSize {
		t.Fatalf("payload exceeds ceiling")
	}
	if !bytes.Equal(p[:fingerprint.Size], fp[:]) {
		t.Fatalf("fingerprint prefix mismatch")
	}
	if p[16] != 7 || p[17] != 3 {
		t.Fatalf("metadata suffix mismatch: %x", p[16:])
	}
}

func TestBuild_NeverExceedsCeiling(t *testing.T) {
	for _, m := range []metadata.Metadata{{SetID: 0, Page: 1}, {SetID: 255, Page: 255}, {SetID: 128, Page: 64}} {
		p, err := Build(fingerprint.Fingerprint{}, m)
		if err != nil {
			t.Fatalf("Build(%v): %v", m, err)
		}
		if len(p) > MaxSize {
			t.Fatalf("Build(%v) returned %d bytes", m, len(p))
		}
	}
}

func TestCheckSize(t *testing.T) {
	if err := CheckSize(MaxSize); err != nil {
		t.Fatalf("CheckSize(MaxSize): %v", err)
	}
	err := CheckSize(MaxSize + 1)
	if !errs.IsKind(err, errs.KindPayloadTooLarge) {
		t.Fatalf("expected PayloadTooLarge, got %v", err)
	}
}

func TestParse_InvertsBuild(t *testing.T) {
	fp := fingerprint.Sum([]byte("file"))
	m := metadata.Metadata{SetID: 42, Page: 9}
	p, err := Build(fp, m)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	gotFP, gotM, err := Parse(p)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if gotFP != fp || gotM != m {
		t.Fatalf("Parse mismatch: %s %v", gotFP, gotM)
	}
	pf, err := p.Fingerprint()
	if err != nil || pf != fp {
		t.Fatalf("Payload.Fingerprint mismatch: %v", err)
	}
}

func TestParse_Rejects(t *testing.T) {
	good, _ := Build(fingerprint.Fingerprint{}, metadata.Metadata{SetID: 1, Page: 1})
	zeroPage := append(Payload(nil), good...)
	zeroPage[Size-1] = 0

	for name, in := range map[string][]byte{
		"empty":     nil,
		"short":     good[:Size-1],
		"long":      append(append([]byte(nil), good...), 0),
		"zero page": zeroPage,
	} {
		if _, _, err := Parse(in); !errs.IsKind(err, errs.KindInvalidPayload) {
			t.Fatalf("%s: expected InvalidPayload, got %v", name, err)
		}
	}
}
