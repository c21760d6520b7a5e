package cidutil

import (
	"testing"

	"github.com/ipfs/go-cid"

	"github.com/composable-auto-assessment/generator/fingerprint"
)

func TestContentCID_DigestIsFingerprint(t *testing.T) {
	data := []byte("hello")
	for _, alg := range fingerprint.Algorithms() {
		id, err := ContentCID(alg, data)
		if err != nil {
			t.Fatalf("ContentCID(%s): %v", alg, err)
		}
		gotAlg, fp, err := Decode(id)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		want, _ := fingerprint.SumWith(alg, data)
		if gotAlg != alg || fp != want {
			t.Fatalf("%s: decoded %s/%s want %s", alg, gotAlg, fp, want)
		}
		if id.Prefix().Codec != cid.Raw || id.Version() != 1 {
			t.Fatalf("expected CIDv1 raw, got %s", id)
		}
		if !Matches(id, data) {
			t.Fatalf("Matches should hold for the hashed bytes")
		}
		if Matches(id, []byte("other")) {
			t.Fatalf("Matches should fail for other bytes")
		}
	}
}

func TestContentCID_StringRoundTrip(t *testing.T) {
	id, err := ContentCID(fingerprint.SHAKE128, []byte("stable"))
	if err != nil {
		t.Fatalf("ContentCID: %v", err)
	}
	parsed, err := cid.Decode(id.String())
	if err != nil {
		t.Fatalf("cid.Decode: %v", err)
	}
	if !parsed.Equals(id) {
		t.Fatalf("round trip mismatch: %s vs %s", parsed, id)
	}
}

func TestDecode_Rejects(t *testing.T) {
	if _, _, err := Decode(cid.Undef); err == nil {
		t.Fatalf("expected error for undefined cid")
	}
	if _, err := FingerprintCID("md5", fingerprint.Fingerprint{}); err == nil {
		t.Fatalf("expected error for unsupported algorithm")
	}
	if Matches(cid.Undef, nil) {
		t.Fatalf("undefined cid must not match")
	}
}
