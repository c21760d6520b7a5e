package localfs

import (
	"os"
	"testing"

	"github.com/composable-auto-assessment/generator/cidutil"
	"github.com/composable-auto-assessment/generator/fingerprint"
	"github.com/composable-auto-assessment/generator/storage"
	"github.com/composable-auto-assessment/generator/storage/testkit"
)

func TestLocalFS_Conformance(t *testing.T) {
	for _, alg := range fingerprint.Algorithms() {
		alg := alg
		t.Run(string(alg), func(t *testing.T) {
			testkit.RunCASConformance(t, alg, func(t *testing.T) storage.CAS {
				t.Helper()
				cas, err := New(t.TempDir(), alg)
				if err != nil {
					t.Fatalf("New failed: %v", err)
				}
				return cas
			})
		})
	}
}

func TestLocalFS_RejectMutationByOverwrite(t *testing.T) {
	cas, err := New(t.TempDir(), fingerprint.SHAKE128)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	orig := []byte("original")
	id, err := cas.Put(orig)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Corrupt the stored object out-of-band.
	path := cas.pathFor(id)
	if err := os.Chmod(path, 0o644); err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}
	if err := os.WriteFile(path, []byte("corrupted"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := cas.Get(id); err != storage.ErrCIDMismatch {
		t.Fatalf("Get mismatch: got %v want %v", err, storage.ErrCIDMismatch)
	}

	// Put must not repair or overwrite the corrupted object.
	if _, err := cas.Put(orig); err != storage.ErrImmutable {
		t.Fatalf("Put after corruption: got %v want %v", err, storage.ErrImmutable)
	}

	wantID, err := cidutil.ContentCID(fingerprint.SHAKE128, orig)
	if err != nil {
		t.Fatalf("ContentCID failed: %v", err)
	}
	if !id.Equals(wantID) {
		t.Fatalf("unexpected CID: got %s want %s", id, wantID)
	}
}

func TestLocalFS_ReadsOtherAlgorithm(t *testing.T) {
	dir := t.TempDir()
	shake, err := New(dir, fingerprint.SHAKE128)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	id, err := shake.Put([]byte("written as shake128"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	blake, err := New(dir, fingerprint.BLAKE3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := blake.Get(id); err != nil {
		t.Fatalf("Get through a BLAKE3 store should verify with the CID's algorithm: %v", err)
	}
}

func TestLocalFS_List(t *testing.T) {
	cas, err := New(t.TempDir(), "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a, _ := cas.Put([]byte("a"))
	b, _ := cas.Put([]byte("b"))
	ids, err := cas.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %d", len(ids))
	}
	if ids[0].String() > ids[1].String() {
		t.Fatalf("List not sorted")
	}
	seen := map[string]bool{ids[0].String(): true, ids[1].String(): true}
	if !seen[a.String()] || !seen[b.String()] {
		t.Fatalf("List missing stored ids")
	}
}

func TestNew_Rejects(t *testing.T) {
	if _, err := New("", fingerprint.SHAKE128); err == nil {
		t.Fatalf("expected error for empty root")
	}
	if _, err := New(t.TempDir(), "md5"); err == nil {
		t.Fatalf("expected error for unknown algorithm")
	}
}
