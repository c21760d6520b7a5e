package storage

import (
	"fmt"

	"github.com/ipfs/go-cid"

	"github.com/composable-auto-assessment/generator/cidutil"
	"github.com/composable-auto-assessment/generator/fingerprint"
)

// NamedCAS associates an archive with a stable backend name for reporting.
type NamedCAS struct {
	Name string
	CAS  CAS
}

// ReplicatingCAS writes every object to all backends and reads with ordered fallback.
//
// All backends must agree on the CID, which is computed locally under Algorithm.
// A backend returning a different CID fails the write with ErrCIDMismatch.
type ReplicatingCAS struct {
	Algorithm fingerprint.Algorithm
	Backends  []NamedCAS
}

var _ CAS = ReplicatingCAS{}

// PutAll writes data to all backends and returns the expected CID plus the CID
// each backend reported.
func (r ReplicatingCAS) PutAll(data []byte) (cid.Cid, map[string]cid.Cid, error) {
	want, err := cidutil.ContentCID(r.Algorithm, data)
	if err != nil {
		return cid.Undef, nil, err
	}
	if len(r.Backends) == 0 {
		return cid.Undef, nil, fmt.Errorf("archive: ReplicatingCAS has no backends")
	}

	out := make(map[string]cid.Cid, len(r.Backends))
	for _, b := range r.Backends {
		if b.CAS == nil {
			return cid.Undef, nil, fmt.Errorf("archive: nil store for backend %q", b.Name)
		}
		got, err := b.CAS.Put(data)
		if err != nil {
			return cid.Undef, out, fmt.Errorf("archive: backend %q: %w", b.Name, err)
		}
		out[b.Name] = got
		if !got.Equals(want) {
			return cid.Undef, out, ErrCIDMismatch
		}
	}
	return want, out, nil
}

func (r ReplicatingCAS) Put(data []byte) (cid.Cid, error) {
	id, _, err := r.PutAll(data)
	return id, err
}

func (r ReplicatingCAS) Get(id cid.Cid) ([]byte, error) {
	for _, b := range r.Backends {
		if b.CAS == nil {
			continue
		}
		out, err := b.CAS.Get(id)
		if err == nil {
			return out, nil
		}
		if IsNotFound(err) {
			continue
		}
		return nil, err
	}
	return nil, ErrNotFound
}

func (r ReplicatingCAS) Has(id cid.Cid) bool {
	for _, b := range r.Backends {
		if b.CAS != nil && b.CAS.Has(id) {
			return true
		}
	}
	return false
}
