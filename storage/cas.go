// Package storage defines the archive that keeps framed content sets and set
// manifests, addressed by fingerprint CIDs (see cidutil).
package storage

import "github.com/ipfs/go-cid"

// CAS is a minimal content-addressable archive.
//
// Contract:
// - Put MUST be idempotent.
// - Stored objects MUST be immutable.
// - The CID returned by Put MUST carry the fingerprint of the bytes written,
//   under the store's configured algorithm.
// - Get MUST verify the bytes against the fingerprint in the requested CID, using
//   the algorithm that CID names, and return ErrCIDMismatch otherwise.
// - Get MUST return ErrNotFound when the CID is absent.
type CAS interface {
	Put(data []byte) (cid.Cid, error)
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
}
