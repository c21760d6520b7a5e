package generator

import (
	"github.com/ipfs/go-cid"

	"github.com/composable-auto-assessment/generator/cidutil"
	"github.com/composable-auto-assessment/generator/errs"
	"github.com/composable-auto-assessment/generator/fingerprint"
	"github.com/composable-auto-assessment/generator/metadata"
	"github.com/composable-auto-assessment/generator/payload"
	"github.com/composable-auto-assessment/generator/storage"
)

// Verification is the result of resolving a scanned payload against an archive.
type Verification struct {
	Fingerprint fingerprint.Fingerprint
	Metadata    metadata.Metadata
	ContentCID  cid.Cid
	// Content is the framed content set the fingerprint was computed over.
	Content []byte
}

// Verify parses a scanned payload, looks its fingerprint up in archive under alg,
// and re-fingerprints the archived bytes.
//
// A fingerprint with no archived content fails with storage.ErrNotFound in the
// error chain.
func Verify(archive storage.CAS, scanned []byte, alg fingerprint.Algorithm) (Verification, error) {
	const op = "generator.Verify"
	fp, m, err := payload.Parse(scanned)
	if err != nil {
		return Verification{}, err
	}
	v := Verification{Fingerprint: fp, Metadata: m}
	if alg == "" {
		alg = fingerprint.Default
	}
	id, err := cidutil.FingerprintCID(alg, fp)
	if err != nil {
		return v, errs.Wrap(errs.KindConfig, op, "fingerprint algorithm", err)
	}
	v.ContentCID = id
	if archive == nil {
		return v, nil
	}

	b, err := archive.Get(id)
	if err != nil {
		return v, errs.Wrap(errs.KindArchiveFailed, op, "resolve "+id.String(), err)
	}
	got, err := fingerprint.SumWith(alg, b)
	if err != nil {
		return v, errs.Wrap(errs.KindConfig, op, "fingerprint algorithm", err)
	}
	if got != fp {
		return v, errs.Wrap(errs.KindArchiveFailed, op, "archived content does not match payload", storage.ErrCIDMismatch)
	}
	v.Content = b
	return v, nil
}
