// Package cidutil maps fingerprints to CIDv1 identifiers.
//
// Archive objects are addressed by a CIDv1 with the "raw" multicodec whose
// multihash digest is the Size byte fingerprint of the stored bytes. A scanned
// payload therefore names its archived content directly.
package cidutil

import (
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"github.com/composable-auto-assessment/generator/fingerprint"
)

// Code returns the multihash code for alg.
func Code(alg fingerprint.Algorithm) (uint64, error) {
	switch alg {
	case fingerprint.SHAKE128, "":
		return multihash.SHAKE_128, nil
	case fingerprint.BLAKE3:
		return multihash.BLAKE3, nil
	default:
		return 0, fmt.Errorf("cidutil: unsupported algorithm %q", alg)
	}
}

// AlgorithmOf returns the fingerprint algorithm for a multihash code.
func AlgorithmOf(code uint64) (fingerprint.Algorithm, error) {
	switch code {
	case multihash.SHAKE_128:
		return fingerprint.SHAKE128, nil
	case multihash.BLAKE3:
		return fingerprint.BLAKE3, nil
	default:
		return "", fmt.Errorf("cidutil: unsupported multihash code 0x%x", code)
	}
}

// FingerprintCID wraps an already computed fingerprint in a CID.
func FingerprintCID(alg fingerprint.Algorithm, fp fingerprint.Fingerprint) (cid.Cid, error) {
	code, err := Code(alg)
	if err != nil {
		return cid.Undef, err
	}
	mh, err := multihash.Encode(fp[:], code)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, mh), nil
}

// ContentCID fingerprints data under alg and returns its CID.
func ContentCID(alg fingerprint.Algorithm, data []byte) (cid.Cid, error) {
	fp, err := fingerprint.SumWith(alg, data)
	if err != nil {
		return cid.Undef, err
	}
	return FingerprintCID(alg, fp)
}

// Decode extracts the algorithm and fingerprint carried by id.
func Decode(id cid.Cid) (fingerprint.Algorithm, fingerprint.Fingerprint, error) {
	if !id.Defined() {
		return "", fingerprint.Fingerprint{}, fmt.Errorf("cidutil: undefined cid")
	}
	dec, err := multihash.Decode(id.Hash())
	if err != nil {
		return "", fingerprint.Fingerprint{}, err
	}
	alg, err := AlgorithmOf(dec.Code)
	if err != nil {
		return "", fingerprint.Fingerprint{}, err
	}
	fp, err := fingerprint.FromBytes(dec.Digest)
	if err != nil {
		return "", fingerprint.Fingerprint{}, err
	}
	return alg, fp, nil
}

// Matches reports whether data hashes to id under the algorithm id names.
func Matches(id cid.Cid, data []byte) bool {
	alg, fp, err := Decode(id)
	if err != nil {
		return false
	}
	got, err := fingerprint.SumWith(alg, data)
	if err != nil {
		return false
	}
	return got == fp
}
