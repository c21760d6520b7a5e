// Package fingerprint computes the fixed-width digest carried in every payload.
package fingerprint

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/sha3"

	"github.com/composable-auto-assessment/generator/framing"
)

// Size is the fingerprint width in bytes. It is bounded by the payload ceiling,
// not by a threat model.
const Size = 16

// Fingerprint is a deterministic digest of a framed content set.
type Fingerprint [Size]byte

// Algorithm names an extendable-output function read to Size bytes.
type Algorithm string

const (
	SHAKE128 Algorithm = "shake128"
	BLAKE3   Algorithm = "blake3"

	// Default is used when no algorithm is configured.
	Default = SHAKE128
)

// Algorithms lists the supported algorithms, default first.
func Algorithms() []Algorithm { return []Algorithm{SHAKE128, BLAKE3} }

// ParseAlgorithm maps a configuration name to an Algorithm. The empty string
// selects Default.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(name))) {
	case "":
		return Default, nil
	case SHAKE128:
		return SHAKE128, nil
	case BLAKE3:
		return BLAKE3, nil
	default:
		return "", fmt.Errorf("fingerprint: unknown algorithm %q", name)
	}
}

// Sum returns the SHAKE128 fingerprint of data. It is total, including over
// empty input.
func Sum(data []byte) Fingerprint {
	var fp Fingerprint
	sha3.ShakeSum128(fp[:], data)
	return fp
}

// SumWith returns the fingerprint of data under alg. It fails only for an
// unknown algorithm.
func SumWith(alg Algorithm, data []byte) (Fingerprint, error) {
	switch alg {
	case SHAKE128, "":
		return Sum(data), nil
	case BLAKE3:
		var fp Fingerprint
		h := blake3.New()
		_, _ = h.Write(data)
		_, _ = h.Digest().Read(fp[:])
		return fp, nil
	default:
		return Fingerprint{}, fmt.Errorf("fingerprint: unknown algorithm %q", alg)
	}
}

// Of frames set and fingerprints the result with SHAKE128.
func Of(set framing.ContentSet) Fingerprint {
	return Sum(framing.Frame(set))
}

// OfWith frames set and fingerprints the result under alg.
func OfWith(alg Algorithm, set framing.ContentSet) (Fingerprint, error) {
	return SumWith(alg, framing.Frame(set))
}

// FromBytes copies b into a Fingerprint. b must be exactly Size bytes.
func FromBytes(b []byte) (Fingerprint, error) {
	var fp Fingerprint
	if len(b) != Size {
		return fp, fmt.Errorf("fingerprint: expected %d bytes, got %d", Size, len(b))
	}
	copy(fp[:], b)
	return fp, nil
}

// Parse decodes the hex form produced by String.
func Parse(s string) (Fingerprint, error) {
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return Fingerprint{}, fmt.Errorf("fingerprint: %w", err)
	}
	return FromBytes(b)
}

func (fp Fingerprint) String() string { return hex.EncodeToString(fp[:]) }

// Bytes returns a copy of the fingerprint bytes.
func (fp Fingerprint) Bytes() []byte { return append([]byte(nil), fp[:]...) }

func (fp Fingerprint) IsZero() bool { return fp == Fingerprint{} }
