// Package payload builds the bytes handed to the optical-code encoder.
//
// Layout, left to right, no padding:
//
//	fingerprint (16 bytes) ‖ set id (1 byte) ‖ page (1 byte)
package payload

import (
	"fmt"

	"github.com/composable-auto-assessment/generator/errs"
	"github.com/composable-auto-assessment/generator/fingerprint"
	"github.com/composable-auto-assessment/generator/metadata"
)

// MaxSize is the encoder capacity ceiling: the byte-mode capacity of a version 2
// QR symbol at quartile error correction. symbol.QREncoder additionally enforces
// the capacity of its configured version and level, and config validation
// rejects symbols that cannot hold Size bytes.
const MaxSize = 20

// Size is the length of every payload built with the current layout.
const Size = fingerprint.Size + metadata.EncodedSize

// Payload is one page's encoder input. It is transient: built, encoded, discarded.
type Payload []byte

// Build concatenates fp with the binary form of m. The result is checked against
// MaxSize before it is returned, so an oversized payload never reaches the encoder.
func Build(fp fingerprint.Fingerprint, m metadata.Metadata) (Payload, error) {
	p := make(Payload, 0, Size)
	p = append(p, fp[:]...)
	p = m.AppendBinary(p)
	if err := CheckSize(len(p)); err != nil {
		return nil, err
	}
	return p, nil
}

// CheckSize fails with PayloadTooLarge when n exceeds MaxSize.
func CheckSize(n int) error {
	if n > MaxSize {
		return errs.New(errs.KindPayloadTooLarge, "payload.Build", fmt.Sprintf("payload is %d bytes, encoder ceiling is %d", n, MaxSize))
	}
	return nil
}

// Parse splits a scanned payload back into its fingerprint and metadata.
func Parse(p []byte) (fingerprint.Fingerprint, metadata.Metadata, error) {
	var m metadata.Metadata
	if len(p) != Size {
		return fingerprint.Fingerprint{}, m, errs.New(errs.KindInvalidPayload, "payload.Parse", fmt.Sprintf("expected %d bytes, got %d", Size, len(p)))
	}
	fp, err := fingerprint.FromBytes(p[:fingerprint.Size])
	if err != nil {
		return fingerprint.Fingerprint{}, m, errs.Wrap(errs.KindInvalidPayload, "payload.Parse", "invalid fingerprint", err)
	}
	if err := m.UnmarshalBinary(p[fingerprint.Size:]); err != nil {
		return fingerprint.Fingerprint{}, m, errs.Wrap(errs.KindInvalidPayload, "payload.Parse", "invalid metadata", err)
	}
	return fp, m, nil
}

// Fingerprint returns the leading fingerprint bytes of p.
func (p Payload) Fingerprint() (fingerprint.Fingerprint, error) {
	if len(p) < fingerprint.Size {
		return fingerprint.Fingerprint{}, errs.New(errs.KindInvalidPayload, "payload.Fingerprint", "payload shorter than a fingerprint")
	}
	return fingerprint.FromBytes(p[:fingerprint.Size])
}
