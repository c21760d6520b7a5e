// Package manifest records what was issued for one content set: its fingerprint,
// the page range, and the output names. Manifests are stored in the archive next
// to the framed content they describe.
package manifest

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/composable-auto-assessment/generator/fingerprint"
	"github.com/composable-auto-assessment/generator/metadata"
)

// Version is the current manifest schema version.
const Version = 1

// Manifest describes one emitted page set.
type Manifest struct {
	Version     int                     `cbor:"1,keyasint"`
	Algorithm   fingerprint.Algorithm   `cbor:"2,keyasint"`
	Fingerprint fingerprint.Fingerprint `cbor:"3,keyasint"`
	ContentCID  string                  `cbor:"4,keyasint,omitempty"`
	SetID       uint8                   `cbor:"5,keyasint"`
	Pages       uint8                   `cbor:"6,keyasint"`
	Prefix      string                  `cbor:"7,keyasint"`
	Names       []string                `cbor:"8,keyasint"`
}

// encMode uses Core Deterministic Encoding (RFC 8949 §4.2), so the same manifest
// always encodes to the same bytes and therefore the same archive CID.
var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("manifest: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("manifest: CBOR decoder initialization failed: " + err.Error())
	}
}

// Terminal returns the metadata of the last page in the set.
func (m Manifest) Terminal() metadata.Metadata {
	return metadata.Metadata{SetID: m.SetID, Page: m.Pages}
}

func (m Manifest) Validate() error {
	if m.Version != Version {
		return fmt.Errorf("manifest: unsupported version %d", m.Version)
	}
	if _, err := fingerprint.ParseAlgorithm(string(m.Algorithm)); err != nil {
		return fmt.Errorf("manifest: %w", err)
	}
	if m.Pages == 0 {
		return fmt.Errorf("manifest: page count must be at least 1")
	}
	if len(m.Names) != int(m.Pages) {
		return fmt.Errorf("manifest: %d names for %d pages", len(m.Names), m.Pages)
	}
	return nil
}

// Marshal encodes m deterministically.
func Marshal(m Manifest) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return encMode.Marshal(m)
}

// Unmarshal decodes and validates a manifest.
func Unmarshal(data []byte) (Manifest, error) {
	var m Manifest
	if err := decMode.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("manifest: %w", err)
	}
	return m, m.Validate()
}
