// Package metadata holds the (set id, page) pair carried in every payload and the
// page sequence derived from a set's last page.
package metadata

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/composable-auto-assessment/generator/errs"
)

// EncodedSize is the width of the binary form: set id ‖ page.
const EncodedSize = 2

// MaxPage is the highest page a set can have.
const MaxPage = 255

// Metadata identifies one page within a multi-page set.
//
// Page 0 is reserved as "no page" and is never produced by New or a Sequence.
type Metadata struct {
	SetID uint8
	Page  uint8
}

// New validates caller-supplied integers and returns the Metadata value.
func New(setID, page int) (Metadata, error) {
	if page == 0 {
		return Metadata{}, errs.New(errs.KindInvalidPageCount, "metadata.New", "page must be at least 1")
	}
	if setID < 0 || setID > 255 {
		return Metadata{}, errs.New(errs.KindInvalidMetadata, "metadata.New", fmt.Sprintf("set id %d out of range [0,255]", setID))
	}
	if page < 1 || page > MaxPage {
		return Metadata{}, errs.New(errs.KindInvalidMetadata, "metadata.New", fmt.Sprintf("page %d out of range [1,%d]", page, MaxPage))
	}
	return Metadata{SetID: uint8(setID), Page: uint8(page)}, nil
}

// String returns "{set_id}-{page}", the form used in output names.
func (m Metadata) String() string {
	return strconv.Itoa(int(m.SetID)) + "-" + strconv.Itoa(int(m.Page))
}

// ParseString parses the form produced by String.
func ParseString(s string) (Metadata, error) {
	setPart, pagePart, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return Metadata{}, errs.New(errs.KindInvalidMetadata, "metadata.ParseString", fmt.Sprintf("malformed metadata %q", s))
	}
	setID, err := strconv.Atoi(setPart)
	if err != nil {
		return Metadata{}, errs.Wrap(errs.KindInvalidMetadata, "metadata.ParseString", "invalid set id", err)
	}
	page, err := strconv.Atoi(pagePart)
	if err != nil {
		return Metadata{}, errs.Wrap(errs.KindInvalidMetadata, "metadata.ParseString", "invalid page", err)
	}
	return New(setID, page)
}

// AppendBinary appends the EncodedSize byte form of m to b.
func (m Metadata) AppendBinary(b []byte) []byte {
	return append(b, m.SetID, m.Page)
}

func (m Metadata) MarshalBinary() ([]byte, error) {
	return m.AppendBinary(make([]byte, 0, EncodedSize)), nil
}

func (m *Metadata) UnmarshalBinary(b []byte) error {
	if len(b) != EncodedSize {
		return errs.New(errs.KindInvalidMetadata, "metadata.UnmarshalBinary", fmt.Sprintf("expected %d bytes, got %d", EncodedSize, len(b)))
	}
	if b[1] == 0 {
		return errs.New(errs.KindInvalidPageCount, "metadata.UnmarshalBinary", "page must be at least 1")
	}
	m.SetID, m.Page = b[0], b[1]
	return nil
}
