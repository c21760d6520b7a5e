package metadata

import "github.com/composable-auto-assessment/generator/errs"

// Sequence yields (set, 1), (set, 2), ..., (set, stop) one value at a time.
//
// A Sequence is consumed once. To iterate again, derive a new one from the same
// terminal value.
type Sequence struct {
	setID uint8
	next  int
	stop  int
}

// NewSequence derives the page sequence ending at terminal.
// A terminal page of 0 is a configuration error, not an empty sequence.
func NewSequence(terminal Metadata) (*Sequence, error) {
	if terminal.Page == 0 {
		return nil, errs.New(errs.KindInvalidPageCount, "metadata.NewSequence", "terminal page must be at least 1")
	}
	return &Sequence{setID: terminal.SetID, next: 1, stop: int(terminal.Page)}, nil
}

// Next returns the next value, or false once the sequence is exhausted.
func (s *Sequence) Next() (Metadata, bool) {
	if s == nil || s.next > s.stop {
		return Metadata{}, false
	}
	m := Metadata{SetID: s.setID, Page: uint8(s.next)}
	s.next++
	return m, true
}

// Remaining reports how many values Next will still produce.
func (s *Sequence) Remaining() int {
	if s == nil || s.next > s.stop {
		return 0
	}
	return s.stop - s.next + 1
}
