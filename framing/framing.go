// Package framing collapses an ordered sequence of byte buffers into one buffer
// that still records how the sequence was split.
//
// Layout, for each buffer in order:
//
//	StartDelimiter ‖ buffer bytes ‖ EndDelimiter
//
// followed by the number of buffers as a CountSize byte big-endian integer.
//
// Two splits with a different number of segments differ in the trailing count.
// Two splits with the same number of segments but different boundaries differ in
// where the delimiters fall.
//
// Limitation: delimiter bytes occurring inside a buffer are not escaped. If input
// bytes can equal StartDelimiter or EndDelimiter, two distinct splits with the same
// segment count can map to the same framed bytes. The framed layout is part of the
// fingerprint identity, so changing this would change every issued fingerprint.
package framing

import "encoding/binary"

const (
	// StartDelimiter opens every segment (ASCII STX).
	StartDelimiter byte = 0x02
	// EndDelimiter closes every segment (ASCII ETX).
	EndDelimiter byte = 0x03
	// CountSize is the width of the trailing segment count.
	CountSize = 8
)

// ContentSet is the ordered sequence of buffers that is fingerprinted as one unit,
// e.g. the files belonging to one document. Order is part of the identity.
type ContentSet [][]byte

// FramedSize returns the exact length of Frame(set).
func FramedSize(set ContentSet) int {
	n := CountSize
	for _, b := range set {
		n += len(b) + 2
	}
	return n
}

// Frame encodes set into a single buffer. It is a pure function of set.
//
// An empty set frames to CountSize zero bytes; an empty buffer frames to an
// empty delimited segment.
func Frame(set ContentSet) []byte {
	out := make([]byte, 0, FramedSize(set))
	for _, b := range set {
		out = append(out, StartDelimiter)
		out = append(out, b...)
		out = append(out, EndDelimiter)
	}
	return binary.BigEndian.AppendUint64(out, uint64(len(set)))
}

// Strings builds a ContentSet from string segments.
func Strings(parts ...string) ContentSet {
	set := make(ContentSet, 0, len(parts))
	for _, p := range parts {
		set = append(set, []byte(p))
	}
	return set
}
