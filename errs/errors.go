// Package errs defines the structured error type shared by the generator packages.
package errs

import "errors"

// Kind is a stable category for programmatic error handling.
//
// Callers should branch on Kind rather than matching error strings.
// Use errors.As to extract *Error for structured handling.
type Kind string

const (
	KindInputUnavailable  Kind = "InputUnavailable"
	KindPayloadTooLarge   Kind = "PayloadTooLarge"
	KindInvalidPageCount  Kind = "InvalidPageCount"
	KindEncodingFailed    Kind = "EncodingFailed"
	KindOutputWriteFailed Kind = "OutputWriteFailed"

	KindInvalidMetadata Kind = "InvalidMetadata"
	KindInvalidPayload  Kind = "InvalidPayload"
	KindArchiveFailed   Kind = "ArchiveFailed"
	KindConfig          Kind = "Config"
)

// Error is the structured error returned by the generator packages.
//
// Op names the operation that failed (e.g. "payload.Build", "symbol.Write").
// Message is intended for humans; do not match on it.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// New returns an *Error without a cause.
func New(kind Kind, op, msg string) error {
	return &Error{Kind: kind, Op: op, Message: msg}
}

// Wrap returns an *Error wrapping cause. A nil cause is allowed.
func Wrap(kind Kind, op, msg string, cause error) error {
	return &Error{Kind: kind, Op: op, Message: msg, Cause: cause}
}

// IsKind reports whether err is (or wraps) a *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// KindOf returns the Kind of the outermost *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Kind
}
