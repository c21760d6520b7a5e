// Package symbol turns payloads into optical codes and persists them as images.
package symbol

import (
	"fmt"
	"image"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/composable-auto-assessment/generator/errs"
	"github.com/composable-auto-assessment/generator/payload"
)

// Symbol is a rendered optical code.
type Symbol interface {
	// Image renders the symbol at roughly size×size pixels.
	Image(size int) image.Image
}

// Encoder turns a payload into a Symbol.
type Encoder interface {
	Encode(p payload.Payload) (Symbol, error)
}

// Writer persists a Symbol under a name.
type Writer interface {
	Write(sym Symbol, name string) error
}

// Default symbol parameters. payload.MaxSize is the byte-mode capacity of this
// version at this level; change them together.
const (
	DefaultVersion = 2
	DefaultLevel   = qrcode.High
)

// ParseLevel maps a configuration name to a recovery level.
// "medium-high" and "quartile" select qrcode.High (25% recovery).
func ParseLevel(name string) (qrcode.RecoveryLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return DefaultLevel, nil
	case "low", "l":
		return qrcode.Low, nil
	case "medium", "m":
		return qrcode.Medium, nil
	case "high", "medium-high", "quartile", "q":
		return qrcode.High, nil
	case "highest", "h":
		return qrcode.Highest, nil
	default:
		return 0, fmt.Errorf("symbol: unknown error-correction level %q", name)
	}
}

// QREncoder encodes payloads as QR codes.
type QREncoder struct {
	// Version forces the symbol version. Zero lets the library pick the
	// smallest version that fits.
	Version int
	Level   qrcode.RecoveryLevel
}

// NewQREncoder returns an encoder with DefaultVersion and DefaultLevel.
func NewQREncoder() *QREncoder {
	return &QREncoder{Version: DefaultVersion, Level: DefaultLevel}
}

// byteCapacity holds the byte-mode capacity of versions 1 through 10, indexed
// by level (Low, Medium, High, Highest). Larger versions hold well over MaxSize.
var byteCapacity = [...][4]int{
	{17, 14, 11, 7},
	{32, 26, 20, 14},
	{53, 42, 32, 24},
	{78, 62, 46, 34},
	{106, 84, 60, 44},
	{134, 106, 74, 58},
	{154, 122, 86, 64},
	{192, 152, 108, 84},
	{230, 180, 130, 98},
	{271, 213, 151, 119},
}

// Capacity returns how many payload bytes a symbol of the configured version
// and level holds in byte mode. An unforced version, or one above 10, reports
// the version 10 capacity as a lower bound. Unknown levels report 0.
func (e *QREncoder) Capacity() int {
	lvl := int(e.Level)
	if lvl < int(qrcode.Low) || lvl > int(qrcode.Highest) {
		return 0
	}
	v := e.Version
	if v <= 0 || v > len(byteCapacity) {
		v = len(byteCapacity)
	}
	return byteCapacity[v-1][lvl-int(qrcode.Low)]
}

// Limit is the largest payload Encode accepts: the smaller of payload.MaxSize
// and Capacity.
func (e *QREncoder) Limit() int {
	if c := e.Capacity(); c < payload.MaxSize {
		return c
	}
	return payload.MaxSize
}

func (e *QREncoder) Encode(p payload.Payload) (Symbol, error) {
	if err := payload.CheckSize(len(p)); err != nil {
		return nil, err
	}
	if limit := e.Limit(); len(p) > limit {
		return nil, errs.New(errs.KindPayloadTooLarge, "symbol.Encode",
			fmt.Sprintf("payload is %d bytes, version %d level %d holds %d", len(p), e.Version, e.Level, limit))
	}
	var (
		q   *qrcode.QRCode
		err error
	)
	if e.Version > 0 {
		q, err = qrcode.NewWithForcedVersion(string(p), e.Version, e.Level)
	} else {
		q, err = qrcode.New(string(p), e.Level)
	}
	if err != nil {
		return nil, errs.Wrap(errs.KindEncodingFailed, "symbol.Encode", fmt.Sprintf("encode %d byte payload", len(p)), err)
	}
	return q, nil
}
