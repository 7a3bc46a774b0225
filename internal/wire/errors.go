package wire

import "errors"

// Framing-level errors. These are never converted to a wire error
// response; the connection is terminated instead (spec §7).
var (
	// ErrShortFrame is returned when the input ends mid-header or mid-body.
	ErrShortFrame = errors.New("wire: short frame")

	// ErrBadLength is returned when dlen is negative or exceeds the
	// configured cap.
	ErrBadLength = errors.New("wire: body length invalid or too large")
)
