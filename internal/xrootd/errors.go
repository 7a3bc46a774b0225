package xrootd

import (
	"fmt"

	"github.com/cubbit/xrootd4g/internal/wire"
)

// WireError is a handler-reported failure with a wire-visible error code.
// The dispatcher turns it into a single error response frame; it never
// terminates the connection (that is reserved for framing-level errors
// and panics, see internal/wire.ErrShortFrame/ErrBadLength).
type WireError struct {
	Code    wire.ErrorCode
	Message string
}

func (e *WireError) Error() string {
	return fmt.Sprintf("xrootd: %s", e.Message)
}

func newErr(code wire.ErrorCode, format string, args ...any) *WireError {
	return &WireError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func errArgMissing(format string, args ...any) *WireError {
	return newErr(wire.ErrArgMissing, format, args...)
}

func errArgInvalid(format string, args ...any) *WireError {
	return newErr(wire.ErrArgInvalid, format, args...)
}

func errNotFound(format string, args ...any) *WireError {
	return newErr(wire.ErrNotFound, format, args...)
}

func errNotFile(format string, args ...any) *WireError {
	return newErr(wire.ErrNotFile, format, args...)
}

func errIsDirectory(format string, args ...any) *WireError {
	return newErr(wire.ErrIsDirectory, format, args...)
}

func errFileNotOpen(format string, args ...any) *WireError {
	return newErr(wire.ErrFileNotOpen, format, args...)
}

func errIOError(format string, args ...any) *WireError {
	return newErr(wire.ErrIOError, format, args...)
}

// asWireError adapts an opaque error from a collaborator (os.PathError,
// an s3 SDK error, ...) into an IOError-coded WireError, preserving the
// original text for diagnostics.
func asWireError(err error) *WireError {
	if werr, ok := err.(*WireError); ok {
		return werr
	}
	return errIOError("%v", err)
}
