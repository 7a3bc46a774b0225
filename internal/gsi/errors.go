package gsi

import "errors"

// Internal-only error kinds for the DH session and PEM/DER codec. None of
// these carry a wire error code; the broader GSI handler (out of scope
// here) decides how an authentication failure is reported to the client.
var (
	ErrCryptoInit           = errors.New("gsi: failed to initialize DH parameters")
	ErrMalformed            = errors.New("gsi: malformed DH message")
	ErrParamMismatch        = errors.New("gsi: peer DH parameters differ from local ones")
	ErrKeyRejected          = errors.New("gsi: peer public value rejected")
	ErrBadPadding           = errors.New("gsi: padding check failed")
	ErrBadBlockSize         = errors.New("gsi: ciphertext is not a multiple of the block size")
	ErrAlgorithmUnsupported = errors.New("gsi: unsupported cipher or key algorithm")
	ErrNotFinalized         = errors.New("gsi: key agreement has not been finalized")
)
