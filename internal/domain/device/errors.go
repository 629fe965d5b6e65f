package device

import "github.com/cockroachdb/errors"

// UnsupportedFormatError reports that the engine rejected the requested
// encoder during Configure.
type UnsupportedFormatError struct {
	Encoder Encoder
}

func (e *UnsupportedFormatError) Error() string {
	return "unsupported encoder: " + e.Encoder.String()
}

// NewUnsupportedFormatError returns an UnsupportedFormatError for enc.
func NewUnsupportedFormatError(enc Encoder) error {
	return errors.WithStack(&UnsupportedFormatError{Encoder: enc})
}

// PrepareError reports a failure while preparing the engine, typically an
// I/O problem with the output or source file.
type PrepareError struct {
	Err error
}

func (e *PrepareError) Error() string { return "prepare failed: " + e.Err.Error() }

func (e *PrepareError) Unwrap() error { return e.Err }

// NewPrepareError wraps err as a PrepareError.
func NewPrepareError(err error) error {
	return errors.WithStack(&PrepareError{Err: err})
}

// StartError reports a failure to start a prepared engine, typically a
// busy or unavailable device.
type StartError struct {
	Err error
}

func (e *StartError) Error() string { return "start failed: " + e.Err.Error() }

func (e *StartError) Unwrap() error { return e.Err }

// NewStartError wraps err as a StartError.
func NewStartError(err error) error {
	return errors.WithStack(&StartError{Err: err})
}
