package hashwork

import (
	"errors"
	"fmt"

	"github.com/hashwork/hashwork/digest"
	"github.com/hashwork/hashwork/offload"
)

var (
	// ErrInvalidInput is returned when an argument does not carry the
	// required capability, e.g. a nil reader where a stream is expected.
	ErrInvalidInput = errors.New("invalid input")
)

// UnsupportedAlgorithmError is re-exported from the digest package so
// callers can match it without importing digest directly.
type UnsupportedAlgorithmError = digest.UnsupportedAlgorithmError

// IsContextFault reports whether err is a background-worker context fault.
// After such a fault the offload subsystem is unusable for the remainder of
// the process; synchronous paths keep working.
func IsContextFault(err error) bool {
	var cf *offload.ContextFaultError
	return errors.As(err, &cf)
}

// invalidInputf wraps ErrInvalidInput with detail.
func invalidInputf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
