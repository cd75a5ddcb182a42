package cbor

import "fmt"

// Kind tags a codec-level failure the way §7 of the core's error taxonomy
// requires: every abnormal return carries a breadcrumb string and a typed
// kind, never a bare error.
type Kind string

const (
	ErrEncoding Kind = "Encoding"
	ErrDecoding Kind = "Decoding"
)

// Error is the codec kernel's error type. Breadcrumb names the entity and
// operation that failed (e.g. "TransactionOutput decoding", "expected tag
// 258"), and Cause holds the underlying fxamacker/cbor error when there is
// one.
type Error struct {
	Kind       Kind
	Breadcrumb string
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cbor: %s: %s: %v", e.Kind, e.Breadcrumb, e.Cause)
	}
	return fmt.Sprintf("cbor: %s: %s", e.Kind, e.Breadcrumb)
}

func (e *Error) Unwrap() error { return e.Cause }

// Wrap attaches a breadcrumb to an existing codec error, or builds a new
// one if err isn't already a *Error.
func Wrap(kind Kind, breadcrumb string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Breadcrumb: breadcrumb, Cause: err}
}
