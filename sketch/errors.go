package sketch

import "errors"

var (
	// ErrIncompatible is matched by every *IncompatibleError.
	ErrIncompatible = errors.New("incompatible sketches")

	// ErrMalformed is returned when signature JSON is structurally invalid.
	ErrMalformed = errors.New("malformed signature")
)

// IncompatibleError describes why two sketches (or a signature and a search
// policy) cannot be compared.
type IncompatibleError struct {
	Reason string
}

func (e *IncompatibleError) Error() string {
	return "incompatible sketches: " + e.Reason
}

func (e *IncompatibleError) Unwrap() error { return ErrIncompatible }

func incompatible(reason string) error {
	return &IncompatibleError{Reason: reason}
}
