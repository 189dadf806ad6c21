package index

import (
	"errors"
	"fmt"
)

var (
	// ErrLoad is matched by every *LoadError.
	ErrLoad = errors.New("load error")

	// ErrNoStorage is the cause of a LoadError when a SigStore has neither
	// data nor a storage backend.
	ErrNoStorage = errors.New("no storage attached")

	// ErrNilItem is returned when a nil item is inserted.
	ErrNilItem = errors.New("nil item")

	// ErrNotScaled is returned when a search type needs a scaled MinHash.
	ErrNotScaled = errors.New("sketch is not scaled")

	// ErrEmptyFilename is returned for unmaterialized items without a
	// storage key.
	ErrEmptyFilename = errors.New("empty filename")
)

// LoadError indicates a SigStore could not be materialized.
//
// errors.Is(err, ErrLoad) holds for every LoadError. The underlying cause
// (storage failure, decode failure, ErrNoStorage) can be accessed via
// errors.Unwrap.
type LoadError struct {
	Filename string
	cause    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %q: %v", e.Filename, e.cause)
}

func (e *LoadError) Unwrap() error { return e.cause }

// Is reports whether target is ErrLoad.
func (e *LoadError) Is(target error) bool { return target == ErrLoad }
