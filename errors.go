package sketchdex

import (
	"errors"
	"fmt"

	"github.com/hupe1980/sketchdex/index"
	"github.com/hupe1980/sketchdex/sketch"
)

var (
	// ErrNoDatabases is returned when Search or Gather gets no databases.
	ErrNoDatabases = errors.New("no databases")

	// ErrNotScaled is returned for a query or match without a scaled MinHash
	// where one is required.
	ErrNotScaled = index.ErrNotScaled

	// ErrIncompatible indicates sketches that cannot be compared.
	ErrIncompatible = sketch.ErrIncompatible

	// ErrLoad indicates a signature could not be read from storage.
	ErrLoad = index.ErrLoad
)

// DatabaseError indicates a failure inside one database.
//
// The original underlying error can be accessed via errors.Unwrap.
type DatabaseError struct {
	Database string
	cause    error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database %q: %v", e.Database, e.cause)
}

func (e *DatabaseError) Unwrap() error { return e.cause }

func translateError(db string, err error) error {
	if err == nil {
		return nil
	}

	var de *DatabaseError
	if errors.As(err, &de) || db == "" {
		return err
	}
	return &DatabaseError{Database: db, cause: err}
}
