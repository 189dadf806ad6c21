package storage

import (
	"context"
	"os"
)

// ErrNotFound is returned when a key does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Storage persists opaque byte payloads under string keys.
type Storage interface {
	// Load returns the payload stored under key.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save writes data under key, replacing any previous payload.
	Save(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns all keys with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Exists reports whether key can be loaded from st.
func Exists(ctx context.Context, st Storage, key string) (bool, error) {
	keys, err := st.List(ctx, key)
	if err != nil {
		return false, err
	}
	for _, k := range keys {
		if k == key {
			return true, nil
		}
	}
	return false, nil
}
