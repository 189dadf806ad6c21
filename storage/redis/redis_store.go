// Package redis provides a Redis implementation of storage.Storage.
//
// Each key is stored as a Redis string under an optional namespace prefix.
// Payloads persist until deleted unless a TTL is configured.
package redis

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/hupe1980/sketchdex/storage"
	"github.com/redis/go-redis/v9"
)

// Options configures a Store.
type Options struct {
	// Prefix namespaces every key, e.g. "sketchdex:".
	Prefix string

	// TTL expires saved payloads. Zero keeps them forever.
	TTL time.Duration

	// ScanCount is the COUNT hint for SCAN during List.
	ScanCount int64
}

// DefaultOptions contains the default store options.
var DefaultOptions = Options{
	Prefix:    "sketchdex:",
	ScanCount: 100,
}

// Store implements storage.Storage on top of a Redis client.
type Store struct {
	client redis.UniversalClient
	opts   Options
}

var _ storage.Storage = (*Store)(nil)

// NewStore creates a new Redis store.
func NewStore(client redis.UniversalClient, optFns ...func(o *Options)) *Store {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.ScanCount <= 0 {
		opts.ScanCount = DefaultOptions.ScanCount
	}
	return &Store{client: client, opts: opts}
}

func (s *Store) key(name string) string {
	return s.opts.Prefix + name
}

// Load returns the payload stored under name.
func (s *Store) Load(ctx context.Context, name string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Save writes data under name.
func (s *Store) Save(ctx context.Context, name string, data []byte) error {
	return s.client.Set(ctx, s.key(name), data, s.opts.TTL).Err()
}

// Delete removes name.
func (s *Store) Delete(ctx context.Context, name string) error {
	return s.client.Del(ctx, s.key(name)).Err()
}

// List scans for keys under the prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	pattern := escapeGlob(s.key(prefix)) + "*"

	var names []string
	iter := s.client.Scan(ctx, 0, pattern, s.opts.ScanCount).Iterator()
	for iter.Next(ctx) {
		names = append(names, strings.TrimPrefix(iter.Val(), s.opts.Prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	sort.Strings(names)
	// SCAN may return a key more than once.
	return compact(names), nil
}

func escapeGlob(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
	return r.Replace(s)
}

func compact(sorted []string) []string {
	if len(sorted) < 2 {
		return sorted
	}
	out := sorted[:1]
	for _, s := range sorted[1:] {
		if s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	return out
}
