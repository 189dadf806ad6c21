// Package storage provides the key/value backends signature handles load from.
//
// Storage is the boundary between the index core and wherever serialized
// signatures live. Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process map, for tests and ephemeral indices
//   - LocalStore: local filesystem with mmap reads and atomic writes
//   - s3.Store: Amazon S3
//   - minio.Store: MinIO and other S3-compatible services
//   - redis.Store: Redis strings
//
// # Wrappers
//
//   - CachingStore: LRU payload cache with per-key request coalescing
//   - CompressedStore: transparent zstd or lz4 compression
//   - ThrottledStore: byte-rate limit on loads and saves
//
// Wrappers compose:
//
//	st := storage.NewCachingStore(
//	    storage.NewCompressedStore(s3Store, storage.CompressionZSTD),
//	    64<<20,
//	)
package storage
