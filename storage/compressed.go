package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/sketchdex/internal/hash"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionType defines the compression algorithm used.
type CompressionType uint8

const (
	// CompressionNone stores payloads as-is behind the frame header.
	CompressionNone CompressionType = 0
	// CompressionLZ4 indicates LZ4 block compression (fast, good for hot data).
	CompressionLZ4 CompressionType = 1
	// CompressionZSTD indicates ZSTD compression (better ratio, good for cold data).
	CompressionZSTD CompressionType = 2
)

// String returns a string representation of the CompressionType.
func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return "unknown"
	}
}

// ErrCorruptFrame is returned when a compressed payload cannot be decoded.
var ErrCorruptFrame = errors.New("corrupt compressed frame")

// Frame layout: [magic 2][type 1][uncompressed size uint32 LE][crc32c uint32 LE][data...]
// The checksum covers the uncompressed payload. If the type is
// CompressionNone, data is the raw payload.
var frameMagic = [2]byte{'s', 'x'}

const frameHeaderSize = 11

// An LZ4 block expands at most ~255x. The same bound caps the buffer
// preallocated for zstd, whose output may still grow past it.
const maxExpansion = 255

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// CompressedStore compresses payloads on Save and decompresses on Load.
//
// Payloads without the frame header are returned unchanged, so a store can be
// switched to compression without rewriting existing keys.
type CompressedStore struct {
	inner       Storage
	compression CompressionType
}

var _ Storage = (*CompressedStore)(nil)

// NewCompressedStore wraps inner with the given compression.
func NewCompressedStore(inner Storage, compression CompressionType) *CompressedStore {
	return &CompressedStore{inner: inner, compression: compression}
}

// Load decompresses the stored frame.
func (s *CompressedStore) Load(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.inner.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	return decompressFrame(raw)
}

// Save compresses data into a frame. If compression does not shrink the
// payload it is stored uncompressed.
func (s *CompressedStore) Save(ctx context.Context, key string, data []byte) error {
	frame, err := compressFrame(data, s.compression)
	if err != nil {
		return err
	}
	return s.inner.Save(ctx, key, frame)
}

// Delete delegates to the inner store.
func (s *CompressedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

// List delegates to the inner store.
func (s *CompressedStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

func compressFrame(data []byte, compression CompressionType) ([]byte, error) {
	var body []byte
	switch compression {
	case CompressionNone:
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		// n == 0 means the data is incompressible.
		if n > 0 {
			body = buf[:n]
		}
	case CompressionZSTD:
		enc := getZstdEncoder()
		body = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, fmt.Errorf("unsupported compression type %d", compression)
	}

	if body == nil || len(body) >= len(data) {
		compression = CompressionNone
		body = data
	}

	frame := make([]byte, frameHeaderSize+len(body))
	frame[0], frame[1] = frameMagic[0], frameMagic[1]
	frame[2] = byte(compression)
	binary.LittleEndian.PutUint32(frame[3:7], uint32(len(data)))
	binary.LittleEndian.PutUint32(frame[7:11], hash.CRC32C(data))
	copy(frame[frameHeaderSize:], body)
	return frame, nil
}

func decompressFrame(frame []byte) ([]byte, error) {
	if len(frame) < frameHeaderSize || frame[0] != frameMagic[0] || frame[1] != frameMagic[1] {
		return frame, nil
	}

	out, err := decodeBody(frame)
	if err != nil {
		return nil, err
	}
	if hash.CRC32C(out) != binary.LittleEndian.Uint32(frame[7:11]) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorruptFrame)
	}
	return out, nil
}

func decodeBody(frame []byte) ([]byte, error) {
	size := int(binary.LittleEndian.Uint32(frame[3:7]))
	body := frame[frameHeaderSize:]

	switch CompressionType(frame[2]) {
	case CompressionNone:
		if len(body) != size {
			return nil, ErrCorruptFrame
		}
		return body, nil
	case CompressionLZ4:
		if size < 0 || size > len(body)*maxExpansion+16 {
			return nil, fmt.Errorf("%w: declared size %d exceeds block bound", ErrCorruptFrame, size)
		}
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(body, out)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptFrame, err)
		}
		if n != size {
			return nil, ErrCorruptFrame
		}
		return out, nil
	case CompressionZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)
		out, err := dec.DecodeAll(body, make([]byte, 0, min(size, len(body)*maxExpansion)))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptFrame, err)
		}
		if len(out) != size {
			return nil, ErrCorruptFrame
		}
		return out, nil
	default:
		return nil, ErrCorruptFrame
	}
}
