package testutil

import (
	"math"
	"math/rand"
	"strconv"
	"sync"

	"github.com/hupe1980/sketchdex/sketch"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64n returns a pseudo-random number in [1,n]. A zero n means the full
// hash space.
func (r *RNG) Uint64n(n uint64) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n == 0 || n == math.MaxUint64 {
		return r.rand.Uint64() | 1
	}
	return uint64(r.rand.Int63n(int64(min(n, math.MaxInt64)))) + 1
}

// Hashes returns n distinct hashes no larger than maxHash (0 = unbounded).
func (r *RNG) Hashes(n int, maxHash uint64) []uint64 {
	seen := make(map[uint64]struct{}, n)
	out := make([]uint64, 0, n)
	for len(out) < n {
		h := r.Uint64n(maxHash)
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	return out
}

// ScaledMinHash returns a scaled MinHash holding n random hashes.
func (r *RNG) ScaledMinHash(n int, scaled uint64) *sketch.MinHash {
	mh := sketch.NewMinHash(func(o *sketch.MinHashOptions) {
		o.Scaled = scaled
	})
	mh.AddMany(r.Hashes(n, sketch.MaxHashForScaled(scaled)))
	return mh
}

// ScaledSignature returns a named signature wrapping a random scaled MinHash.
func (r *RNG) ScaledSignature(name string, n int, scaled uint64) *sketch.Signature {
	return sketch.NewSignature(name, name+".sig", r.ScaledMinHash(n, scaled))
}

// Signatures returns count scaled signatures named prefix-0, prefix-1, ...
func (r *RNG) Signatures(prefix string, count, n int, scaled uint64) []*sketch.Signature {
	sigs := make([]*sketch.Signature, count)
	for i := range sigs {
		sigs[i] = r.ScaledSignature(prefix+"-"+strconv.Itoa(i), n, scaled)
	}
	return sigs
}

// MinHash returns an unbounded MinHash holding exactly the given hashes.
func MinHash(hashes ...uint64) *sketch.MinHash {
	mh := sketch.NewMinHash()
	mh.AddMany(hashes)
	return mh
}

// ScaledMinHash returns a scaled MinHash holding the given hashes that fall
// under the scaled bound.
func ScaledMinHash(scaled uint64, hashes ...uint64) *sketch.MinHash {
	mh := sketch.NewMinHash(func(o *sketch.MinHashOptions) {
		o.Scaled = scaled
	})
	mh.AddMany(hashes)
	return mh
}

// Signature returns a signature named name with one unbounded MinHash.
func Signature(name string, hashes ...uint64) *sketch.Signature {
	return sketch.NewSignature(name, name+".sig", MinHash(hashes...))
}

// ScaledSignature returns a signature named name with one scaled MinHash.
func ScaledSignature(name string, scaled uint64, hashes ...uint64) *sketch.Signature {
	return sketch.NewSignature(name, name+".sig", ScaledMinHash(scaled, hashes...))
}

// Range returns the hashes [from, to).
func Range(from, to uint64) []uint64 {
	out := make([]uint64, 0, to-from)
	for h := from; h < to; h++ {
		out = append(out, h)
	}
	return out
}
