package sketch

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// HashSpace is the size of the 64-bit hash space MinHash values live in.
const HashSpace = math.MaxUint64

// MaxHashForScaled converts a scaled factor into a max_hash bound.
// A scaled of 0 means "not scaled" and returns 0.
func MaxHashForScaled(scaled uint64) uint64 {
	switch scaled {
	case 0:
		return 0
	case 1:
		return HashSpace
	default:
		return uint64(float64(HashSpace) / float64(scaled))
	}
}

// ScaledForMaxHash converts a max_hash bound back into its scaled factor.
func ScaledForMaxHash(maxHash uint64) uint64 {
	if maxHash == 0 {
		return 0
	}
	if maxHash == HashSpace {
		return 1
	}
	return uint64(math.Round(float64(HashSpace) / float64(maxHash)))
}

// MinHashOptions configures a new MinHash.
type MinHashOptions struct {
	// KSize is the k-mer size the hashes were computed over.
	KSize uint32

	// Num bounds the sketch to the Num smallest hashes. 0 means unbounded.
	Num uint32

	// Scaled keeps only hashes <= HashSpace/Scaled. 0 disables scaling.
	Scaled uint64

	// Seed is the hash seed; sketches with different seeds never compare.
	Seed uint64

	// Molecule is the alphabet, e.g. "DNA" or "protein".
	Molecule string

	// TrackAbundance keeps a multiplicity per hash.
	TrackAbundance bool
}

// DefaultMinHashOptions matches the sourmash defaults.
var DefaultMinHashOptions = MinHashOptions{
	KSize:    31,
	Seed:     42,
	Molecule: "DNA",
}

// MinHash is a bottom-k or scaled MinHash sketch.
//
// The hash set is a 64-bit roaring bitmap, so Mins is always sorted and
// overlap counts are bitmap intersections. A MinHash is not safe for
// concurrent mutation; concurrent reads are fine.
type MinHash struct {
	ksize    uint32
	num      uint32
	maxHash  uint64
	seed     uint64
	molecule string
	hashes   *roaring64.Bitmap
	abunds   map[uint64]uint64
}

var _ Sketch = (*MinHash)(nil)

// NewMinHash creates an empty MinHash.
func NewMinHash(optFns ...func(o *MinHashOptions)) *MinHash {
	opts := DefaultMinHashOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	mh := &MinHash{
		ksize:    opts.KSize,
		num:      opts.Num,
		maxHash:  MaxHashForScaled(opts.Scaled),
		seed:     opts.Seed,
		molecule: opts.Molecule,
		hashes:   roaring64.New(),
	}
	if opts.TrackAbundance {
		mh.abunds = make(map[uint64]uint64)
	}
	return mh
}

// Kind implements Sketch.
func (*MinHash) Kind() Kind { return KindMinHash }

func (m *MinHash) KSize() uint32    { return m.ksize }
func (m *MinHash) Num() uint32      { return m.num }
func (m *MinHash) MaxHash() uint64  { return m.maxHash }
func (m *MinHash) Seed() uint64     { return m.seed }
func (m *MinHash) Molecule() string { return m.molecule }

// Scaled returns the scaled factor, or 0 for num-bounded sketches.
func (m *MinHash) Scaled() uint64 { return ScaledForMaxHash(m.maxHash) }

// IsScaled reports whether the sketch is bounded by max_hash.
func (m *MinHash) IsScaled() bool { return m.maxHash > 0 }

// TrackAbundance reports whether per-hash multiplicities are kept.
func (m *MinHash) TrackAbundance() bool { return m.abunds != nil }

// Add inserts a hash with abundance 1.
func (m *MinHash) Add(h uint64) {
	m.AddWithAbundance(h, 1)
}

// AddMany inserts each hash with abundance 1.
func (m *MinHash) AddMany(hs []uint64) {
	for _, h := range hs {
		m.AddWithAbundance(h, 1)
	}
}

// AddWithAbundance inserts a hash, honoring the max_hash and num bounds.
// The abundance is ignored unless the sketch tracks abundance.
func (m *MinHash) AddWithAbundance(h, abund uint64) {
	if m.maxHash > 0 && h > m.maxHash {
		return
	}
	if abund == 0 {
		return
	}

	m.hashes.Add(h)
	if m.abunds != nil {
		m.abunds[h] += abund
	}

	if m.num > 0 && m.hashes.GetCardinality() > uint64(m.num) {
		largest := m.hashes.Maximum()
		m.hashes.Remove(largest)
		if m.abunds != nil {
			delete(m.abunds, largest)
		}
	}
}

// Size returns the number of retained hashes.
func (m *MinHash) Size() int {
	return int(m.hashes.GetCardinality())
}

// Mins returns the retained hashes in ascending order.
func (m *MinHash) Mins() []uint64 {
	return m.hashes.ToArray()
}

// Contains reports whether h is retained.
func (m *MinHash) Contains(h uint64) bool {
	return m.hashes.Contains(h)
}

// Abundance returns the multiplicity of h. Sketches without abundance
// tracking report 1 for every retained hash.
func (m *MinHash) Abundance(h uint64) uint64 {
	if !m.hashes.Contains(h) {
		return 0
	}
	if m.abunds == nil {
		return 1
	}
	return m.abunds[h]
}

// CopyAndClear returns an empty sketch with the same parameters.
func (m *MinHash) CopyAndClear() *MinHash {
	c := &MinHash{
		ksize:    m.ksize,
		num:      m.num,
		maxHash:  m.maxHash,
		seed:     m.seed,
		molecule: m.molecule,
		hashes:   roaring64.New(),
	}
	if m.abunds != nil {
		c.abunds = make(map[uint64]uint64)
	}
	return c
}

// Clone returns a deep copy.
func (m *MinHash) Clone() *MinHash {
	c := m.CopyAndClear()
	c.hashes = m.hashes.Clone()
	for h, a := range m.abunds {
		c.abunds[h] = a
	}
	return c
}

// Downsample returns a copy bounded by maxHash. Bounds looser than the
// current one leave the hash set unchanged.
func (m *MinHash) Downsample(maxHash uint64) *MinHash {
	if maxHash == 0 || (m.maxHash != 0 && maxHash >= m.maxHash) {
		return m.Clone()
	}

	c := m.CopyAndClear()
	c.maxHash = maxHash
	it := m.hashes.Iterator()
	for it.HasNext() {
		h := it.Next()
		if h > maxHash {
			break
		}
		c.hashes.Add(h)
		if c.abunds != nil {
			c.abunds[h] = m.abunds[h]
		}
	}
	return c
}

// Subtract returns a copy without any hash present in other.
func (m *MinHash) Subtract(other *MinHash) *MinHash {
	c := m.Clone()
	c.hashes.AndNot(other.hashes)
	if c.abunds != nil {
		for h := range c.abunds {
			if !c.hashes.Contains(h) {
				delete(c.abunds, h)
			}
		}
	}
	return c
}

// Intersection returns the hashes present in both sketches, ascending.
func (m *MinHash) Intersection(other *MinHash) []uint64 {
	return roaring64.And(m.hashes, other.hashes).ToArray()
}

// CheckCompatible reports whether two sketches can be compared.
func (m *MinHash) CheckCompatible(other *MinHash) error {
	switch {
	case other == nil:
		return incompatible("missing MinHash")
	case m.ksize != other.ksize:
		return incompatible(fmt.Sprintf("ksize %d != %d", m.ksize, other.ksize))
	case m.seed != other.seed:
		return incompatible(fmt.Sprintf("seed %d != %d", m.seed, other.seed))
	case m.molecule != other.molecule:
		return incompatible(fmt.Sprintf("molecule %q != %q", m.molecule, other.molecule))
	case m.num > 0 && other.num > 0 && m.num != other.num:
		return incompatible(fmt.Sprintf("num %d != %d", m.num, other.num))
	case (m.num > 0 && other.maxHash > 0) || (m.maxHash > 0 && other.num > 0):
		return incompatible("cannot compare num and scaled sketches")
	}
	return nil
}

// CountCommon returns the number of shared hashes. With downsample, both
// sketches are first bounded by the smaller max_hash; without it, differing
// max_hash bounds are an error.
func (m *MinHash) CountCommon(other *MinHash, downsample bool) (uint64, error) {
	a, b, err := m.aligned(other, downsample)
	if err != nil {
		return 0, err
	}
	return a.hashes.AndCardinality(b.hashes), nil
}

// Similarity returns the Jaccard estimate |A∩B| / |A∪B|, ignoring abundance.
// Two empty sketches have similarity 0.
func (m *MinHash) Similarity(other *MinHash, downsample bool) (float64, error) {
	a, b, err := m.aligned(other, downsample)
	if err != nil {
		return 0, err
	}

	common := a.hashes.AndCardinality(b.hashes)
	union := a.hashes.GetCardinality() + b.hashes.GetCardinality() - common
	if union == 0 {
		return 0, nil
	}
	return float64(common) / float64(union), nil
}

// Containment returns |A∩B| / |A|: the fraction of this sketch found in other.
// An empty sketch has containment 0.
func (m *MinHash) Containment(other *MinHash, downsample bool) (float64, error) {
	a, b, err := m.aligned(other, downsample)
	if err != nil {
		return 0, err
	}

	size := a.hashes.GetCardinality()
	if size == 0 {
		return 0, nil
	}
	return float64(a.hashes.AndCardinality(b.hashes)) / float64(size), nil
}

// aligned checks compatibility and, when allowed, brings both sketches to the
// same max_hash bound.
func (m *MinHash) aligned(other *MinHash, downsample bool) (*MinHash, *MinHash, error) {
	if err := m.CheckCompatible(other); err != nil {
		return nil, nil, err
	}
	if m.maxHash == other.maxHash {
		return m, other, nil
	}
	if !downsample {
		return nil, nil, incompatible(fmt.Sprintf("max_hash %d != %d", m.maxHash, other.maxHash))
	}

	bound := m.maxHash
	if bound == 0 || (other.maxHash != 0 && other.maxHash < bound) {
		bound = other.maxHash
	}
	return m.Downsample(bound), other.Downsample(bound), nil
}

// MD5Sum returns the sourmash md5 of the sketch: the hex digest over the
// decimal ksize followed by each decimal hash in ascending order.
func (m *MinHash) MD5Sum() string {
	h := md5.New()
	var buf []byte
	buf = strconv.AppendUint(buf[:0], uint64(m.ksize), 10)
	h.Write(buf)

	it := m.hashes.Iterator()
	for it.HasNext() {
		buf = strconv.AppendUint(buf[:0], it.Next(), 10)
		h.Write(buf)
	}
	return hex.EncodeToString(h.Sum(nil))
}
