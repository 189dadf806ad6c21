package index

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/hupe1980/sketchdex/sketch"
)

// SearchType selects the scoring formula of a JaccardSearch.
type SearchType int

const (
	// SearchTypeJaccard scores shared / union.
	SearchTypeJaccard SearchType = iota + 1
	// SearchTypeContainment scores shared / |query|.
	SearchTypeContainment
	// SearchTypeMaxContainment scores shared / min(|query|, |subject|).
	SearchTypeMaxContainment
)

// String returns a string representation of the SearchType.
func (st SearchType) String() string {
	switch st {
	case SearchTypeJaccard:
		return "Jaccard"
	case SearchTypeContainment:
		return "Containment"
	case SearchTypeMaxContainment:
		return "MaxContainment"
	default:
		return "Unknown"
	}
}

// JaccardSearch is a search policy shared by every branch of one traversal.
//
// The search type and scaled requirement are fixed at construction. The
// threshold and best-only flag may be read and updated concurrently. Under
// best-only the threshold only ever rises; updates become visible to other
// goroutines on their next read, without any stronger ordering.
type JaccardSearch struct {
	searchType    SearchType
	requireScaled bool
	selector      sketch.Selector

	threshold atomic.Uint64 // math.Float64bits
	bestOnly  atomic.Bool
}

// NewJaccardSearch creates a policy with a zero threshold. Containment
// metrics require scaled sketches.
func NewJaccardSearch(st SearchType) *JaccardSearch {
	return &JaccardSearch{
		searchType:    st,
		requireScaled: st == SearchTypeContainment || st == SearchTypeMaxContainment,
		selector:      sketch.FirstSlot,
	}
}

// NewJaccardSearchWithThreshold creates a policy with an initial threshold.
func NewJaccardSearchWithThreshold(st SearchType, threshold float64) *JaccardSearch {
	js := NewJaccardSearch(st)
	js.SetThreshold(threshold)
	return js
}

// WithSelector sets the strategy CheckIsCompatible uses to find the sketch
// and returns js.
func (js *JaccardSearch) WithSelector(sel sketch.Selector) *JaccardSearch {
	if sel != nil {
		js.selector = sel
	}
	return js
}

func (js *JaccardSearch) SearchType() SearchType { return js.searchType }
func (js *JaccardSearch) RequireScaled() bool    { return js.requireScaled }

// SetBestOnly toggles adaptive pruning.
func (js *JaccardSearch) SetBestOnly(bestOnly bool) { js.bestOnly.Store(bestOnly) }

// BestOnly reports whether adaptive pruning is on.
func (js *JaccardSearch) BestOnly() bool { return js.bestOnly.Load() }

// Threshold returns the current cutoff.
func (js *JaccardSearch) Threshold() float64 {
	return math.Float64frombits(js.threshold.Load())
}

// SetThreshold overwrites the cutoff.
func (js *JaccardSearch) SetThreshold(threshold float64) {
	js.threshold.Store(math.Float64bits(threshold))
}

// raise sets the threshold to max(threshold, score). NaN is ignored.
func (js *JaccardSearch) raise(score float64) {
	if math.IsNaN(score) {
		return
	}
	for {
		old := js.threshold.Load()
		if math.Float64frombits(old) >= score {
			return
		}
		if js.threshold.CompareAndSwap(old, math.Float64bits(score)) {
			return
		}
	}
}

// Score computes the metric from set cardinalities. total is the union size.
func (js *JaccardSearch) Score(query, shared, subject, total uint64) float64 {
	switch js.searchType {
	case SearchTypeJaccard:
		if total == 0 {
			return 0
		}
		return float64(shared) / float64(total)
	case SearchTypeContainment:
		if query == 0 {
			return 0
		}
		return float64(shared) / float64(query)
	case SearchTypeMaxContainment:
		m := min(query, subject)
		if m == 0 {
			return 0
		}
		return float64(shared) / float64(m)
	default:
		return 0
	}
}

// ScoreMinHashes scores subject against query. Scaled sketches are first
// bounded by the smaller max_hash.
func (js *JaccardSearch) ScoreMinHashes(query, subject *sketch.MinHash) (float64, error) {
	if err := query.CheckCompatible(subject); err != nil {
		return 0, err
	}

	bound := query.MaxHash()
	if bound == 0 || (subject.MaxHash() != 0 && subject.MaxHash() < bound) {
		bound = subject.MaxHash()
	}
	if bound != query.MaxHash() {
		query = query.Downsample(bound)
	}
	if bound != subject.MaxHash() {
		subject = subject.Downsample(bound)
	}

	shared, err := query.CountCommon(subject, false)
	if err != nil {
		return 0, err
	}
	q, s := uint64(query.Size()), uint64(subject.Size())
	return js.Score(q, shared, s, q+s-shared), nil
}

// Passes reports whether score is positive and reaches the threshold.
// A zero score never passes, even with a zero threshold.
func (js *JaccardSearch) Passes(score float64) bool {
	return score > 0 && score >= js.Threshold()
}

// Collect reports whether a candidate with score should be kept, which is
// Passes evaluated before any update. Under best-only it also raises the
// threshold to score.
func (js *JaccardSearch) Collect(score float64, _ *sketch.Signature) bool {
	ok := js.Passes(score)
	if js.bestOnly.Load() {
		js.raise(score)
	}
	return ok
}

// CheckIsCompatible verifies that sig carries a sketch this policy can score:
// a MinHash in the selected slot, scaled when RequireScaled is set.
func (js *JaccardSearch) CheckIsCompatible(sig *sketch.Signature) error {
	mh, err := js.selector(sig)
	if err != nil {
		return err
	}
	if js.requireScaled && !mh.IsScaled() {
		return fmt.Errorf("%w: %w", ErrNotScaled, &sketch.IncompatibleError{
			Reason: fmt.Sprintf("%s search requires a scaled MinHash", js.searchType),
		})
	}
	return nil
}
