package index

import (
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/hupe1980/sketchdex/sketch"
	"github.com/hupe1980/sketchdex/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchTypeString(t *testing.T) {
	assert.Equal(t, "Jaccard", SearchTypeJaccard.String())
	assert.Equal(t, "Containment", SearchTypeContainment.String())
	assert.Equal(t, "MaxContainment", SearchTypeMaxContainment.String())
	assert.Equal(t, "Unknown", SearchType(0).String())
}

func TestNewJaccardSearch(t *testing.T) {
	assert.False(t, NewJaccardSearch(SearchTypeJaccard).RequireScaled())
	assert.True(t, NewJaccardSearch(SearchTypeContainment).RequireScaled())
	assert.True(t, NewJaccardSearch(SearchTypeMaxContainment).RequireScaled())

	js := NewJaccardSearchWithThreshold(SearchTypeJaccard, 0.25)
	assert.Equal(t, 0.25, js.Threshold())
	assert.Equal(t, SearchTypeJaccard, js.SearchType())
	assert.False(t, js.BestOnly())
}

func TestScore(t *testing.T) {
	t.Run("Jaccard", func(t *testing.T) {
		js := NewJaccardSearch(SearchTypeJaccard)
		assert.Equal(t, 0.0, js.Score(10, 0, 10, 100))
		assert.Equal(t, 0.5, js.Score(10, 50, 10, 100))
		assert.Equal(t, 0.0, js.Score(0, 0, 0, 0))
	})

	t.Run("Containment", func(t *testing.T) {
		js := NewJaccardSearch(SearchTypeContainment)
		assert.Equal(t, 0.0, js.Score(0, 5, 10, 15))
		assert.Equal(t, 0.0, js.Score(0, 0, 0, 0))
		assert.Equal(t, 0.5, js.Score(10, 5, 100, 105))
	})

	t.Run("MaxContainment", func(t *testing.T) {
		js := NewJaccardSearch(SearchTypeMaxContainment)
		assert.Equal(t, 0.0, js.Score(0, 0, 10, 10))
		assert.Equal(t, 0.0, js.Score(10, 3, 0, 10))
		assert.Equal(t, 0.5, js.Score(10, 5, 20, 25))
	})
}

func TestPasses(t *testing.T) {
	js := NewJaccardSearch(SearchTypeJaccard)

	t.Run("NonPositiveNeverPasses", func(t *testing.T) {
		for _, th := range []float64{0, -1, 0.5} {
			js.SetThreshold(th)
			assert.False(t, js.Passes(0), "threshold %v", th)
			assert.False(t, js.Passes(-0.1), "threshold %v", th)
		}
	})

	t.Run("ThresholdUpdate", func(t *testing.T) {
		js.SetThreshold(0.2)
		assert.True(t, js.Passes(0.3))

		js.SetThreshold(0.4)
		assert.False(t, js.Passes(0.3))

		assert.True(t, js.Passes(0.4))
	})
}

func TestCollect(t *testing.T) {
	t.Run("WithoutBestOnly", func(t *testing.T) {
		js := NewJaccardSearchWithThreshold(SearchTypeJaccard, 0.5)

		assert.True(t, js.Collect(0.9, nil))
		assert.False(t, js.Collect(0.1, nil))
		assert.Equal(t, 0.5, js.Threshold())
	})

	t.Run("BestOnlyRaises", func(t *testing.T) {
		js := NewJaccardSearchWithThreshold(SearchTypeJaccard, 0.1)
		js.SetBestOnly(true)

		assert.True(t, js.Collect(0.4, nil))
		assert.Equal(t, 0.4, js.Threshold())

		assert.False(t, js.Collect(0.3, nil))
		assert.Equal(t, 0.4, js.Threshold(), "threshold must never drop")

		assert.True(t, js.Collect(0.4, nil))
		assert.True(t, js.Collect(0.8, nil))
		assert.Equal(t, 0.8, js.Threshold())
	})

	t.Run("ConcurrentRaiseIsMax", func(t *testing.T) {
		const n = 1000

		scores := make([]float64, n)
		for i := range scores {
			scores[i] = float64(i) / n
		}
		rand.New(rand.NewSource(4711)).Shuffle(n, func(i, j int) {
			scores[i], scores[j] = scores[j], scores[i]
		})

		js := NewJaccardSearchWithThreshold(SearchTypeContainment, 0.05)
		js.SetBestOnly(true)

		var wg sync.WaitGroup
		for w := 0; w < 8; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				last := 0.0
				for i := w; i < n; i += 8 {
					js.Collect(scores[i], nil)
					th := js.Threshold()
					assert.GreaterOrEqual(t, th, last)
					last = th
				}
			}(w)
		}
		wg.Wait()

		assert.Equal(t, float64(n-1)/n, js.Threshold())
	})

	t.Run("InitialThresholdKept", func(t *testing.T) {
		js := NewJaccardSearchWithThreshold(SearchTypeJaccard, 0.9)
		js.SetBestOnly(true)
		js.Collect(0.2, nil)
		js.Collect(0.5, nil)
		assert.Equal(t, 0.9, js.Threshold())
	})

	t.Run("NaNIgnored", func(t *testing.T) {
		js := NewJaccardSearchWithThreshold(SearchTypeJaccard, 0.3)
		js.SetBestOnly(true)

		assert.False(t, js.Collect(math.NaN(), nil))
		assert.Equal(t, 0.3, js.Threshold())
		assert.True(t, js.Passes(0.9))

		assert.True(t, js.Collect(0.6, nil))
		assert.Equal(t, 0.6, js.Threshold())
	})
}

func TestScoreMinHashes(t *testing.T) {
	a := testutil.MinHash(1, 2, 3, 4)
	b := testutil.MinHash(3, 4, 5, 6)

	t.Run("Jaccard", func(t *testing.T) {
		score, err := NewJaccardSearch(SearchTypeJaccard).ScoreMinHashes(a, b)
		require.NoError(t, err)
		assert.InDelta(t, 2.0/6.0, score, 1e-9)
	})

	t.Run("Containment", func(t *testing.T) {
		score, err := NewJaccardSearch(SearchTypeContainment).ScoreMinHashes(a, testutil.MinHash(3, 4, 5, 6, 7, 8, 9, 10))
		require.NoError(t, err)
		assert.InDelta(t, 0.5, score, 1e-9)
	})

	t.Run("MaxContainment", func(t *testing.T) {
		score, err := NewJaccardSearch(SearchTypeMaxContainment).ScoreMinHashes(testutil.MinHash(testutil.Range(1, 11)...), testutil.MinHash(3, 4))
		require.NoError(t, err)
		assert.InDelta(t, 1.0, score, 1e-9)
	})

	t.Run("Downsampled", func(t *testing.T) {
		bound := sketch.MaxHashForScaled(2)
		q := testutil.ScaledMinHash(1, 1, 2, 7, bound+1, bound+2)
		s := testutil.ScaledMinHash(2, 1, 2, 3)

		score, err := NewJaccardSearch(SearchTypeContainment).ScoreMinHashes(q, s)
		require.NoError(t, err)
		assert.InDelta(t, 2.0/3.0, score, 1e-9)
	})

	t.Run("Incompatible", func(t *testing.T) {
		k21 := sketch.NewMinHash(func(o *sketch.MinHashOptions) { o.KSize = 21 })
		_, err := NewJaccardSearch(SearchTypeJaccard).ScoreMinHashes(a, k21)
		assert.ErrorIs(t, err, sketch.ErrIncompatible)
	})
}

func TestCheckIsCompatible(t *testing.T) {
	scaled := testutil.ScaledSignature("scaled", 10, 1, 2, 3)
	unbounded := testutil.Signature("num", 1, 2, 3)
	opaque := sketch.NewSignature("opaque", "", sketch.NewOpaqueSketch([]byte(`{"nodegraph":"x"}`)))

	t.Run("Jaccard", func(t *testing.T) {
		js := NewJaccardSearch(SearchTypeJaccard)
		assert.NoError(t, js.CheckIsCompatible(scaled))
		assert.NoError(t, js.CheckIsCompatible(unbounded))
		assert.ErrorIs(t, js.CheckIsCompatible(opaque), sketch.ErrIncompatible)
	})

	t.Run("ContainmentRequiresScaled", func(t *testing.T) {
		js := NewJaccardSearch(SearchTypeContainment)
		assert.NoError(t, js.CheckIsCompatible(scaled))

		err := js.CheckIsCompatible(unbounded)
		assert.ErrorIs(t, err, ErrNotScaled)
		assert.ErrorIs(t, err, sketch.ErrIncompatible)
		var ie *sketch.IncompatibleError
		require.ErrorAs(t, err, &ie)
		assert.Contains(t, ie.Reason, "scaled")
	})

	t.Run("Selector", func(t *testing.T) {
		sig := sketch.NewSignature("multi", "", sketch.NewOpaqueSketch([]byte(`{}`)), testutil.ScaledMinHash(10, 5))
		js := NewJaccardSearch(SearchTypeContainment)
		assert.Error(t, js.CheckIsCompatible(sig))
		assert.NoError(t, js.WithSelector(sketch.ByKSize(31)).CheckIsCompatible(sig))
	})
}
