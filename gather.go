package sketchdex

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/sketchdex/index"
	"github.com/hupe1980/sketchdex/sketch"
)

// GatherResult is one round of Gather: the best remaining match and how
// much of the query it explains.
type GatherResult struct {
	// IntersectBP estimates the base pairs shared with the original query.
	IntersectBP uint64
	// FOrigQuery is the fraction of the original query found in the match.
	FOrigQuery float64
	// FMatch is the fraction of the match found in the remaining query.
	FMatch float64
	// FUniqueToQuery is the fraction of the original query explained by this
	// match and no earlier one.
	FUniqueToQuery float64
	// FUniqueWeighted is FUniqueToQuery weighted by query abundances.
	FUniqueWeighted float64
	// AverageAbund is the mean query abundance of the newly explained hashes.
	AverageAbund float64
	// WeightedMissed is the abundance-weighted fraction of the query still
	// unexplained after this round.
	WeightedMissed float64

	Filename string
	Name     string
	MD5      string
	Match    *index.SigStore
}

// Gather decomposes query into the database signatures that best explain
// it. Each round picks the signature sharing the most hashes with what is
// left of the query, records it and removes its hashes from the query. It
// stops when nothing matches, the query is used up, or a match overlaps the
// original query by fewer than WithThresholdBP base pairs.
//
// The query and every match must carry a scaled MinHash.
func Gather(ctx context.Context, query *sketch.Signature, dbs []Database, optFns ...Option) ([]GatherResult, error) {
	o := applyOptions(optFns)
	start := time.Now()

	results, err := gather(ctx, query, dbs, o)

	missed := 1.0
	if n := len(results); n > 0 {
		missed = results[n-1].WeightedMissed
	}
	o.metricsCollector.RecordGather(len(results), time.Since(start), err)
	o.logger.LogGather(ctx, len(results), missed, err)
	return results, err
}

func gather(ctx context.Context, query *sketch.Signature, dbs []Database, o options) ([]GatherResult, error) {
	if len(dbs) == 0 {
		return nil, ErrNoDatabases
	}

	orig, err := sketch.FirstSlot(query)
	if err != nil {
		return nil, err
	}
	if !orig.IsScaled() {
		return nil, fmt.Errorf("%w: query %q", ErrNotScaled, query.DisplayName())
	}

	if orig.TrackAbundance() && o.ignoreAbundance {
		o.logger.InfoContext(ctx, "ignoring abundance")
	}
	abund := func(h uint64) uint64 {
		if o.ignoreAbundance {
			return 1
		}
		return orig.Abundance(h)
	}

	var sumAbunds uint64
	for _, h := range orig.Mins() {
		sumAbunds += abund(h)
	}
	origSize := orig.Size()
	if origSize == 0 {
		return nil, nil
	}

	remaining := orig.Clone()
	var results []GatherResult

	for remaining.Size() > 0 {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		best, err := findBest(ctx, remaining, dbs)
		if err != nil {
			return results, err
		}
		if best == nil {
			break
		}

		found, err := best.item.MinHashContext(ctx)
		if err != nil {
			return results, translateError(best.db, err)
		}
		if !found.IsScaled() {
			return results, fmt.Errorf("%w: match %q", ErrNotScaled, best.item.Name())
		}

		// Compare at the coarser of both resolutions.
		scaled := max(orig.Scaled(), found.Scaled())
		bound := sketch.MaxHashForScaled(scaled)
		queryD := remaining.Downsample(bound)
		foundD := found.Downsample(bound)
		origD := orig.Downsample(bound)

		intersect := queryD.Intersection(foundD)
		intersectOrig, err := origD.CountCommon(foundD, true)
		if err != nil {
			return results, err
		}

		intersectBP := scaled * intersectOrig
		if float64(intersectBP) < o.thresholdBP {
			o.logger.InfoContext(ctx, "found less than threshold in common",
				"overlap", strings.TrimSpace(FormatBP(float64(intersectBP))),
				"threshold", strings.TrimSpace(FormatBP(o.thresholdBP)),
			)
			break
		}
		if len(intersect) == 0 {
			break
		}

		var weighted uint64
		for _, h := range intersect {
			weighted += abund(h)
		}

		remaining = queryD.Subtract(foundD)

		var missed uint64
		for _, h := range remaining.Mins() {
			missed += abund(h)
		}

		sig, err := best.item.DataContext(ctx)
		if err != nil {
			return results, translateError(best.db, err)
		}

		r := GatherResult{
			IntersectBP:     intersectBP,
			FOrigQuery:      ratio(intersectOrig, uint64(origD.Size())),
			FMatch:          ratio(uint64(len(intersect)), uint64(foundD.Size())),
			FUniqueToQuery:  ratio(uint64(len(intersect)), uint64(origSize)),
			FUniqueWeighted: ratio(weighted, sumAbunds),
			AverageAbund:    ratio(weighted, uint64(len(intersect))),
			WeightedMissed:  ratio(missed, sumAbunds),
			Filename:        best.db,
			Name:            sig.DisplayName(),
			MD5:             sig.MD5Sum(),
			Match:           best.item,
		}
		o.logger.LogGatherMatch(ctx, r)
		results = append(results, r)
	}

	return results, nil
}

type candidate struct {
	score float64
	md5   string
	db    string
	item  *index.SigStore
}

// findBest returns the item containing the largest share of remaining,
// breaking ties by md5. It returns nil when nothing overlaps.
func findBest(ctx context.Context, remaining *sketch.MinHash, dbs []Database) (*candidate, error) {
	q := index.FromSignature(sketch.NewSignature("", "", remaining))

	// One policy across all databases: later ones only need to beat the
	// best score found so far.
	js := index.NewJaccardSearch(index.SearchTypeContainment)
	js.SetBestOnly(true)

	var best *candidate
	consider := func(db string, score float64, item *index.SigStore) error {
		if score < js.Threshold() || score <= 0 {
			return nil
		}
		sig, err := item.DataContext(ctx)
		if err != nil {
			return translateError(db, err)
		}
		c := &candidate{score: score, md5: sig.MD5Sum(), db: db, item: item}
		if best == nil || c.score > best.score || (c.score == best.score && c.md5 < best.md5) {
			best = c
		}
		return nil
	}

	for _, db := range dbs {
		if t, ok := db.Index.(index.Traverser); ok {
			matches, err := t.SearchWith(ctx, js, q)
			if err != nil {
				return nil, translateError(db.Name, err)
			}
			for _, m := range matches {
				if err := consider(db.Name, m.Score, m.Item); err != nil {
					return nil, err
				}
			}
			continue
		}

		for _, item := range db.Index.SignatureRefs() {
			sig, err := item.DataContext(ctx)
			if err != nil {
				return nil, translateError(db.Name, err)
			}
			if err := js.CheckIsCompatible(sig); err != nil {
				return nil, translateError(db.Name, err)
			}
			mh, err := item.MinHashContext(ctx)
			if err != nil {
				return nil, translateError(db.Name, err)
			}
			score, err := js.ScoreMinHashes(remaining, mh)
			if err != nil {
				return nil, translateError(db.Name, err)
			}
			if js.Passes(score) && js.Collect(score, sig) {
				if err := consider(db.Name, score, item); err != nil {
					return nil, err
				}
			}
		}
	}

	return best, nil
}

func ratio(num, den uint64) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
