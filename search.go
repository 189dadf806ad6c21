package sketchdex

import (
	"context"
	"sort"
	"time"

	"github.com/hupe1980/sketchdex/index"
	"github.com/hupe1980/sketchdex/sketch"
	"golang.org/x/sync/errgroup"
)

// SearchResult is one match of a Search.
type SearchResult struct {
	// Similarity is the query's similarity to, or containment in, Match.
	Similarity float64
	Match      *index.SigStore
	MD5        string
	// Filename is the name of the database the match came from.
	Filename string
	Name     string
}

// Search finds signatures in dbs similar to query, or containing it with
// WithContainment. Databases are searched concurrently. A signature found
// in several databases is reported once, for the first database listing it.
// Results are ordered by score, best first.
func Search(ctx context.Context, query *sketch.Signature, dbs []Database, optFns ...Option) ([]SearchResult, error) {
	o := applyOptions(optFns)
	start := time.Now()

	results, err := search(ctx, query, dbs, o)

	o.metricsCollector.RecordSearch(len(dbs), len(results), time.Since(start), err)
	o.logger.LogSearch(ctx, len(dbs), len(results), err)
	return results, err
}

func search(ctx context.Context, query *sketch.Signature, dbs []Database, o options) ([]SearchResult, error) {
	if len(dbs) == 0 {
		return nil, ErrNoDatabases
	}

	q := index.FromSignature(query)
	perDB := make([][]SearchResult, len(dbs))

	g, gctx := errgroup.WithContext(ctx)
	for i, db := range dbs {
		g.Go(func() error {
			res, err := searchDatabase(gctx, q, db, o)
			if err != nil {
				return translateError(db.Name, err)
			}
			perDB[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var results []SearchResult
	seen := make(map[string]struct{})
	for _, res := range perDB {
		for _, r := range res {
			if _, dup := seen[r.MD5]; dup {
				continue
			}
			seen[r.MD5] = struct{}{}
			results = append(results, r)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	return results, nil
}

func searchDatabase(ctx context.Context, q *index.SigStore, db Database, o options) ([]SearchResult, error) {
	var items []*index.SigStore

	if t, ok := db.Index.(index.Traverser); ok && o.bestOnly {
		st := index.SearchTypeJaccard
		if o.containment {
			st = index.SearchTypeContainment
		}
		js := index.NewJaccardSearchWithThreshold(st, o.threshold)
		js.SetBestOnly(true)

		matches, err := t.SearchWith(ctx, js, q)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			items = append(items, m.Item)
		}
	} else {
		var err error
		items, err = index.Search(db.Index, q, o.threshold, o.containment)
		if err != nil {
			return nil, err
		}
	}

	results := make([]SearchResult, 0, len(items))
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var (
			score float64
			err   error
		)
		if o.containment {
			score, err = q.Containment(item)
		} else {
			score, err = q.Similarity(item)
		}
		if err != nil {
			return nil, err
		}
		if score < o.threshold {
			continue
		}

		sig, err := item.DataContext(ctx)
		if err != nil {
			return nil, err
		}
		results = append(results, SearchResult{
			Similarity: score,
			Match:      item,
			MD5:        sig.MD5Sum(),
			Filename:   db.Name,
			Name:       sig.DisplayName(),
		})
	}
	return results, nil
}
