package index

import (
	"context"
	"fmt"
)

// Index is a collection of Comparable items.
//
// Implementations supply storage and placement; Find, Search and
// BatchInsert work on any Index.
type Index[T Comparable[T]] interface {
	// Insert adds one item. Duplicate handling is up to the implementation,
	// but items must not be dropped silently.
	Insert(item T) error

	// Save persists the whole index under path.
	Save(ctx context.Context, path string) error

	// Load replaces the index contents with the ones persisted under path.
	Load(ctx context.Context, path string) error

	// Signatures returns copies of all items.
	Signatures() []T

	// SignatureRefs returns the items themselves, without copying them.
	SignatureRefs() []T
}

// SearchFunc decides whether item matches query at threshold.
type SearchFunc[T any] func(item T, query T, threshold float64) (bool, error)

// SearchMinHashes matches items whose similarity to query is at least
// threshold.
func SearchMinHashes[T Comparable[T]](item T, query T, threshold float64) (bool, error) {
	score, err := item.Similarity(query)
	if err != nil {
		return false, err
	}
	return score >= threshold, nil
}

// SearchMinHashesContainment matches items containing at least threshold
// of query.
func SearchMinHashesContainment[T Comparable[T]](item T, query T, threshold float64) (bool, error) {
	score, err := query.Containment(item)
	if err != nil {
		return false, err
	}
	return score >= threshold, nil
}

// Find returns the items of idx for which fn holds, in SignatureRefs order.
// The first predicate error aborts the scan and is returned.
func Find[T Comparable[T]](idx Index[T], fn SearchFunc[T], query T, threshold float64) ([]T, error) {
	var matches []T
	for i, item := range idx.SignatureRefs() {
		ok, err := fn(item, query, threshold)
		if err != nil {
			return nil, fmt.Errorf("find: item %d: %w", i, err)
		}
		if ok {
			matches = append(matches, item)
		}
	}
	return matches, nil
}

// Search finds items similar to query, or containing it when containment
// is set.
func Search[T Comparable[T]](idx Index[T], query T, threshold float64, containment bool) ([]T, error) {
	if containment {
		return Find(idx, SearchMinHashesContainment[T], query, threshold)
	}
	return Find(idx, SearchMinHashes[T], query, threshold)
}

// BatchInsert inserts items in order. It stops at the first failure and
// leaves earlier insertions in place.
func BatchInsert[T Comparable[T]](idx Index[T], items []T) error {
	for i, item := range items {
		if err := idx.Insert(item); err != nil {
			return fmt.Errorf("batch insert: item %d: %w", i, err)
		}
	}
	return nil
}

// Match is a scored reference to an index item.
type Match struct {
	Score float64
	Item  *SigStore
}

// Traverser is implemented by indices that drive a JaccardSearch themselves,
// which lets best-only searches prune as the threshold rises.
type Traverser interface {
	SearchWith(ctx context.Context, js *JaccardSearch, query *SigStore) ([]Match, error)
}
