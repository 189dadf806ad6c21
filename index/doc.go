// Package index defines the capability contracts shared by every sketch
// index and the search policy used to traverse them.
//
// # Comparable and Index
//
// Items held by an index are pointer types implementing Comparable over
// themselves, so a returned item is a reference to the index's own value.
// Concrete indices implement Index (Insert, Save, Load, Signatures,
// SignatureRefs) and get the generic algorithms as package functions:
//
//	matches, err := index.Search(idx, query, 0.8, false)
//	matches, err := index.Find(idx, index.SearchMinHashesContainment, query, 0.5)
//	err := index.BatchInsert(idx, items)
//
// # SigStore
//
// SigStore is a lazily materialized handle to a signature kept in a
// storage.Storage. The first Data call loads and decodes the signature;
// later calls return the cached value. Concurrent first access performs a
// single load. Failed loads are returned and not cached.
//
//	store := index.DatasetInfo{Filename: "a.sig"}.SigStore()
//	store.SetStorage(st)
//	sig, err := store.Data()
//
// # JaccardSearch
//
// JaccardSearch is a search policy shared by the branches of one traversal.
// It scores candidates with one of three metrics and, in best-only mode,
// raises its threshold to the best score seen so far:
//
//	js := index.NewJaccardSearchWithThreshold(index.SearchTypeContainment, 0.1)
//	js.SetBestOnly(true)
//	score, err := js.ScoreMinHashes(query, subject)
//	if js.Passes(score) && js.Collect(score, sig) {
//	    // keep
//	}
package index
