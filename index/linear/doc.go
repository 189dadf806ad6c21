// Package linear provides a linear-scan sketch index.
//
// Every query is compared against every item. Items are SigStore handles;
// an index restored with Load holds unloaded handles that read their
// signature from storage on first use.
//
//	idx := linear.New(func(o *linear.Options) {
//	    o.Storage = storage.NewLocalStore("/data/db")
//	})
//	_ = idx.Insert(index.FromSignature(sig))
//	_ = idx.Save(ctx, "db.manifest")
//
//	js := index.NewJaccardSearchWithThreshold(index.SearchTypeContainment, 0.1)
//	js.SetBestOnly(true)
//	matches, err := idx.SearchWith(ctx, js, query)
package linear
