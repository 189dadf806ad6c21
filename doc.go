// Package sketchdex searches collections of MinHash signatures.
//
// A database is an index of signatures, kept in memory or in a
// storage.Storage and loaded lazily. Search finds the signatures similar to
// a query, or containing it; Gather explains a query (typically a
// metagenome) as a set of the database signatures it contains.
//
// # Quick Start
//
//	ctx := context.Background()
//	st := storage.NewLocalStore("./db")
//	db, _ := sketchdex.OpenDatabase(ctx, st, "genomes.manifest")
//
//	results, _ := sketchdex.Search(ctx, query, []sketchdex.Database{db},
//	    sketchdex.WithThreshold(0.1),
//	    sketchdex.WithContainment(true),
//	)
//	for _, r := range results {
//	    fmt.Println(r.Similarity, r.Name, r.Filename)
//	}
//
// # Gather
//
//	rounds, _ := sketchdex.Gather(ctx, metagenome, dbs,
//	    sketchdex.WithThresholdBP(50_000),
//	)
//	for _, r := range rounds {
//	    fmt.Println(sketchdex.FormatBP(float64(r.IntersectBP)), r.FUniqueWeighted, r.Name)
//	}
//
// # Storage
//
// Signatures and manifests live in any storage.Storage: local files, S3,
// MinIO or Redis, optionally wrapped with storage.CachingStore,
// storage.CompressedStore or storage.ThrottledStore.
//
// # Observability
//
//	sketchdex.Search(ctx, q, dbs,
//	    sketchdex.WithLogger(sketchdex.NewZapLogger(zapLogger, slog.LevelInfo)),
//	    sketchdex.WithMetricsCollector(&sketchdex.BasicMetricsCollector{}),
//	)
package sketchdex
