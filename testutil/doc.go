// Package testutil provides testing utilities for sketchdex.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating deterministic random hashes, MinHash
// sketches and signatures.
//
// # Random Sketches
//
//	rng := testutil.NewRNG(seed)
//	hashes := rng.Hashes(100, sketch.MaxHashForScaled(1000))
//	sig := rng.ScaledSignature("genome-a", 100, 1000)
//
// # Known Overlap
//
//	a := testutil.Signature("a", 1, 2, 3, 4)
//	b := testutil.Signature("b", 3, 4, 5, 6)
package testutil
