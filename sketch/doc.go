// Package sketch holds the signature model the index core compares.
//
// A Signature carries one or more sketches. MinHash sketches are the only kind
// the comparison code understands; slots of any other kind decode into an
// OpaqueSketch so they survive a load/save cycle untouched.
//
// # Sketch Selection
//
// Every comparison picks one MinHash per signature through a Selector:
//
//   - FirstSlot: the first sketch, which must be a MinHash (default)
//   - ByKSize: the first MinHash with a given k-mer size
//
// Mismatched or missing sketches produce an *IncompatibleError, which
// satisfies errors.Is(err, ErrIncompatible).
//
// # Wire Format
//
// Signatures marshal to the sourmash JSON layout:
//
//	[{"class":"sourmash_signature","name":"...","filename":"...",
//	  "hash_function":"0.murmur64","license":"CC0","version":0.4,
//	  "signatures":[{"num":0,"ksize":31,"seed":42,"max_hash":18446744073709552,
//	                 "mins":[...],"md5sum":"...","molecule":"DNA"}]}]
package sketch
