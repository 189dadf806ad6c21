package index

// Comparable is implemented by items that can be scored against another
// item of the same type. Both scores lie in [0, 1].
type Comparable[T any] interface {
	// Similarity returns the overlap of both items normalized by their union.
	Similarity(other T) (float64, error)

	// Containment returns the fraction of the receiver found in other.
	Containment(other T) (float64, error)
}
