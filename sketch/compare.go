package sketch

// Similarity compares the first sketch slots of both signatures.
func (s *Signature) Similarity(other *Signature) (float64, error) {
	return SimilarityWith(FirstSlot, s, other)
}

// Containment returns the fraction of this signature's first sketch found in
// other's first sketch.
func (s *Signature) Containment(other *Signature) (float64, error) {
	return ContainmentWith(FirstSlot, s, other)
}

// SimilarityWith returns the downsampled Jaccard similarity of the sketches
// chosen by sel.
func SimilarityWith(sel Selector, a, b *Signature) (float64, error) {
	ma, mb, err := selectPair(sel, a, b)
	if err != nil {
		return 0, err
	}
	return ma.Similarity(mb, true)
}

// ContainmentWith returns |A∩B| / |A| for the sketches chosen by sel.
func ContainmentWith(sel Selector, a, b *Signature) (float64, error) {
	ma, mb, err := selectPair(sel, a, b)
	if err != nil {
		return 0, err
	}
	return ma.Containment(mb, true)
}

// CountCommonWith returns the number of shared hashes of the sketches chosen
// by sel.
func CountCommonWith(sel Selector, a, b *Signature) (uint64, error) {
	ma, mb, err := selectPair(sel, a, b)
	if err != nil {
		return 0, err
	}
	return ma.CountCommon(mb, true)
}

func selectPair(sel Selector, a, b *Signature) (*MinHash, *MinHash, error) {
	if sel == nil {
		sel = FirstSlot
	}
	ma, err := sel(a)
	if err != nil {
		return nil, nil, err
	}
	mb, err := sel(b)
	if err != nil {
		return nil, nil, err
	}
	return ma, mb, nil
}
