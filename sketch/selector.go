package sketch

import "fmt"

// Selector picks the MinHash a comparison uses from a signature.
type Selector func(sig *Signature) (*MinHash, error)

// FirstSlot selects the first sketch slot, which must be a MinHash.
func FirstSlot(sig *Signature) (*MinHash, error) {
	if sig == nil || len(sig.Sketches) == 0 {
		return nil, incompatible("signature has no sketches")
	}
	mh, ok := sig.Sketches[0].(*MinHash)
	if !ok {
		return nil, incompatible(fmt.Sprintf("first sketch is %s, not MinHash", sig.Sketches[0].Kind()))
	}
	return mh, nil
}

// ByKSize selects the first MinHash with the given k-mer size.
func ByKSize(ksize uint32) Selector {
	return func(sig *Signature) (*MinHash, error) {
		if sig != nil {
			for _, sk := range sig.Sketches {
				if mh, ok := sk.(*MinHash); ok && mh.ksize == ksize {
					return mh, nil
				}
			}
		}
		return nil, incompatible(fmt.Sprintf("no MinHash with ksize %d", ksize))
	}
}
