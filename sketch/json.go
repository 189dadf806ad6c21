package sketch

import (
	"fmt"

	gojson "github.com/goccy/go-json"
)

type minHashJSON struct {
	Num        uint32   `json:"num"`
	KSize      uint32   `json:"ksize"`
	Seed       uint64   `json:"seed"`
	MaxHash    uint64   `json:"max_hash"`
	Mins       []uint64 `json:"mins"`
	Abundances []uint64 `json:"abundances,omitempty"`
	MD5Sum     string   `json:"md5sum"`
	Molecule   string   `json:"molecule"`
}

// MarshalJSON encodes the sketch in the sourmash layout.
func (m *MinHash) MarshalJSON() ([]byte, error) {
	w := minHashJSON{
		Num:      m.num,
		KSize:    m.ksize,
		Seed:     m.seed,
		MaxHash:  m.maxHash,
		Mins:     m.Mins(),
		MD5Sum:   m.MD5Sum(),
		Molecule: m.molecule,
	}
	if w.Mins == nil {
		w.Mins = []uint64{}
	}
	if m.abunds != nil {
		w.Abundances = make([]uint64, len(w.Mins))
		for i, h := range w.Mins {
			w.Abundances[i] = m.abunds[h]
		}
	}
	return gojson.Marshal(w)
}

// UnmarshalJSON decodes the sourmash layout.
func (m *MinHash) UnmarshalJSON(b []byte) error {
	var w minHashJSON
	if err := gojson.Unmarshal(b, &w); err != nil {
		return err
	}
	if w.Abundances != nil && len(w.Abundances) != len(w.Mins) {
		return fmt.Errorf("%w: %d abundances for %d mins", ErrMalformed, len(w.Abundances), len(w.Mins))
	}

	for i, a := range w.Abundances {
		if a == 0 {
			return fmt.Errorf("%w: zero abundance for hash %d", ErrMalformed, w.Mins[i])
		}
	}

	mh := NewMinHash(func(o *MinHashOptions) {
		o.KSize = w.KSize
		o.Num = w.Num
		o.Seed = w.Seed
		o.Molecule = w.Molecule
		o.TrackAbundance = w.Abundances != nil
	})
	mh.maxHash = w.MaxHash
	for i, h := range w.Mins {
		abund := uint64(1)
		if w.Abundances != nil {
			abund = w.Abundances[i]
		}
		mh.AddWithAbundance(h, abund)
	}

	*m = *mh
	return nil
}

type signatureJSON struct {
	Class        string              `json:"class"`
	Email        string              `json:"email"`
	HashFunction string              `json:"hash_function"`
	Filename     string              `json:"filename"`
	Name         string              `json:"name,omitempty"`
	License      string              `json:"license"`
	Version      float64             `json:"version"`
	Sketches     []gojson.RawMessage `json:"signatures"`
}

// MarshalJSON encodes the signature in the sourmash layout.
func (s *Signature) MarshalJSON() ([]byte, error) {
	w := signatureJSON{
		Class:        s.Class,
		Email:        s.Email,
		HashFunction: s.HashFunction,
		Filename:     s.Filename,
		Name:         s.Name,
		License:      s.License,
		Version:      s.Version,
		Sketches:     make([]gojson.RawMessage, 0, len(s.Sketches)),
	}
	for _, sk := range s.Sketches {
		raw, err := gojson.Marshal(sk)
		if err != nil {
			return nil, err
		}
		w.Sketches = append(w.Sketches, raw)
	}
	return gojson.Marshal(w)
}

// UnmarshalJSON decodes the sourmash layout. Slots carrying "mins" become
// MinHash sketches; anything else is kept as an OpaqueSketch.
func (s *Signature) UnmarshalJSON(b []byte) error {
	var w signatureJSON
	if err := gojson.Unmarshal(b, &w); err != nil {
		return err
	}
	if w.Sketches == nil {
		return fmt.Errorf("%w: missing signatures field", ErrMalformed)
	}

	sketches := make([]Sketch, 0, len(w.Sketches))
	for _, raw := range w.Sketches {
		var probe struct {
			Mins *[]uint64 `json:"mins"`
		}
		if err := gojson.Unmarshal(raw, &probe); err != nil {
			return err
		}
		if probe.Mins == nil {
			sketches = append(sketches, NewOpaqueSketch(raw))
			continue
		}

		mh := &MinHash{}
		if err := mh.UnmarshalJSON(raw); err != nil {
			return err
		}
		sketches = append(sketches, mh)
	}

	*s = Signature{
		Class:        w.Class,
		Email:        w.Email,
		HashFunction: w.HashFunction,
		Filename:     w.Filename,
		Name:         w.Name,
		License:      w.License,
		Version:      w.Version,
		Sketches:     sketches,
	}
	return nil
}
