package sketch

import "github.com/hupe1980/sketchdex/codec"

// Signature defaults written by NewSignature.
const (
	SignatureClass      = "sourmash_signature"
	DefaultHashFunction = "0.murmur64"
	DefaultLicense      = "CC0"
	SignatureVersion    = 0.4
)

// Signature is a named collection of sketches computed from one dataset.
type Signature struct {
	Class        string
	Email        string
	HashFunction string
	Filename     string
	Name         string
	License      string
	Version      float64
	Sketches     []Sketch
}

// NewSignature creates a signature with the default header fields.
func NewSignature(name, filename string, sketches ...Sketch) *Signature {
	return &Signature{
		Class:        SignatureClass,
		HashFunction: DefaultHashFunction,
		Filename:     filename,
		Name:         name,
		License:      DefaultLicense,
		Version:      SignatureVersion,
		Sketches:     sketches,
	}
}

// DisplayName returns the name, else the filename, else the first eight
// characters of the md5sum.
func (s *Signature) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	if s.Filename != "" {
		return s.Filename
	}
	if md5 := s.MD5Sum(); len(md5) >= 8 {
		return md5[:8]
	}
	return ""
}

// FirstMinHash returns the first MinHash slot, whatever its position.
func (s *Signature) FirstMinHash() (*MinHash, bool) {
	for _, sk := range s.Sketches {
		if mh, ok := sk.(*MinHash); ok {
			return mh, true
		}
	}
	return nil, false
}

// MD5Sum returns the md5 of the first MinHash slot, or "" if there is none.
func (s *Signature) MD5Sum() string {
	mh, ok := s.FirstMinHash()
	if !ok {
		return ""
	}
	return mh.MD5Sum()
}

// Clone returns a deep copy. Opaque slots are shared; they are immutable.
func (s *Signature) Clone() *Signature {
	c := *s
	c.Sketches = make([]Sketch, len(s.Sketches))
	for i, sk := range s.Sketches {
		if mh, ok := sk.(*MinHash); ok {
			c.Sketches[i] = mh.Clone()
			continue
		}
		c.Sketches[i] = sk
	}
	return &c
}

// LoadSignatures decodes raw bytes as a list of signatures, falling back to a
// single signature.
func LoadSignatures(c codec.Codec, raw []byte) ([]*Signature, error) {
	if c == nil {
		c = codec.Default
	}

	var sigs []*Signature
	listErr := c.Unmarshal(raw, &sigs)
	if listErr == nil {
		return sigs, nil
	}

	var sig Signature
	if err := c.Unmarshal(raw, &sig); err != nil {
		return nil, err
	}
	return []*Signature{&sig}, nil
}

// MarshalSignatures encodes signatures as a JSON list.
func MarshalSignatures(c codec.Codec, sigs ...*Signature) ([]byte, error) {
	if c == nil {
		c = codec.Default
	}
	if sigs == nil {
		sigs = []*Signature{}
	}
	return c.Marshal(sigs)
}
