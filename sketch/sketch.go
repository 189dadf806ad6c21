package sketch

import gojson "github.com/goccy/go-json"

// Kind identifies the sketch type stored in a signature slot.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindMinHash
)

// String returns a string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindMinHash:
		return "MinHash"
	default:
		return "Unknown"
	}
}

// Sketch is one slot of a signature.
type Sketch interface {
	Kind() Kind
}

// OpaqueSketch preserves a sketch slot this package cannot interpret.
type OpaqueSketch struct {
	raw gojson.RawMessage
}

var _ Sketch = (*OpaqueSketch)(nil)

// NewOpaqueSketch wraps raw JSON as an uninterpreted sketch.
func NewOpaqueSketch(raw []byte) *OpaqueSketch {
	return &OpaqueSketch{raw: append(gojson.RawMessage(nil), raw...)}
}

// Kind implements Sketch.
func (*OpaqueSketch) Kind() Kind { return KindUnknown }

// MarshalJSON returns the preserved bytes.
func (o *OpaqueSketch) MarshalJSON() ([]byte, error) {
	if len(o.raw) == 0 {
		return []byte("{}"), nil
	}
	return o.raw, nil
}
