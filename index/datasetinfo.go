package index

// DatasetInfo is the metadata record an index persists for each item.
type DatasetInfo struct {
	Filename string `json:"filename"`
	Name     string `json:"name"`
	Metadata string `json:"metadata"`
}

// SigStore returns an unloaded handle for the record. Storage must be
// attached before the first Data call.
func (d DatasetInfo) SigStore(opts ...SigStoreOption) *SigStore {
	return NewSigStore(d.Filename, d.Name, d.Metadata, opts...)
}
