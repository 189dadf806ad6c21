// Package hash provides checksums for stored payloads.
//
// All checksums use CRC32-Castagnoli (CRC32C), which Go computes with
// hardware instructions where available (SSE4.2, ARM CRC).
//
//	checksum := hash.CRC32C(data)
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	checksum := h.Sum32()
package hash
