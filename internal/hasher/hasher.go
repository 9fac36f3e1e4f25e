package hasher

import (
	"encoding/hex"

	"github.com/cespare/xxhash/v2"
)

// Sum64 computes the xxHash64 of a pixel buffer. Used as the content
// hash for region and frame deduplication; equal hashes are verified
// by byte comparison before two buffers are treated as interchangeable.
func Sum64(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Digest renders a 64-bit content hash as a hex string truncated to
// hexLen characters. Used for human-readable region ids in the
// packer-internal manifest.
func Digest(h uint64, hexLen int) string {
	full := hex.EncodeToString(uint64ToBytes(h))
	if hexLen > 0 && hexLen < len(full) {
		return full[:hexLen]
	}
	return full
}

func uint64ToBytes(v uint64) []byte {
	b := make([]byte, 8)
	b[0] = byte(v >> 56)
	b[1] = byte(v >> 48)
	b[2] = byte(v >> 40)
	b[3] = byte(v >> 32)
	b[4] = byte(v >> 24)
	b[5] = byte(v >> 16)
	b[6] = byte(v >> 8)
	b[7] = byte(v)
	return b
}
