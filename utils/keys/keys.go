package keys

import (
	"encoding/binary"
)

// Uint64ToKey constructs a fixed-width key from a uint64. Keys
// built this way sort in numeric order under byte comparison.
func Uint64ToKey(i uint64) [8]byte {
	var k [8]byte

	binary.BigEndian.PutUint64(k[:], i)

	return k
}

// KeyToUint64 constructs a uint64 from a key built with Uint64ToKey
func KeyToUint64(k []byte) (uint64, bool) {
	if len(k) != 8 {
		return 0, false
	}

	return binary.BigEndian.Uint64(k), true
}
