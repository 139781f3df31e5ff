// Package hash provides the path hashing used by the modern index layout and
// a fast content fingerprint for tooling.
package hash

import (
	"encoding/binary"
	"strings"
	"unicode/utf16"

	"github.com/cespare/xxhash/v2"
)

const (
	fnvOffsetBasis uint64 = 0xcbf29ce484222325
	fnvPrime       uint64 = 0x00000100000001b3
)

// Fnv64 computes FNV-1a 64 over data with the seed added to the offset basis.
// A zero seed yields the standard FNV-1a digest.
func Fnv64(data []byte, seed uint64) uint64 {
	h := fnvOffsetBasis + seed
	for _, b := range data {
		h ^= uint64(b)
		h *= fnvPrime
	}

	return h
}

// Fnv64Path hashes a mount-rooted path the way the path-hash index expects:
// the path is lowercased, encoded as UTF-16LE, and fed to the seeded FNV-1a.
func Fnv64Path(path string, seed uint64) uint64 {
	units := utf16.Encode([]rune(strings.ToLower(path)))
	buf := make([]byte, len(units)*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(buf[i*2:], u)
	}

	return Fnv64(buf, seed)
}

// Fingerprint computes the xxHash64 of data. It is not part of the archive
// format; the CLI uses it for fast content comparison.
func Fingerprint(data []byte) uint64 {
	return xxhash.Sum64(data)
}
