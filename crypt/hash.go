package crypt

import "crypto/sha1"

// Sha1 returns the 20-byte SHA-1 digest of data. The format uses it for
// index integrity and, on versions that keep it, per-entry payload integrity.
func Sha1(data []byte) [sha1.Size]byte {
	return sha1.Sum(data)
}
