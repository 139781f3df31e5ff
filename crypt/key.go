// Package crypt implements the archive's cryptographic primitives: AES-256
// key parsing, ECB block encryption of 16-byte-aligned buffers, and the
// SHA-1 digests the format embeds for integrity.
package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/gopak/gopak/errs"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// Key is a parsed AES-256 key ready for index and payload encryption.
type Key struct {
	block cipher.Block
}

// ParseKey parses a 256-bit AES key from its textual form.
//
// The string is tried as hex first (an optional "0x" prefix is allowed),
// then as standard-alphabet base64 with optional padding. The decoded bytes
// have each 4-byte group reversed before key construction; this byte-order
// quirk is required for compatibility with existing archives.
//
// Returns:
//   - *Key: The parsed key.
//   - error: errs.ErrInvalidKey when neither decoding yields 32 bytes.
func ParseKey(s string) (*Key, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		raw, err = base64.StdEncoding.WithPadding(base64.NoPadding).
			DecodeString(strings.TrimRight(s, "="))
		if err != nil {
			return nil, fmt.Errorf("%w: not hex or base64", errs.ErrInvalidKey)
		}
	}
	if len(raw) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", errs.ErrInvalidKey, len(raw), KeySize)
	}

	for i := 0; i+4 <= len(raw); i += 4 {
		raw[i], raw[i+3] = raw[i+3], raw[i]
		raw[i+1], raw[i+2] = raw[i+2], raw[i+1]
	}

	block, err := aes.NewCipher(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidKey, err)
	}

	return &Key{block: block}, nil
}

// NewKey constructs a Key from 32 raw bytes, applied as-is with no byte-order
// adjustment.
func NewKey(raw []byte) (*Key, error) {
	block, err := aes.NewCipher(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidKey, err)
	}

	return &Key{block: block}, nil
}
