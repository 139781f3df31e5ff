package format

import (
	"fmt"
	"strings"
)

// Compression identifies a block compression algorithm by its on-disk name.
//
// The archive footer stores algorithm names as fixed 32-byte NUL-padded
// strings; Compression is the in-memory tag for those names. Slot 0 of the
// per-archive slot table is always "uncompressed" and has no Compression
// value.
type Compression uint8

const (
	CompressionZlib  Compression = iota + 1 // CompressionZlib is an RFC 1950 stream per block.
	CompressionGzip                         // CompressionGzip is an RFC 1952 stream per block.
	CompressionZstd                         // CompressionZstd is a Zstandard frame per block.
	CompressionLZ4                          // CompressionLZ4 is the LZ4 block format per block.
	CompressionOodle                        // CompressionOodle is the proprietary Oodle codec.
)

// Compressions lists every known algorithm in slot-name order.
var Compressions = []Compression{
	CompressionZlib,
	CompressionGzip,
	CompressionZstd,
	CompressionLZ4,
	CompressionOodle,
}

func (c Compression) String() string {
	switch c {
	case CompressionZlib:
		return "Zlib"
	case CompressionGzip:
		return "Gzip"
	case CompressionZstd:
		return "Zstd"
	case CompressionLZ4:
		return "LZ4"
	case CompressionOodle:
		return "Oodle"
	default:
		return "Unknown"
	}
}

// ParseCompression resolves an on-disk slot name to its Compression tag.
// Matching is case-insensitive since game tooling is inconsistent about it.
//
// Returns:
//   - Compression: The matching algorithm tag.
//   - error: An error when the name matches no known algorithm.
func ParseCompression(name string) (Compression, error) {
	for _, c := range Compressions {
		if strings.EqualFold(name, c.String()) {
			return c, nil
		}
	}

	return 0, fmt.Errorf("unknown compression name: %q", name)
}
