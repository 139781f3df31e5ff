//go:build nobuild

package compress

import (
	"github.com/valyala/gozstd"
)

// Compress compresses data into a single zstd frame via the cgo binding.
func (c ZstdCodec) Compress(data []byte) ([]byte, error) {
	return gozstd.CompressLevel(nil, data, 3), nil
}

// Decompress decompresses a single zstd frame via the cgo binding.
func (c ZstdCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return gozstd.Decompress(nil, data)
}
