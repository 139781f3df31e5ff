package compress

import (
	"errors"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4CompressorPool pools lz4.Compressor instances; the compressor keeps an
// internal hash table that benefits from reuse.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Codec compresses blocks in the LZ4 block format (not framed).
type LZ4Codec struct{}

var _ Codec = (*LZ4Codec)(nil)

// Compress compresses data as one LZ4 block at the default level. Input that
// the block does not shrink yields empty output instead of an expanded block.
func (c LZ4Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}
	if n == 0 || n >= len(data) {
		// incompressible: report empty output rather than expanding it
		return nil, nil
	}

	return dst[:n], nil
}

// Decompress decompresses one LZ4 block.
//
// The block format does not carry the decompressed size, so the buffer
// starts at 4x the input and doubles on lz4.ErrInvalidSourceShortBuffer up
// to a 128MB cap; a block that was compressed by more than 4:1 needs at
// least one retry.
func (c LZ4Codec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	bufSize := len(data) * 4
	const maxSize = 128 * 1024 * 1024

	for bufSize <= maxSize {
		buf := make([]byte, bufSize)
		n, err := lz4.UncompressBlock(data, buf)
		if err != nil {
			if errors.Is(err, lz4.ErrInvalidSourceShortBuffer) && bufSize < maxSize {
				bufSize *= 2
				continue
			}

			return nil, err
		}

		return buf[:n], nil
	}

	return nil, lz4.ErrInvalidSourceShortBuffer
}
