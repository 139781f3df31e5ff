//go:build !nobuild

package compress

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstdEncoderPool pools zstd encoders; the klauspost library is designed to
// operate without allocations after warmup when the encoder is reused.
var zstdEncoderPool = sync.Pool{
	New: func() any {
		encoder, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderCRC(false),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
		}
		return encoder
	},
}

var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}
		return decoder
	},
}

// Compress compresses data into a single zstd frame using a pooled encoder.
func (c ZstdCodec) Compress(data []byte) ([]byte, error) {
	encoder := zstdEncoderPool.Get().(*zstd.Encoder)
	defer zstdEncoderPool.Put(encoder)

	// EncodeAll is stateless, safe with a pooled encoder
	return encoder.EncodeAll(data, nil), nil
}

// Decompress decompresses a single zstd frame using a pooled decoder.
func (c ZstdCodec) Decompress(data []byte) ([]byte, error) {
	decoder := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(decoder)

	out, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}

	return out, nil
}
