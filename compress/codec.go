package compress

import (
	"fmt"

	"github.com/gopak/gopak/format"
)

// Compressor compresses one block of entry payload.
//
// Memory management:
//   - The returned slice is newly allocated and owned by the caller.
//   - The input slice is not modified.
//   - Internal state may be pooled for reuse.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor decompresses one block of entry payload.
//
// The input must be a complete unit of the codec's format (one stream, frame
// or block); the decoder validates it and returns an error on corruption.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions. All archive codecs implement it.
type Codec interface {
	Compressor
	Decompressor
}

// GetCodec returns the built-in Codec for the given algorithm.
//
// An Oodle lookup succeeds and returns a codec whose operations fail with
// errs.ErrUnsupportedCodec; callers with an external Oodle implementation
// substitute their own Codec instead. This keeps archives with an Oodle slot
// readable as long as no entry uses it.
func GetCodec(c format.Compression) (Codec, error) {
	switch c {
	case format.CompressionZlib:
		return ZlibCodec{}, nil
	case format.CompressionGzip:
		return GzipCodec{}, nil
	case format.CompressionZstd:
		return ZstdCodec{}, nil
	case format.CompressionLZ4:
		return LZ4Codec{}, nil
	case format.CompressionOodle:
		return OodleCodec{}, nil
	default:
		return nil, fmt.Errorf("invalid compression: %s", c)
	}
}
