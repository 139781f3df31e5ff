// Package compress provides the block compression codecs used by archive
// entries.
//
// An entry's payload is split into fixed-size blocks (except the last) and
// each block is compressed independently; the concatenation of the decoded
// blocks is the payload. The archive's footer names the algorithm per slot,
// so the codec set is closed:
//
//   - Zlib: RFC 1950 stream per block
//   - Gzip: RFC 1952 stream per block
//   - Zstd: Zstandard frame per block (level 3 on encode)
//   - LZ4: LZ4 block format per block
//   - Oodle: proprietary; decode only via an externally supplied codec
//
// The package defines two single-method interfaces plus their combination:
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// Codecs are stateless values safe for concurrent use; implementations pool
// their internal encoder and decoder state.
//
// A slot may name an algorithm that is unavailable at runtime (Oodle without
// a supplied implementation). Looking such a codec up succeeds; the error
// surfaces only when a block actually passes through it.
package compress
