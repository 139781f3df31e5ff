package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// ZlibCodec compresses blocks as RFC 1950 streams at the default level.
type ZlibCodec struct{}

var _ Codec = (*ZlibCodec)(nil)

// Compress compresses data into a single zlib stream.
func (c ZlibCodec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decompress decompresses a single zlib stream.
func (c ZlibCodec) Decompress(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("zlib decompression failed: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("zlib decompression failed: %w", err)
	}

	return out, nil
}
