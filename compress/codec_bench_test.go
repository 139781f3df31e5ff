package compress

import (
	"testing"

	"github.com/gopak/gopak/format"
)

func benchCodec(b *testing.B, c format.Compression) {
	codec, err := GetCodec(c)
	if err != nil {
		b.Fatal(err)
	}
	payload := testPayload(64 * 1024)
	compressed, err := codec.Compress(payload)
	if err != nil {
		b.Fatal(err)
	}

	b.Run("compress", func(b *testing.B) {
		b.SetBytes(int64(len(payload)))
		for i := 0; i < b.N; i++ {
			if _, err := codec.Compress(payload); err != nil {
				b.Fatal(err)
			}
		}
	})
	b.Run("decompress", func(b *testing.B) {
		b.SetBytes(int64(len(payload)))
		for i := 0; i < b.N; i++ {
			if _, err := codec.Decompress(compressed); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func BenchmarkZlib(b *testing.B) { benchCodec(b, format.CompressionZlib) }
func BenchmarkGzip(b *testing.B) { benchCodec(b, format.CompressionGzip) }
func BenchmarkZstd(b *testing.B) { benchCodec(b, format.CompressionZstd) }
func BenchmarkLZ4(b *testing.B)  { benchCodec(b, format.CompressionLZ4) }
