package pak

import (
	"io"

	"github.com/gopak/gopak/compress"
	"github.com/gopak/gopak/crypt"
	"github.com/gopak/gopak/format"
	"github.com/gopak/gopak/internal/options"
)

// Builder configures readers and writers. The zero configuration reads and
// writes unencrypted archives and stores entries uncompressed.
type Builder struct {
	key     *crypt.Key
	allowed []format.Compression
	oodle   compress.Codec
}

// Option configures a Builder.
type Option = options.Option[*Builder]

// WithKey sets the AES-256 key used to decrypt indices and payloads on read
// and to encrypt them on write. The key is scoped to this builder; nothing
// is processed globally.
func WithKey(key *crypt.Key) Option {
	return options.NoError(func(b *Builder) {
		b.key = key
	})
}

// WithKeyString parses and sets the AES-256 key from its hex or base64 form.
func WithKeyString(s string) Option {
	return options.New(func(b *Builder) error {
		key, err := crypt.ParseKey(s)
		if err != nil {
			return err
		}
		b.key = key

		return nil
	})
}

// WithCompression sets the codecs a writer may try, in preference order.
func WithCompression(cs ...format.Compression) Option {
	return options.NoError(func(b *Builder) {
		b.allowed = append([]format.Compression(nil), cs...)
	})
}

// WithOodle supplies an external Oodle implementation; without one, entries
// in an Oodle slot fail with errs.ErrUnsupportedCodec.
func WithOodle(codec compress.Codec) Option {
	return options.NoError(func(b *Builder) {
		b.oodle = codec
	})
}

// NewBuilder creates a Builder with the given options.
func NewBuilder(opts ...Option) (*Builder, error) {
	b := &Builder{}
	if err := options.Apply(b, opts...); err != nil {
		return nil, err
	}

	return b, nil
}

func (b *Builder) codecs() codecSet {
	return codecSet{oodle: b.oodle}
}

// Reader opens an archive, probing for its version.
func (b *Builder) Reader(src io.ReadSeeker) (*Reader, error) {
	return newReaderProbe(src, b.key, b.codecs())
}

// ReaderWithVersion opens an archive at a known version, skipping the probe.
func (b *Builder) ReaderWithVersion(src io.ReadSeeker, v format.Version) (*Reader, error) {
	return newReaderVersion(src, v, b.key, b.codecs())
}

// Writer creates an empty archive writer. pathHashSeed only matters from
// V10 on.
func (b *Builder) Writer(sink io.WriteSeeker, v format.Version, mountPoint string, pathHashSeed uint64) *Writer {
	return newWriter(sink, b.key, v, mountPoint, pathHashSeed, b.allowed, b.codecs())
}

// IntoWriter turns a parsed archive back into a writer positioned at its
// index offset, so further entries overwrite the old index region and a new
// index is written on finalization.
func (r *Reader) IntoWriter(sink io.WriteSeeker) (*Writer, error) {
	if _, err := sink.Seek(int64(r.pak.indexOffset), io.SeekStart); err != nil {
		return nil, err
	}
	allowed := make([]format.Compression, 0, len(r.pak.compression))
	for _, c := range r.pak.compression {
		if c != 0 {
			allowed = append(allowed, c)
		}
	}

	return &Writer{
		pak:     r.pak,
		w:       sink,
		key:     r.key,
		allowed: allowed,
		codecs:  r.codecs,
	}, nil
}
