// Package gopak reads and writes PAK game-asset containers: a versioned
// binary archive format with optional AES-256 encryption, per-entry block
// compression, and dual index layouts (legacy flat below V10, path-hash plus
// full-directory from V10 on).
//
// # Basic Usage
//
// Reading an archive:
//
//	f, _ := os.Open("mod.pak")
//	defer f.Close()
//
//	builder, _ := gopak.NewBuilder()
//	reader, err := builder.Reader(f)
//	if err != nil {
//	    return err
//	}
//	for _, path := range reader.Files() {
//	    data, _ := reader.Get(path, f)
//	    fmt.Printf("%s: %d bytes\n", path, len(data))
//	}
//
// Writing an archive:
//
//	out, _ := os.Create("mod.pak")
//	builder, _ := gopak.NewBuilder(
//	    gopak.WithCompression(format.CompressionZstd),
//	)
//	writer := builder.Writer(out, format.V11, gopak.DefaultMountPoint, 0)
//	_ = writer.WriteFile("Game/Content/readme.txt", true, []byte("hello"))
//	if _, err := writer.WriteIndex(); err != nil {
//	    return err
//	}
//
// Encrypted archives pass the key at build time:
//
//	builder, _ := gopak.NewBuilder(gopak.WithKeyString("0x0C26...9D74"))
//
// The library performs no file management of its own: every operation takes
// the seekable source or sink explicitly, which is also what makes
// concurrent extraction safe (one open handle per goroutine).
//
// # Package Structure
//
// This package re-exports the most used names; the pak package holds the
// container logic, compress the block codecs, crypt the key handling, and
// format the version and algorithm enums.
package gopak

import (
	"github.com/gopak/gopak/compress"
	"github.com/gopak/gopak/crypt"
	"github.com/gopak/gopak/format"
	"github.com/gopak/gopak/pak"
)

// DefaultMountPoint is the conventional mount point of game archives.
const DefaultMountPoint = "../../../"

// Re-exported core types.
type (
	Builder      = pak.Builder
	Reader       = pak.Reader
	Writer       = pak.Writer
	Entry        = pak.Entry
	EntryBuilder = pak.EntryBuilder
	PartialEntry = pak.PartialEntry
	Option       = pak.Option
)

// NewBuilder creates a Builder with the given options.
func NewBuilder(opts ...Option) (*Builder, error) {
	return pak.NewBuilder(opts...)
}

// WithKey sets a parsed AES-256 key on the builder.
func WithKey(key *crypt.Key) Option {
	return pak.WithKey(key)
}

// WithKeyString parses and sets an AES-256 key from hex or base64.
func WithKeyString(s string) Option {
	return pak.WithKeyString(s)
}

// WithCompression sets the codecs a writer may try, in preference order.
func WithCompression(cs ...format.Compression) Option {
	return pak.WithCompression(cs...)
}

// WithOodle supplies an external Oodle codec implementation.
func WithOodle(codec compress.Codec) Option {
	return pak.WithOodle(codec)
}

// ParseKey parses an AES-256 key from its hex or base64 form.
func ParseKey(s string) (*crypt.Key, error) {
	return crypt.ParseKey(s)
}
