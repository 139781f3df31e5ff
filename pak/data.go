package pak

import (
	"errors"
	"fmt"
	"io"

	"github.com/gopak/gopak/compress"
	"github.com/gopak/gopak/crypt"
	"github.com/gopak/gopak/errs"
	"github.com/gopak/gopak/format"
)

// DefaultCompressionBlockSize is the uncompressed window size entries are
// split into when compressing.
const DefaultCompressionBlockSize = 64 * 1024

// codecSet resolves slot algorithms to codecs, honoring an externally
// supplied Oodle implementation.
type codecSet struct {
	oodle compress.Codec
}

func (cs codecSet) forCompression(c format.Compression) (compress.Codec, error) {
	if c == format.CompressionOodle && cs.oodle != nil {
		return cs.oodle, nil
	}

	return compress.GetCodec(c)
}

// partialBlock is one compressed block staged in memory. stored carries the
// on-disk bytes (padded and encrypted when a key is set); length is the
// exact compressed length before padding.
type partialBlock struct {
	stored []byte
	length uint64
}

// PartialEntry is an entry built off the writer thread: compressed, hashed,
// and (when a key is set) encrypted, but without a file position yet. The
// owning Writer assigns the offset when the entry is committed.
type PartialEntry struct {
	compression  *format.Compression
	uncompressed uint64
	compressed   uint64
	blockSize    uint32
	blocks       []partialBlock
	stored       []byte
	hash         [format.HashSize]byte
	encrypted    bool
}

// buildPartialEntry compresses, hashes and encrypts data in memory.
//
// The first codec in allowed whose blockwise output is smaller than the
// input wins; when none is (or allowed is empty) the entry is stored
// uncompressed.
func buildPartialEntry(allowed []format.Compression, codecs codecSet, key *crypt.Key, data []byte) (*PartialEntry, error) {
	pe := &PartialEntry{
		uncompressed: uint64(len(data)),
		hash:         crypt.Sha1(data),
		encrypted:    key != nil,
	}

	for _, c := range allowed {
		codec, err := codecs.forCompression(c)
		if err != nil {
			return nil, err
		}
		blocks, total, err := compressBlocks(codec, data)
		if errors.Is(err, errIncompressible) {
			// this codec cannot shrink the payload; try the next one
			continue
		}
		if err != nil {
			if errors.Is(err, errs.ErrUnsupportedCodec) {
				return nil, err
			}

			return nil, fmt.Errorf("%w: %s: %v", errs.ErrCompressionFailed, c, err)
		}
		if total < uint64(len(data)) {
			chosen := c
			pe.compression = &chosen
			pe.blocks = blocks
			pe.compressed = total
			pe.blockSize = DefaultCompressionBlockSize
			break
		}
	}

	if pe.compression == nil {
		pe.compressed = pe.uncompressed
		pe.stored = append([]byte(nil), data...)
		if key != nil {
			pe.stored = crypt.PadAlign16(pe.stored)
			if err := key.Encrypt(pe.stored); err != nil {
				return nil, err
			}
		}

		return pe, nil
	}

	if key != nil {
		for i := range pe.blocks {
			pe.blocks[i].stored = crypt.PadAlign16(pe.blocks[i].stored)
			if err := key.Encrypt(pe.blocks[i].stored); err != nil {
				return nil, err
			}
		}
	}

	return pe, nil
}

// errIncompressible marks a candidate codec that produced no usable output
// for a block (the LZ4 block encoder signals incompressible input this way).
var errIncompressible = errors.New("incompressible for candidate codec")

func compressBlocks(codec compress.Codec, data []byte) ([]partialBlock, uint64, error) {
	count := (len(data) + DefaultCompressionBlockSize - 1) / DefaultCompressionBlockSize
	if count == 0 {
		count = 1
	}
	blocks := make([]partialBlock, 0, count)
	var total uint64
	for start := 0; start < len(data) || start == 0; start += DefaultCompressionBlockSize {
		end := start + DefaultCompressionBlockSize
		if end > len(data) {
			end = len(data)
		}
		out, err := codec.Compress(data[start:end])
		if err != nil {
			return nil, 0, err
		}
		if len(out) == 0 && end > start {
			return nil, 0, errIncompressible
		}
		blocks = append(blocks, partialBlock{stored: out, length: uint64(len(out))})
		total += uint64(len(out))
	}

	return blocks, total, nil
}

// buildEntry turns the partial entry into a committed Entry at the given
// absolute offset, assigning a compression slot in the archive's table.
func (pe *PartialEntry) buildEntry(p *Pak, offset uint64) (*Entry, error) {
	e := &Entry{
		Offset:       offset,
		Compressed:   pe.compressed,
		Uncompressed: pe.uncompressed,
	}
	if pe.encrypted {
		e.Flags |= entryFlagEncrypted
	}
	if p.version.HasEntryHash() {
		e.Hash = new([format.HashSize]byte)
		*e.Hash = pe.hash
	}
	if p.version.HasTimestamps() {
		e.Timestamp = new(uint64)
	}

	if pe.compression != nil {
		slot, err := p.resolveSlot(*pe.compression)
		if err != nil {
			return nil, err
		}
		e.CompressionSlot = &slot
		e.CompressionBlockSize = pe.blockSize

		cursor := entryHeaderSize(p.version, true, uint32(len(pe.blocks)))
		e.Blocks = make([]Block, len(pe.blocks))
		for i, b := range pe.blocks {
			e.Blocks[i] = Block{Start: cursor, End: cursor + b.length}
			cursor += uint64(len(b.stored))
		}
	}

	return e, nil
}

// writeData streams the staged payload bytes to w.
func (pe *PartialEntry) writeData(w io.Writer) error {
	if pe.compression == nil {
		_, err := w.Write(pe.stored)

		return err
	}
	for _, b := range pe.blocks {
		if _, err := w.Write(b.stored); err != nil {
			return err
		}
	}

	return nil
}
