package pak

import (
	"fmt"
	"io"
	"math"

	"github.com/gopak/gopak/errs"
	"github.com/gopak/gopak/format"
	"github.com/gopak/gopak/internal/wire"
)

// entryFlagEncrypted marks an entry whose payload blocks are AES-encrypted.
const entryFlagEncrypted = 0x01

// invalidEncodedOffset marks an intentionally invalidated secondary-index
// slot; readers skip it without error.
const invalidEncodedOffset = 0x80000000

// Block is one compressed block's byte range. Offsets are relative to the
// entry header start; End-Start is the exact stored length, excluding any
// encryption padding between blocks.
type Block struct {
	Start uint64
	End   uint64
}

// Entry is the metadata for one file inside an archive.
type Entry struct {
	// Offset is the absolute byte position of the entry header.
	Offset       uint64
	Compressed   uint64
	Uncompressed uint64

	// CompressionSlot indexes the archive slot table; nil means stored
	// uncompressed.
	CompressionSlot *uint32

	// Timestamp is carried by V1 archives only.
	Timestamp *uint64

	// Hash is the SHA-1 of the uncompressed payload, absent from V11 on.
	Hash *[format.HashSize]byte

	// Blocks is the compressed block layout, nil when uncompressed. An entry
	// decoded from the packed index form (which keeps only the count) has
	// Blocks only when it holds a single unencrypted block.
	Blocks []Block

	Flags                uint8
	CompressionBlockSize uint32

	// encodedBlockCount preserves the block count of entries parsed from
	// the packed form, where the ranges themselves are not stored.
	encodedBlockCount uint32
}

// entryLocation selects the serialization shape of an entry header.
type entryLocation int

const (
	// locationData is the standalone header preceding the payload; its
	// leading offset field is written as zero.
	locationData entryLocation = iota
	// locationIndex is the legacy-index-embedded form carrying the real
	// payload offset.
	locationIndex
)

// IsEncrypted reports whether the payload blocks are encrypted.
func (e *Entry) IsEncrypted() bool {
	return e.Flags&entryFlagEncrypted != 0
}

// IsCompressed reports whether the entry occupies a compression slot.
func (e *Entry) IsCompressed() bool {
	return e.CompressionSlot != nil
}

func (e *Entry) blockCount() uint32 {
	if e.Blocks != nil {
		return uint32(len(e.Blocks))
	}

	return e.encodedBlockCount
}

// headerSize returns the serialized length of the entry header for the
// given version.
func (e *Entry) headerSize(v format.Version) uint64 {
	return entryHeaderSize(v, e.IsCompressed(), e.blockCount())
}

func entryHeaderSize(v format.Version, compressed bool, blockCount uint32) uint64 {
	size := uint64(8 + 8 + 8 + 4) // offset, compressed, uncompressed, slot
	if v.HasEntryHash() {
		size += format.HashSize
	}
	if v.HasTimestamps() {
		size += 8
	}
	if compressed {
		size += 4 + 16*uint64(blockCount)
	}
	size += 1 + 4 // flags, compression block size

	return size
}

// readEntry parses an entry header. pos is the absolute position of the
// header in the file; in the data location the leading offset field must be
// zero or equal to pos.
func readEntry(r io.Reader, v format.Version, loc entryLocation, pos uint64) (*Entry, error) {
	e := &Entry{}

	offsetField, err := wire.ReadU64(r)
	if err != nil {
		return nil, err
	}
	switch loc {
	case locationData:
		if offsetField != 0 && offsetField != pos {
			return nil, fmt.Errorf("%w: header offset field 0x%X at position 0x%X", errs.ErrCorruptEntry, offsetField, pos)
		}
		e.Offset = pos
	case locationIndex:
		e.Offset = offsetField
	}

	if e.Compressed, err = wire.ReadU64(r); err != nil {
		return nil, err
	}
	if e.Uncompressed, err = wire.ReadU64(r); err != nil {
		return nil, err
	}
	slotRaw, err := wire.ReadU32(r)
	if err != nil {
		return nil, err
	}
	if slotRaw != 0 {
		slot := slotRaw - 1
		e.CompressionSlot = &slot
	}

	if v.HasEntryHash() {
		hash, err := wire.ReadBytes(r, format.HashSize)
		if err != nil {
			return nil, err
		}
		e.Hash = new([format.HashSize]byte)
		copy(e.Hash[:], hash)
	}
	if v.HasTimestamps() {
		ts, err := wire.ReadU64(r)
		if err != nil {
			return nil, err
		}
		e.Timestamp = &ts
	}

	if e.CompressionSlot != nil {
		count, err := wire.ReadU32(r)
		if err != nil {
			return nil, err
		}
		e.Blocks = make([]Block, count)
		base := uint64(0)
		if !v.HasRelativeBlockOffsets() {
			// old versions store file-absolute ranges
			base = e.Offset
		}
		for i := range e.Blocks {
			start, err := wire.ReadU64(r)
			if err != nil {
				return nil, err
			}
			end, err := wire.ReadU64(r)
			if err != nil {
				return nil, err
			}
			if start < base || end < start {
				return nil, fmt.Errorf("%w: block %d range [%d, %d)", errs.ErrCorruptEntry, i, start, end)
			}
			e.Blocks[i] = Block{Start: start - base, End: end - base}
		}
	}

	if e.Flags, err = wire.ReadU8(r); err != nil {
		return nil, err
	}
	if e.CompressionBlockSize, err = wire.ReadU32(r); err != nil {
		return nil, err
	}

	return e, nil
}

// write serializes the entry header in the given location shape.
func (e *Entry) write(w io.Writer, v format.Version, loc entryLocation) error {
	offsetField := uint64(0)
	if loc == locationIndex {
		offsetField = e.Offset
	}
	if err := wire.WriteU64(w, offsetField); err != nil {
		return err
	}
	if err := wire.WriteU64(w, e.Compressed); err != nil {
		return err
	}
	if err := wire.WriteU64(w, e.Uncompressed); err != nil {
		return err
	}
	slotRaw := uint32(0)
	if e.CompressionSlot != nil {
		slotRaw = *e.CompressionSlot + 1
	}
	if err := wire.WriteU32(w, slotRaw); err != nil {
		return err
	}

	if v.HasEntryHash() {
		var hash [format.HashSize]byte
		if e.Hash != nil {
			hash = *e.Hash
		}
		if _, err := w.Write(hash[:]); err != nil {
			return err
		}
	}
	if v.HasTimestamps() {
		var ts uint64
		if e.Timestamp != nil {
			ts = *e.Timestamp
		}
		if err := wire.WriteU64(w, ts); err != nil {
			return err
		}
	}

	if e.CompressionSlot != nil {
		if err := wire.WriteU32(w, uint32(len(e.Blocks))); err != nil {
			return err
		}
		base := uint64(0)
		if !v.HasRelativeBlockOffsets() {
			base = e.Offset
		}
		for _, b := range e.Blocks {
			if err := wire.WriteU64(w, b.Start+base); err != nil {
				return err
			}
			if err := wire.WriteU64(w, b.End+base); err != nil {
				return err
			}
		}
	}

	if err := wire.WriteU8(w, e.Flags); err != nil {
		return err
	}

	return wire.WriteU32(w, e.CompressionBlockSize)
}

// readEncodedEntry parses the packed index form.
//
// Bit layout of the leading flag word:
//
//	bits  0-5   compression block size / 2048
//	bits  6-21  compression block count
//	bit   22    encrypted payload
//	bits 23-28  compression slot (0 = uncompressed)
//	bit   29    compressed size is 64-bit (else 32)
//	bit   30    offset is 64-bit (else 32)
//	bit   31    uncompressed size is 64-bit (else 32)
//
// The word is followed by offset, uncompressed, and (when a slot is set)
// compressed, each in its encoded width.
func readEncodedEntry(r io.Reader, v format.Version) (*Entry, error) {
	bits, err := wire.ReadU32(r)
	if err != nil {
		return nil, err
	}

	e := &Entry{
		CompressionBlockSize: (bits & 0x3f) << 11,
		encodedBlockCount:    (bits >> 6) & 0xffff,
	}
	if bits&(1<<22) != 0 {
		e.Flags |= entryFlagEncrypted
	}
	if slotRaw := (bits >> 23) & 0x3f; slotRaw != 0 {
		slot := slotRaw - 1
		e.CompressionSlot = &slot
	}

	readVar := func(wide bool) (uint64, error) {
		if wide {
			return wire.ReadU64(r)
		}
		v32, err := wire.ReadU32(r)

		return uint64(v32), err
	}

	if e.Offset, err = readVar(bits&(1<<30) != 0); err != nil {
		return nil, err
	}
	if e.Uncompressed, err = readVar(bits&(1<<31) != 0); err != nil {
		return nil, err
	}
	if e.CompressionSlot != nil {
		if e.Compressed, err = readVar(bits&(1<<29) != 0); err != nil {
			return nil, err
		}
	} else {
		e.Compressed = e.Uncompressed
	}

	// A single unencrypted block is fully determined by the sizes; larger
	// layouts are re-read from the data header before extraction.
	if e.encodedBlockCount == 1 && !e.IsEncrypted() {
		start := entryHeaderSize(v, true, 1)
		e.Blocks = []Block{{Start: start, End: start + e.Compressed}}
	}

	return e, nil
}

// writeEncoded serializes the packed index form.
func (e *Entry) writeEncoded(w io.Writer) error {
	bits := (e.CompressionBlockSize >> 11) & 0x3f
	bits |= (e.blockCount() & 0xffff) << 6
	if e.IsEncrypted() {
		bits |= 1 << 22
	}
	if e.CompressionSlot != nil {
		bits |= ((*e.CompressionSlot + 1) & 0x3f) << 23
	}
	wideCompressed := e.Compressed > math.MaxUint32
	wideOffset := e.Offset > math.MaxUint32
	wideUncompressed := e.Uncompressed > math.MaxUint32
	if wideCompressed {
		bits |= 1 << 29
	}
	if wideOffset {
		bits |= 1 << 30
	}
	if wideUncompressed {
		bits |= 1 << 31
	}
	if err := wire.WriteU32(w, bits); err != nil {
		return err
	}

	writeVar := func(v uint64, wide bool) error {
		if wide {
			return wire.WriteU64(w, v)
		}

		return wire.WriteU32(w, uint32(v))
	}

	if err := writeVar(e.Offset, wideOffset); err != nil {
		return err
	}
	if err := writeVar(e.Uncompressed, wideUncompressed); err != nil {
		return err
	}
	if e.CompressionSlot != nil {
		return writeVar(e.Compressed, wideCompressed)
	}

	return nil
}
