package pak

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gopak/gopak/errs"
	"github.com/gopak/gopak/format"
)

func slotPtr(v uint32) *uint32 { return &v }

func TestEntryHeaderRoundTripUncompressed(t *testing.T) {
	for _, v := range format.Versions {
		e := &Entry{
			Offset:       512,
			Compressed:   42,
			Uncompressed: 42,
		}
		if v.HasEntryHash() {
			e.Hash = new([format.HashSize]byte)
			e.Hash[0] = 0xAA
		}
		if v.HasTimestamps() {
			ts := uint64(1234567890)
			e.Timestamp = &ts
		}

		var buf bytes.Buffer
		require.NoError(t, e.write(&buf, v, locationIndex))
		require.Equal(t, e.headerSize(v), uint64(buf.Len()), "header size at %s", v)

		got, err := readEntry(bytes.NewReader(buf.Bytes()), v, locationIndex, 0)
		require.NoError(t, err, "read at %s", v)
		require.Equal(t, e, got, "round trip at %s", v)
	}
}

func TestEntryHeaderRoundTripCompressed(t *testing.T) {
	for _, v := range format.Versions {
		e := &Entry{
			Offset:               4096,
			Compressed:           150,
			Uncompressed:         400,
			CompressionSlot:      slotPtr(0),
			Flags:                entryFlagEncrypted,
			CompressionBlockSize: DefaultCompressionBlockSize,
		}
		start := entryHeaderSize(v, true, 2)
		e.Blocks = []Block{
			{Start: start, End: start + 100},
			{Start: start + 112, End: start + 162},
		}
		if v.HasEntryHash() {
			e.Hash = new([format.HashSize]byte)
		}
		if v.HasTimestamps() {
			e.Timestamp = new(uint64)
		}

		var buf bytes.Buffer
		require.NoError(t, e.write(&buf, v, locationData))
		require.Equal(t, e.headerSize(v), uint64(buf.Len()), "header size at %s", v)

		got, err := readEntry(bytes.NewReader(buf.Bytes()), v, locationData, e.Offset)
		require.NoError(t, err, "read at %s", v)
		require.Equal(t, e, got, "blocks must come back entry-relative at %s", v)
	}
}

func TestEntryDataHeaderOffsetValidation(t *testing.T) {
	e := &Entry{Offset: 777, Compressed: 1, Uncompressed: 1}

	var buf bytes.Buffer
	require.NoError(t, e.write(&buf, format.V11, locationIndex)) // writes the real offset

	// reading the same bytes as a data header at the right position is fine
	_, err := readEntry(bytes.NewReader(buf.Bytes()), format.V11, locationData, 777)
	require.NoError(t, err)

	// at any other position the redundant offset is a corruption signal
	_, err = readEntry(bytes.NewReader(buf.Bytes()), format.V11, locationData, 778)
	require.ErrorIs(t, err, errs.ErrCorruptEntry)
}

// Encoded form of a small compressed entry, byte for byte: flag word
// 0x00800060 (block size 65536/2048=32, one block, slot value 1, all sizes
// 32-bit), then offset 1000, uncompressed 300, compressed 100.
func TestEncodedEntryExactBytes(t *testing.T) {
	e := &Entry{
		Offset:               1000,
		Compressed:           100,
		Uncompressed:         300,
		CompressionSlot:      slotPtr(0),
		CompressionBlockSize: DefaultCompressionBlockSize,
		Blocks:               []Block{{Start: 53, End: 153}},
	}

	var buf bytes.Buffer
	require.NoError(t, e.writeEncoded(&buf))
	require.Equal(t, []byte{
		0x60, 0x00, 0x80, 0x00,
		0xE8, 0x03, 0x00, 0x00,
		0x2C, 0x01, 0x00, 0x00,
		0x64, 0x00, 0x00, 0x00,
	}, buf.Bytes())
}

func TestEncodedEntryRoundTrip(t *testing.T) {
	e := &Entry{
		Offset:               1000,
		Compressed:           100,
		Uncompressed:         300,
		CompressionSlot:      slotPtr(0),
		CompressionBlockSize: DefaultCompressionBlockSize,
		Blocks:               []Block{{Start: entryHeaderSize(format.V11, true, 1), End: entryHeaderSize(format.V11, true, 1) + 100}},
	}

	var buf bytes.Buffer
	require.NoError(t, e.writeEncoded(&buf))

	got, err := readEncodedEntry(bytes.NewReader(buf.Bytes()), format.V11)
	require.NoError(t, err)
	require.Equal(t, e.Offset, got.Offset)
	require.Equal(t, e.Compressed, got.Compressed)
	require.Equal(t, e.Uncompressed, got.Uncompressed)
	require.Equal(t, *e.CompressionSlot, *got.CompressionSlot)
	require.Equal(t, e.CompressionBlockSize, got.CompressionBlockSize)
	// a single unencrypted block is reconstructed exactly
	require.Equal(t, e.Blocks, got.Blocks)
}

func TestEncodedEntryUncompressed(t *testing.T) {
	e := &Entry{Offset: 64, Compressed: 9, Uncompressed: 9}

	var buf bytes.Buffer
	require.NoError(t, e.writeEncoded(&buf))
	// flag word + offset + uncompressed; compressed is elided
	require.Equal(t, 12, buf.Len())

	got, err := readEncodedEntry(bytes.NewReader(buf.Bytes()), format.V11)
	require.NoError(t, err)
	require.Nil(t, got.CompressionSlot)
	require.Equal(t, uint64(9), got.Compressed, "compressed mirrors uncompressed")
	require.Equal(t, uint64(9), got.Uncompressed)
}

func TestEncodedEntryWideFields(t *testing.T) {
	const big = uint64(5) << 30 // 5 GiB, needs 64 bits
	e := &Entry{
		Offset:               big,
		Compressed:           big + 1,
		Uncompressed:         big + 2,
		CompressionSlot:      slotPtr(2),
		CompressionBlockSize: DefaultCompressionBlockSize,
		encodedBlockCount:    3,
		Flags:                entryFlagEncrypted,
	}

	var buf bytes.Buffer
	require.NoError(t, e.writeEncoded(&buf))
	// flag word + three 64-bit fields
	require.Equal(t, 4+8+8+8, buf.Len())

	got, err := readEncodedEntry(bytes.NewReader(buf.Bytes()), format.V11)
	require.NoError(t, err)
	require.Equal(t, e.Offset, got.Offset)
	require.Equal(t, e.Compressed, got.Compressed)
	require.Equal(t, e.Uncompressed, got.Uncompressed)
	require.Equal(t, uint32(2), *got.CompressionSlot)
	require.True(t, got.IsEncrypted())
	require.Equal(t, uint32(3), got.blockCount())
	require.Nil(t, got.Blocks, "multi-block layouts come from the data header")
}

func TestEncodedEntryBlockCountPreserved(t *testing.T) {
	e := &Entry{
		Offset:               0,
		Compressed:           200000,
		Uncompressed:         300000,
		CompressionSlot:      slotPtr(0),
		CompressionBlockSize: DefaultCompressionBlockSize,
		encodedBlockCount:    5,
	}

	var buf bytes.Buffer
	require.NoError(t, e.writeEncoded(&buf))
	got, err := readEncodedEntry(bytes.NewReader(buf.Bytes()), format.V11)
	require.NoError(t, err)

	// re-encoding an entry that came from the packed form keeps its count
	var buf2 bytes.Buffer
	require.NoError(t, got.writeEncoded(&buf2))
	require.Equal(t, buf.Bytes(), buf2.Bytes())
}
