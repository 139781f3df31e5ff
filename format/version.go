package format

import "fmt"

// Magic is the 4-byte archive identifier stored little-endian in the footer,
// i.e. the byte sequence E1 12 6F 5A on disk.
const Magic uint32 = 0x5A6F12E1

// HashSize is the byte length of the SHA-1 digests embedded in the format.
const HashSize = 20

// CompressionNameSize is the fixed width of one NUL-padded slot name in the
// footer compression table.
const CompressionNameSize = 32

// Version enumerates the supported archive format revisions, including the
// V8 sub-variants that differ only in footer slot-table width.
type Version uint8

const (
	V1  Version = iota + 1 // V1 carries per-entry timestamps.
	V2                     // V2 drops timestamps and adds the encryption GUID.
	V3                     // V3 adds the encrypted-index flag.
	V4                     // V4 index encryption refinements; same layout as V3.
	V5                     // V5 switches block offsets to entry-relative.
	V6                     // V6 adds delete records; same layout as V5.
	V7                     // V7 adds the frozen byte.
	V8A                    // V8A adds a 4-slot compression name table.
	V8B                    // V8B widens the table to 5 slots.
	V9                     // V9 keeps the 5-slot table mandatory.
	V10                    // V10 introduces the path-hash and full-directory indices.
	V11                    // V11 drops the per-entry payload hash.
)

// Versions lists every supported version in ascending order.
var Versions = []Version{V1, V2, V3, V4, V5, V6, V7, V8A, V8B, V9, V10, V11}

// VersionsDescending lists every supported version from newest to oldest,
// which is also descending footer-size order. Version probing iterates this.
var VersionsDescending = []Version{V11, V10, V9, V8B, V8A, V7, V6, V5, V4, V3, V2, V1}

func (v Version) String() string {
	switch v {
	case V8A:
		return "V8A"
	case V8B:
		return "V8B"
	default:
		if v >= V1 && v <= V11 {
			n := int(v)
			if v > V8B {
				n-- // the two V8 sub-variants shift V9..V11 up by one
			}
			return fmt.Sprintf("V%d", n)
		}
		return "Unknown"
	}
}

// ParseVersion resolves a version name such as "V11" or "V8A".
func ParseVersion(name string) (Version, error) {
	for _, v := range Versions {
		if name == v.String() {
			return v, nil
		}
	}

	return 0, fmt.Errorf("unknown version: %q", name)
}

// Major returns the numeric major version stored in the footer. The V8
// sub-variants share major 8.
func (v Version) Major() int {
	switch {
	case v <= V7:
		return int(v)
	case v == V8A || v == V8B:
		return 8
	default:
		return int(v) - 1
	}
}

// HasTimestamps reports whether entry headers carry a modification timestamp.
func (v Version) HasTimestamps() bool {
	return v <= V1
}

// HasEncryptionGUID reports whether the footer carries the key GUID.
func (v Version) HasEncryptionGUID() bool {
	return v >= V2
}

// HasEncryptedIndexFlag reports whether the footer carries the
// encrypted-index byte.
func (v Version) HasEncryptedIndexFlag() bool {
	return v >= V3
}

// HasFrozenByte reports whether the footer carries the frozen byte. The byte
// is read and ignored; its meaning is undocumented.
func (v Version) HasFrozenByte() bool {
	return v >= V7
}

// HasEntryHash reports whether entry headers carry a payload SHA-1.
func (v Version) HasEntryHash() bool {
	return v < V11
}

// HasPathHashIndex reports whether the index uses the modern path-hash plus
// full-directory layout instead of the legacy flat list.
func (v Version) HasPathHashIndex() bool {
	return v >= V10
}

// HasRelativeBlockOffsets reports whether compression block ranges are
// relative to the entry header rather than the file start.
func (v Version) HasRelativeBlockOffsets() bool {
	return v >= V5
}

// CompressionSlotCount returns the number of named slots in the footer
// compression table, or 0 when the version predates the table.
func (v Version) CompressionSlotCount() int {
	switch {
	case v >= V8B:
		return 5
	case v == V8A:
		return 4
	default:
		return 0
	}
}

// FooterSize returns the byte length of the version's footer.
func (v Version) FooterSize() int64 {
	// magic + version + index offset + index size + index hash
	size := int64(4 + 4 + 8 + 8 + HashSize)
	if v.HasEncryptionGUID() {
		size += 16
	}
	if v.HasEncryptedIndexFlag() {
		size++
	}
	if v.HasFrozenByte() {
		size++
	}
	size += int64(v.CompressionSlotCount()) * CompressionNameSize

	return size
}
