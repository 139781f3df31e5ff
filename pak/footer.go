package pak

import (
	"bytes"
	"fmt"
	"io"

	"github.com/gopak/gopak/errs"
	"github.com/gopak/gopak/format"
	"github.com/gopak/gopak/internal/wire"
)

// Footer is the version-dependent trailer at the end of every archive.
//
// Field presence by version:
//   - EncryptedIndex byte: V3+
//   - EncryptionGUID: V2+
//   - Frozen byte: V7+ (read and ignored; semantics undocumented)
//   - Compression name table: 4 slots at V8A, 5 from V8B on
//
// The fields present are laid out in struct order below; magic through index
// hash exist in every version.
type Footer struct {
	EncryptedIndex bool
	EncryptionGUID [16]byte
	Magic          uint32
	Version        format.Version
	IndexOffset    uint64
	IndexSize      uint64
	Hash           [format.HashSize]byte
	Frozen         bool

	// Compression holds the named slots; index i is on-disk slot value i+1.
	// A zero element is an empty or unrecognized slot name.
	Compression []format.Compression
}

// readFooter parses the trailer for the given version. r must be positioned
// at fileSize - version.FooterSize().
func readFooter(r io.Reader, v format.Version) (*Footer, error) {
	f := &Footer{Version: v}

	if v.HasEncryptedIndexFlag() {
		b, err := wire.ReadU8(r)
		if err != nil {
			return nil, err
		}
		f.EncryptedIndex = b != 0
	}
	if v.HasEncryptionGUID() {
		guid, err := wire.ReadBytes(r, 16)
		if err != nil {
			return nil, err
		}
		copy(f.EncryptionGUID[:], guid)
	}

	var err error
	if f.Magic, err = wire.ReadU32(r); err != nil {
		return nil, err
	}
	if f.Magic != format.Magic {
		return nil, fmt.Errorf("%w: got 0x%08X", errs.ErrBadMagic, f.Magic)
	}

	major, err := wire.ReadU32(r)
	if err != nil {
		return nil, err
	}
	if major != uint32(v.Major()) {
		return nil, fmt.Errorf("%w: footer says %d, probing %s", errs.ErrUnsupportedVersion, major, v)
	}

	if f.IndexOffset, err = wire.ReadU64(r); err != nil {
		return nil, err
	}
	if f.IndexSize, err = wire.ReadU64(r); err != nil {
		return nil, err
	}
	hash, err := wire.ReadBytes(r, format.HashSize)
	if err != nil {
		return nil, err
	}
	copy(f.Hash[:], hash)

	if v.HasFrozenByte() {
		b, err := wire.ReadU8(r)
		if err != nil {
			return nil, err
		}
		f.Frozen = b != 0
	}

	if n := v.CompressionSlotCount(); n > 0 {
		f.Compression = make([]format.Compression, n)
		for i := range f.Compression {
			name, err := readCompressionName(r)
			if err != nil {
				return nil, err
			}
			if name == "" {
				continue
			}
			// Unknown names stay as empty slots; they only matter if an
			// entry actually references them.
			if c, err := format.ParseCompression(name); err == nil {
				f.Compression[i] = c
			}
		}
	} else {
		// Before the named table existed the slot meanings were fixed.
		f.Compression = []format.Compression{
			format.CompressionZlib,
			format.CompressionGzip,
			format.CompressionOodle,
		}
	}

	return f, nil
}

// write serializes the footer for its version.
func (f *Footer) write(w io.Writer) error {
	if f.Version.HasEncryptedIndexFlag() {
		if err := wire.WriteU8(w, boolByte(f.EncryptedIndex)); err != nil {
			return err
		}
	}
	if f.Version.HasEncryptionGUID() {
		if _, err := w.Write(f.EncryptionGUID[:]); err != nil {
			return err
		}
	}
	if err := wire.WriteU32(w, format.Magic); err != nil {
		return err
	}
	if err := wire.WriteU32(w, uint32(f.Version.Major())); err != nil {
		return err
	}
	if err := wire.WriteU64(w, f.IndexOffset); err != nil {
		return err
	}
	if err := wire.WriteU64(w, f.IndexSize); err != nil {
		return err
	}
	if _, err := w.Write(f.Hash[:]); err != nil {
		return err
	}
	if f.Version.HasFrozenByte() {
		if err := wire.WriteU8(w, boolByte(f.Frozen)); err != nil {
			return err
		}
	}

	if n := f.Version.CompressionSlotCount(); n > 0 {
		var name [format.CompressionNameSize]byte
		for i := 0; i < n; i++ {
			for j := range name {
				name[j] = 0
			}
			if i < len(f.Compression) && f.Compression[i] != 0 {
				copy(name[:], f.Compression[i].String())
			}
			if _, err := w.Write(name[:]); err != nil {
				return err
			}
		}
	}

	return nil
}

func readCompressionName(r io.Reader) (string, error) {
	raw, err := wire.ReadBytes(r, format.CompressionNameSize)
	if err != nil {
		return "", err
	}
	end := bytes.IndexByte(raw, 0)
	if end < 0 {
		end = len(raw)
	}

	return string(raw[:end]), nil
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}

	return 0
}
