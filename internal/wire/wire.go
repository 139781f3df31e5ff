// Package wire implements the little-endian primitives shared by the archive
// codecs: fixed-width integers, the sign-tagged string encoding, and raw
// blobs, all over plain io.Reader/io.Writer streams.
package wire

import (
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf16"

	"github.com/gopak/gopak/errs"
)

// MaxStringLen caps the code-unit count of a serialized string. Longer
// lengths are rejected as corruption before any allocation happens.
const MaxStringLen = 16 * 1024

// ReadU8 reads one byte.
func ReadU8(r io.Reader) (uint8, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}

	return b[0], nil
}

// ReadU32 reads a little-endian uint32.
func ReadU32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(b[:]), nil
}

// ReadU64 reads a little-endian uint64.
func ReadU64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint64(b[:]), nil
}

// ReadI32 reads a little-endian int32.
func ReadI32(r io.Reader) (int32, error) {
	u, err := ReadU32(r)

	return int32(u), err
}

// ReadBytes reads exactly n raw bytes.
func ReadBytes(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}

	return buf, nil
}

// WriteU8 writes one byte.
func WriteU8(w io.Writer, v uint8) error {
	_, err := w.Write([]byte{v})

	return err
}

// WriteU32 writes a little-endian uint32.
func WriteU32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])

	return err
}

// WriteU64 writes a little-endian uint64.
func WriteU64(w io.Writer, v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	_, err := w.Write(b[:])

	return err
}

// WriteI32 writes a little-endian int32.
func WriteI32(w io.Writer, v int32) error {
	return WriteU32(w, uint32(v))
}

// ReadString reads a length-prefixed string.
//
// The i32 prefix counts code units including the terminating NUL: a positive
// count is ASCII bytes, a negative count is UTF-16LE. Counts over MaxStringLen
// are rejected.
func ReadString(r io.Reader) (string, error) {
	n, err := ReadI32(r)
	if err != nil {
		return "", err
	}

	switch {
	case n == 0:
		return "", nil
	case n > 0:
		if n > MaxStringLen {
			return "", fmt.Errorf("%w: %d bytes", errs.ErrStringTooLong, n)
		}
		buf, err := ReadBytes(r, int(n))
		if err != nil {
			return "", err
		}

		// drop the terminating NUL
		return string(buf[:n-1]), nil
	default:
		units := -n
		if units > MaxStringLen {
			return "", fmt.Errorf("%w: %d UTF-16 code units", errs.ErrStringTooLong, units)
		}
		buf, err := ReadBytes(r, int(units)*2)
		if err != nil {
			return "", err
		}
		u16 := make([]uint16, units)
		for i := range u16 {
			u16[i] = binary.LittleEndian.Uint16(buf[i*2:])
		}

		return string(utf16.Decode(u16[:units-1])), nil
	}
}

// WriteString writes a length-prefixed string, choosing the ASCII form when
// every byte fits in 7 bits and UTF-16LE otherwise.
func WriteString(w io.Writer, s string) error {
	if isASCII(s) {
		if len(s)+1 > MaxStringLen {
			return fmt.Errorf("%w: %d bytes", errs.ErrStringTooLong, len(s)+1)
		}
		if err := WriteI32(w, int32(len(s)+1)); err != nil {
			return err
		}
		if _, err := io.WriteString(w, s); err != nil {
			return err
		}

		return WriteU8(w, 0)
	}

	u16 := utf16.Encode([]rune(s))
	if len(u16)+1 > MaxStringLen {
		return fmt.Errorf("%w: %d UTF-16 code units", errs.ErrStringTooLong, len(u16)+1)
	}
	if err := WriteI32(w, -int32(len(u16)+1)); err != nil {
		return err
	}
	buf := make([]byte, (len(u16)+1)*2)
	for i, u := range u16 {
		binary.LittleEndian.PutUint16(buf[i*2:], u)
	}
	_, err := w.Write(buf)

	return err
}

// StringSerializedSize returns the on-disk byte length WriteString produces
// for s, including the length prefix and terminating NUL.
func StringSerializedSize(s string) int64 {
	if isASCII(s) {
		return 4 + int64(len(s)) + 1
	}

	return 4 + (int64(len(utf16.Encode([]rune(s))))+1)*2
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}

	return true
}
