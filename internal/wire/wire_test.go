package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gopak/gopak/errs"
)

func TestIntegerRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteU8(&buf, 0xAB))
	require.NoError(t, WriteU32(&buf, 0xDEADBEEF))
	require.NoError(t, WriteU64(&buf, 0x0123456789ABCDEF))
	require.NoError(t, WriteI32(&buf, -5))

	r := bytes.NewReader(buf.Bytes())
	u8, err := ReadU8(r)
	require.NoError(t, err)
	require.Equal(t, uint8(0xAB), u8)
	u32, err := ReadU32(r)
	require.NoError(t, err)
	require.Equal(t, uint32(0xDEADBEEF), u32)
	u64, err := ReadU64(r)
	require.NoError(t, err)
	require.Equal(t, uint64(0x0123456789ABCDEF), u64)
	i32, err := ReadI32(r)
	require.NoError(t, err)
	require.Equal(t, int32(-5), i32)
}

func TestLittleEndianLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteU32(&buf, 0x5A6F12E1))
	require.Equal(t, []byte{0xE1, 0x12, 0x6F, 0x5A}, buf.Bytes())
}

func TestStringASCII(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteString(&buf, "mount"))

	// positive length including NUL, then bytes, then NUL
	require.Equal(t, []byte{6, 0, 0, 0, 'm', 'o', 'u', 'n', 't', 0}, buf.Bytes())

	s, err := ReadString(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, "mount", s)
}

func TestStringUTF16(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteString(&buf, "héllo"))

	// negative code unit count selects UTF-16LE
	n, err := ReadI32(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, int32(-6), n)

	s, err := ReadString(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, "héllo", s)
}

func TestStringEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteString(&buf, ""))

	s, err := ReadString(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, "", s)
}

func TestStringLengthCap(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteI32(&buf, MaxStringLen+1))
	buf.Write(make([]byte, MaxStringLen+1))

	_, err := ReadString(bytes.NewReader(buf.Bytes()))
	require.ErrorIs(t, err, errs.ErrStringTooLong)

	buf.Reset()
	require.NoError(t, WriteI32(&buf, -(MaxStringLen + 1)))
	_, err = ReadString(bytes.NewReader(buf.Bytes()))
	require.ErrorIs(t, err, errs.ErrStringTooLong)
}

func TestStringSerializedSize(t *testing.T) {
	for _, s := range []string{"", "abc", "héllo", "path/to/asset.uasset"} {
		var buf bytes.Buffer
		require.NoError(t, WriteString(&buf, s))
		require.Equal(t, StringSerializedSize(s), int64(buf.Len()), "size of %q", s)
	}
}
