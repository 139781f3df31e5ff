package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFooterSize(t *testing.T) {
	tests := []struct {
		version Version
		size    int64
	}{
		{V1, 44},
		{V2, 60},
		{V3, 61},
		{V4, 61},
		{V5, 61},
		{V6, 61},
		{V7, 62},
		{V8A, 190},
		{V8B, 222},
		{V9, 222},
		{V10, 222},
		{V11, 222},
	}
	for _, tt := range tests {
		require.Equal(t, tt.size, tt.version.FooterSize(), "footer size of %s", tt.version)
	}
}

func TestVersionMajor(t *testing.T) {
	tests := []struct {
		version Version
		major   int
	}{
		{V1, 1},
		{V7, 7},
		{V8A, 8},
		{V8B, 8},
		{V9, 9},
		{V10, 10},
		{V11, 11},
	}
	for _, tt := range tests {
		require.Equal(t, tt.major, tt.version.Major(), "major of %s", tt.version)
	}
}

func TestVersionString(t *testing.T) {
	require.Equal(t, "V1", V1.String())
	require.Equal(t, "V8A", V8A.String())
	require.Equal(t, "V8B", V8B.String())
	require.Equal(t, "V9", V9.String())
	require.Equal(t, "V11", V11.String())
}

func TestParseVersionRoundTrip(t *testing.T) {
	for _, v := range Versions {
		parsed, err := ParseVersion(v.String())
		require.NoError(t, err)
		require.Equal(t, v, parsed)
	}

	_, err := ParseVersion("V12")
	require.Error(t, err)
}

func TestVersionsDescendingOrder(t *testing.T) {
	require.Len(t, VersionsDescending, len(Versions))
	for i := 1; i < len(VersionsDescending); i++ {
		require.GreaterOrEqual(t,
			VersionsDescending[i-1].FooterSize(),
			VersionsDescending[i].FooterSize(),
			"probe order must be descending footer size")
	}
}

func TestCompressionSlotCount(t *testing.T) {
	require.Equal(t, 0, V7.CompressionSlotCount())
	require.Equal(t, 4, V8A.CompressionSlotCount())
	require.Equal(t, 5, V8B.CompressionSlotCount())
	require.Equal(t, 5, V11.CompressionSlotCount())
}

func TestParseCompression(t *testing.T) {
	c, err := ParseCompression("Zstd")
	require.NoError(t, err)
	require.Equal(t, CompressionZstd, c)

	c, err = ParseCompression("zstd")
	require.NoError(t, err)
	require.Equal(t, CompressionZstd, c)

	_, err = ParseCompression("Brotli")
	require.Error(t, err)
}
