package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetBlockBufferSizes(t *testing.T) {
	for _, size := range []int{0, 1, 4096, BlockBufferDefaultSize, BlockBufferDefaultSize + 1} {
		buf, cleanup := GetBlockBuffer(size)
		require.Len(t, buf, size)
		cleanup()
	}
}

func TestGetBlockBufferReuse(t *testing.T) {
	buf, cleanup := GetBlockBuffer(128)
	for i := range buf {
		buf[i] = 0xFF
	}
	cleanup()

	// a reused buffer keeps its capacity; contents are caller-defined
	buf2, cleanup2 := GetBlockBuffer(64)
	defer cleanup2()
	require.Len(t, buf2, 64)
}
