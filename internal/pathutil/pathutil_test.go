package pathutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gopak/gopak/errs"
)

func TestRootPath(t *testing.T) {
	got, err := RootPath("../../../", "a/b.txt")
	require.NoError(t, err)
	require.Equal(t, "a/b.txt", got)

	got, err = RootPath("../../../Game/Content", "foo.uasset")
	require.NoError(t, err)
	require.Equal(t, "Game/Content/foo.uasset", got)

	// duplicate slashes collapse before the prefix strip
	got, err = RootPath("../../..//", "a//b.txt")
	require.NoError(t, err)
	require.Equal(t, "a/b.txt", got)

	_, err = RootPath("/weird/mount", "a.txt")
	require.ErrorIs(t, err, errs.ErrPrefixMismatch)
}

func TestSplitChild(t *testing.T) {
	tests := []struct {
		path  string
		dir   string
		child string
		ok    bool
	}{
		{"a/really/long/path", "a/really/long/", "path", true},
		{"a/really/long/", "a/really/", "long", true},
		{"a", "/", "a", true},
		{"a//b", "a//", "b", true},
		{"a//", "a/", "", true},
		{"/", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		dir, child, ok := SplitChild(tt.path)
		require.Equal(t, tt.ok, ok, "path %q", tt.path)
		require.Equal(t, tt.dir, dir, "path %q", tt.path)
		require.Equal(t, tt.child, child, "path %q", tt.path)
	}
}

func TestAncestors(t *testing.T) {
	require.Equal(t, []string{"a/b/", "a/", "/"}, Ancestors("a/b/c.txt"))
	require.Equal(t, []string{"/"}, Ancestors("top.txt"))
	require.Empty(t, Ancestors("/"))
}

func TestStripPrefix(t *testing.T) {
	got, err := StripPrefix("../../../a/b.txt", "../../../")
	require.NoError(t, err)
	require.Equal(t, "a/b.txt", got)

	got, err = StripPrefix("any/path", "")
	require.NoError(t, err)
	require.Equal(t, "any/path", got)

	_, err = StripPrefix("other/a.txt", "../../../")
	require.ErrorIs(t, err, errs.ErrPrefixMismatch)

	// a prefix ending inside a component must not match
	_, err = StripPrefix("abc/d.txt", "ab")
	require.ErrorIs(t, err, errs.ErrPrefixMismatch)
}
