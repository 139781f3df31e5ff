// Package pathutil implements the path conventions of the archive format:
// mount-point joining, the canonical "../../../" strip, and the
// directory/filename split used by the full-directory index.
package pathutil

import (
	"fmt"
	"strings"

	"github.com/gopak/gopak/errs"
)

// MountPrefix is the conventional mount-point prefix stripped when forming
// mount-rooted paths.
const MountPrefix = "../../../"

// Join joins the mount point and an entry path, collapsing duplicate
// slashes.
func Join(mountPoint, path string) string {
	return collapseSlashes(mountPoint + "/" + path)
}

// RootPath joins the mount point and an entry path, collapses duplicate
// slashes, and strips the leading "../../../" prefix. The result is the
// canonical hashing input for the entry.
func RootPath(mountPoint, path string) (string, error) {
	joined := Join(mountPoint, path)
	rooted, ok := strings.CutPrefix(joined, MountPrefix)
	if !ok {
		return "", fmt.Errorf("%w: %q with prefix %q", errs.ErrPrefixMismatch, joined, MountPrefix)
	}

	return rooted, nil
}

// StripPrefix removes prefix from the mount-joined path, tolerating a
// trailing slash on the prefix.
func StripPrefix(path, prefix string) (string, error) {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return path, nil
	}
	rest, ok := strings.CutPrefix(path, prefix)
	if !ok || (rest != "" && rest[0] != '/') {
		return "", fmt.Errorf("%w: %q with prefix %q", errs.ErrPrefixMismatch, path, prefix)
	}

	return strings.TrimPrefix(rest, "/"), nil
}

// SplitChild splits a path into its parent directory and final component.
// The directory keeps its trailing slash and is "/" for root-level names.
// Splitting "/" or the empty string reports false.
func SplitChild(path string) (dir, child string, ok bool) {
	if path == "/" || path == "" {
		return "", "", false
	}
	path = strings.TrimSuffix(path, "/")
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return "/", path, true
	}

	return path[:i+1], path[i+1:], true
}

// Ancestors returns every ancestor directory of path from the nearest to
// "/", each with its trailing slash.
func Ancestors(path string) []string {
	var out []string
	p := path
	for {
		parent, _, ok := SplitChild(p)
		if !ok {
			break
		}
		out = append(out, parent)
		p = parent
	}

	return out
}

func collapseSlashes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	last := false
	for _, c := range s {
		if c == '/' && last {
			continue
		}
		last = c == '/'
		b.WriteRune(c)
	}

	return b.String()
}
