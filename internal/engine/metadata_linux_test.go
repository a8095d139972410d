//go:build linux

package engine

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func setXattrOrSkip(t *testing.T, path, name, val string) {
	t.Helper()
	if err := unix.Lsetxattr(path, name, []byte(val), 0); err != nil {
		t.Skipf("xattrs unsupported on %s: %v", path, err)
	}
}

func TestCopyDirectoryPreserveXattrs(t *testing.T) {
	dir := t.TempDir()
	src, dst := filepath.Join(dir, "src"), filepath.Join(dir, "dst")
	writeTree(t, src, map[string]string{"sub/f.txt": "f"})
	setXattrOrSkip(t, filepath.Join(src, "sub"), "user.treecopy.dir", "tagged")
	setXattrOrSkip(t, filepath.Join(src, "sub", "f.txt"), "user.treecopy.file", "tagged")

	_, err := CopyDirectory(context.Background(), src, dst, Options{Preserve: Preserve{Xattrs: true}})
	require.NoError(t, err)

	for path, name := range map[string]string{
		filepath.Join(dst, "sub"):          "user.treecopy.dir",
		filepath.Join(dst, "sub", "f.txt"): "user.treecopy.file",
	} {
		val, err := readXattr(unix.Lgetxattr, path, name)
		require.NoError(t, err, path)
		assert.Equal(t, "tagged", string(val), path)
	}
}

func TestCopyDirectoryWithoutXattrs(t *testing.T) {
	dir := t.TempDir()
	src, dst := filepath.Join(dir, "src"), filepath.Join(dir, "dst")
	writeTree(t, src, map[string]string{"sub/": ""})
	setXattrOrSkip(t, filepath.Join(src, "sub"), "user.treecopy.dir", "tagged")

	_, err := CopyDirectory(context.Background(), src, dst, Options{})
	require.NoError(t, err)

	_, err = readXattr(unix.Lgetxattr, filepath.Join(dst, "sub"), "user.treecopy.dir")
	assert.ErrorIs(t, err, unix.ENODATA)
}
