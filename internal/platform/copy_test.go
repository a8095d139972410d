//go:build unix

package platform

import (
	"crypto/rand"
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openPair(t *testing.T, data []byte) (src, dst *os.File, dstPath string) {
	t.Helper()
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "src")
	dstPath = filepath.Join(dir, "dst")
	require.NoError(t, os.WriteFile(srcPath, data, 0o644))

	src, err := os.Open(srcPath)
	require.NoError(t, err)
	t.Cleanup(func() { src.Close() })

	dst, err = os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	require.NoError(t, err)
	t.Cleanup(func() { dst.Close() })

	return src, dst, dstPath
}

func TestCopyRangeWhole(t *testing.T) {
	data := []byte("hello, treecopy!")
	src, dst, dstPath := openPair(t, data)

	result, err := CopyRange(CopyRangeParams{Src: src, Dst: dst, Length: int64(len(data))})
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), result.BytesWritten)

	require.NoError(t, dst.Close())
	got, err := os.ReadFile(dstPath)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestCopyRangeChunks(t *testing.T) {
	// 3.5 MiB copied in 1 MiB ranges, larger than the pooled buffer in total.
	size := 3*1024*1024 + 512*1024
	data := make([]byte, size)
	_, err := rand.Read(data)
	require.NoError(t, err)
	src, dst, dstPath := openPair(t, data)

	const chunk = 1 << 20
	var total int64
	for off := int64(0); off < int64(size); off += chunk {
		length := min(int64(chunk), int64(size)-off)
		result, err := CopyRange(CopyRangeParams{Src: src, Dst: dst, Offset: off, Length: length})
		require.NoError(t, err)
		assert.Equal(t, length, result.BytesWritten)
		total += result.BytesWritten
	}
	assert.Equal(t, int64(size), total)

	require.NoError(t, dst.Close())
	got, err := os.ReadFile(dstPath)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestCopyReadWriteOffset(t *testing.T) {
	data := []byte("AAAA_BBBB_CCCC")
	src, dst, dstPath := openPair(t, data)

	result, err := copyReadWrite(CopyRangeParams{Src: src, Dst: dst, Offset: 5, Length: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(4), result.BytesWritten)
	assert.Equal(t, ReadWrite, result.Method)

	require.NoError(t, dst.Close())
	got, err := os.ReadFile(dstPath)
	require.NoError(t, err)
	require.Len(t, got, 9)
	assert.Equal(t, []byte("BBBB"), got[5:9])
}

func TestCopyReadWriteShortSource(t *testing.T) {
	data := []byte("short")
	src, dst, _ := openPair(t, data)

	result, err := copyReadWrite(CopyRangeParams{Src: src, Dst: dst, Length: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), result.BytesWritten)
}

func TestCopyMethodString(t *testing.T) {
	assert.Equal(t, "read_write", ReadWrite.String())
	assert.Equal(t, "copy_file_range", CopyFileRange.String())
	assert.Equal(t, "unknown", CopyMethod(42).String())
}

func TestIsCrossDevice(t *testing.T) {
	xdev := &os.LinkError{Op: "rename", Old: "a", New: "b", Err: syscall.EXDEV}
	assert.True(t, IsCrossDevice(xdev))

	perm := &os.LinkError{Op: "rename", Old: "a", New: "b", Err: syscall.EACCES}
	assert.False(t, IsCrossDevice(perm))
	assert.False(t, IsCrossDevice(errors.New("rename failed")))
	assert.False(t, IsCrossDevice(nil))
}
