package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/treecopy/internal/stats"
)

func TestVerify(t *testing.T) {
	dir := t.TempDir()
	src, dst := filepath.Join(dir, "src"), filepath.Join(dir, "dst")
	writeTree(t, src, map[string]string{"same": "1", "differs": "2", "lost": "3", "d/nested": "4", "l": "-> same"})

	_, err := CopyDirectory(context.Background(), src, dst, Options{})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dst, "differs"), []byte("X"), 0o644))
	require.NoError(t, os.Remove(filepath.Join(dst, "lost")))

	plan, err := Scan(context.Background(), src, ScanOptions{})
	require.NoError(t, err)

	collector := stats.NewCollector()
	res, err := Verify(context.Background(), plan, dst, collector)
	require.NoError(t, err)

	assert.False(t, res.OK())
	assert.Equal(t, int64(2), res.Verified)
	assert.Equal(t, int64(2), res.Failed)
	require.Len(t, res.Errors, 2)

	assert.Equal(t, "differs", res.Errors[0].Path)
	assert.NoError(t, res.Errors[0].Err)
	assert.NotEqual(t, res.Errors[0].SrcHash, res.Errors[0].DstHash)

	assert.Equal(t, "lost", res.Errors[1].Path)
	assert.ErrorIs(t, res.Errors[1].Err, os.ErrNotExist)

	snap := collector.Snapshot()
	assert.Equal(t, int64(2), snap.FilesVerified)
	assert.Equal(t, int64(2), snap.VerifyFailed)
}

func TestVerifyCanceled(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"f": "x"})
	plan, err := Scan(context.Background(), dir, ScanOptions{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Verify(ctx, plan, dir, nil)
	require.ErrorIs(t, err, ErrCanceled)
}

func TestSplitXattrNames(t *testing.T) {
	assert.Equal(t, []string{"user.a", "user.bb"}, splitXattrNames([]byte("user.a\x00user.bb\x00")))
	assert.Empty(t, splitXattrNames(nil))
	assert.Equal(t, []string{"x"}, splitXattrNames([]byte("\x00x\x00\x00")))
}

func TestTmpRegistry(t *testing.T) {
	dir := t.TempDir()
	p := tmpPathFor(filepath.Join(dir, "report.pdf"))
	assert.Regexp(t, `^\.report\.pdf\.[0-9a-f]{8}\.treecopy-tmp$`, filepath.Base(p))
	assert.Equal(t, dir, filepath.Dir(p))

	require.NoError(t, os.WriteFile(p, []byte("partial"), 0o600))
	RegisterTmp(p)
	CleanupTmpFiles()
	assert.NoFileExists(t, p)
	assert.Zero(t, PendingTmp())
}
