package engine

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bamsammich/treecopy/internal/filter"
	"github.com/bamsammich/treecopy/internal/progress"
)

// writeTree creates files under root. Keys ending in "/" are directories,
// values starting with "-> " are symlink targets.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(root, 0o755))
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(strings.TrimSuffix(rel, "/")))
		if strings.HasSuffix(rel, "/") {
			require.NoError(t, os.MkdirAll(path, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		if target, ok := strings.CutPrefix(content, "-> "); ok {
			require.NoError(t, os.Symlink(target, path))
			continue
		}
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// readTree is the inverse of writeTree, skipping the root itself.
func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	out := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel := filepath.ToSlash(must(filepath.Rel(root, path)))
		switch {
		case d.Type()&fs.ModeSymlink != 0:
			target, err := os.Readlink(path)
			if err != nil {
				return err
			}
			out[rel] = "-> " + target
		case d.IsDir():
			out[rel+"/"] = ""
		default:
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			out[rel] = string(data)
		}
		return nil
	})
	require.NoError(t, err)
	return out
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// recorder collects progress reports.
type recorder struct {
	reports []progress.Report
}

func (r *recorder) fn() progress.Func {
	return func(rep progress.Report) { r.reports = append(r.reports, rep) }
}

func (r *recorder) last() progress.Report {
	return r.reports[len(r.reports)-1]
}

func (r *recorder) ofKind(k progress.Kind) []progress.Report {
	var out []progress.Report
	for _, rep := range r.reports {
		if rep.Kind == k {
			out = append(out, rep)
		}
	}
	return out
}

// forceCrossDevice makes every directory rename fail as if source and
// destination were on different filesystems.
func forceCrossDevice(t *testing.T) {
	t.Helper()
	origRename, origCheck := rename, isCrossDevice
	errXDev := errors.New("invalid cross-device link")
	rename = func(oldpath, newpath string) error {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: errXDev}
	}
	isCrossDevice = func(err error) bool { return errors.Is(err, errXDev) }
	t.Cleanup(func() {
		rename, isCrossDevice = origRename, origCheck
	})
}

func transferErr(t *testing.T, err error) *TransferError {
	t.Helper()
	var te *TransferError
	require.ErrorAs(t, err, &te)
	return te
}

func newExcludeChain(t *testing.T, patterns ...string) *filter.Chain {
	t.Helper()
	chain := filter.NewChain()
	for _, p := range patterns {
		require.NoError(t, chain.AddExclude(p))
	}
	return chain
}
