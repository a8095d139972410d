//go:build !linux && !darwin

package engine

import (
	"io/fs"
	"os"
	"time"
)

func statOwner(info fs.FileInfo) (uid, gid int, atime time.Time) {
	return -1, -1, info.ModTime()
}

// Ownership and xattrs have no portable equivalent here; only times are kept.
func applyFileMetadata(f *os.File, _ string, e TreeEntry, p Preserve) error {
	if p.Times {
		return os.Chtimes(f.Name(), e.AccTime, e.ModTime)
	}
	return nil
}

func applyPathMetadata(_, path string, e TreeEntry, p Preserve) error {
	if p.Times && e.Kind.IsDirLike() && !e.Kind.IsSymlink() {
		return os.Chtimes(path, e.AccTime, e.ModTime)
	}
	return nil
}
