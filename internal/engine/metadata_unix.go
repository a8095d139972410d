//go:build linux || darwin

package engine

import (
	"fmt"
	"io/fs"
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// statOwner extracts ownership and access time from an lstat result.
func statOwner(info fs.FileInfo) (uid, gid int, atime time.Time) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return -1, -1, info.ModTime()
	}
	return int(stat.Uid), int(stat.Gid), atimeFromStat(stat)
}

// applyFileMetadata sets what Preserve asks for on the temp file before it
// is renamed into place. Mode is handled by the caller.
//
//nolint:gosec // G115: fd values are small non-negative integers
func applyFileMetadata(f *os.File, srcPath string, e TreeEntry, p Preserve) error {
	if p.Xattrs {
		copyXattrs(srcPath, unix.Listxattr, unix.Getxattr, func(name string, val []byte) error {
			return unix.Fsetxattr(int(f.Fd()), name, val, 0)
		})
	}
	if p.Times {
		if err := setFileTimes(f, e.AccTime, e.ModTime); err != nil {
			return err
		}
	}
	// Ownership last; it fails without CAP_CHOWN and that is not fatal.
	if p.Owner && e.UID >= 0 {
		_ = unix.Fchown(int(f.Fd()), e.UID, e.GID)
	}
	return nil
}

// applyPathMetadata sets xattrs, times and ownership on a directory or
// symlink without following it. srcPath is the entry it was copied from.
func applyPathMetadata(srcPath, path string, e TreeEntry, p Preserve) error {
	if p.Xattrs {
		copyXattrs(srcPath, unix.Llistxattr, unix.Lgetxattr, func(name string, val []byte) error {
			return unix.Lsetxattr(path, name, val, 0)
		})
	}
	if p.Times {
		times := []unix.Timespec{
			unix.NsecToTimespec(e.AccTime.UnixNano()),
			unix.NsecToTimespec(e.ModTime.UnixNano()),
		}
		if err := unix.UtimesNanoAt(unix.AT_FDCWD, path, times, unix.AT_SYMLINK_NOFOLLOW); err != nil {
			return fmt.Errorf("utimensat %s: %w", path, err)
		}
	}
	if p.Owner && e.UID >= 0 {
		_ = unix.Lchown(path, e.UID, e.GID)
	}
	return nil
}

// copyXattrs is best effort: filesystems without xattr support, and
// attributes the caller may not set (user.* on Linux symlinks), are ignored.
func copyXattrs(
	srcPath string,
	list func(string, []byte) (int, error),
	get func(string, string, []byte) (int, error),
	set func(string, []byte) error,
) {
	sz, err := list(srcPath, nil)
	if err != nil || sz == 0 {
		return
	}
	buf := make([]byte, sz)
	sz, err = list(srcPath, buf)
	if err != nil {
		return
	}
	for _, name := range splitXattrNames(buf[:sz]) {
		val, err := readXattr(get, srcPath, name)
		if err != nil {
			continue
		}
		_ = set(name, val)
	}
}

func readXattr(get func(string, string, []byte) (int, error), path, name string) ([]byte, error) {
	sz, err := get(path, name, nil)
	if err != nil || sz == 0 {
		return nil, err
	}
	buf := make([]byte, sz)
	n, err := get(path, name, buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}
