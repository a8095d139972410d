//go:build linux

package platform

import (
	"os"

	"golang.org/x/sys/unix"
)

// Preallocate reserves size bytes for f so a large copy fails early on a
// full disk and lands in fewer extents. It is best effort: filesystems
// without fallocate support simply get no reservation.
//
//nolint:gosec // G115: fd values are small non-negative integers
func Preallocate(f *os.File, size int64) {
	if f == nil || size <= 0 {
		return
	}
	_ = unix.Fallocate(int(f.Fd()), 0, 0, size)
}
