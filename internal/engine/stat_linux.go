//go:build linux

package engine

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

func atimeFromStat(stat *syscall.Stat_t) time.Time {
	return time.Unix(stat.Atim.Sec, stat.Atim.Nsec)
}

// setFileTimes sets atime and mtime on an open file, falling back to the
// path when AT_EMPTY_PATH is unsupported.
//
//nolint:gosec // G115: fd values are small non-negative integers
func setFileTimes(f *os.File, accTime, modTime time.Time) error {
	times := []unix.Timespec{
		unix.NsecToTimespec(accTime.UnixNano()),
		unix.NsecToTimespec(modTime.UnixNano()),
	}
	if err := unix.UtimesNanoAt(int(f.Fd()), "", times, unix.AT_EMPTY_PATH); err != nil {
		if err2 := unix.UtimesNanoAt(unix.AT_FDCWD, f.Name(), times, 0); err2 != nil {
			return fmt.Errorf("utimensat %s: %w", f.Name(), err)
		}
	}
	return nil
}
