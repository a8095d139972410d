//go:build unix

package platform

import (
	"errors"

	"golang.org/x/sys/unix"
)

// IsCrossDevice reports whether err is the rename failure raised when source
// and destination live on different filesystems.
func IsCrossDevice(err error) bool {
	return errors.Is(err, unix.EXDEV)
}
