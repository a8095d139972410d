//go:build windows

package platform

import (
	"errors"

	"golang.org/x/sys/windows"
)

// IsCrossDevice reports whether err is the rename failure raised when source
// and destination live on different volumes.
func IsCrossDevice(err error) bool {
	return errors.Is(err, windows.ERROR_NOT_SAME_DEVICE)
}
