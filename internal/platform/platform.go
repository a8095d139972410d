// Package platform holds the OS-specific primitives the transfer engine is
// built on: ranged data copy, preallocation, and cross-device detection.
package platform

import "os"

// CopyMethod names the mechanism that moved the bytes of a range.
type CopyMethod int

const (
	ReadWrite     CopyMethod = iota // positional read/write through a buffer
	CopyFileRange                   // Linux copy_file_range(2)
)

var copyMethodNames = [...]string{
	ReadWrite:     "read_write",
	CopyFileRange: "copy_file_range",
}

func (m CopyMethod) String() string {
	if m >= 0 && int(m) < len(copyMethodNames) {
		return copyMethodNames[m]
	}
	return "unknown"
}

// CopyResult is the outcome of a ranged copy. BytesWritten is valid even
// when an error is returned.
type CopyResult struct {
	BytesWritten int64
	Method       CopyMethod
}

// CopyRangeParams selects Length bytes at Offset in Src to be written at the
// same offset in Dst. File seek positions are left untouched.
type CopyRangeParams struct {
	Src    *os.File
	Dst    *os.File
	Offset int64
	Length int64
}
