//go:build linux

package platform

import (
	"errors"

	"golang.org/x/sys/unix"
)

// CopyRange tries copy_file_range first and falls back to positional
// read/write when the kernel or filesystem cannot serve the request.
func CopyRange(params CopyRangeParams) (CopyResult, error) {
	result, err := copyFileRange(params)
	if err == nil {
		return result, nil
	}
	if !isFallbackErr(err) {
		return result, err
	}

	// Resume where copy_file_range stopped.
	rest := params
	rest.Offset += result.BytesWritten
	rest.Length -= result.BytesWritten
	tail, err := copyReadWrite(rest)
	tail.BytesWritten += result.BytesWritten
	return tail, err
}

//nolint:gosec // G115: fd values are small non-negative integers
func copyFileRange(params CopyRangeParams) (CopyResult, error) {
	remaining := params.Length
	roff := params.Offset
	woff := params.Offset

	var totalWritten int64
	for remaining > 0 {
		n, err := unix.CopyFileRange(
			int(params.Src.Fd()), &roff,
			int(params.Dst.Fd()), &woff,
			int(remaining), 0,
		)
		if err != nil {
			return CopyResult{BytesWritten: totalWritten, Method: CopyFileRange}, err
		}
		if n == 0 {
			break // source shrank under us
		}
		remaining -= int64(n)
		totalWritten += int64(n)
	}

	return CopyResult{BytesWritten: totalWritten, Method: CopyFileRange}, nil
}

// isFallbackErr returns true if err should trigger a fallback to read/write.
func isFallbackErr(err error) bool {
	for _, errno := range []error{unix.ENOSYS, unix.EXDEV, unix.EINVAL, unix.ENOTSUP, unix.EOPNOTSUPP} {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}
