//go:build !linux

package platform

// CopyRange copies with positional read/write on platforms without an
// in-kernel range copy.
func CopyRange(params CopyRangeParams) (CopyResult, error) {
	return copyReadWrite(params)
}
