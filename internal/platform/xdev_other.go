//go:build !unix && !windows

package platform

// IsCrossDevice always reports false where renames have no cross-device
// error to detect.
func IsCrossDevice(error) bool { return false }
