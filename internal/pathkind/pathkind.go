// Package pathkind classifies filesystem paths without following symlinks
// unless asked to.
package pathkind

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// ErrNotAFile is returned by SizeOfFile when the path is not a regular file.
var ErrNotAFile = errors.New("not a regular file")

// Kind identifies what a path refers to at the moment it was classified.
type Kind int

const (
	NotFound Kind = iota
	File
	Directory
	SymlinkFile
	SymlinkDirectory
	Other
)

var kindNames = [...]string{
	NotFound:         "not-found",
	File:             "file",
	Directory:        "directory",
	SymlinkFile:      "symlink-file",
	SymlinkDirectory: "symlink-directory",
	Other:            "other",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsSymlink reports whether k is one of the symlink kinds.
func (k Kind) IsSymlink() bool {
	return k == SymlinkFile || k == SymlinkDirectory
}

// IsDirLike reports whether k is a directory or a symlink to one.
func (k Kind) IsDirLike() bool {
	return k == Directory || k == SymlinkDirectory
}

// IsFileLike reports whether k is a regular file or a symlink to one.
func (k Kind) IsFileLike() bool {
	return k == File || k == SymlinkFile
}

// Classify reports the kind of path. A missing path is NotFound with a nil
// error; any other stat failure is returned. Dangling symlinks classify as
// SymlinkFile.
func Classify(path string) (Kind, error) {
	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NotFound, nil
		}
		return NotFound, fmt.Errorf("lstat %s: %w", path, err)
	}
	return FromMode(path, info.Mode())
}

// FromMode classifies an already-obtained lstat mode. path is only consulted
// for symlinks, whose target must be stat'ed. Symlinks never produce an
// error.
func FromMode(path string, mode fs.FileMode) (Kind, error) {
	switch {
	case mode.IsRegular():
		return File, nil
	case mode.IsDir():
		return Directory, nil
	case mode&fs.ModeSymlink != 0:
		// A target that cannot be resolved (dangling, cyclic, unreadable)
		// leaves a link that is copied as-is, like a file.
		target, err := os.Stat(path)
		if err != nil {
			return SymlinkFile, nil
		}
		if target.IsDir() {
			return SymlinkDirectory, nil
		}
		return SymlinkFile, nil
	default:
		return Other, nil
	}
}

// SizeOfFile returns the size of the regular file at path, following
// symlinks. It fails with ErrNotAFile if path is anything else.
func SizeOfFile(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("%s: %w", path, ErrNotAFile)
	}
	return info.Size(), nil
}
