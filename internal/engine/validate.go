package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bamsammich/treecopy/internal/pathkind"
)

// Normalize returns the absolute, cleaned form of path.
func Normalize(path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return abs, nil
}

// Validate checks src and dst (both normalized) before op touches anything.
func Validate(op Op, src, dst string) error {
	srcKind, err := pathkind.Classify(src)
	if err != nil {
		return validationError(op, src, err)
	}
	if srcKind == pathkind.NotFound {
		return validationError(op, src, ErrSourceNotFound)
	}
	if !sourceKindOK(op, srcKind) {
		return validationError(op, src, fmt.Errorf("%w: %s", ErrSourceKind, srcKind))
	}

	dstKind, err := pathkind.Classify(dst)
	if err != nil {
		return validationError(op, dst, err)
	}

	if dstKind != pathkind.NotFound {
		same, err := sameFile(src, dst)
		if err != nil {
			return validationError(op, dst, err)
		}
		if same {
			return validationError(op, dst, ErrSameFile)
		}
	}

	if op == OpCopyDirectory || op == OpMoveDirectory {
		if dstKind != pathkind.NotFound && !dstKind.IsDirLike() {
			return validationError(op, dst, ErrDestinationNotDirectory)
		}
		inside, err := isInside(src, dst)
		if err != nil {
			return validationError(op, dst, err)
		}
		if inside {
			return validationError(op, dst, ErrDestinationInsideSource)
		}
	}
	return nil
}

func sourceKindOK(op Op, k pathkind.Kind) bool {
	switch op {
	case OpCopyFile:
		return k.IsFileLike()
	case OpMoveFile:
		return k.IsFileLike() || k == pathkind.SymlinkDirectory
	case OpCopyDirectory:
		return k.IsDirLike()
	case OpMoveDirectory:
		// A symlink to a directory is moved with MoveFile.
		return k == pathkind.Directory
	default:
		return false
	}
}

// sameFile reports whether src and dst resolve to the same inode. A
// dangling destination symlink is never the same file.
func sameFile(src, dst string) (bool, error) {
	si, err := os.Stat(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	di, err := os.Stat(dst)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return os.SameFile(si, di), nil
}

// isInside reports whether dst is src or lies beneath it once symlinks in
// the existing part of either path are resolved.
func isInside(src, dst string) (bool, error) {
	realSrc, err := filepath.EvalSymlinks(src)
	if err != nil {
		return false, err
	}
	realDst, err := resolveExisting(dst)
	if err != nil {
		return false, err
	}
	return realDst == realSrc || isWithin(realDst, realSrc), nil
}

// resolveExisting evaluates symlinks on the longest existing prefix of path
// and re-attaches the missing remainder.
func resolveExisting(path string) (string, error) {
	var rest []string
	cur := path
	for {
		resolved, err := filepath.EvalSymlinks(cur)
		if err == nil {
			for i := len(rest) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, rest[i])
			}
			return resolved, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return path, nil
		}
		rest = append(rest, filepath.Base(cur))
		cur = parent
	}
}
