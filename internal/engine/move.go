package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bamsammich/treecopy/internal/pathkind"
	"github.com/bamsammich/treecopy/internal/platform"
)

// MoveOutcome reports how a move was carried out.
type MoveOutcome int

const (
	RenamedDirectly MoveOutcome = iota + 1
	CopiedThenSourceRemoved
	// Skipped is returned by MoveFile under Skip when the destination
	// exists. Nothing was moved.
	Skipped
)

var outcomeNames = [...]string{
	0:                       "none",
	RenamedDirectly:         "renamed",
	CopiedThenSourceRemoved: "copied then source removed",
	Skipped:                 "skipped",
}

func (o MoveOutcome) String() string {
	if o >= 0 && int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "unknown"
}

// Replaced in tests to force the cross-device path.
var (
	rename        = os.Rename
	isCrossDevice = platform.IsCrossDevice
)

// MoveFile moves a file or symlink. A rename is tried first; when it fails
// across filesystems the entry is copied and the source removed.
func MoveFile(ctx context.Context, src, dst string, opts Options) (MoveOutcome, error) {
	src, dst, err := prepare(OpMoveFile, src, dst)
	if err != nil {
		return 0, err
	}

	t := newTransfer(ctx, OpMoveFile, opts)
	e, err := statEntry(src, false)
	if err != nil {
		return 0, ioError(OpMoveFile, filepath.Base(src), err)
	}
	t.begin(1, e.Size, e.RelPath)

	existing, err := pathkind.Classify(dst)
	if err != nil {
		return 0, ioError(OpMoveFile, e.RelPath, err)
	}
	if existing != pathkind.NotFound {
		switch {
		case t.opts.Policy == Abort:
			return 0, conflictError(OpMoveFile, e.RelPath)
		case t.opts.Policy == Skip:
			t.skipped(e)
			return Skipped, nil
		case existing == pathkind.Directory:
			return 0, &TransferError{Kind: ErrConflict, Op: OpMoveFile, Path: e.RelPath, Err: errors.New("destination is a directory")}
		}
	}

	if err := t.checkCanceled(e.RelPath); err != nil {
		return 0, err
	}
	renamed, err := t.tryRename(src, dst, e)
	if err != nil {
		return 0, err
	}
	if renamed {
		return RenamedDirectly, nil
	}

	out, err := t.transferEntry(e, src, dst)
	if err != nil {
		return 0, fallbackError(OpMoveFile, e.RelPath, err, false)
	}
	if out != outcomeDone {
		return Skipped, nil
	}
	if err := os.Remove(src); err != nil {
		return 0, fallbackError(OpMoveFile, e.RelPath, fmt.Errorf("remove %s: %w", src, err), false)
	}
	t.sourceRemoved(e)
	return CopiedThenSourceRemoved, nil
}

// MoveDirectory moves the tree at src to dst. An existing destination
// directory is merged into under Skip and Overwrite, which rename cannot
// do, so those moves copy and then remove.
func MoveDirectory(ctx context.Context, src, dst string, opts Options) (MoveOutcome, error) {
	src, dst, err := prepare(OpMoveDirectory, src, dst)
	if err != nil {
		return 0, err
	}

	t := newTransfer(ctx, OpMoveDirectory, opts)
	existing, err := pathkind.Classify(dst)
	if err != nil {
		return 0, ioError(OpMoveDirectory, dst, err)
	}
	if existing != pathkind.NotFound {
		if t.opts.Policy == Abort {
			return 0, conflictError(OpMoveDirectory, dst)
		}
		t.log.Debug("destination exists, merging", "src", src, "dst", dst, "policy", t.opts.Policy)
		return t.copyThenRemove(src, dst)
	}

	if err := t.checkCanceled(""); err != nil {
		return 0, err
	}
	root, err := statEntry(src, false)
	if err != nil {
		return 0, ioError(OpMoveDirectory, "", err)
	}
	// A rename moves the tree as one entry. The copy fallback rescans and
	// reports real totals.
	t.begin(1, 0, root.RelPath)
	renamed, err := t.tryRename(src, dst, root)
	if err != nil {
		return 0, err
	}
	if renamed {
		return RenamedDirectly, nil
	}
	return t.copyThenRemove(src, dst)
}

// tryRename reports false with a nil error when the rename crossed
// filesystems and a copy is needed instead.
func (t *transfer) tryRename(src, dst string, e TreeEntry) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return false, ioError(t.op, e.RelPath, fmt.Errorf("create parent dir %s: %w", filepath.Dir(dst), err))
	}

	err := rename(src, dst)
	switch {
	case err == nil:
		t.log.Debug("renamed", "src", src, "dst", dst)
		if e.Kind == pathkind.File {
			t.bytesDone += e.Size
		}
		t.completed(e)
		return true, nil
	case isCrossDevice(err):
		t.log.Debug("rename crossed filesystems, copying", "src", src, "dst", dst)
		return false, nil
	default:
		return false, ioError(t.op, e.RelPath, fmt.Errorf("rename %s -> %s: %w", src, dst, err))
	}
}

// copyThenRemove copies the whole tree and deletes the source only once the
// copy succeeded.
func (t *transfer) copyThenRemove(src, dst string) (MoveOutcome, error) {
	plan, err := Scan(t.ctx, src, ScanOptions{Logger: t.log})
	if err != nil {
		return 0, fallbackError(t.op, errPath(err), withOp(err, t.op), false)
	}
	done, err := t.run(plan, dst)
	if err != nil {
		return 0, fallbackError(t.op, errPath(err), err, false)
	}
	if err := t.removeSource(plan, done); err != nil {
		return 0, err
	}
	return CopiedThenSourceRemoved, nil
}

func errPath(err error) string {
	var te *TransferError
	if errors.As(err, &te) {
		return te.Path
	}
	return ""
}
