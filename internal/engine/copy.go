package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bamsammich/treecopy/internal/pathkind"
	"github.com/bamsammich/treecopy/internal/platform"
)

// modeBits are the mode bits applied to every copied file and directory.
const modeBits = fs.ModePerm | fs.ModeSetuid | fs.ModeSetgid | fs.ModeSticky

type outcome int

const (
	outcomeDone        outcome = iota
	outcomeSkipped             // entry left alone
	outcomeSkippedTree         // directory and everything below it left alone
	outcomeMerged              // directory already present, children still visited
)

type pendingDir struct {
	src   string
	path  string
	entry TreeEntry
}

// CopyFile copies the regular file at src (following a symlink) to dst.
// Missing parents of dst are created.
func CopyFile(ctx context.Context, src, dst string, opts Options) (CopyStats, error) {
	src, dst, err := prepare(OpCopyFile, src, dst)
	if err != nil {
		return CopyStats{}, err
	}

	e, err := statEntry(src, true)
	if err != nil {
		return CopyStats{}, ioError(OpCopyFile, filepath.Base(src), err)
	}
	if e.Kind != pathkind.File {
		return CopyStats{}, validationError(OpCopyFile, src, fmt.Errorf("%w: %s", ErrSourceKind, e.Kind))
	}

	t := newTransfer(ctx, OpCopyFile, opts)
	t.begin(1, e.Size, e.RelPath)
	if err := t.checkCanceled(e.RelPath); err != nil {
		return t.result(), err
	}
	_, err = t.transferEntry(e, src, dst)
	return t.result(), err
}

// CopyDirectory copies the tree at src into dst, creating dst if needed.
// Entries are transferred in plan order and the first failure stops the
// copy, leaving earlier entries in place.
func CopyDirectory(ctx context.Context, src, dst string, opts Options) (CopyStats, error) {
	src, dst, err := prepare(OpCopyDirectory, src, dst)
	if err != nil {
		return CopyStats{}, err
	}

	t := newTransfer(ctx, OpCopyDirectory, opts)
	plan, err := Scan(ctx, src, ScanOptions{
		FollowSymlinks: opts.FollowSymlinks,
		MaxDepth:       opts.MaxDepth,
		Filter:         opts.Filter,
		Logger:         t.log,
	})
	if err != nil {
		return t.result(), withOp(err, OpCopyDirectory)
	}
	_, err = t.run(plan, dst)
	return t.result(), err
}

// prepare normalizes and validates a source/destination pair.
func prepare(op Op, src, dst string) (string, string, error) {
	absSrc, err := Normalize(src)
	if err != nil {
		return "", "", validationError(op, src, err)
	}
	absDst, err := Normalize(dst)
	if err != nil {
		return "", "", validationError(op, dst, err)
	}
	if err := Validate(op, absSrc, absDst); err != nil {
		return "", "", err
	}
	return absSrc, absDst, nil
}

// run transfers every plan entry beneath dstRoot. done[i] reports whether
// entry i is present at the destination when run returns. Directories
// created before a failure still receive their source metadata.
func (t *transfer) run(plan Plan, dstRoot string) ([]bool, error) {
	t.begin(plan.TotalEntries, plan.TotalBytes, "")
	done := make([]bool, len(plan.Entries))

	if t.opts.Policy == Abort {
		if err := t.checkConflicts(plan, dstRoot); err != nil {
			return done, err
		}
	}
	if err := t.ensureRoot(plan.Root, dstRoot); err != nil {
		return done, err
	}

	if err := t.transferAll(plan, dstRoot, done); err != nil {
		if ferr := t.finishDirs(); ferr != nil {
			t.log.Debug("restoring directory metadata after failure", "error", ferr)
		}
		return done, err
	}
	return done, t.finishDirs()
}

func (t *transfer) transferAll(plan Plan, dstRoot string, done []bool) error {
	skipTree := ""
	for i, e := range plan.Entries {
		if skipTree != "" && isWithin(e.RelPath, skipTree) {
			t.skipped(e)
			continue
		}
		skipTree = ""

		if err := t.checkCanceled(e.RelPath); err != nil {
			return err
		}
		out, err := t.transferEntry(e, filepath.Join(plan.Root, e.RelPath), filepath.Join(dstRoot, e.RelPath))
		if err != nil {
			return err
		}
		switch out {
		case outcomeDone, outcomeMerged:
			done[i] = true
		case outcomeSkippedTree:
			skipTree = e.RelPath
		}
	}
	return nil
}

// checkConflicts finds the first plan entry that already exists beneath
// dstRoot, before anything is written. Subtrees whose directory is absent
// at the destination are not descended into.
func (t *transfer) checkConflicts(plan Plan, dstRoot string) error {
	kind, err := pathkind.Classify(dstRoot)
	if err != nil {
		return ioError(t.op, "", err)
	}
	if kind == pathkind.NotFound {
		return nil
	}

	absent := ""
	for _, e := range plan.Entries {
		if absent != "" && isWithin(e.RelPath, absent) {
			continue
		}
		absent = ""

		existing, err := pathkind.Classify(filepath.Join(dstRoot, e.RelPath))
		if err != nil {
			return ioError(t.op, e.RelPath, err)
		}
		if resolveAction(existing, t.opts.Policy) == ActionAbort {
			t.stats.AddEntriesFailed(1)
			return conflictError(t.op, e.RelPath)
		}
		if e.Kind == pathkind.Directory {
			absent = e.RelPath
		}
	}
	return nil
}

// ensureRoot creates dstRoot when it is missing. A created root takes the
// source root's metadata once the copy is done.
func (t *transfer) ensureRoot(srcRoot, dstRoot string) error {
	kind, err := pathkind.Classify(dstRoot)
	if err != nil {
		return ioError(t.op, "", err)
	}
	if kind != pathkind.NotFound {
		return nil
	}
	root, err := statEntry(srcRoot, true)
	if err != nil {
		return ioError(t.op, "", err)
	}
	if err := os.MkdirAll(dstRoot, root.Mode.Perm()|0o700); err != nil {
		return ioError(t.op, "", fmt.Errorf("mkdir %s: %w", dstRoot, err))
	}
	root.RelPath = ""
	t.dirs = append(t.dirs, pendingDir{src: srcRoot, path: dstRoot, entry: root})
	return nil
}

// transferEntry resolves the conflict at dst and then creates the entry.
func (t *transfer) transferEntry(e TreeEntry, src, dst string) (outcome, error) {
	existing, err := pathkind.Classify(dst)
	if err != nil {
		return 0, ioError(t.op, e.RelPath, err)
	}

	switch resolveAction(existing, t.opts.Policy) {
	case ActionAbort:
		t.stats.AddEntriesFailed(1)
		return 0, conflictError(t.op, e.RelPath)
	case ActionSkip:
		t.skipped(e)
		switch {
		case e.Kind != pathkind.Directory:
			return outcomeSkipped, nil
		case existing == pathkind.Directory:
			return outcomeMerged, nil
		default:
			return outcomeSkippedTree, nil
		}
	}

	// Overwrite never removes a directory.
	if e.Kind != pathkind.Directory && existing == pathkind.Directory {
		t.stats.AddEntriesFailed(1)
		return 0, &TransferError{Kind: ErrConflict, Op: t.op, Path: e.RelPath, Err: errors.New("destination is a directory")}
	}

	switch {
	case e.Kind == pathkind.Directory:
		err = t.makeDir(e, src, dst, existing)
	case e.Kind.IsSymlink():
		err = t.makeSymlink(e, src, dst)
	default:
		err = t.copyFileData(e, src, dst)
	}
	if err != nil {
		t.stats.AddEntriesFailed(1)
		var te *TransferError
		if errors.As(err, &te) {
			return 0, err
		}
		return 0, ioError(t.op, e.RelPath, err)
	}

	t.completed(e)
	return outcomeDone, nil
}

// makeDir creates or merges a directory. It is left owner-writable until
// finishDirs applies the source mode.
func (t *transfer) makeDir(e TreeEntry, src, dst string, existing pathkind.Kind) error {
	switch existing {
	case pathkind.Directory:
	case pathkind.NotFound:
		if err := os.MkdirAll(dst, e.Mode.Perm()|0o700); err != nil {
			return fmt.Errorf("mkdir %s: %w", dst, err)
		}
	default:
		if err := os.Remove(dst); err != nil {
			return fmt.Errorf("remove %s: %w", dst, err)
		}
		if err := os.Mkdir(dst, e.Mode.Perm()|0o700); err != nil {
			return fmt.Errorf("mkdir %s: %w", dst, err)
		}
	}
	t.dirs = append(t.dirs, pendingDir{src: src, path: dst, entry: e})
	return nil
}

// finishDirs applies directory metadata deepest first.
func (t *transfer) finishDirs() error {
	var first error
	for i := len(t.dirs) - 1; i >= 0; i-- {
		d := t.dirs[i]
		// Metadata goes on while the directory is still owner-writable.
		err := applyPathMetadata(d.src, d.path, d.entry, t.opts.Preserve)
		if cerr := os.Chmod(d.path, d.entry.Mode&modeBits); cerr != nil && err == nil {
			err = fmt.Errorf("chmod %s: %w", d.path, cerr)
		}
		if err != nil && first == nil {
			first = ioError(t.op, d.entry.RelPath, err)
		}
	}
	t.dirs = nil
	return first
}

// makeSymlink recreates a link under a temp name and renames it over dst.
func (t *transfer) makeSymlink(e TreeEntry, src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create parent dir %s: %w", filepath.Dir(dst), err)
	}

	tmpPath := tmpPathFor(dst)
	RegisterTmp(tmpPath)
	defer func() {
		DeregisterTmp(tmpPath)
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	if err := os.Symlink(e.LinkTarget, tmpPath); err != nil {
		return fmt.Errorf("symlink %s -> %s: %w", dst, e.LinkTarget, err)
	}
	if err := applyPathMetadata(src, tmpPath, e, t.opts.Preserve); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return fmt.Errorf("rename %s -> %s: %w", tmpPath, dst, err)
	}
	return nil
}

// copyFileData copies src into a temp file beside dst in chunkSize pieces
// and renames it into place.
func (t *transfer) copyFileData(e TreeEntry, src, dst string) error {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create parent dir %s: %w", dir, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	tmpPath := tmpPathFor(dst)
	RegisterTmp(tmpPath)
	defer func() {
		DeregisterTmp(tmpPath)
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	out, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("create tmp %s: %w", tmpPath, err)
	}

	if err := t.copyChunks(in, out, e); err != nil {
		out.Close()
		return err
	}

	// Explicit chmod so the umask cannot narrow the source mode.
	if err := out.Chmod(e.Mode & modeBits); err != nil {
		out.Close()
		return fmt.Errorf("chmod %s: %w", tmpPath, err)
	}
	if err := applyFileMetadata(out, src, e, t.opts.Preserve); err != nil {
		out.Close()
		return fmt.Errorf("set metadata %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close tmp %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		return fmt.Errorf("rename %s -> %s: %w", tmpPath, dst, err)
	}
	return nil
}

func (t *transfer) copyChunks(in, out *os.File, e TreeEntry) error {
	platform.Preallocate(out, e.Size)

	var off int64
	for off < e.Size {
		n := min(int64(chunkSize), e.Size-off)
		if err := waitBytes(t.ctx, t.limiter, int(n)); err != nil {
			if t.ctx.Err() != nil {
				return canceledError(t.op, e.RelPath, err)
			}
			return fmt.Errorf("throttle: %w", err)
		}

		res, err := platform.CopyRange(platform.CopyRangeParams{Src: in, Dst: out, Offset: off, Length: n})
		off += res.BytesWritten
		if res.BytesWritten > 0 {
			t.chunkDone(res.BytesWritten, e.RelPath)
		}
		if err != nil {
			return fmt.Errorf("copy %s at offset %d via %s: %w", in.Name(), off, res.Method, err)
		}
		if res.BytesWritten < n {
			break // source shrank under us
		}
	}

	if off < e.Size {
		// Drop the preallocated tail.
		if err := out.Truncate(off); err != nil {
			return fmt.Errorf("truncate %s: %w", out.Name(), err)
		}
	}
	return nil
}

// statEntry describes a single path as a plan entry named by its base name.
func statEntry(path string, follow bool) (TreeEntry, error) {
	stat := os.Lstat
	if follow {
		stat = os.Stat
	}
	info, err := stat(path)
	if err != nil {
		return TreeEntry{}, fmt.Errorf("stat %s: %w", path, err)
	}
	kind, err := pathkind.FromMode(path, info.Mode())
	if err != nil {
		return TreeEntry{}, err
	}

	e := TreeEntry{
		RelPath: filepath.Base(path),
		Kind:    kind,
		Mode:    info.Mode(),
		ModTime: info.ModTime(),
	}
	e.UID, e.GID, e.AccTime = statOwner(info)
	switch {
	case kind == pathkind.File:
		e.Size = info.Size()
	case kind.IsSymlink():
		if e.LinkTarget, err = os.Readlink(path); err != nil {
			return TreeEntry{}, fmt.Errorf("readlink %s: %w", path, err)
		}
	}
	return e, nil
}
