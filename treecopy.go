// Package treecopy copies and moves files and directory trees with
// byte-accurate progress reporting, a per-call conflict policy and
// symlink-aware traversal.
//
// Every operation runs synchronously on the caller's goroutine. Progress
// callbacks are invoked inline between chunks and entries.
//
//	stats, err := treecopy.CopyDirectory(ctx, "photos", "/backup/photos", treecopy.Options{
//		Policy:     treecopy.Skip,
//		OnProgress: func(r treecopy.Report) { fmt.Printf("\r%3.0f%%", 100*r.Fraction()) },
//	})
package treecopy

import (
	"context"

	"github.com/bamsammich/treecopy/internal/engine"
	"github.com/bamsammich/treecopy/internal/pathkind"
	"github.com/bamsammich/treecopy/internal/progress"
)

type (
	Options        = engine.Options
	Preserve       = engine.Preserve
	ConflictPolicy = engine.ConflictPolicy
	CopyStats      = engine.CopyStats
	MoveOutcome    = engine.MoveOutcome
	TransferError  = engine.TransferError
	Plan           = engine.Plan
	TreeEntry      = engine.TreeEntry
	ScanOptions    = engine.ScanOptions
	VerifyResult   = engine.VerifyResult
	PathKind       = pathkind.Kind
	Report         = progress.Report
	ReportKind     = progress.Kind
	ProgressFunc   = progress.Func
)

const (
	Abort     = engine.Abort
	Skip      = engine.Skip
	Overwrite = engine.Overwrite

	RenamedDirectly         = engine.RenamedDirectly
	CopiedThenSourceRemoved = engine.CopiedThenSourceRemoved
	Skipped                 = engine.Skipped
)

var (
	ErrValidation          = engine.ErrValidation
	ErrScan                = engine.ErrScan
	ErrConflict            = engine.ErrConflict
	ErrIO                  = engine.ErrIO
	ErrCrossDeviceFallback = engine.ErrCrossDeviceFallback
	ErrCanceled            = engine.ErrCanceled

	ErrSourceNotFound          = engine.ErrSourceNotFound
	ErrSourceKind              = engine.ErrSourceKind
	ErrSameFile                = engine.ErrSameFile
	ErrDestinationInsideSource = engine.ErrDestinationInsideSource
	ErrDestinationNotDirectory = engine.ErrDestinationNotDirectory
	ErrSymlinkLoop             = engine.ErrSymlinkLoop
)

// CopyFile copies a single regular file, following src if it is a symlink.
func CopyFile(ctx context.Context, src, dst string, opts Options) (CopyStats, error) {
	return engine.CopyFile(ctx, src, dst, opts)
}

// CopyDirectory copies the tree rooted at src to dst.
func CopyDirectory(ctx context.Context, src, dst string, opts Options) (CopyStats, error) {
	return engine.CopyDirectory(ctx, src, dst, opts)
}

// MoveFile moves a file or symlink, copying then removing when a rename
// cannot cross filesystems.
func MoveFile(ctx context.Context, src, dst string, opts Options) (MoveOutcome, error) {
	return engine.MoveFile(ctx, src, dst, opts)
}

// MoveDirectory moves a tree, copying then removing when a rename cannot
// cross filesystems or the destination already exists.
func MoveDirectory(ctx context.Context, src, dst string, opts Options) (MoveOutcome, error) {
	return engine.MoveDirectory(ctx, src, dst, opts)
}

// Scan builds the transfer plan for root without touching anything.
func Scan(ctx context.Context, root string, opts ScanOptions) (Plan, error) {
	return engine.Scan(ctx, root, opts)
}

// Verify compares every file of plan against its copy under dstRoot.
func Verify(ctx context.Context, plan Plan, dstRoot string) (VerifyResult, error) {
	return engine.Verify(ctx, plan, dstRoot, nil)
}

// Classify reports what path currently is, without following it.
func Classify(path string) (PathKind, error) {
	return pathkind.Classify(path)
}

// SizeOfFile returns the size of the regular file at path.
func SizeOfFile(path string) (int64, error) {
	return pathkind.SizeOfFile(path)
}
