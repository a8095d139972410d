// Package engine scans, copies and moves file trees one entry at a time,
// reporting byte-accurate progress as it goes.
package engine

import (
	"context"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/bamsammich/treecopy/internal/filter"
	"github.com/bamsammich/treecopy/internal/pathkind"
	"github.com/bamsammich/treecopy/internal/progress"
	"github.com/bamsammich/treecopy/internal/stats"
)

// chunkSize is the unit of file copy and of ChunkCopied reports.
const chunkSize = 1 << 20

// Preserve selects the metadata copied beyond permission bits, which are
// always kept. On Linux and macOS xattrs are copied for every entry kind;
// other platforms keep times only.
type Preserve struct {
	Times  bool
	Owner  bool
	Xattrs bool
}

// Options configures a single public operation.
type Options struct {
	Policy     ConflictPolicy
	OnProgress progress.Func

	// Scan shaping for CopyDirectory. Moves always transfer the whole tree
	// and keep symlinks as links.
	FollowSymlinks bool
	MaxDepth       int
	Filter         *filter.Chain

	Preserve Preserve

	// ProgressInterval is the minimum number of bytes between ChunkCopied
	// reports. Zero reports every chunk.
	ProgressInterval int64
	// BWLimit caps throughput in bytes per second. Zero is unlimited.
	BWLimit int64

	// Stats receives counters as the transfer runs. A private collector is
	// used when nil.
	Stats  *stats.Collector
	Logger *slog.Logger
}

// CopyStats summarizes one copy. Entries includes skipped entries; Bytes
// counts only bytes actually written.
type CopyStats struct {
	Bytes    int64
	Entries  int64
	Files    int64
	Dirs     int64
	Symlinks int64
	Skipped  int64
}

func copyStatsFrom(s stats.Snapshot) CopyStats {
	return CopyStats{
		Bytes:    s.BytesCopied,
		Entries:  s.EntriesDone,
		Files:    s.FilesCopied,
		Dirs:     s.DirsCreated,
		Symlinks: s.SymlinksCreated,
		Skipped:  s.EntriesSkipped,
	}
}

// transfer is the state of one running operation. It is not safe for
// concurrent use; every public call builds its own.
type transfer struct {
	ctx     context.Context
	op      Op
	opts    Options
	log     *slog.Logger
	stats   *stats.Collector
	limiter *rate.Limiter
	start   stats.Snapshot

	bytesTotal   int64
	entriesTotal int64
	bytesDone    int64
	entriesDone  int64
	lastChunk    int64 // bytesDone at the last ChunkCopied report

	dirs []pendingDir
}

func newTransfer(ctx context.Context, op Op, opts Options) *transfer {
	t := &transfer{ctx: ctx, op: op, opts: opts, log: opts.Logger, stats: opts.Stats}
	if t.log == nil {
		t.log = slog.Default()
	}
	if t.stats == nil {
		t.stats = stats.NewCollector()
	}
	if opts.BWLimit > 0 {
		t.limiter = NewBWLimiter(opts.BWLimit)
	}
	t.start = t.stats.Snapshot()
	return t
}

// begin records the totals and emits ScanComplete.
func (t *transfer) begin(entries, bytes int64, path string) {
	t.entriesTotal = entries
	t.bytesTotal = bytes
	t.stats.SetTotals(entries, bytes)
	t.emit(progress.ScanComplete, path, pathkind.NotFound)
}

func (t *transfer) result() CopyStats {
	return copyStatsFrom(t.stats.Snapshot().Sub(t.start))
}

func (t *transfer) emit(kind progress.Kind, path string, entryKind pathkind.Kind) {
	if t.opts.OnProgress == nil {
		return
	}
	t.opts.OnProgress(progress.Report{
		Kind:         kind,
		Path:         path,
		EntryKind:    entryKind,
		BytesDone:    t.bytesDone,
		BytesTotal:   t.bytesTotal,
		EntriesDone:  t.entriesDone,
		EntriesTotal: t.entriesTotal,
	})
}

// chunkDone accounts n copied bytes and reports if the interval has passed.
func (t *transfer) chunkDone(n int64, path string) {
	t.bytesDone += n
	t.stats.AddBytesCopied(n)
	if t.bytesDone-t.lastChunk >= t.opts.ProgressInterval {
		t.lastChunk = t.bytesDone
		t.emit(progress.ChunkCopied, path, pathkind.File)
	}
}

// completed accounts a transferred entry.
func (t *transfer) completed(e TreeEntry) {
	t.entriesDone++
	t.stats.AddEntriesDone(1)
	switch {
	case e.Kind == pathkind.Directory:
		t.stats.AddDirsCreated(1)
	case e.Kind.IsSymlink():
		t.stats.AddSymlinksCreated(1)
	default:
		t.stats.AddFilesCopied(1)
	}
	t.emit(progress.EntryCompleted, e.RelPath, e.Kind)
}

// skipped accounts an entry left alone. Its bytes still count toward
// BytesDone so progress reaches the total.
func (t *transfer) skipped(e TreeEntry) {
	t.entriesDone++
	if e.Kind == pathkind.File {
		t.bytesDone += e.Size
	}
	t.stats.AddEntriesDone(1)
	t.stats.AddEntriesSkipped(1)
	t.emit(progress.EntrySkipped, e.RelPath, e.Kind)
}

func (t *transfer) checkCanceled(path string) error {
	if err := t.ctx.Err(); err != nil {
		return canceledError(t.op, path, err)
	}
	return nil
}
