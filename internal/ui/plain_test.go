package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/treecopy/internal/pathkind"
	"github.com/bamsammich/treecopy/internal/progress"
	"github.com/bamsammich/treecopy/internal/stats"
)

// fakeClock advances by step on every call.
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

func newPlain(out, errOut *bytes.Buffer, step time.Duration) *plainPresenter {
	clock := &fakeClock{t: time.Unix(0, 0), step: step}
	return &plainPresenter{
		w:        out,
		errW:     errOut,
		stats:    stats.NewCollector(),
		progress: true,
		now:      clock.now,
	}
}

// treeReports is the report sequence for a tree of one directory and two
// files of 10 and 5 bytes.
func treeReports() []progress.Report {
	return []progress.Report{
		{Kind: progress.ScanComplete, BytesTotal: 15, EntriesTotal: 3},
		{Kind: progress.EntryCompleted, Path: "dir", EntryKind: pathkind.Directory, BytesTotal: 15, EntriesDone: 1, EntriesTotal: 3},
		{Kind: progress.ChunkCopied, Path: "dir/a.txt", BytesDone: 10, BytesTotal: 15, EntriesDone: 1, EntriesTotal: 3},
		{Kind: progress.EntryCompleted, Path: "dir/a.txt", EntryKind: pathkind.File, BytesDone: 10, BytesTotal: 15, EntriesDone: 2, EntriesTotal: 3},
		{Kind: progress.ChunkCopied, Path: "dir/b.txt", BytesDone: 15, BytesTotal: 15, EntriesDone: 2, EntriesTotal: 3},
		{Kind: progress.EntryCompleted, Path: "dir/b.txt", EntryKind: pathkind.File, BytesDone: 15, BytesTotal: 15, EntriesDone: 3, EntriesTotal: 3},
	}
}

func TestPlainPresenterEntryLines(t *testing.T) {
	var out, errOut bytes.Buffer
	p := newPlain(&out, &errOut, time.Millisecond)

	for _, r := range treeReports() {
		p.Handle(r)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2, "directories are only listed when verbose")
	assert.Equal(t, "dir/a.txt  10 B", lines[0])
	assert.Equal(t, "dir/b.txt  5 B", lines[1])
	assert.Empty(t, errOut.String(), "no progress line before the interval elapses")
}

func TestPlainPresenterVerbose(t *testing.T) {
	var out, errOut bytes.Buffer
	p := newPlain(&out, &errOut, time.Millisecond)
	p.verbose = true

	for _, r := range treeReports() {
		p.Handle(r)
	}
	p.Handle(progress.Report{Kind: progress.SourceRemoved, Path: "dir/a.txt", BytesDone: 15})

	assert.Contains(t, out.String(), "scan: 3 entries  15 B")
	assert.Contains(t, out.String(), "dir/\n")
	assert.Contains(t, out.String(), "removed: dir/a.txt")
}

func TestPlainPresenterSkipped(t *testing.T) {
	var out, errOut bytes.Buffer
	p := newPlain(&out, &errOut, time.Millisecond)

	p.Handle(progress.Report{Kind: progress.ScanComplete, BytesTotal: 4, EntriesTotal: 1})
	p.Handle(progress.Report{Kind: progress.EntrySkipped, Path: "keep.txt", EntryKind: pathkind.File, BytesDone: 4, BytesTotal: 4})

	assert.Equal(t, "keep.txt  skipped\n", out.String())
}

func TestPlainPresenterPeriodicProgress(t *testing.T) {
	var out, errOut bytes.Buffer
	p := newPlain(&out, &errOut, 3*time.Second)

	for _, r := range treeReports() {
		p.Handle(r)
	}

	assert.Contains(t, errOut.String(), "progress: ")
	assert.Contains(t, errOut.String(), "entries")
}

func TestPlainPresenterNoProgress(t *testing.T) {
	var out, errOut bytes.Buffer
	p := newPlain(&out, &errOut, 10*time.Second)
	p.progress = false

	for _, r := range treeReports() {
		p.Handle(r)
	}
	assert.Empty(t, errOut.String())
}

func TestPlainPresenterTicksCollector(t *testing.T) {
	var out, errOut bytes.Buffer
	p := newPlain(&out, &errOut, 2*time.Second)
	p.stats.AddBytesCopied(100)

	for _, r := range treeReports() {
		p.Handle(r)
	}
	assert.NotEmpty(t, p.stats.ThroughputHistory(10))
}

func TestPlainPresenterSummary(t *testing.T) {
	var out, errOut bytes.Buffer
	p := newPlain(&out, &errOut, time.Millisecond)
	p.stats.AddEntriesDone(3)
	p.stats.AddFilesCopied(2)

	summary := p.Summary()
	assert.Contains(t, summary, "entries 3")
	assert.Contains(t, summary, "files 2")
	assert.Contains(t, summary, "errors 0")
}
