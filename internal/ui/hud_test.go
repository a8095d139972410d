package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bamsammich/treecopy/internal/progress"
	"github.com/bamsammich/treecopy/internal/stats"
)

func newHUD(out *bytes.Buffer) *hudPresenter {
	clock := &fakeClock{t: time.Unix(0, 0), step: 100 * time.Millisecond}
	return &hudPresenter{
		w:     out,
		stats: stats.NewCollector(),
		width: 80,
		now:   clock.now,
	}
}

func TestHUDFeedsCompletedFiles(t *testing.T) {
	var out bytes.Buffer
	p := newHUD(&out)

	for _, r := range treeReports() {
		p.Handle(r)
	}

	s := out.String()
	assert.Contains(t, s, "a.txt")
	assert.Contains(t, s, "b.txt")
	assert.Contains(t, s, "10 B")
	assert.Contains(t, s, "100%")
	assert.Contains(t, s, "3 / 3 entries")
	assert.Contains(t, s, "15 B / 15 B")
}

func TestHUDHidesDirectoriesUnlessVerbose(t *testing.T) {
	var out bytes.Buffer
	p := newHUD(&out)
	p.Handle(treeReports()[0])
	p.Handle(treeReports()[1])
	assert.NotContains(t, out.String(), "  dir")

	out.Reset()
	p = newHUD(&out)
	p.verbose = true
	p.Handle(treeReports()[0])
	p.Handle(treeReports()[1])
	assert.Contains(t, out.String(), "dir")
}

func TestHUDRedrawClearsPreviousLines(t *testing.T) {
	var out bytes.Buffer
	p := newHUD(&out)

	for _, r := range treeReports() {
		p.Handle(r)
	}
	assert.Contains(t, out.String(), "\033[2A\033[J")

	out.Reset()
	p.Finish()
	assert.Equal(t, "\033[2A\033[J", out.String())

	out.Reset()
	p.Finish()
	assert.Empty(t, out.String(), "finish is idempotent")
}

func TestHUDRateModeSuppressesFeed(t *testing.T) {
	var out bytes.Buffer
	p := newHUD(&out)
	p.stats = nil // no samples, so the view cannot switch back
	p.rateMode = true

	for _, r := range treeReports() {
		p.Handle(r)
	}
	// The HUD still renders, but no per-entry lines do.
	assert.NotContains(t, out.String(), "✓")
	assert.True(t, strings.Contains(out.String(), "entries"))
}

func TestHUDSkippedLine(t *testing.T) {
	var out bytes.Buffer
	p := newHUD(&out)
	p.Handle(progress.Report{Kind: progress.ScanComplete, BytesTotal: 4, EntriesTotal: 1})
	p.Handle(progress.Report{Kind: progress.EntrySkipped, Path: "keep.txt", BytesDone: 4, BytesTotal: 4, EntriesTotal: 1})

	assert.Contains(t, out.String(), "keep.txt")
	assert.Contains(t, out.String(), "skipped")
}
