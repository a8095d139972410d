package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/bamsammich/treecopy/internal/pathkind"
	"github.com/bamsammich/treecopy/internal/progress"
	"github.com/bamsammich/treecopy/internal/stats"
)

// hudPresenter provides a TTY display with a scrolling feed of finished
// entries and a 2-line HUD that redraws in place below it.
type hudPresenter struct {
	w       io.Writer
	stats   *stats.Collector
	verbose bool
	width   int
	now     func() time.Time

	tick         ticker
	sizes        entrySizer
	last         progress.Report
	hudDrawn     bool
	lastHUDDraw  time.Time
	rateMode     bool
	rateSwitched bool
}

const (
	rateThreshHigh   = 200.0
	rateThreshLow    = 100.0
	sparklineWidth   = 20
	progressBarWidth = 20
	hudLines         = 2
	hudMinInterval   = 50 * time.Millisecond
)

func (p *hudPresenter) Handle(r progress.Report) {
	p.last = r
	now := p.now()
	p.tick.maybeTick(p.stats, now)
	size := p.sizes.observe(r)

	switch r.Kind {
	case progress.EntryCompleted:
		p.maybeSwitch()
		if p.showEntry(r) {
			p.feed(fmt.Sprintf("%s  %s  %s",
				styleIconDone.Render("✓"), p.pathCell(r.Path),
				styleFileSize.Render(entryDetail(r.EntryKind, size))))
		}
	case progress.EntrySkipped:
		if !p.rateMode {
			p.feed(fmt.Sprintf("%s  %s  %s",
				styleIconSkipped.Render("–"), p.pathCell(r.Path),
				styleFileSize.Render("skipped")))
		}
	case progress.SourceRemoved:
		if p.verbose && !p.rateMode {
			p.feed(fmt.Sprintf("%s  %s  %s",
				styleIconSkipped.Render("×"), p.pathCell(r.Path),
				styleFileSize.Render("removed")))
		}
	case progress.ScanComplete, progress.ChunkCopied:
	}

	if now.Sub(p.lastHUDDraw) >= hudMinInterval || r.Kind == progress.ScanComplete {
		p.drawHUD(now)
	}
}

// showEntry keeps directories out of the feed unless verbose.
func (p *hudPresenter) showEntry(r progress.Report) bool {
	if p.rateMode {
		return false
	}
	return r.EntryKind != pathkind.Directory || p.verbose
}

func entryDetail(kind pathkind.Kind, size int64) string {
	switch kind {
	case pathkind.File:
		return FormatBytes(size)
	case pathkind.Directory:
		return "dir"
	default:
		return "link"
	}
}

func (p *hudPresenter) pathCell(path string) string {
	return styledPath(truncPath(path, max(p.width-24, 16)))
}

// feed prints a line above the HUD.
func (p *hudPresenter) feed(line string) {
	p.clearHUD()
	fmt.Fprintln(p.w, line)
	p.drawHUD(p.now())
}

func (p *hudPresenter) maybeSwitch() {
	if p.stats == nil {
		return
	}
	eps := p.stats.RollingEntriesPerSec(2)
	switch {
	case !p.rateMode && eps > rateThreshHigh:
		p.rateMode = true
		if !p.rateSwitched {
			p.rateSwitched = true
			p.clearHUD()
			fmt.Fprintln(p.w, styleStatus.Render(fmt.Sprintf(
				"↯ rate view (%s entries/s)", FormatCount(int64(eps)))))
		}
	case p.rateMode && eps < rateThreshLow:
		p.rateMode = false
	}
}

func (p *hudPresenter) drawHUD(now time.Time) {
	p.clearHUD()

	r := p.last
	var (
		speed float64
		eta   time.Duration
		spark []float64
	)
	if p.stats != nil {
		speed = p.stats.RollingSpeed(10)
		eta = p.stats.ETA()
		spark = p.stats.ThroughputHistory(sparklineWidth)
	}

	// Line 1: throughput sparkline + speed + byte totals.
	fmt.Fprintf(p.w, "       %s   %s   %s / %s\n",
		styleSparkline.Render(Sparkline(spark, sparklineWidth)),
		FormatRate(speed),
		FormatBytes(r.BytesDone), FormatBytes(r.BytesTotal))

	// Line 2: progress bar + entries + eta.
	frac := r.Fraction()
	fmt.Fprintf(p.w, " %3.0f%%  %s   %s / %s entries   eta %s\n",
		frac*100, styledProgressBar(frac, progressBarWidth),
		FormatCount(r.EntriesDone), FormatCount(r.EntriesTotal),
		FormatETA(eta))

	p.hudDrawn = true
	p.lastHUDDraw = now
}

func (p *hudPresenter) clearHUD() {
	if !p.hudDrawn {
		return
	}
	// Move cursor up and clear to end of screen.
	fmt.Fprintf(p.w, "\033[%dA\033[J", hudLines)
	p.hudDrawn = false
}

func (p *hudPresenter) Finish() {
	p.clearHUD()
}

func (p *hudPresenter) Summary() string {
	if p.stats == nil {
		return ""
	}
	return CompletionSummary(p.stats.Snapshot())
}
