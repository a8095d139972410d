package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/bamsammich/treecopy/internal/pathkind"
	"github.com/bamsammich/treecopy/internal/progress"
	"github.com/bamsammich/treecopy/internal/stats"
)

const plainProgressInterval = 5 * time.Second

// plainPresenter writes one line per finished entry to w, and a progress
// line to errW every few seconds. It is used when stderr is not a TTY.
type plainPresenter struct {
	w        io.Writer
	errW     io.Writer
	stats    *stats.Collector
	verbose  bool
	progress bool
	now      func() time.Time

	tick      ticker
	sizes     entrySizer
	lastPrint time.Time
	last      progress.Report
}

func (p *plainPresenter) Handle(r progress.Report) {
	p.last = r
	now := p.now()
	p.tick.maybeTick(p.stats, now)
	size := p.sizes.observe(r)

	switch r.Kind {
	case progress.ScanComplete:
		p.lastPrint = now
		if p.verbose {
			fmt.Fprintf(p.w, "scan: %s entries  %s\n",
				FormatCount(r.EntriesTotal), FormatBytes(r.BytesTotal))
		}
	case progress.EntryCompleted:
		p.printEntry(r, size)
	case progress.EntrySkipped:
		fmt.Fprintf(p.w, "%s  skipped\n", r.Path)
	case progress.SourceRemoved:
		if p.verbose {
			fmt.Fprintf(p.w, "removed: %s\n", r.Path)
		}
	case progress.ChunkCopied:
	}

	if p.progress && now.Sub(p.lastPrint) >= plainProgressInterval {
		p.printProgress()
		p.lastPrint = now
	}
}

func (p *plainPresenter) printEntry(r progress.Report, size int64) {
	switch r.EntryKind {
	case pathkind.File:
		fmt.Fprintf(p.w, "%s  %s\n", r.Path, FormatBytes(size))
	case pathkind.Directory:
		if p.verbose {
			fmt.Fprintf(p.w, "%s/\n", r.Path)
		}
	default:
		fmt.Fprintf(p.w, "%s  %s\n", r.Path, r.EntryKind)
	}
}

func (p *plainPresenter) printProgress() {
	r := p.last
	speed := 0.0
	var eta time.Duration
	if p.stats != nil {
		speed = p.stats.RollingSpeed(10)
		eta = p.stats.ETA()
	}
	fmt.Fprintf(p.errW, "progress: %.0f%% %s/%s %s/%s entries %s eta %s\n",
		r.Fraction()*100,
		FormatBytes(r.BytesDone), FormatBytes(r.BytesTotal),
		FormatCount(r.EntriesDone), FormatCount(r.EntriesTotal),
		FormatRate(speed),
		FormatETA(eta),
	)
}

func (*plainPresenter) Finish() {}

func (p *plainPresenter) Summary() string {
	if p.stats == nil {
		return ""
	}
	return CompletionSummary(p.stats.Snapshot())
}
