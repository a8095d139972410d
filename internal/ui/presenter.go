package ui

import (
	"io"
	"time"

	"github.com/bamsammich/treecopy/internal/progress"
	"github.com/bamsammich/treecopy/internal/stats"
)

// Presenter displays progress reports. Handle is called synchronously on
// the transferring goroutine, so implementations must return quickly.
type Presenter interface {
	// Handle consumes one report.
	Handle(r progress.Report)
	// Finish clears any in-place display. It is safe to call more than once.
	Finish()
	// Summary returns the final summary line.
	Summary() string
}

// Config configures a Presenter.
type Config struct {
	Writer     io.Writer
	ErrWriter  io.Writer
	Stats      *stats.Collector
	Width      int
	IsTTY      bool
	Quiet      bool
	Verbose    bool
	NoProgress bool
}

// tickInterval is how often presenters sample the collector's ring buffer.
const tickInterval = time.Second

// NewPresenter creates the appropriate presenter based on configuration.
//
//nolint:ireturn // factory function returns interface by design
func NewPresenter(cfg Config) Presenter {
	if cfg.Quiet {
		return &quietPresenter{}
	}
	if !cfg.IsTTY || cfg.NoProgress {
		return &plainPresenter{
			w:        cfg.Writer,
			errW:     cfg.ErrWriter,
			stats:    cfg.Stats,
			verbose:  cfg.Verbose,
			progress: !cfg.NoProgress,
			now:      time.Now,
		}
	}
	width := cfg.Width
	if width <= 0 {
		width = 80
	}
	return &hudPresenter{
		w:       cfg.ErrWriter, // HUD renders to stderr (the TTY)
		stats:   cfg.Stats,
		verbose: cfg.Verbose,
		width:   width,
		now:     time.Now,
	}
}

// ticker samples a collector at most once per tickInterval.
type ticker struct {
	last time.Time
}

func (t *ticker) maybeTick(c *stats.Collector, now time.Time) {
	if c == nil {
		return
	}
	if t.last.IsZero() {
		t.last = now
		return
	}
	if now.Sub(t.last) >= tickInterval {
		c.Tick()
		t.last = now
	}
}

// entrySizer recovers per-entry byte counts from cumulative reports. Entries
// are transferred one at a time, so the bytes moved between two entry
// boundaries belong to the entry that closes the second one.
type entrySizer struct {
	boundary int64
}

func (s *entrySizer) observe(r progress.Report) int64 {
	if r.Kind == progress.ChunkCopied {
		return 0
	}
	size := r.BytesDone - s.boundary
	s.boundary = r.BytesDone
	return size
}
