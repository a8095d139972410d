package stats

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const ringSize = 60

// Collector tracks transfer statistics using lock-free atomic counters.
// The engine writes it; presenters only read it (and Tick it).
type Collector struct {
	entriesDone     atomic.Int64
	filesCopied     atomic.Int64
	dirsCreated     atomic.Int64
	symlinksCreated atomic.Int64
	entriesSkipped  atomic.Int64
	entriesFailed   atomic.Int64
	sourceRemoved   atomic.Int64
	bytesCopied     atomic.Int64
	bytesTotal      atomic.Int64
	entriesTotal    atomic.Int64
	filesVerified   atomic.Int64
	verifyFailed    atomic.Int64
	startTime       time.Time

	// Ring buffer, written only by Tick.
	mu            sync.Mutex
	throughput    [ringSize]int64 // bytes delta per tick
	entriesPerSec [ringSize]int64 // entries delta per tick
	ringIdx       int
	ringCount     int
	lastBytes     int64
	lastEntries   int64
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// Reader is the read side of a Collector, as consumed by presenters.
type Reader interface {
	Snapshot() Snapshot
	RollingSpeed(seconds int) float64
	ETA() time.Duration
	Tick()
}

var _ Reader = (*Collector)(nil)

// SetTotals records scan totals. It replaces, rather than adds to, earlier totals.
func (c *Collector) SetTotals(entries, bytes int64) {
	c.entriesTotal.Store(entries)
	c.bytesTotal.Store(bytes)
}

func (c *Collector) AddEntriesDone(n int64)     { c.entriesDone.Add(n) }
func (c *Collector) AddFilesCopied(n int64)     { c.filesCopied.Add(n) }
func (c *Collector) AddDirsCreated(n int64)     { c.dirsCreated.Add(n) }
func (c *Collector) AddSymlinksCreated(n int64) { c.symlinksCreated.Add(n) }
func (c *Collector) AddEntriesSkipped(n int64)  { c.entriesSkipped.Add(n) }
func (c *Collector) AddEntriesFailed(n int64)   { c.entriesFailed.Add(n) }
func (c *Collector) AddSourceRemoved(n int64)   { c.sourceRemoved.Add(n) }
func (c *Collector) AddBytesCopied(n int64)     { c.bytesCopied.Add(n) }
func (c *Collector) AddFilesVerified(n int64)   { c.filesVerified.Add(n) }
func (c *Collector) AddVerifyFailed(n int64)    { c.verifyFailed.Add(n) }

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	EntriesDone     int64
	FilesCopied     int64
	DirsCreated     int64
	SymlinksCreated int64
	EntriesSkipped  int64
	EntriesFailed   int64
	SourceRemoved   int64
	BytesCopied     int64
	BytesTotal      int64
	EntriesTotal    int64
	FilesVerified   int64
	VerifyFailed    int64
	Elapsed         time.Duration
}

// Snapshot returns a point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		EntriesDone:     c.entriesDone.Load(),
		FilesCopied:     c.filesCopied.Load(),
		DirsCreated:     c.dirsCreated.Load(),
		SymlinksCreated: c.symlinksCreated.Load(),
		EntriesSkipped:  c.entriesSkipped.Load(),
		EntriesFailed:   c.entriesFailed.Load(),
		SourceRemoved:   c.sourceRemoved.Load(),
		BytesCopied:     c.bytesCopied.Load(),
		BytesTotal:      c.bytesTotal.Load(),
		EntriesTotal:    c.entriesTotal.Load(),
		FilesVerified:   c.filesVerified.Load(),
		VerifyFailed:    c.verifyFailed.Load(),
		Elapsed:         c.Elapsed(),
	}
}

// Sub returns the counter deltas s - prev. Totals and Elapsed are taken from s.
func (s Snapshot) Sub(prev Snapshot) Snapshot {
	return Snapshot{
		EntriesDone:     s.EntriesDone - prev.EntriesDone,
		FilesCopied:     s.FilesCopied - prev.FilesCopied,
		DirsCreated:     s.DirsCreated - prev.DirsCreated,
		SymlinksCreated: s.SymlinksCreated - prev.SymlinksCreated,
		EntriesSkipped:  s.EntriesSkipped - prev.EntriesSkipped,
		EntriesFailed:   s.EntriesFailed - prev.EntriesFailed,
		SourceRemoved:   s.SourceRemoved - prev.SourceRemoved,
		BytesCopied:     s.BytesCopied - prev.BytesCopied,
		BytesTotal:      s.BytesTotal,
		EntriesTotal:    s.EntriesTotal,
		FilesVerified:   s.FilesVerified - prev.FilesVerified,
		VerifyFailed:    s.VerifyFailed - prev.VerifyFailed,
		Elapsed:         s.Elapsed,
	}
}

// Tick snapshots byte/entry deltas into the ring buffer. Presenters call it
// about once per second.
func (c *Collector) Tick() {
	currentBytes := c.bytesCopied.Load()
	currentEntries := c.entriesDone.Load()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.throughput[c.ringIdx] = currentBytes - c.lastBytes
	c.entriesPerSec[c.ringIdx] = currentEntries - c.lastEntries
	c.lastBytes = currentBytes
	c.lastEntries = currentEntries

	c.ringIdx = (c.ringIdx + 1) % ringSize
	if c.ringCount < ringSize {
		c.ringCount++
	}
}

// RollingSpeed returns average bytes/sec over the last n samples.
func (c *Collector) RollingSpeed(seconds int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rollingAvg(c.throughput[:], seconds)
}

// RollingEntriesPerSec returns average entries/sec over the last n samples.
func (c *Collector) RollingEntriesPerSec(seconds int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rollingAvg(c.entriesPerSec[:], seconds)
}

// ThroughputHistory returns up to n per-tick byte deltas, oldest first.
func (c *Collector) ThroughputHistory(n int) []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := min(n, c.ringCount)
	out := make([]float64, count)
	for i := range count {
		idx := (c.ringIdx - count + i + ringSize) % ringSize
		out[i] = float64(c.throughput[idx])
	}
	return out
}

func (c *Collector) rollingAvg(buf []int64, n int) float64 {
	count := min(n, c.ringCount)
	if count == 0 {
		return 0
	}
	var sum int64
	for i := range count {
		idx := (c.ringIdx - 1 - i + ringSize) % ringSize
		sum += buf[idx]
	}
	return float64(sum) / float64(count)
}

// ETA estimates remaining time based on rolling speed and remaining bytes.
func (c *Collector) ETA() time.Duration {
	speed := c.RollingSpeed(10)
	if speed <= 0 {
		return 0
	}
	remaining := c.bytesTotal.Load() - c.bytesCopied.Load()
	if remaining <= 0 {
		return 0
	}
	return time.Duration(float64(remaining)/speed) * time.Second
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"entries=%d files=%d dirs=%d symlinks=%d skipped=%d failed=%d bytes=%d",
		s.EntriesDone, s.FilesCopied, s.DirsCreated, s.SymlinksCreated,
		s.EntriesSkipped, s.EntriesFailed, s.BytesCopied,
	)
}

// FormatBytes returns a human-readable byte count.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
