// Package progress defines the reports a transfer delivers to its caller.
package progress

import "github.com/bamsammich/treecopy/internal/pathkind"

// Kind identifies why a report was emitted.
type Kind int

const (
	ScanComplete Kind = iota + 1
	ChunkCopied
	EntryCompleted
	EntrySkipped
	SourceRemoved
)

var kindNames = [...]string{
	ScanComplete:   "ScanComplete",
	ChunkCopied:    "ChunkCopied",
	EntryCompleted: "EntryCompleted",
	EntrySkipped:   "EntrySkipped",
	SourceRemoved:  "SourceRemoved",
}

func (k Kind) String() string {
	if k > 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Report is a point-in-time view of one operation's progress.
// BytesDone never decreases within an operation.
type Report struct {
	Kind         Kind
	Path         string // relative to the operation root
	EntryKind    pathkind.Kind
	BytesDone    int64
	BytesTotal   int64
	EntriesDone  int64
	EntriesTotal int64
}

// Fraction returns BytesDone/BytesTotal clamped to [0, 1]. An operation with
// no bytes to move reports entry progress instead.
func (r Report) Fraction() float64 {
	done, total := r.BytesDone, r.BytesTotal
	if total <= 0 {
		done, total = r.EntriesDone, r.EntriesTotal
	}
	if total <= 0 {
		return 1
	}
	f := float64(done) / float64(total)
	if f > 1 {
		return 1
	}
	return f
}

// Func receives reports synchronously on the transferring goroutine.
// A slow Func slows the transfer.
type Func func(Report)
