package ui

import (
	"fmt"
	"strings"

	"github.com/bamsammich/treecopy/internal/stats"
)

// CompletionSummary builds the final summary line from a snapshot, e.g.
//
//	done ✓  entries 1,204  files 980  size 2.1 GiB  avg 641 MB/s  time 3m 17s  errors 0
func CompletionSummary(snap stats.Snapshot) string {
	avgSpeed := 0.0
	if secs := snap.Elapsed.Seconds(); secs > 0 {
		avgSpeed = float64(snap.BytesCopied) / secs
	}

	failures := snap.EntriesFailed + snap.VerifyFailed
	icon := styleIconDone.Render("✓")
	if failures > 0 {
		icon = styleIconFailed.Render("✗")
	}

	parts := []string{
		"done " + icon,
		"entries " + FormatCount(snap.EntriesDone),
		"files " + FormatCount(snap.FilesCopied),
		"size " + FormatBytes(snap.BytesCopied),
		"avg " + FormatRate(avgSpeed),
		"time " + FormatDuration(snap.Elapsed),
	}
	if snap.EntriesSkipped > 0 {
		parts = append(parts, "skipped "+FormatCount(snap.EntriesSkipped))
	}
	if snap.SourceRemoved > 0 {
		parts = append(parts, "removed "+FormatCount(snap.SourceRemoved))
	}
	if snap.FilesVerified > 0 || snap.VerifyFailed > 0 {
		parts = append(parts, "verified "+FormatCount(snap.FilesVerified))
	}
	parts = append(parts, fmt.Sprintf("errors %d", failures))

	return strings.Join(parts, "  ")
}
