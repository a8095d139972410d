package ui

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bamsammich/treecopy/internal/stats"
)

var rateUnits = [...]string{"B/s", "KB/s", "MB/s", "GB/s", "TB/s"}

// FormatRate formats a bytes-per-second rate with three significant digits.
func FormatRate(bytesPerSec float64) string {
	if bytesPerSec <= 0 {
		return "0 B/s"
	}
	val := bytesPerSec
	for i, u := range rateUnits {
		if val >= 1024 && i < len(rateUnits)-1 {
			val /= 1024
			continue
		}
		switch {
		case i == 0:
			return fmt.Sprintf("%.0f %s", val, u)
		case val < 10:
			return fmt.Sprintf("%.2f %s", val, u)
		case val < 100:
			return fmt.Sprintf("%.1f %s", val, u)
		default:
			return fmt.Sprintf("%.0f %s", val, u)
		}
	}
	return ""
}

// FormatBytes wraps stats.FormatBytes for UI use.
func FormatBytes(b int64) string {
	return stats.FormatBytes(b)
}

// FormatDuration formats elapsed time concisely, e.g. "3m 17s".
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	switch {
	case h > 0:
		return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// FormatETA is FormatDuration, with "--" for an unknown estimate.
func FormatETA(d time.Duration) string {
	if d <= 0 {
		return "--"
	}
	return FormatDuration(d)
}

// FormatCount formats an integer with comma separators.
func FormatCount(n int64) string {
	if n < 0 {
		return "-" + FormatCount(-n)
	}
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(s[:lead])
	for i := lead; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// barCells returns how many of width cells a fraction fills, clamped.
func barCells(frac float64, width int) int {
	frac = min(max(frac, 0), 1)
	return min(int(frac*float64(width)), width)
}

// ProgressBar renders an unstyled progress bar of the given width using ▪/□.
func ProgressBar(frac float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := barCells(frac, width)
	return strings.Repeat("▪", filled) + strings.Repeat("□", width-filled)
}

// styledProgressBar is ProgressBar with theme colors.
func styledProgressBar(frac float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := barCells(frac, width)
	return styleProgressFilled.Render(strings.Repeat("▪", filled)) +
		styleProgressEmpty.Render(strings.Repeat("□", width-filled))
}

// styledPath dims the directory portion of a relative path so the name
// stands out.
func styledPath(path string) string {
	dir, base := filepath.Split(path)
	if dir == "" {
		return base
	}
	return styleFileDir.Render(dir) + base
}

// truncPath shortens a path to fit within maxLen characters, keeping the tail.
func truncPath(path string, maxLen int) string {
	r := []rune(path)
	if len(r) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return string(r[:max(maxLen, 0)])
	}
	return "..." + string(r[len(r)-maxLen+3:])
}
