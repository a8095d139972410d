package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bamsammich/treecopy/internal/config"
)

// Palette colors. ApplyTheme may replace them from the config file.
var (
	ColorGreen  = lipgloss.Color("#a6e3a1")
	ColorRed    = lipgloss.Color("#f38ba8")
	ColorYellow = lipgloss.Color("#f9e2af")
	ColorMuted  = lipgloss.Color("#5a6278")
)

var (
	styleIconDone       lipgloss.Style
	styleIconFailed     lipgloss.Style
	styleIconSkipped    lipgloss.Style
	styleFileDir        lipgloss.Style
	styleFileSize       lipgloss.Style
	styleSparkline      lipgloss.Style
	styleProgressFilled lipgloss.Style
	styleProgressEmpty  lipgloss.Style
	styleStatus         lipgloss.Style
)

func init() {
	rebuildStyles()
}

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

// rebuildStyles derives every style from the current palette.
func rebuildStyles() {
	styleIconDone, styleProgressFilled = fg(ColorGreen), fg(ColorGreen)
	styleIconFailed = fg(ColorRed)
	styleSparkline = fg(ColorYellow)
	styleStatus = fg(ColorYellow).Italic(true)

	muted := fg(ColorMuted)
	styleIconSkipped = muted
	styleFileDir = muted
	styleFileSize = muted
	styleProgressEmpty = muted
}

func override(dst *lipgloss.Color, v *string) {
	if v != nil && *v != "" {
		*dst = lipgloss.Color(*v)
	}
}

// ApplyTheme replaces palette colors set in tc and rebuilds the styles.
// Empty values keep the default.
func ApplyTheme(tc config.ThemeConfig) {
	override(&ColorGreen, tc.Green)
	override(&ColorRed, tc.Red)
	override(&ColorYellow, tc.Yellow)
	override(&ColorMuted, tc.Muted)
	rebuildStyles()
}
