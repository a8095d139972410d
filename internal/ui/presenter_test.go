package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bamsammich/treecopy/internal/config"
	"github.com/bamsammich/treecopy/internal/progress"
	"github.com/bamsammich/treecopy/internal/stats"
)

func TestNewPresenterSelection(t *testing.T) {
	var out, errOut bytes.Buffer
	base := Config{Writer: &out, ErrWriter: &errOut, Stats: stats.NewCollector()}

	cfg := base
	cfg.Quiet = true
	cfg.IsTTY = true
	assert.IsType(t, &quietPresenter{}, NewPresenter(cfg))

	cfg = base
	assert.IsType(t, &plainPresenter{}, NewPresenter(cfg))

	cfg = base
	cfg.IsTTY = true
	cfg.NoProgress = true
	p := NewPresenter(cfg)
	assert.IsType(t, &plainPresenter{}, p)
	assert.False(t, p.(*plainPresenter).progress)

	cfg = base
	cfg.IsTTY = true
	hud, ok := NewPresenter(cfg).(*hudPresenter)
	assert.True(t, ok)
	assert.Equal(t, 80, hud.width)
	assert.Same(t, &errOut, hud.w)
}

func TestQuietPresenterIsSilent(t *testing.T) {
	p := NewPresenter(Config{Quiet: true})
	for _, r := range treeReports() {
		p.Handle(r)
	}
	p.Finish()
	assert.Empty(t, p.Summary())
}

func TestEntrySizer(t *testing.T) {
	var s entrySizer
	var sizes []int64
	for _, r := range treeReports() {
		if r.Kind == progress.EntryCompleted {
			sizes = append(sizes, s.observe(r))
			continue
		}
		s.observe(r)
	}
	assert.Equal(t, []int64{0, 10, 5}, sizes)
}

func TestCompletionSummaryCounts(t *testing.T) {
	s := CompletionSummary(stats.Snapshot{
		EntriesDone:    4,
		FilesCopied:    2,
		EntriesSkipped: 1,
		SourceRemoved:  3,
		FilesVerified:  2,
		VerifyFailed:   1,
		EntriesFailed:  1,
	})
	assert.Contains(t, s, "skipped 1")
	assert.Contains(t, s, "removed 3")
	assert.Contains(t, s, "verified 2")
	assert.Contains(t, s, "errors 2")

	s = CompletionSummary(stats.Snapshot{})
	assert.NotContains(t, s, "skipped")
	assert.NotContains(t, s, "verified")
}

func TestApplyTheme(t *testing.T) {
	orig := ColorRed
	t.Cleanup(func() {
		ColorRed = orig
		rebuildStyles()
	})

	red := "#ff0000"
	ApplyTheme(config.ThemeConfig{Red: &red})
	assert.Equal(t, "#ff0000", string(ColorRed))
	assert.Equal(t, ColorRed, styleIconFailed.GetForeground())
}
