package ui

import "github.com/bamsammich/treecopy/internal/progress"

// quietPresenter consumes reports but produces no output.
type quietPresenter struct{}

func (*quietPresenter) Handle(progress.Report) {}

func (*quietPresenter) Finish() {}

func (*quietPresenter) Summary() string {
	return ""
}
