package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bamsammich/treecopy/internal/progress"
)

// rootKey stands for the plan root in removeSource's bookkeeping.
const rootKey = "."

// removeSource deletes the transferred entries of plan from the source,
// children before parents. A directory is kept when anything beneath it was
// not transferred, and so is the root.
func (t *transfer) removeSource(plan Plan, done []bool) error {
	kept := make(map[string]bool)
	keepAncestors := func(rel string) {
		for d := filepath.Dir(rel); !kept[d]; d = filepath.Dir(d) {
			kept[d] = true
			if d == rootKey {
				return
			}
		}
	}

	removed := false
	for i := len(plan.Entries) - 1; i >= 0; i-- {
		e := plan.Entries[i]
		if !done[i] || kept[e.RelPath] {
			keepAncestors(e.RelPath)
			continue
		}
		if err := t.ctx.Err(); err != nil {
			return fallbackError(t.op, e.RelPath, canceledError(t.op, e.RelPath, err), removed)
		}

		path := filepath.Join(plan.Root, e.RelPath)
		if err := os.Remove(path); err != nil {
			return fallbackError(t.op, e.RelPath, fmt.Errorf("remove %s: %w", path, err), removed)
		}
		removed = true
		t.sourceRemoved(e)
	}

	if kept[rootKey] {
		t.log.Debug("source root kept, entries were skipped", "root", plan.Root)
		return nil
	}
	if err := os.Remove(plan.Root); err != nil {
		return fallbackError(t.op, "", fmt.Errorf("remove %s: %w", plan.Root, err), removed)
	}
	return nil
}

func (t *transfer) sourceRemoved(e TreeEntry) {
	t.stats.AddSourceRemoved(1)
	t.emit(progress.SourceRemoved, e.RelPath, e.Kind)
}
