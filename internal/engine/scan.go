package engine

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bamsammich/treecopy/internal/filter"
	"github.com/bamsammich/treecopy/internal/pathkind"
)

// TreeEntry is one item of a scanned tree. Size is zero for directories and
// symlinks. Depth is zero for direct children of the root.
type TreeEntry struct {
	RelPath    string
	Kind       pathkind.Kind
	Size       int64
	Depth      int
	Mode       fs.FileMode
	ModTime    time.Time
	AccTime    time.Time
	UID        int
	GID        int
	LinkTarget string
}

// Plan is the ordered list of entries beneath Root. Parents always come
// before their children and siblings are sorted by name. Root itself is not
// an entry.
type Plan struct {
	Root         string
	Entries      []TreeEntry
	TotalBytes   int64
	TotalEntries int64
}

// ScanOptions shapes what Scan records.
type ScanOptions struct {
	// FollowSymlinks records the targets of symlinks instead of the links.
	FollowSymlinks bool
	// MaxDepth limits the walk; entries with Depth >= MaxDepth are left out.
	// Zero means unlimited.
	MaxDepth int
	Filter   *filter.Chain
	Logger   *slog.Logger
}

// scanItem is a pending entry on the walk stack. ancestors holds the
// directories from the root down to the entry's parent and is only tracked
// when following symlinks.
type scanItem struct {
	entry     TreeEntry
	ancestors []fs.FileInfo
	dirInfo   fs.FileInfo
}

// Scan walks root depth-first with an explicit stack and returns the plan.
// The first unreadable entry aborts the scan.
func Scan(ctx context.Context, root string, opts ScanOptions) (Plan, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	rootInfo, err := os.Stat(root)
	if err != nil {
		return Plan{}, scanError(root, err)
	}
	if !rootInfo.IsDir() {
		return Plan{}, scanError(root, ErrSourceKind)
	}

	s := &scanner{ctx: ctx, root: root, opts: opts, log: log}
	var chain []fs.FileInfo
	if opts.FollowSymlinks {
		chain = []fs.FileInfo{rootInfo}
	}

	var stack []scanItem
	children, err := s.readChildren("", -1, chain)
	if err != nil {
		return Plan{}, err
	}
	stack = pushReversed(stack, children)

	plan := Plan{Root: root}
	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		e := item.entry
		plan.Entries = append(plan.Entries, e)
		if e.Kind == pathkind.File {
			plan.TotalBytes += e.Size
		}

		if e.Kind != pathkind.Directory || !s.descend(e.Depth) {
			continue
		}
		var next []fs.FileInfo
		if opts.FollowSymlinks {
			next = append(slices.Clip(item.ancestors), item.dirInfo)
		}
		children, err := s.readChildren(e.RelPath, e.Depth, next)
		if err != nil {
			return Plan{}, err
		}
		stack = pushReversed(stack, children)
	}
	plan.TotalEntries = int64(len(plan.Entries))

	log.Debug("scan complete",
		"root", root,
		"entries", plan.TotalEntries,
		"bytes", plan.TotalBytes,
	)
	return plan, nil
}

type scanner struct {
	ctx  context.Context
	root string
	opts ScanOptions
	log  *slog.Logger
}

func (s *scanner) descend(depth int) bool {
	return s.opts.MaxDepth <= 0 || depth+1 < s.opts.MaxDepth
}

// readChildren lists the directory at relDir and returns its included
// children sorted by name.
func (s *scanner) readChildren(relDir string, parentDepth int, ancestors []fs.FileInfo) ([]scanItem, error) {
	if err := s.ctx.Err(); err != nil {
		return nil, canceledError(OpScan, relDir, err)
	}

	dirPath := filepath.Join(s.root, relDir)
	dirents, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, scanError(relDir, err)
	}

	items := make([]scanItem, 0, len(dirents))
	for _, de := range dirents {
		rel := filepath.Join(relDir, de.Name())
		item, ok, err := s.inspect(rel, parentDepth+1, ancestors)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// inspect builds the entry for rel. ok is false when the entry is omitted
// from the plan.
func (s *scanner) inspect(rel string, depth int, ancestors []fs.FileInfo) (scanItem, bool, error) {
	if s.opts.MaxDepth > 0 && depth >= s.opts.MaxDepth {
		return scanItem{}, false, nil
	}

	abs := filepath.Join(s.root, rel)
	info, err := os.Lstat(abs)
	if err != nil {
		return scanItem{}, false, scanError(rel, err)
	}

	item := scanItem{ancestors: ancestors}
	e := TreeEntry{RelPath: rel, Depth: depth}

	if info.Mode()&fs.ModeSymlink != 0 {
		target, err := os.Readlink(abs)
		if err != nil {
			return scanItem{}, false, scanError(rel, err)
		}
		e.LinkTarget = target

		if s.opts.FollowSymlinks {
			followed, err := os.Stat(abs)
			switch {
			case err == nil:
				info = followed
				e.LinkTarget = ""
			default:
				// Dangling or cyclic: nothing to follow, keep the link itself.
				s.log.Debug("symlink target unresolvable, keeping link", "path", rel, "error", err)
			}
		}
	}

	e.Mode = info.Mode()
	e.ModTime = info.ModTime()
	e.UID, e.GID, e.AccTime = statOwner(info)

	switch {
	case info.Mode().IsRegular():
		e.Kind = pathkind.File
		e.Size = info.Size()
	case info.IsDir():
		e.Kind = pathkind.Directory
		if s.opts.FollowSymlinks {
			for _, a := range ancestors {
				if os.SameFile(a, info) {
					return scanItem{}, false, scanError(rel, ErrSymlinkLoop)
				}
			}
			item.dirInfo = info
		}
	case info.Mode()&fs.ModeSymlink != 0:
		kind, err := pathkind.FromMode(abs, info.Mode())
		if err != nil {
			return scanItem{}, false, scanError(rel, err)
		}
		e.Kind = kind
	default:
		s.log.Debug("skipping special file", "path", rel, "mode", info.Mode().String())
		return scanItem{}, false, nil
	}

	if !s.opts.Filter.Match(rel, e.Kind == pathkind.Directory, e.Size) {
		return scanItem{}, false, nil
	}

	item.entry = e
	return item, true, nil
}

func pushReversed(stack, items []scanItem) []scanItem {
	for i := len(items) - 1; i >= 0; i-- {
		stack = append(stack, items[i])
	}
	return stack
}

// isWithin reports whether rel lies strictly beneath dir.
func isWithin(rel, dir string) bool {
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}
	return strings.HasPrefix(rel, dir)
}
