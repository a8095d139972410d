package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

const tmpSuffix = ".treecopy-tmp"

// pendingTmp holds temp files written but not yet renamed into place.
var pendingTmp tmpSet

type tmpSet struct {
	mu    sync.Mutex
	paths map[string]struct{}
}

func (s *tmpSet) add(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paths == nil {
		s.paths = make(map[string]struct{})
	}
	s.paths[path] = struct{}{}
}

func (s *tmpSet) remove(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.paths, path)
}

func (s *tmpSet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.paths)
}

// drain empties the set and returns what it held.
func (s *tmpSet) drain() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.paths))
	for p := range s.paths {
		out = append(out, p)
	}
	s.paths = nil
	return out
}

// tmpPathFor returns a fresh hidden sibling of dst, e.g.
// ".report.pdf.1a2b3c4d.treecopy-tmp".
func tmpPathFor(dst string) string {
	name := fmt.Sprintf(".%s.%s%s", filepath.Base(dst), uuid.NewString()[:8], tmpSuffix)
	return filepath.Join(filepath.Dir(dst), name)
}

// RegisterTmp records a temp file so CleanupTmpFiles can remove it.
func RegisterTmp(path string) { pendingTmp.add(path) }

// DeregisterTmp forgets a temp file once it has been renamed or removed.
func DeregisterTmp(path string) { pendingTmp.remove(path) }

// PendingTmp returns the number of temp files still registered.
func PendingTmp() int { return pendingTmp.len() }

// CleanupTmpFiles removes every registered temp file. The CLI calls it after
// an interrupt.
func CleanupTmpFiles() {
	for _, p := range pendingTmp.drain() {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "treecopy: remove temp file %s: %v\n", p, err)
		}
	}
}
