package filter

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// compiledPattern is an rsync-style rule pattern backed by a doublestar glob.
type compiledPattern struct {
	glob     string
	original string
	anchored bool // leading / or any inner /: matched from the tree root
	dirOnly  bool // trailing /: matches directories only
}

// compilePattern validates pattern and records its anchoring. Unanchored
// patterns match the basename or any path suffix.
func compilePattern(pattern string) (*compiledPattern, error) {
	cp := &compiledPattern{original: pattern}

	if strings.HasSuffix(pattern, "/") {
		cp.dirOnly = true
		pattern = strings.TrimSuffix(pattern, "/")
	}

	if strings.HasPrefix(pattern, "/") {
		cp.anchored = true
		pattern = strings.TrimPrefix(pattern, "/")
	} else if strings.Contains(pattern, "/") {
		cp.anchored = true
	}

	if pattern == "" {
		return nil, fmt.Errorf("empty pattern %q", cp.original)
	}

	cp.glob = pattern
	if !cp.anchored {
		cp.glob = "**/" + pattern
	}
	if !doublestar.ValidatePattern(cp.glob) {
		return nil, fmt.Errorf("invalid pattern %q", cp.original)
	}
	return cp, nil
}

// match tests a slash-separated relative path against the pattern.
func (cp *compiledPattern) match(relPath string, isDir bool) bool {
	if cp.dirOnly && !isDir {
		return false
	}
	ok, err := doublestar.Match(cp.glob, relPath)
	return err == nil && ok
}

func (cp *compiledPattern) String() string { return cp.original }
