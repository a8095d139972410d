// Package filter decides which scanned entries take part in a transfer.
// Rules are evaluated in order and the first match wins; unmatched paths
// are included.
package filter

import "path/filepath"

// Rule represents a single include or exclude filter rule.
type Rule struct {
	Pattern *compiledPattern
	Include bool
}

// Chain holds an ordered list of filter rules plus file size bounds.
type Chain struct {
	rules   []Rule
	minSize int64
	maxSize int64
}

// NewChain creates an empty filter chain.
func NewChain() *Chain {
	return &Chain{}
}

// AddExclude appends an exclude rule.
func (c *Chain) AddExclude(pattern string) error {
	return c.add(pattern, false)
}

// AddInclude appends an include rule.
func (c *Chain) AddInclude(pattern string) error {
	return c.add(pattern, true)
}

func (c *Chain) add(pattern string, include bool) error {
	cp, err := compilePattern(pattern)
	if err != nil {
		return err
	}
	c.rules = append(c.rules, Rule{Pattern: cp, Include: include})
	return nil
}

// SetMinSize sets the minimum regular file size.
func (c *Chain) SetMinSize(n int64) { c.minSize = n }

// SetMaxSize sets the maximum regular file size.
func (c *Chain) SetMaxSize(n int64) { c.maxSize = n }

// Empty reports whether the chain has no rules and no size bounds.
func (c *Chain) Empty() bool {
	return c == nil || (len(c.rules) == 0 && c.minSize == 0 && c.maxSize == 0)
}

// Match returns true if the entry should be included. relPath uses the host
// separator and is relative to the transfer root; size is ignored for
// directories. A nil chain includes everything.
func (c *Chain) Match(relPath string, isDir bool, size int64) bool {
	if c == nil {
		return true
	}
	if !isDir {
		if c.minSize > 0 && size < c.minSize {
			return false
		}
		if c.maxSize > 0 && size > c.maxSize {
			return false
		}
	}

	slashed := filepath.ToSlash(relPath)
	for _, rule := range c.rules {
		if rule.Pattern.match(slashed, isDir) {
			return rule.Include
		}
	}
	return true
}
