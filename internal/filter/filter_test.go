package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilAndEmptyChainIncludeEverything(t *testing.T) {
	var nilChain *Chain
	assert.True(t, nilChain.Match("a/b.txt", false, 10))
	assert.True(t, nilChain.Empty())

	c := NewChain()
	assert.True(t, c.Empty())
	assert.True(t, c.Match("photos/2024", true, 0))
}

func TestChainFirstMatchWins(t *testing.T) {
	tests := []struct {
		name  string
		setup func(c *Chain) error
		path  string
		isDir bool
		want  bool
	}{
		{
			name:  "exclude by extension anywhere",
			setup: func(c *Chain) error { return c.AddExclude("*.tmp") },
			path:  "cache/deep/x.tmp",
			want:  false,
		},
		{
			name: "include listed before exclude keeps file",
			setup: func(c *Chain) error {
				if err := c.AddInclude("keep.tmp"); err != nil {
					return err
				}
				return c.AddExclude("*.tmp")
			},
			path: "keep.tmp",
			want: true,
		},
		{
			name: "exclude listed before include drops file",
			setup: func(c *Chain) error {
				if err := c.AddExclude("*.tmp"); err != nil {
					return err
				}
				return c.AddInclude("keep.tmp")
			},
			path: "keep.tmp",
			want: false,
		},
		{
			name:  "dir-only rule ignores files",
			setup: func(c *Chain) error { return c.AddExclude("node_modules/") },
			path:  "web/node_modules",
			want:  true,
		},
		{
			name:  "dir-only rule matches nested directory",
			setup: func(c *Chain) error { return c.AddExclude("node_modules/") },
			path:  "web/node_modules",
			isDir: true,
			want:  false,
		},
		{
			name:  "anchored rule only at root",
			setup: func(c *Chain) error { return c.AddExclude("/TODO") },
			path:  "docs/TODO",
			want:  true,
		},
		{
			name:  "double star crosses directories",
			setup: func(c *Chain) error { return c.AddExclude("src/**/*_test.go") },
			path:  "src/a/b/c_test.go",
			want:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChain()
			require.NoError(t, tt.setup(c))
			assert.Equal(t, tt.want, c.Match(tt.path, tt.isDir, 1))
		})
	}
}

func TestChainSizeBounds(t *testing.T) {
	c := NewChain()
	c.SetMinSize(10)
	c.SetMaxSize(100)
	assert.False(t, c.Empty())

	assert.False(t, c.Match("small", false, 9))
	assert.True(t, c.Match("edge-low", false, 10))
	assert.True(t, c.Match("edge-high", false, 100))
	assert.False(t, c.Match("big", false, 101))
	// Directories have no size.
	assert.True(t, c.Match("dir", true, 0))
}

func TestAddRejectsBadPatterns(t *testing.T) {
	c := NewChain()
	require.Error(t, c.AddExclude("/"))
	require.Error(t, c.AddExclude("[unclosed"))
	assert.True(t, c.Empty())
}
