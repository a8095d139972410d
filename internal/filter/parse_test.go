package filter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	rules := `# keep sources, drop the rest of the noise
+ *.go
- *.log

- vendor/
bare.txt
`
	c := NewChain()
	require.NoError(t, c.Parse(strings.NewReader(rules)))

	require.Len(t, c.rules, 4)
	assert.True(t, c.rules[0].Include)
	for _, r := range c.rules[1:] {
		assert.False(t, r.Include, r.Pattern.String())
	}

	assert.True(t, c.Match("cmd/main.go", false, 1))
	assert.False(t, c.Match("run.log", false, 1))
	assert.False(t, c.Match("vendor", true, 0))
	assert.False(t, c.Match("bare.txt", false, 1))
	assert.True(t, c.Match("other.txt", false, 1))
}

func TestParseReportsLine(t *testing.T) {
	c := NewChain()
	err := c.Parse(strings.NewReader("*.ok\n- [bad\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules")
	require.NoError(t, os.WriteFile(path, []byte("# nothing but comments\n\n"), 0o644))

	c := NewChain()
	require.NoError(t, c.LoadFile(path))
	assert.Empty(t, c.rules)

	err := NewChain().LoadFile(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
