package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSize(t *testing.T) {
	tests := map[string]int64{
		"0":      0,
		"512":    512,
		"64B":    64,
		"4k":     4 << 10,
		"4KB":    4 << 10,
		"4KiB":   4 << 10,
		"10M":    10 << 20,
		"2GiB":   2 << 30,
		"1.5G":   3 << 29,
		"1T":     1 << 40,
		" 8 MB ": 8 << 20,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			got, err := ParseSize(in)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestParseSizeErrors(t *testing.T) {
	for _, in := range []string{"", "K", "abc", "-1", "1.2.3M", "-2K"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseSize(in)
			assert.Error(t, err)
		})
	}
}
