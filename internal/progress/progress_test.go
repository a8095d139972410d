package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		want string
		kind Kind
	}{
		{want: "ScanComplete", kind: ScanComplete},
		{want: "ChunkCopied", kind: ChunkCopied},
		{want: "EntryCompleted", kind: EntryCompleted},
		{want: "EntrySkipped", kind: EntrySkipped},
		{want: "SourceRemoved", kind: SourceRemoved},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.String())
		})
	}
}

func TestKindStringUnknown(t *testing.T) {
	assert.Equal(t, "Unknown", Kind(0).String())
	assert.Equal(t, "Unknown", Kind(999).String())
}

func TestReportFraction(t *testing.T) {
	assert.InDelta(t, 0.5, Report{BytesDone: 5, BytesTotal: 10}.Fraction(), 1e-9)
	assert.InDelta(t, 1.0, Report{BytesDone: 12, BytesTotal: 10}.Fraction(), 1e-9)
	assert.InDelta(t, 0.25, Report{EntriesDone: 1, EntriesTotal: 4}.Fraction(), 1e-9)
	assert.InDelta(t, 1.0, Report{}.Fraction(), 1e-9)
}
