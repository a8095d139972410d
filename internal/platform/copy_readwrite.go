package platform

import (
	"io"
	"sync"
)

const bufferSize = 1 << 20

var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, bufferSize)
		return &b
	},
}

// copyReadWrite copies a range through a pooled buffer using positional
// reads and writes. A source shorter than the range ends the copy early
// without error.
func copyReadWrite(params CopyRangeParams) (CopyResult, error) {
	bufp := bufPool.Get().(*[]byte) //nolint:errcheck,forcetypeassert // pool only holds *[]byte
	defer bufPool.Put(bufp)

	r := io.NewSectionReader(params.Src, params.Offset, params.Length)
	w := io.NewOffsetWriter(params.Dst, params.Offset)
	n, err := io.CopyBuffer(w, r, *bufp)
	return CopyResult{BytesWritten: n, Method: ReadWrite}, err
}
