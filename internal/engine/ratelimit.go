package engine

import (
	"context"

	"golang.org/x/time/rate"
)

// NewBWLimiter creates a limiter capping throughput to bytesPerSec. The
// burst is one chunk, or the whole rate when that is smaller.
func NewBWLimiter(bytesPerSec int64) *rate.Limiter {
	burst := chunkSize
	if bytesPerSec < int64(burst) {
		burst = int(bytesPerSec)
	}
	return rate.NewLimiter(rate.Limit(bytesPerSec), burst)
}

// waitBytes blocks until n bytes may pass. Requests larger than the burst
// are split, since WaitN rejects them outright.
func waitBytes(ctx context.Context, lim *rate.Limiter, n int) error {
	if lim == nil {
		return nil
	}
	burst := lim.Burst()
	for n > 0 {
		step := min(n, burst)
		if err := lim.WaitN(ctx, step); err != nil {
			return err
		}
		n -= step
	}
	return nil
}
