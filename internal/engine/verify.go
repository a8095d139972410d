package engine

import (
	"context"
	"path/filepath"

	"github.com/bamsammich/treecopy/internal/pathkind"
	"github.com/bamsammich/treecopy/internal/stats"
)

// VerifyResult holds the outcome of a verification pass.
type VerifyResult struct {
	Verified int64
	Failed   int64
	Errors   []VerifyError
}

// OK reports whether every file matched.
func (r VerifyResult) OK() bool { return r.Failed == 0 }

// VerifyError records one file whose copy does not match its source. Err is
// set when either side could not be read.
type VerifyError struct {
	Path    string
	SrcHash string
	DstHash string
	Err     error
}

// Verify compares the BLAKE3 digest of every file in plan with its copy
// under dstRoot. Mismatches are collected, not returned as errors; only
// cancellation stops the pass early. collector may be nil.
func Verify(ctx context.Context, plan Plan, dstRoot string, collector *stats.Collector) (VerifyResult, error) {
	var result VerifyResult
	for _, e := range plan.Entries {
		if e.Kind != pathkind.File {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, canceledError(OpVerify, e.RelPath, err)
		}

		ve := VerifyError{Path: e.RelPath}
		ve.SrcHash, ve.Err = hashFile(ctx, filepath.Join(plan.Root, e.RelPath))
		if ve.Err == nil {
			ve.DstHash, ve.Err = hashFile(ctx, filepath.Join(dstRoot, e.RelPath))
		}
		if err := ctx.Err(); err != nil {
			return result, canceledError(OpVerify, e.RelPath, err)
		}

		if ve.Err == nil && ve.SrcHash == ve.DstHash {
			result.Verified++
			if collector != nil {
				collector.AddFilesVerified(1)
			}
			continue
		}
		result.Failed++
		result.Errors = append(result.Errors, ve)
		if collector != nil {
			collector.AddVerifyFailed(1)
		}
	}
	return result, nil
}
