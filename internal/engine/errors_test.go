package engine

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransferErrorMatchesKindAndCause(t *testing.T) {
	err := error(ioError(OpCopyDirectory, "sub/b.txt", &fs.PathError{Op: "open", Path: "/x", Err: fs.ErrPermission}))

	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.Equal(t, "copy directory sub/b.txt: i/o failure: open /x: permission denied", err.Error())

	var pe *fs.PathError
	assert.ErrorAs(t, err, &pe)
}

func TestTransferErrorWithoutCause(t *testing.T) {
	err := conflictError(OpCopyFile, "a.txt")
	assert.Equal(t, []error{ErrConflict}, err.Unwrap())
	assert.Equal(t, "copy file a.txt: destination exists", err.Error())
}

func TestFallbackErrorMessage(t *testing.T) {
	inner := canceledError(OpMoveDirectory, "x", context.Canceled)

	kept := fallbackError(OpMoveDirectory, "x", inner, false)
	assert.Contains(t, kept.Error(), "(source intact)")
	assert.ErrorIs(t, kept, ErrCrossDeviceFallback)
	assert.ErrorIs(t, kept, ErrCanceled)
	assert.ErrorIs(t, kept, context.Canceled)

	partial := fallbackError(OpMoveDirectory, "x", inner, true)
	assert.Contains(t, partial.Error(), "(source partially removed)")
}

func TestWithOp(t *testing.T) {
	err := withOp(scanError("d", errors.New("boom")), OpMoveDirectory)
	assert.Equal(t, OpMoveDirectory, transferErr(t, err).Op)

	plain := errors.New("plain")
	assert.Same(t, plain, withOp(plain, OpCopyFile))
}
