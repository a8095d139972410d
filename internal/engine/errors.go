package engine

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by a public operation is a
// *TransferError whose Kind is one of these.
var (
	ErrValidation          = errors.New("validation failed")
	ErrScan                = errors.New("scan failed")
	ErrConflict            = errors.New("destination exists")
	ErrIO                  = errors.New("i/o failure")
	ErrCrossDeviceFallback = errors.New("cross-device fallback failed")
	ErrCanceled            = errors.New("canceled")
)

// Causes carried by validation and scan errors.
var (
	ErrEmptyPath               = errors.New("empty path")
	ErrSourceNotFound          = errors.New("source does not exist")
	ErrSourceKind              = errors.New("source has the wrong kind")
	ErrSameFile                = errors.New("source and destination are the same file")
	ErrDestinationInsideSource = errors.New("destination is inside source")
	ErrDestinationNotDirectory = errors.New("destination exists and is not a directory")
	ErrSymlinkLoop             = errors.New("symlink loop")
)

// Op names the public operation an error came from.
type Op string

const (
	OpCopyFile      Op = "copy file"
	OpCopyDirectory Op = "copy directory"
	OpMoveFile      Op = "move file"
	OpMoveDirectory Op = "move directory"
	OpScan          Op = "scan"
	OpVerify        Op = "verify"
)

// TransferError describes the entry a transfer stopped at. Path is relative
// to the operation root for tree operations and absolute otherwise.
type TransferError struct {
	Kind error
	Op   Op
	Path string
	Err  error

	// SourceRemoved is set on cross-device fallback errors once at least
	// one source entry has been deleted.
	SourceRemoved bool
}

func (e *TransferError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if errors.Is(e.Kind, ErrCrossDeviceFallback) {
		if e.SourceRemoved {
			msg += " (source partially removed)"
		} else {
			msg += " (source intact)"
		}
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *TransferError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func validationError(op Op, path string, cause error) *TransferError {
	return &TransferError{Kind: ErrValidation, Op: op, Path: path, Err: cause}
}

func scanError(path string, err error) *TransferError {
	return &TransferError{Kind: ErrScan, Op: OpScan, Path: path, Err: err}
}

func conflictError(op Op, path string) *TransferError {
	return &TransferError{Kind: ErrConflict, Op: op, Path: path}
}

func ioError(op Op, path string, err error) *TransferError {
	return &TransferError{Kind: ErrIO, Op: op, Path: path, Err: err}
}

func canceledError(op Op, path string, err error) *TransferError {
	return &TransferError{Kind: ErrCanceled, Op: op, Path: path, Err: err}
}

func fallbackError(op Op, path string, err error, removed bool) *TransferError {
	return &TransferError{
		Kind:          ErrCrossDeviceFallback,
		Op:            op,
		Path:          path,
		Err:           err,
		SourceRemoved: removed,
	}
}

// withOp stamps op onto a TransferError produced by a shared helper such as
// Scan, leaving other errors untouched.
func withOp(err error, op Op) error {
	var te *TransferError
	if errors.As(err, &te) {
		te.Op = op
	}
	return err
}
