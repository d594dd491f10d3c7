// Package document defines the contract between the sidebar and the editor
// that hosts the document being worked on.
package document

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrHostUnavailable is returned by Initialize when no host can be reached.
	ErrHostUnavailable = errors.New("document host unavailable")
	// ErrWrongHostType is returned by Initialize when the peer is reachable but
	// is not an editor this sidebar can drive.
	ErrWrongHostType = errors.New("document host is not a supported editor")
	// ErrHostOperationFailed matches every *OperationError.
	ErrHostOperationFailed = errors.New("host operation failed")
	// ErrNotInitialized is wrapped by operations attempted before a successful
	// handshake.
	ErrNotInitialized = errors.New("host connection not initialized")
)

// Accessor is the sole interface to the host document. Every call is
// single-shot: nothing is queued, batched or retried.
type Accessor interface {
	// Initialize performs the readiness handshake with the host. It must be
	// called once before any other method.
	Initialize(ctx context.Context) error
	// SelectedText returns the current selection, or "" when nothing is selected.
	SelectedText(ctx context.Context) (string, error)
	// DocumentText returns the full document body.
	DocumentText(ctx context.Context) (string, error)
	// ReplaceSelection overwrites the current selection with text.
	ReplaceSelection(ctx context.Context, text string) error
	// InsertText inserts text right after the current selection, or at the
	// cursor when nothing is selected.
	InsertText(ctx context.Context, text string) error
}

// OperationError reports a failed read or write against the host.
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// Is makes every OperationError match ErrHostOperationFailed.
func (e *OperationError) Is(target error) bool {
	return target == ErrHostOperationFailed
}

// OpError wraps err as an OperationError for op. A nil err stays nil.
func OpError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &OperationError{Op: op, Err: err}
}

// Operation names used in OperationError.Op.
const (
	OpSelectedText     = "get selected text"
	OpDocumentText     = "get document text"
	OpReplaceSelection = "replace selection"
	OpInsertText       = "insert text"
)
