// Package source implements document.Accessor on the system clipboard, for
// editors that cannot be driven over RPC. The clipboard holds the selection;
// the whole document comes from a file when one is configured.
package source

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/atotto/clipboard"

	"github.com/sokinpui/docpanel/internal/document"
)

// Clipboard is a clipboard-backed document host.
type Clipboard struct {
	docPath string

	// read and write are swapped in tests.
	read  func() (string, error)
	write func(string) error

	mu    sync.Mutex
	ready bool
}

// New creates a clipboard host. docPath, when non-empty, is the file read by
// DocumentText.
func New(docPath string) *Clipboard {
	return &Clipboard{
		docPath: docPath,
		read:    clipboard.ReadAll,
		write:   clipboard.WriteAll,
	}
}

// Initialize checks that a clipboard utility is available.
func (c *Clipboard) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if clipboard.Unsupported {
		return fmt.Errorf("%w: no clipboard utility found (install xclip, xsel or wl-clipboard)", document.ErrHostUnavailable)
	}
	if c.docPath != "" {
		if _, err := os.Stat(c.docPath); err != nil {
			return fmt.Errorf("%w: %v", document.ErrHostUnavailable, err)
		}
	}
	c.mu.Lock()
	c.ready = true
	c.mu.Unlock()
	return nil
}

func (c *Clipboard) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ready {
		return document.ErrNotInitialized
	}
	return nil
}

// SelectedText returns the clipboard contents.
func (c *Clipboard) SelectedText(ctx context.Context) (string, error) {
	if err := c.check(ctx); err != nil {
		return "", document.OpError(document.OpSelectedText, err)
	}
	content, err := c.read()
	if err != nil {
		return "", document.OpError(document.OpSelectedText, fmt.Errorf("failed to read from clipboard: %w", err))
	}
	return content, nil
}

// DocumentText returns the configured document file, or the clipboard when
// there is none.
func (c *Clipboard) DocumentText(ctx context.Context) (string, error) {
	if err := c.check(ctx); err != nil {
		return "", document.OpError(document.OpDocumentText, err)
	}
	if c.docPath == "" {
		content, err := c.read()
		return content, document.OpError(document.OpDocumentText, err)
	}
	content, err := os.ReadFile(c.docPath)
	if err != nil {
		return "", document.OpError(document.OpDocumentText, err)
	}
	return string(content), nil
}

// ReplaceSelection puts text on the clipboard in place of the selection.
func (c *Clipboard) ReplaceSelection(ctx context.Context, text string) error {
	if err := c.check(ctx); err != nil {
		return document.OpError(document.OpReplaceSelection, err)
	}
	return document.OpError(document.OpReplaceSelection, c.write(text))
}

// InsertText appends text to the selection held on the clipboard.
func (c *Clipboard) InsertText(ctx context.Context, text string) error {
	if err := c.check(ctx); err != nil {
		return document.OpError(document.OpInsertText, err)
	}
	current, err := c.read()
	if err != nil {
		return document.OpError(document.OpInsertText, err)
	}
	return document.OpError(document.OpInsertText, c.write(current+text))
}

var _ document.Accessor = (*Clipboard)(nil)
