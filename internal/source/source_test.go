package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sokinpui/docpanel/internal/document"
)

// newTestClipboard returns a ready host backed by an in-memory clipboard.
func newTestClipboard(t *testing.T, docPath, initial string) (*Clipboard, *string) {
	t.Helper()
	board := initial
	c := New(docPath)
	c.read = func() (string, error) { return board, nil }
	c.write = func(s string) error { board = s; return nil }
	c.ready = true
	return c, &board
}

func TestClipboardReadsAndWrites(t *testing.T) {
	ctx := context.Background()
	c, board := newTestClipboard(t, "", "selected clause")

	sel, err := c.SelectedText(ctx)
	if err != nil || sel != "selected clause" {
		t.Fatalf("SelectedText() = %q, %v", sel, err)
	}

	doc, err := c.DocumentText(ctx)
	if err != nil || doc != "selected clause" {
		t.Fatalf("DocumentText() without file = %q, %v", doc, err)
	}

	if err := c.InsertText(ctx, "\n\nSummary: s"); err != nil {
		t.Fatalf("InsertText() error = %v", err)
	}
	if *board != "selected clause\n\nSummary: s" {
		t.Errorf("clipboard after insert = %q", *board)
	}

	if err := c.ReplaceSelection(ctx, "redrafted"); err != nil {
		t.Fatalf("ReplaceSelection() error = %v", err)
	}
	if *board != "redrafted" {
		t.Errorf("clipboard after replace = %q", *board)
	}
}

func TestClipboardDocumentFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contract.txt")
	if err := os.WriteFile(path, []byte("whole contract"), 0644); err != nil {
		t.Fatalf("Failed to write document: %v", err)
	}
	c, _ := newTestClipboard(t, path, "clause")

	doc, err := c.DocumentText(context.Background())
	if err != nil {
		t.Fatalf("DocumentText() error = %v", err)
	}
	if doc != "whole contract" {
		t.Errorf("DocumentText() = %q", doc)
	}
}

func TestClipboardReadFailure(t *testing.T) {
	c, _ := newTestClipboard(t, "", "")
	c.read = func() (string, error) { return "", errors.New("xclip exited 1") }

	_, err := c.SelectedText(context.Background())
	if !errors.Is(err, document.ErrHostOperationFailed) {
		t.Fatalf("SelectedText() error = %v, want ErrHostOperationFailed", err)
	}
}

func TestClipboardNotInitialized(t *testing.T) {
	c := New("")
	_, err := c.SelectedText(context.Background())
	if !errors.Is(err, document.ErrNotInitialized) {
		t.Fatalf("SelectedText() error = %v, want ErrNotInitialized", err)
	}
}

func TestClipboardMissingDocumentFile(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "missing.txt"))
	err := c.Initialize(context.Background())
	if !errors.Is(err, document.ErrHostUnavailable) {
		t.Fatalf("Initialize() error = %v, want ErrHostUnavailable", err)
	}
}
