// Package documenttest provides an in-memory document.Accessor for tests.
package documenttest

import (
	"context"
	"sync"

	"github.com/sokinpui/docpanel/internal/document"
)

// Fake is a configurable document.Accessor. Each Func field may be replaced to
// change behaviour; the defaults serve Selection and Document and record writes.
type Fake struct {
	InitializeFunc       func(ctx context.Context) error
	SelectedTextFunc     func(ctx context.Context) (string, error)
	DocumentTextFunc     func(ctx context.Context) (string, error)
	ReplaceSelectionFunc func(ctx context.Context, text string) error
	InsertTextFunc       func(ctx context.Context, text string) error

	mu        sync.Mutex
	Selection string
	Document  string
	Replaced  []string
	Inserted  []string
	Reads     int
}

// NewFake returns a Fake whose selection is sel.
func NewFake(sel string) *Fake {
	f := &Fake{Selection: sel}
	f.InitializeFunc = func(context.Context) error { return nil }
	f.SelectedTextFunc = f.defaultSelectedText
	f.DocumentTextFunc = f.defaultDocumentText
	f.ReplaceSelectionFunc = f.defaultReplaceSelection
	f.InsertTextFunc = f.defaultInsertText
	return f
}

func (f *Fake) defaultSelectedText(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Selection, nil
}

func (f *Fake) defaultDocumentText(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Document, nil
}

func (f *Fake) defaultReplaceSelection(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Replaced = append(f.Replaced, text)
	f.Selection = text
	return nil
}

func (f *Fake) defaultInsertText(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Inserted = append(f.Inserted, text)
	return nil
}

func (f *Fake) Initialize(ctx context.Context) error {
	return f.InitializeFunc(ctx)
}

func (f *Fake) SelectedText(ctx context.Context) (string, error) {
	f.count()
	return f.SelectedTextFunc(ctx)
}

func (f *Fake) DocumentText(ctx context.Context) (string, error) {
	f.count()
	return f.DocumentTextFunc(ctx)
}

func (f *Fake) ReplaceSelection(ctx context.Context, text string) error {
	return f.ReplaceSelectionFunc(ctx, text)
}

func (f *Fake) InsertText(ctx context.Context, text string) error {
	return f.InsertTextFunc(ctx, text)
}

func (f *Fake) count() {
	f.mu.Lock()
	f.Reads++
	f.mu.Unlock()
}

// Writes returns copies of the recorded replace and insert calls.
func (f *Fake) Writes() (replaced, inserted []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Replaced...), append([]string(nil), f.Inserted...)
}

var _ document.Accessor = (*Fake)(nil)
