// Package nvim implements document.Accessor on top of a running Neovim
// instance reached over its RPC socket.
package nvim

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/neovim/go-client/nvim"

	"github.com/sokinpui/docpanel/internal/document"
)

// currentBuffer addresses the buffer in the current window.
const currentBuffer nvim.Buffer = 0

// ErrBlockwiseSelection is returned for a blockwise (CTRL-V) selection,
// which cannot be read or replaced as one run of text.
var ErrBlockwiseSelection = errors.New("blockwise selection is not supported")

// Manager handles the connection and interaction with a Neovim instance.
type Manager struct {
	address string
	write   bool

	mu   sync.Mutex
	nvim *nvim.Nvim
}

// New creates a manager for the Neovim listening on address. An empty address
// falls back to $NVIM, then $NVIM_LISTEN_ADDRESS. When write is set, the
// buffer is written to disk after every change.
func New(address string, write bool) *Manager {
	if address == "" {
		address = os.Getenv("NVIM")
	}
	if address == "" {
		address = os.Getenv("NVIM_LISTEN_ADDRESS")
	}
	return &Manager{address: address, write: write}
}

// Address returns the socket address the manager dials.
func (m *Manager) Address() string {
	return m.address
}

// Initialize dials Neovim and checks that it can edit buffer text in place.
// The whole handshake, version check included, is bounded by ctx.
func (m *Manager) Initialize(ctx context.Context) error {
	if m.address == "" {
		return fmt.Errorf("%w: no Neovim address (set --listen or $NVIM)", document.ErrHostUnavailable)
	}

	v, err := nvim.Dial(m.address, nvim.DialContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: failed to connect to nvim at %s: %v", document.ErrHostUnavailable, m.address, err)
	}

	// nvim_buf_set_text arrived in 0.5; 0.7 is the oldest release tested.
	var supported int
	if err := m.call(ctx, v, func() error { return v.Eval("has('nvim-0.7')", &supported) }); err != nil {
		v.Close()
		if ctx.Err() != nil {
			return fmt.Errorf("%w: nvim at %s did not answer: %w", document.ErrHostUnavailable, m.address, err)
		}
		return fmt.Errorf("%w: %v", document.ErrWrongHostType, err)
	}
	if supported != 1 {
		v.Close()
		return fmt.Errorf("%w: Neovim 0.7 or newer is required", document.ErrWrongHostType)
	}

	m.mu.Lock()
	if m.nvim != nil {
		m.nvim.Close()
	}
	m.nvim = v
	m.mu.Unlock()
	return nil
}

// Close disconnects from Neovim.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.nvim != nil {
		m.nvim.Close()
		m.nvim = nil
	}
}

func (m *Manager) client(ctx context.Context) (*nvim.Nvim, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.nvim == nil {
		return nil, document.ErrNotInitialized
	}
	return m.nvim, nil
}

// call runs fn against v and gives up when ctx ends. A connection whose
// deadline passes is closed, failing the request still in flight; plain
// cancellation leaves it open.
func (m *Manager) call(ctx context.Context, v *nvim.Nvim, fn func() error) error {
	done := make(chan error, 1)
	go func() { done <- fn() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			m.drop(v)
		}
		return ctx.Err()
	}
}

// drop closes v and forgets it if it is the current connection.
func (m *Manager) drop(v *nvim.Nvim) {
	m.mu.Lock()
	if m.nvim == v {
		m.nvim = nil
	}
	m.mu.Unlock()
	v.Close()
}

// snapshot reads the current buffer together with the selection state in a
// single round trip.
func (m *Manager) snapshot(ctx context.Context, v *nvim.Nvim) ([][]byte, visualState, error) {
	var (
		lines [][]byte
		mode  nvim.Mode
		st    visualState
	)
	b := v.NewBatch()
	b.BufferLines(currentBuffer, 0, -1, true, &lines)
	b.Mode(&mode)
	b.Eval("visualmode()", &st.lastMode)
	b.BufferMark(currentBuffer, "<", &st.markFrom)
	b.BufferMark(currentBuffer, ">", &st.markTo)
	b.Eval("getpos('v')", &st.cursorV)
	b.Eval("getpos('.')", &st.cursor)
	if err := m.call(ctx, v, b.Execute); err != nil {
		return nil, visualState{}, err
	}
	st.mode = mode.Mode
	return lines, st, nil
}

// SelectedText returns the live visual selection, or the last one when the
// editor is no longer in visual mode.
func (m *Manager) SelectedText(ctx context.Context) (string, error) {
	v, err := m.client(ctx)
	if err != nil {
		return "", document.OpError(document.OpSelectedText, err)
	}
	lines, st, err := m.snapshot(ctx, v)
	if err != nil {
		return "", document.OpError(document.OpSelectedText, err)
	}
	if st.blockwise() {
		return "", document.OpError(document.OpSelectedText, ErrBlockwiseSelection)
	}
	sel, ok := st.selection(lines)
	if !ok {
		return "", nil
	}
	return sel.text(lines), nil
}

// DocumentText returns the whole current buffer.
func (m *Manager) DocumentText(ctx context.Context) (string, error) {
	v, err := m.client(ctx)
	if err != nil {
		return "", document.OpError(document.OpDocumentText, err)
	}
	var lines [][]byte
	err = m.call(ctx, v, func() (err error) {
		lines, err = v.BufferLines(currentBuffer, 0, -1, true)
		return err
	})
	if err != nil {
		return "", document.OpError(document.OpDocumentText, err)
	}
	return joinLines(lines), nil
}

// ReplaceSelection overwrites the selection. Without a selection the text is
// inserted at the cursor.
func (m *Manager) ReplaceSelection(ctx context.Context, text string) error {
	return document.OpError(document.OpReplaceSelection, m.edit(ctx, text, func(sel span) span {
		return sel
	}))
}

// InsertText inserts text right after the selection, or at the cursor.
func (m *Manager) InsertText(ctx context.Context, text string) error {
	return document.OpError(document.OpInsertText, m.edit(ctx, text, func(sel span) span {
		return span{sel.endRow, sel.endCol, sel.endRow, sel.endCol}
	}))
}

func (m *Manager) edit(ctx context.Context, text string, target func(span) span) error {
	v, err := m.client(ctx)
	if err != nil {
		return err
	}

	lines, st, err := m.snapshot(ctx, v)
	if err != nil {
		return err
	}
	if st.blockwise() {
		return ErrBlockwiseSelection
	}

	at, ok := st.selection(lines)
	if ok {
		at = target(at)
	} else {
		at, err = m.cursorSpan(ctx, v, lines)
		if err != nil {
			return err
		}
	}

	b := v.NewBatch()
	b.SetBufferText(currentBuffer, at.startRow, at.startCol, at.endRow, at.endCol, splitLines(text))
	if m.write {
		b.Command("update")
	}
	return m.call(ctx, v, b.Execute)
}

func (m *Manager) cursorSpan(ctx context.Context, v *nvim.Nvim, lines [][]byte) (span, error) {
	var pos [2]int
	err := m.call(ctx, v, func() error {
		b := v.NewBatch()
		b.WindowCursor(0, &pos)
		return b.Execute()
	})
	if err != nil {
		return span{}, err
	}
	row := pos[0] - 1
	if row < 0 || row >= len(lines) {
		return span{}, fmt.Errorf("cursor row %d outside buffer", pos[0])
	}
	col := clampCol(pos[1], lines[row])
	return span{row, col, row, col}, nil
}

var _ document.Accessor = (*Manager)(nil)
