package nvim

import (
	"context"
	"errors"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/neovim/go-client/nvim"

	"github.com/sokinpui/docpanel/internal/document"
)

// silentListener accepts connections and never answers on them.
func silentListener(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	var (
		mu    sync.Mutex
		conns []net.Conn
	)
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, c)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			c.Close()
		}
	})
	return ln.Addr().String()
}

func TestInitializeBoundedByContext(t *testing.T) {
	m := New(silentListener(t), false)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := m.Initialize(ctx)
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("Initialize returned after %v", elapsed)
	}
	if !errors.Is(err, document.ErrHostUnavailable) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Initialize() error = %v, want ErrHostUnavailable wrapping DeadlineExceeded", err)
	}
	if _, err := m.DocumentText(context.Background()); !errors.Is(err, document.ErrNotInitialized) {
		t.Errorf("DocumentText() after failed handshake = %v, want ErrNotInitialized", err)
	}
}

func TestStuckHostOperations(t *testing.T) {
	addr := silentListener(t)
	connect := func(t *testing.T) (*Manager, *nvim.Nvim) {
		t.Helper()
		v, err := nvim.Dial(addr)
		if err != nil {
			t.Fatalf("Dial: %v", err)
		}
		m := New(addr, false)
		m.nvim = v
		t.Cleanup(m.Close)
		return m, v
	}

	t.Run("deadline drops the connection", func(t *testing.T) {
		m, _ := connect(t)
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()

		start := time.Now()
		_, err := m.SelectedText(ctx)
		if elapsed := time.Since(start); elapsed > 2*time.Second {
			t.Fatalf("SelectedText returned after %v", elapsed)
		}
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("SelectedText() error = %v, want DeadlineExceeded", err)
		}
		if err := m.InsertText(context.Background(), "x"); !errors.Is(err, document.ErrNotInitialized) {
			t.Errorf("InsertText() after timeout = %v, want ErrNotInitialized", err)
		}
	})

	t.Run("cancellation keeps the connection", func(t *testing.T) {
		m, v := connect(t)
		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(100*time.Millisecond, cancel)

		if _, err := m.DocumentText(ctx); !errors.Is(err, context.Canceled) {
			t.Fatalf("DocumentText() error = %v, want Canceled", err)
		}
		if m.nvim != v {
			t.Error("connection dropped on cancellation")
		}
	})
}

// startNvim runs a headless Neovim on a private socket and returns an
// initialized manager for it.
func startNvim(t *testing.T, write bool) *Manager {
	t.Helper()
	bin, err := exec.LookPath("nvim")
	if err != nil {
		t.Skip("nvim not found in PATH")
	}

	// unix socket paths are length limited; t.TempDir can be too deep
	dir, err := os.MkdirTemp("", "docpanel")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	sock := filepath.Join(dir, "nvim.sock")

	cmd := exec.Command(bin, "--headless", "--clean", "-n", "--listen", sock)
	if err := cmd.Start(); err != nil {
		t.Fatalf("failed to start headless nvim: %v", err)
	}
	t.Cleanup(func() {
		cmd.Process.Kill()
		cmd.Wait()
	})

	m := New(sock, write)
	deadline := time.Now().Add(5 * time.Second)
	for {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		err := m.Initialize(ctx)
		cancel()
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Initialize: %v", err)
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Cleanup(m.Close)
	return m
}

// prepare fills the current buffer and runs ex commands, typically a
// :normal that leaves a visual selection behind.
func prepare(t *testing.T, m *Manager, lines []string, cmds ...string) {
	t.Helper()
	if lines != nil {
		if err := m.nvim.SetBufferLines(currentBuffer, 0, -1, true, bufferOf(lines...)); err != nil {
			t.Fatalf("SetBufferLines: %v", err)
		}
	}
	for _, c := range cmds {
		if err := m.nvim.Command(c); err != nil {
			t.Fatalf("%s: %v", c, err)
		}
	}
}

func bufferText(t *testing.T, m *Manager) string {
	t.Helper()
	text, err := m.DocumentText(context.Background())
	if err != nil {
		t.Fatalf("DocumentText: %v", err)
	}
	return text
}

const (
	selectParty    = `execute "normal! gg0wve\<Esc>"`
	selectTwoLines = `execute "normal! ggVj\<Esc>"`
	selectBlock    = `execute "normal! gg\<C-v>jl\<Esc>"`
)

func TestHostEdits(t *testing.T) {
	ctx := context.Background()
	clause := []string{"The party shall", "indemnify the other", "party in full."}

	tests := []struct {
		name  string
		cmds  []string
		edit  func(*Manager) error
		want  string
		wantS string
	}{
		{
			name:  "replace charwise selection",
			cmds:  []string{selectParty},
			edit:  func(m *Manager) error { return m.ReplaceSelection(ctx, "Licensee") },
			want:  "The Licensee shall\nindemnify the other\nparty in full.",
			wantS: "party",
		},
		{
			name:  "insert after charwise selection",
			cmds:  []string{selectParty},
			edit:  func(m *Manager) error { return m.InsertText(ctx, " (Licensee)") },
			want:  "The party (Licensee) shall\nindemnify the other\nparty in full.",
			wantS: "party",
		},
		{
			name:  "replace linewise selection",
			cmds:  []string{selectTwoLines},
			edit:  func(m *Manager) error { return m.ReplaceSelection(ctx, "Each party shall indemnify") },
			want:  "Each party shall indemnify\nparty in full.",
			wantS: "The party shall\nindemnify the other",
		},
		{
			name:  "insert block after linewise selection",
			cmds:  []string{selectTwoLines},
			edit:  func(m *Manager) error { return m.InsertText(ctx, "\n\nSummary: mutual") },
			want:  "The party shall\nindemnify the other\n\nSummary: mutual\nparty in full.",
			wantS: "The party shall\nindemnify the other",
		},
		{
			name:  "insert at cursor without selection",
			cmds:  []string{"call cursor(2, 11)"},
			edit:  func(m *Manager) error { return m.InsertText(ctx, "fully ") },
			want:  "The party shall\nindemnify fully the other\nparty in full.",
			wantS: "",
		},
		{
			name:  "replace without selection inserts at cursor",
			cmds:  []string{"call cursor(1, 1)"},
			edit:  func(m *Manager) error { return m.ReplaceSelection(ctx, "Now ") },
			want:  "Now The party shall\nindemnify the other\nparty in full.",
			wantS: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := startNvim(t, false)
			prepare(t, m, clause, tt.cmds...)

			sel, err := m.SelectedText(ctx)
			if err != nil {
				t.Fatalf("SelectedText: %v", err)
			}
			if sel != tt.wantS {
				t.Errorf("SelectedText() = %q, want %q", sel, tt.wantS)
			}

			if err := tt.edit(m); err != nil {
				t.Fatalf("edit: %v", err)
			}
			if got := bufferText(t, m); got != tt.want {
				t.Errorf("buffer = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHostRejectsBlockwiseSelection(t *testing.T) {
	ctx := context.Background()
	m := startNvim(t, false)
	prepare(t, m, []string{"abcdef", "ghijkl", "mnopqr"}, selectBlock)

	if _, err := m.SelectedText(ctx); !errors.Is(err, ErrBlockwiseSelection) {
		t.Errorf("SelectedText() error = %v, want ErrBlockwiseSelection", err)
	}
	err := m.ReplaceSelection(ctx, "X")
	if !errors.Is(err, ErrBlockwiseSelection) || !errors.Is(err, document.ErrHostOperationFailed) {
		t.Errorf("ReplaceSelection() error = %v, want ErrBlockwiseSelection", err)
	}
	if got := bufferText(t, m); got != "abcdef\nghijkl\nmnopqr" {
		t.Errorf("buffer changed to %q", got)
	}
}

func TestHostWritesBufferToDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contract.txt")
	if err := os.WriteFile(path, []byte("The party shall\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := startNvim(t, true)
	prepare(t, m, nil, "edit "+path, selectParty)

	if err := m.ReplaceSelection(context.Background(), "Licensee"); err != nil {
		t.Fatalf("ReplaceSelection: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "The Licensee shall\n" {
		t.Errorf("file = %q", data)
	}
}
