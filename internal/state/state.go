package state

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sokinpui/docpanel/internal/fs"
)

const debugLogName = "debug.log"

// Manager owns the per-user state directory. Nothing but the debug log is
// kept there; the sidebar persists no session state.
type Manager struct {
	StateDir string
}

// New resolves and creates the state directory. An empty dir selects the
// XDG default.
func New(dir string) (*Manager, error) {
	if dir == "" {
		var err error
		dir, err = fs.StateDir()
		if err != nil {
			return nil, err
		}
	}
	dir, err := fs.ExpandPath(dir)
	if err != nil {
		return nil, err
	}
	if err := fs.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("could not create state directory: %w", err)
	}
	return &Manager{StateDir: dir}, nil
}

// LogPath is where the debug log is written.
func (m *Manager) LogPath() string {
	return filepath.Join(m.StateDir, debugLogName)
}

// StartDebugLog points the standard logger at the debug log file. The
// terminal belongs to the TUI, so this is the only place log output can go.
// The caller closes the returned file on exit.
func (m *Manager) StartDebugLog() (io.Closer, error) {
	f, err := tea.LogToFile(m.LogPath(), "docpanel")
	if err != nil {
		return nil, fmt.Errorf("could not open debug log: %w", err)
	}
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	log.Printf("=== debug logging started, pid %d ===", os.Getpid())
	return f, nil
}

// DiscardLogs silences the standard logger.
func DiscardLogs() {
	log.SetOutput(io.Discard)
}
