package app

import (
	"context"
	"fmt"
	"io"
	"runtime/debug"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sokinpui/docpanel/internal/analysis"
	"github.com/sokinpui/docpanel/internal/config"
	"github.com/sokinpui/docpanel/internal/document"
	"github.com/sokinpui/docpanel/internal/fs"
	"github.com/sokinpui/docpanel/internal/nvim"
	"github.com/sokinpui/docpanel/internal/panel"
	"github.com/sokinpui/docpanel/internal/source"
	"github.com/sokinpui/docpanel/internal/state"
	"github.com/sokinpui/docpanel/internal/tui"
	"github.com/sokinpui/docpanel/internal/ui"
)

// App wires the document host, the analysis client and the shell together.
type App struct {
	cfg          *config.Config
	stateManager *state.Manager
	doc          document.Accessor
	client       *analysis.Client
	handshake    time.Duration
	logFile      io.Closer
}

// DetailedError enhances a standard error with a stack trace.
type DetailedError struct {
	Err   error
	Stack []byte
}

func (e *DetailedError) Error() string {
	return e.Err.Error()
}

func (e *DetailedError) Unwrap() error {
	return e.Err
}

// New creates a new App instance from merged settings.
func New(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	requestTimeout, _ := cfg.RequestTimeoutDuration()
	handshake, _ := cfg.HandshakeTimeoutDuration()
	if handshake == 0 {
		handshake = tui.DefaultHandshakeTimeout
	}

	stateManager, err := state.New(cfg.StateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize state directory: %w", err)
	}

	a := &App{
		cfg:          cfg,
		stateManager: stateManager,
		client:       analysis.NewClient(cfg.APIURL, requestTimeout),
		handshake:    handshake,
	}

	if cfg.Debug {
		if a.logFile, err = stateManager.StartDebugLog(); err != nil {
			return nil, err
		}
	} else {
		state.DiscardLogs()
	}

	if a.doc, err = newAccessor(cfg); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func newAccessor(cfg *config.Config) (document.Accessor, error) {
	switch cfg.Host {
	case config.HostClipboard:
		path, err := fs.ExpandPath(cfg.Clipboard.File)
		if err != nil {
			return nil, fmt.Errorf("invalid document file: %w", err)
		}
		return source.New(path), nil
	default:
		return nvim.New(cfg.Nvim.Listen, cfg.Nvim.Write), nil
	}
}

// Deps returns the collaborators the panels are built from.
func (a *App) Deps() panel.Deps {
	return panel.Deps{
		Doc:              a.doc,
		Analyzer:         a.client,
		IncludeSelection: a.cfg.Chat.IncludeSelection,
		IncludeDocument:  a.cfg.Chat.IncludeDocument,
	}
}

// HostName describes the document host for display.
func (a *App) HostName() string {
	switch doc := a.doc.(type) {
	case *nvim.Manager:
		if addr := doc.Address(); addr != "" {
			return "Neovim at " + addr
		}
		return "Neovim"
	case *source.Clipboard:
		return "the clipboard"
	default:
		return a.cfg.Host
	}
}

// Run starts the sidebar and blocks until the user quits.
func (a *App) Run() error {
	return guard(func() error {
		model := tui.New(a.Deps(), a.HostName(), a.handshake)
		p := tea.NewProgram(model, tea.WithAltScreen())
		_, err := p.Run()
		return err
	})
}

// guard runs fn with centralized panic recovery to provide stack traces for
// unexpected errors.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &DetailedError{
				Err:   fmt.Errorf("internal panic: %v", r),
				Stack: debug.Stack(),
			}
		}
	}()
	return fn()
}

// Check performs the host handshake once and reports what the sidebar would
// start with.
func (a *App) Check(ctx context.Context) []ui.CheckResult {
	configDetail := "built-in defaults"
	if a.cfg.Path != "" {
		configDetail = a.cfg.Path
	}
	results := []ui.CheckResult{
		{Name: "configuration", Detail: configDetail},
		{Name: "analysis service", Detail: a.client.BaseURL()},
	}

	ctx, cancel := context.WithTimeout(ctx, a.handshake)
	defer cancel()
	results = append(results, ui.CheckResult{
		Name:   "document host (" + a.cfg.Host + ")",
		Detail: a.HostName(),
		Err:    a.doc.Initialize(ctx),
	})

	logDetail := "disabled (use --debug)"
	if a.cfg.Debug {
		logDetail = a.stateManager.LogPath()
	}
	results = append(results, ui.CheckResult{Name: "debug log", Detail: logDetail})
	return results
}

// Close releases the host connection and the debug log.
func (a *App) Close() {
	if c, ok := a.doc.(interface{ Close() }); ok {
		c.Close()
	}
	if a.logFile != nil {
		a.logFile.Close()
		a.logFile = nil
	}
}
