// Package panel holds the four feature panels of the sidebar. Each panel owns
// its state, runs its I/O through Task and reports back through messages.
package panel

import (
	"context"
	"log"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/sokinpui/docpanel/internal/analysis"
	"github.com/sokinpui/docpanel/internal/document"
)

// Analyzer is the part of the analysis service the panels use.
type Analyzer interface {
	Summarize(ctx context.Context, req analysis.SummarizeRequest) (*analysis.SummarizeResponse, error)
	Compare(ctx context.Context, req analysis.CompareRequest) (*analysis.CompareResponse, error)
	Redraft(ctx context.Context, req analysis.RedraftRequest) (*analysis.RedraftResponse, error)
	Analyze(ctx context.Context, req analysis.AnalyzeRequest) (*analysis.AnalyzeResponse, error)
}

// Deps are the collaborators every panel is built from.
type Deps struct {
	Doc      document.Accessor
	Analyzer Analyzer
	// Copy puts text on the system clipboard. Defaults to clipboard.WriteAll.
	Copy func(string) error

	// Chat defaults.
	IncludeSelection bool
	IncludeDocument  bool
}

func (d Deps) copyFunc() func(string) error {
	if d.Copy != nil {
		return d.Copy
	}
	return clipboard.WriteAll
}

// Panel is one feature screen mounted by the shell.
type Panel interface {
	Title() string
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View() string
	// Help is the key hint line shown under the panel.
	Help() string
	SetSize(width, height int)
	// Busy reports whether any operation is in flight.
	Busy() bool
	// InputFocused reports whether plain keys go to a text field.
	InputFocused() bool
	// Close cancels in-flight work; the panel is discarded afterwards.
	Close()
}

// AlertMsg asks the shell to show a blocking notice.
type AlertMsg struct {
	Text string
}

func alert(text string) tea.Cmd {
	return func() tea.Msg { return AlertMsg{Text: text} }
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// preview shortens s to n cells for display.
func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	return runewidth.Truncate(s, n, "...")
}

func bullets(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "• " + item
	}
	return strings.Join(lines, "\n")
}

// logf records failures that are swallowed or only alerted. The shell
// points the standard logger at the debug log file.
var logf = log.Printf

// written is the value of write tasks.
type written struct{}
