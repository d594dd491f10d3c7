package panel

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sokinpui/docpanel/internal/analysis"
	"github.com/sokinpui/docpanel/internal/markdown"
)

const (
	msgSelectToSummarize = "Please select some text to summarize."
	msgSummarizeFailed   = "Error: Failed to summarize text. Please try again."
)

var errEmptySelection = errors.New("empty selection")

// Summarize summarizes the selected text.
type Summarize struct {
	deps    Deps
	summary *Task[string]
	write   *Task[written]
	width   int
}

// NewSummarize creates the summarize panel.
func NewSummarize(deps Deps) *Summarize {
	return &Summarize{
		deps:    deps,
		summary: NewTask[string](),
		write:   NewTask[written](),
	}
}

func (p *Summarize) Title() string { return "Summarize" }

func (p *Summarize) Init() tea.Cmd { return nil }

func (p *Summarize) SetSize(width, height int) { p.width = width }

func (p *Summarize) Busy() bool { return p.summary.Loading() || p.write.Loading() }

func (p *Summarize) InputFocused() bool { return false }

func (p *Summarize) Close() {
	p.summary.Reset()
	p.write.Reset()
}

// Summarize reads the selection and asks the service for a summary. It is a
// no-op while a request is in flight.
func (p *Summarize) Summarize() tea.Cmd {
	if p.Busy() {
		return nil
	}
	doc, analyzer := p.deps.Doc, p.deps.Analyzer
	return p.summary.Run(func(ctx context.Context) (string, error) {
		text, err := doc.SelectedText(ctx)
		if err != nil {
			return "", err
		}
		if isBlank(text) {
			return "", errEmptySelection
		}
		resp, err := analyzer.Summarize(ctx, analysis.SummarizeRequest{Text: text})
		if err != nil {
			return "", err
		}
		return resp.Summary, nil
	})
}

// Result is the text shown as the panel result, empty when there is none.
func (p *Summarize) Result() string {
	out := p.summary.Outcome()
	switch out.Status {
	case StatusSucceeded:
		return out.Value
	case StatusFailed:
		if errors.Is(out.Err, errEmptySelection) {
			return msgSelectToSummarize
		}
		return msgSummarizeFailed
	default:
		return ""
	}
}

// Insert appends the summary after the selection in the document.
func (p *Summarize) Insert() tea.Cmd {
	if p.Busy() || !p.summary.Succeeded() {
		return nil
	}
	doc, text := p.deps.Doc, "\n\nSummary: "+p.summary.Outcome().Value
	return p.write.Run(func(ctx context.Context) (written, error) {
		return written{}, doc.InsertText(ctx, text)
	})
}

// Copy puts the summary on the clipboard.
func (p *Summarize) Copy() tea.Cmd {
	if !p.summary.Succeeded() {
		return nil
	}
	if err := p.deps.copyFunc()(p.summary.Outcome().Value); err != nil {
		return alert("Failed to copy summary")
	}
	return alert("Summary copied to clipboard.")
}

// Clear drops the result.
func (p *Summarize) Clear() {
	if p.Busy() {
		return
	}
	p.summary.Reset()
}

func (p *Summarize) Update(msg tea.Msg) tea.Cmd {
	if p.summary.Update(msg) {
		if out := p.summary.Outcome(); out.Status == StatusFailed && !errors.Is(out.Err, errEmptySelection) {
			logf("summarize: %v", out.Err)
		}
		return nil
	}
	if p.write.Update(msg) {
		out := p.write.Outcome()
		p.write.Reset()
		if out.Status == StatusFailed {
			logf("summarize: insert: %v", out.Err)
			return alert("Failed to insert summary")
		}
		p.summary.Reset()
		return alert("Summary inserted successfully!")
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch key.String() {
	case "s", "enter":
		return p.Summarize()
	case "i":
		return p.Insert()
	case "y":
		return p.Copy()
	case "c":
		p.Clear()
	}
	return nil
}

func (p *Summarize) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Summarize Text"))
	b.WriteString("\n")
	b.WriteString(faintStyle.Render("Select text in your document and get a summary."))
	b.WriteString("\n\n")

	switch {
	case p.summary.Loading():
		b.WriteString("Summarizing...")
	case p.write.Loading():
		b.WriteString("Inserting...")
	case p.Result() != "":
		body := p.Result()
		if p.summary.Succeeded() {
			body = markdown.Render(body, boxWidth(p.width)-2)
		} else {
			body = errorStyle.Render(body)
		}
		b.WriteString(labelStyle.Render("Summary:"))
		b.WriteString("\n")
		b.WriteString(boxStyle.Width(boxWidth(p.width)).Render(body))
	default:
		b.WriteString(faintStyle.Render("Nothing summarized yet."))
	}
	return b.String()
}

func (p *Summarize) Help() string {
	if p.summary.Succeeded() {
		return footer("s", "Summarize", "i", "Insert", "y", "Copy", "c", "Clear")
	}
	if p.Result() != "" {
		return footer("s", "Summarize", "c", "Clear")
	}
	return footer("s", "Summarize selected text")
}
