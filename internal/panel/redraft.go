package panel

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/sokinpui/docpanel/internal/analysis"
)

const (
	msgSelectToRedraft = "Please select some text to redraft."
	msgRedraftFailed   = "Error: Failed to redraft text. Please try again."
)

// Redraft rewrites the selected text and lets the user accept or reject the
// suggestion.
type Redraft struct {
	deps         Deps
	originalText string
	instructions textarea.Model
	capture      *Task[string]
	result       *Task[*analysis.RedraftResponse]
	write        *Task[written]
	showDiff     bool
	width        int
}

// NewRedraft creates the redraft panel.
func NewRedraft(deps Deps) *Redraft {
	ta := textarea.New()
	ta.Placeholder = "Optional instructions, e.g. 'make it more formal', 'simplify language'"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(3)
	ta.SetWidth(60)

	return &Redraft{
		deps:         deps,
		instructions: ta,
		capture:      NewTask[string](),
		result:       NewTask[*analysis.RedraftResponse](),
		write:        NewTask[written](),
	}
}

func (p *Redraft) Title() string { return "Redraft" }

func (p *Redraft) Init() tea.Cmd { return nil }

func (p *Redraft) SetSize(width, height int) {
	p.width = width
	p.instructions.SetWidth(boxWidth(width))
}

func (p *Redraft) Busy() bool {
	return p.capture.Loading() || p.result.Loading() || p.write.Loading()
}

func (p *Redraft) InputFocused() bool { return p.instructions.Focused() }

func (p *Redraft) Close() {
	p.capture.Reset()
	p.result.Reset()
	p.write.Reset()
}

// OriginalText returns the captured text.
func (p *Redraft) OriginalText() string { return p.originalText }

// Instructions returns the instructions field.
func (p *Redraft) Instructions() string { return p.instructions.Value() }

// SetInstructions replaces the instructions field.
func (p *Redraft) SetInstructions(s string) { p.instructions.SetValue(s) }

// Result returns the suggestion, nil until one succeeded.
func (p *Redraft) Result() *analysis.RedraftResponse {
	if !p.result.Succeeded() {
		return nil
	}
	return p.result.Outcome().Value
}

// SelectText captures the current selection as the text to redraft.
func (p *Redraft) SelectText() tea.Cmd {
	if p.Busy() {
		return nil
	}
	doc := p.deps.Doc
	return p.capture.Run(func(ctx context.Context) (string, error) {
		return doc.SelectedText(ctx)
	})
}

// Generate asks the service for a redraft of the captured text.
func (p *Redraft) Generate() tea.Cmd {
	if p.Busy() || p.originalText == "" {
		return nil
	}
	analyzer := p.deps.Analyzer
	req := analysis.RedraftRequest{
		Text:         p.originalText,
		Instructions: strings.TrimSpace(p.instructions.Value()),
	}
	return p.result.Run(func(ctx context.Context) (*analysis.RedraftResponse, error) {
		return analyzer.Redraft(ctx, req)
	})
}

// Accept replaces the selection with the redrafted text.
func (p *Redraft) Accept() tea.Cmd {
	r := p.Result()
	if p.Busy() || r == nil || p.originalText == "" {
		return nil
	}
	doc, text := p.deps.Doc, r.RedraftedText
	return p.write.Run(func(ctx context.Context) (written, error) {
		return written{}, doc.ReplaceSelection(ctx, text)
	})
}

// Reject drops the suggestion but keeps the text and instructions.
func (p *Redraft) Reject() {
	if p.Busy() {
		return
	}
	p.result.Reset()
	p.showDiff = false
}

// StartOver clears everything.
func (p *Redraft) StartOver() {
	if p.Busy() {
		return
	}
	p.clear()
}

func (p *Redraft) clear() {
	p.originalText = ""
	p.instructions.Reset()
	p.capture.Reset()
	p.result.Reset()
	p.showDiff = false
}

func (p *Redraft) Update(msg tea.Msg) tea.Cmd {
	if p.capture.Update(msg) {
		out := p.capture.Outcome()
		p.capture.Reset()
		if out.Status == StatusFailed {
			logf("redraft: capture: %v", out.Err)
			return alert(msgSelectionFailed)
		}
		if isBlank(out.Value) {
			return alert(msgSelectToRedraft)
		}
		p.originalText = out.Value
		p.result.Reset()
		p.showDiff = false
		return nil
	}
	if p.result.Update(msg) {
		if out := p.result.Outcome(); out.Status == StatusFailed {
			logf("redraft: %v", out.Err)
			return alert(msgRedraftFailed)
		}
		return nil
	}
	if p.write.Update(msg) {
		out := p.write.Outcome()
		p.write.Reset()
		if out.Status == StatusFailed {
			logf("redraft: replace: %v", out.Err)
			return alert("Failed to replace text. Please try again.")
		}
		p.clear()
		return alert("Text replaced successfully!")
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	if p.instructions.Focused() {
		if key.String() == "esc" {
			p.instructions.Blur()
			return nil
		}
		if key.String() == "ctrl+g" {
			p.instructions.Blur()
			return p.Generate()
		}
		var cmd tea.Cmd
		p.instructions, cmd = p.instructions.Update(msg)
		return cmd
	}

	switch key.String() {
	case "s":
		return p.SelectText()
	case "e":
		if !p.Busy() {
			return p.instructions.Focus()
		}
	case "g", "enter":
		return p.Generate()
	case "a":
		return p.Accept()
	case "x":
		p.Reject()
	case "r":
		p.StartOver()
	case "d":
		if p.Result() != nil {
			p.showDiff = !p.showDiff
		}
	}
	return nil
}

// unifiedDiff renders the change from the original to the redraft.
func unifiedDiff(original, redrafted string) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(original + "\n"),
		B:        difflib.SplitLines(redrafted + "\n"),
		FromFile: "original",
		ToFile:   "redraft",
		Context:  2,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return err.Error()
	}
	return strings.TrimRight(text, "\n")
}

func (p *Redraft) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Redraft Text"))
	b.WriteString("\n")
	b.WriteString(faintStyle.Render("Select text to redraft. Add optional instructions for specific requirements."))
	b.WriteString("\n\n")

	selectLabel := "Select Text to Redraft"
	if p.originalText != "" {
		selectLabel = "Text Selected"
	}
	b.WriteString(step("1", selectLabel, p.originalText != ""))
	b.WriteString("\n")
	if p.originalText != "" && p.Result() == nil {
		b.WriteString(boxStyle.Width(boxWidth(p.width)).Render(p.originalText))
		b.WriteString("\n")
	}

	b.WriteString(step("2", "Instructions (optional)", strings.TrimSpace(p.instructions.Value()) != ""))
	b.WriteString("\n")
	b.WriteString(p.instructions.View())
	b.WriteString("\n")

	generateLabel := "Generate Redraft"
	if p.result.Loading() {
		generateLabel = "Redrafting..."
	}
	b.WriteString(step("3", generateLabel, p.result.Succeeded()))
	b.WriteString("\n")

	if r := p.Result(); r != nil {
		b.WriteString("\n")
		if p.showDiff {
			b.WriteString(boxStyle.Width(boxWidth(p.width)).Render(unifiedDiff(p.originalText, r.RedraftedText)))
		} else {
			half := boxWidth(p.width)/2 - 1
			left := boxStyle.Width(half).Render(labelStyle.Render("Original") + "\n" + p.originalText)
			right := boxStyle.Width(half).BorderForeground(successColor).Render(labelStyle.Render("Suggested") + "\n" + r.RedraftedText)
			b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
		}
		if len(r.Changes) > 0 {
			b.WriteString("\n" + labelStyle.Render("Changes:") + "\n" + bullets(r.Changes))
		}
	}
	if p.write.Loading() {
		b.WriteString("\nReplacing...")
	}
	return b.String()
}

func (p *Redraft) Help() string {
	if p.instructions.Focused() {
		return footer("esc", "Done", "ctrl+g", "Generate")
	}
	if p.Result() != nil {
		return footer("a", "Accept", "x", "Reject", "d", "Diff", "r", "Start over")
	}
	parts := []string{"s", "Select text", "e", "Instructions"}
	if p.originalText != "" {
		parts = append(parts, "enter", "Generate")
	}
	return footer(append(parts, "r", "Start over")...)
}
