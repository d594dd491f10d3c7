package panel

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sokinpui/docpanel/internal/analysis"
)

const (
	msgSelectFirst     = "Please select some text first."
	msgSelectionFailed = "Failed to get selected text. Please try again."
	msgCompareFailed   = "Error: Failed to compare clauses. Please try again."
	clausePreviewWidth = 100
)

// capture is a selection read into one of the clause slots.
type capture struct {
	slot int
	text string
}

// Compare compares two clauses captured one after the other.
type Compare struct {
	deps    Deps
	clause1 string
	clause2 string
	capture *Task[capture]
	result  *Task[*analysis.CompareResponse]
	write   *Task[written]
	width   int
}

// NewCompare creates the compare panel.
func NewCompare(deps Deps) *Compare {
	return &Compare{
		deps:    deps,
		capture: NewTask[capture](),
		result:  NewTask[*analysis.CompareResponse](),
		write:   NewTask[written](),
	}
}

func (p *Compare) Title() string { return "Compare" }

func (p *Compare) Init() tea.Cmd { return nil }

func (p *Compare) SetSize(width, height int) { p.width = width }

func (p *Compare) Busy() bool {
	return p.capture.Loading() || p.result.Loading() || p.write.Loading()
}

func (p *Compare) InputFocused() bool { return false }

func (p *Compare) Close() {
	p.capture.Reset()
	p.result.Reset()
	p.write.Reset()
}

// Clauses returns the captured clauses.
func (p *Compare) Clauses() (string, string) {
	return p.clause1, p.clause2
}

// Result returns the comparison, nil until one succeeded.
func (p *Compare) Result() *analysis.CompareResponse {
	if !p.result.Succeeded() {
		return nil
	}
	return p.result.Outcome().Value
}

// CanCapture reports whether slot 1 or 2 may be captured now. The second
// clause is only available once the first one is set.
func (p *Compare) CanCapture(slot int) bool {
	if p.Busy() {
		return false
	}
	switch slot {
	case 1:
		return true
	case 2:
		return p.clause1 != ""
	default:
		return false
	}
}

// CanCompare reports whether both clauses are set and nothing is running.
func (p *Compare) CanCompare() bool {
	return !p.Busy() && p.clause1 != "" && p.clause2 != ""
}

// Capture reads the selection into clause slot 1 or 2.
func (p *Compare) Capture(slot int) tea.Cmd {
	if !p.CanCapture(slot) {
		return nil
	}
	doc := p.deps.Doc
	return p.capture.Run(func(ctx context.Context) (capture, error) {
		text, err := doc.SelectedText(ctx)
		return capture{slot: slot, text: text}, err
	})
}

// Compare sends both clauses to the service.
func (p *Compare) Compare() tea.Cmd {
	if !p.CanCompare() {
		return nil
	}
	analyzer := p.deps.Analyzer
	req := analysis.CompareRequest{Clause1: p.clause1, Clause2: p.clause2}
	return p.result.Run(func(ctx context.Context) (*analysis.CompareResponse, error) {
		return analyzer.Compare(ctx, req)
	})
}

// ComparisonText is the block written into the document for a comparison.
func ComparisonText(r *analysis.CompareResponse) string {
	return "\n\nClause Comparison:\n" + r.Comparison +
		"\n\nKey Differences:\n" + bullets(r.Differences) +
		"\n\nRecommendations:\n" + bullets(r.Recommendations)
}

// Insert writes the comparison into the document as one block.
func (p *Compare) Insert() tea.Cmd {
	r := p.Result()
	if p.Busy() || r == nil {
		return nil
	}
	doc, text := p.deps.Doc, ComparisonText(r)
	return p.write.Run(func(ctx context.Context) (written, error) {
		return written{}, doc.InsertText(ctx, text)
	})
}

// Reset clears both clauses and the result.
func (p *Compare) Reset() {
	p.clause1, p.clause2 = "", ""
	p.capture.Reset()
	p.result.Reset()
}

func (p *Compare) Update(msg tea.Msg) tea.Cmd {
	if p.capture.Update(msg) {
		out := p.capture.Outcome()
		p.capture.Reset()
		if out.Status == StatusFailed {
			logf("compare: capture: %v", out.Err)
			return alert(msgSelectionFailed)
		}
		if isBlank(out.Value.text) {
			return alert(msgSelectFirst)
		}
		if out.Value.slot == 1 {
			p.clause1 = out.Value.text
		} else {
			p.clause2 = out.Value.text
		}
		return nil
	}
	if p.result.Update(msg) {
		if out := p.result.Outcome(); out.Status == StatusFailed {
			logf("compare: %v", out.Err)
			return alert(msgCompareFailed)
		}
		return nil
	}
	if p.write.Update(msg) {
		out := p.write.Outcome()
		p.write.Reset()
		if out.Status == StatusFailed {
			logf("compare: insert: %v", out.Err)
			return alert("Failed to insert comparison")
		}
		p.Reset()
		return alert("Comparison inserted successfully!")
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch key.String() {
	case "1", "a":
		return p.Capture(1)
	case "2", "b":
		return p.Capture(2)
	case "enter", "c":
		return p.Compare()
	case "i":
		return p.Insert()
	case "r":
		if !p.Busy() {
			p.Reset()
		}
	}
	return nil
}

func (p *Compare) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Compare Clauses"))
	b.WriteString("\n")
	b.WriteString(faintStyle.Render("Select two clauses to compare and analyze their differences."))
	b.WriteString("\n\n")

	b.WriteString(step("1", p.clauseLabel(1, p.clause1), p.clause1 != ""))
	b.WriteString("\n")
	if p.clause1 != "" {
		b.WriteString("   " + faintStyle.Render("Preview: "+preview(p.clause1, clausePreviewWidth)) + "\n")
	}
	b.WriteString(step("2", p.clauseLabel(2, p.clause2), p.clause2 != ""))
	b.WriteString("\n")
	if p.clause2 != "" {
		b.WriteString("   " + faintStyle.Render("Preview: "+preview(p.clause2, clausePreviewWidth)) + "\n")
	}
	compareLabel := "Compare Clauses"
	if p.result.Loading() {
		compareLabel = "Comparing..."
	}
	b.WriteString(step("3", compareLabel, p.result.Succeeded()))
	b.WriteString("\n")

	if r := p.Result(); r != nil {
		var body strings.Builder
		body.WriteString(r.Comparison)
		if len(r.Differences) > 0 {
			body.WriteString("\n\n" + labelStyle.Render("Key Differences:") + "\n" + bullets(r.Differences))
		}
		if len(r.Recommendations) > 0 {
			body.WriteString("\n\n" + labelStyle.Render("Recommendations:") + "\n" + bullets(r.Recommendations))
		}
		b.WriteString("\n" + labelStyle.Render("Comparison Result:") + "\n")
		b.WriteString(boxStyle.Width(boxWidth(p.width)).Render(body.String()))
	}
	if p.write.Loading() {
		b.WriteString("\nInserting...")
	}
	return b.String()
}

func (p *Compare) clauseLabel(slot int, text string) string {
	names := map[int]string{1: "First", 2: "Second"}
	if text != "" {
		return names[slot] + " Clause Selected"
	}
	label := "Select " + names[slot] + " Clause"
	if !p.CanCapture(slot) && !p.Busy() {
		return faintStyle.Render(label)
	}
	return label
}

func (p *Compare) Help() string {
	parts := []string{"1", "Capture first"}
	if p.CanCapture(2) {
		parts = append(parts, "2", "Capture second")
	}
	if p.CanCompare() {
		parts = append(parts, "enter", "Compare")
	}
	if p.Result() != nil {
		parts = append(parts, "i", "Insert")
	}
	parts = append(parts, "r", "Reset")
	return footer(parts...)
}
