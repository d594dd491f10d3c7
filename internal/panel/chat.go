package panel

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sokinpui/docpanel/internal/analysis"
	"github.com/sokinpui/docpanel/internal/markdown"
	"github.com/sokinpui/docpanel/internal/model"
)

const msgChatFailed = "Sorry, I encountered an error processing your request. Please try again."

// SuggestedPrompts are offered while the chat log is empty.
var SuggestedPrompts = []string{
	"Analyze the selected text for potential legal issues",
	"Summarize the key points of this document",
	"What are the main obligations in this contract?",
}

// Chat is a free-form conversation about the document.
type Chat struct {
	deps             Deps
	messages         []model.ChatMessage
	input            textarea.Model
	log              viewport.Model
	includeSelection bool
	includeDocument  bool
	reply            *Task[*analysis.AnalyzeResponse]
	write            *Task[written]
	selected         string
	suggestion       int
	width, height    int
}

// NewChat creates the chat panel.
func NewChat(deps Deps) *Chat {
	ta := textarea.New()
	ta.Placeholder = "Ask a question about the document..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(3)
	ta.SetWidth(60)
	ta.KeyMap.InsertNewline.SetKeys("alt+enter")
	ta.Focus()

	return &Chat{
		deps:             deps,
		input:            ta,
		log:              viewport.New(60, 10),
		includeSelection: deps.IncludeSelection,
		includeDocument:  deps.IncludeDocument,
		reply:            NewTask[*analysis.AnalyzeResponse](),
		write:            NewTask[written](),
		suggestion:       -1,
	}
}

func (p *Chat) Title() string { return "Chat" }

func (p *Chat) Init() tea.Cmd { return textarea.Blink }

func (p *Chat) SetSize(width, height int) {
	p.width, p.height = width, height
	p.input.SetWidth(boxWidth(width))
	p.log.Width = boxWidth(width)
	// header, toggles, input and spacing
	p.log.Height = max(height-p.input.Height()-7, 3)
	p.refresh()
}

func (p *Chat) Busy() bool { return p.reply.Loading() || p.write.Loading() }

func (p *Chat) InputFocused() bool { return true }

func (p *Chat) Close() {
	p.reply.Reset()
	p.write.Reset()
}

// Messages returns the chat log.
func (p *Chat) Messages() []model.ChatMessage { return p.messages }

// Input returns the text being composed.
func (p *Chat) Input() string { return p.input.Value() }

// SetInput replaces the text being composed.
func (p *Chat) SetInput(s string) { p.input.SetValue(s) }

// Selected returns the index of the selected assistant message or -1.
func (p *Chat) Selected() int { return p.indexOf(p.selected) }

func (p *Chat) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, m := range p.messages {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// IncludeSelection reports whether the selection is sent with prompts.
func (p *Chat) IncludeSelection() bool { return p.includeSelection }

// IncludeDocument reports whether the whole document is sent as context.
func (p *Chat) IncludeDocument() bool { return p.includeDocument }

// Send posts prompt, or the input when prompt is empty. Blank prompts and
// sends while a reply is pending are ignored.
func (p *Chat) Send(prompt string) tea.Cmd {
	if prompt == "" {
		prompt = p.input.Value()
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" || p.reply.Loading() {
		return nil
	}

	p.messages = append(p.messages, model.NewChatMessage(model.RoleUser, prompt))
	p.input.Reset()
	p.suggestion = -1
	p.refresh()

	doc, analyzer := p.deps.Doc, p.deps.Analyzer
	withSelection, withDocument := p.includeSelection, p.includeDocument
	return p.reply.Run(func(ctx context.Context) (*analysis.AnalyzeResponse, error) {
		req := analysis.AnalyzeRequest{Prompt: prompt}
		if withSelection {
			text, err := doc.SelectedText(ctx)
			if err != nil {
				logf("chat: %v", err)
			}
			req.Text = text
		}
		if withDocument {
			text, err := doc.DocumentText(ctx)
			if err != nil {
				logf("chat: %v", err)
			}
			req.Context = text
		}
		return analyzer.Analyze(ctx, req)
	})
}

// CanClear reports whether the log may be cleared.
func (p *Chat) CanClear() bool {
	return !p.reply.Loading() && len(p.messages) > 0
}

// Clear empties the log.
func (p *Chat) Clear() {
	if !p.CanClear() {
		return
	}
	p.messages = nil
	p.selected = ""
	p.refresh()
}

// Select moves the selection to the next (dir > 0) or previous assistant
// message, wrapping around.
func (p *Chat) Select(dir int) {
	var idx []int
	for i, m := range p.messages {
		if m.Role == model.RoleAssistant {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		p.selected = ""
		return
	}
	current, pos := p.Selected(), -1
	for i, v := range idx {
		if v == current {
			pos = i
		}
	}
	switch {
	case pos < 0 && dir > 0:
		pos = 0
	case pos < 0:
		pos = len(idx) - 1
	default:
		pos = (pos + dir + len(idx)) % len(idx)
	}
	p.selected = p.messages[idx[pos]].ID
	p.refresh()
}

func (p *Chat) message(id string) (model.ChatMessage, bool) {
	if i := p.indexOf(id); i >= 0 {
		return p.messages[i], true
	}
	return model.ChatMessage{}, false
}

// Insert writes the selected message into the document.
func (p *Chat) Insert() tea.Cmd { return p.InsertMessage(p.selected) }

// Copy puts the selected message on the clipboard.
func (p *Chat) Copy() tea.Cmd { return p.CopyMessage(p.selected) }

// InsertPlain writes the selected message with its markdown syntax removed.
func (p *Chat) InsertPlain() tea.Cmd { return p.insert(p.selected, markdown.PlainText) }

// InsertMessage writes the content of message id into the document after the
// selection.
func (p *Chat) InsertMessage(id string) tea.Cmd { return p.insert(id, nil) }

func (p *Chat) insert(id string, convert func(string) string) tea.Cmd {
	m, ok := p.message(id)
	if !ok || p.write.Loading() {
		return nil
	}
	content := m.Content
	if convert != nil {
		content = convert(content)
	}
	doc, text := p.deps.Doc, "\n\n"+content
	return p.write.Run(func(ctx context.Context) (written, error) {
		return written{}, doc.InsertText(ctx, text)
	})
}

// CopyMessage puts message id on the clipboard.
func (p *Chat) CopyMessage(id string) tea.Cmd {
	m, ok := p.message(id)
	if !ok {
		return nil
	}
	if err := p.deps.copyFunc()(m.Content); err != nil {
		logf("chat: copy: %v", err)
		return alert("Failed to copy response")
	}
	return alert("Response copied to clipboard.")
}

// NextSuggestion puts the next suggested prompt into the input. Suggestions
// are only offered while the log is empty.
func (p *Chat) NextSuggestion() {
	if len(p.messages) > 0 {
		return
	}
	p.suggestion = (p.suggestion + 1) % len(SuggestedPrompts)
	p.input.SetValue(SuggestedPrompts[p.suggestion])
}

func (p *Chat) Update(msg tea.Msg) tea.Cmd {
	if p.reply.Update(msg) {
		out := p.reply.Outcome()
		p.reply.Reset()
		var m model.ChatMessage
		if out.Status == StatusFailed {
			logf("chat: %v", out.Err)
			m = model.NewChatMessage(model.RoleAssistant, msgChatFailed)
		} else {
			m = model.NewChatMessage(model.RoleAssistant, out.Value.Response)
			m.Suggestions = out.Value.Suggestions
		}
		p.messages = append(p.messages, m)
		p.refresh()
		return nil
	}
	if p.write.Update(msg) {
		out := p.write.Outcome()
		p.write.Reset()
		if out.Status == StatusFailed {
			logf("chat: insert: %v", out.Err)
			return alert("Failed to insert response")
		}
		return alert("Response inserted successfully!")
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var logCmd, inputCmd tea.Cmd
		p.log, logCmd = p.log.Update(msg)
		p.input, inputCmd = p.input.Update(msg)
		return tea.Batch(logCmd, inputCmd)
	}
	switch key.String() {
	case "enter":
		return p.Send("")
	case "ctrl+s":
		p.includeSelection = !p.includeSelection
		return nil
	case "ctrl+d":
		p.includeDocument = !p.includeDocument
		return nil
	case "ctrl+l":
		p.Clear()
		return nil
	case "ctrl+up":
		p.Select(-1)
		return nil
	case "ctrl+down":
		p.Select(1)
		return nil
	case "ctrl+o":
		return p.Insert()
	case "ctrl+t":
		return p.InsertPlain()
	case "ctrl+y":
		return p.Copy()
	case "ctrl+p":
		p.NextSuggestion()
		return nil
	case "pgup", "pgdown":
		var cmd tea.Cmd
		p.log, cmd = p.log.Update(msg)
		return cmd
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

// refresh re-renders the log into the viewport.
func (p *Chat) refresh() {
	p.log.SetContent(p.renderLog())
	if p.selected == "" {
		p.log.GotoBottom()
	}
}

func (p *Chat) renderLog() string {
	if len(p.messages) == 0 {
		var b strings.Builder
		b.WriteString(faintStyle.Render("Ask questions about your document or get help with legal analysis."))
		b.WriteString("\n\n" + labelStyle.Render("Try asking:") + "\n")
		for i, s := range SuggestedPrompts {
			line := "• " + s
			if i == p.suggestion {
				line = selectedStyle.Render(line)
			}
			b.WriteString(line + "\n")
		}
		return b.String()
	}

	width := boxWidth(p.width)
	blocks := make([]string, 0, len(p.messages)+1)
	for _, m := range p.messages {
		stamp := faintStyle.Render(m.Timestamp.Format("15:04"))
		var head, body string
		if m.Role == model.RoleUser {
			head = userStyle.Render("You")
			body = m.Content
		} else {
			head = botStyle.Render("Assistant")
			body = strings.TrimRight(markdown.Render(m.Content, width-2), "\n")
			if len(m.Suggestions) > 0 {
				body += "\n" + labelStyle.Render("Suggestions:") + "\n" + bullets(m.Suggestions)
			}
		}
		if m.ID != "" && m.ID == p.selected {
			head = selectedStyle.Render("▶ ") + head
		}
		blocks = append(blocks, head+" "+stamp+"\n"+body)
	}
	if p.reply.Loading() {
		blocks = append(blocks, botStyle.Render("Assistant")+" "+faintStyle.Render("thinking..."))
	}
	return strings.Join(blocks, "\n\n")
}

func (p *Chat) View() string {
	// the pending indicator lives in the log
	p.log.SetContent(p.renderLog())

	var b strings.Builder
	b.WriteString(headerStyle.Render("Chat Assistant"))
	b.WriteString("\n")
	b.WriteString(p.log.View())
	b.WriteString("\n\n")

	toggle := func(on bool, label string) string {
		if on {
			return successStyle.Render("[x] ") + label
		}
		return faintStyle.Render("[ ] ") + label
	}
	b.WriteString(toggle(p.includeSelection, "Include selection") + "  " + toggle(p.includeDocument, "Include document"))
	b.WriteString("\n")
	b.WriteString(p.input.View())
	if p.write.Loading() {
		b.WriteString("\nInserting...")
	}
	return b.String()
}

func (p *Chat) Help() string {
	parts := []string{"enter", "Send", "alt+enter", "Newline", "ctrl+s", "Selection", "ctrl+d", "Document"}
	if len(p.messages) == 0 {
		parts = append(parts, "ctrl+p", "Suggestion")
	} else {
		parts = append(parts, "ctrl+↑/↓", "Select")
	}
	if p.selected != "" {
		parts = append(parts, "ctrl+o", "Insert", "ctrl+t", "Insert plain", "ctrl+y", "Copy")
	}
	if p.CanClear() {
		parts = append(parts, "ctrl+l", "Clear")
	}
	return footer(parts...)
}
