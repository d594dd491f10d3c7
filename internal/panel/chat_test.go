package panel

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sokinpui/docpanel/internal/analysis"
	"github.com/sokinpui/docpanel/internal/model"
)

func TestChatSend(t *testing.T) {
	deps, doc, api := newDeps("Clause 4.2")
	doc.Document = "Whole contract"
	deps.IncludeSelection = true
	deps.IncludeDocument = true
	api.AnalyzeFunc = func(context.Context, analysis.AnalyzeRequest) (*analysis.AnalyzeResponse, error) {
		return &analysis.AnalyzeResponse{Response: "It is **fine**.", Suggestions: []string{"Check notice"}}, nil
	}
	p := NewChat(deps)
	p.SetInput("Is this ok?")

	cmd := p.Send("")
	if len(p.Messages()) != 1 || p.Input() != "" {
		t.Fatalf("user message not appended immediately: %+v, input %q", p.Messages(), p.Input())
	}
	drive(t, p, cmd)

	msgs := p.Messages()
	if len(msgs) != 2 {
		t.Fatalf("%d messages, want 2", len(msgs))
	}
	if msgs[0].Role != model.RoleUser || msgs[0].Content != "Is this ok?" {
		t.Errorf("first message = %+v", msgs[0])
	}
	if msgs[1].Role != model.RoleAssistant || msgs[1].Content != "It is **fine**." {
		t.Errorf("second message = %+v", msgs[1])
	}
	if len(msgs[1].Suggestions) != 1 {
		t.Errorf("suggestions = %v", msgs[1].Suggestions)
	}
	want := analysis.AnalyzeRequest{Text: "Clause 4.2", Prompt: "Is this ok?", Context: "Whole contract"}
	if len(api.Analyses) != 1 || api.Analyses[0] != want {
		t.Errorf("requests = %+v, want %+v", api.Analyses, want)
	}
}

func TestChatSendWithoutContext(t *testing.T) {
	deps, doc, api := newDeps("ignored")
	p := NewChat(deps)

	drive(t, p, p.Send("hello"))

	if doc.Reads != 0 {
		t.Errorf("%d document reads, want 0", doc.Reads)
	}
	if got := api.Analyses[0]; got.Text != "" || got.Context != "" || got.Prompt != "hello" {
		t.Errorf("request = %+v", got)
	}
}

func TestChatSelectionReadFailure(t *testing.T) {
	deps, doc, api := newDeps("")
	deps.IncludeSelection = true
	doc.SelectedTextFunc = func(context.Context) (string, error) {
		return "", errors.New("host gone")
	}
	p := NewChat(deps)

	alerts := drive(t, p, p.Send("what now?"))

	if len(alerts) != 0 {
		t.Errorf("alerts = %v, want none", alerts)
	}
	msgs := p.Messages()
	if len(msgs) != 2 || msgs[0].Content != "what now?" || msgs[1].Content != "Mock response" {
		t.Errorf("messages = %+v", msgs)
	}
	if api.Analyses[0].Text != "" {
		t.Errorf("text = %q, want empty", api.Analyses[0].Text)
	}
}

func TestChatFailureReply(t *testing.T) {
	deps, _, api := newDeps("")
	api.AnalyzeFunc = func(context.Context, analysis.AnalyzeRequest) (*analysis.AnalyzeResponse, error) {
		return nil, &analysis.RequestError{Endpoint: "/api/analyze", Status: "Service Unavailable"}
	}
	p := NewChat(deps)

	drive(t, p, p.Send("hi"))

	msgs := p.Messages()
	if len(msgs) != 2 || msgs[1].Role != model.RoleAssistant || msgs[1].Content != msgChatFailed {
		t.Errorf("messages = %+v", msgs)
	}
}

func TestChatBlankAndPendingSends(t *testing.T) {
	deps, _, api := newDeps("")
	p := NewChat(deps)

	if p.Send("   ") != nil {
		t.Error("blank prompt returned a command")
	}
	first := p.Send("one")
	if p.Send("two") != nil {
		t.Error("send while waiting returned a command")
	}
	if p.CanClear() {
		t.Error("CanClear() = true while waiting for a reply")
	}
	drive(t, p, first)

	if api.Calls() != 1 || len(p.Messages()) != 2 {
		t.Errorf("%d calls, %d messages", api.Calls(), len(p.Messages()))
	}
}

func TestChatClear(t *testing.T) {
	deps, _, _ := newDeps("")
	p := NewChat(deps)
	if p.CanClear() {
		t.Error("CanClear() = true on an empty log")
	}
	drive(t, p, p.Send("hi"))

	p.Clear()

	if len(p.Messages()) != 0 || p.Selected() != -1 {
		t.Errorf("log not cleared: %+v", p.Messages())
	}
}

func TestChatInsertSelected(t *testing.T) {
	deps, doc, api := newDeps("")
	api.AnalyzeFunc = func(context.Context, analysis.AnalyzeRequest) (*analysis.AnalyzeResponse, error) {
		return &analysis.AnalyzeResponse{Response: "**Risk**: none"}, nil
	}
	p := NewChat(deps)
	drive(t, p, p.Send("risks?"))

	if p.Insert() != nil {
		t.Error("Insert without a selected message returned a command")
	}
	p.Select(1)
	if p.Selected() != 1 {
		t.Fatalf("Selected() = %d, want 1", p.Selected())
	}

	alerts := drive(t, p, p.Insert())

	if len(alerts) != 1 || alerts[0] != "Response inserted successfully!" {
		t.Errorf("alerts = %v", alerts)
	}
	_, inserted := doc.Writes()
	if len(inserted) != 1 || inserted[0] != "\n\n**Risk**: none" {
		t.Errorf("inserted = %q", inserted)
	}
}

func TestChatInsertKeepsContent(t *testing.T) {
	const answer = "Steps:\n\n1. Give notice\n2. Wait 30 days\n\nSee [clause](https://example.com/c7).\n\n<div>Signed</div>"
	deps, doc, api := newDeps("")
	api.AnalyzeFunc = func(context.Context, analysis.AnalyzeRequest) (*analysis.AnalyzeResponse, error) {
		return &analysis.AnalyzeResponse{Response: answer}, nil
	}
	p := NewChat(deps)
	drive(t, p, p.Send("termination steps?"))
	p.Select(1)

	drive(t, p, p.Update(tea.KeyMsg{Type: tea.KeyCtrlO}))
	drive(t, p, p.Update(tea.KeyMsg{Type: tea.KeyCtrlT}))

	_, inserted := doc.Writes()
	want := []string{
		"\n\n" + answer,
		"\n\nSteps:\n\n1. Give notice\n2. Wait 30 days\n\nSee clause (https://example.com/c7).\n\n<div>Signed</div>",
	}
	if len(inserted) != len(want) {
		t.Fatalf("inserted = %q", inserted)
	}
	for i := range want {
		if inserted[i] != want[i] {
			t.Errorf("insert %d = %q, want %q", i, inserted[i], want[i])
		}
	}
}

func TestChatInputReceivesBlink(t *testing.T) {
	deps, _, _ := newDeps("")
	p := NewChat(deps)

	blink := p.Init()
	if blink == nil {
		t.Fatal("Init() returned no command")
	}
	if cmd := p.Update(blink()); cmd == nil {
		t.Error("cursor blink message was not handled by the input")
	}
}

func TestChatInsertFailure(t *testing.T) {
	deps, doc, _ := newDeps("")
	doc.InsertTextFunc = func(context.Context, string) error { return errors.New("closed") }
	p := NewChat(deps)
	drive(t, p, p.Send("hi"))
	p.Select(1)

	alerts := drive(t, p, p.Insert())

	if len(alerts) != 1 || alerts[0] != "Failed to insert response" {
		t.Errorf("alerts = %v", alerts)
	}
}

func TestChatSelectSkipsUserMessages(t *testing.T) {
	deps, _, _ := newDeps("")
	p := NewChat(deps)
	drive(t, p, p.Send("one"))
	drive(t, p, p.Send("two"))

	p.Select(1)
	if p.Selected() != 1 {
		t.Errorf("first Select(1) = %d, want 1", p.Selected())
	}
	p.Select(1)
	if p.Selected() != 3 {
		t.Errorf("second Select(1) = %d, want 3", p.Selected())
	}
	p.Select(1)
	if p.Selected() != 1 {
		t.Errorf("wrapped Select(1) = %d, want 1", p.Selected())
	}
	p.Select(-1)
	if p.Selected() != 3 {
		t.Errorf("Select(-1) = %d, want 3", p.Selected())
	}
}

func TestChatSuggestions(t *testing.T) {
	deps, _, _ := newDeps("")
	p := NewChat(deps)

	p.NextSuggestion()
	if p.Input() != SuggestedPrompts[0] {
		t.Errorf("Input() = %q, want %q", p.Input(), SuggestedPrompts[0])
	}
	p.NextSuggestion()
	if p.Input() != SuggestedPrompts[1] {
		t.Errorf("Input() = %q, want %q", p.Input(), SuggestedPrompts[1])
	}

	drive(t, p, p.Send(""))
	p.NextSuggestion()
	if p.Input() != "" {
		t.Errorf("suggestion offered with a non-empty log: %q", p.Input())
	}
}

func TestChatToggles(t *testing.T) {
	deps, _, _ := newDeps("")
	deps.IncludeSelection = true
	p := NewChat(deps)

	p.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	p.Update(tea.KeyMsg{Type: tea.KeyCtrlD})

	if p.IncludeSelection() || !p.IncludeDocument() {
		t.Errorf("toggles = %v %v, want false true", p.IncludeSelection(), p.IncludeDocument())
	}
}

func TestChatAddressesMessagesByID(t *testing.T) {
	deps, _, _ := newDeps("")
	var copied string
	deps.Copy = func(s string) error {
		copied = s
		return nil
	}
	p := NewChat(deps)
	drive(t, p, p.Send("first"))
	reply := p.Messages()[1]
	if reply.ID == "" {
		t.Fatal("message has no ID")
	}

	drive(t, p, p.CopyMessage(reply.ID))
	if copied != reply.Content {
		t.Errorf("copied %q, want %q", copied, reply.Content)
	}
	if p.CopyMessage("unknown") != nil || p.InsertMessage("unknown") != nil {
		t.Error("unknown message ID returned a command")
	}

	p.Select(1)
	drive(t, p, p.Send("second"))
	if p.Selected() != 1 {
		t.Errorf("selection moved to %d after new messages, want 1", p.Selected())
	}
}
