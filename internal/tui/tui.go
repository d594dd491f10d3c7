package tui

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sokinpui/docpanel/internal/panel"
)

// --- Styles ---
var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")) // Mauve
	faintStyle     = lipgloss.NewStyle().Faint(true)
	activeTabStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("63")).Padding(0, 1)
	tabStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("7")).Padding(0, 1)
	badgeStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("214")).Padding(0, 1)
)

// DefaultHandshakeTimeout bounds the host handshake when none is configured.
const DefaultHandshakeTimeout = 5 * time.Second

// --- Messages ---
type hostReadyMsg struct{ err error }

// --- Keys ---
type keyMap struct {
	Next, Prev key.Binding
	Tabs       [4]key.Binding
	Quit       key.Binding
	Dismiss    key.Binding
}

var keys = keyMap{
	Next: key.NewBinding(key.WithKeys("tab")),
	Prev: key.NewBinding(key.WithKeys("shift+tab")),
	Tabs: [4]key.Binding{
		key.NewBinding(key.WithKeys("f1")),
		key.NewBinding(key.WithKeys("f2")),
		key.NewBinding(key.WithKeys("f3")),
		key.NewBinding(key.WithKeys("f4")),
	},
	Quit:    key.NewBinding(key.WithKeys("ctrl+c")),
	Dismiss: key.NewBinding(key.WithKeys("enter", "esc")),
}

// tabs are the panels in tab bar order.
var tabs = []func(panel.Deps) panel.Panel{
	func(d panel.Deps) panel.Panel { return panel.NewSummarize(d) },
	func(d panel.Deps) panel.Panel { return panel.NewCompare(d) },
	func(d panel.Deps) panel.Panel { return panel.NewRedraft(d) },
	func(d panel.Deps) panel.Panel { return panel.NewChat(d) },
}

var tabNames = []string{"Summarize", "Compare", "Redraft", "Chat"}

// --- Model ---

// Model is the sidebar shell: it performs the host handshake once, then
// shows a tab bar with exactly one mounted panel.
type Model struct {
	deps      panel.Deps
	hostName  string
	handshake time.Duration
	spinner   spinner.Model
	ready     bool
	hostErr   error
	active    int
	current   panel.Panel
	alert     string
	width     int
	height    int
}

// New creates the shell. hostName is only used for display.
func New(deps panel.Deps, hostName string, handshake time.Duration) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	if handshake <= 0 {
		handshake = DefaultHandshakeTimeout
	}
	return Model{
		deps:      deps,
		hostName:  hostName,
		handshake: handshake,
		spinner:   s,
	}
}

// Ready reports whether the handshake has settled.
func (m Model) Ready() bool { return m.ready }

// Degraded reports whether the handshake failed.
func (m Model) Degraded() bool { return m.hostErr != nil }

// Active returns the index of the mounted tab.
func (m Model) Active() int { return m.active }

// Panel returns the mounted panel, nil before the handshake settles.
func (m Model) Panel() panel.Panel { return m.current }

// Alert returns the text of the open alert, if any.
func (m Model) Alert() string { return m.alert }

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.connect)
}

func (m Model) connect() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), m.handshake)
	defer cancel()
	return hostReadyMsg{err: m.deps.Doc.Initialize(ctx)}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.current != nil {
			m.current.SetSize(m.panelSize())
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			if m.current != nil {
				m.current.Close()
			}
			return m, tea.Quit
		}
		if m.alert != "" {
			if key.Matches(msg, keys.Dismiss) {
				m.alert = ""
			}
			return m, nil
		}
		if !m.ready {
			return m, nil
		}
		switch {
		case key.Matches(msg, keys.Next):
			return m.switchTo((m.active + 1) % len(tabs))
		case key.Matches(msg, keys.Prev):
			return m.switchTo((m.active + len(tabs) - 1) % len(tabs))
		}
		for i, b := range keys.Tabs {
			if key.Matches(msg, b) {
				return m.switchTo(i)
			}
		}
		return m, m.current.Update(msg)

	case hostReadyMsg:
		if m.ready {
			return m, nil
		}
		m.ready = true
		if msg.err != nil {
			m.hostErr = msg.err
			log.Printf("host handshake failed, continuing degraded: %v", msg.err)
		}
		return m.mount(0)

	case panel.AlertMsg:
		m.alert = msg.Text
		return m, nil

	case spinner.TickMsg:
		if m.ready {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.current != nil {
		return m, m.current.Update(msg)
	}
	return m, nil
}

// switchTo closes the mounted panel and mounts a fresh one, so nothing
// survives a tab switch.
func (m Model) switchTo(i int) (tea.Model, tea.Cmd) {
	if i == m.active {
		return m, nil
	}
	m.current.Close()
	return m.mount(i)
}

func (m Model) mount(i int) (tea.Model, tea.Cmd) {
	m.active = i
	m.current = tabs[i](m.deps)
	m.current.SetSize(m.panelSize())
	return m, m.current.Init()
}

// panelSize is the area left for the panel under the tab bar and above the
// help line.
func (m Model) panelSize() (int, int) {
	return m.width, max(m.height-4, 0)
}

func (m Model) View() string {
	if !m.ready {
		return fmt.Sprintf("%s Connecting to %s...", m.spinner.View(), m.hostName)
	}
	if m.alert != "" && m.width > 0 && m.height > 0 {
		return renderAlert(m.alert, m.width, m.height)
	}

	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")
	b.WriteString(m.current.View())
	b.WriteString("\n\n")
	b.WriteString(faintStyle.Render(m.current.Help()))
	if m.alert != "" {
		b.WriteString("\n\n" + headerStyle.Render(m.alert) + faintStyle.Render("  (enter to dismiss)"))
	}
	return b.String()
}

func (m Model) renderTabs() string {
	rendered := make([]string, len(tabNames))
	for i, name := range tabNames {
		label := fmt.Sprintf("F%d %s", i+1, name)
		if i == m.active {
			rendered[i] = activeTabStyle.Render(label)
		} else {
			rendered[i] = tabStyle.Render(label)
		}
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	if m.hostErr != nil {
		bar = lipgloss.JoinHorizontal(lipgloss.Top, bar, " ", badgeStyle.Render("degraded"))
	}
	return bar
}
