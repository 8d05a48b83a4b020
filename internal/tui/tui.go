// Package tui is a read-only status viewer over the IPC client: one
// bubbletea model that polls internal/ipc's Status() on a tick and
// renders monitors, workspaces, focus, and layout. Grounded on the
// teacher's internal/tui package (bubbletea root model wrapping an
// ipc.Client, a 3s tea.Tick refresh loop, lipgloss styling) trimmed
// from a multi-tab config editor with save/preview overlays down to a
// single view, since this spec has no persisted layout configuration
// to edit (spec §6 "Persisted state: None").
package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/LGUG2Z/yatta/internal/ipc"
)

const refreshInterval = 2 * time.Second

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	monitorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("250"))

	activeWorkspaceStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("42"))

	workspaceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	focusedWindowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("42"))

	floatingWindowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("214"))

	windowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Padding(0, 1)
)

type refreshMsg struct {
	status *ipc.StatusData
	err    error
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return pollMsg{} })
}

type pollMsg struct{}

// Model is the bubbletea root model for the status viewer.
type Model struct {
	client *ipc.Client
	status *ipc.StatusData
	err    error
	width  int
	height int
}

// New creates a Model bound to a fresh IPC client.
func New() Model {
	return Model{client: ipc.NewClient()}
}

func (m Model) poll() tea.Msg {
	status, err := m.client.Status()
	return refreshMsg{status: status, err: err}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.poll, tick())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case pollMsg:
		return m, tea.Batch(m.poll, tick())

	case refreshMsg:
		m.status = msg.status
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			return m, m.poll
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	title := "yatta"
	if m.status != nil && m.status.Paused {
		title += "  (paused)"
	}
	b.WriteString(headerStyle.Width(max(m.width, len(title)+2)).Render(title))
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(errStyle.Render(fmt.Sprintf("daemon not reachable: %v", m.err)))
		b.WriteString("\n")
	case m.status == nil:
		b.WriteString(workspaceStyle.Render("connecting..."))
		b.WriteString("\n")
	default:
		for _, mon := range m.status.Monitors {
			b.WriteString(renderMonitor(mon))
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("r: refresh  q: quit"))
	return b.String()
}

func renderMonitor(mon ipc.StatusMonitor) string {
	var b strings.Builder
	label := mon.ID
	if mon.Focused {
		label += " (focused)"
	}
	b.WriteString(monitorStyle.Render(label))
	b.WriteString("\n")

	for _, ws := range mon.Workspaces {
		if len(ws.Windows) == 0 && !ws.Active {
			continue
		}
		style := workspaceStyle
		if ws.Active {
			style = activeWorkspaceStyle
		}
		line := fmt.Sprintf("  [%d] %s", ws.Index, ws.Layout)
		if ws.Monocle {
			line += " (monocle)"
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")

		for _, win := range ws.Windows {
			b.WriteString(renderWindow(win))
		}
	}
	b.WriteString("\n")
	return b.String()
}

func renderWindow(win ipc.StatusWindow) string {
	title := win.Title
	if title == "" {
		title = fmt.Sprintf("hwnd %d", win.Hwnd)
	}
	line := fmt.Sprintf("      %s", title)
	if win.Class != "" {
		line += " (" + win.Class + ")"
	}
	if win.Floating {
		line += " [floating]"
	}

	style := windowStyle
	switch {
	case win.Focused:
		style = focusedWindowStyle
	case win.Floating:
		style = floatingWindowStyle
	}
	return style.Render(line) + "\n"
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Run starts the status viewer, blocking until the user quits.
func Run() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	_, err := tea.NewProgram(New(), tea.WithAltScreen()).Run()
	return err
}
