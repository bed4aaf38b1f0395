// Package ui is the local terminal host: one session, drawn with lipgloss and
// driven by bubbletea key events plus the passive risk clock.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/outpost31/simulator/internal/engine"
	"github.com/outpost31/simulator/internal/session"
	"github.com/outpost31/simulator/internal/story"
)

const prefsWait = 2 * time.Second

// --- Styles (terminal green) ---
var (
	green       = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	brightGreen = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimGreen    = lipgloss.NewStyle().Foreground(lipgloss.Color("22"))
	amber       = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	border      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	panel       = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("2")).Padding(0, 1)
)

const rule = "----------------------------------------"

// App runs one session in the terminal.
type App struct {
	sess     *session.Session
	interval time.Duration
}

// NewApp binds the terminal to a session. interval is the passive tick cadence.
func NewApp(sess *session.Session, interval time.Duration) *App {
	return &App{sess: sess, interval: interval}
}

// Run blocks until the operator quits.
func (a *App) Run() error {
	p := tea.NewProgram(NewModel(a.sess, a.interval), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

type tickMsg time.Time

// Model is the bubbletea model around a session.
type Model struct {
	sess     *session.Session
	interval time.Duration

	view   story.View
	idx    int
	w, h   int
	status string
}

// NewModel starts on the session's current screen.
func NewModel(sess *session.Session, interval time.Duration) Model {
	if interval <= 0 {
		interval = engine.DefaultPassiveTick
	}
	return Model{sess: sess, interval: interval, view: sess.Current()}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKeys(msg)
	case tickMsg:
		m.sess.TickPassiveRisk()
		return m, m.tick()
	case tea.WindowSizeMsg:
		m.w = msg.Width
		m.h = msg.Height
		return m, nil
	}
	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.idx > 0 {
			m.idx--
		}
	case "down", "j":
		if m.idx < len(m.view.Choices)-1 {
			m.idx++
		}
	case "enter", " ":
		return m.activate(m.idx), nil
	case "d", "D":
		dir := 1
		if key == "D" {
			dir = -1
		}
		ctx, cancel := context.WithTimeout(context.Background(), prefsWait)
		d := m.sess.CycleDifficulty(ctx, dir)
		cancel()
		m.status = "RIGOR SET: " + d.Label()
		if v, err := m.sess.Refresh(); err == nil {
			m.view = v
		}
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			return m.activate(int(key[0] - '1')), nil
		}
	}
	return m, nil
}

// activate picks a choice. Indices past the list are ignored by the session.
func (m Model) activate(i int) Model {
	v, err := m.sess.ActivateChoice(i)
	if err != nil {
		m.status = "ERROR: " + err.Error()
		return m
	}
	if v.NodeID != m.view.NodeID {
		m.idx = 0
	}
	m.view = v
	m.status = ""
	return m
}

func meterBar(label string, mt engine.Meter) string {
	filled := strings.Repeat("#", mt.Display)
	empty := strings.Repeat(".", engine.MeterMax-mt.Display)
	style := green
	if mt.Display >= engine.MeterMax*7/10 {
		style = amber
	}
	return fmt.Sprintf("%-9s %s%s %2d", label, style.Render(filled), dimGreen.Render(empty), mt.Raw)
}

func (m Model) View() string {
	meters := m.sess.Meters()

	var b strings.Builder
	b.WriteString(brightGreen.Render("OUTPOST 31 // CONTAINMENT SIMULATION") + "\n")
	b.WriteString(dimGreen.Render(fmt.Sprintf("RIGOR: %s   ELAPSED: %s",
		m.sess.Difficulty().Label(), time.Duration(meters.ElapsedSeconds)*time.Second)) + "\n")
	b.WriteString(border.Render(rule) + "\n")
	b.WriteString(lipgloss.JoinVertical(lipgloss.Left,
		meterBar("CAUTION", meters.Caution),
		meterBar("PARANOIA", meters.Paranoia),
		meterBar("RISK", meters.Risk),
	) + "\n\n")

	b.WriteString(panel.Render(green.Render(m.view.Text)) + "\n\n")

	for i, c := range m.view.Choices {
		cursor := "  "
		line := fmt.Sprintf("%d. %s", i+1, c.Label)
		if i == m.idx {
			cursor = "> "
			line = brightGreen.Render(line)
		} else {
			line = green.Render(line)
		}
		b.WriteString(cursor + line + "\n")
	}

	if t := m.view.Trophy; t != nil {
		b.WriteString("\n" + amber.Render(t.Title) + "\n")
		b.WriteString(dimGreen.Render(t.Href) + "\n")
	}

	b.WriteString("\n" + border.Render(rule) + "\n")
	b.WriteString(dimGreen.Render("LOG: "+m.sess.LastLogLine()) + "\n")
	b.WriteString(dimGreen.Render("↑/↓ move, Enter or 1-9 select, d/D rigor, q quit") + "\n")
	if m.status != "" {
		b.WriteString("\n" + green.Render(m.status) + "\n")
	}
	return b.String()
}
