package ui

import (
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outpost31/simulator/internal/domain/rules"
	"github.com/outpost31/simulator/internal/engine"
	"github.com/outpost31/simulator/internal/events"
	"github.com/outpost31/simulator/internal/platform/logger"
	"github.com/outpost31/simulator/internal/session"
	"github.com/outpost31/simulator/internal/story"
)

func newModel(t *testing.T) Model {
	t.Helper()
	g, err := story.Station()
	require.NoError(t, err)
	sess, err := session.New(events.NewEventLog(nil).For("term"), session.Deps{
		Graph: g, Log: logger.NewLoggerTo(io.Discard), Random: engine.NewRandom(),
	}, rules.DifficultyNormal)
	require.NoError(t, err)
	return NewModel(sess, time.Minute)
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestEnterActivatesSelectedChoice(t *testing.T) {
	m := press(newModel(t), "enter")
	assert.Equal(t, story.NodeConsole, m.view.NodeID)
	assert.Zero(t, m.idx)

	m = press(m, "down", "enter")
	assert.Equal(t, story.NodeLabIntro, m.view.NodeID)
}

func TestNumberKeysAndOutOfRange(t *testing.T) {
	m := press(newModel(t), "1")
	require.Equal(t, story.NodeConsole, m.view.NodeID)

	m = press(m, "9", "9")
	assert.Equal(t, story.NodeConsole, m.view.NodeID)
}

func TestCursorStaysInList(t *testing.T) {
	m := press(newModel(t), "up", "down", "down")
	assert.Zero(t, m.idx)
}

func TestRigorToggle(t *testing.T) {
	m := press(newModel(t), "d")
	assert.Equal(t, rules.DifficultyHard, m.sess.Difficulty())
	assert.Equal(t, "RIGOR SET: STRICT", m.status)

	m = press(m, "D", "D")
	assert.Equal(t, rules.DifficultyEasy, m.sess.Difficulty())
}

func TestTickRaisesRisk(t *testing.T) {
	m := press(newModel(t), "enter")
	next, cmd := m.Update(tickMsg(time.Now()))
	m = next.(Model)

	assert.NotNil(t, cmd)
	assert.Equal(t, 1, m.sess.Meters().Risk.Raw)
	assert.Contains(t, m.View(), "TIME ELAPSED: RISK INCREASED.")
}

func TestQuit(t *testing.T) {
	_, cmd := newModel(t).Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestViewShowsChoicesAndMeters(t *testing.T) {
	out := newModel(t).View()
	assert.Contains(t, out, "1. OPEN STATION CONSOLE")
	assert.Contains(t, out, "RIGOR: STANDARD")
	assert.Contains(t, out, "CAUTION")
}
