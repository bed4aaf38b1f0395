package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outpost31/simulator/internal/domain/rules"
	"github.com/outpost31/simulator/internal/engine"
	"github.com/outpost31/simulator/internal/events"
	"github.com/outpost31/simulator/internal/platform/metrics"
)

func TestManagerOpenGetClose(t *testing.T) {
	el := events.NewEventLog(nil)
	m := metrics.New()
	mgr := NewManager(el, testDeps(t, engine.NewRandom()), rules.DifficultyNormal, 0, m)

	s, err := mgr.Open()
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID())

	got, ok := mgr.Get(s.ID())
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.NotEmpty(t, el.GetBySession(s.ID()))
	assert.EqualValues(t, 1, m.SessionsActive)

	mgr.Close(s.ID())
	mgr.Close(s.ID())

	_, ok = mgr.Get(s.ID())
	assert.False(t, ok)
	assert.Empty(t, el.GetBySession(s.ID()))
	assert.EqualValues(t, 0, m.SessionsActive)
	assert.EqualValues(t, 1, m.SessionsStarted)
}

func TestManagerEnforcesCap(t *testing.T) {
	mgr := NewManager(events.NewEventLog(nil), testDeps(t, engine.NewRandom()), rules.DifficultyNormal, 1, nil)

	_, err := mgr.Open()
	require.NoError(t, err)
	_, err = mgr.Open()
	assert.ErrorIs(t, err, ErrTooManySessions)
	assert.Equal(t, 1, mgr.Len())
}

func TestTickAllRaisesRiskEverywhere(t *testing.T) {
	m := metrics.New()
	mgr := NewManager(events.NewEventLog(nil), testDeps(t, engine.NewRandom()), rules.DifficultyNormal, 0, m)
	a, err := mgr.Open()
	require.NoError(t, err)
	b, err := mgr.Open()
	require.NoError(t, err)

	ticked := mgr.TickAll()

	assert.Len(t, ticked, 2)
	assert.Equal(t, 1, a.Meters().Risk.Raw)
	assert.Equal(t, 1, b.Meters().Risk.Raw)
	assert.EqualValues(t, 1, m.TickCount)
}

func TestDifficultyChangeCarriesToNewSessions(t *testing.T) {
	prefs := &memoryPrefs{}
	deps := testDeps(t, engine.NewRandom())
	deps.Preferences = prefs
	mgr := NewManager(events.NewEventLog(nil), deps, rules.DifficultyNormal, 0, nil)

	first, err := mgr.Open()
	require.NoError(t, err)
	first.CycleDifficulty(context.Background(), -1)

	second, err := mgr.Open()
	require.NoError(t, err)

	assert.Equal(t, rules.DifficultyEasy, mgr.Difficulty())
	assert.Equal(t, rules.DifficultyEasy, second.Difficulty())
	assert.Equal(t, []rules.Difficulty{rules.DifficultyEasy}, prefs.saved)
}

func TestManagerFeedsEventMetrics(t *testing.T) {
	el := events.NewEventLog(nil)
	m := metrics.New()
	el.Subscribe(m.ObserveEvent)
	mgr := NewManager(el, testDeps(t, engine.NewRandom()), rules.DifficultyNormal, 0, m)

	s, err := mgr.Open()
	require.NoError(t, err)
	choose(t, s, 0)
	console := s.Current()
	choose(t, s, len(console.Choices)-1, 0)

	assert.EqualValues(t, 3, m.ChoicesActivated)
	assert.EqualValues(t, 1, m.EndingsFailure)
}
