package session

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outpost31/simulator/internal/domain/rules"
	"github.com/outpost31/simulator/internal/engine"
	"github.com/outpost31/simulator/internal/events"
	"github.com/outpost31/simulator/internal/platform/logger"
	"github.com/outpost31/simulator/internal/story"
)

type memoryPrefs struct {
	saved []rules.Difficulty
	err   error
}

func (p *memoryPrefs) SaveDifficulty(_ context.Context, d rules.Difficulty) error {
	p.saved = append(p.saved, d)
	return p.err
}

func testDeps(t *testing.T, rng engine.Random) Deps {
	t.Helper()
	g, err := story.Station()
	require.NoError(t, err)
	return Deps{Graph: g, Log: logger.NewLoggerTo(io.Discard), Random: rng}
}

func newTestSession(t *testing.T, rng engine.Random, d rules.Difficulty) *Session {
	t.Helper()
	s, err := New(events.NewEventLog(nil).For("s1"), testDeps(t, rng), d)
	require.NoError(t, err)
	return s
}

func choose(t *testing.T, s *Session, indices ...int) story.View {
	t.Helper()
	var v story.View
	for _, i := range indices {
		var err error
		v, err = s.ActivateChoice(i)
		require.NoError(t, err)
	}
	return v
}

func countEvents(s *Session, typ events.EventType) int {
	n := 0
	for _, e := range s.engine.Journal().Events() {
		if e.Type == typ {
			n++
		}
	}
	return n
}

func TestNewSessionStartsOnIntro(t *testing.T) {
	s := newTestSession(t, engine.NewRandom(), rules.DifficultyNormal)

	v := s.Current()
	assert.Equal(t, story.NodeIntro, v.NodeID)
	require.Len(t, v.Choices, 1)
	assert.Equal(t, "OPEN STATION CONSOLE", v.Choices[0].Label)
	assert.Equal(t, "SYSTEM READY. SIMULATION ONLINE.", s.LastLogLine())
}

func TestOutOfRangeChoiceIsNoOp(t *testing.T) {
	s := newTestSession(t, engine.NewRandom(), rules.DifficultyNormal)
	before := s.Current()

	for _, idx := range []int{-1, 1, 99} {
		v, err := s.ActivateChoice(idx)
		require.NoError(t, err)
		assert.Equal(t, before, v)
	}

	assert.Equal(t, before, s.Current())
	assert.Zero(t, countEvents(s, events.EventTypeChoice))
	s.Inspect(func(st *engine.State) { assert.Zero(t, st.Caution) })
}

// successRoute plays a normal-difficulty run against an infected garry:
// kennel provocation (strong evidence), a blood test on garry, final assessment.
func successRoute(t *testing.T, s *Session) story.View {
	t.Helper()
	choose(t, s,
		0, // intro -> console
		0, // kennel
		0, // provocation test
		0, // log anomaly -> console
		1, // lab
		0, // manual blood tests
		1, // TEST GARRY
		0, // commit -> lab menu
		9, // exit to lab protocols
		3, // return to console
		5, // final assessment
	)
	v := s.Current()
	require.Equal(t, story.NodeFinalAssessment, v.NodeID)
	return v
}

func TestContainmentSuccessPlaythrough(t *testing.T) {
	s := newTestSession(t, engine.NewScriptedRandom(nil, []int{1}), rules.DifficultyNormal)

	successRoute(t, s)
	v := choose(t, s, 0)

	assert.Equal(t, story.NodeEndingSuccess, v.NodeID)
	assert.True(t, v.Ending)
	require.NotNil(t, v.Trophy)
	assert.Contains(t, v.Text, "SIMULATION TERMINATED: CONTAINMENT SUCCESSFUL.")
	require.Len(t, v.Choices, 1)
	assert.Equal(t, "RESTART SIMULATION", v.Choices[0].Label)
	assert.Equal(t, 1, countEvents(s, events.EventTypeEnding))
}

func TestVerdictFollowsStateAtActivation(t *testing.T) {
	s := newTestSession(t, engine.NewScriptedRandom(nil, []int{1}), rules.DifficultyNormal)
	successRoute(t, s)

	// The clock pushes risk past the containment limit while the screen is open.
	for range 3 {
		s.TickPassiveRisk()
	}
	v := choose(t, s, 0)

	assert.Equal(t, story.NodeEndingFailure, v.NodeID)
	assert.Contains(t, v.Text, "RISK INDEX AT TERMINATION: 3")
}

func TestFailureWithoutConfirmedInfection(t *testing.T) {
	s := newTestSession(t, engine.NewRandom(), rules.DifficultyEasy)

	console := choose(t, s, 0)
	require.Equal(t, story.NodeConsole, console.NodeID)
	// The shack is offered on a calm console, so the final assessment is last.
	final := len(console.Choices) - 1
	v := choose(t, s, final, 0)

	assert.Equal(t, story.NodeEndingFailure, v.NodeID)
	assert.Contains(t, v.Text, "INFECTION CONFIRMED PRIOR TO ACTION: NO")
}

func TestRestartFromEndingResetsButKeepsDifficulty(t *testing.T) {
	s := newTestSession(t, engine.NewScriptedRandom(nil, []int{1}), rules.DifficultyHard)
	intro := s.Current()

	console := choose(t, s, 0)
	choose(t, s, len(console.Choices)-1, 0)
	require.True(t, s.Current().Ending)

	v := choose(t, s, 0)

	assert.Equal(t, intro, v)
	assert.Equal(t, "SIMULATION RESET.", s.LastLogLine())
	assert.Equal(t, 1, countEvents(s, events.EventTypeRestart))
	s.Inspect(func(st *engine.State) {
		assert.Equal(t, rules.DifficultyHard, st.Difficulty)
		assert.Zero(t, st.Caution)
		assert.Zero(t, st.InfectionRisk)
		assert.Empty(t, st.Notes())
		assert.Len(t, st.InfectedIDs, 1)
	})
}

func TestNavigatingToIntroFromNonEndingDoesNotReset(t *testing.T) {
	g := story.NewGraph()
	g.Add(&story.Node{ID: story.NodeIntro, Text: "START", Choices: []story.Choice{{Label: "GO", Next: "loop"}}})
	g.Add(&story.Node{ID: "loop", Text: "LOOP", Choices: []story.Choice{{Label: "BACK", Next: story.NodeIntro, Effect: func(e *engine.Engine) {
		e.State().Caution += 5
	}}}})
	require.NoError(t, g.Validate())

	s, err := New(events.NewEventLog(nil).For("s1"), Deps{Graph: g, Log: logger.NewLoggerTo(io.Discard)}, rules.DifficultyNormal)
	require.NoError(t, err)

	v := choose(t, s, 0, 0)
	assert.Equal(t, story.NodeIntro, v.NodeID)
	assert.Zero(t, countEvents(s, events.EventTypeRestart))
	s.Inspect(func(st *engine.State) { assert.Equal(t, 5, st.Caution) })
}

func TestChoiceIsJournaled(t *testing.T) {
	s := newTestSession(t, engine.NewRandom(), rules.DifficultyNormal)
	choose(t, s, 0)

	var got []events.ChoicePayload
	for _, e := range s.engine.Journal().Events() {
		if p, ok := e.Payload.(events.ChoicePayload); ok {
			got = append(got, p)
		}
	}
	require.Len(t, got, 1)
	assert.Equal(t, events.ChoicePayload{FromNode: story.NodeIntro, Index: 0, Label: "OPEN STATION CONSOLE", ToNode: story.NodeConsole}, got[0])
}

func TestRenderDoesNotNavigate(t *testing.T) {
	s := newTestSession(t, engine.NewRandom(), rules.DifficultyNormal)

	v, err := s.Render(story.NodeLabIntro)
	require.NoError(t, err)
	assert.Equal(t, story.NodeLabIntro, v.NodeID)
	assert.Equal(t, story.NodeIntro, s.Current().NodeID)

	_, err = s.Render("nowhere")
	assert.ErrorIs(t, err, story.ErrUnknownNode)
}

func TestMetersAndPassiveTick(t *testing.T) {
	s := newTestSession(t, engine.NewRandom(), rules.DifficultyNormal)
	choose(t, s, 0)

	s.TickPassiveRisk()
	m := s.Meters()

	assert.Equal(t, 1, m.Caution.Raw)
	assert.Equal(t, 1, m.Risk.Raw)
	assert.Equal(t, "TIME ELAPSED: RISK INCREASED.", s.LastLogLine())

	v, err := s.Refresh()
	require.NoError(t, err)
	assert.Equal(t, story.NodeConsole, v.NodeID)
}

func TestDifficultyCyclePersists(t *testing.T) {
	prefs := &memoryPrefs{}
	deps := testDeps(t, engine.NewRandom())
	deps.Preferences = prefs
	s, err := New(events.NewEventLog(nil).For("s1"), deps, rules.DifficultyNormal)
	require.NoError(t, err)

	assert.Equal(t, rules.DifficultyHard, s.CycleDifficulty(context.Background(), 1))
	assert.Equal(t, rules.DifficultyEasy, s.CycleDifficulty(context.Background(), 1))
	assert.Equal(t, []rules.Difficulty{rules.DifficultyHard, rules.DifficultyEasy}, prefs.saved)
	assert.Equal(t, 2, countEvents(s, events.EventTypeDifficultyChanged))
}

func TestDifficultyStorageFailureKeepsValue(t *testing.T) {
	var buf bytes.Buffer
	deps := testDeps(t, engine.NewRandom())
	deps.Log = logger.NewLoggerTo(&buf)
	deps.Preferences = &memoryPrefs{err: errors.New("database is locked")}
	s, err := New(events.NewEventLog(nil).For("s1"), deps, rules.DifficultyNormal)
	require.NoError(t, err)

	s.SetDifficulty(context.Background(), rules.DifficultyHard)

	assert.Equal(t, rules.DifficultyHard, s.Difficulty())
	assert.Contains(t, buf.String(), "database is locked")
}
