package engine

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outpost31/simulator/internal/domain/crew"
	"github.com/outpost31/simulator/internal/domain/rules"
	"github.com/outpost31/simulator/internal/events"
	"github.com/outpost31/simulator/internal/platform/logger"
)

func newTestEngine(t *testing.T, rng Random) *Engine {
	t.Helper()
	el := events.NewEventLog(nil)
	return NewEngine(el.For("test-session"), logger.NewLoggerTo(io.Discard), rng, rules.DifficultyNormal)
}

func TestInitializeSeedsExactlyOneInfection(t *testing.T) {
	rng := NewScriptedRandom(nil, []int{3})
	e := newTestEngine(t, rng)
	s := e.State()

	assert.Equal(t, []string{"nauls"}, s.InfectedIDs)
	assert.False(t, s.InfectedFound)
	assert.False(t, s.SpreadTriggered)
	assert.Zero(t, s.BulkScans)
	assert.Nil(t, s.PendingBloodOutcome)
	assert.Len(t, s.BloodTests, len(crew.IDs()))
	assert.Zero(t, s.TestedCount())
	assert.Equal(t, "SYSTEM READY. SIMULATION ONLINE.", e.LastLogLine())
}

func TestFreshStateIsNotContained(t *testing.T) {
	e := newTestEngine(t, NewRandom())
	assert.False(t, ContainmentSuccess(e.State()))
}

func TestCommitInfectedSampleWithoutBulkScans(t *testing.T) {
	rng := NewScriptedRandom([]float64{0.0}, nil)
	e := newTestEngine(t, rng)
	s := e.State()
	s.SetInfected("garry")
	s.InfectionRisk = 3

	outcome := e.Infection().ApplyPendingBloodOutcome(s, "garry")

	assert.Equal(t, ResultInfected, outcome.Reported)
	assert.False(t, outcome.Lied)
	assert.Equal(t, ResultInfected, s.Result("garry"))
	assert.True(t, s.InfectedFound)
	assert.Equal(t, 2, s.Caution)
	assert.Equal(t, 2, s.InfectionRisk)
	assert.True(t, s.HasNote(NoteFlaggedSample))
	assert.True(t, s.HasNote("infected_identity_garry"))
	assert.Nil(t, s.PendingBloodOutcome)
	assert.Equal(t, "BLOOD TEST: GARRY = INFECTED.", e.LastLogLine())

	floats, _ := rng.Remaining()
	assert.Equal(t, 1, floats, "lie draw must not happen when bulkScans is zero")
}

func TestCommitInfectedFloorsRiskAtZero(t *testing.T) {
	e := newTestEngine(t, NewScriptedRandom(nil, nil))
	s := e.State()
	s.SetInfected("garry")

	e.Infection().ApplyPendingBloodOutcome(s, "garry")
	assert.Zero(t, s.InfectionRisk)
}

func TestCommitHumanSample(t *testing.T) {
	e := newTestEngine(t, NewScriptedRandom(nil, nil))
	s := e.State()
	s.SetInfected("garry")

	outcome := e.Infection().ApplyPendingBloodOutcome(s, "windows")

	assert.Equal(t, ResultHuman, outcome.Reported)
	assert.Equal(t, 1, s.Caution)
	assert.False(t, s.InfectedFound)
	assert.Equal(t, "BLOOD TEST: WINDOWS = HUMAN.", e.LastLogLine())
}

func TestFalseNegativeProbabilityFromState(t *testing.T) {
	e := newTestEngine(t, NewScriptedRandom(nil, nil))
	s := e.State()
	s.BulkScans = 2
	s.InfectionRisk = 10
	s.Caution = 0

	assert.InDelta(t, 0.50, e.Infection().FalseNegativeProbability(s), 1e-9)

	e.AddNote(NoteAssimilationModelRan)
	assert.InDelta(t, 0.40, FalseNegativeProbability(s), 1e-9)
}

func TestLieIsOneShotPerCrewMember(t *testing.T) {
	rng := NewScriptedRandom([]float64{0.1, 0.1}, nil)
	e := newTestEngine(t, rng)
	s := e.State()
	s.SetInfected("garry")
	s.BulkScans = 2
	s.InfectionRisk = 10

	first := e.Infection().ApplyPendingBloodOutcome(s, "garry")
	require.True(t, first.Lied)
	assert.Equal(t, ResultHuman, first.Reported)
	assert.True(t, s.FalseNegativeUsed["garry"])
	assert.True(t, s.HasNote(NoteFalseNegativePossible))
	assert.False(t, s.InfectedFound)
	assert.Equal(t, 1, s.Caution)
	assert.Equal(t, "BLOOD TEST: GARRY = HUMAN (UNVERIFIED).", e.LastLogLine())

	retest := e.Infection().ApplyPendingBloodOutcome(s, "garry")
	assert.False(t, retest.Lied)
	assert.Equal(t, ResultInfected, retest.Reported)
	assert.True(t, s.FalseNegativeUsed["garry"], "lie memory survives a retest")

	floats, _ := rng.Remaining()
	assert.Equal(t, 1, floats, "ineligible retest must not draw")
}

func TestLieImpossibleOnceInfectionFound(t *testing.T) {
	rng := NewScriptedRandom([]float64{0.0}, nil)
	e := newTestEngine(t, rng)
	s := e.State()
	s.SetInfected("garry", "palmer")
	s.BulkScans = 2
	s.InfectionRisk = 10
	s.InfectedFound = true

	outcome := e.Infection().ComputeAndStoreBloodOutcome(s, "palmer")
	assert.False(t, outcome.Lied)
	assert.Equal(t, ResultInfected, outcome.Reported)
}

func TestCommitReusesPendingOutcome(t *testing.T) {
	rng := NewScriptedRandom([]float64{0.1}, nil)
	e := newTestEngine(t, rng)
	s := e.State()
	s.SetInfected("garry")
	s.BulkScans = 2
	s.InfectionRisk = 10

	pending := e.Infection().ComputeAndStoreBloodOutcome(s, "garry")
	require.True(t, pending.Lied)
	require.NotNil(t, s.PendingBloodOutcome)

	// Exhausted script would report a truthful draw; reuse must keep the lie.
	committed := e.Infection().ApplyPendingBloodOutcome(s, "garry")
	assert.Equal(t, pending.Reported, committed.Reported)
	assert.True(t, committed.Lied)
	assert.Nil(t, s.PendingBloodOutcome)
}

func TestComputeAlwaysRedraws(t *testing.T) {
	rng := NewScriptedRandom([]float64{0.1, 0.9}, nil)
	e := newTestEngine(t, rng)
	s := e.State()
	s.SetInfected("garry")
	s.BulkScans = 2
	s.InfectionRisk = 10

	first := e.Infection().ComputeAndStoreBloodOutcome(s, "garry")
	second := e.Infection().ComputeAndStoreBloodOutcome(s, "garry")
	assert.True(t, first.Lied)
	assert.False(t, second.Lied)

	committed := e.Infection().ApplyPendingBloodOutcome(s, "garry")
	assert.Equal(t, second.Reported, committed.Reported)
	assert.Equal(t, ResultInfected, s.Result("garry"))
}

func TestCommitIgnoresPendingForAnotherCrewMember(t *testing.T) {
	e := newTestEngine(t, NewScriptedRandom(nil, nil))
	s := e.State()
	s.SetInfected("garry")

	e.Infection().ComputeAndStoreBloodOutcome(s, "garry")
	outcome := e.Infection().ApplyPendingBloodOutcome(s, "windows")

	assert.Equal(t, "windows", outcome.CrewID)
	assert.Equal(t, ResultHuman, s.Result("windows"))
	assert.Equal(t, ResultUntested, s.Result("garry"))
	assert.Nil(t, s.PendingBloodOutcome)
}

func TestSpreadChanceAtRiskSix(t *testing.T) {
	e := newTestEngine(t, NewScriptedRandom(nil, nil))
	s := e.State()
	s.InfectionRisk = 6

	assert.Equal(t, 0.5, SpreadChance(s))
}

func TestSpreadDrawAtRiskSix(t *testing.T) {
	for _, tc := range []struct {
		name  string
		draw  float64
		fires bool
	}{
		{"draw just under 0.5 fires", 0.49, true},
		{"draw at 0.5 holds", 0.5, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rng := NewScriptedRandom([]float64{tc.draw}, []int{1, 0})
			e := newTestEngine(t, rng)
			s := e.State()
			s.InfectionRisk = 6

			fired := e.Infection().MaybeTriggerSpread(s)
			assert.Equal(t, tc.fires, fired)
			assert.Equal(t, tc.fires, s.SpreadTriggered)
			if tc.fires {
				assert.Equal(t, []string{"garry", "macready"}, s.InfectedIDs)
				assert.True(t, s.HasNote(NoteSecondaryInfectionPossible))
				assert.Equal(t, "ALERT: SECONDARY INFECTION SIGNAL DETECTED.", e.LastLogLine())
				spreads := e.Journal().Events()
				assert.Contains(t, eventTypes(spreads), events.EventTypeSpread)
			} else {
				assert.Equal(t, []string{"garry"}, s.InfectedIDs)
			}
		})
	}
}

func TestSpreadNeverPicksAnAlreadyInfectedMember(t *testing.T) {
	for i := range crew.IDs() {
		rng := NewScriptedRandom([]float64{0.0}, []int{i, i})
		e := newTestEngine(t, rng)
		s := e.State()
		s.InfectionRisk = 7

		require.True(t, e.Infection().MaybeTriggerSpread(s))
		require.Len(t, s.InfectedIDs, 2)
		assert.NotEqual(t, s.InfectedIDs[0], s.InfectedIDs[1])
	}
}

func TestSpreadThresholdLaw(t *testing.T) {
	for _, tc := range []struct {
		name  string
		setup func(s *State)
	}{
		{"risk below five", func(s *State) { s.InfectionRisk = 4 }},
		{"latch already set", func(s *State) { s.InfectionRisk = 9; s.SpreadTriggered = true }},
		{"two infected", func(s *State) { s.InfectionRisk = 9; s.SetInfected("garry", "palmer") }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rng := NewScriptedRandom([]float64{0.0}, nil)
			e := newTestEngine(t, rng)
			s := e.State()
			tc.setup(s)
			before := append([]string(nil), s.InfectedIDs...)
			latch := s.SpreadTriggered

			assert.False(t, e.Infection().MaybeTriggerSpread(s))
			assert.Equal(t, before, s.InfectedIDs)
			assert.Equal(t, latch, s.SpreadTriggered)
			floats, _ := rng.Remaining()
			assert.Equal(t, 1, floats, "gated spread must not draw")
		})
	}
}

func TestInfectedCountStaysWithinBounds(t *testing.T) {
	e := newTestEngine(t, NewRandom())
	for i := 0; i < 50; i++ {
		e.TickPassiveRisk()
		n := len(e.State().InfectedIDs)
		require.GreaterOrEqual(t, n, 1)
		require.LessOrEqual(t, n, rules.MaxInfected)
	}
	assert.True(t, e.State().SpreadTriggered, "risk 50 with a 0.8 chance each tick should have spread")
}

func TestPlaybackSubjectPrefersInfected(t *testing.T) {
	rng := NewScriptedRandom(nil, []int{0, 1})
	e := newTestEngine(t, rng)
	s := e.State()
	s.SetInfected("garry", "palmer")

	assert.Equal(t, "palmer", e.Infection().PlaybackSubject(s).ID)
}

func TestSufficiencyAndConfidenceFromState(t *testing.T) {
	e := newTestEngine(t, NewScriptedRandom(nil, nil))
	s := e.State()
	assert.Equal(t, rules.SufficiencyNone, DataSufficiency(s))
	assert.Equal(t, rules.ConfidenceNone, ConfidenceLevel(s))

	s.BloodTests["windows"] = ResultHuman
	s.BloodTests["nauls"] = ResultHuman
	assert.Equal(t, rules.SufficiencySufficient, DataSufficiency(s))
	assert.Equal(t, rules.ConfidenceMedium, ConfidenceLevel(s))
}

func eventTypes(evts []events.GameEvent) []events.EventType {
	out := make([]events.EventType, len(evts))
	for i, ev := range evts {
		out[i] = ev.Type
	}
	return out
}
