package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/outpost31/simulator/internal/domain/rules"
)

func TestEvidenceCounts(t *testing.T) {
	s := NewState(rules.DifficultyNormal)
	assert.Zero(t, CountStrongEvidence(s))
	assert.Zero(t, CountEvidenceSignals(s))

	s.AddNote(NoteKennelProvocationFailed)
	s.AddNote(NoteHab03Anomaly)
	s.AddNote(NoteFlaggedSample)
	s.AddNote("went_to_shack")

	assert.Equal(t, 1, CountStrongEvidence(s))
	assert.Equal(t, 2, CountEvidenceSignals(s))

	for _, n := range EvidenceSignalNotes {
		s.AddNote(n)
	}
	assert.Equal(t, 3, CountStrongEvidence(s))
	assert.Equal(t, 11, CountEvidenceSignals(s))
}

func TestContainmentUnderHardNeedsTwoStrongSignals(t *testing.T) {
	s := NewState(rules.DifficultyHard)
	s.InfectedFound = true
	s.InfectionRisk = 1
	s.AddNote(NoteGeneratorRerouteHab03)

	assert.Equal(t, 2, RequiredEvidenceCount(s))
	assert.False(t, ContainmentSuccess(s))

	s.AddNote(NoteCrewMovementContradiction)
	assert.True(t, ContainmentSuccess(s))
}

func TestContainmentWinGate(t *testing.T) {
	winning := func() *State {
		s := NewState(rules.DifficultyNormal)
		s.InfectedFound = true
		s.InfectionRisk = 2
		s.AddNote(NoteKennelProvocationFailed)
		return s
	}
	assert.True(t, ContainmentSuccess(winning()))

	s := winning()
	s.InfectedFound = false
	assert.False(t, ContainmentSuccess(s))

	s = winning()
	s.InfectionRisk = 3
	assert.False(t, ContainmentSuccess(s))

	s = NewState(rules.DifficultyNormal)
	s.InfectedFound = true
	assert.False(t, ContainmentSuccess(s))
	s.Difficulty = rules.DifficultyEasy
	assert.True(t, ContainmentSuccess(s))
}

func TestConfirmedIdentityReadsNotesNotTruth(t *testing.T) {
	s := NewState(rules.DifficultyNormal)
	s.SetInfected("palmer")

	_, ok := ConfirmedIdentity(s)
	assert.False(t, ok)

	s.AddNote(IdentityNote("windows"))
	m, ok := ConfirmedIdentity(s)
	assert.True(t, ok)
	assert.Equal(t, "WINDOWS", m.Name)
}
