package engine

import (
	"strings"

	"github.com/outpost31/simulator/internal/domain/crew"
	"github.com/outpost31/simulator/internal/domain/rules"
)

// StrongEvidenceNotes are the three tags that gate the win condition.
var StrongEvidenceNotes = []string{
	NoteKennelProvocationFailed,
	NoteCrewMovementContradiction,
	NoteGeneratorRerouteHab03,
}

// EvidenceSignalNotes is every tag counted as an evidence signal, strong ones first.
var EvidenceSignalNotes = append(append([]string(nil), StrongEvidenceNotes...),
	NoteUnknownPowerDraw,
	NoteGeneratorLockBypassed,
	NoteHab03Anomaly,
	NoteKennelFeedDrop,
	NoteFlaggedDogBehavior,
	NoteLabVisualAnomaly,
	NoteFalseNegativePossible,
	NoteSecondaryInfectionPossible,
)

// CountStrongEvidence returns how many strong evidence tags are noted, 0 to 3.
func CountStrongEvidence(s *State) int {
	return countNotes(s, StrongEvidenceNotes)
}

// CountEvidenceSignals counts strong plus corroborating tags. Display only.
func CountEvidenceSignals(s *State) int {
	return countNotes(s, EvidenceSignalNotes)
}

func countNotes(s *State, tags []string) int {
	n := 0
	for _, tag := range tags {
		if s.HasNote(tag) {
			n++
		}
	}
	return n
}

// RequiredEvidenceCount is the strong evidence threshold for the session's difficulty.
func RequiredEvidenceCount(s *State) int {
	return rules.RequiredEvidenceCount(s.Difficulty)
}

// ContainmentSuccess is the single win predicate.
func ContainmentSuccess(s *State) bool {
	return rules.ContainmentSuccess(rules.ContainmentParams{
		InfectedFound:  s.InfectedFound,
		StrongEvidence: CountStrongEvidence(s),
		Difficulty:     s.Difficulty,
		InfectionRisk:  s.InfectionRisk,
	})
}

// ConfirmedIdentity returns the crew member whose infection a test has reported.
// It reads the identity note, never the hidden infection set.
func ConfirmedIdentity(s *State) (crew.Member, bool) {
	note, ok := s.NoteWithPrefix(NoteInfectedIdentityPrefix)
	if !ok {
		return crew.Member{}, false
	}
	return crew.Lookup(strings.TrimPrefix(note, NoteInfectedIdentityPrefix))
}
