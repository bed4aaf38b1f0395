package engine

import (
	"fmt"
	"time"

	"github.com/zyedidia/generic/mapset"

	"github.com/outpost31/simulator/internal/domain/crew"
	"github.com/outpost31/simulator/internal/domain/rules"
	"github.com/outpost31/simulator/internal/events"
	"github.com/outpost31/simulator/internal/platform/logger"
)

// InfectionSystem owns the hidden truth: who is infected, whether it spreads,
// and whether a given blood test lies.
type InfectionSystem struct {
	journal *events.Journal
	logger  *logger.Logger
	rng     Random
}

// NewInfectionSystem creates the infection model for one session.
func NewInfectionSystem(journal *events.Journal, log *logger.Logger, rng Random) *InfectionSystem {
	return &InfectionSystem{
		journal: journal,
		logger:  log,
		rng:     rng,
	}
}

// Initialize picks exactly one infected crew member uniformly at random and
// clears all test bookkeeping.
func (is *InfectionSystem) Initialize(s *State) {
	s.BloodTests = untestedRoster()
	s.InfectedIDs = Sample(is.rng, crew.IDs(), 1)
	s.InfectedFound = false
	s.BulkScans = 0
	s.FalseNegativeUsed = make(map[string]bool)
	s.SpreadTriggered = false
	s.PendingBloodOutcome = nil

	is.logger.Event("INFECTION_SEEDED", events.ActorInfection, "session:"+is.journal.SessionID())
}

// FalseNegativeProbability is the lie chance for an eligible infected sample.
func (is *InfectionSystem) FalseNegativeProbability(s *State) float64 {
	return FalseNegativeProbability(s)
}

// FalseNegativeProbability reads the false-negative model inputs from s.
func FalseNegativeProbability(s *State) float64 {
	return rules.FalseNegativeProbability(rules.FalseNegativeParams{
		BulkScans:     s.BulkScans,
		InfectionRisk: s.InfectionRisk,
		Caution:       s.Caution,
		ModelRan:      s.HasNote(NoteAssimilationModelRan),
	})
}

// SpreadChance is the probability MaybeTriggerSpread would draw against right now,
// or zero when the spread is gated off.
func SpreadChance(s *State) float64 {
	if s.SpreadTriggered || len(s.InfectedIDs) >= rules.MaxInfected {
		return 0
	}
	return rules.SpreadChance(s.InfectionRisk)
}

// MaybeTriggerSpread is the only path to a second infection. It must run after
// every choice that could raise InfectionRisk. Returns true when a spread fired.
func (is *InfectionSystem) MaybeTriggerSpread(s *State) bool {
	if s.SpreadTriggered {
		return false
	}
	if len(s.InfectedIDs) >= rules.MaxInfected {
		return false
	}
	if s.InfectionRisk < rules.SpreadRiskThreshold {
		return false
	}

	chance := rules.SpreadChance(s.InfectionRisk)
	if is.rng.Float64() >= chance {
		return false
	}

	infected := mapset.Of(s.InfectedIDs...)
	var candidates []string
	for _, id := range crew.IDs() {
		if !infected.Has(id) {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return false
	}

	victim := Pick(is.rng, candidates)
	s.InfectedIDs = append(s.InfectedIDs, victim)
	s.SpreadTriggered = true

	recordNote(s, is.journal, events.ActorInfection, NoteSecondaryInfectionPossible)
	is.journal.Append(events.GameEvent{
		Type:     events.EventTypeSpread,
		ActorID:  events.ActorInfection,
		TargetID: victim,
		Payload: events.SpreadPayload{
			CrewID:        victim,
			InfectionRisk: s.InfectionRisk,
			Chance:        chance,
		},
	})
	is.journal.Log(events.ActorInfection, "ALERT: SECONDARY INFECTION SIGNAL DETECTED.")
	is.logger.Event("SPREAD", events.ActorInfection, fmt.Sprintf("risk:%d chance:%.2f", s.InfectionRisk, chance))
	return true
}

// ComputeAndStoreBloodOutcome decides one test and memoises it as the pending outcome.
// It always draws fresh; callers that want reuse must check PendingBloodOutcome first.
func (is *InfectionSystem) ComputeAndStoreBloodOutcome(s *State, crewID string) BloodOutcome {
	trulyInfected := s.IsInfected(crewID)

	canLie := trulyInfected &&
		s.BulkScans > 0 &&
		!s.FalseNegativeUsed[crewID] &&
		!s.InfectedFound

	lied := false
	if canLie {
		lied = is.rng.Float64() < FalseNegativeProbability(s)
	}

	reported := ResultHuman
	if trulyInfected && !lied {
		reported = ResultInfected
	}

	outcome := BloodOutcome{
		CrewID:        crewID,
		TrulyInfected: trulyInfected,
		Lied:          lied,
		Reported:      reported,
		Timestamp:     time.Now(),
	}
	s.PendingBloodOutcome = &outcome
	return outcome
}

// ApplyPendingBloodOutcome commits the test for crewID. It reuses the pending
// outcome when it matches, otherwise computes one. The pending outcome is
// always cleared afterwards: this is the single consumption point.
func (is *InfectionSystem) ApplyPendingBloodOutcome(s *State, crewID string) BloodOutcome {
	var outcome BloodOutcome
	if p := s.PendingBloodOutcome; p != nil && p.CrewID == crewID {
		outcome = *p
	} else {
		outcome = is.ComputeAndStoreBloodOutcome(s, crewID)
	}

	s.BloodTests[crewID] = outcome.Reported
	name := crew.DisplayName(crewID)

	if outcome.Reported == ResultInfected {
		s.InfectedFound = true
		recordNote(s, is.journal, events.ActorOperator, NoteFlaggedSample)
		recordNote(s, is.journal, events.ActorOperator, IdentityNote(crewID))
		s.Caution += 2
		s.InfectionRisk = max(0, s.InfectionRisk-1)
		is.journal.Log(events.ActorOperator, "BLOOD TEST: "+name+" = INFECTED.")
	} else {
		s.Caution++
		if outcome.TrulyInfected && outcome.Lied {
			s.FalseNegativeUsed[crewID] = true
			recordNote(s, is.journal, events.ActorInfection, NoteFalseNegativePossible)
			is.journal.Log(events.ActorOperator, "BLOOD TEST: "+name+" = HUMAN (UNVERIFIED).")
		} else {
			is.journal.Log(events.ActorOperator, "BLOOD TEST: "+name+" = HUMAN.")
		}
	}

	is.journal.Append(events.GameEvent{
		Type:     events.EventTypeBloodTest,
		ActorID:  events.ActorOperator,
		TargetID: crewID,
		Payload: events.BloodTestPayload{
			CrewID:        crewID,
			Reported:      string(outcome.Reported),
			TrulyInfected: outcome.TrulyInfected,
			Lied:          outcome.Lied,
		},
	})

	s.PendingBloodOutcome = nil
	return outcome
}

// DataSufficiency rates the tested sample count for the assimilation model.
func DataSufficiency(s *State) rules.DataSufficiency {
	return rules.SufficiencyFor(s.TestedCount())
}

// ConfidenceLevel rates the tested sample count for assessments and endings.
func ConfidenceLevel(s *State) rules.Confidence {
	return rules.ConfidenceFor(s.TestedCount())
}

// PlaybackSubject picks the crew member shown on the security playback:
// one of the infected when any, otherwise anyone on the roster.
func (is *InfectionSystem) PlaybackSubject(s *State) crew.Member {
	if len(s.InfectedIDs) > 0 {
		if m, ok := crew.Lookup(Pick(is.rng, s.InfectedIDs)); ok {
			return m
		}
	}
	roster := crew.Roster()
	return roster[is.rng.IntN(len(roster))]
}
