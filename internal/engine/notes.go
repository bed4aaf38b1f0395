package engine

import (
	"strings"

	"github.com/outpost31/simulator/internal/events"
)

// Note tags with mechanical meaning. Story-only tags live next to their nodes.
const (
	NoteKennelProvocationFailed   = "kennel_provocation_failed"
	NoteCrewMovementContradiction = "crew_movement_contradiction"
	NoteGeneratorRerouteHab03     = "generator_reroute_hab03"

	NoteUnknownPowerDraw      = "unknown_power_draw"
	NoteGeneratorLockBypassed = "generator_lock_bypassed"
	NoteHab03Anomaly          = "hab03_anomaly"
	NoteKennelFeedDrop        = "kennel_feed_drop"
	NoteFlaggedDogBehavior    = "flagged_dog_behavior"
	NoteLabVisualAnomaly      = "lab_visual_anomaly"

	NoteFalseNegativePossible      = "false_negative_possible"
	NoteSecondaryInfectionPossible = "secondary_infection_possible"
	NoteFlaggedSample              = "flagged_sample"
	NoteAssimilationModelRan       = "assimilation_model_ran"

	// NoteInfectedIdentityPrefix + crew id marks a confirmed infection.
	NoteInfectedIdentityPrefix = "infected_identity_"
)

// IdentityNote encodes a confirmed crew id as a note tag.
func IdentityNote(crewID string) string {
	return NoteInfectedIdentityPrefix + crewID
}

// HumanizeNote turns a tag into the spaced form used in log lines.
func HumanizeNote(note string) string {
	return strings.ReplaceAll(note, "_", " ")
}

// recordNote adds a note and, when it is new, journals it with a status line.
func recordNote(s *State, j *events.Journal, actorID, note string) bool {
	if !s.AddNote(note) {
		return false
	}
	j.Append(events.GameEvent{
		Type:    events.EventTypeNoteAdded,
		ActorID: actorID,
		Payload: events.NotePayload{Note: note},
	})
	j.Log(actorID, "LOGGED: "+HumanizeNote(note)+".")
	return true
}
