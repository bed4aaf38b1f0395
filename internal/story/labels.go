package story

import (
	"github.com/outpost31/simulator/internal/domain/crew"
	"github.com/outpost31/simulator/internal/domain/rules"
	"github.com/outpost31/simulator/internal/engine"
	"github.com/outpost31/simulator/internal/platform/locale"
)

// Translated labels for values computed at runtime. Each key is a literal so
// the catalogue extractor and vet both see it.

// evidenceNotes lists the tags summarised on the final assessment, in display order.
var evidenceNotes = []string{
	engine.NoteFlaggedSample,
	engine.NoteAssimilationModelRan,
	engine.NoteCrewMovementContradiction,
	engine.NoteGeneratorRerouteHab03,
	engine.NoteKennelProvocationFailed,
	engine.NoteFalseNegativePossible,
	engine.NoteSecondaryInfectionPossible,
}

func evidenceLine(note string) string {
	switch note {
	case engine.NoteFlaggedSample:
		return locale.T("- INFECTED BLOOD CONFIRMED.")
	case engine.NoteAssimilationModelRan:
		return locale.T("- ASSIMILATION MODEL CONSULTED.")
	case engine.NoteCrewMovementContradiction:
		return locale.T("- TIMELINE CONTRADICTION (PLAYBACK).")
	case engine.NoteGeneratorRerouteHab03:
		return locale.T("- UNAUTHORIZED POWER ROUTE (HAB-03).")
	case engine.NoteKennelProvocationFailed:
		return locale.T("- KENNEL PROVOCATION ANOMALY.")
	case engine.NoteFalseNegativePossible:
		return locale.T("- TEST RELIABILITY COMPROMISED (POSSIBLE FALSE NEGATIVE).")
	case engine.NoteSecondaryInfectionPossible:
		return locale.T("- SECONDARY INFECTION POSSIBLE.")
	default:
		return ""
	}
}

func confidenceLabel(c rules.Confidence) string {
	switch c {
	case rules.ConfidenceHigh:
		return locale.T("MODEL CONFIDENCE: HIGH.")
	case rules.ConfidenceMedium:
		return locale.T("MODEL CONFIDENCE: MEDIUM.")
	case rules.ConfidenceLow:
		return locale.T("MODEL CONFIDENCE: LOW.")
	default:
		return locale.T("MODEL CONFIDENCE: UNKNOWN.")
	}
}

func rigorLabel(d rules.Difficulty) string {
	switch d {
	case rules.DifficultyEasy:
		return locale.T("RELAXED")
	case rules.DifficultyHard:
		return locale.T("STRICT")
	default:
		return locale.T("STANDARD")
	}
}

func sampleTag(m crew.Member) string {
	if m.IsArchived() {
		return locale.T("ARCHIVED SAMPLE")
	}
	return locale.T("LIVE SAMPLE")
}
