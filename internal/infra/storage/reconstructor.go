package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/outpost31/simulator/internal/domain/crew"
	"github.com/outpost31/simulator/internal/engine"
	"github.com/outpost31/simulator/internal/events"
)

// Reconstructor rebuilds an after-action debrief of one session from its
// persisted journal. Unlike the live narrative it may reveal hidden truth:
// which readouts lied and who the spread reached.
type Reconstructor struct {
	eventRepo EventRepository
}

// NewReconstructor creates a new debrief reconstructor.
func NewReconstructor(eventRepo EventRepository) *Reconstructor {
	return &Reconstructor{eventRepo: eventRepo}
}

// RunSummary is the folded state of a session's journal.
type RunSummary struct {
	SessionID      string   `json:"session_id"`
	Choices        int      `json:"choices"`
	BloodTests     int      `json:"blood_tests"`
	FalseNegatives []string `json:"false_negatives"`
	SpreadTo       string   `json:"spread_to,omitempty"`
	PassiveTicks   int      `json:"passive_ticks"`
	Restarts       int      `json:"restarts"`
	Endings        []string `json:"endings"`
	Notes          []string `json:"notes"`
	LastLogLine    string   `json:"last_log_line"`
}

// RecapEvent is one human-readable line of the debrief timeline.
type RecapEvent struct {
	Timestamp string `json:"timestamp"`
	EventType string `json:"event_type"`
	Summary   string `json:"summary"`
	Impact    string `json:"impact"` // "POSITIVE", "NEGATIVE", "NEUTRAL"
}

// Debrief is the full reconstruction returned to operators.
type Debrief struct {
	Summary RunSummary   `json:"summary"`
	Recap   []RecapEvent `json:"recap"`
}

// Rebuild folds a session's journal into a debrief. Notes are scoped to the
// latest playthrough; counters span the whole session.
func (r *Reconstructor) Rebuild(ctx context.Context, sessionID string) (*Debrief, error) {
	stored, err := r.eventRepo.GetBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get events for session: %w", err)
	}

	d := &Debrief{Summary: RunSummary{SessionID: sessionID}}
	for _, e := range stored {
		r.applyEvent(&d.Summary, e)
		if e.EventType == string(events.EventTypeLogLine) {
			continue
		}
		d.Recap = append(d.Recap, RecapEvent{
			Timestamp: e.Timestamp.Format("15:04:05"),
			EventType: e.EventType,
			Summary:   r.summarizeEvent(e),
			Impact:    r.determineImpact(e),
		})
	}
	return d, nil
}

// applyEvent folds one event into the summary.
func (r *Reconstructor) applyEvent(s *RunSummary, e StoredEvent) {
	switch events.EventType(e.EventType) {
	case events.EventTypeChoice:
		s.Choices++
	case events.EventTypeBloodTest:
		s.BloodTests++
		if lied, _ := e.Payload["lied"].(bool); lied {
			s.FalseNegatives = append(s.FalseNegatives, stringField(e, "crew_id"))
		}
	case events.EventTypeSpread:
		s.SpreadTo = stringField(e, "crew_id")
	case events.EventTypePassiveTick:
		s.PassiveTicks++
	case events.EventTypeRestart:
		s.Restarts++
		s.Notes = nil
	case events.EventTypeEnding:
		s.Endings = append(s.Endings, stringField(e, "node"))
	case events.EventTypeNoteAdded:
		s.Notes = append(s.Notes, stringField(e, "note"))
	case events.EventTypeLogLine:
		s.LastLogLine = stringField(e, "message")
	}
}

func stringField(e StoredEvent, key string) string {
	v, _ := e.Payload[key].(string)
	return v
}

func crewName(id string) string {
	return strings.ToUpper(crew.DisplayName(id))
}

// summarizeEvent creates a human-readable summary.
func (r *Reconstructor) summarizeEvent(e StoredEvent) string {
	switch events.EventType(e.EventType) {
	case events.EventTypeChoice:
		return fmt.Sprintf("%s: %s", stringField(e, "from_node"), stringField(e, "label"))
	case events.EventTypeNoteAdded:
		return "LOGGED: " + strings.ToUpper(engine.HumanizeNote(stringField(e, "note")))
	case events.EventTypeBloodTest:
		line := fmt.Sprintf("BLOOD TEST: %s READ %s", crewName(stringField(e, "crew_id")), strings.ToUpper(stringField(e, "reported")))
		if lied, _ := e.Payload["lied"].(bool); lied {
			line += " (FALSE NEGATIVE)"
		}
		return line
	case events.EventTypeSpread:
		return "SECONDARY INFECTION: " + crewName(stringField(e, "crew_id"))
	case events.EventTypePassiveTick:
		return "TIME ELAPSED"
	case events.EventTypeRestart:
		return "SIMULATION RESET"
	case events.EventTypeDifficultyChanged:
		return fmt.Sprintf("DIFFICULTY %s -> %s", strings.ToUpper(stringField(e, "from")), strings.ToUpper(stringField(e, "to")))
	case events.EventTypeEnding:
		if ok, _ := e.Payload["success"].(bool); ok {
			return "CONTAINMENT SUCCESSFUL"
		}
		return "CONTAINMENT FAILURE"
	default:
		return e.EventType
	}
}

// determineImpact classifies the event impact.
func (r *Reconstructor) determineImpact(e StoredEvent) string {
	switch events.EventType(e.EventType) {
	case events.EventTypeSpread, events.EventTypePassiveTick:
		return "NEGATIVE"
	case events.EventTypeBloodTest:
		if lied, _ := e.Payload["lied"].(bool); lied {
			return "NEGATIVE"
		}
		return "POSITIVE"
	case events.EventTypeNoteAdded:
		return "POSITIVE"
	case events.EventTypeEnding:
		if ok, _ := e.Payload["success"].(bool); ok {
			return "POSITIVE"
		}
		return "NEGATIVE"
	default:
		return "NEUTRAL"
	}
}
