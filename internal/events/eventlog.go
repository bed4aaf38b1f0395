// Package events provides the append-only journal of a simulation run.
// Every narratively or mechanically significant moment (notes, tests, spread,
// resets, passive ticks) is recorded here; the latest LOG_LINE is what the
// presentation layer shows in its status strip.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType defines the category of a journal event.
type EventType string

const (
	EventTypeLogLine           EventType = "LOG_LINE"
	EventTypeNoteAdded         EventType = "NOTE_ADDED"
	EventTypeChoice            EventType = "CHOICE"
	EventTypeBloodTest         EventType = "BLOOD_TEST"
	EventTypeSpread            EventType = "SPREAD"
	EventTypeRestart           EventType = "RESTART"
	EventTypePassiveTick       EventType = "PASSIVE_TICK"
	EventTypeDifficultyChanged EventType = "DIFFICULTY_CHANGED"
	EventTypeEnding            EventType = "ENDING"
)

// Actor ids used by system-originated events.
const (
	ActorOperator  = "OPERATOR"
	ActorInfection = "SYSTEM_INFECTION"
	ActorClock     = "SYSTEM_CLOCK"
	ActorStation   = "SYSTEM_STATION"
)

// LogLinePayload is the human-readable status line.
type LogLinePayload struct {
	Message string `json:"message"`
}

// NotePayload records a newly added note tag.
type NotePayload struct {
	Note string `json:"note"`
}

// BloodTestPayload records one committed test. TrulyInfected and Lied are hidden
// truth and must not be surfaced to the narrative layer.
type BloodTestPayload struct {
	CrewID        string `json:"crew_id"`
	Reported      string `json:"reported"`
	TrulyInfected bool   `json:"truly_infected"`
	Lied          bool   `json:"lied"`
}

// SpreadPayload records the one-time secondary infection.
type SpreadPayload struct {
	CrewID        string  `json:"crew_id"`
	InfectionRisk int     `json:"infection_risk"`
	Chance        float64 `json:"chance"`
}

// ChoicePayload records an activated choice.
type ChoicePayload struct {
	FromNode string `json:"from_node"`
	Index    int    `json:"index"`
	Label    string `json:"label"`
	ToNode   string `json:"to_node"`
}

// EndingPayload records the ending a run reached.
type EndingPayload struct {
	Node    string `json:"node"`
	Success bool   `json:"success"`
}

// GameEvent represents an immutable record in a session journal.
type GameEvent struct {
	ID        string      `json:"id"`
	SessionID string      `json:"session_id"`
	Timestamp time.Time   `json:"timestamp"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id"`
	TargetID  string      `json:"target_id"`
	Payload   interface{} `json:"payload"`
}

// EventPersister defines how an event is durably stored.
type EventPersister interface {
	Append(event GameEvent) error
}

// EventLog is the in-memory append-only log of journal events.
type EventLog struct {
	mu        sync.RWMutex
	events    []GameEvent
	persister EventPersister
	onError   func(error)
	observers []func(GameEvent)
	writes    sync.WaitGroup
}

// NewEventLog creates a new event log with an optional persister.
func NewEventLog(persister EventPersister) *EventLog {
	return &EventLog{
		events:    make([]GameEvent, 0),
		persister: persister,
	}
}

// OnPersistError installs a callback for write-through failures.
func (el *EventLog) OnPersistError(fn func(error)) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.onError = fn
}

// Subscribe registers fn to be called synchronously after every append.
// Observers must not append to the log.
func (el *EventLog) Subscribe(fn func(GameEvent)) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.observers = append(el.observers, fn)
}

// Append adds a new event to the log, filling in ID and Timestamp when absent.
// Events are immutable once appended.
func (el *EventLog) Append(event GameEvent) GameEvent {
	if event.ID == "" {
		event.ID = GenerateEventID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	el.mu.Lock()
	el.events = append(el.events, event)
	persister, onError, observers := el.persister, el.onError, el.observers
	el.mu.Unlock()

	for _, fn := range observers {
		fn(event)
	}

	if persister != nil {
		// Write through off the caller's goroutine; Flush waits for these.
		el.writes.Add(1)
		go func(e GameEvent) {
			defer el.writes.Done()
			if err := persister.Append(e); err != nil && onError != nil {
				onError(err)
			}
		}(event)
	}
	return event
}

// Flush blocks until every write-through started so far has finished, or ctx ends.
func (el *EventLog) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		el.writes.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Log appends a LOG_LINE event for a session.
func (el *EventLog) Log(sessionID, actorID, message string) GameEvent {
	return el.Append(GameEvent{
		SessionID: sessionID,
		Type:      EventTypeLogLine,
		ActorID:   actorID,
		Payload:   LogLinePayload{Message: message},
	})
}

// GetBySession returns all events recorded for one session.
func (el *EventLog) GetBySession(sessionID string) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []GameEvent
	for _, e := range el.events {
		if e.SessionID == sessionID {
			result = append(result, e)
		}
	}
	return result
}

// GetByType returns all events of one type for a session.
func (el *EventLog) GetByType(sessionID string, eventType EventType) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []GameEvent
	for _, e := range el.events {
		if e.SessionID == sessionID && e.Type == eventType {
			result = append(result, e)
		}
	}
	return result
}

// LastLogLine returns the most recent LOG_LINE message for a session.
func (el *EventLog) LastLogLine(sessionID string) (string, time.Time, bool) {
	el.mu.RLock()
	defer el.mu.RUnlock()

	for i := len(el.events) - 1; i >= 0; i-- {
		e := el.events[i]
		if e.SessionID != sessionID || e.Type != EventTypeLogLine {
			continue
		}
		if p, ok := e.Payload.(LogLinePayload); ok {
			return p.Message, e.Timestamp, true
		}
	}
	return "", time.Time{}, false
}

// Forget drops a closed session's events from memory. Persisted copies are untouched.
func (el *EventLog) Forget(sessionID string) {
	el.mu.Lock()
	defer el.mu.Unlock()

	kept := el.events[:0]
	for _, e := range el.events {
		if e.SessionID != sessionID {
			kept = append(kept, e)
		}
	}
	el.events = kept
}

// Replay returns a copy of the full history.
func (el *EventLog) Replay() []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()
	out := make([]GameEvent, len(el.events))
	copy(out, el.events)
	return out
}

// GenerateEventID creates a unique event identifier.
func GenerateEventID() string {
	return uuid.NewString()
}
