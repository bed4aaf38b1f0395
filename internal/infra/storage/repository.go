// Package storage is the persistence layer of the simulation server: the
// difficulty preference and a durable copy of every session journal.
package storage

import (
	"context"
	"time"
)

// StoredEvent is a journal event as it sits in the database. Payloads are
// kept as decoded JSON so the debrief can read them without the engine types.
type StoredEvent struct {
	ID        string                 `json:"id" db:"id"`
	SessionID string                 `json:"session_id" db:"session_id"`
	Timestamp time.Time              `json:"timestamp" db:"timestamp"`
	EventType string                 `json:"event_type" db:"event_type"`
	ActorID   string                 `json:"actor_id" db:"actor_id"`
	TargetID  string                 `json:"target_id" db:"target_id"`
	Payload   map[string]interface{} `json:"payload" db:"payload"`
}

// EventRepository defines the interface for journal persistence.
type EventRepository interface {
	// Append adds a new event to the immutable ledger.
	Append(ctx context.Context, event StoredEvent) error

	// GetBySession retrieves all events for one session, oldest first.
	GetBySession(ctx context.Context, sessionID string) ([]StoredEvent, error)

	// GetByEventType retrieves all events of a specific type for one session.
	GetByEventType(ctx context.Context, sessionID string, eventType string) ([]StoredEvent, error)

	// ListSessions returns the most recently active session ids, newest first.
	ListSessions(ctx context.Context, limit int) ([]string, error)
}

// PreferenceRepository is a namespaced string key-value store.
type PreferenceRepository interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set inserts or replaces a value.
	Set(ctx context.Context, key, value string) error
}
