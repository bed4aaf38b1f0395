package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/outpost31/simulator/internal/events"
	"github.com/outpost31/simulator/internal/platform/metrics"
)

// SQLiteEventRepository implements EventRepository for SQLite.
type SQLiteEventRepository struct {
	db *sql.DB
}

func NewSQLiteEventRepository(db *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

func (r *SQLiteEventRepository) Append(ctx context.Context, event StoredEvent) error {
	payloadBytes, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	query := `
		INSERT INTO events (id, session_id, timestamp, event_type, actor_id, target_id, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		event.ID, event.SessionID, event.Timestamp.UnixNano(), event.EventType,
		event.ActorID, event.TargetID, string(payloadBytes),
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (r *SQLiteEventRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]StoredEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredEvent
	for rows.Next() {
		var e StoredEvent
		var ts int64
		var payloadStr string
		err := rows.Scan(&e.ID, &e.SessionID, &ts, &e.EventType, &e.ActorID, &e.TargetID, &payloadStr)
		if err != nil {
			return nil, err
		}
		e.Timestamp = time.Unix(0, ts)
		if err := json.Unmarshal([]byte(payloadStr), &e.Payload); err != nil {
			return nil, fmt.Errorf("event %s: bad payload: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

const eventColumns = `id, session_id, timestamp, event_type, actor_id, target_id, payload`

func (r *SQLiteEventRepository) GetBySession(ctx context.Context, sessionID string) ([]StoredEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE session_id = ? ORDER BY timestamp ASC, rowid ASC`
	return r.getMany(ctx, query, sessionID)
}

func (r *SQLiteEventRepository) GetByEventType(ctx context.Context, sessionID string, eventType string) ([]StoredEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE session_id = ? AND event_type = ? ORDER BY timestamp ASC, rowid ASC`
	return r.getMany(ctx, query, sessionID, eventType)
}

func (r *SQLiteEventRepository) ListSessions(ctx context.Context, limit int) ([]string, error) {
	query := `SELECT session_id FROM events GROUP BY session_id ORDER BY MAX(timestamp) DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Persister adapts the repository to the in-memory event log's write-through
// hook. Each write is timed into m when m is non-nil.
func (r *SQLiteEventRepository) Persister(m *metrics.Collector) events.EventPersister {
	return &journalPersister{repo: r, metrics: m}
}

type journalPersister struct {
	repo    EventRepository
	metrics *metrics.Collector
}

func (p *journalPersister) Append(e events.GameEvent) error {
	start := time.Now()
	stored, err := toStored(e)
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = p.repo.Append(ctx, stored)
		cancel()
	}
	if p.metrics != nil {
		p.metrics.RecordEventWrite(time.Since(start), err)
	}
	return err
}

// toStored flattens a typed payload to its JSON object form.
func toStored(e events.GameEvent) (StoredEvent, error) {
	stored := StoredEvent{
		ID:        e.ID,
		SessionID: e.SessionID,
		Timestamp: e.Timestamp,
		EventType: string(e.Type),
		ActorID:   e.ActorID,
		TargetID:  e.TargetID,
		Payload:   map[string]interface{}{},
	}
	if e.Payload == nil {
		return stored, nil
	}
	raw, err := json.Marshal(e.Payload)
	if err != nil {
		return stored, fmt.Errorf("failed to marshal payload: %w", err)
	}
	if err := json.Unmarshal(raw, &stored.Payload); err != nil {
		return stored, fmt.Errorf("payload of %s is not an object: %w", e.Type, err)
	}
	return stored, nil
}

// ---------------------------------------------------------
// SQLitePreferenceRepository
// ---------------------------------------------------------

type SQLitePreferenceRepository struct {
	db *sql.DB
}

func NewSQLitePreferenceRepository(db *sql.DB) *SQLitePreferenceRepository {
	return &SQLitePreferenceRepository{db: db}
}

func (r *SQLitePreferenceRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read preference %q: %w", key, err)
	}
	return value, true, nil
}

func (r *SQLitePreferenceRepository) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO preferences (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value=excluded.value,
			updated_at=excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, key, value, time.Now().UnixNano()); err != nil {
		return fmt.Errorf("failed to write preference %q: %w", key, err)
	}
	return nil
}
