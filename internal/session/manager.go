package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/outpost31/simulator/internal/domain/rules"
	"github.com/outpost31/simulator/internal/events"
	"github.com/outpost31/simulator/internal/platform/metrics"
)

// ErrTooManySessions is returned by Open when the session cap is reached.
var ErrTooManySessions = errors.New("session: too many live sessions")

// Manager tracks live sessions and carries the shared difficulty preference
// that new sessions start with.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	eventLog    *events.EventLog
	deps        Deps
	store       Preferences
	metrics     *metrics.Collector
	difficulty  rules.Difficulty
	maxSessions int
}

// NewManager creates a manager. maxSessions <= 0 means unlimited.
// deps.Preferences, when set, receives every difficulty change from any session.
func NewManager(eventLog *events.EventLog, deps Deps, difficulty rules.Difficulty, maxSessions int, m *metrics.Collector) *Manager {
	mgr := &Manager{
		sessions:    make(map[string]*Session),
		eventLog:    eventLog,
		store:       deps.Preferences,
		metrics:     m,
		difficulty:  difficulty,
		maxSessions: maxSessions,
	}
	deps.Preferences = mgr
	mgr.deps = deps
	return mgr
}

// SaveDifficulty makes d the default for new sessions and persists it.
func (m *Manager) SaveDifficulty(ctx context.Context, d rules.Difficulty) error {
	m.mu.Lock()
	m.difficulty = d
	m.mu.Unlock()

	if m.store == nil {
		return nil
	}
	return m.store.SaveDifficulty(ctx, d)
}

// Difficulty returns the difficulty new sessions start with.
func (m *Manager) Difficulty() rules.Difficulty {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.difficulty
}

// Open starts a new session with a fresh id.
func (m *Manager) Open() (*Session, error) {
	m.mu.Lock()
	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		m.mu.Unlock()
		return nil, ErrTooManySessions
	}
	id := uuid.NewString()
	difficulty := m.difficulty
	m.mu.Unlock()

	s, err := New(m.eventLog.For(id), m.deps, difficulty)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.RecordSession(1)
	}
	m.deps.Log.Event("SESSION_OPEN", events.ActorStation, id)
	return s, nil
}

// Get returns a live session.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close drops a session and its in-memory journal. Persisted events stay.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return
	}
	m.eventLog.Forget(id)
	if m.metrics != nil {
		m.metrics.RecordSession(-1)
	}
	m.deps.Log.Event("SESSION_CLOSE", events.ActorStation, id)
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// List returns the live sessions in no particular order.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// TickAll applies one passive beat to every live session and returns them.
func (m *Manager) TickAll() []*Session {
	start := time.Now()
	live := m.List()
	for _, s := range live {
		s.TickPassiveRisk()
	}
	if m.metrics != nil {
		m.metrics.RecordTick(time.Since(start))
	}
	return live
}
