package network

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/outpost31/simulator/internal/events"
	"github.com/outpost31/simulator/internal/infra/storage"
	"github.com/outpost31/simulator/internal/platform/logger"
	"github.com/outpost31/simulator/internal/session"
)

// ReplayHandler serves session journals: the live in-memory copy for running
// sessions and the persisted debrief for finished ones.
type ReplayHandler struct {
	eventLog      *events.EventLog
	eventRepo     storage.EventRepository
	reconstructor *storage.Reconstructor
	sessions      *session.Manager
	logger        *logger.Logger
}

// NewReplayHandler creates a new replay handler. eventRepo may be nil, in
// which case only live journals are served. Debriefs of sessions tracked by
// sessions are withheld until the run sits on an ending.
func NewReplayHandler(el *events.EventLog, eventRepo storage.EventRepository, sessions *session.Manager, log *logger.Logger) *ReplayHandler {
	vh := &ReplayHandler{
		eventLog:  el,
		eventRepo: eventRepo,
		sessions:  sessions,
		logger:    log,
	}
	if eventRepo != nil {
		vh.reconstructor = storage.NewReconstructor(eventRepo)
	}
	return vh
}

// ReplayEvent is a sanitized journal event. Hidden truth never leaves the
// server through this view.
type ReplayEvent struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Actor     string `json:"actor"`
	Target    string `json:"target,omitempty"`
	Summary   string `json:"summary,omitempty"`
}

// ReplayResponse is the API response for a live journal.
type ReplayResponse struct {
	SessionID   string        `json:"session_id"`
	TotalEvents int           `json:"total_events"`
	FilteredBy  string        `json:"filtered_by,omitempty"`
	GeneratedAt string        `json:"generated_at"`
	Events      []ReplayEvent `json:"events"`
}

// HandleJournal returns the live journal of a session.
// GET /api/journal?session_id=XXX&type=NOTE_ADDED
func (vh *ReplayHandler) HandleJournal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		vh.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		vh.jsonError(w, "Missing session_id", http.StatusBadRequest)
		return
	}
	eventType := r.URL.Query().Get("type")

	var source []events.GameEvent
	if eventType != "" {
		source = vh.eventLog.GetByType(sessionID, events.EventType(eventType))
	} else {
		source = vh.eventLog.GetBySession(sessionID)
	}
	if len(source) == 0 && eventType == "" {
		vh.jsonError(w, "Session not live", http.StatusNotFound)
		return
	}

	replayEvents := make([]ReplayEvent, 0, len(source))
	for _, e := range source {
		replayEvents = append(replayEvents, vh.convertToReplayEvent(e))
	}

	response := ReplayResponse{
		SessionID:   sessionID,
		TotalEvents: len(replayEvents),
		FilteredBy:  eventType,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Events:      replayEvents,
	}

	vh.logger.Event("JOURNAL_REPLAY", "OPERATOR", "Session:"+sessionID+" Events:"+strconv.Itoa(len(replayEvents)))
	vh.jsonSuccess(w, response)
}

// HandleDebrief rebuilds a session from the persisted journal.
// GET /api/debrief?session_id=XXX
func (vh *ReplayHandler) HandleDebrief(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		vh.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if vh.reconstructor == nil {
		vh.jsonError(w, "Persistence disabled", http.StatusServiceUnavailable)
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		vh.jsonError(w, "Missing session_id", http.StatusBadRequest)
		return
	}
	if vh.inProgress(sessionID) {
		vh.jsonError(w, "Run in progress", http.StatusConflict)
		return
	}

	debrief, err := vh.reconstructor.Rebuild(r.Context(), sessionID)
	if err != nil {
		vh.logger.Error("debrief " + sessionID + ": " + err.Error())
		vh.jsonError(w, "Failed to rebuild session", http.StatusInternalServerError)
		return
	}
	if len(debrief.Recap) == 0 && debrief.Summary.LastLogLine == "" {
		vh.jsonError(w, "Session not found", http.StatusNotFound)
		return
	}
	vh.jsonSuccess(w, debrief)
}

// inProgress reports whether a live session has not reached an ending yet.
// The debrief names the hidden infections, so it waits for the verdict.
func (vh *ReplayHandler) inProgress(sessionID string) bool {
	if vh.sessions == nil {
		return false
	}
	s, ok := vh.sessions.Get(sessionID)
	return ok && !s.Current().Ending
}

// HandleSessions lists recently persisted sessions.
// GET /api/sessions?limit=N
func (vh *ReplayHandler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		vh.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if vh.eventRepo == nil {
		vh.jsonError(w, "Persistence disabled", http.StatusServiceUnavailable)
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	ids, err := vh.eventRepo.ListSessions(r.Context(), limit)
	if err != nil {
		vh.logger.Error("list sessions: " + err.Error())
		vh.jsonError(w, "Failed to list sessions", http.StatusInternalServerError)
		return
	}
	vh.jsonSuccess(w, map[string]interface{}{"sessions": ids})
}

// RegisterRoutes sets up the journal API routes.
func (vh *ReplayHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/journal", vh.HandleJournal)
	mux.HandleFunc("/api/debrief", vh.HandleDebrief)
	mux.HandleFunc("/api/sessions", vh.HandleSessions)
}

// convertToReplayEvent transforms an internal event to its public form.
func (vh *ReplayHandler) convertToReplayEvent(e events.GameEvent) ReplayEvent {
	target := e.TargetID
	if e.Type == events.EventTypeSpread {
		target = "" // who the spread reached is hidden truth
	}
	return ReplayEvent{
		ID:        e.ID,
		Timestamp: e.Timestamp.Format("15:04:05"),
		Type:      string(e.Type),
		Actor:     e.ActorID,
		Target:    target,
		Summary:   vh.summarizeEvent(e),
	}
}

// summarizeEvent exposes only what the operator already saw on screen.
func (vh *ReplayHandler) summarizeEvent(e events.GameEvent) string {
	switch p := e.Payload.(type) {
	case events.LogLinePayload:
		return p.Message
	case events.NotePayload:
		return p.Note
	case events.ChoicePayload:
		return p.Label
	case events.BloodTestPayload:
		return p.CrewID + " = " + p.Reported
	case events.EndingPayload:
		return p.Node
	default:
		return ""
	}
}

// jsonError sends an error response.
func (vh *ReplayHandler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// jsonSuccess sends a success response.
func (vh *ReplayHandler) jsonSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(data)
}
