package network

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/outpost31/simulator/internal/engine"
	"github.com/outpost31/simulator/internal/platform/logger"
	"github.com/outpost31/simulator/internal/session"
	"github.com/outpost31/simulator/internal/story"
)

// AudienceBridge lets observers watch live runs without joining them.
type AudienceBridge struct {
	sessions *session.Manager
	wsHub    *Hub
	logger   *logger.Logger
}

// NewAudienceBridge creates a new observer API.
func NewAudienceBridge(sessions *session.Manager, hub *Hub, log *logger.Logger) *AudienceBridge {
	return &AudienceBridge{
		sessions: sessions,
		wsHub:    hub,
		logger:   log,
	}
}

// SessionStatus is one row of the live board.
type SessionStatus struct {
	SessionID   string               `json:"session_id"`
	NodeID      string               `json:"node_id"`
	Ending      bool                 `json:"ending"`
	Rigor       string               `json:"rigor"`
	Meters      engine.MeterSnapshot `json:"meters"`
	LastLogLine string               `json:"last_log_line"`
}

func statusOf(s *session.Session) SessionStatus {
	view := s.Current()
	return SessionStatus{
		SessionID:   s.ID(),
		NodeID:      view.NodeID,
		Ending:      view.Ending,
		Rigor:       s.Difficulty().Label(),
		Meters:      s.Meters(),
		LastLogLine: s.LastLogLine(),
	}
}

// HandleBoard lists every live session.
// GET /api/audience/sessions
func (ab *AudienceBridge) HandleBoard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ab.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	live := ab.sessions.List()
	board := make([]SessionStatus, 0, len(live))
	for _, s := range live {
		board = append(board, statusOf(s))
	}
	sort.Slice(board, func(i, j int) bool { return board[i].SessionID < board[j].SessionID })

	connected := 0
	if ab.wsHub != nil {
		connected = ab.wsHub.ClientCount()
	}
	ab.jsonSuccess(w, map[string]interface{}{
		"sessions":     board,
		"online_count": connected,
		"timestamp":    time.Now().Unix(),
	})
}

// HandleWatch returns the screen a live session is looking at.
// GET /api/audience/watch?session_id=XXX
func (ab *AudienceBridge) HandleWatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ab.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		ab.jsonError(w, "Missing session_id", http.StatusBadRequest)
		return
	}
	s, ok := ab.sessions.Get(sessionID)
	if !ok {
		ab.jsonError(w, "Session not live", http.StatusNotFound)
		return
	}

	ab.logger.Event("AUDIENCE_WATCH", "AUDIENCE", sessionID)
	ab.jsonSuccess(w, struct {
		Status SessionStatus `json:"status"`
		View   story.View    `json:"view"`
	}{statusOf(s), s.Current()})
}

// RegisterRoutes sets up the audience API routes.
func (ab *AudienceBridge) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/audience/sessions", ab.HandleBoard)
	mux.HandleFunc("/api/audience/watch", ab.HandleWatch)
}

// jsonError sends an error response.
func (ab *AudienceBridge) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// jsonSuccess sends a success response.
func (ab *AudienceBridge) jsonSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(data)
}
