// Package network exposes sessions over WebSocket: one playthrough per
// connection, driven by small JSON commands.
package network

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/outpost31/simulator/internal/platform/config"
	"github.com/outpost31/simulator/internal/platform/logger"
	"github.com/outpost31/simulator/internal/platform/metrics"
	"github.com/outpost31/simulator/internal/session"
)

// MessageType tags outbound frames.
type MessageType string

const (
	MsgTypeSession MessageType = "SESSION"
	MsgTypeState   MessageType = "STATE"
	MsgTypeMeters  MessageType = "METERS"
	MsgTypeError   MessageType = "ERROR"
)

// Message is the envelope of every outbound frame.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp int64       `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// Hub maintains the set of active clients and their sessions.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	// done closes when Run returns; pumps stop waiting on the channels above.
	done chan struct{}
	mu   sync.Mutex

	sessions *session.Manager
	tuning   config.Tuning
	logger   *logger.Logger
	metrics  *metrics.Collector
	upgrader websocket.Upgrader
}

// NewHub initializes a new WebSocket Hub.
func NewHub(sessions *session.Manager, tuning config.Tuning, log *logger.Logger, m *metrics.Collector) *Hub {
	return &Hub{
		register:   make(chan *Client, tuning.BroadcastChannelBuffer),
		unregister: make(chan *Client, tuning.BroadcastChannelBuffer),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		sessions:   sessions,
		tuning:     tuning,
		logger:     log,
		metrics:    m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Terminal and browser hosts connect from anywhere
			},
		},
	}
}

// Run starts the Hub's main loop to handle client connections.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("WebSocket Hub shutting down.")
			h.mu.Lock()
			for client := range h.clients {
				h.drop(client)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.metrics.RecordWSConnection(1)
			h.logger.Info("New WebSocket client connected: session " + client.session.ID())
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				h.logger.Info("WebSocket client disconnected: session " + client.session.ID())
			}
			h.mu.Unlock()
		}
	}
}

// drop forgets a client and closes its session. Caller holds mu.
func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	client.close()
	h.sessions.Close(client.session.ID())
	h.metrics.RecordWSConnection(-1)
}

// Tick applies one passive beat to every live session, then pushes fresh
// meters to each connected client.
func (h *Hub) Tick() {
	h.sessions.TickAll()

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		if !client.pushMeters() {
			h.drop(client)
		}
	}
}

// leave hands a finished client back to Run, unless Run has already returned.
func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeWS upgrades the request and binds a fresh session to the connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Open()
	if errors.Is(err, session.ErrTooManySessions) {
		http.Error(w, "simulation capacity reached", http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		h.logger.Error("Failed to open session: " + err.Error())
		http.Error(w, "failed to open session", http.StatusInternalServerError)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade websocket connection: " + err.Error())
		h.sessions.Close(sess.ID())
		return
	}

	client := NewClient(h, conn, sess)
	client.greet()
	select {
	case h.register <- client:
	case <-h.done:
		client.close()
		h.sessions.Close(sess.ID())
		conn.Close()
		return
	}

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.WritePump()
	go client.ReadPump()
}

func encode(t MessageType, payload interface{}) ([]byte, error) {
	return json.Marshal(Message{Type: t, Timestamp: time.Now().Unix(), Payload: payload})
}
