package network

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/outpost31/simulator/internal/domain/rules"
	"github.com/outpost31/simulator/internal/engine"
	"github.com/outpost31/simulator/internal/session"
	"github.com/outpost31/simulator/internal/story"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Time allowed to persist a difficulty change.
	prefsWait = 2 * time.Second
)

// Command types accepted from the peer.
const (
	CmdRender     = "RENDER"
	CmdChoose     = "CHOOSE"
	CmdMeters     = "METERS"
	CmdDifficulty = "DIFFICULTY"
)

// Command represents an incoming request from a host.
type Command struct {
	Type  string `json:"type"`
	Index int    `json:"index,omitempty"` // CHOOSE
	Dir   int    `json:"dir,omitempty"`   // DIFFICULTY: +1 or -1
}

// StatePayload is everything a host needs to draw the screen.
type StatePayload struct {
	View       story.View           `json:"view"`
	Meters     engine.MeterSnapshot `json:"meters"`
	LogLine    string               `json:"log_line"`
	Difficulty rules.Difficulty     `json:"difficulty"`
	Rigor      string               `json:"rigor"`
}

// MetersPayload is pushed after passive ticks.
type MetersPayload struct {
	Meters  engine.MeterSnapshot `json:"meters"`
	LogLine string               `json:"log_line"`
}

// Client is one connection and the session bound to it.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	session *session.Session

	mu     sync.Mutex
	send   chan []byte
	closed bool

	windowStart time.Time
	windowCount int
}

// NewClient creates a new WebSocket client and returns it.
func NewClient(hub *Hub, conn *websocket.Conn, sess *session.Session) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		session: sess,
		send:    make(chan []byte, hub.tuning.ClientSendBuffer),
	}
}

// greet sends the session id and the opening screen.
func (c *Client) greet() {
	c.sendMessage(MsgTypeSession, map[string]string{"session_id": c.session.ID()})
	c.sendState(c.session.Current())
}

// ReadPump pumps commands from the websocket connection into the session.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(c.hub.tuning.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.metrics.RecordWSError()
				c.hub.logger.Warnf("websocket read: %v", err)
			}
			break
		}
		c.hub.metrics.RecordWSMessage(true)

		var cmd Command
		if err := json.Unmarshal(message, &cmd); err != nil {
			c.hub.logger.Error("Failed to parse command from WebSocket. err: " + err.Error())
			c.sendError("malformed command")
			continue
		}

		c.handleCommand(cmd)
	}
}

// allow applies the per-connection command budget.
func (c *Client) allow(now time.Time) bool {
	limit := c.hub.tuning.MaxMessagesPerSecond
	if limit <= 0 {
		return true
	}
	if now.Sub(c.windowStart) >= time.Second {
		c.windowStart = now
		c.windowCount = 0
	}
	c.windowCount++
	return c.windowCount <= limit
}

func (c *Client) handleCommand(cmd Command) {
	if !c.allow(time.Now()) {
		c.hub.logger.Warn("Rate limit exceeded for session " + c.session.ID())
		c.sendError("rate limit exceeded")
		return
	}

	switch cmd.Type {
	case CmdRender:
		view, err := c.session.Refresh()
		if err != nil {
			c.fail(err)
			return
		}
		c.sendState(view)
	case CmdChoose:
		view, err := c.session.ActivateChoice(cmd.Index)
		if err != nil {
			c.fail(err)
			return
		}
		c.sendState(view)
	case CmdMeters:
		c.pushMeters()
	case CmdDifficulty:
		dir := 1
		if cmd.Dir < 0 {
			dir = -1
		}
		ctx, cancel := context.WithTimeout(context.Background(), prefsWait)
		c.session.CycleDifficulty(ctx, dir)
		cancel()

		view, err := c.session.Refresh()
		if err != nil {
			c.fail(err)
			return
		}
		c.sendState(view)
	default:
		c.hub.logger.Warn("Unknown command type: " + cmd.Type)
		c.sendError("unknown command " + cmd.Type)
	}
}

// fail reports an engine error. These only come from a broken node table.
func (c *Client) fail(err error) {
	c.hub.logger.Error("session " + c.session.ID() + ": " + err.Error())
	c.sendError(err.Error())
}

func (c *Client) sendState(view story.View) bool {
	d := c.session.Difficulty()
	return c.sendMessage(MsgTypeState, StatePayload{
		View:       view,
		Meters:     c.session.Meters(),
		LogLine:    c.session.LastLogLine(),
		Difficulty: d,
		Rigor:      d.Label(),
	})
}

func (c *Client) pushMeters() bool {
	return c.sendMessage(MsgTypeMeters, MetersPayload{
		Meters:  c.session.Meters(),
		LogLine: c.session.LastLogLine(),
	})
}

func (c *Client) sendError(msg string) bool {
	return c.sendMessage(MsgTypeError, map[string]string{"error": msg})
}

// sendMessage queues a frame without blocking. It reports false when the
// client is gone or too slow to keep up.
func (c *Client) sendMessage(t MessageType, payload interface{}) bool {
	b, err := encode(t, payload)
	if err != nil {
		c.hub.logger.Errorf("Failed to serialize %s frame: %v", t, err)
		return true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- b:
		c.hub.metrics.RecordWSMessage(false)
		return true
	default:
		return false
	}
}

// close shuts the outbound queue. Safe to call more than once.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.metrics.RecordWSError()
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
