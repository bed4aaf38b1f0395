package network

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outpost31/simulator/internal/domain/rules"
	"github.com/outpost31/simulator/internal/engine"
	"github.com/outpost31/simulator/internal/events"
	"github.com/outpost31/simulator/internal/infra/storage"
	"github.com/outpost31/simulator/internal/platform/config"
	"github.com/outpost31/simulator/internal/platform/logger"
	"github.com/outpost31/simulator/internal/platform/metrics"
	"github.com/outpost31/simulator/internal/session"
	"github.com/outpost31/simulator/internal/story"
)

type fixture struct {
	eventLog *events.EventLog
	sessions *session.Manager
	hub      *Hub
	server   *httptest.Server
	metrics  *metrics.Collector
}

func newFixture(t *testing.T, tuning config.Tuning) *fixture {
	t.Helper()
	return buildFixture(t, tuning, engine.NewRandom(), nil)
}

// newPersistentFixture journals to a throwaway SQLite file so debriefs work.
func newPersistentFixture(t *testing.T, rng engine.Random) *fixture {
	t.Helper()
	db, err := storage.InitSQLite(filepath.Join(t.TempDir(), "outpost31.db"), storage.PoolOptions{MaxOpenConns: 2, MaxIdleConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return buildFixture(t, config.DefaultTuning(), rng, storage.NewSQLiteEventRepository(db))
}

func buildFixture(t *testing.T, tuning config.Tuning, rng engine.Random, repo *storage.SQLiteEventRepository) *fixture {
	t.Helper()
	g, err := story.Station()
	require.NoError(t, err)

	log := logger.NewLoggerTo(io.Discard)
	m := metrics.New()
	var persister events.EventPersister
	var eventRepo storage.EventRepository
	if repo != nil {
		persister = repo.Persister(nil)
		eventRepo = repo
	}
	el := events.NewEventLog(persister)
	mgr := session.NewManager(el, session.Deps{Graph: g, Log: log, Random: rng}, rules.DifficultyNormal, tuning.MaxSessions, m)
	hub := NewHub(mgr, tuning, log, m)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	NewReplayHandler(el, eventRepo, mgr, log).RegisterRoutes(mux)
	NewAudienceBridge(mgr, hub, log).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)

	t.Cleanup(func() {
		srv.Close()
		cancel()
		el.Flush(context.Background())
	})
	return &fixture{eventLog: el, sessions: mgr, hub: hub, server: srv, metrics: m}
}

func (f *fixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

type frame struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func readState(t *testing.T, conn *websocket.Conn) StatePayload {
	t.Helper()
	f := readFrame(t, conn)
	require.Equal(t, MsgTypeState, f.Type)
	var p StatePayload
	require.NoError(t, json.Unmarshal(f.Payload, &p))
	return p
}

func greet(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	f := readFrame(t, conn)
	require.Equal(t, MsgTypeSession, f.Type)
	var p map[string]string
	require.NoError(t, json.Unmarshal(f.Payload, &p))

	st := readState(t, conn)
	assert.Equal(t, story.NodeIntro, st.View.NodeID)
	return p["session_id"]
}

func TestPlaythroughOverWebSocket(t *testing.T) {
	f := newFixture(t, config.DefaultTuning())
	conn := f.dial(t)
	id := greet(t, conn)
	require.NotEmpty(t, id)

	require.NoError(t, conn.WriteJSON(Command{Type: CmdChoose, Index: 0}))
	st := readState(t, conn)
	assert.Equal(t, story.NodeConsole, st.View.NodeID)
	assert.Equal(t, 1, st.Meters.Caution.Raw)
	assert.Equal(t, "STANDARD", st.Rigor)

	require.NoError(t, conn.WriteJSON(Command{Type: CmdChoose, Index: 42}))
	st = readState(t, conn)
	assert.Equal(t, story.NodeConsole, st.View.NodeID)

	require.NoError(t, conn.WriteJSON(Command{Type: CmdDifficulty, Dir: 1}))
	st = readState(t, conn)
	assert.Equal(t, rules.DifficultyHard, st.Difficulty)
	assert.Contains(t, st.View.Text, "STRICT")
}

func TestTickPushesMeters(t *testing.T) {
	f := newFixture(t, config.DefaultTuning())
	conn := f.dial(t)
	greet(t, conn)
	require.Eventually(t, func() bool { return f.hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	f.hub.Tick()

	fr := readFrame(t, conn)
	require.Equal(t, MsgTypeMeters, fr.Type)
	var p MetersPayload
	require.NoError(t, json.Unmarshal(fr.Payload, &p))
	assert.Equal(t, 1, p.Meters.Risk.Raw)
	assert.Equal(t, "TIME ELAPSED: RISK INCREASED.", p.LogLine)
}

func TestMalformedAndUnknownCommands(t *testing.T) {
	f := newFixture(t, config.DefaultTuning())
	conn := f.dial(t)
	greet(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	assert.Equal(t, MsgTypeError, readFrame(t, conn).Type)

	require.NoError(t, conn.WriteJSON(Command{Type: "DANCE"}))
	assert.Equal(t, MsgTypeError, readFrame(t, conn).Type)
}

func TestRateLimit(t *testing.T) {
	tuning := config.DefaultTuning()
	tuning.MaxMessagesPerSecond = 1
	f := newFixture(t, tuning)
	conn := f.dial(t)
	greet(t, conn)

	require.NoError(t, conn.WriteJSON(Command{Type: CmdMeters}))
	require.NoError(t, conn.WriteJSON(Command{Type: CmdMeters}))

	assert.Equal(t, MsgTypeMeters, readFrame(t, conn).Type)
	assert.Equal(t, MsgTypeError, readFrame(t, conn).Type)
}

func TestDisconnectClosesSession(t *testing.T) {
	f := newFixture(t, config.DefaultTuning())
	conn := f.dial(t)
	id := greet(t, conn)
	require.Eventually(t, func() bool { return f.hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()

	require.Eventually(t, func() bool { return f.sessions.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Empty(t, f.eventLog.GetBySession(id))
	assert.EqualValues(t, 0, atomic.LoadInt64(&f.metrics.WSConnectionsActive))
}

func TestSessionCapRejectsUpgrade(t *testing.T) {
	tuning := config.DefaultTuning()
	tuning.MaxSessions = 1
	f := newFixture(t, tuning)
	conn := f.dial(t)
	greet(t, conn)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestJournalAndAudienceEndpoints(t *testing.T) {
	f := newFixture(t, config.DefaultTuning())
	conn := f.dial(t)
	id := greet(t, conn)

	resp, err := http.Get(f.server.URL + "/api/journal?session_id=" + id + "&type=LOG_LINE")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var journal ReplayResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&journal))
	require.NotEmpty(t, journal.Events)
	assert.Equal(t, "SYSTEM READY. SIMULATION ONLINE.", journal.Events[0].Summary)

	missing, err := http.Get(f.server.URL + "/api/journal?session_id=nobody")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)

	board, err := http.Get(f.server.URL + "/api/audience/watch?session_id=" + id)
	require.NoError(t, err)
	defer board.Body.Close()
	var watch struct {
		Status SessionStatus `json:"status"`
		View   story.View    `json:"view"`
	}
	require.NoError(t, json.NewDecoder(board.Body).Decode(&watch))
	assert.Equal(t, story.NodeIntro, watch.View.NodeID)
	assert.Equal(t, "STANDARD", watch.Status.Rigor)

	debrief, err := http.Get(f.server.URL + "/api/debrief?session_id=" + id)
	require.NoError(t, err)
	debrief.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, debrief.StatusCode)
}

func (f *fixture) debriefStatus(t *testing.T, id string) (int, storage.Debrief) {
	t.Helper()
	require.NoError(t, f.eventLog.Flush(context.Background()))
	resp, err := http.Get(f.server.URL + "/api/debrief?session_id=" + id)
	require.NoError(t, err)
	defer resp.Body.Close()

	var d storage.Debrief
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&d))
	}
	return resp.StatusCode, d
}

func TestDebriefWithheldUntilEnding(t *testing.T) {
	// The first float draw is the spread roll at risk 5.
	f := newPersistentFixture(t, engine.NewScriptedRandom([]float64{0}, nil))
	conn := f.dial(t)
	id := greet(t, conn)
	require.Eventually(t, func() bool { return f.hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	for range 5 {
		f.hub.Tick()
		require.Equal(t, MsgTypeMeters, readFrame(t, conn).Type)
	}

	status, _ := f.debriefStatus(t, id)
	assert.Equal(t, http.StatusConflict, status)

	require.NoError(t, conn.WriteJSON(Command{Type: CmdChoose, Index: 0}))
	console := readState(t, conn)
	require.Equal(t, story.NodeConsole, console.View.NodeID)
	require.NoError(t, conn.WriteJSON(Command{Type: CmdChoose, Index: len(console.View.Choices) - 1}))
	require.Equal(t, story.NodeFinalAssessment, readState(t, conn).View.NodeID)
	require.NoError(t, conn.WriteJSON(Command{Type: CmdChoose, Index: 0}))
	require.True(t, readState(t, conn).View.Ending)

	status, d := f.debriefStatus(t, id)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, d.Summary.SpreadTo)
	assert.Equal(t, 5, d.Summary.PassiveTicks)
}

func TestDisconnectAfterHubStops(t *testing.T) {
	g, err := story.Station()
	require.NoError(t, err)
	log := logger.NewLoggerTo(io.Discard)
	m := metrics.New()
	mgr := session.NewManager(events.NewEventLog(nil), session.Deps{Graph: g, Log: log, Random: engine.NewRandom()}, rules.DifficultyNormal, 4, m)

	tuning := config.DefaultTuning()
	tuning.BroadcastChannelBuffer = 0
	hub := NewHub(mgr, tuning, log, m)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	sess, err := mgr.Open()
	require.NoError(t, err)
	left := make(chan struct{})
	go func() {
		hub.leave(&Client{hub: hub, session: sess})
		close(left)
	}()

	select {
	case <-left:
	case <-time.After(2 * time.Second):
		t.Fatal("client stuck handing itself back to a stopped hub")
	}
}
