// Package metrics provides observability for the simulation server.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/outpost31/simulator/internal/events"
)

// Collector gathers simulation and transport counters.
type Collector struct {
	// Session metrics
	SessionsStarted int64
	SessionsActive  int64

	// Playthrough metrics, fed from the journal
	ChoicesActivated int64
	BloodTests       int64
	FalseNegatives   int64
	Spreads          int64
	Restarts         int64
	EndingsSuccess   int64
	EndingsFailure   int64

	// Passive clock
	TickCount      int64
	TickLatencySum int64 // nanoseconds
	TickLatencyMax int64
	LastTickTime   time.Time

	// Journal persistence
	EventsWritten    int64
	EventWriteLatSum int64
	EventWriteLatMax int64
	EventWriteErrors int64

	// WebSocket metrics
	WSConnectionsActive int64
	WSMessagesIn        int64
	WSMessagesOut       int64
	WSErrors            int64

	// System
	StartTime time.Time
	mu        sync.RWMutex
}

// Global collector instance
var collector = New()

// New returns an empty collector. Servers use Get; tests build their own.
func New() *Collector {
	return &Collector{StartTime: time.Now()}
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// RecordSession records a session opening (+1) or closing (-1).
func (c *Collector) RecordSession(delta int64) {
	if delta > 0 {
		atomic.AddInt64(&c.SessionsStarted, delta)
	}
	atomic.AddInt64(&c.SessionsActive, delta)
}

// RecordTick records one pass of the passive clock over every live session.
func (c *Collector) RecordTick(latency time.Duration) {
	atomic.AddInt64(&c.TickCount, 1)
	atomic.AddInt64(&c.TickLatencySum, int64(latency))

	// Update max (non-atomic but acceptable for metrics)
	if int64(latency) > atomic.LoadInt64(&c.TickLatencyMax) {
		atomic.StoreInt64(&c.TickLatencyMax, int64(latency))
	}

	c.mu.Lock()
	c.LastTickTime = time.Now()
	c.mu.Unlock()
}

// RecordEventWrite records a journal write to the database.
func (c *Collector) RecordEventWrite(latency time.Duration, err error) {
	atomic.AddInt64(&c.EventsWritten, 1)
	atomic.AddInt64(&c.EventWriteLatSum, int64(latency))

	if int64(latency) > atomic.LoadInt64(&c.EventWriteLatMax) {
		atomic.StoreInt64(&c.EventWriteLatMax, int64(latency))
	}

	if err != nil {
		atomic.AddInt64(&c.EventWriteErrors, 1)
	}
}

// ObserveEvent counts playthrough milestones as they are journaled.
// Install it with EventLog.Subscribe.
func (c *Collector) ObserveEvent(e events.GameEvent) {
	switch e.Type {
	case events.EventTypeChoice:
		atomic.AddInt64(&c.ChoicesActivated, 1)
	case events.EventTypeBloodTest:
		atomic.AddInt64(&c.BloodTests, 1)
		if p, ok := e.Payload.(events.BloodTestPayload); ok && p.Lied {
			atomic.AddInt64(&c.FalseNegatives, 1)
		}
	case events.EventTypeSpread:
		atomic.AddInt64(&c.Spreads, 1)
	case events.EventTypeRestart:
		atomic.AddInt64(&c.Restarts, 1)
	case events.EventTypeEnding:
		if p, ok := e.Payload.(events.EndingPayload); ok && p.Success {
			atomic.AddInt64(&c.EndingsSuccess, 1)
		} else {
			atomic.AddInt64(&c.EndingsFailure, 1)
		}
	}
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records WebSocket messages.
func (c *Collector) RecordWSMessage(incoming bool) {
	if incoming {
		atomic.AddInt64(&c.WSMessagesIn, 1)
	} else {
		atomic.AddInt64(&c.WSMessagesOut, 1)
	}
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tickCount := atomic.LoadInt64(&c.TickCount)
	eventsWritten := atomic.LoadInt64(&c.EventsWritten)

	// Calculate averages
	var tickAvg, eventAvg float64
	if tickCount > 0 {
		tickAvg = float64(atomic.LoadInt64(&c.TickLatencySum)) / float64(tickCount) / 1e6 // ms
	}
	if eventsWritten > 0 {
		eventAvg = float64(atomic.LoadInt64(&c.EventWriteLatSum)) / float64(eventsWritten) / 1e6
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"sessions": map[string]interface{}{
			"started": atomic.LoadInt64(&c.SessionsStarted),
			"active":  atomic.LoadInt64(&c.SessionsActive),
		},

		"simulation": map[string]interface{}{
			"choices":         atomic.LoadInt64(&c.ChoicesActivated),
			"blood_tests":     atomic.LoadInt64(&c.BloodTests),
			"false_negatives": atomic.LoadInt64(&c.FalseNegatives),
			"spreads":         atomic.LoadInt64(&c.Spreads),
			"restarts":        atomic.LoadInt64(&c.Restarts),
			"endings_success": atomic.LoadInt64(&c.EndingsSuccess),
			"endings_failure": atomic.LoadInt64(&c.EndingsFailure),
		},

		"tick": map[string]interface{}{
			"count":          tickCount,
			"avg_latency_ms": tickAvg,
			"max_latency_ms": float64(atomic.LoadInt64(&c.TickLatencyMax)) / 1e6,
			"last_tick":      c.LastTickTime.Format(time.RFC3339),
		},

		"events": map[string]interface{}{
			"written":          eventsWritten,
			"avg_write_lat_ms": eventAvg,
			"max_write_lat_ms": float64(atomic.LoadInt64(&c.EventWriteLatMax)) / 1e6,
			"errors":           atomic.LoadInt64(&c.EventWriteErrors),
		},

		"websocket": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_in":        atomic.LoadInt64(&c.WSMessagesIn),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.HandlerFunc {
	return collector.Handler()
}

// PrometheusHandler returns the global collector in Prometheus text format.
func PrometheusHandler() http.HandlerFunc {
	return collector.PrometheusHandler()
}

// Handler serves this collector's snapshot as JSON.
func (c *Collector) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")

		json.NewEncoder(w).Encode(c.Snapshot())
	}
}

// PrometheusHandler serves this collector in Prometheus text format.
func (c *Collector) PrometheusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		counter := func(name, help string, v int64) {
			fmt.Fprintf(w, "# HELP outpost_%s %s\n", name, help)
			fmt.Fprintf(w, "# TYPE outpost_%s counter\n", name)
			fmt.Fprintf(w, "outpost_%s %d\n\n", name, v)
		}
		gauge := func(name, help string, v int64) {
			fmt.Fprintf(w, "# HELP outpost_%s %s\n", name, help)
			fmt.Fprintf(w, "# TYPE outpost_%s gauge\n", name)
			fmt.Fprintf(w, "outpost_%s %d\n\n", name, v)
		}

		counter("sessions_started", "Total sessions opened", atomic.LoadInt64(&c.SessionsStarted))
		gauge("sessions_active", "Live sessions", atomic.LoadInt64(&c.SessionsActive))

		counter("choices_total", "Total choices activated", atomic.LoadInt64(&c.ChoicesActivated))
		counter("blood_tests_total", "Total blood tests committed", atomic.LoadInt64(&c.BloodTests))
		counter("false_negatives_total", "Total blood tests that lied", atomic.LoadInt64(&c.FalseNegatives))
		counter("spreads_total", "Total secondary infections", atomic.LoadInt64(&c.Spreads))
		counter("restarts_total", "Total simulation restarts", atomic.LoadInt64(&c.Restarts))

		fmt.Fprintf(w, "# HELP outpost_endings_total Endings reached\n")
		fmt.Fprintf(w, "# TYPE outpost_endings_total counter\n")
		fmt.Fprintf(w, "outpost_endings_total{outcome=\"success\"} %d\n", atomic.LoadInt64(&c.EndingsSuccess))
		fmt.Fprintf(w, "outpost_endings_total{outcome=\"failure\"} %d\n\n", atomic.LoadInt64(&c.EndingsFailure))

		counter("tick_count", "Total passive clock passes", atomic.LoadInt64(&c.TickCount))

		fmt.Fprintf(w, "# HELP outpost_tick_latency_max_ms Maximum tick latency\n")
		fmt.Fprintf(w, "# TYPE outpost_tick_latency_max_ms gauge\n")
		fmt.Fprintf(w, "outpost_tick_latency_max_ms %.2f\n\n", float64(atomic.LoadInt64(&c.TickLatencyMax))/1e6)

		counter("events_written", "Total journal events written", atomic.LoadInt64(&c.EventsWritten))
		counter("event_write_errors", "Total journal write errors", atomic.LoadInt64(&c.EventWriteErrors))

		gauge("ws_connections", "Active WebSocket connections", atomic.LoadInt64(&c.WSConnectionsActive))

		fmt.Fprintf(w, "# HELP outpost_ws_messages_total Total WebSocket messages\n")
		fmt.Fprintf(w, "# TYPE outpost_ws_messages_total counter\n")
		fmt.Fprintf(w, "outpost_ws_messages_total{direction=\"in\"} %d\n", atomic.LoadInt64(&c.WSMessagesIn))
		fmt.Fprintf(w, "outpost_ws_messages_total{direction=\"out\"} %d\n", atomic.LoadInt64(&c.WSMessagesOut))
	}
}
