package engine

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/outpost31/simulator/internal/platform/logger"
)

// DefaultPassiveTick is the real-time cadence of the passive risk tick.
const DefaultPassiveTick = 5 * time.Minute

// Ticker drives the passive risk clock. It knows nothing about sessions:
// each beat simply calls onTick, which is expected to serialise with choices.
type Ticker struct {
	interval time.Duration
	onTick   func()
	logger   *logger.Logger

	ticks    atomic.Int64
	stopOnce sync.Once
	stopChan chan struct{}
}

// NewTicker creates a ticker firing onTick every interval.
// A non-positive interval falls back to DefaultPassiveTick.
func NewTicker(interval time.Duration, log *logger.Logger, onTick func()) *Ticker {
	if interval <= 0 {
		interval = DefaultPassiveTick
	}
	return &Ticker{
		interval: interval,
		onTick:   onTick,
		logger:   log,
		stopChan: make(chan struct{}),
	}
}

// Start runs the clock until ctx is done or Stop is called. Call in a goroutine.
func (t *Ticker) Start(ctx context.Context) {
	t.logger.Infof("Passive risk clock started (every %s).", t.interval)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("Passive risk clock stopped by context.")
			return
		case <-t.stopChan:
			t.logger.Info("Passive risk clock stopped manually.")
			return
		case <-ticker.C:
			t.tick()
		}
	}
}

// Stop halts the clock. Safe to call more than once.
func (t *Ticker) Stop() {
	t.stopOnce.Do(func() { close(t.stopChan) })
}

// Interval returns the configured cadence.
func (t *Ticker) Interval() time.Duration {
	return t.interval
}

// TickCount returns how many beats have fired.
func (t *Ticker) TickCount() int64 {
	return t.ticks.Load()
}

func (t *Ticker) tick() {
	n := t.ticks.Add(1)
	if t.onTick != nil {
		t.onTick()
	}
	t.logger.Event("PASSIVE_TICK", "SYSTEM_CLOCK", "beat:"+strconv.FormatInt(n, 10))
}
