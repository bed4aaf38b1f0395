package engine

import (
	"github.com/outpost31/simulator/internal/domain/rules"
	"github.com/outpost31/simulator/internal/events"
	"github.com/outpost31/simulator/internal/platform/logger"
)

// Engine owns one playthrough: its state, its journal and its random source.
// It is not safe for concurrent use; the session serialises access.
type Engine struct {
	state   *State
	journal *events.Journal
	logger  *logger.Logger
	rng     Random

	infection *InfectionSystem
}

// NewEngine seeds a fresh playthrough at the given difficulty.
func NewEngine(journal *events.Journal, log *logger.Logger, rng Random, difficulty rules.Difficulty) *Engine {
	e := &Engine{
		state:     NewState(difficulty),
		journal:   journal,
		logger:    log,
		rng:       rng,
		infection: NewInfectionSystem(journal, log, rng),
	}
	e.infection.Initialize(e.state)
	e.journal.Log(events.ActorStation, "SYSTEM READY. SIMULATION ONLINE.")
	e.logger.Info("Engine online for session " + journal.SessionID())
	return e
}

// State exposes the live state. Mutate it only from choice effects.
func (e *Engine) State() *State {
	return e.state
}

// Infection exposes the infection model for choice effects.
func (e *Engine) Infection() *InfectionSystem {
	return e.infection
}

// Journal returns the session journal.
func (e *Engine) Journal() *events.Journal {
	return e.journal
}

// Rand returns the session random source.
func (e *Engine) Rand() Random {
	return e.rng
}

// AddNote records an operator note. Duplicates are ignored.
func (e *Engine) AddNote(note string) bool {
	return recordNote(e.state, e.journal, events.ActorOperator, note)
}

// Log writes a status line to the journal.
func (e *Engine) Log(message string) {
	e.journal.Log(events.ActorOperator, message)
}

// LastLogLine returns the latest status line.
func (e *Engine) LastLogLine() string {
	return e.journal.LastLogLine()
}

// RaiseRisk adds delta to the infection risk and runs the spread check.
// Every risk increase goes through here.
func (e *Engine) RaiseRisk(delta int) bool {
	e.state.InfectionRisk += delta
	return e.infection.MaybeTriggerSpread(e.state)
}

// SetDifficulty changes the evidence threshold for this and later playthroughs.
func (e *Engine) SetDifficulty(d rules.Difficulty) {
	if e.state.Difficulty == d {
		return
	}
	prev := e.state.Difficulty
	e.state.Difficulty = d
	e.journal.Append(events.GameEvent{
		Type:    events.EventTypeDifficultyChanged,
		ActorID: events.ActorOperator,
		Payload: map[string]string{"from": string(prev), "to": string(d)},
	})
}

// Reset starts a new playthrough in place. Difficulty survives.
func (e *Engine) Reset() {
	e.state.Reset()
	e.infection.Initialize(e.state)
	e.journal.Append(events.GameEvent{
		Type:    events.EventTypeRestart,
		ActorID: events.ActorStation,
	})
	e.journal.Log(events.ActorStation, "SIMULATION RESET.")
	e.logger.Event("RESTART", events.ActorStation, "session:"+e.journal.SessionID())
}

// TickPassiveRisk is the clock's contribution: one point of risk and a spread check.
func (e *Engine) TickPassiveRisk() {
	e.journal.Append(events.GameEvent{
		Type:    events.EventTypePassiveTick,
		ActorID: events.ActorClock,
	})
	e.RaiseRisk(1)
	e.journal.Log(events.ActorClock, "TIME ELAPSED: RISK INCREASED.")
}
