// Package session is the boundary every host talks to. A Session owns one
// playthrough and serialises the two things that mutate it: choice
// activation and the passive risk clock.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/outpost31/simulator/internal/domain/rules"
	"github.com/outpost31/simulator/internal/engine"
	"github.com/outpost31/simulator/internal/events"
	"github.com/outpost31/simulator/internal/platform/logger"
	"github.com/outpost31/simulator/internal/story"
)

// Preferences persists the difficulty between runs.
type Preferences interface {
	SaveDifficulty(ctx context.Context, d rules.Difficulty) error
}

// Deps are the collaborators shared by every session.
type Deps struct {
	Graph  *story.Graph
	Log    *logger.Logger
	Random engine.Random
	// Preferences is optional; without it difficulty changes live in memory only.
	Preferences Preferences
	// Now is optional; it defaults to time.Now.
	Now func() time.Time
}

// Session is one operator's playthrough.
type Session struct {
	mu sync.Mutex

	graph  *story.Graph
	engine *engine.Engine
	logger *logger.Logger
	prefs  Preferences
	now    func() time.Time

	current string
	view    story.View
}

// New starts a playthrough on the intro node.
func New(journal *events.Journal, deps Deps, difficulty rules.Difficulty) (*Session, error) {
	rng := deps.Random
	if rng == nil {
		rng = engine.NewRandom()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	s := &Session{
		graph:  deps.Graph,
		engine: engine.NewEngine(journal, deps.Log, rng, difficulty),
		logger: deps.Log,
		prefs:  deps.Preferences,
		now:    now,
	}
	if err := s.navigate(story.NodeIntro); err != nil {
		return nil, err
	}
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.engine.Journal().SessionID()
}

// Current returns the view of the node the operator is on.
func (s *Session) Current() story.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Render computes the view of nodeID against the live state without moving
// the operator there. Rendering a blood-test screen redraws its pending outcome.
func (s *Session) Render(nodeID string) (story.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	view, _, err := s.graph.Render(nodeID, s.engine)
	return view, err
}

// Refresh re-renders the current node, picking up state changed by the clock.
func (s *Session) Refresh() (story.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.navigate(s.current); err != nil {
		return story.View{}, err
	}
	return s.view, nil
}

// ActivateChoice runs choice index of the current node and moves to its target.
// An index outside the current list is ignored and the current view returned.
//
// The choice list is rebuilt here rather than reused from the last render, so
// a verdict fixed at generation reads the same state as the ending it routes to.
func (s *Session) ActivateChoice(index int) (story.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, err := s.graph.Node(s.current)
	if err != nil {
		return s.view, err
	}
	choices, err := s.graph.ChoicesFor(node, s.engine)
	if err != nil {
		return s.view, err
	}
	if index < 0 || index >= len(choices) {
		return s.view, nil
	}
	choice := choices[index]

	s.engine.Journal().Append(events.GameEvent{
		Type:    events.EventTypeChoice,
		ActorID: events.ActorOperator,
		Payload: events.ChoicePayload{
			FromNode: node.ID,
			Index:    index,
			Label:    choice.Label,
			ToNode:   choice.Next,
		},
	})

	if choice.Effect != nil {
		choice.Effect(s.engine)
	}
	if node.Ending && choice.Next == story.RestartNode {
		s.engine.Reset()
	}

	if err := s.navigate(choice.Next); err != nil {
		return s.view, err
	}

	if s.view.Ending {
		s.engine.Journal().Append(events.GameEvent{
			Type:    events.EventTypeEnding,
			ActorID: events.ActorStation,
			Payload: events.EndingPayload{
				Node:    s.view.NodeID,
				Success: s.view.NodeID == story.NodeEndingSuccess,
			},
		})
		s.logger.Event("ENDING", events.ActorStation, s.ID()+" -> "+s.view.NodeID)
	}
	return s.view, nil
}

// navigate renders id and makes it current. Caller holds mu.
func (s *Session) navigate(id string) error {
	view, _, err := s.graph.Render(id, s.engine)
	if err != nil {
		return err
	}
	s.current = id
	s.view = view
	return nil
}

// Meters returns the HUD snapshot.
func (s *Session) Meters() engine.MeterSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.State().Meters(s.now())
}

// TickPassiveRisk applies one beat of the passive clock.
func (s *Session) TickPassiveRisk() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.TickPassiveRisk()
}

// LastLogLine returns the latest status line.
func (s *Session) LastLogLine() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.LastLogLine()
}

// Difficulty returns the active difficulty.
func (s *Session) Difficulty() rules.Difficulty {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.State().Difficulty
}

// SetDifficulty changes the difficulty and persists it. A storage failure is
// logged and the in-memory value kept.
func (s *Session) SetDifficulty(ctx context.Context, d rules.Difficulty) rules.Difficulty {
	s.mu.Lock()
	s.engine.SetDifficulty(d)
	s.mu.Unlock()

	if s.prefs != nil {
		if err := s.prefs.SaveDifficulty(ctx, d); err != nil {
			s.logger.Warnf("difficulty not persisted for %s: %v", s.ID(), err)
		}
	}
	return d
}

// CycleDifficulty steps the difficulty dir positions with wrap-around.
func (s *Session) CycleDifficulty(ctx context.Context, dir int) rules.Difficulty {
	return s.SetDifficulty(ctx, s.Difficulty().Cycle(dir))
}

// Inspect runs fn with the live state under the session lock. fn must not
// retain the pointer.
func (s *Session) Inspect(fn func(st *engine.State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.engine.State())
}
