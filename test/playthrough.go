// Package test holds the scripted playthrough suite run by cmd/test-runner.
// Each scenario drives a real session through the station node table with a
// scripted random source and checks where the operator ends up.
package test

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/outpost31/simulator/internal/domain/rules"
	"github.com/outpost31/simulator/internal/engine"
	"github.com/outpost31/simulator/internal/events"
	"github.com/outpost31/simulator/internal/platform/logger"
	"github.com/outpost31/simulator/internal/session"
	"github.com/outpost31/simulator/internal/story"
)

// Step sentinels. Any other value is a choice index.
const (
	// Last picks the final entry of the current choice list.
	Last = -1
	// Tick fires one passive risk beat instead of choosing.
	Tick = -2
)

// Scenario is one scripted run.
type Scenario struct {
	Name       string
	Difficulty rules.Difficulty
	// Ints scripts the random source (index of the infected crew member first).
	Ints         []int
	Floats       []float64
	Steps        []int
	ExpectedNode string
	ExpectedText string
	// ExpectEnding requires exactly one ENDING entry in the journal.
	ExpectEnding bool
}

// TestResult captures the outcome of each scenario.
type TestResult struct {
	ScenarioName string
	ExpectedNode string
	ActualNode   string
	Steps        int
	Passed       bool
	Reason       string
}

// successRoute reaches the final assessment holding a kennel anomaly and a
// flagged sample on garry.
var successRoute = []int{0, 0, 0, 0, 1, 0, 1, 0, 9, 3, 5}

// Scenarios is the default suite.
func Scenarios() []Scenario {
	withTicks := append(append([]int{}, successRoute...), Tick, Tick, Tick, 0)
	return []Scenario{
		{
			Name:         "Containment with confirmed sample",
			Difficulty:   rules.DifficultyNormal,
			Ints:         []int{1},
			Steps:        append(append([]int{}, successRoute...), 0),
			ExpectedNode: story.NodeEndingSuccess,
			ExpectedText: "CONTAINMENT SUCCESSFUL",
			ExpectEnding: true,
		},
		{
			Name:         "Impatient operator",
			Difficulty:   rules.DifficultyEasy,
			Steps:        []int{0, Last, 0},
			ExpectedNode: story.NodeEndingFailure,
			ExpectedText: "INFECTION CONFIRMED PRIOR TO ACTION: NO",
			ExpectEnding: true,
		},
		{
			Name:         "Clock overrun before verdict",
			Difficulty:   rules.DifficultyNormal,
			Ints:         []int{1},
			Steps:        withTicks,
			ExpectedNode: story.NodeEndingFailure,
			ExpectedText: "RISK INDEX AT TERMINATION: 3",
			ExpectEnding: true,
		},
		{
			Name:         "Restart after failure",
			Difficulty:   rules.DifficultyHard,
			Steps:        []int{0, Last, 0, 0},
			ExpectedNode: story.NodeIntro,
			ExpectedText: "OPEN STATION CONSOLE",
			ExpectEnding: true,
		},
	}
}

// Suite runs scenarios against the station node table.
type Suite struct {
	graph   *story.Graph
	logger  *logger.Logger
	results []TestResult
}

// NewSuite builds the harness. Session chatter goes to out.
func NewSuite(out io.Writer) (*Suite, error) {
	g, err := story.Station()
	if err != nil {
		return nil, err
	}
	return &Suite{graph: g, logger: logger.NewLoggerTo(out)}, nil
}

// Run plays every scenario and records its result.
func (s *Suite) Run(ctx context.Context, scenarios []Scenario) {
	for _, sc := range scenarios {
		if ctx.Err() != nil {
			return
		}
		s.results = append(s.results, s.play(sc))
	}
}

func (s *Suite) play(sc Scenario) TestResult {
	res := TestResult{ScenarioName: sc.Name, ExpectedNode: sc.ExpectedNode}

	eventLog := events.NewEventLog(nil)
	sess, err := session.New(eventLog.For(sc.Name), session.Deps{
		Graph:  s.graph,
		Log:    s.logger,
		Random: engine.NewScriptedRandom(sc.Floats, sc.Ints),
	}, sc.Difficulty)
	if err != nil {
		res.Reason = "session: " + err.Error()
		return res
	}

	view := sess.Current()
	for _, step := range sc.Steps {
		switch step {
		case Tick:
			sess.TickPassiveRisk()
			continue
		case Last:
			step = len(view.Choices) - 1
		}
		if view, err = sess.ActivateChoice(step); err != nil {
			res.Reason = fmt.Sprintf("step %d: %v", res.Steps, err)
			return res
		}
		res.Steps++
	}
	res.ActualNode = view.NodeID

	rendered := view.Text
	for _, c := range view.Choices {
		rendered += "\n" + c.Label
	}
	endings := len(eventLog.GetByType(sc.Name, events.EventTypeEnding))

	switch {
	case view.NodeID != sc.ExpectedNode:
		res.Reason = "landed on " + view.NodeID
	case sc.ExpectedText != "" && !strings.Contains(rendered, sc.ExpectedText):
		res.Reason = fmt.Sprintf("screen lacks %q", sc.ExpectedText)
	case sc.ExpectEnding && endings != 1:
		res.Reason = fmt.Sprintf("journal holds %d endings", endings)
	default:
		res.Passed = true
		res.Reason = "reached " + view.NodeID
	}
	return res
}

// GetResults returns all results so far.
func (s *Suite) GetResults() []TestResult {
	return s.results
}
