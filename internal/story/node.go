// Package story holds the station's node table: every screen the operator can
// reach, what it says, and which choices it offers.
//
// Nodes are data. Computed text and choice lists are named strategies
// registered on the Graph, so a node can be inspected without rendering it.
// Choice effects are the only code allowed to mutate engine state; text and
// choice strategies must be read-only, with one exception: the blood-test
// screens compute (and store) the pending outcome as they render.
package story

import (
	"errors"

	"github.com/outpost31/simulator/internal/engine"
)

var (
	// ErrUnknownNode means a node id, or a choice's Next, does not resolve.
	ErrUnknownNode = errors.New("story: unknown node")
	// ErrUnknownStrategy means a node names a text or choice strategy that is not registered.
	ErrUnknownStrategy = errors.New("story: unknown strategy")
)

// Effect mutates the playthrough when a choice is activated.
type Effect func(e *engine.Engine)

// TextFunc renders a node's prose against the current playthrough.
type TextFunc func(e *engine.Engine) string

// ChoicesFunc builds a node's choice list against the current playthrough.
type ChoicesFunc func(e *engine.Engine) []Choice

// Choice is one selectable option on a node.
type Choice struct {
	Label  string
	Next   string
	Effect Effect
}

// Trophy describes a downloadable artifact offered on a node.
type Trophy struct {
	Title    string `json:"title"`
	Href     string `json:"href"`
	Filename string `json:"filename"`
}

// Node is one screen. Exactly one of Text / TextStrategy is used, and exactly
// one of Choices / ChoiceStrategy.
type Node struct {
	ID string

	Text         string
	TextStrategy string

	Choices        []Choice
	ChoiceStrategy string
	// Exits lists every node a ChoiceStrategy can route to. Validated at startup.
	Exits []string

	Trophy *Trophy
	Ending bool
}

// Computed reports whether the node renders through registered strategies.
func (n *Node) Computed() bool {
	return n.TextStrategy != "" || n.ChoiceStrategy != ""
}

// ChoiceView is the presentation-safe part of a choice.
type ChoiceView struct {
	Label string `json:"label"`
}

// View is what a host displays for the current node.
type View struct {
	NodeID  string       `json:"node_id"`
	Text    string       `json:"text"`
	Choices []ChoiceView `json:"choices"`
	Trophy  *Trophy      `json:"trophy,omitempty"`
	Ending  bool         `json:"ending"`
}

func viewOf(n *Node, text string, choices []Choice) View {
	v := View{
		NodeID:  n.ID,
		Text:    text,
		Choices: make([]ChoiceView, len(choices)),
		Ending:  n.Ending,
	}
	for i, c := range choices {
		v.Choices[i] = ChoiceView{Label: c.Label}
	}
	if n.Trophy != nil {
		t := *n.Trophy
		v.Trophy = &t
	}
	return v
}
