package story

import (
	"errors"
	"fmt"
	"strings"

	"github.com/outpost31/simulator/internal/engine"
)

// RestartNode is where an ending's restart choice leads. Routing there from
// an ending resets the playthrough.
const RestartNode = NodeIntro

// Graph is the static node table plus its named strategies.
type Graph struct {
	nodes   map[string]*Node
	order   []string
	texts   map[string]TextFunc
	choices map[string]ChoicesFunc
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:   make(map[string]*Node),
		texts:   make(map[string]TextFunc),
		choices: make(map[string]ChoicesFunc),
	}
}

// Station builds and validates the Outpost 31 node table.
func Station() (*Graph, error) {
	g := NewGraph()
	addConsoleNodes(g)
	addKennelNodes(g)
	addLabNodes(g)
	addPlaybackNodes(g)
	addGeneratorNodes(g)
	addChessNodes(g)
	addAssessmentNodes(g)

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Add registers a node. A later node with the same id replaces the earlier one.
func (g *Graph) Add(n *Node) {
	if _, exists := g.nodes[n.ID]; !exists {
		g.order = append(g.order, n.ID)
	}
	g.nodes[n.ID] = n
}

// RegisterText names a text strategy.
func (g *Graph) RegisterText(name string, fn TextFunc) {
	g.texts[name] = fn
}

// RegisterChoices names a choice strategy.
func (g *Graph) RegisterChoices(name string, fn ChoicesFunc) {
	g.choices[name] = fn
}

// Node looks up a node by id.
func (g *Graph) Node(id string) (*Node, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNode, id)
	}
	return n, nil
}

// IDs returns every node id in registration order.
func (g *Graph) IDs() []string {
	return append([]string(nil), g.order...)
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Validate checks every reference in the table. It reports all problems at once.
func (g *Graph) Validate() error {
	var errs []error
	if _, ok := g.nodes[RestartNode]; !ok {
		errs = append(errs, fmt.Errorf("%w: restart node %q", ErrUnknownNode, RestartNode))
	}

	for _, id := range g.order {
		n := g.nodes[id]

		switch {
		case n.TextStrategy != "" && n.Text != "":
			errs = append(errs, fmt.Errorf("story: node %q has both constant and computed text", id))
		case n.TextStrategy != "":
			if _, ok := g.texts[n.TextStrategy]; !ok {
				errs = append(errs, fmt.Errorf("%w: node %q text %q", ErrUnknownStrategy, id, n.TextStrategy))
			}
		case n.Text == "":
			errs = append(errs, fmt.Errorf("story: node %q has no text", id))
		}

		if n.ChoiceStrategy != "" {
			if _, ok := g.choices[n.ChoiceStrategy]; !ok {
				errs = append(errs, fmt.Errorf("%w: node %q choices %q", ErrUnknownStrategy, id, n.ChoiceStrategy))
			}
			if len(n.Choices) > 0 {
				errs = append(errs, fmt.Errorf("story: node %q has both constant and computed choices", id))
			}
			if len(n.Exits) == 0 {
				errs = append(errs, fmt.Errorf("story: node %q computes choices but declares no exits", id))
			}
		} else if len(n.Choices) == 0 {
			errs = append(errs, fmt.Errorf("story: node %q offers no choices", id))
		}

		for _, c := range n.Choices {
			if _, ok := g.nodes[c.Next]; !ok {
				errs = append(errs, fmt.Errorf("%w: %q -> %q (%s)", ErrUnknownNode, id, c.Next, c.Label))
			}
		}
		for _, next := range n.Exits {
			if _, ok := g.nodes[next]; !ok {
				errs = append(errs, fmt.Errorf("%w: %q exit %q", ErrUnknownNode, id, next))
			}
		}

		if n.Ending && (n.ChoiceStrategy != "" || len(n.Choices) != 1 || n.Choices[0].Next != RestartNode) {
			errs = append(errs, fmt.Errorf("story: ending %q must offer exactly one restart choice", id))
		}
	}
	return errors.Join(errs...)
}

// Text renders a node's prose, trimmed of surrounding blank lines.
func (g *Graph) Text(n *Node, e *engine.Engine) (string, error) {
	if n.TextStrategy == "" {
		return strings.TrimSpace(n.Text), nil
	}
	fn, ok := g.texts[n.TextStrategy]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, n.TextStrategy)
	}
	return strings.TrimSpace(fn(e)), nil
}

// ChoicesFor builds a node's choice list against the current playthrough.
func (g *Graph) ChoicesFor(n *Node, e *engine.Engine) ([]Choice, error) {
	if n.ChoiceStrategy == "" {
		return n.Choices, nil
	}
	fn, ok := g.choices[n.ChoiceStrategy]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, n.ChoiceStrategy)
	}
	return fn(e), nil
}

// Render produces the view of node id together with its live choices.
func (g *Graph) Render(id string, e *engine.Engine) (View, []Choice, error) {
	n, err := g.Node(id)
	if err != nil {
		return View{}, nil, err
	}
	text, err := g.Text(n, e)
	if err != nil {
		return View{}, nil, err
	}
	choices, err := g.ChoicesFor(n, e)
	if err != nil {
		return View{}, nil, err
	}
	return viewOf(n, text, choices), choices, nil
}
