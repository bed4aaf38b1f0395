package story

import (
	"strings"

	"github.com/outpost31/simulator/internal/domain/crew"
	"github.com/outpost31/simulator/internal/engine"
	"github.com/outpost31/simulator/internal/platform/locale"
)

const (
	archivedFlavor = "THE LABEL IS OLD. THE PLASTIC IS FROSTED.\nTHE BLOOD MOVES SLOWER THAN IT SHOULD."
	liveFlavor     = "THE ROOM GOES QUIET.\nSOMEONE BREATHES THROUGH THEIR TEETH."
)

// addBloodTestNode registers the test screen for one crew member. Its text
// strategy draws the outcome and leaves it pending; its single choice commits it.
func addBloodTestNode(g *Graph, m crew.Member) {
	id := BloodTestNode(m.ID)
	g.RegisterText(id, func(e *engine.Engine) string {
		return bloodTestText(e, m)
	})

	crewID := m.ID
	g.Add(&Node{
		ID:           id,
		TextStrategy: id,
		Choices: []Choice{
			{Label: locale.T("RETURN TO BLOOD TEST CONSOLE"), Next: NodeLabMenu, Effect: func(e *engine.Engine) {
				e.Infection().ApplyPendingBloodOutcome(e.State(), crewID)
			}},
		},
	})
}

func bloodTestText(e *engine.Engine, m crew.Member) string {
	header := locale.T("LIVE SAMPLE DRAW — %s", m.Name)
	flavor := locale.T(liveFlavor)
	if m.IsArchived() {
		header = locale.T("ARCHIVED SAMPLE DRAW — %s", m.Name)
		flavor = locale.T(archivedFlavor)
	}

	outcome := e.Infection().ComputeAndStoreBloodOutcome(e.State(), m.ID)

	lines := []string{
		locale.T("HOT WIRE ENGAGED."),
		"",
		header,
		flavor,
		"",
		locale.T("CONTACT CONFIRMED."),
	}

	if outcome.Reported == engine.ResultInfected {
		lines = append(lines,
			locale.T("THE SAMPLE *RECOILS*."),
			"",
			locale.T("RESULT: VIOLENT REACTION."),
			locale.T("ACTIVE INFECTION CONFIRMED."),
		)
		return strings.Join(lines, "\n")
	}

	lines = append(lines,
		locale.T("THE SAMPLE SIZZLES, THEN LIES STILL."),
		"",
		locale.T("RESULT: NO REACTION."),
		locale.T("LOGGED: HUMAN"),
	)
	if outcome.TrulyInfected && outcome.Lied {
		lines = append(lines, locale.T("NOTE: READOUT FEELS... DELAYED."))
	}
	return strings.Join(lines, "\n")
}
