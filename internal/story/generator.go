package story

import (
	"github.com/outpost31/simulator/internal/engine"
	"github.com/outpost31/simulator/internal/platform/locale"
)

const genIntroText = `
GENERATOR CONTROL

OUTPUT FLUCTUATION: MODERATE
HEAT BLEED: LOW
ROUTING TABLE: MODIFIED

SELECT ACTION:
`

const genRoutesText = `
ROUTING TABLE

PRIMARY: HAB-01, LAB, KITCHEN
SECONDARY: KENNEL, STORAGE

ANOMALY:
A NEW ROUTE FEEDS HAB-03 AT 3X NORMAL POWER.

TAG: "MAINTENANCE"
SIGNATURE: INVALID
`

const genLoadTestText = `
LOAD TEST INITIATED

NEEDLE SHAKES.
LIGHTS DIM.
A DISTANT METAL GROAN FROM SOMEWHERE IN THE WALLS.

FOR ONE MOMENT, THE MONITOR SHOWS:
"ADDITIONAL DRAW: UNKNOWN DEVICE"

THEN IT VANISHES.
`

const genLockText = `
ROUTING LOCK ENGAGED

CHANGES REQUIRE TWO-PERSON AUTHORIZATION.

THE SYSTEM ACCEPTS YOUR COMMAND.
A SECOND LATER, IT PROMPTS:

"AUTHORIZATION CONFIRMED."

YOU DID NOT ENTER A SECOND SIGNATURE.
`

func addGeneratorNodes(g *Graph) {
	g.Add(&Node{
		ID:   NodeGenIntro,
		Text: locale.T(genIntroText),
		Choices: []Choice{
			{Label: locale.T("VIEW ROUTING TABLE"), Next: NodeGenRoutes, Effect: addCaution},
			{Label: locale.T("RUN LOAD TEST (RISKY)"), Next: NodeGenLoadTest, Effect: raiseRisk(1)},
			{Label: locale.T("LOCK ROUTING CHANGES"), Next: NodeGenLock, Effect: addCaution},
			{Label: locale.T("RETURN TO CONSOLE"), Next: NodeConsole},
		},
	})

	g.Add(&Node{
		ID:   NodeGenRoutes,
		Text: locale.T(genRoutesText),
		Choices: []Choice{
			{Label: locale.T("LOG UNAUTHORIZED ROUTE"), Next: NodeGenIntro, Effect: func(e *engine.Engine) {
				e.AddNote(engine.NoteGeneratorRerouteHab03)
				e.State().Paranoia++
			}},
		},
	})

	g.Add(&Node{
		ID:   NodeGenLoadTest,
		Text: locale.T(genLoadTestText),
		Choices: []Choice{
			{Label: locale.T("ABORT TEST AND LOG"), Next: NodeGenIntro, Effect: func(e *engine.Engine) {
				e.AddNote(engine.NoteUnknownPowerDraw)
				e.State().Paranoia++
			}},
			{Label: locale.T("IGNORE AND RETURN TO CONSOLE"), Next: NodeConsole, Effect: raiseRisk(1)},
		},
	})

	g.Add(&Node{
		ID:   NodeGenLock,
		Text: locale.T(genLockText),
		Choices: []Choice{
			{Label: locale.T("LOG IMPLICIT AUTHORIZATION"), Next: NodeConsole, Effect: func(e *engine.Engine) {
				e.AddNote(engine.NoteGeneratorLockBypassed)
				e.State().Paranoia++
			}},
		},
	})
}
