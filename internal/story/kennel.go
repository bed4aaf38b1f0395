package story

import (
	"github.com/outpost31/simulator/internal/engine"
	"github.com/outpost31/simulator/internal/platform/locale"
)

const kennelIntroText = `
KENNEL FEED: LIVE

THE DOGS ARE RESTLESS.
ONE ANIMAL STANDS PERFECTLY STILL, FACING THE WALL.

THERMAL: SLIGHTLY ELEVATED.
BEHAVIORAL: ABNORMAL.

SELECT ACTION:
`

const kennelWatchText = `
YOU WATCH.

THE PACK SHIFTS AND WHINES.
THE STILL DOG DOES NOT MOVE.

THE CAMERA DROPS TWO FRAMES.
WHEN IT RETURNS, THE DOG'S HEAD IS TURNED.

NO MOTION IS SHOWN.
ONLY THE RESULT.

THE SYSTEM LABELS THIS:
"COMPRESSION ARTIFACT."
`

const kennelTestText = `
TEST: PROVOCATION (NOISE + LIGHT)

THE PACK REACTS IMMEDIATELY.
THE STILL DOG DOES NOT FLINCH.

THEN—A DELAYED HEAD TURN.
TOO SMOOTH. TOO LATE.

RESULT: ANOMALY CONFIRMED.
`

func addKennelNodes(g *Graph) {
	g.Add(&Node{
		ID:   NodeKennelIntro,
		Text: locale.T(kennelIntroText),
		Choices: []Choice{
			{Label: locale.T("RUN BEHAVIORAL PROVOCATION TEST (NOISE + LIGHT)"), Next: NodeKennelTest, Effect: func(e *engine.Engine) {
				e.State().Caution++
				e.AddNote(engine.NoteFlaggedDogBehavior)
			}},
			{Label: locale.T("WATCH SILENTLY (60 SECONDS)"), Next: NodeKennelWatch, Effect: raiseRisk(1)},
			{Label: locale.T("MARK KENNEL STABLE AND RETURN"), Next: NodeConsole, Effect: raiseRisk(1)},
		},
	})

	g.Add(&Node{
		ID:   NodeKennelWatch,
		Text: locale.T(kennelWatchText),
		Choices: []Choice{
			{Label: locale.T("FLAG FEED DROP AND RETURN"), Next: NodeConsole, Effect: func(e *engine.Engine) {
				e.AddNote(engine.NoteKennelFeedDrop)
				e.State().Paranoia++
			}},
		},
	})

	g.Add(&Node{
		ID:   NodeKennelTest,
		Text: locale.T(kennelTestText),
		Choices: []Choice{
			{Label: locale.T("LOG ANOMALY AND RETURN TO CONSOLE"), Next: NodeConsole, Effect: func(e *engine.Engine) {
				e.State().Paranoia++
				e.AddNote(engine.NoteKennelProvocationFailed)
			}},
			{Label: locale.T("ISOLATE KENNEL POWER + LOCK FEED"), Next: NodeConsole, Effect: func(e *engine.Engine) {
				s := e.State()
				s.Caution++
				e.AddNote(noteKennelIsolated)
				s.InfectionRisk = max(0, s.InfectionRisk-1)
			}},
		},
	})
}
