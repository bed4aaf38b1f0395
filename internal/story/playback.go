package story

import (
	"strings"

	"github.com/outpost31/simulator/internal/engine"
	"github.com/outpost31/simulator/internal/platform/locale"
)

const logsIntroText = `
SECURITY PLAYBACK — INCIDENT TIMELINE

SOURCE: INTERNAL CAMERAS + HALLWAY SENSORS
STATUS: DEGRADED / DROPPED FRAMES

YOU ARE NOT READING A LOG.
YOU ARE SCRUBBING THROUGH CORRUPTED FOOTAGE.

SELECT A PLAYBACK QUERY:
`

// logsRecentText takes the subject name four times.
const logsRecentText = `
PLAYBACK: LAST 4 HOURS (FAST SCRUB)

TIME CODE STUTTERS.
FRAMES SKIP.
AUDIO IS GONE.

00:41 — CAM: HALL-2
%[1]s AT SUPPLY LOCKER. MOUTH MOVES (NO AUDIO).

00:49 — SENSOR: GEN-LOAD
POWER SPIKE. CAMERA WHITE-OUT FOR 2 SECONDS.

00:52 — CAM: MESS
%[1]s ENTERS FRAME.

00:53 — CAM: STORAGE
%[1]s ENTERS FRAME. (NO TRANSITION SHOWN.)

00:54 — CAM: HAB-03
%[1]s ENTERS FRAME.
(CAMERA FEED WAS OFFLINE 00:52–00:54.)

NOTE:
ONE PERSON CANNOT BE IN THREE PLACES
WITHIN TWO MINUTES.

THE SYSTEM STITCHES THIS TOGETHER
LIKE IT WAS NORMAL.
IT IS NOT NORMAL.
`

const logsHab03Text = `
FILTER: HAB-03

CAM: HAB-03 DOOR
TIME: 00:XX (CORRUPTED)

THE DOOR OPENS FROM INSIDE.
NO ENTRY EVENT RECORDED.

THERMAL OVERLAY CUTS IN:
A HUMAN SHAPE — BUT THE HEAT SIGNATURE IS WRONG.
LIKE SOMEONE DRAWN IN BLUE INK.

THE SYSTEM TAGS THE CLIP:
"NON-URGENT — SENSOR DRIFT."
`

const logsKennelText = `
FILTER: KENNEL

CAM: KEN-1
FEED DROPS FOR 17 SECONDS.
AUTO-RESTORE ENGAGED.

THE MISSING FRAMES ARE NOT BLACK.
THEY ARE MARKED: "EMPTY."

WHEN THE FEED RETURNS,
THE DOGS ARE IN DIFFERENT POSITIONS.
NO MOTION IS SHOWN IN BETWEEN.

THE SYSTEM INSISTS:
"NO CAUSE FOUND."
`

func addPlaybackNodes(g *Graph) {
	g.RegisterText("logs_recent", logsRecent)

	g.Add(&Node{
		ID:   NodeLogsIntro,
		Text: locale.T(logsIntroText),
		Choices: []Choice{
			{Label: locale.T("PLAYBACK: LAST 4 HOURS (FAST SCRUB)"), Next: NodeLogsRecent, Effect: addCaution},
			{Label: locale.T("FILTER FEED: HAB-03"), Next: NodeLogsHab03, Effect: addCaution},
			{Label: locale.T("FILTER FEED: KENNEL"), Next: NodeLogsKennel, Effect: addCaution},
			{Label: locale.T("RETURN TO CONSOLE"), Next: NodeConsole},
		},
	})

	// The subject is drawn on every render, so this screen is not render-idempotent.
	g.Add(&Node{
		ID:           NodeLogsRecent,
		TextStrategy: "logs_recent",
		Choices: []Choice{
			{Label: locale.T("FLAG TIMELINE CONTRADICTION"), Next: NodeLogsIntro, Effect: func(e *engine.Engine) {
				e.AddNote(engine.NoteCrewMovementContradiction)
				e.State().Paranoia++
			}},
		},
	})

	g.Add(&Node{
		ID:   NodeLogsHab03,
		Text: locale.T(logsHab03Text),
		Choices: []Choice{
			{Label: locale.T("FLAG HAB-03 FEED AS ANOMALOUS"), Next: NodeLogsIntro, Effect: func(e *engine.Engine) {
				e.AddNote(engine.NoteHab03Anomaly)
				e.State().Caution++
			}},
		},
	})

	g.Add(&Node{
		ID:   NodeLogsKennel,
		Text: locale.T(logsKennelText),
		Choices: []Choice{
			{Label: locale.T("FLAG KENNEL FEED DROP"), Next: NodeLogsIntro, Effect: func(e *engine.Engine) {
				e.AddNote(engine.NoteKennelFeedDrop)
				e.State().Paranoia++
			}},
		},
	})
}

func logsRecent(e *engine.Engine) string {
	subject := e.Infection().PlaybackSubject(e.State())
	return strings.TrimSpace(locale.T(logsRecentText, subject.Name))
}
