package story

import (
	"strings"

	"github.com/outpost31/simulator/internal/engine"
	"github.com/outpost31/simulator/internal/platform/locale"
)

const introText = `
U.S. OUTPOST 31 PREDICTIVE MODEL v2.3

STATUS: STORM-LOCK
VISIBILITY: NEAR ZERO

ALERT: ANOMALY SIGNATURE DETECTED IN HAB-03.
BEGIN CONTAMINATION ASSESSMENT.

OPERATOR: YOU
`

const drunkShackText = `
YOU LEAVE THE CONSOLE.

THE HALLWAY IS LONGER THAN IT SHOULD BE.
THE WIND PUSHES AGAINST THE WALLS LIKE IT WANTS IN.

YOUR SHACK IS COLD.
THE BOTTLE IS WARMER THAN YOUR HANDS.

ONE DRINK BECOMES THREE.
THE RADIO HISS SOUNDS LIKE SOMEONE BREATHING.

YOU DO NOT PROVE ANYTHING.
YOU DO NOT SAVE ANYONE.

BUT FOR A LITTLE WHILE,
YOU ARE NOT THINKING.
`

func addConsoleNodes(g *Graph) {
	g.RegisterText("console", consoleText)
	g.RegisterChoices("console", consoleChoices)

	g.Add(&Node{
		ID:   NodeIntro,
		Text: locale.T(introText),
		Choices: []Choice{
			{Label: locale.T("OPEN STATION CONSOLE"), Next: NodeConsole, Effect: func(e *engine.Engine) {
				e.State().Caution++
			}},
		},
	})

	g.Add(&Node{
		ID:             NodeConsole,
		TextStrategy:   "console",
		ChoiceStrategy: "console",
		Exits: []string{
			NodeKennelIntro, NodeLabIntro, NodeLogsIntro, NodeGenIntro,
			NodeChessIntro, NodeChessOffline, NodeDrunkShack, NodeFinalAssessment,
		},
	})

	// A detour, not an ending: its trophy stays available however the run concludes.
	g.Add(&Node{
		ID:   NodeDrunkShack,
		Text: locale.T(drunkShackText),
		Choices: []Choice{
			{Label: locale.T("STUMBLE BACK TO THE CONSOLE"), Next: NodeConsole, Effect: func(e *engine.Engine) {
				s := e.State()
				e.AddNote(noteWentToShack)
				s.InfectionRisk++
				s.Caution = max(0, s.Caution-1)
				e.Infection().MaybeTriggerSpread(s)
				e.Log("OPERATOR LEFT CONSOLE. STATUS: IMPAIRED.")
			}},
		},
		Trophy: &Trophy{
			Title:    locale.T("FILE GENERATED: LIQUID COURAGE (UNOFFICIAL)."),
			Href:     "assets/drunk-trophy.png",
			Filename: "outpost31-liquid-courage.png",
		},
	})
}

// rigorLine is shared by the console and the final assessment.
func rigorLine(s *engine.State) string {
	return locale.T("RIGOR: %s  |  STRONG EVIDENCE REQUIRED: %d/3",
		rigorLabel(s.Difficulty), engine.RequiredEvidenceCount(s))
}

func consoleText(e *engine.Engine) string {
	s := e.State()
	lines := []string{
		locale.T("STATION CONSOLE — CORE SYSTEMS ONLINE") + "\n",
		rigorLine(s),
		locale.T("CAUTION: %d   PARANOIA: %d   RISK: %d", s.Caution, s.Paranoia, s.InfectionRisk) + "\n",
	}

	if m, ok := engine.ConfirmedIdentity(s); ok {
		lines = append(lines, locale.T("INFECTED SAMPLE (CONFIRMED): %s", m.Name)+"\n")
	}

	if notes := s.Notes(); len(notes) > 0 {
		lines = append(lines, locale.T("RECORDED ANOMALIES:"))
		for _, n := range notes {
			lines = append(lines, strings.ToUpper("- "+engine.HumanizeNote(n)))
		}
		lines = append(lines, "")
	}

	lines = append(lines, locale.T("SELECT A SUBSYSTEM:"))
	return strings.Join(lines, "\n")
}

func consoleChoices(e *engine.Engine) []Choice {
	s := e.State()
	out := []Choice{
		{Label: locale.T("KENNEL — CAMERA FEED + BEHAVIORAL TEST"), Next: NodeKennelIntro},
		{Label: locale.T("LAB — DIAGNOSTICS"), Next: NodeLabIntro},
		{Label: locale.T("SECURITY PLAYBACK — INCIDENT TIMELINE"), Next: NodeLogsIntro},
		{Label: locale.T("GENERATOR — POWER STABILITY"), Next: NodeGenIntro},
	}

	if s.HasNote(noteChessWizardRuined) {
		out = append(out, Choice{Label: locale.T("CHESS WIZARD — OFFLINE"), Next: NodeChessOffline})
	} else {
		out = append(out, Choice{Label: locale.T("CHESS WIZARD — UTILITY PROGRAM"), Next: NodeChessIntro})
	}

	if s.Paranoia <= 2 && !s.InfectedFound && !s.HasNote(noteWentToShack) {
		out = append(out, Choice{
			Label: locale.T("GET UP TO YOUR SHACK AND GET DRUNK"),
			Next:  NodeDrunkShack,
			Effect: func(e *engine.Engine) {
				e.Log("OPTION SELECTED: OPERATOR WITHDRAWS.")
			},
		})
	}

	return append(out, Choice{Label: locale.T("FINAL ASSESSMENT"), Next: NodeFinalAssessment})
}
