package story

import (
	"strings"

	"github.com/outpost31/simulator/internal/engine"
	"github.com/outpost31/simulator/internal/platform/locale"
)

const endingSuccessText = `
CONTAINMENT PROTOCOL COMPLETE.

INFECTED SUBJECT CONFIRMED.
STRONG EVIDENCE: %d/3
EVIDENCE SIGNALS LOGGED: %d
RISK INDEX AT TERMINATION: %d

PATHWAYS SEALED.
NO FURTHER EVENTS DETECTED.

LAST LOG ENTRY:
"OBJECTIVE MET."

SIMULATION TERMINATED: CONTAINMENT SUCCESSFUL.
%s
`

const endingFailureText = `
CONTAINMENT ACTION EXECUTED.

INFECTION CONFIRMED PRIOR TO ACTION: %s
STRONG EVIDENCE: %d/3
EVIDENCE SIGNALS LOGGED: %d
RISK INDEX AT TERMINATION: %d

POST-ACTION ANALYSIS:
UNCONTROLLED VARIABLES REMAIN.

LAST LOG ENTRY:
"FAILURE STATE LOCKED."

SIMULATION TERMINATED: CONTAINMENT FAILURE.
%s
`

func addAssessmentNodes(g *Graph) {
	g.RegisterText("final_assessment", finalAssessmentText)
	g.RegisterChoices("final_assessment", finalAssessmentChoices)
	g.RegisterText("ending_success", endingSuccess)
	g.RegisterText("ending_failure", endingFailure)

	g.Add(&Node{
		ID:             NodeFinalAssessment,
		TextStrategy:   "final_assessment",
		ChoiceStrategy: "final_assessment",
		Exits:          []string{NodeEndingSuccess, NodeEndingFailure, NodeConsole},
	})

	restart := Choice{Label: locale.T("RESTART SIMULATION"), Next: RestartNode}

	g.Add(&Node{
		ID:           NodeEndingSuccess,
		TextStrategy: "ending_success",
		Choices:      []Choice{restart},
		Ending:       true,
		Trophy: &Trophy{
			Title:    locale.T("TROPHY UNLOCKED: CLEARANCE GRANTED."),
			Href:     "assets/trophy-containment-success.png",
			Filename: "outpost31-clearance-granted.png",
		},
	})

	g.Add(&Node{
		ID:           NodeEndingFailure,
		TextStrategy: "ending_failure",
		Choices:      []Choice{restart},
		Ending:       true,
		Trophy: &Trophy{
			Title:    locale.T("TROPHY UNLOCKED: BREACH RECORDED."),
			Href:     "assets/trophy-containment-failure.png",
			Filename: "outpost31-breach-recorded.png",
		},
	})
}

func confidenceTagLine(s *engine.State) string {
	return confidenceLabel(engine.ConfidenceLevel(s))
}

func finalAssessmentText(e *engine.Engine) string {
	s := e.State()
	lines := []string{
		locale.T("FINAL ASSESSMENT REQUIRED.") + "\n",
		rigorLine(s),
		locale.T("STRONG EVIDENCE PRESENT: %d/3", engine.CountStrongEvidence(s)) + "\n",
	}

	var summary []string
	for _, note := range evidenceNotes {
		if s.HasNote(note) {
			summary = append(summary, evidenceLine(note))
		}
	}
	if len(summary) > 0 {
		lines = append(lines, locale.T("EVIDENCE SUMMARY:"))
		lines = append(lines, summary...)
		lines = append(lines, "")
	} else {
		lines = append(lines, locale.T("EVIDENCE SUMMARY: INSUFFICIENT.")+"\n")
	}

	lines = append(lines,
		confidenceTagLine(s),
		"",
		locale.T("NOTE:"),
		locale.T("ALL ACTIONS CARRY NON-ZERO FAILURE RISK."),
		locale.T("THE MODEL WILL CLOSE AFTER EXECUTION.")+"\n",
		locale.T("SELECT ACTION:"),
	)
	return strings.Join(lines, "\n")
}

// finalAssessmentChoices fixes the verdict when the list is built. The
// session rebuilds the list at activation, so the route and the ending text
// read the same state.
func finalAssessmentChoices(e *engine.Engine) []Choice {
	next := NodeEndingFailure
	if engine.ContainmentSuccess(e.State()) {
		next = NodeEndingSuccess
	}
	return []Choice{
		{Label: locale.T("EXECUTE CONTAINMENT PROTOCOL"), Next: next, Effect: func(e *engine.Engine) {
			e.Log("ACTION SELECTED: EXECUTE CONTAINMENT PROTOCOL.")
		}},
		{Label: locale.T("RETURN TO CONSOLE"), Next: NodeConsole},
	}
}

func endingSuccess(e *engine.Engine) string {
	s := e.State()
	return locale.T(endingSuccessText,
		engine.CountStrongEvidence(s),
		engine.CountEvidenceSignals(s),
		s.InfectionRisk,
		confidenceTagLine(s),
	)
}

func endingFailure(e *engine.Engine) string {
	s := e.State()
	confirmed := locale.T("NO")
	if s.InfectedFound {
		confirmed = locale.T("YES")
	}
	return locale.T(endingFailureText,
		confirmed,
		engine.CountStrongEvidence(s),
		engine.CountEvidenceSignals(s),
		s.InfectionRisk,
		confidenceTagLine(s),
	)
}
