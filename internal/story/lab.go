package story

import (
	"strings"

	"github.com/outpost31/simulator/internal/domain/crew"
	"github.com/outpost31/simulator/internal/domain/rules"
	"github.com/outpost31/simulator/internal/engine"
	"github.com/outpost31/simulator/internal/platform/locale"
)

const labIntroText = `
LAB DIAGNOSTICS

PHYSICAL TESTING AND ANALYTICAL MODELS
ARE SEPARATE PROTOCOLS.

SELECT OPERATION:
`

const labAutoText = `
BULK ANOMALY SCAN INITIATED...

FOR ONE CYCLE: ALL VIALS READ CONTAMINATED.
THEN: STATUS — NO ANOMALY DETECTED.

LOG INSISTS: NO ERROR OCCURRED.
`

func addLabNodes(g *Graph) {
	g.RegisterText("lab_menu", labMenuText)
	g.RegisterChoices("lab_menu", labMenuChoices)
	g.RegisterText("lab_sim", labSimText)

	g.Add(&Node{
		ID:   NodeLabIntro,
		Text: locale.T(labIntroText),
		Choices: []Choice{
			{Label: locale.T("CONDUCT MANUAL BLOOD TESTS"), Next: NodeLabMenu, Effect: addCaution},
			{Label: locale.T("RUN ASSIMILATION SIMULATION"), Next: NodeLabSim, Effect: runAssimilationModel},
			{Label: locale.T("RUN BULK ANOMALY SCAN"), Next: NodeLabAuto, Effect: raiseRisk(1)},
			{Label: locale.T("RETURN TO CONSOLE"), Next: NodeConsole},
		},
	})

	exits := []string{NodeLabIntro}
	for _, id := range crew.IDs() {
		exits = append(exits, BloodTestNode(id))
	}
	g.Add(&Node{
		ID:             NodeLabMenu,
		TextStrategy:   "lab_menu",
		ChoiceStrategy: "lab_menu",
		Exits:          exits,
	})

	g.Add(&Node{
		ID:           NodeLabSim,
		TextStrategy: "lab_sim",
		Choices: []Choice{
			{Label: locale.T("RETURN TO LAB PROTOCOLS"), Next: NodeLabIntro},
			{Label: locale.T("RETURN TO CONSOLE"), Next: NodeConsole},
		},
	})

	g.Add(&Node{
		ID:   NodeLabAuto,
		Text: locale.T(labAutoText),
		Choices: []Choice{
			{Label: locale.T("LOG AS SUSPICIOUS AND RETURN"), Next: NodeLabIntro, Effect: func(e *engine.Engine) {
				s := e.State()
				s.BulkScans++
				e.AddNote(engine.NoteLabVisualAnomaly)
				s.Caution++
				e.Log("BULK SCAN: ANOMALOUS READINGS LOGGED.")
			}},
			{Label: locale.T("ACCEPT ALL-CLEAR AND RETURN"), Next: NodeLabIntro, Effect: func(e *engine.Engine) {
				e.State().BulkScans++
				e.RaiseRisk(2)
				e.Log("BULK SCAN: ALL-CLEAR ACCEPTED (RISK INCREASED).")
			}},
		},
	})

	for _, m := range crew.Roster() {
		addBloodTestNode(g, m)
	}
}

// runAssimilationModel rates the data before noting the run, so the first run
// is judged on what was tested, not on having run.
func runAssimilationModel(e *engine.Engine) {
	s := e.State()
	suff := engine.DataSufficiency(s)
	e.AddNote(engine.NoteAssimilationModelRan)

	switch suff {
	case rules.SufficiencyNone:
		e.RaiseRisk(1)
		e.Log("WARNING: SIMULATION RUN WITH NO VERIFIED INPUT DATA.")
	case rules.SufficiencyLimited:
		e.Log("NOTICE: LIMITED INPUT DATA — CONFIDENCE REDUCED.")
	default:
		s.Caution++
	}
}

func labMenuText(e *engine.Engine) string {
	s := e.State()
	lines := []string{locale.T("INDIVIDUAL BLOOD TEST CONSOLE") + "\n"}
	for _, m := range crew.Roster() {
		switch s.Result(m.ID) {
		case engine.ResultHuman:
			lines = append(lines, locale.T("%s: NO REACTION (HUMAN)", m.Name))
		case engine.ResultInfected:
			lines = append(lines, locale.T("%s: VIOLENT REACTION (INFECTED)", m.Name))
		default:
			lines = append(lines, locale.T("%s: UNTESTED (%s)", m.Name, sampleTag(m)))
		}
	}
	lines = append(lines,
		"",
		locale.T("BULK SCANS RUN: %d", s.BulkScans),
		locale.T("SELECT SAMPLE / RETEST / EXIT:"),
	)
	return strings.Join(lines, "\n")
}

func labMenuChoices(e *engine.Engine) []Choice {
	s := e.State()
	roster := crew.Roster()
	var out []Choice

	for _, m := range roster {
		if s.Result(m.ID) == engine.ResultUntested {
			out = append(out, Choice{
				Label:  locale.T("TEST %s", m.Name),
				Next:   BloodTestNode(m.ID),
				Effect: addCaution,
			})
		}
	}

	// Infected results are final; only human readouts can be challenged.
	if s.BulkScans > 0 && !s.InfectedFound {
		for _, m := range roster {
			if s.Result(m.ID) == engine.ResultHuman {
				out = append(out, Choice{
					Label: locale.T("RETEST %s (VERIFY)", m.Name),
					Next:  BloodTestNode(m.ID),
					Effect: func(e *engine.Engine) {
						e.State().Caution++
						e.AddNote(noteVerificationRequest)
					},
				})
			}
		}
	}

	return append(out, Choice{
		Label: locale.T("EXIT TO LAB PROTOCOLS"),
		Next:  NodeLabIntro,
		Effect: func(e *engine.Engine) {
			if !e.State().InfectedFound {
				e.RaiseRisk(1)
			}
		},
	})
}

func labSimText(e *engine.Engine) string {
	s := e.State()
	healthy, infected, untested := s.CountResults()
	total := healthy + infected + untested
	tested := total - untested

	lines := []string{locale.T("ASSIMILATION SIMULATION v1.3")}
	switch engine.DataSufficiency(s) {
	case rules.SufficiencyNone:
		lines = append(lines, locale.T("INPUT STATUS: DATA INSUFFICIENT"), locale.T("MODEL REQUESTS MORE DATA."))
	case rules.SufficiencyLimited:
		lines = append(lines, locale.T("INPUT STATUS: LIMITED DATA SET"), locale.T("MODEL REQUESTS ADDITIONAL SAMPLES."))
	default:
		lines = append(lines, locale.T("INPUT STATUS: VERIFIED SAMPLES PRESENT"), locale.T("MODEL READY."))
	}
	lines = append(lines, "")

	firstInfection := locale.T("NO CONFIRMATION")
	if infected > 0 {
		firstInfection = locale.T("DETECTED")
	}
	lines = append(lines,
		locale.T("SAMPLE POOL: %d   |   BULK SCANS: %d", total, s.BulkScans),
		locale.T("HEALTHY: %d   |   INFECTIONS: %d", healthy, infected),
		locale.T("UNTESTED SAMPLES: %d", untested),
		locale.T("ELAPSED: 00:00:XX   |   FIRST INFECTION: %s", firstInfection),
		"",
	)

	switch {
	case tested == 0:
		lines = append(lines, locale.T("MODEL WARNING: NO CONFIRMED INPUT DATA."), locale.T("FORECAST: UNRELIABLE."))
	case infected > 0 && untested == 0:
		lines = append(lines, locale.T("MODEL OUTPUT: ACTIVE INFECTION CONFIRMED."), locale.T("SPREAD POTENTIAL: LOW IF SUBJECTS NEUTRALIZED."))
	case infected > 0:
		lines = append(lines, locale.T("MODEL OUTPUT: ACTIVE INFECTION CONFIRMED."), locale.T("UNKNOWN CARRIERS POSSIBLE. ISOLATION ADVISED."))
	case untested > 0:
		lines = append(lines, locale.T("MODEL OUTPUT: NO CONFIRMED INFECTION IN TESTED SET."), locale.T("NON-ZERO PROBABILITY REMAINS DUE TO UNTESTED VIALS."))
	default:
		lines = append(lines, locale.T("MODEL OUTPUT: ALL TESTED SAMPLES REGISTER HUMAN."), locale.T("NO GUARANTEE OF FUTURE EVENTS."))
	}

	if s.HasNote(engine.NoteFalseNegativePossible) {
		lines = append(lines, "", locale.T("MODEL WARNING: SENSOR RELIABILITY DEGRADED."), locale.T("RETEST RECOMMENDED."))
	}

	lines = append(lines, "\n"+locale.T("SIMULATION IDLE."))
	return strings.Join(lines, "\n")
}
