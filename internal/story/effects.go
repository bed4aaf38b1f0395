package story

import "github.com/outpost31/simulator/internal/engine"

// raiseRisk is the common "skipped a precaution" effect.
func raiseRisk(delta int) Effect {
	return func(e *engine.Engine) {
		e.RaiseRisk(delta)
	}
}

func addCaution(e *engine.Engine) {
	e.State().Caution++
}
