package rules

// Difficulty is the persisted rigor preference. It only moves the evidence threshold.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists the cycle order used by the difficulty toggle.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyNormal, DifficultyHard}

// ParseDifficulty maps a stored preference to a Difficulty.
// Anything unrecognised (including the empty string) falls back to normal.
func ParseDifficulty(raw string) Difficulty {
	for _, d := range Difficulties {
		if string(d) == raw {
			return d
		}
	}
	return DifficultyNormal
}

// Label is the rigor name shown on the console.
func (d Difficulty) Label() string {
	switch d {
	case DifficultyEasy:
		return "RELAXED"
	case DifficultyHard:
		return "STRICT"
	default:
		return "STANDARD"
	}
}

// Cycle steps dir positions through Difficulties, wrapping at both ends.
func (d Difficulty) Cycle(dir int) Difficulty {
	idx := 1
	for i, c := range Difficulties {
		if c == d {
			idx = i
			break
		}
	}
	n := len(Difficulties)
	next := ((idx+dir)%n + n) % n
	return Difficulties[next]
}

// RequiredEvidenceCount is the number of strong evidence signals the win gate demands.
func RequiredEvidenceCount(d Difficulty) int {
	switch d {
	case DifficultyEasy:
		return 0
	case DifficultyHard:
		return 2
	default:
		return 1
	}
}
