package engine

import (
	"strings"
	"time"

	"github.com/outpost31/simulator/internal/domain/crew"
	"github.com/outpost31/simulator/internal/domain/rules"
)

// TestResult is the reported outcome of a blood test. The zero value means untested.
type TestResult string

const (
	ResultUntested TestResult = ""
	ResultHuman    TestResult = "human"
	ResultInfected TestResult = "infected"
)

// BloodOutcome is the memoised result of the most recent test computation for one crew member.
type BloodOutcome struct {
	CrewID        string     `json:"crew_id"`
	TrulyInfected bool       `json:"truly_infected"`
	Lied          bool       `json:"lied"`
	Reported      TestResult `json:"reported"`
	Timestamp     time.Time  `json:"timestamp"`
}

// State is the single mutable record of one playthrough.
type State struct {
	Difficulty rules.Difficulty

	Caution       int
	Paranoia      int
	InfectionRisk int // Stored unclamped; clamp only for display

	notes []string

	BloodTests    map[string]TestResult
	InfectedIDs   []string // Hidden truth; one or two entries
	InfectedFound bool

	BulkScans           int
	FalseNegativeUsed   map[string]bool
	SpreadTriggered     bool
	PendingBloodOutcome *BloodOutcome

	StartedAt time.Time
}

// NewState returns a zeroed state. Infection bookkeeping is filled in by
// InfectionSystem.Initialize.
func NewState(difficulty rules.Difficulty) *State {
	s := &State{Difficulty: difficulty}
	s.Reset()
	return s
}

// Reset zeroes every field except Difficulty, which is external configuration.
func (s *State) Reset() {
	difficulty := s.Difficulty
	*s = State{
		Difficulty:        difficulty,
		notes:             []string{},
		BloodTests:        untestedRoster(),
		FalseNegativeUsed: make(map[string]bool),
		StartedAt:         time.Now(),
	}
}

func untestedRoster() map[string]TestResult {
	tests := make(map[string]TestResult)
	for _, id := range crew.IDs() {
		tests[id] = ResultUntested
	}
	return tests
}

// AddNote appends note if it is not already present. Returns true when added.
func (s *State) AddNote(note string) bool {
	if s.HasNote(note) {
		return false
	}
	s.notes = append(s.notes, note)
	return true
}

// HasNote reports whether note has been recorded.
func (s *State) HasNote(note string) bool {
	for _, n := range s.notes {
		if n == note {
			return true
		}
	}
	return false
}

// Notes returns the recorded notes in insertion order.
func (s *State) Notes() []string {
	out := make([]string, len(s.notes))
	copy(out, s.notes)
	return out
}

// NoteWithPrefix returns the first note starting with prefix.
func (s *State) NoteWithPrefix(prefix string) (string, bool) {
	for _, n := range s.notes {
		if strings.HasPrefix(n, prefix) {
			return n, true
		}
	}
	return "", false
}

// Result returns the reported test result for a crew member.
func (s *State) Result(crewID string) TestResult {
	return s.BloodTests[crewID]
}

// TestedCount is the number of crew members with a reported result.
func (s *State) TestedCount() int {
	n := 0
	for _, r := range s.BloodTests {
		if r != ResultUntested {
			n++
		}
	}
	return n
}

// CountResults tallies reported results across the roster.
func (s *State) CountResults() (human, infected, untested int) {
	for _, r := range s.BloodTests {
		switch r {
		case ResultHuman:
			human++
		case ResultInfected:
			infected++
		default:
			untested++
		}
	}
	return human, infected, untested
}

// IsInfected reports hidden truth for one crew member.
func (s *State) IsInfected(crewID string) bool {
	for _, id := range s.InfectedIDs {
		if id == crewID {
			return true
		}
	}
	return false
}

// SetInfected overrides the hidden infection set. Intended for scripted scenarios.
func (s *State) SetInfected(ids ...string) {
	s.InfectedIDs = append([]string(nil), ids...)
}

// MeterMax is the upper bound of every display meter.
const MeterMax = 10

// Meter is a raw counter alongside its display value.
type Meter struct {
	Raw     int `json:"raw"`
	Display int `json:"display"`
}

// MeterSnapshot is the read-only HUD view of the three counters.
type MeterSnapshot struct {
	Caution        Meter `json:"caution"`
	Paranoia       Meter `json:"paranoia"`
	Risk           Meter `json:"risk"`
	ElapsedSeconds int64 `json:"elapsed_seconds"`
}

// Meters returns the current snapshot, clamping display values to [0, MeterMax].
func (s *State) Meters(now time.Time) MeterSnapshot {
	return MeterSnapshot{
		Caution:        meter(s.Caution),
		Paranoia:       meter(s.Paranoia),
		Risk:           meter(s.InfectionRisk),
		ElapsedSeconds: int64(now.Sub(s.StartedAt) / time.Second),
	}
}

func meter(v int) Meter {
	return Meter{Raw: v, Display: clamp(v, 0, MeterMax)}
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
