// Package rules contains the pure calculation logic for the contamination model.
// This package is PURE and must NOT import any infrastructure packages.
package rules

import "math"

// SpreadRiskThreshold is the lowest infection risk at which a secondary infection can occur.
const SpreadRiskThreshold = 5

// MaxInfected caps the hidden infection set.
const MaxInfected = 2

// FalseNegativeParams holds the state slice the false-negative model reads.
type FalseNegativeParams struct {
	BulkScans     int
	InfectionRisk int
	Caution       int
	ModelRan      bool // The assimilation model has been consulted at least once
}

// FalseNegativeProbability is the chance that a test on an infected sample reports human.
// Bulk automation and chaotic risk push it up; manual caution and one model run pull it down.
func FalseNegativeProbability(p FalseNegativeParams) float64 {
	bulkPenalty := math.Min(0.30, float64(p.BulkScans)*0.15)
	riskPenalty := math.Min(0.20, float64(p.InfectionRisk)*0.04)
	cautionShield := math.Min(0.20, float64(p.Caution)*0.04)

	simShield := 0.0
	if p.ModelRan {
		simShield = 0.10
	}

	return math.Max(0, bulkPenalty+riskPenalty-cautionShield-simShield)
}

// SpreadChance returns the probability that a secondary infection fires at the given risk.
// Zero below SpreadRiskThreshold.
func SpreadChance(infectionRisk int) float64 {
	switch {
	case infectionRisk >= 7:
		return 0.8
	case infectionRisk == 6:
		return 0.5
	case infectionRisk == SpreadRiskThreshold:
		return 0.3
	default:
		return 0
	}
}

// DataSufficiency is the three-level input rating used by the assimilation model.
type DataSufficiency string

const (
	SufficiencyNone       DataSufficiency = "none"
	SufficiencyLimited    DataSufficiency = "limited"
	SufficiencySufficient DataSufficiency = "sufficient"
)

// SufficiencyFor rates the number of tested samples.
func SufficiencyFor(tested int) DataSufficiency {
	switch {
	case tested <= 0:
		return SufficiencyNone
	case tested == 1:
		return SufficiencyLimited
	default:
		return SufficiencySufficient
	}
}

// Confidence is the four-level rating used by the final assessment and endings.
// Kept separate from DataSufficiency: the two discretise the same count differently.
type Confidence string

const (
	ConfidenceNone   Confidence = "none"
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// ConfidenceFor rates the number of tested samples.
func ConfidenceFor(tested int) Confidence {
	switch {
	case tested <= 0:
		return ConfidenceNone
	case tested == 1:
		return ConfidenceLow
	case tested <= 3:
		return ConfidenceMedium
	default:
		return ConfidenceHigh
	}
}

// TagLine renders the confidence footer shown on assessment screens.
func (c Confidence) TagLine() string {
	switch c {
	case ConfidenceHigh:
		return "MODEL CONFIDENCE: HIGH."
	case ConfidenceMedium:
		return "MODEL CONFIDENCE: MEDIUM."
	case ConfidenceLow:
		return "MODEL CONFIDENCE: LOW."
	default:
		return "MODEL CONFIDENCE: UNKNOWN."
	}
}

// ContainmentParams holds the inputs of the single win predicate.
type ContainmentParams struct {
	InfectedFound  bool
	StrongEvidence int
	Difficulty     Difficulty
	InfectionRisk  int
}

// MaxRiskForContainment is the highest risk index at which containment can still succeed.
const MaxRiskForContainment = 2

// ContainmentSuccess is true only when infection is confirmed, strong evidence meets the
// difficulty threshold, and risk was kept low. There is no partial credit.
func ContainmentSuccess(p ContainmentParams) bool {
	return p.InfectedFound &&
		p.StrongEvidence >= RequiredEvidenceCount(p.Difficulty) &&
		p.InfectionRisk <= MaxRiskForContainment
}
