package storage

import (
	"context"

	"github.com/outpost31/simulator/internal/domain/rules"
)

// DifficultyKey is where the difficulty preference lives.
const DifficultyKey = "outpost31_difficulty"

// DifficultyPreference reads and writes the difficulty setting.
type DifficultyPreference struct {
	repo PreferenceRepository
}

func NewDifficultyPreference(repo PreferenceRepository) *DifficultyPreference {
	return &DifficultyPreference{repo: repo}
}

// LoadDifficulty returns the stored difficulty. A missing or unrecognised
// value yields normal; only a storage failure returns an error, and normal
// comes back with it.
func (p *DifficultyPreference) LoadDifficulty(ctx context.Context) (rules.Difficulty, error) {
	raw, _, err := p.repo.Get(ctx, DifficultyKey)
	if err != nil {
		return rules.DifficultyNormal, err
	}
	return rules.ParseDifficulty(raw), nil
}

// SaveDifficulty stores d.
func (p *DifficultyPreference) SaveDifficulty(ctx context.Context, d rules.Difficulty) error {
	return p.repo.Set(ctx, DifficultyKey, string(d))
}
