package config

import (
	"fmt"

	"github.com/vovakirdan/linkup/internal/games/linkup/engine"
)

// DifficultyPreset names a built-in difficulty tier.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyMedium DifficultyPreset = "medium"
	DifficultyHard   DifficultyPreset = "hard"
)

// Difficulty looks up a tier by id.
func (c LinkupConfig) Difficulty(id string) (DifficultyConfig, error) {
	for _, d := range c.Difficulties {
		if d.ID == id {
			return d, nil
		}
	}
	return DifficultyConfig{}, fmt.Errorf("config: unknown difficulty %q", id)
}

// DifficultyOrDefault looks up a tier, falling back to the configured
// default and then to the first defined tier.
func (c LinkupConfig) DifficultyOrDefault(id string) DifficultyConfig {
	if d, err := c.Difficulty(id); err == nil {
		return d
	}
	if d, err := c.Difficulty(c.DefaultDifficulty); err == nil {
		return d
	}
	if len(c.Difficulties) > 0 {
		return c.Difficulties[0]
	}
	return DefaultLinkupConfig().Difficulties[0]
}

// Engine converts the tier to the engine's difficulty record.
func (d DifficultyConfig) Engine() engine.Difficulty {
	return engine.Difficulty{
		ID:           d.ID,
		Rows:         d.Rows,
		Cols:         d.Cols,
		Multiplier:   d.Multiplier,
		ShuffleBonus: d.ShuffleBonus,
	}
}

// Pairs returns the number of tile pairs on a full board.
func (d DifficultyConfig) Pairs() int {
	return d.Rows * d.Cols / 2
}

// Summary returns a one-line description such as "6x4, x1.3, +50 per shuffle".
func (d DifficultyConfig) Summary() string {
	if d.ShuffleBonus == 0 {
		return fmt.Sprintf("%dx%d, x%.1f", d.Rows, d.Cols, d.Multiplier)
	}
	return fmt.Sprintf("%dx%d, x%.1f, +%d per shuffle", d.Rows, d.Cols, d.Multiplier, d.ShuffleBonus)
}
