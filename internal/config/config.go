// Package config provides YAML-based game configuration loading and
// difficulty presets for the Link-Up game.
package config

import (
	"errors"
	"fmt"
	"time"
)

// LinkupConfig contains all configuration for the Link-Up game.
type LinkupConfig struct {
	Tiles             []TileFace         `yaml:"tiles"`
	MatchDelayMS      int                `yaml:"match_delay_ms"` // Path highlight time before tiles vanish
	MaxReshuffles     int                `yaml:"max_reshuffles"` // Attempts before a deadlock is reported
	ToastMS           int                `yaml:"toast_ms"`
	HintMS            int                `yaml:"hint_ms"`
	DefaultDifficulty string             `yaml:"default_difficulty"`
	Difficulties      []DifficultyConfig `yaml:"difficulties"`
}

// TileFace is how one tile type is drawn.
type TileFace struct {
	Glyph string `yaml:"glyph"`
	Color string `yaml:"color"`
}

// DifficultyConfig defines one board tier.
type DifficultyConfig struct {
	ID           string  `yaml:"id"`
	Title        string  `yaml:"title"`
	Rows         int     `yaml:"rows"`
	Cols         int     `yaml:"cols"`
	Multiplier   float64 `yaml:"multiplier"`
	ShuffleBonus int     `yaml:"shuffle_bonus"`
}

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// MatchDelay returns the match animation delay.
func (c LinkupConfig) MatchDelay() time.Duration {
	return time.Duration(c.MatchDelayMS) * time.Millisecond
}

// ToastDuration returns how long transient messages stay on screen.
func (c LinkupConfig) ToastDuration() time.Duration {
	return time.Duration(c.ToastMS) * time.Millisecond
}

// HintDuration returns how long a hint stays highlighted.
func (c LinkupConfig) HintDuration() time.Duration {
	return time.Duration(c.HintMS) * time.Millisecond
}

// Validate reports every problem in the configuration at once.
func (c LinkupConfig) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if len(c.Tiles) == 0 {
		bad("tile catalog is empty")
	}
	for i, t := range c.Tiles {
		if len([]rune(t.Glyph)) != 1 {
			bad("tile %d glyph %q must be a single character", i, t.Glyph)
		}
	}
	if c.MatchDelayMS < 0 {
		bad("match_delay_ms must not be negative")
	}
	if c.MaxReshuffles <= 0 {
		bad("max_reshuffles must be positive")
	}
	if len(c.Difficulties) == 0 {
		bad("no difficulties defined")
	}

	seen := make(map[string]bool)
	for _, d := range c.Difficulties {
		switch {
		case d.ID == "":
			bad("difficulty without id")
		case seen[d.ID]:
			bad("duplicate difficulty %q", d.ID)
		}
		seen[d.ID] = true

		if d.Rows <= 0 || d.Cols <= 0 {
			bad("difficulty %q: board %dx%d must have positive dimensions", d.ID, d.Rows, d.Cols)
		} else if d.Rows*d.Cols%2 != 0 {
			bad("difficulty %q: board %dx%d has an odd cell count", d.ID, d.Rows, d.Cols)
		}
		if d.Multiplier <= 0 {
			bad("difficulty %q: multiplier must be positive", d.ID)
		}
		if d.ShuffleBonus < 0 {
			bad("difficulty %q: shuffle_bonus must not be negative", d.ID)
		}
	}

	if c.DefaultDifficulty != "" && !seen[c.DefaultDifficulty] {
		bad("default_difficulty %q is not defined", c.DefaultDifficulty)
	}

	return errors.Join(errs...)
}
