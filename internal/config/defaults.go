package config

import (
	_ "embed"
)

//go:embed defaults/linkup.yaml
var defaultLinkupYAML []byte

// DefaultLinkupConfig returns the built-in configuration. It mirrors
// defaults/linkup.yaml and is used when the embedded file cannot be parsed.
func DefaultLinkupConfig() LinkupConfig {
	return LinkupConfig{
		Tiles: []TileFace{
			{Glyph: "♠", Color: "blue"},
			{Glyph: "♥", Color: "red"},
			{Glyph: "♦", Color: "bright_red"},
			{Glyph: "♣", Color: "green"},
			{Glyph: "★", Color: "yellow"},
			{Glyph: "●", Color: "cyan"},
			{Glyph: "▲", Color: "magenta"},
			{Glyph: "■", Color: "orange"},
			{Glyph: "◆", Color: "bright_blue"},
			{Glyph: "♪", Color: "bright_magenta"},
			{Glyph: "☀", Color: "bright_yellow"},
			{Glyph: "☂", Color: "bright_cyan"},
			{Glyph: "✿", Color: "bright_green"},
		},
		MatchDelayMS:      200,
		MaxReshuffles:     1000,
		ToastMS:           2000,
		HintMS:            3000,
		DefaultDifficulty: string(DifficultyEasy),
		Difficulties: []DifficultyConfig{
			{ID: string(DifficultyEasy), Title: "Easy", Rows: 6, Cols: 4, Multiplier: 1.0, ShuffleBonus: 0},
			{ID: string(DifficultyMedium), Title: "Medium", Rows: 6, Cols: 6, Multiplier: 1.3, ShuffleBonus: 50},
			{ID: string(DifficultyHard), Title: "Hard", Rows: 8, Cols: 6, Multiplier: 1.6, ShuffleBonus: 100},
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultLinkupYAML
}
