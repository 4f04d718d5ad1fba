package engine

import (
	"math"
	"time"
)

// Difficulty holds the per-tier board shape and scoring constants.
type Difficulty struct {
	ID           string
	Rows         int
	Cols         int
	Multiplier   float64
	ShuffleBonus int // Added to the bonus score on every automatic reshuffle
}

// Pairs returns the number of pairs on a full board.
func (d Difficulty) Pairs() int {
	return d.Rows * d.Cols / 2
}

// ElapsedSeconds returns whole seconds since start, never less than 1.
func ElapsedSeconds(start, now time.Time) int {
	secs := int(now.Sub(start) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

// Score computes floor(pairs*1000/elapsed*multiplier + bonus).
func Score(pairs, elapsedSeconds int, multiplier float64, bonus int) int {
	if elapsedSeconds < 1 {
		elapsedSeconds = 1
	}
	raw := float64(pairs*1000)/float64(elapsedSeconds)*multiplier + float64(bonus)
	return int(math.Floor(raw))
}
