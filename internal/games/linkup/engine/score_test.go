package engine

import (
	"testing"
	"time"
)

func TestElapsedSeconds(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want int
	}{
		{"instant clamps to one", 0, 1},
		{"sub-second clamps to one", 999 * time.Millisecond, 1},
		{"clock skew clamps to one", -5 * time.Second, 1},
		{"floors fractional seconds", 3*time.Second + 900*time.Millisecond, 3},
		{"whole minutes", 2 * time.Minute, 120},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ElapsedSeconds(epoch, epoch.Add(tc.d)); got != tc.want {
				t.Errorf("ElapsedSeconds() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name    string
		pairs   int
		elapsed int
		mult    float64
		bonus   int
		want    int
	}{
		{"nothing matched", 0, 10, 1.0, 0, 0},
		{"bonus only", 0, 10, 1.6, 200, 200},
		{"easy tier", 12, 60, 1.0, 0, 200},
		{"medium tier floors", 18, 45, 1.3, 50, 570},
		{"hard tier", 24, 120, 1.6, 100, 420},
		{"zero elapsed treated as one", 1, 0, 1.0, 0, 1000},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(tc.pairs, tc.elapsed, tc.mult, tc.bonus)
			if got != tc.want {
				t.Errorf("Score(%d, %d, %v, %d) = %d, want %d",
					tc.pairs, tc.elapsed, tc.mult, tc.bonus, got, tc.want)
			}
		})
	}
}

func TestScoreMonotonic(t *testing.T) {
	prev := Score(10, 1, 1.3, 0)
	for elapsed := 2; elapsed <= 600; elapsed++ {
		cur := Score(10, elapsed, 1.3, 0)
		if cur > prev {
			t.Fatalf("score grew with time: %d at %ds, %d at %ds", prev, elapsed-1, cur, elapsed)
		}
		prev = cur
	}

	for pairs := 1; pairs <= 24; pairs++ {
		if Score(pairs, 30, 1.0, 0) < Score(pairs-1, 30, 1.0, 0) {
			t.Fatalf("score shrank when pairs went %d -> %d", pairs-1, pairs)
		}
	}
}

func TestDifficultyPairs(t *testing.T) {
	d := Difficulty{Rows: 8, Cols: 6}
	if d.Pairs() != 24 {
		t.Errorf("Pairs() = %d, want 24", d.Pairs())
	}
}

func TestLiveScoreTracksClock(t *testing.T) {
	s, clock, _ := newTestSession(t, [][]TileType{
		{0, 0},
		{1, 1},
	}, 1)

	s.Select(Pos{1, 1})
	s.Select(Pos{1, 2})
	clock.Advance(testDelay)
	if err := s.Advance(); err != nil {
		t.Fatalf("Advance() failed: %v", err)
	}

	// Inside the first second elapsed clamps to one
	if got := s.LiveScore(); got != 1000 {
		t.Errorf("LiveScore() = %d, want 1000", got)
	}

	clock.Advance(4 * time.Second)
	if got := s.LiveScore(); got != 250 {
		t.Errorf("LiveScore() = %d, want 250", got)
	}
	if s.FinalScore() != 0 {
		t.Errorf("FinalScore() = %d before win, want 0", s.FinalScore())
	}
}
