package engine

import (
	"errors"
	"testing"
)

// diagonalDeadlock has both pairs on opposite corners; neither connects
// within two turns.
func diagonalDeadlock() *Grid {
	return GridFromRows([][]TileType{
		{0, 1},
		{1, 0},
	})
}

func TestIsSolvable(t *testing.T) {
	if IsSolvable(diagonalDeadlock()) {
		t.Error("diagonal 2x2 board should be deadlocked")
	}

	open := GridFromRows([][]TileType{
		{0, 0},
		{1, 1},
	})
	if !IsSolvable(open) {
		t.Error("board with adjacent pairs should be solvable")
	}

	if IsSolvable(GridFromRows([][]TileType{{Empty, Empty}})) {
		t.Error("empty board has no moves")
	}
}

func TestFindMove(t *testing.T) {
	g := GridFromRows([][]TileType{
		{0, 1},
		{0, 1},
	})

	mv, ok := FindMove(g)
	if !ok {
		t.Fatal("FindMove() found nothing")
	}
	if mv.A != (Pos{Row: 1, Col: 1}) || mv.B != (Pos{Row: 2, Col: 1}) {
		t.Errorf("FindMove() = %+v, want first pair in row-major order", mv)
	}
}

func TestResolveReshufflesDeadlock(t *testing.T) {
	tests := []struct {
		name  string
		bonus int
	}{
		{"easy tier awards nothing", 0},
		{"medium tier", 50},
		{"hard tier", 100},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := &recorder{}
			s := NewSessionWithGrid(diagonalDeadlock(), Options{
				Difficulty: Difficulty{ID: "t", Multiplier: 1, ShuffleBonus: tc.bonus},
				Seed:       5,
				Clock:      NewManualClock(epoch),
				Sink:       rec,
			})

			if err := s.Resolve(); err != nil {
				t.Fatalf("Resolve() failed: %v", err)
			}

			if !IsSolvable(s.Grid()) {
				t.Error("board should be solvable after Resolve()")
			}
			if s.Reshuffles() < 1 {
				t.Fatal("Resolve() should redistribute at least once")
			}
			if s.BonusScore() != tc.bonus*s.Reshuffles() {
				t.Errorf("BonusScore() = %d, want %d", s.BonusScore(), tc.bonus*s.Reshuffles())
			}
			if len(rec.reshuffles) != s.Reshuffles() {
				t.Errorf("got %d reshuffle events, want %d", len(rec.reshuffles), s.Reshuffles())
			}
			for _, b := range rec.reshuffles {
				if b != tc.bonus {
					t.Errorf("reshuffle event bonus = %d, want %d", b, tc.bonus)
				}
			}
			if s.Grid().Count() != 4 {
				t.Errorf("Resolve() changed tile count to %d", s.Grid().Count())
			}
		})
	}
}

func TestResolveClearsSelection(t *testing.T) {
	s := NewSessionWithGrid(diagonalDeadlock(), Options{Seed: 2, Clock: NewManualClock(epoch)})
	s.Select(Pos{Row: 1, Col: 1})

	if err := s.Resolve(); err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if _, ok := s.Selection(); ok {
		t.Error("a reshuffle should clear the selection")
	}
}

func TestResolveSolvableBoardIsUntouched(t *testing.T) {
	g := GridFromRows([][]TileType{{0, 0}, {1, 1}})
	s := NewSessionWithGrid(g, Options{Clock: NewManualClock(epoch)})

	if err := s.Resolve(); err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if s.Reshuffles() != 0 {
		t.Errorf("Reshuffles() = %d, want 0", s.Reshuffles())
	}
}

func TestResolveGivesUpAfterLimit(t *testing.T) {
	// Each redistribution of the 2x2 board lands on a diagonal with
	// probability 1/3, so some seed exhausts a single attempt.
	exhausted := 0
	for seed := int64(1); seed <= 64; seed++ {
		s := NewSessionWithGrid(diagonalDeadlock(), Options{
			Seed:          seed,
			MaxReshuffles: 1,
			Clock:         NewManualClock(epoch),
		})

		err := s.Resolve()
		switch {
		case err == nil:
			if !IsSolvable(s.Grid()) {
				t.Errorf("seed %d: Resolve() returned nil on a deadlocked board", seed)
			}
		case errors.Is(err, ErrUnsolvable):
			exhausted++
		default:
			t.Errorf("seed %d: unexpected error %v", seed, err)
		}
	}

	if exhausted == 0 {
		t.Error("expected at least one seed to exhaust the reshuffle limit")
	}
}
