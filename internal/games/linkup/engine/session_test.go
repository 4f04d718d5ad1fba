package engine

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

var epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

const testDelay = 200 * time.Millisecond

// recorder captures events in order.
type recorder struct {
	log        []string
	paths      []Path
	reshuffles []int
	finalScore int
	elapsed    int
}

func (r *recorder) OnMatchAnimate(path Path) {
	r.paths = append(r.paths, path)
	r.log = append(r.log, "animate")
}

func (r *recorder) OnMatchCommitted(matched, total int) {
	r.log = append(r.log, fmt.Sprintf("committed %d/%d", matched, total))
}

func (r *recorder) OnReshuffle(bonus int) {
	r.reshuffles = append(r.reshuffles, bonus)
	r.log = append(r.log, "reshuffle")
}

func (r *recorder) OnWin(finalScore, elapsed int) {
	r.finalScore = finalScore
	r.elapsed = elapsed
	r.log = append(r.log, "win")
}

func newTestSession(t *testing.T, layout [][]TileType, mult float64) (*Session, *ManualClock, *recorder) {
	t.Helper()
	clock := NewManualClock(epoch)
	rec := &recorder{}
	s := NewSessionWithGrid(GridFromRows(layout), Options{
		Difficulty: Difficulty{ID: "test", Multiplier: mult},
		MatchDelay: testDelay,
		Seed:       1,
		Clock:      clock,
		Sink:       rec,
	})
	return s, clock, rec
}

func TestSelectStateMachine(t *testing.T) {
	s, _, _ := newTestSession(t, [][]TileType{
		{0, 1, Empty},
		{2, 1, 0},
	}, 1)

	steps := []struct {
		name  string
		pos   Pos
		want  Outcome
		phase Phase
	}{
		{"empty cell is ignored", Pos{1, 3}, OutcomeIgnored, PhaseIdle},
		{"border cell is ignored", Pos{0, 0}, OutcomeIgnored, PhaseIdle},
		{"out of range is ignored", Pos{9, 9}, OutcomeIgnored, PhaseIdle},
		{"first pick selects", Pos{1, 1}, OutcomeSelected, PhaseSelected},
		{"same tile deselects", Pos{1, 1}, OutcomeDeselected, PhaseIdle},
		{"pick again", Pos{1, 1}, OutcomeSelected, PhaseSelected},
		{"different type switches", Pos{2, 1}, OutcomeSwitched, PhaseSelected},
		{"switch back", Pos{1, 1}, OutcomeSwitched, PhaseSelected},
		{"matching type with a path matches", Pos{2, 3}, OutcomeMatched, PhaseAnimating},
	}

	for _, st := range steps {
		got := s.Select(st.pos)
		if got != st.want {
			t.Fatalf("%s: Select(%v) = %v, want %v", st.name, st.pos, got, st.want)
		}
		if s.Phase() != st.phase {
			t.Fatalf("%s: Phase() = %v, want %v", st.name, s.Phase(), st.phase)
		}
	}

	if _, ok := s.Selection(); ok {
		t.Error("selection should be cleared once a match is scheduled")
	}
}

func TestSelectSameTypeWithoutPathSwitches(t *testing.T) {
	s, _, rec := newTestSession(t, [][]TileType{
		{0, X, X},
		{X, X, X},
		{X, X, 0},
	}, 1)

	s.Select(Pos{1, 1})
	if got := s.Select(Pos{3, 3}); got != OutcomeSwitched {
		t.Fatalf("Select() = %v, want OutcomeSwitched", got)
	}
	if sel, _ := s.Selection(); sel != (Pos{3, 3}) {
		t.Errorf("Selection() = %v, want {3 3}", sel)
	}
	if len(rec.paths) != 0 {
		t.Error("no animation should fire without a path")
	}
}

func TestMatchCommitIsDeferred(t *testing.T) {
	s, clock, rec := newTestSession(t, [][]TileType{
		{0, 0},
		{1, 1},
	}, 1)

	s.Select(Pos{1, 1})
	s.Select(Pos{1, 2})

	if len(rec.paths) != 1 || len(rec.paths[0]) != 2 {
		t.Fatalf("expected one 2-cell animation path, got %v", rec.paths)
	}

	// Not yet due
	clock.Advance(testDelay / 2)
	if err := s.Advance(); err != nil {
		t.Fatalf("Advance() failed: %v", err)
	}
	if s.MatchedPairs() != 0 || s.Grid().IsEmpty(Pos{1, 1}) {
		t.Fatal("match committed before its delay elapsed")
	}

	clock.Advance(testDelay / 2)
	if err := s.Advance(); err != nil {
		t.Fatalf("Advance() failed: %v", err)
	}
	if s.MatchedPairs() != 1 {
		t.Errorf("MatchedPairs() = %d, want 1", s.MatchedPairs())
	}
	if !s.Grid().IsEmpty(Pos{1, 1}) || !s.Grid().IsEmpty(Pos{1, 2}) {
		t.Error("both tiles should be cleared after commit")
	}
	if s.Phase() != PhaseIdle {
		t.Errorf("Phase() = %v, want idle", s.Phase())
	}
}

func TestPendingTilesRejectSelection(t *testing.T) {
	s, clock, _ := newTestSession(t, [][]TileType{
		{0, 0},
		{0, 0},
	}, 1)

	s.Select(Pos{1, 1})
	s.Select(Pos{1, 2})

	if got := s.Select(Pos{1, 1}); got != OutcomeIgnored {
		t.Errorf("re-selecting a pending tile = %v, want ignored", got)
	}
	if got := s.Select(Pos{1, 2}); got != OutcomeIgnored {
		t.Errorf("re-selecting a pending tile = %v, want ignored", got)
	}

	// Unrelated tiles stay playable while the first match animates
	if got := s.Select(Pos{2, 1}); got != OutcomeSelected {
		t.Fatalf("Select(unrelated) = %v, want selected", got)
	}
	if got := s.Select(Pos{1, 2}); got != OutcomeIgnored {
		t.Errorf("pending tile accepted as second pick: %v", got)
	}
	if got := s.Select(Pos{2, 2}); got != OutcomeMatched {
		t.Fatalf("second match = %v, want matched", got)
	}

	clock.Advance(testDelay)
	if err := s.Advance(); err != nil {
		t.Fatalf("Advance() failed: %v", err)
	}
	if s.MatchedPairs() != 2 {
		t.Errorf("MatchedPairs() = %d, want 2", s.MatchedPairs())
	}
	if !s.IsWon() {
		t.Error("board should be cleared")
	}
}

func TestEndCancelsPendingCommit(t *testing.T) {
	s, clock, rec := newTestSession(t, [][]TileType{
		{0, 0},
		{1, 1},
	}, 1)

	s.Select(Pos{1, 1})
	s.Select(Pos{1, 2})
	s.End()

	clock.Advance(time.Second)
	if err := s.Advance(); err != nil {
		t.Fatalf("Advance() failed: %v", err)
	}

	if s.MatchedPairs() != 0 {
		t.Errorf("MatchedPairs() = %d, want 0 after End()", s.MatchedPairs())
	}
	if s.Grid().IsEmpty(Pos{1, 1}) {
		t.Error("cancelled match must not clear tiles")
	}
	for _, e := range rec.log {
		if e != "animate" {
			t.Errorf("unexpected event after End(): %s", e)
		}
	}
	if got := s.Select(Pos{2, 1}); got != OutcomeIgnored {
		t.Errorf("Select() after End() = %v, want ignored", got)
	}
	if s.Phase() != PhaseEnded {
		t.Errorf("Phase() = %v, want ended", s.Phase())
	}
}

func TestSinglePairGameWins(t *testing.T) {
	s, clock, rec := newTestSession(t, [][]TileType{{0, 0}}, 1.3)

	clock.Advance(3 * time.Second)
	s.Select(Pos{1, 1})
	s.Select(Pos{1, 2})
	clock.Advance(testDelay)
	if err := s.Advance(); err != nil {
		t.Fatalf("Advance() failed: %v", err)
	}

	want := []string{"animate", "committed 1/1", "win"}
	if fmt.Sprint(rec.log) != fmt.Sprint(want) {
		t.Errorf("events = %v, want %v", rec.log, want)
	}

	// floor(1000/3 * 1.3) = 433
	if rec.finalScore != 433 {
		t.Errorf("final score = %d, want 433", rec.finalScore)
	}
	if rec.elapsed != 3 {
		t.Errorf("elapsed = %d, want 3", rec.elapsed)
	}
	if !s.IsWon() || s.Phase() != PhaseWon {
		t.Error("session should be won")
	}

	// Time and score freeze at the win
	clock.Advance(time.Minute)
	if s.ElapsedSeconds() != 3 || s.LiveScore() != 433 {
		t.Errorf("after win: elapsed=%d score=%d, want 3 and 433", s.ElapsedSeconds(), s.LiveScore())
	}
	if got := s.Select(Pos{1, 1}); got != OutcomeIgnored {
		t.Errorf("Select() after win = %v, want ignored", got)
	}

	res := s.Result()
	if !res.Won || res.Score != 433 || res.TotalPairs != 1 || res.Difficulty != "test" {
		t.Errorf("Result() = %+v", res)
	}
}

func TestCommitTriggersResolve(t *testing.T) {
	// Removing the right-hand pair leaves a diagonal deadlock.
	s, clock, rec := newTestSession(t, [][]TileType{
		{0, 1, 2},
		{1, 0, 2},
	}, 1)
	s.difficulty.ShuffleBonus = 50

	s.Select(Pos{1, 3})
	if got := s.Select(Pos{2, 3}); got != OutcomeMatched {
		t.Fatalf("Select() = %v, want matched", got)
	}
	clock.Advance(testDelay)
	if err := s.Advance(); err != nil {
		t.Fatalf("Advance() failed: %v", err)
	}

	if !IsSolvable(s.Grid()) {
		t.Error("board must be solvable after commit and resolve")
	}
	if s.Reshuffles() < 1 || len(rec.reshuffles) != s.Reshuffles() {
		t.Errorf("Reshuffles() = %d, events = %d", s.Reshuffles(), len(rec.reshuffles))
	}
	if s.BonusScore() != 50*s.Reshuffles() {
		t.Errorf("BonusScore() = %d with %d reshuffles", s.BonusScore(), s.Reshuffles())
	}
	if s.Grid().Count() != 4 {
		t.Errorf("Count() = %d, want 4", s.Grid().Count())
	}
	if !s.Grid().IsEmpty(Pos{1, 3}) || !s.Grid().IsEmpty(Pos{2, 3}) {
		t.Error("redistribution must not refill cleared cells")
	}
}

func TestNewSessionIsSolvable(t *testing.T) {
	for seed := int64(1); seed <= 30; seed++ {
		s, err := NewSession(Options{
			Difficulty: Difficulty{ID: "hard", Rows: 8, Cols: 6, Multiplier: 1.6, ShuffleBonus: 100},
			TypeCount:  13,
			Seed:       seed,
			Clock:      NewManualClock(epoch),
		})
		if err != nil {
			t.Fatalf("seed %d: NewSession() failed: %v", seed, err)
		}
		if !IsSolvable(s.Grid()) {
			t.Errorf("seed %d: new board is deadlocked", seed)
		}
		if s.TotalPairs() != 24 {
			t.Errorf("TotalPairs() = %d, want 24", s.TotalPairs())
		}
	}
}

func TestNewSessionRejectsBadConfig(t *testing.T) {
	_, err := NewSession(Options{
		Difficulty: Difficulty{ID: "odd", Rows: 3, Cols: 5},
		TypeCount:  4,
	})
	if !errors.Is(err, ErrInvalidBoard) {
		t.Errorf("NewSession() error = %v, want ErrInvalidBoard", err)
	}

	_, err = NewSession(Options{
		Difficulty: Difficulty{ID: "easy", Rows: 2, Cols: 2},
		TypeCount:  0,
	})
	if !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("NewSession() error = %v, want ErrEmptyCatalog", err)
	}
}

// TestFullGamesStaySolvable plays whole games by always taking the hint
// and checks the board is solvable after every commit.
func TestFullGamesStaySolvable(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		clock := NewManualClock(epoch)
		s, err := NewSession(Options{
			Difficulty: Difficulty{ID: "easy", Rows: 6, Cols: 4, Multiplier: 1},
			TypeCount:  13,
			MatchDelay: testDelay,
			Seed:       seed,
			Clock:      clock,
		})
		if err != nil {
			t.Fatalf("NewSession() failed: %v", err)
		}

		for moves := 0; !s.IsWon(); moves++ {
			if moves > s.TotalPairs() {
				t.Fatalf("seed %d: game did not finish", seed)
			}
			mv, ok := s.Hint()
			if !ok {
				t.Fatalf("seed %d: no hint on a live board", seed)
			}
			s.Select(mv.A)
			if got := s.Select(mv.B); got != OutcomeMatched {
				t.Fatalf("seed %d: hinted pair did not match: %v", seed, got)
			}
			clock.Advance(time.Second)
			if err := s.Advance(); err != nil {
				t.Fatalf("Advance() failed: %v", err)
			}
			if !s.IsWon() && !IsSolvable(s.Grid()) {
				t.Fatalf("seed %d: board deadlocked after commit", seed)
			}
		}

		if s.Grid().Count() != 0 {
			t.Errorf("won board still has %d tiles", s.Grid().Count())
		}
	}
}

func TestTilesProjection(t *testing.T) {
	s, _, _ := newTestSession(t, [][]TileType{
		{0, Empty, 0},
		{1, 2, 1},
	}, 1)

	s.Select(Pos{2, 2})
	views := s.Tiles()
	if len(views) != 6 {
		t.Fatalf("Tiles() = %d views, want 6", len(views))
	}
	if !views[4].Selected || views[4].ID != "2-2" {
		t.Errorf("view %+v should be the selected tile", views[4])
	}
	if !views[1].Matched {
		t.Error("empty cell should project as matched")
	}

	s.Select(Pos{1, 1})
	s.Select(Pos{1, 3})
	views = s.Tiles()
	if !views[0].Selected || !views[2].Selected {
		t.Error("pending tiles should stay highlighted")
	}
	if !views[1].OnActivePath {
		t.Error("gap cell should be on the active path")
	}
}
