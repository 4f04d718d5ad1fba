package engine

import (
	"fmt"
	"math/rand"
	"time"
)

// DefaultMaxReshuffles bounds automatic redistribution attempts per resolve.
const DefaultMaxReshuffles = 1000

// Phase is the match controller state.
type Phase int

const (
	PhaseIdle      Phase = iota // No tile selected
	PhaseSelected               // One tile selected
	PhaseAnimating              // At least one match waiting to be removed
	PhaseWon
	PhaseEnded
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSelected:
		return "selected"
	case PhaseAnimating:
		return "animating"
	case PhaseWon:
		return "won"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Outcome describes what a Select call did.
type Outcome int

const (
	OutcomeIgnored Outcome = iota
	OutcomeSelected
	OutcomeDeselected
	OutcomeSwitched
	OutcomeMatched
)

// Options configures a new session.
type Options struct {
	Difficulty    Difficulty
	TypeCount     int           // Size of the tile catalog
	MatchDelay    time.Duration // Gap between path highlight and removal
	MaxReshuffles int           // 0 means DefaultMaxReshuffles
	Seed          int64
	Clock         Clock     // nil means SystemClock
	Sink          EventSink // nil means NopSink
}

// pendingMatch is an accepted pair waiting for its removal time.
type pendingMatch struct {
	a, b  Pos
	path  Path
	dueAt time.Time
}

// Session is one play session: board, selection, pending commits and score.
// It is not safe for concurrent use; a single goroutine drives it.
type Session struct {
	difficulty    Difficulty
	grid          *Grid
	rng           *rand.Rand
	clock         Clock
	sink          EventSink
	matchDelay    time.Duration
	maxReshuffles int

	startTime    time.Time
	finishTime   time.Time
	totalPairs   int
	matchedPairs int
	bonusScore   int
	reshuffles   int
	finalScore   int

	selection *Pos
	pending   []pendingMatch
	won       bool
	ended     bool
}

// NewSession generates a board and makes it solvable. It fails with a
// configuration error for bad dimensions, an empty catalog or a board
// that stays deadlocked after MaxReshuffles attempts.
func NewSession(opts Options) (*Session, error) {
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Sink == nil {
		opts.Sink = NopSink{}
	}
	if opts.MaxReshuffles <= 0 {
		opts.MaxReshuffles = DefaultMaxReshuffles
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	d := opts.Difficulty
	grid, err := NewGrid(d.Rows, d.Cols, opts.TypeCount, rng)
	if err != nil {
		return nil, err
	}

	s := newSession(d, grid, rng, opts)
	if err := s.Resolve(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewSessionWithGrid starts a session on a prepared board. No resolve is
// run, so the caller controls whether the board starts deadlocked.
func NewSessionWithGrid(grid *Grid, opts Options) *Session {
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Sink == nil {
		opts.Sink = NopSink{}
	}
	if opts.MaxReshuffles <= 0 {
		opts.MaxReshuffles = DefaultMaxReshuffles
	}
	d := opts.Difficulty
	d.Rows, d.Cols = grid.Rows(), grid.Cols()
	return newSession(d, grid, rand.New(rand.NewSource(opts.Seed)), opts)
}

func newSession(d Difficulty, grid *Grid, rng *rand.Rand, opts Options) *Session {
	return &Session{
		difficulty:    d,
		grid:          grid,
		rng:           rng,
		clock:         opts.Clock,
		sink:          opts.Sink,
		matchDelay:    opts.MatchDelay,
		maxReshuffles: opts.MaxReshuffles,
		startTime:     opts.Clock.Now(),
		totalPairs:    grid.Count() / 2,
	}
}

// Select applies one player pick at p.
func (s *Session) Select(p Pos) Outcome {
	if s.ended || s.won {
		return OutcomeIgnored
	}
	if !s.grid.IsInner(p) || s.grid.IsEmpty(p) || s.IsPending(p) {
		return OutcomeIgnored
	}

	if s.selection == nil {
		s.selection = &p
		return OutcomeSelected
	}

	prev := *s.selection
	if prev == p {
		s.selection = nil
		return OutcomeDeselected
	}

	if s.grid.At(prev) != s.grid.At(p) {
		s.selection = &p
		return OutcomeSwitched
	}

	path, ok := FindPath(s.grid, prev, p)
	if !ok {
		s.selection = &p
		return OutcomeSwitched
	}

	s.selection = nil
	s.pending = append(s.pending, pendingMatch{
		a:     prev,
		b:     p,
		path:  path,
		dueAt: s.clock.Now().Add(s.matchDelay),
	})
	s.sink.OnMatchAnimate(path)
	return OutcomeMatched
}

// Advance commits every pending match whose delay has elapsed. Once no
// match is pending the resolver runs, so the board the player sees is
// always solvable. A non-nil error means the session could not recover
// and has been ended.
func (s *Session) Advance() error {
	if s.ended {
		return nil
	}
	now := s.clock.Now()
	committed := false
	for len(s.pending) > 0 && !now.Before(s.pending[0].dueAt) {
		m := s.pending[0]
		s.pending = s.pending[1:]
		s.commit(m)
		committed = true
		if s.won {
			return nil
		}
	}
	if committed && len(s.pending) == 0 {
		if err := s.Resolve(); err != nil {
			s.End()
			return err
		}
	}
	return nil
}

func (s *Session) commit(m pendingMatch) {
	s.grid.Clear(m.a)
	s.grid.Clear(m.b)
	s.matchedPairs++
	s.sink.OnMatchCommitted(s.matchedPairs, s.totalPairs)

	if s.matchedPairs >= s.totalPairs {
		s.won = true
		s.finishTime = s.clock.Now()
		elapsed := ElapsedSeconds(s.startTime, s.finishTime)
		s.finalScore = Score(s.totalPairs, elapsed, s.difficulty.Multiplier, s.bonusScore)
		s.selection = nil
		s.sink.OnWin(s.finalScore, elapsed)
	}
}

// Resolve redistributes the remaining tiles until a match exists. Each
// redistribution adds the difficulty's shuffle bonus and clears the
// selection. An empty board needs no resolution.
func (s *Session) Resolve() error {
	for attempt := 0; !IsSolvable(s.grid); attempt++ {
		if s.grid.Count() == 0 {
			return nil
		}
		if attempt >= s.maxReshuffles {
			return fmt.Errorf("engine: %d reshuffles on %dx%d: %w",
				attempt, s.grid.Rows(), s.grid.Cols(), ErrUnsolvable)
		}
		s.grid.Redistribute(s.rng)
		s.bonusScore += s.difficulty.ShuffleBonus
		s.reshuffles++
		s.selection = nil
		s.sink.OnReshuffle(s.difficulty.ShuffleBonus)
	}
	return nil
}

// End stops the session and drops any pending commits.
func (s *Session) End() {
	s.ended = true
	s.pending = nil
	s.selection = nil
}

// Hint returns a connectable pair that is not already pending.
func (s *Session) Hint() (Move, bool) {
	if s.ended || s.won {
		return Move{}, false
	}
	return findMove(s.grid, s.IsPending)
}

// Phase reports the controller state.
func (s *Session) Phase() Phase {
	switch {
	case s.won:
		return PhaseWon
	case s.ended:
		return PhaseEnded
	case len(s.pending) > 0:
		return PhaseAnimating
	case s.selection != nil:
		return PhaseSelected
	default:
		return PhaseIdle
	}
}

// Selection returns the selected cell, if any.
func (s *Session) Selection() (Pos, bool) {
	if s.selection == nil {
		return Pos{}, false
	}
	return *s.selection, true
}

// IsSelected reports whether p is the current selection.
func (s *Session) IsSelected(p Pos) bool {
	return s.selection != nil && *s.selection == p
}

// IsPending reports whether p belongs to a match awaiting removal.
func (s *Session) IsPending(p Pos) bool {
	for _, m := range s.pending {
		if m.a == p || m.b == p {
			return true
		}
	}
	return false
}

// OnActivePath reports whether p lies on a pending match's path.
func (s *Session) OnActivePath(p Pos) bool {
	for _, m := range s.pending {
		if m.path.Contains(p) {
			return true
		}
	}
	return false
}

// ActivePaths returns the paths of all pending matches.
func (s *Session) ActivePaths() []Path {
	paths := make([]Path, len(s.pending))
	for i, m := range s.pending {
		paths[i] = m.path
	}
	return paths
}

// Grid exposes the board for read-only use.
func (s *Session) Grid() *Grid { return s.grid }

// Difficulty returns the session's difficulty.
func (s *Session) Difficulty() Difficulty { return s.difficulty }

// IsWon reports whether every pair has been matched.
func (s *Session) IsWon() bool { return s.matchedPairs == s.totalPairs }

// IsEnded reports whether End was called.
func (s *Session) IsEnded() bool { return s.ended }

// MatchedPairs returns the number of committed matches.
func (s *Session) MatchedPairs() int { return s.matchedPairs }

// TotalPairs returns the number of pairs on the starting board.
func (s *Session) TotalPairs() int { return s.totalPairs }

// BonusScore returns the accumulated reshuffle bonus.
func (s *Session) BonusScore() int { return s.bonusScore }

// Reshuffles returns how many automatic redistributions happened.
func (s *Session) Reshuffles() int { return s.reshuffles }

// ElapsedSeconds returns play time, frozen once the session is won.
func (s *Session) ElapsedSeconds() int {
	if s.won {
		return ElapsedSeconds(s.startTime, s.finishTime)
	}
	return ElapsedSeconds(s.startTime, s.clock.Now())
}

// LiveScore recomputes the score from the current session state.
func (s *Session) LiveScore() int {
	if s.won {
		return s.finalScore
	}
	return Score(s.matchedPairs, s.ElapsedSeconds(), s.difficulty.Multiplier, s.bonusScore)
}

// FinalScore returns the score fixed at win time, or 0 before that.
func (s *Session) FinalScore() int { return s.finalScore }

// Result summarizes the session for persistence.
type Result struct {
	Difficulty     string
	Score          int
	ElapsedSeconds int
	MatchedPairs   int
	TotalPairs     int
	BonusScore     int
	Reshuffles     int
	Won            bool
}

// Result returns the session summary.
func (s *Session) Result() Result {
	return Result{
		Difficulty:     s.difficulty.ID,
		Score:          s.LiveScore(),
		ElapsedSeconds: s.ElapsedSeconds(),
		MatchedPairs:   s.matchedPairs,
		TotalPairs:     s.totalPairs,
		BonusScore:     s.bonusScore,
		Reshuffles:     s.reshuffles,
		Won:            s.won,
	}
}
