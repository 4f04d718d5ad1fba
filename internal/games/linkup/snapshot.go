package linkup

// Snapshot contains the observable game state for determinism tests and
// replay. Uses primitive types only for stable serialization.
type Snapshot struct {
	Tick       uint64
	Difficulty string
	Phase      string

	// Board is row-major over playable cells; -1 marks a cleared cell
	Rows  int
	Cols  int
	Board []int

	CursorRow int
	CursorCol int

	Matched    int
	Total      int
	Score      int
	Elapsed    int
	Bonus      int
	Reshuffles int

	Paused bool
	Toast  string
}

// Snapshot returns the current game state as a Snapshot.
func (g *Game) Snapshot() Snapshot {
	snap := Snapshot{
		Tick:       g.tick,
		Difficulty: g.diff.ID,
		CursorRow:  g.cursor.Row,
		CursorCol:  g.cursor.Col,
		Paused:     g.paused,
		Toast:      g.toast,
	}
	if g.session == nil {
		return snap
	}

	grid := g.session.Grid()
	snap.Rows, snap.Cols = grid.Rows(), grid.Cols()
	snap.Board = make([]int, 0, snap.Rows*snap.Cols)
	for _, tv := range g.session.Tiles() {
		snap.Board = append(snap.Board, int(tv.Type))
	}

	res := g.session.Result()
	snap.Phase = g.session.Phase().String()
	snap.Matched = res.MatchedPairs
	snap.Total = res.TotalPairs
	snap.Score = res.Score
	snap.Elapsed = res.ElapsedSeconds
	snap.Bonus = res.BonusScore
	snap.Reshuffles = res.Reshuffles
	return snap
}

// Hash returns a simple hash of the snapshot for determinism testing.
func (snap *Snapshot) Hash() uint64 {
	h := snap.Tick
	h = h*31 + uint64(snap.CursorRow)  //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.CursorCol)  //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.Matched)    //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.Score)      //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.Elapsed)    //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.Bonus)      //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.Reshuffles) //#nosec G115 -- hash computation

	for _, v := range snap.Board {
		h = h*31 + uint64(v+1) //#nosec G115 -- hash computation
	}

	return h
}
