// Package linkup adapts the connect-pairs engine to the platform's
// registry.Game interface: a keyboard/mouse cursor, a tick-driven clock
// and a terminal rendering of the board.
package linkup

import (
	"strconv"
	"strings"
	"time"

	"github.com/vovakirdan/linkup/internal/config"
	"github.com/vovakirdan/linkup/internal/core"
	"github.com/vovakirdan/linkup/internal/games/linkup/engine"
	"github.com/vovakirdan/linkup/internal/registry"
)

// GameID returns the registry id for a difficulty, e.g. "linkup_easy".
func GameID(difficulty string) string {
	return "linkup_" + difficulty
}

// DifficultyFromID extracts the difficulty from a registry id.
func DifficultyFromID(id string) (string, bool) {
	return strings.CutPrefix(id, "linkup_")
}

// Register adds one game per configured difficulty, in config order.
// Tiers that are already registered are left alone.
func Register(cfg config.LinkupConfig) {
	for _, d := range cfg.Difficulties {
		id := GameID(d.ID)
		if registry.Exists(id) {
			continue
		}
		difficulty := d.ID
		registry.Register(id, func() registry.Game {
			return New(cfg, difficulty)
		})
	}
}

// face is a tile type's on-screen look.
type face struct {
	glyph rune
	color core.Color
}

// Game implements registry.Game for one difficulty tier.
type Game struct {
	difficultyID string
	cfg          config.LinkupConfig

	diff    config.DifficultyConfig
	faces   []face
	session *engine.Session
	clock   *engine.ManualClock
	tick    uint64
	failed  error

	// Game time is derived from unpaused ticks so it never drifts
	tickRate    int
	playTicks   int64
	playElapsed time.Duration

	cursor engine.Pos

	screenW int
	screenH int
	board   core.Rect // Screen area of the board including the border ring

	paused   bool
	tooSmall bool

	toast      string
	toastUntil time.Time
	hint       *engine.Move
	hintUntil  time.Time
}

// New creates a game for one of cfg's difficulties.
func New(cfg config.LinkupConfig, difficulty string) *Game {
	return &Game{difficultyID: difficulty, cfg: cfg}
}

// ID returns the game identifier.
func (g *Game) ID() string {
	return GameID(g.difficultyID)
}

// Title returns the display name.
func (g *Game) Title() string {
	if d, err := g.cfg.Difficulty(g.difficultyID); err == nil && d.Title != "" {
		return "Link-Up " + d.Title
	}
	if g.difficultyID == "" {
		return "Link-Up"
	}
	return "Link-Up " + strings.ToUpper(g.difficultyID[:1]) + g.difficultyID[1:]
}

// Reset deals a new board. A difficulty the config does not define
// leaves the game failed; it never plays another tier under this id.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	tickRate := cfg.TickRate
	if tickRate <= 0 {
		tickRate = 60
	}
	g.tickRate = tickRate
	g.tick = 0
	g.playTicks = 0
	g.playElapsed = 0
	g.clock = engine.NewManualClock(time.Unix(0, 0))

	g.screenW = cfg.ScreenW
	g.screenH = cfg.ScreenH
	g.paused = false
	g.toast = ""
	g.hint = nil
	g.failed = nil
	g.cursor = engine.Pos{Row: 1, Col: 1}

	g.session = nil
	g.faces = buildFaces(g.cfg.Tiles)
	g.diff, g.failed = g.cfg.Difficulty(g.difficultyID)
	if g.failed != nil {
		return
	}

	g.session, g.failed = engine.NewSession(engine.Options{
		Difficulty:    g.diff.Engine(),
		TypeCount:     len(g.faces),
		MatchDelay:    g.cfg.MatchDelay(),
		MaxReshuffles: g.cfg.MaxReshuffles,
		Seed:          cfg.Seed,
		Clock:         g.clock,
		Sink:          events{g},
	})

	g.layout()
}

func buildFaces(tiles []config.TileFace) []face {
	faces := make([]face, 0, len(tiles))
	for _, t := range tiles {
		r := []rune(t.Glyph)
		if len(r) == 0 {
			continue
		}
		c, _ := core.ParseColor(t.Color)
		faces = append(faces, face{glyph: r[0], color: c})
	}
	return faces
}

// Resize re-centers the board for a new terminal size. The deal is kept.
func (g *Game) Resize(width, height int) {
	g.screenW = width
	g.screenH = height
	g.layout()
}

// layout positions the board under the HUD and checks it fits.
func (g *Game) layout() {
	w, h := boardSize(g.diff.Rows, g.diff.Cols)
	area := core.NewRect(0, hudRows, g.screenW, g.screenH-hudRows)
	g.board = area.CenteredIn(w, h)
	g.tooSmall = !area.Fits(w, h)
}

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	g.tick++

	if g.session == nil {
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionPause) && !g.session.IsWon() {
		g.paused = !g.paused
	}
	if g.paused || g.tooSmall {
		return core.StepResult{State: g.State()}
	}

	g.advanceClock()

	if g.session.Phase() != engine.PhaseWon && g.session.Phase() != engine.PhaseEnded {
		g.handleInput(in)
	}

	if err := g.session.Advance(); err != nil {
		g.failed = err
	}

	g.expire()
	return core.StepResult{State: g.State()}
}

func (g *Game) advanceClock() {
	g.playTicks++
	next := time.Duration(g.playTicks) * time.Second / time.Duration(g.tickRate)
	g.clock.Advance(next - g.playElapsed)
	g.playElapsed = next
}

func (g *Game) handleInput(in core.InputFrame) {
	rows, cols := g.diff.Rows, g.diff.Cols

	switch {
	case in.Has(core.ActionUp):
		g.cursor.Row = core.Clamp(g.cursor.Row-1, 1, rows)
	case in.Has(core.ActionDown):
		g.cursor.Row = core.Clamp(g.cursor.Row+1, 1, rows)
	case in.Has(core.ActionLeft):
		g.cursor.Col = core.Clamp(g.cursor.Col-1, 1, cols)
	case in.Has(core.ActionRight):
		g.cursor.Col = core.Clamp(g.cursor.Col+1, 1, cols)
	}

	for _, c := range in.Clicks {
		if p, ok := g.cellAt(c.X, c.Y); ok {
			g.cursor = p
			g.session.Select(p)
		}
	}

	if in.Has(core.ActionSelect) {
		g.session.Select(g.cursor)
	}

	if in.Has(core.ActionHint) {
		if mv, ok := g.session.Hint(); ok {
			g.hint = &mv
			g.hintUntil = g.clock.Now().Add(g.cfg.HintDuration())
		}
	}
}

// expire drops the toast and hint once their time is up or the hinted
// tiles are gone.
func (g *Game) expire() {
	now := g.clock.Now()
	if g.toast != "" && !now.Before(g.toastUntil) {
		g.toast = ""
	}
	if g.hint == nil {
		return
	}
	grid := g.session.Grid()
	if !now.Before(g.hintUntil) ||
		grid.IsEmpty(g.hint.A) || grid.IsEmpty(g.hint.B) ||
		g.session.IsPending(g.hint.A) || g.session.IsPending(g.hint.B) {
		g.hint = nil
	}
}

func (g *Game) showToast(msg string) {
	g.toast = msg
	g.toastUntil = g.clock.Now().Add(g.cfg.ToastDuration())
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	if g.session == nil {
		return core.GameState{GameOver: true}
	}
	return core.GameState{
		Score:    g.session.LiveScore(),
		GameOver: g.session.IsWon() || g.failed != nil,
		Won:      g.session.IsWon(),
		Paused:   g.paused || g.tooSmall,
	}
}

// Report describes the finished (or abandoned) game for the leaderboard.
func (g *Game) Report() core.GameReport {
	if g.session == nil {
		return core.GameReport{GameID: g.ID(), Difficulty: g.difficultyID}
	}
	res := g.session.Result()
	return core.GameReport{
		GameID:       g.ID(),
		Difficulty:   res.Difficulty,
		Score:        res.Score,
		ElapsedSecs:  res.ElapsedSeconds,
		MatchedPairs: res.MatchedPairs,
		TotalPairs:   res.TotalPairs,
		Bonus:        res.BonusScore,
		Reshuffles:   res.Reshuffles,
		Won:          res.Won,
	}
}

// Err returns the error that stopped the game, if any.
func (g *Game) Err() error {
	return g.failed
}

// events forwards engine notifications into game state.
type events struct {
	g *Game
}

func (e events) OnMatchAnimate(engine.Path) {}

func (e events) OnMatchCommitted(int, int) {}

func (e events) OnReshuffle(bonus int) {
	if bonus > 0 {
		e.g.showToast("Auto-shuffle +" + strconv.Itoa(bonus) + "!")
		return
	}
	e.g.showToast("Auto-shuffle (no bonus)")
}

func (e events) OnWin(int, int) {
	e.g.hint = nil
	e.g.toast = ""
}

var (
	_ registry.Reporter = (*Game)(nil)
	_ registry.Resizer  = (*Game)(nil)
)
