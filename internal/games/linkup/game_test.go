package linkup

import (
	"reflect"
	"strings"
	"testing"

	"github.com/vovakirdan/linkup/internal/config"
	"github.com/vovakirdan/linkup/internal/core"
	"github.com/vovakirdan/linkup/internal/games/linkup/engine"
	"github.com/vovakirdan/linkup/internal/registry"
)

func testConfig(seed int64) core.RuntimeConfig {
	return core.RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
		Seed:     seed,
	}
}

func newTestGame(t *testing.T, difficulty string, seed int64) *Game {
	t.Helper()
	g := New(config.DefaultLinkupConfig(), difficulty)
	g.Reset(testConfig(seed))
	if g.Err() != nil {
		t.Fatalf("Reset failed: %v", g.Err())
	}
	return g
}

func frame(actions ...core.Action) core.InputFrame {
	in := core.NewInputFrame()
	for _, a := range actions {
		in.Set(a)
	}
	return in
}

// clickAt builds a frame that clicks the glyph of each cell in order.
func clickAt(g *Game, cells ...engine.Pos) core.InputFrame {
	in := core.NewInputFrame()
	for _, p := range cells {
		x, y := g.cellOrigin(p)
		in.AddClick(x+1, y)
	}
	return in
}

func stepN(g *Game, n int) {
	for range n {
		g.Step(core.NewInputFrame())
	}
}

func TestRegisteredDifficulties(t *testing.T) {
	Register(config.DefaultLinkupConfig())
	// A second load must not panic on the ids already present
	Register(config.DefaultLinkupConfig())

	var got []registry.GameInfo
	for _, info := range registry.List() {
		if _, ok := DifficultyFromID(info.ID); ok {
			got = append(got, info)
		}
	}

	want := []string{"linkup_easy", "linkup_medium", "linkup_hard"}
	if len(got) < len(want) {
		t.Fatalf("expected at least %d registered games, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("games[%d].ID = %q, expected %q", i, got[i].ID, id)
		}
	}
	if got[0].Title != "Link-Up Easy" {
		t.Errorf("Title = %q", got[0].Title)
	}

	if d, ok := DifficultyFromID("linkup_hard"); !ok || d != "hard" {
		t.Errorf("DifficultyFromID() = %q, %v", d, ok)
	}
	if _, ok := DifficultyFromID("snake"); ok {
		t.Error("DifficultyFromID() accepted a foreign id")
	}
}

func TestGameDeterminism(t *testing.T) {
	inputs := make([]core.InputFrame, 300)
	for i := range inputs {
		switch {
		case i%7 == 0:
			inputs[i] = frame(core.ActionRight)
		case i%11 == 0:
			inputs[i] = frame(core.ActionDown)
		case i%5 == 0:
			inputs[i] = frame(core.ActionSelect)
		case i%40 == 0:
			inputs[i] = frame(core.ActionHint)
		default:
			inputs[i] = core.NewInputFrame()
		}
	}

	run := func() Snapshot {
		g := newTestGame(t, "medium", 12345)
		for _, in := range inputs {
			g.Step(in)
		}
		return g.Snapshot()
	}

	snap1 := run()
	snap2 := run()

	if snap1.Hash() != snap2.Hash() {
		t.Errorf("Determinism failed: hashes differ. Run1=%d, Run2=%d", snap1.Hash(), snap2.Hash())
	}
	if !reflect.DeepEqual(snap1, snap2) {
		t.Errorf("Determinism failed: snapshots differ\n%+v\n%+v", snap1, snap2)
	}
}

func TestDifferentSeedsDealDifferentBoards(t *testing.T) {
	a := newTestGame(t, "hard", 1).Snapshot()
	b := newTestGame(t, "hard", 2).Snapshot()
	if reflect.DeepEqual(a.Board, b.Board) {
		t.Error("seeds 1 and 2 dealt identical boards")
	}
}

func TestCursorClamp(t *testing.T) {
	g := newTestGame(t, "easy", 7)

	for range 10 {
		g.Step(frame(core.ActionUp))
		g.Step(frame(core.ActionLeft))
	}
	if g.cursor != (engine.Pos{Row: 1, Col: 1}) {
		t.Errorf("cursor = %v, expected (1,1)", g.cursor)
	}

	for range 20 {
		g.Step(frame(core.ActionDown))
		g.Step(frame(core.ActionRight))
	}
	if g.cursor != (engine.Pos{Row: 6, Col: 4}) {
		t.Errorf("cursor = %v, expected (6,4)", g.cursor)
	}
}

func TestKeyboardSelect(t *testing.T) {
	g := newTestGame(t, "easy", 7)

	g.Step(frame(core.ActionSelect))
	if !g.session.IsSelected(engine.Pos{Row: 1, Col: 1}) {
		t.Fatal("select did not pick the cursor cell")
	}
	g.Step(frame(core.ActionSelect))
	if _, ok := g.session.Selection(); ok {
		t.Error("second select on the same cell should deselect")
	}
}

func TestClicksPlayFullGame(t *testing.T) {
	g := newTestGame(t, "easy", 99)
	delayTicks := 60*config.DefaultLinkupConfig().MatchDelayMS/1000 + 1

	for guard := 0; !g.State().Won; guard++ {
		if guard > 100 {
			t.Fatal("game did not finish")
		}
		mv, ok := g.session.Hint()
		if !ok {
			t.Fatalf("no hint on an unfinished board: %v", g.Err())
		}
		g.Step(clickAt(g, mv.A, mv.B))
		if g.session.Phase() != engine.PhaseAnimating {
			t.Fatalf("clicking a hinted pair left phase %v", g.session.Phase())
		}
		stepN(g, delayTicks)
	}

	state := g.State()
	if !state.GameOver || state.Score <= 0 {
		t.Errorf("State() = %+v", state)
	}

	rep := g.Report()
	if !rep.Won || rep.GameID != "linkup_easy" || rep.MatchedPairs != 12 || rep.TotalPairs != 12 {
		t.Errorf("Report() = %+v", rep)
	}

	// Input is ignored once the board is cleared
	before := g.Snapshot()
	g.Step(frame(core.ActionRight))
	after := g.Snapshot()
	if after.CursorCol != before.CursorCol || after.Score != before.Score {
		t.Error("won game still reacts to input")
	}
}

func TestClickOutsideBoardIgnored(t *testing.T) {
	g := newTestGame(t, "easy", 3)

	in := core.NewInputFrame()
	in.AddClick(0, 0)
	in.AddClick(g.board.X+1, g.board.Y) // border ring
	g.Step(in)

	if _, ok := g.session.Selection(); ok {
		t.Error("click outside the playable cells selected a tile")
	}
}

func TestElapsedFollowsTicks(t *testing.T) {
	g := newTestGame(t, "easy", 5)
	stepN(g, 180)

	if got := g.Snapshot().Elapsed; got != 3 {
		t.Errorf("Elapsed after 180 ticks at 60Hz = %d, expected 3", got)
	}
	if got := g.State().Score; got != 0 {
		t.Errorf("Score with no matches = %d, expected 0", got)
	}
}

func TestPauseFreezesClock(t *testing.T) {
	g := newTestGame(t, "easy", 5)
	stepN(g, 120)

	g.Step(frame(core.ActionPause))
	if !g.State().Paused {
		t.Fatal("pause did not pause")
	}
	stepN(g, 600)
	if got := g.Snapshot().Elapsed; got != 2 {
		t.Errorf("Elapsed while paused = %d, expected 2", got)
	}

	g.Step(frame(core.ActionPause))
	if g.State().Paused {
		t.Error("second pause did not resume")
	}
}

func TestCustomDifficultyIsRegistered(t *testing.T) {
	cfg := config.DefaultLinkupConfig()
	cfg.Difficulties = append(cfg.Difficulties, config.DifficultyConfig{
		ID: "expert", Title: "Expert", Rows: 8, Cols: 8, Multiplier: 2.0, ShuffleBonus: 150,
	})
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	Register(cfg)

	if !registry.Exists("linkup_expert") {
		t.Fatal("linkup_expert was not registered")
	}
	game, err := registry.Create("linkup_expert")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if game.Title() != "Link-Up Expert" {
		t.Errorf("Title = %q", game.Title())
	}

	game.Reset(testConfig(3))
	g := game.(*Game)
	if g.Err() != nil {
		t.Fatalf("Reset failed: %v", g.Err())
	}
	rep := g.Report()
	if rep.GameID != "linkup_expert" || rep.Difficulty != "expert" || rep.TotalPairs != 32 {
		t.Errorf("Report() = %+v, expected the 8x8 expert tier", rep)
	}
}

func TestMissingDifficultyDoesNotFallBack(t *testing.T) {
	cfg := config.DefaultLinkupConfig()
	cfg.Difficulties = cfg.Difficulties[:1]

	g := New(cfg, "hard")
	g.Reset(testConfig(1))
	if g.Err() == nil {
		t.Fatal("Reset() dealt a board for a tier the config does not define")
	}
	if !g.State().GameOver {
		t.Error("failed game should report game over")
	}
	if rep := g.Report(); rep.GameID != "linkup_hard" || rep.Difficulty != "hard" || rep.Won {
		t.Errorf("Report() = %+v", rep)
	}

	screen := core.NewScreen(80, 24)
	g.Render(screen)
	if !strings.Contains(screen.String(), "Could not deal a board") {
		t.Error("render should explain the failure")
	}
}

func TestTooSmallTerminal(t *testing.T) {
	g := New(config.DefaultLinkupConfig(), "easy")
	g.Reset(core.RuntimeConfig{ScreenW: 20, ScreenH: 10, TickRate: 60, Seed: 1})

	if !g.State().Paused {
		t.Fatal("undersized terminal should pause the game")
	}
	board := g.Snapshot().Board

	screen := core.NewScreen(20, 10)
	g.Render(screen)
	if !strings.Contains(screen.String(), "too small") {
		t.Error("render should explain the terminal is too small")
	}

	g.Resize(80, 24)
	if g.State().Paused {
		t.Error("game still paused after growing the terminal")
	}
	if !reflect.DeepEqual(board, g.Snapshot().Board) {
		t.Error("resize dealt a new board")
	}
}

func TestRenderShowsBoard(t *testing.T) {
	g := newTestGame(t, "easy", 11)
	screen := core.NewScreen(80, 24)
	g.Render(screen)

	out := screen.String()
	for _, want := range []string{"LINK-UP", "Score", "Pairs 0/12"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q", want)
		}
	}

	p := engine.Pos{Row: 1, Col: 1}
	x, y := g.cellOrigin(p)
	want := g.faceFor(g.session.Grid().At(p))
	cell := screen.GetCell(x+1, y)
	if cell.Rune != want.glyph || cell.Color != want.color {
		t.Errorf("cell (1,1) rendered as %q/%v, expected %q/%v", cell.Rune, cell.Color, want.glyph, want.color)
	}
}

func TestRenderMarksSelection(t *testing.T) {
	g := newTestGame(t, "easy", 11)
	g.Step(frame(core.ActionSelect))

	screen := core.NewScreen(80, 24)
	g.Render(screen)

	x, y := g.cellOrigin(engine.Pos{Row: 1, Col: 1})
	if screen.Get(x, y) != '[' || screen.Get(x+2, y) != ']' {
		t.Error("selected tile is not bracketed")
	}
}

func TestHintExpires(t *testing.T) {
	g := newTestGame(t, "easy", 21)

	g.Step(frame(core.ActionHint))
	if g.hint == nil {
		t.Fatal("hint action did not show a hint")
	}
	if !engine.ExistsPath(g.session.Grid(), g.hint.A, g.hint.B) {
		t.Error("hinted pair is not connectable")
	}

	stepN(g, 60*config.DefaultLinkupConfig().HintMS/1000)
	if g.hint != nil {
		t.Error("hint should expire")
	}
}

func TestReshuffleToast(t *testing.T) {
	g := newTestGame(t, "medium", 4)

	deadlock := engine.GridFromRows([][]engine.TileType{
		{0, 1},
		{1, 0},
	})
	g.session = engine.NewSessionWithGrid(deadlock, engine.Options{
		Difficulty: engine.Difficulty{ID: "medium", Multiplier: 1.3, ShuffleBonus: 50},
		Seed:       4,
		Clock:      g.clock,
		Sink:       events{g},
	})
	if err := g.session.Resolve(); err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}

	if g.toast != "Auto-shuffle +50!" {
		t.Errorf("toast = %q", g.toast)
	}

	stepN(g, 60*config.DefaultLinkupConfig().ToastMS/1000)
	if g.toast != "" {
		t.Errorf("toast should expire, still %q", g.toast)
	}

	events{g}.OnReshuffle(0)
	if g.toast != "Auto-shuffle (no bonus)" {
		t.Errorf("zero-bonus toast = %q", g.toast)
	}
}
