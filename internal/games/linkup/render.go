package linkup

import (
	"fmt"

	"github.com/vovakirdan/linkup/internal/core"
	"github.com/vovakirdan/linkup/internal/games/linkup/engine"
)

// Board cell geometry on screen. Each cell is cellW columns by cellH rows;
// the glyph sits at column 1 with markers at columns 0 and 2.
const (
	cellW   = 4
	cellH   = 2
	hudRows = 2
)

const (
	colorHUD      = core.ColorBrightWhite
	colorFrame    = core.ColorGray
	colorSelected = core.ColorBrightWhite
	colorHint     = core.ColorBrightCyan
	colorPath     = core.ColorBrightYellow
	colorCursor   = core.ColorBrightWhite
	colorToast    = core.ColorYellow
)

// boardSize returns the screen size of a rows×cols board plus its border ring.
func boardSize(rows, cols int) (w, h int) {
	return (cols+2)*cellW - 1, (rows+2)*cellH - 1
}

// cellOrigin returns the screen position of a cell's left marker column.
func (g *Game) cellOrigin(p engine.Pos) (x, y int) {
	return g.board.X + p.Col*cellW, g.board.Y + p.Row*cellH
}

// cellAt maps a screen position to a playable cell.
func (g *Game) cellAt(x, y int) (engine.Pos, bool) {
	if !g.board.Contains(x, y) {
		return engine.Pos{}, false
	}
	p := engine.Pos{
		Row: (y - g.board.Y) / cellH,
		Col: (x - g.board.X) / cellW,
	}
	if g.session == nil || !g.session.Grid().IsInner(p) {
		return engine.Pos{}, false
	}
	return p, true
}

// Render draws the HUD, the board and any overlay.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	if g.session == nil {
		dst.DrawTextCenteredColored(dst.Height()/2, "Could not deal a board", core.ColorBrightRed)
		if g.failed != nil {
			dst.DrawTextCentered(dst.Height()/2+1, g.failed.Error())
		}
		return
	}

	g.renderHUD(dst)

	if g.tooSmall {
		w, h := boardSize(g.diff.Rows, g.diff.Cols)
		dst.DrawTextCenteredColored(dst.Height()/2, "Terminal too small", core.ColorBrightRed)
		dst.DrawTextCentered(dst.Height()/2+1, fmt.Sprintf("need %dx%d", w, h+hudRows))
		return
	}

	g.renderFrame(dst)
	g.renderPaths(dst)
	g.renderTiles(dst)

	switch {
	case g.failed != nil:
		g.renderOverlay(dst, core.ColorBrightRed,
			"NO MOVES LEFT",
			"The board could not be reshuffled",
			"",
			"R: new board  B: menu",
		)
	case g.session.IsWon():
		res := g.session.Result()
		g.renderOverlay(dst, core.ColorBrightGreen,
			"BOARD CLEARED!",
			fmt.Sprintf("Score: %d", res.Score),
			fmt.Sprintf("Time: %ds  Bonus: %d", res.ElapsedSeconds, res.BonusScore),
			"",
			"R: play again  B: menu",
		)
	case g.paused:
		g.renderOverlay(dst, core.ColorBrightYellow,
			"PAUSED",
			"",
			"P: resume  B: menu",
		)
	}
}

func (g *Game) renderHUD(dst *core.Screen) {
	left := fmt.Sprintf(" LINK-UP  %s", g.diff.Title)
	right := fmt.Sprintf("Time %ds  Score %d  Pairs %d/%d ",
		g.session.ElapsedSeconds(),
		g.session.LiveScore(),
		g.session.MatchedPairs(),
		g.session.TotalPairs(),
	)

	dst.DrawTextColored(0, 0, left, colorHUD)
	dst.DrawTextColored(dst.Width()-len(right), 0, right, colorHUD)

	if g.toast != "" {
		dst.DrawTextCenteredColored(1, g.toast, colorToast)
	}
}

// renderPaths draws connector lines for every match waiting to be removed.
func (g *Game) renderPaths(dst *core.Screen) {
	for _, path := range g.session.ActivePaths() {
		for i := 1; i < len(path); i++ {
			ax, ay := g.cellOrigin(path[i-1])
			bx, by := g.cellOrigin(path[i])
			ax, bx = ax+1, bx+1

			if ay == by {
				for x := core.Min(ax, bx); x <= core.Max(ax, bx); x++ {
					dst.SetColored(x, ay, '─', colorPath)
				}
			} else {
				for y := core.Min(ay, by); y <= core.Max(ay, by); y++ {
					dst.SetColored(ax, y, '│', colorPath)
				}
			}
		}
		// Corners
		for i := 1; i < len(path)-1; i++ {
			prev, cur, next := path[i-1], path[i], path[i+1]
			if (prev.Row == cur.Row) == (cur.Row == next.Row) {
				continue
			}
			x, y := g.cellOrigin(cur)
			dst.SetColored(x+1, y, cornerRune(prev, cur, next), colorPath)
		}
	}
}

// cornerRune picks the box-drawing corner joining the two path legs at cur.
func cornerRune(prev, cur, next engine.Pos) rune {
	up := prev.Row < cur.Row || next.Row < cur.Row
	left := prev.Col < cur.Col || next.Col < cur.Col
	switch {
	case up && left:
		return '┘'
	case up:
		return '└'
	case left:
		return '┐'
	default:
		return '┌'
	}
}

func (g *Game) renderTiles(dst *core.Screen) {
	grid := g.session.Grid()

	for r := 1; r <= grid.Rows(); r++ {
		for c := 1; c <= grid.Cols(); c++ {
			p := engine.Pos{Row: r, Col: c}
			x, y := g.cellOrigin(p)

			if p == g.cursor {
				dst.SetColored(x, y+1, '▔', colorCursor)
				dst.SetColored(x+1, y+1, '▔', colorCursor)
				dst.SetColored(x+2, y+1, '▔', colorCursor)
			}

			t := grid.At(p)
			if t == engine.Empty {
				continue
			}

			f := g.faceFor(t)
			dst.SetColored(x+1, y, f.glyph, f.color)

			switch {
			case g.session.IsSelected(p) || g.session.IsPending(p):
				dst.SetColored(x, y, '[', colorSelected)
				dst.SetColored(x+2, y, ']', colorSelected)
			case g.hint != nil && (g.hint.A == p || g.hint.B == p):
				dst.SetColored(x, y, '<', colorHint)
				dst.SetColored(x+2, y, '>', colorHint)
			}
		}
	}
}

// renderFrame outlines the playable cells. The border ring stays open so
// paths routed around the edge remain visible.
func (g *Game) renderFrame(dst *core.Screen) {
	w, h := boardSize(g.diff.Rows, g.diff.Cols)
	inner := core.NewRect(g.board.X+cellW-2, g.board.Y+cellH-1, w-2*cellW+4, h-2*cellH+2)
	dst.DrawBox(inner, colorFrame)
}

func (g *Game) faceFor(t engine.TileType) face {
	if len(g.faces) == 0 {
		return face{glyph: '?'}
	}
	return g.faces[int(t)%len(g.faces)]
}

func (g *Game) renderOverlay(dst *core.Screen, titleColor core.Color, lines ...string) {
	width := 0
	for _, l := range lines {
		width = core.Max(width, len([]rune(l)))
	}
	box := dst.Bounds().CenteredIn(width+6, len(lines)+2)

	dst.DrawRect(box, ' ')
	dst.DrawBox(box, colorFrame)
	for i, l := range lines {
		c := core.ColorDefault
		if i == 0 {
			c = titleColor
		}
		dst.DrawTextColored(box.X+(box.W-len([]rune(l)))/2, box.Y+1+i, l, c)
	}
}
