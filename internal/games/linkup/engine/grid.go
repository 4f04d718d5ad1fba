package engine

import (
	"fmt"
	"math/rand"
)

// TileType identifies the face a tile shows. Values index the tile catalog.
type TileType int

// Empty marks a cell with no tile.
const Empty TileType = -1

// Pos is a cell coordinate in the padded grid. Playable cells are
// 1..Rows and 1..Cols; row 0, col 0, row Rows+1 and col Cols+1 form the
// always-empty border ring.
type Pos struct {
	Row, Col int
}

// String returns "r-c", the identifier used in tile views.
func (p Pos) String() string {
	return fmt.Sprintf("%d-%d", p.Row, p.Col)
}

// Tile is an occupied cell and the type it holds.
type Tile struct {
	Pos  Pos
	Type TileType
}

// Grid is the padded board.
type Grid struct {
	rows  int
	cols  int
	cells [][]TileType
}

// NewGrid builds a rows×cols board with rows*cols/2 pairs. Type ids are
// assigned cyclically from typeCount and placed by a uniform permutation.
func NewGrid(rows, cols, typeCount int, rng *rand.Rand) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("engine: %dx%d: %w", rows, cols, ErrInvalidBoard)
	}
	if (rows*cols)%2 != 0 {
		return nil, fmt.Errorf("engine: %dx%d has an odd cell count: %w", rows, cols, ErrInvalidBoard)
	}
	if typeCount < 1 {
		return nil, fmt.Errorf("engine: %w", ErrEmptyCatalog)
	}

	pairs := rows * cols / 2
	types := make([]TileType, 0, rows*cols)
	for i := 0; i < pairs; i++ {
		t := TileType(i % typeCount)
		types = append(types, t, t)
	}
	rng.Shuffle(len(types), func(i, j int) {
		types[i], types[j] = types[j], types[i]
	})

	g := newEmptyGrid(rows, cols)
	idx := 0
	for r := 1; r <= rows; r++ {
		for c := 1; c <= cols; c++ {
			g.cells[r][c] = types[idx]
			idx++
		}
	}
	return g, nil
}

// GridFromRows builds a grid from an explicit inner layout. Empty (-1)
// entries leave the cell empty. All rows must have the same length.
func GridFromRows(layout [][]TileType) *Grid {
	rows := len(layout)
	cols := 0
	if rows > 0 {
		cols = len(layout[0])
	}
	g := newEmptyGrid(rows, cols)
	for r, line := range layout {
		for c, t := range line {
			g.cells[r+1][c+1] = t
		}
	}
	return g
}

func newEmptyGrid(rows, cols int) *Grid {
	cells := make([][]TileType, rows+2)
	for r := range cells {
		cells[r] = make([]TileType, cols+2)
		for c := range cells[r] {
			cells[r][c] = Empty
		}
	}
	return &Grid{rows: rows, cols: cols, cells: cells}
}

// Rows returns the number of playable rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of playable columns.
func (g *Grid) Cols() int { return g.cols }

// InBounds reports whether p lies inside the padded grid.
func (g *Grid) InBounds(p Pos) bool {
	return p.Row >= 0 && p.Row < g.rows+2 && p.Col >= 0 && p.Col < g.cols+2
}

// IsInner reports whether p is a playable cell.
func (g *Grid) IsInner(p Pos) bool {
	return p.Row >= 1 && p.Row <= g.rows && p.Col >= 1 && p.Col <= g.cols
}

// At returns the type at p. Calling it outside the padded grid panics.
func (g *Grid) At(p Pos) TileType {
	return g.cells[p.Row][p.Col]
}

// IsEmpty reports whether p holds no tile.
func (g *Grid) IsEmpty(p Pos) bool {
	return g.At(p) == Empty
}

// Clear removes the tile at p.
func (g *Grid) Clear(p Pos) {
	g.cells[p.Row][p.Col] = Empty
}

// Remaining lists every occupied cell in row-major order.
func (g *Grid) Remaining() []Tile {
	var tiles []Tile
	for r := 1; r <= g.rows; r++ {
		for c := 1; c <= g.cols; c++ {
			if t := g.cells[r][c]; t != Empty {
				tiles = append(tiles, Tile{Pos: Pos{Row: r, Col: c}, Type: t})
			}
		}
	}
	return tiles
}

// Count returns the number of occupied cells.
func (g *Grid) Count() int {
	n := 0
	for r := 1; r <= g.rows; r++ {
		for c := 1; c <= g.cols; c++ {
			if g.cells[r][c] != Empty {
				n++
			}
		}
	}
	return n
}

// Redistribute shuffles the types among the occupied cells. Empty cells
// stay empty and the multiset of types is unchanged.
func (g *Grid) Redistribute(rng *rand.Rand) {
	tiles := g.Remaining()
	types := make([]TileType, len(tiles))
	for i, t := range tiles {
		types[i] = t.Type
	}
	rng.Shuffle(len(types), func(i, j int) {
		types[i], types[j] = types[j], types[i]
	})
	for i, t := range tiles {
		g.cells[t.Pos.Row][t.Pos.Col] = types[i]
	}
}
