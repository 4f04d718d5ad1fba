package engine

// Move is a pair of same-typed tiles that can currently be connected.
type Move struct {
	A, B Pos
}

// FindMove returns the first connectable pair in row-major order.
func FindMove(g *Grid) (Move, bool) {
	return findMove(g, nil)
}

// IsSolvable reports whether at least one legal match exists.
func IsSolvable(g *Grid) bool {
	_, ok := FindMove(g)
	return ok
}

// findMove scans every unordered same-typed pair. Tiles for which skip
// returns true are never proposed, though they still block paths.
func findMove(g *Grid, skip func(Pos) bool) (Move, bool) {
	tiles := g.Remaining()
	for i := 0; i < len(tiles); i++ {
		if skip != nil && skip(tiles[i].Pos) {
			continue
		}
		for j := i + 1; j < len(tiles); j++ {
			if tiles[i].Type != tiles[j].Type {
				continue
			}
			if skip != nil && skip(tiles[j].Pos) {
				continue
			}
			if ExistsPath(g, tiles[i].Pos, tiles[j].Pos) {
				return Move{A: tiles[i].Pos, B: tiles[j].Pos}, true
			}
		}
	}
	return Move{}, false
}
