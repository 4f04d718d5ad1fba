package engine

// MaxTurns is the number of direction changes a connecting path may use.
const MaxTurns = 2

// Direction is a movement direction along a path.
type Direction int

const (
	DirNone Direction = iota
	DirUp
	DirDown
	DirLeft
	DirRight
)

var steps = [...]struct {
	dir    Direction
	dr, dc int
}{
	{DirUp, -1, 0},
	{DirDown, 1, 0},
	{DirLeft, 0, -1},
	{DirRight, 0, 1},
}

// Path is an ordered list of cells from source to destination, inclusive.
type Path []Pos

// Turns counts the direction changes along the path.
func (p Path) Turns() int {
	turns := 0
	prev := DirNone
	for i := 1; i < len(p); i++ {
		d := direction(p[i-1], p[i])
		if prev != DirNone && d != prev {
			turns++
		}
		prev = d
	}
	return turns
}

// Contains reports whether pos lies on the path.
func (p Path) Contains(pos Pos) bool {
	for _, q := range p {
		if q == pos {
			return true
		}
	}
	return false
}

func direction(a, b Pos) Direction {
	switch {
	case b.Row < a.Row:
		return DirUp
	case b.Row > a.Row:
		return DirDown
	case b.Col < a.Col:
		return DirLeft
	case b.Col > a.Col:
		return DirRight
	default:
		return DirNone
	}
}

// searchState is a BFS node. The same cell may be reached again with a
// different heading or turn count, so all three are part of the key.
type searchState struct {
	pos   Pos
	dir   Direction
	turns int
}

type searchNode struct {
	searchState
	parent int
}

// FindPath searches for the shortest route from one tile to another that
// bends at most MaxTurns times and crosses only empty cells. The
// destination may be occupied. Returns false when no route exists.
func FindPath(g *Grid, from, to Pos) (Path, bool) {
	if from == to {
		return nil, false
	}

	nodes := []searchNode{{searchState: searchState{pos: from}, parent: -1}}
	visited := make(map[searchState]bool)

	for head := 0; head < len(nodes); head++ {
		cur := nodes[head]
		for _, s := range steps {
			next := Pos{Row: cur.pos.Row + s.dr, Col: cur.pos.Col + s.dc}
			if !g.InBounds(next) {
				continue
			}
			turns := cur.turns
			if cur.dir != DirNone && cur.dir != s.dir {
				turns++
			}
			if turns > MaxTurns {
				continue
			}
			if next == to {
				return buildPath(nodes, head, to), true
			}
			if !g.IsEmpty(next) {
				continue
			}
			st := searchState{pos: next, dir: s.dir, turns: turns}
			if visited[st] {
				continue
			}
			visited[st] = true
			nodes = append(nodes, searchNode{searchState: st, parent: head})
		}
	}
	return nil, false
}

func buildPath(nodes []searchNode, last int, to Pos) Path {
	var rev Path
	rev = append(rev, to)
	for i := last; i >= 0; i = nodes[i].parent {
		rev = append(rev, nodes[i].pos)
	}
	path := make(Path, len(rev))
	for i, p := range rev {
		path[len(rev)-1-i] = p
	}
	return path
}

// ExistsPath reports whether a and b can be connected.
func ExistsPath(g *Grid, a, b Pos) bool {
	_, ok := FindPath(g, a, b)
	return ok
}
