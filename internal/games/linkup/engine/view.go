package engine

// TileView is the presentation record for one playable cell.
type TileView struct {
	ID           string
	Row          int
	Col          int
	Type         TileType // Empty once matched
	Selected     bool
	Matched      bool
	OnActivePath bool
}

// Tiles projects the board for a renderer. Cells are listed row-major.
func (s *Session) Tiles() []TileView {
	views := make([]TileView, 0, s.grid.Rows()*s.grid.Cols())
	for r := 1; r <= s.grid.Rows(); r++ {
		for c := 1; c <= s.grid.Cols(); c++ {
			p := Pos{Row: r, Col: c}
			t := s.grid.At(p)
			views = append(views, TileView{
				ID:           p.String(),
				Row:          r,
				Col:          c,
				Type:         t,
				Selected:     s.IsSelected(p) || s.IsPending(p),
				Matched:      t == Empty,
				OnActivePath: s.OnActivePath(p),
			})
		}
	}
	return views
}
