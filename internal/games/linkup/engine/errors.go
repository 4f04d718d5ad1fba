package engine

import "errors"

// Configuration errors. A session refuses to start when any of these occur.
var (
	ErrInvalidBoard = errors.New("invalid board dimensions")
	ErrEmptyCatalog = errors.New("empty tile catalog")
	ErrUnsolvable   = errors.New("board could not be made solvable")
)
