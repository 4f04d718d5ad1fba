package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/linkup/internal/games/linkup"
	"github.com/vovakirdan/linkup/internal/games/linkup/engine"
)

var dealCmd = &cobra.Command{
	Use:   "deal [difficulty]",
	Short: "Print a dealt board",
	Long: `Deal a board exactly as a game would and print it with its
solvability and a hint. Useful for checking configs and seeds.

Examples:
  linkup deal
  linkup deal hard --seed 42`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDeal,
}

func runDeal(_ *cobra.Command, args []string) error {
	gameID, err := difficultyArg(args)
	if err != nil {
		return err
	}
	difficulty, _ := linkup.DifficultyFromID(gameID)
	d, err := linkupCfg.Difficulty(difficulty)
	if err != nil {
		return err
	}

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	session, err := engine.NewSession(engine.Options{
		Difficulty:    d.Engine(),
		TypeCount:     len(linkupCfg.Tiles),
		MatchDelay:    linkupCfg.MatchDelay(),
		MaxReshuffles: linkupCfg.MaxReshuffles,
		Seed:          seed,
	})
	if err != nil {
		return fmt.Errorf("dealing %s board: %w", d.ID, err)
	}

	grid := session.Grid()
	fmt.Printf("%s board, %s, seed %d\n\n", d.ID, d.Summary(), seed)

	var b strings.Builder
	b.WriteString("     ")
	for c := 1; c <= grid.Cols(); c++ {
		fmt.Fprintf(&b, "%-3d", c)
	}
	b.WriteString("\n")
	for r := 1; r <= grid.Rows(); r++ {
		fmt.Fprintf(&b, "  %-2d ", r)
		for c := 1; c <= grid.Cols(); c++ {
			b.WriteString(glyph(grid.At(engine.Pos{Row: r, Col: c})))
			b.WriteString("  ")
		}
		b.WriteString("\n")
	}
	fmt.Print(b.String())
	fmt.Println()

	fmt.Printf("Pairs:       %d\n", session.TotalPairs())
	fmt.Printf("Reshuffles:  %d (bonus %d)\n", session.Reshuffles(), session.BonusScore())
	if move, ok := session.Hint(); ok {
		fmt.Printf("Solvable:    yes, e.g. (%d,%d) and (%d,%d)\n", move.A.Row, move.A.Col, move.B.Row, move.B.Col)
		if path, ok := engine.FindPath(grid, move.A, move.B); ok {
			fmt.Printf("Path:        %d cells, %d turns\n", len(path), path.Turns())
		}
	} else {
		fmt.Println("Solvable:    no")
	}
	return nil
}

// glyph returns the configured face for a tile type.
func glyph(t engine.TileType) string {
	if t == engine.Empty || len(linkupCfg.Tiles) == 0 {
		return "·"
	}
	return linkupCfg.Tiles[int(t)%len(linkupCfg.Tiles)].Glyph
}
