package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/linkup/internal/platform/tui"
	"github.com/vovakirdan/linkup/internal/registry"
)

var playCmd = &cobra.Command{
	Use:   "play [difficulty]",
	Short: "Play a board",
	Long: `Deal a board at the given difficulty (default from config) and play it.

Controls:
  Mouse click   - Pick a tile
  Arrows/WASD   - Move the cursor
  Space/Enter   - Pick the tile under the cursor
  H             - Hint
  P             - Pause
  R             - New board (after a win or while paused)
  B/Esc         - Back to the menu (after a win or while paused)
  Q/Ctrl+C      - Quit

Examples:
  linkup play
  linkup play hard
  linkup play medium --seed 42
  linkup play --config ./my-linkup.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func runPlay(_ *cobra.Command, args []string) error {
	gameID, err := difficultyArg(args)
	if err != nil {
		return err
	}

	game, err := registry.Create(gameID)
	if err != nil {
		return fmt.Errorf("creating game: %w", err)
	}

	store := openStore()
	if store != nil {
		defer store.Close()
	}

	player := tui.LocalPlayer()
	cfg := runtimeConfig()

	backToMenu, err := tui.Run(game, store, cfg, player)
	if err != nil {
		return fmt.Errorf("running game: %w", err)
	}
	if backToMenu {
		return menuLoop(store, cfg, player)
	}
	return nil
}
