package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/linkup/internal/core"
	"github.com/vovakirdan/linkup/internal/platform/tui"
	"github.com/vovakirdan/linkup/internal/registry"
	"github.com/vovakirdan/linkup/internal/storage"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Pick a difficulty from a menu",
	Long: `Start Link-Up in interactive menu mode.

Use arrow keys or j/k to navigate, Enter to deal a board.
After a win, press B to return to the menu.

Controls:
  Up/Down/j/k  - Navigate menu
  Enter/Space  - Play the selected difficulty
  Tab          - Leaderboard
  Q            - Quit

Examples:
  linkup menu
  linkup menu --fps 30
  linkup menu --db ./linkup.db`,
	RunE: runMenu,
}

func runMenu(_ *cobra.Command, _ []string) error {
	store := openStore()
	if store != nil {
		defer store.Close()
	}
	return menuLoop(store, runtimeConfig(), tui.LocalPlayer())
}

// menuLoop alternates between the menu, the leaderboard and games until
// the player quits.
func menuLoop(store *storage.Store, cfg core.RuntimeConfig, player tui.Player) error {
	for {
		menuResult, err := tui.RunMenu(store, linkupCfg, cfg)
		if err != nil {
			return err
		}

		// Keep any size changes
		cfg = menuResult.Config

		if menuResult.Quit {
			return nil
		}

		if menuResult.WantsScoreboard {
			goBack, err := tui.RunScoreboard(store, cfg.ScreenW, cfg.ScreenH)
			if err != nil {
				return err
			}
			if goBack {
				continue
			}
			return nil
		}

		if menuResult.GameID == "" {
			return nil
		}

		game, err := registry.Create(menuResult.GameID)
		if err != nil {
			log.Error("cannot create game", "game", menuResult.GameID, "error", err)
			continue
		}

		// Fresh deal each time unless a seed was given
		if flagSeed == 0 {
			cfg.Seed = time.Now().UnixNano()
		}

		backToMenu, err := tui.Run(game, store, cfg, player)
		if err != nil {
			return fmt.Errorf("running game: %w", err)
		}
		if !backToMenu {
			return nil
		}
	}
}
