// linkup is a terminal connect-pairs game: clear the board by joining
// matching tiles with a path of at most two turns.
//
// Usage:
//
//	linkup list                  - List difficulties
//	linkup play [difficulty]     - Play a board
//	linkup menu                  - Pick a difficulty interactively
//	linkup serve                 - Serve games over SSH and websockets
//	linkup scores [difficulty]   - Show the leaderboard
//	linkup deal [difficulty]     - Print a dealt board with a hint
//
// Global flags:
//
//	--fps <rate>         - Set tick rate (default: 60)
//	--seed <value>       - Set RNG seed for reproducible boards
//	--db <path>          - Set database path (default: ~/.arcade/linkup.db)
//	--config <path>      - Use a custom linkup.yaml
//	--log-level <level>  - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/linkup/internal/config"
	"github.com/vovakirdan/linkup/internal/core"
	"github.com/vovakirdan/linkup/internal/games/linkup"
	"github.com/vovakirdan/linkup/internal/registry"
	"github.com/vovakirdan/linkup/internal/storage"
)

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagConfig   string
	flagLogLevel string

	// linkupCfg is loaded once flags are parsed.
	linkupCfg config.LinkupConfig
)

func main() {
	// A missing .env is normal
	//nolint:errcheck // Optional file
	godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "linkup",
	Short: "Link-Up - connect matching tiles in your terminal",
	Long: `Link-Up is a tile-matching puzzle. Pick two tiles with the same face;
they vanish when a path with at most two turns joins them. The path may
run around the outside of the board. Clear the board as fast as you can.

Available commands:
  list     - Show difficulties
  play     - Play a board directly
  menu     - Interactive difficulty picker
  serve    - Serve games over SSH and websockets
  scores   - View the leaderboard
  deal     - Print a dealt board (debugging aid)

Examples:
  linkup play
  linkup play hard --seed 42
  linkup menu
  linkup serve --ssh :2222 --ws :8080
  linkup scores medium`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		level, err := log.ParseLevel(flagLogLevel)
		if err != nil {
			return fmt.Errorf("invalid --log-level %q: %w", flagLogLevel, err)
		}
		log.SetLevel(level)

		if flagConfig != "" {
			cfg, err := config.Load(flagConfig)
			if err != nil {
				return err
			}
			linkupCfg = cfg
		} else {
			linkupCfg = config.MustLoad("")
		}
		linkup.Register(linkupCfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.arcade/linkup.db", "Path to results database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom linkup.yaml")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(dealCmd)
}

// runtimeConfig sizes the game to the current terminal.
func runtimeConfig() core.RuntimeConfig {
	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}
	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}
}

// openStore opens the results database. Games still run without it.
func openStore() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		log.Warn("could not open results database", "path", flagDBPath, "error", err)
		return nil
	}
	return store
}

// difficultyArg resolves an optional difficulty argument to a game id.
func difficultyArg(args []string) (string, error) {
	difficulty := linkupCfg.DefaultDifficulty
	if len(args) > 0 {
		difficulty = args[0]
	}
	gameID := linkup.GameID(difficulty)
	if !registry.Exists(gameID) {
		return "", fmt.Errorf("unknown difficulty %q (run 'linkup list')", difficulty)
	}
	return gameID, nil
}
