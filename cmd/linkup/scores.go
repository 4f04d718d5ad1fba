package main

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/linkup/internal/registry"
	"github.com/vovakirdan/linkup/internal/storage"
)

var (
	flagScoresLimit  int
	flagScoresAll    bool
	flagScoresPlayer string
	flagScoresClear  bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores [difficulty]",
	Short: "Show the leaderboard",
	Long: `Display the best results for a difficulty, or for every difficulty
when none is given. Ties go to the faster clear.

Examples:
  linkup scores
  linkup scores hard
  linkup scores easy --limit 25
  linkup scores medium --all
  linkup scores --player ann
  linkup scores hard --clear`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of results per difficulty")
	scoresCmd.Flags().BoolVar(&flagScoresAll, "all", false, "Show every result instead of the top --limit")
	scoresCmd.Flags().StringVar(&flagScoresPlayer, "player", "", "Show one player's recent games instead")
	scoresCmd.Flags().BoolVar(&flagScoresClear, "clear", false, "Delete all results for the given difficulty")
}

func runScores(cmd *cobra.Command, args []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening results database: %w", err)
	}
	defer store.Close()

	w := cmd.OutOrStdout()

	if flagScoresPlayer != "" {
		return printHistory(w, store, flagScoresPlayer, flagScoresLimit)
	}

	if flagScoresClear {
		if len(args) == 0 {
			return errors.New("--clear needs a difficulty")
		}
		gameID, err := difficultyArg(args)
		if err != nil {
			return err
		}
		if err := store.ClearScores(gameID); err != nil {
			return err
		}
		fmt.Fprintf(w, "Cleared all results for %s.\n", args[0])
		return nil
	}

	limit := flagScoresLimit
	if flagScoresAll {
		limit = 0
	}

	var gameIDs []string
	if len(args) > 0 {
		gameID, err := difficultyArg(args)
		if err != nil {
			return err
		}
		gameIDs = []string{gameID}
	} else {
		for _, g := range registry.List() {
			gameIDs = append(gameIDs, g.ID)
		}
	}

	for i, gameID := range gameIDs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := printScores(w, store, gameID, limit); err != nil {
			return err
		}
	}

	if len(args) == 0 {
		fmt.Fprintln(w)
		return printSummary(w, store, gameIDs)
	}
	return nil
}

// printScores lists a leaderboard. A limit of 0 lists every result.
func printScores(w io.Writer, store *storage.Store, gameID string, limit int) error {
	title := gameID
	if game, err := registry.Create(gameID); err == nil {
		title = game.Title()
	}

	var scores []storage.Result
	var err error
	if limit > 0 {
		scores, err = store.TopScores(gameID, limit)
	} else {
		scores, err = store.AllScores(gameID)
	}
	if err != nil {
		return fmt.Errorf("retrieving scores: %w", err)
	}

	fmt.Fprintf(w, "High Scores - %s\n", title)
	fmt.Fprintln(w)

	if len(scores) == 0 {
		fmt.Fprintln(w, "  No scores recorded yet.")
		return nil
	}

	fmt.Fprintf(w, "  %-4s  %-8s  %-6s  %-6s  %-12s  %s\n", "Rank", "Score", "Time", "Bonus", "Player", "Date")
	fmt.Fprintf(w, "  %-4s  %-8s  %-6s  %-6s  %-12s  %s\n", "----", "-----", "----", "-----", "------", "----")

	for i, r := range scores {
		fmt.Fprintf(w, "  %-4d  %-8d  %-6s  %-6d  %-12s  %s\n",
			i+1,
			r.Score,
			fmt.Sprintf("%ds", r.ElapsedSecs),
			r.Bonus,
			r.Player,
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}

	if stats, err := store.GetGameStats(gameID); err == nil && stats.GamesCount > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  %d wins, best %d, fastest %ds\n", stats.GamesCount, stats.HighScore, stats.BestTime)
	}
	return nil
}

// printHistory lists a player's most recent wins across difficulties.
func printHistory(w io.Writer, store *storage.Store, player string, limit int) error {
	history, err := store.PlayerHistory(player, limit)
	if err != nil {
		return fmt.Errorf("retrieving history: %w", err)
	}

	fmt.Fprintf(w, "Recent games - %s\n", player)
	fmt.Fprintln(w)

	if len(history) == 0 {
		fmt.Fprintln(w, "  No games recorded yet.")
		return nil
	}

	fmt.Fprintf(w, "  %-10s  %-8s  %-6s  %-10s  %s\n", "Difficulty", "Score", "Time", "Reshuffles", "Date")
	fmt.Fprintf(w, "  %-10s  %-8s  %-6s  %-10s  %s\n", "----------", "-----", "----", "----------", "----")

	for _, r := range history {
		fmt.Fprintf(w, "  %-10s  %-8d  %-6s  %-10d  %s\n",
			r.Difficulty,
			r.Score,
			fmt.Sprintf("%ds", r.ElapsedSecs),
			r.Reshuffles,
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	return nil
}

// printSummary totals every leaderboard in the database. Boards from tiers
// no longer configured are listed after the current ones.
func printSummary(w io.Writer, store *storage.Store, gameIDs []string) error {
	all, err := store.GetAllGamesStats()
	if err != nil {
		return fmt.Errorf("retrieving stats: %w", err)
	}

	order := make([]string, 0, len(all))
	listed := make(map[string]bool)
	for _, id := range gameIDs {
		if _, ok := all[id]; ok {
			order = append(order, id)
			listed[id] = true
		}
	}
	var rest []string
	for id := range all {
		if !listed[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	order = append(order, rest...)

	fmt.Fprintln(w, "Summary")
	fmt.Fprintln(w)

	if len(order) == 0 {
		fmt.Fprintln(w, "  No games recorded yet.")
		return nil
	}

	total := 0
	for _, id := range order {
		s := all[id]
		total += s.GamesCount
		fmt.Fprintf(w, "  %-16s  %3d wins  best %-6d  avg %-8.0f  last %s\n",
			id, s.GamesCount, s.HighScore, s.AvgScore, s.LastPlayed.Format("2006-01-02"))
	}
	fmt.Fprintf(w, "  %d wins in total\n", total)
	return nil
}
