package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/linkup/internal/games/linkup"
	"github.com/vovakirdan/linkup/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List difficulties",
	Long:  `Shows every difficulty with its board size and scoring.`,
	Run:   runList,
}

func runList(_ *cobra.Command, _ []string) {
	games := registry.List()

	if len(games) == 0 {
		fmt.Println("No difficulties available.")
		return
	}

	fmt.Println("Difficulties:")
	fmt.Println()

	maxIDLen := len("Difficulty")
	for _, g := range games {
		if d, ok := linkup.DifficultyFromID(g.ID); ok && len(d) > maxIDLen {
			maxIDLen = len(d)
		}
	}

	fmt.Printf("  %-*s  %s\n", maxIDLen, "Difficulty", "Board")
	fmt.Printf("  %-*s  %s\n", maxIDLen, "----------", "-----")

	for _, g := range games {
		d, _ := linkup.DifficultyFromID(g.ID)
		summary := "-"
		if dc, err := linkupCfg.Difficulty(d); err == nil {
			summary = dc.Summary()
		}
		marker := ""
		if d == linkupCfg.DefaultDifficulty {
			marker = "  (default)"
		}
		fmt.Printf("  %-*s  %s%s\n", maxIDLen, d, summary, marker)
	}

	fmt.Println()
	fmt.Println("Run 'linkup play <difficulty>' to play.")
}
