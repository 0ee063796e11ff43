package main

import (
	"fmt"

	"github.com/matsen/pubsite/internal/pipeline"
	"github.com/matsen/pubsite/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show publication counts by type and year",
	RunE:  runStats,
}

// StatsResult is the response for the stats command.
type StatsResult struct {
	Counts pipeline.Counts   `json:"counts"`
	ByType []store.TypeCount `json:"by_type"`
	ByYear []store.YearCount `json:"by_year"`
}

func runStats(cmd *cobra.Command, args []string) error {
	db := mustIndexEntries(cmd)
	defer db.Close()

	entries, err := db.All()
	if err != nil {
		exitWithError(ExitError, "listing entries: %v", err)
	}
	byType, err := db.CountByType()
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	byYear, err := db.CountByYear()
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	result := StatsResult{
		Counts: pipeline.Partition(entries).Counts(),
		ByType: byType,
		ByYear: byYear,
	}
	if result.ByType == nil {
		result.ByType = []store.TypeCount{}
	}
	if result.ByYear == nil {
		result.ByYear = []store.YearCount{}
	}

	if humanOutput {
		fmt.Printf("Total publications: %d (%d journal, %d conference)\n\n",
			result.Counts.Total, result.Counts.Journal, result.Counts.Conference)
		fmt.Println("By type:")
		for _, c := range result.ByType {
			fmt.Printf("  %-16s %d\n", c.Type, c.Count)
		}
		fmt.Println("\nBy year:")
		for _, c := range result.ByYear {
			year := fmt.Sprintf("%d", c.Year)
			if c.Year == 0 {
				year = "n.d."
			}
			fmt.Printf("  %-6s %3d  (%d journal, %d conference)\n", year, c.Total, c.Journal, c.Conference)
		}
		return nil
	}

	outputJSON(result)
	return nil
}
