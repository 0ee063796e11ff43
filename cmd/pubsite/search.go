package main

import (
	"fmt"
	"strings"

	"github.com/matsen/pubsite/internal/bibtex"
	"github.com/matsen/pubsite/internal/publist"
	"github.com/matsen/pubsite/internal/store"
	"github.com/spf13/cobra"
)

var searchLimit int

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", DefaultSearchLimit, "Maximum results")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the bibliography",
	Long: `Full-text search over citation keys, titles, authors and venues.
Every word must match; words match as prefixes.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

// mustIndexEntries loads the site bibliography into an in-memory store.
// The caller is responsible for calling Close() on the returned DB.
func mustIndexEntries(cmd *cobra.Command) *store.DB {
	entries := mustLoadEntries(cmd.Context(), bibliographySource(""))

	db, err := store.Open(store.MemoryPath)
	if err != nil {
		exitWithError(ExitError, "opening index: %v", err)
	}
	if _, err := db.Rebuild(entries); err != nil {
		db.Close()
		exitWithError(ExitError, "indexing entries: %v", err)
	}
	return db
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchLimit <= 0 {
		exitWithError(ExitError, "--limit must be positive")
	}
	query := strings.Join(args, " ")

	db := mustIndexEntries(cmd)
	defer db.Close()

	results, err := db.Search(query, searchLimit)
	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}

	if humanOutput {
		total, err := db.Count()
		if err != nil {
			exitWithError(ExitError, "counting entries: %v", err)
		}
		if len(results) == 0 {
			fmt.Printf("No entries match %q (%d searched)\n", query, total)
			return nil
		}
		for i, e := range results {
			fmt.Printf("%d. %s [%s]\n", i+1, e.Key, e.Type)
			fmt.Printf("   %s\n", truncateString(publist.NormalizeTitle(e.Field("title")), SearchTitleMaxLen))
			if authors := publist.FormatAuthors(e.Field("author")); authors != "" {
				fmt.Printf("   %s\n", authors)
			}
			fmt.Println()
		}
		fmt.Println(searchSummary(len(results), total))
		return nil
	}

	if results == nil {
		results = []bibtex.Entry{}
	}
	outputJSON(results)
	return nil
}

// searchSummary describes how many of the indexed entries are shown.
func searchSummary(shown, total int) string {
	return fmt.Sprintf("%d of %d entries shown", shown, total)
}
