package main

import (
	"fmt"

	"github.com/matsen/pubsite/internal/bibtex"
	"github.com/matsen/pubsite/internal/publist"
	"github.com/spf13/cobra"
)

var parseBibTeX bool

func init() {
	parseCmd.Flags().BoolVar(&parseBibTeX, "bibtex", false, "Print entries as canonical BibTeX")
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse [file-or-url]",
	Short: "Parse a bibliography and print its entries",
	Long: `Parse a bibliography and print its entries.

With no argument the site's configured bibliography is used. Text that does
not look like an entry is skipped silently, exactly as on the publications
page.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

// ParseResult is the response for the parse command.
type ParseResult struct {
	Count   int            `json:"count"`
	Entries []bibtex.Entry `json:"entries"`
}

func runParse(cmd *cobra.Command, args []string) error {
	location := ""
	if len(args) == 1 {
		location = args[0]
	}
	entries := mustLoadEntries(cmd.Context(), bibliographySource(location))

	if parseBibTeX {
		fmt.Print(bibtex.FormatList(entries))
		return nil
	}

	if humanOutput {
		for _, e := range entries {
			fmt.Println(parseLine(e))
		}
		fmt.Printf("\n%d entries\n", len(entries))
		return nil
	}

	if entries == nil {
		entries = []bibtex.Entry{}
	}
	outputJSON(ParseResult{Count: len(entries), Entries: entries})
	return nil
}

// parseLine is one row of the --human listing: key, type, title and the
// venue details shown on the publications page.
func parseLine(e bibtex.Entry) string {
	line := fmt.Sprintf("%-24s %-14s %s", e.Key, e.Type, truncateString(publist.NormalizeTitle(e.Field("title")), ListTitleMaxLen))
	if details := publist.JoinDetails(publist.FormatDetails(e.Fields)); details != "" {
		line += " (" + details + ")"
	}
	return line
}
