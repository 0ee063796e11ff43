package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(buildCmd)
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render the site into the output directory",
	Long: `Render every page into the output directory and copy the other files.

Each page gets the shared header and footer; the publications page is filled
from the bibliography. A bibliography that cannot be loaded is reported on the
page itself and does not fail the build.`,
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	builder := mustNewBuilder()

	report, err := builder.Build(cmd.Context())
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		for _, p := range report.Pages {
			line := fmt.Sprintf("  %s", p.Page)
			switch {
			case p.Error != "":
				line += fmt.Sprintf(" (bibliography error: %s)", p.Error)
			case p.Publications != nil:
				line += fmt.Sprintf(" (%d publications: %d journal, %d conference)",
					p.Publications.Total, p.Publications.Journal, p.Publications.Conference)
			}
			fmt.Println(line)
		}
		fmt.Printf("\nBuilt %d pages, copied %d files into %s\n", len(report.Pages), report.Copied, report.OutputDir)
		return nil
	}

	outputJSON(report)
	return nil
}
