package main

import (
	"fmt"
	"html/template"

	"github.com/matsen/pubsite/internal/bibtex"
	"github.com/matsen/pubsite/internal/pipeline"
	"github.com/matsen/pubsite/internal/publist"
	"github.com/spf13/cobra"
)

var renderBucket string

func init() {
	renderCmd.Flags().StringVarP(&renderBucket, "bucket", "b", "all", "Which list to render: journal, conference, other or all")
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render [file-or-url]",
	Short: "Render publication list markup",
	Long: `Render the publication list markup that the publications page receives.

With --human the raw HTML is printed; otherwise a JSON object maps each
requested list to its markup.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

// RenderResult is the response for the render command.
type RenderResult struct {
	Counts pipeline.Counts   `json:"counts"`
	Lists  map[string]string `json:"lists"`
}

// selectBuckets returns the named lists for a --bucket value, in display order.
func selectBuckets(b pipeline.Buckets, name string) ([]string, map[string][]bibtex.Entry, error) {
	all := map[string][]bibtex.Entry{
		"journal":    b.Journal,
		"conference": b.Conference,
		"other":      b.Other,
	}
	switch name {
	case "all":
		return []string{"journal", "conference"}, all, nil
	case "journal", "conference", "other":
		return []string{name}, all, nil
	default:
		return nil, nil, fmt.Errorf("unknown bucket %q (want journal, conference, other or all)", name)
	}
}

func runRender(cmd *cobra.Command, args []string) error {
	location := ""
	if len(args) == 1 {
		location = args[0]
	}

	buckets := pipeline.Partition(mustLoadEntries(cmd.Context(), bibliographySource(location)))
	names, lists, err := selectBuckets(buckets, renderBucket)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	rendered := make(map[string]template.HTML, len(names))
	for _, name := range names {
		markup, err := publist.RenderList(lists[name])
		if err != nil {
			exitWithError(ExitError, "rendering %s list: %v", name, err)
		}
		rendered[name] = markup
	}

	if humanOutput {
		for _, name := range names {
			if len(names) > 1 {
				fmt.Printf("<!-- %s -->\n", name)
			}
			fmt.Println(rendered[name])
		}
		return nil
	}

	result := RenderResult{Counts: buckets.Counts(), Lists: make(map[string]string, len(names))}
	for name, markup := range rendered {
		result.Lists[name] = string(markup)
	}
	outputJSON(result)
	return nil
}
