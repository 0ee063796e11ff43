package main

import (
	"fmt"
	"strings"

	"github.com/matsen/pubsite/internal/bibtex"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check [file-or-url]",
	Short: "Check a bibliography for problems",
	Long: `Check a bibliography for duplicate citation keys, duplicate DOIs and
entries missing the fields the publications page displays.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

// CheckResult is the response for the check command.
type CheckResult struct {
	Status  string       `json:"status"`
	Entries int          `json:"entries"`
	Issues  []CheckIssue `json:"issues"`
}

// CheckIssue represents a single issue found during check.
type CheckIssue struct {
	Type  string   `json:"type"`
	Key   string   `json:"key,omitempty"`
	Keys  []string `json:"keys,omitempty"`
	DOI   string   `json:"doi,omitempty"`
	Field string   `json:"field,omitempty"`
}

// displayedFields are shown on every listed entry.
var displayedFields = []string{"title", "author", "year"}

// checkEntries returns the issues found in entries.
func checkEntries(entries []bibtex.Entry) []CheckIssue {
	var issues []CheckIssue

	for _, d := range bibtex.BuildIndex(entries).Duplicates() {
		switch d.Kind {
		case "key":
			issues = append(issues, CheckIssue{Type: "duplicate_key", Key: d.Value, Keys: d.Keys})
		case "doi":
			issues = append(issues, CheckIssue{Type: "duplicate_doi", DOI: d.Value, Keys: d.Keys})
		}
	}

	for _, e := range entries {
		if e.Type != bibtex.TypeArticle && e.Type != bibtex.TypeInProceedings {
			continue
		}
		for _, f := range displayedFields {
			if strings.TrimSpace(e.Field(f)) == "" {
				issues = append(issues, CheckIssue{Type: "missing_field", Key: e.Key, Field: f})
			}
		}
	}

	return issues
}

func runCheck(cmd *cobra.Command, args []string) error {
	location := ""
	if len(args) == 1 {
		location = args[0]
	}
	entries := mustLoadEntries(cmd.Context(), bibliographySource(location))
	issues := checkEntries(entries)

	status := "ok"
	if len(issues) > 0 {
		status = "issues"
	}

	// Ensure issues is an empty array, not null
	if issues == nil {
		issues = []CheckIssue{}
	}

	if humanOutput {
		if len(issues) == 0 {
			fmt.Printf("Bibliography check: OK\n\n%d entries checked\n", len(entries))
			return nil
		}
		fmt.Printf("Bibliography check: %d issues found\n\n", len(issues))
		for _, issue := range issues {
			switch issue.Type {
			case "duplicate_key":
				fmt.Printf("  [WARN] Citation key %s used %d times\n\n", issue.Key, len(issue.Keys))
			case "duplicate_doi":
				fmt.Printf("  [WARN] Duplicate DOI %s\n", issue.DOI)
				fmt.Printf("         Found in: %s\n\n", strings.Join(issue.Keys, ", "))
			case "missing_field":
				fmt.Printf("  [WARN] %s has no %s\n\n", issue.Key, issue.Field)
			}
		}
		fmt.Printf("%d entries checked\n", len(entries))
		return nil
	}

	outputJSON(CheckResult{Status: status, Entries: len(entries), Issues: issues})
	return nil
}
