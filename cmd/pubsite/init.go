package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matsen/pubsite/internal/config"
	"github.com/spf13/cobra"
)

var initBibliography string

func init() {
	initCmd.Flags().StringVar(&initBibliography, "bibliography", "", "Bibliography path or URL (default: references.bib)")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Initialize a new site",
	Long: `Initialize a new site in the given directory (default: current directory).

Creates:
  pubsite.yml            # Default config
  index.html             # Home page
  publications.html      # Publications page with list and counter regions
  references.bib         # Empty bibliography
  includes/header.html   # Shared header with navigation
  includes/footer.html   # Shared footer

Existing files other than pubsite.yml are left untouched.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

// InitResult is the response for the init command.
type InitResult struct {
	Status  string   `json:"status"`
	Path    string   `json:"path"`
	Created []string `json:"created"`
}

const starterHeader = `<header>
    <nav class="site-nav">
        <a href="index.html" data-page="index.html">Home</a>
        <a href="publications.html" data-page="publications.html">Publications</a>
    </nav>
</header>
`

const starterFooter = `<footer>
    <p>Built with pubsite.</p>
</footer>
`

const starterIndex = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>Home</title>
</head>
<body>
    <main>
        <h1>Welcome</h1>
        <p><span id="total-publications">0</span> publications so far.</p>
    </main>
</body>
</html>
`

const starterPublications = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>Publications</title>
</head>
<body>
    <main>
        <h1>Publications</h1>
        <p>
            <span id="total-publications">0</span> total,
            <span id="total-journal-pubs">0</span> journal,
            <span id="total-conference-pubs">0</span> conference
        </p>
        <h2>Journal Articles</h2>
        <div id="journal-list"></div>
        <h2>Conference Papers</h2>
        <div id="conference-list"></div>
    </main>
</body>
</html>
`

type starterFile struct {
	rel     string
	content string
}

// scaffoldSite writes the config and any missing starter files under root.
// Returns the paths created, relative to root.
func scaffoldSite(root string, cfg *config.Config) ([]string, error) {
	if config.IsSite(root) {
		return nil, fmt.Errorf("directory already contains a pubsite site")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", root, err)
	}

	if err := cfg.Save(root); err != nil {
		return nil, err
	}
	created := []string{config.ConfigFile}

	files := []starterFile{
		{"index.html", starterIndex},
		{cfg.PublicationsPage, starterPublications},
		{cfg.Header, starterHeader},
		{cfg.Footer, starterFooter},
		{cfg.Bibliography, ""},
	}

	for _, f := range files {
		if isRemote(f.rel) {
			continue
		}
		path := cfg.SitePath(root, f.rel)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return created, fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(f.content), 0644); err != nil {
			return created, fmt.Errorf("writing %s: %w", path, err)
		}
		created = append(created, filepath.ToSlash(f.rel))
	}

	return created, nil
}

func isRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

func runInit(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	root, err := filepath.Abs(config.ExpandPath(root))
	if err != nil {
		exitWithError(ExitError, "resolving directory: %v", err)
	}

	cfg := config.Default()
	if initBibliography != "" {
		cfg.Bibliography = initBibliography
	}

	created, err := scaffoldSite(root, cfg)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		fmt.Printf("Initialized site in %s\n", root)
		for _, c := range created {
			fmt.Printf("  created %s\n", c)
		}
		return nil
	}

	outputJSON(InitResult{Status: "initialized", Path: root, Created: created})
	return nil
}
