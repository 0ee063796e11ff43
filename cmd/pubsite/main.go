// Package main provides the pubsite CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/matsen/pubsite/internal/bibtex"
	"github.com/matsen/pubsite/internal/config"
	"github.com/matsen/pubsite/internal/pipeline"
	"github.com/matsen/pubsite/internal/site"
	"github.com/matsen/pubsite/internal/source"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// verbose switches the logger to the development config
var verbose bool

// siteFlag overrides site discovery
var siteFlag string

// logger is built once flags are parsed
var logger = zap.NewNop()

func main() {
	defer func() { _ = logger.Sync() }()
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pubsite",
	Short: "Build and serve a personal site with a publications page",
	Long: `pubsite builds and serves a small personal or academic website.

Every page gets the shared header and footer, the current page is highlighted
in the navigation, and the publications page is filled from a BibTeX file:
articles go to the journal list, inproceedings to the conference list.

All commands output JSON by default; use --human for readable output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(verbose || globalVerbose())
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		logger = l
		return nil
	},
}

func init() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&siteFlag, "site", "", "Site directory (default: search from site_path or the current directory)")
	rootCmd.Version = Version
}

// newLogger returns a production logger, or a development one when debug is set.
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func globalVerbose() bool {
	g, err := config.LoadGlobalConfig()
	return err == nil && g.Verbose
}

// getStartingDirectory returns the directory to start searching for a site.
// Checks --site, then the global config site_path, then the working directory.
func getStartingDirectory() (string, int) {
	if siteFlag != "" {
		return config.ExpandPath(siteFlag), 0
	}

	root, err := config.ValidateSitePath()
	if err != nil {
		return "", outputError(ExitConfigError, "%v", err)
	}
	if root != "" {
		return root, 0
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", outputError(ExitError, "getting current directory: %v", err)
	}
	return cwd, 0
}

// mustFindSite finds the site root, exits on error.
func mustFindSite() string {
	start, exitCode := getStartingDirectory()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	root, err := config.FindSite(start)
	if err != nil {
		fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
		os.Exit(ExitConfigError)
	}
	return root
}

// mustLoadConfig loads and validates the site configuration, exits on error.
func mustLoadConfig(root string) *config.Config {
	cfg, err := config.Load(root)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		exitWithError(ExitConfigError, "invalid config: %v", err)
	}
	return cfg
}

// mustNewBuilder finds the site and returns a builder for it.
func mustNewBuilder() *site.Builder {
	root := mustFindSite()
	return site.NewBuilder(root, mustLoadConfig(root), logger)
}

// bibliographySource returns a source for location, or the site's configured
// bibliography when location is empty.
func bibliographySource(location string) source.Source {
	if location != "" {
		cwd, _ := os.Getwd()
		return source.New(location, cwd)
	}
	return mustNewBuilder().Bibliography
}

// mustLoadEntries loads and parses the bibliography, exits on error.
func mustLoadEntries(ctx context.Context, src source.Source) []bibtex.Entry {
	result := pipeline.Load(ctx, src)
	if !result.OK() {
		exitWithError(loadErrorCode(result.Err()), "loading bibliography %s: %v", src, result.Err())
	}
	return result.Entries()
}

// loadErrorCode maps a bibliography failure to an exit code. A missing
// document means the configured location is wrong.
func loadErrorCode(err error) int {
	if source.IsNotFound(err) {
		return ExitConfigError
	}
	return ExitDataError
}
