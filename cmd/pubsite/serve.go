package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/matsen/pubsite/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort     int
	serveAllowAll bool
)

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (default: port from pubsite.yml)")
	serveCmd.Flags().BoolVar(&serveAllowAll, "cors-all", false, "Allow all CORS origins on /api")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the site with live rendering",
	Long: `Serve the site for preview. Pages are rendered on every request, so edits
to pages, includes and the bibliography show up on reload.

Endpoints:
  /healthz            health check
  /api/publications   bibliography as JSON, split into lists with counts
  /api/search?q=...   full-text search over the bibliography`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	builder := mustNewBuilder()

	port := builder.Config.Port
	if servePort != 0 {
		port = servePort
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if humanOutput {
		outputHuman("Serving %s at http://localhost:%d\nPress Ctrl+C to stop.\n", builder.Config.SiteRoot(builder.Root), port)
	}

	srv := server.New(server.Config{Port: port, AllowAll: serveAllowAll}, builder, logger)
	if err := srv.Start(ctx); err != nil {
		exitWithError(ExitError, "server: %v", err)
	}
	return nil
}
