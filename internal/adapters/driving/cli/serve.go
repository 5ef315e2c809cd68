package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/archivist/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/archivist/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Serve search, ask and scope over HTTP.

Routes:
  GET  /api/search?q=&collection=&user=&limit=
  POST /api/ask
  GET  /api/scope?user=
  PUT  /api/scope
  GET  /api/collections/{id}/stats
  GET  /api/collections/{id}/status
  POST /mcp       (MCP streamable HTTP)
  GET  /metrics   (Prometheus)
  GET  /healthz`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}

func newHTTPServer() (*httpapi.Server, error) {
	mcpServer, err := newMCPServer()
	if err != nil {
		return nil, err
	}

	ports := httpapi.Ports{
		Retrieval: retrievalService,
		Ask:       askService,
		Scope:     scopeService,
		Document:  documentService,
	}
	if ingestFactory != nil {
		ingest, err := ingestFactory("")
		if err != nil {
			return nil, err
		}
		ports.Ingest = ingest
	}

	return httpapi.NewServer(ports,
		httpapi.WithLogger(logger.Logger()),
		httpapi.WithMCP(mcpServer.Handler()),
		httpapi.WithDefaultK(defaultK),
	)
}

func runServe(cmd *cobra.Command, _ []string) error {
	server, err := newHTTPServer()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.ErrOrStderr(), "HTTP API listening on %s\n", serveAddr)
	return server.Start(ctx, serveAddr)
}
