// Package cli provides the archivist command line interface.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/archivist/internal/core/ports/driven"
	"github.com/custodia-labs/archivist/internal/core/ports/driving"
	"github.com/custodia-labs/archivist/internal/logger"
)

// version is overridden at build time with -ldflags.
var version = "dev"

// Services wires the driving ports used by the commands.
type Services struct {
	Retrieval driving.RetrievalService
	Ask       driving.AskService
	Scope     driving.ScopeService
	Settings  driving.SettingsService
	Document  driving.DocumentService
	Validator driven.LLMConfigValidator

	// NewIngest builds an ingest service reading the export at dir.
	// An empty dir yields a service that can only report status.
	NewIngest func(dir string) (driving.IngestService, error)

	// DefaultK is the number of passages used when --limit is not given.
	DefaultK int
}

var (
	retrievalService driving.RetrievalService
	askService       driving.AskService
	scopeService     driving.ScopeService
	settingsService  driving.SettingsService
	documentService  driving.DocumentService
	llmValidator     driven.LLMConfigValidator
	ingestFactory    func(dir string) (driving.IngestService, error)
	defaultK         = 5
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "archivist",
	Short: "Ask questions over a channel's message archive",
	Long: `Archivist ingests a channel's message archive into a local full-text
index and answers natural-language questions over it, citing the messages
each answer is grounded on.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetServices installs the services used by the commands.
func SetServices(s *Services) {
	retrievalService = s.Retrieval
	askService = s.Ask
	scopeService = s.Scope
	settingsService = s.Settings
	documentService = s.Document
	llmValidator = s.Validator
	ingestFactory = s.NewIngest
	if s.DefaultK > 0 {
		defaultK = s.DefaultK
	}
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// defaultUser identifies the local user for scope preferences.
func defaultUser() string {
	if u := os.Getenv("ARCHIVIST_USER"); u != "" {
		return u
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "local"
}
