// Command archivist answers questions over a channel's message archive.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/custodia-labs/archivist/internal/adapters/driven/ai"
	"github.com/custodia-labs/archivist/internal/adapters/driven/config/file"
	"github.com/custodia-labs/archivist/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/archivist/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/archivist/internal/adapters/driving/cli"
	"github.com/custodia-labs/archivist/internal/connectors/export"
	"github.com/custodia-labs/archivist/internal/connectors/github"
	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
	"github.com/custodia-labs/archivist/internal/core/ports/driving"
	"github.com/custodia-labs/archivist/internal/core/services"
	"github.com/custodia-labs/archivist/internal/logger"
	"github.com/custodia-labs/archivist/internal/metrics"
)

var version = "dev"

// stores groups the driven storage ports.
type stores struct {
	index driven.LexicalIndex
	docs  driven.DocumentStore
	prefs driven.PreferenceStore
	sync  driven.SyncStateStore
	close func() error
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	home, err := dataDir()
	if err != nil {
		return err
	}

	env, err := file.NewEnvReader(".env")
	if err != nil {
		return err
	}
	configStore, err := file.NewConfigStore(home)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	prompts, err := file.NewPromptStore(filepath.Join(home, "prompts"))
	if err != nil {
		return fmt.Errorf("open prompts: %w", err)
	}

	settingsService := services.NewSettingsService(configStore, env)
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	st, err := openStores(home)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(); err != nil {
			logger.Warn("Closing store: %v", err)
		}
	}()

	metrics.MustRegister(prometheus.DefaultRegisterer)

	// A missing or broken completion provider must not block search and
	// ingestion, so the error is only logged here.
	var answers driving.AnswerService
	llm, err := ai.CreateLLMService(ctx, &settings.LLM)
	switch {
	case err != nil:
		logger.Warn("Completion service unavailable: %v", err)
	case llm != nil:
		defer llm.Close()
		answers = services.NewAnswerGenerator(llm, prompts, services.AnswerConfigFromSettings(*settings))
	}

	retrieval := services.NewRetrievalService(st.index)
	scope := services.NewScopeService(st.prefs)

	cli.SetVersion(version)
	cli.SetServices(&cli.Services{
		Retrieval: retrieval,
		Ask:       services.NewAskService(scope, retrieval, answers, settings.Search.DefaultK),
		Scope:     scope,
		Settings:  settingsService,
		Document:  services.NewDocumentService(st.docs),
		Validator: ai.NewConfigValidator(),
		NewIngest: func(dir string) (driving.IngestService, error) {
			return newIngestService(ctx, dir, settings.Ingest, st)
		},
		DefaultK: settings.Search.DefaultK,
	})

	return cli.Execute(ctx)
}

// githubSource selects repository comments instead of an export directory.
const githubSource = "github"

func newIngestService(ctx context.Context, dir string, cfg domain.IngestSettings, st *stores) (driving.IngestService, error) {
	var source driven.MessageSource
	switch dir {
	case "":
	case githubSource:
		if cfg.GitHubToken == "" {
			return nil, fmt.Errorf("%w: set GITHUB_TOKEN to ingest from github", domain.ErrSourceUnavailable)
		}
		source = github.New(github.NewClient(ctx, cfg.GitHubToken, cfg.RequestsPerSecond))
	default:
		conn := export.New(dir, cfg.LinkBaseURL)
		if err := conn.Validate(); err != nil {
			return nil, err
		}
		source = conn
	}
	return services.NewIngestService(source, st.index, st.sync, cfg.RequestsPerSecond), nil
}

// openStores opens the SQLite store, or in-memory stores when
// ARCHIVIST_STORE=memory.
func openStores(dataDir string) (*stores, error) {
	if os.Getenv("ARCHIVIST_STORE") == "memory" {
		index := memory.NewLexicalIndex()
		return &stores{
			index: index,
			docs:  index,
			prefs: memory.NewPreferenceStore(),
			sync:  memory.NewSyncStateStore(),
			close: func() error { return nil },
		}, nil
	}

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return &stores{
		index: store.LexicalIndex(),
		docs:  store.DocumentStore(),
		prefs: store.PreferenceStore(),
		sync:  store.SyncStateStore(),
		close: store.Close,
	}, nil
}

// dataDir returns $ARCHIVIST_HOME, or ~/.archivist.
func dataDir() (string, error) {
	if dir := os.Getenv("ARCHIVIST_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("cannot determine home directory; set ARCHIVIST_HOME")
	}
	return filepath.Join(home, ".archivist"), nil
}
