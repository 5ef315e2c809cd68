package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driving"
)

var (
	ingestSource string
	ingestWatch  bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [collection]",
	Short: "Ingest a collection from an archive export",
	Long: `Reads <source>/<collection>/*.json page by page into the index.

Re-running is safe: messages are keyed by collection and timestamp, so
nothing is duplicated. With --watch the command keeps running and
re-ingests whenever the export directory changes.

With --source github the collection is an "owner/repo" and its issue and
pull request comments are ingested instead. GITHUB_TOKEN must be set.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

var statusCmd = &cobra.Command{
	Use:   "status [collection]",
	Short: "Show the last ingestion run for a collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestSource, "source", "s", "", "export directory, or \"github\" (default ingest.export_dir)")
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "keep running and re-ingest on changes")
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(statusCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestFactory == nil {
		return errors.New("ingest service not configured")
	}

	dir := ingestSource
	if dir == "" && settingsService != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		dir = settings.Ingest.ExportDir
	}
	if dir == "" {
		return fmt.Errorf("%w: pass --source or set ingest.export_dir", domain.ErrSourceUnavailable)
	}

	svc, err := ingestFactory(dir)
	if err != nil {
		return fmt.Errorf("failed to open export: %w", err)
	}

	collection := args[0]
	if ingestWatch {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		cmd.Printf("Watching %s in %s (Ctrl+C to stop)...\n", collection, dir)
		if err := svc.Watch(ctx, collection); err != nil {
			return fmt.Errorf("watch failed: %w", err)
		}
		return printStatus(cmd, svc, collection)
	}

	cmd.Printf("Ingesting %s from %s...\n", collection, dir)
	report, err := svc.Sync(cmd.Context(), collection)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Run %s finished in %s\n", report.RunID, report.Duration.Round(1e6))
	cmd.Printf("  Pages:      %d\n", report.Pages)
	cmd.Printf("  Upserted:   %d\n", report.Upserted)
	cmd.Printf("  Tombstoned: %d\n", report.Tombstoned)
	cmd.Printf("  Skipped:    %d\n", report.Skipped)
	if report.Errors > 0 {
		cmd.Println(warnStyle.Render(fmt.Sprintf("  Errors:     %d", report.Errors)))
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	if ingestFactory == nil {
		return errors.New("ingest service not configured")
	}
	svc, err := ingestFactory("")
	if err != nil {
		return err
	}
	return printStatus(cmd, svc, args[0])
}

func printStatus(cmd *cobra.Command, svc driving.IngestService, collection string) error {
	state, err := svc.Status(cmd.Context(), collection)
	if errors.Is(err, domain.ErrNotFound) {
		cmd.Printf("%s has not been ingested.\n", collection)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	cmd.Println(headingStyle.Render("Collection " + state.CollectionID))
	cmd.Printf("  Last run:   %s\n", state.RunID)
	cmd.Printf("  Finished:   %s\n", state.LastSync.Local().Format("2006-01-02 15:04:05"))
	cmd.Printf("  Documents:  %d\n", state.Documents)
	cmd.Printf("  Errors:     %d\n", state.Errors)
	if state.Cursor != "" {
		cmd.Printf("  Resumes at: %s\n", state.Cursor)
	}

	if documentService != nil {
		stats, err := documentService.Stats(cmd.Context(), collection)
		if err == nil {
			cmd.Printf("  Indexed:    %d live, %d deleted\n", stats.Live, stats.Deleted)
		}
	}
	return nil
}
