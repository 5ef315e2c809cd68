package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/archivist/internal/adapters/driving/tui"
)

var (
	tuiCollection string
	tuiUser       string
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Search and ask interactively",
	Long: `Open a full-screen terminal interface. Type a query and press enter to
search; press tab to switch to asking questions.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringVarP(&tuiCollection, "collection", "c", "", "collection to search (default: saved scope)")
	tuiCmd.Flags().StringVarP(&tuiUser, "user", "u", "", "user whose saved scope to use (default $USER)")
	rootCmd.AddCommand(tuiCmd)
}

// newTUIApp wires the TUI to the configured services.
func newTUIApp() (*tui.App, error) {
	if retrievalService == nil {
		return nil, errors.New("retrieval service not configured")
	}
	user := tuiUser
	if user == "" {
		user = defaultUser()
	}
	return tui.NewApp(&tui.Ports{
		Retrieval: retrievalService,
		Ask:       askService,
		Scope:     scopeService,
	}, tui.Options{Collection: tuiCollection, User: user, K: defaultK})
}

func runTUI(cmd *cobra.Command, _ []string) error {
	app, err := newTUIApp()
	if err != nil {
		return err
	}
	if err := app.Run(cmd.Context()); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
