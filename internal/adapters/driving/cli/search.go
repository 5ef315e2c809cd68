package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

var (
	searchCollection string
	searchUser       string
	searchLimit      int
	searchJSON       bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search a collection",
	Long: `Runs a ranked full-text search over one collection.

Terms are matched with implicit AND. Wrap the query in double quotes to
match an exact phrase. Without --collection the saved scope is used.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchCollection, "collection", "c", "", "collection to search")
	searchCmd.Flags().StringVarP(&searchUser, "user", "u", "", "user whose saved scope to use")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default from settings)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}
	if searchLimit < 0 {
		return fmt.Errorf("%w: limit must not be negative", domain.ErrInvalidInput)
	}

	collection, err := resolveCollection(cmd, searchCollection, searchUser)
	if err != nil {
		return err
	}

	limit := searchLimit
	if limit == 0 {
		limit = defaultK
	}

	outcome, err := retrievalService.Retrieve(cmd.Context(), args[0], collection, limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, outcome)
	}
	outputSearchTable(cmd, collection, outcome)
	return nil
}

func outputSearchJSON(cmd *cobra.Command, outcome *domain.SearchOutcome) error {
	data, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, collection string, outcome *domain.SearchOutcome) {
	if len(outcome.Hits) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println(headingStyle.Render(fmt.Sprintf("Results in %s (%s):", collection, outcome.Mode)))
	cmd.Println()
	for i, hit := range outcome.Hits {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, hit.ID, hit.Score)
		cmd.Printf("      %s\n", hit.Text)
		if hit.CitationURI != "" {
			cmd.Println("      " + mutedStyle.Render(hit.CitationURI))
		}
		cmd.Println()
	}
}

// resolveCollection returns the explicit collection, else the user's saved scope.
func resolveCollection(cmd *cobra.Command, collection, user string) (string, error) {
	if collection != "" {
		return collection, nil
	}
	if scopeService == nil {
		return "", domain.ErrNoScope
	}
	if user == "" {
		user = defaultUser()
	}
	saved, ok, err := scopeService.GetScope(cmd.Context(), user)
	if err != nil {
		return "", fmt.Errorf("failed to get scope: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("%w: pass --collection or run 'archivist scope set <collection>'", domain.ErrNoScope)
	}
	return saved, nil
}
