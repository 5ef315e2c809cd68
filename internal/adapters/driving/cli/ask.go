package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/logger"
)

var (
	askCollection string
	askUser       string
	askLimit      int
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the archive",
	Long: `Retrieves the most relevant messages from a collection and asks the
configured language model to answer from them, citing its sources.

Without --collection the saved scope for --user is used.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askCollection, "collection", "c", "", "collection to search")
	askCmd.Flags().StringVarP(&askUser, "user", "u", "", "user whose saved scope to use (default $USER)")
	askCmd.Flags().IntVarP(&askLimit, "limit", "n", 0, "number of passages to ground on (default from settings)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if askService == nil {
		return errors.New("ask service not configured")
	}
	if askLimit < 0 {
		return fmt.Errorf("%w: limit must not be negative", domain.ErrInvalidInput)
	}

	user := askUser
	if user == "" {
		user = defaultUser()
	}

	result, err := askService.Ask(cmd.Context(), domain.AskRequest{
		UserID:       user,
		CollectionID: askCollection,
		Query:        strings.Join(args, " "),
		K:            askLimit,
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if result.NeedsScope {
		cmd.Println(warnStyle.Render("No collection selected."))
		cmd.Println("Pass --collection or run 'archivist scope set <collection>'.")
		return nil
	}

	if result.Failed() {
		cmd.Println(errorStyle.Render(result.UserMessage))
		logger.Debug("Answer failed: %v", result.Err)
		printSources(cmd, result.Hits)
		return fmt.Errorf("answer failed: %w", result.Err)
	}

	if result.Answer == "" && len(result.Hits) == 0 {
		cmd.Println("Nothing to answer.")
		return nil
	}

	cmd.Println(headingStyle.Render("Answer"))
	cmd.Println(answerStyle.Render(result.Answer))
	printSources(cmd, result.Hits)
	return nil
}

func printSources(cmd *cobra.Command, hits []domain.SearchHit) {
	if len(hits) == 0 {
		return
	}
	cmd.Println()
	cmd.Println(headingStyle.Render("Sources"))
	for i, hit := range hits {
		ref := hit.CitationURI
		if ref == "" {
			ref = hit.ID
		}
		cmd.Printf("  [%d] %s\n", i+1, mutedStyle.Render(ref))
	}
}
