package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var scopeUser string

var scopeCmd = &cobra.Command{
	Use:   "scope",
	Short: "Manage the collection your questions search",
}

var scopeGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the saved collection",
	Args:  cobra.NoArgs,
	RunE:  runScopeGet,
}

var scopeSetCmd = &cobra.Command{
	Use:   "set [collection]",
	Short: "Save the collection to search",
	Args:  cobra.ExactArgs(1),
	RunE:  runScopeSet,
}

func init() {
	scopeCmd.PersistentFlags().StringVarP(&scopeUser, "user", "u", "", "user the scope belongs to (default $USER)")
	scopeCmd.AddCommand(scopeGetCmd)
	scopeCmd.AddCommand(scopeSetCmd)
	rootCmd.AddCommand(scopeCmd)
}

func scopeUserOrDefault() string {
	if scopeUser != "" {
		return scopeUser
	}
	return defaultUser()
}

func runScopeGet(cmd *cobra.Command, _ []string) error {
	if scopeService == nil {
		return errors.New("scope service not configured")
	}

	user := scopeUserOrDefault()
	collection, ok, err := scopeService.GetScope(cmd.Context(), user)
	if err != nil {
		return fmt.Errorf("failed to get scope: %w", err)
	}
	if !ok {
		cmd.Printf("No collection selected for %s.\n", user)
		return nil
	}
	cmd.Printf("%s searches %s\n", user, collection)
	return nil
}

func runScopeSet(cmd *cobra.Command, args []string) error {
	if scopeService == nil {
		return errors.New("scope service not configured")
	}

	user := scopeUserOrDefault()
	if err := scopeService.SetScope(cmd.Context(), user, args[0]); err != nil {
		return fmt.Errorf("failed to set scope: %w", err)
	}
	cmd.Printf("%s now searches %s\n", user, args[0])
	return nil
}
