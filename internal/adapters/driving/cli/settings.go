package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

var (
	llmProviderFlag string
	llmModelFlag    string
	llmAPIKeyFlag   string
	llmSkipCheck    bool
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the completion provider and answer settings.

Settings are stored in ~/.archivist/config.toml. RAG_* environment
variables and provider API key variables override the stored values.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure the completion provider",
	Long: `Configure the language model used to answer questions.

Without --provider the command prompts for each value.`,
	RunE: runSettingsLLM,
}

func init() {
	settingsLLMCmd.Flags().StringVar(&llmProviderFlag, "provider", "", "provider (ollama, openai, groq, anthropic, gemini)")
	settingsLLMCmd.Flags().StringVar(&llmModelFlag, "model", "", "model name (default: provider default)")
	settingsLLMCmd.Flags().StringVar(&llmAPIKeyFlag, "api-key", "", "API key for cloud providers")
	settingsLLMCmd.Flags().BoolVar(&llmSkipCheck, "no-check", false, "save without pinging the provider")
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println(headingStyle.Render("Current Settings"))
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.EffectiveModel())
	if settings.LLM.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	if settings.LLM.Provider.RequiresAPIKey() {
		if settings.LLM.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.LLM.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	cmd.Printf("  Timeout: %ds\n", settings.LLM.TimeoutSeconds)
	status := "configured"
	if !settings.LLM.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[Answer]")
	cmd.Printf("  Max context chars: %d\n", settings.Answer.MaxContextChars)
	cmd.Printf("  Max attempts: %d\n", settings.Answer.MaxAttempts)
	cmd.Printf("  Max wait: %ds\n", settings.Answer.MaxWaitSeconds)
	cmd.Println()

	cmd.Println("[Search]")
	cmd.Printf("  Default k: %d\n", settings.Search.DefaultK)
	cmd.Println()

	cmd.Println("[Ingest]")
	exportDir := settings.Ingest.ExportDir
	if exportDir == "" {
		exportDir = "(not set)"
	}
	cmd.Printf("  Export dir: %s\n", exportDir)
	cmd.Printf("  Requests/second: %g\n", settings.Ingest.RequestsPerSecond)
	if settings.Ingest.LinkBaseURL != "" {
		cmd.Printf("  Link base URL: %s\n", settings.Ingest.LinkBaseURL)
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Println(warnStyle.Render(fmt.Sprintf("Warning: %v", err)))
		cmd.Println("Run 'archivist settings llm' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	provider, model, apiKey := domain.LLMProvider(llmProviderFlag), llmModelFlag, llmAPIKeyFlag
	if llmProviderFlag == "" {
		var err error
		provider, model, apiKey, err = promptLLMProvider(cmd, bufio.NewReader(cmd.InOrStdin()))
		if err != nil {
			return err
		}
	}

	if err := settingsService.SetLLMProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	if !llmSkipCheck && llmValidator != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		cmd.Print("Validating configuration... ")
		if err := llmValidator.ValidateLLM(cmd.Context(), &settings.LLM); err != nil {
			cmd.Println("FAILED")
			return fmt.Errorf("LLM configuration validation failed: %w", err)
		}
		cmd.Println("OK")
	}

	if model == "" {
		model = provider.DefaultModel()
	}
	cmd.Printf("LLM provider configured: %s (%s)\n", provider.Description(), model)
	return nil
}

func promptLLMProvider(cmd *cobra.Command, reader *bufio.Reader) (domain.LLMProvider, string, string, error) {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	provider := providers[idx-1]

	defaultModel := provider.DefaultModel()
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" {
			return "", "", "", errors.New("API key is required for this provider")
		}
	}
	return provider, model, apiKey, nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when stdin is a terminal.
func readPassword(reader *bufio.Reader) string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
