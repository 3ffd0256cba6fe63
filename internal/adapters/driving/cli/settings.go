package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure storage, the AI provider, and the code delete policy.

Settings live in ~/.codebook/config.toml (or $CODEBOOK_HOME/config.toml).`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsAICmd = &cobra.Command{
	Use:   "ai",
	Short: "Configure the AI provider",
	Long: `Configure the AI provider used for code, refinement and theme suggestions.

Without --provider you are asked to choose one. The API key is read without
echo when not passed with --api-key; OPENAI_API_KEY or ANTHROPIC_API_KEY in
the environment also work and are never written to disk.`,
	RunE: runSettingsAI,
}

var settingsDeletePolicyCmd = &cobra.Command{
	Use:       "delete-policy [cascade|legacy]",
	Short:     "Choose how code deletion treats child codes",
	Long:      `cascade deletes (and undo restores) the whole subtree; legacy removes direct children only and undo restores the code alone.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(domain.DeleteCascade), string(domain.DeleteLegacy)},
	RunE:      runSettingsDeletePolicy,
}

var settingsStorageCmd = &cobra.Command{
	Use:       "storage [sqlite|postgres]",
	Short:     "Choose the storage backend",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(domain.StorageSQLite), string(domain.StoragePostgres)},
	RunE:      runSettingsStorage,
}

var settingsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check settings and test the AI provider connection",
	RunE:  runSettingsValidate,
}

var (
	aiProvider  string
	aiModel     string
	aiAPIKey    string
	postgresURL string
)

func init() {
	settingsAICmd.Flags().StringVar(&aiProvider, "provider", "", "Provider: openai, anthropic")
	settingsAICmd.Flags().StringVar(&aiModel, "model", "", "Model name (defaults per provider)")
	settingsAICmd.Flags().StringVar(&aiAPIKey, "api-key", "", "API key")
	settingsStorageCmd.Flags().StringVar(&postgresURL, "url", "", "PostgreSQL connection URL")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsAICmd)
	settingsCmd.AddCommand(settingsDeletePolicyCmd)
	settingsCmd.AddCommand(settingsStorageCmd)
	settingsCmd.AddCommand(settingsValidateCmd)
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

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println(mutedStyle.Render(settingsService.ConfigPath()))
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Backend: %s\n", settings.Storage.Backend)
	if settings.Storage.Backend == domain.StoragePostgres {
		cmd.Printf("  URL: %s\n", settings.Storage.PostgresURL)
	}
	cmd.Println()

	cmd.Println("[AI]")
	if settings.AI.Provider == "" {
		cmd.Println("  Provider: (none, local heuristics)")
	} else {
		cmd.Printf("  Provider: %s\n", settings.AI.Provider.Description())
		cmd.Printf("  Model: %s\n", settings.AI.Model)
		if settings.AI.BaseURL != "" {
			cmd.Printf("  Base URL: %s\n", settings.AI.BaseURL)
		}
		if settings.AI.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.AI.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
		status := "configured"
		if !settings.AI.IsConfigured() {
			status = "not configured"
		}
		cmd.Printf("  Status: %s\n", status)
	}
	cmd.Printf("  Requests/minute: %d\n", settings.AI.RequestsPerMinute)
	cmd.Println()

	cmd.Println("[Codes]")
	cmd.Printf("  Delete policy: %s\n", settings.DeletePolicy.Description())
	cmd.Println()

	cmd.Println("[Analytics]")
	cmd.Printf("  Max log entries: %d\n", settings.MaxAnalyticsLogs)
	return nil
}

func runSettingsAI(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	provider := domain.AIProvider(aiProvider)
	if aiProvider == "" {
		providers := domain.AllLLMProviders()
		cmd.Println("Select AI provider:")
		for i, p := range providers {
			cmd.Printf("  %d. %s\n", i+1, p.Description())
		}
		cmd.Print("Choice [1]: ")
		provider = providers[parseChoice(readLine(reader), len(providers), 1)-1]
	}
	if !provider.IsValid() {
		return fmt.Errorf("unknown provider %q (want openai or anthropic): %w", provider, domain.ErrUnsupportedType)
	}

	apiKey := aiAPIKey
	if apiKey == "" && provider.RequiresAPIKey() && !cmd.Flags().Changed("api-key") {
		cmd.Printf("API key for %s (leave empty to use the environment): ", provider.Description())
		apiKey = readSecret(cmd.InOrStdin(), reader)
		cmd.Println()
	}

	if err := settingsService.SetAIProvider(provider, aiModel, apiKey); err != nil {
		return fmt.Errorf("failed to save AI settings: %w", err)
	}
	cmd.Printf("%s AI provider set to %s\n", successStyle.Render("✓"), provider.Description())

	if err := settingsService.ValidateAIConfig(); err != nil {
		cmd.Println(warningStyle.Render("Warning: " + err.Error()))
	}
	return nil
}

func runSettingsDeletePolicy(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	policy := domain.DeletePolicy(args[0])
	if err := settingsService.SetDeletePolicy(policy); err != nil {
		return fmt.Errorf("failed to save delete policy: %w", err)
	}
	cmd.Printf("Delete policy: %s\n", policy.Description())
	return nil
}

func runSettingsStorage(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	backend := domain.StorageBackend(args[0])
	if err := settingsService.SetStorage(backend, postgresURL); err != nil {
		return fmt.Errorf("failed to save storage settings: %w", err)
	}
	cmd.Printf("Storage backend: %s\n", backend)
	cmd.Println(mutedStyle.Render("Takes effect the next time codebook starts."))
	return nil
}

func runSettingsValidate(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Validate(); err != nil {
		return err
	}
	if err := settingsService.ValidateAIConfig(); err != nil {
		return fmt.Errorf("AI provider: %w", err)
	}
	cmd.Println(successStyle.Render("✓") + " Settings are valid")
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readSecret reads without echo when in is the terminal, otherwise a line.
func readSecret(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
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
