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

	"github.com/lomnlabs/lomn-cli/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the AI providers, chunking and retrieval options.

Use subcommands to configure specific settings or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure all settings step by step.`,
	RunE:  runSettingsWizard,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure the embedding provider",
	RunE:  runSettingsEmbedding,
}

var settingsGeneratorCmd = &cobra.Command{
	Use:   "generator",
	Short: "Configure the letter generator",
	RunE:  runSettingsGenerator,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsGeneratorCmd)
	rootCmd.AddCommand(settingsCmd)
}

// embeddingProviders are the providers usable for embeddings.
func embeddingProviders() []domain.AIProvider {
	return []domain.AIProvider{domain.AIProviderOllama, domain.AIProviderOpenAI}
}

// generatorProviders are the providers usable for generation.
func generatorProviders() []domain.AIProvider {
	return []domain.AIProvider{domain.AIProviderOllama, domain.AIProviderOpenAI, domain.AIProviderAnthropic}
}

// defaultEmbeddingModels maps providers to a sensible default model.
func defaultEmbeddingModels() map[domain.AIProvider]string {
	return map[domain.AIProvider]string{
		domain.AIProviderOllama: "nomic-embed-text",
		domain.AIProviderOpenAI: "text-embedding-3-small",
	}
}

// defaultGeneratorModels maps providers to a sensible default model.
func defaultGeneratorModels() map[domain.AIProvider]string {
	return map[domain.AIProvider]string{
		domain.AIProviderOllama:    "llama3.2",
		domain.AIProviderOpenAI:    "gpt-4o-mini",
		domain.AIProviderAnthropic: "claude-sonnet-4-5",
	}
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
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Embedding.APIKey))
	}
	cmd.Printf("  Status: %s\n", configuredStatus(settings.Embedding.IsConfigured()))
	cmd.Println()

	cmd.Println("[Generator]")
	cmd.Printf("  Provider: %s\n", settings.Generator.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Generator.Model)
	if settings.Generator.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", settings.Generator.BaseURL)
	}
	if settings.Generator.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Generator.APIKey))
	}
	cmd.Printf("  Timeout: %ds\n", settings.Generator.TimeoutSeconds)
	cmd.Printf("  Status: %s\n", configuredStatus(settings.Generator.IsConfigured()))
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Target size: %d characters\n", settings.Chunking.TargetSize)
	cmd.Printf("  Overlap: %d characters\n", settings.Chunking.Overlap)
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  K: %d\n", settings.Retrieval.K)
	cmd.Printf("  Max context tokens: %d\n", settings.Retrieval.MaxContextTokens)
	cmd.Println()

	if settings.LexiconPath != "" {
		cmd.Println("[Validation]")
		cmd.Printf("  Lexicon: %s\n", settings.LexiconPath)
		cmd.Println()
	}

	if !settings.Embedding.IsConfigured() || !settings.Generator.IsConfigured() {
		cmd.Println("Run 'lomn settings wizard' to finish configuration.")
	}
	return nil
}

func configuredStatus(configured bool) string {
	if configured {
		return "configured"
	}
	return "not configured"
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("LOMN Settings Wizard")
	cmd.Println("====================")
	cmd.Println()

	reader := bufio.NewReader(os.Stdin)

	cmd.Println("Step 1: Embedding Provider")
	cmd.Println("--------------------------")
	if err := configureEmbedding(cmd, reader, settings); err != nil {
		return err
	}

	cmd.Println("Step 2: Letter Generator")
	cmd.Println("------------------------")
	if err := configureGenerator(cmd, reader, settings); err != nil {
		return err
	}

	cmd.Println("Step 3: Retrieval")
	cmd.Println("-----------------")
	cmd.Printf("Evidence chunks per query [%d]: ", settings.Retrieval.K)
	if input := readLine(reader); input != "" {
		if k, err := strconv.Atoi(input); err == nil && k > 0 {
			settings.Retrieval.K = k
		}
	}
	cmd.Printf("Prompt context budget in tokens [%d]: ", settings.Retrieval.MaxContextTokens)
	if input := readLine(reader); input != "" {
		if budget, err := strconv.Atoi(input); err == nil && budget > 0 {
			settings.Retrieval.MaxContextTokens = budget
		}
	}
	cmd.Println()

	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Println("Configuration complete and saved.")
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	reader := bufio.NewReader(os.Stdin)
	if err := configureEmbedding(cmd, reader, settings); err != nil {
		return err
	}
	return settingsService.Save(settings)
}

func runSettingsGenerator(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	reader := bufio.NewReader(os.Stdin)
	if err := configureGenerator(cmd, reader, settings); err != nil {
		return err
	}
	return settingsService.Save(settings)
}

//nolint:dupl // Similar to configureGenerator but for embeddings - intentional for CLI flow clarity
func configureEmbedding(cmd *cobra.Command, reader *bufio.Reader, settings *domain.AppSettings) error {
	cmd.Println("Select Embedding Provider")
	providers := embeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	provider := providers[idx-1]

	defaultModel := defaultEmbeddingModels()[provider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword()
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	settings.Embedding.APIKey = apiKey

	cmd.Printf("Embedding provider configured: %s (%s)\n\n", provider.Description(), model)
	return nil
}

//nolint:dupl // Similar to configureEmbedding but for the generator - intentional for CLI flow clarity
func configureGenerator(cmd *cobra.Command, reader *bufio.Reader, settings *domain.AppSettings) error {
	cmd.Println("Select Generator Provider")
	providers := generatorProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	provider := providers[idx-1]

	defaultModel := defaultGeneratorModels()[provider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword()
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	settings.Generator.Provider = provider
	settings.Generator.Model = model
	settings.Generator.APIKey = apiKey

	cmd.Printf("Generator configured: %s (%s)\n\n", provider.Description(), model)
	return nil
}

// Helper functions.

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

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
