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

	"github.com/custodia-labs/ctxwin/internal/core/domain"
	"github.com/custodia-labs/ctxwin/internal/logger"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and change settings",
	Long: `View and change the context budget, generation backend and chat settings.

Settings are stored in config.toml inside the configuration directory.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single setting",
	Long: `Set a single setting by its dot-notation key.

Keys:
  budget.chunk_size          characters per chunk (default 1500)
  budget.chunk_overlap       characters shared by neighbouring chunks (default 300)
  budget.top_k               chunks sent per question (default 5)
  budget.min_relevance       lowest score a chunk may have (default 0)
  budget.max_turns           history length that triggers compaction (default 20)
  budget.keep_recent_turns   turns kept verbatim after compaction (default 5)
  llm.provider               ollama, anthropic or openai
  llm.model                  model name
  llm.base_url               backend URL (Ollama)
  llm.api_key                API key (or use ANTHROPIC_API_KEY / OPENAI_API_KEY)
  llm.requests_per_minute    request throttle, 0 for none
  chat.persona               assistant, coder, writer, teacher or analyst
  history.backend            sqlite or memory`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Choose a generation backend and default persona step by step.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigWizard,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check settings and backend connectivity",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configWizardCmd)
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
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

	b := settings.Budget
	cmd.Println("[Budget]")
	cmd.Printf("  Chunk size: %d\n", b.ChunkSize)
	cmd.Printf("  Chunk overlap: %d\n", b.ChunkOverlap)
	cmd.Printf("  Top K: %d\n", b.TopK)
	cmd.Printf("  Min relevance: %g\n", b.MinRelevance)
	cmd.Printf("  Max turns: %d\n", b.MaxTurns)
	cmd.Printf("  Keep recent turns: %d\n", b.KeepRecentTurns)
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	if settings.LLM.Provider.IsLocal() && settings.LLM.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	if settings.LLM.Provider.RequiresAPIKey() {
		if settings.LLM.APIKey != "" {
			cmd.Printf("  API Key: %s\n", logger.Redact(settings.LLM.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	if settings.LLM.RequestsPerMinute > 0 {
		cmd.Printf("  Requests per minute: %d\n", settings.LLM.RequestsPerMinute)
	}
	status := "configured"
	if !settings.LLM.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[Chat]")
	cmd.Printf("  Persona: %s\n", settings.Chat.Persona)
	cmd.Printf("  History backend: %s\n", settings.Chat.HistoryBackend)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'ctxwin config wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.SetValue(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	if strings.Contains(key, "api_key") {
		value = logger.Redact(value)
	}
	cmd.Printf("%s = %s\n", key, value)
	return nil
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Validate(); err != nil {
		return err
	}
	cmd.Print("Checking backend... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Println("FAILED")
		return err
	}
	cmd.Println("OK")
	return nil
}

func runConfigWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("ctxwin Settings Wizard")
	cmd.Println("======================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Step 1: Generation Backend")
	cmd.Println("--------------------------")
	if err := configureLLMProvider(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Step 2: Chat Persona")
	cmd.Println("--------------------")
	personas := domain.AllPersonas()
	defaultIdx := 1
	for i, p := range personas {
		if p == domain.PersonaAssistant {
			defaultIdx = i + 1
		}
		cmd.Printf("  %d. %s\n", i+1, p)
	}
	cmd.Printf("\nEnter choice [%d]: ", defaultIdx)
	idx := parseChoice(readLine(reader), len(personas), defaultIdx)
	if err := settingsService.SetPersona(personas[idx-1]); err != nil {
		return fmt.Errorf("failed to set persona: %w", err)
	}
	cmd.Printf("Persona set to: %s\n\n", personas[idx-1])

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}

	return nil
}

func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selected := providers[idx-1]

	defaultModel := domain.DefaultLLMModels()[selected]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selected.RequiresAPIKey() {
		cmd.Printf("Enter API key (blank to use %s): ", selected.APIKeyEnv())
		apiKey = readSecret(cmd.InOrStdin(), reader)
		cmd.Println()
	}

	if err := settingsService.SetLLMProvider(selected, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		// saved anyway so the backend can be started later
		cmd.Printf("FAILED: %v\n", err)
	} else {
		cmd.Println("OK")
	}

	cmd.Printf("LLM provider configured: %s (%s)\n\n", selected.Description(), model)
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

// readSecret reads without echo when in is the terminal, otherwise a plain line.
func readSecret(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	return readLine(reader)
}
