package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/navigator-cli/internal/adapters/driven/config/file"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Prints the configuration Navigator would use for a research run:
the config file location, the configured providers, and whether each
required credential is present. Credential values are never printed.`,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("opening configuration: %w", err)
	}
	settings := file.LoadAppSettings(store)

	cmd.Printf("Configuration file: %s\n\n", store.Path())

	cmd.Println("[embedding]")
	cmd.Printf("  provider = %s\n", orUnset(settings.Embedding.Provider.String()))
	cmd.Printf("  model    = %s\n", orUnset(settings.Embedding.Model))
	cmd.Printf("  base_url = %s\n", orUnset(settings.Embedding.BaseURL))
	cmd.Printf("  api_key  = %s\n", keyPresence(settings.Embedding.APIKey))
	cmd.Printf("  ready    = %t\n\n", settings.Embedding.IsConfigured())

	cmd.Println("[llm]")
	cmd.Printf("  provider = %s\n", orUnset(settings.LLM.Provider.String()))
	cmd.Printf("  model    = %s\n", orUnset(settings.LLM.Model))
	cmd.Printf("  base_url = %s\n", orUnset(settings.LLM.BaseURL))
	cmd.Printf("  api_key  = %s\n", keyPresence(settings.LLM.APIKey))
	cmd.Printf("  ready    = %t\n\n", settings.LLM.IsConfigured())

	cmd.Println("[websearch]")
	cmd.Printf("  provider = %s\n", orUnset(settings.WebSearch.Provider.String()))
	cmd.Printf("  api_key  = %s\n", keyPresence(settings.WebSearch.APIKey))
	cmd.Printf("  ready    = %t\n\n", settings.WebSearch.IsConfigured())

	cmd.Println("[research]")
	cmd.Printf("  max_steps     = %d\n", settings.Research.MaxSteps)
	cmd.Printf("  top_k         = %d\n", settings.Research.TopK)
	cmd.Printf("  chunk_size    = %d\n", settings.Research.ChunkSize)
	cmd.Printf("  chunk_overlap = %d\n", settings.Research.ChunkOverlap)

	return nil
}

func orUnset(value string) string {
	if value == "" {
		return "(not set)"
	}
	return value
}

func keyPresence(key string) string {
	if key == "" {
		return "(not set)"
	}
	return "(set)"
}
