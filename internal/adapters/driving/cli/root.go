// Package cli implements the cobra command tree for the navigator
// binary.
package cli

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/navigator-cli/internal/logger"
)

// version is the binary version, set at build time via -ldflags.
var version = "dev"

// Persistent flags.
var (
	verboseFlag bool
	configDir   string
)

var rootCmd = &cobra.Command{
	Use:   "navigator",
	Short: "Research agent for the command line",
	Long: `Navigator answers research questions by alternating LLM reasoning
with two retrieval tools: semantic search over a local knowledge base
and web search. Each run works under a hard step budget and ends with
a structured markdown brief.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// Credentials may live in a .env next to the working directory.
		_ = godotenv.Load()
		logger.SetVerbose(verboseFlag)
	},
}

// Execute runs the command tree. The context carries signal
// cancellation from main.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "log the research loop to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "configuration directory (default ~/.navigator)")
}
