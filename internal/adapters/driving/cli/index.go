package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var indexRebuild bool

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Build the knowledge-base index for a directory",
	Long: `Chunks, embeds, and persists every supported document under the
given directory so later research runs can search it without waiting
for an index build. Requires an embedding provider to be configured.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexRebuild, "rebuild", false, "discard the persisted index and rebuild from source")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	kbPath := args[0]

	svc, err := getServices(false)
	if err != nil {
		return err
	}
	defer svc.cleanup()

	count, err := svc.research.BuildIndex(cmd.Context(), kbPath, indexRebuild)
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	cmd.Printf("Indexed %d chunks from %s\n", count, kbPath)
	return nil
}
