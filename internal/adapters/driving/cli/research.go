package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/navigator-cli/internal/core/domain"
)

var (
	researchKB      string
	researchSteps   int
	researchTopK    int
	researchOutput  string
	researchRebuild bool
	researchJSON    bool
)

var researchCmd = &cobra.Command{
	Use:   "research [query]",
	Short: "Research a question and write a brief",
	Long: `Runs the research loop for a query: an LLM decides at each step
whether to search the local knowledge base, search the web, or finish,
then synthesizes the gathered evidence into a markdown brief.

The command exits zero whenever a brief was produced, including the
deterministic fallback brief used when synthesis fails. A non-zero exit
means the run could not start at all.`,
	Args: cobra.ExactArgs(1),
	RunE: runResearch,
}

func init() {
	researchCmd.Flags().StringVar(&researchKB, "kb", "", "knowledge base directory for internal search")
	researchCmd.Flags().IntVar(&researchSteps, "max-steps", 0, "step budget (default from config, 10)")
	researchCmd.Flags().IntVar(&researchTopK, "top-k", 0, "results per tool call (default from config, 5)")
	researchCmd.Flags().StringVarP(&researchOutput, "output", "o", "", "write the brief to a markdown file")
	researchCmd.Flags().BoolVar(&researchRebuild, "rebuild-index", false, "rebuild the knowledge-base index before searching")
	researchCmd.Flags().BoolVar(&researchJSON, "json", false, "output the brief as JSON")
	rootCmd.AddCommand(researchCmd)
}

func runResearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	svc, err := getServices(true)
	if err != nil {
		return err
	}
	defer svc.cleanup()

	opts := domain.ResearchOptions{
		KBPath:       researchKB,
		MaxSteps:     svc.settings.Research.MaxSteps,
		TopK:         svc.settings.Research.TopK,
		RebuildIndex: researchRebuild,
	}
	if cmd.Flags().Changed("max-steps") {
		opts.MaxSteps = researchSteps
	}
	if cmd.Flags().Changed("top-k") {
		opts.TopK = researchTopK
	}

	brief, err := svc.research.Research(cmd.Context(), query, opts)
	if err != nil {
		return fmt.Errorf("research failed: %w", err)
	}

	if researchOutput != "" {
		if err := os.WriteFile(researchOutput, []byte(brief.Markdown+"\n"), 0644); err != nil {
			return fmt.Errorf("writing brief to %s: %w", researchOutput, err)
		}
		cmd.Printf("Brief written to %s\n", researchOutput)
		return nil
	}

	if researchJSON {
		return outputBriefJSON(cmd, brief)
	}

	cmd.Println(brief.Markdown)
	return nil
}

func outputBriefJSON(cmd *cobra.Command, brief *domain.Brief) error {
	payload := struct {
		Query           string   `json:"query"`
		Markdown        string   `json:"markdown"`
		Fallback        bool     `json:"fallback"`
		Steps           int      `json:"steps"`
		InternalSources []string `json:"internal_sources"`
		ExternalSources []string `json:"external_sources"`
	}{
		Query:           brief.Query,
		Markdown:        brief.Markdown,
		Fallback:        brief.Fallback,
		Steps:           brief.Steps,
		InternalSources: brief.InternalSources,
		ExternalSources: brief.ExternalSources,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal brief: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
