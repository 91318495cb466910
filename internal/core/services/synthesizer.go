package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/navigator-cli/internal/core/domain"
	"github.com/custodia-labs/navigator-cli/internal/core/ports/driven"
	"github.com/custodia-labs/navigator-cli/internal/logger"
)

// Ensure Synthesizer supports custom prompts.
var _ driven.PromptStoreAware = (*Synthesizer)(nil)

// Synthesis bounds. Only the most recent sources of each origin reach
// the prompt: later searches are more targeted, so recency wins.
const (
	maxSourcesPerSide = 5
	synthPreviewLen   = 300

	synthMaxTokens   = 2000
	synthTemperature = 0.3
)

// defaultSynthesisPrompt is the embedded synthesis template, used when
// no prompt store is injected or loading fails. Placeholders: query,
// formatted source sections.
const defaultSynthesisPrompt = `You are a research assistant tasked with creating a comprehensive research brief.

**Research Query:** %s

%s

**Your Task:**
Synthesize the information from all sources into a well-structured research brief in Markdown format.

**Required Structure:**

# Research Brief: [the query]

## Summary
[2-3 sentences summarizing the key findings]

## Key Findings
[3-5 bullet points with the most important insights from the sources]

## Detailed Analysis
[2-3 paragraphs providing deeper analysis, comparisons, or explanations based on the sources]

## Sources
### Internal Knowledge Base
[List internal sources if used]

### External Web Sources
[List external sources with links if used]

## Reasoning Trace
[Brief numbered list of the steps taken]

**Guidelines:**
1. Synthesize information from ALL sources, don't just copy
2. Cite sources when making specific claims
3. Be objective and balanced
4. If sources conflict, acknowledge different perspectives
5. Keep language clear and accessible

Now, generate the research brief:`

// Synthesizer turns a finished run state into the final brief. It
// never returns an error: when the model call fails the deterministic
// fallback template renders the gathered evidence directly.
type Synthesizer struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewSynthesizer creates a synthesizer backed by the given LLM.
func NewSynthesizer(llm driven.LLMService) *Synthesizer {
	return &Synthesizer{llm: llm}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *Synthesizer) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// Synthesize produces the research brief for the run.
func (s *Synthesizer) Synthesize(ctx context.Context, state *domain.RunState) *domain.Brief {
	brief := &domain.Brief{
		Query:           state.Query,
		Steps:           state.Step,
		InternalSources: distinctSources(state.Internal),
		ExternalSources: distinctSources(state.External),
	}

	prompt := fmt.Sprintf(s.template(), state.Query, buildSourceSections(state))

	markdown, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   synthMaxTokens,
		Temperature: synthTemperature,
	})
	if err != nil || strings.TrimSpace(markdown) == "" {
		if err != nil {
			logger.Warn("synthesis call failed, using fallback template: %v", err)
		}
		brief.Markdown = fallbackBrief(state)
		brief.Fallback = true
		return brief
	}

	brief.Markdown = strings.TrimSpace(markdown)
	return brief
}

// template returns the synthesis prompt, preferring the store copy.
func (s *Synthesizer) template() string {
	if s.prompts != nil {
		if tmpl, err := s.prompts.Load(driven.PromptSynthesis); err == nil {
			return tmpl
		}
	}
	return defaultSynthesisPrompt
}

// buildSourceSections renders the evidence and a condensed trail for
// the synthesis prompt.
func buildSourceSections(state *domain.RunState) string {
	var b strings.Builder

	internal := recentEvidence(state.Internal, maxSourcesPerSide)
	external := recentEvidence(state.External, maxSourcesPerSide)

	if len(internal) == 0 && len(external) == 0 {
		b.WriteString("**No evidence was gathered.** State this explicitly in the brief and answer only from general knowledge, clearly marked as such.\n")
	}

	if len(internal) > 0 {
		b.WriteString("**Internal Knowledge Base Sources:**\n\n")
		for i, ev := range internal {
			fmt.Fprintf(&b, "%d. %s (relevance %.2f)\n%s\n\n",
				i+1, ev.Source, ev.Score, truncate(ev.Content, synthPreviewLen))
		}
	}

	if len(external) > 0 {
		b.WriteString("**External Web Sources:**\n\n")
		for i, ev := range external {
			fmt.Fprintf(&b, "%d. %s\n%s\n\n", i+1, ev.Source, truncate(ev.Content, synthPreviewLen))
		}
	}

	if len(state.Trail) > 0 {
		b.WriteString("**Research Steps Taken:**\n")
		writeTrail(&b, state.Trail)
	}

	return strings.TrimRight(b.String(), "\n")
}

// writeTrail renders the condensed decision trail, one numbered line
// per record. A finish record carries no tool outcome; its rationale
// is the interesting part, so that is what gets printed.
func writeTrail(b *strings.Builder, trail []domain.DecisionRecord) {
	for i, rec := range trail {
		if rec.Action == domain.ActionFinish {
			fmt.Fprintf(b, "%d. %s: %s\n", i+1, rec.Action, truncate(rec.Thought, synthPreviewLen))
			continue
		}
		outcome := fmt.Sprintf("%d results", rec.Results)
		if rec.Err != "" {
			outcome = "failed: " + rec.Err
		}
		fmt.Fprintf(b, "%d. %s %q (%s)\n", i+1, rec.Action, rec.Input, outcome)
	}
}

// fallbackBrief renders the brief without a model: required sections,
// evidence previews, and the decision trail, deterministically.
func fallbackBrief(state *domain.RunState) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Research Brief: %s\n\n", state.Query)

	b.WriteString("## Summary\n\n")
	if len(state.Internal) == 0 && len(state.External) == 0 {
		b.WriteString("No evidence was gathered for this query. ")
		b.WriteString("Automated synthesis was unavailable, so no findings can be reported.\n\n")
	} else {
		fmt.Fprintf(&b,
			"Automated synthesis was unavailable. The research run gathered %d internal and %d external results over %d steps; the raw findings are listed below.\n\n",
			len(state.Internal), len(state.External), state.Step)
	}

	b.WriteString("## Key Findings\n\n")
	var findings []domain.Evidence
	findings = append(findings, recentEvidence(state.Internal, maxSourcesPerSide)...)
	findings = append(findings, recentEvidence(state.External, maxSourcesPerSide)...)
	if len(findings) == 0 {
		b.WriteString("- No findings available.\n")
	}
	for _, ev := range findings {
		fmt.Fprintf(&b, "- %s: %s\n", ev.Source, truncate(ev.Content, internalPreviewLen))
	}
	b.WriteString("\n")

	b.WriteString("## Sources\n\n### Internal Knowledge Base\n\n")
	writeSourceList(&b, distinctSources(state.Internal))
	b.WriteString("\n### External Web Sources\n\n")
	writeSourceList(&b, distinctSources(state.External))

	b.WriteString("\n## Reasoning Trace\n\n")
	if len(state.Trail) == 0 {
		b.WriteString("1. No research steps were taken.\n")
	}
	writeTrail(&b, state.Trail)

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func writeSourceList(b *strings.Builder, sources []string) {
	if len(sources) == 0 {
		b.WriteString("- None\n")
		return
	}
	for _, src := range sources {
		fmt.Fprintf(b, "- %s\n", src)
	}
}

// recentEvidence returns the most recent n items, oldest first.
func recentEvidence(evidence []domain.Evidence, n int) []domain.Evidence {
	if len(evidence) <= n {
		return evidence
	}
	return evidence[len(evidence)-n:]
}

// distinctSources returns the distinct non-empty sources in first-seen
// order.
func distinctSources(evidence []domain.Evidence) []string {
	seen := make(map[string]bool)
	var sources []string
	for _, ev := range evidence {
		if ev.Source == "" || seen[ev.Source] {
			continue
		}
		seen[ev.Source] = true
		sources = append(sources, ev.Source)
	}
	return sources
}
