package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/navigator-cli/internal/core/domain"
	"github.com/custodia-labs/navigator-cli/internal/core/ports/driven"
	"github.com/custodia-labs/navigator-cli/internal/logger"
)

// Ensure Reasoner supports custom prompts.
var _ driven.PromptStoreAware = (*Reasoner)(nil)

// Prompt context bounds. Previews keep the reasoning prompt small
// enough that every loop iteration fits comfortably in context.
const (
	internalPreviewLen = 200
	webPreviewLen      = 150
	maxListedDocs      = 10

	reasonMaxTokens   = 500
	reasonTemperature = 0.0
)

// Fallbacks used when the model omits a labelled line.
const (
	fallbackThought = "Analyzing the query and deciding next steps."
)

// defaultReasoningPrompt is the embedded reasoning template, used when
// no prompt store is injected or loading fails. Placeholders: query,
// context summary, available actions, remaining budget.
const defaultReasoningPrompt = `You are a research agent that answers questions by using the available tools.

**Research Query:** %s

**Current Context:**
%s

**Available Actions:**
%s

You have %d tool call(s) remaining before the final answer is forced.

**Your Task:**
Analyze the query and current context, then decide what to do next. Use this format:

THOUGHT: [your reasoning about what to do next]
ACTION: [one of: search_internal, web_search, finish]
ACTION_INPUT: [the query to use for the action]

**Decision rules (follow in order):**
1. If a tool already returned relevant results, use finish. Do not repeat a completed search.
2. Read the content previews above. If they answer the query, use finish immediately.
3. Before choosing search_internal, match the query topic against the knowledge base document names listed above.
4. Use web_search for current events, people, or topics the knowledge base does not cover.
5. When in doubt, finish with what you have rather than spending remaining budget.

Now, what should we do next?`

// Reasoner decides the next action for each loop iteration. It never
// returns an error: any model or parse failure degrades to a finish
// decision so the run always reaches synthesis.
type Reasoner struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewReasoner creates a reasoner backed by the given LLM.
func NewReasoner(llm driven.LLMService) *Reasoner {
	return &Reasoner{llm: llm}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (r *Reasoner) SetPromptStore(store driven.PromptStore) {
	r.prompts = store
}

// Decide evaluates the run state and returns the next decision.
// kbDocs lists the knowledge-base document URIs so the model can judge
// topical fit before choosing internal search.
func (r *Reasoner) Decide(ctx context.Context, state *domain.RunState, kbDocs []string) domain.Decision {
	prompt := fmt.Sprintf(r.template(), state.Query,
		buildContextSummary(state, kbDocs),
		availableActions(state.KBPath != ""),
		state.MaxSteps-state.Step)

	raw, err := r.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   reasonMaxTokens,
		Temperature: reasonTemperature,
	})
	if err != nil {
		logger.Warn("reasoning call failed, finishing: %v", err)
		return domain.Decision{
			Thought: fmt.Sprintf("Reasoning unavailable (%v), synthesizing with gathered evidence.", err),
			Action:  domain.ActionFinish,
		}
	}

	decision := parseDecision(raw)

	// A search with no input searches for the original question.
	if decision.Action != domain.ActionFinish && decision.Input == "" {
		decision.Input = state.Query
	}

	logger.Debug("step %d decision: %s %q", state.Step, decision.Action, decision.Input)
	return decision
}

// template returns the reasoning prompt, preferring the store copy.
func (r *Reasoner) template() string {
	if r.prompts != nil {
		if tmpl, err := r.prompts.Load(driven.PromptReasoning); err == nil {
			return tmpl
		}
	}
	return defaultReasoningPrompt
}

// parseDecision extracts the labelled lines from a model response.
// The parser is deliberately lenient: a response with no recognisable
// ACTION line finishes the run rather than failing it.
func parseDecision(raw string) domain.Decision {
	decision := domain.Decision{Action: domain.ActionFinish}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "THOUGHT:"):
			decision.Thought = strings.TrimSpace(strings.TrimPrefix(line, "THOUGHT:"))
		case strings.HasPrefix(line, "ACTION:"):
			decision.Action = normalizeAction(strings.TrimPrefix(line, "ACTION:"))
		case strings.HasPrefix(line, "ACTION_INPUT:"):
			decision.Input = strings.TrimSpace(strings.TrimPrefix(line, "ACTION_INPUT:"))
		}
	}

	if decision.Thought == "" {
		thought := strings.TrimSpace(raw)
		if thought == "" {
			thought = fallbackThought
		}
		decision.Thought = truncate(thought, internalPreviewLen)
	}

	return decision
}

// normalizeAction maps a free-text action value onto a known action.
// Substring matching tolerates decorations like "ACTION: [web_search]".
func normalizeAction(value string) domain.Action {
	value = strings.ToLower(strings.TrimSpace(value))
	switch {
	case strings.Contains(value, "internal"):
		return domain.ActionSearchInternal
	case strings.Contains(value, "web"):
		return domain.ActionWebSearch
	default:
		return domain.ActionFinish
	}
}

// buildContextSummary renders what the run has learned so far: the
// knowledge base contents and every completed search with a preview.
func buildContextSummary(state *domain.RunState, kbDocs []string) string {
	var b strings.Builder

	if state.KBPath != "" {
		fmt.Fprintf(&b, "Knowledge Base: %s\n", state.KBPath)
		if len(kbDocs) > 0 {
			b.WriteString("Documents: " + docNameList(kbDocs) + "\n")
		} else {
			b.WriteString("Documents: (none indexed)\n")
		}
		b.WriteString("\n")
	}

	if len(state.Trail) == 0 {
		b.WriteString("No searches performed yet.")
		return b.String()
	}

	b.WriteString("Completed searches:\n")
	for _, rec := range state.Trail {
		if rec.Err != "" {
			fmt.Fprintf(&b, "- %s %q failed: %s\n", rec.Action, rec.Input, rec.Err)
			continue
		}
		fmt.Fprintf(&b, "- %s %q returned %d results\n", rec.Action, rec.Input, rec.Results)
	}

	if len(state.Internal) > 0 {
		fmt.Fprintf(&b, "\nInternal evidence (%d items). First result preview:\n%s\n",
			len(state.Internal), truncate(state.Internal[0].Content, internalPreviewLen))
	}
	if len(state.External) > 0 {
		first := state.External[0]
		fmt.Fprintf(&b, "\nWeb evidence (%d items). First result: %s\n%s\n",
			len(state.External), first.Source, truncate(first.Content, webPreviewLen))
	}

	return strings.TrimRight(b.String(), "\n")
}

// docNameList renders the knowledge-base file names, capped so large
// directories don't dominate the prompt.
func docNameList(docs []string) string {
	names := make([]string, 0, maxListedDocs)
	for i, doc := range docs {
		if i >= maxListedDocs {
			break
		}
		names = append(names, filepath.Base(doc))
	}
	list := strings.Join(names, ", ")
	if extra := len(docs) - maxListedDocs; extra > 0 {
		list += fmt.Sprintf(" (and %d more)", extra)
	}
	return list
}

// availableActions lists the actions the model may choose.
// search_internal only appears when a knowledge base is configured.
func availableActions(hasKB bool) string {
	var b strings.Builder
	if hasKB {
		b.WriteString("- search_internal: semantic search over the local knowledge base\n")
	}
	b.WriteString("- web_search: search the web for current or external information\n")
	b.WriteString("- finish: stop researching and write the final brief")
	return b.String()
}

// truncate limits s to max runes, appending an ellipsis when cut.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
