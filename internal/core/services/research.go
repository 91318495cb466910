package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/navigator-cli/internal/core/domain"
	"github.com/custodia-labs/navigator-cli/internal/core/ports/driven"
	"github.com/custodia-labs/navigator-cli/internal/core/ports/driving"
	"github.com/custodia-labs/navigator-cli/internal/logger"
)

// Ensure Orchestrator implements the interface.
var _ driving.ResearchService = (*Orchestrator)(nil)

// Orchestrator runs the research loop: REASON, act, repeat until the
// reasoner finishes or the step budget is spent, then synthesize.
//
// Loop guarantees:
//   - the step ceiling is checked before consulting the reasoner, so a
//     run makes at most MaxSteps tool calls and MaxSteps+1 reasoner
//     evaluations;
//   - tool errors are recorded in the decision trail and never abort
//     the run;
//   - cancellation is honoured at each suspension point and still
//     produces a best-effort brief.
type Orchestrator struct {
	reasoner    *Reasoner
	retrieval   *RetrievalService
	webSearch   driven.WebSearchService
	synthesizer *Synthesizer
	registry    *IndexRegistry
}

// NewOrchestrator creates the research service. retrieval, webSearch,
// and registry may be nil; the corresponding tool then fails softly
// with a trail record instead of results.
func NewOrchestrator(
	reasoner *Reasoner,
	retrieval *RetrievalService,
	webSearch driven.WebSearchService,
	synthesizer *Synthesizer,
	registry *IndexRegistry,
) *Orchestrator {
	return &Orchestrator{
		reasoner:    reasoner,
		retrieval:   retrieval,
		webSearch:   webSearch,
		synthesizer: synthesizer,
		registry:    registry,
	}
}

// Research answers the query. A brief is always returned once the run
// starts; the error return covers only invalid input.
func (o *Orchestrator) Research(ctx context.Context, query string, opts domain.ResearchOptions) (*domain.Brief, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	normalizeOptions(&opts)

	state := domain.NewRunState(query, opts)
	logger.Section("Research: " + query)
	logger.Info("run %s: max_steps=%d top_k=%d kb=%q", state.RunID, state.MaxSteps, state.TopK, state.KBPath)

	kbDocs := o.prepareKnowledgeBase(ctx, &opts, state)

	for {
		if ctx.Err() != nil {
			logger.Warn("run %s cancelled at step %d, synthesizing best-effort brief", state.RunID, state.Step)
			break
		}

		// Budget check comes before the reasoner so its action can
		// never push a run past the ceiling.
		if state.Step >= state.MaxSteps {
			logger.Debug("step budget spent (%d), forcing finish", state.MaxSteps)
			break
		}

		decision := o.reasoner.Decide(ctx, state, kbDocs)
		if decision.Action == domain.ActionFinish {
			logger.Debug("reasoner chose finish: %s", decision.Thought)
			// The finish rationale belongs in the trail too. It is not
			// a tool call, so the step counter stays put.
			state.Trail = append(state.Trail, domain.DecisionRecord{
				Step:    state.Step,
				Thought: decision.Thought,
				Action:  domain.ActionFinish,
				Input:   decision.Input,
			})
			break
		}

		evidence, err := o.executeTool(ctx, state, decision)
		state.Step++

		record := domain.DecisionRecord{
			Step:    state.Step,
			Thought: decision.Thought,
			Action:  decision.Action,
			Input:   decision.Input,
			Results: len(evidence),
		}
		if err != nil {
			record.Err = err.Error()
			logger.Warn("step %d: %s failed: %v", state.Step, decision.Action, err)
		}
		state.Trail = append(state.Trail, record)
	}

	return o.synthesizer.Synthesize(ctx, state), nil
}

// BuildIndex builds (or force-rebuilds) the index for a knowledge-base
// directory and returns the number of indexed chunks.
func (o *Orchestrator) BuildIndex(ctx context.Context, kbPath string, rebuild bool) (int, error) {
	if o.registry == nil {
		return 0, fmt.Errorf("%w: no embedding provider configured", domain.ErrEmbeddingUnavailable)
	}
	idx, err := o.registry.Get(ctx, kbPath, rebuild)
	if err != nil {
		return 0, err
	}
	return idx.Len(), nil
}

// prepareKnowledgeBase warms the index for the run and returns the
// indexed document URIs for the reasoning prompt. Failures disable
// internal search for this run but never abort it.
func (o *Orchestrator) prepareKnowledgeBase(ctx context.Context, opts *domain.ResearchOptions, state *domain.RunState) []string {
	if opts.KBPath == "" {
		return nil
	}
	if o.registry == nil || o.retrieval == nil {
		logger.Warn("knowledge base %s ignored: no embedding provider configured", opts.KBPath)
		state.KBPath = ""
		return nil
	}

	idx, err := o.registry.Get(ctx, opts.KBPath, opts.RebuildIndex)
	if err != nil {
		logger.Warn("knowledge base %s unavailable: %v", opts.KBPath, err)
		state.KBPath = ""
		return nil
	}
	return idx.Documents()
}

// executeTool runs the decided action and appends its evidence to the
// matching run-state list.
func (o *Orchestrator) executeTool(ctx context.Context, state *domain.RunState, decision domain.Decision) ([]domain.Evidence, error) {
	switch decision.Action {
	case domain.ActionSearchInternal:
		if o.retrieval == nil || state.KBPath == "" {
			return nil, fmt.Errorf("%w: no knowledge base configured", domain.ErrRetrieval)
		}
		evidence, err := o.retrieval.SearchInternal(ctx, state.KBPath, decision.Input, state.TopK)
		if err != nil {
			return nil, err
		}
		state.Internal = append(state.Internal, evidence...)
		return evidence, nil

	case domain.ActionWebSearch:
		if o.webSearch == nil {
			return nil, fmt.Errorf("%w: no web search provider configured", domain.ErrWebSearchUnavailable)
		}
		results, err := o.webSearch.Search(ctx, decision.Input, state.TopK)
		if err != nil {
			return nil, err
		}
		evidence := make([]domain.Evidence, 0, len(results))
		for _, r := range results {
			evidence = append(evidence, domain.Evidence{
				Content: r.Content,
				Source:  r.URL,
				Score:   r.Score,
				Origin:  domain.OriginExternal,
			})
		}
		state.External = append(state.External, evidence...)
		return evidence, nil

	default:
		return nil, fmt.Errorf("%w: unexpected action %q", domain.ErrInvalidInput, decision.Action)
	}
}

// normalizeOptions fills in defaults for unset option fields. An
// explicit MaxSteps of zero is honoured: the run finishes immediately.
func normalizeOptions(opts *domain.ResearchOptions) {
	defaults := domain.DefaultAppSettings().Research
	if opts.MaxSteps < 0 {
		opts.MaxSteps = defaults.MaxSteps
	}
	if opts.TopK <= 0 {
		opts.TopK = defaults.TopK
	}
}
