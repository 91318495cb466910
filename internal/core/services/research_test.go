package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/navigator-cli/internal/core/domain"
	"github.com/custodia-labs/navigator-cli/internal/core/ports/driven"
)

// newTestOrchestrator wires an orchestrator around one fake LLM that
// serves both reasoning and synthesis.
func newTestOrchestrator(llm driven.LLMService, web driven.WebSearchService, connector *fakeConnector) *Orchestrator {
	var (
		registry  *IndexRegistry
		retrieval *RetrievalService
	)
	if connector != nil {
		registry = newTestRegistry(connector, newMemIndexStore())
		retrieval = NewRetrievalService(registry, &fakeEmbedder{})
	}
	return NewOrchestrator(NewReasoner(llm), retrieval, web, NewSynthesizer(llm), registry)
}

func TestResearch_EmptyQuery(t *testing.T) {
	orch := newTestOrchestrator(&fakeLLM{}, nil, nil)

	_, err := orch.Research(context.Background(), "", domain.ResearchOptions{MaxSteps: 3})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestResearch_StepBudgetForcesFinish(t *testing.T) {
	// A reasoner that always wants another web search must still stop
	// at the budget.
	llm := &fakeLLM{responses: []string{"THOUGHT: more\nACTION: web_search\nACTION_INPUT: next"}}
	web := &fakeWebSearch{results: []driven.WebResult{{Title: "t", URL: "https://x", Content: "c"}}}
	orch := newTestOrchestrator(llm, web, nil)

	brief, err := orch.Research(context.Background(), "query", domain.ResearchOptions{MaxSteps: 3, TopK: 1})

	require.NoError(t, err)
	require.NotNil(t, brief)
	assert.Equal(t, 3, brief.Steps)
	assert.Equal(t, 3, web.calls)
	// 3 reasoning calls + 1 synthesis call; the budget check runs
	// before the reasoner, so the fourth iteration never consults it.
	assert.Equal(t, 4, llm.callCount())
}

func TestResearch_FinishStopsEarly(t *testing.T) {
	llm := &fakeLLM{responses: []string{
		"THOUGHT: look\nACTION: web_search\nACTION_INPUT: q",
		"THOUGHT: enough\nACTION: finish",
		"# Research Brief: query\n\n## Summary\ndone",
	}}
	web := &fakeWebSearch{results: []driven.WebResult{{URL: "https://x", Content: "c"}}}
	orch := newTestOrchestrator(llm, web, nil)

	brief, err := orch.Research(context.Background(), "query", domain.ResearchOptions{MaxSteps: 10, TopK: 1})

	require.NoError(t, err)
	assert.Equal(t, 1, brief.Steps)
	assert.False(t, brief.Fallback)
	assert.Equal(t, []string{"https://x"}, brief.ExternalSources)
}

func TestResearch_LLMFailureStillProducesBrief(t *testing.T) {
	orch := newTestOrchestrator(&fakeLLM{err: errors.New("provider down")}, nil, nil)

	brief, err := orch.Research(context.Background(), "query", domain.ResearchOptions{MaxSteps: 5})

	require.NoError(t, err)
	require.NotNil(t, brief)
	// First reasoning call fails, the run finishes with zero steps, and
	// the failed synthesis degrades to the fallback template.
	assert.Equal(t, 0, brief.Steps)
	assert.True(t, brief.Fallback)
	assert.Contains(t, brief.Markdown, "# Research Brief: query")
}

func TestResearch_ToolErrorsAreRecordedNotFatal(t *testing.T) {
	llm := &fakeLLM{responses: []string{
		"ACTION: search_internal\nACTION_INPUT: q",
		"ACTION: web_search\nACTION_INPUT: q",
		"ACTION: finish",
		"the brief",
	}}
	web := &fakeWebSearch{err: errors.New("quota exceeded")}
	// No knowledge base configured, so internal search fails too.
	orch := newTestOrchestrator(llm, web, nil)

	brief, err := orch.Research(context.Background(), "query", domain.ResearchOptions{MaxSteps: 5, TopK: 2})

	require.NoError(t, err)
	require.NotNil(t, brief)
	assert.Equal(t, 2, brief.Steps)
	assert.Empty(t, brief.InternalSources)
	assert.Empty(t, brief.ExternalSources)
	assert.Equal(t, "the brief", brief.Markdown)
}

func TestResearch_ZeroBudgetFinishesImmediately(t *testing.T) {
	llm := &fakeLLM{err: errors.New("must not matter")}
	orch := newTestOrchestrator(llm, nil, nil)

	brief, err := orch.Research(context.Background(), "query", domain.ResearchOptions{MaxSteps: 0})

	require.NoError(t, err)
	assert.Equal(t, 0, brief.Steps)
	assert.True(t, brief.Fallback)
	assert.Contains(t, brief.Markdown, "No evidence was gathered")
	// Only the synthesis attempt reaches the model.
	assert.Equal(t, 1, llm.callCount())
}

func TestResearch_CancellationProducesBestEffortBrief(t *testing.T) {
	llm := &fakeLLM{responses: []string{"ACTION: web_search\nACTION_INPUT: q"}}
	web := &fakeWebSearch{results: []driven.WebResult{{URL: "https://x", Content: "c"}}}
	orch := newTestOrchestrator(llm, web, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	brief, err := orch.Research(ctx, "query", domain.ResearchOptions{MaxSteps: 5})

	require.NoError(t, err)
	require.NotNil(t, brief)
	assert.Equal(t, 0, brief.Steps)
	assert.NotEmpty(t, brief.Markdown)
}

func TestResearch_InternalSearchGathersEvidence(t *testing.T) {
	llm := &fakeLLM{responses: []string{
		"THOUGHT: the kb covers cats\nACTION: search_internal\nACTION_INPUT: cat facts",
		"ACTION: finish",
		"synthesized",
	}}
	connector := &fakeConnector{docs: []domain.RawDocument{
		textDoc("/kb/cats.txt", "Cats purr at 25 hertz."),
		textDoc("/kb/dogs.txt", "Dogs bark."),
	}}
	orch := newTestOrchestrator(llm, nil, connector)

	brief, err := orch.Research(context.Background(), "cat facts",
		domain.ResearchOptions{KBPath: "/kb", MaxSteps: 5, TopK: 1})

	require.NoError(t, err)
	assert.Equal(t, 1, brief.Steps)
	assert.Equal(t, []string{"/kb/cats.txt"}, brief.InternalSources)
}

func TestResearch_KBDocumentsReachTheReasoner(t *testing.T) {
	llm := &fakeLLM{responses: []string{"ACTION: finish", "brief"}}
	connector := &fakeConnector{docs: []domain.RawDocument{textDoc("/kb/guide.txt", "cats")}}
	orch := newTestOrchestrator(llm, nil, connector)

	_, err := orch.Research(context.Background(), "q",
		domain.ResearchOptions{KBPath: "/kb", MaxSteps: 2})

	require.NoError(t, err)
	require.NotEmpty(t, llm.prompts)
	assert.Contains(t, llm.prompts[0], "guide.txt")
}

func TestResearch_UnusableKnowledgeBaseDisablesInternalTool(t *testing.T) {
	llm := &fakeLLM{responses: []string{"ACTION: finish", "brief"}}
	connector := &fakeConnector{err: errors.New("permission denied")}
	orch := newTestOrchestrator(llm, nil, connector)

	brief, err := orch.Research(context.Background(), "q",
		domain.ResearchOptions{KBPath: "/kb", MaxSteps: 2})

	require.NoError(t, err)
	require.NotNil(t, brief)
	// The reasoner must not be offered a tool that cannot work.
	assert.NotContains(t, llm.prompts[0], "search_internal: semantic search")
}

func TestResearch_ReasonerFailureRationaleReachesTrace(t *testing.T) {
	orch := newTestOrchestrator(&fakeLLM{err: errors.New("provider unreachable")}, nil, nil)

	brief, err := orch.Research(context.Background(), "query", domain.ResearchOptions{MaxSteps: 5})

	require.NoError(t, err)
	require.True(t, brief.Fallback)
	// The forced finish is a trail record like any other decision, so
	// the fallback trace explains why the run stopped.
	assert.Contains(t, brief.Markdown, "provider unreachable")
	assert.NotContains(t, brief.Markdown, "No research steps were taken")
}

func TestResearch_FinishThoughtReachesSynthesisPrompt(t *testing.T) {
	llm := &fakeLLM{responses: []string{
		"THOUGHT: look\nACTION: web_search\nACTION_INPUT: q",
		"THOUGHT: the evidence is sufficient\nACTION: finish",
		"the brief",
	}}
	web := &fakeWebSearch{results: []driven.WebResult{{URL: "https://x", Content: "c"}}}
	orch := newTestOrchestrator(llm, web, nil)

	brief, err := orch.Research(context.Background(), "query", domain.ResearchOptions{MaxSteps: 5, TopK: 1})

	require.NoError(t, err)
	// Recording the finish decision must not consume budget.
	assert.Equal(t, 1, brief.Steps)
	require.Len(t, llm.prompts, 3)
	assert.Contains(t, llm.prompts[2], "the evidence is sufficient")
}

func TestBuildIndex(t *testing.T) {
	connector := &fakeConnector{docs: []domain.RawDocument{
		textDoc("/kb/a.txt", "cats"),
		textDoc("/kb/b.txt", "dogs"),
	}}
	orch := newTestOrchestrator(&fakeLLM{}, nil, connector)

	count, err := orch.BuildIndex(context.Background(), "/kb", false)

	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestBuildIndex_NoRegistry(t *testing.T) {
	orch := newTestOrchestrator(&fakeLLM{}, nil, nil)

	_, err := orch.BuildIndex(context.Background(), "/kb", false)

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}
