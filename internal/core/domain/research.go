package domain

import "github.com/google/uuid"

// Action is one of the moves the reasoner can choose for the next
// loop iteration.
type Action string

// Available actions.
const (
	// ActionSearchInternal queries the local knowledge-base index.
	ActionSearchInternal Action = "search_internal"

	// ActionWebSearch queries the external web search provider.
	ActionWebSearch Action = "web_search"

	// ActionFinish ends the loop and synthesizes the brief.
	ActionFinish Action = "finish"
)

// IsValid returns true if the action is recognised.
func (a Action) IsValid() bool {
	switch a {
	case ActionSearchInternal, ActionWebSearch, ActionFinish:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (a Action) String() string {
	return string(a)
}

// EvidenceOrigin tags which tool produced an evidence item.
type EvidenceOrigin string

// Evidence origins.
const (
	// OriginInternal marks evidence from the knowledge-base index.
	OriginInternal EvidenceOrigin = "internal"

	// OriginExternal marks evidence from web search.
	OriginExternal EvidenceOrigin = "external"
)

// Evidence is one normalised retrieval result accumulated during a run.
// Evidence lists are append-only: ordering reflects call order, because
// later, more targeted queries matter for synthesis.
type Evidence struct {
	// Content is the retrieved text.
	Content string

	// Source identifies where the content came from (document name or
	// URL). May be empty.
	Source string

	// Score is the relevance score reported by the producing tool.
	Score float64

	// Origin is the tool tag (internal or external).
	Origin EvidenceOrigin
}

// Decision is the reasoner's output for one loop iteration.
type Decision struct {
	// Thought is the free-text rationale.
	Thought string

	// Action is the chosen next move.
	Action Action

	// Input is the query to pass to the chosen tool. Ignored for
	// ActionFinish.
	Input string
}

// DecisionRecord is the audit-trail entry for one completed loop
// iteration: the decision plus the observed outcome.
type DecisionRecord struct {
	// Step is the step counter value when the decision was made.
	Step int

	// Thought is the rationale behind the decision.
	Thought string

	// Action is the action that was executed.
	Action Action

	// Input is the input the tool was invoked with.
	Input string

	// Results is the number of evidence items the action produced.
	Results int

	// Err holds the tool failure message, empty on success.
	Err string
}

// RunState is the mutable record threaded through every loop iteration
// of one research run. It is owned by the orchestrator and discarded
// when the run returns its brief.
type RunState struct {
	// RunID uniquely identifies this run in logs.
	RunID string

	// Query is the original research question.
	Query string

	// KBPath is the knowledge-base directory, empty when no internal
	// source is configured.
	KBPath string

	// Step counts completed tool invocations. Starts at 0 and
	// increments by exactly one per completed tool call.
	Step int

	// MaxSteps is the step budget, fixed at run start.
	MaxSteps int

	// TopK is the number of results requested per tool call.
	TopK int

	// Internal accumulates evidence from knowledge-base search.
	Internal []Evidence

	// External accumulates evidence from web search.
	External []Evidence

	// Trail is the append-only decision log.
	Trail []DecisionRecord
}

// NewRunState creates the initial state for a research run.
func NewRunState(query string, opts ResearchOptions) *RunState {
	return &RunState{
		RunID:    uuid.New().String(),
		Query:    query,
		KBPath:   opts.KBPath,
		MaxSteps: opts.MaxSteps,
		TopK:     opts.TopK,
	}
}

// EvidenceCount returns how many items the given origin has produced.
func (s *RunState) EvidenceCount(origin EvidenceOrigin) int {
	if origin == OriginInternal {
		return len(s.Internal)
	}
	return len(s.External)
}

// ToolCalled reports whether any trail entry executed the given action.
func (s *RunState) ToolCalled(action Action) bool {
	for _, rec := range s.Trail {
		if rec.Action == action {
			return true
		}
	}
	return false
}

// ResearchOptions configures a research run.
type ResearchOptions struct {
	// KBPath is the knowledge-base directory for internal search.
	// Empty disables the internal tool.
	KBPath string

	// MaxSteps is the step budget. Zero means finish immediately.
	MaxSteps int

	// TopK is the number of results per tool call.
	TopK int

	// RebuildIndex forces a rebuild of the knowledge-base index,
	// bypassing both the process cache and the persisted copy.
	RebuildIndex bool
}

// Brief is the structured result of a research run.
type Brief struct {
	// Query is the research question the brief answers.
	Query string

	// Markdown is the rendered brief.
	Markdown string

	// Fallback is true when the brief was produced by the deterministic
	// template because synthesis failed.
	Fallback bool

	// Steps is the number of tool invocations the run performed.
	Steps int

	// InternalSources lists the distinct knowledge-base documents cited.
	InternalSources []string

	// ExternalSources lists the distinct URLs cited.
	ExternalSources []string
}
