package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Tool errors. These are recorded in the decision trail and never
	// abort a research run.

	// ErrEmbedding indicates the embedding call failed. A partial index
	// is never produced from a failed batch.
	ErrEmbedding = errors.New("embedding failed")

	// ErrRetrieval indicates internal knowledge-base search failed
	// (index build, load, or query embedding).
	ErrRetrieval = errors.New("internal retrieval failed")

	// ErrWebSearch indicates the external search provider failed
	// (auth, quota, network, or timeout).
	ErrWebSearch = errors.New("web search failed")

	// ErrModelCall indicates the language model call failed.
	ErrModelCall = errors.New("model call failed")

	// ErrParse indicates a model response did not match the expected
	// labelled structure.
	ErrParse = errors.New("malformed model response")

	// Index storage errors.

	// ErrIndexNotFound indicates no persisted index exists for the
	// requested knowledge base.
	ErrIndexNotFound = errors.New("no persisted index")

	// ErrIndexCorrupt indicates the persisted index does not match the
	// expected shape and must be rebuilt.
	ErrIndexCorrupt = errors.New("persisted index is corrupt")

	// Service availability errors. These abort a run before it starts.

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Internal knowledge-base search is disabled without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrWebSearchUnavailable indicates no web search provider is
	// configured.
	ErrWebSearchUnavailable = errors.New("web search service unavailable")
)
