package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/navigator-cli/internal/core/domain"
	"github.com/custodia-labs/navigator-cli/internal/core/ports/driven"
	"github.com/custodia-labs/navigator-cli/internal/logger"
)

// RetrievalService answers internal knowledge-base searches by
// embedding the query and scanning the cached index. All failures are
// wrapped in domain.ErrRetrieval so the loop can record them uniformly.
type RetrievalService struct {
	registry *IndexRegistry
	embedder driven.EmbeddingService
}

// NewRetrievalService creates the internal search tool.
func NewRetrievalService(registry *IndexRegistry, embedder driven.EmbeddingService) *RetrievalService {
	return &RetrievalService{
		registry: registry,
		embedder: embedder,
	}
}

// SearchInternal returns up to k evidence items for the query from the
// knowledge base at kbPath. An empty knowledge base yields empty
// results, not an error.
func (s *RetrievalService) SearchInternal(ctx context.Context, kbPath, query string, k int) ([]domain.Evidence, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: %w: empty query", domain.ErrRetrieval, domain.ErrInvalidInput)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: %w: k must be positive, got %d", domain.ErrRetrieval, domain.ErrInvalidInput, k)
	}

	idx, err := s.registry.Get(ctx, kbPath, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrieval, err)
	}
	if idx.Len() == 0 {
		logger.Debug("knowledge base %s has no indexed content", kbPath)
		return []domain.Evidence{}, nil
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %w", domain.ErrRetrieval, err)
	}

	hits, err := idx.Search(queryVec, k)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrieval, err)
	}

	evidence := make([]domain.Evidence, 0, len(hits))
	for _, hit := range hits {
		evidence = append(evidence, domain.Evidence{
			Content: hit.Chunk.Content,
			Source:  hit.Chunk.Source,
			Score:   hit.Score,
			Origin:  domain.OriginInternal,
		})
	}
	logger.Debug("internal search %q returned %d results", query, len(evidence))
	return evidence, nil
}
