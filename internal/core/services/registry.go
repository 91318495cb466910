package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/navigator-cli/internal/core/domain"
	"github.com/custodia-labs/navigator-cli/internal/core/ports/driven"
	"github.com/custodia-labs/navigator-cli/internal/logger"
	"github.com/custodia-labs/navigator-cli/internal/postprocessors/chunker"
	"github.com/custodia-labs/navigator-cli/internal/vectorindex"
)

// embedBatchSize bounds how many chunk texts go into one embedding
// call. Any batch failure fails the whole build; no partial index is
// ever produced.
const embedBatchSize = 64

// IndexRegistry is the process-wide cache of built knowledge-base
// indexes, keyed by canonicalized source path. Get-or-create goes
// load-from-store first, build on miss; at most one build runs per
// path at a time.
type IndexRegistry struct {
	embedder    driven.EmbeddingService
	store       driven.IndexStore
	normalisers driven.NormaliserRegistry
	connectors  driven.ConnectorFactory
	splitter    *chunker.Processor

	group singleflight.Group

	mu    sync.RWMutex
	cache map[string]*vectorindex.Index
}

// NewIndexRegistry creates a registry. The store may be nil, in which
// case indexes are rebuilt every process start and never persisted.
func NewIndexRegistry(
	embedder driven.EmbeddingService,
	store driven.IndexStore,
	normalisers driven.NormaliserRegistry,
	connectors driven.ConnectorFactory,
	splitter *chunker.Processor,
) *IndexRegistry {
	return &IndexRegistry{
		embedder:    embedder,
		store:       store,
		normalisers: normalisers,
		connectors:  connectors,
		splitter:    splitter,
		cache:       make(map[string]*vectorindex.Index),
	}
}

// Get returns the index for the knowledge-base path, building it if
// needed. With rebuild set, both the cache and the persisted snapshot
// are bypassed and the fresh build replaces them.
func (r *IndexRegistry) Get(ctx context.Context, kbPath string, rebuild bool) (*vectorindex.Index, error) {
	if r.embedder == nil {
		return nil, fmt.Errorf("%w: internal search needs an embedding provider", domain.ErrEmbeddingUnavailable)
	}
	if kbPath == "" {
		return nil, fmt.Errorf("%w: empty knowledge base path", domain.ErrInvalidInput)
	}

	key := canonicalPath(kbPath)

	if !rebuild {
		r.mu.RLock()
		idx, ok := r.cache[key]
		r.mu.RUnlock()
		if ok {
			return idx, nil
		}
	}

	// Concurrent callers for the same path share one load-or-build.
	result, err, _ := r.group.Do(key, func() (any, error) {
		return r.loadOrBuild(ctx, key, rebuild)
	})
	if err != nil {
		return nil, err
	}

	idx := result.(*vectorindex.Index)
	r.mu.Lock()
	r.cache[key] = idx
	r.mu.Unlock()
	return idx, nil
}

// loadOrBuild tries the persisted snapshot first, then builds from the
// source directory. A stale snapshot (different embedding model or
// dimensions) triggers a rebuild rather than an error.
func (r *IndexRegistry) loadOrBuild(ctx context.Context, key string, rebuild bool) (*vectorindex.Index, error) {
	if !rebuild && r.store != nil {
		snap, err := r.store.LoadIndex(ctx, key)
		switch {
		case err == nil:
			if snap.Model == r.embedder.ModelName() && snap.Dimensions == r.embedder.Dimensions() {
				idx, buildErr := vectorindex.New(snap.Model, snap.Dimensions, snap.Documents, snap.Chunks)
				if buildErr == nil {
					logger.Debug("loaded persisted index for %s (%d chunks)", key, idx.Len())
					return idx, nil
				}
				logger.Warn("persisted index for %s unusable: %v, rebuilding", key, buildErr)
			} else {
				logger.Debug("persisted index for %s was built with %s/%d, rebuilding with %s/%d",
					key, snap.Model, snap.Dimensions, r.embedder.ModelName(), r.embedder.Dimensions())
			}
		case errors.Is(err, domain.ErrIndexNotFound):
			// First build for this path.
		case errors.Is(err, domain.ErrIndexCorrupt):
			logger.Warn("persisted index for %s is corrupt, rebuilding: %v", key, err)
		default:
			return nil, fmt.Errorf("loading index for %s: %w", key, err)
		}
	}

	return r.build(ctx, key)
}

// build chunks, embeds, and persists the knowledge base at key.
func (r *IndexRegistry) build(ctx context.Context, key string) (*vectorindex.Index, error) {
	logger.Section("Building index: " + key)

	connector := r.connectors(key)
	raws, err := connector.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading knowledge base: %w", err)
	}

	var (
		documents []string
		chunks    []domain.Chunk
	)
	for i := range raws {
		doc, err := r.normalisers.Normalise(ctx, &raws[i])
		if err != nil {
			logger.Warn("skipping %s: %v", raws[i].URI, err)
			continue
		}
		documents = append(documents, doc.URI)
		chunks = append(chunks, r.splitter.Split(*doc)...)
	}
	logger.Info("indexing %d documents, %d chunks", len(documents), len(chunks))

	if err := r.embedChunks(ctx, chunks); err != nil {
		return nil, err
	}

	idx, err := vectorindex.New(r.embedder.ModelName(), r.embedder.Dimensions(), documents, chunks)
	if err != nil {
		return nil, fmt.Errorf("building index: %w", err)
	}

	if r.store != nil {
		snap := &driven.IndexSnapshot{
			Model:      idx.ModelName(),
			Dimensions: idx.Dimensions(),
			Documents:  documents,
			Chunks:     chunks,
		}
		if err := r.store.SaveIndex(ctx, key, snap); err != nil {
			// The in-memory index is still usable; persistence is an
			// optimisation for the next process.
			logger.Warn("persisting index for %s failed: %v", key, err)
		}
	}

	return idx, nil
}

// embedChunks fills in the Embedding field of every chunk, batching
// the texts. The first failure aborts the whole build.
func (r *IndexRegistry) embedChunks(ctx context.Context, chunks []domain.Chunk) error {
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, 0, end-start)
		for _, chunk := range chunks[start:end] {
			texts = append(texts, chunk.Content)
		}

		vectors, err := r.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding chunks %d-%d: %w", start, end-1, err)
		}
		for i, vec := range vectors {
			chunks[start+i].Embedding = vec
		}
	}
	return nil
}

// canonicalPath normalizes a knowledge-base path so equivalent
// spellings share one cache entry and one persisted snapshot.
func canonicalPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return filepath.Clean(abs)
}
