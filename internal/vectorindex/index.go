// Package vectorindex provides an in-memory vector index with exact
// cosine similarity search. Vectors are L2-normalized on insert so the
// inner product at query time equals cosine similarity.
package vectorindex

import (
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/navigator-cli/internal/core/domain"
)

// Hit is a single similarity search result.
type Hit struct {
	// Chunk is the matched chunk.
	Chunk domain.Chunk

	// Score is the cosine similarity to the query vector.
	Score float64
}

// Index is an immutable set of (chunk, embedding) pairs supporting
// nearest-neighbour lookup. Build once, query many times; there is no
// incremental insert.
type Index struct {
	model      string
	dimensions int
	documents  []string
	chunks     []domain.Chunk
	vectors    [][]float32
}

// New creates an index from chunks whose Embedding fields are
// populated. Every embedding must have the same dimension. The chunk
// order is preserved and used for deterministic tie-breaking.
func New(model string, dimensions int, documents []string, chunks []domain.Chunk) (*Index, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive", domain.ErrInvalidInput)
	}

	idx := &Index{
		model:      model,
		dimensions: dimensions,
		documents:  append([]string(nil), documents...),
		chunks:     make([]domain.Chunk, 0, len(chunks)),
		vectors:    make([][]float32, 0, len(chunks)),
	}

	for _, chunk := range chunks {
		if len(chunk.Embedding) != dimensions {
			return nil, fmt.Errorf("%w: chunk %s has dimension %d, expected %d",
				domain.ErrInvalidInput, chunk.ID, len(chunk.Embedding), dimensions)
		}
		idx.chunks = append(idx.chunks, chunk)
		idx.vectors = append(idx.vectors, normalize(chunk.Embedding))
	}

	return idx, nil
}

// Search returns up to k chunks ordered by descending cosine
// similarity to the query vector. Ties are broken by chunk insertion
// order so repeated calls with the same query yield identical output.
func (idx *Index) Search(query []float32, k int) ([]Hit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}
	if len(query) != idx.dimensions {
		return nil, fmt.Errorf("%w: query dimension %d, index dimension %d",
			domain.ErrInvalidInput, len(query), idx.dimensions)
	}
	if len(idx.chunks) == 0 {
		return nil, nil
	}

	normQuery := normalize(query)

	hits := make([]Hit, len(idx.chunks))
	for i, vec := range idx.vectors {
		var dot float64
		for j := 0; j < idx.dimensions; j++ {
			dot += float64(normQuery[j] * vec[j])
		}
		hits[i] = Hit{Chunk: idx.chunks[i], Score: dot}
	}

	// Stable sort keeps insertion order for equal scores.
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// Len returns the number of indexed chunks.
func (idx *Index) Len() int {
	return len(idx.chunks)
}

// Dimensions returns the vector size shared by all embeddings.
func (idx *Index) Dimensions() int {
	return idx.dimensions
}

// ModelName returns the embedding model the index was built with.
func (idx *Index) ModelName() string {
	return idx.model
}

// Documents returns the source document URIs the index covers.
func (idx *Index) Documents() []string {
	return append([]string(nil), idx.documents...)
}

// Chunks returns the indexed chunks in insertion order.
// The returned slice shares backing storage; callers must not mutate it.
func (idx *Index) Chunks() []domain.Chunk {
	return idx.chunks
}

// normalize returns a copy of v scaled to unit length.
// Zero vectors are returned as-is to avoid division by zero.
func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	norm := math.Sqrt(sum)
	if norm == 0 {
		copy(out, v)
		return out
	}
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
