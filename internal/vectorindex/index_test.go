package vectorindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/navigator-cli/internal/core/domain"
)

func testChunks() []domain.Chunk {
	return []domain.Chunk{
		{ID: "a:0", DocumentID: "a", Content: "alpha", Embedding: []float32{1, 0, 0}},
		{ID: "a:1", DocumentID: "a", Content: "beta", Embedding: []float32{0, 1, 0}},
		{ID: "b:0", DocumentID: "b", Content: "gamma", Embedding: []float32{0, 0, 1}},
	}
}

func TestNew_RejectsDimensionMismatch(t *testing.T) {
	chunks := testChunks()
	chunks[1].Embedding = []float32{0, 1}

	_, err := New("test-model", 3, nil, chunks)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNew_RejectsNonPositiveDimensions(t *testing.T) {
	_, err := New("test-model", 0, nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearch_OrdersByDescendingSimilarity(t *testing.T) {
	idx, err := New("test-model", 3, []string{"a", "b"}, testChunks())
	require.NoError(t, err)

	hits, err := idx.Search([]float32{0.9, 0.1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, "a:0", hits[0].Chunk.ID)
	assert.GreaterOrEqual(t, hits[0].Score, hits[1].Score)
	assert.GreaterOrEqual(t, hits[1].Score, hits[2].Score)
}

func TestSearch_ReturnsAtMostK(t *testing.T) {
	idx, err := New("test-model", 3, nil, testChunks())
	require.NoError(t, err)

	hits, err := idx.Search([]float32{1, 0, 0}, 2)
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	// k larger than the index is capped, not an error.
	hits, err = idx.Search([]float32{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 3)
}

func TestSearch_RejectsNonPositiveK(t *testing.T) {
	idx, err := New("test-model", 3, nil, testChunks())
	require.NoError(t, err)

	_, err = idx.Search([]float32{1, 0, 0}, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = idx.Search([]float32{1, 0, 0}, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearch_RejectsQueryDimensionMismatch(t *testing.T) {
	idx, err := New("test-model", 3, nil, testChunks())
	require.NoError(t, err)

	_, err = idx.Search([]float32{1, 0}, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearch_Deterministic(t *testing.T) {
	idx, err := New("test-model", 3, nil, testChunks())
	require.NoError(t, err)

	query := []float32{0.5, 0.5, 0.1}
	first, err := idx.Search(query, 3)
	require.NoError(t, err)
	second, err := idx.Search(query, 3)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSearch_TiesBrokenByInsertionOrder(t *testing.T) {
	// Two identical vectors: the earlier chunk must rank first.
	chunks := []domain.Chunk{
		{ID: "a:0", Content: "first", Embedding: []float32{1, 0}},
		{ID: "a:1", Content: "second", Embedding: []float32{1, 0}},
	}
	idx, err := New("test-model", 2, nil, chunks)
	require.NoError(t, err)

	hits, err := idx.Search([]float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a:0", hits[0].Chunk.ID)
	assert.Equal(t, "a:1", hits[1].Chunk.ID)
}

func TestSearch_EmptyIndex(t *testing.T) {
	idx, err := New("test-model", 3, nil, nil)
	require.NoError(t, err)

	hits, err := idx.Search([]float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestNormalize_UnitLength(t *testing.T) {
	v := normalize([]float32{3, 4})
	assert.InDelta(t, 0.6, float64(v[0]), 1e-6)
	assert.InDelta(t, 0.8, float64(v[1]), 1e-6)
}

func TestNormalize_ZeroVector(t *testing.T) {
	v := normalize([]float32{0, 0, 0})
	assert.Equal(t, []float32{0, 0, 0}, v)
}
