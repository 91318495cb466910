package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/navigator-cli/internal/core/domain"
)

func testDoc(content string) domain.Document {
	return domain.Document{ID: "doc-1", URI: "kb/notes.md", Content: content}
}

func TestNew_Defaults(t *testing.T) {
	p := New()
	assert.Equal(t, DefaultChunkSize, p.ChunkSize())
	assert.Equal(t, DefaultChunkOverlap, p.Overlap())
}

func TestNew_OverlapClampedBelowChunkSize(t *testing.T) {
	p := New(WithChunkSize(100), WithOverlap(100))
	assert.Equal(t, 25, p.Overlap())
}

func TestSplit_EmptyContent(t *testing.T) {
	p := New()
	assert.Empty(t, p.Split(testDoc("")))
}

func TestSplit_ShortContentSingleChunk(t *testing.T) {
	p := New(WithChunkSize(100), WithOverlap(20))

	chunks := p.Split(testDoc("a short note"))

	require.Len(t, chunks, 1)
	assert.Equal(t, "doc-1:0", chunks[0].ID)
	assert.Equal(t, "doc-1", chunks[0].DocumentID)
	assert.Equal(t, "kb/notes.md", chunks[0].Source)
	assert.Equal(t, "a short note", chunks[0].Content)
	assert.Equal(t, 0, chunks[0].Position)
	assert.Equal(t, 0, chunks[0].Offset)
}

func TestSplit_NoChunkExceedsMaxSize(t *testing.T) {
	p := New(WithChunkSize(50), WithOverlap(10))
	content := strings.Repeat("lorem ipsum dolor sit amet consectetur ", 40)

	chunks := p.Split(testDoc(content))

	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk.Content)), 50, "chunk %s", chunk.ID)
	}
}

func TestSplit_ConsecutiveChunksOverlap(t *testing.T) {
	p := New(WithChunkSize(50), WithOverlap(10))
	content := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 20)

	chunks := p.Split(testDoc(content))

	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1].Content)
		prevEnd := chunks[i-1].Offset + len(prev)
		assert.Equal(t, prevEnd-10, chunks[i].Offset,
			"chunk %d must start overlap runes before the previous end", i)
	}
}

func TestSplit_Deterministic(t *testing.T) {
	p := New(WithChunkSize(80), WithOverlap(16))
	content := strings.Repeat("alpha beta gamma delta epsilon zeta. ", 30)

	first := p.Split(testDoc(content))
	second := p.Split(testDoc(content))

	assert.Equal(t, first, second)
}

func TestSplit_PrefersParagraphBoundary(t *testing.T) {
	p := New(WithChunkSize(60), WithOverlap(5))
	para := strings.Repeat("x", 50)
	content := para + "\n\n" + strings.Repeat("y", 100)

	chunks := p.Split(testDoc(content))

	require.Greater(t, len(chunks), 1)
	assert.Equal(t, para+"\n\n", chunks[0].Content)
}

func TestSplit_HardCutWithoutBoundaries(t *testing.T) {
	p := New(WithChunkSize(40), WithOverlap(8))
	content := strings.Repeat("z", 120)

	chunks := p.Split(testDoc(content))

	require.NotEmpty(t, chunks)
	assert.Len(t, []rune(chunks[0].Content), 40)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk.Content)), 40)
	}
}

func TestSplit_SequentialPositions(t *testing.T) {
	p := New(WithChunkSize(40), WithOverlap(8))
	content := strings.Repeat("word soup for chunking purposes here. ", 15)

	chunks := p.Split(testDoc(content))

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Position)
	}
}

func TestSplit_CoversAllContent(t *testing.T) {
	p := New(WithChunkSize(50), WithOverlap(10))
	content := strings.Repeat("coverage must include the final tail too. ", 12)
	runes := []rune(content)

	chunks := p.Split(testDoc(content))

	require.NotEmpty(t, chunks)
	last := chunks[len(chunks)-1]
	assert.Equal(t, len(runes), last.Offset+len([]rune(last.Content)))
}

func TestSplit_RuneSafe(t *testing.T) {
	p := New(WithChunkSize(20), WithOverlap(4))
	content := strings.Repeat("héllo wörld ünïcode ", 10)

	chunks := p.Split(testDoc(content))

	for _, chunk := range chunks {
		assert.True(t, utf8.ValidString(chunk.Content), "chunk %s split a rune", chunk.ID)
		assert.LessOrEqual(t, len([]rune(chunk.Content)), 20)
	}
}
