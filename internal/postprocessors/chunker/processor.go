// Package chunker splits document content into overlapping bounded
// chunks for indexing.
package chunker

import (
	"fmt"

	"github.com/custodia-labs/navigator-cli/internal/core/domain"
)

// DefaultChunkSize is the default maximum number of runes per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping runes.
const DefaultChunkOverlap = 200

// Processor splits document content into chunks. Splitting is
// deterministic: the same content and configuration always produce the
// same chunks, which index reproducibility depends on.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the maximum chunk size in runes.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in runes.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Overlap must stay strictly below chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// ChunkSize returns the configured maximum chunk size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Split chunks the document content. Chunks prefer paragraph, newline,
// sentence, then word boundaries within a lookback window; when no
// boundary exists the cut is hard at the size limit, so no chunk ever
// exceeds it. Chunk IDs are documentID:position.
func (p *Processor) Split(doc domain.Document) []domain.Chunk {
	content := []rune(doc.Content)
	total := len(content)
	if total == 0 {
		return nil
	}

	estimated := total/(p.chunkSize-p.overlap) + 1
	chunks := make([]domain.Chunk, 0, estimated)

	position := 0
	start := 0

	for start < total {
		end := start + p.chunkSize
		if end >= total {
			end = total
		} else {
			end = p.cutPoint(content, start, end)
		}

		chunks = append(chunks, domain.Chunk{
			ID:         fmt.Sprintf("%s:%d", doc.ID, position),
			DocumentID: doc.ID,
			Source:     doc.URI,
			Content:    string(content[start:end]),
			Position:   position,
			Offset:     start,
		})
		position++

		if end == total {
			break
		}
		start = end - p.overlap
	}

	return chunks
}

// cutPoint finds the best boundary at or before end, never earlier
// than start+overlap+1 (which guarantees forward progress after the
// overlap is subtracted).
func (p *Processor) cutPoint(content []rune, start, end int) int {
	lookback := p.chunkSize / 5
	floor := end - lookback
	if min := start + p.overlap + 1; floor < min {
		floor = min
	}
	if floor >= end {
		return end
	}

	// Paragraph break: cut after the blank line.
	for i := end - 1; i > floor; i-- {
		if content[i] == '\n' && content[i-1] == '\n' {
			return i + 1
		}
	}
	// Line break.
	for i := end - 1; i >= floor; i-- {
		if content[i] == '\n' {
			return i + 1
		}
	}
	// Sentence end followed by whitespace.
	for i := end - 1; i > floor; i-- {
		if isSentenceEnd(content[i-1]) && content[i] == ' ' {
			return i + 1
		}
	}
	// Word boundary.
	for i := end - 1; i >= floor; i-- {
		if content[i] == ' ' {
			return i + 1
		}
	}

	// No boundary within the window: hard cut.
	return end
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
