package driven

import (
	"context"

	"github.com/custodia-labs/navigator-cli/internal/core/domain"
)

// IndexStore persists built indexes to durable storage.
//
// Both halves of a snapshot (vectors and chunk metadata) are stored
// together; a snapshot missing either is reported as
// domain.ErrIndexCorrupt, never silently misread.
type IndexStore interface {
	// SaveIndex stores the snapshot under the given key, replacing any
	// previous snapshot atomically. A crash mid-save must leave either
	// the old snapshot or the new one, never a mix.
	SaveIndex(ctx context.Context, key string, snap *IndexSnapshot) error

	// LoadIndex retrieves the snapshot for the key. Returns
	// domain.ErrIndexNotFound when no snapshot exists and
	// domain.ErrIndexCorrupt when the stored shape is invalid.
	LoadIndex(ctx context.Context, key string) (*IndexSnapshot, error)

	// DeleteIndex removes the snapshot for the key, if present.
	DeleteIndex(ctx context.Context, key string) error

	// Close releases resources.
	Close() error
}

// IndexSnapshot is the serializable form of a built index: every chunk
// with its embedding, plus the metadata needed to reject mismatched
// loads.
type IndexSnapshot struct {
	// Model is the embedding model the vectors were produced with.
	Model string

	// Dimensions is the vector size shared by every chunk embedding.
	Dimensions int

	// Documents lists the source document URIs the index was built
	// from, for change detection.
	Documents []string

	// Chunks holds every indexed chunk with its embedding populated.
	Chunks []domain.Chunk
}
