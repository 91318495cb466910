package driven

import (
	"context"

	"github.com/custodia-labs/navigator-cli/internal/core/domain"
)

// Connector fetches raw documents from a knowledge-base source.
type Connector interface {
	// Type returns the connector type identifier.
	Type() string

	// Validate checks the source is ready to load. For filesystem
	// sources this checks the path exists and is a directory.
	Validate(ctx context.Context) error

	// Load fetches all documents from the source. Unreadable entries
	// are skipped, not fatal.
	Load(ctx context.Context) ([]domain.RawDocument, error)
}

// ConnectorFactory creates a connector for a source path. Injected so
// core services never depend on a concrete adapter.
type ConnectorFactory func(sourcePath string) Connector
