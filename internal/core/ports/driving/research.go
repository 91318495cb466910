package driving

import (
	"context"

	"github.com/custodia-labs/navigator-cli/internal/core/domain"
)

// ResearchService runs the research loop for a query.
type ResearchService interface {
	// Research answers the query by alternating reasoning and tool
	// calls, then synthesizing a brief. It always returns a brief when
	// the run started; the error return covers only setup failure and
	// cancellation before the first iteration.
	Research(ctx context.Context, query string, opts domain.ResearchOptions) (*domain.Brief, error)

	// BuildIndex builds (or force-rebuilds) the knowledge-base index
	// for the given directory and returns the number of indexed chunks.
	BuildIndex(ctx context.Context, kbPath string, rebuild bool) (int, error)
}
