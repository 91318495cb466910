package cli

import (
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/navigator-cli/internal/adapters/driven/ai"
	"github.com/custodia-labs/navigator-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/navigator-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/navigator-cli/internal/connectors/filesystem"
	"github.com/custodia-labs/navigator-cli/internal/core/domain"
	"github.com/custodia-labs/navigator-cli/internal/core/ports/driven"
	"github.com/custodia-labs/navigator-cli/internal/core/ports/driving"
	"github.com/custodia-labs/navigator-cli/internal/core/services"
	"github.com/custodia-labs/navigator-cli/internal/logger"
	"github.com/custodia-labs/navigator-cli/internal/normalisers"
	"github.com/custodia-labs/navigator-cli/internal/normalisers/docx"
	"github.com/custodia-labs/navigator-cli/internal/normalisers/markdown"
	"github.com/custodia-labs/navigator-cli/internal/normalisers/pdf"
	"github.com/custodia-labs/navigator-cli/internal/normalisers/plaintext"
	"github.com/custodia-labs/navigator-cli/internal/postprocessors/chunker"
)

// researchService can be injected by tests to bypass real wiring.
var researchService driving.ResearchService

// wiredServices bundles what the commands need from one wiring pass.
type wiredServices struct {
	research driving.ResearchService
	settings domain.AppSettings
	cleanup  func()
}

// getServices wires the research service from configuration. With
// requireLLM unset (the index command), a missing LLM provider is not
// an error since index builds only need embeddings.
func getServices(requireLLM bool) (*wiredServices, error) {
	if researchService != nil {
		return &wiredServices{
			research: researchService,
			settings: domain.DefaultAppSettings(),
			cleanup:  func() {},
		}, nil
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("opening configuration: %w", err)
	}
	settings := file.LoadAppSettings(configStore)

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*wiredServices, error) {
		cleanup()
		return nil, err
	}

	var (
		reasoner    *services.Reasoner
		synthesizer *services.Synthesizer
	)
	if requireLLM {
		llm, err := ai.CreateAndValidateLLMService(&settings.LLM)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() { llm.Close() })

		promptStore, err := file.NewPromptStore(promptDir())
		if err != nil {
			return fail(fmt.Errorf("opening prompt store: %w", err))
		}
		reasoner = services.NewReasoner(llm)
		reasoner.SetPromptStore(promptStore)
		synthesizer = services.NewSynthesizer(llm)
		synthesizer.SetPromptStore(promptStore)
	}

	embedder, err := ai.CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		return fail(err)
	}

	var (
		registry  *services.IndexRegistry
		retrieval *services.RetrievalService
	)
	if embedder != nil {
		closers = append(closers, func() { embedder.Close() })

		store, err := sqlite.NewStore(dataDir())
		if err != nil {
			return fail(fmt.Errorf("opening index store: %w", err))
		}
		closers = append(closers, func() { store.Close() })

		registry = services.NewIndexRegistry(
			embedder,
			store,
			newNormaliserRegistry(),
			func(path string) driven.Connector { return filesystem.New(path) },
			chunker.New(
				chunker.WithChunkSize(settings.Research.ChunkSize),
				chunker.WithOverlap(settings.Research.ChunkOverlap),
			),
		)
		retrieval = services.NewRetrievalService(registry, embedder)
	} else {
		logger.Debug("no embedding provider configured, internal search disabled")
	}

	webSearch, err := ai.CreateWebSearchService(&settings.WebSearch)
	if err != nil {
		return fail(err)
	}
	if webSearch != nil {
		closers = append(closers, func() { webSearch.Close() })
	} else {
		logger.Debug("no web search provider configured")
	}

	return &wiredServices{
		research: services.NewOrchestrator(reasoner, retrieval, webSearch, synthesizer, registry),
		settings: settings,
		cleanup:  cleanup,
	}, nil
}

// newNormaliserRegistry registers every supported document format.
func newNormaliserRegistry() driven.NormaliserRegistry {
	registry := normalisers.NewRegistry()
	registry.Register(plaintext.New())
	registry.Register(markdown.New())
	registry.Register(pdf.New())
	registry.Register(docx.New())
	return registry
}

// promptDir resolves the prompt directory under the config directory.
// Empty means the adapter default (~/.navigator/prompts).
func promptDir() string {
	if configDir == "" {
		return ""
	}
	return filepath.Join(configDir, "prompts")
}

// dataDir resolves the index database directory.
func dataDir() string {
	if configDir == "" {
		return ""
	}
	return filepath.Join(configDir, "data")
}
