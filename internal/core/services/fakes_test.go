package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/navigator-cli/internal/core/domain"
	"github.com/custodia-labs/navigator-cli/internal/core/ports/driven"
)

// fakeLLM returns scripted responses in order, repeating the last one
// once the script runs out.
type fakeLLM struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     int
	prompts   []string
}

var _ driven.LLMService = (*fakeLLM)(nil)

func (f *fakeLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", nil
	}
	i := f.calls - 1
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	return f.responses[i], nil
}

func (f *fakeLLM) ModelName() string          { return "fake-llm" }
func (f *fakeLLM) Ping(context.Context) error { return nil }
func (f *fakeLLM) Close() error               { return nil }

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeEmbedder produces deterministic 2-dimensional vectors: texts
// mentioning cats point one way, dogs the other, so similarity search
// has a meaningful answer in tests.
type fakeEmbedder struct {
	err error
}

var _ driven.EmbeddingService = (*fakeEmbedder)(nil)

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "cat"):
		return []float32{1, 0}, nil
	case strings.Contains(lower, "dog"):
		return []float32{0, 1}, nil
	default:
		return []float32{0.7, 0.7}, nil
	}
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec, err := f.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out = append(out, vec)
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int            { return 2 }
func (f *fakeEmbedder) ModelName() string          { return "fake-embed" }
func (f *fakeEmbedder) Ping(context.Context) error { return nil }
func (f *fakeEmbedder) Close() error               { return nil }

// fakeWebSearch returns a fixed result set.
type fakeWebSearch struct {
	mu      sync.Mutex
	results []driven.WebResult
	err     error
	calls   int
}

var _ driven.WebSearchService = (*fakeWebSearch)(nil)

func (f *fakeWebSearch) Search(_ context.Context, _ string, limit int) ([]driven.WebResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if limit > len(f.results) {
		limit = len(f.results)
	}
	return f.results[:limit], nil
}

func (f *fakeWebSearch) ProviderName() string { return "fake-web" }
func (f *fakeWebSearch) Close() error         { return nil }

// memIndexStore is an in-memory driven.IndexStore.
type memIndexStore struct {
	mu    sync.Mutex
	snaps map[string]*driven.IndexSnapshot
	saves int
}

var _ driven.IndexStore = (*memIndexStore)(nil)

func newMemIndexStore() *memIndexStore {
	return &memIndexStore{snaps: make(map[string]*driven.IndexSnapshot)}
}

func (m *memIndexStore) SaveIndex(_ context.Context, key string, snap *driven.IndexSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.snaps[key] = snap
	return nil
}

func (m *memIndexStore) LoadIndex(_ context.Context, key string) (*driven.IndexSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snaps[key]
	if !ok {
		return nil, fmt.Errorf("%w: no index for key %q", domain.ErrIndexNotFound, key)
	}
	return snap, nil
}

func (m *memIndexStore) DeleteIndex(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, key)
	return nil
}

func (m *memIndexStore) Close() error { return nil }

// fakeConnector serves an in-memory document set. When started and
// gate are set, Load announces itself on started and then blocks until
// gate is closed, so tests can hold a build in flight.
type fakeConnector struct {
	mu        sync.Mutex
	docs      []domain.RawDocument
	err       error
	loads     int
	started   chan struct{}
	gate      chan struct{}
	startOnce sync.Once
}

var _ driven.Connector = (*fakeConnector)(nil)

func (f *fakeConnector) Type() string                   { return "fake" }
func (f *fakeConnector) Validate(context.Context) error { return f.err }

func (f *fakeConnector) Load(context.Context) ([]domain.RawDocument, error) {
	if f.started != nil {
		f.startOnce.Do(func() { close(f.started) })
	}
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

func (f *fakeConnector) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

func textDoc(uri, content string) domain.RawDocument {
	return domain.RawDocument{URI: uri, Content: []byte(content), MIMEType: "text/plain"}
}
