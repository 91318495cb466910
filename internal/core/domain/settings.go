package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is the Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// WebProvider identifies a web search provider.
type WebProvider string

// Available web search providers.
const (
	// WebProviderTavily is the Tavily search API.
	WebProviderTavily WebProvider = "tavily"

	// WebProviderDuckDuckGo scrapes the DuckDuckGo lite interface.
	// Keyless; useful as a zero-configuration fallback.
	WebProviderDuckDuckGo WebProvider = "duckduckgo"
)

// IsValid returns true if the web provider is recognised.
func (p WebProvider) IsValid() bool {
	switch p {
	case WebProviderTavily, WebProviderDuckDuckGo:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p WebProvider) RequiresAPIKey() bool {
	return p == WebProviderTavily
}

// String returns the string representation.
func (p WebProvider) String() string {
	return string(p)
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or API gateways).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or API gateways).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// WebSearchSettings holds web search provider configuration.
type WebSearchSettings struct {
	// Provider is the web search provider.
	Provider WebProvider

	// APIKey is the API key (for Tavily).
	APIKey string
}

// IsConfigured returns true if the web search provider is set up.
func (w WebSearchSettings) IsConfigured() bool {
	if !w.Provider.IsValid() {
		return false
	}
	if w.Provider.RequiresAPIKey() && w.APIKey == "" {
		return false
	}
	return true
}

// ResearchSettings holds research loop configuration.
type ResearchSettings struct {
	// MaxSteps is the default step budget per run.
	MaxSteps int

	// TopK is the default number of results per tool call.
	TopK int

	// ChunkSize is the maximum chunk length in runes.
	ChunkSize int

	// ChunkOverlap is the overlap between consecutive chunks in runes.
	ChunkOverlap int
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds LLM provider settings.
	LLM LLMSettings

	// WebSearch holds web search provider settings.
	WebSearch WebSearchSettings

	// Research holds loop settings.
	Research ResearchSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// AI providers are left unconfigured; users supply keys via config
// file or environment. Web search defaults to the keyless provider.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{},
		LLM:       LLMSettings{},
		WebSearch: WebSearchSettings{
			Provider: WebProviderDuckDuckGo,
		},
		Research: ResearchSettings{
			MaxSteps:     10,
			TopK:         5,
			ChunkSize:    1000,
			ChunkOverlap: 200,
		},
	}
}
