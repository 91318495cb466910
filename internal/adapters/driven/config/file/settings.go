package file

import (
	"os"

	"github.com/custodia-labs/navigator-cli/internal/core/domain"
	"github.com/custodia-labs/navigator-cli/internal/core/ports/driven"
)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider = "embedding.provider"
	keyEmbedModel    = "embedding.model"
	keyEmbedBaseURL  = "embedding.base_url"
	keyEmbedAPIKey   = "embedding.api_key"
	keyLLMProvider   = "llm.provider"
	keyLLMModel      = "llm.model"
	keyLLMBaseURL    = "llm.base_url"
	keyLLMAPIKey     = "llm.api_key"
	keyWebProvider   = "websearch.provider"
	keyWebAPIKey     = "websearch.api_key"
	keyMaxSteps      = "research.max_steps"
	keyTopK          = "research.top_k"
	keyChunkSize     = "research.chunk_size"
	keyChunkOverlap  = "research.chunk_overlap"
)

// Environment variables that override stored API keys. Environment
// wins over the config file so CI and one-off runs never need to
// write credentials to disk.
const (
	envOpenAIKey    = "OPENAI_API_KEY"
	envAnthropicKey = "ANTHROPIC_API_KEY"
	envTavilyKey    = "TAVILY_API_KEY"
	envOllamaHost   = "OLLAMA_HOST"
)

// LoadAppSettings assembles application settings from the config store,
// layered over defaults, with environment variable overrides applied
// last.
func LoadAppSettings(store driven.ConfigStore) domain.AppSettings {
	defaults := domain.DefaultAppSettings()

	settings := domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: getProvider(store, keyEmbedProvider, defaults.Embedding.Provider),
			Model:    store.GetString(keyEmbedModel),
			BaseURL:  store.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:   store.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider: getProvider(store, keyLLMProvider, defaults.LLM.Provider),
			Model:    store.GetString(keyLLMModel),
			BaseURL:  store.GetString(keyLLMBaseURL), // No default - empty is valid for cloud providers
			APIKey:   store.GetString(keyLLMAPIKey),
		},
		WebSearch: domain.WebSearchSettings{
			Provider: getWebProvider(store, keyWebProvider, defaults.WebSearch.Provider),
			APIKey:   store.GetString(keyWebAPIKey),
		},
		Research: domain.ResearchSettings{
			MaxSteps:     getInt(store, keyMaxSteps, defaults.Research.MaxSteps),
			TopK:         getInt(store, keyTopK, defaults.Research.TopK),
			ChunkSize:    getInt(store, keyChunkSize, defaults.Research.ChunkSize),
			ChunkOverlap: getInt(store, keyChunkOverlap, defaults.Research.ChunkOverlap),
		},
	}

	applyEnvOverrides(&settings)
	return settings
}

// applyEnvOverrides layers environment credentials over the assembled
// settings. Only keys relevant to the configured provider apply.
func applyEnvOverrides(settings *domain.AppSettings) {
	if key := os.Getenv(envOpenAIKey); key != "" {
		if settings.Embedding.Provider == domain.AIProviderOpenAI {
			settings.Embedding.APIKey = key
		}
		if settings.LLM.Provider == domain.AIProviderOpenAI {
			settings.LLM.APIKey = key
		}
	}

	if key := os.Getenv(envAnthropicKey); key != "" && settings.LLM.Provider == domain.AIProviderAnthropic {
		settings.LLM.APIKey = key
	}

	if key := os.Getenv(envTavilyKey); key != "" && settings.WebSearch.Provider == domain.WebProviderTavily {
		settings.WebSearch.APIKey = key
	}

	if host := os.Getenv(envOllamaHost); host != "" {
		if settings.Embedding.Provider == domain.AIProviderOllama && settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = host
		}
		if settings.LLM.Provider == domain.AIProviderOllama && settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = host
		}
	}
}

// Helpers for reading config with defaults.

func getInt(store driven.ConfigStore, key string, defaultVal int) int {
	if _, exists := store.Get(key); !exists {
		return defaultVal
	}
	return store.GetInt(key)
}

func getProvider(store driven.ConfigStore, key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := store.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func getWebProvider(store driven.ConfigStore, key string, defaultVal domain.WebProvider) domain.WebProvider {
	val := store.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.WebProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
