package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfigStore(t *testing.T) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestConfigStore_SetGetRoundTrip(t *testing.T) {
	store := newTestConfigStore(t)

	store.Set("llm.provider", "openai")
	store.Set("research.max_steps", int64(7))
	store.Set("verbose", true)

	assert.Equal(t, "openai", store.GetString("llm.provider"))
	assert.Equal(t, 7, store.GetInt("research.max_steps"))
	assert.True(t, store.GetBool("verbose"))
}

func TestConfigStore_MissingKeys(t *testing.T) {
	store := newTestConfigStore(t)

	_, ok := store.Get("nope")
	assert.False(t, ok)
	assert.Equal(t, "", store.GetString("nope"))
	assert.Equal(t, 0, store.GetInt("nope"))
	assert.False(t, store.GetBool("nope"))
}

func TestConfigStore_TypeMismatchReturnsZero(t *testing.T) {
	store := newTestConfigStore(t)

	store.Set("key", "not a number")

	assert.Equal(t, 0, store.GetInt("key"))
	assert.False(t, store.GetBool("key"))
}

func TestConfigStore_SavePersistsNestedTables(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	store.Set("llm.provider", "anthropic")
	store.Set("llm.model", "claude-sonnet-4-20250514")
	store.Set("research.top_k", int64(3))
	require.NoError(t, store.Save())

	data, err := os.ReadFile(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "[llm]")
	assert.Contains(t, string(data), "[research]")

	// A fresh store reads back the same flattened keys.
	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", reloaded.GetString("llm.provider"))
	assert.Equal(t, 3, reloaded.GetInt("research.top_k"))
}

func TestConfigStore_LoadMissingFileIsEmpty(t *testing.T) {
	store := newTestConfigStore(t)

	require.NoError(t, store.Load())
	assert.Empty(t, store.Keys())
}

func TestConfigStore_Keys(t *testing.T) {
	store := newTestConfigStore(t)

	store.Set("a.b", 1)
	store.Set("c", "x")

	keys := store.Keys()
	assert.ElementsMatch(t, []string{"a.b", "c"}, keys)
}

func TestFlattenInto(t *testing.T) {
	nested := map[string]any{
		"llm": map[string]any{
			"provider": "openai",
			"model":    "gpt-4o-mini",
		},
		"verbose": true,
	}

	flat := make(map[string]any)
	flattenInto(flat, nested, "")

	assert.Equal(t, "openai", flat["llm.provider"])
	assert.Equal(t, "gpt-4o-mini", flat["llm.model"])
	assert.Equal(t, true, flat["verbose"])
}

func TestUnflatten(t *testing.T) {
	store := newTestConfigStore(t)
	store.Set("llm.provider", "openai")
	store.Set("llm.model", "gpt-4o-mini")
	store.Set("verbose", true)

	store.mu.Lock()
	nested := store.unflatten()
	store.mu.Unlock()

	llm, ok := nested["llm"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "openai", llm["provider"])
	assert.Equal(t, "gpt-4o-mini", llm["model"])
	assert.Equal(t, true, nested["verbose"])
}
