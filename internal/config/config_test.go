package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreSummaryRedactsAPIKey(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "config.json"), LLMConfig{APIKey: "secret", Model: "gpt-4o-mini", BaseURL: "https://api.openai.com", Temperature: 0.7, MaxTokens: 2048})

	summary := s.Summary()
	assert.True(t, summary.APIKeySet)
	assert.Equal(t, "gpt-4o-mini", summary.Model)
	assert.Equal(t, 2048, summary.MaxTokens)
}

func TestStoreUpdatePersistsToDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	s := NewStore(path, defaultConfig())

	patch := map[string]json.RawMessage{
		"model":       json.RawMessage(`"gpt-4.1"`),
		"temperature": json.RawMessage(`0.2`),
	}
	require.NoError(t, s.Update(patch))

	got := s.Get()
	assert.Equal(t, "gpt-4.1", got.Model)
	assert.Equal(t, 0.2, got.Temperature)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var persisted LLMConfig
	require.NoError(t, json.Unmarshal(b, &persisted))
	assert.Equal(t, "gpt-4.1", persisted.Model)
}

func TestLoadMirrorConfigDisabledByDefault(t *testing.T) {
	t.Setenv("ARTIFACT_S3_ENDPOINT", "")
	t.Setenv("ARTIFACT_MINIO_ENDPOINT", "")
	cfg := LoadMirrorConfig()
	assert.False(t, cfg.Enabled)
}
