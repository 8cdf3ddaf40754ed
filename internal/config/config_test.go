package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:8080", cfg.Addr())
	require.Equal(t, "localhost:6379", cfg.Redis.Addr)
	require.Equal(t, "openai", cfg.STT.Backend)
	require.Equal(t, "languagetool", cfg.Grammar.Backend)
	require.Equal(t, "none", cfg.Sentiment.Backend)
	require.Equal(t, 4, cfg.Pipeline.Workers)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("STT_BACKEND", "local")
	t.Setenv("PIPELINE_WORKERS", "8")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "local", cfg.STT.Backend)
	require.Equal(t, 8, cfg.Pipeline.Workers)
}

func TestLoadRejectsBadInt(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")

	_, err := Load()
	require.Error(t, err)
}

func TestValidateRequiresKeys(t *testing.T) {
	cfg := &Config{
		STT:       STTConfig{Backend: "openai"},
		Sentiment: SentimentConfig{Backend: "none"},
	}
	require.Error(t, cfg.Validate())

	cfg.STT.OpenAIKey = "sk-test"
	require.NoError(t, cfg.Validate())
}
