package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig(t *testing.T, args ...string) *Config {
	t.Helper()
	cfg, err := parse(flag.NewFlagSet("test", flag.ContinueOnError), args)
	require.NoError(t, err)
	return cfg
}

func writeSecrets(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "secrets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParse_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	cfg := newTestConfig(t)

	assert.Equal(t, ProviderOpenAI, cfg.TextProvider)
	assert.Equal(t, "gpt-4-turbo", cfg.OpenAI.TextModel)
	assert.InDelta(t, 0.7, cfg.OpenAI.Temperature, 1e-9)
	assert.Equal(t, "dall-e-3", cfg.OpenAI.ImageModel)
	assert.Equal(t, "1024x1024", cfg.OpenAI.ImageSize)
	assert.Equal(t, SessionBackendMemory, cfg.Session.Backend)
	assert.Equal(t, "https://line.me/R/msg/text/?", cfg.ShareBaseURL)
}

func TestParse_EnvAndFlags(t *testing.T) {
	t.Setenv("TEXT_MODEL", "gpt-4o")
	t.Setenv("SESSION_BACKEND", "Redis")
	t.Setenv("REDIS_DB", "3")

	cfg := newTestConfig(t, "-image-provider", "STUB", "-http-bind-addr", ":9000")

	assert.Equal(t, "gpt-4o", cfg.OpenAI.TextModel)
	assert.Equal(t, SessionBackendRedis, cfg.Session.Backend)
	assert.Equal(t, 3, cfg.Session.RedisDB)
	assert.Equal(t, ProviderStub, cfg.ImageProvider)
	assert.Equal(t, ":9000", cfg.HTTP.BindAddr)
}

func TestParse_RejectsNonPositiveDurations(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
		want string
	}{
		{name: "zero timeout flag", args: []string{"-generation-timeout-seconds=0"}, want: "generation timeout"},
		{name: "negative timeout env", env: map[string]string{"GENERATION_TIMEOUT_SECONDS": "-5"}, want: "generation timeout"},
		{name: "zero ttl", args: []string{"-session-ttl-seconds=0"}, want: "session ttl"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := parse(flag.NewFlagSet("test", flag.ContinueOnError), tt.args)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestResolveCredentials(t *testing.T) {
	t.Run("flat env key", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "env-key")
		cfg := newTestConfig(t)
		cfg.SecretsFile = writeSecrets(t, "openai_api_key: file-key\n")

		require.NoError(t, cfg.ResolveCredentials())
		assert.Equal(t, "env-key", cfg.OpenAI.APIKey)
	})

	t.Run("flat secrets key", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		cfg := newTestConfig(t)
		cfg.SecretsFile = writeSecrets(t, "openai_api_key: flat-key\nopenai:\n  openai_api_key: nested-key\n")

		require.NoError(t, cfg.ResolveCredentials())
		assert.Equal(t, "flat-key", cfg.OpenAI.APIKey)
	})

	t.Run("nested secrets key", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		cfg := newTestConfig(t)
		cfg.SecretsFile = writeSecrets(t, "openai:\n  openai_api_key: nested-key\n")

		require.NoError(t, cfg.ResolveCredentials())
		assert.Equal(t, "nested-key", cfg.OpenAI.APIKey)
	})

	t.Run("missing key is a configuration error", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		cfg := newTestConfig(t)
		cfg.SecretsFile = filepath.Join(t.TempDir(), "absent.yaml")

		err := cfg.ResolveCredentials()
		require.Error(t, err)
		assert.True(t, IsConfigurationError(err))
		assert.Contains(t, err.Error(), "OpenAI APIキーが見つかりません")
	})

	t.Run("stub providers need no key", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		cfg := newTestConfig(t, "-text-provider", "stub", "-image-provider", "stub")
		cfg.SecretsFile = ""

		assert.NoError(t, cfg.ResolveCredentials())
	})

	t.Run("gemini requires its own key", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		t.Setenv("GEMINI_API_KEY", "")
		cfg := newTestConfig(t, "-text-provider", "stub", "-image-provider", "gemini")
		cfg.SecretsFile = writeSecrets(t, "gemini_api_key: g-key\n")

		require.NoError(t, cfg.ResolveCredentials())
		assert.Equal(t, "g-key", cfg.Gemini.APIKey)
	})

	t.Run("malformed secrets file", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		cfg := newTestConfig(t)
		cfg.SecretsFile = writeSecrets(t, "openai: [unterminated\n")

		err := cfg.ResolveCredentials()
		assert.True(t, IsConfigurationError(err))
	})

	t.Run("unknown provider", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "k")
		cfg := newTestConfig(t, "-image-provider", "midjourney")
		cfg.SecretsFile = ""

		assert.True(t, IsConfigurationError(cfg.ResolveCredentials()))
	})
}
