package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
	assert.Equal(t, 512, cfg.EmbeddingDimensions)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 10, cfg.RateLimitPerMinute)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := "model: gpt-4o-mini\nlisten_addr: \":9090\"\napi_keys:\n  - key-one\n  - key-two\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, []string{"key-one", "key-two"}, cfg.APIKeys)
	// Untouched fields keep their defaults.
	assert.Equal(t, 512, cfg.EmbeddingDimensions)
}

func TestLoadMissingFileIsFine(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Model, cfg.Model)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: [unclosed"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvModel, "gpt-5")
	t.Setenv(EnvAPIKeys, "a, b ,")
	t.Setenv(EnvRateLimit, "42")
	t.Setenv(EnvOpenAIKey, "sk-test")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "gpt-5", cfg.Model)
	assert.Equal(t, []string{"a", "b"}, cfg.APIKeys)
	assert.Equal(t, 42, cfg.RateLimitPerMinute)
	assert.Equal(t, "sk-test", cfg.OpenAIKey)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\nTESTUDO_DOTENV_A=hello\nTESTUDO_DOTENV_B=\"quoted\"\nmalformed line\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("TESTUDO_DOTENV_A", "already-set")
	os.Unsetenv("TESTUDO_DOTENV_B")
	defer os.Unsetenv("TESTUDO_DOTENV_B")

	LoadDotEnv(path)
	// Existing environment wins.
	assert.Equal(t, "already-set", os.Getenv("TESTUDO_DOTENV_A"))
	assert.Equal(t, "quoted", os.Getenv("TESTUDO_DOTENV_B"))
}
