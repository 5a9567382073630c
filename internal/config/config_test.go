package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Load_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "dev")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsDev())
	assert.False(t, cfg.IsProd())
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, BackendPostgres, cfg.StoreBackend)
	assert.Equal(t, 30*time.Minute, cfg.QuickTestTTL)
	assert.Equal(t, 20, cfg.QuickTestPerHour)
	assert.Equal(t, int64(2*1024*1024), cfg.MaxUploadBytes())
	assert.Empty(t, cfg.KafkaBrokers)
}

func Test_Load_Overrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", " Memory ")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("RANDOM_SEED", "42")
	t.Setenv("QUICK_TEST_TTL", "5m")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("OTEL_TRACES_SAMPLE_RATIO", "0.25")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.UseMemoryStore())
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, int64(42), cfg.RandomSeed)
	assert.Equal(t, 5*time.Minute, cfg.QuickTestTTL)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 0.25, cfg.SampleRatio())
}

func Test_Load_Errors(t *testing.T) {
	t.Run("bad backend", func(t *testing.T) {
		t.Setenv("STORE_BACKEND", "sqlite")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "op=config.Load")
	})
	t.Run("bad int", func(t *testing.T) {
		t.Setenv("PORT", "not-a-number")
		_, err := Load()
		require.Error(t, err)
	})
}

func Test_LoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("GEMINI_MODEL=gemini-test\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("GEMINI_MODEL") })

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini-test", cfg.GeminiModel)

	_, err = LoadFile(filepath.Join(dir, "missing.env"))
	require.Error(t, err)
}

func Test_GetAIBackoffConfig(t *testing.T) {
	cfg := Config{AppEnv: "test", AIBackoffMaxElapsedTime: time.Minute}
	maxElapsed, initial, maxInterval, mult := cfg.GetAIBackoffConfig()
	assert.Equal(t, 2*time.Second, maxElapsed)
	assert.Equal(t, 50*time.Millisecond, initial)
	assert.Equal(t, 200*time.Millisecond, maxInterval)
	assert.Equal(t, 2.0, mult)

	cfg.AppEnv = "prod"
	maxElapsed, _, _, _ = cfg.GetAIBackoffConfig()
	assert.Equal(t, time.Minute, maxElapsed)
}
