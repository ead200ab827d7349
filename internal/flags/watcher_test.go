package flags

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lewisedginton/genai_gateway/pkg/logger"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func TestWatcherReload(t *testing.T) {
	t.Setenv(EnableGeminiEnv, "")
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	writeFile(t, path, "enable_gemini: false\n")

	store := NewStore(false)
	w, err := NewWatcher(path, store, logger.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.fsw.Close() })

	writeFile(t, path, "enable_gemini: true\nllm_provider: gemini\n")
	require.NoError(t, w.Reload())
	assert.True(t, store.GeminiEnabled())

	writeFile(t, path, "enable_gemini: [broken\n")
	assert.Error(t, w.Reload())
	assert.True(t, store.GeminiEnabled(), "previous value kept on parse error")
}

func TestWatcherReloadKeepsValueWithoutFlag(t *testing.T) {
	t.Setenv(EnableGeminiEnv, "")
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	writeFile(t, path, "enable_gemini: true\n")

	store := NewStore(true)
	w, err := NewWatcher(path, store, logger.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.fsw.Close() })

	for _, body := range []string{"", "\n", "llm_provider: openai\n"} {
		writeFile(t, path, body)
		err := w.Reload()
		assert.ErrorIs(t, err, errNoFlag, "body %q", body)
		assert.True(t, store.GeminiEnabled(), "body %q", body)
	}

	writeFile(t, path, "enable_gemini: false\n")
	require.NoError(t, w.Reload())
	assert.False(t, store.GeminiEnabled())
}

func TestWatcherReloadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	writeFile(t, path, "enable_gemini: true\n")
	t.Setenv(EnableGeminiEnv, "false")

	store := NewStore(true)
	w, err := NewWatcher(path, store, logger.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.fsw.Close() })

	require.NoError(t, w.Reload())
	assert.False(t, store.GeminiEnabled())
}

func TestWatcherRunAppliesFileChanges(t *testing.T) {
	t.Setenv(EnableGeminiEnv, "")
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	writeFile(t, path, "enable_gemini: false\n")

	store := NewStore(false)
	w, err := NewWatcher(path, store, logger.NewNopLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	writeFile(t, path, "enable_gemini: true\n")
	assert.Eventually(t, store.GeminiEnabled, 5*time.Second, 20*time.Millisecond)

	writeFile(t, path, "enable_gemini: false\n")
	assert.Eventually(t, func() bool { return !store.GeminiEnabled() }, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}

func TestNewWatcherMissingDirectory(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "missing", "gateway.yaml"), NewStore(false), logger.NewNopLogger())
	assert.Error(t, err)
}
