package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ConfigFile), store.Path())
	assert.Empty(t, store.GetString("ai.provider"))
	_, err = os.Stat(store.Path())
	assert.True(t, os.IsNotExist(err), "opening never creates the file")
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := filepath.Join(t.TempDir(), "nested", "home")
	t.Setenv(HomeEnv, home)

	store, err := NewConfigStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ConfigFile), store.Path())
	info, err := os.Stat(home)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewConfigStore_Errors(t *testing.T) {
	t.Run("directory blocked by a file", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(blocker, nil, 0600))

		_, err := NewConfigStore(filepath.Join(blocker, "sub"))
		assert.ErrorContains(t, err, "create config directory")
	})

	t.Run("invalid toml", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte("[ai\nprovider = "), 0600))

		_, err := NewConfigStore(dir)
		assert.ErrorContains(t, err, "parse ")
	})

	t.Run("config path is a directory", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(dir, ConfigFile), 0700))

		_, err := NewConfigStore(dir)
		assert.ErrorContains(t, err, "read config")
	})
}

func TestHomeDir(t *testing.T) {
	t.Setenv(HomeEnv, "/srv/codebook")
	dir, err := HomeDir()
	require.NoError(t, err)
	assert.Equal(t, "/srv/codebook", dir)

	t.Setenv(HomeEnv, "")
	dir, err = HomeDir()
	if err != nil {
		t.Skip("Cannot determine home directory")
	}
	assert.Equal(t, ".codebook", filepath.Base(dir))
}

func TestConfigStore_WritesTables(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("ai.provider", "anthropic"))
	require.NoError(t, store.Set("ai.model", "claude-sonnet-4-5"))
	require.NoError(t, store.Set("codes.delete_policy", "legacy"))
	require.NoError(t, store.Set("analytics.max_logs", 250))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[ai]")
	assert.Contains(t, string(raw), "[codes]")
	assert.NotContains(t, string(raw), "ai.provider")

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", reloaded.GetString("ai.provider"))
	assert.Equal(t, "claude-sonnet-4-5", reloaded.GetString("ai.model"))
	assert.Equal(t, "legacy", reloaded.GetString("codes.delete_policy"))
	assert.Equal(t, 250, reloaded.GetInt("analytics.max_logs"))
}

func TestConfigStore_ReadsHandWrittenTables(t *testing.T) {
	dir := t.TempDir()
	content := `
# edited by hand
[storage]
backend = "postgres"
postgres_url = "postgres://localhost/codebook"

[analytics]
max_logs = 500

[ai]
requests_per_minute = "fast"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "postgres", store.GetString("storage.backend"))
	assert.Equal(t, "postgres://localhost/codebook", store.GetString("storage.postgres_url"))
	assert.Equal(t, 500, store.GetInt("analytics.max_logs"))
	assert.Zero(t, store.GetInt("ai.requests_per_minute"), "wrong type reads as zero")
	assert.Empty(t, store.GetString("analytics.max_logs"), "wrong type reads as empty")
}

func TestConfigStore_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), nil, 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("codes.delete_policy", "cascade"))
	assert.Equal(t, "cascade", store.GetString("codes.delete_policy"))
}

func TestConfigStore_Unset(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("ai.api_key", "sk-secret"))
	require.NoError(t, store.Set("ai.provider", "openai"))
	require.NoError(t, store.Unset("ai.api_key"))
	require.NoError(t, store.Unset("never.set"))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "sk-secret")

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Empty(t, reloaded.GetString("ai.api_key"))
	assert.Equal(t, "openai", reloaded.GetString("ai.provider"))
}

func TestConfigStore_FileIsPrivate(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("ai.api_key", "sk-secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestConfigStore_SetFailsOnUnencodableValue(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	err = store.Set("ai.hook", func() {})
	assert.ErrorContains(t, err, "encode config")

	require.NoError(t, store.Set("ai.provider", "openai"), "failed value was rolled back")
	assert.Equal(t, "openai", store.GetString("ai.provider"))
}

func TestConfigStore_SetFailsWhenDirectoryGone(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "home")
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(dir))

	err = store.Set("ai.provider", "openai")
	assert.ErrorContains(t, err, "write config")
}

func TestConfigStore_Concurrent(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Set("analytics.max_logs", i+1))
			_ = store.GetInt("analytics.max_logs")
		}()
	}
	wg.Wait()

	assert.Positive(t, store.GetInt("analytics.max_logs"))
}

func TestNest(t *testing.T) {
	got := nest(map[string]any{
		"ai.provider":    "openai",
		"ai.model":       "gpt-4o-mini",
		"storage":        "sqlite",
		"storage.url":    "ignored as table",
		"a.b.c":          1,
		"codes.policy.x": true,
	})

	assert.Equal(t, map[string]any{
		"ai":          map[string]any{"provider": "openai", "model": "gpt-4o-mini"},
		"storage":     "sqlite",
		"storage.url": "ignored as table",
		"a":           map[string]any{"b": map[string]any{"c": 1}},
		"codes":       map[string]any{"policy": map[string]any{"x": true}},
	}, got)
}

func TestFlatten(t *testing.T) {
	out := make(map[string]any)
	flatten(map[string]any{
		"ai":   map[string]any{"provider": "anthropic", "limits": map[string]any{"rpm": int64(5)}},
		"root": "x",
	}, "", out)

	assert.Equal(t, map[string]any{
		"ai.provider":   "anthropic",
		"ai.limits.rpm": int64(5),
		"root":          "x",
	}, out)
}
