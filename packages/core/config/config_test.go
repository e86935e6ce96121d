package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, []string{"console"}, cfg.Reporters)
	assert.Equal(t, DefaultConcurrency, cfg.Concurrency)
	assert.False(t, cfg.GetParallel())
	assert.False(t, cfg.GetSortable())
	assert.True(t, cfg.IsDefault())
}

func TestFindAndLoadConfig(t *testing.T) {
	t.Run("no file gives defaults", func(t *testing.T) {
		cfg, err := FindAndLoadConfig(t.TempDir())
		require.NoError(t, err)
		assert.True(t, cfg.IsDefault())
	})

	t.Run("search order", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".hitassertrc"), []byte(`{"concurrency": 2}`), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "hitassert.config.json"), []byte(`{"concurrency": 9}`), 0644))

		cfg, err := FindAndLoadConfig(dir)
		require.NoError(t, err)
		assert.Equal(t, 9, cfg.Concurrency)
	})

	t.Run("fields", func(t *testing.T) {
		dir := t.TempDir()
		content := `{
  "reporters": ["json"],
  "parallel": true,
  "sortable": true,
  "containerName": "files",
  "elementPluralName": "paths",
  "envFile": ".env.test",
  "variables": {"owner": "alice", "limit": 3}
}`
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".hitassert.config.json"), []byte(content), 0644))

		cfg, err := FindAndLoadConfig(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"json"}, cfg.Reporters)
		assert.True(t, cfg.GetParallel())
		assert.True(t, cfg.GetSortable())
		assert.Equal(t, "files", cfg.ContainerName)
		assert.Equal(t, "paths", cfg.ElementPluralName)
		assert.Equal(t, filepath.Join(dir, ".env.test"), cfg.EnvFile)
		assert.Equal(t, "alice", cfg.Variables["owner"])
		assert.Equal(t, DefaultConcurrency, cfg.Concurrency, "unset fields keep defaults")
		assert.False(t, cfg.IsDefault())
	})

	t.Run("invalid json", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".hitassertrc"), []byte(`{`), 0644))
		_, err := FindAndLoadConfig(dir)
		assert.ErrorContains(t, err, "invalid config")
	})
}

func TestLoadConfig_ExplicitPath(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	base.Variables = map[string]any{"a": 1, "b": 1}
	base.Bail = BoolPtr(true)

	other := &Config{
		Concurrency: 8,
		Parallel:    BoolPtr(true),
		Bail:        BoolPtr(false),
		Variables:   map[string]any{"b": 2},
		Reporters:   []string{"junit"},
	}

	merged := base.Merge(other)
	assert.Equal(t, 8, merged.Concurrency)
	assert.True(t, merged.GetParallel())
	assert.False(t, merged.GetBail(), "explicit false overrides")
	assert.Equal(t, map[string]any{"a": 1, "b": 2}, merged.Variables)
	assert.Equal(t, []string{"junit"}, merged.Reporters)
	assert.Equal(t, map[string]any{"a": 1, "b": 1}, base.Variables, "base is not modified")

	assert.Same(t, base, base.Merge(nil))
}

func TestSaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hitassert.config.json")
	cfg := DefaultConfig()
	cfg.ContainerName = "users"
	require.NoError(t, cfg.SaveConfig(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "users", loaded.ContainerName)
	assert.Equal(t, cfg.Reporters, loaded.Reporters)
}
