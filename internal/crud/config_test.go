package crud

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults when file is missing", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))

		require.NoError(t, err)
		assert.Equal(t, DefaultPerPage, cfg.PageSize)
		assert.True(t, cfg.ListCache.Enabled)
		assert.Equal(t, 5*time.Minute, cfg.ListCache.TTL)
		assert.Equal(t, 256, cfg.ListCache.MaxSize)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "crud.yaml")
		content := "pagesize: 50\nlistcache:\n  ttl: 30s\n  maxsize: 8\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cfg, err := LoadConfig(path)

		require.NoError(t, err)
		assert.Equal(t, 50, cfg.PageSize)
		assert.Equal(t, 30*time.Second, cfg.ListCache.TTL)
		assert.Equal(t, 8, cfg.ListCache.MaxSize)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "crud.yaml")
		require.NoError(t, os.WriteFile(path, []byte("pagesize: 50\n"), 0o600))
		t.Setenv("CRUD_PAGESIZE", "10")
		t.Setenv("CRUD_LISTCACHE_ENABLED", "false")

		cfg, err := LoadConfig(path)

		require.NoError(t, err)
		assert.Equal(t, 10, cfg.PageSize)
		assert.False(t, cfg.ListCache.Enabled)
		assert.Nil(t, cfg.NewListCache())
	})

	t.Run("non-positive page size falls back", func(t *testing.T) {
		t.Setenv("CRUD_PAGESIZE", "0")

		cfg, err := LoadConfig("")

		require.NoError(t, err)
		assert.Equal(t, DefaultPerPage, cfg.PageSize)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "crud.yaml")
		require.NoError(t, os.WriteFile(path, []byte("pagesize: [\n"), 0o600))

		_, err := LoadConfig(path)

		assert.Error(t, err)
	})
}

func TestNewListCache(t *testing.T) {
	cfg := &Config{ListCache: ListCacheConfig{Enabled: true, TTL: time.Minute, MaxSize: 4}}

	c := cfg.NewListCache()
	require.NotNil(t, c)
	defer c.Close()

	c.Set("k", []ListItem{{Key: "1"}})
	assert.Equal(t, 1, c.Size())
}
