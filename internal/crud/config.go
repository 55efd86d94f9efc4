package crud

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/gaborage/go-bricks-crud-demo/internal/crud/cache"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// DefaultConfigFile is read when present in the working directory.
	DefaultConfigFile = "crud.yaml"

	envPrefix = "CRUD_"
)

// Config holds the service-layer settings.
type Config struct {
	PageSize  int             `koanf:"pagesize"`
	ListCache ListCacheConfig `koanf:"listcache"`
}

type ListCacheConfig struct {
	Enabled bool          `koanf:"enabled"`
	TTL     time.Duration `koanf:"ttl"`
	MaxSize int           `koanf:"maxsize"`
}

func defaults() map[string]any {
	return map[string]any{
		"pagesize":          DefaultPerPage,
		"listcache.enabled": true,
		"listcache.ttl":     "5m",
		"listcache.maxsize": 256,
	}
}

// LoadConfig layers defaults, the YAML file at path (skipped when missing)
// and CRUD_* environment variables. CRUD_LISTCACHE_TTL maps to listcache.ttl.
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load config defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			key := strings.ToLower(strings.TrimPrefix(k, envPrefix))
			return strings.ReplaceAll(key, "_", "."), v
		},
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPerPage
	}
	if cfg.ListCache.MaxSize <= 0 {
		cfg.ListCache.MaxSize = 256
	}
	return &cfg, nil
}

// NewListCache returns the list cache described by cfg, or nil when disabled.
func (cfg *Config) NewListCache() *cache.Cache[[]ListItem] {
	if !cfg.ListCache.Enabled || cfg.ListCache.TTL <= 0 {
		return nil
	}
	return cache.New[[]ListItem](cfg.ListCache.TTL, cfg.ListCache.MaxSize)
}
