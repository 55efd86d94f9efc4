// Package lists owns the select-list registry, cache and service shared by
// the application modules. Modules register their list repositories during
// Init; the lookups module serves them.
package lists

import (
	"context"

	"github.com/gaborage/go-bricks-crud-demo/internal/crud"
	"github.com/gaborage/go-bricks-crud-demo/internal/crud/cache"
	"github.com/gaborage/go-bricks/logger"
)

// Lists bundles the registry and the cached list service.
type Lists struct {
	registry *crud.Registry
	cache    *cache.Cache[[]crud.ListItem]
	service  *crud.ListService
	logger   logger.Logger
}

// New builds the shared lists from cfg. Caching is skipped when cfg disables it.
func New(cfg *crud.Config, log logger.Logger) *Lists {
	registry := crud.NewRegistry()
	c := cfg.NewListCache()

	return &Lists{
		registry: registry,
		cache:    c,
		service:  crud.NewListService(registry, c),
		logger:   log,
	}
}

// Register makes repo available under name and drops any list cached for it.
func (l *Lists) Register(name string, repo crud.ListRepository) {
	l.registry.Register(name, repo)
	l.service.Invalidate(name)
	l.logger.Debug().Str("list", name).Msg("Select list registered")
}

func (l *Lists) Names() []string {
	return l.registry.Names()
}

// FindList returns one list per name, in the order the names were given.
func (l *Lists) FindList(ctx context.Context, active bool, names ...string) ([][]crud.ListItem, error) {
	return l.service.FindList(ctx, active, names...)
}

func (l *Lists) FindListBased(ctx context.Context, name string, active bool) ([]crud.ListItem, error) {
	return l.service.FindListBased(ctx, name, active)
}

func (l *Lists) Invalidate(name string) {
	l.service.Invalidate(name)
}

// Metrics reports the list cache metrics, or false when caching is disabled.
func (l *Lists) Metrics() (cache.Metrics, bool) {
	if l.cache == nil {
		return cache.Metrics{}, false
	}
	return l.cache.Metrics(), true
}

// Close stops the cache cleanup goroutine.
func (l *Lists) Close() {
	if l.cache != nil {
		l.cache.Close()
	}
}
