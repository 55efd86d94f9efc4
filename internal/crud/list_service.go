package crud

import (
	"context"
	"strconv"

	"github.com/gaborage/go-bricks-crud-demo/internal/crud/cache"
)

// ListService builds select lists from repositories resolved by name.
type ListService struct {
	registry *Registry
	cache    *cache.Cache[[]ListItem]
}

// NewListService returns a list service. c may be nil to disable caching.
func NewListService(registry *Registry, c *cache.Cache[[]ListItem]) *ListService {
	return &ListService{registry: registry, cache: c}
}

// FindList returns one list per name, in the order the names were given.
func (s *ListService) FindList(ctx context.Context, active bool, names ...string) ([][]ListItem, error) {
	results := make([][]ListItem, 0, len(names))
	for _, name := range names {
		list, err := s.FindListBased(ctx, name, active)
		if err != nil {
			return nil, err
		}
		results = append(results, list)
	}

	return results, nil
}

// FindListBased resolves name and returns its list.
func (s *ListService) FindListBased(ctx context.Context, name string, active bool) ([]ListItem, error) {
	key := cacheKey(name, active)
	if s.cache != nil {
		if list, ok := s.cache.Get(key); ok {
			return list, nil
		}
	}

	repo, err := s.registry.Resolve(name)
	if err != nil {
		return nil, err
	}

	list, err := repo.FindList(ctx, active)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(key, list)
	}
	return list, nil
}

// Invalidate drops the cached lists of name.
func (s *ListService) Invalidate(name string) {
	if s.cache != nil {
		s.cache.DeletePrefix(name + "|")
	}
}

func cacheKey(name string, active bool) string {
	return name + "|" + strconv.FormatBool(active)
}
