package crud

import (
	"fmt"
	"slices"
	"sync"

	"github.com/samber/lo"
)

// Registry resolves list repositories by name.
type Registry struct {
	mu    sync.RWMutex
	repos map[string]ListRepository
}

func NewRegistry() *Registry {
	return &Registry{repos: make(map[string]ListRepository)}
}

// Register adds or replaces the repository stored under name.
func (r *Registry) Register(name string, repo ListRepository) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.repos[name] = repo
}

// Resolve returns the repository registered under name.
func (r *Registry) Resolve(name string) (ListRepository, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	repo, ok := r.repos[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRepository, name)
	}
	return repo, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := lo.Keys(r.repos)
	slices.Sort(names)
	return names
}
