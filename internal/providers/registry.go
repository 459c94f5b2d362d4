package providers

import (
	"fmt"
	"sync"

	"github.com/custodia-labs/reqsift/internal/core/domain"
	"github.com/custodia-labs/reqsift/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ProviderRegistry = (*Registry)(nil)

// Registry maps categories to their capability providers.
// Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[domain.Category]driven.ContentProvider
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[domain.Category]driven.ContentProvider),
	}
}

// Register adds a provider, replacing any existing one for its category.
// Providers for unsupported categories are ignored.
func (r *Registry) Register(provider driven.ContentProvider) {
	if provider == nil || !provider.Category().IsSupported() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[provider.Category()] = provider
}

// Get returns the provider for a category.
func (r *Registry) Get(category domain.Category) (driven.ContentProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[category]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, category)
	}
	return p, nil
}

// Categories returns the registered categories in processing order.
func (r *Registry) Categories() []domain.Category {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var cats []domain.Category
	for _, c := range domain.AllCategories() {
		if _, ok := r.providers[c]; ok {
			cats = append(cats, c)
		}
	}
	return cats
}
