package providers

import (
	"context"
	"fmt"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/custodia-labs/reqsift/internal/core/domain"
	"github.com/custodia-labs/reqsift/internal/core/ports/driven"
	"github.com/custodia-labs/reqsift/internal/logger"
)

// DefaultCacheSize is the number of extracted files kept per provider.
const DefaultCacheSize = 64

// Ensure CachingProvider implements the interface.
var _ driven.ContentProvider = (*CachingProvider)(nil)

// CachingProvider memoises another provider's output.
// Entries are keyed by path, size and modification time, so an edited file
// is extracted again. Used by long-running drivers (serve, watch) where the
// same file is often submitted repeatedly.
type CachingProvider struct {
	next  driven.ContentProvider
	cache *lru.Cache[string, *domain.ExtractedContent]
}

// NewCachingProvider wraps next with an LRU cache of the given size.
func NewCachingProvider(next driven.ContentProvider, size int) (*CachingProvider, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, *domain.ExtractedContent](size)
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	return &CachingProvider{next: next, cache: cache}, nil
}

// Category returns the wrapped provider's category.
func (c *CachingProvider) Category() domain.Category {
	return c.next.Category()
}

// Extract returns cached content when the file is unchanged.
func (c *CachingProvider) Extract(ctx context.Context, path string) (*domain.ExtractedContent, error) {
	info, err := os.Stat(path)
	if err != nil {
		return c.next.Extract(ctx, path)
	}
	key := fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano())

	if content, ok := c.cache.Get(key); ok {
		logger.Debug("cache hit for %s", path)
		return content, nil
	}

	content, err := c.next.Extract(ctx, path)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, content)
	return content, nil
}

// Len returns the number of cached entries.
func (c *CachingProvider) Len() int {
	return c.cache.Len()
}
