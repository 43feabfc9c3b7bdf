package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/iwvelando/mortgage-calc/pkg/constants"
	"go.uber.org/zap"
)

const quoteKeyPrefix = "mortgage-calc:quote:"

// CachedProvider serves quotes from a cache and falls through to the
// upstream provider when the cached quote is missing or expired.
type CachedProvider struct {
	upstream Provider
	cache    Cache
	key      string
	ttl      time.Duration
	logger   *zap.Logger

	// guards concurrent refreshes so a cold cache triggers one upstream call
	mu sync.Mutex
}

// NewCachedProvider wraps upstream with cache. The name distinguishes
// quotes of different feeds sharing one cache.
func NewCachedProvider(upstream Provider, cache Cache, name string, ttl time.Duration, logger *zap.Logger) *CachedProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = constants.DefaultQuoteTTL
	}
	return &CachedProvider{
		upstream: upstream,
		cache:    cache,
		key:      quoteKeyPrefix + name,
		ttl:      ttl,
		logger:   logger,
	}
}

// CurrentRate implements Provider.
func (c *CachedProvider) CurrentRate(ctx context.Context) (Quote, error) {
	if quote, ok := c.cached(ctx); ok {
		return quote, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if quote, ok := c.cached(ctx); ok {
		return quote, nil
	}
	return c.refresh(ctx)
}

// Refresh fetches a new quote from upstream and stores it regardless of the
// cached quote's age.
func (c *CachedProvider) Refresh(ctx context.Context) (Quote, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refresh(ctx)
}

func (c *CachedProvider) refresh(ctx context.Context) (Quote, error) {
	quote, err := c.upstream.CurrentRate(ctx)
	if err != nil {
		return Quote{}, err
	}

	encoded, err := json.Marshal(quote)
	if err != nil {
		return Quote{}, fmt.Errorf("failed to encode quote: %w", err)
	}
	if err := c.cache.Set(ctx, c.key, string(encoded), c.ttl); err != nil {
		// The quote is still good; only caching failed.
		c.logger.Warn("failed to cache quote",
			zap.String("op", "marketdata.CachedProvider.refresh"),
			zap.String("key", c.key),
			zap.Error(err),
		)
	}
	return quote, nil
}

func (c *CachedProvider) cached(ctx context.Context) (Quote, bool) {
	op := "marketdata.CachedProvider.cached"
	value, ok, err := c.cache.Get(ctx, c.key)
	if err != nil {
		c.logger.Warn("failed to read cached quote",
			zap.String("op", op),
			zap.String("key", c.key),
			zap.Error(err),
		)
		return Quote{}, false
	}
	if !ok {
		return Quote{}, false
	}

	var quote Quote
	if err := json.Unmarshal([]byte(value), &quote); err != nil {
		c.logger.Warn("discarding malformed cached quote",
			zap.String("op", op),
			zap.String("key", c.key),
			zap.Error(err),
		)
		return Quote{}, false
	}
	return quote, true
}
