package marketdata

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/mortgage-calc/pkg/constants"
	"go.uber.org/zap"
)

// CacheConfig selects where quotes are cached.
type CacheConfig struct {
	Backend string        `yaml:"backend,omitempty"` // memory, redis
	TTL     time.Duration `yaml:"ttl,omitempty"`
	Redis   RedisConfig   `yaml:"redis,omitempty"`
}

// Config describes the market rate source.
type Config struct {
	Source          string      `yaml:"source,omitempty"` // static, xml
	Rate            float64     `yaml:"rate,omitempty"`
	RateType        string      `yaml:"rateType,omitempty"`
	Feed            FeedConfig  `yaml:"feed,omitempty"`
	Cache           CacheConfig `yaml:"cache,omitempty"`
	RefreshSchedule string      `yaml:"refreshSchedule,omitempty"`
}

// Enabled reports whether a rate source is configured.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.Source) != ""
}

// NewProvider builds the configured provider behind a cache. The returned
// close function releases the cache backend. A disabled configuration
// returns a nil interface, so the result can be handed to consumers of
// Provider as is.
func NewProvider(cfg Config, logger *zap.Logger) (RefreshingProvider, func() error, error) {
	noop := func() error { return nil }
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled() {
		return nil, noop, nil
	}

	var upstream Provider
	switch strings.ToLower(cfg.Source) {
	case constants.MarketSourceStatic:
		static, err := NewStaticProvider(cfg.Rate, cfg.RateType, "")
		if err != nil {
			return nil, noop, err
		}
		upstream = static
	case constants.MarketSourceXML:
		feedCfg := cfg.Feed
		if feedCfg.RateType == "" {
			feedCfg.RateType = cfg.RateType
		}
		feed, err := NewXMLFeedProvider(feedCfg, logger)
		if err != nil {
			return nil, noop, err
		}
		upstream = feed
	default:
		return nil, noop, fmt.Errorf("unknown market data source: %s", cfg.Source)
	}

	var cache Cache
	closeFn := noop
	switch strings.ToLower(cfg.Cache.Backend) {
	case "", constants.CacheBackendMemory:
		cache = NewMemoryCache()
	case constants.CacheBackendRedis:
		redisCache, err := NewRedisCache(cfg.Cache.Redis)
		if err != nil {
			return nil, noop, err
		}
		cache = redisCache
		closeFn = redisCache.Close
	default:
		return nil, noop, fmt.Errorf("unknown cache backend: %s", cfg.Cache.Backend)
	}

	name := strings.ToLower(cfg.Source)
	if cfg.RateType != "" {
		name += ":" + cfg.RateType
	}
	logger.Info("market data provider configured",
		zap.String("op", "marketdata.NewProvider"),
		zap.String("source", cfg.Source),
		zap.String("cache", cfg.Cache.Backend),
	)
	return NewCachedProvider(upstream, cache, name, cfg.Cache.TTL, logger), closeFn, nil
}
