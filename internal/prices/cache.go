package prices

import (
	"context"
	"time"

	"github.com/wonny/mcrisk/pkg/logger"
	"github.com/wonny/mcrisk/pkg/redis"
)

// CachedProvider Redis read-through 캐시 데코레이터
// Redis 비활성 시 그대로 통과. 캐시 장애는 요청을 실패시키지 않음 (best effort)
type CachedProvider struct {
	inner  Provider
	cache  *redis.Cache
	ttl    time.Duration
	logger *logger.Logger
}

// NewCachedProvider wraps inner with a cache
// ttl <= 0 이면 redis.TTLLong
func NewCachedProvider(inner Provider, cache *redis.Cache, ttl time.Duration, log *logger.Logger) *CachedProvider {
	if ttl <= 0 {
		ttl = redis.TTLLong
	}
	return &CachedProvider{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: log.WithField("module", "price_cache"),
	}
}

// Source inner 제공자 이름
func (c *CachedProvider) Source() string { return c.inner.Source() }

// History cache → inner → cache
func (c *CachedProvider) History(ctx context.Context, symbol string, days int) (*Series, error) {
	if !c.cache.Enabled() {
		return c.inner.History(ctx, symbol, days)
	}

	key := redis.PriceHistoryKey(c.inner.Source(), symbol, days)

	var cached Series
	found, err := c.cache.Get(ctx, key, &cached)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Price cache read failed")
	}
	if found && cached.Len() > 0 {
		return &cached, nil
	}

	series, err := c.inner.History(ctx, symbol, days)
	if err != nil {
		return nil, err
	}

	// 빈 이력은 캐시하지 않음 (수집 직후 바로 보이도록)
	if series.Len() > 0 {
		if err := c.cache.Set(ctx, key, series, c.ttl); err != nil {
			c.logger.WithError(err).WithField("key", key).Warn("Price cache write failed")
		}
	}
	return series, nil
}

// Invalidate 종목의 모든 캐시 키 삭제 (수집 후 호출)
func (c *CachedProvider) Invalidate(ctx context.Context, symbol string) error {
	return c.cache.DeletePattern(ctx, redis.PriceHistoryPattern(symbol))
}
