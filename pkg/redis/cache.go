package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache provides typed JSON caching
// ⭐ SSOT: 캐시 헬퍼는 여기서만
type Cache struct {
	client *Client
	prefix string
}

// NewCache creates a new cache helper
func NewCache(client *Client, prefix string) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
	}
}

// Enabled Redis 사용 가능 여부
func (c *Cache) Enabled() bool {
	return c != nil && c.client.Enabled()
}

// Key 전체 키 (prefix:cache:key)
func (c *Cache) Key(key string) string {
	return fmt.Sprintf("%s:cache:%s", c.prefix, key)
}

// Get retrieves a cached value
// 키 없음은 (false, nil), 손상된 값은 삭제 후 (false, err)
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}

	fullKey := c.Key(key)
	data, err := c.client.Redis().Get(ctx, fullKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get failed: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		_ = c.client.Redis().Del(ctx, fullKey).Err()
		return false, fmt.Errorf("cache unmarshal failed: %w", err)
	}

	return true, nil
}

// Set stores a value in cache with TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	return c.client.Redis().Set(ctx, c.Key(key), data, ttl).Err()
}

// Delete removes a cached value
func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Redis().Del(ctx, c.Key(key)).Err()
}

// DeletePattern SCAN으로 패턴에 맞는 키 삭제 (수집 후 무효화용)
func (c *Cache) DeletePattern(ctx context.Context, pattern string) error {
	if !c.Enabled() {
		return nil
	}

	rdb := c.client.Redis()
	var cursor uint64
	for {
		keys, next, err := rdb.Scan(ctx, cursor, c.Key(pattern), 200).Result()
		if err != nil {
			return fmt.Errorf("cache scan failed: %w", err)
		}
		if len(keys) > 0 {
			if err := rdb.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("cache delete failed: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Predefined TTLs
const (
	TTLMedium = 10 * time.Minute // DB 소스 (수집 job이 갱신)
	TTLLong   = 1 * time.Hour    // 원격 소스 (업스트림 호출 절약)
)

// PriceHistoryKey 가격 이력 캐시 키
// prices:{source}:{symbol}:{days}
func PriceHistoryKey(source, symbol string, days int) string {
	return fmt.Sprintf("prices:%s:%s:%d", safe(source), safe(symbol), days)
}

// PriceHistoryPattern 종목의 모든 가격 이력 키 (무효화용)
func PriceHistoryPattern(symbol string) string {
	return fmt.Sprintf("prices:*:%s:*", safe(symbol))
}

// safe 키 구분자와 공백 치환
func safe(s string) string {
	return strings.NewReplacer(" ", "_", ":", "_").Replace(s)
}
