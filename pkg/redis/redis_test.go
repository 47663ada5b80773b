package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/mcrisk/pkg/config"
)

func TestNewClient_Disabled(t *testing.T) {
	cfg := &config.Config{
		Redis: config.RedisConfig{
			Enabled: false,
		},
	}

	client, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestWrap(t *testing.T) {
	assert.False(t, Wrap(nil).Enabled())

	rdb, _ := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()
	assert.True(t, Wrap(rdb).Enabled())
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(Wrap(nil), "test")

	// When Redis is disabled, all requests should be allowed
	allowed, remaining, err := limiter.Allow(context.Background(), NaverRateLimit)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, NaverRateLimit.Limit, remaining)

	assert.NoError(t, limiter.Wait(context.Background(), YahooRateLimit))
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(Wrap(nil), "test")

	// When Redis is disabled, cache operations should be no-ops
	var result string
	found, err := cache.Get(context.Background(), "key", &result)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, cache.Set(context.Background(), "key", "v", TTLMedium))
	assert.NoError(t, cache.DeletePattern(context.Background(), "*"))
}

func TestCache_GetHit(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	payload, _ := json.Marshal([]float64{100, 101.5})
	mock.ExpectGet("mcrisk:cache:prices:naver:005930:800").SetVal(string(payload))

	cache := NewCache(Wrap(rdb), "mcrisk")
	var got []float64
	found, err := cache.Get(context.Background(), PriceHistoryKey("naver", "005930", 800), &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []float64{100, 101.5}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_GetMissAndError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectGet("mcrisk:cache:miss").RedisNil()
	mock.ExpectGet("mcrisk:cache:down").SetErr(errors.New("connection refused"))

	cache := NewCache(Wrap(rdb), "mcrisk")
	var v string

	found, err := cache.Get(context.Background(), "miss", &v)
	assert.NoError(t, err)
	assert.False(t, found)

	found, err = cache.Get(context.Background(), "down", &v)
	assert.Error(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_CorruptedEntryDeleted(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectGet("mcrisk:cache:bad").SetVal("{not json")
	mock.ExpectDel("mcrisk:cache:bad").SetVal(1)

	cache := NewCache(Wrap(rdb), "mcrisk")
	var v []float64
	found, err := cache.Get(context.Background(), "bad", &v)
	assert.Error(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_Set(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	payload, _ := json.Marshal(map[string]int{"n": 1})
	mock.ExpectSet("mcrisk:cache:k", payload, time.Hour).SetVal("OK")

	cache := NewCache(Wrap(rdb), "mcrisk")
	require.NoError(t, cache.Set(context.Background(), "k", map[string]int{"n": 1}, time.Hour))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_DeletePattern(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	pattern := PriceHistoryPattern("AAPL")
	mock.ExpectScan(0, "mcrisk:cache:"+pattern, 200).SetVal([]string{"mcrisk:cache:prices:yahoo:AAPL:800"}, 0)
	mock.ExpectDel("mcrisk:cache:prices:yahoo:AAPL:800").SetVal(1)

	cache := NewCache(Wrap(rdb), "mcrisk")
	require.NoError(t, cache.DeletePattern(context.Background(), pattern))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheKeys(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"PriceHistoryKey", PriceHistoryKey("database", "005930", 800), "prices:database:005930:800"},
		{"PriceHistoryKey escapes", PriceHistoryKey("yahoo", "BRK B:US", 30), "prices:yahoo:BRK_B_US:30"},
		{"PriceHistoryPattern", PriceHistoryPattern("AAPL"), "prices:*:AAPL:*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}
}
