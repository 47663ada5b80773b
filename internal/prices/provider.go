package prices

import (
	"fmt"
	"time"

	"github.com/wonny/mcrisk/internal/external/naver"
	"github.com/wonny/mcrisk/internal/external/yahoo"
	"github.com/wonny/mcrisk/pkg/config"
	"github.com/wonny/mcrisk/pkg/database"
	"github.com/wonny/mcrisk/pkg/httputil"
	"github.com/wonny/mcrisk/pkg/logger"
	"github.com/wonny/mcrisk/pkg/redis"
)

// cachePrefix Redis 키 prefix
const cachePrefix = "mcrisk"

// Deps NewProvider 의존성 (nil 허용: DB는 database 소스에서만, Redis는 선택)
type Deps struct {
	DB     *database.DB
	Redis  *redis.Client
	Logger *logger.Logger
}

// NewProvider PRICE_SOURCE에 맞는 제공자를 만들고 Redis 캐시로 감쌈
// ⭐ SSOT: 가격 제공자 조립은 여기서만
func NewProvider(cfg *config.Config, deps Deps) (*CachedProvider, error) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}

	var (
		inner Provider
		ttl   time.Duration
	)
	switch cfg.PriceSource {
	case config.PriceSourceDatabase:
		if deps.DB == nil {
			return nil, fmt.Errorf("price source %q requires a database connection", cfg.PriceSource)
		}
		inner = NewRepository(deps.DB.Pool)
		ttl = redis.TTLMedium // 수집 job이 갱신하므로 짧게
	case config.PriceSourceNaver, config.PriceSourceYahoo:
		remote, err := NewRemoteSource(cfg, cfg.PriceSource, deps.Redis, log)
		if err != nil {
			return nil, err
		}
		inner = remote
		ttl = redis.TTLLong
	default:
		return nil, fmt.Errorf("unknown price source %q", cfg.PriceSource)
	}

	cache := redis.NewCache(deps.Redis, cachePrefix)
	return NewCachedProvider(inner, cache, ttl, log), nil
}

// NewRemoteSource 외부 API 제공자 (naver | yahoo)
// HTTP 클라이언트는 로컬 토큰 버킷 + Redis 분산 레이트리밋 적용
func NewRemoteSource(cfg *config.Config, source string, rdb *redis.Client, log *logger.Logger) (Provider, error) {
	limiter := redis.NewRateLimiter(rdb, cachePrefix)

	switch source {
	case SourceNaver:
		hc := httputil.NewWithTimeout(log, 15*time.Second).
			WithLocalLimit(cfg.Naver.RateLimit).
			WithRateLimiter(limiter, redis.NaverRateLimit)
		client := naver.NewClient(hc, log).WithURLs(cfg.Naver.BaseURL, cfg.Naver.ChartURL)
		return NewNaverSource(client), nil
	case SourceYahoo:
		hc := httputil.NewWithTimeout(log, 15*time.Second).
			WithLocalLimit(cfg.Yahoo.RateLimit).
			WithRateLimiter(limiter, redis.YahooRateLimit)
		client := yahoo.NewClient(hc, log).WithBaseURL(cfg.Yahoo.BaseURL)
		return NewYahooSource(client), nil
	default:
		return nil, fmt.Errorf("unknown remote price source %q", source)
	}
}
