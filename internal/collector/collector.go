package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/mcrisk/internal/prices"
	"github.com/wonny/mcrisk/pkg/logger"
)

// Collector 외부 가격 소스 → Postgres 수집 오케스트레이션
// ⭐ SSOT: 가격 수집은 이 패키지에서만
type Collector struct {
	source      prices.Provider
	store       prices.Store
	invalidator Invalidator
	logger      *logger.Logger
}

// Invalidator 수집 후 종목 캐시 무효화 (prices.CachedProvider)
type Invalidator interface {
	Invalidate(ctx context.Context, symbol string) error
}

// Config holds collector configuration
type Config struct {
	Workers int // Number of concurrent workers
	Days    int // 종목별 조회 거래일 수
}

// NewCollector creates a new Collector instance
// invalidator는 nil 허용 (캐시 없음)
func NewCollector(source prices.Provider, store prices.Store, invalidator Invalidator, log *logger.Logger) *Collector {
	return &Collector{
		source:      source,
		store:       store,
		invalidator: invalidator,
		logger:      log.WithField("module", "collector"),
	}
}

// FetchResult represents the result of a fetch operation
type FetchResult struct {
	Symbol  string `json:"symbol"`
	Fetched int    `json:"fetched"`
	Saved   int    `json:"saved"`
	Error   error  `json:"-"`
}

// Summary 수집 결과 집계
type Summary struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
	Saved   int `json:"saved"`
}

// Summarize counts results
func Summarize(results []FetchResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Error != nil {
			s.Failed++
			continue
		}
		s.Success++
		s.Saved += r.Saved
	}
	return s
}

// Collect symbols 전체를 워커 풀로 수집
// 개별 종목 실패는 FetchResult.Error로 보고하고 나머지는 계속 진행
func (c *Collector) Collect(ctx context.Context, symbols []string, cfg Config) ([]FetchResult, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("no symbols to collect")
	}
	if cfg.Days <= 0 {
		return nil, fmt.Errorf("collect days must be > 0, got %d", cfg.Days)
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(symbols) {
		workers = len(symbols)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol_count": len(symbols),
		"source":       c.source.Source(),
		"days":         cfg.Days,
		"workers":      workers,
	}).Info("Starting price collection")

	resultCh := make(chan FetchResult, len(symbols))
	symbolCh := make(chan string, len(symbols))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			c.priceWorker(ctx, workerID, symbolCh, resultCh, cfg.Days)
		}(i)
	}

	for _, symbol := range symbols {
		symbolCh <- symbol
	}
	close(symbolCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]FetchResult, 0, len(symbols))
	for result := range resultCh {
		results = append(results, result)
	}

	summary := Summarize(results)
	c.logger.WithFields(map[string]interface{}{
		"success": summary.Success,
		"failed":  summary.Failed,
		"saved":   summary.Saved,
		"total":   summary.Total,
	}).Info("Price collection completed")

	return results, nil
}

// priceWorker processes price fetching for symbols
func (c *Collector) priceWorker(ctx context.Context, workerID int, symbolCh <-chan string, resultCh chan<- FetchResult, days int) {
	for symbol := range symbolCh {
		select {
		case <-ctx.Done():
			resultCh <- FetchResult{Symbol: symbol, Error: ctx.Err()}
			continue
		default:
		}

		result := c.collectOne(ctx, symbol, days)
		if result.Error != nil {
			c.logger.WithError(result.Error).WithFields(map[string]interface{}{
				"worker": workerID,
				"symbol": symbol,
			}).Error("Failed to collect prices")
		} else {
			c.logger.WithFields(map[string]interface{}{
				"worker":  workerID,
				"symbol":  symbol,
				"fetched": result.Fetched,
				"saved":   result.Saved,
			}).Debug("Collected prices")
		}
		resultCh <- result
	}
}

// collectOne fetch → 신규분 필터 → upsert → 캐시 무효화
func (c *Collector) collectOne(ctx context.Context, symbol string, days int) FetchResult {
	result := FetchResult{Symbol: symbol}

	series, err := c.source.History(ctx, symbol, days)
	if err != nil {
		result.Error = fmt.Errorf("fetch: %w", err)
		return result
	}
	result.Fetched = series.Len()

	latest, found, err := c.store.LatestDate(ctx, symbol)
	if err != nil {
		result.Error = fmt.Errorf("latest date: %w", err)
		return result
	}

	bars := series.Bars
	if found {
		bars = since(bars, latest)
	}
	if len(bars) == 0 {
		return result
	}

	saved, err := c.store.SaveBars(ctx, symbol, c.source.Source(), bars)
	if err != nil {
		result.Error = fmt.Errorf("save: %w", err)
		return result
	}
	result.Saved = saved

	if c.invalidator != nil {
		if err := c.invalidator.Invalidate(ctx, symbol); err != nil {
			c.logger.WithError(err).WithField("symbol", symbol).Warn("Cache invalidation failed")
		}
	}
	return result
}

// since latest 당일 이후 bar (당일은 장중 수집분 갱신을 위해 포함)
func since(bars []prices.Bar, latest time.Time) []prices.Bar {
	for i, b := range bars {
		if !b.Date.Before(latest) {
			return bars[i:]
		}
	}
	return nil
}
