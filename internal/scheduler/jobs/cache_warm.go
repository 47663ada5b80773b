package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/mcrisk/internal/prices"
	"github.com/wonny/mcrisk/pkg/config"
	"github.com/wonny/mcrisk/pkg/logger"
)

// CacheWarmJob 수집 후 시뮬레이션 조회 구간을 미리 캐시에 적재
type CacheWarmJob struct {
	provider prices.Provider
	symbols  []string
	days     int
	schedule string
	logger   *logger.Logger
}

// NewCacheWarmJob creates a new cache warm-up job
func NewCacheWarmJob(provider prices.Provider, cfg *config.Config, log *logger.Logger) *CacheWarmJob {
	return &CacheWarmJob{
		provider: provider,
		symbols:  cfg.Collector.Symbols,
		days:     cfg.Simulation.HistoryDays,
		schedule: "0 30 18 * * 1-5", // 수집 30분 후
		logger:   log.WithField("job", "cache_warm"),
	}
}

// Name returns the job name
func (j *CacheWarmJob) Name() string {
	return "cache_warm"
}

// Schedule returns the cron schedule
func (j *CacheWarmJob) Schedule() string {
	return j.schedule
}

// Run loads each symbol's simulation window through the cached provider
func (j *CacheWarmJob) Run(ctx context.Context) error {
	var failed int
	for _, symbol := range j.symbols {
		if err := ctx.Err(); err != nil {
			return err
		}
		series, err := j.provider.History(ctx, symbol, j.days)
		if err != nil {
			failed++
			j.logger.WithError(err).WithField("symbol", symbol).Warn("Cache warm failed")
			continue
		}
		j.logger.WithFields(map[string]interface{}{
			"symbol": symbol,
			"bars":   series.Len(),
		}).Debug("Cache warmed")
	}

	if len(j.symbols) > 0 && failed == len(j.symbols) {
		return fmt.Errorf("cache warm failed for all %d symbols", failed)
	}
	return nil
}
