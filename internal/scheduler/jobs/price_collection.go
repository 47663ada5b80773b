package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/mcrisk/internal/collector"
	"github.com/wonny/mcrisk/pkg/config"
	"github.com/wonny/mcrisk/pkg/logger"
)

// priceCollector collector.Collector 수집 기능
type priceCollector interface {
	Collect(ctx context.Context, symbols []string, cfg collector.Config) ([]collector.FetchResult, error)
}

// PriceCollectionJob collects daily prices for the configured symbols
// ⭐ SSOT: 가격 수집 스케줄은 이 Job에서만
type PriceCollectionJob struct {
	collector priceCollector
	config    config.CollectorConfig
	workers   int
	logger    *logger.Logger
}

// NewPriceCollectionJob creates a new price collection job
func NewPriceCollectionJob(col priceCollector, cfg *config.Config, log *logger.Logger) *PriceCollectionJob {
	return &PriceCollectionJob{
		collector: col,
		config:    cfg.Collector,
		workers:   5,
		logger:    log.WithField("job", "price_collection"),
	}
}

// Name returns the job name
func (j *PriceCollectionJob) Name() string {
	return "price_collection"
}

// Schedule returns the cron schedule (COLLECT_SCHEDULE, 기본 평일 18시)
func (j *PriceCollectionJob) Schedule() string {
	return j.config.Schedule
}

// Run executes the price collection
// 일부 종목 실패는 로그만, 전 종목 실패 시 에러 (스케줄러 재시도 대상)
func (j *PriceCollectionJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled price collection")

	results, err := j.collector.Collect(ctx, j.config.Symbols, collector.Config{
		Workers: j.workers,
		Days:    j.config.Days,
	})
	if err != nil {
		return fmt.Errorf("collect prices: %w", err)
	}

	summary := collector.Summarize(results)
	if summary.Total > 0 && summary.Success == 0 {
		return fmt.Errorf("all %d symbols failed, first error: %w", summary.Total, results[0].Error)
	}

	j.logger.WithFields(map[string]interface{}{
		"success": summary.Success,
		"failed":  summary.Failed,
		"saved":   summary.Saved,
	}).Info("Scheduled price collection completed")
	return nil
}
