package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/wonny/mcrisk/internal/collector"
	"github.com/wonny/mcrisk/internal/prices"
	"github.com/wonny/mcrisk/internal/risk"
	"github.com/wonny/mcrisk/internal/simconfig"
	"github.com/wonny/mcrisk/internal/simulation"
	"github.com/wonny/mcrisk/pkg/config"
	"github.com/wonny/mcrisk/pkg/database"
	"github.com/wonny/mcrisk/pkg/logger"
	"github.com/wonny/mcrisk/pkg/redis"
)

// app 커맨드 공통 의존성
// ⭐ SSOT: CLI 의존성 조립은 여기서만
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *database.DB // nil = DATABASE_URL 미설정
	rdb      *redis.Client
	provider *prices.CachedProvider
	service  *simulation.Service
}

// newApp config → logger → DB → Redis → 가격 제공자 → 시뮬레이션 서비스
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// stdout은 리포트 전용, 로그는 stderr
	log := logger.NewWithWriter(cfg, os.Stderr)
	a := &app{cfg: cfg, log: log}

	if cfg.Database.URL != "" {
		a.db, err = database.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
	}

	a.rdb, err = redis.New(ctx, cfg)
	if err != nil {
		// 캐시는 best effort: Redis 장애 시 pass-through
		log.WithError(err).Warn("Redis unavailable, continuing without cache")
		a.rdb = redis.Wrap(nil)
	}

	a.provider, err = prices.NewProvider(cfg, prices.Deps{DB: a.db, Redis: a.rdb, Logger: log})
	if err != nil {
		a.close()
		return nil, fmt.Errorf("price provider: %w", err)
	}

	profile, err := simconfig.LoadOrDefault(cfg.Simulation.ProfilePath)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("load simulation profile: %w", err)
	}
	for _, w := range simconfig.Warnings(profile) {
		log.WithFields(map[string]interface{}{"code": w.Code}).Warn(w.Message)
	}

	engine := risk.NewEngine(cfg.Simulation.Workers, cfg.Simulation.BatchSize)
	a.service, err = simulation.NewService(a.provider, engine, profile, simulation.Options{
		Timeout:     cfg.Simulation.Timeout,
		HistoryDays: cfg.Simulation.HistoryDays,
	}, log)
	if err != nil {
		a.close()
		return nil, err
	}

	log.WithFields(map[string]interface{}{
		"price_source": cfg.PriceSource,
		"database":     a.db != nil,
		"redis":        a.rdb.Enabled(),
		"profile":      profile.Meta.ProfileID,
	}).Debug("Application initialized")

	return a, nil
}

// collector 외부 소스 → DB 수집기 (DB 필수)
// source 빈 값이면 PRICE_SOURCE, database 소스면 naver
func (a *app) collector(source string) (*collector.Collector, error) {
	if a.db == nil {
		return nil, errors.New("price collection requires DATABASE_URL")
	}
	if source == "" {
		source = a.cfg.PriceSource
	}
	if source == config.PriceSourceDatabase {
		source = config.PriceSourceNaver
	}

	remote, err := prices.NewRemoteSource(a.cfg, source, a.rdb, a.log)
	if err != nil {
		return nil, err
	}

	repo := prices.NewRepository(a.db.Pool)
	return collector.NewCollector(remote, repo, a.provider, a.log), nil
}

// health DB/Redis 상태
func (a *app) health(ctx context.Context) map[string]string {
	deps := map[string]string{}
	if a.db != nil {
		deps["database"] = "ok"
		if err := a.db.Ping(ctx); err != nil {
			deps["database"] = err.Error()
		}
	}
	if a.rdb.Enabled() {
		deps["redis"] = "ok"
		if err := a.rdb.Redis().Ping(ctx).Err(); err != nil {
			deps["redis"] = err.Error()
		}
	}
	return deps
}

func (a *app) close() {
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	a.db.Close()
}
