package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/mcrisk/internal/prices"
	"github.com/wonny/mcrisk/internal/risk"
	"github.com/wonny/mcrisk/internal/simconfig"
	"github.com/wonny/mcrisk/pkg/logger"
)

// Service 가격 제공자 + 리스크 엔진 조립 (요청 단위 실행)
// ⭐ SSOT: 요청 기본값 해석과 타임아웃은 여기서만. risk 패키지는 순수 계산기로 유지
type Service struct {
	provider    prices.Provider
	engine      *risk.Engine
	profile     *simconfig.Config
	profileHash string
	timeout     time.Duration
	historyDays int
	logger      *logger.Logger
	now         func() time.Time
}

// Options Service 실행 옵션
type Options struct {
	Timeout     time.Duration // 요청 1건 wall-clock 상한 (0 = 무제한)
	HistoryDays int           // 가격 조회 구간 (캐시 키 고정용, lookback보다 짧으면 lookback 사용)
}

// NewService creates a simulation service
// profile nil이면 simconfig.Default()
func NewService(provider prices.Provider, engine *risk.Engine, profile *simconfig.Config, opts Options, log *logger.Logger) (*Service, error) {
	if profile == nil {
		profile = simconfig.Default()
	}
	hash, err := simconfig.Hash(profile)
	if err != nil {
		return nil, fmt.Errorf("hash profile: %w", err)
	}

	return &Service{
		provider:    provider,
		engine:      engine,
		profile:     profile,
		profileHash: hash,
		timeout:     opts.Timeout,
		historyDays: opts.HistoryDays,
		logger:      log.WithField("module", "simulation"),
		now:         time.Now,
	}, nil
}

// Profile 적용 중인 프로파일
func (s *Service) Profile() *simconfig.Config {
	return s.profile
}

// =============================================================================
// Operations
// =============================================================================

// Simulate 경로 시뮬레이션 + 분포 요약
func (s *Service) Simulate(ctx context.Context, symbol string, req Request) (*SimulationReport, error) {
	cfg, err := s.resolve(req)
	if err != nil {
		return nil, err
	}

	run, err := s.start(ctx, "simulate", symbol, cfg.LookbackDays)
	if err != nil {
		return nil, err
	}
	defer run.cancel()

	model, paths, err := s.engine.Run(run.ctx, run.closes, cfg)
	if err != nil {
		return nil, run.fail(err)
	}
	summary := s.engine.Summarize(paths)

	report := &SimulationReport{
		Metadata:   run.metadata(paths.Seed()),
		Parameters: model,
		Statistics: Statistics{
			NumPaths:          summary.NumPaths,
			StartPrice:        summary.StartPrice,
			Mean:              summary.Mean,
			Median:            summary.Median,
			StdDev:            summary.StdDev,
			Min:               summary.Min,
			Max:               summary.Max,
			ExpectedReturnPct: summary.ExpectedReturnPct,
			ProbabilityProfit: summary.ProbabilityProfit,
		},
		Percentiles: summary.Percentiles,
		TailRisk:    summary.TailRisk,
		Config:      cfg,
	}
	report.Config.Seed = &report.SeedUsed

	run.done(report.ElapsedMS, map[string]interface{}{
		"num_paths":           cfg.NumPaths,
		"expected_return_pct": summary.ExpectedReturnPct,
	})
	return report, nil
}

// ValueAtRisk 신뢰수준별 VaR/CVaR
// levels nil이면 프로파일 기본 신뢰수준
func (s *Service) ValueAtRisk(ctx context.Context, symbol string, levels []float64, req Request) (*RiskMetricsReport, error) {
	cfg, err := s.resolve(req)
	if err != nil {
		return nil, err
	}
	if levels == nil {
		levels = s.profile.Risk.ConfidenceLevels
	}
	if err := risk.ValidateConfidenceLevels(levels); err != nil {
		return nil, err
	}
	position := s.profile.Risk.PositionValue
	if req.PositionValue != nil {
		if *req.PositionValue < 0 {
			return nil, risk.ConfigError{Field: "position_value", Message: fmt.Sprintf("must be >= 0, got %v", *req.PositionValue)}
		}
		position = *req.PositionValue
	}

	run, err := s.start(ctx, "var", symbol, cfg.LookbackDays)
	if err != nil {
		return nil, err
	}
	defer run.cancel()

	model, paths, err := s.engine.Run(run.ctx, run.closes, cfg)
	if err != nil {
		return nil, run.fail(err)
	}

	metrics, err := s.engine.RiskMetrics(paths, levels, risk.RiskOptions{PositionValue: position, Model: model})
	if err != nil {
		return nil, run.fail(err)
	}

	report := &RiskMetricsReport{
		Metadata:      run.metadata(paths.Seed()),
		Parameters:    model,
		Config:        cfg,
		NumPaths:      metrics.NumPaths,
		StartPrice:    metrics.StartPrice,
		PositionValue: metrics.PositionValue,
		RiskMetrics:   metrics.Levels,
	}
	report.Config.Seed = &report.SeedUsed

	run.done(report.ElapsedMS, map[string]interface{}{
		"num_paths": cfg.NumPaths,
		"levels":    len(levels),
	})
	return report, nil
}

// Scenarios bull/base/bear/crash 스트레스 테스트
// req.Days = 시나리오 기간, req.Lookback = 추정 구간, req.Seed
// 시나리오에 적용되지 않는 필드(method, simulations, position_value)는 InvalidConfig
func (s *Service) Scenarios(ctx context.Context, symbol string, req Request) (*ScenarioReport, error) {
	if err := rejectScenarioFields(req); err != nil {
		return nil, err
	}

	scfg := s.profile.ScenarioConfig()
	lookback := s.profile.Scenarios.LookbackDays
	if req.Days != nil {
		scfg.HorizonDays = *req.Days
	}
	if req.Lookback != nil {
		lookback = *req.Lookback
	}
	scfg.Seed = req.Seed
	if scfg.HorizonDays <= 0 {
		return nil, risk.ConfigError{Field: "horizon_days", Message: fmt.Sprintf("must be > 0, got %d", scfg.HorizonDays)}
	}
	if lookback <= 0 {
		return nil, risk.ConfigError{Field: "lookback_days", Message: fmt.Sprintf("must be > 0, got %d", lookback)}
	}

	run, err := s.start(ctx, "scenarios", symbol, lookback)
	if err != nil {
		return nil, err
	}
	defer run.cancel()

	model, set, err := s.engine.Scenarios(run.ctx, run.closes, lookback, scfg)
	if err != nil {
		return nil, run.fail(err)
	}

	report := &ScenarioReport{
		Metadata:     run.metadata(set.SeedUsed),
		Parameters:   model,
		StartPrice:   set.StartPrice,
		HorizonDays:  set.HorizonDays,
		EnsembleSize: set.EnsembleSize,
		Bull:         set.Bull,
		Base:         set.Base,
		Bear:         set.Bear,
		Crash:        set.Crash,
	}

	run.done(report.ElapsedMS, map[string]interface{}{
		"horizon_days": set.HorizonDays,
		"crash_pct":    set.Crash.TotalReturnPct,
	})
	return report, nil
}

// rejectScenarioFields 시나리오는 GBM 앙상블 고정 (경로 수 = ensemble_size, 포지션 없음)
func rejectScenarioFields(req Request) error {
	const msg = "not supported by scenarios (GBM ensemble from the simulation profile)"
	switch {
	case req.Method != "":
		return risk.ConfigError{Field: "method", Message: msg}
	case req.Simulations != nil:
		return risk.ConfigError{Field: "simulations", Message: msg}
	case req.PositionValue != nil:
		return risk.ConfigError{Field: "position_value", Message: msg}
	}
	return nil
}

// HistoricalVaR 과거 일별 로그수익률 기반 VaR/CVaR + 정규분포 VaR (1일 기준)
func (s *Service) HistoricalVaR(ctx context.Context, symbol string, levels []float64, req Request) (*HistoricalReport, error) {
	lookback := s.profile.Simulation.LookbackDays
	if req.Lookback != nil {
		lookback = *req.Lookback
	}
	if lookback <= 0 {
		return nil, risk.ConfigError{Field: "lookback_days", Message: fmt.Sprintf("must be > 0, got %d", lookback)}
	}
	if levels == nil {
		levels = s.profile.Risk.ConfidenceLevels
	}
	if err := risk.ValidateConfidenceLevels(levels); err != nil {
		return nil, err
	}

	run, err := s.start(ctx, "historical_var", symbol, lookback)
	if err != nil {
		return nil, err
	}
	defer run.cancel()

	model, err := risk.EstimateReturnModel(run.closes, lookback)
	if err != nil {
		return nil, run.fail(err)
	}

	report := &HistoricalReport{
		Metadata:     run.metadata(0),
		Observations: model.SampleSize(),
		Historical:   make(map[string]risk.VaRResult, len(levels)),
		Parametric:   make(map[string]risk.VaRResult, len(levels)),
	}
	for _, cl := range levels {
		key := risk.LevelKey(cl)
		report.Historical[key] = s.engine.VaR(model.Returns, cl)
		report.Parametric[key] = s.engine.ParametricVaR(model.DriftDaily, model.VolatilityDaily, cl)
	}

	run.done(report.ElapsedMS, map[string]interface{}{"observations": report.Observations})
	return report, nil
}

// =============================================================================
// Helpers
// =============================================================================

// resolve 요청 + 프로파일 기본값 → 검증된 SimulationConfig
func (s *Service) resolve(req Request) (risk.SimulationConfig, error) {
	cfg := s.profile.SimulationConfig()

	if req.Method != "" {
		method, err := risk.ParseMethod(req.Method)
		if err != nil {
			return cfg, err
		}
		cfg.Method = method
	}
	if req.Simulations != nil {
		cfg.NumPaths = *req.Simulations
	}
	if req.Days != nil {
		cfg.HorizonDays = *req.Days
	}
	if req.Lookback != nil {
		cfg.LookbackDays = *req.Lookback
	}
	cfg.Seed = req.Seed

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// run 요청 1건 실행 컨텍스트
type run struct {
	ctx     context.Context
	cancel  context.CancelFunc
	svc     *Service
	op      string
	runID   string
	series  *prices.Series
	closes  []float64
	started time.Time
	logger  *logger.Logger
}

// start 심볼 검증 → 타임아웃 컨텍스트 → 가격 조회
func (s *Service) start(ctx context.Context, op, symbol string, lookback int) (*run, error) {
	if err := prices.ValidateSymbol(symbol); err != nil {
		return nil, err
	}

	r := &run{
		svc:     s,
		op:      op,
		runID:   uuid.New().String(),
		started: s.now(),
	}
	r.logger = s.logger.WithFields(map[string]interface{}{
		"op":     op,
		"symbol": symbol,
		"run_id": r.runID,
	})

	if s.timeout > 0 {
		r.ctx, r.cancel = context.WithTimeout(ctx, s.timeout)
	} else {
		r.ctx, r.cancel = context.WithCancel(ctx)
	}

	days := lookback
	if s.historyDays > days {
		days = s.historyDays
	}

	r.logger.WithFields(map[string]interface{}{
		"lookback":     lookback,
		"history_days": days,
		"source":       s.provider.Source(),
	}).Debug("Simulation started")

	series, err := s.provider.History(r.ctx, symbol, days)
	if err != nil {
		r.cancel()
		return nil, r.fail(fmt.Errorf("load prices: %w", err))
	}
	r.series = series
	r.closes = series.Closes()
	return r, nil
}

// metadata 공통 메타데이터 (elapsed 확정)
func (r *run) metadata(seed int64) Metadata {
	now := r.svc.now()
	return Metadata{
		RunID:       r.runID,
		Symbol:      r.series.Symbol,
		Source:      r.series.Source,
		DataAsOf:    r.series.LastDate(),
		SeedUsed:    seed,
		ProfileID:   r.svc.profile.Meta.ProfileID,
		ProfileHash: r.svc.profileHash,
		GeneratedAt: now,
		ElapsedMS:   now.Sub(r.started).Milliseconds(),
	}
}

// fail 실패 로그 (에러는 그대로 반환)
func (r *run) fail(err error) error {
	r.logger.WithError(err).WithFields(map[string]interface{}{
		"retryable":  risk.IsRetryable(err),
		"elapsed_ms": r.svc.now().Sub(r.started).Milliseconds(),
	}).Warn("Simulation failed")
	return err
}

// done 완료 로그
func (r *run) done(elapsedMS int64, fields map[string]interface{}) {
	fields["elapsed_ms"] = elapsedMS
	r.logger.WithFields(fields).Info("Simulation completed")
}
