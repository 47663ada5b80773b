package risk

import (
	"context"
)

// =============================================================================
// Engine - 순수 계산기
// =============================================================================

// Engine Monte Carlo 리스크 엔진 (순수 계산기)
// ⭐ SSOT: 가격 조회/요청 파싱은 상위 레이어(internal/simulation)에서 조립
// internal/risk는 순수 계산만 담당. 요청 간 공유 상태 없음
type Engine struct {
	workers   int
	batchSize int
}

// NewEngine 새 리스크 엔진 생성
// workers: 경로 시뮬레이션 병렬도 (0 = CPU 수), batchSize: 0 = DefaultBatchSize
func NewEngine(workers, batchSize int) *Engine {
	return &Engine{workers: workers, batchSize: batchSize}
}

// Run 단일 파이프라인: Estimate → Simulate
// prices: 시간순 가격 시계열
func (e *Engine) Run(ctx context.Context, prices []float64, cfg SimulationConfig) (*ReturnModel, *PathMatrix, error) {
	cfg = e.tune(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	model, err := EstimateReturnModel(prices, cfg.LookbackDays)
	if err != nil {
		return nil, nil, err
	}

	drawer, err := NewDrawer(cfg.Method, model)
	if err != nil {
		return nil, nil, err
	}

	paths, err := SimulatePaths(ctx, model.StartPrice, drawer, cfg)
	if err != nil {
		return nil, nil, err
	}

	return model, paths, nil
}

// Summarize 분포 요약
func (e *Engine) Summarize(paths *PathMatrix) *DistributionSummary {
	return Summarize(paths)
}

// RiskMetrics 신뢰수준별 VaR/CVaR
func (e *Engine) RiskMetrics(paths *PathMatrix, levels []float64, opts RiskOptions) (*RiskReport, error) {
	return CalculateRiskMetrics(paths, levels, opts)
}

// Scenarios Estimate → 시나리오별 Simulate
func (e *Engine) Scenarios(ctx context.Context, prices []float64, lookbackDays int, cfg ScenarioConfig) (*ReturnModel, *ScenarioSet, error) {
	model, err := EstimateReturnModel(prices, lookbackDays)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Workers == 0 {
		cfg.Workers = e.workers
	}
	set, err := RunScenarios(ctx, model, cfg)
	if err != nil {
		return nil, nil, err
	}
	return model, set, nil
}

// VaR Historical VaR 계산 (일별 수익률 시계열, 손실 양수)
func (e *Engine) VaR(returns []float64, confidence float64) VaRResult {
	return CalculateVaR(returns, confidence)
}

// ParametricVaR 정규분포 가정 VaR 계산
func (e *Engine) ParametricVaR(mean, stdDev, confidence float64) VaRResult {
	return CalculateParametricVaR(mean, stdDev, confidence)
}

// tune 엔진 기본 병렬 설정 적용 (요청에 명시된 값 우선)
func (e *Engine) tune(cfg SimulationConfig) SimulationConfig {
	if cfg.Workers == 0 {
		cfg.Workers = e.workers
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = e.batchSize
	}
	return cfg
}
