package risk

import (
	"fmt"
	"strings"
)

// =============================================================================
// Trading Calendar
// =============================================================================

// TradingDaysPerYear 연율화 계수
const TradingDaysPerYear = 252

// percentScale 비율 → 퍼센트 (0.05 → 5.0)
// ⭐ 모든 *_pct 필드는 퍼센트 포인트로 표현
const percentScale = 100.0

// =============================================================================
// Simulation Method
// =============================================================================

// Method 시뮬레이션 방법
type Method string

const (
	MethodGBM       Method = "gbm"       // 기하 브라운 운동 (모수적)
	MethodBootstrap Method = "bootstrap" // 과거 로그수익률 복원추출 (비모수적)
)

// ParseMethod 요청 문자열 → Method
// 알 수 없는 값은 기본값으로 대체하지 않고 에러
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case MethodGBM:
		return MethodGBM, nil
	case MethodBootstrap:
		return MethodBootstrap, nil
	default:
		return "", invalidConfig("method", "must be one of gbm|bootstrap, got %q", s)
	}
}

// =============================================================================
// Simulation Config
// =============================================================================

// SimulationConfig 단일 시뮬레이션 실행 설정
// ⭐ num_paths * horizon_days 가 연산 비용을 결정. 어떤 값도 조용히 잘라내지 않음
type SimulationConfig struct {
	Method       Method `json:"method"`
	NumPaths     int    `json:"num_paths"`
	HorizonDays  int    `json:"horizon_days"`
	LookbackDays int    `json:"lookback_days"`
	Seed         *int64 `json:"seed,omitempty"` // nil = 비결정적 (seed_used로 재현 가능)

	// 실행 튜닝 (결과에 영향 없음)
	Workers   int `json:"-"` // 0 = runtime.NumCPU()
	BatchSize int `json:"-"` // 0 = DefaultBatchSize
}

// DefaultSimulationConfig 기본 시뮬레이션 설정
func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		Method:       MethodGBM,
		NumPaths:     10000,
		HorizonDays:  TradingDaysPerYear,
		LookbackDays: TradingDaysPerYear,
	}
}

// Validate 설정 유효성 검사
func (c SimulationConfig) Validate() error {
	if c.Method != MethodGBM && c.Method != MethodBootstrap {
		return invalidConfig("method", "must be one of gbm|bootstrap, got %q", c.Method)
	}
	if c.NumPaths <= 0 {
		return invalidConfig("num_paths", "must be > 0, got %d", c.NumPaths)
	}
	if c.HorizonDays <= 0 {
		return invalidConfig("horizon_days", "must be > 0, got %d", c.HorizonDays)
	}
	if c.LookbackDays <= 0 {
		return invalidConfig("lookback_days", "must be > 0, got %d", c.LookbackDays)
	}
	if c.Workers < 0 {
		return invalidConfig("workers", "must be >= 0, got %d", c.Workers)
	}
	if c.BatchSize < 0 {
		return invalidConfig("batch_size", "must be >= 0, got %d", c.BatchSize)
	}
	return nil
}

// =============================================================================
// Return Model
// =============================================================================

// ReturnModel 가격 시계열에서 추정한 수익률 모델 입력
// 실행 1회 범위에서만 유효 (불변)
type ReturnModel struct {
	DriftDaily           float64 `json:"drift_daily"`
	VolatilityDaily      float64 `json:"volatility_daily"`
	DriftAnnualized      float64 `json:"drift_annualized"`
	VolatilityAnnualized float64 `json:"volatility_annualized"`

	StartPrice        float64 `json:"start_price"`        // 최신 관측 가격 (모든 경로의 시작점)
	ObservationsUsed  int     `json:"observations_used"`  // 윈도우 적용 후 가격 개수
	LookbackRequested int     `json:"lookback_requested"` // 요청된 lookback
	LookbackClamped   bool    `json:"lookback_clamped"`   // lookback > 가용 데이터

	// Returns 윈도우 내 로그수익률 (bootstrap 표본)
	Returns []float64 `json:"-"`
}

// SampleSize 로그수익률 표본 수
func (m *ReturnModel) SampleSize() int {
	return len(m.Returns)
}

// =============================================================================
// Distribution Summary
// =============================================================================

// SummaryPercentiles 요약에 포함되는 백분위 사다리
var SummaryPercentiles = []int{1, 5, 10, 25, 50, 75, 90, 95, 99}

// PercentilePoint 백분위 한 지점
type PercentilePoint struct {
	Percentile int     `json:"percentile"`
	Price      float64 `json:"price"`
	ReturnPct  float64 `json:"return_pct"` // 시작가 대비 수익률 (%)
}

// Label "p5" 형태
func (p PercentilePoint) Label() string {
	return fmt.Sprintf("p%d", p.Percentile)
}

// TailRisk 꼬리 극단값 (만기 가격 기준)
type TailRisk struct {
	Worst1Pct float64 `json:"worst_case_1pct"` // p1
	Worst5Pct float64 `json:"worst_case_5pct"` // p5
	Best5Pct  float64 `json:"best_case_5pct"`  // p95
	Best1Pct  float64 `json:"best_case_1pct"`  // p99
}

// DistributionSummary 만기 가격 분포 요약
type DistributionSummary struct {
	NumPaths          int               `json:"num_paths"`
	StartPrice        float64           `json:"start_price"`
	Mean              float64           `json:"mean"`
	Median            float64           `json:"median"`
	StdDev            float64           `json:"std_dev"`
	Min               float64           `json:"min"`
	Max               float64           `json:"max"`
	ExpectedReturnPct float64           `json:"expected_return_pct"`
	ProbabilityProfit float64           `json:"probability_profit"`
	Percentiles       []PercentilePoint `json:"percentiles"`
	TailRisk          TailRisk          `json:"tail_risk"`
}

// Percentile 백분위 가격 조회
func (s *DistributionSummary) Percentile(p int) (float64, bool) {
	for _, pt := range s.Percentiles {
		if pt.Percentile == p {
			return pt.Price, true
		}
	}
	return 0, false
}

// =============================================================================
// VaR/CVaR Types
// =============================================================================

// VaRResult 과거 수익률 기반 VaR 계산 결과
// ⭐ 손실을 양수로 표현 (VaR=0.05 → 5% 손실 가능)
type VaRResult struct {
	Confidence float64 `json:"confidence"`
	VaR        float64 `json:"var"`
	CVaR       float64 `json:"cvar"`
}

// RiskLevel 신뢰수준 하나의 시뮬레이션 기반 리스크 지표
// ⭐ 수익률 부호 그대로 표현 (손실 = 음수 %)
type RiskLevel struct {
	Confidence          float64  `json:"confidence"`
	VaRReturnPct        float64  `json:"var_return_pct"`
	CVaRReturnPct       float64  `json:"cvar_return_pct"`
	VaRDollar           float64  `json:"var_dollar"`
	CVaRDollar          float64  `json:"cvar_dollar"`
	ParametricVaRPct    *float64 `json:"parametric_var_pct,omitempty"` // GBM 폐형식 교차검증
	TailPaths           int      `json:"tail_paths"`
	MinRecommendedPaths int      `json:"min_recommended_paths"`
	Warning             string   `json:"warning,omitempty"`
}

// RiskReport 신뢰수준별 리스크 지표
type RiskReport struct {
	NumPaths      int                  `json:"num_paths"`
	StartPrice    float64              `json:"start_price"`
	PositionValue float64              `json:"position_value"`
	Levels        map[string]RiskLevel `json:"risk_metrics"`
}

// =============================================================================
// Scenario Types
// =============================================================================

// ScenarioName 스트레스 시나리오 이름
type ScenarioName string

const (
	ScenarioBull  ScenarioName = "bull"
	ScenarioBase  ScenarioName = "base"
	ScenarioBear  ScenarioName = "bear"
	ScenarioCrash ScenarioName = "crash"
)

// ScenarioOrder 출력/실행 순서
var ScenarioOrder = []ScenarioName{ScenarioBull, ScenarioBase, ScenarioBear, ScenarioCrash}

// ScenarioShock 추정 표준오차 단위의 drift/volatility 조정
type ScenarioShock struct {
	DriftSigmas      float64 `json:"drift_sigmas" yaml:"drift_sigmas"`
	VolatilitySigmas float64 `json:"volatility_sigmas" yaml:"volatility_sigmas"`
}

// DefaultScenarioShocks 기본 시나리오 충격표
func DefaultScenarioShocks() map[ScenarioName]ScenarioShock {
	return map[ScenarioName]ScenarioShock{
		ScenarioBull:  {DriftSigmas: 2, VolatilitySigmas: -0.5},
		ScenarioBase:  {DriftSigmas: 0, VolatilitySigmas: 0},
		ScenarioBear:  {DriftSigmas: -2, VolatilitySigmas: 0.5},
		ScenarioCrash: {DriftSigmas: -3, VolatilitySigmas: 1},
	}
}

// DefaultEnsembleSize 시나리오당 평균 경로 계산용 앙상블 크기
const DefaultEnsembleSize = 100

// ScenarioConfig 시나리오 엔진 설정
type ScenarioConfig struct {
	HorizonDays  int
	EnsembleSize int
	Seed         *int64
	Shocks       map[ScenarioName]ScenarioShock // nil = DefaultScenarioShocks()
	Workers      int
}

// ScenarioResult 시나리오 하나의 결정적 스트레스 결과
type ScenarioResult struct {
	Scenario        ScenarioName `json:"scenario"`
	FinalPrice      float64      `json:"final_price"`
	TotalReturnPct  float64      `json:"total_return_pct"`
	MaxDrawdownPct  float64      `json:"max_drawdown_pct"`
	DriftDaily      float64      `json:"drift_daily"`
	VolatilityDaily float64      `json:"volatility_daily"`
}

// ScenarioSet 4개 시나리오 결과
type ScenarioSet struct {
	StartPrice   float64        `json:"start_price"`
	HorizonDays  int            `json:"horizon_days"`
	EnsembleSize int            `json:"ensemble_size"`
	SeedUsed     int64          `json:"seed_used"`
	Bull         ScenarioResult `json:"bull"`
	Base         ScenarioResult `json:"base"`
	Bear         ScenarioResult `json:"bear"`
	Crash        ScenarioResult `json:"crash"`
}
