package simulation

import (
	"time"

	"github.com/wonny/mcrisk/internal/risk"
)

// =============================================================================
// Request
// =============================================================================

// Request 요청 파라미터 (nil/빈 값 = 프로파일 기본값)
// ⭐ 명시적으로 지정된 잘못된 값은 기본값으로 대체하지 않고 InvalidConfig
type Request struct {
	Method        string   `json:"method,omitempty"`
	Simulations   *int     `json:"simulations,omitempty"`
	Days          *int     `json:"days,omitempty"`
	Lookback      *int     `json:"lookback,omitempty"`
	Seed          *int64   `json:"seed,omitempty"`
	PositionValue *float64 `json:"position_value,omitempty"`
}

// =============================================================================
// Reports
// =============================================================================

// Metadata 모든 리포트 공통 메타데이터
type Metadata struct {
	RunID       string    `json:"run_id"`
	Symbol      string    `json:"symbol"`
	Source      string    `json:"source"`
	DataAsOf    time.Time `json:"data_as_of"`
	SeedUsed    int64     `json:"seed_used"`
	ProfileID   string    `json:"profile_id"`
	ProfileHash string    `json:"profile_hash"`
	GeneratedAt time.Time `json:"generated_at"`
	ElapsedMS   int64     `json:"elapsed_ms"`
}

// Statistics 만기 가격 분포 통계
type Statistics struct {
	NumPaths          int     `json:"num_paths"`
	StartPrice        float64 `json:"start_price"`
	Mean              float64 `json:"mean"`
	Median            float64 `json:"median"`
	StdDev            float64 `json:"std_dev"`
	Min               float64 `json:"min"`
	Max               float64 `json:"max"`
	ExpectedReturnPct float64 `json:"expected_return_pct"`
	ProbabilityProfit float64 `json:"probability_profit"`
}

// SimulationReport simulate 응답
type SimulationReport struct {
	Metadata
	Parameters  *risk.ReturnModel      `json:"parameters"`
	Statistics  Statistics             `json:"statistics"`
	Percentiles []risk.PercentilePoint `json:"percentiles"`
	TailRisk    risk.TailRisk          `json:"tail_risk"`
	Config      risk.SimulationConfig  `json:"config"`
}

// RiskMetricsReport var 응답
type RiskMetricsReport struct {
	Metadata
	Parameters    *risk.ReturnModel         `json:"parameters"`
	Config        risk.SimulationConfig     `json:"config"`
	NumPaths      int                       `json:"num_paths"`
	StartPrice    float64                   `json:"start_price"`
	PositionValue float64                   `json:"position_value"`
	RiskMetrics   map[string]risk.RiskLevel `json:"risk_metrics"`
}

// ScenarioReport scenarios 응답
type ScenarioReport struct {
	Metadata
	Parameters   *risk.ReturnModel   `json:"parameters"`
	StartPrice   float64             `json:"start_price"`
	HorizonDays  int                 `json:"horizon_days"`
	EnsembleSize int                 `json:"ensemble_size"`
	Bull         risk.ScenarioResult `json:"bull"`
	Base         risk.ScenarioResult `json:"base"`
	Bear         risk.ScenarioResult `json:"bear"`
	Crash        risk.ScenarioResult `json:"crash"`
}

// HistoricalReport 과거 수익률 기반 VaR (시뮬레이션 없음, 손실 양수)
type HistoricalReport struct {
	Metadata
	Observations int                       `json:"observations"`
	Historical   map[string]risk.VaRResult `json:"historical"`
	Parametric   map[string]risk.VaRResult `json:"parametric"`
}
