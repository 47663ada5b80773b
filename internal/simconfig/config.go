package simconfig

import (
	"github.com/wonny/mcrisk/internal/risk"
)

// Config 시뮬레이션 프로파일 (요청 기본값 + 시나리오 충격표)
// ⭐ SSOT: 요청에서 생략된 값은 여기서만 채움
type Config struct {
	Meta       Meta       `yaml:"meta" json:"meta"`
	Simulation Simulation `yaml:"simulation" json:"simulation"`
	Risk       Risk       `yaml:"risk" json:"risk"`
	Scenarios  Scenarios  `yaml:"scenarios" json:"scenarios"`
}

// Meta 메타 정보
type Meta struct {
	ProfileID string `yaml:"profile_id" json:"profile_id"`
	Version   string `yaml:"version" json:"version"`
}

// Simulation 경로 시뮬레이션 기본값
type Simulation struct {
	Method       string `yaml:"method" json:"method"` // gbm | bootstrap
	NumPaths     int    `yaml:"num_paths" json:"num_paths"`
	HorizonDays  int    `yaml:"horizon_days" json:"horizon_days"`
	LookbackDays int    `yaml:"lookback_days" json:"lookback_days"`
}

// Risk VaR/CVaR 기본값
type Risk struct {
	ConfidenceLevels []float64 `yaml:"confidence_levels" json:"confidence_levels"`
	PositionValue    float64   `yaml:"position_value" json:"position_value"` // 0 = 시작가 (1주)
}

// Scenarios 스트레스 시나리오 설정
type Scenarios struct {
	HorizonDays  int                   `yaml:"horizon_days" json:"horizon_days"`
	LookbackDays int                   `yaml:"lookback_days" json:"lookback_days"`
	EnsembleSize int                   `yaml:"ensemble_size" json:"ensemble_size"`
	Shocks       map[string]ShockEntry `yaml:"shocks" json:"shocks"` // bull/base/bear/crash
}

// ShockEntry 표준오차 단위 drift/volatility 이동
type ShockEntry struct {
	DriftSigmas      float64 `yaml:"drift_sigmas" json:"drift_sigmas"`
	VolatilitySigmas float64 `yaml:"volatility_sigmas" json:"volatility_sigmas"`
}

// Default 내장 기본 프로파일 (SIM_PROFILE 미설정 시)
func Default() *Config {
	sim := risk.DefaultSimulationConfig()

	shocks := make(map[string]ShockEntry, len(risk.ScenarioOrder))
	for name, s := range risk.DefaultScenarioShocks() {
		shocks[string(name)] = ShockEntry{DriftSigmas: s.DriftSigmas, VolatilitySigmas: s.VolatilitySigmas}
	}

	return &Config{
		Meta: Meta{ProfileID: "default", Version: "1"},
		Simulation: Simulation{
			Method:       string(sim.Method),
			NumPaths:     sim.NumPaths,
			HorizonDays:  sim.HorizonDays,
			LookbackDays: sim.LookbackDays,
		},
		Risk: Risk{
			ConfidenceLevels: append([]float64(nil), risk.DefaultConfidenceLevels...),
		},
		Scenarios: Scenarios{
			HorizonDays:  30,
			LookbackDays: sim.LookbackDays,
			EnsembleSize: risk.DefaultEnsembleSize,
			Shocks:       shocks,
		},
	}
}

// SimulationConfig 프로파일 기본값 → risk.SimulationConfig
func (c *Config) SimulationConfig() risk.SimulationConfig {
	method, err := risk.ParseMethod(c.Simulation.Method)
	if err != nil {
		method = risk.Method(c.Simulation.Method) // 검증 전 값은 그대로 넘겨 risk에서 거부
	}
	return risk.SimulationConfig{
		Method:       method,
		NumPaths:     c.Simulation.NumPaths,
		HorizonDays:  c.Simulation.HorizonDays,
		LookbackDays: c.Simulation.LookbackDays,
	}
}

// ScenarioConfig 프로파일 기본값 → risk.ScenarioConfig
func (c *Config) ScenarioConfig() risk.ScenarioConfig {
	shocks := make(map[risk.ScenarioName]risk.ScenarioShock, len(c.Scenarios.Shocks))
	for name, s := range c.Scenarios.Shocks {
		shocks[risk.ScenarioName(name)] = risk.ScenarioShock{
			DriftSigmas:      s.DriftSigmas,
			VolatilitySigmas: s.VolatilitySigmas,
		}
	}
	return risk.ScenarioConfig{
		HorizonDays:  c.Scenarios.HorizonDays,
		EnsembleSize: c.Scenarios.EnsembleSize,
		Shocks:       shocks,
	}
}

// MaxHistoryDays 프로파일이 요구하는 최대 가격 이력 (lookback + 최신가)
func (c *Config) MaxHistoryDays() int {
	n := c.Simulation.LookbackDays
	if c.Scenarios.LookbackDays > n {
		n = c.Scenarios.LookbackDays
	}
	return n + 1
}
