package simconfig

import (
	"fmt"

	"github.com/wonny/mcrisk/internal/risk"
)

// ValidationError 프로파일 검증 실패 (로드 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.ProfileID == "" {
		return ValidationError{"meta.profile_id", "required"}
	}

	// === Simulation ===
	s := cfg.Simulation
	if _, err := risk.ParseMethod(s.Method); err != nil {
		return ValidationError{"simulation.method", fmt.Sprintf("must be gbm or bootstrap, got %q", s.Method)}
	}
	if s.NumPaths <= 0 {
		return ValidationError{"simulation.num_paths", "must be > 0"}
	}
	if s.HorizonDays <= 0 {
		return ValidationError{"simulation.horizon_days", "must be > 0"}
	}
	if s.LookbackDays < 2 {
		return ValidationError{"simulation.lookback_days", "must be >= 2"}
	}
	if int64(s.NumPaths)*int64(s.HorizonDays) > risk.MaxMatrixCells {
		return ValidationError{"simulation", fmt.Sprintf("num_paths * horizon_days exceeds %d", risk.MaxMatrixCells)}
	}

	// === Risk ===
	if err := risk.ValidateConfidenceLevels(cfg.Risk.ConfidenceLevels); err != nil {
		return ValidationError{"risk.confidence_levels", "must be non-empty, each in (0, 1)"}
	}
	if cfg.Risk.PositionValue < 0 {
		return ValidationError{"risk.position_value", "must be >= 0"}
	}

	// === Scenarios ===
	sc := cfg.Scenarios
	if sc.HorizonDays <= 0 {
		return ValidationError{"scenarios.horizon_days", "must be > 0"}
	}
	if sc.LookbackDays < 2 {
		return ValidationError{"scenarios.lookback_days", "must be >= 2"}
	}
	if sc.EnsembleSize <= 0 {
		return ValidationError{"scenarios.ensemble_size", "must be > 0"}
	}
	for _, name := range risk.ScenarioOrder {
		if _, ok := sc.Shocks[string(name)]; !ok {
			return ValidationError{"scenarios.shocks", fmt.Sprintf("missing scenario %q", name)}
		}
	}
	for name := range sc.Shocks {
		if !knownScenario(name) {
			return ValidationError{"scenarios.shocks", fmt.Sprintf("unknown scenario %q", name)}
		}
	}

	return nil
}

// Warnings 권장 위반 목록 (로드는 성공)
func Warnings(cfg *Config) []Warning {
	var warnings []Warning

	for _, cl := range cfg.Risk.ConfidenceLevels {
		if minPaths := risk.MinRecommendedPaths(cl); cfg.Simulation.NumPaths < minPaths {
			warnings = append(warnings, Warning{
				Code:    "LOW_PATH_COUNT",
				Message: fmt.Sprintf("num_paths=%d below recommended %d for confidence %s", cfg.Simulation.NumPaths, minPaths, risk.LevelKey(cl)),
			})
		}
	}

	shocks := cfg.Scenarios.Shocks
	if shocks["bull"].DriftSigmas < shocks["bear"].DriftSigmas || shocks["bear"].DriftSigmas < shocks["crash"].DriftSigmas {
		warnings = append(warnings, Warning{
			Code:    "SHOCK_ORDER",
			Message: "drift shocks should satisfy bull >= bear >= crash",
		})
	}

	return warnings
}

func knownScenario(name string) bool {
	for _, n := range risk.ScenarioOrder {
		if string(n) == name {
			return true
		}
	}
	return false
}
