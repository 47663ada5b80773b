package risk

import (
	"context"
	"fmt"
)

// =============================================================================
// Scenario Engine (결정적 스트레스 테스트)
// =============================================================================

// RunScenarios bull/base/bear/crash 시나리오 실행
// baseline: Return Estimator 추정치 (drift/vol 조정의 기준)
// 시나리오별로 drift/vol을 추정 표준오차 단위로 이동한 GBM 앙상블을 돌리고 평균 경로로 요약
// ⭐ 모든 시나리오가 같은 시드를 공유 (common random numbers) → 차이는 파라미터에서만 발생
// 확률적 시뮬레이션이 아니므로 신뢰수준은 적용하지 않음
func RunScenarios(ctx context.Context, baseline *ReturnModel, cfg ScenarioConfig) (*ScenarioSet, error) {
	if baseline == nil {
		return nil, fmt.Errorf("%w: baseline return model is nil", ErrInsufficientData)
	}

	ensemble := cfg.EnsembleSize
	if ensemble == 0 {
		ensemble = DefaultEnsembleSize
	}
	if err := validatePathShape(ensemble, cfg.HorizonDays); err != nil {
		if cfgErr, ok := err.(ConfigError); ok && cfgErr.Field == "num_paths" {
			cfgErr.Field = "ensemble_size"
			return nil, cfgErr
		}
		return nil, err
	}

	shocks := cfg.Shocks
	if shocks == nil {
		shocks = DefaultScenarioShocks()
	}
	for _, name := range ScenarioOrder {
		if _, ok := shocks[name]; !ok {
			return nil, invalidConfig("scenarios", "missing shock for scenario %q", name)
		}
	}

	seed := resolveSeed(cfg.Seed)
	seDrift, seVol := standardErrors(baseline)

	set := &ScenarioSet{
		StartPrice:   baseline.StartPrice,
		HorizonDays:  cfg.HorizonDays,
		EnsembleSize: ensemble,
		SeedUsed:     seed,
	}

	for _, name := range ScenarioOrder {
		shock := shocks[name]
		drift := baseline.DriftDaily + shock.DriftSigmas*seDrift
		vol := baseline.VolatilityDaily + shock.VolatilitySigmas*seVol
		if vol < 0 {
			vol = 0
		}

		m, err := SimulatePaths(ctx, baseline.StartPrice, GBMDraw{Drift: drift, Volatility: vol}, SimulationConfig{
			Method:      MethodGBM,
			NumPaths:    ensemble,
			HorizonDays: cfg.HorizonDays,
			Seed:        &seed,
			Workers:     cfg.Workers,
		})
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", name, err)
		}

		result := summarizeScenario(name, baseline.StartPrice, m.MeanPath())
		result.DriftDaily = drift
		result.VolatilityDaily = vol

		switch name {
		case ScenarioBull:
			set.Bull = result
		case ScenarioBase:
			set.Base = result
		case ScenarioBear:
			set.Bear = result
		case ScenarioCrash:
			set.Crash = result
		}
	}

	return set, nil
}

// summarizeScenario 대표 경로(앙상블 평균) → 최종가/총수익률/MDD
func summarizeScenario(name ScenarioName, start float64, path []float64) ScenarioResult {
	final := path[len(path)-1]
	return ScenarioResult{
		Scenario:       name,
		FinalPrice:     final,
		TotalReturnPct: (final/start - 1) * percentScale,
		MaxDrawdownPct: MaxDrawdown(start, path) * percentScale,
	}
}
