package risk

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunScenarios_Ordering(t *testing.T) {
	model, err := EstimateReturnModel(syntheticPrices(300), 252)
	require.NoError(t, err)

	for _, seed := range []int64{1, 9, 42} {
		set, err := RunScenarios(context.Background(), model, ScenarioConfig{HorizonDays: 30, Seed: seedPtr(seed)})
		require.NoError(t, err)

		assert.LessOrEqual(t, set.Crash.FinalPrice, set.Bear.FinalPrice, "seed=%d", seed)
		assert.LessOrEqual(t, set.Bear.FinalPrice, set.Base.FinalPrice, "seed=%d", seed)
		assert.LessOrEqual(t, set.Base.FinalPrice, set.Bull.FinalPrice, "seed=%d", seed)

		assert.Equal(t, DefaultEnsembleSize, set.EnsembleSize)
		assert.Equal(t, seed, set.SeedUsed)
	}
}

func TestRunScenarios_ResultFields(t *testing.T) {
	model, err := EstimateReturnModel(syntheticPrices(300), 252)
	require.NoError(t, err)

	set, err := RunScenarios(context.Background(), model, ScenarioConfig{HorizonDays: 60, EnsembleSize: 50, Seed: seedPtr(3)})
	require.NoError(t, err)

	seDrift, seVol := standardErrors(model)
	results := []ScenarioResult{set.Bull, set.Base, set.Bear, set.Crash}
	for i, r := range results {
		assert.Equal(t, ScenarioOrder[i], r.Scenario)
		assert.LessOrEqual(t, r.MaxDrawdownPct, 0.0)
		assert.InDelta(t, (r.FinalPrice/model.StartPrice-1)*100, r.TotalReturnPct, 1e-9)
	}

	assert.InDelta(t, model.DriftDaily+2*seDrift, set.Bull.DriftDaily, 1e-15)
	assert.InDelta(t, model.VolatilityDaily-0.5*seVol, set.Bull.VolatilityDaily, 1e-15)
	assert.Equal(t, model.DriftDaily, set.Base.DriftDaily)
	assert.InDelta(t, model.DriftDaily-3*seDrift, set.Crash.DriftDaily, 1e-15)
	assert.InDelta(t, model.VolatilityDaily+seVol, set.Crash.VolatilityDaily, 1e-15)

	again, err := RunScenarios(context.Background(), model, ScenarioConfig{HorizonDays: 60, EnsembleSize: 50, Seed: seedPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, set, again)
}

func TestRunScenarios_CustomShocks(t *testing.T) {
	model, err := EstimateReturnModel(syntheticPrices(100), 100)
	require.NoError(t, err)

	flat := map[ScenarioName]ScenarioShock{
		ScenarioBull: {}, ScenarioBase: {}, ScenarioBear: {}, ScenarioCrash: {},
	}
	set, err := RunScenarios(context.Background(), model, ScenarioConfig{HorizonDays: 10, Seed: seedPtr(1), Shocks: flat})
	require.NoError(t, err)

	// 충격이 없으면 common random numbers로 네 시나리오가 동일
	assert.Equal(t, set.Base.FinalPrice, set.Bull.FinalPrice)
	assert.Equal(t, set.Base.FinalPrice, set.Crash.FinalPrice)

	delete(flat, ScenarioCrash)
	_, err = RunScenarios(context.Background(), model, ScenarioConfig{HorizonDays: 10, Shocks: flat})
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestRunScenarios_InvalidConfig(t *testing.T) {
	model, err := EstimateReturnModel(syntheticPrices(50), 50)
	require.NoError(t, err)

	_, err = RunScenarios(context.Background(), model, ScenarioConfig{HorizonDays: 0})
	var cfgErr ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "horizon_days", cfgErr.Field)

	_, err = RunScenarios(context.Background(), model, ScenarioConfig{HorizonDays: 10, EnsembleSize: -1})
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "ensemble_size", cfgErr.Field)

	_, err = RunScenarios(context.Background(), nil, ScenarioConfig{HorizonDays: 10})
	assert.True(t, errors.Is(err, ErrInsufficientData))
}

func TestEngine_Run(t *testing.T) {
	engine := NewEngine(2, 64)
	cfg := DefaultSimulationConfig()
	cfg.NumPaths = 300
	cfg.HorizonDays = 20
	cfg.Seed = seedPtr(5)

	model, paths, err := engine.Run(context.Background(), syntheticPrices(400), cfg)
	require.NoError(t, err)
	assert.Equal(t, 252, model.ObservationsUsed)
	assert.Equal(t, 300, paths.NumPaths())
	assert.Equal(t, model.StartPrice, paths.StartPrice())

	cfg.NumPaths = 0
	_, _, err = engine.Run(context.Background(), syntheticPrices(400), cfg)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	cfg.NumPaths = 10
	_, _, err = engine.Run(context.Background(), []float64{100}, cfg)
	assert.True(t, errors.Is(err, ErrInsufficientData))
}
