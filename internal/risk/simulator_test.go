package risk

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPtr(v int64) *int64 { return &v }

func gbmConfig(paths, days int, seed *int64) SimulationConfig {
	return SimulationConfig{
		Method:       MethodGBM,
		NumPaths:     paths,
		HorizonDays:  days,
		LookbackDays: 252,
		Seed:         seed,
	}
}

func TestSimulatePaths_Shape(t *testing.T) {
	tests := []struct {
		paths, days int
	}{
		{1, 1},
		{1, 252},
		{37, 5},
		{1000, 20},
	}

	for _, tt := range tests {
		m, err := SimulatePaths(context.Background(), 100, GBMDraw{Drift: 0.0004, Volatility: 0.02}, gbmConfig(tt.paths, tt.days, seedPtr(1)))
		require.NoError(t, err)
		assert.Equal(t, tt.paths, m.NumPaths())
		assert.Equal(t, tt.days, m.HorizonDays())
		assert.Len(t, m.Terminal(), tt.paths)
		for i := 0; i < m.NumPaths(); i++ {
			assert.Len(t, m.Path(i), tt.days)
		}
	}
}

func TestSimulatePaths_Reproducible(t *testing.T) {
	draw := GBMDraw{Drift: 0.0004, Volatility: 0.02}
	a, err := SimulatePaths(context.Background(), 100, draw, gbmConfig(500, 30, seedPtr(42)))
	require.NoError(t, err)
	b, err := SimulatePaths(context.Background(), 100, draw, gbmConfig(500, 30, seedPtr(42)))
	require.NoError(t, err)

	assert.Equal(t, a.data, b.data)
	assert.Equal(t, int64(42), a.Seed())

	c, err := SimulatePaths(context.Background(), 100, draw, gbmConfig(500, 30, seedPtr(43)))
	require.NoError(t, err)
	assert.NotEqual(t, a.data, c.data)
}

func TestSimulatePaths_PartitionIndependent(t *testing.T) {
	draw := BootstrapDraw{Returns: []float64{-0.03, -0.01, 0, 0.005, 0.02, 0.04}}

	serial := gbmConfig(777, 15, seedPtr(7))
	serial.Method = MethodBootstrap
	serial.Workers = 1
	serial.BatchSize = 1

	parallel := serial
	parallel.Workers = 8
	parallel.BatchSize = 100

	a, err := SimulatePaths(context.Background(), 50, draw, serial)
	require.NoError(t, err)
	b, err := SimulatePaths(context.Background(), 50, draw, parallel)
	require.NoError(t, err)

	assert.Equal(t, a.data, b.data)
}

func TestSimulatePaths_UnseededRecordsSeed(t *testing.T) {
	draw := GBMDraw{Drift: 0.0004, Volatility: 0.02}
	a, err := SimulatePaths(context.Background(), 100, draw, gbmConfig(200, 10, nil))
	require.NoError(t, err)

	// seed_used로 같은 결과 재현
	replay, err := SimulatePaths(context.Background(), 100, draw, gbmConfig(200, 10, seedPtr(a.Seed())))
	require.NoError(t, err)
	assert.Equal(t, a.data, replay.data)
}

func TestSimulatePaths_BootstrapUsesHistoricalReturns(t *testing.T) {
	sample := []float64{-0.05, 0.01, 0.03}
	m, err := SimulatePaths(context.Background(), 100, BootstrapDraw{Returns: sample}, SimulationConfig{
		Method: MethodBootstrap, NumPaths: 50, HorizonDays: 20, LookbackDays: 30, Seed: seedPtr(3),
	})
	require.NoError(t, err)
	assert.Equal(t, MethodBootstrap, m.Method())

	for i := 0; i < m.NumPaths(); i++ {
		prev := m.StartPrice()
		for _, p := range m.Path(i) {
			step := math.Log(p / prev)
			matched := false
			for _, r := range sample {
				if math.Abs(step-r) < 1e-9 {
					matched = true
					break
				}
			}
			require.True(t, matched, "step %v not drawn from historical sample", step)
			prev = p
		}
	}
}

func TestSimulatePaths_GBMStepFormula(t *testing.T) {
	// σ=0 이면 경로는 결정적: S_t = S_0 · exp(μ·t)
	m, err := SimulatePaths(context.Background(), 100, GBMDraw{Drift: 0.001, Volatility: 0}, gbmConfig(3, 10, seedPtr(1)))
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		for d := 0; d < 10; d++ {
			assert.InDelta(t, 100*math.Exp(0.001*float64(d+1)), m.Path(i)[d], 1e-9)
		}
	}
}

func TestSimulatePaths_InvalidConfig(t *testing.T) {
	draw := GBMDraw{Drift: 0, Volatility: 0.01}
	tests := []struct {
		name      string
		start     float64
		cfg       SimulationConfig
		wantField string
	}{
		{"zero paths", 100, gbmConfig(0, 10, nil), "num_paths"},
		{"negative paths", 100, gbmConfig(-5, 10, nil), "num_paths"},
		{"zero horizon", 100, gbmConfig(10, 0, nil), "horizon_days"},
		{"too many cells", 100, gbmConfig(MaxMatrixCells, 2, nil), "num_paths"},
		{"non-positive start", 0, gbmConfig(10, 10, nil), "start_price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := SimulatePaths(context.Background(), tt.start, draw, tt.cfg)
			assert.Nil(t, m)
			var cfgErr ConfigError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, tt.wantField, cfgErr.Field)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}
}

func TestSimulatePaths_Timeout(t *testing.T) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	m, err := SimulatePaths(ctx, 100, GBMDraw{Drift: 0, Volatility: 0.01}, gbmConfig(1000, 50, seedPtr(1)))
	assert.Nil(t, m, "no partial matrix on timeout")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.True(t, IsRetryable(err))

	var timeoutErr *TimeoutError
	require.True(t, errors.As(err, &timeoutErr))
	assert.Equal(t, 1000, timeoutErr.NumPaths)
	assert.Equal(t, 50, timeoutErr.HorizonDays)
}

func TestSimulatePaths_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := SimulatePaths(ctx, 100, GBMDraw{Drift: 0, Volatility: 0.01}, gbmConfig(100, 10, seedPtr(1)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, errors.Is(err, ErrTimeout))
}

func TestNewDrawer(t *testing.T) {
	model := &ReturnModel{DriftDaily: 0.001, VolatilityDaily: 0.02, Returns: []float64{0.01}}

	d, err := NewDrawer(MethodGBM, model)
	require.NoError(t, err)
	assert.Equal(t, GBMDraw{Drift: 0.001, Volatility: 0.02}, d)

	d, err = NewDrawer(MethodBootstrap, model)
	require.NoError(t, err)
	assert.Equal(t, MethodBootstrap, d.Method())

	_, err = NewDrawer(MethodBootstrap, &ReturnModel{})
	assert.True(t, errors.Is(err, ErrInsufficientData))

	_, err = NewDrawer(Method("heston"), model)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestNewDrawer_BootstrapSampleIsLookbackWindow(t *testing.T) {
	prices := syntheticPrices(300)
	model, err := EstimateReturnModel(prices, 61)
	require.NoError(t, err)

	d, err := NewDrawer(MethodBootstrap, model)
	require.NoError(t, err)

	b, ok := d.(BootstrapDraw)
	require.True(t, ok)
	require.Len(t, b.Returns, 60)
	assert.InDelta(t, math.Log(prices[299]/prices[298]), b.Returns[59], 1e-15)
	assert.InDelta(t, math.Log(prices[240]/prices[239]), b.Returns[0], 1e-15)
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod(" GBM ")
	require.NoError(t, err)
	assert.Equal(t, MethodGBM, m)

	m, err = ParseMethod("bootstrap")
	require.NoError(t, err)
	assert.Equal(t, MethodBootstrap, m)

	_, err = ParseMethod("historical")
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}
