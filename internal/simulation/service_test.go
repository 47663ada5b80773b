package simulation

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/mcrisk/internal/prices"
	"github.com/wonny/mcrisk/internal/risk"
	"github.com/wonny/mcrisk/internal/simconfig"
	"github.com/wonny/mcrisk/pkg/logger"
)

type fakeProvider struct {
	mu    sync.Mutex
	bars  []prices.Bar
	err   error
	delay time.Duration
	days  []int
}

func (f *fakeProvider) Source() string { return "database" }

func (f *fakeProvider) History(_ context.Context, symbol string, days int) (*prices.Series, error) {
	f.mu.Lock()
	f.days = append(f.days, days)
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	bars := f.bars
	if len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	return &prices.Series{Symbol: symbol, Source: "database", Bars: bars}, nil
}

// syntheticBars 완만한 상승 추세 + 결정적 진동
func syntheticBars(n int) []prices.Bar {
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]prices.Bar, n)
	for i := range bars {
		bars[i] = prices.Bar{
			Date:  start.AddDate(0, 0, i),
			Close: 100 * math.Exp(0.0004*float64(i)+0.02*math.Sin(float64(i)*0.7)),
		}
	}
	return bars
}

func newTestService(t *testing.T, p prices.Provider, opts Options) *Service {
	t.Helper()
	svc, err := NewService(p, risk.NewEngine(2, 64), nil, opts, logger.Nop())
	require.NoError(t, err)
	return svc
}

func intPtr(v int) *int           { return &v }
func seedPtr(v int64) *int64      { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestSimulate(t *testing.T) {
	p := &fakeProvider{bars: syntheticBars(400)}
	svc := newTestService(t, p, Options{HistoryDays: 300})

	req := Request{Simulations: intPtr(500), Days: intPtr(20), Seed: seedPtr(7)}
	report, err := svc.Simulate(context.Background(), "005930", req)
	require.NoError(t, err)

	_, err = uuid.Parse(report.RunID)
	assert.NoError(t, err)
	assert.Equal(t, "005930", report.Symbol)
	assert.Equal(t, "database", report.Source)
	assert.Equal(t, int64(7), report.SeedUsed)
	assert.Equal(t, int64(7), *report.Config.Seed)
	assert.Equal(t, risk.MethodGBM, report.Config.Method)
	assert.Equal(t, 252, report.Config.LookbackDays, "lookback은 프로파일 기본값")
	assert.Equal(t, 500, report.Statistics.NumPaths)
	assert.Len(t, report.Percentiles, len(risk.SummaryPercentiles))
	assert.Equal(t, 252, report.Parameters.ObservationsUsed)
	assert.Equal(t, syntheticBars(400)[399].Date, report.DataAsOf)

	wantHash, err := simconfig.Hash(simconfig.Default())
	require.NoError(t, err)
	assert.Equal(t, wantHash, report.ProfileHash)
	assert.Equal(t, "default", report.ProfileID)

	// 가격 조회는 HistoryDays 고정 구간 (캐시 키 재사용)
	assert.Equal(t, []int{300}, p.days)

	again, err := svc.Simulate(context.Background(), "005930", req)
	require.NoError(t, err)
	assert.Equal(t, report.Statistics, again.Statistics)
	assert.NotEqual(t, report.RunID, again.RunID)
}

func TestSimulate_UnseededRecordsSeed(t *testing.T) {
	svc := newTestService(t, &fakeProvider{bars: syntheticBars(300)}, Options{})

	req := Request{Method: "bootstrap", Simulations: intPtr(200), Days: intPtr(10), Lookback: intPtr(120)}
	first, err := svc.Simulate(context.Background(), "AAPL", req)
	require.NoError(t, err)
	assert.Equal(t, risk.MethodBootstrap, first.Config.Method)

	// 기록된 seed로 재실행하면 동일 결과
	req.Seed = seedPtr(first.SeedUsed)
	replay, err := svc.Simulate(context.Background(), "AAPL", req)
	require.NoError(t, err)
	assert.Equal(t, first.Statistics, replay.Statistics)
}

func TestSimulate_InvalidRequest(t *testing.T) {
	tests := []struct {
		name   string
		symbol string
		req    Request
		field  string
	}{
		{"bad symbol", "not a symbol", Request{}, "symbol"},
		{"zero simulations", "AAPL", Request{Simulations: intPtr(0)}, "num_paths"},
		{"negative days", "AAPL", Request{Days: intPtr(-1)}, "horizon_days"},
		{"zero lookback", "AAPL", Request{Lookback: intPtr(0)}, "lookback_days"},
		{"unknown method", "AAPL", Request{Method: "heston"}, "method"},
		{"cell cap", "AAPL", Request{Simulations: intPtr(risk.MaxMatrixCells), Days: intPtr(2)}, "num_paths"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProvider{bars: syntheticBars(300)}
			svc := newTestService(t, p, Options{})

			_, err := svc.Simulate(context.Background(), tt.symbol, tt.req)
			require.Error(t, err)

			var cfgErr risk.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
			assert.False(t, risk.IsRetryable(err))
			assert.Empty(t, p.days, "검증 실패 시 가격 조회 없음")
		})
	}
}

func TestSimulate_ProviderErrors(t *testing.T) {
	upstream := &fakeProvider{err: errors.Join(risk.ErrDataUnavailable, errors.New("naver 503"))}
	_, err := newTestService(t, upstream, Options{}).Simulate(context.Background(), "005930", Request{})
	assert.ErrorIs(t, err, risk.ErrDataUnavailable)
	assert.ErrorContains(t, err, "naver 503")
	assert.True(t, risk.IsRetryable(err))

	short := &fakeProvider{bars: syntheticBars(1)}
	_, err = newTestService(t, short, Options{}).Simulate(context.Background(), "005930", Request{})
	assert.ErrorIs(t, err, risk.ErrInsufficientData)
	assert.False(t, risk.IsRetryable(err))
}

func TestSimulate_Timeout(t *testing.T) {
	slow := &fakeProvider{bars: syntheticBars(300), delay: 20 * time.Millisecond}
	svc := newTestService(t, slow, Options{Timeout: time.Millisecond})

	_, err := svc.Simulate(context.Background(), "005930", Request{Simulations: intPtr(1000), Days: intPtr(50)})
	require.Error(t, err)

	var timeoutErr *risk.TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, 1000, timeoutErr.NumPaths)
	assert.True(t, risk.IsRetryable(err))
}

func TestValueAtRisk(t *testing.T) {
	svc := newTestService(t, &fakeProvider{bars: syntheticBars(300)}, Options{})

	req := Request{Simulations: intPtr(2000), Days: intPtr(10), Seed: seedPtr(42), PositionValue: floatPtr(10000)}
	report, err := svc.ValueAtRisk(context.Background(), "AAPL", nil, req)
	require.NoError(t, err)

	require.Contains(t, report.RiskMetrics, "0.95")
	require.Contains(t, report.RiskMetrics, "0.99")
	assert.Equal(t, 10000.0, report.PositionValue)
	assert.Equal(t, 2000, report.NumPaths)

	l95, l99 := report.RiskMetrics["0.95"], report.RiskMetrics["0.99"]
	assert.LessOrEqual(t, l99.VaRReturnPct, l95.VaRReturnPct)
	assert.LessOrEqual(t, l95.CVaRReturnPct, l95.VaRReturnPct)
	assert.NotNil(t, l95.ParametricVaRPct)
	assert.InDelta(t, l95.VaRReturnPct*100, l95.VaRDollar, 1e-6)

	custom, err := svc.ValueAtRisk(context.Background(), "AAPL", []float64{0.9}, req)
	require.NoError(t, err)
	assert.Len(t, custom.RiskMetrics, 1)
	assert.Contains(t, custom.RiskMetrics, "0.9")
}

func TestValueAtRisk_Invalid(t *testing.T) {
	svc := newTestService(t, &fakeProvider{bars: syntheticBars(300)}, Options{})

	_, err := svc.ValueAtRisk(context.Background(), "AAPL", []float64{1.5}, Request{})
	assert.ErrorIs(t, err, risk.ErrInvalidConfig)

	_, err = svc.ValueAtRisk(context.Background(), "AAPL", []float64{}, Request{})
	assert.ErrorIs(t, err, risk.ErrInvalidConfig)

	_, err = svc.ValueAtRisk(context.Background(), "AAPL", nil, Request{PositionValue: floatPtr(-5)})
	var cfgErr risk.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "position_value", cfgErr.Field)
}

func TestScenarios(t *testing.T) {
	svc := newTestService(t, &fakeProvider{bars: syntheticBars(300)}, Options{})

	report, err := svc.Scenarios(context.Background(), "005930", Request{Days: intPtr(15), Seed: seedPtr(3)})
	require.NoError(t, err)

	assert.Equal(t, 15, report.HorizonDays)
	assert.Equal(t, risk.DefaultEnsembleSize, report.EnsembleSize)
	assert.Equal(t, int64(3), report.SeedUsed)
	assert.LessOrEqual(t, report.Crash.FinalPrice, report.Bear.FinalPrice)
	assert.LessOrEqual(t, report.Bear.FinalPrice, report.Base.FinalPrice)
	assert.LessOrEqual(t, report.Base.FinalPrice, report.Bull.FinalPrice)

	_, err = svc.Scenarios(context.Background(), "005930", Request{Days: intPtr(0)})
	assert.ErrorIs(t, err, risk.ErrInvalidConfig)
}

func TestScenarios_RejectsSimulationOnlyFields(t *testing.T) {
	tests := []struct {
		name  string
		req   Request
		field string
	}{
		{"unknown method", Request{Method: "heston"}, "method"},
		{"valid method", Request{Method: "gbm"}, "method"},
		{"simulations", Request{Simulations: intPtr(5000)}, "simulations"},
		{"position", Request{PositionValue: floatPtr(1e6)}, "position_value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProvider{bars: syntheticBars(300)}
			svc := newTestService(t, p, Options{})

			_, err := svc.Scenarios(context.Background(), "005930", tt.req)
			var cfgErr risk.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
			assert.Empty(t, p.days, "검증 실패 시 가격 조회 없음")
		})
	}
}

func TestHistoricalVaR(t *testing.T) {
	svc := newTestService(t, &fakeProvider{bars: syntheticBars(300)}, Options{})

	report, err := svc.HistoricalVaR(context.Background(), "005930", []float64{0.95}, Request{Lookback: intPtr(101)})
	require.NoError(t, err)

	assert.Equal(t, 100, report.Observations)
	h := report.Historical["0.95"]
	assert.Equal(t, 0.95, h.Confidence)
	assert.GreaterOrEqual(t, h.CVaR, h.VaR)
	assert.Contains(t, report.Parametric, "0.95")
}
