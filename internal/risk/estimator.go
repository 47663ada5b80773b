package risk

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// =============================================================================
// Return Estimator
// =============================================================================

// EstimateReturnModel 가격 시계열에서 drift/volatility 추정
// prices: 시간순 가격 (과거 → 최신)
// lookbackDays: 사용할 최근 관측 수. 가용 데이터보다 길면 가용 길이로 clamp하고 LookbackClamped로 알림
// 반환: ReturnModel (윈도우 내 로그수익률 표본 포함)
func EstimateReturnModel(prices []float64, lookbackDays int) (*ReturnModel, error) {
	if lookbackDays <= 0 {
		return nil, invalidConfig("lookback_days", "must be > 0, got %d", lookbackDays)
	}

	window := prices
	clamped := false
	if lookbackDays < len(prices) {
		window = prices[len(prices)-lookbackDays:]
	} else if lookbackDays > len(prices) {
		clamped = true
	}

	// Fail-closed: 수익률 1개 이상 필요
	if len(window) < 2 {
		return nil, fmt.Errorf("%w: got %d observations after lookback %d, need at least 2",
			ErrInsufficientData, len(window), lookbackDays)
	}

	returns, err := LogReturns(window)
	if err != nil {
		return nil, err
	}

	drift := stat.Mean(returns, nil)
	vol := sampleStdDev(returns)

	return &ReturnModel{
		DriftDaily:           drift,
		VolatilityDaily:      vol,
		DriftAnnualized:      drift * TradingDaysPerYear,
		VolatilityAnnualized: vol * math.Sqrt(TradingDaysPerYear),
		StartPrice:           window[len(window)-1],
		ObservationsUsed:     len(window),
		LookbackRequested:    lookbackDays,
		LookbackClamped:      clamped,
		Returns:              returns,
	}, nil
}

// LogReturns r_t = ln(P_t / P_{t-1})
// 0 이하 가격은 로그수익률이 정의되지 않으므로 에러
func LogReturns(prices []float64) ([]float64, error) {
	for i, p := range prices {
		if p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, invalidConfig("prices", "price at index %d must be a positive finite number, got %v", i, p)
		}
	}
	if len(prices) < 2 {
		return nil, nil
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		returns[i-1] = math.Log(prices[i] / prices[i-1])
	}
	return returns, nil
}

// standardErrors drift/volatility 추정치의 표준오차
// se(drift) = σ/√n, se(σ) ≈ σ/√(2(n-1))
func standardErrors(m *ReturnModel) (seDrift, seVol float64) {
	n := m.SampleSize()
	if n < 2 {
		return 0, 0
	}
	seDrift = m.VolatilityDaily / math.Sqrt(float64(n))
	seVol = m.VolatilityDaily / math.Sqrt(2*float64(n-1))
	return seDrift, seVol
}
