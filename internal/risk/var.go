package risk

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// =============================================================================
// Confidence Levels
// =============================================================================

// DefaultConfidenceLevels 기본 신뢰수준
var DefaultConfidenceLevels = []float64{0.95, 0.99}

// LevelKey 신뢰수준 → 리포트 키 ("0.95")
func LevelKey(confidence float64) string {
	return strconv.FormatFloat(confidence, 'f', -1, 64)
}

// ParseConfidenceLevels "0.95,0.99" → []float64
func ParseConfidenceLevels(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	levels := make([]float64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		cl, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, invalidConfig("confidence", "cannot parse %q as a number", part)
		}
		levels = append(levels, cl)
	}
	if err := ValidateConfidenceLevels(levels); err != nil {
		return nil, err
	}
	return levels, nil
}

// ValidateConfidenceLevels 신뢰수준 목록 검증: 비어있지 않고 모두 (0,1)
func ValidateConfidenceLevels(levels []float64) error {
	if len(levels) == 0 {
		return invalidConfig("confidence", "at least one confidence level is required")
	}
	for _, cl := range levels {
		if !(cl > 0 && cl < 1) {
			return invalidConfig("confidence", "must be between 0 and 1 (exclusive), got %v", cl)
		}
	}
	return nil
}

// MinRecommendedPaths 신뢰수준별 권장 최소 경로 수
// 95%: 1,000 / 99% 이상: 10,000
func MinRecommendedPaths(confidence float64) int {
	if confidence >= 0.99 {
		return 10000
	}
	return 1000
}

// =============================================================================
// Simulation-based VaR/CVaR
// =============================================================================

// RiskOptions 리스크 계산 옵션
type RiskOptions struct {
	PositionValue float64      // 달러 환산 기준 (0 = 시작가, 1주)
	Model         *ReturnModel // GBM 폐형식 교차검증용 (nil이면 생략)
}

// CalculateRiskMetrics 만기 수익률 분포에서 신뢰수준별 VaR/CVaR 계산
// VaR: (1-c) 경험적 백분위 수익률, CVaR: VaR 이하 경로들의 평균 수익률 (tail expectation)
// ⭐ 경로 수가 1/(1-c)보다 적어도 값은 반환하되 Warning으로 알림 (경로 수 선택은 호출자 책임)
func CalculateRiskMetrics(m *PathMatrix, levels []float64, opts RiskOptions) (*RiskReport, error) {
	if err := ValidateConfidenceLevels(levels); err != nil {
		return nil, err
	}
	if opts.PositionValue < 0 {
		return nil, invalidConfig("position_value", "must be >= 0, got %v", opts.PositionValue)
	}

	position := opts.PositionValue
	if position == 0 {
		position = m.StartPrice()
	}

	sorted := sortedCopy(m.TerminalReturns())
	report := &RiskReport{
		NumPaths:      m.NumPaths(),
		StartPrice:    m.StartPrice(),
		PositionValue: position,
		Levels:        make(map[string]RiskLevel, len(levels)),
	}

	for _, cl := range levels {
		threshold := Percentile(sorted, (1-cl)*100)

		// tail: 임계값 이하 경로 (정렬되어 있으므로 앞에서부터)
		tail := sort.Search(len(sorted), func(i int) bool { return sorted[i] > threshold })
		cvar := threshold
		if tail > 0 {
			// 부동소수점 반올림으로 평균이 임계값을 넘지 않도록 상한
			cvar = math.Min(stat.Mean(sorted[:tail], nil), threshold)
		}

		level := RiskLevel{
			Confidence:          cl,
			VaRReturnPct:        threshold * percentScale,
			CVaRReturnPct:       cvar * percentScale,
			VaRDollar:           threshold * position,
			CVaRDollar:          cvar * position,
			TailPaths:           tail,
			MinRecommendedPaths: MinRecommendedPaths(cl),
			Warning:             sampleWarning(m.NumPaths(), cl),
		}

		if opts.Model != nil && m.Method() == MethodGBM {
			pv := ParametricGBMVaR(opts.Model.DriftDaily, opts.Model.VolatilityDaily, m.HorizonDays(), cl) * percentScale
			level.ParametricVaRPct = &pv
		}

		report.Levels[LevelKey(cl)] = level
	}

	return report, nil
}

// sampleWarning 경로 수 부족 경고
func sampleWarning(numPaths int, confidence float64) string {
	minTail := int(math.Ceil(1/(1-confidence) - 1e-9))
	if numPaths < minTail {
		return fmt.Sprintf("only %d paths for %.4g confidence (fewer than %d): tail estimate is high-variance",
			numPaths, confidence, minTail)
	}
	if rec := MinRecommendedPaths(confidence); numPaths < rec {
		return fmt.Sprintf("%d paths is below the recommended minimum of %d for %.4g confidence",
			numPaths, rec, confidence)
	}
	return ""
}

// ParametricGBMVaR GBM 로그정규 폐형식 VaR (수익률 비율, 손실 = 음수)
// ln(S_T/S_0) ~ N(H(μ-σ²/2), σ²H)
func ParametricGBMVaR(drift, volatility float64, horizonDays int, confidence float64) float64 {
	h := float64(horizonDays)
	mean := h * (drift - 0.5*volatility*volatility)
	sd := volatility * math.Sqrt(h)
	z := distuv.UnitNormal.Quantile(1 - confidence)
	return math.Exp(mean+sd*z) - 1
}

// =============================================================================
// Historical VaR (Return Series)
// =============================================================================

// CalculateVaR 과거 수익률 기반 VaR 계산 (Historical Simulation)
// returns: 일별 수익률 배열 (양수=이익, 음수=손실)
// confidence: 신뢰수준 (예: 0.95, 0.99)
// 반환값: VaR는 손실을 양수로 표현 (예: 0.05 = 5% 손실 가능)
func CalculateVaR(returns []float64, confidence float64) VaRResult {
	if len(returns) == 0 {
		return VaRResult{Confidence: confidence, VaR: 0, CVaR: 0}
	}

	sorted := sortedCopy(returns)

	// VaR: (1-confidence) 백분위수
	percentile := 1.0 - confidence
	idx := int(math.Floor(percentile * float64(len(sorted))))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}

	// VaR = 손실을 양수로 표현
	var varValue float64
	if sorted[idx] < 0 {
		varValue = -sorted[idx]
	}

	return VaRResult{
		Confidence: confidence,
		VaR:        varValue,
		CVaR:       CalculateCVaR(sorted, idx),
	}
}

// CalculateCVaR Conditional VaR (Expected Shortfall) 계산
// sorted: 오름차순 정렬된 수익률
// varIdx: VaR 인덱스 (이 인덱스 이하의 수익률이 tail)
func CalculateCVaR(sorted []float64, varIdx int) float64 {
	if len(sorted) == 0 || varIdx < 0 {
		return 0
	}
	if varIdx >= len(sorted) {
		varIdx = len(sorted) - 1
	}

	avgTailReturn := stat.Mean(sorted[:varIdx+1], nil)

	// CVaR = 손실을 양수로 표현
	if avgTailReturn < 0 {
		return -avgTailReturn
	}
	return 0
}

// CalculateParametricVaR 정규분포 가정 VaR 계산 (손실 양수)
// mean: 평균 수익률, stdDev: 표준편차
func CalculateParametricVaR(mean, stdDev, confidence float64) VaRResult {
	z := distuv.UnitNormal.Quantile(confidence)

	varValue := z*stdDev - mean
	if varValue < 0 {
		varValue = 0
	}

	// 정규분포 Expected Shortfall: -μ + σ·φ(z)/(1-c)
	cvar := stdDev*distuv.UnitNormal.Prob(z)/(1-confidence) - mean
	if cvar < 0 {
		cvar = 0
	}

	return VaRResult{
		Confidence: confidence,
		VaR:        varValue,
		CVaR:       cvar,
	}
}
