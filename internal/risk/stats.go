package risk

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// =============================================================================
// 통계 유틸리티
// =============================================================================

// sortedCopy 입력을 건드리지 않고 오름차순 정렬본 반환
func sortedCopy(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted
}

// Percentile 순서통계량 사이 선형 보간 백분위 (p: 0~100)
// 위치 h = p/100 * (n-1), 결과 = x[floor(h)] + (h-floor(h)) * (x[floor(h)+1] - x[floor(h)])
// sorted는 오름차순이어야 함. 빈 입력은 0
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	switch {
	case n == 0:
		return 0
	case p <= 0:
		return sorted[0]
	case p >= 100:
		return sorted[n-1]
	}

	h := p / 100 * float64(n-1)
	lo := int(h)
	if lo >= n-1 {
		return sorted[n-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// sampleStdDev 표본 표준편차 (n-1), 관측 2개 미만은 0
func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}

// MaxDrawdown 최대 낙폭 (음수 비율)
// running max는 시작 가격에서 출발: min_t(P_t / max(P_0..P_t) - 1)
func MaxDrawdown(start float64, path []float64) float64 {
	peak := start
	maxDD := 0.0
	for _, p := range path {
		if p > peak {
			peak = p
		}
		if dd := p/peak - 1; dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}
