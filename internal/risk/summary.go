package risk

import (
	"gonum.org/v1/gonum/stat"
)

// =============================================================================
// Distribution Summarizer
// =============================================================================

// Summarize 만기 가격 분포 요약
// 입력 행렬은 변경하지 않으며 추가 난수를 쓰지 않음 (같은 행렬 → 같은 요약)
func Summarize(m *PathMatrix) *DistributionSummary {
	terminal := m.Terminal()
	sorted := sortedCopy(terminal)
	start := m.StartPrice()

	// 수익 확률: 만기 > 시작가
	profitable := 0
	for _, p := range terminal {
		if p > start {
			profitable++
		}
	}

	mean := stat.Mean(terminal, nil)
	percentiles := make([]PercentilePoint, 0, len(SummaryPercentiles))
	for _, p := range SummaryPercentiles {
		price := Percentile(sorted, float64(p))
		percentiles = append(percentiles, PercentilePoint{
			Percentile: p,
			Price:      price,
			ReturnPct:  (price/start - 1) * percentScale,
		})
	}

	return &DistributionSummary{
		NumPaths:          m.NumPaths(),
		StartPrice:        start,
		Mean:              mean,
		Median:            Percentile(sorted, 50),
		StdDev:            sampleStdDev(terminal),
		Min:               sorted[0],
		Max:               sorted[len(sorted)-1],
		ExpectedReturnPct: (mean/start - 1) * percentScale,
		ProbabilityProfit: float64(profitable) / float64(len(terminal)),
		Percentiles:       percentiles,
		TailRisk: TailRisk{
			Worst1Pct: Percentile(sorted, 1),
			Worst5Pct: Percentile(sorted, 5),
			Best5Pct:  Percentile(sorted, 95),
			Best1Pct:  Percentile(sorted, 99),
		},
	}
}
