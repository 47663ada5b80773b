package risk

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultBatchSize 워커 하나가 한 번에 처리하는 경로 수 (배치 사이에서 취소 확인)
	DefaultBatchSize = 256
	// MaxMatrixCells num_paths * horizon_days 상한 (약 800MB)
	MaxMatrixCells = 100_000_000
)

// =============================================================================
// Path Matrix
// =============================================================================

// PathMatrix numPaths × horizonDays 시뮬레이션 가격 행렬 (경로 단위 row-major)
// 시작 가격은 행에 포함하지 않음. 생성 후 읽기 전용
type PathMatrix struct {
	numPaths    int
	horizonDays int
	startPrice  float64
	seed        int64
	method      Method
	data        []float64
}

// NumPaths 경로 수
func (m *PathMatrix) NumPaths() int { return m.numPaths }

// HorizonDays 경로당 스텝 수
func (m *PathMatrix) HorizonDays() int { return m.horizonDays }

// StartPrice 모든 경로의 시작 가격
func (m *PathMatrix) StartPrice() float64 { return m.startPrice }

// Seed 실제 사용된 기본 시드
func (m *PathMatrix) Seed() int64 { return m.seed }

// Method 생성에 사용된 방법
func (m *PathMatrix) Method() Method { return m.method }

// Path i번째 경로 (읽기 전용 view, append 불가)
func (m *PathMatrix) Path(i int) []float64 {
	lo := i * m.horizonDays
	hi := lo + m.horizonDays
	return m.data[lo:hi:hi]
}

// Terminal 만기 가격 열 (새 슬라이스)
func (m *PathMatrix) Terminal() []float64 {
	out := make([]float64, m.numPaths)
	for i := 0; i < m.numPaths; i++ {
		out[i] = m.data[(i+1)*m.horizonDays-1]
	}
	return out
}

// TerminalReturns 만기 단순수익률 (P_T / P_0 - 1)
func (m *PathMatrix) TerminalReturns() []float64 {
	out := m.Terminal()
	for i := range out {
		out[i] = out[i]/m.startPrice - 1
	}
	return out
}

// MeanPath 일자별 경로 평균
func (m *PathMatrix) MeanPath() []float64 {
	mean := make([]float64, m.horizonDays)
	for i := 0; i < m.numPaths; i++ {
		row := m.Path(i)
		for t, p := range row {
			mean[t] += p
		}
	}
	for t := range mean {
		mean[t] /= float64(m.numPaths)
	}
	return mean
}

// =============================================================================
// Path Simulator
// =============================================================================

// SimulatePaths 경로 행렬 생성
// ⭐ 재현성: 경로 i는 PCG(seed, i) 전용 스트림을 사용 → 워커 분할/실행 순서와 무관하게 동일 결과
// 데드라인 초과 시 TimeoutError (부분 행렬 반환 없음)
func SimulatePaths(ctx context.Context, startPrice float64, drawer Drawer, cfg SimulationConfig) (*PathMatrix, error) {
	if err := validatePathShape(cfg.NumPaths, cfg.HorizonDays); err != nil {
		return nil, err
	}
	if startPrice <= 0 || math.IsNaN(startPrice) || math.IsInf(startPrice, 0) {
		return nil, invalidConfig("start_price", "must be a positive finite number, got %v", startPrice)
	}
	if drawer == nil {
		return nil, invalidConfig("method", "drawer is nil")
	}

	seed := resolveSeed(cfg.Seed)
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	m := &PathMatrix{
		numPaths:    cfg.NumPaths,
		horizonDays: cfg.HorizonDays,
		startPrice:  startPrice,
		seed:        seed,
		method:      drawer.Method(),
		data:        make([]float64, cfg.NumPaths*cfg.HorizonDays),
	}

	started := time.Now()
	g := new(errgroup.Group)
	g.SetLimit(workers)

	for lo := 0; lo < cfg.NumPaths; lo += batchSize {
		if ctx.Err() != nil {
			break
		}
		lo, hi := lo, min(lo+batchSize, cfg.NumPaths)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			src := rand.NewPCG(0, 0)
			rng := rand.New(src)
			for i := lo; i < hi; i++ {
				src.Seed(uint64(seed), uint64(i))
				stepPath(startPrice, rng, drawer.Draw, m.Path(i))
			}
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &TimeoutError{
				Elapsed:     time.Since(started),
				NumPaths:    cfg.NumPaths,
				HorizonDays: cfg.HorizonDays,
			}
		}
		return nil, err
	}

	return m, nil
}

// stepPath 공용 경로 진행 함수
// S(t+1) = S(t) · exp(step), step은 draw 전략이 결정
func stepPath(start float64, rng *rand.Rand, draw func(*rand.Rand) float64, out []float64) {
	price := start
	for t := range out {
		price *= math.Exp(draw(rng))
		out[t] = price
	}
}

// validatePathShape 경로 수/기간 검증 (잘라내지 않고 거부)
func validatePathShape(numPaths, horizonDays int) error {
	if numPaths <= 0 {
		return invalidConfig("num_paths", "must be > 0, got %d", numPaths)
	}
	if horizonDays <= 0 {
		return invalidConfig("horizon_days", "must be > 0, got %d", horizonDays)
	}
	if numPaths > MaxMatrixCells/horizonDays {
		return invalidConfig("num_paths", "num_paths * horizon_days = %d exceeds limit %d",
			int64(numPaths)*int64(horizonDays), MaxMatrixCells)
	}
	return nil
}

// resolveSeed 시드 미지정 시 무작위 기본 시드 생성 (결과에 기록되어 재실행 가능)
func resolveSeed(seed *int64) int64 {
	if seed != nil {
		return *seed
	}
	return rand.Int64()
}
