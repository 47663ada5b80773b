package risk

import (
	"fmt"
	"math/rand/v2"
)

// =============================================================================
// Draw Strategies (tagged variant)
// =============================================================================

// Drawer 한 스텝의 로그수익률을 뽑는 전략
// GBM/Bootstrap은 스텝 수익률을 뽑는 방식만 다르고 경로 진행 로직은 공유
type Drawer interface {
	Draw(rng *rand.Rand) float64
	Method() Method
}

// GBMDraw 이산화 기하 브라운 운동
// 가정: drift/volatility 상수, 단일 기간 로그수익률 정규분포 (로그정규 가격)
// step = (μ - σ²/2) + σ·Z, Z ~ N(0,1)
type GBMDraw struct {
	Drift      float64
	Volatility float64
}

// Draw GBM 스텝
func (g GBMDraw) Draw(rng *rand.Rand) float64 {
	return (g.Drift - 0.5*g.Volatility*g.Volatility) + g.Volatility*rng.NormFloat64()
}

// Method MethodGBM
func (g GBMDraw) Method() Method { return MethodGBM }

// BootstrapDraw 과거 로그수익률 복원추출
// 표본 = lookback 윈도우 내 수익률 (ReturnModel.Returns, 추정과 같은 구간)
// 경험적 분포(왜도/첨도)를 보존하지만 과거 극단값을 넘지 못함
type BootstrapDraw struct {
	Returns []float64
}

// Draw 과거 표본에서 하나를 균등 추출
func (b BootstrapDraw) Draw(rng *rand.Rand) float64 {
	return b.Returns[rng.IntN(len(b.Returns))]
}

// Method MethodBootstrap
func (b BootstrapDraw) Method() Method { return MethodBootstrap }

// NewDrawer 방법과 추정 모델로 전략 생성
func NewDrawer(method Method, model *ReturnModel) (Drawer, error) {
	if model == nil {
		return nil, fmt.Errorf("%w: return model is nil", ErrInsufficientData)
	}

	switch method {
	case MethodGBM:
		return GBMDraw{Drift: model.DriftDaily, Volatility: model.VolatilityDaily}, nil
	case MethodBootstrap:
		if len(model.Returns) == 0 {
			return nil, fmt.Errorf("%w: bootstrap needs at least 1 historical return", ErrInsufficientData)
		}
		return BootstrapDraw{Returns: model.Returns}, nil
	default:
		return nil, invalidConfig("method", "must be one of gbm|bootstrap, got %q", method)
	}
}
