package risk

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// Error Taxonomy
// =============================================================================

var (
	// ErrInsufficientData 모델 추정에 필요한 가격 이력이 부족함 (재시도 불가, 데이터 보강 필요)
	ErrInsufficientData = errors.New("insufficient data for simulation")
	// ErrInvalidConfig 잘못된 파라미터 (호출자 버그, 재시도 불가)
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrDataUnavailable 가격 제공자 실패 (backoff 후 재시도 가능)
	ErrDataUnavailable = errors.New("price data unavailable")
	// ErrTimeout 외부 데드라인 초과 (경로 수/기간 축소 후 재시도 가능)
	ErrTimeout = errors.New("simulation timed out")
)

// ConfigError 파라미터 검증 실패
// 어떤 필드가 어떤 제약을 어겼는지 포함
type ConfigError struct {
	Field   string
	Message string
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidConfig.Error(), e.Field, e.Message)
}

// Unwrap errors.Is(err, ErrInvalidConfig) 지원
func (e ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// TimeoutError 시뮬레이션이 데드라인을 넘김
// ⭐ 부분 결과(잘린 경로 행렬)는 절대 반환하지 않음
type TimeoutError struct {
	Elapsed     time.Duration
	NumPaths    int
	HorizonDays int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s after %s (num_paths=%d, horizon_days=%d); retry with fewer paths or a shorter horizon",
		ErrTimeout.Error(), e.Elapsed.Round(time.Millisecond), e.NumPaths, e.HorizonDays)
}

// Unwrap errors.Is(err, ErrTimeout) 지원
func (e *TimeoutError) Unwrap() error {
	return ErrTimeout
}

// invalidConfig ConfigError 생성 헬퍼
func invalidConfig(field, format string, args ...interface{}) error {
	return ConfigError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsRetryable 재시도 가능 여부
// DataUnavailable(업스트림 장애), Timeout(연산량 과다)만 재시도 대상
func IsRetryable(err error) bool {
	return errors.Is(err, ErrDataUnavailable) || errors.Is(err, ErrTimeout)
}
