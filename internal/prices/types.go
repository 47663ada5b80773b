package prices

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"time"

	"github.com/wonny/mcrisk/internal/risk"
)

// =============================================================================
// Price Series
// =============================================================================

// Bar 일별 시세 (종가가 시뮬레이션 입력)
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open,omitempty"`
	High   float64   `json:"high,omitempty"`
	Low    float64   `json:"low,omitempty"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume,omitempty"`
}

// Series 종목의 시간순 가격 이력
type Series struct {
	Symbol string `json:"symbol"`
	Source string `json:"source"`
	Bars   []Bar  `json:"bars"`
}

// Len 관측 수
func (s *Series) Len() int {
	return len(s.Bars)
}

// Closes 종가 벡터 (과거 → 최신)
func (s *Series) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// LastDate 최신 관측일 (비어 있으면 zero)
func (s *Series) LastDate() time.Time {
	if len(s.Bars) == 0 {
		return time.Time{}
	}
	return s.Bars[len(s.Bars)-1].Date
}

// =============================================================================
// Provider Contract
// =============================================================================

// Provider 가격 이력 제공자
// ⭐ 실패는 risk.ErrDataUnavailable로 감싸서 반환 (재시도 가능). 빈 이력은 에러가 아님
// (관측 수 판정은 Return Estimator의 InsufficientData가 담당)
type Provider interface {
	// History 최근 days 거래일 이력 (과거 → 최신)
	History(ctx context.Context, symbol string, days int) (*Series, error)
	// Source 제공자 이름 (database, naver, yahoo)
	Source() string
}

// Store 수집한 가격을 저장하는 쓰기 측
type Store interface {
	SaveBars(ctx context.Context, symbol, source string, bars []Bar) (int, error)
	LatestDate(ctx context.Context, symbol string) (time.Time, bool, error)
}

// =============================================================================
// Helpers
// =============================================================================

var symbolRe = regexp.MustCompile(`^[A-Za-z0-9.^=\-]{1,20}$`)

// ValidateSymbol 종목 심볼 형식 검사
func ValidateSymbol(symbol string) error {
	if !symbolRe.MatchString(symbol) {
		return risk.ConfigError{Field: "symbol", Message: fmt.Sprintf("invalid symbol %q", symbol)}
	}
	return nil
}

// ValidateDays 조회 기간 검사
func ValidateDays(days int) error {
	if days <= 0 {
		return risk.ConfigError{Field: "days", Message: fmt.Sprintf("must be > 0, got %d", days)}
	}
	return nil
}

// Normalize 날짜 오름차순 정렬, 같은 날짜는 마지막 값 유지, 종가 없는 bar 제거
func Normalize(bars []Bar) []Bar {
	sorted := make([]Bar, 0, len(bars))
	for _, b := range bars {
		if b.Close <= 0 || math.IsNaN(b.Close) || math.IsInf(b.Close, 0) {
			continue
		}
		sorted = append(sorted, b)
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	out := sorted[:0]
	for _, b := range sorted {
		if n := len(out); n > 0 && out[n-1].Date.Equal(b.Date) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

// tail 마지막 n개
func tail(bars []Bar, n int) []Bar {
	if len(bars) > n {
		return bars[len(bars)-n:]
	}
	return bars
}

// calendarStart days 거래일을 덮는 달력 시작일 (주말/휴장 여유분 포함)
func calendarStart(now time.Time, days int) time.Time {
	calendarDays := days*7/5 + 14
	return now.AddDate(0, 0, -calendarDays)
}

// unavailable 제공자 실패 → ErrDataUnavailable (원인 에러 체인 유지)
func unavailable(source, symbol string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", risk.ErrDataUnavailable, source, symbol, err)
}
