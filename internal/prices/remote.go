package prices

import (
	"context"
	"time"

	"github.com/wonny/mcrisk/internal/external/naver"
	"github.com/wonny/mcrisk/internal/external/yahoo"
)

const (
	SourceNaver = "naver"
	SourceYahoo = "yahoo"
)

// naverFetcher naver.Client 가격 조회
type naverFetcher interface {
	FetchPrices(ctx context.Context, stockCode string, from, to time.Time) ([]naver.PriceData, error)
}

// yahooFetcher yahoo.Client 일봉 조회
type yahooFetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, from, to time.Time) ([]yahoo.Bar, error)
}

// NaverSource Naver Finance 가격 제공자
type NaverSource struct {
	client naverFetcher
	now    func() time.Time
}

// NewNaverSource creates a Naver-backed provider
func NewNaverSource(client naverFetcher) *NaverSource {
	return &NaverSource{client: client, now: time.Now}
}

// Source returns "naver"
func (s *NaverSource) Source() string { return SourceNaver }

// History 최근 days 거래일
func (s *NaverSource) History(ctx context.Context, symbol string, days int) (*Series, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	if err := ValidateDays(days); err != nil {
		return nil, err
	}

	now := s.now()
	data, err := s.client.FetchPrices(ctx, symbol, calendarStart(now, days), now)
	if err != nil {
		return nil, unavailable(SourceNaver, symbol, err)
	}

	bars := make([]Bar, 0, len(data))
	for _, d := range data {
		bars = append(bars, Bar{
			Date:   d.TradeDate,
			Open:   d.OpenPrice,
			High:   d.HighPrice,
			Low:    d.LowPrice,
			Close:  d.ClosePrice,
			Volume: d.Volume,
		})
	}

	return &Series{Symbol: symbol, Source: SourceNaver, Bars: tail(Normalize(bars), days)}, nil
}

// YahooSource Yahoo Finance 가격 제공자
type YahooSource struct {
	client yahooFetcher
	now    func() time.Time
}

// NewYahooSource creates a Yahoo-backed provider
func NewYahooSource(client yahooFetcher) *YahooSource {
	return &YahooSource{client: client, now: time.Now}
}

// Source returns "yahoo"
func (s *YahooSource) Source() string { return SourceYahoo }

// History 최근 days 거래일
func (s *YahooSource) History(ctx context.Context, symbol string, days int) (*Series, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	if err := ValidateDays(days); err != nil {
		return nil, err
	}

	now := s.now()
	data, err := s.client.FetchDailyBars(ctx, symbol, calendarStart(now, days), now)
	if err != nil {
		return nil, unavailable(SourceYahoo, symbol, err)
	}

	bars := make([]Bar, 0, len(data))
	for _, d := range data {
		day := time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
		bars = append(bars, Bar{
			Date:   day,
			Open:   d.Open,
			High:   d.High,
			Low:    d.Low,
			Close:  d.Close,
			Volume: int64(d.Volume),
		})
	}

	return &Series{Symbol: symbol, Source: SourceYahoo, Bars: tail(Normalize(bars), days)}, nil
}
