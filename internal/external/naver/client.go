package naver

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/wonny/mcrisk/pkg/httputil"
	"github.com/wonny/mcrisk/pkg/logger"
)

const (
	defaultBaseURL  = "https://finance.naver.com"
	defaultChartURL = "https://fchart.stock.naver.com"
)

// Client handles communication with Naver Finance
// ⭐ SSOT: Naver Finance 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string // HTML 페이지 (sise_day)
	chartURL   string // siseJson API
}

// NewClient creates a new Naver Finance client
func NewClient(httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("source", "naver"),
		baseURL:    defaultBaseURL,
		chartURL:   defaultChartURL,
	}
}

// WithURLs overrides the endpoints (config, tests)
// 빈 값은 기존 값 유지
func (c *Client) WithURLs(baseURL, chartURL string) *Client {
	if baseURL != "" {
		c.baseURL = baseURL
	}
	if chartURL != "" {
		c.chartURL = chartURL
	}
	return c
}

// fetch GET path?params and returns the body
func (c *Client) fetch(ctx context.Context, base, path string, params url.Values) ([]byte, error) {
	fullURL := base + path
	if len(params) > 0 {
		fullURL = fmt.Sprintf("%s?%s", fullURL, params.Encode())
	}

	body, err := c.httpClient.GetBody(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	return body, nil
}

// PriceData represents one daily bar
type PriceData struct {
	StockCode  string
	TradeDate  time.Time
	OpenPrice  float64
	HighPrice  float64
	LowPrice   float64
	ClosePrice float64
	Volume     int64
}
