package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/wonny/mcrisk/pkg/httputil"
	"github.com/wonny/mcrisk/pkg/logger"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// krxCode 6자리 국내 종목코드 → KOSPI 티커(.KS)로 매핑
var krxCode = regexp.MustCompile(`^\d{6}$`)

// Client handles the Yahoo Finance chart API
// ⭐ SSOT: Yahoo 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	symbolMap  map[string]string
}

// NewClient creates a new Yahoo Finance client
func NewClient(httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("source", "yahoo"),
		baseURL:    defaultBaseURL,
		symbolMap: map[string]string{
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
			"KOSPI":  "^KS11",
			"KOSDAQ": "^KQ11",
		},
	}
}

// WithBaseURL overrides the API host (config, tests)
func (c *Client) WithBaseURL(baseURL string) *Client {
	if baseURL != "" {
		c.baseURL = baseURL
	}
	return c
}

// Bar one daily OHLCV bar
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// chartResponse v8 chart API 응답
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Ticker 내부 심볼 → Yahoo 티커
func (c *Client) Ticker(symbol string) string {
	if mapped, ok := c.symbolMap[symbol]; ok {
		return mapped
	}
	if krxCode.MatchString(symbol) {
		return symbol + ".KS"
	}
	return symbol
}

// FetchDailyBars fetches daily bars in [from, to], oldest first
// 수정주가(adjclose)가 있으면 종가로 사용 (배당/분할 반영)
func (c *Client) FetchDailyBars(ctx context.Context, symbol string, from, to time.Time) ([]Bar, error) {
	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("period1", strconv.FormatInt(from.Unix(), 10))
	params.Set("period2", strconv.FormatInt(to.Unix(), 10))
	params.Set("events", "div,split")

	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(c.Ticker(symbol)), params.Encode())

	body, err := c.httpClient.GetBody(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}

	bars, err := parseChart(body)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(bars),
	}).Debug("Fetched daily bars")
	return bars, nil
}

// parseChart 응답 → 날짜 오름차순 bar (null bar 제외)
func parseChart(body []byte) ([]Bar, error) {
	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	var adj []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}

	bars := make([]Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		closePrice := at(quote.Close, i)
		if a := at(adj, i); a > 0 {
			closePrice = a
		}
		if closePrice <= 0 {
			continue // 휴장일 등 null bar
		}
		bars = append(bars, Bar{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   at(quote.Open, i),
			High:   at(quote.High, i),
			Low:    at(quote.Low, i),
			Close:  closePrice,
			Volume: at(quote.Volume, i),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

// at null-safe index
func at(values []*float64, i int) float64 {
	if i >= len(values) || values[i] == nil {
		return 0
	}
	return *values[i]
}
