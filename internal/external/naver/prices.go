package naver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// maxSiseDayPages HTML fallback 최대 페이지 (페이지당 10거래일)
const maxSiseDayPages = 100

var priceRowRe = regexp.MustCompile(`\["(\d{8})",\s*([\d.]+),\s*([\d.]+),\s*([\d.]+),\s*([\d.]+),\s*(\d+)`)

// FetchPrices fetches daily bars for a stock, oldest first
// ⭐ SSOT: Naver 가격 수집은 이 함수에서만
// 1차: fchart siseJson API, 실패/빈 응답 시 sise_day HTML 페이지로 fallback
func (c *Client) FetchPrices(ctx context.Context, stockCode string, from, to time.Time) ([]PriceData, error) {
	prices, err := c.fetchChartPrices(ctx, stockCode, from, to)
	if err == nil && len(prices) > 0 {
		return finalize(stockCode, prices), nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	c.logger.WithError(err).WithField("stock_code", stockCode).Warn("Chart API returned no data, falling back to sise_day")

	prices, htmlErr := c.fetchSiseDayPrices(ctx, stockCode, from, to)
	if htmlErr != nil {
		if err != nil {
			return nil, fmt.Errorf("chart api: %v; sise_day: %w", err, htmlErr)
		}
		return nil, htmlErr
	}
	return finalize(stockCode, prices), nil
}

// fetchChartPrices siseJson API
func (c *Client) fetchChartPrices(ctx context.Context, stockCode string, from, to time.Time) ([]PriceData, error) {
	params := url.Values{}
	params.Set("symbol", stockCode)
	params.Set("requestType", "1")
	params.Set("startTime", from.Format("20060102"))
	params.Set("endTime", to.Format("20060102"))
	params.Set("timeframe", "day")

	body, err := c.fetch(ctx, c.chartURL, "/siseJson.naver", params)
	if err != nil {
		return nil, err
	}

	prices, err := parsePriceResponse(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse response failed: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"stock_code": stockCode,
		"count":      len(prices),
	}).Debug("Fetched chart prices")
	return prices, nil
}

// parsePriceResponse parses the siseJson body
// 응답이 작은따옴표/후행 쉼표를 포함할 수 있어 JSON 실패 시 정규식으로 파싱
func parsePriceResponse(body string) ([]PriceData, error) {
	body = strings.TrimSpace(body)
	body = strings.ReplaceAll(body, "'", "\"")

	var rawData [][]interface{}
	if err := json.Unmarshal([]byte(body), &rawData); err == nil {
		return parsePriceJSON(rawData), nil
	}

	return parsePriceRegex(body), nil
}

// parsePriceJSON parses the JSON array format (first row is the header)
func parsePriceJSON(rawData [][]interface{}) []PriceData {
	var prices []PriceData
	for i, row := range rawData {
		if i == 0 || len(row) < 6 {
			continue
		}

		dateStr, ok := row[0].(string)
		if !ok {
			continue
		}
		tradeDate, err := time.Parse("20060102", strings.Trim(dateStr, "\" "))
		if err != nil {
			continue
		}

		prices = append(prices, PriceData{
			TradeDate:  tradeDate,
			OpenPrice:  toFloat(row[1]),
			HighPrice:  toFloat(row[2]),
			LowPrice:   toFloat(row[3]),
			ClosePrice: toFloat(row[4]),
			Volume:     int64(toFloat(row[5])),
		})
	}
	return prices
}

// parsePriceRegex parses rows with a regex (fallback)
func parsePriceRegex(body string) []PriceData {
	var prices []PriceData
	for _, match := range priceRowRe.FindAllStringSubmatch(body, -1) {
		tradeDate, err := time.Parse("20060102", match[1])
		if err != nil {
			continue
		}

		volume, _ := strconv.ParseInt(match[6], 10, 64)
		prices = append(prices, PriceData{
			TradeDate:  tradeDate,
			OpenPrice:  toFloat(match[2]),
			HighPrice:  toFloat(match[3]),
			LowPrice:   toFloat(match[4]),
			ClosePrice: toFloat(match[5]),
			Volume:     volume,
		})
	}
	return prices
}

// fetchSiseDayPrices sise_day HTML 페이지를 from 이전 날짜가 나올 때까지 순회
func (c *Client) fetchSiseDayPrices(ctx context.Context, stockCode string, from, to time.Time) ([]PriceData, error) {
	var out []PriceData
	for page := 1; page <= maxSiseDayPages; page++ {
		params := url.Values{}
		params.Set("code", stockCode)
		params.Set("page", strconv.Itoa(page))

		body, err := c.fetch(ctx, c.baseURL, "/item/sise_day.naver", params)
		if err != nil {
			return nil, err
		}

		rows, err := parseSiseDayHTML(body)
		if err != nil {
			return nil, fmt.Errorf("parse sise_day page %d: %w", page, err)
		}
		if len(rows) == 0 {
			break
		}

		reachedFrom := false
		for _, r := range rows {
			if r.TradeDate.Before(from) {
				reachedFrom = true
				continue
			}
			if r.TradeDate.After(to) {
				continue
			}
			out = append(out, r)
		}
		if reachedFrom {
			break
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"stock_code": stockCode,
		"count":      len(out),
	}).Debug("Fetched sise_day prices")
	return out, nil
}

// parseSiseDayHTML 일별시세 표 파싱
// 열: 날짜, 종가, 전일비, 시가, 고가, 저가, 거래량 (최신 → 과거)
func parseSiseDayHTML(body []byte) ([]PriceData, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var prices []PriceData
	doc.Find("table.type2 tr").Each(func(_ int, tr *goquery.Selection) {
		tds := tr.Find("td")
		if tds.Length() < 7 {
			return
		}

		tradeDate, err := time.Parse("2006.01.02", strings.TrimSpace(tds.Eq(0).Text()))
		if err != nil {
			return // 구분선/빈 행
		}

		closePrice := parseNumber(tds.Eq(1).Text())
		if closePrice <= 0 {
			return
		}

		prices = append(prices, PriceData{
			TradeDate:  tradeDate,
			ClosePrice: closePrice,
			OpenPrice:  parseNumber(tds.Eq(3).Text()),
			HighPrice:  parseNumber(tds.Eq(4).Text()),
			LowPrice:   parseNumber(tds.Eq(5).Text()),
			Volume:     int64(parseNumber(tds.Eq(6).Text())),
		})
	})
	return prices, nil
}

// finalize 종목코드 설정, 날짜 오름차순 정렬, 종가 없는 행 제거
func finalize(stockCode string, prices []PriceData) []PriceData {
	out := prices[:0]
	for _, p := range prices {
		if p.ClosePrice <= 0 {
			continue
		}
		p.StockCode = stockCode
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TradeDate.Before(out[j].TradeDate) })
	return out
}

// parseNumber "72,500" → 72500
func parseNumber(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// toFloat converts various JSON types to float64
func toFloat(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int64:
		return float64(val)
	case int:
		return float64(val)
	case string:
		return parseNumber(val)
	default:
		return 0
	}
}
