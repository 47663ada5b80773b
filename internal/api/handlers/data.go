package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/mcrisk/internal/collector"
	"github.com/wonny/mcrisk/internal/prices"
	"github.com/wonny/mcrisk/pkg/logger"
)

// priceCollector collector.Collector 수집 기능
type priceCollector interface {
	Collect(ctx context.Context, symbols []string, cfg collector.Config) ([]collector.FetchResult, error)
}

// DataHandler handles price data endpoints
// ⭐ SSOT: 가격 데이터 API 핸들러는 이 구조체에서만
type DataHandler struct {
	provider    prices.Provider
	collector   priceCollector // nil = 수집 비활성 (DB 미설정)
	defaultDays int
	logger      *logger.Logger
}

// NewDataHandler creates a new data handler
func NewDataHandler(provider prices.Provider, col priceCollector, defaultDays int, log *logger.Logger) *DataHandler {
	return &DataHandler{
		provider:    provider,
		collector:   col,
		defaultDays: defaultDays,
		logger:      log.WithField("handler", "data"),
	}
}

// GetPrices returns the price history used by simulations
// GET /api/prices/{symbol}?days=252
func (h *DataHandler) GetPrices(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	days := h.defaultDays
	if s := r.URL.Query().Get("days"); s != "" {
		d, err := strconv.Atoi(s)
		if err != nil {
			respondError(w, http.StatusBadRequest, "days must be an integer")
			return
		}
		days = d
	}

	series, err := h.provider.History(r.Context(), symbol, days)
	if err != nil {
		h.logger.WithError(err).WithFields(map[string]interface{}{
			"symbol": symbol,
			"days":   days,
		}).Warn("Failed to get prices")
		respondRiskError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, series)
}

// CollectRequest represents a collection request
type CollectRequest struct {
	Symbols []string `json:"symbols"`
	Days    int      `json:"days"`
	Workers int      `json:"workers"`
}

// CollectResponse represents a collection response
type CollectResponse struct {
	Status  string                  `json:"status"`
	Summary collector.Summary       `json:"summary"`
	Results []collector.FetchResult `json:"results"`
	Errors  map[string]string       `json:"errors,omitempty"`
}

// Collect triggers price collection
// POST /api/data/collect {"symbols": ["005930"], "days": 30}
func (h *DataHandler) Collect(w http.ResponseWriter, r *http.Request) {
	if h.collector == nil {
		respondError(w, http.StatusServiceUnavailable, "price collection requires a database")
		return
	}

	var req CollectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Symbols) == 0 {
		respondError(w, http.StatusBadRequest, "symbols is required")
		return
	}
	for _, symbol := range req.Symbols {
		if err := prices.ValidateSymbol(symbol); err != nil {
			respondRiskError(w, err)
			return
		}
	}
	if req.Days <= 0 {
		req.Days = 30
	}
	if req.Workers <= 0 {
		req.Workers = 5
	}

	h.logger.WithFields(map[string]interface{}{
		"symbols": len(req.Symbols),
		"days":    req.Days,
	}).Info("Price collection triggered")

	results, err := h.collector.Collect(r.Context(), req.Symbols, collector.Config{Workers: req.Workers, Days: req.Days})
	if err != nil {
		h.logger.WithError(err).Error("Failed to collect prices")
		respondError(w, http.StatusInternalServerError, "Failed to collect prices")
		return
	}

	resp := CollectResponse{
		Status:  "success",
		Summary: collector.Summarize(results),
		Results: results,
	}
	for _, res := range results {
		if res.Error != nil {
			if resp.Errors == nil {
				resp.Errors = make(map[string]string)
			}
			resp.Errors[res.Symbol] = res.Error.Error()
		}
	}
	if resp.Summary.Failed > 0 {
		resp.Status = "partial"
	}

	respondJSON(w, http.StatusOK, resp)
}
