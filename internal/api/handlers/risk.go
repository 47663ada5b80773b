package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/mcrisk/internal/simulation"
	"github.com/wonny/mcrisk/pkg/logger"
)

// riskService simulation.Service 연산
type riskService interface {
	Simulate(ctx context.Context, symbol string, req simulation.Request) (*simulation.SimulationReport, error)
	ValueAtRisk(ctx context.Context, symbol string, levels []float64, req simulation.Request) (*simulation.RiskMetricsReport, error)
	Scenarios(ctx context.Context, symbol string, req simulation.Request) (*simulation.ScenarioReport, error)
	HistoricalVaR(ctx context.Context, symbol string, levels []float64, req simulation.Request) (*simulation.HistoricalReport, error)
}

// RiskHandler handles risk simulation endpoints
// ⭐ SSOT: 리스크 API 핸들러는 이 구조체에서만
type RiskHandler struct {
	service riskService
	logger  *logger.Logger
}

// NewRiskHandler creates a new risk handler
func NewRiskHandler(service riskService, log *logger.Logger) *RiskHandler {
	return &RiskHandler{
		service: service,
		logger:  log.WithField("handler", "risk"),
	}
}

// Simulate runs a Monte Carlo simulation
// GET /api/risk/simulate/{symbol}?method=gbm&simulations=10000&days=252&lookback=252&seed=42
func (h *RiskHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	req, err := parseRequest(r.URL.Query())
	if err != nil {
		respondRiskError(w, err)
		return
	}

	report, err := h.service.Simulate(r.Context(), symbol, req)
	if err != nil {
		h.fail(w, err, "simulate", symbol)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// ValueAtRisk returns VaR/CVaR per confidence level
// GET /api/risk/var/{symbol}?confidence=0.95,0.99&historical=false&...
func (h *RiskHandler) ValueAtRisk(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	q := r.URL.Query()

	req, err := parseRequest(q)
	if err != nil {
		respondRiskError(w, err)
		return
	}
	levels, err := parseLevels(q)
	if err != nil {
		respondRiskError(w, err)
		return
	}

	historical, err := parseHistorical(q)
	if err != nil {
		respondRiskError(w, err)
		return
	}

	if historical {
		report, err := h.service.HistoricalVaR(r.Context(), symbol, levels, req)
		if err != nil {
			h.fail(w, err, "historical_var", symbol)
			return
		}
		respondJSON(w, http.StatusOK, report)
		return
	}

	report, err := h.service.ValueAtRisk(r.Context(), symbol, levels, req)
	if err != nil {
		h.fail(w, err, "var", symbol)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// Scenarios runs the bull/base/bear/crash stress test
// GET /api/risk/scenarios/{symbol}?days=30&lookback=252&seed=42
func (h *RiskHandler) Scenarios(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	req, err := parseRequest(r.URL.Query())
	if err != nil {
		respondRiskError(w, err)
		return
	}

	report, err := h.service.Scenarios(r.Context(), symbol, req)
	if err != nil {
		h.fail(w, err, "scenarios", symbol)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (h *RiskHandler) fail(w http.ResponseWriter, err error, op, symbol string) {
	status := StatusForError(err)
	entry := h.logger.WithError(err).WithFields(map[string]interface{}{
		"op":     op,
		"symbol": symbol,
		"status": status,
	})
	if status >= http.StatusInternalServerError {
		entry.Error("Risk request failed")
	} else {
		entry.Warn("Risk request rejected")
	}
	respondRiskError(w, err)
}
