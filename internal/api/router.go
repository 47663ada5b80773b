package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/mcrisk/internal/api/handlers"
	"github.com/wonny/mcrisk/pkg/logger"
)

// HealthChecker 의존성 상태 확인 (DB ping 등)
type HealthChecker func(r *http.Request) map[string]string

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(riskHandler *handlers.RiskHandler, dataHandler *handlers.DataHandler, health HealthChecker, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler(health)).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Risk endpoints
	api.HandleFunc("/risk/simulate/{symbol}", riskHandler.Simulate).Methods("GET")
	api.HandleFunc("/risk/var/{symbol}", riskHandler.ValueAtRisk).Methods("GET")
	api.HandleFunc("/risk/scenarios/{symbol}", riskHandler.Scenarios).Methods("GET")

	// Data endpoints
	if dataHandler != nil {
		api.HandleFunc("/prices/{symbol}", dataHandler.GetPrices).Methods("GET")
		api.HandleFunc("/data/collect", dataHandler.Collect).Methods("POST")
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
// 의존성 하나라도 "ok"가 아니면 503
func healthCheckHandler(health HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]interface{}{
			"status":  "ok",
			"service": "mcrisk-api",
		}

		if health != nil {
			deps := health(r)
			for _, s := range deps {
				if s != "ok" {
					status = http.StatusServiceUnavailable
					body["status"] = "degraded"
				}
			}
			body["dependencies"] = deps
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

// statusRecorder 응답 상태코드 기록
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(handlers.ErrorResponse{Error: "internal server error"})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
