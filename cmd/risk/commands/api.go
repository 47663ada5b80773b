package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/mcrisk/internal/api"
	"github.com/wonny/mcrisk/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- HTTP API 서버 시작
- 시뮬레이션/VaR/시나리오 엔드포인트 제공
- 가격 조회 및 수집 트리거 제공 (DATABASE_URL 설정 시)

Endpoints:
  GET  /health                      - Health check
  GET  /api/risk/simulate/{symbol}  - Monte Carlo 시뮬레이션
  GET  /api/risk/var/{symbol}       - VaR/CVaR
  GET  /api/risk/scenarios/{symbol} - 스트레스 시나리오
  GET  /api/prices/{symbol}         - 가격 이력
  POST /api/data/collect            - 가격 수집 트리거

Example:
  go run ./cmd/risk api
  go run ./cmd/risk api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본값 PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Monte Carlo Risk API Server ===")

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	log := a.log
	log.WithFields(map[string]interface{}{
		"port": a.cfg.Port,
		"env":  a.cfg.Env,
	}).Info("Initializing API server")

	// 수집 엔드포인트는 DB가 있을 때만
	var dataHandler *handlers.DataHandler
	if col, err := a.collector(""); err == nil {
		dataHandler = handlers.NewDataHandler(a.provider, col, a.cfg.Collector.Days, log)
	} else {
		log.WithError(err).Warn("Price collection endpoint disabled")
		dataHandler = handlers.NewDataHandler(a.provider, nil, a.cfg.Collector.Days, log)
	}

	riskHandler := handlers.NewRiskHandler(a.service, log)
	health := func(r *http.Request) map[string]string {
		return a.health(r.Context())
	}

	router := api.NewRouter(riskHandler, dataHandler, health, log)
	server := api.New(a.cfg, log, router)

	// Start server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
