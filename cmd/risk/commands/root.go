package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	jsonOutput bool
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "risk",
	Short: "Monte Carlo 리스크 시뮬레이션 엔진",
	Long: `Monte Carlo Risk Simulation Engine CLI

가격 이력에서 drift/volatility를 추정하고 GBM 또는 bootstrap 경로를 생성해
만기 가격 분포, VaR/CVaR, 스트레스 시나리오를 계산합니다.

Usage:
  go run ./cmd/risk [command]

Examples:
  go run ./cmd/risk simulate 005930 --simulations 10000 --days 252
  go run ./cmd/risk var AAPL --confidence 0.95,0.99 --json
  go run ./cmd/risk scenarios 005930 --days 30
  go run ./cmd/risk fetcher collect 005930 000660
  go run ./cmd/risk api`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "결과를 JSON으로 출력")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug 로그 출력")
}
