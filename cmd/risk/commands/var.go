package commands

import (
	"github.com/spf13/cobra"
)

// varCmd represents the var command
var varCmd = &cobra.Command{
	Use:   "var SYMBOL",
	Short: "VaR/CVaR 계산",
	Long: `시뮬레이션 만기 수익률 분포에서 신뢰수준별 VaR/CVaR를 계산합니다.

--historical 지정 시 시뮬레이션 없이 과거 일간 수익률로 계산합니다
(historical + parametric, 손실 양수).

Example:
  go run ./cmd/risk var 005930
  go run ./cmd/risk var AAPL --confidence 0.95,0.99 --position 1000000
  go run ./cmd/risk var 005930 --historical --lookback 500`,
	Args: cobra.ExactArgs(1),
	RunE: runVaR,
}

var (
	varFlags      requestFlags
	varLevels     []float64
	varHistorical bool
)

func init() {
	rootCmd.AddCommand(varCmd)

	f := varCmd.Flags()
	f.StringVar(&varFlags.method, "method", "", "시뮬레이션 방법 (gbm|bootstrap)")
	f.IntVar(&varFlags.simulations, "simulations", 0, "경로 수")
	f.IntVar(&varFlags.days, "days", 0, "시뮬레이션 기간 (거래일)")
	f.IntVar(&varFlags.lookback, "lookback", 0, "추정 기간 (가격 개수)")
	f.Int64Var(&varFlags.seed, "seed", 0, "난수 시드 (재현용)")
	f.Float64Var(&varFlags.position, "position", 0, "포지션 금액 (달러 환산 기준)")
	f.Float64SliceVar(&varLevels, "confidence", nil, "신뢰수준 목록 (예: 0.95,0.99)")
	f.BoolVar(&varHistorical, "historical", false, "과거 수익률 기반 VaR")
}

func runVaR(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	req := varFlags.request(cmd)

	if varHistorical {
		report, err := a.service.HistoricalVaR(cmd.Context(), args[0], varLevels, req)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(report)
		}
		printHistoricalReport(report)
		return nil
	}

	report, err := a.service.ValueAtRisk(cmd.Context(), args[0], varLevels, req)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(report)
	}
	printRiskReport(report)
	return nil
}
