package commands

import (
	"github.com/spf13/cobra"
)

// scenariosCmd represents the scenarios command
var scenariosCmd = &cobra.Command{
	Use:   "scenarios SYMBOL",
	Short: "스트레스 시나리오 (bull/base/bear/crash)",
	Long: `추정된 drift/volatility를 표준오차 단위로 충격해 4개 시나리오의
평균 경로를 계산합니다. 충격표는 시뮬레이션 프로파일에서 읽습니다.

Example:
  go run ./cmd/risk scenarios 005930
  go run ./cmd/risk scenarios AAPL --days 60 --seed 7`,
	Args: cobra.ExactArgs(1),
	RunE: runScenarios,
}

var scenarioFlags requestFlags

func init() {
	rootCmd.AddCommand(scenariosCmd)

	f := scenariosCmd.Flags()
	f.IntVar(&scenarioFlags.days, "days", 0, "시나리오 기간 (거래일)")
	f.IntVar(&scenarioFlags.lookback, "lookback", 0, "추정 기간 (가격 개수)")
	f.Int64Var(&scenarioFlags.seed, "seed", 0, "난수 시드 (재현용)")
}

func runScenarios(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	report, err := a.service.Scenarios(cmd.Context(), args[0], scenarioFlags.request(cmd))
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(report)
	}
	printScenarioReport(report)
	return nil
}
