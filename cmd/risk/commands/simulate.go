package commands

import (
	"github.com/spf13/cobra"

	"github.com/wonny/mcrisk/internal/simulation"
)

// simulateCmd represents the simulate command
var simulateCmd = &cobra.Command{
	Use:   "simulate SYMBOL",
	Short: "Monte Carlo 가격 시뮬레이션",
	Long: `가격 이력으로 수익률 모델을 추정하고 만기 가격 분포를 시뮬레이션합니다.

지정하지 않은 값은 시뮬레이션 프로파일(SIM_PROFILE) 기본값을 사용합니다.

Example:
  go run ./cmd/risk simulate 005930
  go run ./cmd/risk simulate AAPL --method bootstrap --simulations 5000 --days 60
  go run ./cmd/risk simulate 005930 --seed 42 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulate,
}

// requestFlags simulate/var/scenarios 공통 플래그
type requestFlags struct {
	method      string
	simulations int
	days        int
	lookback    int
	seed        int64
	position    float64
}

var simulateFlags requestFlags

func init() {
	rootCmd.AddCommand(simulateCmd)

	f := simulateCmd.Flags()
	f.StringVar(&simulateFlags.method, "method", "", "시뮬레이션 방법 (gbm|bootstrap)")
	f.IntVar(&simulateFlags.simulations, "simulations", 0, "경로 수")
	f.IntVar(&simulateFlags.days, "days", 0, "시뮬레이션 기간 (거래일)")
	f.IntVar(&simulateFlags.lookback, "lookback", 0, "추정 기간 (가격 개수)")
	f.Int64Var(&simulateFlags.seed, "seed", 0, "난수 시드 (재현용)")
}

// request 명시적으로 지정된 플래그만 Request에 반영
func (f *requestFlags) request(cmd *cobra.Command) simulation.Request {
	flags := cmd.Flags()
	req := simulation.Request{Method: f.method}
	if flags.Changed("simulations") {
		req.Simulations = &f.simulations
	}
	if flags.Changed("days") {
		req.Days = &f.days
	}
	if flags.Changed("lookback") {
		req.Lookback = &f.lookback
	}
	if flags.Changed("seed") {
		req.Seed = &f.seed
	}
	if flags.Changed("position") {
		req.PositionValue = &f.position
	}
	return req
}

func runSimulate(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	report, err := a.service.Simulate(cmd.Context(), args[0], simulateFlags.request(cmd))
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(report)
	}
	printSimulationReport(report)
	return nil
}
