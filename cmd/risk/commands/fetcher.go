package commands

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/mcrisk/internal/collector"
)

// fetcherCmd represents the fetcher command
var fetcherCmd = &cobra.Command{
	Use:   "fetcher",
	Short: "가격 데이터 수집 도구",
	Long: `외부 소스 (Naver, Yahoo)에서 일봉을 수집해 PostgreSQL에 저장합니다.

Example:
  go run ./cmd/risk fetcher collect 005930 000660
  go run ./cmd/risk fetcher collect AAPL --source yahoo --days 500
  go run ./cmd/risk fetcher collect   # COLLECT_SYMBOLS`,
}

// fetcherCollectCmd represents the collect subcommand
var fetcherCollectCmd = &cobra.Command{
	Use:   "collect [SYMBOL...]",
	Short: "가격 수집 실행",
	Long: `지정된 종목의 일봉을 수집합니다. 종목을 생략하면 COLLECT_SYMBOLS를 사용합니다.

소스:
  naver  - Naver Finance (국내 종목, 기본값)
  yahoo  - Yahoo Finance chart API (해외 종목)

DB에 저장된 마지막 날짜 이후 데이터만 저장하고, 저장 후 해당 종목 캐시를 무효화합니다.`,
	RunE: runFetcherCollect,
}

var (
	// Fetcher flags
	fetcherSource  string
	fetcherDays    int
	fetcherWorkers int
)

func init() {
	rootCmd.AddCommand(fetcherCmd)
	fetcherCmd.AddCommand(fetcherCollectCmd)

	// Flags
	f := fetcherCollectCmd.Flags()
	f.StringVar(&fetcherSource, "source", "", "수집 소스 (naver|yahoo, 기본값 PRICE_SOURCE)")
	f.IntVar(&fetcherDays, "days", 0, "종목별 수집 거래일 수 (기본값 COLLECT_DAYS)")
	f.IntVar(&fetcherWorkers, "workers", 5, "동시 수집 worker 수")
}

func runFetcherCollect(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	symbols := args
	if len(symbols) == 0 {
		symbols = a.cfg.Collector.Symbols
	}
	if len(symbols) == 0 {
		return errors.New("no symbols: pass SYMBOL arguments or set COLLECT_SYMBOLS")
	}

	days := fetcherDays
	if days == 0 {
		days = a.cfg.Collector.Days
	}

	col, err := a.collector(strings.ToLower(fetcherSource))
	if err != nil {
		return err
	}

	if !jsonOutput {
		fmt.Println()
		PrintDoubleSeparator()
		fmt.Println("  Price Collection")
		PrintSeparator()
		PrintKeyValue("Symbols", strings.Join(symbols, ", "), 8)
		PrintKeyValue("Days", fmt.Sprintf("%d", days), 8)
		PrintKeyValue("Workers", fmt.Sprintf("%d", fetcherWorkers), 8)
		PrintSeparator()
	}

	start := time.Now()
	results, err := col.Collect(cmd.Context(), symbols, collector.Config{Workers: fetcherWorkers, Days: days})
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(collectOutput(results))
	}
	printCollectResults(results, time.Since(start))

	if sum := collector.Summarize(results); sum.Failed == sum.Total {
		return fmt.Errorf("all %d symbols failed", sum.Total)
	}
	return nil
}

// collectOutput FetchResult.Error는 JSON 직렬화되지 않으므로 문자열로 변환
func collectOutput(results []collector.FetchResult) map[string]interface{} {
	errs := map[string]string{}
	for _, r := range results {
		if r.Error != nil {
			errs[r.Symbol] = r.Error.Error()
		}
	}
	return map[string]interface{}{
		"summary": collector.Summarize(results),
		"results": results,
		"errors":  errs,
	}
}
