package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/wonny/mcrisk/internal/collector"
	"github.com/wonny/mcrisk/internal/risk"
	"github.com/wonny/mcrisk/internal/simulation"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// ReportHeader 리포트 공통 헤더
type ReportHeader struct {
	Title    string
	Metadata simulation.Metadata
}

// PrintReportHeader prints a formatted report header
func PrintReportHeader(h ReportHeader) {
	m := h.Metadata
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s: %s\n", h.Title, m.Symbol)
	PrintSeparator()
	PrintKeyValue("Run ID", m.RunID, 10)
	PrintKeyValue("Source", m.Source, 10)
	PrintKeyValue("Data as of", m.DataAsOf.Format("2006-01-02"), 10)
	PrintKeyValue("Seed", fmt.Sprintf("%d", m.SeedUsed), 10)
	PrintKeyValue("Profile", fmt.Sprintf("%s (%s)", m.ProfileID, shortHash(m.ProfileHash)), 10)
	PrintSeparator()
}

// PrintCompletion prints the run footer
func PrintCompletion(m simulation.Metadata) {
	fmt.Println()
	fmt.Printf("✅ Run %s completed in %.2fs\n", m.RunID, float64(m.ElapsedMS)/1000)
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Printf("❌ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Printf("ℹ️  %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(columns []string, widths []int) {
	PrintTableRow(columns, widths)

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Println(strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(values []string, widths []int) {
	for i, val := range values {
		fmt.Printf("%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Print("  ")
		}
	}
	fmt.Println()
}

// PrintList prints a bulleted list
func PrintList(items []string) {
	for _, item := range items {
		fmt.Printf("   • %s\n", item)
	}
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %-*s : %s\n", keyWidth, key, value)
}

// printJSON --json 출력
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ═══════════════════════════════════════════════════════════
// Report Printers
// ═══════════════════════════════════════════════════════════

func printModel(m *risk.ReturnModel) {
	fmt.Println("📐 Return Model")
	PrintKeyValue("Start price", money(m.StartPrice), 14)
	PrintKeyValue("Drift (ann.)", pct(m.DriftAnnualized*100), 14)
	PrintKeyValue("Vol (ann.)", pct(m.VolatilityAnnualized*100), 14)
	lookback := fmt.Sprintf("%d prices", m.ObservationsUsed)
	if m.LookbackClamped {
		lookback += fmt.Sprintf(" (requested %d, clamped)", m.LookbackRequested)
	}
	PrintKeyValue("Lookback", lookback, 14)
	fmt.Println()
}

func printSimulationReport(r *simulation.SimulationReport) {
	PrintReportHeader(ReportHeader{Title: "Monte Carlo Simulation", Metadata: r.Metadata})
	printModel(r.Parameters)

	s := r.Statistics
	fmt.Printf("📊 Terminal Distribution (%s, %d paths × %d days)\n", r.Config.Method, s.NumPaths, r.Config.HorizonDays)
	PrintKeyValue("Mean", money(s.Mean), 14)
	PrintKeyValue("Median", money(s.Median), 14)
	PrintKeyValue("Std dev", money(s.StdDev), 14)
	PrintKeyValue("Range", money(s.Min)+" ~ "+money(s.Max), 14)
	PrintKeyValue("Exp. return", pct(s.ExpectedReturnPct), 14)
	PrintKeyValue("P(profit)", pct(s.ProbabilityProfit*100), 14)
	fmt.Println()

	widths := []int{10, 14, 10}
	PrintTableHeader([]string{"Percentile", "Price", "Return"}, widths)
	for _, p := range r.Percentiles {
		PrintTableRow([]string{p.Label(), money(p.Price), pct(p.ReturnPct)}, widths)
	}
	PrintCompletion(r.Metadata)
}

func printRiskReport(r *simulation.RiskMetricsReport) {
	PrintReportHeader(ReportHeader{Title: "Value at Risk", Metadata: r.Metadata})
	printModel(r.Parameters)

	fmt.Printf("📉 Risk Metrics (%s, %d paths × %d days, position %s)\n",
		r.Config.Method, r.NumPaths, r.Config.HorizonDays, money(r.PositionValue))
	widths := []int{10, 10, 10, 14, 14, 10}
	PrintTableHeader([]string{"Level", "VaR", "CVaR", "VaR $", "CVaR $", "Tail"}, widths)

	var warnings []string
	for _, key := range sortedKeys(r.RiskMetrics) {
		lvl := r.RiskMetrics[key]
		PrintTableRow([]string{
			key, pct(lvl.VaRReturnPct), pct(lvl.CVaRReturnPct),
			money(lvl.VaRDollar), money(lvl.CVaRDollar), fmt.Sprintf("%d", lvl.TailPaths),
		}, widths)
		if lvl.Warning != "" {
			warnings = append(warnings, key+": "+lvl.Warning)
		}
	}
	if len(warnings) > 0 {
		fmt.Println()
		PrintList(warnings)
	}
	PrintCompletion(r.Metadata)
}

func printHistoricalReport(r *simulation.HistoricalReport) {
	PrintReportHeader(ReportHeader{Title: "Historical VaR", Metadata: r.Metadata})
	fmt.Printf("📉 %d daily returns (loss shown as positive)\n", r.Observations)

	widths := []int{10, 12, 12, 12, 12}
	PrintTableHeader([]string{"Level", "Hist VaR", "Hist CVaR", "Param VaR", "Param CVaR"}, widths)
	for _, key := range sortedKeys(r.Historical) {
		h, p := r.Historical[key], r.Parametric[key]
		PrintTableRow([]string{key, pct(h.VaR * 100), pct(h.CVaR * 100), pct(p.VaR * 100), pct(p.CVaR * 100)}, widths)
	}
	PrintCompletion(r.Metadata)
}

func printScenarioReport(r *simulation.ScenarioReport) {
	PrintReportHeader(ReportHeader{Title: "Stress Scenarios", Metadata: r.Metadata})
	printModel(r.Parameters)

	fmt.Printf("🌪  %d days, ensemble %d\n", r.HorizonDays, r.EnsembleSize)
	widths := []int{8, 14, 10, 10, 12, 12}
	PrintTableHeader([]string{"Scenario", "Final", "Return", "Max DD", "Drift/day", "Vol/day"}, widths)
	for _, s := range []risk.ScenarioResult{r.Bull, r.Base, r.Bear, r.Crash} {
		PrintTableRow([]string{
			string(s.Scenario), money(s.FinalPrice), pct(s.TotalReturnPct), pct(s.MaxDrawdownPct),
			fmt.Sprintf("%.5f", s.DriftDaily), fmt.Sprintf("%.5f", s.VolatilityDaily),
		}, widths)
	}
	PrintCompletion(r.Metadata)
}

func printCollectResults(results []collector.FetchResult, elapsed time.Duration) {
	widths := []int{10, 8, 8, 30}
	PrintTableHeader([]string{"Symbol", "Fetched", "Saved", "Status"}, widths)
	for _, r := range results {
		status := "ok"
		if r.Error != nil {
			status = r.Error.Error()
		}
		PrintTableRow([]string{r.Symbol, fmt.Sprintf("%d", r.Fetched), fmt.Sprintf("%d", r.Saved), status}, widths)
	}

	sum := collector.Summarize(results)
	fmt.Println()
	msg := fmt.Sprintf("%d/%d symbols, %d bars saved in %.2fs", sum.Success, sum.Total, sum.Saved, elapsed.Seconds())
	if sum.Failed > 0 {
		PrintError(msg)
		return
	}
	PrintSuccess(msg)
}

// ═══════════════════════════════════════════════════════════
// Helpers
// ═══════════════════════════════════════════════════════════

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func pct(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
