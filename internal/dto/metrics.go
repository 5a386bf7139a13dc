package dto

// MetricsSnapshot summarizes strategy performance over a lookback window.
type MetricsSnapshot struct {
	WinRate        float64 `json:"win_rate"`
	TotalReturnPct float64 `json:"total_return_pct"`
	ProfitFactor   float64 `json:"profit_factor"`
	TotalTrades    int     `json:"total_trades"`
	FilteredTrades int     `json:"filtered_trades"`
}

// MetricsDelta holds per-metric changes between two snapshots as reported
// by the backtest service.
type MetricsDelta struct {
	WinRate        float64 `json:"win_rate"`
	TotalReturnPct float64 `json:"total_return_pct"`
	ProfitFactor   float64 `json:"profit_factor"`
}

// BacktestComparison is the canonical before/after shape for a trial run.
// The upstream service emits the "after" snapshot under either `optimized`
// or `proposed`; normalization at the repository boundary folds both into
// Optimized.
type BacktestComparison struct {
	Current           MetricsSnapshot `json:"current"`
	Optimized         MetricsSnapshot `json:"optimized"`
	Improvement       *MetricsDelta   `json:"improvement,omitempty"`
	TradeReductionPct float64         `json:"trade_reduction_pct"`
}

// PerformanceResult is the upstream performance-metrics payload: summary
// stats plus the per-trade cumulative P&L series the daily-bar chart is
// built from.
type PerformanceResult struct {
	Snapshot      MetricsSnapshot
	CumulativePnL []float64
	Days          int
}
