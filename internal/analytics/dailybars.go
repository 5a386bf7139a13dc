package analytics

import "trading-dashboard/pkg/utils"

// MaxBars bounds how many buckets Aggregate emits regardless of how many
// trades the lookback window contains.
const MaxBars = 30

// DailyBar is one aggregated bucket of consecutive trades' net P&L.
type DailyBar struct {
	DayIndex   int     `json:"day_index"`
	PnL        float64 `json:"pnl"`
	Cumulative float64 `json:"cumulative"`
	TradeCount int     `json:"trade_count"`
}

// Aggregate converts a trade-ordered cumulative P&L series into at most
// MaxBars net-change buckets. The per-trade deltas are recovered from the
// running total (the first trade's delta is the first value itself), then
// summed over non-overlapping windows of ceil(len/MaxBars) trades. The last
// window may be shorter.
//
// The emitted PnL values sum to the series' final value up to float
// accumulation error, and the last bar's Cumulative equals the final value.
// Series shorter than two points carry no change to show and yield nil.
func Aggregate(series []float64) []DailyBar {
	if len(series) < 2 {
		return nil
	}

	deltas := make([]float64, len(series))
	deltas[0] = series[0]
	for i := 1; i < len(series); i++ {
		deltas[i] = series[i] - series[i-1]
	}

	tradesPerDay := utils.CeilDiv(len(series), MaxBars)
	if tradesPerDay < 1 {
		tradesPerDay = 1
	}

	bars := make([]DailyBar, 0, utils.CeilDiv(len(series), tradesPerDay))
	for start := 0; start < len(deltas); start += tradesPerDay {
		end := start + tradesPerDay
		if end > len(deltas) {
			end = len(deltas)
		}

		var pnl float64
		for _, d := range deltas[start:end] {
			pnl += d
		}

		bars = append(bars, DailyBar{
			DayIndex:   len(bars),
			PnL:        pnl,
			Cumulative: series[end-1],
			TradeCount: end - start,
		})
	}

	return bars
}
