package optimize

import (
	"fmt"
	"math"

	"trading-dashboard/internal/dto"
)

// Changes smaller than this are rendered as "no change". Deliberate noise
// filter, matched to what the dashboard considers meaningful.
const deltaEpsilon = 0.001

// FormatDelta renders the change from previous to current as a signed
// string, or "" when the change is below the noise threshold. When
// higherIsBetter is false the sign is inverted before formatting, so an
// improvement always reads as a positive delta regardless of the metric's
// natural direction.
func FormatDelta(current, previous float64, asPercent, higherIsBetter bool) string {
	diff := current - previous
	if math.Abs(diff) < deltaEpsilon {
		return ""
	}
	if !higherIsBetter {
		diff = -diff
	}
	if asPercent {
		return fmt.Sprintf("%+.1f%%", diff)
	}
	return fmt.Sprintf("%+.2f", diff)
}

// TrialDeltas holds formatted metric changes between the latest trial and
// the one before it. Empty strings mean no meaningful change.
type TrialDeltas struct {
	WinRate        string `json:"win_rate,omitempty"`
	TotalReturnPct string `json:"total_return_pct,omitempty"`
	ProfitFactor   string `json:"profit_factor,omitempty"`
	FilteredTrades string `json:"filtered_trades,omitempty"`
}

// computeDeltas diffs the optimized snapshots of two comparisons. A nil
// previous comparison yields all-empty deltas (nothing to diff against).
func computeDeltas(current, previous *dto.BacktestComparison) TrialDeltas {
	if current == nil || previous == nil {
		return TrialDeltas{}
	}

	cur, prev := current.Optimized, previous.Optimized
	return TrialDeltas{
		WinRate:        FormatDelta(cur.WinRate, prev.WinRate, true, true),
		TotalReturnPct: FormatDelta(cur.TotalReturnPct, prev.TotalReturnPct, true, true),
		ProfitFactor:   FormatDelta(cur.ProfitFactor, prev.ProfitFactor, false, true),
		// fewer trades surviving the filters is the improvement here
		FilteredTrades: FormatDelta(float64(cur.FilteredTrades), float64(prev.FilteredTrades), false, false),
	}
}
