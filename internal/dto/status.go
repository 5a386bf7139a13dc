package dto

// ORBStatus is the live state of the opening-range-breakout monitor as
// reported by the trading service. Polled on a fixed interval and cached
// as a whole object so readers never see a half-updated snapshot.
type ORBStatus struct {
	State         string  `json:"state"`
	Ticker        string  `json:"ticker"`
	SessionDate   string  `json:"session_date"`
	RangeHigh     float64 `json:"range_high"`
	RangeLow      float64 `json:"range_low"`
	LastPrice     float64 `json:"last_price"`
	PositionOpen  bool    `json:"position_open"`
	PositionSide  string  `json:"position_side"`
	UnrealizedPnL float64 `json:"unrealized_pnl"`
	TradesToday   int     `json:"trades_today"`
	UpdatedAt     string  `json:"updated_at"`
}

const (
	ORBStateWaiting  = "waiting"
	ORBStateRangeSet = "range_set"
	ORBStateBreakout = "breakout"
	ORBStateInTrade  = "in_trade"
	ORBStateClosed   = "closed"
	ORBStateHalted   = "halted"
)
