package dto

// ReplayConfig is the independent what-if configuration for a historical
// cycle replay. Zero values mean "use the strategy default" upstream.
type ReplayConfig struct {
	Ticker          string  `json:"ticker,omitempty"`
	Days            int     `json:"days,omitempty" validate:"omitempty,gt=0"`
	RangeMinutes    int     `json:"range_minutes,omitempty"`
	MinVolumeRatio  float64 `json:"min_volume_ratio,omitempty"`
	StopLossPct     float64 `json:"stop_loss_pct,omitempty"`
	TakeProfitPct   float64 `json:"take_profit_pct,omitempty"`
	MaxTradesPerDay int     `json:"max_trades_per_day,omitempty"`
}

// ReplayFunnel breaks down where candidate trades were filtered out.
// Only present when a replay produced zero trades, as a diagnostic.
type ReplayFunnel struct {
	SessionsScanned int `json:"sessions_scanned"`
	RangesFormed    int `json:"ranges_formed"`
	BreakoutsSeen   int `json:"breakouts_seen"`
	VolumePassed    int `json:"volume_passed"`
	Entered         int `json:"entered"`
}

// ReplayResult aggregates the simulated trades of one replay run.
type ReplayResult struct {
	TotalTrades    int           `json:"total_trades"`
	WinRate        float64       `json:"win_rate"`
	TotalReturnPct float64       `json:"total_return_pct"`
	ProfitFactor   float64       `json:"profit_factor"`
	MaxDrawdownPct float64       `json:"max_drawdown_pct"`
	Funnel         *ReplayFunnel `json:"funnel,omitempty"`
}
