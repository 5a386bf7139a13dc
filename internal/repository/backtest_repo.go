package repository

import (
	"context"
	"net/http"
	"trading-dashboard/config"
	"trading-dashboard/internal/dto"
	"trading-dashboard/pkg/httpclient"
	"trading-dashboard/pkg/logger"

	"golang.org/x/time/rate"
)

type BacktestRepository interface {
	RunBacktest(ctx context.Context, patch dto.SettingsPatch, days int, isCustom bool, strategy string) (*dto.BacktestComparison, error)
}

type backtestAPIRequest struct {
	Settings dto.SettingsPatch `json:"settings"`
	Days     int               `json:"days"`
	IsCustom bool              `json:"is_custom"`
	Strategy string            `json:"strategy"`
}

// backtestAPIResponse mirrors the upstream payload. Older deployments emit
// the after-snapshot as `proposed`, newer ones as `optimized`; both are
// accepted and folded into one canonical shape in normalize.
type backtestAPIResponse struct {
	OK                bool                 `json:"ok"`
	Error             string               `json:"error"`
	Current           dto.MetricsSnapshot  `json:"current"`
	Optimized         *dto.MetricsSnapshot `json:"optimized"`
	Proposed          *dto.MetricsSnapshot `json:"proposed"`
	Improvement       *dto.MetricsDelta    `json:"improvement"`
	TradeReductionPct float64              `json:"trade_reduction_pct"`
}

// normalize maps the external schema's known variants onto the internal
// canonical comparison. Nil when neither variant is present.
func (r *backtestAPIResponse) normalize() *dto.BacktestComparison {
	after := r.Optimized
	if after == nil {
		after = r.Proposed
	}
	if after == nil {
		return nil
	}

	return &dto.BacktestComparison{
		Current:           r.Current,
		Optimized:         *after,
		Improvement:       r.Improvement,
		TradeReductionPct: r.TradeReductionPct,
	}
}

type backtestRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

func NewBacktestRepository(cfg *config.Config, log *logger.Logger, client httpclient.HTTPClient) BacktestRepository {
	return &backtestRepository{
		httpClient:     client,
		cfg:            cfg,
		logger:         log,
		requestLimiter: newAPILimiter(cfg),
	}
}

func (r *backtestRepository) RunBacktest(ctx context.Context, patch dto.SettingsPatch, days int, isCustom bool, strategy string) (*dto.BacktestComparison, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	body := backtestAPIRequest{
		Settings: patch,
		Days:     days,
		IsCustom: isCustom,
		Strategy: strategy,
	}

	var respData backtestAPIResponse
	resp, err := r.httpClient.Post(ctx, "/api/backtest", body, nil, &respData)
	if err != nil {
		return nil, &FetchError{Op: "run backtest", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "Trading API returned Non-OK status for backtest",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", string(resp.Body)))
		return nil, fetchErr("run backtest", "trading api returned status: %d", resp.StatusCode)
	}

	if !respData.OK {
		return nil, fetchErr("run backtest", "trading api rejected request: %s", respData.Error)
	}

	result := respData.normalize()
	if result == nil {
		return nil, fetchErr("run backtest", "response carries neither optimized nor proposed snapshot")
	}
	return result, nil
}
