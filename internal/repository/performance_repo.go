package repository

import (
	"context"
	"net/http"
	"strconv"
	"time"
	"trading-dashboard/config"
	"trading-dashboard/internal/dto"
	"trading-dashboard/pkg/httpclient"
	"trading-dashboard/pkg/logger"

	"golang.org/x/time/rate"
)

type PerformanceRepository interface {
	GetPerformance(ctx context.Context, days int) (*dto.PerformanceResult, error)
}

type performanceAPIResponse struct {
	OK             bool      `json:"ok"`
	Error          string    `json:"error"`
	CumulativePnL  []float64 `json:"cumulative_pnl"`
	WinRate        float64   `json:"win_rate"`
	TotalReturnPct float64   `json:"total_return_pct"`
	ProfitFactor   float64   `json:"profit_factor"`
	TotalTrades    int       `json:"total_trades"`
	FilteredTrades int       `json:"filtered_trades"`
}

type performanceRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

func NewPerformanceRepository(cfg *config.Config, log *logger.Logger, client httpclient.HTTPClient) PerformanceRepository {
	return &performanceRepository{
		httpClient:     client,
		cfg:            cfg,
		logger:         log,
		requestLimiter: newAPILimiter(cfg),
	}
}

func newAPILimiter(cfg *config.Config) *rate.Limiter {
	maxPerMin := cfg.TradingAPI.MaxRequestPerMin
	if maxPerMin <= 0 {
		maxPerMin = 60
	}
	secondsPerRequest := time.Minute / time.Duration(maxPerMin)
	return rate.NewLimiter(rate.Every(secondsPerRequest), 1)
}

func (r *performanceRepository) GetPerformance(ctx context.Context, days int) (*dto.PerformanceResult, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := "/api/performance"
	queryParams := map[string]string{
		"days": strconv.Itoa(days),
	}

	var respData performanceAPIResponse
	resp, err := r.httpClient.Get(ctx, endpoint, queryParams, nil, &respData)
	if err != nil {
		return nil, &FetchError{Op: "fetch performance metrics", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "Trading API returned Non-OK status for performance",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", string(resp.Body)))
		return nil, fetchErr("fetch performance metrics", "trading api returned status: %d", resp.StatusCode)
	}

	if !respData.OK {
		return nil, fetchErr("fetch performance metrics", "trading api rejected request: %s", respData.Error)
	}

	return &dto.PerformanceResult{
		Snapshot: dto.MetricsSnapshot{
			WinRate:        respData.WinRate,
			TotalReturnPct: respData.TotalReturnPct,
			ProfitFactor:   respData.ProfitFactor,
			TotalTrades:    respData.TotalTrades,
			FilteredTrades: respData.FilteredTrades,
		},
		CumulativePnL: respData.CumulativePnL,
		Days:          days,
	}, nil
}
