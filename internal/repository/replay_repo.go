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

type ReplayRepository interface {
	RunReplay(ctx context.Context, cfg dto.ReplayConfig) (*dto.ReplayResult, error)
}

type replayAPIResponse struct {
	OK     bool             `json:"ok"`
	Error  string           `json:"error"`
	Result dto.ReplayResult `json:"result"`
	// emitted only when the replay produced zero trades
	FilterStats *dto.ReplayFunnel `json:"filter_stats"`
	Funnel      *dto.ReplayFunnel `json:"funnel"`
}

type replayRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

func NewReplayRepository(cfg *config.Config, log *logger.Logger, client httpclient.HTTPClient) ReplayRepository {
	return &replayRepository{
		httpClient:     client,
		cfg:            cfg,
		logger:         log,
		requestLimiter: newAPILimiter(cfg),
	}
}

// RunReplay runs a what-if historical replay with an independent config
// object. When no trades result, the upstream diagnostic funnel (sent as
// either `filter_stats` or `funnel`) is attached to the result.
func (r *replayRepository) RunReplay(ctx context.Context, cfg dto.ReplayConfig) (*dto.ReplayResult, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	var respData replayAPIResponse
	resp, err := r.httpClient.Post(ctx, "/api/replay", cfg, nil, &respData)
	if err != nil {
		return nil, &FetchError{Op: "run cycle replay", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "Trading API returned Non-OK status for replay",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", string(resp.Body)))
		return nil, fetchErr("run cycle replay", "trading api returned status: %d", resp.StatusCode)
	}

	if !respData.OK {
		return nil, fetchErr("run cycle replay", "trading api rejected request: %s", respData.Error)
	}

	result := respData.Result
	if result.TotalTrades == 0 && result.Funnel == nil {
		if respData.FilterStats != nil {
			result.Funnel = respData.FilterStats
		} else if respData.Funnel != nil {
			result.Funnel = respData.Funnel
		}
	}
	return &result, nil
}
