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

type StatusRepository interface {
	GetORBStatus(ctx context.Context) (*dto.ORBStatus, error)
}

type statusAPIResponse struct {
	OK     bool          `json:"ok"`
	Error  string        `json:"error"`
	Status dto.ORBStatus `json:"status"`
}

type statusRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

func NewStatusRepository(cfg *config.Config, log *logger.Logger, client httpclient.HTTPClient) StatusRepository {
	return &statusRepository{
		httpClient:     client,
		cfg:            cfg,
		logger:         log,
		requestLimiter: newAPILimiter(cfg),
	}
}

func (r *statusRepository) GetORBStatus(ctx context.Context) (*dto.ORBStatus, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	var respData statusAPIResponse
	resp, err := r.httpClient.Get(ctx, "/api/orb/status", nil, nil, &respData)
	if err != nil {
		return nil, &FetchError{Op: "fetch orb status", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "Trading API returned Non-OK status for orb status",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", string(resp.Body)))
		return nil, fetchErr("fetch orb status", "trading api returned status: %d", resp.StatusCode)
	}

	if !respData.OK {
		return nil, fetchErr("fetch orb status", "trading api rejected request: %s", respData.Error)
	}

	status := respData.Status
	return &status, nil
}
