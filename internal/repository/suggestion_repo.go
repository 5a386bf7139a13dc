package repository

import (
	"context"
	"net/http"
	"strconv"
	"trading-dashboard/config"
	"trading-dashboard/internal/dto"
	"trading-dashboard/pkg/httpclient"
	"trading-dashboard/pkg/logger"

	"golang.org/x/time/rate"
)

type SuggestionRepository interface {
	GetSuggestions(ctx context.Context, days int, strategy string) ([]dto.Suggestion, error)
	LogSuggestionAction(ctx context.Context, name string, current, suggested float64, action dto.SuggestionAction) error
}

type suggestionsAPIResponse struct {
	OK          bool             `json:"ok"`
	Error       string           `json:"error"`
	Suggestions []dto.Suggestion `json:"suggestions"`
}

type suggestionActionRequest struct {
	SettingName    string  `json:"setting_name"`
	CurrentValue   float64 `json:"current_value"`
	SuggestedValue float64 `json:"suggested_value"`
	Action         string  `json:"action"`
}

type suggestionRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

func NewSuggestionRepository(cfg *config.Config, log *logger.Logger, client httpclient.HTTPClient) SuggestionRepository {
	return &suggestionRepository{
		httpClient:     client,
		cfg:            cfg,
		logger:         log,
		requestLimiter: newAPILimiter(cfg),
	}
}

func (r *suggestionRepository) GetSuggestions(ctx context.Context, days int, strategy string) ([]dto.Suggestion, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	queryParams := map[string]string{
		"days":     strconv.Itoa(days),
		"strategy": strategy,
	}

	var respData suggestionsAPIResponse
	resp, err := r.httpClient.Get(ctx, "/api/settings/suggestions", queryParams, nil, &respData)
	if err != nil {
		return nil, &FetchError{Op: "fetch settings suggestions", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "Trading API returned Non-OK status for suggestions",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", string(resp.Body)))
		return nil, fetchErr("fetch settings suggestions", "trading api returned status: %d", resp.StatusCode)
	}

	if !respData.OK {
		return nil, fetchErr("fetch settings suggestions", "trading api rejected request: %s", respData.Error)
	}

	return respData.Suggestions, nil
}

// LogSuggestionAction reports an accepted/dismissed decision upstream.
// Callers treat this as telemetry; the error is for their logs only.
func (r *suggestionRepository) LogSuggestionAction(ctx context.Context, name string, current, suggested float64, action dto.SuggestionAction) error {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return err
	}

	body := suggestionActionRequest{
		SettingName:    name,
		CurrentValue:   current,
		SuggestedValue: suggested,
		Action:         string(action),
	}

	resp, err := r.httpClient.Post(ctx, "/api/settings/suggestions/action", body, nil, nil)
	if err != nil {
		return &FetchError{Op: "log suggestion action", Err: err}
	}
	if !resp.IsSuccess() {
		return fetchErr("log suggestion action", "trading api returned status: %d", resp.StatusCode)
	}
	return nil
}
