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

type SettingsRepository interface {
	GetSettings(ctx context.Context) (dto.SettingsPatch, error)
	SaveSettings(ctx context.Context, patch dto.SettingsPatch) error
	SaveTheme(ctx context.Context, pref dto.ThemePreference) error
	GetTheme(ctx context.Context) (*dto.ThemePreference, error)
}

type okResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

type settingsAPIResponse struct {
	OK       bool              `json:"ok"`
	Error    string            `json:"error"`
	Settings dto.SettingsPatch `json:"settings"`
}

type themeAPIResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	Mode  string `json:"mode"`
}

type settingsRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

func NewSettingsRepository(cfg *config.Config, log *logger.Logger, client httpclient.HTTPClient) SettingsRepository {
	return &settingsRepository{
		httpClient:     client,
		cfg:            cfg,
		logger:         log,
		requestLimiter: newAPILimiter(cfg),
	}
}

func (r *settingsRepository) GetSettings(ctx context.Context) (dto.SettingsPatch, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	var respData settingsAPIResponse
	resp, err := r.httpClient.Get(ctx, "/api/settings", nil, nil, &respData)
	if err != nil {
		return nil, &FetchError{Op: "fetch user settings", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "Trading API returned Non-OK status for settings fetch",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", string(resp.Body)))
		return nil, fetchErr("fetch user settings", "trading api returned status: %d", resp.StatusCode)
	}
	if !respData.OK {
		return nil, fetchErr("fetch user settings", "trading api rejected request: %s", respData.Error)
	}
	return respData.Settings, nil
}

// SaveSettings persists the patch upstream. Only keys present in the patch
// change; everything else keeps its stored value.
func (r *settingsRepository) SaveSettings(ctx context.Context, patch dto.SettingsPatch) error {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return err
	}

	var respData okResponse
	resp, err := r.httpClient.Put(ctx, "/api/settings", patch, nil, &respData)
	if err != nil {
		return &FetchError{Op: "save user settings", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "Trading API returned Non-OK status for settings save",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", string(resp.Body)))
		return fetchErr("save user settings", "trading api returned status: %d", resp.StatusCode)
	}

	if !respData.OK {
		return fetchErr("save user settings", "trading api rejected request: %s", respData.Error)
	}
	return nil
}

func (r *settingsRepository) SaveTheme(ctx context.Context, pref dto.ThemePreference) error {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return err
	}

	var respData okResponse
	resp, err := r.httpClient.Put(ctx, "/api/settings/theme", pref, nil, &respData)
	if err != nil {
		return &FetchError{Op: "save theme preference", Err: err}
	}
	if resp.StatusCode != http.StatusOK || !respData.OK {
		return fetchErr("save theme preference", "trading api returned status %d: %s", resp.StatusCode, respData.Error)
	}
	return nil
}

func (r *settingsRepository) GetTheme(ctx context.Context) (*dto.ThemePreference, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	var respData themeAPIResponse
	resp, err := r.httpClient.Get(ctx, "/api/settings/theme", nil, nil, &respData)
	if err != nil {
		return nil, &FetchError{Op: "fetch theme preference", Err: err}
	}
	if resp.StatusCode != http.StatusOK || !respData.OK {
		return nil, fetchErr("fetch theme preference", "trading api returned status %d: %s", resp.StatusCode, respData.Error)
	}

	return &dto.ThemePreference{Mode: respData.Mode}, nil
}
