package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-dashboard/config"
	"trading-dashboard/internal/dto"
	"trading-dashboard/pkg/httpclient"
	"trading-dashboard/pkg/logger"
)

func testConfig(baseURL string) *config.Config {
	cfg := &config.Config{}
	cfg.TradingAPI.BaseURL = baseURL
	cfg.TradingAPI.MaxRequestPerMin = 6000
	return cfg
}

func newTestClient(baseURL string) httpclient.HTTPClient {
	return httpclient.New(baseURL, 0, "")
}

func TestRunBacktest_NormalizesOptimizedVariant(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/backtest", r.URL.Path)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, true, req["is_custom"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"ok": true,
			"current": {"win_rate": 52, "total_return_pct": 8.1, "profit_factor": 1.4, "total_trades": 120, "filtered_trades": 120},
			"optimized": {"win_rate": 58, "total_return_pct": 11.3, "profit_factor": 1.9, "total_trades": 120, "filtered_trades": 80},
			"trade_reduction_pct": 33.3
		}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	repo := NewBacktestRepository(cfg, logger.NewNop(), newTestClient(server.URL))

	result, err := repo.RunBacktest(context.Background(), dto.SettingsPatch{"min_volume_ratio": 1.5}, 30, true, "ORB")
	require.NoError(t, err)
	assert.InDelta(t, 58, result.Optimized.WinRate, 1e-9)
	assert.InDelta(t, 33.3, result.TradeReductionPct, 1e-9)
}

func TestRunBacktest_NormalizesProposedVariant(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"ok": true,
			"current": {"win_rate": 52},
			"proposed": {"win_rate": 58, "filtered_trades": 80},
			"trade_reduction_pct": 10
		}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	repo := NewBacktestRepository(cfg, logger.NewNop(), newTestClient(server.URL))

	result, err := repo.RunBacktest(context.Background(), dto.SettingsPatch{"x": 1}, 30, false, "ORB")
	require.NoError(t, err)
	assert.InDelta(t, 58, result.Optimized.WinRate, 1e-9)
	assert.Equal(t, 80, result.Optimized.FilteredTrades)
}

func TestRunBacktest_NotOKPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok": false, "error": "lookback too long"}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	repo := NewBacktestRepository(cfg, logger.NewNop(), newTestClient(server.URL))

	_, err := repo.RunBacktest(context.Background(), dto.SettingsPatch{"x": 1}, 400, true, "ORB")

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, fetchErr.Error(), "lookback too long")
}

func TestRunBacktest_MissingSnapshot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok": true, "current": {"win_rate": 52}}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	repo := NewBacktestRepository(cfg, logger.NewNop(), newTestClient(server.URL))

	_, err := repo.RunBacktest(context.Background(), dto.SettingsPatch{"x": 1}, 30, true, "ORB")

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
}

func TestRunBacktest_UpstreamStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	repo := NewBacktestRepository(cfg, logger.NewNop(), newTestClient(server.URL))

	_, err := repo.RunBacktest(context.Background(), dto.SettingsPatch{"x": 1}, 30, true, "ORB")

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, fetchErr.Error(), "500")
}
