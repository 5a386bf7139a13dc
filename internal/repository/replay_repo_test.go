package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-dashboard/internal/dto"
	"trading-dashboard/pkg/logger"
)

func TestRunReplay_AttachesFilterStatsOnZeroTrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/replay", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"ok": true,
			"result": {"total_trades": 0, "win_rate": 0, "total_return_pct": 0},
			"filter_stats": {"sessions_scanned": 20, "ranges_formed": 18, "breakouts_seen": 6, "volume_passed": 0, "entered": 0}
		}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	repo := NewReplayRepository(cfg, logger.NewNop(), newTestClient(server.URL))

	result, err := repo.RunReplay(context.Background(), dto.ReplayConfig{Days: 20, MinVolumeRatio: 9})
	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalTrades)
	require.NotNil(t, result.Funnel)
	assert.Equal(t, 6, result.Funnel.BreakoutsSeen)
	assert.Equal(t, 0, result.Funnel.VolumePassed)
}

func TestRunReplay_WithTrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"ok": true,
			"result": {"total_trades": 14, "win_rate": 57.1, "total_return_pct": 4.8, "profit_factor": 1.7, "max_drawdown_pct": 2.1}
		}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	repo := NewReplayRepository(cfg, logger.NewNop(), newTestClient(server.URL))

	result, err := repo.RunReplay(context.Background(), dto.ReplayConfig{Days: 20})
	require.NoError(t, err)
	assert.Equal(t, 14, result.TotalTrades)
	assert.Nil(t, result.Funnel)
}
