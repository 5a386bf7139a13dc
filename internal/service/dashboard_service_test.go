package service

import (
	"context"
	"errors"
	"testing"
	"time"
	"trading-dashboard/config"
	"trading-dashboard/internal/dto"
	"trading-dashboard/pkg/cache"
	"trading-dashboard/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePerformanceRepo struct {
	result    *dto.PerformanceResult
	err       error
	callCount int
}

func (f *fakePerformanceRepo) GetPerformance(ctx context.Context, days int) (*dto.PerformanceResult, error) {
	f.callCount++
	if f.err != nil {
		return nil, f.err
	}
	res := *f.result
	res.Days = days
	return &res, nil
}

type fakeStatusRepo struct {
	status    *dto.ORBStatus
	err       error
	callCount int
}

func (f *fakeStatusRepo) GetORBStatus(ctx context.Context) (*dto.ORBStatus, error) {
	f.callCount++
	if f.err != nil {
		return nil, f.err
	}
	return f.status, nil
}

type fakeSettingsRepo struct {
	theme    *dto.ThemePreference
	themeErr error
	saved    []dto.SettingsPatch
}

func (f *fakeSettingsRepo) GetSettings(ctx context.Context) (dto.SettingsPatch, error) {
	return dto.SettingsPatch{}, nil
}

func (f *fakeSettingsRepo) SaveSettings(ctx context.Context, patch dto.SettingsPatch) error {
	f.saved = append(f.saved, patch)
	return nil
}

func (f *fakeSettingsRepo) SaveTheme(ctx context.Context, pref dto.ThemePreference) error {
	f.theme = &pref
	return nil
}

func (f *fakeSettingsRepo) GetTheme(ctx context.Context) (*dto.ThemePreference, error) {
	if f.themeErr != nil {
		return nil, f.themeErr
	}
	return f.theme, nil
}

type fakeReplayRepo struct {
	lastConfig dto.ReplayConfig
	result     *dto.ReplayResult
}

func (f *fakeReplayRepo) RunReplay(ctx context.Context, cfg dto.ReplayConfig) (*dto.ReplayResult, error) {
	f.lastConfig = cfg
	return f.result, nil
}

func newTestDashboardService(perf *fakePerformanceRepo, status *fakeStatusRepo, settings *fakeSettingsRepo, replay *fakeReplayRepo) *dashboardService {
	cfg := &config.Config{}
	cfg.Cache.DefaultExpiration = time.Minute
	cfg.TradingAPI.DefaultDays = 30

	return &dashboardService{
		cfg:             cfg,
		log:             logger.NewNop(),
		performanceRepo: perf,
		statusRepo:      status,
		settingsRepo:    settings,
		replayRepo:      replay,
		inmemoryCache:   cache.NewCache(time.Minute, time.Minute),
	}
}

func TestDashboardService_GetDailyBars(t *testing.T) {
	perf := &fakePerformanceRepo{
		result: &dto.PerformanceResult{
			CumulativePnL: []float64{100, 80, 150, 130, 200},
		},
	}
	svc := newTestDashboardService(perf, &fakeStatusRepo{}, &fakeSettingsRepo{}, &fakeReplayRepo{})

	view, err := svc.GetDailyBars(context.Background(), 30)
	require.NoError(t, err)
	require.Len(t, view.Bars, 5)
	assert.Equal(t, 30, view.Days)
	assert.InDelta(t, 100.0, view.Bars[0].PnL, 1e-9)
	assert.InDelta(t, -20.0, view.Bars[1].PnL, 1e-9)
	assert.InDelta(t, 200.0, view.Bars[4].Cumulative, 1e-9)
	assert.Len(t, view.Geometry, 5)
}

func TestDashboardService_GetDailyBars_CachesPerformance(t *testing.T) {
	perf := &fakePerformanceRepo{
		result: &dto.PerformanceResult{CumulativePnL: []float64{10, 20, 30}},
	}
	svc := newTestDashboardService(perf, &fakeStatusRepo{}, &fakeSettingsRepo{}, &fakeReplayRepo{})

	_, err := svc.GetDailyBars(context.Background(), 30)
	require.NoError(t, err)
	_, err = svc.GetDailyBars(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, 1, perf.callCount)

	// A different lookback window is a separate cache entry.
	_, err = svc.GetDailyBars(context.Background(), 90)
	require.NoError(t, err)
	assert.Equal(t, 2, perf.callCount)
}

func TestDashboardService_GetSummary_StatusFailureDegrades(t *testing.T) {
	perf := &fakePerformanceRepo{
		result: &dto.PerformanceResult{
			Snapshot:      dto.MetricsSnapshot{WinRate: 0.55, TotalTrades: 42},
			CumulativePnL: []float64{50, 120},
		},
	}
	status := &fakeStatusRepo{err: errors.New("connection refused")}
	svc := newTestDashboardService(perf, status, &fakeSettingsRepo{}, &fakeReplayRepo{})

	view, err := svc.GetSummary(context.Background(), 30)
	require.NoError(t, err)
	assert.Nil(t, view.ORBStatus)
	assert.InDelta(t, 0.55, view.Snapshot.WinRate, 1e-9)
	require.Len(t, view.DailyBars.Bars, 2)
}

func TestDashboardService_GetSummary_IncludesStatus(t *testing.T) {
	perf := &fakePerformanceRepo{
		result: &dto.PerformanceResult{CumulativePnL: []float64{10, 20}},
	}
	status := &fakeStatusRepo{status: &dto.ORBStatus{State: dto.ORBStateInTrade, Ticker: "SPY"}}
	svc := newTestDashboardService(perf, status, &fakeSettingsRepo{}, &fakeReplayRepo{})

	view, err := svc.GetSummary(context.Background(), 30)
	require.NoError(t, err)
	require.NotNil(t, view.ORBStatus)
	assert.Equal(t, dto.ORBStateInTrade, view.ORBStatus.State)
}

func TestDashboardService_RefreshORBStatus_ReplacesCachedObject(t *testing.T) {
	status := &fakeStatusRepo{status: &dto.ORBStatus{State: dto.ORBStateWaiting}}
	svc := newTestDashboardService(&fakePerformanceRepo{}, status, &fakeSettingsRepo{}, &fakeReplayRepo{})

	got, err := svc.GetORBStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dto.ORBStateWaiting, got.State)

	status.status = &dto.ORBStatus{State: dto.ORBStateBreakout}
	require.NoError(t, svc.RefreshORBStatus(context.Background()))

	got, err = svc.GetORBStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dto.ORBStateBreakout, got.State)
	// First read hit the repo, refresh hit it again, second read was cached.
	assert.Equal(t, 2, status.callCount)
}

func TestDashboardService_RefreshORBStatus_FailedTickKeepsSnapshot(t *testing.T) {
	status := &fakeStatusRepo{status: &dto.ORBStatus{State: dto.ORBStateRangeSet}}
	svc := newTestDashboardService(&fakePerformanceRepo{}, status, &fakeSettingsRepo{}, &fakeReplayRepo{})

	require.NoError(t, svc.RefreshORBStatus(context.Background()))

	status.err = errors.New("upstream down")
	require.Error(t, svc.RefreshORBStatus(context.Background()))

	got, err := svc.GetORBStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dto.ORBStateRangeSet, got.State)
}

func TestDashboardService_GetTheme(t *testing.T) {
	settings := &fakeSettingsRepo{theme: &dto.ThemePreference{Mode: "light"}}
	svc := newTestDashboardService(&fakePerformanceRepo{}, &fakeStatusRepo{}, settings, &fakeReplayRepo{})

	tokens := svc.GetTheme(context.Background())
	assert.Equal(t, "light", tokens.Mode)

	settings.themeErr = errors.New("unavailable")
	tokens = svc.GetTheme(context.Background())
	assert.Equal(t, "dark", tokens.Mode)
}

func TestDashboardService_RunReplay_DefaultsDays(t *testing.T) {
	replay := &fakeReplayRepo{result: &dto.ReplayResult{}}
	svc := newTestDashboardService(&fakePerformanceRepo{}, &fakeStatusRepo{}, &fakeSettingsRepo{}, replay)

	_, err := svc.RunReplay(context.Background(), dto.ReplayConfig{})
	require.NoError(t, err)
	assert.Equal(t, 30, replay.lastConfig.Days)

	_, err = svc.RunReplay(context.Background(), dto.ReplayConfig{Days: 7})
	require.NoError(t, err)
	assert.Equal(t, 7, replay.lastConfig.Days)
}
