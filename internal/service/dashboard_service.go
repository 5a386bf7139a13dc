package service

import (
	"context"
	"strconv"
	"trading-dashboard/config"
	"trading-dashboard/internal/analytics"
	"trading-dashboard/internal/dto"
	"trading-dashboard/internal/repository"
	"trading-dashboard/internal/theme"
	"trading-dashboard/pkg/cache"
	"trading-dashboard/pkg/logger"

	"golang.org/x/sync/errgroup"
)

const (
	cacheKeyORBStatus   = "orb_status"
	cacheKeyPerformance = "performance"

	chartViewportWidth = 600.0
)

// DailyBarsView is the analytics chart payload: aggregated buckets plus
// the geometry the front end places them with.
type DailyBarsView struct {
	Days     int                     `json:"days"`
	Bars     []analytics.DailyBar    `json:"bars"`
	Geometry []analytics.BarGeometry `json:"geometry"`
}

// SummaryView is the analytics page payload.
type SummaryView struct {
	Days      int                 `json:"days"`
	Snapshot  dto.MetricsSnapshot `json:"snapshot"`
	DailyBars DailyBarsView       `json:"daily_bars"`
	ORBStatus *dto.ORBStatus      `json:"orb_status,omitempty"`
}

type DashboardService interface {
	GetDailyBars(ctx context.Context, days int) (*DailyBarsView, error)
	GetSummary(ctx context.Context, days int) (*SummaryView, error)
	GetORBStatus(ctx context.Context) (*dto.ORBStatus, error)
	RefreshORBStatus(ctx context.Context) error
	WarmPerformance(ctx context.Context) error
	GetSettings(ctx context.Context) (dto.SettingsPatch, error)
	GetTheme(ctx context.Context) theme.Tokens
	SaveTheme(ctx context.Context, pref dto.ThemePreference) error
	RunReplay(ctx context.Context, cfg dto.ReplayConfig) (*dto.ReplayResult, error)
}

type dashboardService struct {
	cfg             *config.Config
	log             *logger.Logger
	performanceRepo repository.PerformanceRepository
	statusRepo      repository.StatusRepository
	settingsRepo    repository.SettingsRepository
	replayRepo      repository.ReplayRepository
	inmemoryCache   cache.Cache
}

func NewDashboardService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	inmemoryCache cache.Cache,
) DashboardService {
	return &dashboardService{
		cfg:             cfg,
		log:             log,
		performanceRepo: repo.PerformanceRepo,
		statusRepo:      repo.StatusRepo,
		settingsRepo:    repo.SettingsRepo,
		replayRepo:      repo.ReplayRepo,
		inmemoryCache:   inmemoryCache,
	}
}

func (s *dashboardService) GetDailyBars(ctx context.Context, days int) (*DailyBarsView, error) {
	perf, err := s.getPerformance(ctx, days)
	if err != nil {
		return nil, err
	}
	return s.buildDailyBars(perf), nil
}

func (s *dashboardService) buildDailyBars(perf *dto.PerformanceResult) *DailyBarsView {
	bars := analytics.Aggregate(perf.CumulativePnL)
	return &DailyBarsView{
		Days:     perf.Days,
		Bars:     bars,
		Geometry: analytics.Layout(bars, chartViewportWidth),
	}
}

// GetSummary fans out to the performance and status collaborators
// concurrently. A status failure degrades the page (nil status), it does
// not fail the summary.
func (s *dashboardService) GetSummary(ctx context.Context, days int) (*SummaryView, error) {
	var (
		perf   *dto.PerformanceResult
		status *dto.ORBStatus
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		perf, err = s.getPerformance(gctx, days)
		return err
	})
	g.Go(func() error {
		st, err := s.GetORBStatus(gctx)
		if err != nil {
			s.log.WarnContext(gctx, "ORB status unavailable for summary", logger.ErrorField(err))
			return nil
		}
		status = st
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &SummaryView{
		Days:      days,
		Snapshot:  perf.Snapshot,
		DailyBars: *s.buildDailyBars(perf),
		ORBStatus: status,
	}, nil
}

func (s *dashboardService) getPerformance(ctx context.Context, days int) (*dto.PerformanceResult, error) {
	key := performanceCacheKey(days)
	if cached, ok := cache.GetTyped[*dto.PerformanceResult](s.inmemoryCache, key); ok {
		return cached, nil
	}

	perf, err := s.performanceRepo.GetPerformance(ctx, days)
	if err != nil {
		return nil, err
	}

	s.inmemoryCache.Set(key, perf, s.cfg.Cache.DefaultExpiration)
	return perf, nil
}

func performanceCacheKey(days int) string {
	return cacheKeyPerformance + ":" + strconv.Itoa(days)
}

// GetORBStatus serves the cached snapshot when present, falling back to a
// direct fetch. The cache always holds a whole ORBStatus, never a partial
// merge, so readers cannot observe interleaved old and new fields.
func (s *dashboardService) GetORBStatus(ctx context.Context) (*dto.ORBStatus, error) {
	if cached, ok := cache.GetTyped[*dto.ORBStatus](s.inmemoryCache, cacheKeyORBStatus); ok {
		return cached, nil
	}

	status, err := s.statusRepo.GetORBStatus(ctx)
	if err != nil {
		return nil, err
	}
	s.inmemoryCache.Set(cacheKeyORBStatus, status, s.cfg.Cache.DefaultExpiration)
	return status, nil
}

// RefreshORBStatus is the poll tick: fetch and atomically replace the
// cached object. A failed tick keeps the previous snapshot.
func (s *dashboardService) RefreshORBStatus(ctx context.Context) error {
	status, err := s.statusRepo.GetORBStatus(ctx)
	if err != nil {
		return err
	}
	s.inmemoryCache.Set(cacheKeyORBStatus, status, s.cfg.Cache.DefaultExpiration)
	return nil
}

// WarmPerformance pre-populates the default lookback window's metrics.
func (s *dashboardService) WarmPerformance(ctx context.Context) error {
	perf, err := s.performanceRepo.GetPerformance(ctx, s.cfg.TradingAPI.DefaultDays)
	if err != nil {
		return err
	}
	s.inmemoryCache.Set(performanceCacheKey(perf.Days), perf, s.cfg.Cache.DefaultExpiration)
	return nil
}

func (s *dashboardService) GetSettings(ctx context.Context) (dto.SettingsPatch, error) {
	return s.settingsRepo.GetSettings(ctx)
}

// GetTheme resolves the persisted mode upstream and returns its token set.
// An unavailable preference degrades to the default (dark) tokens.
func (s *dashboardService) GetTheme(ctx context.Context) theme.Tokens {
	pref, err := s.settingsRepo.GetTheme(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "Theme preference unavailable, using default", logger.ErrorField(err))
		return theme.ForMode("")
	}
	return theme.ForMode(pref.Mode)
}

func (s *dashboardService) SaveTheme(ctx context.Context, pref dto.ThemePreference) error {
	return s.settingsRepo.SaveTheme(ctx, pref)
}

func (s *dashboardService) RunReplay(ctx context.Context, cfg dto.ReplayConfig) (*dto.ReplayResult, error) {
	if cfg.Days <= 0 {
		cfg.Days = s.cfg.TradingAPI.DefaultDays
	}
	return s.replayRepo.RunReplay(ctx, cfg)
}
