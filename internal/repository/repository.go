package repository

import (
	"trading-dashboard/config"
	"trading-dashboard/pkg/httpclient"
	"trading-dashboard/pkg/logger"

	"gorm.io/gorm"
)

type Repository struct {
	PerformanceRepo PerformanceRepository
	SuggestionRepo  SuggestionRepository
	BacktestRepo    BacktestRepository
	SettingsRepo    SettingsRepository
	StatusRepo      StatusRepository
	ReplayRepo      ReplayRepository
	JournalRepo     JournalRepository
}

// NewRepository wires every collaborator client against one shared HTTP
// client for the trading API, plus the local journal store. db may be nil
// when journaling is disabled; JournalRepo is nil in that case.
func NewRepository(cfg *config.Config, db *gorm.DB, log *logger.Logger) *Repository {
	client := httpclient.New(cfg.TradingAPI.BaseURL, cfg.TradingAPI.Timeout, cfg.TradingAPI.Token)

	repo := &Repository{
		PerformanceRepo: NewPerformanceRepository(cfg, log, client),
		SuggestionRepo:  NewSuggestionRepository(cfg, log, client),
		BacktestRepo:    NewBacktestRepository(cfg, log, client),
		SettingsRepo:    NewSettingsRepository(cfg, log, client),
		StatusRepo:      NewStatusRepository(cfg, log, client),
		ReplayRepo:      NewReplayRepository(cfg, log, client),
	}
	if db != nil {
		repo.JournalRepo = NewJournalRepository(db)
	}
	return repo
}
