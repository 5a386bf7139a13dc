package service

import (
	"trading-dashboard/config"
	"trading-dashboard/internal/repository"
	"trading-dashboard/pkg/cache"
	"trading-dashboard/pkg/logger"
	"trading-dashboard/pkg/telegram"
)

type Service struct {
	DashboardService DashboardService
	OptimizeService  OptimizeService
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	inmemoryCache cache.Cache,
	notifier *telegram.Notifier,
) *Service {
	return &Service{
		DashboardService: NewDashboardService(cfg, log, repo, inmemoryCache),
		OptimizeService:  NewOptimizeService(cfg, log, repo, notifier),
	}
}
