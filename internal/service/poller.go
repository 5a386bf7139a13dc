package service

import (
	"context"
	"time"
	"trading-dashboard/config"
	"trading-dashboard/pkg/logger"
	"trading-dashboard/pkg/utils"

	"github.com/robfig/cron/v3"
)

// Poller drives the fixed-interval refetches: ORB status, the default
// performance window, and journal retention cleanup. Each tick replaces
// the cached object wholesale, so a reader either sees the old snapshot
// or the new one, never a blend.
type Poller struct {
	cfg  *config.Config
	log  *logger.Logger
	svc  *Service
	cron *cron.Cron
}

func NewPoller(cfg *config.Config, log *logger.Logger, svc *Service) *Poller {
	return &Poller{
		cfg:  cfg,
		log:  log,
		svc:  svc,
		cron: cron.New(),
	}
}

func (p *Poller) Start(ctx context.Context) error {
	if _, err := p.cron.AddFunc(p.cfg.Poller.StatusSpec, func() {
		if !utils.ShouldContinue(ctx, p.log) {
			return
		}
		if err := p.svc.DashboardService.RefreshORBStatus(ctx); err != nil {
			p.log.WarnContext(ctx, "ORB status poll failed, keeping previous snapshot", logger.ErrorField(err))
		}
	}); err != nil {
		return err
	}

	if _, err := p.cron.AddFunc(p.cfg.Poller.MetricsSpec, func() {
		if !utils.ShouldContinue(ctx, p.log) {
			return
		}
		if err := p.svc.DashboardService.WarmPerformance(ctx); err != nil {
			p.log.WarnContext(ctx, "Performance poll failed", logger.ErrorField(err))
		}
	}); err != nil {
		return err
	}

	if _, err := p.cron.AddFunc(p.cfg.Poller.CleanupSpec, func() {
		if !utils.ShouldContinue(ctx, p.log) {
			return
		}
		cutoff := time.Now().Add(-p.cfg.Poller.JournalRetention)
		deleted, err := p.svc.OptimizeService.CleanupJournal(ctx, cutoff)
		if err != nil {
			p.log.WarnContext(ctx, "Journal cleanup failed", logger.ErrorField(err))
			return
		}
		if deleted > 0 {
			p.log.InfoContext(ctx, "Journal cleanup completed", logger.IntField("deleted", int(deleted)))
		}
	}); err != nil {
		return err
	}

	p.cron.Start()
	p.log.Info("Poller started",
		logger.StringField("status_spec", p.cfg.Poller.StatusSpec),
		logger.StringField("metrics_spec", p.cfg.Poller.MetricsSpec),
		logger.StringField("cleanup_spec", p.cfg.Poller.CleanupSpec),
	)
	return nil
}

func (p *Poller) Stop() {
	stopCtx := p.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
		p.log.Warn("Timeout waiting for poller jobs to finish")
	}
	p.log.Info("Poller stopped")
}
