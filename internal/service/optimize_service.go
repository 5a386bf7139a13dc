package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"trading-dashboard/config"
	"trading-dashboard/internal/dto"
	"trading-dashboard/internal/model"
	"trading-dashboard/internal/optimize"
	"trading-dashboard/internal/repository"
	"trading-dashboard/pkg/logger"
	"trading-dashboard/pkg/telegram"
	"trading-dashboard/pkg/utils"
)

type OptimizeService interface {
	View(ctx context.Context) (optimize.View, error)
	Refresh(ctx context.Context) error
	Toggle(settingName string)
	ToggleAll()
	Dismiss(ctx context.Context, settingName string)
	RunTrial(ctx context.Context, days int, strategy string) (*dto.BacktestComparison, error)
	ResetTrial(ctx context.Context) error
	Apply(ctx context.Context) (int, error)
	History(ctx context.Context) ([]model.TrialRecord, error)
	CleanupJournal(ctx context.Context, olderThan time.Time) (int64, error)
}

type optimizeService struct {
	cfg      *config.Config
	log      *logger.Logger
	engine   *optimize.Engine
	journal  repository.JournalRepository
	notifier *telegram.Notifier
}

// journalingSuggestionSource decorates the upstream suggestion client so
// every accepted/dismissed action is also journaled locally. Both sides
// are best-effort and independent.
type journalingSuggestionSource struct {
	repository.SuggestionRepository
	journal repository.JournalRepository
	log     *logger.Logger
}

func (j *journalingSuggestionSource) LogSuggestionAction(ctx context.Context, name string, current, suggested float64, action dto.SuggestionAction) error {
	if j.journal != nil {
		if err := j.journal.CreateSuggestionAction(ctx, &model.SuggestionActionRecord{
			SettingName:    name,
			CurrentValue:   current,
			SuggestedValue: suggested,
			Action:         string(action),
		}); err != nil {
			j.log.Warn("Failed to journal suggestion action", logger.ErrorField(err))
		}
	}
	return j.SuggestionRepository.LogSuggestionAction(ctx, name, current, suggested, action)
}

func NewOptimizeService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	notifier *telegram.Notifier,
) OptimizeService {
	source := &journalingSuggestionSource{
		SuggestionRepository: repo.SuggestionRepo,
		journal:              repo.JournalRepo,
		log:                  log,
	}
	engine := optimize.NewEngine(log, repo.BacktestRepo, repo.SettingsRepo, source, cfg.Optimize.PreselectConfidence)

	return &optimizeService{
		cfg:      cfg,
		log:      log,
		engine:   engine,
		journal:  repo.JournalRepo,
		notifier: notifier,
	}
}

// View returns the current engine snapshot, lazily loading suggestions on
// the first call.
func (s *optimizeService) View(ctx context.Context) (optimize.View, error) {
	view := s.engine.Snapshot()
	if view.Status != optimize.StatusLoading.String() {
		return view, nil
	}

	if err := s.Refresh(ctx); err != nil {
		return view, err
	}
	return s.engine.Snapshot(), nil
}

func (s *optimizeService) Refresh(ctx context.Context) error {
	return s.engine.Refresh(ctx, s.defaultDays(), s.defaultStrategy())
}

func (s *optimizeService) Toggle(settingName string) {
	s.engine.Toggle(settingName)
}

func (s *optimizeService) ToggleAll() {
	s.engine.ToggleAll()
}

func (s *optimizeService) Dismiss(ctx context.Context, settingName string) {
	s.engine.Dismiss(ctx, settingName)
}

func (s *optimizeService) RunTrial(ctx context.Context, days int, strategy string) (*dto.BacktestComparison, error) {
	if days <= 0 {
		days = s.defaultDays()
	}
	if strategy == "" {
		strategy = s.defaultStrategy()
	}

	patch := s.selectedPatch()
	result, err := s.engine.RunTrial(ctx, days, strategy)
	if err != nil {
		return nil, err
	}

	s.journalTrial(ctx, patch, result, days, strategy, true)
	s.notifyImprovement(ctx, result, strategy)
	return result, nil
}

// notifyImprovement announces a trial whose optimized snapshot beats the
// current one. Side channel only, never blocks the trial's caller.
func (s *optimizeService) notifyImprovement(ctx context.Context, result *dto.BacktestComparison, strategy string) {
	if s.notifier == nil || result.Optimized.WinRate <= result.Current.WinRate {
		return
	}

	msg := fmt.Sprintf("Trial for the %s strategy improved win rate from %.1f%% to %.1f%% (%.1f%% fewer trades)",
		strategy, result.Current.WinRate, result.Optimized.WinRate, result.TradeReductionPct)
	utils.GoSafe(func() {
		s.notifier.Notify(context.WithoutCancel(ctx), msg)
	})
}

func (s *optimizeService) ResetTrial(ctx context.Context) error {
	return s.engine.ResetTrial(ctx, s.defaultDays(), s.defaultStrategy())
}

func (s *optimizeService) Apply(ctx context.Context) (int, error) {
	count, err := s.engine.Apply(ctx, s.defaultDays(), s.defaultStrategy())
	if err != nil {
		return 0, err
	}

	if s.notifier != nil {
		msg := fmt.Sprintf("Applied %d suggested setting change(s) to the %s strategy", count, s.defaultStrategy())
		utils.GoSafe(func() {
			s.notifier.Notify(context.WithoutCancel(ctx), msg)
		})
	}
	return count, nil
}

func (s *optimizeService) History(ctx context.Context) ([]model.TrialRecord, error) {
	if s.journal == nil {
		return nil, nil
	}
	return s.journal.GetRecentTrials(ctx, s.cfg.Journal.HistoryLimit)
}

func (s *optimizeService) CleanupJournal(ctx context.Context, olderThan time.Time) (int64, error) {
	if s.journal == nil {
		return 0, nil
	}
	return s.journal.DeleteOlderThan(ctx, olderThan)
}

func (s *optimizeService) defaultDays() int {
	return s.cfg.TradingAPI.DefaultDays
}

func (s *optimizeService) defaultStrategy() string {
	return s.cfg.TradingAPI.DefaultStrategy
}

// selectedPatch rebuilds the patch the engine is about to trial, for
// journaling. Read before the trial so a concurrent toggle cannot skew
// the record.
func (s *optimizeService) selectedPatch() dto.SettingsPatch {
	view := s.engine.Snapshot()
	patch := make(dto.SettingsPatch, len(view.Selected))
	for _, sg := range view.Suggestions {
		if utils.ContainsString(view.Selected, sg.SettingName) {
			patch[sg.SettingName] = sg.SuggestedValue
		}
	}
	return patch
}

// journalTrial records a completed comparison. Best-effort: a journal
// failure is logged and never surfaces to the trial's caller.
func (s *optimizeService) journalTrial(ctx context.Context, patch dto.SettingsPatch, result *dto.BacktestComparison, days int, strategy string, isCustom bool) {
	if s.journal == nil {
		return
	}

	patchJSON, err := json.Marshal(patch)
	if err != nil {
		s.log.WarnContext(ctx, "Failed to encode trial patch for journal", logger.ErrorField(err))
		return
	}
	currentJSON, _ := json.Marshal(result.Current)
	optimizedJSON, _ := json.Marshal(result.Optimized)

	record := &model.TrialRecord{
		Strategy:          strategy,
		Days:              days,
		SettingsPatch:     patchJSON,
		CurrentSnapshot:   currentJSON,
		OptimizedSnapshot: optimizedJSON,
		TradeReductionPct: result.TradeReductionPct,
		IsCustom:          isCustom,
	}

	utils.GoSafe(func() {
		if err := s.journal.CreateTrial(context.WithoutCancel(ctx), record); err != nil {
			s.log.Warn("Failed to journal trial record", logger.ErrorField(err))
		}
	})
}
