package optimize

import (
	"context"
	"sync"

	"trading-dashboard/internal/dto"
	"trading-dashboard/pkg/logger"
	"trading-dashboard/pkg/utils"
)

// Collaborator boundaries. Implemented by the API-client repositories;
// narrowed here so the engine can be exercised against fakes.

type BacktestRunner interface {
	RunBacktest(ctx context.Context, patch dto.SettingsPatch, days int, isCustom bool, strategy string) (*dto.BacktestComparison, error)
}

type SettingsSaver interface {
	SaveSettings(ctx context.Context, patch dto.SettingsPatch) error
}

type SuggestionSource interface {
	GetSuggestions(ctx context.Context, days int, strategy string) ([]dto.Suggestion, error)
	LogSuggestionAction(ctx context.Context, name string, current, suggested float64, action dto.SuggestionAction) error
}

// ViewStatus is the optimize view's lifecycle state. Exactly one state
// holds at a time; trial and apply are mutually exclusive.
type ViewStatus int

const (
	StatusLoading ViewStatus = iota
	StatusIdle
	StatusTrialRunning
	StatusApplying
)

func (s ViewStatus) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusIdle:
		return "idle"
	case StatusTrialRunning:
		return "trial_running"
	case StatusApplying:
		return "applying"
	default:
		return "unknown"
	}
}

// Engine tracks which server-proposed setting changes are selected,
// mediates trial backtests for the selection, and keeps the previous
// trial around to diff against the latest one.
//
// Invariant: the selected set is always a subset of the current suggestion
// names, and a failed collaborator call never leaves selection or
// suggestions inconsistent with the last successful operation. Telemetry
// calls are the one deliberate exception: they are fire-and-forget.
type Engine struct {
	log       *logger.Logger
	backtests BacktestRunner
	settings  SettingsSaver
	source    SuggestionSource

	// preselect is the confidence floor for auto-selecting fresh
	// suggestions on load.
	preselect float64

	mu               sync.Mutex
	suggestions      []dto.Suggestion
	selected         map[string]struct{}
	lastBacktest     *dto.BacktestComparison
	previousBacktest *dto.BacktestComparison
	isCustomTrial    bool
	status           ViewStatus

	// trialSeq tags each issued trial and baseline reload; a response
	// whose tag is no longer the latest issued is discarded instead of
	// overwriting a newer one.
	trialSeq uint64
}

func NewEngine(log *logger.Logger, backtests BacktestRunner, settings SettingsSaver, source SuggestionSource, preselectConfidence float64) *Engine {
	return &Engine{
		log:       log,
		backtests: backtests,
		settings:  settings,
		source:    source,
		preselect: preselectConfidence,
		selected:  make(map[string]struct{}),
		status:    StatusLoading,
	}
}

// LoadSuggestions replaces the suggestion list and resets the selection to
// the high-confidence subset. The last trial comparison is left untouched.
func (e *Engine) LoadSuggestions(suggestions []dto.Suggestion) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.suggestions = suggestions
	e.selected = make(map[string]struct{}, len(suggestions))
	for _, s := range suggestions {
		if s.Confidence >= e.preselect {
			e.selected[s.SettingName] = struct{}{}
		}
	}
	if e.status == StatusLoading {
		e.status = StatusIdle
	}
}

// Refresh reloads suggestions from the collaborator and applies
// LoadSuggestions semantics to the result.
func (e *Engine) Refresh(ctx context.Context, days int, strategy string) error {
	suggestions, err := e.source.GetSuggestions(ctx, days, strategy)
	if err != nil {
		return err
	}
	e.LoadSuggestions(suggestions)
	return nil
}

// Toggle flips membership of settingName in the selection. Toggling a name
// absent from the current suggestion list is a no-op, keeping the
// selection-subset invariant.
func (e *Engine) Toggle(settingName string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.findSuggestion(settingName) == nil {
		return
	}

	if _, ok := e.selected[settingName]; ok {
		delete(e.selected, settingName)
	} else {
		e.selected[settingName] = struct{}{}
	}
}

// ToggleAll selects every suggestion, or clears the selection if every
// suggestion is already selected.
func (e *Engine) ToggleAll() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.selected) == len(e.suggestions) {
		e.selected = make(map[string]struct{})
		return
	}
	for _, s := range e.suggestions {
		e.selected[s.SettingName] = struct{}{}
	}
}

// Dismiss removes the named suggestion from both the list and the
// selection, then logs the dismissal in the background. Local removal is
// authoritative: a telemetry failure is swallowed.
func (e *Engine) Dismiss(ctx context.Context, settingName string) {
	e.mu.Lock()
	var dismissed *dto.Suggestion
	kept := e.suggestions[:0]
	for i := range e.suggestions {
		if e.suggestions[i].SettingName == settingName {
			s := e.suggestions[i]
			dismissed = &s
			continue
		}
		kept = append(kept, e.suggestions[i])
	}
	e.suggestions = kept
	delete(e.selected, settingName)
	e.mu.Unlock()

	if dismissed == nil {
		return
	}

	e.logAction(ctx, dismissed.SettingName, dismissed.CurrentValue, dismissed.SuggestedValue, dto.SuggestionDismissed)
}

// RunTrial evaluates the current selection against historical data without
// persisting anything. With an empty selection it performs no network call
// and leaves the last comparison untouched. On success the prior
// comparison shifts into previousBacktest for delta display; on failure a
// BacktestError is returned and state is unchanged.
func (e *Engine) RunTrial(ctx context.Context, days int, strategy string) (*dto.BacktestComparison, error) {
	e.mu.Lock()
	if e.status == StatusApplying {
		e.mu.Unlock()
		return nil, ErrBusy
	}
	patch := e.selectedPatchLocked()
	if len(patch) == 0 {
		e.mu.Unlock()
		return nil, ErrEmptySelection
	}
	e.trialSeq++
	seq := e.trialSeq
	e.status = StatusTrialRunning
	e.mu.Unlock()

	result, err := e.backtests.RunBacktest(ctx, patch, days, true, strategy)

	e.mu.Lock()
	defer e.mu.Unlock()

	if seq != e.trialSeq {
		// a newer trial was issued while this one was in flight
		e.log.WarnContext(ctx, "Discarding stale trial response",
			logger.IntField("seq", int(seq)),
			logger.IntField("latest", int(e.trialSeq)),
		)
		return nil, ErrStaleTrial
	}
	e.status = StatusIdle
	if err != nil {
		return nil, &BacktestError{Err: err}
	}

	if e.lastBacktest != nil {
		e.previousBacktest = e.lastBacktest
	}
	e.lastBacktest = result
	e.isCustomTrial = true
	return result, nil
}

// ResetTrial discards local trial state and reloads the baseline
// comparison (the full suggestion set, non-custom) from the collaborator.
// The reload carries the same sequence tag discipline as RunTrial, so a
// baseline response landing after a newer trial is discarded instead of
// overwriting it.
func (e *Engine) ResetTrial(ctx context.Context, days int, strategy string) error {
	e.mu.Lock()
	if e.status == StatusApplying || e.status == StatusTrialRunning {
		e.mu.Unlock()
		return ErrBusy
	}
	e.previousBacktest = nil
	e.isCustomTrial = false
	patch := e.fullPatchLocked()
	if len(patch) == 0 {
		e.lastBacktest = nil
		e.mu.Unlock()
		return nil
	}
	e.trialSeq++
	seq := e.trialSeq
	e.mu.Unlock()

	result, err := e.backtests.RunBacktest(ctx, patch, days, false, strategy)

	e.mu.Lock()
	defer e.mu.Unlock()

	if seq != e.trialSeq {
		e.log.WarnContext(ctx, "Discarding stale baseline response",
			logger.IntField("seq", int(seq)),
			logger.IntField("latest", int(e.trialSeq)),
		)
		return ErrStaleTrial
	}
	if err != nil {
		return &BacktestError{Err: err}
	}

	e.lastBacktest = result
	return nil
}

// Apply persists the selected changes, logs an accepted action per item in
// the background, clears the selection, and reloads suggestions plus the
// baseline comparison. A failed save returns an ApplyError with the
// selection intact for retry; failures past the save are logged only.
func (e *Engine) Apply(ctx context.Context, days int, strategy string) (int, error) {
	e.mu.Lock()
	if e.status == StatusApplying || e.status == StatusTrialRunning {
		e.mu.Unlock()
		return 0, ErrBusy
	}
	patch := e.selectedPatchLocked()
	if len(patch) == 0 {
		e.mu.Unlock()
		return 0, ErrEmptySelection
	}
	applied := e.selectedSuggestionsLocked()
	e.status = StatusApplying
	e.mu.Unlock()

	err := e.settings.SaveSettings(ctx, patch)

	e.mu.Lock()
	if e.status == StatusApplying {
		e.status = StatusIdle
	}
	if err != nil {
		e.mu.Unlock()
		return 0, &ApplyError{Err: err}
	}
	e.selected = make(map[string]struct{})
	e.isCustomTrial = false
	e.previousBacktest = nil
	e.mu.Unlock()

	for _, s := range applied {
		e.logAction(ctx, s.SettingName, s.CurrentValue, s.SuggestedValue, dto.SuggestionAccepted)
	}

	if err := e.Refresh(ctx, days, strategy); err != nil {
		e.log.WarnContext(ctx, "Failed to reload suggestions after apply", logger.ErrorField(err))
	}
	if err := e.ResetTrial(ctx, days, strategy); err != nil {
		e.log.WarnContext(ctx, "Failed to reload baseline after apply", logger.ErrorField(err))
	}

	return len(applied), nil
}

// View is an immutable snapshot of engine state for rendering.
type View struct {
	Suggestions      []dto.Suggestion        `json:"suggestions"`
	Selected         []string                `json:"selected"`
	LastBacktest     *dto.BacktestComparison `json:"last_backtest,omitempty"`
	PreviousBacktest *dto.BacktestComparison `json:"previous_backtest,omitempty"`
	IsCustomTrial    bool                    `json:"is_custom_trial"`
	Status           string                  `json:"status"`
	Deltas           TrialDeltas             `json:"deltas"`
}

// Snapshot copies current state. Selected preserves suggestion order.
func (e *Engine) Snapshot() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	suggestions := make([]dto.Suggestion, len(e.suggestions))
	copy(suggestions, e.suggestions)

	selected := make([]string, 0, len(e.selected))
	for _, s := range e.suggestions {
		if _, ok := e.selected[s.SettingName]; ok {
			selected = append(selected, s.SettingName)
		}
	}

	return View{
		Suggestions:      suggestions,
		Selected:         selected,
		LastBacktest:     e.lastBacktest,
		PreviousBacktest: e.previousBacktest,
		IsCustomTrial:    e.isCustomTrial,
		Status:           e.status.String(),
		Deltas:           computeDeltas(e.lastBacktest, e.previousBacktest),
	}
}

func (e *Engine) findSuggestion(settingName string) *dto.Suggestion {
	for i := range e.suggestions {
		if e.suggestions[i].SettingName == settingName {
			return &e.suggestions[i]
		}
	}
	return nil
}

func (e *Engine) selectedPatchLocked() dto.SettingsPatch {
	patch := make(dto.SettingsPatch, len(e.selected))
	for _, s := range e.suggestions {
		if _, ok := e.selected[s.SettingName]; ok {
			patch[s.SettingName] = s.SuggestedValue
		}
	}
	return patch
}

func (e *Engine) fullPatchLocked() dto.SettingsPatch {
	patch := make(dto.SettingsPatch, len(e.suggestions))
	for _, s := range e.suggestions {
		patch[s.SettingName] = s.SuggestedValue
	}
	return patch
}

func (e *Engine) selectedSuggestionsLocked() []dto.Suggestion {
	out := make([]dto.Suggestion, 0, len(e.selected))
	for _, s := range e.suggestions {
		if _, ok := e.selected[s.SettingName]; ok {
			out = append(out, s)
		}
	}
	return out
}

// logAction reports a user decision on a suggestion. Best-effort side
// channel: runs detached, failures are logged and never propagated.
func (e *Engine) logAction(ctx context.Context, name string, current, suggested float64, action dto.SuggestionAction) {
	utils.GoSafe(func() {
		if err := e.source.LogSuggestionAction(context.WithoutCancel(ctx), name, current, suggested, action); err != nil {
			e.log.Warn("Failed to log suggestion action",
				logger.StringField("setting_name", name),
				logger.FloatField("suggested_value", suggested),
				logger.StringField("action", string(action)),
				logger.ErrorField(err),
			)
		}
	})
}
