package optimize

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-dashboard/internal/dto"
	"trading-dashboard/pkg/logger"
)

type fakeBacktests struct {
	mu      sync.Mutex
	calls   int
	patches []dto.SettingsPatch
	results []*dto.BacktestComparison
	err     error
	block   chan struct{}
}

func (f *fakeBacktests) RunBacktest(ctx context.Context, patch dto.SettingsPatch, days int, isCustom bool, strategy string) (*dto.BacktestComparison, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.patches = append(f.patches, patch)
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) > 0 {
		return f.results[(call-1)%len(f.results)], nil
	}
	return &dto.BacktestComparison{}, nil
}

func (f *fakeBacktests) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSettings struct {
	mu      sync.Mutex
	patches []dto.SettingsPatch
	err     error
}

func (f *fakeSettings) SaveSettings(ctx context.Context, patch dto.SettingsPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.patches = append(f.patches, patch)
	return nil
}

type fakeSource struct {
	mu          sync.Mutex
	suggestions []dto.Suggestion
	actions     []string
	logErr      error
}

func (f *fakeSource) GetSuggestions(ctx context.Context, days int, strategy string) ([]dto.Suggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.suggestions, nil
}

func (f *fakeSource) LogSuggestionAction(ctx context.Context, name string, current, suggested float64, action dto.SuggestionAction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.logErr != nil {
		return f.logErr
	}
	f.actions = append(f.actions, name+":"+string(action))
	return nil
}

func (f *fakeSource) loggedActions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.actions))
	copy(out, f.actions)
	return out
}

func suggestionFixture() []dto.Suggestion {
	return []dto.Suggestion{
		{SettingName: "min_volume_ratio", CurrentValue: 1.0, SuggestedValue: 1.5, Confidence: 0.9},
		{SettingName: "stop_loss_pct", CurrentValue: 2.0, SuggestedValue: 1.5, Confidence: 0.5},
		{SettingName: "range_minutes", CurrentValue: 15, SuggestedValue: 30, Confidence: 0.75},
	}
}

func newTestEngine(backtests *fakeBacktests, settings *fakeSettings, source *fakeSource) *Engine {
	return NewEngine(logger.NewNop(), backtests, settings, source, 0.7)
}

func TestLoadSuggestions_PreselectsHighConfidence(t *testing.T) {
	e := newTestEngine(&fakeBacktests{}, &fakeSettings{}, &fakeSource{})
	e.LoadSuggestions(suggestionFixture())

	view := e.Snapshot()
	assert.Equal(t, []string{"min_volume_ratio", "range_minutes"}, view.Selected)
	assert.Equal(t, "idle", view.Status)
	assert.Nil(t, view.LastBacktest)
}

func TestToggle(t *testing.T) {
	e := newTestEngine(&fakeBacktests{}, &fakeSettings{}, &fakeSource{})
	e.LoadSuggestions(suggestionFixture())

	e.Toggle("min_volume_ratio")
	assert.NotContains(t, e.Snapshot().Selected, "min_volume_ratio")

	e.Toggle("min_volume_ratio")
	assert.Contains(t, e.Snapshot().Selected, "min_volume_ratio")

	// unknown names are ignored, the selection stays a subset of the list
	before := e.Snapshot().Selected
	e.Toggle("does_not_exist")
	assert.Equal(t, before, e.Snapshot().Selected)
}

func TestToggleAll(t *testing.T) {
	e := newTestEngine(&fakeBacktests{}, &fakeSettings{}, &fakeSource{})
	e.LoadSuggestions(suggestionFixture())

	e.ToggleAll()
	assert.Len(t, e.Snapshot().Selected, 3)

	e.ToggleAll()
	assert.Empty(t, e.Snapshot().Selected)
}

func TestDismiss(t *testing.T) {
	source := &fakeSource{}
	e := newTestEngine(&fakeBacktests{}, &fakeSettings{}, source)
	e.LoadSuggestions(suggestionFixture())

	// dismissing an unselected suggestion is safe
	e.Dismiss(context.Background(), "stop_loss_pct")
	view := e.Snapshot()
	assert.Len(t, view.Suggestions, 2)
	assert.Equal(t, []string{"min_volume_ratio", "range_minutes"}, view.Selected)

	e.Dismiss(context.Background(), "min_volume_ratio")
	view = e.Snapshot()
	assert.Len(t, view.Suggestions, 1)
	assert.Equal(t, []string{"range_minutes"}, view.Selected)

	assert.Eventually(t, func() bool {
		return len(source.loggedActions()) == 2
	}, time.Second, 10*time.Millisecond)
	assert.Contains(t, source.loggedActions(), "stop_loss_pct:dismissed")
}

func TestDismiss_LogFailureDoesNotBlockRemoval(t *testing.T) {
	source := &fakeSource{logErr: errors.New("telemetry down")}
	e := newTestEngine(&fakeBacktests{}, &fakeSettings{}, source)
	e.LoadSuggestions(suggestionFixture())

	e.Dismiss(context.Background(), "min_volume_ratio")
	assert.Len(t, e.Snapshot().Suggestions, 2)
}

func TestRunTrial_EmptySelectionIsNoOp(t *testing.T) {
	backtests := &fakeBacktests{}
	e := newTestEngine(backtests, &fakeSettings{}, &fakeSource{})
	e.LoadSuggestions(nil)

	_, err := e.RunTrial(context.Background(), 30, "ORB")
	assert.ErrorIs(t, err, ErrEmptySelection)
	assert.Equal(t, 0, backtests.callCount())
	assert.Nil(t, e.Snapshot().LastBacktest)
}

func TestRunTrial_ShiftsPreviousBacktest(t *testing.T) {
	first := &dto.BacktestComparison{Optimized: dto.MetricsSnapshot{WinRate: 55}}
	second := &dto.BacktestComparison{Optimized: dto.MetricsSnapshot{WinRate: 60}}
	backtests := &fakeBacktests{results: []*dto.BacktestComparison{first, second}}
	e := newTestEngine(backtests, &fakeSettings{}, &fakeSource{})
	e.LoadSuggestions(suggestionFixture())

	got, err := e.RunTrial(context.Background(), 30, "ORB")
	require.NoError(t, err)
	assert.Same(t, first, got)

	view := e.Snapshot()
	assert.Same(t, first, view.LastBacktest)
	assert.Nil(t, view.PreviousBacktest, "nothing to diff against after the first trial")
	assert.True(t, view.IsCustomTrial)

	_, err = e.RunTrial(context.Background(), 30, "ORB")
	require.NoError(t, err)

	view = e.Snapshot()
	assert.Same(t, second, view.LastBacktest)
	assert.Same(t, first, view.PreviousBacktest)
}

func TestRunTrial_PatchUsesSuggestedValues(t *testing.T) {
	backtests := &fakeBacktests{}
	e := newTestEngine(backtests, &fakeSettings{}, &fakeSource{})
	e.LoadSuggestions(suggestionFixture())

	_, err := e.RunTrial(context.Background(), 30, "ORB")
	require.NoError(t, err)

	require.Len(t, backtests.patches, 1)
	assert.Equal(t, dto.SettingsPatch{
		"min_volume_ratio": 1.5,
		"range_minutes":    30,
	}, backtests.patches[0])
}

func TestRunTrial_FailureLeavesStateUnchanged(t *testing.T) {
	backtests := &fakeBacktests{err: errors.New("upstream 500")}
	e := newTestEngine(backtests, &fakeSettings{}, &fakeSource{})
	e.LoadSuggestions(suggestionFixture())

	_, err := e.RunTrial(context.Background(), 30, "ORB")

	var btErr *BacktestError
	require.ErrorAs(t, err, &btErr)

	view := e.Snapshot()
	assert.Nil(t, view.LastBacktest)
	assert.False(t, view.IsCustomTrial)
	assert.Equal(t, "idle", view.Status)
}

func TestRunTrial_StaleResponseDiscarded(t *testing.T) {
	first := &dto.BacktestComparison{Optimized: dto.MetricsSnapshot{WinRate: 55}}
	block := make(chan struct{})
	backtests := &fakeBacktests{results: []*dto.BacktestComparison{first}, block: block}
	e := newTestEngine(backtests, &fakeSettings{}, &fakeSource{})
	e.LoadSuggestions(suggestionFixture())

	slowDone := make(chan error, 1)
	go func() {
		_, err := e.RunTrial(context.Background(), 30, "ORB")
		slowDone <- err
	}()

	require.Eventually(t, func() bool {
		return backtests.callCount() == 1
	}, time.Second, 5*time.Millisecond)

	// second trial supersedes the blocked first one
	backtests.mu.Lock()
	backtests.block = nil
	backtests.mu.Unlock()
	fastResult, err := e.RunTrial(context.Background(), 30, "ORB")
	require.NoError(t, err)

	close(block)
	assert.ErrorIs(t, <-slowDone, ErrStaleTrial)

	view := e.Snapshot()
	assert.Same(t, fastResult, view.LastBacktest, "stale response must not overwrite the newer one")
}

func TestResetTrial_StaleBaselineDiscarded(t *testing.T) {
	baseline := &dto.BacktestComparison{Optimized: dto.MetricsSnapshot{WinRate: 50}}
	trial := &dto.BacktestComparison{Optimized: dto.MetricsSnapshot{WinRate: 60}}
	block := make(chan struct{})
	backtests := &fakeBacktests{results: []*dto.BacktestComparison{baseline, trial}, block: block}
	e := newTestEngine(backtests, &fakeSettings{}, &fakeSource{})
	e.LoadSuggestions(suggestionFixture())

	resetDone := make(chan error, 1)
	go func() {
		resetDone <- e.ResetTrial(context.Background(), 30, "ORB")
	}()

	require.Eventually(t, func() bool {
		return backtests.callCount() == 1
	}, time.Second, 5*time.Millisecond)

	// a trial issued and completed while the baseline reload is in flight
	backtests.mu.Lock()
	backtests.block = nil
	backtests.mu.Unlock()
	trialResult, err := e.RunTrial(context.Background(), 30, "ORB")
	require.NoError(t, err)
	require.Same(t, trial, trialResult)

	close(block)
	assert.ErrorIs(t, <-resetDone, ErrStaleTrial)

	view := e.Snapshot()
	assert.Same(t, trial, view.LastBacktest, "stale baseline must not overwrite the newer trial")
	assert.True(t, view.IsCustomTrial)
}

func TestApply(t *testing.T) {
	settings := &fakeSettings{}
	source := &fakeSource{suggestions: suggestionFixture()}
	e := newTestEngine(&fakeBacktests{}, settings, source)
	e.LoadSuggestions(suggestionFixture())

	count, err := e.Apply(context.Background(), 30, "ORB")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.Len(t, settings.patches, 1)
	assert.Equal(t, dto.SettingsPatch{
		"min_volume_ratio": 1.5,
		"range_minutes":    30,
	}, settings.patches[0])

	assert.Eventually(t, func() bool {
		return len(source.loggedActions()) == 2
	}, time.Second, 10*time.Millisecond)
	assert.Contains(t, source.loggedActions(), "min_volume_ratio:accepted")
	assert.Contains(t, source.loggedActions(), "range_minutes:accepted")
}

func TestApply_EmptySelection(t *testing.T) {
	e := newTestEngine(&fakeBacktests{}, &fakeSettings{}, &fakeSource{})
	e.LoadSuggestions(nil)

	_, err := e.Apply(context.Background(), 30, "ORB")
	assert.ErrorIs(t, err, ErrEmptySelection)
}

func TestApply_SaveFailureKeepsSelection(t *testing.T) {
	settings := &fakeSettings{err: errors.New("save rejected")}
	e := newTestEngine(&fakeBacktests{}, settings, &fakeSource{})
	e.LoadSuggestions(suggestionFixture())

	_, err := e.Apply(context.Background(), 30, "ORB")

	var applyErr *ApplyError
	require.ErrorAs(t, err, &applyErr)
	assert.Equal(t, []string{"min_volume_ratio", "range_minutes"}, e.Snapshot().Selected)
}

func TestResetTrial(t *testing.T) {
	first := &dto.BacktestComparison{Optimized: dto.MetricsSnapshot{WinRate: 55}}
	second := &dto.BacktestComparison{Optimized: dto.MetricsSnapshot{WinRate: 60}}
	baseline := &dto.BacktestComparison{Optimized: dto.MetricsSnapshot{WinRate: 50}}
	backtests := &fakeBacktests{results: []*dto.BacktestComparison{first, second, baseline}}
	e := newTestEngine(backtests, &fakeSettings{}, &fakeSource{})
	e.LoadSuggestions(suggestionFixture())

	_, err := e.RunTrial(context.Background(), 30, "ORB")
	require.NoError(t, err)
	_, err = e.RunTrial(context.Background(), 30, "ORB")
	require.NoError(t, err)
	require.NotNil(t, e.Snapshot().PreviousBacktest)

	require.NoError(t, e.ResetTrial(context.Background(), 30, "ORB"))

	view := e.Snapshot()
	assert.Nil(t, view.PreviousBacktest)
	assert.False(t, view.IsCustomTrial)
	assert.Same(t, baseline, view.LastBacktest)
}
