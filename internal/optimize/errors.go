package optimize

import (
	"errors"
	"fmt"
)

// ErrEmptySelection rejects a trial or apply issued with nothing selected.
// Local precondition, checked before any network call.
var ErrEmptySelection = errors.New("no suggestions selected")

// ErrBusy rejects an operation while another exclusive one (trial, apply)
// is still in flight.
var ErrBusy = errors.New("another operation is in progress")

// ErrStaleTrial marks a trial whose response arrived after a newer trial
// had already been issued; the stale result is discarded.
var ErrStaleTrial = errors.New("trial superseded by a newer request")

// BacktestError wraps a failed trial run. Engine state is unchanged when
// one of these is returned.
type BacktestError struct {
	Err error
}

func (e *BacktestError) Error() string {
	return fmt.Sprintf("trial backtest failed: %v", e.Err)
}

func (e *BacktestError) Unwrap() error {
	return e.Err
}

// ApplyError wraps a failed settings save. The selection is left intact so
// the user can retry.
type ApplyError struct {
	Err error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("apply settings failed: %v", e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}
